package guardrail

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaonidutta/converge-ai/logger"
)

// Config holds the recognized guardrail options (§6 "Guardrail
// configuration").
type Config struct {
	MinLength           int
	MaxLength           int
	MaskPII             bool
	ToxicThreshold       int
	MaxRequestsPerMinute int
	MaxRequestsPerHour   int
	BurstSize            int
	CacheTTL             time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinLength:            1,
		MaxLength:            10000,
		MaskPII:              true,
		ToxicThreshold:       1,
		MaxRequestsPerMinute: 20,
		MaxRequestsPerHour:   100,
		BurstSize:            5,
		CacheTTL:             time.Hour,
	}
}

// NewDefaultManager wires the Phase 1 guardrail set into a Manager,
// grounded on original_source's guardrail_factory.create_guardrail_manager.
func NewDefaultManager(cfg Config, rdb *redis.Client, log logger.Logger) *Manager {
	m := NewManager(NewCache(cfg.CacheTTL), log)

	m.RegisterInput(NewInputValidator(cfg.MinLength, cfg.MaxLength))
	m.RegisterInput(NewPIIDetector(cfg.MaskPII))
	m.RegisterInput(NewInputToxicDetector(cfg.ToxicThreshold))
	m.RegisterInput(NewRateLimiter(rdb, cfg.MaxRequestsPerMinute, cfg.MaxRequestsPerHour, cfg.BurstSize, log))

	m.RegisterOutput(NewPIILeakageDetector(cfg.MaskPII))
	m.RegisterOutput(NewOutputToxicDetector(cfg.ToxicThreshold))

	return m
}
