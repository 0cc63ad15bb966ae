// Package config loads the engine's configuration from (in increasing
// priority) defaults, environment variables and functional options,
// mirroring the teacher's three-layer core.Config model.
package config

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every recognized option from §6 "Environment/config".
type Config struct {
	LLMAPIKey          string        `env:"LLM_API_KEY"`
	LLMProvider        string        `env:"LLM_PROVIDER" default:"anthropic"`
	EmbeddingModel     string        `env:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingAPIKey    string        `env:"EMBEDDING_API_KEY"`
	EmbeddingDimension int           `env:"EMBEDDING_DIMENSION" default:"384"`
	VectorStoreAPIKey  string        `env:"VECTOR_STORE_API_KEY"`
	VectorStoreURL     string        `env:"VECTOR_STORE_URL" default:"localhost:6334"`
	VectorIndexName    string        `env:"VECTOR_INDEX_NAME" default:"converge-ai"`

	RedisAddr string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" default:"0"`

	ConversationHistoryLimit int           `env:"CONVERSATION_HISTORY_LIMIT" default:"10"`
	MaxRetryAttempts         int           `env:"MAX_RETRY_ATTEMPTS" default:"3"`
	DialogStateExpiry        time.Duration `env:"DIALOG_STATE_EXPIRY_HOURS" default:"24h"`

	TurnDeadline time.Duration `env:"TURN_DEADLINE" default:"30s"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" default:"30s"`
	EmbeddingTimeout time.Duration `env:"EMBEDDING_TIMEOUT" default:"10s"`
	VectorTimeout    time.Duration `env:"VECTOR_TIMEOUT" default:"5s"`
	GuardrailTimeout time.Duration `env:"GUARDRAIL_TIMEOUT" default:"2s"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogPretty bool   `env:"LOG_PRETTY" default:"false"`
}

// Option mutates a Config after defaults/env have been applied,
// mirroring gomind's WithName/WithPort functional-option style.
type Option func(*Config)

func WithLLMAPIKey(key string) Option          { return func(c *Config) { c.LLMAPIKey = key } }
func WithDialogStateExpiry(d time.Duration) Option { return func(c *Config) { c.DialogStateExpiry = d } }
func WithMaxRetryAttempts(n int) Option         { return func(c *Config) { c.MaxRetryAttempts = n } }
func WithTurnDeadline(d time.Duration) Option   { return func(c *Config) { c.TurnDeadline = d } }

// Load builds a Config from struct-tag defaults, the process environment
// (optionally after loading a local .env via godotenv) and any functional
// options, in that priority order.
func Load(envFile string, opts ...Option) (*Config, error) {
	if envFile != "" {
		// Best effort: a missing .env in production is not an error.
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	applyDefaults(cfg)
	applyEnv(cfg)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the bounds §3/§6 call out explicitly.
func (c *Config) Validate() error {
	if c.DialogStateExpiry < time.Hour || c.DialogStateExpiry > 168*time.Hour {
		c.DialogStateExpiry = 24 * time.Hour
	}
	if c.MaxRetryAttempts <= 0 {
		c.MaxRetryAttempts = 3
	}
	if c.ConversationHistoryLimit <= 0 {
		c.ConversationHistoryLimit = 10
	}
	return nil
}

func applyDefaults(cfg *Config) {
	setFromTags(cfg, "default", func(f reflect.StructField) (string, bool) {
		v, ok := f.Tag.Lookup("default")
		return v, ok
	})
}

func applyEnv(cfg *Config) {
	setFromTags(cfg, "env", func(f reflect.StructField) (string, bool) {
		envKey, ok := f.Tag.Lookup("env")
		if !ok {
			return "", false
		}
		v, present := os.LookupEnv(envKey)
		if !present {
			return "", false
		}
		return v, true
	})
}

// setFromTags walks cfg's fields and assigns values yielded by lookup,
// converting strings to the field's actual type. This single reflective
// helper backs both the "default" and "env" layers.
func setFromTags(cfg *Config, _ string, lookup func(reflect.StructField) (string, bool)) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		raw, ok := lookup(field)
		if !ok || raw == "" {
			continue
		}
		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Int, reflect.Int64:
			if fv.Type() == reflect.TypeOf(time.Duration(0)) {
				if d, err := time.ParseDuration(raw); err == nil {
					fv.Set(reflect.ValueOf(d))
				} else if hours, err := strconv.Atoi(raw); err == nil {
					fv.Set(reflect.ValueOf(time.Duration(hours) * time.Hour))
				}
				continue
			}
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				fv.SetInt(n)
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(raw); err == nil {
				fv.SetBool(b)
			}
		}
	}
}
