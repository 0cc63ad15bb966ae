package guardrail

import (
	"context"
	"sync"
	"time"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

// rateLimiterName is excluded from caching per §4.5: rate-limit state is
// mutable per call and must never be served stale.
const rateLimiterName = "rate_limiter"

// Manager holds two ordered lists of checks and fans each one out in
// parallel, grounded on the teacher's goroutine-per-call pattern in
// pkg/orchestration (fan out, collect via channel, no shared mutable
// state between goroutines).
type Manager struct {
	inputGuardrails  []Guardrail
	outputGuardrails []Guardrail
	cache            *Cache
	logger           logger.Logger
}

func NewManager(cache *Cache, log logger.Logger) *Manager {
	return &Manager{cache: cache, logger: logger.Component(log, "guardrail")}
}

func (m *Manager) RegisterInput(g Guardrail) {
	m.inputGuardrails = append(m.inputGuardrails, g)
}

func (m *Manager) RegisterOutput(g Guardrail) {
	m.outputGuardrails = append(m.outputGuardrails, g)
}

func (m *Manager) CheckInput(ctx context.Context, text string, gctx Context) domain.GuardrailReport {
	return m.run(ctx, m.inputGuardrails, text, gctx)
}

func (m *Manager) CheckOutput(ctx context.Context, text string, gctx Context) domain.GuardrailReport {
	return m.run(ctx, m.outputGuardrails, text, gctx)
}

func (m *Manager) run(ctx context.Context, guardrails []Guardrail, text string, gctx Context) domain.GuardrailReport {
	if len(guardrails) == 0 {
		return domain.GuardrailReport{FinalAction: domain.ActionAllow, FinalText: text}
	}

	results := make([]domain.GuardrailResult, len(guardrails))
	var wg sync.WaitGroup
	start := time.Now()

	for i, g := range guardrails {
		wg.Add(1)
		go func(i int, g Guardrail) {
			defer wg.Done()
			results[i] = m.checkOne(ctx, g, text, gctx)
		}(i, g)
	}
	wg.Wait()

	report := reduce(results, text)
	report.TotalLatencyMS = time.Since(start).Milliseconds()
	return report
}

func (m *Manager) checkOne(ctx context.Context, g Guardrail, text string, gctx Context) domain.GuardrailResult {
	name := g.Name()

	if name != rateLimiterName {
		if cached, ok := m.cache.Get(name, text, gctx.UserID); ok {
			return cached
		}
	}

	callStart := time.Now()
	result := g.Check(ctx, text, gctx)
	result.LatencyMS = time.Since(callStart).Milliseconds()
	if result.GuardrailName == "" {
		result.GuardrailName = name
	}

	if name != rateLimiterName {
		m.cache.Set(name, text, gctx.UserID, result)
	}
	return result
}

// reduce implements §4.5's BLOCK > SANITIZE > ALLOW priority.
func reduce(results []domain.GuardrailResult, originalText string) domain.GuardrailReport {
	report := domain.GuardrailReport{Results: results, FinalAction: domain.ActionAllow, FinalText: originalText}

	var worstBlock *domain.GuardrailResult
	var worstSanitize *domain.GuardrailResult

	for i := range results {
		r := &results[i]
		switch r.Action {
		case domain.ActionBlock:
			if worstBlock == nil || r.Severity > worstBlock.Severity {
				worstBlock = r
			}
		case domain.ActionSanitize:
			if worstSanitize == nil || r.Severity > worstSanitize.Severity {
				worstSanitize = r
			}
		}
	}

	switch {
	case worstBlock != nil:
		report.FinalAction = domain.ActionBlock
		report.FinalText = worstBlock.Message
		report.IsBlocked = true
	case worstSanitize != nil:
		report.FinalAction = domain.ActionSanitize
		report.FinalText = worstSanitize.SanitizedText
	}

	return report
}
