package guardrail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
)

type fakeGuardrail struct {
	name  string
	delay time.Duration
	result domain.GuardrailResult
}

func (f fakeGuardrail) Name() string { return f.name }

func (f fakeGuardrail) Check(_ context.Context, _ string, _ Context) domain.GuardrailResult {
	time.Sleep(f.delay)
	r := f.result
	r.GuardrailName = f.name
	return r
}

func TestManager_AllowWhenAllChecksPass(t *testing.T) {
	m := NewManager(NewCache(time.Hour), nil)
	m.RegisterInput(fakeGuardrail{name: "a", result: domain.GuardrailResult{Action: domain.ActionAllow, Passed: true}})
	m.RegisterInput(fakeGuardrail{name: "b", result: domain.GuardrailResult{Action: domain.ActionAllow, Passed: true}})

	report := m.CheckInput(context.Background(), "hello", Context{UserID: "u1"})
	assert.Equal(t, domain.ActionAllow, report.FinalAction)
	assert.False(t, report.IsBlocked)
	assert.Equal(t, "hello", report.FinalText)
}

func TestManager_BlockWinsOverSanitize(t *testing.T) {
	m := NewManager(NewCache(time.Hour), nil)
	m.RegisterInput(fakeGuardrail{name: "sanitizer", result: domain.GuardrailResult{
		Action: domain.ActionSanitize, SanitizedText: "cleaned", Severity: SeverityMedium,
	}})
	m.RegisterInput(fakeGuardrail{name: "blocker", result: domain.GuardrailResult{
		Action: domain.ActionBlock, Message: "blocked message", Severity: SeverityHigh,
	}})

	report := m.CheckInput(context.Background(), "raw text", Context{UserID: "u1"})
	assert.Equal(t, domain.ActionBlock, report.FinalAction)
	assert.True(t, report.IsBlocked)
	assert.Equal(t, "blocked message", report.FinalText)
}

func TestManager_SanitizePicksHighestSeverity(t *testing.T) {
	m := NewManager(NewCache(time.Hour), nil)
	m.RegisterInput(fakeGuardrail{name: "low", result: domain.GuardrailResult{
		Action: domain.ActionSanitize, SanitizedText: "low-masked", Severity: SeverityMedium,
	}})
	m.RegisterInput(fakeGuardrail{name: "high", result: domain.GuardrailResult{
		Action: domain.ActionSanitize, SanitizedText: "high-masked", Severity: SeverityHigh,
	}})

	report := m.CheckInput(context.Background(), "raw text", Context{UserID: "u1"})
	assert.Equal(t, domain.ActionSanitize, report.FinalAction)
	assert.Equal(t, "high-masked", report.FinalText)
}

func TestManager_RunsChecksInParallelNotSerially(t *testing.T) {
	m := NewManager(NewCache(time.Hour), nil)
	for i := 0; i < 4; i++ {
		m.RegisterInput(fakeGuardrail{
			name:  "slow",
			delay: 40 * time.Millisecond,
			result: domain.GuardrailResult{Action: domain.ActionAllow, Passed: true},
		})
	}

	report := m.CheckInput(context.Background(), "hello", Context{UserID: "u1"})
	require.NotEmpty(t, report.Results)
	assert.Less(t, report.TotalLatencyMS, int64(150))
}
