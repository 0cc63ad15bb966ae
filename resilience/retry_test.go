package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Millisecond,
		IsRetryable:   IsRetryableLLMError,
	}

	err := Retry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("HTTP 503 service unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	cfg := DefaultRetryConfig()

	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("400 bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Millisecond,
		IsRetryable:   IsRetryableLLMError,
	}

	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("429 rate limit")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxRetriesExceeded))
	assert.Equal(t, 3, attempts)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{FailureThreshold: 2, RecoveryTimeout: 50 * time.Millisecond, HalfOpenMaxCalls: 1})

	assert.True(t, cb.CanExecute())
	cb.RecordFailure()
	assert.True(t, cb.CanExecute())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.CurrentState())
	assert.False(t, cb.CanExecute())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, cb.CanExecute())
	assert.Equal(t, StateHalfOpen, cb.CurrentState())

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.CurrentState())
}
