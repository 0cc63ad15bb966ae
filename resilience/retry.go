// Package resilience provides the retry and circuit-breaker primitives
// shared by the LLM, embedding and vector-store clients, adapted from the
// teacher's resilience package.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// RetryConfig configures exponential-backoff retry behavior (§4.1).
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
	JitterEnabled bool
	// IsRetryable decides whether an error should trigger another
	// attempt. nil means every error is retryable.
	IsRetryable func(error) bool
}

// DefaultRetryConfig mirrors §4.1: up to 3 attempts in total (the first
// call plus 2 retries), base 1s, factor 2.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      30 * time.Second,
		JitterEnabled: true,
		IsRetryable:   IsRetryableLLMError,
	}
}

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// retryableMarkers are the substrings §4.1 names as triggering a retry:
// HTTP 503, HTTP 429, "overloaded", "rate limit", "quota".
var retryableMarkers = []string{"503", "429", "overloaded", "rate limit", "quota"}

// IsRetryableLLMError implements §4.1's retryable-error classification.
// Non-retryable errors (4xx other than 429, parse failures) surface
// immediately without consuming a retry attempt.
func IsRetryableLLMError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Retry executes fn, retrying on retryable errors with exponential
// backoff. Non-retryable errors return immediately without retrying.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	isRetryable := config.IsRetryable
	if isRetryable == nil {
		isRetryable = func(error) bool { return true }
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if attempt == config.MaxAttempts {
			break
		}

		if attempt > 1 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}
		if config.JitterEnabled {
			jitter := time.Duration(float64(delay) * 0.1 * math.Sin(float64(attempt)))
			delay += jitter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded for %v: %w", config.MaxAttempts, lastErr, ErrMaxRetriesExceeded)
}

// RetryWithCircuitBreaker combines Retry with a CircuitBreaker gate,
// grounded on resilience.RetryWithCircuitBreaker.
func RetryWithCircuitBreaker(ctx context.Context, config *RetryConfig, cb *CircuitBreaker, fn func() error) error {
	return Retry(ctx, config, func() error {
		if !cb.CanExecute() {
			return ErrCircuitBreakerOpen
		}
		if err := fn(); err != nil {
			cb.RecordFailure()
			return err
		}
		cb.RecordSuccess()
		return nil
	})
}
