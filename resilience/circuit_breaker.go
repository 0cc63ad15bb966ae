package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitBreakerOpen = errors.New("circuit breaker open")

// State is the circuit breaker's three-state machine.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreakerConfig configures the trip/recovery thresholds, a trimmed
// version of the teacher's CircuitBreakerConfig (the full file also
// supports a sliding-window failure-rate mode; here a simple consecutive-
// failure counter is enough for the LLM client, the one client that
// uses it).
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	HalfOpenMaxCalls int
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker is a minimal closed/open/half-open breaker, grounded on
// resilience.CircuitBreaker's CanExecute/RecordSuccess/RecordFailure
// contract.
type CircuitBreaker struct {
	mu               sync.Mutex
	config           *CircuitBreakerConfig
	state            State
	consecutiveFails int
	openedAt         time.Time
	halfOpenInFlight int
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// CanExecute reports whether a call should be allowed through right now.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.RecoveryTimeout {
			cb.state = StateHalfOpen
			cb.halfOpenInFlight = 0
		} else {
			return false
		}
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenInFlight < cb.config.HalfOpenMaxCalls {
			cb.halfOpenInFlight++
			return true
		}
		return false
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFails = 0
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFails++

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.openedAt = time.Now()
		return
	}
	if cb.consecutiveFails >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

// CurrentState exposes the state for diagnostics/tests.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
