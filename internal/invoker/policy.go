package invoker

import (
	"errors"
	"fmt"
	"time"
)

// Default attempt policy, matching the gateway's documented response times.
const (
	DefaultMaxAttempts       = 3
	DefaultPerAttemptTimeout = 30 * time.Second
	DefaultBackoffBase       = 500 * time.Millisecond
)

// Policy bounds one invocation.
type Policy struct {
	// MaxAttempts is the number of gateway calls allowed. Must be >= 1.
	MaxAttempts int

	// PerAttemptTimeout is how long a single attempt may run before it is
	// counted as a timeout.
	PerAttemptTimeout time.Duration

	// BackoffBase is the wait after the first failed attempt; it doubles
	// after each further attempt.
	BackoffBase time.Duration
}

var ErrInvalidPolicy = errors.New("invalid attempt policy")

// DefaultPolicy returns the default attempt policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       DefaultMaxAttempts,
		PerAttemptTimeout: DefaultPerAttemptTimeout,
		BackoffBase:       DefaultBackoffBase,
	}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.PerAttemptTimeout <= 0 {
		return fmt.Errorf("%w: per-attempt timeout must be positive, got %s", ErrInvalidPolicy, p.PerAttemptTimeout)
	}
	if p.BackoffBase < 0 {
		return fmt.Errorf("%w: backoff base must not be negative, got %s", ErrInvalidPolicy, p.BackoffBase)
	}
	return nil
}

// Backoff returns the wait after the given 1-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BackoffBase << (attempt - 1)
}

// TotalBackoff is the sum of all waits a fully exhausted invocation sleeps.
func (p Policy) TotalBackoff() time.Duration {
	var total time.Duration
	for attempt := 1; attempt < p.MaxAttempts; attempt++ {
		total += p.Backoff(attempt)
	}
	return total
}
