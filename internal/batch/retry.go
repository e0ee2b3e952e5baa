package batch

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds the retry loop for retryable failures. Terminal
// failure kinds never consult the policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of driver executions allowed per
	// task, including the first.
	MaxAttempts int `mapstructure:"max_attempts"`

	// BaseDelay is the backoff before the second attempt.
	BaseDelay time.Duration `mapstructure:"base_delay"`

	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration `mapstructure:"max_delay"`

	// Multiplier grows the delay per attempt.
	Multiplier float64 `mapstructure:"multiplier"`

	// JitterFraction adds up to this fraction of the computed delay as
	// random jitter, spreading out retries against the external service.
	JitterFraction float64 `mapstructure:"jitter_fraction"`
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// exponential backoff from five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      5 * time.Second,
		MaxDelay:       60 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// Validate reports the first problem with the policy, or nil.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry policy: max_attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("retry policy: base_delay must be non-negative, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry policy: max_delay (%v) must be at least base_delay (%v)", p.MaxDelay, p.BaseDelay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("retry policy: multiplier must be at least 1, got %v", p.Multiplier)
	}
	if p.JitterFraction < 0 || p.JitterFraction > 1 {
		return fmt.Errorf("retry policy: jitter_fraction must be in [0, 1], got %v", p.JitterFraction)
	}
	return nil
}

// Delay computes the backoff before re-dispatching after the given failed
// attempt (1-based): base × multiplier^(attempt−1) plus bounded jitter,
// capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.JitterFraction > 0 {
		delay += rand.Float64() * p.JitterFraction * delay
		if delay > float64(p.MaxDelay) {
			delay = float64(p.MaxDelay)
		}
	}
	return time.Duration(delay)
}
