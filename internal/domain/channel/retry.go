package channel

import "time"

// ---------------------------------------------------------------------------
// RetryPolicy
// ---------------------------------------------------------------------------

// RetryPolicy is the shared retry schedule for platform operations.
// It is an explicit value so every adapter runs under the same policy and
// tests can assert the schedule directly.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first
	MaxAttempts int
	// BaseDelay is the wait before the second attempt
	BaseDelay time.Duration
	// Factor multiplies the delay for each subsequent attempt
	Factor int
	// MaxDelay caps the wait between attempts
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy for publish and delist
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Factor:      2,
		MaxDelay:    30 * time.Second,
	}
}

// ShouldRetry reports whether another attempt is allowed after the given
// completed attempt count
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Backoff returns the wait before the given attempt number. Attempt 1 is
// the first try and has no wait.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := p.BaseDelay
	for i := 2; i < attempt; i++ {
		d *= time.Duration(p.Factor)
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
