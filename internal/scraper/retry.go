package scraper

import (
	"context"
	"errors"
	"time"
)

// Fetch outcome sentinels. ErrPageNotFound marks a terminal 404: the
// resource is gone and retrying is pointless. ErrPageUnavailable marks
// retry exhaustion on transient failures; callers treat it as "page
// unavailable", not as a fatal condition.
var (
	ErrPageNotFound    = errors.New("page not found")
	ErrPageUnavailable = errors.New("page unavailable")
)

// LinearRetryPolicy waits (attempt+1) * step between transient attempts,
// so with the default step the schedule is 2s, 4s, 6s, ...
type LinearRetryPolicy struct {
	maxAttempts int
	step        time.Duration
}

// NewLinearRetryPolicy builds a policy with the given attempt budget.
func NewLinearRetryPolicy(maxAttempts int) *LinearRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &LinearRetryPolicy{
		maxAttempts: maxAttempts,
		step:        2 * time.Second,
	}
}

// MaxAttempts returns the attempt budget.
func (p *LinearRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry decides whether a failed attempt is worth repeating.
// attempt is 0-based and counts the attempt that just failed.
func (p *LinearRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts-1 {
		return false
	}
	if errors.Is(err, ErrPageNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Backoff returns the wait before retrying after the given 0-based attempt.
func (p *LinearRetryPolicy) Backoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * p.step
}
