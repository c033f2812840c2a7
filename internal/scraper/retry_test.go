package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearRetryPolicyBackoff(t *testing.T) {
	t.Parallel()

	policy := NewLinearRetryPolicy(3)
	assert.Equal(t, 2*time.Second, policy.Backoff(0))
	assert.Equal(t, 4*time.Second, policy.Backoff(1))
	assert.Equal(t, 6*time.Second, policy.Backoff(2))
}

func TestLinearRetryPolicyShouldRetry(t *testing.T) {
	t.Parallel()

	policy := NewLinearRetryPolicy(3)
	transient := errors.New("connection reset")

	assert.True(t, policy.ShouldRetry(transient, 0))
	assert.True(t, policy.ShouldRetry(transient, 1))
	// Last attempt already spent.
	assert.False(t, policy.ShouldRetry(transient, 2))
	assert.False(t, policy.ShouldRetry(nil, 0))
}

func TestLinearRetryPolicyTerminalErrors(t *testing.T) {
	t.Parallel()

	policy := NewLinearRetryPolicy(3)

	notFound := fmt.Errorf("%w: https://www.jumia.ma/gone", ErrPageNotFound)
	assert.False(t, policy.ShouldRetry(notFound, 0))
	assert.False(t, policy.ShouldRetry(context.Canceled, 0))
	assert.False(t, policy.ShouldRetry(context.DeadlineExceeded, 0))
}

func TestTimerSleeperHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	timerSleeper{}.Sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
