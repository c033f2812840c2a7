package scraper

import (
	"context"
	"time"
)

// Sleeper abstracts how the fetcher waits, both for the politeness delay
// after a successful fetch and for backoff between retries. Tests inject a
// fake so no test sleeps for real.
type Sleeper interface {
	Sleep(ctx context.Context, delay time.Duration)
}

type timerSleeper struct{}

// Sleep blocks for delay or until the context finishes, whichever is first.
func (timerSleeper) Sleep(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
