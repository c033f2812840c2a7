// Package system provides a real clock implementation.
package system

import "time"

// Clock implements scraper.Clock using time.Now.
// Every scraped_at stamp in the pipeline is UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
