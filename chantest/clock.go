package chantest

import (
	"sync"
	"time"
)

// Epoch is the default start time of a Clock. Whole seconds, so that
// the value survives conversion to unichan.UnixTime.
var Epoch = time.Date(2019, time.March, 1, 12, 0, 0, 0, time.UTC)

// Clock is a manually driven clock. It only moves when told to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to t. Moving it backwards is allowed so that tests
// can verify that the application rejects it.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
