package testfixtures

import (
	"sync"
	"time"
)

// Clock is a settable time source in a fixed zone, so day-based booking
// logic can be driven across midnight and month boundaries.
type Clock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewClock starts the clock at start, reported in start's zone. The zero
// value starts at ReferenceTime.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start, loc: start.Location()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.In(c.loc)
}

// NowFunc returns Now for injection; a nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now.In(c.loc)
}

// AdvanceDays moves the clock by whole calendar days, keeping the wall clock
// time of day.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.In(c.loc).AddDate(0, 0, days)
	return c.now
}

// SetDay jumps to hour:00 on the given date in the clock's zone.
func (c *Clock) SetDay(year int, month time.Month, day, hour int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(year, month, day, hour, 0, 0, 0, c.loc)
	return c.now
}
