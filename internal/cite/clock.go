package cite

import "sync/atomic"

// Clock is the driver's monotonic logical clock. Every citation event is
// stamped with a strictly increasing seq from it, so document positions
// are explicit and replay reproduces the identical order with no
// wall-clock involvement.
//
// Safe for concurrent use, though the driver's single-writer design
// means only one goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known position. Used by
// replay to continue a persisted session.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
