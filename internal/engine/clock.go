package engine

import "sync/atomic"

// Clock is a monotonic logical clock for event ordering.
//
// Every dispatched event is stamped with a strictly increasing seq from
// this clock. Journals are read back ordered by seq, so replay sees events
// in exactly the order they were applied. Wall-clock time is never used
// for ordering.
//
// Clock is safe for concurrent use, although a Session only ever calls it
// from the goroutine that owns it.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
