package update

import "sync/atomic"

// Sequencer hands out increasing sequence numbers for journal records.
type Sequencer interface {
	Next() int64
}

// Clock is a logical clock. Journal rows are ordered by its values rather
// than by wall time, so two runs of the same requests produce the same
// journal.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock that continues after start, used when a
// journal already holds rows up to start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock. Safe for concurrent use.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
