package clock

import (
	"sync/atomic"
	"time"
)

// Clock reports elapsed time in microseconds. Readings never decrease.
type Clock interface {
	NowMicroseconds() uint64
}

// origin anchors the process clock. time.Since uses the monotonic reading
// carried by origin, so wall-clock adjustments do not affect it.
var origin = time.Now()

type monotonic struct{}

func (monotonic) NowMicroseconds() uint64 {
	return uint64(time.Since(origin).Microseconds())
}

// Monotonic returns the process-wide monotonic clock.
func Monotonic() Clock {
	return monotonic{}
}

// Manual is a clock that only moves when told to.
//
// Tests hand it to the analysis engine and let the subject under test call
// Advance with a cost model, which turns pass timings into exact numbers.
// Safe for concurrent use.
type Manual struct {
	now atomic.Uint64
}

// NewManual creates a manual clock reading start.
func NewManual(start uint64) *Manual {
	c := &Manual{}
	c.now.Store(start)
	return c
}

// NowMicroseconds returns the current reading.
func (c *Manual) NowMicroseconds() uint64 {
	return c.now.Load()
}

// Advance moves the clock forward by us microseconds and returns the new reading.
func (c *Manual) Advance(us uint64) uint64 {
	return c.now.Add(us)
}

// Set moves the clock to us. Readings lower than the current one are ignored
// so the clock stays non-decreasing.
func (c *Manual) Set(us uint64) {
	for {
		cur := c.now.Load()
		if us <= cur || c.now.CompareAndSwap(cur, us) {
			return
		}
	}
}
