package viewport

import (
	"context"
	"sync"
	"time"
)

// FrameClock paces animation. Frame blocks until the next animation tick and
// returns that tick's timestamp in nanoseconds. Timestamps only need to be
// monotonic relative to each other; flings use their differences.
type FrameClock interface {
	Frame(ctx context.Context) (int64, error)
}

// TickerClock is a wall-clock FrameClock that ticks at a fixed rate.
// Ticks are aligned to multiples of the frame interval, so concurrent users
// observe the same frame boundaries. TickerClock is safe for concurrent use.
type TickerClock struct {
	interval time.Duration
}

// NewTickerClock returns a clock ticking fps times per second.
// Non-positive fps falls back to DefaultFrameRate.
func NewTickerClock(fps int) *TickerClock {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &TickerClock{interval: time.Second / time.Duration(fps)}
}

// Interval returns the time between ticks.
func (c *TickerClock) Interval() time.Duration {
	return c.interval
}

// Frame waits for the next frame boundary.
func (c *TickerClock) Frame(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := time.Now()
	wait := c.interval - time.Duration(now.UnixNano()%int64(c.interval))

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case ts := <-t.C:
		return ts.UnixNano(), nil
	}
}

// ManualClock is a FrameClock advanced explicitly by its driver. It is used
// by tests and by hosts that already own a frame loop.
//
// Every pending Frame call is released by the next Advance with the same
// timestamp. ManualClock is safe for concurrent use.
type ManualClock struct {
	mu      sync.Mutex
	now     int64
	waiters []chan int64
	pending chan struct{}
}

// NewManualClock returns a clock starting at timestamp start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start, pending: make(chan struct{})}
}

// Frame waits for the next Advance.
func (c *ManualClock) Frame(ctx context.Context) (int64, error) {
	ch := make(chan int64, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	close(c.pending)
	c.pending = make(chan struct{})
	c.mu.Unlock()

	select {
	case ts := <-ch:
		return ts, nil
	case <-ctx.Done():
		c.mu.Lock()
		for i, w := range c.waiters {
			if w == ch {
				c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		return 0, ctx.Err()
	}
}

// Advance moves the clock forward by d and releases every pending Frame call.
// It returns the number of callers released.
func (c *ManualClock) Advance(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += int64(d)
	for _, w := range c.waiters {
		w <- c.now
	}
	n := len(c.waiters)
	c.waiters = nil
	return n
}

// Now returns the current timestamp.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AwaitFrame blocks until at least one Frame call is pending or ctx ends.
// It reports whether a caller is waiting.
func (c *ManualClock) AwaitFrame(ctx context.Context) bool {
	for {
		c.mu.Lock()
		if len(c.waiters) > 0 {
			c.mu.Unlock()
			return true
		}
		pending := c.pending
		c.mu.Unlock()

		select {
		case <-pending:
		case <-ctx.Done():
			return false
		}
	}
}
