package preview

import (
	"context"
	"sync"
	"time"
)

// timedCond is a condition variable with a timed wait. Notify closes the
// current broadcast channel and replaces it, waking every waiter.
type timedCond struct {
	mu sync.Mutex
	ch chan struct{}
}

func newTimedCond() *timedCond {
	return &timedCond{ch: make(chan struct{})}
}

// Update runs fn under the lock and wakes every waiter.
func (c *timedCond) Update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	close(c.ch)
	c.ch = make(chan struct{})
}

// Read runs fn under the lock.
func (c *timedCond) Read(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// WaitFor blocks until pred holds, the timeout expires or ctx ends, and
// returns the last value of pred. pred runs under the lock.
func (c *timedCond) WaitFor(ctx context.Context, pred func() bool, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		c.mu.Lock()
		if pred() {
			c.mu.Unlock()
			return true
		}
		ch := c.ch
		c.mu.Unlock()

		select {
		case <-ch:
		case <-timer.C:
			c.mu.Lock()
			defer c.mu.Unlock()
			return pred()
		case <-ctx.Done():
			c.mu.Lock()
			defer c.mu.Unlock()
			return pred()
		}
	}
}
