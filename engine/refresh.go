package engine

import (
	"sync"
	"time"
)

// Coordinator serializes reload cycles. At most one reload runs at a time; a
// request arriving mid-run sets a pending flag and the run loop goes around
// once more, so bursts collapse to exactly one extra cycle. Change notices
// additionally pass through a debounce window before requesting anything.
type Coordinator struct {
	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	running  bool
	pending  bool
	reload   func()
}

// NewCoordinator creates a coordinator around one reload function. The reload
// is responsible for its own error handling; the coordinator only schedules.
func NewCoordinator(debounce time.Duration, reload func()) *Coordinator {
	return &Coordinator{debounce: debounce, reload: reload}
}

// Notify requests a reload after the debounce window. Bursts of notices
// within the window collapse into one request.
func (c *Coordinator) Notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.Request)
}

// Request asks for a reload immediately. If one is already in flight the
// request is recorded, not dropped, and the in-flight run re-runs once after
// completing.
func (c *Coordinator) Request() {
	c.mu.Lock()
	if c.running {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()
	go c.run()
}

func (c *Coordinator) run() {
	for {
		c.reload()
		c.mu.Lock()
		if c.pending {
			c.pending = false
			c.mu.Unlock()
			continue
		}
		c.running = false
		c.mu.Unlock()
		return
	}
}

// Stop cancels any pending debounce timer. An in-flight reload runs to
// completion.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
