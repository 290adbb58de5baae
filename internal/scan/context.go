package scan

import (
	"sync/atomic"
	"time"

	"github.com/varalys/scour/internal/types"
)

// Context is handed to a scan function and carries everything it needs to
// cooperate with the manager: the scan id, the control flags, and a locked
// mutator over the shared progress entry.
type Context[P Progress[P]] struct {
	ScanID string

	ctrl      *Controller
	mutate    func(apply func(P))
	pauseTick time.Duration
	started   time.Time
	counter   atomic.Uint64
}

// Checkpoint observes the pause/cancel flags. It returns ErrCancelled when
// the scan was cancelled, and otherwise blocks while the pause flag is set,
// republishing a Paused snapshot each tick so pollers see the state change.
func (c *Context[P]) Checkpoint() error {
	if c.ctrl.Cancelled() {
		return ErrCancelled
	}
	for c.ctrl.Paused() {
		c.mutate(func(p P) { p.SetStatus(types.StatusPaused) })
		time.Sleep(c.pauseTick)
		if c.ctrl.Cancelled() {
			return ErrCancelled
		}
	}
	return nil
}

// UpdateProgress mutates the shared progress entry under lock, marks it
// Scanning, and publishes a snapshot to the sink.
func (c *Context[P]) UpdateProgress(fn func(P)) {
	c.mutate(func(p P) {
		fn(p)
		p.SetStatus(types.StatusScanning)
	})
}

// UpdateProgressEvery is the throttled form: only every interval-th call
// reaches the store. An interval of 0 or 1 disables throttling.
func (c *Context[P]) UpdateProgressEvery(interval uint64, fn func(P)) {
	n := c.counter.Add(1)
	if interval > 1 && n%interval != 0 {
		return
	}
	c.UpdateProgress(fn)
}

// Elapsed returns the time since the scan task was spawned.
func (c *Context[P]) Elapsed() time.Duration { return time.Since(c.started) }
