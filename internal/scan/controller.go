package scan

import "sync/atomic"

// Controller owns the two broadcast flags for one running scan. Flags are
// single-slot: the latest write wins and every checkpoint observes it.
type Controller struct {
	paused    atomic.Bool
	cancelled atomic.Bool
}

// Pause requests that the scan block at its next checkpoint.
func (c *Controller) Pause() { c.paused.Store(true) }

// Resume releases a paused scan.
func (c *Controller) Resume() { c.paused.Store(false) }

// Cancel requests a clean early return at the next checkpoint. Cancellation
// is not preemptive; work in flight for the current file completes first.
func (c *Controller) Cancel() { c.cancelled.Store(true) }

// Paused reports the current pause flag.
func (c *Controller) Paused() bool { return c.paused.Load() }

// Cancelled reports the current cancel flag.
func (c *Controller) Cancelled() bool { return c.cancelled.Load() }
