package scan

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/varalys/scour/internal/types"
)

// ErrCancelled is returned by Checkpoint once the cancel flag is observed.
// Scan functions propagate it to terminate cleanly; the manager records a
// Cancelled terminal status and keeps no partial result.
var ErrCancelled = errors.New("scan cancelled")

// Progress is the contract every progress type must satisfy: a mutable
// status field, a stable event-name identifier, and a snapshot for pollers.
// P is the progress type itself, so Snapshot returns a detached copy.
type Progress[P any] interface {
	SetStatus(types.ScanStatus)
	EventName() string
	Snapshot() P
}

const defaultPauseTick = 100 * time.Millisecond

// Manager runs scan tasks and tracks their progress, results, and
// controllers, all keyed by opaque scan id. Construct one per application
// and pass it by reference; there is no package-level instance.
type Manager[P Progress[P], R any] struct {
	mu       sync.RWMutex
	progress map[string]P
	done     map[string]struct{}

	resMu   sync.RWMutex
	results map[string]R
	errs    map[string]string

	ctlMu       sync.RWMutex
	controllers map[string]*Controller

	sink      Sink[P]
	pauseTick time.Duration
}

// NewManager creates a manager publishing snapshots to sink. A nil sink
// discards updates.
func NewManager[P Progress[P], R any](sink Sink[P]) *Manager[P, R] {
	if sink == nil {
		sink = NopSink[P]{}
	}
	return &Manager[P, R]{
		progress:    make(map[string]P),
		done:        make(map[string]struct{}),
		results:     make(map[string]R),
		errs:        make(map[string]string),
		controllers: make(map[string]*Controller),
		sink:        sink,
		pauseTick:   defaultPauseTick,
	}
}

// StartScan allocates a scan id, stores the initial progress, and spawns fn
// on its own goroutine. It returns the id immediately; any number of scans
// may run concurrently.
func (m *Manager[P, R]) StartScan(initial P, fn func(*Context[P]) (R, error)) string {
	return m.StartScanWithID(uuid.NewString(), initial, fn)
}

// StartScanWithID is StartScan with a caller-chosen id. The progress entry
// is in place before the task goroutine starts.
func (m *Manager[P, R]) StartScanWithID(id string, initial P, fn func(*Context[P]) (R, error)) string {
	m.mu.Lock()
	m.progress[id] = initial
	delete(m.done, id)
	m.mu.Unlock()

	ctrl := &Controller{}
	m.ctlMu.Lock()
	m.controllers[id] = ctrl
	m.ctlMu.Unlock()

	m.sink.Publish(initial.EventName(), initial.Snapshot())

	ctx := &Context[P]{
		ScanID:    id,
		ctrl:      ctrl,
		mutate:    m.mutator(id),
		pauseTick: m.pauseTick,
		started:   time.Now(),
	}

	go m.run(id, ctx, fn)
	return id
}

func (m *Manager[P, R]) run(id string, ctx *Context[P], fn func(*Context[P]) (R, error)) {
	res, err := fn(ctx)
	switch {
	case err == nil:
		m.resMu.Lock()
		m.results[id] = res
		m.resMu.Unlock()
		m.setStatus(id, types.StatusCompleted)
	case errors.Is(err, ErrCancelled):
		// Clean early return: partial grouping state is discarded.
		m.setStatus(id, types.StatusCancelled)
	default:
		m.resMu.Lock()
		m.errs[id] = err.Error()
		m.resMu.Unlock()
		m.setStatus(id, types.StatusError)
	}

	m.ctlMu.Lock()
	delete(m.controllers, id)
	m.ctlMu.Unlock()
}

// PauseScan sets the pause flag. Idempotent; a no-op once the scan has
// terminated (its controller is gone).
func (m *Manager[P, R]) PauseScan(id string) {
	if ctrl := m.controller(id); ctrl != nil {
		ctrl.Pause()
		m.setStatus(id, types.StatusPaused)
	}
}

// ResumeScan clears the pause flag. Idempotent; a no-op after termination.
func (m *Manager[P, R]) ResumeScan(id string) {
	if ctrl := m.controller(id); ctrl != nil {
		ctrl.Resume()
		m.setStatus(id, types.StatusScanning)
	}
}

// CancelScan sets the cancel flag. The running task observes it at its next
// checkpoint and terminates with a Cancelled status.
func (m *Manager[P, R]) CancelScan(id string) {
	if ctrl := m.controller(id); ctrl != nil {
		ctrl.Cancel()
	}
}

// Progress returns a snapshot of the current progress, or false if the scan
// was never started or has been cleared.
func (m *Manager[P, R]) Progress(id string) (P, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[id]
	if !ok {
		var zero P
		return zero, false
	}
	return p.Snapshot(), true
}

// Result returns the terminal result for id, if the scan completed.
func (m *Manager[P, R]) Result(id string) (R, bool) {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	r, ok := m.results[id]
	return r, ok
}

// Err returns the task-level error message for a scan that terminated with
// StatusError.
func (m *Manager[P, R]) Err(id string) (string, bool) {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	msg, ok := m.errs[id]
	return msg, ok
}

// ClearScan removes the progress, result, and error entries for id. A still
// running scan keeps its controller and terminates normally, but its final
// state is no longer observable.
func (m *Manager[P, R]) ClearScan(id string) {
	m.mu.Lock()
	delete(m.progress, id)
	delete(m.done, id)
	m.mu.Unlock()
	m.resMu.Lock()
	delete(m.results, id)
	delete(m.errs, id)
	m.resMu.Unlock()
}

func (m *Manager[P, R]) controller(id string) *Controller {
	m.ctlMu.RLock()
	defer m.ctlMu.RUnlock()
	return m.controllers[id]
}

// mutator returns a closure applying a locked mutation to the progress entry
// for id and publishing the resulting snapshot.
func (m *Manager[P, R]) mutator(id string) func(func(P)) {
	return func(apply func(P)) {
		m.mu.Lock()
		p, ok := m.progress[id]
		if ok {
			apply(p)
		}
		var snap P
		var event string
		if ok {
			snap = p.Snapshot()
			event = p.EventName()
		}
		m.mu.Unlock()
		if ok {
			m.sink.Publish(event, snap)
		}
	}
}

// setStatus transitions the progress entry for id. Terminal statuses are
// sticky: a Pause or Resume that fetched its controller just before the task
// terminated must not demote the recorded terminal state.
func (m *Manager[P, R]) setStatus(id string, s types.ScanStatus) {
	m.mu.Lock()
	p, ok := m.progress[id]
	if ok {
		if _, fin := m.done[id]; fin && !s.Terminal() {
			m.mu.Unlock()
			return
		}
		if s.Terminal() {
			m.done[id] = struct{}{}
		}
		p.SetStatus(s)
	}
	var snap P
	var event string
	if ok {
		snap = p.Snapshot()
		event = p.EventName()
	}
	m.mu.Unlock()
	if ok {
		m.sink.Publish(event, snap)
	}
}
