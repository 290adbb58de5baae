package core

import (
	"context"

	"github.com/varalys/scour/internal/dupes"
	"github.com/varalys/scour/internal/scan"
	"github.com/varalys/scour/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Options = dupes.Options
type DuplicateFile = types.DuplicateFile
type DuplicateGroup = types.DuplicateGroup
type Result = types.DuplicateResult
type Progress = types.DuplicateProgress
type Status = types.ScanStatus

// Manager is a scan manager specialized for duplicate scans. It tracks
// progress, results, and pause/cancel controls per scan id.
type Manager = scan.Manager[*types.DuplicateProgress, *types.DuplicateResult]

// Sink receives progress snapshots pushed by a Manager.
type Sink = scan.Sink[*types.DuplicateProgress]

// ScanContext is the cooperation handle handed to a scan function started
// through a Manager.
type ScanContext = scan.Context[*types.DuplicateProgress]

// ErrCancelled is returned by a scan that was cancelled before finishing.
var ErrCancelled = scan.ErrCancelled

// FindDuplicates runs one synchronous detection over roots. For pausable or
// cancellable background scans, use NewManager instead.
func FindDuplicates(ctx context.Context, roots []string, opts Options) (*Result, error) {
	return dupes.New(opts, nil).FindDuplicates(ctx, roots, dupes.Control{})
}

// NewManager returns a Manager pushing progress to sink. A nil sink is
// allowed; progress can then be polled.
func NewManager(sink Sink) *Manager {
	return scan.NewManager[*types.DuplicateProgress, *types.DuplicateResult](sink)
}

// SuggestDeletions returns the non-original member paths of a group, riskiest
// to delete last.
func SuggestDeletions(g DuplicateGroup) []string {
	return dupes.SuggestDeletions(g)
}
