package types

// ScanStatus is the lifecycle state of a scan task.
type ScanStatus string

const (
	StatusIdle      ScanStatus = "idle"
	StatusScanning  ScanStatus = "scanning"
	StatusPaused    ScanStatus = "paused"
	StatusCompleted ScanStatus = "completed"
	StatusCancelled ScanStatus = "cancelled"
	StatusError     ScanStatus = "error"
)

// Terminal reports whether the status is a terminal state.
func (s ScanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

// DuplicateFile is one member of a duplicate group. Exactly one member per
// group carries IsOriginal, the earliest-modified one.
type DuplicateFile struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime int64  `json:"modified_time"` // unix seconds
	IsOriginal   bool   `json:"is_original"`
}

// DuplicateGroup is a set of byte-identical files sharing size and full
// content hash. WastedSpace is Size times (member count - 1).
type DuplicateGroup struct {
	Hash        string          `json:"hash"`
	Size        int64           `json:"size"`
	Files       []DuplicateFile `json:"files"`
	WastedSpace int64           `json:"wasted_space"`
}

// DuplicateResult is the terminal payload of a duplicate scan.
type DuplicateResult struct {
	Groups       []DuplicateGroup `json:"groups"`
	TotalGroups  int              `json:"total_groups"`
	TotalFiles   int              `json:"total_files"`
	TotalSize    int64            `json:"total_size"`
	WastedSpace  int64            `json:"wasted_space"`
	FilesScanned uint64           `json:"files_scanned"`
	FilesSkipped uint64           `json:"files_skipped"`
	DurationMS   int64            `json:"duration_ms"`
}

// DuplicateProgressEvent is the stable event-name identifier for duplicate
// scan progress updates pushed to the progress sink.
const DuplicateProgressEvent = "duplicate:progress"

// DuplicateProgress is a progress snapshot for a duplicate scan.
type DuplicateProgress struct {
	ScanID         string     `json:"scan_id"`
	Phase          string     `json:"phase"`
	CurrentPath    string     `json:"current_path"`
	ProcessedFiles uint64     `json:"processed_files"`
	TotalFiles     uint64     `json:"total_files"`
	ScannedSize    int64      `json:"scanned_size"`
	FoundGroups    uint64     `json:"found_groups"`
	Percent        float64    `json:"percent"`
	Status         ScanStatus `json:"status"`
}

// SetStatus implements the scan progress contract.
func (p *DuplicateProgress) SetStatus(s ScanStatus) { p.Status = s }

// EventName implements the scan progress contract.
func (p *DuplicateProgress) EventName() string { return DuplicateProgressEvent }

// Snapshot returns a copy safe to hand outside the progress store.
func (p *DuplicateProgress) Snapshot() *DuplicateProgress {
	cp := *p
	return &cp
}
