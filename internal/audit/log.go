package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ScanRecord is one line of the scan-history log.
type ScanRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	ScanID       string    `json:"scan_id"`
	Roots        []string  `json:"roots"`
	TotalGroups  int       `json:"total_groups"`
	TotalFiles   int       `json:"total_files"`
	WastedBytes  int64     `json:"wasted_bytes"`
	FilesScanned uint64    `json:"files_scanned"`
	FilesSkipped uint64    `json:"files_skipped"`
	Duration     string    `json:"duration"`
	Status       string    `json:"status"`
}

// Log appends scan records to a JSONL file under the user config dir.
type Log struct {
	logPath string
}

const logFileName = "history.jsonl"

// NewLog returns the history log at its default location. The path may be
// empty when no config dir exists; operations then fail cleanly.
func NewLog() *Log {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return &Log{}
	}
	return &Log{logPath: filepath.Join(base, "scour", logFileName)}
}

// NewLogAt returns a history log at an explicit path, for tests.
func NewLogAt(path string) *Log { return &Log{logPath: path} }

// LoadHistory returns all records, newest first. Malformed lines are
// skipped.
func (l *Log) LoadHistory() ([]ScanRecord, error) {
	if l.logPath == "" {
		return nil, fmt.Errorf("no history log path")
	}
	f, err := os.Open(l.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			continue
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// LogScan appends one record.
func (l *Log) LogScan(record ScanRecord) error {
	if l.logPath == "" {
		return fmt.Errorf("no history log path")
	}
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", time.Now().Unix())
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(l.logPath), 0755); err != nil {
		return err
	}
	// History records name user file paths; keep them owner-only.
	f, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write history record: %w", err)
	}
	return nil
}
