package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/varalys/scour/internal/types"
)

// LastScan stores the result and metadata of the most recent duplicate scan,
// so the CLI and TUI can reopen it without rescanning.
type LastScan struct {
	Result    types.DuplicateResult `json:"result"`
	Roots     []string              `json:"roots"`
	Timestamp time.Time             `json:"timestamp"`
}

const resultsFile = "last_scan.json"

// SaveResults persists the last scan result.
func SaveResults(result types.DuplicateResult, roots []string) error {
	dir := cacheDir()
	if dir == "" {
		return errors.New("no cache dir")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(LastScan{
		Result:    result,
		Roots:     roots,
		Timestamp: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, resultsFile), b, 0644)
}

// LoadResults loads the last scan result.
func LoadResults() (LastScan, error) {
	var last LastScan
	dir := cacheDir()
	if dir == "" {
		return last, errors.New("no cache dir")
	}
	b, err := os.ReadFile(filepath.Join(dir, resultsFile))
	if err != nil {
		return last, err
	}
	if err := json.Unmarshal(b, &last); err != nil {
		return last, err
	}
	return last, nil
}
