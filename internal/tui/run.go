// Package tui implements the interactive duplicate-group browser.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/varalys/scour/internal/types"
)

// Run starts the browser over a scan result. rescan may be nil, in which
// case the r key does nothing.
func Run(result types.DuplicateResult, rescan RescanFunc) error {
	m := NewModel(result, rescan)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
