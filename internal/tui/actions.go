package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// copySelectedPath puts the selected group's original path on the system
// clipboard.
func (m Model) copySelectedPath() (Model, tea.Cmd) {
	g, ok := m.selectedGroup()
	if !ok {
		return m, nil
	}
	path := ""
	for _, f := range g.Files {
		if f.IsOriginal {
			path = f.Path
		}
	}
	if path == "" && len(g.Files) > 0 {
		path = g.Files[0].Path
	}
	if path == "" {
		return m, nil
	}
	if err := clipboard.WriteAll(path); err != nil {
		return m, func() tea.Msg { return statusMsg("clipboard unavailable: " + err.Error()) }
	}
	return m, func() tea.Msg { return statusMsg("copied " + path) }
}
