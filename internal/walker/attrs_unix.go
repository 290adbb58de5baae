//go:build !windows

package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// isHidden treats dotfiles as hidden on unix-like systems.
func isHidden(path string, _ fs.DirEntry) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// isSystem has no unix equivalent of the Windows system attribute; system
// locations are covered by the protected-path list instead.
func isSystem(string, fs.DirEntry) bool { return false }
