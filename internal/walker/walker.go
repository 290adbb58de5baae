package walker

import (
	"io/fs"
	"path/filepath"
)

// Walker traverses directory trees depth-first, applying a FileFilter.
// Symbolic links are never followed, so link cycles cannot recurse.
// Unreadable entries are skipped; only the callback can abort a walk.
type Walker struct {
	filter FileFilter
}

// New creates a Walker over the given filter.
func New(filter FileFilter) *Walker {
	return &Walker{filter: filter}
}

// Walk invokes fn for every included entry below root, files and directories
// alike. Returning fs.SkipDir from fn prunes a directory; any other non-nil
// error aborts the walk and is returned.
func (w *Walker) Walk(root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission-denied and vanished entries are expected in deep
			// trees; skip and keep walking.
			return nil
		}
		if !w.filter.ShouldInclude(p, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(p, d)
	})
}

// Files is Walk restricted to regular files.
func (w *Walker) Files(root string, fn func(path string, d fs.DirEntry) error) error {
	return w.Walk(root, func(p string, d fs.DirEntry) error {
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(p, d)
	})
}

// Dirs is Walk restricted to directories.
func (w *Walker) Dirs(root string, fn func(path string, d fs.DirEntry) error) error {
	return w.Walk(root, func(p string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		return fn(p, d)
	})
}
