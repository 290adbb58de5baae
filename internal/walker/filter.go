package walker

import (
	"io/fs"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileFilter decides whether a traversal entry participates in a scan.
type FileFilter interface {
	ShouldInclude(path string, d fs.DirEntry) bool
}

// FilterOptions configures a StandardFilter.
type FilterOptions struct {
	IncludeHidden bool
	IncludeSystem bool
	// ExcludePaths are case-insensitive path prefixes.
	ExcludePaths []string
	// ExcludeGlobs are doublestar patterns matched against the full path
	// and against the base name.
	ExcludeGlobs []string
}

// StandardFilter applies exclude-path, glob, protected-path, and
// hidden/system rules. Directories are only checked against exclude and
// protected rules: rejecting a directory on hidden/system grounds would
// prune its entire subtree.
type StandardFilter struct {
	includeHidden  bool
	includeSystem  bool
	excludePaths   []string
	excludeGlobs   []string
	protectedPaths []string
}

// NewStandardFilter builds a filter from options plus the platform's
// protected system paths.
func NewStandardFilter(opts FilterOptions) *StandardFilter {
	lowered := make([]string, 0, len(opts.ExcludePaths))
	for _, p := range opts.ExcludePaths {
		if p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}
	return &StandardFilter{
		includeHidden:  opts.IncludeHidden,
		includeSystem:  opts.IncludeSystem,
		excludePaths:   lowered,
		excludeGlobs:   opts.ExcludeGlobs,
		protectedPaths: ProtectedPaths(),
	}
}

// ShouldInclude implements FileFilter.
func (f *StandardFilter) ShouldInclude(path string, d fs.DirEntry) bool {
	lower := strings.ToLower(path)
	for _, ex := range f.excludePaths {
		if strings.HasPrefix(lower, ex) {
			return false
		}
	}
	for _, prot := range f.protectedPaths {
		if underPath(path, prot) {
			return false
		}
	}
	if f.matchGlobs(path) {
		return false
	}
	if d.IsDir() {
		return true
	}
	if !f.includeHidden && isHidden(path, d) {
		return false
	}
	if !f.includeSystem && isSystem(path, d) {
		return false
	}
	return true
}

func (f *StandardFilter) matchGlobs(path string) bool {
	if len(f.excludeGlobs) == 0 {
		return false
	}
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, g := range f.excludeGlobs {
		if ok, _ := doublestar.Match(g, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

// underPath reports whether path equals prefix or lies below it.
func underPath(path, prefix string) bool {
	if path == prefix {
		return true
	}
	rel, err := filepath.Rel(prefix, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
