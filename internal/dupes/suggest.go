package dupes

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/varalys/scour/internal/types"
)

// Deletion-suggestion scoring. Positive scores bias toward deletion,
// negative scores protect. The detected original is always protected.
const (
	scoreTempDir      = 50
	scoreDownloadsDir = 30
	scoreDesktopDir   = -20
	scoreDocumentsDir = -30
	scoreOriginal     = -100
)

// SuggestDeletions returns the paths of a group's non-original members,
// highest deletion score first. It is a heuristic only; detection
// correctness never depends on it, and the core never deletes anything.
func SuggestDeletions(group types.DuplicateGroup) []string {
	if len(group.Files) < 2 {
		return nil
	}

	type scored struct {
		path  string
		score int
	}
	var out []scored
	for _, f := range group.Files {
		if f.IsOriginal {
			continue
		}
		out = append(out, scored{path: f.Path, score: deleteScore(f)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].path < out[j].path
	})

	paths := make([]string, len(out))
	for i, s := range out {
		paths[i] = s.path
	}
	return paths
}

func deleteScore(f types.DuplicateFile) int {
	score := 0
	p := strings.ToLower(filepath.ToSlash(f.Path))

	if strings.Contains(p, "/temp/") || strings.Contains(p, "/tmp/") {
		score += scoreTempDir
	}
	if strings.Contains(p, "/downloads/") {
		score += scoreDownloadsDir
	}
	if strings.Contains(p, "/desktop/") {
		score += scoreDesktopDir
	}
	if strings.Contains(p, "/documents/") {
		score += scoreDocumentsDir
	}
	if f.IsOriginal {
		score += scoreOriginal
	}
	return score
}
