package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is looked up in each scan root; its patterns join the
// exclude globs for that run.
const IgnoreFileName = ".scourignore"

// LoadIgnorePatterns reads the ignore file under dir, one doublestar pattern
// per line. Blank lines and # comments are skipped. A missing file is not an
// error.
func LoadIgnorePatterns(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, sc.Err()
}
