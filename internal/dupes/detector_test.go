package dupes

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varalys/scour/internal/hash"
	"github.com/varalys/scour/internal/scan"
	"github.com/varalys/scour/internal/types"
)

func writeFile(t *testing.T, dir, name string, body []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, body, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func find(t *testing.T, roots []string, opts Options) *types.DuplicateResult {
	t.Helper()
	res, err := New(opts, nil).FindDuplicates(context.Background(), roots, Control{})
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	return res
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("alpha"))
	writeFile(t, dir, "b.txt", []byte("bravo-longer"))

	res := find(t, []string{dir}, Options{MinSize: 1})
	if res.TotalGroups != 0 || len(res.Groups) != 0 {
		t.Fatalf("expected no groups, got %+v", res.Groups)
	}
	if res.WastedSpace != 0 {
		t.Fatalf("wasted space = %d", res.WastedSpace)
	}
	if res.FilesScanned != 2 {
		t.Fatalf("files scanned = %d", res.FilesScanned)
	}
}

func TestFindDuplicates_GroupsByContent(t *testing.T) {
	dir := t.TempDir()
	body := []byte("identical payload")
	oldest := writeFile(t, dir, "original.txt", body)
	copy1 := writeFile(t, dir, "copy1.txt", body)
	copy2 := writeFile(t, dir, "nested/copy2.txt", body)
	writeFile(t, dir, "unique.txt", []byte("something else!!!"))

	base := time.Now().Add(-time.Hour)
	touch(t, oldest, base)
	touch(t, copy1, base.Add(10*time.Minute))
	touch(t, copy2, base.Add(20*time.Minute))

	res := find(t, []string{dir}, Options{MinSize: 1})
	require.Equal(t, 1, res.TotalGroups)
	g := res.Groups[0]
	require.Len(t, g.Files, 3)
	require.Equal(t, int64(len(body)), g.Size)
	require.Equal(t, int64(len(body))*2, g.WastedSpace)

	// Exactly one original, the earliest-modified member, listed first.
	originals := 0
	for _, f := range g.Files {
		if f.IsOriginal {
			originals++
		}
	}
	require.Equal(t, 1, originals)
	require.True(t, g.Files[0].IsOriginal)
	require.Equal(t, oldest, g.Files[0].Path)

	require.Equal(t, 3, res.TotalFiles)
	require.Equal(t, g.WastedSpace, res.WastedSpace)
	require.Equal(t, int64(len(body))*3, res.TotalSize)
}

func TestFindDuplicates_SameSizeDifferentContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", []byte("AAAAAAAA"))
	writeFile(t, dir, "b.bin", []byte("BBBBBBBB"))

	res := find(t, []string{dir}, Options{MinSize: 1})
	if res.TotalGroups != 0 {
		t.Fatalf("equal size must not imply duplication, got %d groups", res.TotalGroups)
	}
}

func TestFindDuplicates_PartialCollisionFullDiffers(t *testing.T) {
	dir := t.TempDir()
	prefix := bytes.Repeat([]byte("p"), 64*1024)
	writeFile(t, dir, "a.bin", append(append([]byte{}, prefix...), []byte("tail-A")...))
	writeFile(t, dir, "b.bin", append(append([]byte{}, prefix...), []byte("tail-B")...))
	// A real duplicate pair of the same size to prove grouping still works.
	writeFile(t, dir, "c.bin", append(append([]byte{}, prefix...), []byte("tail-C")...))
	writeFile(t, dir, "d.bin", append(append([]byte{}, prefix...), []byte("tail-C")...))

	res := find(t, []string{dir}, Options{MinSize: 1})
	require.Equal(t, 1, res.TotalGroups, "only the byte-identical pair groups")
	require.Len(t, res.Groups[0].Files, 2)
}

func TestFindDuplicates_SortedByWastedDesc(t *testing.T) {
	dir := t.TempDir()
	small := []byte("small")
	large := bytes.Repeat([]byte("L"), 4096)
	writeFile(t, dir, "s1", small)
	writeFile(t, dir, "s2", small)
	writeFile(t, dir, "l1", large)
	writeFile(t, dir, "l2", large)
	writeFile(t, dir, "l3", large)

	res := find(t, []string{dir}, Options{MinSize: 1})
	require.Equal(t, 2, res.TotalGroups)
	require.True(t, res.Groups[0].WastedSpace > res.Groups[1].WastedSpace,
		"groups must be ordered largest waste first")
	require.Equal(t, int64(len(large))*2, res.Groups[0].WastedSpace)
}

func TestFindDuplicates_SizeRange(t *testing.T) {
	dir := t.TempDir()
	tiny := []byte("ab")
	mid := bytes.Repeat([]byte("m"), 100)
	big := bytes.Repeat([]byte("b"), 10000)
	writeFile(t, dir, "t1", tiny)
	writeFile(t, dir, "t2", tiny)
	writeFile(t, dir, "m1", mid)
	writeFile(t, dir, "m2", mid)
	writeFile(t, dir, "b1", big)
	writeFile(t, dir, "b2", big)

	res := find(t, []string{dir}, Options{MinSize: 10, MaxSize: 1000})
	require.Equal(t, 1, res.TotalGroups, "only the mid-size pair is in range")
	require.Equal(t, int64(100), res.Groups[0].Size)
}

func TestFindDuplicates_EmptyFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "e1", nil)
	writeFile(t, dir, "e2", nil)

	res := find(t, []string{dir}, Options{MinSize: 1})
	if res.TotalGroups != 0 {
		t.Fatal("empty files must not be reported as duplicates")
	}
}

func TestFindDuplicates_MultipleRoots(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	body := []byte("cross-root duplicate")
	writeFile(t, dirA, "a.txt", body)
	writeFile(t, dirB, "b.txt", body)

	res := find(t, []string{dirA, dirB}, Options{MinSize: 1})
	require.Equal(t, 1, res.TotalGroups)
	require.Len(t, res.Groups[0].Files, 2)
}

func TestFindDuplicates_ExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	body := []byte("duplicated content")
	writeFile(t, dir, "keep1.txt", body)
	writeFile(t, dir, "keep2.txt", body)
	writeFile(t, dir, "skip.tmp", body)

	res := find(t, []string{dir}, Options{MinSize: 1, ExcludeGlobs: []string{"*.tmp"}})
	require.Equal(t, 1, res.TotalGroups)
	require.Len(t, res.Groups[0].Files, 2)
	for _, f := range res.Groups[0].Files {
		require.NotContains(t, f.Path, "skip.tmp")
	}
}

func TestFindDuplicates_Cancellation(t *testing.T) {
	dir := t.TempDir()
	body := []byte("payload")
	for _, n := range []string{"a", "b", "c", "d"} {
		writeFile(t, dir, n, body)
	}

	calls := 0
	ctl := Control{Checkpoint: func() error {
		calls++
		if calls > 2 {
			return scan.ErrCancelled
		}
		return nil
	}}
	_, err := New(Options{MinSize: 1}, nil).FindDuplicates(context.Background(), []string{dir}, ctl)
	if !errors.Is(err, scan.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestFindDuplicates_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{MinSize: 1}, nil).FindDuplicates(ctx, []string{dir}, Control{})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestFindDuplicates_ProgressPhases(t *testing.T) {
	dir := t.TempDir()
	body := []byte("phase test payload")
	writeFile(t, dir, "a", body)
	writeFile(t, dir, "b", body)

	var reports []Progress
	ctl := Control{OnProgress: func(p Progress) { reports = append(reports, p) }}
	_, err := New(Options{MinSize: 1}, nil).FindDuplicates(context.Background(), []string{dir}, ctl)
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	seen := map[Phase]bool{}
	last := -1.0
	for _, p := range reports {
		seen[p.Phase] = true
		require.GreaterOrEqual(t, p.Percent, last, "percent must never move backwards")
		last = p.Percent
	}
	for _, want := range []Phase{PhaseScanning, PhaseSizeGrouping, PhaseHashing, PhaseFinalizing} {
		require.True(t, seen[want], "missing phase %s", want)
	}
	require.Equal(t, 100.0, reports[len(reports)-1].Percent)
}

func TestFindDuplicates_ReusesWarmCalculator(t *testing.T) {
	dir := t.TempDir()
	body := []byte("cache reuse payload")
	writeFile(t, dir, "a", body)
	writeFile(t, dir, "b", body)

	d := New(Options{MinSize: 1, UseCache: true}, nil)
	_, err := d.FindDuplicates(context.Background(), []string{dir}, Control{})
	require.NoError(t, err)
	require.NotZero(t, d.Calculator().CacheLen(), "full hashes should populate the cache")

	// Second run over unchanged files serves hashes from cache.
	res, err := d.FindDuplicates(context.Background(), []string{dir}, Control{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalGroups)
}

func TestFindDuplicates_HashTimeoutSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	body := bytes.Repeat([]byte("t"), 4096)
	writeFile(t, dir, "a.bin", body)
	writeFile(t, dir, "b.bin", body)

	// Both files exceed the tiny threshold and the budget expires before the
	// first read, so every full hash fails. The run must count them skipped
	// and finish cleanly, not abort.
	calc := hash.NewWithOptions(hash.Options{
		CacheDisabled:      true,
		LargeFileThreshold: 1,
		Timeout:            time.Nanosecond,
	})
	res, err := New(Options{MinSize: 1}, calc).FindDuplicates(context.Background(), []string{dir}, Control{})
	require.NoError(t, err)
	require.Equal(t, 0, res.TotalGroups)
	require.Equal(t, uint64(2), res.FilesSkipped)
}
