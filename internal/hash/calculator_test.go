package hash

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, body []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, body, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileHash_MatchesReference(t *testing.T) {
	dir := t.TempDir()
	body := []byte("hello duplicate world")
	p := writeFile(t, dir, "f.txt", body)

	c := New()
	res, err := c.FileHash(context.Background(), p)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	sum := sha256.Sum256(body)
	if res.Hash != hex.EncodeToString(sum[:]) {
		t.Fatalf("hash mismatch: %s", res.Hash)
	}
	if res.Partial {
		t.Fatal("full hash must not be marked partial")
	}
	if res.BytesProcessed != int64(len(body)) {
		t.Fatalf("bytes processed = %d", res.BytesProcessed)
	}
}

func TestFileHash_MultiChunk(t *testing.T) {
	dir := t.TempDir()
	body := bytes.Repeat([]byte("x"), chunkSize*3+17)
	p := writeFile(t, dir, "big.bin", body)

	c := New()
	res, err := c.FileHash(context.Background(), p)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	sum := sha256.Sum256(body)
	if res.Hash != hex.EncodeToString(sum[:]) {
		t.Fatal("multi-chunk hash differs from single-pass reference")
	}
}

func TestFileHash_CacheHitAndInvalidation(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "f.txt", []byte("version one"))

	c := New()
	first, err := c.FileHash(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, c.CacheLen())

	// Unchanged file: cache serves the same hash.
	again, err := c.FileHash(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, first.Hash, again.Hash)

	// Same size, different content, new mtime: the stale entry must not
	// be served.
	require.NoError(t, os.WriteFile(p, []byte("version two"), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(p, future, future))

	changed, err := c.FileHash(context.Background(), p)
	require.NoError(t, err)
	require.NotEqual(t, first.Hash, changed.Hash, "stale cached hash served after modification")
}

func TestFileHash_CacheDisabled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "f.txt", []byte("content"))

	c := NewWithOptions(Options{CacheDisabled: true})
	if _, err := c.FileHash(context.Background(), p); err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	if c.CacheLen() != 0 {
		t.Fatalf("disabled cache stored %d entries", c.CacheLen())
	}
}

func TestFileHash_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "f.txt", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New()
	if _, err := c.FileHash(ctx, p); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestFileHash_TimeoutOverLargeFileThreshold(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "big.bin", bytes.Repeat([]byte("x"), 1024))

	// A 1 KiB file over a 16-byte threshold with a 1ns budget: the deadline
	// expires before the first chunk is read.
	c := NewWithOptions(Options{
		CacheDisabled:      true,
		LargeFileThreshold: 16,
		Timeout:            time.Nanosecond,
	})
	_, err := c.FileHash(context.Background(), p)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestFileHash_NoBudgetUnderThreshold(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "small.bin", []byte("under the limit"))

	// Files at or below the threshold never run under the time budget.
	c := NewWithOptions(Options{
		CacheDisabled:      true,
		LargeFileThreshold: 1 << 20,
		Timeout:            time.Nanosecond,
	})
	res, err := c.FileHash(context.Background(), p)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hash)
}

func TestFileHash_MissingFile(t *testing.T) {
	c := New()
	if _, err := c.FileHash(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPartialHash_OnlyReadsPrefix(t *testing.T) {
	dir := t.TempDir()
	prefix := bytes.Repeat([]byte("p"), partialSize)
	a := writeFile(t, dir, "a.bin", append(append([]byte{}, prefix...), []byte("tail-A")...))
	b := writeFile(t, dir, "b.bin", append(append([]byte{}, prefix...), []byte("tail-B")...))

	c := New()
	ra, err := c.PartialHash(a)
	require.NoError(t, err)
	rb, err := c.PartialHash(b)
	require.NoError(t, err)

	require.True(t, ra.Partial)
	require.Equal(t, int64(partialSize), ra.BytesProcessed)
	// Same first 64 KiB: partial hashes collide even though content differs.
	require.Equal(t, ra.Hash, rb.Hash)

	fa, err := c.FileHash(context.Background(), a)
	require.NoError(t, err)
	fb, err := c.FileHash(context.Background(), b)
	require.NoError(t, err)
	require.NotEqual(t, fa.Hash, fb.Hash, "full hashes must see the differing tails")
}

func TestPartialHash_ShortFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "short.txt", []byte("tiny"))

	c := New()
	res, err := c.PartialHash(p)
	if err != nil {
		t.Fatalf("PartialHash: %v", err)
	}
	if res.BytesProcessed != 4 {
		t.Fatalf("bytes processed = %d", res.BytesProcessed)
	}
}

func TestQuickCompare(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", []byte("same bytes"))
	b := writeFile(t, dir, "b.txt", []byte("same bytes"))
	cFile := writeFile(t, dir, "c.txt", []byte("diff bytes"))
	d := writeFile(t, dir, "d.txt", []byte("longer different content"))

	calc := New()
	ctx := context.Background()

	same, err := calc.QuickCompare(ctx, a, b)
	require.NoError(t, err)
	require.True(t, same)

	same, err = calc.QuickCompare(ctx, a, cFile)
	require.NoError(t, err)
	require.False(t, same, "same size, different content")

	same, err = calc.QuickCompare(ctx, a, d)
	require.NoError(t, err)
	require.False(t, same, "different sizes")

	_, err = calc.QuickCompare(ctx, a, filepath.Join(dir, "absent"))
	require.Error(t, err)
}

func TestSeedAndExport(t *testing.T) {
	c := New()
	mod := time.Now().Truncate(time.Second)
	c.Seed("/some/path", "abc123", mod, 42)

	var got int
	c.Export(func(path, hash string, modTime time.Time, size int64) {
		got++
		if path != "/some/path" || hash != "abc123" || size != 42 || !modTime.Equal(mod) {
			t.Fatalf("exported entry mismatch: %s %s %v %d", path, hash, modTime, size)
		}
	})
	if got != 1 {
		t.Fatalf("exported %d entries", got)
	}

	c.ClearCache()
	if c.CacheLen() != 0 {
		t.Fatal("ClearCache left entries behind")
	}
}

func TestSeededHashServedWhileFresh(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "f.txt", []byte("content"))
	info, err := os.Stat(p)
	require.NoError(t, err)

	c := New()
	c.Seed(p, "seeded-not-a-real-hash", info.ModTime(), info.Size())

	res, err := c.FileHash(context.Background(), p)
	require.NoError(t, err)
	// Freshness matches, so the seeded value is trusted without a read.
	require.Equal(t, "seeded-not-a-real-hash", res.Hash)
}
