package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	chunkSize   = 64 * 1024
	partialSize = 64 * 1024

	// DefaultCacheSize bounds the LRU cache.
	DefaultCacheSize = 1000
	// DefaultTimeout is the hashing time budget for large files.
	DefaultTimeout = 30 * time.Second
	// DefaultLargeFileThreshold is the size above which the budget applies.
	DefaultLargeFileThreshold = 100 * 1024 * 1024
)

// ErrTimeout is returned when hashing a file exceeds its time budget. The
// offending file is excluded from a run; the run itself continues.
var ErrTimeout = errors.New("hash calculation timed out")

// Result carries a computed hash and what was read to produce it.
type Result struct {
	Hash           string
	Partial        bool
	BytesProcessed int64
}

type cachedHash struct {
	hash    string
	modTime time.Time
	size    int64
}

// Options configures a Calculator. The zero value means defaults with the
// cache enabled.
type Options struct {
	CacheDisabled bool
	CacheSize     int
	Timeout       time.Duration
	// LargeFileThreshold is the file size above which Timeout applies.
	// Zero means DefaultLargeFileThreshold.
	LargeFileThreshold int64
}

// Calculator hashes file content. A Calculator is safe for concurrent use;
// the cache carries its own lock and correctness never depends on it, only
// on the mtime/size check before any cached hash is reused.
type Calculator struct {
	cache          *lru.Cache[string, cachedHash]
	cacheEnabled   bool
	timeout        time.Duration
	largeThreshold int64
}

// New returns a Calculator with default cache size and timeout.
func New() *Calculator {
	return NewWithOptions(Options{})
}

// NewWithOptions returns a configured Calculator.
func NewWithOptions(opts Options) *Calculator {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	threshold := opts.LargeFileThreshold
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}
	cache, _ := lru.New[string, cachedHash](size)
	return &Calculator{
		cache:          cache,
		cacheEnabled:   !opts.CacheDisabled,
		timeout:        timeout,
		largeThreshold: threshold,
	}
}

// FileHash streams the whole file through SHA-256 in 64 KiB chunks. A cached
// hash is reused only while the file's observed mtime and size still match.
// Files above the large-file threshold run under the configured time budget
// and fail with ErrTimeout instead of blocking indefinitely.
func (c *Calculator) FileHash(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, err
	}
	modTime := info.ModTime()
	size := info.Size()

	if c.cacheEnabled {
		if cached, ok := c.cache.Get(path); ok {
			if cached.modTime.Equal(modTime) && cached.size == size {
				return Result{Hash: cached.hash, BytesProcessed: size}, nil
			}
			// Stale: the file changed since it was hashed.
			c.cache.Remove(path)
		}
	}

	var deadline time.Time
	if size > c.largeThreshold {
		deadline = time.Now().Add(c.timeout)
	}

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{}, fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		n, err := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if c.cacheEnabled {
		c.cache.Add(path, cachedHash{hash: sum, modTime: modTime, size: size})
	}
	return Result{Hash: sum, BytesProcessed: total}, nil
}

// PartialHash hashes only the first 64 KiB. It is a pre-filter: equal
// partial hashes are never taken as proof of equality.
func (c *Calculator) PartialHash(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := io.CopyN(hasher, f, partialSize)
	if err != nil && err != io.EOF {
		return Result{}, err
	}
	return Result{
		Hash:           hex.EncodeToString(hasher.Sum(nil)),
		Partial:        true,
		BytesProcessed: n,
	}, nil
}

// QuickCompare reports whether two files have identical content, comparing
// sizes, then partial hashes, then full hashes. It short-circuits so
// dissimilar files never pay for a full read.
func (c *Calculator) QuickCompare(ctx context.Context, a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	partialA, err := c.PartialHash(a)
	if err != nil {
		return false, err
	}
	partialB, err := c.PartialHash(b)
	if err != nil {
		return false, err
	}
	if partialA.Hash != partialB.Hash {
		return false, nil
	}

	fullA, err := c.FileHash(ctx, a)
	if err != nil {
		return false, err
	}
	fullB, err := c.FileHash(ctx, b)
	if err != nil {
		return false, err
	}
	return fullA.Hash == fullB.Hash, nil
}

// ClearCache drops every cached hash.
func (c *Calculator) ClearCache() { c.cache.Purge() }

// CacheLen returns the number of cached entries.
func (c *Calculator) CacheLen() int { return c.cache.Len() }

// Seed inserts a known hash for path, used to warm the cache from the
// persisted store. The entry still only serves while mtime and size match.
func (c *Calculator) Seed(path, hash string, modTime time.Time, size int64) {
	if c.cacheEnabled {
		c.cache.Add(path, cachedHash{hash: hash, modTime: modTime, size: size})
	}
}

// Export calls fn for every cached entry, oldest first.
func (c *Calculator) Export(fn func(path, hash string, modTime time.Time, size int64)) {
	for _, key := range c.cache.Keys() {
		if v, ok := c.cache.Peek(key); ok {
			fn(key, v.hash, v.modTime, v.size)
		}
	}
}
