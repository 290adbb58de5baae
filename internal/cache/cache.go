// Package cache persists the hash cache and the last scan result between
// runs. Entries are only ever reused after an mtime/size freshness check, so
// a stale file on disk can slow a scan down but never corrupt one.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/varalys/scour/internal/hash"
)

// Entry is one persisted hash, valid only while the file's observed mtime
// and size still match.
type Entry struct {
	Hash    string `json:"hash"`
	ModTime int64  `json:"mtime_ns"` // unix nanoseconds
	Size    int64  `json:"size"`
}

// DB is the on-disk hash cache shape. Checksum is an xxhash over the
// serialized entries; a mismatch on load discards the file rather than
// seeding the calculator with garbage.
type DB struct {
	Entries  map[string]Entry `json:"entries"`
	Checksum string           `json:"checksum,omitempty"`
}

const hashCacheFile = "hashcache.json"

func cacheDir() string {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, "scour")
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "scour")
}

func entriesChecksum(entries map[string]Entry) (string, error) {
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), nil
}

// Load reads the persisted hash cache. A missing, unreadable, or
// checksum-mismatched file yields an empty DB.
func Load() (DB, error) {
	db := DB{Entries: map[string]Entry{}}
	dir := cacheDir()
	if dir == "" {
		return db, errors.New("no cache dir")
	}
	b, err := os.ReadFile(filepath.Join(dir, hashCacheFile))
	if err != nil {
		return db, err
	}
	var loaded DB
	if err := json.Unmarshal(b, &loaded); err != nil {
		return db, err
	}
	if loaded.Entries == nil {
		loaded.Entries = map[string]Entry{}
	}
	if loaded.Checksum != "" {
		sum, err := entriesChecksum(loaded.Entries)
		if err != nil || sum != loaded.Checksum {
			return db, errors.New("hash cache checksum mismatch")
		}
	}
	return loaded, nil
}

// Save writes the hash cache with a fresh checksum.
func Save(db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	dir := cacheDir()
	if dir == "" {
		return errors.New("no cache dir")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	sum, err := entriesChecksum(db.Entries)
	if err != nil {
		return err
	}
	db.Checksum = sum
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(filepath.Join(dir, hashCacheFile), b, 0644)
}

// Clear removes the persisted hash cache file.
func Clear() error {
	dir := cacheDir()
	if dir == "" {
		return nil
	}
	err := os.Remove(filepath.Join(dir, hashCacheFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Warm seeds a calculator from the persisted DB.
func Warm(db DB, calc *hash.Calculator) {
	for path, e := range db.Entries {
		calc.Seed(path, e.Hash, time.Unix(0, e.ModTime), e.Size)
	}
}

// Collect drains a calculator's cache into a DB for persistence.
func Collect(calc *hash.Calculator) DB {
	db := DB{Entries: map[string]Entry{}}
	calc.Export(func(path, h string, modTime time.Time, size int64) {
		db.Entries[path] = Entry{Hash: h, ModTime: modTime.UnixNano(), Size: size}
	})
	return db
}
