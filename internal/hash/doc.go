// Package hash computes SHA-256 content hashes for the duplicate pipeline:
// cheap 64 KiB partial hashes as a pre-filter, streamed full hashes under a
// time budget, and an LRU cache validated against file mtime and size.
package hash
