// Package dupes implements content-addressed duplicate detection. Candidate
// files are bucketed by exact size, pre-filtered by a partial hash of their
// first 64 KiB, and only files still colliding pay for a full SHA-256 read.
// Control (pause/cancel) and progress are injected, so the pipeline runs
// under the scan manager or standalone in tests.
package dupes
