// Package walker implements filtered, lazy directory traversal. A FileFilter
// strategy decides which entries participate; the Walker drives a depth-first
// walk that prunes excluded directories and skips unreadable entries without
// aborting the traversal.
package walker
