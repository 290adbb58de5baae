// Package scan provides the lifecycle engine for background scans: a generic
// manager keyed by opaque scan ids, with cooperative pause/resume/cancel,
// throttled progress publication, and terminal result retrieval. This package
// is internal; external consumers should use the stable facade in pkg/core.
package scan
