// Package core provides a small, stable facade over scour's internal
// duplicate-detection engine for external integrations. It deliberately
// re-exports a narrow API surface so other programs can depend on a stable
// import path without exposing internal implementation packages.
//
// Example:
//
//	opts := core.Options{MinSize: 1}
//	result, err := core.FindDuplicates(context.Background(), []string{"."}, opts)
//	if err != nil { /* handle */ }
//	_ = core.MarshalGroups(os.Stdout, result.Groups)
package core
