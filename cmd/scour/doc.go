// Package scour provides the command-line interface for the scour tool.
// It configures subcommands (scan, compare, cache, history, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/scour/cmd/scour"
//	func main() { scour.Execute() }
package scour
