// Package config loads scour configuration from local and global YAML files
// with precedence rules. It is internal; CLI code maps flags and files into
// detector and filter options.
package config
