package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for scour. All fields
// are pointers so absent values never shadow CLI flags.
type FileConfig struct {
	MinSize       *int64  `yaml:"min_size"`
	MaxSize       *int64  `yaml:"max_size"`
	IncludeHidden *bool   `yaml:"include_hidden"`
	IncludeSystem *bool   `yaml:"include_system"`
	Exclude       *string `yaml:"exclude"`       // comma-separated path prefixes
	ExcludeGlobs  *string `yaml:"exclude_globs"` // comma-separated doublestar patterns
	Threads       *int    `yaml:"threads"`
	NoColor       *bool   `yaml:"no_color"`
	UseCache      *bool   `yaml:"use_cache"`
	CacheSize     *int    `yaml:"cache_size"`
	HashTimeout   *string `yaml:"hash_timeout"` // duration string, e.g. "30s"
	ProgressEvery *int    `yaml:"progress_every"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given directory. It supports
// .scour.yml/.yaml and scour.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".scour.yml", ".scour.yaml", "scour.yml", "scour.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "scour", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}
