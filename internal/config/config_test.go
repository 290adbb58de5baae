package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "scour.yaml",
		"min_size: 1024\nthreads: 4\ninclude_hidden: true\nhash_timeout: 5s\nexclude_globs: \"*.tmp,*.bak\"\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.MinSize == nil || *cfg.MinSize != 1024 {
		t.Fatalf("expected min_size=1024, got %#v", cfg.MinSize)
	}
	if cfg.Threads == nil || *cfg.Threads != 4 {
		t.Fatalf("expected threads=4, got %#v", cfg.Threads)
	}
	if cfg.IncludeHidden == nil || *cfg.IncludeHidden != true {
		t.Fatalf("expected include_hidden=true")
	}
	if cfg.HashTimeout == nil || *cfg.HashTimeout != "5s" {
		t.Fatalf("expected hash_timeout=5s, got %#v", cfg.HashTimeout)
	}
	if cfg.ExcludeGlobs == nil || *cfg.ExcludeGlobs != "*.tmp,*.bak" {
		t.Fatalf("expected exclude_globs, got %#v", cfg.ExcludeGlobs)
	}
}

func TestLoadFile_AbsentFieldsStayNil(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "scour.yaml", "threads: 2\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.MinSize != nil || cfg.IncludeHidden != nil || cfg.UseCache != nil {
		t.Fatalf("absent fields must stay nil: %#v", cfg)
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "scour.yml", "threads: 1\n")
	writeTemp(t, dir, ".scour.yml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .scour.yml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "scour")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(cfgDir, "config.yml")
	if err := os.WriteFile(p, []byte("threads: 9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}
