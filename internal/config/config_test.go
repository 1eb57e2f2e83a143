package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("root.layout", []string{"alice.pub"}, "links/")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LayoutPath != "root.layout" {
		t.Errorf("LayoutPath = %q", cfg.LayoutPath)
	}
	if cfg.MaxRecursionDepth != DefaultMaxRecursionDepth {
		t.Errorf("MaxRecursionDepth = %d, want %d", cfg.MaxRecursionDepth, DefaultMaxRecursionDepth)
	}
	if cfg.StrictQueues || cfg.FailOnCommandMismatch || cfg.PersistInspectionLinks {
		t.Errorf("expected every policy knob off by default, got %+v", cfg)
	}
	wantConfigDir := filepath.Join(home, DefaultConfigDir)
	if cfg.ConfigDir != wantConfigDir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, wantConfigDir)
	}
	if _, err := os.Stat(wantConfigDir); err != nil {
		t.Errorf("expected config dir to be created: %v", err)
	}
}

func TestLoadAppliesOptions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("root.layout", nil, ".",
		WithStrictQueues(true),
		WithFailOnCommandMismatch(true),
		WithPersistInspectionLinks(true),
		WithMaxRecursionDepth(3),
		WithLogPath("/tmp/custom.jsonl"),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.StrictQueues || !cfg.FailOnCommandMismatch || !cfg.PersistInspectionLinks {
		t.Errorf("expected every policy knob enabled, got %+v", cfg)
	}
	if cfg.MaxRecursionDepth != 3 {
		t.Errorf("MaxRecursionDepth = %d, want 3", cfg.MaxRecursionDepth)
	}
	if cfg.LogPath != "/tmp/custom.jsonl" {
		t.Errorf("LogPath = %q", cfg.LogPath)
	}
}
