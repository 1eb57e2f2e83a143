// Package config resolves the verifier's runtime settings: the required
// layout/link locations plus the policy knobs the orchestrator's open
// questions left configurable.
package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir = ".chainverify"
	DefaultLogFile   = "audit.jsonl"

	// DefaultMaxRecursionDepth bounds sublayout nesting when unset.
	DefaultMaxRecursionDepth = 8
)

// Config is the resolved set of inputs one verification run needs.
type Config struct {
	LayoutPath    string
	OwnerKeyPaths []string
	LinkDir       string
	WorkDir       string
	LogPath       string
	ConfigDir     string

	// StrictQueues requires every step's material/product queues to be
	// fully drained by the end of their rule list. Off by default: many
	// real layouts intentionally leave artifacts unconsumed.
	StrictQueues bool

	// FailOnCommandMismatch turns an expected_command/actual command
	// mismatch into a hard verification failure instead of a logged
	// warning. Off by default to match existing layouts that drifted
	// from their recorded command without anyone treating it as a
	// compromise.
	FailOnCommandMismatch bool

	// PersistInspectionLinks writes each inspection's synthesized link to
	// LinkDir, the same as a step's link would be filed.
	PersistInspectionLinks bool

	MaxRecursionDepth int
}

// Option mutates a Config during Load, letting CLI flags override only
// the settings a given invocation actually set.
type Option func(*Config)

func WithStrictQueues(v bool) Option          { return func(c *Config) { c.StrictQueues = v } }
func WithFailOnCommandMismatch(v bool) Option { return func(c *Config) { c.FailOnCommandMismatch = v } }
func WithPersistInspectionLinks(v bool) Option {
	return func(c *Config) { c.PersistInspectionLinks = v }
}
func WithMaxRecursionDepth(n int) Option { return func(c *Config) { c.MaxRecursionDepth = n } }
func WithWorkDir(dir string) Option      { return func(c *Config) { c.WorkDir = dir } }
func WithLogPath(path string) Option     { return func(c *Config) { c.LogPath = path } }

// Load resolves a Config from the required layout path, owner key paths
// and link directory, applying defaults for everything else, then any
// opts on top.
func Load(layoutPath string, ownerKeyPaths []string, linkDir string, opts ...Option) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	cfg := &Config{
		LayoutPath:        layoutPath,
		OwnerKeyPaths:     ownerKeyPaths,
		LinkDir:           linkDir,
		WorkDir:           wd,
		ConfigDir:         configDir,
		LogPath:           filepath.Join(configDir, DefaultLogFile),
		MaxRecursionDepth: DefaultMaxRecursionDepth,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg, nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}
