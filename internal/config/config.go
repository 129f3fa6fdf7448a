// Package config loads goflatpak settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backends accepted by GOFLATPAK_BACKEND.
const (
	BackendLibflatpak = "libflatpak"
	BackendSim        = "sim"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Dir returns the goflatpak config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/goflatpak if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "goflatpak"), nil
}

// Config holds the settings shared by the CLI and embedding programs.
type Config struct {
	// Backend selects the native library: the real libflatpak or the
	// SQLite-backed simulator.
	Backend string `env:"GOFLATPAK_BACKEND" envDefault:"libflatpak"`
	// Library is the soname or path dlopen'd by the libflatpak backend.
	Library string `env:"GOFLATPAK_LIBRARY" envDefault:"libflatpak.so.0"`
	// SimDB is the simulator database. Empty means sim.db under Dir.
	SimDB            string        `env:"GOFLATPAK_SIM_DB"`
	ProgressInterval time.Duration `env:"GOFLATPAK_PROGRESS_INTERVAL" envDefault:"150ms"`
	// OperationErrors is the default transaction error policy, abort or
	// continue.
	OperationErrors string `env:"GOFLATPAK_OPERATION_ERRORS" envDefault:"abort"`
}

// Load parses the environment and fills in derived defaults. The result is
// not validated.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SimDB == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		cfg.SimDB = filepath.Join(dir, "sim.db")
	}
	return &cfg, nil
}

// Validate checks every field. Call it again after applying overrides.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLibflatpak:
		if c.Library == "" {
			return fmt.Errorf("%w: library path is empty", ErrInvalid)
		}
	case BackendSim:
		if c.SimDB == "" {
			return fmt.Errorf("%w: simulator database path is empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q (want %s or %s)", ErrInvalid, c.Backend, BackendLibflatpak, BackendSim)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("%w: progress interval must be positive, got %s", ErrInvalid, c.ProgressInterval)
	}
	if c.OperationErrors != "abort" && c.OperationErrors != "continue" {
		return fmt.Errorf("%w: operation error policy %q (want abort or continue)", ErrInvalid, c.OperationErrors)
	}
	return nil
}
