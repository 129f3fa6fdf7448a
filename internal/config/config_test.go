package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDir_XDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if want := filepath.Join(base, "goflatpak"); dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestDir_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "goflatpak"); dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendLibflatpak {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendLibflatpak)
	}
	if cfg.Library != "libflatpak.so.0" {
		t.Errorf("Library = %q", cfg.Library)
	}
	if want := filepath.Join(base, "goflatpak", "sim.db"); cfg.SimDB != want {
		t.Errorf("SimDB = %q, want %q", cfg.SimDB, want)
	}
	if cfg.ProgressInterval != 150*time.Millisecond {
		t.Errorf("ProgressInterval = %s, want 150ms", cfg.ProgressInterval)
	}
	if cfg.OperationErrors != "abort" {
		t.Errorf("OperationErrors = %q, want abort", cfg.OperationErrors)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	db := filepath.Join(t.TempDir(), "state.db")
	t.Setenv("GOFLATPAK_BACKEND", "sim")
	t.Setenv("GOFLATPAK_SIM_DB", db)
	t.Setenv("GOFLATPAK_PROGRESS_INTERVAL", "2s")
	t.Setenv("GOFLATPAK_OPERATION_ERRORS", "continue")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendSim || cfg.SimDB != db {
		t.Errorf("Backend/SimDB = %q/%q", cfg.Backend, cfg.SimDB)
	}
	if cfg.ProgressInterval != 2*time.Second {
		t.Errorf("ProgressInterval = %s, want 2s", cfg.ProgressInterval)
	}
	if cfg.OperationErrors != "continue" {
		t.Errorf("OperationErrors = %q, want continue", cfg.OperationErrors)
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("GOFLATPAK_PROGRESS_INTERVAL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Backend:          BackendLibflatpak,
			Library:          "libflatpak.so.0",
			SimDB:            "/tmp/sim.db",
			ProgressInterval: time.Second,
			OperationErrors:  "abort",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"sim backend", func(c *Config) { c.Backend = BackendSim }, true},
		{"continue policy", func(c *Config) { c.OperationErrors = "continue" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "dbus" }, false},
		{"empty library", func(c *Config) { c.Library = "" }, false},
		{"empty sim db", func(c *Config) { c.Backend = BackendSim; c.SimDB = "" }, false},
		{"zero interval", func(c *Config) { c.ProgressInterval = 0 }, false},
		{"negative interval", func(c *Config) { c.ProgressInterval = -time.Second }, false},
		{"unknown policy", func(c *Config) { c.OperationErrors = "ignore" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}
