package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/goflatpak/flatpak"
	"github.com/blackwell-systems/goflatpak/internal/config"
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/native/libflatpak"
	"github.com/blackwell-systems/goflatpak/internal/nativesim"
	"github.com/blackwell-systems/goflatpak/internal/output"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

// session is the client and installation one command works on.
type session struct {
	client *flatpak.Client
	inst   *flatpak.Installation
	closer func() error
}

func (s *session) Close() error {
	if s.inst != nil {
		s.inst.Release()
	}
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if simDBPath != "" {
		cfg.SimDB = simDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLibrary loads the native backend named by cfg.
func openLibrary(cfg *config.Config) (native.Library, func() error, error) {
	switch cfg.Backend {
	case config.BackendSim:
		if err := os.MkdirAll(filepath.Dir(cfg.SimDB), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create simulator directory: %w", err)
		}
		st, err := store.Open(cfg.SimDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open simulator database: %w", err)
		}
		sim, err := nativesim.New(st)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("failed to start simulator: %w", err)
		}
		return sim, st.Close, nil
	default:
		lib, err := libflatpak.Open(cfg.Library)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open native library: %w", err)
		}
		return lib, lib.Close, nil
	}
}

// newClient opens the configured backend and wraps it in a client logging
// to the command's stderr.
func newClient(cmd *cobra.Command) (*flatpak.Client, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	policy, err := flatpak.ParseErrorPolicy(cfg.OperationErrors)
	if err != nil {
		return nil, nil, err
	}
	lib, closer, err := openLibrary(cfg)
	if err != nil {
		return nil, nil, err
	}

	level := output.LevelWarn
	if verbose {
		level = output.LevelDebug
	}
	c := flatpak.New(lib,
		flatpak.WithLogger(output.NewLogger(cmd.ErrOrStderr(), level)),
		flatpak.WithProgressInterval(cfg.ProgressInterval),
		flatpak.WithErrorPolicy(policy),
	)
	return c, closer, nil
}

// openSession opens the client and the installation chosen by --user and
// --installation.
func openSession(cmd *cobra.Command) (*session, error) {
	c, closer, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	s := &session{client: c, closer: closer}

	ctx := cmd.Context()
	switch {
	case installationPath != "":
		s.inst, err = c.InstallationForPath(ctx, installationPath, useUser)
	case useUser:
		s.inst, err = c.UserInstallation(ctx)
	default:
		s.inst, err = c.SystemInstallation(ctx)
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open installation: %w", err)
	}
	return s, nil
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}

// resolveRef turns a command-line ref into a full ref. A bare application
// ID becomes app/ID/ARCH/stable for the default arch.
func resolveRef(c *flatpak.Client, arg string) (string, error) {
	if !strings.Contains(arg, "/") {
		arch, err := c.DefaultArch()
		if err != nil {
			return "", err
		}
		arg = "app/" + arg + "/" + arch + "/stable"
	}
	ref, err := c.ParseRef(arg)
	if err != nil {
		return "", err
	}
	defer ref.Release()
	return ref.Format()
}

// deref returns the value of an optional string, or "" when it is unset
// or the accessor failed.
func deref(s *string, err error) string {
	if err != nil || s == nil {
		return ""
	}
	return *s
}
