package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/config"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "goflatpak" {
		t.Errorf("expected Use to be 'goflatpak', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{
		"list", "info", "remotes", "remote-add", "remote-delete", "remote-ls",
		"install", "uninstall", "update", "ps", "watch",
	}
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"backend", "sim-db", "user", "installation", "verbose"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestCommandsHaveHelp(t *testing.T) {
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		if cmd.Short == "" || cmd.Long == "" || cmd.Example == "" {
			t.Errorf("command %s is missing Short, Long or Example", cmd.Name())
		}
		if cmd.RunE == nil {
			t.Errorf("command %s has no RunE", cmd.Name())
		}
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(RootCmd)

	backendName = "sim"
	simDBPath = "/tmp/override.db"
	t.Cleanup(func() { resetFlags(RootCmd) })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Backend != config.BackendSim {
		t.Errorf("Backend = %q, want sim", cfg.Backend)
	}
	if cfg.SimDB != "/tmp/override.db" {
		t.Errorf("SimDB = %q", cfg.SimDB)
	}

	backendName = "dbus"
	if _, err := loadConfig(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("loadConfig() with bad backend error = %v, want ErrInvalid", err)
	}
}

func TestUserAndInstallationAreExclusive(t *testing.T) {
	db := seedDB(t, nil)
	_, _, err := runCLI(t, db, "list", "--user", "--installation", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "none of the others") {
		t.Errorf("expected mutually exclusive flag error, got %v", err)
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	db := seedDB(t, nil)
	_, _, err := runCLI(t, db, "remots")
	if err == nil || !strings.Contains(err.Error(), "remotes") {
		t.Errorf("expected suggestion for remotes, got %v", err)
	}
}
