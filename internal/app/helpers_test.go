package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/goflatpak/internal/nativesim"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

const (
	appRef     = "app/org.example.App/x86_64/stable"
	runtimeRef = "runtime/org.example.Platform/x86_64/23.08"
	localeRef  = "runtime/org.example.App.Locale/x86_64/stable"
)

// seedDB creates a simulator database in a temp dir, lets seed fill it and
// closes it again so the command under test is its only user.
func seedDB(t *testing.T, seed func(sim *nativesim.Sim) error) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "sim.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	sim, err := nativesim.New(st)
	if err != nil {
		t.Fatalf("failed to create sim: %v", err)
	}
	if seed != nil {
		if err := seed(sim); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}
	return path
}

// seedCatalog publishes an application, its runtime and a locale extension
// on flathub.
func seedCatalog(sim *nativesim.Sim) error {
	steps := []func() error{
		func() error { return sim.AddRemote("default", "flathub", "https://dl.flathub.org/repo/") },
		func() error { return sim.Publish("default", "flathub", runtimeRef, "r1", "", 100, 300) },
		func() error {
			return sim.Publish("default", "flathub", appRef, "a1", "org.example.Platform/x86_64/23.08", 10, 30)
		},
		func() error { return sim.Publish("default", "flathub", localeRef, "l1", "", 1, 2) },
		func() error { return sim.Relate("default", "flathub", appRef, localeRef, []string{"/de"}) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// resetFlags puts every flag of cmd and its subcommands back to its
// default so commands can be executed repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command against the simulator database at db.
func runCLI(t *testing.T, db string, args ...string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), db, args...)
}

func runCLIContext(t *testing.T, ctx context.Context, db string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(append([]string{"--backend", "sim", "--sim-db", db}, args...))
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
