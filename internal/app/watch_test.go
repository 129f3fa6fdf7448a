package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatchCommand(t *testing.T) {
	if watchCmd.Use != "watch" {
		t.Errorf("expected Use to be 'watch', got '%s'", watchCmd.Use)
	}
	if watchCmd.Args == nil {
		t.Error("expected Args validation to be set")
	}
}

// cancelOnOutput cancels the command's context once its output contains
// marker.
type cancelOnOutput struct {
	bytes.Buffer
	marker string
	cancel context.CancelFunc
}

func (w *cancelOnOutput) Write(p []byte) (int, error) {
	n, err := w.Buffer.Write(p)
	if strings.Contains(w.String(), w.marker) {
		w.cancel()
	}
	return n, err
}

func TestWatchStopsWithContext(t *testing.T) {
	db := seedDB(t, nil)
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := time.AfterFunc(30*time.Second, cancel)
	defer stop.Stop()

	resetFlags(RootCmd)
	stdout := &cancelOnOutput{marker: "Watching " + root, cancel: cancel}
	var stderr bytes.Buffer
	RootCmd.SetOut(stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs([]string{"--backend", "sim", "--sim-db", db, "--installation", root, "watch"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("watch error: %v (stderr %q)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Watching "+root) {
		t.Errorf("watch output = %q", stdout.String())
	}
}

func TestWatchMissingInstallation(t *testing.T) {
	db := seedDB(t, nil)
	missing := filepath.Join(t.TempDir(), "gone")

	_, _, err := runCLI(t, db, "--installation", missing, "watch")
	if err == nil {
		t.Error("watching a missing installation should fail")
	}
}
