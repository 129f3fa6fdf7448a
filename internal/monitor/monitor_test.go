package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

const testQuiet = 50 * time.Millisecond

func startMonitor(t *testing.T, root string) *Monitor {
	t.Helper()
	m, err := New(root, testQuiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.Start()
	t.Cleanup(func() { m.Stop() })
	return m
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(time.Now().String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func nextChange(t *testing.T, m *Monitor) Change {
	t.Helper()
	select {
	case c, ok := <-m.Changes():
		if !ok {
			t.Fatal("changes channel closed")
		}
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func expectQuiet(t *testing.T, m *Monitor, d time.Duration) {
	t.Helper()
	select {
	case c := <-m.Changes():
		t.Fatalf("unexpected change %v", c.Paths)
	case <-time.After(d):
	}
}

func TestNew(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope"), 0)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("New() error = %v, want ErrNotExist", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		touch(t, file)
		_, err := New(file, 0)
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("New() error = %v, want ErrNotDirectory", err)
		}
	})

	t.Run("default quiet period", func(t *testing.T) {
		m, err := New(t.TempDir(), 0)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer m.Stop()
		if m.quiet != DefaultQuiet {
			t.Errorf("quiet = %v, want %v", m.quiet, DefaultQuiet)
		}
	})
}

func TestStampChangeIsReported(t *testing.T) {
	root := t.TempDir()
	m := startMonitor(t, root)

	before := time.Now()
	touch(t, filepath.Join(root, StampFile))

	c := nextChange(t, m)
	if !slices.Equal(c.Paths, []string{StampFile}) {
		t.Errorf("Paths = %v, want [%s]", c.Paths, StampFile)
	}
	if c.Time.Before(before) {
		t.Errorf("Time %v is before the write at %v", c.Time, before)
	}
}

func TestBurstIsCoalesced(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "app"), 0o755); err != nil {
		t.Fatal(err)
	}
	m := startMonitor(t, root)

	for i := 0; i < 5; i++ {
		touch(t, filepath.Join(root, StampFile))
	}
	touch(t, filepath.Join(root, "app", "org.example.App"))

	c := nextChange(t, m)
	want := []string{StampFile, filepath.Join("app", "org.example.App")}
	if !slices.Equal(c.Paths, want) {
		t.Errorf("Paths = %v, want %v", c.Paths, want)
	}
	expectQuiet(t, m, 4*testQuiet)
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	root := t.TempDir()
	m := startMonitor(t, root)

	touch(t, filepath.Join(root, "repo-lock"))
	if err := os.Mkdir(filepath.Join(root, "repo"), 0o755); err != nil {
		t.Fatal(err)
	}
	expectQuiet(t, m, 4*testQuiet)
}

func TestCreatedDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	m := startMonitor(t, root)

	if err := os.Mkdir(filepath.Join(root, "runtime"), 0o755); err != nil {
		t.Fatal(err)
	}
	c := nextChange(t, m)
	if !slices.Equal(c.Paths, []string{"runtime"}) {
		t.Fatalf("Paths = %v, want [runtime]", c.Paths)
	}

	touch(t, filepath.Join(root, "runtime", "org.example.Platform"))
	c = nextChange(t, m)
	want := []string{filepath.Join("runtime", "org.example.Platform")}
	if !slices.Equal(c.Paths, want) {
		t.Errorf("Paths = %v, want %v", c.Paths, want)
	}
}

func TestStop(t *testing.T) {
	m, err := New(t.TempDir(), testQuiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.Start()

	if err := m.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if _, ok := <-m.Changes(); ok {
		t.Error("Changes() still open after Stop")
	}
}
