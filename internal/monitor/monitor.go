// Package monitor reports changes to a flatpak installation directory.
//
// libflatpak touches the .changed file at the root of an installation after
// every deploy, uninstall and remote change. A Monitor watches that file and
// the top-level app and runtime directories with fsnotify, and coalesces
// bursts of events into one Change per quiet period.
package monitor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuiet is how long a burst of events must stay quiet before it is
// reported.
const DefaultQuiet = 200 * time.Millisecond

// ErrNotDirectory is returned when the installation root is not a directory.
var ErrNotDirectory = errors.New("installation root is not a directory")

// StampFile is touched by libflatpak whenever an installation changes.
const StampFile = ".changed"

var watchedDirs = []string{"app", "runtime"}

// Change is one coalesced batch of filesystem events.
type Change struct {
	// Paths lists the changed entries relative to the root, sorted.
	Paths []string
	Time  time.Time
}

// Monitor watches one installation root.
type Monitor struct {
	root  string
	quiet time.Duration
	fs    *fsnotify.Watcher

	changes chan Change
	errs    chan error
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New creates a Monitor for root. A quiet period of zero uses DefaultQuiet.
func New(root string, quiet time.Duration) (*Monitor, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat installation root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	m := &Monitor{
		root:    filepath.Clean(root),
		quiet:   quiet,
		fs:      fs,
		changes: make(chan Change, 1),
		errs:    make(chan error, 1),
		stopCh:  make(chan struct{}),
	}
	if err := fs.Add(m.root); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", m.root, err)
	}
	for _, dir := range watchedDirs {
		m.watchDir(filepath.Join(m.root, dir))
	}
	return m, nil
}

// watchDir adds dir if it exists. Missing directories are picked up when
// they are created.
func (m *Monitor) watchDir(dir string) {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		_ = m.fs.Add(dir)
	}
}

// Start begins delivering changes.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
}

// Changes returns the channel changes are delivered on. It is closed by Stop.
func (m *Monitor) Changes() <-chan Change { return m.changes }

// Errors returns watcher errors. Only the latest undelivered error is kept.
func (m *Monitor) Errors() <-chan error { return m.errs }

// Stop halts the monitor. Pending events that have not reached their quiet
// period are dropped.
func (m *Monitor) Stop() error {
	var err error
	m.once.Do(func() {
		close(m.stopCh)
		err = m.fs.Close()
		m.wg.Wait()
		close(m.changes)
	})
	return err
}

func (m *Monitor) run() {
	defer m.wg.Done()

	pending := make(map[string]bool)
	timer := time.NewTimer(m.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-m.fs.Events:
			if !ok {
				return
			}
			rel, relevant := m.classify(ev)
			if !relevant {
				continue
			}
			pending[rel] = true
			timer.Reset(m.quiet)

		case err, ok := <-m.fs.Errors:
			if !ok {
				return
			}
			select {
			case m.errs <- err:
			default:
			}

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			c := Change{Time: time.Now()}
			for p := range pending {
				c.Paths = append(c.Paths, p)
			}
			sort.Strings(c.Paths)
			clear(pending)
			select {
			case m.changes <- c:
			case <-m.stopCh:
				return
			}

		case <-m.stopCh:
			return
		}
	}
}

// classify decides whether ev is an installation change and returns its
// path relative to the root.
func (m *Monitor) classify(ev fsnotify.Event) (string, bool) {
	if ev.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(m.root, ev.Name)
	if err != nil || rel == "." {
		return "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	switch {
	case len(parts) == 1 && parts[0] == StampFile:
		return rel, true
	case isWatchedDir(parts[0]):
		if len(parts) == 1 && ev.Has(fsnotify.Create) {
			m.watchDir(ev.Name)
		}
		return rel, true
	}
	return "", false
}

func isWatchedDir(name string) bool {
	for _, d := range watchedDirs {
		if d == name {
			return true
		}
	}
	return false
}
