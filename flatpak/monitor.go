package flatpak

import (
	"context"
	"errors"
	"io/fs"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/blackwell-systems/goflatpak/internal/monitor"
)

// InstallationChange is one batch of on-disk changes to an installation.
type InstallationChange struct {
	// Paths are relative to the installation root.
	Paths []string
	Time  time.Time
}

// Monitor calls fn on the calling goroutine each time the installation
// changes on disk. It returns nil once ctx is done.
func (i *Installation) Monitor(ctx context.Context, fn func(InstallationChange)) error {
	const op = "Installation.Monitor"
	root, err := i.Path()
	if err != nil {
		return err
	}
	m, err := monitor.New(root, i.c.monitorQuiet)
	if err != nil {
		return monitorError(op, root, err)
	}
	m.Start()
	defer m.Stop()

	log := i.c.log.WithContext(ctx)
	log.Info("monitoring installation", "path", root)
	for {
		select {
		case <-ctx.Done():
			log.Debug("installation monitor stopped", "path", root)
			return nil
		case err := <-m.Errors():
			log.Warn("installation monitor error", "path", root, "error", err)
		case c, ok := <-m.Changes():
			if !ok {
				return nil
			}
			log.Debug("installation changed", "path", root, "entries", len(c.Paths))
			fn(InstallationChange{Paths: c.Paths, Time: c.Time})
		}
	}
}

func monitorError(op, root string, err error) error {
	kind := Unknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = NotFound
	case errors.Is(err, fs.ErrPermission):
		kind = PermissionDenied
	case errors.Is(err, monitor.ErrNotDirectory):
		kind = InvalidData
	}
	return goerrors.Wrap(err, kind.Category(), op+": "+root).
		WithTextCode(string(kind)).
		WithMetadata(map[string]any{"operation": op, "path": root})
}
