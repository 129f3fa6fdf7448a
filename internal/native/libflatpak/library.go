// Package libflatpak implements native.Library on top of the system
// libflatpak and GLib shared objects, loaded at runtime with purego.
package libflatpak

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// DefaultSoname is the libflatpak shared object loaded when Open is given an
// empty name.
const DefaultSoname = "libflatpak.so.0"

// GLib sonames. libflatpak links against them, so they normally resolve to
// the copies already mapped by the first dlopen.
var glibSonames = []string{
	"libgio-2.0.so.0",
	"libgobject-2.0.so.0",
	"libglib-2.0.so.0",
}

// ErrClosed is returned by Close when the library was already closed.
var ErrClosed = errors.New("library already closed")

// Library is a loaded libflatpak. It is safe for concurrent use.
type Library struct {
	handles []uintptr

	mu     sync.RWMutex
	syms   map[string]uintptr
	closed bool
}

var _ native.Library = (*Library)(nil)

// Open loads libflatpak and the GLib libraries it depends on.
func Open(soname string) (*Library, error) {
	if soname == "" {
		soname = DefaultSoname
	}

	l := &Library{syms: make(map[string]uintptr)}
	for _, name := range append([]string{soname}, glibSonames...) {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			l.unload()
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		l.handles = append(l.handles, h)
	}

	if _, err := l.lookup("flatpak_get_default_arch"); err != nil {
		l.unload()
		return nil, fmt.Errorf("%s does not look like libflatpak: %w", soname, err)
	}
	return l, nil
}

// Close forgets every resolved symbol. Objects obtained from the library
// must not be used afterwards; releasing them becomes a no-op so pending
// finalizers stay harmless. The shared objects stay mapped: GLib cannot be
// unloaded once it has registered types.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	l.syms = nil
	return nil
}

func (l *Library) unload() error {
	var errs []error
	for i := len(l.handles) - 1; i >= 0; i-- {
		if err := purego.Dlclose(l.handles[i]); err != nil {
			errs = append(errs, err)
		}
	}
	l.handles = nil
	return errors.Join(errs...)
}

// Name implements native.Library.
func (l *Library) Name() string { return "libflatpak" }

func (l *Library) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// lookup resolves a symbol in the loaded objects and caches it.
func (l *Library) lookup(name string) (uintptr, error) {
	l.mu.RLock()
	fn, ok := l.syms[name]
	closed := l.closed
	l.mu.RUnlock()
	if ok {
		return fn, nil
	}
	if closed {
		return 0, ErrClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var lastErr error
	for _, h := range l.handles {
		fn, err := purego.Dlsym(h, name)
		if err == nil && fn != 0 {
			l.syms[name] = fn
			return fn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("not found")
	}
	return 0, fmt.Errorf("symbol %s: %w", name, lastErr)
}

// sym is lookup for entry points every supported libflatpak exports.
func (l *Library) sym(name string) uintptr {
	fn, err := l.lookup(name)
	if err != nil {
		panic(fmt.Sprintf("libflatpak: %v", err))
	}
	return fn
}

// call invokes the C function fn. Pointers converted to uintptr in the
// argument list stay alive until the call returns.
//
//go:uintptrescapes
func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

// invoke resolves and calls a symbol.
//
//go:uintptrescapes
func (l *Library) invoke(name string, args ...uintptr) uintptr {
	return call(l.sym(name), args...)
}
