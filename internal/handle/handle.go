// Package handle tracks ownership and liveness of native object pointers.
//
// An owned handle holds one native reference and gives it back exactly once:
// on the first Release, or from a finalizer if the handle becomes unreachable
// first. A borrowed handle never touches the reference count; it stays usable
// while its parent handle is alive and keeps the parent reachable.
//
// Frees are deferred while calls are in flight (Enter/Leave), so a Release
// racing with a call cannot pull the object out from under it.
package handle

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// ErrReleased is returned by Enter on a released or dead handle.
var ErrReleased = errors.New("handle has been released")

// Mode is the ownership of a handle.
type Mode int

const (
	// Owned handles release their native reference.
	Owned Mode = iota
	// Borrowed handles are views tied to a parent.
	Borrowed
)

func (m Mode) String() string {
	if m == Borrowed {
		return "borrowed"
	}
	return "owned"
}

var live atomic.Int64

// Live returns the number of owned handles that have not released yet.
func Live() int64 { return live.Load() }

// Handle is a tracked native pointer.
type Handle struct {
	lib      native.Library
	ptr      native.Ptr
	mode     Mode
	typeName string
	parent   *Handle

	mu       sync.Mutex
	calls    int
	released bool
	freed    bool
}

// Acquire wraps p as an owned handle. When retain is set p was returned
// transfer none and a reference is taken here; otherwise the caller's
// reference is adopted. A null p yields nil.
func Acquire(lib native.Library, p native.Ptr, retain bool) *Handle {
	if p.IsNull() {
		return nil
	}
	if retain {
		lib.Ref(p)
	}
	h := &Handle{
		lib:      lib,
		ptr:      p,
		mode:     Owned,
		typeName: lib.TypeName(p),
	}
	live.Add(1)
	runtime.SetFinalizer(h, (*Handle).finalize)
	return h
}

// Borrow wraps p as a view owned by parent. A null p yields nil.
func Borrow(lib native.Library, p native.Ptr, parent *Handle) *Handle {
	if p.IsNull() {
		return nil
	}
	return &Handle{
		lib:      lib,
		ptr:      p,
		mode:     Borrowed,
		typeName: lib.TypeName(p),
		parent:   parent,
	}
}

// Mode returns the ownership mode.
func (h *Handle) Mode() Mode { return h.mode }

// TypeName returns the native type name captured at acquisition.
func (h *Handle) TypeName() string { return h.typeName }

// Alive reports whether the handle may still be used.
func (h *Handle) Alive() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	released := h.released
	h.mu.Unlock()
	if released {
		return false
	}
	if h.parent != nil {
		return h.parent.Alive()
	}
	return true
}

// Enter pins the handle for one native call and returns its pointer. Every
// successful Enter must be paired with Leave.
func (h *Handle) Enter() (native.Ptr, error) {
	if h == nil {
		return native.Null, ErrReleased
	}
	if h.parent != nil {
		if _, err := h.parent.Enter(); err != nil {
			return native.Null, err
		}
	}

	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		if h.parent != nil {
			h.parent.Leave()
		}
		return native.Null, ErrReleased
	}
	h.calls++
	h.mu.Unlock()
	return h.ptr, nil
}

// Leave ends a call started with Enter.
func (h *Handle) Leave() {
	h.mu.Lock()
	h.calls--
	free := h.calls == 0 && h.released && !h.freed && h.mode == Owned
	if free {
		h.freed = true
	}
	h.mu.Unlock()

	if free {
		h.lib.Unref(h.ptr)
	}
	if h.parent != nil {
		h.parent.Leave()
	}
}

// Release gives up the handle. It is idempotent.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	runtime.SetFinalizer(h, nil)
	h.release()
}

func (h *Handle) finalize() {
	h.release()
}

func (h *Handle) release() bool {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return false
	}
	h.released = true
	free := h.mode == Owned && h.calls == 0
	if free {
		h.freed = true
	}
	h.mu.Unlock()

	if h.mode == Owned {
		live.Add(-1)
	}
	if free {
		h.lib.Unref(h.ptr)
	}
	return true
}
