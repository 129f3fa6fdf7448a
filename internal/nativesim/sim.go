// Package nativesim is an in-process stand-in for libflatpak.
//
// It implements native.Library with the same ownership rules as the real
// library: every object is reference counted, pointers are never reused, and
// misuse (touching a freed object, unreffing twice, unreffing a GBytes with
// g_object_unref) is recorded as a Violation instead of crashing. Installation
// state lives in a SQLite store so separate installation objects observe each
// other's changes, as they would on disk.
//
// Transactions run on the caller's thread and emit their signals there, with
// cancellation checkpoints between progress steps.
package nativesim

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

// Violation is a protocol error committed by the caller.
type Violation struct {
	Op   string
	Ptr  native.Ptr
	Type string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s on %s@%#x", v.Op, v.Type, uintptr(v.Ptr))
}

type category int

const (
	catGObject category = iota
	catBytes
	catPtrArray
	catList
	catKeyFile
)

type object struct {
	typ   string
	cat   category
	refs  int
	freed bool
	value any
	// children created on demand for transfer-none getters
	owned []native.Ptr
	cache map[string]native.Ptr
}

// Option configures a Sim.
type Option func(*Sim)

// WithArch sets the default architecture.
func WithArch(arch string) Option {
	return func(s *Sim) { s.arch = arch }
}

// WithStepDelay slows every progress step of a transaction.
func WithStepDelay(d time.Duration) Option {
	return func(s *Sim) { s.stepDelay = d }
}

// WithProgressSteps sets how many progress updates each operation emits.
func WithProgressSteps(n int) Option {
	return func(s *Sim) { s.steps = n }
}

// WithUserPath sets the directory of the per-user installation.
func WithUserPath(path string) Option {
	return func(s *Sim) { s.userPath = path }
}

// Sim is a simulated libflatpak.
type Sim struct {
	st *store.Store

	mu         sync.Mutex
	objects    map[native.Ptr]*object
	next       native.Ptr
	violations []Violation

	handlers    map[uint64]*handler
	nextHandler uint64

	arch      string
	steps     int
	stepDelay time.Duration
	userPath  string

	failures   map[string]failure
	checkpoint func(ref string, step int)
	emitHook   func(signal string)
	emitting   atomic.Bool
}

type failure struct {
	err      native.GError
	nonFatal bool
}

// New returns a simulator backed by st, with a default system installation
// at /var/lib/flatpak and a user installation.
func New(st *store.Store, opts ...Option) (*Sim, error) {
	s := &Sim{
		st:       st,
		objects:  make(map[native.Ptr]*object),
		next:     0x1000,
		handlers: make(map[uint64]*handler),
		arch:     "x86_64",
		steps:    4,
		userPath: "/home/user/.local/share/flatpak",
		failures: make(map[string]failure),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := st.GetInstallation("default"); err != nil {
		if err := st.UpsertInstallation(&store.Installation{ID: "default", Path: "/var/lib/flatpak", DisplayName: strPtr("Default system installation")}); err != nil {
			return nil, err
		}
	}
	if _, err := st.GetInstallation("user"); err != nil {
		if err := st.UpsertInstallation(&store.Installation{ID: "user", Path: s.userPath, DisplayName: strPtr("User installation"), IsUser: true}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Store returns the backing store.
func (s *Sim) Store() *store.Store { return s.st }

// Name implements native.Library.
func (s *Sim) Name() string { return "sim" }

func strPtr(v string) *string { return &v }

func (s *Sim) alloc(typ string, cat category, value any) native.Ptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next += 0x10
	p := s.next
	s.objects[p] = &object{typ: typ, cat: cat, refs: 1, value: value}
	return p
}

func (s *Sim) violate(op string, p native.Ptr, o *object) {
	typ := "<unknown>"
	if o != nil {
		typ = o.typ
	}
	s.violations = append(s.violations, Violation{Op: op, Ptr: p, Type: typ})
}

// get returns the live object at p, recording a violation otherwise.
func (s *Sim) get(p native.Ptr, op string) *object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(p, op)
}

func (s *Sim) getLocked(p native.Ptr, op string) *object {
	o, ok := s.objects[p]
	if !ok {
		s.violate(op+": unknown pointer", p, nil)
		return nil
	}
	if o.freed {
		s.violate(op+": use after free", p, o)
		return nil
	}
	return o
}

func (s *Sim) retain(p native.Ptr, cat category, op string) native.Ptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.getLocked(p, op)
	if o == nil {
		return p
	}
	if o.cat != cat {
		s.violate(op+": wrong object category", p, o)
		return p
	}
	o.refs++
	return p
}

func (s *Sim) release(p native.Ptr, cat category, op string) {
	var cascade []native.Ptr
	var cascadeCat []category

	s.mu.Lock()
	o, ok := s.objects[p]
	switch {
	case !ok:
		s.violate(op+": unknown pointer", p, nil)
	case o.freed:
		s.violate(op+": double free", p, o)
	case o.cat != cat:
		s.violate(op+": wrong object category", p, o)
	default:
		o.refs--
		if o.refs == 0 {
			o.freed = true
			s.dropHandlersLocked(p)
			for _, c := range o.owned {
				cascade = append(cascade, c)
				cascadeCat = append(cascadeCat, s.objects[c].cat)
			}
			for _, c := range o.holds() {
				cascade = append(cascade, c)
				cascadeCat = append(cascadeCat, catGObject)
			}
		}
	}
	s.mu.Unlock()

	for i, c := range cascade {
		s.release(c, cascadeCat[i], "cascade")
	}
}

// holds lists the GObject references an object keeps on others.
func (o *object) holds() []native.Ptr {
	switch v := o.value.(type) {
	case *ptrArray:
		return v.elems
	case *listObj:
		if v.full {
			return v.elems
		}
	case *transactionObj:
		return append([]native.Ptr{v.installation}, v.ops...)
	case *operationObj:
		if !v.bundle.IsNull() {
			return []native.Ptr{v.bundle}
		}
	}
	return nil
}

// child returns the transfer-none child of owner stored under key, creating
// it with mk on first use. The owner frees it.
func (s *Sim) child(owner native.Ptr, key string, mk func() native.Ptr) native.Ptr {
	s.mu.Lock()
	o, ok := s.objects[owner]
	if ok && o.cache != nil {
		if c, ok := o.cache[key]; ok {
			s.mu.Unlock()
			return c
		}
	}
	s.mu.Unlock()

	c := mk()
	if c.IsNull() || !ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o.cache == nil {
		o.cache = make(map[string]native.Ptr)
	}
	o.cache[key] = c
	o.owned = append(o.owned, c)
	return c
}

// Ref implements native.Library (g_object_ref).
func (s *Sim) Ref(p native.Ptr) native.Ptr {
	return s.retain(p, catGObject, "g_object_ref")
}

// Unref implements native.Library (g_object_unref).
func (s *Sim) Unref(p native.Ptr) {
	s.release(p, catGObject, "g_object_unref")
}

// TypeName implements native.Library.
func (s *Sim) TypeName(p native.Ptr) string {
	o := s.get(p, "G_OBJECT_TYPE_NAME")
	if o == nil {
		return ""
	}
	return o.typ
}

// RefCount returns the reference count of p, or 0 once freed.
func (s *Sim) RefCount(p native.Ptr) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[p]
	if !ok || o.freed {
		return 0
	}
	return o.refs
}

// Live returns the number of live objects per type name.
func (s *Sim) Live() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, o := range s.objects {
		if !o.freed {
			out[o.typ]++
		}
	}
	return out
}

// LiveOf returns the number of live objects of one type.
func (s *Sim) LiveOf(typ string) int {
	return s.Live()[typ]
}

// Violations returns every protocol violation recorded so far.
func (s *Sim) Violations() []Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Violation(nil), s.violations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ptr < out[j].Ptr })
	return out
}

// FailOperation makes the next transaction operation on ref fail with err.
func (s *Sim) FailOperation(ref string, err native.GError, nonFatal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[ref] = failure{err: err, nonFatal: nonFatal}
}

// SetCheckpointHook installs fn to run at every transaction progress step,
// on the thread running the transaction.
func (s *Sim) SetCheckpointHook(fn func(ref string, step int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = fn
}

// SetEmitHook installs fn to run on the emitting thread before every signal.
func (s *Sim) SetEmitHook(fn func(signal string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitHook = fn
}

// Emitting reports whether a signal handler is running right now.
func (s *Sim) Emitting() bool { return s.emitting.Load() }

func newGError(domain string, code int, format string, args ...any) *native.GError {
	return &native.GError{Domain: domain, Code: code, Message: fmt.Sprintf(format, args...)}
}

func flatpakErr(code int, format string, args ...any) *native.GError {
	return newGError(native.DomainFlatpak, code, format, args...)
}

func ioErr(code int, format string, args ...any) *native.GError {
	return newGError(native.DomainIO, code, format, args...)
}
