package flatpak

import (
	"fmt"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// RefKind is FlatpakRefKind.
type RefKind int

const (
	KindApp     RefKind = 0
	KindRuntime RefKind = 1
)

func (k RefKind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindRuntime:
		return "runtime"
	}
	return fmt.Sprintf("RefKind(%d)", int(k))
}

// ParseRefKind parses "app" or "runtime".
func ParseRefKind(s string) (RefKind, error) {
	switch s {
	case "app":
		return KindApp, nil
	case "runtime":
		return KindRuntime, nil
	}
	return 0, newError(InvalidData, fmt.Sprintf("unknown ref kind %q", s))
}

// Ref is the accessor set shared by every ref variant. The set of
// implementations is closed: *PlainRef, *InstalledRef, *RemoteRef,
// *BundleRef and *RelatedRef.
type Ref interface {
	Name() (string, error)
	Kind() (RefKind, error)
	Arch() (string, error)
	Branch() (string, error)
	Commit() (*string, error)
	CollectionID() (*string, error)
	// Format returns the full ref, kind/name/arch/branch.
	Format() (string, error)
	Release()
	Alive() bool

	core() *refCore
}

type refCore struct {
	object
}

func (r *refCore) core() *refCore { return r }

func (r *refCore) Name() (string, error)   { return r.str(native.RefGetName) }
func (r *refCore) Arch() (string, error)   { return r.str(native.RefGetArch) }
func (r *refCore) Branch() (string, error) { return r.str(native.RefGetBranch) }
func (r *refCore) Format() (string, error) { return r.str(native.RefFormatRef) }

// Commit is nil for refs that do not name a commit.
func (r *refCore) Commit() (*string, error) { return r.optStr(native.RefGetCommit) }

func (r *refCore) CollectionID() (*string, error) { return r.optStr(native.RefGetCollectionID) }

func (r *refCore) Kind() (RefKind, error) {
	n, err := r.integer(native.RefGetKind)
	if err != nil {
		return 0, err
	}
	k := RefKind(n)
	if k != KindApp && k != KindRuntime {
		return 0, newError(InvalidData, fmt.Sprintf("%s: unknown ref kind %d", native.RefGetKind.Symbol, n))
	}
	return k, nil
}

// PlainRef is a ref that is neither installed nor tied to a remote, as
// returned by ParseRef.
type PlainRef struct {
	refCore
}

// InstalledRef is a ref deployed in an installation.
type InstalledRef struct {
	refCore
}

// RemoteRef is a ref available from a remote.
type RemoteRef struct {
	refCore
}

// BundleRef is a ref loaded from a single-file bundle.
type BundleRef struct {
	refCore
}

// RelatedRef is an extension or locale related to another ref.
type RelatedRef struct {
	refCore
}
