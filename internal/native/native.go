// Package native describes the C calling convention of libflatpak and the
// GLib/GObject primitives it is built on, as seen from Go.
//
// Nothing in this package talks to C directly. A Library implementation
// (the purego backend in libflatpak, or the simulator in nativesim) performs
// the calls; everything above it only ever sees opaque pointers, C-shaped
// strings and decoded GErrors.
package native

import "fmt"

// Ptr is an opaque native pointer. The zero value is the C NULL pointer.
type Ptr uintptr

// Null is the native null sentinel.
const Null Ptr = 0

// IsNull reports whether p is the native null sentinel.
func (p Ptr) IsNull() bool { return p == Null }

// CString is a C string as it crosses the boundary: raw bytes without the
// terminating NUL, or null.
type CString struct {
	Data []byte
	Null bool
}

// NullString returns the null string.
func NullString() CString { return CString{Null: true} }

// Str returns a non-null CString holding s.
func Str(s string) CString { return CString{Data: []byte(s)} }

// Transfer is the GObject-introspection ownership annotation of a return
// value or parameter.
type Transfer int

const (
	// TransferNone means the callee keeps ownership.
	TransferNone Transfer = iota
	// TransferFull means ownership moves to the receiver.
	TransferFull
)

// Method describes a single-argument accessor by its C symbol, e.g.
// flatpak_remote_get_url. Backends dispatch property reads and writes on it.
type Method struct {
	Symbol   string
	Transfer Transfer
}

// Getter returns a transfer-none accessor descriptor.
func Getter(symbol string) Method { return Method{Symbol: symbol} }

// Owned returns a transfer-full accessor descriptor.
func Owned(symbol string) Method { return Method{Symbol: symbol, Transfer: TransferFull} }

// Setter returns a setter descriptor.
func Setter(symbol string) Method { return Method{Symbol: symbol} }

// Well-known GError domains.
const (
	DomainFlatpak  = "flatpak-error-quark"
	DomainPortal   = "flatpak-portal-error-quark"
	DomainIO       = "g-io-error-quark"
	DomainKeyFile  = "g-key-file-error-quark"
	DomainResolver = "g-resolver-error-quark"
)

// GError is a decoded GError. Backends free the native struct after copying.
type GError struct {
	Domain  string
	Code    int
	Message string
}

func (e *GError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Domain, e.Message, e.Code)
}
