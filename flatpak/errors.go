package flatpak

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/handle"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// Kind classifies every error returned by this package. It is stored as the
// TextCode of the *goerrors.Error the package returns.
type Kind string

const (
	NotFound         Kind = "NOT_FOUND"
	PermissionDenied Kind = "PERMISSION_DENIED"
	AlreadyExists    Kind = "ALREADY_EXISTS"
	Cancelled        Kind = "CANCELLED"
	NetworkFailure   Kind = "NETWORK_FAILURE"
	InvalidData      Kind = "INVALID_DATA"
	Unsupported      Kind = "UNSUPPORTED"
	Unknown          Kind = "UNKNOWN"

	// InvalidHandle is returned by any call on a released wrapper.
	InvalidHandle Kind = "INVALID_HANDLE"
	// Encoding is returned when a string cannot cross the boundary.
	Encoding Kind = "ENCODING"
)

// ErrReleased is the source of every InvalidHandle error.
var ErrReleased = handle.ErrReleased

var kindCategories = map[Kind]goerrors.Category{
	NotFound:         goerrors.CategoryNotFound,
	PermissionDenied: goerrors.CategoryAuthz,
	AlreadyExists:    goerrors.CategoryConflict,
	Cancelled:        goerrors.CategoryOperation,
	NetworkFailure:   goerrors.CategoryExternal,
	InvalidData:      goerrors.CategoryBadInput,
	Unsupported:      goerrors.CategoryOperation,
	Unknown:          goerrors.CategoryInternal,
	InvalidHandle:    goerrors.CategoryInternal,
	Encoding:         goerrors.CategoryBadInput,
}

// Category returns the go-errors category used for errors of kind k.
func (k Kind) Category() goerrors.Category {
	if c, ok := kindCategories[k]; ok {
		return c
	}
	return goerrors.CategoryInternal
}

func (k Kind) String() string { return string(k) }

func newError(kind Kind, message string) *goerrors.Error {
	return goerrors.New(message, kind.Category()).WithTextCode(string(kind))
}

// fromGError translates a native error. The GError stays reachable through
// errors.As as the error's source.
func fromGError(op string, gerr *native.GError) error {
	if gerr == nil {
		return nativeFailure(op)
	}
	kind, ok := lookupKind(gerr.Domain, gerr.Code)
	e := newError(kind, gerr.Message).WithMetadata(map[string]any{
		"operation": op,
		"domain":    gerr.Domain,
		"code":      gerr.Code,
	})
	if !ok {
		e = e.WithMetadata(map[string]any{"unmapped": true})
	}
	e.Source = gerr
	return e
}

// nativeFailure reports a failure-shaped native result without a GError.
func nativeFailure(op string) error {
	return newError(Unknown, fmt.Sprintf("%s failed without reporting an error", op)).
		WithMetadata(map[string]any{"operation": op})
}

func invalidHandle(op string, err error) error {
	return goerrors.Wrap(err, InvalidHandle.Category(), op+": wrapper used after release").
		WithTextCode(string(InvalidHandle))
}

// convertError classifies a value that failed to cross the boundary.
func convertError(op string, err error) error {
	kind := InvalidData
	if errors.Is(err, convert.ErrEncoding) {
		kind = Encoding
	}
	return goerrors.Wrap(err, kind.Category(), op).
		WithTextCode(string(kind)).
		WithMetadata(map[string]any{"operation": op})
}

func unsupportedType(op, typeName string) error {
	return newError(Unsupported, fmt.Sprintf("%s: unsupported native type %q", op, typeName)).
		WithMetadata(map[string]any{"operation": op, "type": typeName})
}

// KindOf returns the Kind of err, Unknown for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		if _, ok := kindCategories[Kind(e.TextCode)]; ok {
			return Kind(e.TextCode)
		}
	}
	return Unknown
}

// IsKind reports whether err is of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// NativeError returns the native error behind err, if any.
func NativeError(err error) (domain string, code int, ok bool) {
	var gerr *native.GError
	if errors.As(err, &gerr) {
		return gerr.Domain, gerr.Code, true
	}
	return "", 0, false
}
