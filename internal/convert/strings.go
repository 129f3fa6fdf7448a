// Package convert translates values between their native (C/GLib) encodings
// and Go representations.
//
// Conversions never alias native memory: strings and buffers are copied
// before the native side can free them.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

var (
	// ErrEncoding is returned when text is not valid for the other side.
	ErrEncoding = errors.New("invalid text encoding")
	// ErrNull is returned when a required value is null.
	ErrNull = errors.New("unexpected null value")
	// ErrPrecision is returned when a number does not fit its target type.
	ErrPrecision = errors.New("numeric value out of range")
)

// EncodingError reports the offending byte offset of an invalid string.
type EncodingError struct {
	Offset int
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%v at byte %d: %s", ErrEncoding, e.Offset, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

func validate(b []byte) error {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return &EncodingError{Offset: i, Reason: "embedded NUL"}
	}
	if !utf8.Valid(b) {
		off := 0
		for off < len(b) {
			r, size := utf8.DecodeRune(b[off:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			off += size
		}
		return &EncodingError{Offset: off, Reason: "invalid UTF-8"}
	}
	return nil
}

// OptString converts a nullable native string. Null becomes nil, never "".
func OptString(c native.CString) (*string, error) {
	if c.Null {
		return nil, nil
	}
	if err := validate(c.Data); err != nil {
		return nil, err
	}
	s := string(c.Data)
	return &s, nil
}

// String converts a native string that must not be null.
func String(c native.CString) (string, error) {
	if c.Null {
		return "", ErrNull
	}
	if err := validate(c.Data); err != nil {
		return "", err
	}
	return string(c.Data), nil
}

// FromString converts a Go string for a non-nullable parameter.
func FromString(s string) (native.CString, error) {
	b := []byte(s)
	if err := validate(b); err != nil {
		return native.CString{}, err
	}
	return native.CString{Data: b}, nil
}

// FromOptString converts a nullable parameter; nil becomes the null sentinel.
func FromOptString(s *string) (native.CString, error) {
	if s == nil {
		return native.NullString(), nil
	}
	return FromString(*s)
}

// Strv converts a NULL-terminated string vector. A null vector is nil, an
// empty one is an empty slice.
func Strv(v []native.CString) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	out := make([]string, 0, len(v))
	for i, c := range v {
		s, err := String(c)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// FromStrv converts a Go string slice; nil becomes a null vector.
func FromStrv(ss []string) ([]native.CString, error) {
	if ss == nil {
		return nil, nil
	}
	out := make([]native.CString, 0, len(ss))
	for i, s := range ss {
		c, err := FromString(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
