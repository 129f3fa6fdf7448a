package convert

import (
	"fmt"
	"math"

	"github.com/blackwell-systems/goflatpak/internal/keyfile"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// Wrap turns one native element into its Go wrapper. Elements handed to
// Wrap are transfer none: a wrapper that outlives the container must take
// its own reference.
type Wrap[T any] func(p native.Ptr) (T, error)

// PtrArray converts a GPtrArray element-wise, preserving order. A null array
// is nil; an empty one is an empty slice. When transfer is full the array is
// unreffed after conversion, including on error.
func PtrArray[T any](lib native.Library, arr native.Ptr, transfer native.Transfer, wrap Wrap[T]) ([]T, error) {
	if arr.IsNull() {
		return nil, nil
	}
	if transfer == native.TransferFull {
		defer lib.PtrArrayUnref(arr)
	}

	n := lib.PtrArrayLen(arr)
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := wrap(lib.PtrArrayIndex(arr, i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ToPtrArray builds a native array from element pointers. The array holds
// its own reference on each element. A nil slice becomes a null array.
func ToPtrArray(lib native.Library, elems []native.Ptr) native.Ptr {
	if elems == nil {
		return native.Null
	}
	return lib.PtrArrayNew(elems)
}

// List converts a GList the same way PtrArray converts arrays.
func List[T any](lib native.Library, l native.Ptr, transfer native.Transfer, wrap Wrap[T]) ([]T, error) {
	if transfer == native.TransferFull {
		defer lib.ListFree(l, true)
	}

	elems := lib.ListElements(l)
	out := make([]T, 0, len(elems))
	for i, p := range elems {
		v, err := wrap(p)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Bytes copies a GBytes into Go memory. Null is nil; empty is a non-nil
// empty slice.
func Bytes(lib native.Library, b native.Ptr, transfer native.Transfer) []byte {
	if b.IsNull() {
		return nil
	}
	if transfer == native.TransferFull {
		defer lib.BytesUnref(b)
	}
	data := lib.BytesData(b)
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// ToBytes creates a native GBytes holding a copy of data. Nil becomes null.
// The caller owns the result.
func ToBytes(lib native.Library, data []byte) native.Ptr {
	if data == nil {
		return native.Null
	}
	return lib.BytesNew(data)
}

// KeyFile converts a GKeyFile into group -> key -> value.
func KeyFile(lib native.Library, k native.Ptr, transfer native.Transfer) (map[string]map[string]string, error) {
	if k.IsNull() {
		return nil, nil
	}
	if transfer == native.TransferFull {
		defer lib.KeyFileUnref(k)
	}

	data, gerr := lib.KeyFileToData(k)
	if gerr != nil {
		return nil, gerr
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	f, err := keyfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Map(), nil
}

// Int64 narrows a native unsigned 64-bit size.
func Int64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d exceeds int64", ErrPrecision, v)
	}
	return int64(v), nil
}

// Int narrows a native integer to the platform int.
func Int(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("%w: %d exceeds int", ErrPrecision, v)
	}
	return int(v), nil
}

// Uint64 widens a stored signed size back to the native unsigned type.
func Uint64(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrPrecision, v)
	}
	return uint64(v), nil
}
