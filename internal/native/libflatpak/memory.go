package libflatpak

import (
	"unsafe"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// cbuf is a NUL-terminated copy of a Go string in Go memory. The zero value
// passes NULL.
type cbuf []byte

func newCBuf(s native.CString) cbuf {
	if s.Null {
		return nil
	}
	b := make(cbuf, len(s.Data)+1)
	copy(b, s.Data)
	return b
}

var emptyString = []byte{0}

// ptr is the address of the buffer. Keep b alive until the call using it
// returns.
func (b cbuf) ptr() uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// nativePointer turns an address returned by C into an unsafe.Pointer. The
// conversion goes through memory so the address is never treated as a Go
// pointer computed from an integer; it must point outside the Go heap.
func nativePointer(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}

// at reinterprets the native memory off bytes past base. Only used on memory
// owned by GLib.
func at[T any](base, off uintptr) *T {
	return (*T)(unsafe.Add(nativePointer(base), off))
}

// strlen walks a NUL-terminated native string.
func strlen(p uintptr) int {
	n := 0
	for *at[byte](p, uintptr(n)) != 0 {
		n++
	}
	return n
}

// goBytes copies n bytes of native memory.
func goBytes(p uintptr, n int) []byte {
	out := make([]byte, n)
	if n > 0 {
		copy(out, unsafe.Slice(at[byte](p, 0), n))
	}
	return out
}

// goCString copies a native string. NULL becomes the null CString.
func goCString(p uintptr) native.CString {
	if p == 0 {
		return native.NullString()
	}
	return native.CString{Data: goBytes(p, strlen(p))}
}

// goStrv copies a NULL-terminated string vector. A NULL vector is nil.
func goStrv(p uintptr) []native.CString {
	if p == 0 {
		return nil
	}
	out := []native.CString{}
	for i := uintptr(0); ; i++ {
		s := *at[uintptr](p, i*unsafe.Sizeof(uintptr(0)))
		if s == 0 {
			return out
		}
		out = append(out, goCString(s))
	}
}

// takeCString copies and frees a transfer-full string.
func (l *Library) takeCString(p uintptr) native.CString {
	s := goCString(p)
	if p != 0 {
		l.invoke("g_free", p)
	}
	return s
}

// takeStrv copies and frees a transfer-full string vector.
func (l *Library) takeStrv(p uintptr) []native.CString {
	v := goStrv(p)
	if p != 0 {
		l.invoke("g_strfreev", p)
	}
	return v
}

// newStrv builds a GLib-allocated string vector for a call. nil passes NULL;
// an empty slice passes an empty vector. Free the result with freeStrv.
func (l *Library) newStrv(v []native.CString) uintptr {
	if v == nil {
		return 0
	}
	size := unsafe.Sizeof(uintptr(0))
	vec := l.invoke("g_malloc0", (uintptr(len(v))+1)*size)
	for i, s := range v {
		var elem uintptr
		if len(s.Data) == 0 {
			elem = l.invoke("g_strdup", uintptr(unsafe.Pointer(&emptyString[0])))
		} else {
			elem = l.invoke("g_strndup", uintptr(unsafe.Pointer(&s.Data[0])), uintptr(len(s.Data)))
		}
		*at[uintptr](vec, uintptr(i)*size) = elem
	}
	return vec
}

func (l *Library) freeStrv(vec uintptr) {
	if vec != 0 {
		l.invoke("g_strfreev", vec)
	}
}

// gerror mirrors struct _GError.
type gerror struct {
	domain  uint32
	code    int32
	message uintptr
}

// takeError decodes and frees a GError. NULL decodes to nil.
func (l *Library) takeError(p uintptr) *native.GError {
	if p == 0 {
		return nil
	}
	e := at[gerror](p, 0)
	out := &native.GError{
		Domain:  string(goCString(l.invoke("g_quark_to_string", uintptr(e.domain))).Data),
		Code:    int(e.code),
		Message: string(goCString(e.message).Data),
	}
	l.invoke("g_error_free", p)
	return out
}

func gboolean(v bool) uintptr {
	if v {
		return 1
	}
	return 0
}

func isTrue(r uintptr) bool { return int32(r) != 0 }

func ptr(p native.Ptr) uintptr { return uintptr(p) }
