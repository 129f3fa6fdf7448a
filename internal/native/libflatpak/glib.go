package libflatpak

import (
	"runtime"
	"unsafe"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

func (l *Library) Ref(p native.Ptr) native.Ptr {
	if p.IsNull() {
		return native.Null
	}
	return native.Ptr(l.invoke("g_object_ref", ptr(p)))
}

func (l *Library) Unref(p native.Ptr) {
	if !p.IsNull() && !l.isClosed() {
		l.invoke("g_object_unref", ptr(p))
	}
}

// TypeName implements native.Library with G_OBJECT_TYPE_NAME.
func (l *Library) TypeName(p native.Ptr) string {
	if p.IsNull() {
		return ""
	}
	return string(goCString(l.invoke("g_type_name_from_instance", ptr(p))).Data)
}

// GetString calls a const char* or char* accessor, freeing transfer-full
// results after copying them.
func (l *Library) GetString(p native.Ptr, m native.Method) native.CString {
	r := l.invoke(m.Symbol, ptr(p))
	if m.Transfer == native.TransferFull {
		return l.takeCString(r)
	}
	return goCString(r)
}

func (l *Library) GetStrv(p native.Ptr, m native.Method) []native.CString {
	r := l.invoke(m.Symbol, ptr(p))
	if m.Transfer == native.TransferFull {
		return l.takeStrv(r)
	}
	return goStrv(r)
}

func (l *Library) GetBool(p native.Ptr, m native.Method) bool {
	return isTrue(l.invoke(m.Symbol, ptr(p)))
}

// GetInt reads a gint or enum accessor.
func (l *Library) GetInt(p native.Ptr, m native.Method) int64 {
	return int64(int32(l.invoke(m.Symbol, ptr(p))))
}

// GetUint64 reads a guint64 accessor.
func (l *Library) GetUint64(p native.Ptr, m native.Method) uint64 {
	return uint64(l.invoke(m.Symbol, ptr(p)))
}

// GetObject returns the result as is. The caller honours m.Transfer.
func (l *Library) GetObject(p native.Ptr, m native.Method) native.Ptr {
	return native.Ptr(l.invoke(m.Symbol, ptr(p)))
}

func (l *Library) GetPointer(p native.Ptr, m native.Method) native.Ptr {
	return native.Ptr(l.invoke(m.Symbol, ptr(p)))
}

func (l *Library) SetString(p native.Ptr, m native.Method, v native.CString) {
	b := newCBuf(v)
	l.invoke(m.Symbol, ptr(p), b.ptr())
	runtime.KeepAlive(b)
}

func (l *Library) SetBool(p native.Ptr, m native.Method, v bool) {
	l.invoke(m.Symbol, ptr(p), gboolean(v))
}

func (l *Library) SetInt(p native.Ptr, m native.Method, v int64) {
	l.invoke(m.Symbol, ptr(p), uintptr(v))
}

func (l *Library) BytesNew(data []byte) native.Ptr {
	if len(data) == 0 {
		return native.Ptr(l.invoke("g_bytes_new", 0, 0))
	}
	return native.Ptr(l.invoke("g_bytes_new", uintptr(unsafe.Pointer(&data[0])), uintptr(len(data))))
}

func (l *Library) BytesData(b native.Ptr) []byte {
	if b.IsNull() {
		return nil
	}
	var size uintptr
	data := l.invoke("g_bytes_get_data", ptr(b), uintptr(unsafe.Pointer(&size)))
	return goBytes(data, int(size))
}

func (l *Library) BytesUnref(b native.Ptr) {
	if !b.IsNull() && !l.isClosed() {
		l.invoke("g_bytes_unref", ptr(b))
	}
}

// gptrarray mirrors struct _GPtrArray.
type gptrarray struct {
	pdata uintptr
	len   uint32
}

// PtrArrayNew builds an array that holds a reference on each element and
// drops them when the array is freed.
func (l *Library) PtrArrayNew(elems []native.Ptr) native.Ptr {
	arr := l.invoke("g_ptr_array_new_with_free_func", l.sym("g_object_unref"))
	for _, e := range elems {
		l.invoke("g_ptr_array_add", arr, ptr(l.Ref(e)))
	}
	return native.Ptr(arr)
}

func (l *Library) PtrArrayLen(a native.Ptr) int {
	if a.IsNull() {
		return 0
	}
	return int(at[gptrarray](ptr(a), 0).len)
}

func (l *Library) PtrArrayIndex(a native.Ptr, i int) native.Ptr {
	if a.IsNull() || i < 0 || i >= l.PtrArrayLen(a) {
		return native.Null
	}
	pdata := at[gptrarray](ptr(a), 0).pdata
	return native.Ptr(*at[uintptr](pdata, uintptr(i)*unsafe.Sizeof(uintptr(0))))
}

func (l *Library) PtrArrayUnref(a native.Ptr) {
	if !a.IsNull() && !l.isClosed() {
		l.invoke("g_ptr_array_unref", ptr(a))
	}
}

// glist mirrors struct _GList.
type glist struct {
	data uintptr
	next uintptr
	prev uintptr
}

func (l *Library) ListElements(list native.Ptr) []native.Ptr {
	var out []native.Ptr
	for n := ptr(list); n != 0; n = at[glist](n, 0).next {
		out = append(out, native.Ptr(at[glist](n, 0).data))
	}
	return out
}

func (l *Library) ListFree(list native.Ptr, full bool) {
	if list.IsNull() || l.isClosed() {
		return
	}
	if full {
		l.invoke("g_list_free_full", ptr(list), l.sym("g_object_unref"))
		return
	}
	l.invoke("g_list_free", ptr(list))
}

func (l *Library) KeyFileToData(k native.Ptr) ([]byte, *native.GError) {
	var size uintptr
	var gerr uintptr
	r := l.invoke("g_key_file_to_data", ptr(k), uintptr(unsafe.Pointer(&size)), uintptr(unsafe.Pointer(&gerr)))
	if r == 0 {
		return nil, l.takeError(gerr)
	}
	data := goBytes(r, int(size))
	l.invoke("g_free", r)
	return data, nil
}

func (l *Library) KeyFileUnref(k native.Ptr) {
	if !k.IsNull() && !l.isClosed() {
		l.invoke("g_key_file_unref", ptr(k))
	}
}

func (l *Library) FileNewForPath(path native.CString) native.Ptr {
	b := newCBuf(path)
	f := l.invoke("g_file_new_for_path", b.ptr())
	runtime.KeepAlive(b)
	return native.Ptr(f)
}

func (l *Library) FileGetPath(f native.Ptr) native.CString {
	if f.IsNull() {
		return native.NullString()
	}
	return l.takeCString(l.invoke("g_file_get_path", ptr(f)))
}

func (l *Library) CancellableNew() native.Ptr {
	return native.Ptr(l.invoke("g_cancellable_new"))
}

func (l *Library) CancellableCancel(c native.Ptr) {
	if !c.IsNull() {
		l.invoke("g_cancellable_cancel", ptr(c))
	}
}

func (l *Library) CancellableIsCancelled(c native.Ptr) bool {
	if c.IsNull() {
		return false
	}
	return isTrue(l.invoke("g_cancellable_is_cancelled", ptr(c)))
}
