package nativesim

import (
	"github.com/blackwell-systems/goflatpak/internal/native"
)

type bytesObj struct{ data []byte }

type ptrArray struct{ elems []native.Ptr }

type listObj struct {
	elems []native.Ptr
	full  bool
}

type keyFileObj struct{ data []byte }

type fileObj struct{ path string }

type cancellableObj struct{ cancelled bool }

func (s *Sim) newBytes(data []byte) native.Ptr {
	cp := make([]byte, len(data))
	copy(cp, data)
	return s.alloc("GBytes", catBytes, &bytesObj{data: cp})
}

// newArray wraps elements the caller already holds one reference on each.
func (s *Sim) newArray(elems []native.Ptr) native.Ptr {
	if elems == nil {
		elems = []native.Ptr{}
	}
	return s.alloc("GPtrArray", catPtrArray, &ptrArray{elems: elems})
}

func (s *Sim) newKeyFile(data []byte) native.Ptr {
	return s.alloc("GKeyFile", catKeyFile, &keyFileObj{data: append([]byte(nil), data...)})
}

func (s *Sim) newFile(path string) native.Ptr {
	return s.alloc(native.TypeFile, catGObject, &fileObj{path: path})
}

// BytesNew implements native.Library.
func (s *Sim) BytesNew(data []byte) native.Ptr {
	return s.newBytes(data)
}

// BytesData implements native.Library.
func (s *Sim) BytesData(b native.Ptr) []byte {
	o := s.get(b, "g_bytes_get_data")
	if o == nil {
		return nil
	}
	v, ok := o.value.(*bytesObj)
	if !ok {
		s.mu.Lock()
		s.violate("g_bytes_get_data: not a GBytes", b, o)
		s.mu.Unlock()
		return nil
	}
	return v.data
}

// BytesUnref implements native.Library.
func (s *Sim) BytesUnref(b native.Ptr) {
	s.release(b, catBytes, "g_bytes_unref")
}

// PtrArrayNew implements native.Library. The array takes a reference on
// every element and drops it when freed.
func (s *Sim) PtrArrayNew(elems []native.Ptr) native.Ptr {
	held := make([]native.Ptr, 0, len(elems))
	for _, p := range elems {
		held = append(held, s.retain(p, catGObject, "g_ptr_array_add"))
	}
	return s.newArray(held)
}

func (s *Sim) array(a native.Ptr, op string) *ptrArray {
	o := s.get(a, op)
	if o == nil {
		return nil
	}
	v, ok := o.value.(*ptrArray)
	if !ok {
		s.mu.Lock()
		s.violate(op+": not a GPtrArray", a, o)
		s.mu.Unlock()
		return nil
	}
	return v
}

// PtrArrayLen implements native.Library.
func (s *Sim) PtrArrayLen(a native.Ptr) int {
	v := s.array(a, "GPtrArray.len")
	if v == nil {
		return 0
	}
	return len(v.elems)
}

// PtrArrayIndex implements native.Library.
func (s *Sim) PtrArrayIndex(a native.Ptr, i int) native.Ptr {
	v := s.array(a, "g_ptr_array_index")
	if v == nil || i < 0 || i >= len(v.elems) {
		return native.Null
	}
	return v.elems[i]
}

// PtrArrayUnref implements native.Library.
func (s *Sim) PtrArrayUnref(a native.Ptr) {
	s.release(a, catPtrArray, "g_ptr_array_unref")
}

// ListElements implements native.Library. A null list is empty.
func (s *Sim) ListElements(l native.Ptr) []native.Ptr {
	if l.IsNull() {
		return nil
	}
	o := s.get(l, "g_list_nth_data")
	if o == nil {
		return nil
	}
	v, ok := o.value.(*listObj)
	if !ok {
		return nil
	}
	return append([]native.Ptr(nil), v.elems...)
}

// ListFree implements native.Library.
func (s *Sim) ListFree(l native.Ptr, full bool) {
	if l.IsNull() {
		return
	}
	if o := s.get(l, "g_list_free"); o != nil {
		if v, ok := o.value.(*listObj); ok {
			s.mu.Lock()
			if full != v.full {
				s.violate("g_list_free: ownership mismatch", l, o)
			}
			s.mu.Unlock()
		}
	}
	s.release(l, catList, "g_list_free")
}

// KeyFileToData implements native.Library.
func (s *Sim) KeyFileToData(k native.Ptr) ([]byte, *native.GError) {
	o := s.get(k, "g_key_file_to_data")
	if o == nil {
		return nil, newGError(native.DomainKeyFile, native.KeyFileErrorNotFound, "invalid key file")
	}
	v, ok := o.value.(*keyFileObj)
	if !ok {
		return nil, newGError(native.DomainKeyFile, native.KeyFileErrorNotFound, "not a key file")
	}
	return append([]byte(nil), v.data...), nil
}

// KeyFileUnref implements native.Library.
func (s *Sim) KeyFileUnref(k native.Ptr) {
	s.release(k, catKeyFile, "g_key_file_unref")
}

// FileNewForPath implements native.Library.
func (s *Sim) FileNewForPath(path native.CString) native.Ptr {
	return s.newFile(string(path.Data))
}

// FileGetPath implements native.Library.
func (s *Sim) FileGetPath(f native.Ptr) native.CString {
	o := s.get(f, "g_file_get_path")
	if o == nil {
		return native.NullString()
	}
	v, ok := o.value.(*fileObj)
	if !ok {
		return native.NullString()
	}
	return native.Str(v.path)
}

// CancellableNew implements native.Library.
func (s *Sim) CancellableNew() native.Ptr {
	return s.alloc(native.TypeCancellable, catGObject, &cancellableObj{})
}

// CancellableCancel implements native.Library.
func (s *Sim) CancellableCancel(c native.Ptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.getLocked(c, "g_cancellable_cancel")
	if o == nil {
		return
	}
	if v, ok := o.value.(*cancellableObj); ok {
		v.cancelled = true
	}
}

// CancellableIsCancelled implements native.Library.
func (s *Sim) CancellableIsCancelled(c native.Ptr) bool {
	if c.IsNull() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.getLocked(c, "g_cancellable_is_cancelled")
	if o == nil {
		return false
	}
	v, ok := o.value.(*cancellableObj)
	return ok && v.cancelled
}
