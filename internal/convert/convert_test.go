package convert_test

import (
	"errors"
	"math"
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/nativesim"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

func newSim(t *testing.T) *nativesim.Sim {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	s, err := nativesim.New(st)
	if err != nil {
		t.Fatalf("failed to create sim: %v", err)
	}
	return s
}

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		in      native.CString
		want    string
		wantErr error
	}{
		{"ascii", native.Str("org.gnome.Maps"), "org.gnome.Maps", nil},
		{"utf8", native.Str("Café"), "Café", nil},
		{"empty", native.Str(""), "", nil},
		{"null", native.NullString(), "", convert.ErrNull},
		{"invalid utf8", native.CString{Data: []byte{'a', 0xff, 'b'}}, "", convert.ErrEncoding},
		{"embedded nul", native.CString{Data: []byte{'a', 0, 'b'}}, "", convert.ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.String(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodingErrorOffset(t *testing.T) {
	_, err := convert.String(native.CString{Data: []byte{'a', 'b', 0xc3}})
	var encErr *convert.EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("err = %v, want *EncodingError", err)
	}
	if encErr.Offset != 2 {
		t.Errorf("Offset = %d, want 2", encErr.Offset)
	}
}

func TestOptString(t *testing.T) {
	got, err := convert.OptString(native.NullString())
	if err != nil || got != nil {
		t.Fatalf("null: got %v, %v; want nil, nil", got, err)
	}

	got, err = convert.OptString(native.Str(""))
	if err != nil || got == nil || *got != "" {
		t.Fatalf("empty: got %v, %v; want pointer to empty string", got, err)
	}
}

func TestFromOptString(t *testing.T) {
	c, err := convert.FromOptString(nil)
	if err != nil || !c.Null {
		t.Errorf("nil should become the null sentinel, got %+v, %v", c, err)
	}

	bad := "a\x00b"
	if _, err := convert.FromOptString(&bad); !errors.Is(err, convert.ErrEncoding) {
		t.Errorf("err = %v, want ErrEncoding", err)
	}
}

func TestStrv(t *testing.T) {
	got, err := convert.Strv(nil)
	if err != nil || got != nil {
		t.Errorf("null strv: got %v, %v", got, err)
	}

	got, err = convert.Strv([]native.CString{})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("empty strv: got %#v, %v", got, err)
	}

	in := []string{"/de", "/fr"}
	cs, err := convert.FromStrv(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := convert.Strv(cs)
	if err != nil || len(out) != 2 || out[0] != "/de" || out[1] != "/fr" {
		t.Errorf("got %v, %v", out, err)
	}

	if _, err := convert.Strv([]native.CString{native.NullString()}); !errors.Is(err, convert.ErrNull) {
		t.Errorf("null element: err = %v, want ErrNull", err)
	}
}

func TestPtrArray_PreservesOrderAndCount(t *testing.T) {
	s := newSim(t)

	for _, n := range []int{0, 1, 2, 7} {
		ptrs := make([]native.Ptr, n)
		for i := range ptrs {
			ptrs[i] = s.RemoteNew(native.Str(string(rune('a' + i))))
		}

		arr := convert.ToPtrArray(s, ptrs)
		for _, p := range ptrs {
			s.Unref(p)
		}

		names, err := convert.PtrArray(s, arr, native.TransferFull, func(p native.Ptr) (string, error) {
			return convert.String(s.GetString(p, native.RemoteGetName))
		})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if names == nil || len(names) != n {
			t.Fatalf("n=%d: got %d names", n, len(names))
		}
		for i, name := range names {
			if want := string(rune('a' + i)); name != want {
				t.Errorf("n=%d: names[%d] = %q, want %q", n, i, name, want)
			}
		}
	}

	if live := s.LiveOf(native.TypeRemote); live != 0 {
		t.Errorf("%d remotes leaked", live)
	}
	if v := s.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestPtrArray_Null(t *testing.T) {
	s := newSim(t)
	got, err := convert.PtrArray(s, native.Null, native.TransferFull, func(p native.Ptr) (int, error) { return 0, nil })
	if err != nil || got != nil {
		t.Errorf("got %v, %v; want nil, nil", got, err)
	}
	if convert.ToPtrArray(s, nil) != native.Null {
		t.Errorf("nil slice should become a null array")
	}
}

func TestPtrArray_WrapErrorStillFrees(t *testing.T) {
	s := newSim(t)
	p := s.RemoteNew(native.Str("x"))
	arr := s.PtrArrayNew([]native.Ptr{p})
	s.Unref(p)

	wantErr := errors.New("boom")
	_, err := convert.PtrArray(s, arr, native.TransferFull, func(native.Ptr) (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if s.LiveOf("GPtrArray") != 0 || s.LiveOf(native.TypeRemote) != 0 {
		t.Errorf("array not freed on error: %v", s.Live())
	}
}

func TestBytes(t *testing.T) {
	s := newSim(t)

	if got := convert.Bytes(s, native.Null, native.TransferFull); got != nil {
		t.Errorf("null: got %v", got)
	}

	b := convert.ToBytes(s, []byte{})
	got := convert.Bytes(s, b, native.TransferFull)
	if got == nil || len(got) != 0 {
		t.Errorf("empty: got %#v", got)
	}

	src := []byte("[Application]\nname=org.example.App\n")
	b = convert.ToBytes(s, src)
	got = convert.Bytes(s, b, native.TransferFull)
	if string(got) != string(src) {
		t.Errorf("got %q", got)
	}
	if s.LiveOf("GBytes") != 0 {
		t.Errorf("GBytes leaked")
	}
}

func TestNumeric(t *testing.T) {
	if _, err := convert.Int64(math.MaxUint64); !errors.Is(err, convert.ErrPrecision) {
		t.Errorf("Int64: err = %v, want ErrPrecision", err)
	}
	if v, err := convert.Int64(1 << 40); err != nil || v != 1<<40 {
		t.Errorf("Int64: got %d, %v", v, err)
	}
	if _, err := convert.Uint64(-1); !errors.Is(err, convert.ErrPrecision) {
		t.Errorf("Uint64: err = %v, want ErrPrecision", err)
	}
	if v, err := convert.Int(42); err != nil || v != 42 {
		t.Errorf("Int: got %d, %v", v, err)
	}
}
