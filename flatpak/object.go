package flatpak

import (
	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/handle"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// object is the part every wrapper shares: the client it calls through and
// the tracked native pointer.
type object struct {
	c *Client
	h *handle.Handle
}

// Release gives the native object back. Calling it again is a no-op.
// Releasing a borrowed view only detaches the view.
func (o *object) Release() { o.h.Release() }

// Alive reports whether the wrapper may still be used.
func (o *object) Alive() bool { return o.h.Alive() }

// live fails with InvalidHandle once the wrapper is released. Methods that
// validate arguments call it first so a dead wrapper is always reported as
// such.
func (o *object) live(op string) error {
	if !o.h.Alive() {
		return invalidHandle(op, handle.ErrReleased)
	}
	return nil
}

// call pins the handle for one native call.
func (o *object) call(op string, fn func(p native.Ptr) error) error {
	p, err := o.h.Enter()
	if err != nil {
		return invalidHandle(op, err)
	}
	defer o.h.Leave()
	return fn(p)
}

func (o *object) str(m native.Method) (string, error) {
	var s string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		v, err := convert.String(o.c.lib.GetString(p, m))
		if err != nil {
			return convertError(m.Symbol, err)
		}
		s = v
		return nil
	})
	return s, err
}

func (o *object) optStr(m native.Method) (*string, error) {
	var s *string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		v, err := convert.OptString(o.c.lib.GetString(p, m))
		if err != nil {
			return convertError(m.Symbol, err)
		}
		s = v
		return nil
	})
	return s, err
}

func (o *object) strv(m native.Method) ([]string, error) {
	var out []string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		v, err := convert.Strv(o.c.lib.GetStrv(p, m))
		if err != nil {
			return convertError(m.Symbol, err)
		}
		out = v
		return nil
	})
	return out, err
}

func (o *object) boolean(m native.Method) (bool, error) {
	var b bool
	err := o.call(m.Symbol, func(p native.Ptr) error {
		b = o.c.lib.GetBool(p, m)
		return nil
	})
	return b, err
}

func (o *object) integer(m native.Method) (int, error) {
	var n int
	err := o.call(m.Symbol, func(p native.Ptr) error {
		v, err := convert.Int(o.c.lib.GetInt(p, m))
		if err != nil {
			return convertError(m.Symbol, err)
		}
		n = v
		return nil
	})
	return n, err
}

func (o *object) size(m native.Method) (uint64, error) {
	var n uint64
	err := o.call(m.Symbol, func(p native.Ptr) error {
		n = o.c.lib.GetUint64(p, m)
		return nil
	})
	return n, err
}

// path reads a GFile-valued accessor as a filesystem path.
func (o *object) path(m native.Method) (string, error) {
	var s string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		file := o.c.lib.GetObject(p, m)
		if file.IsNull() {
			return convertError(m.Symbol, convert.ErrNull)
		}
		if m.Transfer == native.TransferFull {
			defer o.c.lib.Unref(file)
		}
		v, err := convert.String(o.c.lib.FileGetPath(file))
		if err != nil {
			return convertError(m.Symbol, err)
		}
		s = v
		return nil
	})
	return s, err
}

// bytes reads a GBytes-valued accessor.
func (o *object) bytes(m native.Method) ([]byte, error) {
	var b []byte
	err := o.call(m.Symbol, func(p native.Ptr) error {
		b = convert.Bytes(o.c.lib, o.c.lib.GetPointer(p, m), m.Transfer)
		return nil
	})
	return b, err
}

// keyFile reads a GKeyFile-valued accessor.
func (o *object) keyFile(m native.Method) (map[string]map[string]string, error) {
	var kf map[string]map[string]string
	err := o.call(m.Symbol, func(p native.Ptr) error {
		v, err := convert.KeyFile(o.c.lib, o.c.lib.GetPointer(p, m), m.Transfer)
		if err != nil {
			return o.keyFileError(m.Symbol, err)
		}
		kf = v
		return nil
	})
	return kf, err
}

func (o *object) keyFileError(op string, err error) error {
	if gerr, ok := err.(*native.GError); ok {
		return o.c.fail(op, gerr)
	}
	return convertError(op, err)
}

func (o *object) setStr(m native.Method, v *string) error {
	if err := o.live(m.Symbol); err != nil {
		return err
	}
	cv, err := convert.FromOptString(v)
	if err != nil {
		return convertError(m.Symbol, err)
	}
	return o.call(m.Symbol, func(p native.Ptr) error {
		o.c.lib.SetString(p, m, cv)
		return nil
	})
}

func (o *object) setBool(m native.Method, v bool) error {
	return o.call(m.Symbol, func(p native.Ptr) error {
		o.c.lib.SetBool(p, m, v)
		return nil
	})
}

func (o *object) setInt(m native.Method, v int64) error {
	return o.call(m.Symbol, func(p native.Ptr) error {
		o.c.lib.SetInt(p, m, v)
		return nil
	})
}

type releaser interface{ Release() }

// collect converts a transfer-full GPtrArray whose elements are wrapped by
// wrap. Wrappers created before a failing element are released.
func collect[T releaser](c *Client, op string, arr native.Ptr, wrap func(native.Ptr) (T, error)) ([]T, error) {
	var made []T
	out, err := convert.PtrArray(c.lib, arr, native.TransferFull, func(p native.Ptr) (T, error) {
		v, err := wrap(p)
		if err == nil {
			made = append(made, v)
		}
		return v, err
	})
	if err != nil {
		for _, v := range made {
			v.Release()
		}
		c.log.Debug("failed to convert array", "operation", op, "error", err)
		return nil, err
	}
	return out, nil
}
