package flatpak

import (
	"github.com/blackwell-systems/goflatpak/internal/handle"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// adopt checks the native type tag of p and wraps it as an owned handle.
// With retain unset p is transfer full and is dropped on a tag mismatch.
func (c *Client) adopt(op string, p native.Ptr, retain bool, want string) (*handle.Handle, error) {
	if got := c.lib.TypeName(p); got != want {
		if !retain {
			c.lib.Unref(p)
		}
		return nil, unsupportedType(op, got)
	}
	return handle.Acquire(c.lib, p, retain), nil
}

// wrapRef builds the variant matching the native type of p. Unknown types
// are rejected rather than wrapped as a base ref.
func (c *Client) wrapRef(p native.Ptr, retain bool) (Ref, error) {
	switch c.lib.TypeName(p) {
	case native.TypeInstalledRef:
		return newInstalledRef(c, p, retain)
	case native.TypeRemoteRef:
		return newRemoteRef(c, p, retain)
	case native.TypeBundleRef:
		return newBundleRef(c, p, retain)
	case native.TypeRelatedRef:
		return newRelatedRef(c, p, retain)
	case native.TypeRef:
		return newPlainRef(c, p, retain)
	}
	typeName := c.lib.TypeName(p)
	if !retain {
		c.lib.Unref(p)
	}
	return nil, unsupportedType("wrap ref", typeName)
}

func newPlainRef(c *Client, p native.Ptr, retain bool) (*PlainRef, error) {
	h, err := c.adopt("wrap ref", p, retain, native.TypeRef)
	if err != nil {
		return nil, err
	}
	return &PlainRef{refCore{object{c: c, h: h}}}, nil
}

func newInstalledRef(c *Client, p native.Ptr, retain bool) (*InstalledRef, error) {
	h, err := c.adopt("wrap installed ref", p, retain, native.TypeInstalledRef)
	if err != nil {
		return nil, err
	}
	return &InstalledRef{refCore{object{c: c, h: h}}}, nil
}

func newRemoteRef(c *Client, p native.Ptr, retain bool) (*RemoteRef, error) {
	h, err := c.adopt("wrap remote ref", p, retain, native.TypeRemoteRef)
	if err != nil {
		return nil, err
	}
	return &RemoteRef{refCore{object{c: c, h: h}}}, nil
}

func newBundleRef(c *Client, p native.Ptr, retain bool) (*BundleRef, error) {
	h, err := c.adopt("wrap bundle ref", p, retain, native.TypeBundleRef)
	if err != nil {
		return nil, err
	}
	return &BundleRef{refCore{object{c: c, h: h}}}, nil
}

func newRelatedRef(c *Client, p native.Ptr, retain bool) (*RelatedRef, error) {
	h, err := c.adopt("wrap related ref", p, retain, native.TypeRelatedRef)
	if err != nil {
		return nil, err
	}
	return &RelatedRef{refCore{object{c: c, h: h}}}, nil
}

func (c *Client) newInstallation(p native.Ptr, retain bool) (*Installation, error) {
	h, err := c.adopt("wrap installation", p, retain, native.TypeInstallation)
	if err != nil {
		return nil, err
	}
	return &Installation{object{c: c, h: h}}, nil
}

func (c *Client) newRemote(p native.Ptr, retain bool) (*Remote, error) {
	h, err := c.adopt("wrap remote", p, retain, native.TypeRemote)
	if err != nil {
		return nil, err
	}
	return &Remote{object{c: c, h: h}}, nil
}

func (c *Client) newInstance(p native.Ptr, retain bool) (*Instance, error) {
	h, err := c.adopt("wrap instance", p, retain, native.TypeInstance)
	if err != nil {
		return nil, err
	}
	return &Instance{object{c: c, h: h}}, nil
}
