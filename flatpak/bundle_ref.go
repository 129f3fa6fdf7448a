package flatpak

import (
	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// Path is the bundle file the ref was loaded from.
func (r *BundleRef) Path() (string, error) { return r.path(native.BundleRefGetFile) }

func (r *BundleRef) Origin() (*string, error) { return r.optStr(native.BundleRefGetOrigin) }

func (r *BundleRef) RuntimeRepoURL() (*string, error) {
	return r.optStr(native.BundleRefGetRuntimeRepoURL)
}

func (r *BundleRef) InstalledSize() (uint64, error) {
	return r.size(native.BundleRefGetInstalledSize)
}

func (r *BundleRef) Metadata() ([]byte, error)  { return r.bytes(native.BundleRefGetMetadata) }
func (r *BundleRef) Appstream() ([]byte, error) { return r.bytes(native.BundleRefGetAppstream) }

// Icon returns the PNG icon of the given size, or nil if the bundle has none.
func (r *BundleRef) Icon(size int) ([]byte, error) {
	const op = "flatpak_bundle_ref_get_icon"
	var icon []byte
	err := r.call(op, func(p native.Ptr) error {
		icon = convert.Bytes(r.c.lib, r.c.lib.BundleRefGetIcon(p, size), native.TransferFull)
		return nil
	})
	return icon, err
}
