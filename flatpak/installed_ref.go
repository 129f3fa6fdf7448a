package flatpak

import (
	"context"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

func (r *InstalledRef) Origin() (string, error)    { return r.str(native.InstalledRefGetOrigin) }
func (r *InstalledRef) DeployDir() (string, error) { return r.str(native.InstalledRefGetDeployDir) }
func (r *InstalledRef) IsCurrent() (bool, error)   { return r.boolean(native.InstalledRefGetIsCurrent) }

func (r *InstalledRef) InstalledSize() (uint64, error) {
	return r.size(native.InstalledRefGetInstalledSize)
}

func (r *InstalledRef) LatestCommit() (*string, error) {
	return r.optStr(native.InstalledRefGetLatestCommit)
}

// Subpaths is nil when the whole ref is installed.
func (r *InstalledRef) Subpaths() ([]string, error) { return r.strv(native.InstalledRefGetSubpaths) }

// EOL is the end-of-life message, nil while the ref is maintained.
func (r *InstalledRef) EOL() (*string, error) { return r.optStr(native.InstalledRefGetEOL) }

func (r *InstalledRef) EOLRebase() (*string, error) { return r.optStr(native.InstalledRefGetEOLRebase) }

func (r *InstalledRef) AppdataName() (*string, error) {
	return r.optStr(native.InstalledRefGetAppdataName)
}

func (r *InstalledRef) AppdataSummary() (*string, error) {
	return r.optStr(native.InstalledRefGetAppdataSummary)
}

func (r *InstalledRef) AppdataVersion() (*string, error) {
	return r.optStr(native.InstalledRefGetAppdataVersion)
}

func (r *InstalledRef) AppdataLicense() (*string, error) {
	return r.optStr(native.InstalledRefGetAppdataLicense)
}

// LoadMetadata reads the deployed metadata file.
func (r *InstalledRef) LoadMetadata(ctx context.Context) ([]byte, error) {
	return r.load(ctx, "flatpak_installed_ref_load_metadata", r.c.lib.InstalledRefLoadMetadata)
}

// LoadAppdata reads the deployed compressed appstream data.
func (r *InstalledRef) LoadAppdata(ctx context.Context) ([]byte, error) {
	return r.load(ctx, "flatpak_installed_ref_load_appdata", r.c.lib.InstalledRefLoadAppdata)
}

func (r *InstalledRef) load(ctx context.Context, op string, fn func(ref, cancellable native.Ptr) (native.Ptr, *native.GError)) ([]byte, error) {
	if err := r.live(op); err != nil {
		return nil, err
	}
	cptr, done, err := r.c.bindCancellable(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	var data []byte
	err = r.call(op, func(p native.Ptr) error {
		b, gerr := fn(p, cptr)
		if b.IsNull() {
			return r.c.fail(op, gerr)
		}
		data = convert.Bytes(r.c.lib, b, native.TransferFull)
		return nil
	})
	return data, err
}
