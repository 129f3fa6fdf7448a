package flatpak

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// Installation is a flatpak installation: the system-wide one, the per-user
// one, or one rooted at an arbitrary path. Two wrappers of the same
// installation see each other's changes immediately.
type Installation struct {
	object
}

func (i *Installation) ID() (string, error)    { return i.str(native.InstallationGetID) }
func (i *Installation) Path() (string, error)  { return i.path(native.InstallationGetPath) }
func (i *Installation) IsUser() (bool, error)  { return i.boolean(native.InstallationGetIsUser) }
func (i *Installation) Priority() (int, error) { return i.integer(native.InstallationGetPriority) }

func (i *Installation) DisplayName() (*string, error) {
	return i.optStr(native.InstallationGetDisplayName)
}

// invoke runs fn with the installation pinned and a native cancellable
// bound to ctx.
func (i *Installation) invoke(ctx context.Context, op string, fn func(p, cancellable native.Ptr) error) error {
	if err := i.live(op); err != nil {
		return err
	}
	cptr, done, err := i.c.bindCancellable(ctx)
	if err != nil {
		return err
	}
	defer done()
	return i.call(op, func(p native.Ptr) error { return fn(p, cptr) })
}

// withRef pins ref for the duration of fn.
func withRef(op string, ref Ref, fn func(p native.Ptr) error) error {
	if ref == nil {
		return convertError(op, convert.ErrNull)
	}
	return ref.core().call(op, fn)
}

func (i *Installation) installedRefs(op string, arr native.Ptr, gerr *native.GError) ([]*InstalledRef, error) {
	if arr.IsNull() {
		return nil, i.c.fail(op, gerr)
	}
	return collect(i.c, op, arr, func(p native.Ptr) (*InstalledRef, error) {
		return newInstalledRef(i.c, p, true)
	})
}

// ListInstalledRefs lists every deployed ref. An empty installation yields an
// empty, non-nil slice.
func (i *Installation) ListInstalledRefs(ctx context.Context) ([]*InstalledRef, error) {
	const op = "flatpak_installation_list_installed_refs"
	var refs []*InstalledRef
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := i.c.lib.InstallationListInstalledRefs(p, cptr)
		var err error
		refs, err = i.installedRefs(op, arr, gerr)
		return err
	})
	return refs, err
}

// ListInstalledRefsByKind lists the deployed apps or runtimes.
func (i *Installation) ListInstalledRefsByKind(ctx context.Context, kind RefKind) ([]*InstalledRef, error) {
	const op = "flatpak_installation_list_installed_refs_by_kind"
	var refs []*InstalledRef
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := i.c.lib.InstallationListInstalledRefsByKind(p, int(kind), cptr)
		var err error
		refs, err = i.installedRefs(op, arr, gerr)
		return err
	})
	return refs, err
}

// ListInstalledRefsForUpdate lists the deployed refs whose remote has a
// newer commit.
func (i *Installation) ListInstalledRefsForUpdate(ctx context.Context) ([]*InstalledRef, error) {
	const op = "flatpak_installation_list_installed_refs_for_update"
	var refs []*InstalledRef
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := i.c.lib.InstallationListInstalledRefsForUpdate(p, cptr)
		var err error
		refs, err = i.installedRefs(op, arr, gerr)
		return err
	})
	return refs, err
}

func refArgs(op string, name string, arch, branch *string) (cname, carch, cbranch native.CString, err error) {
	if cname, err = convert.FromString(name); err != nil {
		return cname, carch, cbranch, convertError(op, err)
	}
	if carch, err = convert.FromOptString(arch); err != nil {
		return cname, carch, cbranch, convertError(op, err)
	}
	if cbranch, err = convert.FromOptString(branch); err != nil {
		return cname, carch, cbranch, convertError(op, err)
	}
	return cname, carch, cbranch, nil
}

// GetInstalledRef looks up one deployed ref. A nil arch or branch selects
// the default.
func (i *Installation) GetInstalledRef(ctx context.Context, kind RefKind, name string, arch, branch *string) (*InstalledRef, error) {
	const op = "flatpak_installation_get_installed_ref"
	if err := i.live(op); err != nil {
		return nil, err
	}
	cname, carch, cbranch, err := refArgs(op, name, arch, branch)
	if err != nil {
		return nil, err
	}
	var ref *InstalledRef
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		r, gerr := i.c.lib.InstallationGetInstalledRef(p, int(kind), cname, carch, cbranch, cptr)
		if r.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		ref, err = newInstalledRef(i.c, r, false)
		return err
	})
	return ref, err
}

// GetCurrentInstalledApp returns the current deployment of app name, or nil
// if none is marked current.
func (i *Installation) GetCurrentInstalledApp(ctx context.Context, name string) (*InstalledRef, error) {
	const op = "flatpak_installation_get_current_installed_app"
	if err := i.live(op); err != nil {
		return nil, err
	}
	cname, err := convert.FromString(name)
	if err != nil {
		return nil, convertError(op, err)
	}
	var ref *InstalledRef
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		r, gerr := i.c.lib.InstallationGetCurrentInstalledApp(p, cname, cptr)
		if r.IsNull() {
			if gerr == nil {
				return nil
			}
			return i.c.fail(op, gerr)
		}
		var err error
		ref, err = newInstalledRef(i.c, r, false)
		return err
	})
	return ref, err
}

// ListRemotes lists the configured remotes in priority order.
func (i *Installation) ListRemotes(ctx context.Context) ([]*Remote, error) {
	const op = "flatpak_installation_list_remotes"
	var remotes []*Remote
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := i.c.lib.InstallationListRemotes(p, cptr)
		if arr.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		remotes, err = collect(i.c, op, arr, func(r native.Ptr) (*Remote, error) {
			return i.c.newRemote(r, true)
		})
		return err
	})
	return remotes, err
}

// GetRemoteByName returns the named remote.
func (i *Installation) GetRemoteByName(ctx context.Context, name string) (*Remote, error) {
	const op = "flatpak_installation_get_remote_by_name"
	if err := i.live(op); err != nil {
		return nil, err
	}
	cname, err := convert.FromString(name)
	if err != nil {
		return nil, convertError(op, err)
	}
	var remote *Remote
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		r, gerr := i.c.lib.InstallationGetRemoteByName(p, cname, cptr)
		if r.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		remote, err = i.c.newRemote(r, false)
		return err
	})
	return remote, err
}

func (i *Installation) withRemote(ctx context.Context, op string, remote *Remote, fn func(p, r, cancellable native.Ptr) (bool, *native.GError)) error {
	if err := i.live(op); err != nil {
		return err
	}
	if remote == nil {
		return convertError(op, convert.ErrNull)
	}
	return i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		return remote.call(op, func(r native.Ptr) error {
			ok, gerr := fn(p, r, cptr)
			if !ok {
				return i.c.fail(op, gerr)
			}
			return nil
		})
	})
}

// AddRemote persists remote. Adding a name that already exists fails with
// AlreadyExists unless ifNeeded is set, in which case it succeeds without
// changing the existing remote.
func (i *Installation) AddRemote(ctx context.Context, remote *Remote, ifNeeded bool) error {
	const op = "flatpak_installation_add_remote"
	err := i.withRemote(ctx, op, remote, func(p, r, cptr native.Ptr) (bool, *native.GError) {
		return i.c.lib.InstallationAddRemote(p, r, ifNeeded, cptr)
	})
	if err == nil {
		name, _ := remote.Name()
		i.c.log.Info("remote added", "remote", name, "if_needed", ifNeeded)
	}
	return err
}

// ModifyRemote saves changes made to an existing remote.
func (i *Installation) ModifyRemote(ctx context.Context, remote *Remote) error {
	return i.withRemote(ctx, "flatpak_installation_modify_remote", remote, func(p, r, cptr native.Ptr) (bool, *native.GError) {
		return i.c.lib.InstallationModifyRemote(p, r, cptr)
	})
}

func (i *Installation) boolCall(ctx context.Context, op string, fn func(p, cancellable native.Ptr) (bool, *native.GError)) error {
	return i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		ok, gerr := fn(p, cptr)
		if !ok {
			return i.c.fail(op, gerr)
		}
		return nil
	})
}

// RemoveRemote deletes the named remote.
func (i *Installation) RemoveRemote(ctx context.Context, name string) error {
	const op = "flatpak_installation_remove_remote"
	if err := i.live(op); err != nil {
		return err
	}
	cname, err := convert.FromString(name)
	if err != nil {
		return convertError(op, err)
	}
	err = i.boolCall(ctx, op, func(p, cptr native.Ptr) (bool, *native.GError) {
		return i.c.lib.InstallationRemoveRemote(p, cname, cptr)
	})
	if err == nil {
		i.c.log.Info("remote removed", "remote", name)
	}
	return err
}

// UpdateRemote refreshes the remote's configuration from its summary.
func (i *Installation) UpdateRemote(ctx context.Context, name string) (err error) {
	const op = "flatpak_installation_update_remote_sync"
	ctx, span := i.c.startSpan(ctx, "flatpak.Installation.UpdateRemote", attribute.String("flatpak.remote", name))
	defer func() { endSpan(span, err) }()

	if err := i.live(op); err != nil {
		return err
	}
	cname, err := convert.FromString(name)
	if err != nil {
		return convertError(op, err)
	}
	return i.boolCall(ctx, op, func(p, cptr native.Ptr) (bool, *native.GError) {
		return i.c.lib.InstallationUpdateRemoteSync(p, cname, cptr)
	})
}

// ListRemoteRefs lists everything a remote offers.
func (i *Installation) ListRemoteRefs(ctx context.Context, remote string) (refs []*RemoteRef, err error) {
	const op = "flatpak_installation_list_remote_refs_sync"
	ctx, span := i.c.startSpan(ctx, "flatpak.Installation.ListRemoteRefs", attribute.String("flatpak.remote", remote))
	defer func() { endSpan(span, err) }()

	if err := i.live(op); err != nil {
		return nil, err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return nil, convertError(op, err)
	}
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := i.c.lib.InstallationListRemoteRefsSync(p, cremote, cptr)
		if arr.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		refs, err = collect(i.c, op, arr, func(r native.Ptr) (*RemoteRef, error) {
			return newRemoteRef(i.c, r, true)
		})
		return err
	})
	span.SetAttributes(attribute.Int("flatpak.refs", len(refs)))
	return refs, err
}

// FetchRemoteRef looks up one ref in a remote.
func (i *Installation) FetchRemoteRef(ctx context.Context, remote string, kind RefKind, name string, arch, branch *string) (ref *RemoteRef, err error) {
	const op = "flatpak_installation_fetch_remote_ref_sync"
	ctx, span := i.c.startSpan(ctx, "flatpak.Installation.FetchRemoteRef",
		attribute.String("flatpak.remote", remote), attribute.String("flatpak.name", name))
	defer func() { endSpan(span, err) }()

	if err := i.live(op); err != nil {
		return nil, err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return nil, convertError(op, err)
	}
	cname, carch, cbranch, err := refArgs(op, name, arch, branch)
	if err != nil {
		return nil, err
	}
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		r, gerr := i.c.lib.InstallationFetchRemoteRefSync(p, cremote, int(kind), cname, carch, cbranch, cptr)
		if r.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		ref, err = newRemoteRef(i.c, r, false)
		return err
	})
	return ref, err
}

// FetchRemoteMetadata downloads the metadata file of ref from remote.
func (i *Installation) FetchRemoteMetadata(ctx context.Context, remote string, ref Ref) (data []byte, err error) {
	const op = "flatpak_installation_fetch_remote_metadata_sync"
	ctx, span := i.c.startSpan(ctx, "flatpak.Installation.FetchRemoteMetadata", attribute.String("flatpak.remote", remote))
	defer func() { endSpan(span, err) }()

	if err := i.live(op); err != nil {
		return nil, err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return nil, convertError(op, err)
	}
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		return withRef(op, ref, func(r native.Ptr) error {
			b, gerr := i.c.lib.InstallationFetchRemoteMetadataSync(p, cremote, r, cptr)
			if b.IsNull() {
				return i.c.fail(op, gerr)
			}
			data = convert.Bytes(i.c.lib, b, native.TransferFull)
			return nil
		})
	})
	return data, err
}

// FetchRemoteSize returns the download and installed size of ref.
func (i *Installation) FetchRemoteSize(ctx context.Context, remote string, ref Ref) (download, installed uint64, err error) {
	const op = "flatpak_installation_fetch_remote_size_sync"
	if err := i.live(op); err != nil {
		return 0, 0, err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return 0, 0, convertError(op, err)
	}
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		return withRef(op, ref, func(r native.Ptr) error {
			d, n, ok, gerr := i.c.lib.InstallationFetchRemoteSizeSync(p, cremote, r, cptr)
			if !ok {
				return i.c.fail(op, gerr)
			}
			download, installed = d, n
			return nil
		})
	})
	return download, installed, err
}

func (i *Installation) relatedRefs(ctx context.Context, op, remote, ref string, fn func(p native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError)) ([]*RelatedRef, error) {
	if err := i.live(op); err != nil {
		return nil, err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return nil, convertError(op, err)
	}
	cref, err := convert.FromString(ref)
	if err != nil {
		return nil, convertError(op, err)
	}
	var refs []*RelatedRef
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		arr, gerr := fn(p, cremote, cref, cptr)
		if arr.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		refs, err = collect(i.c, op, arr, func(r native.Ptr) (*RelatedRef, error) {
			return newRelatedRef(i.c, r, true)
		})
		return err
	})
	return refs, err
}

// ListInstalledRelatedRefs lists the installed refs related to ref.
func (i *Installation) ListInstalledRelatedRefs(ctx context.Context, remote, ref string) ([]*RelatedRef, error) {
	return i.relatedRefs(ctx, "flatpak_installation_list_installed_related_refs_sync", remote, ref,
		i.c.lib.InstallationListInstalledRelatedRefsSync)
}

// ListRemoteRelatedRefs lists the refs a remote declares as related to ref.
func (i *Installation) ListRemoteRelatedRefs(ctx context.Context, remote, ref string) ([]*RelatedRef, error) {
	return i.relatedRefs(ctx, "flatpak_installation_list_remote_related_refs_sync", remote, ref,
		i.c.lib.InstallationListRemoteRelatedRefsSync)
}

// LoadAppOverrides returns the override file of an application.
func (i *Installation) LoadAppOverrides(ctx context.Context, appID string) (string, error) {
	const op = "flatpak_installation_load_app_overrides"
	if err := i.live(op); err != nil {
		return "", err
	}
	cid, err := convert.FromString(appID)
	if err != nil {
		return "", convertError(op, err)
	}
	var data string
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		v, gerr := i.c.lib.InstallationLoadAppOverrides(p, cid, cptr)
		if v.Null {
			return i.c.fail(op, gerr)
		}
		s, err := convert.String(v)
		if err != nil {
			return convertError(op, err)
		}
		data = s
		return nil
	})
	return data, err
}

// InstallRefFile configures the origin remote described by the contents of
// a .flatpakref file and returns the ref it points at.
func (i *Installation) InstallRefFile(ctx context.Context, data []byte) (*RemoteRef, error) {
	const op = "flatpak_installation_install_ref_file"
	if err := i.live(op); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, convertError(op, convert.ErrNull)
	}
	var ref *RemoteRef
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		b := convert.ToBytes(i.c.lib, data)
		defer i.c.lib.BytesUnref(b)
		r, gerr := i.c.lib.InstallationInstallRefFile(p, b, cptr)
		if r.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		ref, err = newRemoteRef(i.c, r, false)
		return err
	})
	return ref, err
}

// Config reads an installation configuration key such as "languages".
func (i *Installation) Config(ctx context.Context, key string) (string, error) {
	const op = "flatpak_installation_get_config"
	if err := i.live(op); err != nil {
		return "", err
	}
	ckey, err := convert.FromString(key)
	if err != nil {
		return "", convertError(op, err)
	}
	var value string
	err = i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		v, gerr := i.c.lib.InstallationGetConfig(p, ckey, cptr)
		if v.Null {
			return i.c.fail(op, gerr)
		}
		s, err := convert.String(v)
		if err != nil {
			return convertError(op, err)
		}
		value = s
		return nil
	})
	return value, err
}

// SetConfig writes an installation configuration key.
func (i *Installation) SetConfig(ctx context.Context, key, value string) error {
	const op = "flatpak_installation_set_config_sync"
	if err := i.live(op); err != nil {
		return err
	}
	ckey, err := convert.FromString(key)
	if err != nil {
		return convertError(op, err)
	}
	cvalue, err := convert.FromString(value)
	if err != nil {
		return convertError(op, err)
	}
	return i.boolCall(ctx, op, func(p, cptr native.Ptr) (bool, *native.GError) {
		return i.c.lib.InstallationSetConfigSync(p, ckey, cvalue, cptr)
	})
}

// DefaultLanguages returns the languages whose translations are installed.
func (i *Installation) DefaultLanguages() ([]string, error) {
	const op = "flatpak_installation_get_default_languages"
	var langs []string
	err := i.call(op, func(p native.Ptr) error {
		v, gerr := i.c.lib.InstallationGetDefaultLanguages(p)
		if v == nil {
			return i.c.fail(op, gerr)
		}
		out, err := convert.Strv(v)
		if err != nil {
			return convertError(op, err)
		}
		langs = out
		return nil
	})
	return langs, err
}

// MinFreeSpaceBytes returns the free space the installation keeps in
// reserve.
func (i *Installation) MinFreeSpaceBytes() (uint64, error) {
	const op = "flatpak_installation_get_min_free_space_bytes"
	var n uint64
	err := i.call(op, func(p native.Ptr) error {
		v, ok, gerr := i.c.lib.InstallationGetMinFreeSpaceBytes(p)
		if !ok {
			return i.c.fail(op, gerr)
		}
		n = v
		return nil
	})
	return n, err
}

// DropCaches discards cached remote and deploy state.
func (i *Installation) DropCaches(ctx context.Context) error {
	return i.boolCall(ctx, "flatpak_installation_drop_caches", i.c.lib.InstallationDropCaches)
}

// NewTransaction creates a transaction operating on this installation.
func (i *Installation) NewTransaction(ctx context.Context) (*Transaction, error) {
	const op = "flatpak_transaction_new_for_installation"
	var tx *Transaction
	err := i.invoke(ctx, op, func(p, cptr native.Ptr) error {
		t, gerr := i.c.lib.TransactionNewForInstallation(p, cptr)
		if t.IsNull() {
			return i.c.fail(op, gerr)
		}
		var err error
		tx, err = i.c.newTransaction(t)
		return err
	})
	return tx, err
}
