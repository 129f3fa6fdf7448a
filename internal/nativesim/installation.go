package nativesim

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/goflatpak/internal/keyfile"
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

func storeErr(err error) *native.GError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ioErr(native.IOErrorNotFound, "%v", err)
	case errors.Is(err, store.ErrExists):
		return ioErr(native.IOErrorExists, "%v", err)
	}
	return ioErr(native.IOErrorFailed, "%v", err)
}

func (s *Sim) installation(p native.Ptr, op string) (*store.Installation, *native.GError) {
	o := s.get(p, op)
	if o == nil {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: invalid installation", op)
	}
	v, ok := o.value.(*installationObj)
	if !ok {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: not an installation", op)
	}
	inst, err := s.st.GetInstallation(v.id)
	if err != nil {
		return nil, storeErr(err)
	}
	return inst, nil
}

func (s *Sim) newInstallation(id string) native.Ptr {
	return s.alloc(native.TypeInstallation, catGObject, &installationObj{id: id})
}

func writable(inst *store.Installation) *native.GError {
	if inst.ReadOnly {
		return flatpakErr(native.FlatpakErrorPermissionDenied, "Permission denied for installation %s", inst.ID)
	}
	return nil
}

// remote loads a remote and fails with REMOTE_NOT_FOUND if it is missing.
func (s *Sim) remote(inst *store.Installation, name string) (*store.Remote, *native.GError) {
	r, err := s.st.GetRemote(inst.ID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, flatpakErr(native.FlatpakErrorRemoteNotFound, "No remote named '%s'", name)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return r, nil
}

func (s *Sim) online(r *store.Remote) *native.GError {
	if r.Offline {
		host := "remote"
		if r.URL != nil {
			host = *r.URL
		}
		return ioErr(native.IOErrorHostNotFound, "Could not resolve hostname for %s", host)
	}
	return nil
}

// DefaultArch implements native.Library.
func (s *Sim) DefaultArch() native.CString { return native.Str(s.arch) }

// SupportedArches implements native.Library.
func (s *Sim) SupportedArches() []native.CString {
	out := []native.CString{native.Str(s.arch)}
	if s.arch == "x86_64" {
		out = append(out, native.Str("i386"))
	}
	return out
}

// GetSystemInstallations implements native.Library.
func (s *Sim) GetSystemInstallations(cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	insts, err := s.st.ListInstallations()
	if err != nil {
		return native.Null, storeErr(err)
	}
	elems := make([]native.Ptr, 0, len(insts))
	for _, inst := range insts {
		elems = append(elems, s.newInstallation(inst.ID))
	}
	return s.newArray(elems), nil
}

// InstallationNewSystem implements native.Library.
func (s *Sim) InstallationNewSystem(cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	return s.newInstallation("default"), nil
}

// InstallationNewUser implements native.Library.
func (s *Sim) InstallationNewUser(cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	return s.newInstallation("user"), nil
}

// InstallationNewForPath implements native.Library. Unknown paths become new
// installations.
func (s *Sim) InstallationNewForPath(file native.Ptr, user bool, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	path := s.FileGetPath(file)
	if path.Null {
		return native.Null, ioErr(native.IOErrorInvalidArgument, "invalid path")
	}
	p := filepath.Clean(string(path.Data))

	inst, err := s.st.GetInstallationByPath(p)
	if err == nil {
		return s.newInstallation(inst.ID), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return native.Null, storeErr(err)
	}

	id := "custom-" + strings.Trim(strings.ReplaceAll(p, "/", "-"), "-")
	if err := s.st.UpsertInstallation(&store.Installation{ID: id, Path: p, IsUser: user}); err != nil {
		return native.Null, storeErr(err)
	}
	return s.newInstallation(id), nil
}

func (s *Sim) installedArray(refs []*store.InstalledRef) native.Ptr {
	elems := make([]native.Ptr, 0, len(refs))
	for _, r := range refs {
		elems = append(elems, s.newInstalledRef(r))
	}
	return s.newArray(elems)
}

// InstallationListInstalledRefs implements native.Library.
func (s *Sim) InstallationListInstalledRefs(p native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	return s.InstallationListInstalledRefsByKind(p, -1, cancellable)
}

// InstallationListInstalledRefsByKind implements native.Library. A negative
// kind lists every ref.
func (s *Sim) InstallationListInstalledRefsByKind(p native.Ptr, kind int, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_installed_refs")
	if gerr != nil {
		return native.Null, gerr
	}
	refs, err := s.st.ListInstalledRefs(inst.ID)
	if err != nil {
		return native.Null, storeErr(err)
	}
	if kind >= 0 {
		filtered := refs[:0]
		for _, r := range refs {
			if mustParse(r.Ref).kind == kind {
				filtered = append(filtered, r)
			}
		}
		refs = filtered
	}
	return s.installedArray(refs), nil
}

// InstallationListInstalledRefsForUpdate implements native.Library.
func (s *Sim) InstallationListInstalledRefsForUpdate(p native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_installed_refs_for_update")
	if gerr != nil {
		return native.Null, gerr
	}
	refs, err := s.st.ListInstalledRefs(inst.ID)
	if err != nil {
		return native.Null, storeErr(err)
	}

	var updates []*store.InstalledRef
	for _, r := range refs {
		remote, gerr := s.remote(inst, r.Origin)
		if gerr != nil {
			continue
		}
		if gerr := s.online(remote); gerr != nil {
			return native.Null, gerr
		}
		entry, err := s.st.GetRemoteRef(inst.ID, r.Origin, r.Ref)
		if err != nil {
			continue
		}
		if entry.Commit != r.Commit {
			updates = append(updates, r)
		}
	}
	return s.installedArray(updates), nil
}

// InstallationGetInstalledRef implements native.Library.
func (s *Sim) InstallationGetInstalledRef(p native.Ptr, kind int, name, arch, branch native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_get_installed_ref")
	if gerr != nil {
		return native.Null, gerr
	}
	refs, err := s.st.ListInstalledRefs(inst.ID)
	if err != nil {
		return native.Null, storeErr(err)
	}

	a := s.arch
	if !arch.Null {
		a = string(arch.Data)
	}
	for _, r := range refs {
		ro := mustParse(r.Ref)
		if ro.kind != kind || ro.name != string(name.Data) || ro.arch != a {
			continue
		}
		if !branch.Null && ro.branch != string(branch.Data) {
			continue
		}
		return s.newInstalledRef(r), nil
	}

	b := "*"
	if !branch.Null {
		b = string(branch.Data)
	}
	return native.Null, flatpakErr(native.FlatpakErrorNotInstalled, "%s not installed", formatRef(kind, string(name.Data), a, b))
}

// InstallationGetCurrentInstalledApp implements native.Library.
func (s *Sim) InstallationGetCurrentInstalledApp(p native.Ptr, name native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_get_current_installed_app")
	if gerr != nil {
		return native.Null, gerr
	}
	refs, err := s.st.ListInstalledRefs(inst.ID)
	if err != nil {
		return native.Null, storeErr(err)
	}
	for _, r := range refs {
		ro := mustParse(r.Ref)
		if ro.kind == kindApp && ro.name == string(name.Data) && r.IsCurrent {
			return s.newInstalledRef(r), nil
		}
	}
	return native.Null, flatpakErr(native.FlatpakErrorNotInstalled, "App %s not installed", string(name.Data))
}

// InstallationListRemotes implements native.Library.
func (s *Sim) InstallationListRemotes(p native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_remotes")
	if gerr != nil {
		return native.Null, gerr
	}
	remotes, err := s.st.ListRemotes(inst.ID)
	if err != nil {
		return native.Null, storeErr(err)
	}
	elems := make([]native.Ptr, 0, len(remotes))
	for _, r := range remotes {
		elems = append(elems, s.alloc(native.TypeRemote, catGObject, &remoteObj{r: r}))
	}
	return s.newArray(elems), nil
}

// InstallationGetRemoteByName implements native.Library.
func (s *Sim) InstallationGetRemoteByName(p native.Ptr, name native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_get_remote_by_name")
	if gerr != nil {
		return native.Null, gerr
	}
	r, gerr := s.remote(inst, string(name.Data))
	if gerr != nil {
		return native.Null, gerr
	}
	return s.alloc(native.TypeRemote, catGObject, &remoteObj{r: r}), nil
}

func (s *Sim) remoteArg(p native.Ptr, op string) (*store.Remote, *native.GError) {
	o := s.get(p, op)
	if o == nil {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: invalid remote", op)
	}
	v, ok := o.value.(*remoteObj)
	if !ok {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: not a remote", op)
	}
	s.mu.Lock()
	cp := *v.r
	s.mu.Unlock()
	return &cp, nil
}

func validRemoteName(name string) bool {
	return name != "" && !strings.HasPrefix(name, "-") && !strings.ContainsAny(name, "/\\ \t\n")
}

// InstallationAddRemote implements native.Library.
func (s *Sim) InstallationAddRemote(p, remote native.Ptr, ifNeeded bool, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_add_remote")
	if gerr != nil {
		return false, gerr
	}
	r, gerr := s.remoteArg(remote, "flatpak_installation_add_remote")
	if gerr != nil {
		return false, gerr
	}
	if !validRemoteName(r.Name) {
		return false, flatpakErr(native.FlatpakErrorInvalidName, "Invalid remote name: %s", r.Name)
	}

	if _, err := s.st.GetRemote(inst.ID, r.Name); err == nil {
		if ifNeeded {
			return true, nil
		}
		return false, flatpakErr(native.FlatpakErrorAlreadyInstalled, "Remote '%s' already exists", r.Name)
	}
	if gerr := writable(inst); gerr != nil {
		return false, gerr
	}

	r.Installation = inst.ID
	if err := s.st.InsertRemote(r); err != nil {
		if errors.Is(err, store.ErrExists) {
			return false, flatpakErr(native.FlatpakErrorAlreadyInstalled, "Remote '%s' already exists", r.Name)
		}
		return false, storeErr(err)
	}
	return true, nil
}

// InstallationModifyRemote implements native.Library.
func (s *Sim) InstallationModifyRemote(p, remote native.Ptr, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_modify_remote")
	if gerr != nil {
		return false, gerr
	}
	r, gerr := s.remoteArg(remote, "flatpak_installation_modify_remote")
	if gerr != nil {
		return false, gerr
	}
	if gerr := writable(inst); gerr != nil {
		return false, gerr
	}
	existing, gerr := s.remote(inst, r.Name)
	if gerr != nil {
		return false, gerr
	}
	r.Installation = inst.ID
	r.Offline = existing.Offline
	if err := s.st.UpdateRemote(r); err != nil {
		return false, storeErr(err)
	}
	return true, nil
}

// InstallationRemoveRemote implements native.Library.
func (s *Sim) InstallationRemoveRemote(p native.Ptr, name native.CString, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_remove_remote")
	if gerr != nil {
		return false, gerr
	}
	n := string(name.Data)
	if _, gerr := s.remote(inst, n); gerr != nil {
		return false, gerr
	}
	if gerr := writable(inst); gerr != nil {
		return false, gerr
	}
	inUse, err := s.st.RemoteInUse(inst.ID, n)
	if err != nil {
		return false, storeErr(err)
	}
	if inUse {
		return false, flatpakErr(native.FlatpakErrorRemoteUsed, "Can't remove remote '%s' with installed refs", n)
	}
	if err := s.st.DeleteRemote(inst.ID, n); err != nil {
		return false, storeErr(err)
	}
	return true, nil
}

// InstallationUpdateRemoteSync implements native.Library.
func (s *Sim) InstallationUpdateRemoteSync(p native.Ptr, name native.CString, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_update_remote_sync")
	if gerr != nil {
		return false, gerr
	}
	r, gerr := s.remote(inst, string(name.Data))
	if gerr != nil {
		return false, gerr
	}
	if gerr := s.online(r); gerr != nil {
		return false, gerr
	}
	return true, nil
}

// InstallationListRemoteRefsSync implements native.Library.
func (s *Sim) InstallationListRemoteRefsSync(p native.Ptr, remote native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_remote_refs_sync")
	if gerr != nil {
		return native.Null, gerr
	}
	r, gerr := s.remote(inst, string(remote.Data))
	if gerr != nil {
		return native.Null, gerr
	}
	if gerr := s.online(r); gerr != nil {
		return native.Null, gerr
	}
	entries, err := s.st.ListRemoteRefs(inst.ID, r.Name)
	if err != nil {
		return native.Null, storeErr(err)
	}
	elems := make([]native.Ptr, 0, len(entries))
	for _, e := range entries {
		elems = append(elems, s.newRemoteRef(e))
	}
	return s.newArray(elems), nil
}

func (s *Sim) findRemoteRef(inst *store.Installation, remote string, kind int, name, arch, branch native.CString) (*store.RemoteRef, *native.GError) {
	r, gerr := s.remote(inst, remote)
	if gerr != nil {
		return nil, gerr
	}
	if gerr := s.online(r); gerr != nil {
		return nil, gerr
	}
	entries, err := s.st.ListRemoteRefs(inst.ID, remote)
	if err != nil {
		return nil, storeErr(err)
	}

	a := s.arch
	if !arch.Null {
		a = string(arch.Data)
	}
	wantBranch := ""
	if !branch.Null {
		wantBranch = string(branch.Data)
	} else if r.DefaultBranch != nil {
		wantBranch = *r.DefaultBranch
	}

	var fallback *store.RemoteRef
	for _, e := range entries {
		ro := mustParse(e.Ref)
		if ro.kind != kind || ro.name != string(name.Data) || ro.arch != a {
			continue
		}
		if wantBranch == "" || ro.branch == wantBranch {
			return e, nil
		}
		if branch.Null && fallback == nil {
			fallback = e
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	b := wantBranch
	if b == "" {
		b = "*"
	}
	return nil, flatpakErr(native.FlatpakErrorRefNotFound, "Can't find ref %s in remote %s", formatRef(kind, string(name.Data), a, b), remote)
}

// InstallationFetchRemoteRefSync implements native.Library.
func (s *Sim) InstallationFetchRemoteRefSync(p native.Ptr, remote native.CString, kind int, name, arch, branch native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_fetch_remote_ref_sync")
	if gerr != nil {
		return native.Null, gerr
	}
	e, gerr := s.findRemoteRef(inst, string(remote.Data), kind, name, arch, branch)
	if gerr != nil {
		return native.Null, gerr
	}
	return s.newRemoteRef(e), nil
}

func (s *Sim) catalogEntry(p native.Ptr, remote native.CString, ref native.Ptr, op string) (*store.RemoteRef, *native.GError) {
	inst, gerr := s.installation(p, op)
	if gerr != nil {
		return nil, gerr
	}
	o := s.get(ref, op)
	if o == nil {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: invalid ref", op)
	}
	ro, ok := o.value.(*refObj)
	if !ok {
		return nil, ioErr(native.IOErrorInvalidArgument, "%s: not a ref", op)
	}
	r, gerr := s.remote(inst, string(remote.Data))
	if gerr != nil {
		return nil, gerr
	}
	if gerr := s.online(r); gerr != nil {
		return nil, gerr
	}
	e, err := s.st.GetRemoteRef(inst.ID, r.Name, ro.format())
	if errors.Is(err, store.ErrNotFound) {
		return nil, flatpakErr(native.FlatpakErrorRefNotFound, "Can't find ref %s in remote %s", ro.format(), r.Name)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

// InstallationFetchRemoteMetadataSync implements native.Library.
func (s *Sim) InstallationFetchRemoteMetadataSync(p native.Ptr, remote native.CString, ref native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	e, gerr := s.catalogEntry(p, remote, ref, "flatpak_installation_fetch_remote_metadata_sync")
	if gerr != nil {
		return native.Null, gerr
	}
	return s.newBytes(e.Metadata), nil
}

// InstallationFetchRemoteSizeSync implements native.Library.
func (s *Sim) InstallationFetchRemoteSizeSync(p native.Ptr, remote native.CString, ref native.Ptr, cancellable native.Ptr) (uint64, uint64, bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return 0, 0, false, cancelledErr()
	}
	e, gerr := s.catalogEntry(p, remote, ref, "flatpak_installation_fetch_remote_size_sync")
	if gerr != nil {
		return 0, 0, false, gerr
	}
	return e.DownloadSize, e.InstalledSize, true, nil
}

func (s *Sim) relatedArray(inst *store.Installation, remote, ref string, installedOnly bool) (native.Ptr, *native.GError) {
	rows, err := s.st.ListRelatedRefs(inst.ID, remote, ref)
	if err != nil {
		return native.Null, storeErr(err)
	}
	elems := make([]native.Ptr, 0, len(rows))
	for _, row := range rows {
		var commit *string
		if installedOnly {
			ir, err := s.st.GetInstalledRef(inst.ID, row.Related)
			if err != nil {
				continue
			}
			commit = strPtr(ir.Commit)
		} else if e, err := s.st.GetRemoteRef(inst.ID, remote, row.Related); err == nil {
			commit = strPtr(e.Commit)
		}
		elems = append(elems, s.newRelatedRef(row, commit))
	}
	return s.newArray(elems), nil
}

// InstallationListInstalledRelatedRefsSync implements native.Library.
func (s *Sim) InstallationListInstalledRelatedRefsSync(p native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_installed_related_refs_sync")
	if gerr != nil {
		return native.Null, gerr
	}
	if _, gerr := s.remote(inst, string(remote.Data)); gerr != nil {
		return native.Null, gerr
	}
	return s.relatedArray(inst, string(remote.Data), string(ref.Data), true)
}

// InstallationListRemoteRelatedRefsSync implements native.Library.
func (s *Sim) InstallationListRemoteRelatedRefsSync(p native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_list_remote_related_refs_sync")
	if gerr != nil {
		return native.Null, gerr
	}
	r, gerr := s.remote(inst, string(remote.Data))
	if gerr != nil {
		return native.Null, gerr
	}
	if gerr := s.online(r); gerr != nil {
		return native.Null, gerr
	}
	return s.relatedArray(inst, r.Name, string(ref.Data), false)
}

// InstallationLoadAppOverrides implements native.Library.
func (s *Sim) InstallationLoadAppOverrides(p native.Ptr, appID native.CString, cancellable native.Ptr) (native.CString, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.NullString(), cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_load_app_overrides")
	if gerr != nil {
		return native.NullString(), gerr
	}
	data, err := s.st.GetOverride(inst.ID, string(appID.Data))
	if errors.Is(err, store.ErrNotFound) {
		return native.NullString(), ioErr(native.IOErrorNotFound, "No overrides found for %s", string(appID.Data))
	}
	if err != nil {
		return native.NullString(), storeErr(err)
	}
	return native.Str(data), nil
}

type flatpakRef struct {
	name        string
	branch      string
	url         string
	title       *string
	kind        int
	suggestName string
}

func parseFlatpakRef(data []byte) (*flatpakRef, *native.GError) {
	f, err := keyfile.Parse(data)
	if err != nil || !f.HasGroup("Flatpak Ref") {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid .flatpakref: missing [Flatpak Ref] group")
	}
	const g = "Flatpak Ref"
	ref := &flatpakRef{branch: "master"}

	var ok bool
	if ref.name, ok = f.Lookup(g, "Name"); !ok || !validName(ref.name) {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid .flatpakref: invalid or missing Name")
	}
	if ref.url, ok = f.Lookup(g, "Url"); !ok || ref.url == "" {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid .flatpakref: missing Url")
	}
	if v, ok := f.Lookup(g, "Branch"); ok {
		ref.branch = v
	}
	if v, ok := f.Lookup(g, "Title"); ok {
		ref.title = &v
	}
	if rt, err := f.Bool(g, "IsRuntime"); err == nil && rt {
		ref.kind = kindRuntime
	}
	if v, ok := f.Lookup(g, "SuggestRemoteName"); ok {
		ref.suggestName = v
	}
	return ref, nil
}

// originFor finds the remote serving url or creates one for a flatpakref.
func (s *Sim) originFor(inst *store.Installation, ref *flatpakRef) (*store.Remote, *native.GError) {
	remotes, err := s.st.ListRemotes(inst.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, r := range remotes {
		if r.URL != nil && strings.TrimSuffix(*r.URL, "/") == strings.TrimSuffix(ref.url, "/") {
			return r, nil
		}
	}

	if gerr := writable(inst); gerr != nil {
		return nil, gerr
	}
	name := ref.suggestName
	if name == "" {
		name = strings.ToLower(ref.name) + "-origin"
	}
	r := &store.Remote{
		Installation: inst.ID,
		Name:         name,
		URL:          strPtr(ref.url),
		Title:        ref.title,
		GPGVerify:    true,
		Prio:         1,
		NoEnumerate:  true,
	}
	if err := s.st.InsertRemote(r); err != nil && !errors.Is(err, store.ErrExists) {
		return nil, storeErr(err)
	}
	return r, nil
}

// InstallationInstallRefFile implements native.Library.
func (s *Sim) InstallationInstallRefFile(p native.Ptr, data native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_install_ref_file")
	if gerr != nil {
		return native.Null, gerr
	}
	ref, gerr := parseFlatpakRef(s.BytesData(data))
	if gerr != nil {
		return native.Null, gerr
	}
	origin, gerr := s.originFor(inst, ref)
	if gerr != nil {
		return native.Null, gerr
	}

	full := formatRef(ref.kind, ref.name, s.arch, ref.branch)
	e, err := s.st.GetRemoteRef(inst.ID, origin.Name, full)
	if err != nil {
		e = &store.RemoteRef{Installation: inst.ID, Remote: origin.Name, Ref: full}
	}
	return s.newRemoteRef(e), nil
}

var configKeys = map[string]bool{
	"languages":       true,
	"extra-languages": true,
	"masked":          true,
	"pinned":          true,
}

// InstallationGetConfig implements native.Library.
func (s *Sim) InstallationGetConfig(p native.Ptr, key native.CString, cancellable native.Ptr) (native.CString, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.NullString(), cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_get_config")
	if gerr != nil {
		return native.NullString(), gerr
	}
	v, err := s.st.GetConfig(inst.ID, string(key.Data))
	if errors.Is(err, store.ErrNotFound) {
		return native.NullString(), newGError(native.DomainKeyFile, native.KeyFileErrorKeyNotFound, "Key file does not have key “%s” in group “core”", string(key.Data))
	}
	if err != nil {
		return native.NullString(), storeErr(err)
	}
	return native.Str(v), nil
}

// InstallationSetConfigSync implements native.Library.
func (s *Sim) InstallationSetConfigSync(p native.Ptr, key, value native.CString, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, gerr := s.installation(p, "flatpak_installation_set_config_sync")
	if gerr != nil {
		return false, gerr
	}
	k := string(key.Data)
	if !configKeys[k] {
		return false, ioErr(native.IOErrorInvalidArgument, "Unknown configure key '%s'", k)
	}
	if gerr := writable(inst); gerr != nil {
		return false, gerr
	}
	var v *string
	if !value.Null {
		v = strPtr(string(value.Data))
	}
	if err := s.st.SetConfig(inst.ID, k, v); err != nil {
		return false, storeErr(err)
	}
	return true, nil
}

// InstallationGetDefaultLanguages implements native.Library.
func (s *Sim) InstallationGetDefaultLanguages(p native.Ptr) ([]native.CString, *native.GError) {
	inst, gerr := s.installation(p, "flatpak_installation_get_default_languages")
	if gerr != nil {
		return nil, gerr
	}
	var langs []string
	if v, err := s.st.GetConfig(inst.ID, "languages"); err == nil {
		langs = strings.Split(strings.TrimSuffix(v, ";"), ";")
	} else if inst.Languages != nil {
		langs = inst.Languages
	} else {
		langs = []string{"en"}
	}
	out := make([]native.CString, 0, len(langs))
	for _, l := range langs {
		out = append(out, native.Str(l))
	}
	return out, nil
}

// InstallationGetMinFreeSpaceBytes implements native.Library.
func (s *Sim) InstallationGetMinFreeSpaceBytes(p native.Ptr) (uint64, bool, *native.GError) {
	inst, gerr := s.installation(p, "flatpak_installation_get_min_free_space_bytes")
	if gerr != nil {
		return 0, false, gerr
	}
	return inst.MinFreeSpace, true, nil
}

// InstallationDropCaches implements native.Library.
func (s *Sim) InstallationDropCaches(p native.Ptr, cancellable native.Ptr) (bool, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return false, cancelledErr()
	}
	if _, gerr := s.installation(p, "flatpak_installation_drop_caches"); gerr != nil {
		return false, gerr
	}
	return true, nil
}

// InstanceGetAll implements native.Library.
func (s *Sim) InstanceGetAll() native.Ptr {
	insts, err := s.st.ListInstances()
	if err != nil {
		return s.newArray(nil)
	}
	elems := make([]native.Ptr, 0, len(insts))
	for _, inst := range insts {
		elems = append(elems, s.alloc(native.TypeInstance, catGObject, &instanceObj{inst: inst}))
	}
	return s.newArray(elems)
}
