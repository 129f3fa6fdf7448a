package libflatpak

import (
	"runtime"
	"unsafe"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// objectResult finishes a call returning a transfer-full pointer with a
// GError out parameter.
func (l *Library) objectResult(r, gerr uintptr) (native.Ptr, *native.GError) {
	if r == 0 {
		return native.Null, l.takeError(gerr)
	}
	return native.Ptr(r), nil
}

func (l *Library) boolResult(r, gerr uintptr) (bool, *native.GError) {
	if !isTrue(r) {
		return false, l.takeError(gerr)
	}
	return true, nil
}

func (l *Library) DefaultArch() native.CString {
	return goCString(l.invoke("flatpak_get_default_arch"))
}

func (l *Library) SupportedArches() []native.CString {
	return goStrv(l.invoke("flatpak_get_supported_arches"))
}

func (l *Library) GetSystemInstallations(cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_get_system_installations", ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstanceGetAll() native.Ptr {
	return native.Ptr(l.invoke("flatpak_instance_get_all"))
}

func (l *Library) InstallationNewSystem(cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_new_system", ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationNewUser(cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_new_user", ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationNewForPath(file native.Ptr, user bool, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_new_for_path",
		ptr(file), gboolean(user), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationListInstalledRefs(inst, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_list_installed_refs",
		ptr(inst), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationListInstalledRefsByKind(inst native.Ptr, kind int, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_list_installed_refs_by_kind",
		ptr(inst), uintptr(kind), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationListInstalledRefsForUpdate(inst, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_list_installed_refs_for_update",
		ptr(inst), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationGetInstalledRef(inst native.Ptr, kind int, name, arch, branch native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	n, a, b := newCBuf(name), newCBuf(arch), newCBuf(branch)
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_installed_ref",
		ptr(inst), uintptr(kind), n.ptr(), a.ptr(), b.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(n)
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationGetCurrentInstalledApp(inst native.Ptr, name native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	n := newCBuf(name)
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_current_installed_app",
		ptr(inst), n.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(n)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationListRemotes(inst, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_list_remotes", ptr(inst), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationGetRemoteByName(inst native.Ptr, name native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	n := newCBuf(name)
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_remote_by_name",
		ptr(inst), n.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(n)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationAddRemote(inst, remote native.Ptr, ifNeeded bool, cancellable native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_add_remote",
		ptr(inst), ptr(remote), gboolean(ifNeeded), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}

func (l *Library) InstallationModifyRemote(inst, remote native.Ptr, cancellable native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_modify_remote",
		ptr(inst), ptr(remote), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}

func (l *Library) InstallationRemoveRemote(inst native.Ptr, name native.CString, cancellable native.Ptr) (bool, *native.GError) {
	n := newCBuf(name)
	var gerr uintptr
	r := l.invoke("flatpak_installation_remove_remote",
		ptr(inst), n.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(n)
	return l.boolResult(r, gerr)
}

func (l *Library) InstallationUpdateRemoteSync(inst native.Ptr, name native.CString, cancellable native.Ptr) (bool, *native.GError) {
	n := newCBuf(name)
	var gerr uintptr
	r := l.invoke("flatpak_installation_update_remote_sync",
		ptr(inst), n.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(n)
	return l.boolResult(r, gerr)
}

func (l *Library) InstallationListRemoteRefsSync(inst native.Ptr, remote native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	rm := newCBuf(remote)
	var gerr uintptr
	r := l.invoke("flatpak_installation_list_remote_refs_sync",
		ptr(inst), rm.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationFetchRemoteRefSync(inst native.Ptr, remote native.CString, kind int, name, arch, branch native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	rm, n, a, b := newCBuf(remote), newCBuf(name), newCBuf(arch), newCBuf(branch)
	var gerr uintptr
	r := l.invoke("flatpak_installation_fetch_remote_ref_sync",
		ptr(inst), rm.ptr(), uintptr(kind), n.ptr(), a.ptr(), b.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	runtime.KeepAlive(n)
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationFetchRemoteMetadataSync(inst native.Ptr, remote native.CString, ref native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	rm := newCBuf(remote)
	var gerr uintptr
	r := l.invoke("flatpak_installation_fetch_remote_metadata_sync",
		ptr(inst), rm.ptr(), ptr(ref), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationFetchRemoteSizeSync(inst native.Ptr, remote native.CString, ref native.Ptr, cancellable native.Ptr) (uint64, uint64, bool, *native.GError) {
	rm := newCBuf(remote)
	var download, installed uint64
	var gerr uintptr
	r := l.invoke("flatpak_installation_fetch_remote_size_sync",
		ptr(inst), rm.ptr(), ptr(ref),
		uintptr(unsafe.Pointer(&download)), uintptr(unsafe.Pointer(&installed)),
		ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	ok, e := l.boolResult(r, gerr)
	return download, installed, ok, e
}

func (l *Library) InstallationListInstalledRelatedRefsSync(inst native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	return l.relatedRefs("flatpak_installation_list_installed_related_refs_sync", inst, remote, ref, cancellable)
}

func (l *Library) InstallationListRemoteRelatedRefsSync(inst native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	return l.relatedRefs("flatpak_installation_list_remote_related_refs_sync", inst, remote, ref, cancellable)
}

func (l *Library) relatedRefs(symbol string, inst native.Ptr, remote, ref native.CString, cancellable native.Ptr) (native.Ptr, *native.GError) {
	rm, rf := newCBuf(remote), newCBuf(ref)
	var gerr uintptr
	r := l.invoke(symbol, ptr(inst), rm.ptr(), rf.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	runtime.KeepAlive(rf)
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationLoadAppOverrides(inst native.Ptr, appID native.CString, cancellable native.Ptr) (native.CString, *native.GError) {
	id := newCBuf(appID)
	var gerr uintptr
	r := l.invoke("flatpak_installation_load_app_overrides",
		ptr(inst), id.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(id)
	if r == 0 {
		return native.NullString(), l.takeError(gerr)
	}
	return l.takeCString(r), nil
}

func (l *Library) InstallationInstallRefFile(inst native.Ptr, data native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_install_ref_file",
		ptr(inst), ptr(data), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstallationGetConfig(inst native.Ptr, key native.CString, cancellable native.Ptr) (native.CString, *native.GError) {
	k := newCBuf(key)
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_config",
		ptr(inst), k.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(k)
	if r == 0 {
		return native.NullString(), l.takeError(gerr)
	}
	return l.takeCString(r), nil
}

func (l *Library) InstallationSetConfigSync(inst native.Ptr, key, value native.CString, cancellable native.Ptr) (bool, *native.GError) {
	k, v := newCBuf(key), newCBuf(value)
	var gerr uintptr
	r := l.invoke("flatpak_installation_set_config_sync",
		ptr(inst), k.ptr(), v.ptr(), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(k)
	runtime.KeepAlive(v)
	return l.boolResult(r, gerr)
}

func (l *Library) InstallationGetDefaultLanguages(inst native.Ptr) ([]native.CString, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_default_languages", ptr(inst), uintptr(unsafe.Pointer(&gerr)))
	if r == 0 {
		return nil, l.takeError(gerr)
	}
	return l.takeStrv(r), nil
}

func (l *Library) InstallationGetMinFreeSpaceBytes(inst native.Ptr) (uint64, bool, *native.GError) {
	var out uint64
	var gerr uintptr
	r := l.invoke("flatpak_installation_get_min_free_space_bytes",
		ptr(inst), uintptr(unsafe.Pointer(&out)), uintptr(unsafe.Pointer(&gerr)))
	ok, e := l.boolResult(r, gerr)
	return out, ok, e
}

func (l *Library) InstallationDropCaches(inst, cancellable native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installation_drop_caches", ptr(inst), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}

func (l *Library) RemoteNew(name native.CString) native.Ptr {
	n := newCBuf(name)
	r := l.invoke("flatpak_remote_new", n.ptr())
	runtime.KeepAlive(n)
	return native.Ptr(r)
}

func (l *Library) RemoteSetGPGKey(remote, data native.Ptr) {
	l.invoke("flatpak_remote_set_gpg_key", ptr(remote), ptr(data))
}

func (l *Library) RefParse(ref native.CString) (native.Ptr, *native.GError) {
	rf := newCBuf(ref)
	var gerr uintptr
	r := l.invoke("flatpak_ref_parse", rf.ptr(), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rf)
	return l.objectResult(r, gerr)
}

func (l *Library) BundleRefNew(file native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_bundle_ref_new", ptr(file), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) BundleRefGetIcon(ref native.Ptr, size int) native.Ptr {
	return native.Ptr(l.invoke("flatpak_bundle_ref_get_icon", ptr(ref), uintptr(size)))
}

func (l *Library) InstalledRefLoadMetadata(ref, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installed_ref_load_metadata", ptr(ref), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) InstalledRefLoadAppdata(ref, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_installed_ref_load_appdata", ptr(ref), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) TransactionNewForInstallation(inst, cancellable native.Ptr) (native.Ptr, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_transaction_new_for_installation",
		ptr(inst), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.objectResult(r, gerr)
}

func (l *Library) TransactionAddInstall(t native.Ptr, remote, ref native.CString, subpaths []native.CString) (bool, *native.GError) {
	rm, rf := newCBuf(remote), newCBuf(ref)
	sp := l.newStrv(subpaths)
	defer l.freeStrv(sp)
	var gerr uintptr
	r := l.invoke("flatpak_transaction_add_install",
		ptr(t), rm.ptr(), rf.ptr(), sp, uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rm)
	runtime.KeepAlive(rf)
	return l.boolResult(r, gerr)
}

func (l *Library) TransactionAddUpdate(t native.Ptr, ref native.CString, subpaths []native.CString, commit native.CString) (bool, *native.GError) {
	rf, cm := newCBuf(ref), newCBuf(commit)
	sp := l.newStrv(subpaths)
	defer l.freeStrv(sp)
	var gerr uintptr
	r := l.invoke("flatpak_transaction_add_update",
		ptr(t), rf.ptr(), sp, cm.ptr(), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rf)
	runtime.KeepAlive(cm)
	return l.boolResult(r, gerr)
}

func (l *Library) TransactionAddUninstall(t native.Ptr, ref native.CString) (bool, *native.GError) {
	rf := newCBuf(ref)
	var gerr uintptr
	r := l.invoke("flatpak_transaction_add_uninstall", ptr(t), rf.ptr(), uintptr(unsafe.Pointer(&gerr)))
	runtime.KeepAlive(rf)
	return l.boolResult(r, gerr)
}

func (l *Library) TransactionAddInstallBundle(t, file, gpgData native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_transaction_add_install_bundle",
		ptr(t), ptr(file), ptr(gpgData), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}

func (l *Library) TransactionAddInstallFlatpakref(t, data native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_transaction_add_install_flatpakref", ptr(t), ptr(data), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}

func (l *Library) TransactionGetOperations(t native.Ptr) native.Ptr {
	return native.Ptr(l.invoke("flatpak_transaction_get_operations", ptr(t)))
}

func (l *Library) TransactionRun(t, cancellable native.Ptr) (bool, *native.GError) {
	var gerr uintptr
	r := l.invoke("flatpak_transaction_run", ptr(t), ptr(cancellable), uintptr(unsafe.Pointer(&gerr)))
	return l.boolResult(r, gerr)
}
