package nativesim

import (
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

type installationObj struct{ id string }

type remoteObj struct{ r *store.Remote }

type instanceObj struct{ inst *store.Instance }

func opt(v *string) native.CString {
	if v == nil {
		return native.NullString()
	}
	return native.Str(*v)
}

func (s *Sim) unknownSymbol(p native.Ptr, o *object, m native.Method) {
	s.mu.Lock()
	s.violate(m.Symbol+": not applicable", p, o)
	s.mu.Unlock()
}

// GetString implements native.Library.
func (s *Sim) GetString(p native.Ptr, m native.Method) native.CString {
	o := s.get(p, m.Symbol)
	if o == nil {
		return native.NullString()
	}

	switch v := o.value.(type) {
	case *installationObj:
		switch m.Symbol {
		case native.InstallationGetID.Symbol:
			return native.Str(v.id)
		case native.InstallationGetDisplayName.Symbol:
			inst, err := s.st.GetInstallation(v.id)
			if err != nil {
				return native.NullString()
			}
			return opt(inst.DisplayName)
		}
	case *remoteObj:
		if c, ok := remoteString(v.r, m.Symbol); ok {
			return c
		}
	case *refObj:
		if c, ok := refString(v, m.Symbol); ok {
			return c
		}
	case *operationObj:
		switch m.Symbol {
		case native.OperationGetRef.Symbol:
			return native.Str(v.ref)
		case native.OperationGetRemote.Symbol:
			return native.Str(v.remote)
		case native.OperationGetCommit.Symbol:
			return opt(v.commit)
		}
	case *progressObj:
		if m.Symbol == native.ProgressGetStatus.Symbol {
			s.mu.Lock()
			defer s.mu.Unlock()
			return native.Str(v.status)
		}
	case *instanceObj:
		switch m.Symbol {
		case native.InstanceGetID.Symbol:
			return native.Str(v.inst.ID)
		case native.InstanceGetApp.Symbol:
			return native.Str(v.inst.App)
		case native.InstanceGetArch.Symbol:
			return native.Str(v.inst.Arch)
		case native.InstanceGetBranch.Symbol:
			return native.Str(v.inst.Branch)
		case native.InstanceGetCommit.Symbol:
			return opt(v.inst.Commit)
		case native.InstanceGetRuntime.Symbol:
			return opt(v.inst.Runtime)
		case native.InstanceGetRuntimeCommit.Symbol:
			return opt(v.inst.RuntimeCommit)
		}
	}

	s.unknownSymbol(p, o, m)
	return native.NullString()
}

func remoteString(r *store.Remote, symbol string) (native.CString, bool) {
	switch symbol {
	case native.RemoteGetName.Symbol:
		return native.Str(r.Name), true
	case native.RemoteGetURL.Symbol:
		return opt(r.URL), true
	case native.RemoteGetTitle.Symbol:
		return opt(r.Title), true
	case native.RemoteGetComment.Symbol:
		return opt(r.Comment), true
	case native.RemoteGetDescription.Symbol:
		return opt(r.Description), true
	case native.RemoteGetHomepage.Symbol:
		return opt(r.Homepage), true
	case native.RemoteGetIcon.Symbol:
		return opt(r.Icon), true
	case native.RemoteGetCollectionID.Symbol:
		return opt(r.CollectionID), true
	case native.RemoteGetDefaultBranch.Symbol:
		return opt(r.DefaultBranch), true
	case native.RemoteGetMainRef.Symbol:
		return opt(r.MainRef), true
	case native.RemoteGetFilter.Symbol:
		return opt(r.Filter), true
	}
	return native.CString{}, false
}

func refString(r *refObj, symbol string) (native.CString, bool) {
	switch symbol {
	case native.RefGetName.Symbol:
		return native.Str(r.name), true
	case native.RefGetArch.Symbol:
		return native.Str(r.arch), true
	case native.RefGetBranch.Symbol:
		return native.Str(r.branch), true
	case native.RefGetCommit.Symbol:
		return opt(r.commit), true
	case native.RefGetCollectionID.Symbol:
		return opt(r.collectionID), true
	case native.RefFormatRef.Symbol:
		return native.Str(r.format()), true
	}

	if i := r.installed; i != nil {
		switch symbol {
		case native.InstalledRefGetOrigin.Symbol:
			return native.Str(i.Origin), true
		case native.InstalledRefGetDeployDir.Symbol:
			return native.Str(i.DeployDir), true
		case native.InstalledRefGetLatestCommit.Symbol:
			return opt(i.LatestCommit), true
		case native.InstalledRefGetEOL.Symbol:
			return opt(i.EOL), true
		case native.InstalledRefGetEOLRebase.Symbol:
			return opt(i.EOLRebase), true
		case native.InstalledRefGetAppdataName.Symbol:
			return opt(i.AppdataName), true
		case native.InstalledRefGetAppdataSummary.Symbol:
			return opt(i.AppdataSummary), true
		case native.InstalledRefGetAppdataVersion.Symbol:
			return opt(i.AppdataVersion), true
		case native.InstalledRefGetAppdataLicense.Symbol:
			return opt(i.AppdataLicense), true
		}
	}
	if rr := r.remote; rr != nil {
		switch symbol {
		case native.RemoteRefGetRemoteName.Symbol:
			return native.Str(rr.Remote), true
		case native.RemoteRefGetEOL.Symbol:
			return opt(rr.EOL), true
		case native.RemoteRefGetEOLRebase.Symbol:
			return opt(rr.EOLRebase), true
		}
	}
	if b := r.bundle; b != nil {
		switch symbol {
		case native.BundleRefGetOrigin.Symbol:
			return opt(b.origin), true
		case native.BundleRefGetRuntimeRepoURL.Symbol:
			return opt(b.runtimeRepo), true
		}
	}
	return native.CString{}, false
}

// GetStrv implements native.Library.
func (s *Sim) GetStrv(p native.Ptr, m native.Method) []native.CString {
	o := s.get(p, m.Symbol)
	if o == nil {
		return nil
	}
	if r, ok := o.value.(*refObj); ok {
		var vals []string
		found := false
		switch {
		case m.Symbol == native.InstalledRefGetSubpaths.Symbol && r.installed != nil:
			vals, found = r.installed.Subpaths, true
		case m.Symbol == native.RelatedRefGetSubpaths.Symbol && r.related != nil:
			vals, found = r.related.Subpaths, true
		}
		if found {
			if vals == nil {
				return nil
			}
			out := make([]native.CString, 0, len(vals))
			for _, v := range vals {
				out = append(out, native.Str(v))
			}
			return out
		}
	}
	s.unknownSymbol(p, o, m)
	return nil
}

// GetBool implements native.Library.
func (s *Sim) GetBool(p native.Ptr, m native.Method) bool {
	o := s.get(p, m.Symbol)
	if o == nil {
		return false
	}

	switch v := o.value.(type) {
	case *installationObj:
		if m.Symbol == native.InstallationGetIsUser.Symbol {
			inst, err := s.st.GetInstallation(v.id)
			return err == nil && inst.IsUser
		}
	case *remoteObj:
		switch m.Symbol {
		case native.RemoteGetDisabled.Symbol:
			return v.r.Disabled
		case native.RemoteGetNoDeps.Symbol:
			return v.r.NoDeps
		case native.RemoteGetNoEnumerate.Symbol:
			return v.r.NoEnumerate
		case native.RemoteGetGPGVerify.Symbol:
			return v.r.GPGVerify
		}
	case *refObj:
		if v.installed != nil && m.Symbol == native.InstalledRefGetIsCurrent.Symbol {
			return v.installed.IsCurrent
		}
		if rel := v.related; rel != nil {
			switch m.Symbol {
			case native.RelatedRefShouldDownload.Symbol:
				return rel.ShouldDownload
			case native.RelatedRefShouldDelete.Symbol:
				return rel.ShouldDelete
			case native.RelatedRefShouldAutoprune.Symbol:
				return rel.ShouldAutoprune
			}
		}
	case *transactionObj:
		if m.Symbol == native.TransactionIsEmpty.Symbol {
			s.mu.Lock()
			defer s.mu.Unlock()
			return len(v.requests) == 0 && len(v.ops) == 0
		}
	case *operationObj:
		if m.Symbol == native.OperationGetIsSkipped.Symbol {
			return v.skipped
		}
	case *progressObj:
		if m.Symbol == native.ProgressGetIsEstimating.Symbol {
			s.mu.Lock()
			defer s.mu.Unlock()
			return v.estimating
		}
	case *instanceObj:
		if m.Symbol == native.InstanceIsRunning.Symbol {
			return v.inst.Running
		}
	}

	s.unknownSymbol(p, o, m)
	return false
}

// GetInt implements native.Library.
func (s *Sim) GetInt(p native.Ptr, m native.Method) int64 {
	o := s.get(p, m.Symbol)
	if o == nil {
		return 0
	}

	switch v := o.value.(type) {
	case *installationObj:
		if m.Symbol == native.InstallationGetPriority.Symbol {
			inst, err := s.st.GetInstallation(v.id)
			if err != nil {
				return 0
			}
			return int64(inst.Priority)
		}
	case *remoteObj:
		switch m.Symbol {
		case native.RemoteGetPrio.Symbol:
			return int64(v.r.Prio)
		case native.RemoteGetType.Symbol:
			return int64(v.r.Type)
		}
	case *refObj:
		if m.Symbol == native.RefGetKind.Symbol {
			return int64(v.kind)
		}
	case *operationObj:
		if m.Symbol == native.OperationGetType.Symbol {
			return int64(v.kind)
		}
	case *progressObj:
		if m.Symbol == native.ProgressGetProgress.Symbol {
			s.mu.Lock()
			defer s.mu.Unlock()
			return int64(v.progress)
		}
	case *instanceObj:
		switch m.Symbol {
		case native.InstanceGetPID.Symbol:
			return int64(v.inst.PID)
		case native.InstanceGetChildPID.Symbol:
			return int64(v.inst.ChildPID)
		}
	}

	s.unknownSymbol(p, o, m)
	return 0
}

// GetUint64 implements native.Library.
func (s *Sim) GetUint64(p native.Ptr, m native.Method) uint64 {
	o := s.get(p, m.Symbol)
	if o == nil {
		return 0
	}

	switch v := o.value.(type) {
	case *refObj:
		switch {
		case m.Symbol == native.InstalledRefGetInstalledSize.Symbol && v.installed != nil:
			return v.installed.InstalledSize
		case m.Symbol == native.RemoteRefGetDownloadSize.Symbol && v.remote != nil:
			return v.remote.DownloadSize
		case m.Symbol == native.RemoteRefGetInstalledSize.Symbol && v.remote != nil:
			return v.remote.InstalledSize
		case m.Symbol == native.BundleRefGetInstalledSize.Symbol && v.bundle != nil:
			return v.bundle.installedSize
		}
	case *operationObj:
		switch m.Symbol {
		case native.OperationGetDownloadSize.Symbol:
			return v.downloadSize
		case native.OperationGetInstalledSize.Symbol:
			return v.installedSize
		}
	case *progressObj:
		s.mu.Lock()
		defer s.mu.Unlock()
		switch m.Symbol {
		case native.ProgressGetBytesTransferred.Symbol:
			return v.bytes
		case native.ProgressGetStartTime.Symbol:
			return v.startTime
		}
	}

	s.unknownSymbol(p, o, m)
	return 0
}

// GetObject implements native.Library. Transfer-full results carry a new
// reference.
func (s *Sim) GetObject(p native.Ptr, m native.Method) native.Ptr {
	o := s.get(p, m.Symbol)
	if o == nil {
		return native.Null
	}

	switch v := o.value.(type) {
	case *installationObj:
		if m.Symbol == native.InstallationGetPath.Symbol {
			inst, err := s.st.GetInstallation(v.id)
			if err != nil {
				return native.Null
			}
			return s.newFile(inst.Path)
		}
	case *refObj:
		if m.Symbol == native.BundleRefGetFile.Symbol && v.bundle != nil {
			return s.newFile(v.bundle.path)
		}
	case *transactionObj:
		switch m.Symbol {
		case native.TransactionGetInstallation.Symbol:
			return v.installation
		case native.TransactionGetCurrentOperation.Symbol:
			s.mu.Lock()
			cur := v.current
			s.mu.Unlock()
			if cur.IsNull() {
				return native.Null
			}
			return s.Ref(cur)
		}
	case *operationObj:
		if m.Symbol == native.OperationGetBundlePath.Symbol {
			return v.bundle
		}
	}

	s.unknownSymbol(p, o, m)
	return native.Null
}

// GetPointer implements native.Library.
func (s *Sim) GetPointer(p native.Ptr, m native.Method) native.Ptr {
	o := s.get(p, m.Symbol)
	if o == nil {
		return native.Null
	}

	switch v := o.value.(type) {
	case *refObj:
		switch {
		case m.Symbol == native.RemoteRefGetMetadata.Symbol && v.remote != nil:
			if v.remote.Metadata == nil {
				return native.Null
			}
			return s.child(p, m.Symbol, func() native.Ptr { return s.newBytes(v.remote.Metadata) })
		case m.Symbol == native.BundleRefGetMetadata.Symbol && v.bundle != nil:
			if v.bundle.metadata == nil {
				return native.Null
			}
			return s.newBytes(v.bundle.metadata)
		case m.Symbol == native.BundleRefGetAppstream.Symbol && v.bundle != nil:
			if v.bundle.appstream == nil {
				return native.Null
			}
			return s.newBytes(v.bundle.appstream)
		}
	case *operationObj:
		if m.Symbol == native.OperationGetMetadata.Symbol {
			if v.metadata == nil {
				return native.Null
			}
			return s.child(p, m.Symbol, func() native.Ptr { return s.newKeyFile(v.metadata) })
		}
	case *instanceObj:
		if m.Symbol == native.InstanceGetInfo.Symbol {
			if v.inst.Info == nil {
				return native.Null
			}
			return s.newKeyFile(v.inst.Info)
		}
	}

	s.unknownSymbol(p, o, m)
	return native.Null
}

// SetString implements native.Library.
func (s *Sim) SetString(p native.Ptr, m native.Method, val native.CString) {
	o := s.get(p, m.Symbol)
	if o == nil {
		return
	}
	v, ok := o.value.(*remoteObj)
	if !ok {
		s.unknownSymbol(p, o, m)
		return
	}

	var nv *string
	if !val.Null {
		nv = strPtr(string(val.Data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := v.r
	switch m.Symbol {
	case native.RemoteSetURL.Symbol:
		r.URL = nv
	case native.RemoteSetTitle.Symbol:
		r.Title = nv
	case native.RemoteSetComment.Symbol:
		r.Comment = nv
	case native.RemoteSetDescription.Symbol:
		r.Description = nv
	case native.RemoteSetHomepage.Symbol:
		r.Homepage = nv
	case native.RemoteSetIcon.Symbol:
		r.Icon = nv
	case native.RemoteSetCollectionID.Symbol:
		r.CollectionID = nv
	case native.RemoteSetDefaultBranch.Symbol:
		r.DefaultBranch = nv
	case native.RemoteSetMainRef.Symbol:
		r.MainRef = nv
	case native.RemoteSetFilter.Symbol:
		r.Filter = nv
	default:
		s.violate(m.Symbol+": not applicable", p, o)
	}
}

// SetBool implements native.Library.
func (s *Sim) SetBool(p native.Ptr, m native.Method, val bool) {
	o := s.get(p, m.Symbol)
	if o == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := o.value.(type) {
	case *remoteObj:
		switch m.Symbol {
		case native.RemoteSetDisabled.Symbol:
			v.r.Disabled = val
			return
		case native.RemoteSetNoDeps.Symbol:
			v.r.NoDeps = val
			return
		case native.RemoteSetNoEnumerate.Symbol:
			v.r.NoEnumerate = val
			return
		case native.RemoteSetGPGVerify.Symbol:
			v.r.GPGVerify = val
			return
		}
	case *transactionObj:
		if v.flags == nil {
			v.flags = make(map[string]bool)
		}
		switch m.Symbol {
		case native.TransactionSetNoInteraction.Symbol,
			native.TransactionSetNoDeploy.Symbol,
			native.TransactionSetNoPull.Symbol,
			native.TransactionSetDisableDependencies.Symbol,
			native.TransactionSetDisableRelated.Symbol,
			native.TransactionSetReinstall.Symbol:
			v.flags[m.Symbol] = val
			return
		}
	}
	s.violate(m.Symbol+": not applicable", p, o)
}

// SetInt implements native.Library.
func (s *Sim) SetInt(p native.Ptr, m native.Method, val int64) {
	o := s.get(p, m.Symbol)
	if o == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := o.value.(type) {
	case *remoteObj:
		if m.Symbol == native.RemoteSetPrio.Symbol {
			v.r.Prio = int(val)
			return
		}
	case *progressObj:
		if m.Symbol == native.ProgressSetUpdateFrequency.Symbol {
			v.frequency = int(val)
			return
		}
	}
	s.violate(m.Symbol+": not applicable", p, o)
}

// RemoteNew implements native.Library.
func (s *Sim) RemoteNew(name native.CString) native.Ptr {
	return s.alloc(native.TypeRemote, catGObject, &remoteObj{r: &store.Remote{
		Name:      string(name.Data),
		GPGVerify: true,
		Prio:      1,
	}})
}

// RemoteSetGPGKey implements native.Library.
func (s *Sim) RemoteSetGPGKey(remote native.Ptr, data native.Ptr) {
	o := s.get(remote, "flatpak_remote_set_gpg_key")
	if o == nil {
		return
	}
	key := s.BytesData(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := o.value.(*remoteObj); ok {
		v.r.GPGKey = append([]byte{}, key...)
	}
}
