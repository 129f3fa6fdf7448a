package nativesim

import (
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/goflatpak/internal/store"
)

// Fixture helpers. They write straight to the backing store, bypassing the
// native object model.

// AddRemote configures a remote on an installation.
func (s *Sim) AddRemote(installation, name, url string) error {
	return s.st.InsertRemote(&store.Remote{
		Installation: installation,
		Name:         name,
		URL:          strPtr(url),
		GPGVerify:    true,
		Prio:         1,
	})
}

// SetOffline makes network operations against a remote fail.
func (s *Sim) SetOffline(installation, remote string, offline bool) error {
	r, err := s.st.GetRemote(installation, remote)
	if err != nil {
		return err
	}
	r.Offline = offline
	return s.st.UpdateRemote(r)
}

// SetReadOnly marks an installation as not writable by the caller.
func (s *Sim) SetReadOnly(installation string, readOnly bool) error {
	inst, err := s.st.GetInstallation(installation)
	if err != nil {
		return err
	}
	inst.ReadOnly = readOnly
	return s.st.UpsertInstallation(inst)
}

// Publish adds ref to a remote's catalog. The runtime, if set, becomes the
// application's dependency.
func (s *Sim) Publish(installation, remote, ref, commit, runtime string, downloadSize, installedSize uint64) error {
	r, gerr := parseRef(ref)
	if gerr != nil {
		return gerr
	}
	var metadata string
	if r.kind == kindApp {
		metadata = fmt.Sprintf("[Application]\nname=%s\n", r.name)
		if runtime != "" {
			metadata += "runtime=" + runtime + "\n"
		}
	} else {
		metadata = fmt.Sprintf("[Runtime]\nname=%s\n", r.name)
	}
	return s.st.UpsertRemoteRef(&store.RemoteRef{
		Installation:  installation,
		Remote:        remote,
		Ref:           ref,
		Commit:        commit,
		DownloadSize:  downloadSize,
		InstalledSize: installedSize,
		Metadata:      []byte(metadata),
	})
}

// Relate declares related as an extension of ref in a remote.
func (s *Sim) Relate(installation, remote, ref, related string, subpaths []string) error {
	return s.st.InsertRelatedRef(&store.RelatedRef{
		Installation:   installation,
		Remote:         remote,
		Ref:            ref,
		Related:        related,
		Subpaths:       subpaths,
		ShouldDownload: true,
		ShouldDelete:   true,
	})
}

// Deploy records ref as installed from origin.
func (s *Sim) Deploy(installation, origin, ref, commit string, installedSize uint64) error {
	r, gerr := parseRef(ref)
	if gerr != nil {
		return gerr
	}
	inst, err := s.st.GetInstallation(installation)
	if err != nil {
		return err
	}
	row := &store.InstalledRef{
		Installation:  installation,
		Ref:           ref,
		Origin:        origin,
		Commit:        commit,
		LatestCommit:  strPtr(commit),
		InstalledSize: installedSize,
		DeployDir:     filepath.Join(inst.Path, ref, "active"),
		IsCurrent:     r.kind == kindApp,
	}
	if r.kind == kindApp {
		row.Metadata = []byte(fmt.Sprintf("[Application]\nname=%s\n", r.name))
	}
	return s.st.UpsertInstalledRef(row)
}

// AddInstance records a running sandbox.
func (s *Sim) AddInstance(id, app string, pid int) error {
	r := mustParse(app)
	return s.st.InsertInstance(&store.Instance{
		ID:      id,
		App:     r.name,
		Arch:    r.arch,
		Branch:  r.branch,
		PID:     pid,
		Running: true,
		Info:    []byte(fmt.Sprintf("[Application]\nname=%s\n\n[Instance]\ninstance-id=%s\n", r.name, id)),
	})
}

// SetOverride stores the override file of an application.
func (s *Sim) SetOverride(installation, appID, data string) error {
	return s.st.SetOverride(installation, appID, data)
}
