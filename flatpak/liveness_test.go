package flatpak

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/nativesim"
)

// released holds one wrapper of every kind, all released.
type released struct {
	inst        *Installation
	remote      *Remote
	plain       *PlainRef
	installed   *InstalledRef
	remoteRef   *RemoteRef
	bundle      *BundleRef
	related     *RelatedRef
	tx          *Transaction
	op          *TransactionOperation
	instance    *Instance
	cancellable *Cancellable
}

func newReleased(t *testing.T) (*released, *nativesim.Sim) {
	t.Helper()
	c, sim, _ := newTestClient(t)
	seedCatalog(t, sim)
	if err := sim.Deploy("default", "flathub", appRef, "a0", 30); err != nil {
		t.Fatal(err)
	}
	if err := sim.AddInstance("1234", appRef, 4242); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	var (
		r   released
		err error
	)
	r.inst, err = c.SystemInstallation(ctx)
	must(err)
	r.remote, err = r.inst.GetRemoteByName(ctx, "flathub")
	must(err)
	r.plain, err = c.ParseRef(appRef)
	must(err)
	r.installed, err = r.inst.GetInstalledRef(ctx, KindApp, "org.example.App", nil, nil)
	must(err)
	r.remoteRef, err = r.inst.FetchRemoteRef(ctx, "flathub", KindRuntime, "org.example.Platform", nil, nil)
	must(err)

	related, err := r.inst.ListRemoteRelatedRefs(ctx, "flathub", appRef)
	must(err)
	if len(related) != 1 {
		t.Fatalf("ListRemoteRelatedRefs() = %d refs, want 1", len(related))
	}
	r.related = related[0]

	path := filepath.Join(t.TempDir(), "app.flatpak")
	bundle := "[Flatpak Bundle]\nRef=" + appRef + "\nCommit=b1\nInstalledSize=4096\nMetadata=[Application]\n"
	must(os.WriteFile(path, []byte(bundle), 0o644))
	r.bundle, err = c.OpenBundle(path)
	must(err)

	r.tx, err = r.inst.NewTransaction(ctx)
	must(err)
	must(r.tx.AddInstall("flathub", runtimeRef, nil))
	ops, err := r.tx.Operations()
	must(err)
	if len(ops) != 1 {
		t.Fatalf("Operations() = %d, want 1", len(ops))
	}
	r.op = ops[0]

	instances, err := c.Instances()
	must(err)
	if len(instances) != 1 {
		t.Fatalf("Instances() = %d, want 1", len(instances))
	}
	r.instance = instances[0]
	r.cancellable, err = c.NewCancellable()
	must(err)

	for _, w := range []releaser{
		r.op, r.tx, r.remote, r.plain, r.installed, r.remoteRef, r.related,
		r.bundle, r.instance, r.cancellable, r.inst,
	} {
		w.Release()
	}
	return &r, sim
}

func errOf[T any](_ T, err error) error { return err }

func TestReleasedWrappers_InvalidHandle(t *testing.T) {
	r, sim := newReleased(t)
	ctx := context.Background()
	bad := "\xff"
	badPtr := &bad
	inst, remote, tx, op := r.inst, r.remote, r.tx, r.op

	tests := []struct {
		name string
		call func() error
	}{
		{"Installation.ID", func() error { return errOf(inst.ID()) }},
		{"Installation.Path", func() error { return errOf(inst.Path()) }},
		{"Installation.IsUser", func() error { return errOf(inst.IsUser()) }},
		{"Installation.Priority", func() error { return errOf(inst.Priority()) }},
		{"Installation.DisplayName", func() error { return errOf(inst.DisplayName()) }},
		{"Installation.ListInstalledRefs", func() error { return errOf(inst.ListInstalledRefs(ctx)) }},
		{"Installation.ListInstalledRefsByKind", func() error { return errOf(inst.ListInstalledRefsByKind(ctx, KindApp)) }},
		{"Installation.ListInstalledRefsForUpdate", func() error { return errOf(inst.ListInstalledRefsForUpdate(ctx)) }},
		{"Installation.GetInstalledRef", func() error {
			return errOf(inst.GetInstalledRef(ctx, KindApp, "org.example.App", nil, nil))
		}},
		{"Installation.GetInstalledRef bad name", func() error {
			return errOf(inst.GetInstalledRef(ctx, KindApp, bad, nil, nil))
		}},
		{"Installation.GetInstalledRef bad arch", func() error {
			return errOf(inst.GetInstalledRef(ctx, KindApp, "org.example.App", badPtr, nil))
		}},
		{"Installation.GetCurrentInstalledApp bad name", func() error {
			return errOf(inst.GetCurrentInstalledApp(ctx, bad))
		}},
		{"Installation.ListRemotes", func() error { return errOf(inst.ListRemotes(ctx)) }},
		{"Installation.GetRemoteByName bad name", func() error { return errOf(inst.GetRemoteByName(ctx, bad)) }},
		{"Installation.AddRemote nil", func() error { return inst.AddRemote(ctx, nil, false) }},
		{"Installation.ModifyRemote nil", func() error { return inst.ModifyRemote(ctx, nil) }},
		{"Installation.RemoveRemote bad name", func() error { return inst.RemoveRemote(ctx, bad) }},
		{"Installation.UpdateRemote bad name", func() error { return inst.UpdateRemote(ctx, bad) }},
		{"Installation.ListRemoteRefs bad remote", func() error { return errOf(inst.ListRemoteRefs(ctx, bad)) }},
		{"Installation.FetchRemoteRef bad remote", func() error {
			return errOf(inst.FetchRemoteRef(ctx, bad, KindApp, "org.example.App", nil, nil))
		}},
		{"Installation.FetchRemoteRef bad branch", func() error {
			return errOf(inst.FetchRemoteRef(ctx, "flathub", KindApp, "org.example.App", nil, badPtr))
		}},
		{"Installation.FetchRemoteMetadata nil ref", func() error {
			return errOf(inst.FetchRemoteMetadata(ctx, "flathub", nil))
		}},
		{"Installation.FetchRemoteMetadata bad remote", func() error {
			return errOf(inst.FetchRemoteMetadata(ctx, bad, r.plain))
		}},
		{"Installation.FetchRemoteSize bad remote", func() error {
			_, _, err := inst.FetchRemoteSize(ctx, bad, nil)
			return err
		}},
		{"Installation.ListInstalledRelatedRefs bad ref", func() error {
			return errOf(inst.ListInstalledRelatedRefs(ctx, "flathub", bad))
		}},
		{"Installation.ListRemoteRelatedRefs bad remote", func() error {
			return errOf(inst.ListRemoteRelatedRefs(ctx, bad, appRef))
		}},
		{"Installation.LoadAppOverrides bad id", func() error { return errOf(inst.LoadAppOverrides(ctx, bad)) }},
		{"Installation.InstallRefFile nil", func() error { return errOf(inst.InstallRefFile(ctx, nil)) }},
		{"Installation.Config bad key", func() error { return errOf(inst.Config(ctx, bad)) }},
		{"Installation.SetConfig bad value", func() error { return inst.SetConfig(ctx, "languages", bad) }},
		{"Installation.DefaultLanguages", func() error { return errOf(inst.DefaultLanguages()) }},
		{"Installation.MinFreeSpaceBytes", func() error { return errOf(inst.MinFreeSpaceBytes()) }},
		{"Installation.DropCaches", func() error { return inst.DropCaches(ctx) }},
		{"Installation.NewTransaction", func() error { return errOf(inst.NewTransaction(ctx)) }},
		{"Installation.Monitor", func() error { return inst.Monitor(ctx, func(InstallationChange) {}) }},

		{"Remote.Name", func() error { return errOf(remote.Name()) }},
		{"Remote.URL", func() error { return errOf(remote.URL()) }},
		{"Remote.Title", func() error { return errOf(remote.Title()) }},
		{"Remote.Comment", func() error { return errOf(remote.Comment()) }},
		{"Remote.Description", func() error { return errOf(remote.Description()) }},
		{"Remote.Homepage", func() error { return errOf(remote.Homepage()) }},
		{"Remote.Icon", func() error { return errOf(remote.Icon()) }},
		{"Remote.CollectionID", func() error { return errOf(remote.CollectionID()) }},
		{"Remote.DefaultBranch", func() error { return errOf(remote.DefaultBranch()) }},
		{"Remote.MainRef", func() error { return errOf(remote.MainRef()) }},
		{"Remote.Filter", func() error { return errOf(remote.Filter()) }},
		{"Remote.Disabled", func() error { return errOf(remote.Disabled()) }},
		{"Remote.NoDeps", func() error { return errOf(remote.NoDeps()) }},
		{"Remote.NoEnumerate", func() error { return errOf(remote.NoEnumerate()) }},
		{"Remote.GPGVerify", func() error { return errOf(remote.GPGVerify()) }},
		{"Remote.Prio", func() error { return errOf(remote.Prio()) }},
		{"Remote.Type", func() error { return errOf(remote.Type()) }},
		{"Remote.SetURL bad", func() error { return remote.SetURL(bad) }},
		{"Remote.SetTitle bad", func() error { return remote.SetTitle(badPtr) }},
		{"Remote.SetComment bad", func() error { return remote.SetComment(badPtr) }},
		{"Remote.SetDescription bad", func() error { return remote.SetDescription(badPtr) }},
		{"Remote.SetHomepage bad", func() error { return remote.SetHomepage(badPtr) }},
		{"Remote.SetIcon bad", func() error { return remote.SetIcon(badPtr) }},
		{"Remote.SetCollectionID bad", func() error { return remote.SetCollectionID(badPtr) }},
		{"Remote.SetDefaultBranch bad", func() error { return remote.SetDefaultBranch(badPtr) }},
		{"Remote.SetMainRef bad", func() error { return remote.SetMainRef(badPtr) }},
		{"Remote.SetFilter nil", func() error { return remote.SetFilter(nil) }},
		{"Remote.SetDisabled", func() error { return remote.SetDisabled(true) }},
		{"Remote.SetNoDeps", func() error { return remote.SetNoDeps(true) }},
		{"Remote.SetNoEnumerate", func() error { return remote.SetNoEnumerate(true) }},
		{"Remote.SetGPGVerify", func() error { return remote.SetGPGVerify(false) }},
		{"Remote.SetPrio", func() error { return remote.SetPrio(3) }},
		{"Remote.SetGPGKey nil", func() error { return remote.SetGPGKey(nil) }},

		{"PlainRef.Name", func() error { return errOf(r.plain.Name()) }},
		{"PlainRef.Arch", func() error { return errOf(r.plain.Arch()) }},
		{"PlainRef.Branch", func() error { return errOf(r.plain.Branch()) }},
		{"PlainRef.Format", func() error { return errOf(r.plain.Format()) }},
		{"PlainRef.Commit", func() error { return errOf(r.plain.Commit()) }},
		{"PlainRef.CollectionID", func() error { return errOf(r.plain.CollectionID()) }},
		{"PlainRef.Kind", func() error { return errOf(r.plain.Kind()) }},

		{"InstalledRef.Origin", func() error { return errOf(r.installed.Origin()) }},
		{"InstalledRef.DeployDir", func() error { return errOf(r.installed.DeployDir()) }},
		{"InstalledRef.IsCurrent", func() error { return errOf(r.installed.IsCurrent()) }},
		{"InstalledRef.InstalledSize", func() error { return errOf(r.installed.InstalledSize()) }},
		{"InstalledRef.LatestCommit", func() error { return errOf(r.installed.LatestCommit()) }},
		{"InstalledRef.Subpaths", func() error { return errOf(r.installed.Subpaths()) }},
		{"InstalledRef.EOL", func() error { return errOf(r.installed.EOL()) }},
		{"InstalledRef.EOLRebase", func() error { return errOf(r.installed.EOLRebase()) }},
		{"InstalledRef.AppdataName", func() error { return errOf(r.installed.AppdataName()) }},
		{"InstalledRef.AppdataSummary", func() error { return errOf(r.installed.AppdataSummary()) }},
		{"InstalledRef.AppdataVersion", func() error { return errOf(r.installed.AppdataVersion()) }},
		{"InstalledRef.AppdataLicense", func() error { return errOf(r.installed.AppdataLicense()) }},
		{"InstalledRef.LoadMetadata", func() error { return errOf(r.installed.LoadMetadata(ctx)) }},
		{"InstalledRef.LoadAppdata", func() error { return errOf(r.installed.LoadAppdata(ctx)) }},
		{"InstalledRef.Name", func() error { return errOf(r.installed.Name()) }},

		{"RemoteRef.RemoteName", func() error { return errOf(r.remoteRef.RemoteName()) }},
		{"RemoteRef.DownloadSize", func() error { return errOf(r.remoteRef.DownloadSize()) }},
		{"RemoteRef.InstalledSize", func() error { return errOf(r.remoteRef.InstalledSize()) }},
		{"RemoteRef.Metadata", func() error { return errOf(r.remoteRef.Metadata()) }},
		{"RemoteRef.EOL", func() error { return errOf(r.remoteRef.EOL()) }},
		{"RemoteRef.EOLRebase", func() error { return errOf(r.remoteRef.EOLRebase()) }},
		{"RemoteRef.Format", func() error { return errOf(r.remoteRef.Format()) }},

		{"BundleRef.Path", func() error { return errOf(r.bundle.Path()) }},
		{"BundleRef.Origin", func() error { return errOf(r.bundle.Origin()) }},
		{"BundleRef.RuntimeRepoURL", func() error { return errOf(r.bundle.RuntimeRepoURL()) }},
		{"BundleRef.InstalledSize", func() error { return errOf(r.bundle.InstalledSize()) }},
		{"BundleRef.Metadata", func() error { return errOf(r.bundle.Metadata()) }},
		{"BundleRef.Appstream", func() error { return errOf(r.bundle.Appstream()) }},
		{"BundleRef.Icon", func() error { return errOf(r.bundle.Icon(64)) }},
		{"BundleRef.Kind", func() error { return errOf(r.bundle.Kind()) }},

		{"RelatedRef.Subpaths", func() error { return errOf(r.related.Subpaths()) }},
		{"RelatedRef.ShouldDownload", func() error { return errOf(r.related.ShouldDownload()) }},
		{"RelatedRef.ShouldDelete", func() error { return errOf(r.related.ShouldDelete()) }},
		{"RelatedRef.ShouldAutoprune", func() error { return errOf(r.related.ShouldAutoprune()) }},
		{"RelatedRef.Branch", func() error { return errOf(r.related.Branch()) }},

		{"Transaction.SetNoInteraction", func() error { return tx.SetNoInteraction(true) }},
		{"Transaction.SetNoDeploy", func() error { return tx.SetNoDeploy(true) }},
		{"Transaction.SetNoPull", func() error { return tx.SetNoPull(true) }},
		{"Transaction.SetDisableDependencies", func() error { return tx.SetDisableDependencies(true) }},
		{"Transaction.SetDisableRelated", func() error { return tx.SetDisableRelated(true) }},
		{"Transaction.SetReinstall", func() error { return tx.SetReinstall(true) }},
		{"Transaction.AddInstall", func() error { return tx.AddInstall("flathub", appRef, nil) }},
		{"Transaction.AddInstall bad remote", func() error { return tx.AddInstall(bad, appRef, nil) }},
		{"Transaction.AddInstall bad subpath", func() error { return tx.AddInstall("flathub", appRef, []string{bad}) }},
		{"Transaction.AddUpdate bad commit", func() error { return tx.AddUpdate(appRef, nil, badPtr) }},
		{"Transaction.AddUninstall bad ref", func() error { return tx.AddUninstall(bad) }},
		{"Transaction.AddInstallBundle bad path", func() error { return tx.AddInstallBundle(bad, nil) }},
		{"Transaction.AddInstallFlatpakref nil", func() error { return tx.AddInstallFlatpakref(nil) }},
		{"Transaction.IsEmpty", func() error { return errOf(tx.IsEmpty()) }},
		{"Transaction.Installation", func() error { return errOf(tx.Installation()) }},
		{"Transaction.Operations", func() error { return errOf(tx.Operations()) }},
		{"Transaction.CurrentOperation", func() error { return errOf(tx.CurrentOperation()) }},
		{"Transaction.Run", func() error { return tx.Run(ctx) }},

		{"Operation.Type", func() error { return errOf(op.Type()) }},
		{"Operation.Ref", func() error { return errOf(op.Ref()) }},
		{"Operation.Remote", func() error { return errOf(op.Remote()) }},
		{"Operation.Commit", func() error { return errOf(op.Commit()) }},
		{"Operation.DownloadSize", func() error { return errOf(op.DownloadSize()) }},
		{"Operation.InstalledSize", func() error { return errOf(op.InstalledSize()) }},
		{"Operation.IsSkipped", func() error { return errOf(op.IsSkipped()) }},
		{"Operation.BundlePath", func() error { return errOf(op.BundlePath()) }},
		{"Operation.Metadata", func() error { return errOf(op.Metadata()) }},

		{"Instance.ID", func() error { return errOf(r.instance.ID()) }},
		{"Instance.App", func() error { return errOf(r.instance.App()) }},
		{"Instance.Arch", func() error { return errOf(r.instance.Arch()) }},
		{"Instance.Branch", func() error { return errOf(r.instance.Branch()) }},
		{"Instance.Commit", func() error { return errOf(r.instance.Commit()) }},
		{"Instance.Runtime", func() error { return errOf(r.instance.Runtime()) }},
		{"Instance.RuntimeCommit", func() error { return errOf(r.instance.RuntimeCommit()) }},
		{"Instance.PID", func() error { return errOf(r.instance.PID()) }},
		{"Instance.ChildPID", func() error { return errOf(r.instance.ChildPID()) }},
		{"Instance.Info", func() error { return errOf(r.instance.Info()) }},
		{"Instance.IsRunning", func() error { return errOf(r.instance.IsRunning()) }},

		{"Cancellable.Cancel", func() error { return r.cancellable.Cancel() }},
		{"Cancellable.IsCancelled", func() error { return errOf(r.cancellable.IsCancelled()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, tt.call(), InvalidHandle)
		})
	}

	if tx.State() != StateIdle {
		t.Errorf("State() = %s, want idle after calls on a released transaction", tx.State())
	}
	assertClean(t, sim,
		native.TypeInstallation, native.TypeRemote, native.TypeRef, native.TypeInstalledRef,
		native.TypeRemoteRef, native.TypeBundleRef, native.TypeRelatedRef, native.TypeTransaction,
		native.TypeOperation, native.TypeInstance, native.TypeCancellable)
}
