package flatpak

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

func TestParseRef(t *testing.T) {
	c, sim, _ := newTestClient(t)

	tests := []struct {
		name     string
		ref      string
		wantKind RefKind
		wantName string
		wantArch string
		wantErr  Kind
	}{
		{name: "app", ref: "app/org.gnome.Maps/x86_64/stable", wantKind: KindApp, wantName: "org.gnome.Maps", wantArch: "x86_64"},
		{name: "runtime", ref: "runtime/org.gnome.Platform/aarch64/46", wantKind: KindRuntime, wantName: "org.gnome.Platform", wantArch: "aarch64"},
		{name: "too few parts", ref: "app/org.gnome.Maps", wantErr: InvalidData},
		{name: "bad kind", ref: "extension/org.gnome.Maps/x86_64/stable", wantErr: InvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := c.ParseRef(tt.ref)
			if tt.wantErr != "" {
				wantKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("ParseRef() error = %v", err)
			}
			defer ref.Release()

			if k, _ := ref.Kind(); k != tt.wantKind {
				t.Errorf("Kind() = %s, want %s", k, tt.wantKind)
			}
			if n, _ := ref.Name(); n != tt.wantName {
				t.Errorf("Name() = %q, want %q", n, tt.wantName)
			}
			if a, _ := ref.Arch(); a != tt.wantArch {
				t.Errorf("Arch() = %q, want %q", a, tt.wantArch)
			}
			if f, _ := ref.Format(); f != tt.ref {
				t.Errorf("Format() = %q, want %q", f, tt.ref)
			}
			if commit, err := ref.Commit(); err != nil || commit != nil {
				t.Errorf("Commit() = %v, %v; want nil", commit, err)
			}
		})
	}
	assertClean(t, sim, native.TypeRef)
}

func TestWrapRefRejectsForeignTypes(t *testing.T) {
	c, sim, _ := newTestClient(t)

	p := sim.RemoteNew(native.Str("flathub"))
	ref, err := c.wrapRef(p, false)
	wantKind(t, err, Unsupported)
	if ref != nil {
		t.Errorf("wrapRef() returned %T for a remote", ref)
	}
	assertClean(t, sim, native.TypeRemote)
}

func TestRefVariants(t *testing.T) {
	c, sim, _ := newTestClient(t)
	seedCatalog(t, sim)
	if err := sim.Deploy("default", "flathub", appRef, "a0", 30); err != nil {
		t.Fatal(err)
	}
	inst := systemInstallation(t, c)
	ctx := t.Context()

	installed, err := inst.ListInstalledRefs(ctx)
	if err != nil || len(installed) != 1 {
		t.Fatalf("ListInstalledRefs() = %d refs, %v", len(installed), err)
	}
	remote, err := inst.ListRemoteRefs(ctx, "flathub")
	if err != nil || len(remote) != 3 {
		t.Fatalf("ListRemoteRefs() = %d refs, %v", len(remote), err)
	}
	related, err := inst.ListRemoteRelatedRefs(ctx, "flathub", appRef)
	if err != nil || len(related) != 1 {
		t.Fatalf("ListRemoteRelatedRefs() = %d refs, %v", len(related), err)
	}

	refs := []Ref{installed[0], remote[0], related[0]}
	wantTypes := []string{native.TypeInstalledRef, native.TypeRemoteRef, native.TypeRelatedRef}
	for i, ref := range refs {
		if got := ref.core().h.TypeName(); got != wantTypes[i] {
			t.Errorf("ref %d wraps %s, want %s", i, got, wantTypes[i])
		}
		if _, err := ref.Format(); err != nil {
			t.Errorf("ref %d Format() error = %v", i, err)
		}
	}

	if origin, _ := installed[0].Origin(); origin != "flathub" {
		t.Errorf("Origin() = %q, want flathub", origin)
	}
	if current, _ := installed[0].IsCurrent(); !current {
		t.Error("IsCurrent() = false for a deployed app")
	}
	if name, _ := remote[0].RemoteName(); name != "flathub" {
		t.Errorf("RemoteName() = %q, want flathub", name)
	}
	if subpaths, _ := related[0].Subpaths(); len(subpaths) != 1 || subpaths[0] != "/de" {
		t.Errorf("Subpaths() = %v, want [/de]", subpaths)
	}
	if download, _ := related[0].ShouldDownload(); !download {
		t.Error("ShouldDownload() = false")
	}

	for _, ref := range refs {
		ref.Release()
	}
	for _, r := range remote[1:] {
		r.Release()
	}
	assertClean(t, sim, native.TypeInstalledRef, native.TypeRemoteRef, native.TypeRelatedRef)
}

func TestOpenBundle(t *testing.T) {
	c, sim, _ := newTestClient(t)

	path := filepath.Join(t.TempDir(), "app.flatpak")
	bundle := "[Flatpak Bundle]\nRef=" + appRef + "\nCommit=b1\nOrigin=https://example.org/repo/\nInstalledSize=4096\nMetadata=[Application]\nIcon64=png\n"
	if err := os.WriteFile(path, []byte(bundle), 0o644); err != nil {
		t.Fatal(err)
	}

	ref, err := c.OpenBundle(path)
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer ref.Release()

	if got, _ := ref.Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
	if commit, _ := ref.Commit(); commit == nil || *commit != "b1" {
		t.Errorf("Commit() = %v, want b1", commit)
	}
	if origin, _ := ref.Origin(); origin == nil || *origin != "https://example.org/repo/" {
		t.Errorf("Origin() = %v", origin)
	}
	if size, _ := ref.InstalledSize(); size != 4096 {
		t.Errorf("InstalledSize() = %d, want 4096", size)
	}
	if icon, _ := ref.Icon(64); string(icon) != "png" {
		t.Errorf("Icon(64) = %q, want png", icon)
	}
	if icon, err := ref.Icon(128); err != nil || icon != nil {
		t.Errorf("Icon(128) = %q, %v; want nil", icon, err)
	}
	if repo, _ := ref.RuntimeRepoURL(); repo != nil {
		t.Errorf("RuntimeRepoURL() = %q, want nil", *repo)
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := c.OpenBundle(filepath.Join(t.TempDir(), "missing.flatpak"))
		wantKind(t, err, NotFound)
	})
	t.Run("not a bundle", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.flatpak")
		if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := c.OpenBundle(bad)
		wantKind(t, err, InvalidData)
	})

	ref.Release()
	assertClean(t, sim, native.TypeBundleRef, native.TypeFile)
}
