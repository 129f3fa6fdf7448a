package app

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/nativesim"
)

func TestRemoteLifecycle(t *testing.T) {
	db := seedDB(t, nil)

	out, _, err := runCLI(t, db, "remote-add", "--title", "Flathub", "flathub", "https://dl.flathub.org/repo/")
	if err != nil {
		t.Fatalf("remote-add error: %v", err)
	}
	if !strings.Contains(out, "Added remote flathub") {
		t.Errorf("remote-add output = %q", out)
	}

	if _, _, err := runCLI(t, db, "remote-add", "flathub", "https://example.org/"); err == nil {
		t.Error("adding a duplicate remote should fail")
	}
	if _, _, err := runCLI(t, db, "remote-add", "--if-not-exists", "flathub", "https://example.org/"); err != nil {
		t.Errorf("remote-add --if-not-exists error: %v", err)
	}

	out, _, err = runCLI(t, db, "remotes")
	if err != nil {
		t.Fatalf("remotes error: %v", err)
	}
	for _, want := range []string{"flathub", "Flathub", "https://dl.flathub.org/repo/"} {
		if !strings.Contains(out, want) {
			t.Errorf("remotes output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, db, "remote-delete", "flathub")
	if err != nil {
		t.Fatalf("remote-delete error: %v", err)
	}
	if !strings.Contains(out, "Removed remote flathub") {
		t.Errorf("remote-delete output = %q", out)
	}

	out, _, err = runCLI(t, db, "remotes")
	if err != nil {
		t.Fatalf("remotes error: %v", err)
	}
	if !strings.Contains(out, "No remotes configured") {
		t.Errorf("remotes after delete = %q", out)
	}
}

func TestRemoteDeleteMissing(t *testing.T) {
	db := seedDB(t, nil)
	if _, _, err := runCLI(t, db, "remote-delete", "nowhere"); err == nil {
		t.Error("removing an unknown remote should fail")
	}
}

func TestRemoteLs(t *testing.T) {
	db := seedDB(t, seedCatalog)

	out, stderr, err := runCLI(t, db, "remote-ls", "flathub")
	if err != nil {
		t.Fatalf("remote-ls error: %v", err)
	}
	for _, want := range []string{appRef, runtimeRef, localeRef, "a1", "r1"} {
		if !strings.Contains(out, want) {
			t.Errorf("remote-ls output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(stderr, "Fetching flathub...") {
		t.Errorf("expected spinner message on stderr, got %q", stderr)
	}
}

func TestRemoteLsOffline(t *testing.T) {
	db := seedDB(t, func(sim *nativesim.Sim) error {
		if err := seedCatalog(sim); err != nil {
			return err
		}
		return sim.SetOffline("default", "flathub", true)
	})

	_, _, err := runCLI(t, db, "remote-ls", "flathub")
	if err == nil || !strings.Contains(err.Error(), "failed to list refs of flathub") {
		t.Errorf("expected network error, got %v", err)
	}
}
