package nativesim

import (
	"testing"

	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

func newTestSim(t *testing.T) *Sim {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s, err := New(st, WithProgressSteps(2))
	if err != nil {
		t.Fatalf("failed to create sim: %v", err)
	}
	return s
}

type recorder struct {
	s      *Sim
	events []string
	cont   bool
	ready  bool
}

func (r *recorder) NewOperation(op, progress native.Ptr) {
	r.events = append(r.events, "new "+string(r.s.GetString(op, native.OperationGetRef).Data))
}

func (r *recorder) OperationDone(op native.Ptr, commit native.CString, result int) {
	r.events = append(r.events, "done "+string(r.s.GetString(op, native.OperationGetRef).Data))
}

func (r *recorder) OperationError(op native.Ptr, err *native.GError, details int) bool {
	r.events = append(r.events, "error "+string(r.s.GetString(op, native.OperationGetRef).Data))
	return r.cont
}

func (r *recorder) Ready() bool {
	r.events = append(r.events, "ready")
	return r.ready
}

func TestRefCounting(t *testing.T) {
	s := newTestSim(t)

	p := s.RemoteNew(native.Str("flathub"))
	s.Ref(p)
	if got := s.RefCount(p); got != 2 {
		t.Fatalf("RefCount = %d, want 2", got)
	}
	s.Unref(p)
	s.Unref(p)
	if got := s.RefCount(p); got != 0 {
		t.Fatalf("RefCount after free = %d, want 0", got)
	}
	if len(s.Violations()) != 0 {
		t.Fatalf("unexpected violations: %v", s.Violations())
	}

	s.Unref(p)
	v := s.Violations()
	if len(v) != 1 || v[0].Op != "g_object_unref: double free" {
		t.Errorf("Violations = %v, want one double free", v)
	}
}

func TestWrongReleaseFunction(t *testing.T) {
	s := newTestSim(t)

	b := s.BytesNew([]byte("x"))
	s.Unref(b)
	if len(s.Violations()) != 1 {
		t.Fatalf("g_object_unref on GBytes should be a violation")
	}
	s.BytesUnref(b)
	if s.LiveOf("GBytes") != 0 {
		t.Errorf("GBytes still alive")
	}
}

func TestPtrArrayOwnsElements(t *testing.T) {
	s := newTestSim(t)

	a := s.RemoteNew(native.Str("a"))
	b := s.RemoteNew(native.Str("b"))
	arr := s.PtrArrayNew([]native.Ptr{a, b})
	s.Unref(a)
	s.Unref(b)

	if s.PtrArrayLen(arr) != 2 || s.PtrArrayIndex(arr, 1) != b {
		t.Fatalf("array contents wrong")
	}
	s.PtrArrayUnref(arr)
	if s.LiveOf(native.TypeRemote) != 0 {
		t.Errorf("elements not released with array: %v", s.Live())
	}
}

func TestTransferNoneChildIsCached(t *testing.T) {
	s := newTestSim(t)
	if err := s.AddRemote("default", "flathub", "https://dl.flathub.org/repo/"); err != nil {
		t.Fatal(err)
	}
	if err := s.Publish("default", "flathub", "app/org.example.App/x86_64/stable", "c1", "", 10, 20); err != nil {
		t.Fatal(err)
	}

	inst, _ := s.InstallationNewSystem(native.Null)
	arr, gerr := s.InstallationListRemoteRefsSync(inst, native.Str("flathub"), native.Null)
	if gerr != nil {
		t.Fatal(gerr)
	}
	ref := s.PtrArrayIndex(arr, 0)
	m1 := s.GetPointer(ref, native.RemoteRefGetMetadata)
	m2 := s.GetPointer(ref, native.RemoteRefGetMetadata)
	if m1 != m2 || m1.IsNull() {
		t.Fatalf("metadata pointers differ: %#x %#x", m1, m2)
	}

	s.PtrArrayUnref(arr)
	s.Unref(inst)
	if n := s.LiveOf("GBytes"); n != 0 {
		t.Errorf("%d GBytes alive after owner freed", n)
	}
}

func TestAddRemote(t *testing.T) {
	s := newTestSim(t)
	inst, _ := s.InstallationNewSystem(native.Null)
	defer s.Unref(inst)

	remote := s.RemoteNew(native.Str("flathub"))
	defer s.Unref(remote)
	s.SetString(remote, native.RemoteSetURL, native.Str("https://dl.flathub.org/repo/"))

	ok, gerr := s.InstallationAddRemote(inst, remote, false, native.Null)
	if !ok || gerr != nil {
		t.Fatalf("first add failed: %v", gerr)
	}

	tests := []struct {
		name     string
		ifNeeded bool
		wantOK   bool
		wantCode int
	}{
		{"duplicate", false, false, native.FlatpakErrorAlreadyInstalled},
		{"duplicate if needed", true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, gerr := s.InstallationAddRemote(inst, remote, tt.ifNeeded, native.Null)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK {
				if gerr != nil {
					t.Fatalf("unexpected error %v", gerr)
				}
				return
			}
			if gerr == nil || gerr.Domain != native.DomainFlatpak || gerr.Code != tt.wantCode {
				t.Errorf("error = %v, want flatpak code %d", gerr, tt.wantCode)
			}
		})
	}
}

func TestInstallationConfig(t *testing.T) {
	s := newTestSim(t)
	inst, _ := s.InstallationNewSystem(native.Null)
	defer s.Unref(inst)

	v, gerr := s.InstallationGetConfig(inst, native.Str("languages"), native.Null)
	if !v.Null || gerr == nil {
		t.Fatalf("GetConfig(unset) = %+v, %v; want null and error", v, gerr)
	}
	if gerr.Domain != native.DomainKeyFile || gerr.Code != native.KeyFileErrorKeyNotFound {
		t.Errorf("error = %v, want key-file key-not-found", gerr)
	}

	ok, gerr := s.InstallationSetConfigSync(inst, native.Str("languages"), native.Str("de"), native.Null)
	if !ok || gerr != nil {
		t.Fatalf("SetConfigSync() = %v, %v", ok, gerr)
	}
	v, gerr = s.InstallationGetConfig(inst, native.Str("languages"), native.Null)
	if gerr != nil || string(v.Data) != "de" {
		t.Errorf("GetConfig() = %q, %v; want de", v.Data, gerr)
	}

	_, gerr = s.InstallationSetConfigSync(inst, native.Str("bogus"), native.Str("x"), native.Null)
	if gerr == nil || gerr.Domain != native.DomainIO || gerr.Code != native.IOErrorInvalidArgument {
		t.Errorf("SetConfigSync(unknown key) error = %v, want invalid argument", gerr)
	}
}

func TestReadOnlyInstallation(t *testing.T) {
	s := newTestSim(t)
	if err := s.SetReadOnly("default", true); err != nil {
		t.Fatal(err)
	}
	inst, _ := s.InstallationNewSystem(native.Null)
	defer s.Unref(inst)
	remote := s.RemoteNew(native.Str("flathub"))
	defer s.Unref(remote)

	_, gerr := s.InstallationAddRemote(inst, remote, false, native.Null)
	if gerr == nil || gerr.Code != native.FlatpakErrorPermissionDenied {
		t.Errorf("error = %v, want permission denied", gerr)
	}
}

func seedCatalog(t *testing.T, s *Sim) {
	t.Helper()
	steps := []error{
		s.AddRemote("default", "flathub", "https://dl.flathub.org/repo/"),
		s.Publish("default", "flathub", "runtime/org.example.Platform/x86_64/23.08", "r1", "", 100, 300),
		s.Publish("default", "flathub", "app/org.example.App/x86_64/stable", "a1", "org.example.Platform/x86_64/23.08", 10, 30),
		s.Publish("default", "flathub", "runtime/org.example.App.Locale/x86_64/stable", "l1", "", 1, 2),
		s.Relate("default", "flathub", "app/org.example.App/x86_64/stable", "runtime/org.example.App.Locale/x86_64/stable", []string{"/de"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestTransactionRun_ResolvesDependencies(t *testing.T) {
	s := newTestSim(t)
	seedCatalog(t, s)

	inst, _ := s.InstallationNewSystem(native.Null)
	tx, gerr := s.TransactionNewForInstallation(inst, native.Null)
	if gerr != nil {
		t.Fatal(gerr)
	}
	s.Unref(inst)

	rec := &recorder{s: s, ready: true}
	ids := s.ConnectTransaction(tx, rec)
	if len(ids) != 4 {
		t.Fatalf("got %d handler ids", len(ids))
	}
	if _, gerr := s.TransactionAddInstall(tx, native.Str("flathub"), native.Str("app/org.example.App/x86_64/stable"), nil); gerr != nil {
		t.Fatal(gerr)
	}

	ok, gerr := s.TransactionRun(tx, native.Null)
	if !ok || gerr != nil {
		t.Fatalf("run failed: %v", gerr)
	}

	want := []string{
		"ready",
		"new runtime/org.example.Platform/x86_64/23.08",
		"done runtime/org.example.Platform/x86_64/23.08",
		"new app/org.example.App/x86_64/stable",
		"done app/org.example.App/x86_64/stable",
		"new runtime/org.example.App.Locale/x86_64/stable",
		"done runtime/org.example.App.Locale/x86_64/stable",
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, rec.events[i], want[i])
		}
	}

	refs, err := s.Store().ListInstalledRefs("default")
	if err != nil || len(refs) != 3 {
		t.Fatalf("installed = %d (%v), want 3", len(refs), err)
	}

	s.Unref(tx)
	if s.Handlers() != 0 {
		t.Errorf("handlers survived their instance")
	}
	if live := s.Live(); live[native.TypeTransaction]+live[native.TypeOperation]+live[native.TypeInstallation] != 0 {
		t.Errorf("objects leaked: %v", live)
	}
	if v := s.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestTransactionRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, s *Sim, tx, c native.Ptr)
		domain string
		code   int
		events int
	}{
		{
			name: "cancelled before start",
			setup: func(t *testing.T, s *Sim, tx, c native.Ptr) {
				s.TransactionAddInstall(tx, native.Str("flathub"), native.Str("app/org.example.App/x86_64/stable"), nil)
				s.CancellableCancel(c)
			},
			domain: native.DomainIO,
			code:   native.IOErrorCancelled,
		},
		{
			name: "empty flatpakref",
			setup: func(t *testing.T, s *Sim, tx, c native.Ptr) {
				b := s.BytesNew(nil)
				defer s.BytesUnref(b)
				if _, gerr := s.TransactionAddInstallFlatpakref(tx, b); gerr != nil {
					t.Fatal(gerr)
				}
			},
			domain: native.DomainFlatpak,
			code:   native.FlatpakErrorInvalidData,
		},
		{
			name: "offline remote",
			setup: func(t *testing.T, s *Sim, tx, c native.Ptr) {
				s.TransactionAddInstall(tx, native.Str("flathub"), native.Str("app/org.example.App/x86_64/stable"), nil)
				if err := s.SetOffline("default", "flathub", true); err != nil {
					t.Fatal(err)
				}
			},
			domain: native.DomainIO,
			code:   native.IOErrorHostNotFound,
		},
		{
			name: "fatal operation error",
			setup: func(t *testing.T, s *Sim, tx, c native.Ptr) {
				s.SetBool(tx, native.TransactionSetDisableRelated, true)
				s.TransactionAddInstall(tx, native.Str("flathub"), native.Str("app/org.example.App/x86_64/stable"), nil)
				s.FailOperation("app/org.example.App/x86_64/stable", native.GError{Domain: native.DomainIO, Code: native.IOErrorNoSpace, Message: "disk full"}, false)
			},
			domain: native.DomainFlatpak,
			code:   native.FlatpakErrorAborted,
			// ready, runtime new+done, app new+error
			events: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim(t)
			seedCatalog(t, s)
			inst, _ := s.InstallationNewSystem(native.Null)
			defer s.Unref(inst)
			tx, _ := s.TransactionNewForInstallation(inst, native.Null)
			defer s.Unref(tx)
			c := s.CancellableNew()
			defer s.Unref(c)

			rec := &recorder{s: s, ready: true}
			s.ConnectTransaction(tx, rec)
			tt.setup(t, s, tx, c)

			ok, gerr := s.TransactionRun(tx, c)
			if ok {
				t.Fatalf("run succeeded, want failure")
			}
			if gerr == nil || gerr.Domain != tt.domain || gerr.Code != tt.code {
				t.Fatalf("error = %v, want %s/%d", gerr, tt.domain, tt.code)
			}
			if len(rec.events) != tt.events {
				t.Errorf("events = %v, want %d", rec.events, tt.events)
			}
		})
	}
}

func TestTransactionRun_OnlyOnce(t *testing.T) {
	s := newTestSim(t)
	inst, _ := s.InstallationNewSystem(native.Null)
	defer s.Unref(inst)
	tx, _ := s.TransactionNewForInstallation(inst, native.Null)
	defer s.Unref(tx)

	if ok, gerr := s.TransactionRun(tx, native.Null); !ok {
		t.Fatalf("empty run failed: %v", gerr)
	}
	if ok, _ := s.TransactionRun(tx, native.Null); ok {
		t.Errorf("second run succeeded")
	}
}

func TestInstallRefFile(t *testing.T) {
	s := newTestSim(t)
	inst, _ := s.InstallationNewSystem(native.Null)
	defer s.Unref(inst)

	data := s.BytesNew([]byte("[Flatpak Ref]\nName=org.example.App\nBranch=stable\nUrl=https://example.org/repo/\nSuggestRemoteName=example\n"))
	defer s.BytesUnref(data)

	ref, gerr := s.InstallationInstallRefFile(inst, data, native.Null)
	if gerr != nil {
		t.Fatal(gerr)
	}
	defer s.Unref(ref)
	if got := string(s.GetString(ref, native.RemoteRefGetRemoteName).Data); got != "example" {
		t.Errorf("remote = %q, want example", got)
	}
	if _, err := s.Store().GetRemote("default", "example"); err != nil {
		t.Errorf("origin remote not created: %v", err)
	}
}
