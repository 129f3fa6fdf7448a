package flatpak

import (
	"context"
	"sync"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/nativesim"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

const (
	appRef     = "app/org.example.App/x86_64/stable"
	runtimeRef = "runtime/org.example.Platform/x86_64/23.08"
	localeRef  = "runtime/org.example.App.Locale/x86_64/stable"
)

func newTestSim(t *testing.T, opts ...nativesim.Option) *nativesim.Sim {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	opts = append([]nativesim.Option{nativesim.WithProgressSteps(2)}, opts...)
	sim, err := nativesim.New(st, opts...)
	if err != nil {
		t.Fatalf("failed to create sim: %v", err)
	}
	return sim
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *nativesim.Sim, *captureLogger) {
	t.Helper()
	sim := newTestSim(t)
	log := newCaptureLogger()
	opts = append([]Option{WithLogger(log)}, opts...)
	return New(sim, opts...), sim, log
}

// seedCatalog publishes an application, its runtime and its locale
// extension on flathub in the system installation.
func seedCatalog(t *testing.T, sim *nativesim.Sim) {
	t.Helper()
	steps := []error{
		sim.AddRemote("default", "flathub", "https://dl.flathub.org/repo/"),
		sim.Publish("default", "flathub", runtimeRef, "r1", "", 100, 300),
		sim.Publish("default", "flathub", appRef, "a1", "org.example.Platform/x86_64/23.08", 10, 30),
		sim.Publish("default", "flathub", localeRef, "l1", "", 1, 2),
		sim.Relate("default", "flathub", appRef, localeRef, []string{"/de"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
}

func systemInstallation(t *testing.T, c *Client) *Installation {
	t.Helper()
	inst, err := c.SystemInstallation(context.Background())
	if err != nil {
		t.Fatalf("SystemInstallation() error = %v", err)
	}
	t.Cleanup(inst.Release)
	return inst
}

// assertClean fails if the native side saw a protocol violation or still
// holds objects of the given types.
func assertClean(t *testing.T, sim *nativesim.Sim, types ...string) {
	t.Helper()
	if v := sim.Violations(); len(v) != 0 {
		t.Errorf("native violations: %v", v)
	}
	for _, typ := range types {
		if n := sim.LiveOf(typ); n != 0 {
			t.Errorf("%d %s objects still alive", n, typ)
		}
	}
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("KindOf(%v) = %s, want %s", err, got, kind)
	}
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) glog.Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) glog.Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) find(msg string) (capturedLog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range *l.records {
		if r.msg == msg {
			return r, true
		}
	}
	return capturedLog{}, false
}

func cloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ native.Library = (*nativesim.Sim)(nil)
