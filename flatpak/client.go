// Package flatpak is a Go binding for libflatpak.
//
// Every wrapper (Installation, Remote, the Ref variants, Transaction,
// TransactionOperation, Instance, Cancellable) owns or borrows one native
// object. Owned wrappers give their reference back on Release, or when the
// garbage collector finds them unreachable; any call on a released wrapper
// fails with an InvalidHandle error without touching native code.
//
// All errors returned by this package are *goerrors.Error values from
// github.com/goliatone/go-errors whose TextCode is a Kind; use KindOf or
// IsKind to classify them.
package flatpak

import (
	"context"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/handle"
	"github.com/blackwell-systems/goflatpak/internal/monitor"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

const tracerName = "github.com/blackwell-systems/goflatpak/flatpak"

// DefaultProgressInterval is the native progress update frequency used when
// none is configured.
const DefaultProgressInterval = 150 * time.Millisecond

// ErrorPolicy decides whether a transaction continues after a fatal
// operation error.
type ErrorPolicy int

const (
	// AbortOnError stops the transaction at the first fatal operation error.
	AbortOnError ErrorPolicy = iota
	// ContinueOnError asks the native side to carry on with the remaining
	// operations. The run still ends in TransactionError.
	ContinueOnError
)

func (p ErrorPolicy) String() string {
	if p == ContinueOnError {
		return "continue"
	}
	return "abort"
}

// ParseErrorPolicy parses "abort" or "continue".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "abort":
		return AbortOnError, nil
	case "continue":
		return ContinueOnError, nil
	}
	return AbortOnError, newError(InvalidData, "unknown operation error policy "+s)
}

// Client binds the wrappers to one native library.
type Client struct {
	lib              native.Library
	log              glog.Logger
	tracer           trace.Tracer
	progressInterval time.Duration
	monitorQuiet     time.Duration
	errorPolicy      ErrorPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger glog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithTracer sets the tracer used for transaction runs and network calls.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithProgressInterval sets how often running operations report progress.
func WithProgressInterval(d time.Duration) Option {
	return func(c *Client) { c.progressInterval = d }
}

// WithMonitorQuiet sets how long installation changes must settle before
// Installation.Monitor reports them.
func WithMonitorQuiet(d time.Duration) Option {
	return func(c *Client) { c.monitorQuiet = d }
}

// WithErrorPolicy sets the default operation error policy of new
// transactions.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *Client) { c.errorPolicy = p }
}

// New returns a client calling into lib.
func New(lib native.Library, opts ...Option) *Client {
	c := &Client{
		lib:              lib,
		progressInterval: DefaultProgressInterval,
		monitorQuiet:     monitor.DefaultQuiet,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	_, logger := glog.Resolve("goflatpak", nil, c.log)
	c.log = glog.Ensure(logger)
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Backend names the native library in use.
func (c *Client) Backend() string { return c.lib.Name() }

// Live returns the number of owned native objects not yet released.
func Live() int64 { return handle.Live() }

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

type cancellableKey struct{}

// WithCancellable attaches an explicit cancellation token to ctx. Calls made
// with the returned context stop when either the token or ctx is cancelled.
func WithCancellable(ctx context.Context, cancellable *Cancellable) context.Context {
	return context.WithValue(ctx, cancellableKey{}, cancellable)
}

// bindCancellable returns the native cancellable for a call made with ctx
// and a cleanup to run once the call returns. A context that can never be
// cancelled and carries no token maps to the null cancellable.
func (c *Client) bindCancellable(ctx context.Context) (native.Ptr, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	explicit, _ := ctx.Value(cancellableKey{}).(*Cancellable)
	if explicit == nil && ctx.Done() == nil {
		return native.Null, func() {}, nil
	}

	var (
		ptr     native.Ptr
		release func()
	)
	if explicit != nil {
		p, err := explicit.h.Enter()
		if err != nil {
			return native.Null, nil, invalidHandle("g_cancellable", err)
		}
		ptr, release = p, explicit.h.Leave
	} else {
		ptr = c.lib.CancellableNew()
		release = func() { c.lib.Unref(ptr) }
	}

	if ctx.Err() != nil {
		c.lib.CancellableCancel(ptr)
		return ptr, release, nil
	}
	if ctx.Done() == nil {
		return ptr, release, nil
	}

	var fired sync.WaitGroup
	fired.Add(1)
	stop := context.AfterFunc(ctx, func() {
		defer fired.Done()
		c.lib.CancellableCancel(ptr)
	})
	return ptr, func() {
		if !stop() {
			fired.Wait()
		}
		release()
	}, nil
}

// DefaultArch returns the architecture flatpak installs by default.
func (c *Client) DefaultArch() (string, error) {
	s, err := convert.String(c.lib.DefaultArch())
	if err != nil {
		return "", convertError("flatpak_get_default_arch", err)
	}
	return s, nil
}

// SupportedArches returns every architecture the host can run.
func (c *Client) SupportedArches() ([]string, error) {
	arches, err := convert.Strv(c.lib.SupportedArches())
	if err != nil {
		return nil, convertError("flatpak_get_supported_arches", err)
	}
	return arches, nil
}

// SystemInstallation opens the default system-wide installation.
func (c *Client) SystemInstallation(ctx context.Context) (*Installation, error) {
	const op = "flatpak_installation_new_system"
	cptr, done, err := c.bindCancellable(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	p, gerr := c.lib.InstallationNewSystem(cptr)
	if p.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return c.newInstallation(p, false)
}

// UserInstallation opens the per-user installation.
func (c *Client) UserInstallation(ctx context.Context) (*Installation, error) {
	const op = "flatpak_installation_new_user"
	cptr, done, err := c.bindCancellable(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	p, gerr := c.lib.InstallationNewUser(cptr)
	if p.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return c.newInstallation(p, false)
}

// InstallationForPath opens the installation rooted at path.
func (c *Client) InstallationForPath(ctx context.Context, path string, user bool) (*Installation, error) {
	const op = "flatpak_installation_new_for_path"
	cpath, err := convert.FromString(path)
	if err != nil {
		return nil, convertError(op, err)
	}
	cptr, done, err := c.bindCancellable(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	file := c.lib.FileNewForPath(cpath)
	defer c.lib.Unref(file)
	p, gerr := c.lib.InstallationNewForPath(file, user, cptr)
	if p.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return c.newInstallation(p, false)
}

// SystemInstallations lists every configured system-wide installation.
func (c *Client) SystemInstallations(ctx context.Context) ([]*Installation, error) {
	const op = "flatpak_get_system_installations"
	cptr, done, err := c.bindCancellable(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	arr, gerr := c.lib.GetSystemInstallations(cptr)
	if arr.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return collect(c, op, arr, func(p native.Ptr) (*Installation, error) {
		return c.newInstallation(p, true)
	})
}

// ParseRef parses a full ref such as app/org.gnome.Maps/x86_64/stable.
func (c *Client) ParseRef(ref string) (*PlainRef, error) {
	const op = "flatpak_ref_parse"
	cref, err := convert.FromString(ref)
	if err != nil {
		return nil, convertError(op, err)
	}
	p, gerr := c.lib.RefParse(cref)
	if p.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return newPlainRef(c, p, false)
}

// NewRemote creates a remote that is not yet part of any installation.
func (c *Client) NewRemote(name string) (*Remote, error) {
	const op = "flatpak_remote_new"
	cname, err := convert.FromString(name)
	if err != nil {
		return nil, convertError(op, err)
	}
	p := c.lib.RemoteNew(cname)
	if p.IsNull() {
		return nil, nativeFailure(op)
	}
	return c.newRemote(p, false)
}

// OpenBundle loads a single-file bundle from path.
func (c *Client) OpenBundle(path string) (*BundleRef, error) {
	const op = "flatpak_bundle_ref_new"
	cpath, err := convert.FromString(path)
	if err != nil {
		return nil, convertError(op, err)
	}
	file := c.lib.FileNewForPath(cpath)
	defer c.lib.Unref(file)

	p, gerr := c.lib.BundleRefNew(file)
	if p.IsNull() {
		return nil, c.fail(op, gerr)
	}
	return newBundleRef(c, p, false)
}

// Instances lists the running sandboxes.
func (c *Client) Instances() ([]*Instance, error) {
	const op = "flatpak_instance_get_all"
	arr := c.lib.InstanceGetAll()
	if arr.IsNull() {
		return []*Instance{}, nil
	}
	return collect(c, op, arr, func(p native.Ptr) (*Instance, error) {
		return c.newInstance(p, true)
	})
}

// NewCancellable creates a cancellation token for WithCancellable.
func (c *Client) NewCancellable() (*Cancellable, error) {
	p := c.lib.CancellableNew()
	if p.IsNull() {
		return nil, nativeFailure("g_cancellable_new")
	}
	return &Cancellable{object: object{c: c, h: handle.Acquire(c.lib, p, false)}}, nil
}

// fail translates a failed native call and logs it.
func (c *Client) fail(op string, gerr *native.GError) error {
	err := fromGError(op, gerr)
	c.log.Debug("native call failed", "operation", op, "kind", KindOf(err), "error", err)
	return err
}
