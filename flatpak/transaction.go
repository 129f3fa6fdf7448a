package flatpak

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blackwell-systems/goflatpak/internal/bridge"
	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/handle"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// TransactionState is the lifecycle of a Transaction. A transaction runs at
// most once.
type TransactionState int

const (
	StateIdle TransactionState = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s TransactionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("TransactionState(%d)", int(s))
}

// Transaction batches installs, updates and uninstalls on one installation.
type Transaction struct {
	object

	mu        sync.Mutex
	state     TransactionState
	policy    ErrorPolicy
	listeners []Listener
	records   map[native.Ptr]*opRecord
}

func (c *Client) newTransaction(p native.Ptr) (*Transaction, error) {
	h, err := c.adopt("wrap transaction", p, false, native.TypeTransaction)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		object:  object{c: c, h: h},
		policy:  c.errorPolicy,
		records: make(map[native.Ptr]*opRecord),
	}, nil
}

func (t *Transaction) SetNoInteraction(v bool) error {
	return t.setBool(native.TransactionSetNoInteraction, v)
}

// SetNoDeploy makes the run download without deploying.
func (t *Transaction) SetNoDeploy(v bool) error { return t.setBool(native.TransactionSetNoDeploy, v) }

func (t *Transaction) SetNoPull(v bool) error { return t.setBool(native.TransactionSetNoPull, v) }

func (t *Transaction) SetDisableDependencies(v bool) error {
	return t.setBool(native.TransactionSetDisableDependencies, v)
}

func (t *Transaction) SetDisableRelated(v bool) error {
	return t.setBool(native.TransactionSetDisableRelated, v)
}

func (t *Transaction) SetReinstall(v bool) error { return t.setBool(native.TransactionSetReinstall, v) }

// SetErrorPolicy decides what happens after a fatal operation error.
func (t *Transaction) SetErrorPolicy(p ErrorPolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.policy = p
}

// AddListener registers l for the events of Run. Listeners run on the
// goroutine that called Run.
func (t *Transaction) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// State returns the lifecycle state.
func (t *Transaction) State() TransactionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// idle fails unless the transaction is alive and has not been run.
func (t *Transaction) idle(op string) error {
	if err := t.live(op); err != nil {
		return err
	}
	if s := t.State(); s != StateIdle {
		return newError(Unsupported, fmt.Sprintf("%s: transaction is %s", op, s))
	}
	return nil
}

func (t *Transaction) add(op string, fn func(p native.Ptr) (bool, *native.GError)) error {
	if err := t.idle(op); err != nil {
		return err
	}
	return t.call(op, func(p native.Ptr) error {
		ok, gerr := fn(p)
		if !ok {
			return t.c.fail(op, gerr)
		}
		return nil
	})
}

// AddInstall queues installing ref from remote. Subpaths limit the install
// to parts of the ref; nil installs everything.
func (t *Transaction) AddInstall(remote, ref string, subpaths []string) error {
	const op = "flatpak_transaction_add_install"
	if err := t.idle(op); err != nil {
		return err
	}
	cremote, err := convert.FromString(remote)
	if err != nil {
		return convertError(op, err)
	}
	cref, err := convert.FromString(ref)
	if err != nil {
		return convertError(op, err)
	}
	csub, err := convert.FromStrv(subpaths)
	if err != nil {
		return convertError(op, err)
	}
	return t.add(op, func(p native.Ptr) (bool, *native.GError) {
		return t.c.lib.TransactionAddInstall(p, cremote, cref, csub)
	})
}

// AddUpdate queues updating an installed ref, to commit if set.
func (t *Transaction) AddUpdate(ref string, subpaths []string, commit *string) error {
	const op = "flatpak_transaction_add_update"
	if err := t.idle(op); err != nil {
		return err
	}
	cref, err := convert.FromString(ref)
	if err != nil {
		return convertError(op, err)
	}
	csub, err := convert.FromStrv(subpaths)
	if err != nil {
		return convertError(op, err)
	}
	ccommit, err := convert.FromOptString(commit)
	if err != nil {
		return convertError(op, err)
	}
	return t.add(op, func(p native.Ptr) (bool, *native.GError) {
		return t.c.lib.TransactionAddUpdate(p, cref, csub, ccommit)
	})
}

// AddUninstall queues removing an installed ref.
func (t *Transaction) AddUninstall(ref string) error {
	const op = "flatpak_transaction_add_uninstall"
	if err := t.idle(op); err != nil {
		return err
	}
	cref, err := convert.FromString(ref)
	if err != nil {
		return convertError(op, err)
	}
	return t.add(op, func(p native.Ptr) (bool, *native.GError) {
		return t.c.lib.TransactionAddUninstall(p, cref)
	})
}

// AddInstallBundle queues installing a bundle file. gpgData may be nil.
func (t *Transaction) AddInstallBundle(path string, gpgData []byte) error {
	const op = "flatpak_transaction_add_install_bundle"
	if err := t.idle(op); err != nil {
		return err
	}
	cpath, err := convert.FromString(path)
	if err != nil {
		return convertError(op, err)
	}
	return t.add(op, func(p native.Ptr) (bool, *native.GError) {
		file := t.c.lib.FileNewForPath(cpath)
		defer t.c.lib.Unref(file)
		gpg := convert.ToBytes(t.c.lib, gpgData)
		if !gpg.IsNull() {
			defer t.c.lib.BytesUnref(gpg)
		}
		return t.c.lib.TransactionAddInstallBundle(p, file, gpg)
	})
}

// AddInstallFlatpakref queues installing what a .flatpakref file describes.
// The contents are only validated when the transaction runs.
func (t *Transaction) AddInstallFlatpakref(data []byte) error {
	const op = "flatpak_transaction_add_install_flatpakref"
	if err := t.idle(op); err != nil {
		return err
	}
	if data == nil {
		return convertError(op, convert.ErrNull)
	}
	return t.add(op, func(p native.Ptr) (bool, *native.GError) {
		b := convert.ToBytes(t.c.lib, data)
		defer t.c.lib.BytesUnref(b)
		return t.c.lib.TransactionAddInstallFlatpakref(p, b)
	})
}

// IsEmpty reports whether nothing has been queued.
func (t *Transaction) IsEmpty() (bool, error) { return t.boolean(native.TransactionIsEmpty) }

// Installation returns the installation the transaction operates on. The
// result is a view: it is usable while the transaction is alive and its
// Release does not affect the installation.
func (t *Transaction) Installation() (*Installation, error) {
	m := native.TransactionGetInstallation
	var inst *Installation
	err := t.call(m.Symbol, func(p native.Ptr) error {
		ip := t.c.lib.GetObject(p, m)
		if ip.IsNull() {
			return nativeFailure(m.Symbol)
		}
		inst = &Installation{object{c: t.c, h: handle.Borrow(t.c.lib, ip, t.h)}}
		return nil
	})
	return inst, err
}

func (t *Transaction) record(p native.Ptr) *opRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[p]
	if !ok {
		rec = &opRecord{}
		t.records[p] = rec
	}
	return rec
}

// view wraps an operation pointer as a view of the transaction.
func (t *Transaction) view(p native.Ptr) *TransactionOperation {
	return &TransactionOperation{
		object: object{c: t.c, h: handle.Borrow(t.c.lib, p, t.h)},
		tx:     t,
		rec:    t.record(p),
	}
}

func (t *Transaction) ownOperation(p native.Ptr) (*TransactionOperation, error) {
	h, err := t.c.adopt("wrap operation", p, true, native.TypeOperation)
	if err != nil {
		return nil, err
	}
	return &TransactionOperation{object: object{c: t.c, h: h}, tx: t, rec: t.record(p)}, nil
}

// Operations lists the queued operations. Before a run they are the
// requested ones; once the run has resolved them, dependencies and related
// refs are included in execution order.
func (t *Transaction) Operations() ([]*TransactionOperation, error) {
	const op = "flatpak_transaction_get_operations"
	var ops []*TransactionOperation
	err := t.call(op, func(p native.Ptr) error {
		l := t.c.lib.TransactionGetOperations(p)
		if l.IsNull() {
			ops = []*TransactionOperation{}
			return nil
		}
		var made []*TransactionOperation
		out, err := convert.List(t.c.lib, l, native.TransferFull, func(e native.Ptr) (*TransactionOperation, error) {
			o, err := t.ownOperation(e)
			if err == nil {
				made = append(made, o)
			}
			return o, err
		})
		if err != nil {
			for _, o := range made {
				o.Release()
			}
			return err
		}
		ops = out
		return nil
	})
	return ops, err
}

// CurrentOperation returns the operation being executed, or nil.
func (t *Transaction) CurrentOperation() (*TransactionOperation, error) {
	m := native.TransactionGetCurrentOperation
	var cur *TransactionOperation
	err := t.call(m.Symbol, func(p native.Ptr) error {
		op := t.c.lib.GetObject(p, m)
		if op.IsNull() {
			return nil
		}
		h, err := t.c.adopt("wrap operation", op, false, native.TypeOperation)
		if err != nil {
			return err
		}
		cur = &TransactionOperation{object: object{c: t.c, h: h}, tx: t, rec: t.record(op)}
		return nil
	})
	return cur, err
}

// Run executes the transaction and blocks until it ends. Events are
// delivered to the listeners on the calling goroutine, in order, ending with
// exactly one TransactionDone or TransactionError. The returned error is the
// one carried by TransactionError.
//
// Cancelling ctx, or a Cancellable attached with WithCancellable, stops the
// run at the next native checkpoint; the run then fails with Cancelled.
// Operations completed before that are not rolled back.
func (t *Transaction) Run(ctx context.Context) (err error) {
	const op = "flatpak_transaction_run"
	tp, err := t.h.Enter()
	if err != nil {
		return invalidHandle(op, err)
	}
	defer t.h.Leave()

	// A cancellable that cannot be bound leaves the transaction idle.
	cptr, done, err := t.c.bindCancellable(ctx)
	if err != nil {
		return err
	}
	defer done()

	t.mu.Lock()
	if t.state != StateIdle {
		state := t.state
		t.mu.Unlock()
		return newError(Unsupported, fmt.Sprintf("%s: transaction is %s", op, state))
	}
	t.state = StateRunning
	policy := t.policy
	t.mu.Unlock()

	runID := uuid.New()
	ctx, span := t.c.startSpan(ctx, "flatpak.Transaction.Run", attribute.String("flatpak.run_id", runID.String()))
	defer func() { endSpan(span, err) }()

	sb := &signalBridge{
		t:        t,
		lib:      t.c.lib,
		queue:    bridge.NewQueue[Event](),
		runID:    runID,
		policy:   policy,
		interval: t.c.progressInterval,
		views:    make(map[native.Ptr]*TransactionOperation),
		progress: make(map[native.Ptr]progressConn),
	}
	t.c.log.Info("transaction started", "run_id", runID.String(), "policy", policy.String())
	start := time.Now()

	finished := bridge.OnNativeThread(func() error { return sb.run(tp, cptr) })
	sb.queue.Pump(context.Background(), func(ev Event) bool {
		t.deliver(ev)
		return true
	})
	err = <-finished

	if err != nil {
		t.c.log.Info("transaction failed", "run_id", runID.String(), "kind", KindOf(err), "error", err, "elapsed", time.Since(start))
	} else {
		t.c.log.Info("transaction finished", "run_id", runID.String(), "elapsed", time.Since(start))
	}
	return err
}

// deliver applies ev to the transaction and operation state, then hands it
// to the listeners.
func (t *Transaction) deliver(ev Event) {
	t.mu.Lock()
	switch ev.Type {
	case OperationStarted:
		ev.Operation.rec.state = OperationInProgress
	case OperationDone:
		ev.Operation.rec.state = OperationSucceeded
	case OperationError:
		ev.Operation.rec.state = OperationFailed
	case TransactionDone:
		t.state = StateSucceeded
		t.abandonRunning()
	case TransactionError:
		t.state = StateFailed
		if IsKind(ev.Err, Cancelled) {
			t.state = StateCancelled
		}
		t.abandonRunning()
	}
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// abandonRunning fails the operations still in progress when the run ends.
// t.mu must be held.
func (t *Transaction) abandonRunning() {
	for _, rec := range t.records {
		if rec.state == OperationInProgress {
			rec.state = OperationFailed
		}
	}
}

type progressConn struct {
	ptr native.Ptr
	id  uint64
}

// signalBridge receives the native signals of one run. Its handlers run on
// the native thread: they snapshot what they need and queue an event, and
// never wait on the goroutine delivering events.
type signalBridge struct {
	t        *Transaction
	lib      native.Library
	queue    *bridge.Queue[Event]
	runID    uuid.UUID
	policy   ErrorPolicy
	interval time.Duration

	// native thread only
	views    map[native.Ptr]*TransactionOperation
	progress map[native.Ptr]progressConn
	fatal    error

	mu   sync.Mutex
	seq  uint64
	last time.Time
}

func (b *signalBridge) run(tp, cancellable native.Ptr) error {
	ids := b.lib.ConnectTransaction(tp, b)
	ok, gerr := b.lib.TransactionRun(tp, cancellable)
	for _, id := range ids {
		b.lib.Disconnect(tp, id)
	}
	for op := range b.progress {
		b.disconnectProgress(op)
	}

	err := b.result(ok, gerr)
	if err != nil {
		b.push(Event{Type: TransactionError, Err: err})
	} else {
		b.push(Event{Type: TransactionDone})
	}
	b.queue.Close()
	return err
}

// result decides the outcome of a run. A fatal operation error wins over
// the generic abort the native side reports after it.
func (b *signalBridge) result(ok bool, gerr *native.GError) error {
	switch {
	case ok && b.fatal == nil:
		return nil
	case b.fatal != nil && (ok || isAbort(gerr)):
		return b.fatal
	case gerr != nil:
		return fromGError("flatpak_transaction_run", gerr)
	}
	return nativeFailure("flatpak_transaction_run")
}

func isAbort(gerr *native.GError) bool {
	return gerr != nil && gerr.Domain == native.DomainFlatpak && gerr.Code == native.FlatpakErrorAborted
}

func (b *signalBridge) push(ev Event) {
	b.mu.Lock()
	b.seq++
	ev.RunID = b.runID
	ev.Seq = b.seq
	now := time.Now()
	if !now.After(b.last) {
		now = b.last.Add(time.Nanosecond)
	}
	b.last = now
	ev.Time = now
	b.mu.Unlock()

	if !b.queue.Push(ev) {
		b.t.c.log.Debug("dropping transaction event after completion", "run_id", b.runID.String(), "event", ev.Type.String())
	}
}

func (b *signalBridge) view(op native.Ptr) *TransactionOperation {
	if v, ok := b.views[op]; ok {
		return v
	}
	v := b.t.view(op)
	b.views[op] = v
	return v
}

func (b *signalBridge) disconnectProgress(op native.Ptr) {
	conn, ok := b.progress[op]
	if !ok {
		return
	}
	delete(b.progress, op)
	b.lib.Disconnect(conn.ptr, conn.id)
	b.lib.Unref(conn.ptr)
}

func (b *signalBridge) Ready() bool {
	b.push(Event{Type: Ready})
	return true
}

func (b *signalBridge) NewOperation(op, progress native.Ptr) {
	v := b.view(op)
	b.lib.Ref(progress)
	if b.interval > 0 {
		b.lib.SetInt(progress, native.ProgressSetUpdateFrequency, b.interval.Milliseconds())
	}
	id := b.lib.ConnectProgress(progress, func() {
		b.push(Event{Type: ProgressChanged, Operation: v, Progress: snapshotProgress(b.lib, progress)})
	})
	b.progress[op] = progressConn{ptr: progress, id: id}
	b.push(Event{Type: OperationStarted, Operation: v, Progress: snapshotProgress(b.lib, progress)})
}

func (b *signalBridge) OperationDone(op native.Ptr, commit native.CString, result int) {
	b.disconnectProgress(op)
	c, err := convert.OptString(commit)
	if err != nil {
		b.t.c.log.Debug("dropping undecodable commit", "run_id", b.runID.String(), "error", err)
	}
	b.push(Event{Type: OperationDone, Operation: b.view(op), Commit: c})
}

func (b *signalBridge) OperationError(op native.Ptr, gerr *native.GError, details int) bool {
	b.disconnectProgress(op)
	var err error
	if gerr != nil {
		g := *gerr
		err = fromGError("operation-error", &g)
	} else {
		err = nativeFailure("operation-error")
	}
	nonFatal := details&native.ErrorDetailNonFatal != 0
	if !nonFatal && b.fatal == nil {
		b.fatal = err
	}
	b.push(Event{Type: OperationError, Operation: b.view(op), Err: err, NonFatal: nonFatal})
	return nonFatal || b.policy == ContinueOnError
}
