package nativesim

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/goflatpak/internal/keyfile"
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

// Operation types, as FlatpakTransactionOperationType.
const (
	opInstall       = 0
	opUpdate        = 1
	opInstallBundle = 2
	opUninstall     = 3
)

// Signal names.
const (
	sigNewOperation   = "new-operation"
	sigOperationDone  = "operation-done"
	sigOperationError = "operation-error"
	sigReady          = "ready"
	sigChanged        = "changed"
)

type transactionObj struct {
	installation native.Ptr
	instID       string

	// requests holds flatpakref payloads; they resolve when the run starts.
	requests [][]byte
	ops      []native.Ptr
	flags    map[string]bool
	current  native.Ptr
	ran      bool
}

type operationObj struct {
	kind          int
	ref           string
	remote        string
	commit        *string
	bundle        native.Ptr
	downloadSize  uint64
	installedSize uint64
	skipped       bool
	metadata      []byte

	subpaths []string
	// target commit requested by AddUpdate
	pin     *string
	entry   *store.RemoteRef
	bundled *refObj
}

type progressObj struct {
	progress   int
	status     string
	estimating bool
	bytes      uint64
	startTime  uint64
	frequency  int
}

type handler struct {
	instance native.Ptr
	signal   string
	signals  native.TransactionSignals
	changed  func()
}

func (s *Sim) transaction(p native.Ptr, op string) *transactionObj {
	o := s.get(p, op)
	if o == nil {
		return nil
	}
	v, ok := o.value.(*transactionObj)
	if !ok {
		s.mu.Lock()
		s.violate(op+": not a transaction", p, o)
		s.mu.Unlock()
		return nil
	}
	return v
}

func invalidTransaction(op string) *native.GError {
	return ioErr(native.IOErrorInvalidArgument, "%s: invalid transaction", op)
}

// TransactionNewForInstallation implements native.Library.
func (s *Sim) TransactionNewForInstallation(inst native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	rec, gerr := s.installation(inst, "flatpak_transaction_new_for_installation")
	if gerr != nil {
		return native.Null, gerr
	}
	s.Ref(inst)
	return s.alloc(native.TypeTransaction, catGObject, &transactionObj{
		installation: inst,
		instID:       rec.ID,
		flags:        make(map[string]bool),
	}), nil
}

func (s *Sim) flag(t *transactionObj, m native.Method) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.flags[m.Symbol]
}

func (s *Sim) operation(p native.Ptr) *operationObj {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[p].value.(*operationObj)
}

func (s *Sim) appendOp(t *transactionObj, op *operationObj) {
	p := s.alloc(native.TypeOperation, catGObject, op)
	s.mu.Lock()
	t.ops = append(t.ops, p)
	s.mu.Unlock()
}

func strvValues(v []native.CString) []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, c := range v {
		out = append(out, string(c.Data))
	}
	return out
}

func (s *Sim) installed(instID, ref string) bool {
	_, err := s.st.GetInstalledRef(instID, ref)
	return err == nil
}

// TransactionAddInstall implements native.Library.
func (s *Sim) TransactionAddInstall(tp native.Ptr, remote, ref native.CString, subpaths []native.CString) (bool, *native.GError) {
	const op = "flatpak_transaction_add_install"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}
	r, gerr := parseRef(string(ref.Data))
	if gerr != nil {
		return false, gerr
	}
	inst, err := s.st.GetInstallation(t.instID)
	if err != nil {
		return false, storeErr(err)
	}
	if _, gerr := s.remote(inst, string(remote.Data)); gerr != nil {
		return false, gerr
	}
	if s.installed(t.instID, r.format()) && !s.flag(t, native.TransactionSetReinstall) {
		return false, flatpakErr(native.FlatpakErrorAlreadyInstalled, "%s already installed", r.format())
	}
	s.appendOp(t, &operationObj{
		kind:     opInstall,
		ref:      r.format(),
		remote:   string(remote.Data),
		subpaths: strvValues(subpaths),
	})
	return true, nil
}

// TransactionAddUpdate implements native.Library.
func (s *Sim) TransactionAddUpdate(tp native.Ptr, ref native.CString, subpaths []native.CString, commit native.CString) (bool, *native.GError) {
	const op = "flatpak_transaction_add_update"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}
	r, gerr := parseRef(string(ref.Data))
	if gerr != nil {
		return false, gerr
	}
	row, err := s.st.GetInstalledRef(t.instID, r.format())
	if errors.Is(err, store.ErrNotFound) {
		return false, flatpakErr(native.FlatpakErrorNotInstalled, "%s not installed", r.format())
	}
	if err != nil {
		return false, storeErr(err)
	}

	u := &operationObj{
		kind:     opUpdate,
		ref:      r.format(),
		remote:   row.Origin,
		subpaths: strvValues(subpaths),
	}
	if u.subpaths == nil {
		u.subpaths = row.Subpaths
	}
	if !commit.Null {
		u.pin = strPtr(string(commit.Data))
	}
	s.appendOp(t, u)
	return true, nil
}

// TransactionAddUninstall implements native.Library.
func (s *Sim) TransactionAddUninstall(tp native.Ptr, ref native.CString) (bool, *native.GError) {
	const op = "flatpak_transaction_add_uninstall"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}
	r, gerr := parseRef(string(ref.Data))
	if gerr != nil {
		return false, gerr
	}
	row, err := s.st.GetInstalledRef(t.instID, r.format())
	if errors.Is(err, store.ErrNotFound) {
		return false, flatpakErr(native.FlatpakErrorNotInstalled, "%s not installed", r.format())
	}
	if err != nil {
		return false, storeErr(err)
	}
	s.appendOp(t, &operationObj{
		kind:          opUninstall,
		ref:           r.format(),
		remote:        row.Origin,
		commit:        strPtr(row.Commit),
		installedSize: row.InstalledSize,
		metadata:      row.Metadata,
	})
	return true, nil
}

// TransactionAddInstallBundle implements native.Library. The bundle is read
// when it is added.
func (s *Sim) TransactionAddInstallBundle(tp native.Ptr, file native.Ptr, gpgData native.Ptr) (bool, *native.GError) {
	const op = "flatpak_transaction_add_install_bundle"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}
	if !gpgData.IsNull() {
		s.BytesData(gpgData)
	}
	bp, gerr := s.BundleRefNew(file)
	if gerr != nil {
		return false, gerr
	}
	o := s.get(bp, op)
	r := o.value.(*refObj)
	s.Unref(bp)

	if s.installed(t.instID, r.format()) && !s.flag(t, native.TransactionSetReinstall) {
		return false, flatpakErr(native.FlatpakErrorAlreadyInstalled, "%s already installed", r.format())
	}

	origin := r.name + "-origin"
	if i := strings.LastIndex(r.name, "."); i >= 0 {
		origin = strings.ToLower(r.name[i+1:]) + "-origin"
	}
	s.appendOp(t, &operationObj{
		kind:          opInstallBundle,
		ref:           r.format(),
		remote:        origin,
		commit:        r.commit,
		bundle:        s.Ref(file),
		installedSize: r.bundle.installedSize,
		metadata:      r.bundle.metadata,
		bundled:       r,
	})
	return true, nil
}

// TransactionAddInstallFlatpakref implements native.Library. Data that is
// not a key file is rejected here; a key file without a usable
// [Flatpak Ref] group fails when the transaction runs.
func (s *Sim) TransactionAddInstallFlatpakref(tp native.Ptr, data native.Ptr) (bool, *native.GError) {
	const op = "flatpak_transaction_add_install_flatpakref"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}
	raw := s.BytesData(data)
	if _, err := keyfile.Parse(raw); err != nil {
		return false, flatpakErr(native.FlatpakErrorInvalidData, "Invalid .flatpakref: %v", err)
	}
	s.mu.Lock()
	t.requests = append(t.requests, append([]byte{}, raw...))
	s.mu.Unlock()
	return true, nil
}

// TransactionGetOperations implements native.Library. The list and every
// element are transfer full.
func (s *Sim) TransactionGetOperations(tp native.Ptr) native.Ptr {
	t := s.transaction(tp, "flatpak_transaction_get_operations")
	if t == nil {
		return native.Null
	}
	s.mu.Lock()
	ops := append([]native.Ptr(nil), t.ops...)
	s.mu.Unlock()
	if len(ops) == 0 {
		return native.Null
	}
	for _, p := range ops {
		s.Ref(p)
	}
	return s.alloc("GList", catList, &listObj{elems: ops, full: true})
}

// runtimeOf returns the runtime ref an application's metadata depends on.
func runtimeOf(metadata []byte) (string, bool) {
	if metadata == nil {
		return "", false
	}
	f, err := keyfile.Parse(metadata)
	if err != nil {
		return "", false
	}
	rt, ok := f.Lookup("Application", "runtime")
	if !ok || rt == "" {
		return "", false
	}
	return "runtime/" + rt, true
}

func (s *Sim) findInCatalogs(inst *store.Installation, preferred, ref string) (*store.RemoteRef, *native.GError) {
	remotes, err := s.st.ListRemotes(inst.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	order := make([]*store.Remote, 0, len(remotes))
	for _, r := range remotes {
		if r.Name == preferred {
			order = append([]*store.Remote{r}, order...)
		} else if !r.Disabled {
			order = append(order, r)
		}
	}
	for _, r := range order {
		e, err := s.st.GetRemoteRef(inst.ID, r.Name, ref)
		if err != nil {
			continue
		}
		if gerr := s.online(r); gerr != nil {
			return nil, gerr
		}
		return e, nil
	}
	return nil, nil
}

// resolve expands flatpakrefs, looks up catalog entries and adds
// dependencies and related refs. No signal is emitted before it succeeds.
func (s *Sim) resolve(t *transactionObj) *native.GError {
	inst, err := s.st.GetInstallation(t.instID)
	if err != nil {
		return storeErr(err)
	}

	s.mu.Lock()
	requests := t.requests
	t.requests = nil
	s.mu.Unlock()
	for _, data := range requests {
		fr, gerr := parseFlatpakRef(data)
		if gerr != nil {
			return gerr
		}
		origin, gerr := s.originFor(inst, fr)
		if gerr != nil {
			return gerr
		}
		ref := formatRef(fr.kind, fr.name, s.arch, fr.branch)
		if s.installed(inst.ID, ref) && !s.flag(t, native.TransactionSetReinstall) {
			return flatpakErr(native.FlatpakErrorAlreadyInstalled, "%s already installed", ref)
		}
		s.appendOp(t, &operationObj{kind: opInstall, ref: ref, remote: origin.Name})
	}

	s.mu.Lock()
	initial := append([]native.Ptr(nil), t.ops...)
	s.mu.Unlock()

	seen := make(map[string]bool, len(initial))
	for _, p := range initial {
		seen[s.operation(p).ref] = true
	}

	var resolved []native.Ptr
	var dropped []native.Ptr
	for _, p := range initial {
		op := s.operation(p)
		switch op.kind {
		case opInstall, opUpdate:
			remote, gerr := s.remote(inst, op.remote)
			if gerr != nil {
				return gerr
			}
			if gerr := s.online(remote); gerr != nil {
				return gerr
			}
			e, err := s.st.GetRemoteRef(inst.ID, op.remote, op.ref)
			if errors.Is(err, store.ErrNotFound) {
				return flatpakErr(native.FlatpakErrorRefNotFound, "Can't find ref %s in remote %s", op.ref, op.remote)
			}
			if err != nil {
				return storeErr(err)
			}

			if op.kind == opUpdate {
				row, err := s.st.GetInstalledRef(inst.ID, op.ref)
				if err != nil {
					return storeErr(err)
				}
				target := e.Commit
				if op.pin != nil {
					target = *op.pin
				}
				if target == row.Commit {
					dropped = append(dropped, p)
					continue
				}
			}

			s.fill(op, e)
			if op.kind == opInstall && !remote.NoDeps && !s.flag(t, native.TransactionSetDisableDependencies) {
				dep, gerr := s.dependency(inst, op, seen)
				if gerr != nil {
					return gerr
				}
				if dep != native.Null {
					resolved = append(resolved, dep)
				}
			}
			resolved = append(resolved, p)
			if op.kind == opInstall && !s.flag(t, native.TransactionSetDisableRelated) {
				resolved = append(resolved, s.related(inst, op, seen)...)
			}
		default:
			resolved = append(resolved, p)
		}
	}

	s.mu.Lock()
	t.ops = resolved
	s.mu.Unlock()
	for _, p := range dropped {
		s.Unref(p)
	}
	return nil
}

func (s *Sim) fill(op *operationObj, e *store.RemoteRef) {
	op.entry = e
	op.commit = strPtr(e.Commit)
	if op.pin != nil {
		op.commit = op.pin
	}
	op.downloadSize = e.DownloadSize
	op.installedSize = e.InstalledSize
	op.metadata = e.Metadata
}

func (s *Sim) dependency(inst *store.Installation, app *operationObj, seen map[string]bool) (native.Ptr, *native.GError) {
	rt, ok := runtimeOf(app.metadata)
	if !ok || seen[rt] || s.installed(inst.ID, rt) {
		return native.Null, nil
	}
	e, gerr := s.findInCatalogs(inst, app.remote, rt)
	if gerr != nil {
		return native.Null, gerr
	}
	if e == nil {
		return native.Null, flatpakErr(native.FlatpakErrorRuntimeNotFound,
			"The application %s requires the runtime %s which was not found", app.ref, strings.TrimPrefix(rt, "runtime/"))
	}
	seen[rt] = true
	dep := &operationObj{kind: opInstall, ref: rt, remote: e.Remote}
	s.fill(dep, e)
	return s.alloc(native.TypeOperation, catGObject, dep), nil
}

func (s *Sim) related(inst *store.Installation, app *operationObj, seen map[string]bool) []native.Ptr {
	rows, err := s.st.ListRelatedRefs(inst.ID, app.remote, app.ref)
	if err != nil {
		return nil
	}
	var out []native.Ptr
	for _, row := range rows {
		if !row.ShouldDownload || seen[row.Related] || s.installed(inst.ID, row.Related) {
			continue
		}
		e, err := s.st.GetRemoteRef(inst.ID, app.remote, row.Related)
		if err != nil {
			continue
		}
		seen[row.Related] = true
		op := &operationObj{kind: opInstall, ref: row.Related, remote: app.remote, subpaths: row.Subpaths}
		s.fill(op, e)
		out = append(out, s.alloc(native.TypeOperation, catGObject, op))
	}
	return out
}

// apply deploys the result of a finished operation.
func (s *Sim) apply(t *transactionObj, op *operationObj) *native.GError {
	if s.flag(t, native.TransactionSetNoDeploy) {
		return nil
	}
	inst, err := s.st.GetInstallation(t.instID)
	if err != nil {
		return storeErr(err)
	}

	switch op.kind {
	case opUninstall:
		if err := s.st.DeleteInstalledRef(inst.ID, op.ref); err != nil {
			return storeErr(err)
		}
		return nil
	case opUpdate:
		row, err := s.st.GetInstalledRef(inst.ID, op.ref)
		if err != nil {
			return storeErr(err)
		}
		row.Commit = *op.commit
		row.LatestCommit = strPtr(op.entry.Commit)
		row.InstalledSize = op.installedSize
		row.Metadata = op.metadata
		row.EOL = op.entry.EOL
		row.EOLRebase = op.entry.EOLRebase
		row.Subpaths = op.subpaths
		if err := s.st.UpsertInstalledRef(row); err != nil {
			return storeErr(err)
		}
		return nil
	}

	ro := mustParse(op.ref)
	row := &store.InstalledRef{
		Installation:  inst.ID,
		Ref:           op.ref,
		Origin:        op.remote,
		Commit:        *op.commit,
		LatestCommit:  op.commit,
		InstalledSize: op.installedSize,
		DeployDir:     filepath.Join(inst.Path, ro.format(), "active"),
		IsCurrent:     ro.kind == kindApp,
		Subpaths:      op.subpaths,
		Metadata:      op.metadata,
	}
	if op.entry != nil {
		row.EOL = op.entry.EOL
		row.EOLRebase = op.entry.EOLRebase
	}
	if op.bundled != nil {
		row.Appdata = op.bundled.bundle.appstream
	}
	if err := s.st.UpsertInstalledRef(row); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Sim) handlersFor(instance native.Ptr, signal string) []*handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*handler
	for _, h := range s.handlers {
		if h.instance == instance && h.signal == signal {
			out = append(out, h)
		}
	}
	return out
}

// emit runs fn for every handler of signal with s.mu released, so handlers
// may call back into the library.
func (s *Sim) emit(instance native.Ptr, signal string, fn func(*handler)) int {
	hs := s.handlersFor(instance, signal)
	if len(hs) == 0 {
		return 0
	}
	s.mu.Lock()
	hook := s.emitHook
	s.mu.Unlock()
	if hook != nil {
		hook(signal)
	}
	s.emitting.Store(true)
	defer s.emitting.Store(false)
	for _, h := range hs {
		fn(h)
	}
	return len(hs)
}

func (s *Sim) cancelled(c native.Ptr) bool {
	return s.CancellableIsCancelled(c)
}

// TransactionRun implements native.Library. Signals are emitted on the
// calling thread.
func (s *Sim) TransactionRun(tp native.Ptr, cancellable native.Ptr) (bool, *native.GError) {
	const op = "flatpak_transaction_run"
	t := s.transaction(tp, op)
	if t == nil {
		return false, invalidTransaction(op)
	}

	s.mu.Lock()
	if t.ran {
		s.mu.Unlock()
		return false, ioErr(native.IOErrorFailed, "Transaction already executed")
	}
	t.ran = true
	s.mu.Unlock()

	if s.cancelled(cancellable) {
		return false, cancelledErr()
	}
	inst, err := s.st.GetInstallation(t.instID)
	if err != nil {
		return false, storeErr(err)
	}
	if gerr := writable(inst); gerr != nil {
		return false, gerr
	}
	if gerr := s.resolve(t); gerr != nil {
		return false, gerr
	}

	ready := true
	s.emit(tp, sigReady, func(h *handler) {
		if !h.signals.Ready() {
			ready = false
		}
	})
	if !ready {
		return false, flatpakErr(native.FlatpakErrorAborted, "Aborted by user")
	}

	s.mu.Lock()
	ops := append([]native.Ptr(nil), t.ops...)
	s.mu.Unlock()

	for _, p := range ops {
		if s.cancelled(cancellable) {
			return false, cancelledErr()
		}
		cont, gerr := s.runOperation(tp, t, p, cancellable)
		if gerr != nil {
			return false, gerr
		}
		if !cont {
			break
		}
	}
	return true, nil
}

// runOperation executes one operation. It returns false with an error when
// the transaction must stop.
func (s *Sim) runOperation(tp native.Ptr, t *transactionObj, p native.Ptr, cancellable native.Ptr) (bool, *native.GError) {
	op := s.operation(p)
	s.mu.Lock()
	t.current = p
	checkpoint := s.checkpoint
	fail, failing := s.failures[op.ref]
	delete(s.failures, op.ref)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		t.current = native.Null
		s.mu.Unlock()
	}()

	progress := s.alloc(native.TypeProgress, catGObject, &progressObj{
		status:     "Initializing",
		estimating: true,
		startTime:  uint64(time.Now().UnixMicro()),
		frequency:  150,
	})
	defer s.Unref(progress)

	s.emit(tp, sigNewOperation, func(h *handler) { h.signals.NewOperation(p, progress) })

	for step := 1; step <= s.steps; step++ {
		if checkpoint != nil {
			checkpoint(op.ref, step)
		}
		if s.cancelled(cancellable) {
			return false, cancelledErr()
		}
		if s.stepDelay > 0 {
			time.Sleep(s.stepDelay)
		}

		s.mu.Lock()
		pr := s.objects[progress].value.(*progressObj)
		pr.progress = step * 100 / s.steps
		pr.estimating = false
		pr.bytes = op.downloadSize * uint64(step) / uint64(s.steps)
		pr.status = "Downloading"
		if step == s.steps {
			pr.status = "Installing"
		}
		s.mu.Unlock()
		s.emit(progress, sigChanged, func(h *handler) { h.changed() })

		if failing && step == (s.steps+1)/2 {
			break
		}
	}

	if failing {
		details := 0
		if fail.nonFatal {
			details = native.ErrorDetailNonFatal
		}
		gerr := fail.err
		cont := fail.nonFatal
		s.emit(tp, sigOperationError, func(h *handler) {
			cont = h.signals.OperationError(p, &gerr, details)
		})
		if !cont {
			return false, flatpakErr(native.FlatpakErrorAborted, "Aborted due to failure (%s)", gerr.Message)
		}
		return true, nil
	}

	if gerr := s.apply(t, op); gerr != nil {
		cont := false
		s.emit(tp, sigOperationError, func(h *handler) {
			cont = h.signals.OperationError(p, gerr, 0)
		})
		if !cont {
			return false, flatpakErr(native.FlatpakErrorAborted, "Aborted due to failure (%s)", gerr.Message)
		}
		return true, nil
	}

	commit := native.NullString()
	if op.commit != nil && op.kind != opUninstall {
		commit = native.Str(*op.commit)
	}
	s.emit(tp, sigOperationDone, func(h *handler) { h.signals.OperationDone(p, commit, 0) })
	return true, nil
}

// ConnectTransaction implements native.Library. It returns one handler id
// per signal: new-operation, operation-done, operation-error, ready.
func (s *Sim) ConnectTransaction(tp native.Ptr, signals native.TransactionSignals) []uint64 {
	if s.transaction(tp, "g_signal_connect") == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint64
	for _, sig := range []string{sigNewOperation, sigOperationDone, sigOperationError, sigReady} {
		s.nextHandler++
		s.handlers[s.nextHandler] = &handler{instance: tp, signal: sig, signals: signals}
		ids = append(ids, s.nextHandler)
	}
	return ids
}

// ConnectProgress implements native.Library.
func (s *Sim) ConnectProgress(progress native.Ptr, changed func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getLocked(progress, "g_signal_connect") == nil {
		return 0
	}
	s.nextHandler++
	s.handlers[s.nextHandler] = &handler{instance: progress, signal: sigChanged, changed: changed}
	return s.nextHandler
}

// Disconnect implements native.Library.
func (s *Sim) Disconnect(instance native.Ptr, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.getLocked(instance, "g_signal_handler_disconnect")
	if o == nil {
		return
	}
	h, ok := s.handlers[id]
	if !ok || h.instance != instance {
		s.violate("g_signal_handler_disconnect: no handler with id", instance, o)
		return
	}
	delete(s.handlers, id)
}

// Handlers returns the number of connected signal handlers.
func (s *Sim) Handlers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// dropHandlersLocked disconnects every handler of a finalized instance.
func (s *Sim) dropHandlersLocked(instance native.Ptr) {
	for id, h := range s.handlers {
		if h.instance == instance {
			delete(s.handlers, id)
		}
	}
}
