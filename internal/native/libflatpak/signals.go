package libflatpak

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/blackwell-systems/goflatpak/internal/native"
)

// purego keeps a fixed number of callback slots for the life of the
// process, so every signal shares one trampoline per C signature and finds
// its Go handler through the user_data pointer.
var (
	trampolinesOnce sync.Once
	trampolines     struct {
		newOperation   uintptr
		operationDone  uintptr
		operationError uintptr
		ready          uintptr
		changed        uintptr
		destroy        uintptr
	}

	handlers    sync.Map // uintptr -> any
	nextHandler atomic.Uintptr
)

func initTrampolines() {
	trampolinesOnce.Do(func() {
		trampolines.newOperation = purego.NewCallback(onNewOperation)
		trampolines.operationDone = purego.NewCallback(onOperationDone)
		trampolines.operationError = purego.NewCallback(onOperationError)
		trampolines.ready = purego.NewCallback(onReady)
		trampolines.changed = purego.NewCallback(onChanged)
		trampolines.destroy = purego.NewCallback(onDestroy)
	})
}

func register(h any) uintptr {
	key := nextHandler.Add(1)
	handlers.Store(key, h)
	return key
}

func lookupHandler[T any](key uintptr) (T, bool) {
	v, ok := handlers.Load(key)
	if !ok {
		var zero T
		return zero, false
	}
	h, ok := v.(T)
	return h, ok
}

// void (*)(FlatpakTransaction*, FlatpakTransactionOperation*, FlatpakTransactionProgress*, gpointer)
func onNewOperation(_, op, progress, data uintptr) uintptr {
	if h, ok := lookupHandler[txHandler](data); ok {
		h.s.NewOperation(native.Ptr(op), native.Ptr(progress))
	}
	return 0
}

// void (*)(FlatpakTransaction*, FlatpakTransactionOperation*, const char*, FlatpakTransactionResult, gpointer)
func onOperationDone(_, op, commit, result, data uintptr) uintptr {
	if h, ok := lookupHandler[txHandler](data); ok {
		h.s.OperationDone(native.Ptr(op), goCString(commit), int(int32(result)))
	}
	return 0
}

// gboolean (*)(FlatpakTransaction*, FlatpakTransactionOperation*, GError*, FlatpakTransactionErrorDetails, gpointer)
//
// The GError belongs to the emitter and is only copied.
func onOperationError(_, op, gerr, details, data uintptr) uintptr {
	h, ok := lookupHandler[txHandler](data)
	if !ok {
		return 0
	}
	var e *native.GError
	if gerr != 0 {
		g := at[gerror](gerr, 0)
		e = &native.GError{
			Domain:  string(goCString(h.l.invoke("g_quark_to_string", uintptr(g.domain))).Data),
			Code:    int(g.code),
			Message: string(goCString(g.message).Data),
		}
	}
	return gboolean(h.s.OperationError(native.Ptr(op), e, int(int32(details))))
}

// gboolean (*)(FlatpakTransaction*, gpointer)
func onReady(_, data uintptr) uintptr {
	if h, ok := lookupHandler[txHandler](data); ok {
		return gboolean(h.s.Ready())
	}
	return 1
}

// void (*)(FlatpakTransactionProgress*, gpointer)
func onChanged(_, data uintptr) uintptr {
	if fn, ok := lookupHandler[func()](data); ok {
		fn()
	}
	return 0
}

// GClosureNotify: void (*)(gpointer data, GClosure*)
func onDestroy(data, _ uintptr) uintptr {
	handlers.Delete(data)
	return 0
}

type txHandler struct {
	l *Library
	s native.TransactionSignals
}

// connect wires one signal to a trampoline. The handler is dropped from the
// registry when GLib destroys the closure.
func (l *Library) connect(instance native.Ptr, signal string, trampoline uintptr, h any) uint64 {
	name := newCBuf(native.Str(signal))
	key := register(h)
	id := l.invoke("g_signal_connect_data",
		ptr(instance), uintptr(unsafe.Pointer(&name[0])), trampoline, key, trampolines.destroy, 0)
	if id == 0 {
		handlers.Delete(key)
	}
	return uint64(id)
}

// ConnectTransaction implements native.Library. Handler IDs are returned in
// the order new-operation, operation-done, operation-error, ready.
func (l *Library) ConnectTransaction(t native.Ptr, s native.TransactionSignals) []uint64 {
	initTrampolines()
	h := txHandler{l: l, s: s}
	return []uint64{
		l.connect(t, "new-operation", trampolines.newOperation, h),
		l.connect(t, "operation-done", trampolines.operationDone, h),
		l.connect(t, "operation-error", trampolines.operationError, h),
		l.connect(t, "ready", trampolines.ready, h),
	}
}

func (l *Library) ConnectProgress(progress native.Ptr, changed func()) uint64 {
	initTrampolines()
	return l.connect(progress, "changed", trampolines.changed, changed)
}

// Disconnect implements native.Library. GLib destroys the closure, which
// removes the Go handler.
func (l *Library) Disconnect(instance native.Ptr, handlerID uint64) {
	if instance.IsNull() || handlerID == 0 {
		return
	}
	if isTrue(l.invoke("g_signal_handler_is_connected", ptr(instance), uintptr(handlerID))) {
		l.invoke("g_signal_handler_disconnect", ptr(instance), uintptr(handlerID))
	}
}
