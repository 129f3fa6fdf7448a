package bridge

import "runtime"

// OnNativeThread runs fn on a fresh goroutine locked to its own OS thread,
// the way a native library expects to run a blocking main loop. The returned
// channel receives fn's result once.
func OnNativeThread[R any](fn func() R) <-chan R {
	done := make(chan R, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		done <- fn()
	}()
	return done
}
