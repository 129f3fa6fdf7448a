package flatpak

import (
	"context"
	"runtime"
	"sync"
	"syscall"
	"testing"
)

func TestListenersRunOnCallingThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	caller := syscall.Gettid()

	c, sim, _ := newTestClient(t)
	seedCatalog(t, sim)

	var (
		mu         sync.Mutex
		nativeTids = map[int]bool{}
	)
	sim.SetEmitHook(func(string) {
		mu.Lock()
		nativeTids[syscall.Gettid()] = true
		mu.Unlock()
	})

	tx, _ := newTestTransaction(t, c)
	if err := tx.AddInstall("flathub", appRef, nil); err != nil {
		t.Fatal(err)
	}
	var wrong int
	tx.AddListener(func(Event) {
		if syscall.Gettid() != caller {
			wrong++
		}
	})
	if err := tx.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if wrong != 0 {
		t.Errorf("%d events delivered off the calling thread", wrong)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(nativeTids) == 0 {
		t.Fatal("no signals emitted")
	}
	if nativeTids[caller] {
		t.Error("native signals were emitted on the calling thread")
	}
}
