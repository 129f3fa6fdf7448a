package flatpak

import "github.com/blackwell-systems/goflatpak/internal/native"

// Cancellable is an explicit cancellation token. Attach it to a context with
// WithCancellable; cancelling it stops every call made with that context.
type Cancellable struct {
	object
}

// Cancel requests cancellation. It is safe to call from any goroutine and
// more than once.
func (c *Cancellable) Cancel() error {
	return c.call("g_cancellable_cancel", func(p native.Ptr) error {
		c.c.lib.CancellableCancel(p)
		return nil
	})
}

func (c *Cancellable) IsCancelled() (bool, error) {
	var v bool
	err := c.call("g_cancellable_is_cancelled", func(p native.Ptr) error {
		v = c.c.lib.CancellableIsCancelled(p)
		return nil
	})
	return v, err
}
