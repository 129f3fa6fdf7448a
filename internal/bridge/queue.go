// Package bridge moves events from native worker threads to the goroutine
// that owns a transaction or monitor.
//
// Producers only append; a single consumer drains in FIFO order. Nothing in
// Push blocks on the consumer, so a native thread emitting signals can never
// deadlock against a Go listener.
package bridge

import (
	"context"
	"sync"
)

// Queue is an unbounded multi-producer, single-consumer FIFO.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	wake   chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{wake: make(chan struct{}, 1)}
}

// Push appends v. It reports false if the queue was closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.signal()
	return true
}

// Close stops accepting events. Events already queued remain drainable.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued events.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns everything queued, oldest first.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Wait blocks until an event may be available, the queue is closed, or ctx
// is done. It reports false once the queue is closed and empty.
func (q *Queue[T]) Wait(ctx context.Context) bool {
	for {
		q.mu.Lock()
		n, closed := len(q.items), q.closed
		q.mu.Unlock()
		if n > 0 {
			return true
		}
		if closed {
			return false
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return q.Len() > 0
		}
	}
}

// Pump delivers events to fn on the calling goroutine until the queue is
// closed and drained, fn returns false, or ctx is done.
func (q *Queue[T]) Pump(ctx context.Context, fn func(T) bool) {
	for q.Wait(ctx) {
		for _, ev := range q.Drain() {
			if !fn(ev) {
				return
			}
		}
		if ctx.Err() != nil && q.Len() == 0 {
			return
		}
	}
}
