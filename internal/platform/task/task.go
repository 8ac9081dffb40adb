// Package task models one in-flight asynchronous operation whose result is
// delivered back on the owning loop.
package task

import (
	"context"
	"sync"
)

// Poster schedules a function on the owning goroutine.
type Poster interface {
	Post(fn func()) bool
}

// Handle is the caller's view of an async operation. The resolution callback
// fires at most once, on the poster's goroutine. When the operation was
// issued from that same goroutine the callback can only run after the
// issuing call has returned.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Resolved returns a handle that is already done, for submitters that settle
// without running any work.
func Resolved() *Handle {
	h := New(context.Background())
	h.finish(nil)
	return h
}

func (h *Handle) Context() context.Context { return h.ctx }

// Cancel asks the operation to stop. The callback still fires, reporting
// the cancellation.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed after the callback has run, or after the result was
// dropped because the loop stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) finish(fn func()) {
	h.once.Do(func() {
		if fn != nil {
			fn()
		}
		h.cancel()
		close(h.done)
	})
}

// Start runs work on its own goroutine with the handle's context and posts
// resolve(result) to p.
func Start[T any](h *Handle, p Poster, work func(context.Context) T, resolve func(T)) {
	go func() {
		result := work(h.ctx)
		if !p.Post(func() { h.finish(func() { resolve(result) }) }) {
			h.finish(nil)
		}
	}()
}
