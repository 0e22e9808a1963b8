package domain

import (
	"sync"
	"sync/atomic"
)

// CancelToken is a one-shot stop request.
// The player is its only writer and the executor its only reader; the only
// transition is false -> true, so readers may observe it late but never wrongly.
type CancelToken struct {
	requested atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewCancelToken returns a token that has not been requested.
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel requests a stop. Calling it more than once is harmless.
func (t *CancelToken) Cancel() {
	t.once.Do(func() {
		t.requested.Store(true)
		close(t.done)
	})
}

// Requested reports whether a stop was requested.
func (t *CancelToken) Requested() bool {
	return t.requested.Load()
}

// Done is closed once Cancel is called. Executors use it to cut a pacing delay
// short; it does not replace polling Requested at checkpoints.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}
