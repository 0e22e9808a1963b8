package executor

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Run is the handle an algorithm body uses to read and mutate its RunState.
// Primitives are safe for concurrent use; emissions are serialized so observers
// see mutations in commit order.
type Run struct {
	ID string

	ctx    context.Context
	state  *domain.RunState
	token  *domain.CancelToken
	target int
	pace   func() time.Duration

	mu    sync.Mutex
	found int
}

// Len returns the number of elements.
func (r *Run) Len() int {
	return r.state.Len()
}

// Value reads the element at i.
func (r *Run) Value(i int) int {
	return r.state.Value(i)
}

// Values returns a copy of the working array.
func (r *Run) Values() []int {
	return r.state.Values()
}

// Target returns the value a search is looking for.
func (r *Run) Target() int {
	return r.target
}

// Checkpoint polls the cancel token and the context. Bodies call it at the
// head of every loop that may perform further operations.
func (r *Run) Checkpoint() error {
	if r.token.Requested() {
		return errCancelled
	}
	return r.ctx.Err()
}

// Compare highlights i and j, counts one comparison and returns
// -1, 0 or +1 as values[i] is less than, equal to or greater than values[j].
func (r *Run) Compare(i, j int) (int, error) {
	var c int
	err := r.step(func() error {
		if err := r.state.Highlight(domain.StatusComparing, i, j); err != nil {
			return err
		}
		c = cmp(r.state.Value(i), r.state.Value(j))
		return r.state.Count(1, 0)
	})
	return c, err
}

// CompareTarget highlights i, counts one comparison and compares values[i]
// against the search target.
func (r *Run) CompareTarget(i int) (int, error) {
	var c int
	err := r.step(func() error {
		if err := r.state.Highlight(domain.StatusComparing, i); err != nil {
			return err
		}
		c = cmp(r.state.Value(i), r.target)
		return r.state.Count(1, 0)
	})
	return c, err
}

// Swap highlights and exchanges values[i] and values[j].
func (r *Run) Swap(i, j int) error {
	return r.step(func() error {
		if err := r.state.Highlight(domain.StatusSwapping, i, j); err != nil {
			return err
		}
		return r.state.Swap(i, j)
	})
}

// Set highlights i and writes v there, counting one move.
func (r *Run) Set(i, v int) error {
	return r.step(func() error {
		if err := r.state.Highlight(domain.StatusSwapping, i); err != nil {
			return err
		}
		return r.state.Set(i, v)
	})
}

// Mark applies a persistent status without pacing.
func (r *Run) Mark(status domain.ElementStatus, idx ...int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Checkpoint(); err != nil {
		return err
	}
	return r.state.Mark(status, idx...)
}

// Found marks i as the search result and pauses so the hit is visible.
func (r *Run) Found(i int) error {
	err := r.step(func() error {
		return r.state.Highlight(domain.StatusFound, i)
	})
	if err == nil {
		r.mu.Lock()
		r.found = i
		r.mu.Unlock()
	}
	return err
}

// CountComparisons adds comparisons performed outside Compare, such as bulk
// ranking, and publishes the totals without pacing.
func (r *Run) CountComparisons(n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Checkpoint(); err != nil {
		return err
	}
	return r.state.Count(n, 0)
}

// Wait suspends for d, returning early with a cancellation error if the token
// or ctx fires. Concurrent bodies use it for per-element waits.
func (r *Run) Wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.token.Done():
		case <-ctx.Done():
		}
	}
	if err := r.Checkpoint(); err != nil {
		return err
	}
	return ctx.Err()
}

// step commits one observable operation and then suspends for the pacing delay.
func (r *Run) step(commit func() error) error {
	r.mu.Lock()
	if err := r.Checkpoint(); err != nil {
		r.mu.Unlock()
		return err
	}
	err := commit()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.Wait(r.ctx, r.pace())
}

// finish commits the terminal overlay and final stats of a completed body.
func (r *Run) finish(kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Checkpoint(); err != nil {
		return err
	}
	if kind == KindSort {
		if err := r.state.MarkAll(domain.StatusSorted); err != nil {
			return err
		}
	}
	return r.state.Count(0, 0)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
