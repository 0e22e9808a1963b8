package executor

import (
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// sleepSort waits in proportion to each value on its own goroutine and then
// writes the value into a slot reserved up front by its stable rank. Slots are
// distinct, so completion order cannot change the result, and the errgroup is
// the barrier that joins the waits.
func sleepSort(r *Run) error {
	values := r.Values()
	n := len(values)

	slots := make([]int, n)
	for i, v := range values {
		for j, w := range values {
			if w < v || (w == v && j < i) {
				slots[i]++
			}
		}
	}
	if err := r.CountComparisons(n * n); err != nil {
		return err
	}

	unit := r.pace()
	g, ctx := errgroup.WithContext(r.ctx)
	for i, v := range values {
		g.Go(func() error {
			if err := r.Wait(ctx, sleepFor(unit, v)); err != nil {
				return err
			}
			return r.Set(slots[i], v)
		})
	}
	return g.Wait()
}

// sleepFor returns v units, saturating instead of overflowing.
func sleepFor(unit time.Duration, v int) time.Duration {
	if v <= 0 || unit <= 0 {
		return 0
	}
	if unit > time.Duration(math.MaxInt64)/time.Duration(v) {
		return time.Duration(math.MaxInt64)
	}
	return unit * time.Duration(v)
}
