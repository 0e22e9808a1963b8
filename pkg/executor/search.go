package executor

import "github.com/aretw0/stepviz/pkg/domain"

func linearSearch(r *Run) error {
	for i := 0; i < r.Len(); i++ {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		c, err := r.CompareTarget(i)
		if err != nil {
			return err
		}
		if c == 0 {
			return r.Found(i)
		}
		if err := r.Mark(domain.StatusDiscarded, i); err != nil {
			return err
		}
	}
	return nil
}

func binarySearch(r *Run) error {
	lo, hi := 0, r.Len()-1
	if hi >= 0 {
		if err := r.Mark(domain.StatusActive, span(lo, hi)...); err != nil {
			return err
		}
	}
	for lo <= hi {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		mid := lo + (hi-lo)/2
		c, err := r.CompareTarget(mid)
		if err != nil {
			return err
		}
		switch {
		case c == 0:
			return r.Found(mid)
		case c < 0:
			if err := r.Mark(domain.StatusDiscarded, span(lo, mid)...); err != nil {
				return err
			}
			lo = mid + 1
		default:
			if err := r.Mark(domain.StatusDiscarded, span(mid, hi)...); err != nil {
				return err
			}
			hi = mid - 1
		}
	}
	return nil
}

func span(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
