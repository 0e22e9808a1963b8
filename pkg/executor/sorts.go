package executor

import "github.com/aretw0/stepviz/pkg/domain"

func bubbleSort(r *Run) error {
	n := r.Len()
	for i := 0; i < n-1; i++ {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		swapped := false
		for j := 0; j < n-i-1; j++ {
			if err := r.Checkpoint(); err != nil {
				return err
			}
			c, err := r.Compare(j, j+1)
			if err != nil {
				return err
			}
			if c > 0 {
				if err := r.Swap(j, j+1); err != nil {
					return err
				}
				swapped = true
			}
		}
		if err := r.Mark(domain.StatusSorted, n-i-1); err != nil {
			return err
		}
		if !swapped {
			break
		}
	}
	return nil
}

func selectionSort(r *Run) error {
	n := r.Len()
	for i := 0; i < n-1; i++ {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		lowest := i
		for j := i + 1; j < n; j++ {
			if err := r.Checkpoint(); err != nil {
				return err
			}
			c, err := r.Compare(j, lowest)
			if err != nil {
				return err
			}
			if c < 0 {
				lowest = j
			}
		}
		if lowest != i {
			if err := r.Swap(i, lowest); err != nil {
				return err
			}
		}
		if err := r.Mark(domain.StatusSorted, i); err != nil {
			return err
		}
	}
	return nil
}

func insertionSort(r *Run) error {
	n := r.Len()
	for i := 1; i < n; i++ {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		for j := i; j > 0; j-- {
			if err := r.Checkpoint(); err != nil {
				return err
			}
			c, err := r.Compare(j-1, j)
			if err != nil {
				return err
			}
			if c <= 0 {
				break
			}
			if err := r.Swap(j-1, j); err != nil {
				return err
			}
		}
	}
	return nil
}

// quickSort uses Lomuto partitioning with the last element as pivot.
func quickSort(r *Run) error {
	return quickRange(r, 0, r.Len()-1)
}

func quickRange(r *Run, lo, hi int) error {
	for lo < hi {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		p, err := partition(r, lo, hi)
		if err != nil {
			return err
		}
		if err := r.Mark(domain.StatusSorted, p); err != nil {
			return err
		}
		// Recurse into the smaller side to bound stack depth.
		if p-lo < hi-p {
			if err := quickRange(r, lo, p-1); err != nil {
				return err
			}
			lo = p + 1
		} else {
			if err := quickRange(r, p+1, hi); err != nil {
				return err
			}
			hi = p - 1
		}
	}
	return nil
}

func partition(r *Run, lo, hi int) (int, error) {
	if err := r.Mark(domain.StatusPivot, hi); err != nil {
		return 0, err
	}
	store := lo
	for j := lo; j < hi; j++ {
		if err := r.Checkpoint(); err != nil {
			return 0, err
		}
		c, err := r.Compare(j, hi)
		if err != nil {
			return 0, err
		}
		if c < 0 {
			if store != j {
				if err := r.Swap(store, j); err != nil {
					return 0, err
				}
			}
			store++
		}
	}
	if store != hi {
		if err := r.Swap(store, hi); err != nil {
			return 0, err
		}
	}
	return store, nil
}

// mergeSort is top-down; merged runs are written back with Set, so each write
// counts as a move.
func mergeSort(r *Run) error {
	return mergeRange(r, 0, r.Len())
}

func mergeRange(r *Run, lo, hi int) error {
	if hi-lo < 2 {
		return nil
	}
	if err := r.Checkpoint(); err != nil {
		return err
	}
	mid := lo + (hi-lo)/2
	if err := mergeRange(r, lo, mid); err != nil {
		return err
	}
	if err := mergeRange(r, mid, hi); err != nil {
		return err
	}

	values := r.Values()
	merged := make([]int, 0, hi-lo)
	i, j := lo, mid
	for i < mid && j < hi {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		c, err := r.Compare(i, j)
		if err != nil {
			return err
		}
		if c <= 0 {
			merged = append(merged, values[i])
			i++
		} else {
			merged = append(merged, values[j])
			j++
		}
	}
	merged = append(merged, values[i:mid]...)
	merged = append(merged, values[j:hi]...)

	for k, v := range merged {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		if r.Value(lo+k) == v {
			continue
		}
		if err := r.Set(lo+k, v); err != nil {
			return err
		}
	}
	return nil
}

func heapSort(r *Run) error {
	n := r.Len()
	for i := n/2 - 1; i >= 0; i-- {
		if err := siftDown(r, i, n); err != nil {
			return err
		}
	}
	for end := n - 1; end > 0; end-- {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		if err := r.Swap(0, end); err != nil {
			return err
		}
		if err := r.Mark(domain.StatusSorted, end); err != nil {
			return err
		}
		if err := siftDown(r, 0, end); err != nil {
			return err
		}
	}
	return nil
}

func siftDown(r *Run, root, end int) error {
	for {
		if err := r.Checkpoint(); err != nil {
			return err
		}
		child := 2*root + 1
		if child >= end {
			return nil
		}
		if child+1 < end {
			c, err := r.Compare(child, child+1)
			if err != nil {
				return err
			}
			if c < 0 {
				child++
			}
		}
		c, err := r.Compare(root, child)
		if err != nil {
			return err
		}
		if c >= 0 {
			return nil
		}
		if err := r.Swap(root, child); err != nil {
			return err
		}
		root = child
	}
}
