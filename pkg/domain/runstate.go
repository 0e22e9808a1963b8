package domain

import (
	"fmt"
	"sync"
	"time"
)

// ElementStatus is the per-element color annotation of a live run.
type ElementStatus string

const (
	StatusIdle      ElementStatus = "idle"
	StatusComparing ElementStatus = "comparing" // Transient: cleared by the next highlight
	StatusSwapping  ElementStatus = "swapping"  // Transient: cleared by the next highlight
	StatusPivot     ElementStatus = "pivot"
	StatusActive    ElementStatus = "active" // Inside the current search window
	StatusDiscarded ElementStatus = "discarded"
	StatusFound     ElementStatus = "found"
	StatusSorted    ElementStatus = "sorted"
)

func (s ElementStatus) transient() bool {
	return s == StatusComparing || s == StatusSwapping
}

// Stats accumulates algorithmic operation counts.
// Elapsed is wall-clock time measured by whoever started the run.
type Stats struct {
	Comparisons int           `json:"comparisons"`
	Swaps       int           `json:"swaps"`
	Elapsed     time.Duration `json:"elapsed"`
	Size        int           `json:"size"`
}

// Observer is notified after each committed mutation of a RunState.
// Slices handed to observers are copies.
type Observer interface {
	OnArrayUpdate(values []int)
	OnStatusUpdate(overlay []ElementStatus)
	OnStatsUpdate(stats Stats)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Array  func([]int)
	Status func([]ElementStatus)
	Stats  func(Stats)
}

func (o ObserverFuncs) OnArrayUpdate(values []int) {
	if o.Array != nil {
		o.Array(values)
	}
}

func (o ObserverFuncs) OnStatusUpdate(overlay []ElementStatus) {
	if o.Status != nil {
		o.Status(overlay)
	}
}

func (o ObserverFuncs) OnStatsUpdate(stats Stats) {
	if o.Stats != nil {
		o.Stats(stats)
	}
}

// RunSnapshot is a read-only copy of a RunState.
type RunSnapshot struct {
	Values  []int           `json:"values"`
	Overlay []ElementStatus `json:"overlay"`
	Stats   Stats           `json:"stats"`
	Frozen  bool            `json:"frozen"`
}

// RunState is the substrate shared between a live executor and renderers.
// Only the executor that owns the run calls the mutating methods; every other
// party reads through Snapshot or the accessors. Once frozen, all writes fail.
type RunState struct {
	mu        sync.RWMutex
	values    []int
	overlay   []ElementStatus
	stats     Stats
	frozen    bool
	observers []Observer
}

// NewRunState copies values into a fresh state with an idle overlay.
func NewRunState(values []int) *RunState {
	s := &RunState{
		values:  CopyPath(values),
		overlay: make([]ElementStatus, len(values)),
	}
	if s.values == nil {
		s.values = []int{}
	}
	for i := range s.overlay {
		s.overlay[i] = StatusIdle
	}
	s.stats.Size = len(values)
	return s
}

// Subscribe registers an observer. It must be called before the run starts.
func (s *RunState) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Len returns the number of elements.
func (s *RunState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Value returns the element at i.
func (s *RunState) Value(i int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[i]
}

// Values returns a copy of the working array.
func (s *RunState) Values() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CopyPath(s.values)
}

// Overlay returns a copy of the status overlay.
func (s *RunState) Overlay() []ElementStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyOverlay()
}

// Stats returns the current counters.
func (s *RunState) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Snapshot returns a consistent copy of values, overlay and stats.
func (s *RunState) Snapshot() RunSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RunSnapshot{
		Values:  CopyPath(s.values),
		Overlay: s.copyOverlay(),
		Stats:   s.stats,
		Frozen:  s.frozen,
	}
}

// Frozen reports whether the run that owned the state has terminated.
func (s *RunState) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Freeze makes the state read-only.
func (s *RunState) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Swap exchanges two elements and counts one swap.
func (s *RunState) Swap(i, j int) error {
	s.mu.Lock()
	if err := s.writableLocked(i, j); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values[i], s.values[j] = s.values[j], s.values[i]
	s.stats.Swaps++
	values, stats, obs := CopyPath(s.values), s.stats, s.observers
	s.mu.Unlock()

	for _, o := range obs {
		o.OnArrayUpdate(values)
		o.OnStatsUpdate(stats)
	}
	return nil
}

// Set writes v at index i and counts it as one move.
func (s *RunState) Set(i, v int) error {
	s.mu.Lock()
	if err := s.writableLocked(i); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values[i] = v
	s.stats.Swaps++
	values, stats, obs := CopyPath(s.values), s.stats, s.observers
	s.mu.Unlock()

	for _, o := range obs {
		o.OnArrayUpdate(values)
		o.OnStatsUpdate(stats)
	}
	return nil
}

// Highlight clears every transient mark and applies status to the given indices.
func (s *RunState) Highlight(status ElementStatus, idx ...int) error {
	return s.mark(true, status, idx...)
}

// Mark applies status to the given indices, leaving other marks untouched.
func (s *RunState) Mark(status ElementStatus, idx ...int) error {
	return s.mark(false, status, idx...)
}

// MarkAll applies status to every element.
func (s *RunState) MarkAll(status ElementStatus) error {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return ErrFrozen
	}
	for i := range s.overlay {
		s.overlay[i] = status
	}
	overlay, obs := s.copyOverlay(), s.observers
	s.mu.Unlock()

	for _, o := range obs {
		o.OnStatusUpdate(overlay)
	}
	return nil
}

// Count adds to the comparison and swap counters and publishes the new totals.
// Count(0, 0) republishes the current totals.
func (s *RunState) Count(comparisons, swaps int) error {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return ErrFrozen
	}
	s.stats.Comparisons += comparisons
	s.stats.Swaps += swaps
	stats, obs := s.stats, s.observers
	s.mu.Unlock()

	for _, o := range obs {
		o.OnStatsUpdate(stats)
	}
	return nil
}

func (s *RunState) mark(clearTransient bool, status ElementStatus, idx ...int) error {
	s.mu.Lock()
	if err := s.writableLocked(idx...); err != nil {
		s.mu.Unlock()
		return err
	}
	if clearTransient {
		for i, st := range s.overlay {
			if st.transient() {
				s.overlay[i] = StatusIdle
			}
		}
	}
	for _, i := range idx {
		s.overlay[i] = status
	}
	overlay, obs := s.copyOverlay(), s.observers
	s.mu.Unlock()

	for _, o := range obs {
		o.OnStatusUpdate(overlay)
	}
	return nil
}

func (s *RunState) writableLocked(idx ...int) error {
	if s.frozen {
		return ErrFrozen
	}
	for _, i := range idx {
		if i < 0 || i >= len(s.values) {
			return fmt.Errorf("index %d out of range [0,%d)", i, len(s.values))
		}
	}
	return nil
}

func (s *RunState) copyOverlay() []ElementStatus {
	out := make([]ElementStatus, len(s.overlay))
	copy(out, s.overlay)
	return out
}
