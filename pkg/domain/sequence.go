package domain

import (
	"encoding/json"
	"fmt"
)

// Sequence is an ordered, finite and randomly indexable list of Steps.
// It is built once per request and never changes afterwards.
type Sequence struct {
	steps []Step
}

// NewSequence copies steps into a new Sequence.
// An empty list is an invariant violation: well-formed requests always yield a Step.
func NewSequence(steps []Step) (*Sequence, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: empty step sequence", ErrUninitialized)
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return &Sequence{steps: out}, nil
}

// Len returns the number of steps.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// At returns a copy of the step at index i. It panics when i is out of range,
// like a slice index would.
func (s *Sequence) At(i int) Step {
	return s.steps[i].Clone()
}

// Steps returns a copy of every step.
func (s *Sequence) Steps() []Step {
	out := make([]Step, len(s.steps))
	for i, st := range s.steps {
		out[i] = st.Clone()
	}
	return out
}

// Count returns how many steps have the given kind.
func (s *Sequence) Count(kind StepKind) int {
	n := 0
	for _, st := range s.steps {
		if st.Kind == kind {
			n++
		}
	}
	return n
}

// Cursor returns a forward iterator positioned before the first step.
func (s *Sequence) Cursor() *Cursor {
	return &Cursor{seq: s, next: 0}
}

// MarshalJSON encodes the sequence as a JSON array of steps.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.steps)
}

// UnmarshalJSON decodes a JSON array of steps, rejecting empty arrays.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("%w: empty step sequence", ErrUninitialized)
	}
	s.steps = steps
	return nil
}

// Cursor walks a Sequence one Step at a time.
type Cursor struct {
	seq  *Sequence
	next int
}

// HasNext reports whether Next would return a step.
func (c *Cursor) HasNext() bool {
	return c.next < c.seq.Len()
}

// Next returns the next step and advances the cursor.
func (c *Cursor) Next() (Step, bool) {
	if !c.HasNext() {
		return Step{}, false
	}
	st := c.seq.At(c.next)
	c.next++
	return st, true
}

// Rewind moves the cursor back before the first step.
func (c *Cursor) Rewind() {
	c.next = 0
}
