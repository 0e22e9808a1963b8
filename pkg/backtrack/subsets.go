package backtrack

import (
	"fmt"

	"github.com/aretw0/stepviz/pkg/domain"
)

// MaxSubsetValues bounds the subset-sum input.
const MaxSubsetValues = 16

// SubsetSumPseudocode is the listing that Step.Line points into.
var SubsetSumPseudocode = []string{
	"search(i, sum):",
	"  if sum == target: record subset",
	"  for j in i..n-1:",
	"    try values[j]",
	"    if sum + values[j] > target: conflict",
	"    include values[j]",
	"    search(j + 1, sum + values[j])",
	"    exclude values[j]",
}

// SubsetSum enumerates the subsets of positive values that add up to target.
// Candidates whose inclusion would overshoot the target are pruned with a conflict step.
func SubsetSum(values []int, target int) (*domain.Sequence, error) {
	if len(values) == 0 || len(values) > MaxSubsetValues {
		return nil, fmt.Errorf("%w: subset sum needs between 1 and %d values, got %d",
			domain.ErrInvalidParams, MaxSubsetValues, len(values))
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive, got %d", domain.ErrInvalidParams, target)
	}
	for _, v := range values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: values must be positive, got %d", domain.ErrInvalidParams, v)
		}
	}
	s := &subsets{values: domain.CopyPath(values), target: target}
	s.search(0, 0)
	return domain.NewSequence(s.steps)
}

type subsets struct {
	values []int
	target int
	chosen []int
	steps  []domain.Step
}

func (s *subsets) search(start, sum int) {
	if sum == s.target {
		s.emit(domain.KindSolution, start-1, sum, 2, fmt.Sprintf("Subset %v sums to %d.", s.chosen, s.target))
		return
	}
	for j := start; j < len(s.values); j++ {
		v := s.values[j]
		s.emit(domain.KindTry, j, sum, 4, fmt.Sprintf("Trying %d with running sum %d.", v, sum))
		if sum+v > s.target {
			s.emit(domain.KindConflict, j, sum, 5, fmt.Sprintf("%d + %d exceeds target %d.", sum, v, s.target))
			continue
		}
		s.chosen = append(s.chosen, v)
		s.emit(domain.KindPlace, j, sum+v, 6, fmt.Sprintf("Including %d, running sum %d.", v, sum+v))

		s.search(j+1, sum+v)

		s.chosen = s.chosen[:len(s.chosen)-1]
		s.emit(domain.KindRemove, j, sum, 8, fmt.Sprintf("Excluding %d, running sum %d.", v, sum))
	}
}

func (s *subsets) emit(kind domain.StepKind, col, sum, line int, desc string) {
	ref := &domain.Ref{Row: len(s.chosen), Col: col, Value: sum}
	s.steps = append(s.steps, domain.Step{
		Kind:        kind,
		Operation:   domain.OpSolve,
		Ref:         ref,
		Arg:         s.target,
		Snapshot:    &domain.Snapshot{Path: domain.CopyPath(s.chosen)},
		Description: desc,
		Line:        line,
	})
}
