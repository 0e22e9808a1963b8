package backtrack

import (
	"fmt"

	"github.com/aretw0/stepviz/pkg/domain"
)

// MaxPermutationValues bounds the permutation input (8! leaves).
const MaxPermutationValues = 8

// PermutationsPseudocode is the listing that Step.Line points into.
var PermutationsPseudocode = []string{
	"permute(path):",
	"  if len(path) == n: record permutation",
	"  for i in 0..n-1:",
	"    try values[i]",
	"    if used[i]: conflict",
	"    mark used, append values[i]",
	"    permute(path)",
	"    unmark, pop",
}

// Permutations enumerates the orderings of values by position, so repeated
// values yield repeated permutations.
func Permutations(values []int) (*domain.Sequence, error) {
	if len(values) == 0 || len(values) > MaxPermutationValues {
		return nil, fmt.Errorf("%w: permutations need between 1 and %d values, got %d",
			domain.ErrInvalidParams, MaxPermutationValues, len(values))
	}
	p := &permuter{
		values: domain.CopyPath(values),
		used:   make([]bool, len(values)),
		path:   make([]int, 0, len(values)),
	}
	p.permute()
	return domain.NewSequence(p.steps)
}

type permuter struct {
	values []int
	used   []bool
	path   []int
	steps  []domain.Step
}

func (p *permuter) permute() {
	depth := len(p.path)
	if depth == len(p.values) {
		p.emit(domain.KindSolution, depth-1, -1, 2, fmt.Sprintf("Permutation complete: %v.", p.path))
		return
	}
	for i, v := range p.values {
		p.emit(domain.KindTry, depth, i, 4, fmt.Sprintf("Trying %d at position %d.", v, depth))
		if p.used[i] {
			p.emit(domain.KindConflict, depth, i, 5, fmt.Sprintf("%d at index %d is already used.", v, i))
			continue
		}
		p.used[i] = true
		p.path = append(p.path, v)
		p.emit(domain.KindPlace, depth, i, 6, fmt.Sprintf("Placing %d at position %d.", v, depth))

		p.permute()

		p.path = p.path[:len(p.path)-1]
		p.used[i] = false
		p.emit(domain.KindRemove, depth, i, 8, fmt.Sprintf("Removing %d from position %d.", v, depth))
	}
}

func (p *permuter) emit(kind domain.StepKind, row, col, line int, desc string) {
	ref := &domain.Ref{Row: row, Col: col}
	if col >= 0 {
		ref.Value = p.values[col]
	}
	p.steps = append(p.steps, domain.Step{
		Kind:        kind,
		Operation:   domain.OpSolve,
		Ref:         ref,
		Arg:         len(p.values),
		Snapshot:    &domain.Snapshot{Path: domain.CopyPath(p.path)},
		Description: desc,
		Line:        line,
	})
}
