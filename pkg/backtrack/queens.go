package backtrack

import (
	"fmt"

	"github.com/aretw0/stepviz/pkg/domain"
)

// MaxBoard bounds the N-Queens board so full enumeration stays small.
const MaxBoard = 10

// Pseudocode line numbers referenced by N-Queens steps.
const (
	queensLineSolution = 2
	queensLineTry      = 4
	queensLinePlace    = 6
	queensLineRemove   = 8
	queensLineConflict = 9
)

// QueensPseudocode is the listing that Step.Line points into.
var QueensPseudocode = []string{
	"solve(row):",
	"  if row == n: record solution",
	"  for col in 0..n-1:",
	"    try queen at (row, col)",
	"    if safe(row, col):",
	"      place queen",
	"      solve(row + 1)",
	"      remove queen",
	"    else: conflict",
}

// Queens enumerates every N-Queens solution on an n x n board.
// Path snapshots hold the column of the queen on each filled row.
func Queens(n int) (*domain.Sequence, error) {
	if n <= 0 || n > MaxBoard {
		return nil, fmt.Errorf("%w: board size must be between 1 and %d, got %d", domain.ErrInvalidParams, MaxBoard, n)
	}
	q := &queens{n: n, cols: make([]int, 0, n)}
	q.solve(0)
	return domain.NewSequence(q.steps)
}

type queens struct {
	n     int
	cols  []int
	steps []domain.Step
}

func (q *queens) solve(row int) {
	if row == q.n {
		q.emit(domain.KindSolution, row-1, q.cols[row-1], queensLineSolution,
			fmt.Sprintf("Solution found: %v.", q.cols), true)
		return
	}
	for col := 0; col < q.n; col++ {
		q.emit(domain.KindTry, row, col, queensLineTry,
			fmt.Sprintf("Trying queen at row %d, column %d.", row, col), false)

		if r, c, ok := q.attacker(row, col); ok {
			q.emit(domain.KindConflict, row, col, queensLineConflict,
				fmt.Sprintf("Conflict at row %d, column %d with queen at row %d, column %d.", row, col, r, c), false)
			continue
		}

		q.cols = append(q.cols, col)
		q.emit(domain.KindPlace, row, col, queensLinePlace,
			fmt.Sprintf("Placing queen at row %d, column %d.", row, col), false)

		q.solve(row + 1)

		q.cols = q.cols[:len(q.cols)-1]
		q.emit(domain.KindRemove, row, col, queensLineRemove,
			fmt.Sprintf("Removing queen from row %d, column %d.", row, col), false)
	}
}

// attacker returns the first placed queen that attacks (row, col).
func (q *queens) attacker(row, col int) (int, int, bool) {
	for r, c := range q.cols {
		if c == col || row-r == col-c || row-r == c-col {
			return r, c, true
		}
	}
	return 0, 0, false
}

func (q *queens) emit(kind domain.StepKind, row, col, line int, desc string, withGrid bool) {
	snap := &domain.Snapshot{Path: domain.CopyPath(q.cols)}
	if withGrid {
		snap.Grid = q.grid()
	}
	q.steps = append(q.steps, domain.Step{
		Kind:        kind,
		Operation:   domain.OpSolve,
		Ref:         &domain.Ref{Row: row, Col: col, Value: col},
		Arg:         q.n,
		Snapshot:    snap,
		Description: desc,
		Line:        line,
	})
}

func (q *queens) grid() [][]int {
	g := make([][]int, q.n)
	for r := range g {
		g[r] = make([]int, q.n)
		if r < len(q.cols) {
			g[r][q.cols[r]] = 1
		}
	}
	return g
}

// ValidBoard reports whether grid is a complete n x n placement with one queen
// per row and no two queens attacking each other.
func ValidBoard(grid [][]int) bool {
	n := len(grid)
	cols := make([]int, 0, n)
	for _, row := range grid {
		if len(row) != n {
			return false
		}
		found := -1
		for c, v := range row {
			if v == 1 {
				if found >= 0 {
					return false
				}
				found = c
			}
		}
		if found < 0 {
			return false
		}
		cols = append(cols, found)
	}
	for r1 := range cols {
		for r2 := r1 + 1; r2 < n; r2++ {
			d := cols[r2] - cols[r1]
			if d == 0 || d == r2-r1 || -d == r2-r1 {
				return false
			}
		}
	}
	return true
}
