package domain

// StepKind tags what happened at a Step.
type StepKind string

const (
	KindTraverse StepKind = "traverse" // Moving along an edge of a structure
	KindCompare  StepKind = "compare"  // Comparing the argument with a node or element
	KindInsert   StepKind = "insert"   // Creating a node
	KindFound    StepKind = "found"    // The target was located
	KindNotFound StepKind = "not_found"
	KindVisit    StepKind = "visit" // Emitting a node during a traversal
	KindDelete   StepKind = "delete"
	KindTry      StepKind = "try" // Candidate considered before constraint evaluation
	KindPlace    StepKind = "place"
	KindRemove   StepKind = "remove" // Placement undone while backtracking
	KindConflict StepKind = "conflict"
	KindSolution StepKind = "solution"
)

// Operation identifies the logical operation that produced a Step.
type Operation string

const (
	OpInsert    Operation = "insert"
	OpSearch    Operation = "search"
	OpDelete    Operation = "delete"
	OpInorder   Operation = "inorder"
	OpPreorder  Operation = "preorder"
	OpPostorder Operation = "postorder"
	OpSolve     Operation = "solve"
)

// ParseOperation maps a name onto the closed set of structural operations.
func ParseOperation(name string) (Operation, bool) {
	switch op := Operation(name); op {
	case OpInsert, OpSearch, OpDelete, OpInorder, OpPreorder, OpPostorder:
		return op, true
	}
	return "", false
}

// Ref points at the domain element a Step talks about.
// Row and Col address boards; Value carries the key or element involved.
type Ref struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// Snapshot is composite state captured when a Step is built.
type Snapshot struct {
	Grid [][]int `json:"grid"`
	Path []int   `json:"path"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Grid: CopyGrid(s.Grid),
		Path: CopyPath(s.Path),
	}
}

// Step is one immutable moment of algorithm execution.
// Producers must hand in copies of any structure they reference; Sequence
// copies again on every read so callers can never alias stored Steps.
type Step struct {
	Kind        StepKind  `json:"kind"`
	Operation   Operation `json:"operation"`
	Ref         *Ref      `json:"ref,omitempty"`
	Arg         int       `json:"arg"`
	Snapshot    *Snapshot `json:"snapshot,omitempty"`
	Description string    `json:"description"`
	Line        int       `json:"line"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	if s.Ref != nil {
		ref := *s.Ref
		s.Ref = &ref
	}
	s.Snapshot = s.Snapshot.Clone()
	return s
}

// CopyPath copies a flat path, keeping nil as nil.
func CopyPath(p []int) []int {
	if p == nil {
		return nil
	}
	out := make([]int, len(p))
	copy(out, p)
	return out
}

// CopyGrid deep-copies a two dimensional board.
func CopyGrid(g [][]int) [][]int {
	if g == nil {
		return nil
	}
	out := make([][]int, len(g))
	for i, row := range g {
		out[i] = CopyPath(row)
	}
	return out
}
