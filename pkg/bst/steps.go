package bst

import (
	"fmt"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Pseudocode line numbers referenced by tree steps.
const (
	lineCompare  = 2
	lineTraverse = 3
	lineInsert   = 4
	lineFound    = 5
	lineNotFound = 6
	lineDelete   = 7
	lineVisit    = 8
)

// Pseudocode is the listing that Step.Line points into.
var Pseudocode = []string{
	"while node != nil:",
	"  compare key with node.key",
	"  key < node.key ? go left : go right",
	"  attach new node at empty child",
	"  key == node.key: found",
	"  reached nil: not found",
	"  classify node: leaf / one child / two children",
	"  visit node in traversal order",
}

// Steps narrates op on t without mutating it.
//
// insert, search and delete require arg to parse as an integer key; traversals
// ignore it. Requests against an empty tree yield exactly one terminal step.
func Steps(op domain.Operation, t *Tree, arg string) (*domain.Sequence, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: tree is nil", domain.ErrUninitialized)
	}
	if _, ok := domain.ParseOperation(string(op)); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOperation, op)
	}

	n := &narrator{op: op}
	switch op {
	case domain.OpInorder, domain.OpPreorder, domain.OpPostorder:
		n.traversal(t)
		return domain.NewSequence(n.steps)
	}

	key, err := ParseKey(arg)
	if err != nil {
		return nil, err
	}
	n.arg = key

	switch op {
	case domain.OpInsert:
		n.insert(t)
	case domain.OpSearch:
		n.search(t)
	case domain.OpDelete:
		n.delete(t)
	}
	return domain.NewSequence(n.steps)
}

type narrator struct {
	op    domain.Operation
	arg   int
	path  []int
	steps []domain.Step
}

func (n *narrator) emit(kind domain.StepKind, node *Node, line int, format string, args ...any) {
	st := domain.Step{
		Kind:        kind,
		Operation:   n.op,
		Arg:         n.arg,
		Snapshot:    &domain.Snapshot{Path: domain.CopyPath(n.path)},
		Description: fmt.Sprintf(format, args...),
		Line:        line,
	}
	if node != nil {
		st.Ref = &domain.Ref{Row: len(n.path) - 1, Value: node.Key}
	}
	n.steps = append(n.steps, st)
}

// descend walks from the root towards n.arg, narrating each comparison.
// It stops at a node holding the key when stopOnEqual is set, and otherwise
// at the last node before an empty child. It returns that node and whether
// the key matched.
func (n *narrator) descend(t *Tree, stopOnEqual bool) (*Node, bool) {
	cur := t.Root
	for {
		n.path = append(n.path, cur.Key)
		n.emit(domain.KindCompare, cur, lineCompare, "Comparing %d with %d.", n.arg, cur.Key)

		if stopOnEqual && n.arg == cur.Key {
			return cur, true
		}
		next, side := cur.Right, "right"
		relation := ">="
		if n.arg < cur.Key {
			next, side, relation = cur.Left, "left", "<"
		}
		if next == nil {
			return cur, false
		}
		n.emit(domain.KindTraverse, cur, lineTraverse, "%d %s %d, moving to the %s subtree.", n.arg, relation, cur.Key, side)
		cur = next
	}
}

func (n *narrator) insert(t *Tree) {
	if t.Root == nil {
		n.path = []int{n.arg}
		n.emit(domain.KindInsert, &Node{Key: n.arg}, lineInsert, "Creating new node %d as root element.", n.arg)
		return
	}
	parent, _ := n.descend(t, false)
	side := "right"
	if n.arg < parent.Key {
		side = "left"
	}
	n.path = append(n.path, n.arg)
	n.emit(domain.KindInsert, &Node{Key: n.arg}, lineInsert, "Inserting %d as %s child of %d.", n.arg, side, parent.Key)
}

func (n *narrator) search(t *Tree) {
	if t.Root == nil {
		n.emit(domain.KindNotFound, nil, lineNotFound, "Tree is empty; %d not found.", n.arg)
		return
	}
	node, found := n.descend(t, true)
	if found {
		n.emit(domain.KindFound, node, lineFound, "Found %d.", n.arg)
		return
	}
	n.emit(domain.KindNotFound, node, lineNotFound, "%d not found in the tree.", n.arg)
}

func (n *narrator) delete(t *Tree) {
	if t.Root == nil {
		n.emit(domain.KindNotFound, nil, lineNotFound, "Tree is empty; nothing to delete.")
		return
	}
	node, found := n.descend(t, true)
	if !found {
		n.emit(domain.KindNotFound, node, lineNotFound, "%d not found; nothing to delete.", n.arg)
		return
	}
	n.emit(domain.KindFound, node, lineFound, "Found %d.", n.arg)

	switch {
	case node.Left == nil && node.Right == nil:
		n.emit(domain.KindDelete, node, lineDelete, "%d is a leaf node; removing it.", n.arg)
	case node.Left == nil || node.Right == nil:
		child := node.Left
		if child == nil {
			child = node.Right
		}
		n.emit(domain.KindDelete, node, lineDelete, "%d has one child; replacing it with %d.", n.arg, child.Key)
	default:
		succ := minNode(node.Right)
		n.emit(domain.KindDelete, node, lineDelete,
			"%d has two children; replacing it with its in-order successor %d.", n.arg, succ.Key)
	}
}

func (n *narrator) traversal(t *Tree) {
	if t.Root == nil {
		n.emit(domain.KindNotFound, nil, lineNotFound, "Tree is empty; nothing to traverse.")
		return
	}
	walk(t.Root, n.op, func(node *Node) {
		n.path = append(n.path, node.Key)
		n.emit(domain.KindVisit, node, lineVisit, "Visiting %d.", node.Key)
	})
}

// Apply narrates op on t and then performs it, so insert and delete change the
// tree after their steps are captured. Other operations leave t untouched.
func Apply(op domain.Operation, t *Tree, arg string) (*domain.Sequence, error) {
	seq, err := Steps(op, t, arg)
	if err != nil {
		return nil, err
	}
	switch op {
	case domain.OpInsert:
		key, _ := ParseKey(arg)
		t.Insert(key)
	case domain.OpDelete:
		key, _ := ParseKey(arg)
		t.Delete(key)
	}
	return seq, nil
}
