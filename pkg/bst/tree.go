// Package bst implements a binary search tree whose operations can be narrated
// as step sequences.
//
// Keys smaller than a node route left; keys greater than or equal to it route
// right. The same rule drives both the mutations and the narrated steps, so
// duplicates always land in the right subtree.
package bst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Node is a tree node.
type Node struct {
	Key         int
	Left, Right *Node
}

// Tree is a binary search tree. The zero value is an empty tree.
type Tree struct {
	Root *Node
	size int
}

// New builds a tree by inserting keys in order.
func New(keys ...int) *Tree {
	t := &Tree{}
	for _, k := range keys {
		t.Insert(k)
	}
	return t
}

// ParseKey parses an operation argument into the tree's key domain.
func ParseKey(arg string) (int, error) {
	k, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer key", domain.ErrInvalidParams, arg)
	}
	return k, nil
}

// Len returns the number of keys.
func (t *Tree) Len() int {
	return t.size
}

// Insert adds key, routing ties to the right.
func (t *Tree) Insert(key int) {
	t.size++
	n := &Node{Key: key}
	if t.Root == nil {
		t.Root = n
		return
	}
	cur := t.Root
	for {
		if key < cur.Key {
			if cur.Left == nil {
				cur.Left = n
				return
			}
			cur = cur.Left
		} else {
			if cur.Right == nil {
				cur.Right = n
				return
			}
			cur = cur.Right
		}
	}
}

// Contains reports whether key is present.
func (t *Tree) Contains(key int) bool {
	for cur := t.Root; cur != nil; {
		switch {
		case key == cur.Key:
			return true
		case key < cur.Key:
			cur = cur.Left
		default:
			cur = cur.Right
		}
	}
	return false
}

// Delete removes the first node holding key found along the search path.
// A node with two children is replaced by its in-order successor.
func (t *Tree) Delete(key int) bool {
	var removed bool
	t.Root, removed = deleteNode(t.Root, key)
	if removed {
		t.size--
	}
	return removed
}

func deleteNode(n *Node, key int) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	switch {
	case key < n.Key:
		n.Left, removed = deleteNode(n.Left, key)
		return n, removed
	case key > n.Key:
		n.Right, removed = deleteNode(n.Right, key)
		return n, removed
	}
	switch {
	case n.Left == nil:
		return n.Right, true
	case n.Right == nil:
		return n.Left, true
	}
	succ := minNode(n.Right)
	n.Key = succ.Key
	// Any node holding succ.Key in the right subtree is an equivalent victim.
	n.Right, _ = deleteNode(n.Right, succ.Key)
	return n, true
}

func minNode(n *Node) *Node {
	for n.Left != nil {
		n = n.Left
	}
	return n
}

// Inorder returns keys in ascending order.
func (t *Tree) Inorder() []int {
	var out []int
	walk(t.Root, domain.OpInorder, func(n *Node) { out = append(out, n.Key) })
	return out
}

// Preorder returns keys in root-left-right order.
func (t *Tree) Preorder() []int {
	var out []int
	walk(t.Root, domain.OpPreorder, func(n *Node) { out = append(out, n.Key) })
	return out
}

// Postorder returns keys in left-right-root order.
func (t *Tree) Postorder() []int {
	var out []int
	walk(t.Root, domain.OpPostorder, func(n *Node) { out = append(out, n.Key) })
	return out
}

func walk(n *Node, order domain.Operation, visit func(*Node)) {
	if n == nil {
		return
	}
	if order == domain.OpPreorder {
		visit(n)
	}
	walk(n.Left, order, visit)
	if order == domain.OpInorder {
		visit(n)
	}
	walk(n.Right, order, visit)
	if order == domain.OpPostorder {
		visit(n)
	}
}
