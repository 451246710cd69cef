// Package tree contains an ordered multi-way tree whose nodes live in an arena and are addressed by stable ids.
// Ids stay valid when nodes are detached and re-inserted, which allows callers to keep side indexes keyed by NodeId
// while re-ordering the tree.
package tree

import (
	"fmt"

	"github.com/pkg/errors"
)

// NodeId identifies a node within a single Tree.
type NodeId int

// NoNode is returned by navigation methods when there is no such node.
const NoNode NodeId = -1

// ErrInvalidParent is returned when trying to insert below a node that is not part of the tree.
type ErrInvalidParent struct {
	Parent  NodeId
	Message string
}

func (err *ErrInvalidParent) Error() string {
	s := fmt.Sprintf("node %d is not a valid parent", err.Parent)
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// ErrNotFound is returned when operating on a node that is not attached to the tree.
type ErrNotFound struct {
	Node NodeId
}

func (err *ErrNotFound) Error() string {
	return fmt.Sprintf("node %d is not attached to the tree", err.Node)
}

type node[T any] struct {
	data   T
	parent NodeId
	// Leftmost child.
	child NodeId
	left  NodeId
	right NodeId
}

// Tree is an ordered multi-way tree. The root always exists and has id 0.
// Tree is not threadsafe.
type Tree[T any] struct {
	nodes []node[T]
}

// New returns a tree consisting of a single root node carrying rootData.
func New[T any](rootData T) *Tree[T] {
	t := &Tree[T]{}
	t.NewNode(rootData)
	return t
}

// Root returns the id of the root node.
func (t *Tree[T]) Root() NodeId {
	return 0
}

// Len returns the number of nodes ever allocated by this tree, attached or not.
func (t *Tree[T]) Len() int {
	return len(t.nodes)
}

// NewNode allocates a detached node. It becomes part of the tree once passed to InsertNode.
func (t *Tree[T]) NewNode(data T) NodeId {
	t.nodes = append(t.nodes, node[T]{
		data:   data,
		parent: NoNode,
		child:  NoNode,
		left:   NoNode,
		right:  NoNode,
	})
	return NodeId(len(t.nodes) - 1)
}

// Insert allocates a node carrying data and inserts it as the leftmost child of parent.
func (t *Tree[T]) Insert(parent NodeId, data T) (NodeId, error) {
	if !t.isAttached(parent) {
		return NoNode, errors.WithStack(&ErrInvalidParent{Parent: parent})
	}
	id := t.NewNode(data)
	if err := t.InsertNode(parent, id); err != nil {
		return NoNode, err
	}
	return id, nil
}

// InsertNode inserts the detached node n, together with its subtree, as the new leftmost child of parent.
func (t *Tree[T]) InsertNode(parent, n NodeId) error {
	if !t.isAttached(parent) {
		return errors.WithStack(&ErrInvalidParent{Parent: parent})
	}
	if !t.valid(n) || n == t.Root() {
		return errors.WithStack(&ErrNotFound{Node: n})
	}
	if t.nodes[n].parent != NoNode {
		return errors.WithStack(&ErrInvalidParent{
			Parent:  parent,
			Message: fmt.Sprintf("node %d is already attached to node %d", n, t.nodes[n].parent),
		})
	}
	head := t.nodes[parent].child
	t.nodes[n].parent = parent
	t.nodes[n].left = NoNode
	t.nodes[n].right = head
	if head != NoNode {
		t.nodes[head].left = n
	}
	t.nodes[parent].child = n
	return nil
}

// RemoveNode detaches n and its subtree from its parent. The subtree stays intact and may be re-inserted.
func (t *Tree[T]) RemoveNode(n NodeId) error {
	if !t.valid(n) || t.nodes[n].parent == NoNode {
		return errors.WithStack(&ErrNotFound{Node: n})
	}
	nd := &t.nodes[n]
	if nd.left != NoNode {
		t.nodes[nd.left].right = nd.right
	} else {
		t.nodes[nd.parent].child = nd.right
	}
	if nd.right != NoNode {
		t.nodes[nd.right].left = nd.left
	}
	nd.parent = NoNode
	nd.left = NoNode
	nd.right = NoNode
	return nil
}

// SetChildren replaces the child list of parent with children, in the given order.
// Every element of children must either be a current child of parent or a detached node.
// Current children of parent not present in children are detached.
func (t *Tree[T]) SetChildren(parent NodeId, children []NodeId) error {
	if !t.isAttached(parent) {
		return errors.WithStack(&ErrInvalidParent{Parent: parent})
	}
	seen := make(map[NodeId]bool, len(children))
	for _, c := range children {
		if !t.valid(c) || c == t.Root() {
			return errors.WithStack(&ErrNotFound{Node: c})
		}
		if seen[c] {
			return errors.Errorf("node %d given more than once", c)
		}
		seen[c] = true
		if p := t.nodes[c].parent; p != NoNode && p != parent {
			return errors.WithStack(&ErrInvalidParent{
				Parent:  parent,
				Message: fmt.Sprintf("node %d is attached to node %d", c, p),
			})
		}
	}
	for c := t.nodes[parent].child; c != NoNode; {
		next := t.nodes[c].right
		t.nodes[c].parent = NoNode
		t.nodes[c].left = NoNode
		t.nodes[c].right = NoNode
		c = next
	}
	prev := NoNode
	for _, c := range children {
		t.nodes[c].parent = parent
		t.nodes[c].left = prev
		t.nodes[c].right = NoNode
		if prev == NoNode {
			t.nodes[parent].child = c
		} else {
			t.nodes[prev].right = c
		}
		prev = c
	}
	if prev == NoNode {
		t.nodes[parent].child = NoNode
	}
	return nil
}

// NextPreorder returns the node following n in a pre-order walk, or NoNode once the walk is complete.
// For a detached node the walk covers its subtree only.
func (t *Tree[T]) NextPreorder(n NodeId) NodeId {
	if !t.valid(n) {
		return NoNode
	}
	if c := t.nodes[n].child; c != NoNode {
		return c
	}
	for ; n != NoNode; n = t.nodes[n].parent {
		if r := t.nodes[n].right; r != NoNode {
			return r
		}
	}
	return NoNode
}

// Data returns the payload of n.
func (t *Tree[T]) Data(n NodeId) T {
	return t.nodes[n].data
}

// Parent returns the parent of n, or NoNode for the root and detached nodes.
func (t *Tree[T]) Parent(n NodeId) NodeId {
	return t.nodes[n].parent
}

// FirstChild returns the leftmost child of n, or NoNode if n is a leaf.
func (t *Tree[T]) FirstChild(n NodeId) NodeId {
	return t.nodes[n].child
}

// NextSibling returns the sibling to the right of n, or NoNode.
func (t *Tree[T]) NextSibling(n NodeId) NodeId {
	return t.nodes[n].right
}

// IsLeaf returns true if n has no children.
func (t *Tree[T]) IsLeaf(n NodeId) bool {
	return t.nodes[n].child == NoNode
}

// Children returns the children of n ordered left to right.
func (t *Tree[T]) Children(n NodeId) []NodeId {
	var rv []NodeId
	for c := t.nodes[n].child; c != NoNode; c = t.nodes[c].right {
		rv = append(rv, c)
	}
	return rv
}

// Contains returns true if n is reachable from the root.
func (t *Tree[T]) Contains(n NodeId) bool {
	if !t.valid(n) {
		return false
	}
	for ; n != NoNode; n = t.nodes[n].parent {
		if n == t.Root() {
			return true
		}
	}
	return false
}

func (t *Tree[T]) valid(n NodeId) bool {
	return n >= 0 && int(n) < len(t.nodes)
}

// A node may be used as a parent only if it is reachable from the root.
func (t *Tree[T]) isAttached(n NodeId) bool {
	return t.Contains(n)
}
