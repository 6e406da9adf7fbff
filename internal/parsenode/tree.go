package parsenode

import (
	"errors"
	"fmt"
)

// ErrInvalidTree indicates a tree violates the range invariants.
var ErrInvalidTree = errors.New("invalid parse tree")

// NodeID identifies a node within a Tree.
type NodeID int32

// NoNode is the NodeID returned when a lookup finds nothing.
const NoNode NodeID = -1

// Range is a half-open token index range [Lo, Hi).
type Range struct {
	Lo int
	Hi int
}

// Len returns the number of tokens covered.
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// IsEmpty reports whether the range covers no tokens.
func (r Range) IsEmpty() bool {
	return r.Hi <= r.Lo
}

// Contains reports whether other lies within r.
func (r Range) Contains(other Range) bool {
	return r.Lo <= other.Lo && other.Hi <= r.Hi
}

// ContainsIndex reports whether token index i lies within r.
func (r Range) ContainsIndex(i int) bool {
	return r.Lo <= i && i < r.Hi
}

// String returns the range in interval notation.
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Lo, r.Hi)
}

type node struct {
	value    any
	rng      Range
	parent   NodeID
	children []NodeID
	token    bool
}

// Tree is an immutable arena of parse nodes. The zero Tree is empty.
type Tree struct {
	nodes []node
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t.Len() == 0 {
		return NoNode
	}
	return 0
}

// Value returns the sub-value (or token) a node stands for.
func (t *Tree) Value(id NodeID) any {
	return t.nodes[id].value
}

// Range returns the token range of a node.
func (t *Tree) Range(id NodeID) Range {
	return t.nodes[id].rng
}

// Parent returns the parent of a node, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the children of a node in token order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// IsToken reports whether the node is a token leaf.
func (t *Tree) IsToken(id NodeID) bool {
	return t.nodes[id].token
}

// NodeForRange returns the deepest node whose range equals r.
func (t *Tree) NodeForRange(r Range) (NodeID, bool) {
	id := t.Root()
	if id == NoNode || !t.nodes[id].rng.Contains(r) {
		return NoNode, false
	}

	found := NoNode
	for id != NoNode {
		if t.nodes[id].rng == r {
			found = id
		}
		id = t.childContaining(id, r)
	}
	return found, found != NoNode
}

// SmallestContaining returns the deepest node whose range contains r.
func (t *Tree) SmallestContaining(r Range) (NodeID, bool) {
	id := t.Root()
	if id == NoNode || !t.nodes[id].rng.Contains(r) {
		return NoNode, false
	}
	for {
		next := t.childContaining(id, r)
		if next == NoNode {
			return id, true
		}
		id = next
	}
}

// NodeAt returns the deepest node covering token index i.
func (t *Tree) NodeAt(i int) (NodeID, bool) {
	return t.SmallestContaining(Range{Lo: i, Hi: i + 1})
}

// ParentWithDifferentRange returns the nearest strict ancestor of id whose
// range differs from the range of id.
func (t *Tree) ParentWithDifferentRange(id NodeID) NodeID {
	rng := t.nodes[id].rng
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		if t.nodes[p].rng != rng {
			return p
		}
	}
	return NoNode
}

// ChildWithDifferentRange descends from id towards token index i and
// returns the nearest strict descendant whose range differs from the range
// of id.
func (t *Tree) ChildWithDifferentRange(id NodeID, i int) NodeID {
	rng := t.nodes[id].rng
	cur := id
	for {
		next := t.childAt(cur, i)
		if next == NoNode {
			return NoNode
		}
		if t.nodes[next].rng != rng {
			return next
		}
		cur = next
	}
}

// Find returns the first node, in pre-order, whose value satisfies match.
func (t *Tree) Find(match func(value any) bool) NodeID {
	for i := range t.nodes {
		if match(t.nodes[i].value) {
			return NodeID(i)
		}
	}
	return NoNode
}

// FindValue returns the first node whose value is v. Values are compared
// with ==, so v must be comparable; pointer values match by identity.
func (t *Tree) FindValue(v any) NodeID {
	return t.Find(func(x any) bool { return x == v })
}

// Validate checks the range invariants: children lie inside their parent,
// siblings are ordered and do not overlap.
func (t *Tree) Validate() error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.rng.Hi < n.rng.Lo {
			return fmt.Errorf("%w: node %d has range %s", ErrInvalidTree, i, n.rng)
		}
		prevHi := n.rng.Lo
		for _, c := range n.children {
			cr := t.nodes[c].rng
			if !n.rng.Contains(cr) {
				return fmt.Errorf("%w: child %d %s outside parent %d %s", ErrInvalidTree, c, cr, i, n.rng)
			}
			if cr.Lo < prevHi {
				return fmt.Errorf("%w: child %d %s overlaps previous sibling", ErrInvalidTree, c, cr)
			}
			prevHi = cr.Hi
		}
	}
	return nil
}

// childContaining returns the child of id whose range contains r. Empty
// children never contain a non-empty r; for an empty r the first child
// positioned at it is chosen.
func (t *Tree) childContaining(id NodeID, r Range) NodeID {
	for _, c := range t.nodes[id].children {
		cr := t.nodes[c].rng
		if cr.Contains(r) && (!cr.IsEmpty() || r.IsEmpty()) {
			return c
		}
		if cr.Lo > r.Hi {
			break
		}
	}
	return NoNode
}

func (t *Tree) childAt(id NodeID, i int) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].rng.ContainsIndex(i) {
			return c
		}
	}
	return NoNode
}
