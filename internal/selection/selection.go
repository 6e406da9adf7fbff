// Package selection computes "select enclosing" style token ranges.
//
// With a parse tree, escalation follows the tree and skips pass-through
// nodes whose range equals their parent's, so every step visibly changes
// the selection. Without one (empty or invalid input) escalating up selects
// every token.
package selection

import "github.com/dshills/hybrid/internal/parsenode"

// Range is a half-open token index range.
type Range = parsenode.Range

// Source is what the engine reads. *hybrid.Editor implements it.
type Source interface {
	TokenCount() int
	Tree() *parsenode.Tree
}

// Engine computes selection ranges over a Source.
type Engine struct {
	src Source
}

// New creates an engine over src.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// All returns the range covering every token.
func (e *Engine) All() Range {
	return Range{Lo: 0, Hi: e.src.TokenCount()}
}

// Up escalates r to the range of the nearest enclosing node with a
// different range. Without a tree, or when r is already the outermost
// node, it selects everything.
func (e *Engine) Up(r Range) Range {
	all := e.All()
	tree := e.src.Tree()
	if tree.Len() == 0 {
		return all
	}

	id, ok := tree.NodeForRange(r)
	if !ok {
		// r is not a node: the smallest node around it is the next step.
		if id, ok = tree.SmallestContaining(r); ok {
			return tree.Range(id)
		}
		return all
	}

	p := tree.ParentWithDifferentRange(id)
	if p == parsenode.NoNode {
		return all
	}
	return tree.Range(p)
}

// Down narrows r to the nearest descendant, towards token index focus,
// whose range differs. It reports false when there is no such node; the
// caller usually clears the selection then.
func (e *Engine) Down(r Range, focus int) (Range, bool) {
	tree := e.src.Tree()
	if tree.Len() == 0 {
		return Range{}, false
	}
	id, ok := tree.NodeForRange(r)
	if !ok {
		return Range{}, false
	}
	c := tree.ChildWithDifferentRange(id, focus)
	if c == parsenode.NoNode {
		return Range{}, false
	}
	return tree.Range(c), true
}

// Value returns the value of the deepest node covering exactly r.
func (e *Engine) Value(r Range) (any, bool) {
	tree := e.src.Tree()
	if tree.Len() == 0 {
		return nil, false
	}
	id, ok := tree.NodeForRange(r)
	if !ok {
		return nil, false
	}
	return tree.Value(id), true
}

// Outermost returns the value of the outermost node with exactly range r,
// so pass-through wrappers are reported instead of what they wrap.
func (e *Engine) Outermost(r Range) (any, bool) {
	tree := e.src.Tree()
	if tree.Len() == 0 {
		return nil, false
	}
	id, ok := tree.NodeForRange(r)
	if !ok {
		return nil, false
	}
	for p := tree.Parent(id); p != parsenode.NoNode && tree.Range(p) == r; p = tree.Parent(p) {
		id = p
	}
	return tree.Value(id), true
}
