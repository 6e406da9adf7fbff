package parsenode

import "fmt"

// Builder assembles a Tree while tokens are emitted in order.
//
//	b := parsenode.NewBuilder()
//	b.Begin(expr)     // node starts at the current token count
//	b.Token(open)     // leaf for one token
//	b.Token(close)
//	b.End()           // node ends at the current token count
//	tree := b.Build()
type Builder struct {
	nodes []node
	open  []NodeID
	count int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Begin opens a node for value starting at the current token position.
func (b *Builder) Begin(value any) NodeID {
	id := b.push(node{value: value, rng: Range{Lo: b.count, Hi: b.count}})
	b.open = append(b.open, id)
	return id
}

// End closes the most recently opened node at the current token position.
func (b *Builder) End() {
	if len(b.open) == 0 {
		panic("parsenode: End without Begin")
	}
	id := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	b.nodes[id].rng.Hi = b.count
}

// Token adds a leaf covering exactly one token and advances the position.
func (b *Builder) Token(tok any) NodeID {
	id := b.push(node{value: tok, rng: Range{Lo: b.count, Hi: b.count + 1}, token: true})
	b.count++
	return id
}

// Count returns the number of tokens emitted so far.
func (b *Builder) Count() int {
	return b.count
}

// Depth returns the number of open nodes.
func (b *Builder) Depth() int {
	return len(b.open)
}

// Build returns the finished tree. Every Begin must have been matched by
// End. When more than one top-level node was emitted they are wrapped in a
// synthetic root whose value is nil.
func (b *Builder) Build() *Tree {
	if len(b.open) != 0 {
		panic(fmt.Sprintf("parsenode: %d unclosed nodes", len(b.open)))
	}

	var roots int
	for i := range b.nodes {
		if b.nodes[i].parent == NoNode {
			roots++
		}
	}
	if roots <= 1 {
		return &Tree{nodes: b.nodes}
	}

	// Shift every id by one to make room for the synthetic root at 0.
	nodes := make([]node, len(b.nodes)+1)
	nodes[0] = node{rng: Range{Lo: 0, Hi: b.count}, parent: NoNode}
	for i, n := range b.nodes {
		c := n
		c.children = make([]NodeID, len(n.children))
		for j, ch := range n.children {
			c.children[j] = ch + 1
		}
		if n.parent == NoNode {
			c.parent = 0
			nodes[0].children = append(nodes[0].children, NodeID(i+1))
		} else {
			c.parent = n.parent + 1
		}
		nodes[i+1] = c
	}
	return &Tree{nodes: nodes}
}

func (b *Builder) push(n node) NodeID {
	id := NodeID(len(b.nodes))
	n.parent = NoNode
	if len(b.open) > 0 {
		parent := b.open[len(b.open)-1]
		n.parent = parent
		b.nodes[parent].children = append(b.nodes[parent].children, id)
	}
	b.nodes = append(b.nodes, n)
	return id
}
