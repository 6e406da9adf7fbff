package selection

import (
	"testing"

	"github.com/dshills/hybrid/internal/parsenode"
)

type fakeSource struct {
	count int
	tree  *parsenode.Tree
}

func (f fakeSource) TokenCount() int       { return f.count }
func (f fakeSource) Tree() *parsenode.Tree { return f.tree }

// nested builds Top[0,4) -> Mid[1,3) -> Leaf[1,2).
func nested() *parsenode.Tree {
	b := parsenode.NewBuilder()
	b.Begin("top")
	b.Token("t0")
	b.Begin("mid")
	b.Begin("leaf")
	b.Token("t1")
	b.End()
	b.Token("t2")
	b.End()
	b.Token("t3")
	b.End()
	return b.Build()
}

func TestEngine_UpDown(t *testing.T) {
	e := New(fakeSource{count: 4, tree: nested()})

	r := Range{Lo: 1, Hi: 2}
	r = e.Up(r)
	if r != (Range{Lo: 1, Hi: 3}) {
		t.Fatalf("first Up = %s, want [1,3)", r)
	}
	r = e.Up(r)
	if r != (Range{Lo: 0, Hi: 4}) {
		t.Fatalf("second Up = %s, want [0,4)", r)
	}
	if got := e.Up(r); got != r {
		t.Errorf("Up at root = %s, want %s", got, r)
	}

	down, ok := e.Down(Range{Lo: 0, Hi: 4}, 1)
	if !ok || down != (Range{Lo: 1, Hi: 3}) {
		t.Errorf("Down = %s, %v, want [1,3)", down, ok)
	}
}

func TestEngine_DownToToken(t *testing.T) {
	e := New(fakeSource{count: 4, tree: nested()})

	// Mid -> Leaf (pass-through of t1) -> nothing below t1.
	r, ok := e.Down(Range{Lo: 1, Hi: 3}, 1)
	if !ok || r != (Range{Lo: 1, Hi: 2}) {
		t.Fatalf("Down = %s, %v", r, ok)
	}
	if _, ok := e.Down(r, 1); ok {
		t.Error("Down below a token should fail")
	}
	if _, ok := e.Down(Range{Lo: 0, Hi: 2}, 0); ok {
		t.Error("Down from a range that is not a node should fail")
	}
}

func TestEngine_UpFromNonNode(t *testing.T) {
	e := New(fakeSource{count: 4, tree: nested()})

	// A span across siblings escalates to their common parent.
	if got := e.Up(Range{Lo: 0, Hi: 2}); got != (Range{Lo: 0, Hi: 4}) {
		t.Errorf("Up([0,2)) = %s, want [0,4)", got)
	}
}

func TestEngine_NoTree(t *testing.T) {
	tests := []struct {
		name string
		src  fakeSource
		want Range
	}{
		{"invalid", fakeSource{count: 3}, Range{Lo: 0, Hi: 3}},
		{"empty", fakeSource{}, Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.src)
			if got := e.Up(Range{Lo: 1, Hi: 2}); got != tt.want {
				t.Errorf("Up = %s, want %s", got, tt.want)
			}
			if _, ok := e.Down(tt.want, 0); ok {
				t.Error("Down without a tree should fail")
			}
			if _, ok := e.Value(tt.want); ok {
				t.Error("Value without a tree should fail")
			}
		})
	}
}

func TestEngine_Value(t *testing.T) {
	e := New(fakeSource{count: 4, tree: nested()})

	if v, ok := e.Value(Range{Lo: 1, Hi: 3}); !ok || v != "mid" {
		t.Errorf("Value([1,3)) = %v, %v", v, ok)
	}
	if v, ok := e.Value(Range{Lo: 1, Hi: 2}); !ok || v != "t1" {
		t.Errorf("Value([1,2)) = %v, %v", v, ok)
	}
	if v, ok := e.Outermost(Range{Lo: 1, Hi: 2}); !ok || v != "leaf" {
		t.Errorf("Outermost([1,2)) = %v, %v", v, ok)
	}
}
