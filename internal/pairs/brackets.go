package pairs

import (
	"fmt"

	"github.com/dshills/hybrid/internal/token"
)

// Pair describes one bracket pair by token text.
type Pair struct {
	Left  string
	Right string
	// AutoInsert makes the right side be inserted after a completed left.
	AutoInsert bool
}

// Brackets is a Spec over plain token texts. Only KindPlain tokens take
// part, so brackets inside comments or string values are ignored.
type Brackets struct {
	pairs   []Pair
	byLeft  map[string]Pair
	byRight map[string]Pair
}

// NewBrackets builds a spec from pairs. A text may appear on only one side
// of one pair.
func NewBrackets(pairs ...Pair) (*Brackets, error) {
	b := &Brackets{
		byLeft:  make(map[string]Pair, len(pairs)),
		byRight: make(map[string]Pair, len(pairs)),
	}
	for _, p := range pairs {
		if err := b.add(p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// MustBrackets is NewBrackets that panics on error.
func MustBrackets(pairs ...Pair) *Brackets {
	b, err := NewBrackets(pairs...)
	if err != nil {
		panic(err)
	}
	return b
}

// Default returns (), [] and {} with auto-insert.
func Default() *Brackets {
	return MustBrackets(
		Pair{Left: "(", Right: ")", AutoInsert: true},
		Pair{Left: "[", Right: "]", AutoInsert: true},
		Pair{Left: "{", Right: "}", AutoInsert: true},
	)
}

func (b *Brackets) add(p Pair) error {
	if p.Left == "" || p.Right == "" {
		return fmt.Errorf("pair %q/%q: empty side", p.Left, p.Right)
	}
	if p.Left == p.Right {
		return fmt.Errorf("pair %q: sides must differ", p.Left)
	}
	for _, s := range []string{p.Left, p.Right} {
		if _, ok := b.byLeft[s]; ok {
			return fmt.Errorf("pair %q/%q: %q already used", p.Left, p.Right, s)
		}
		if _, ok := b.byRight[s]; ok {
			return fmt.Errorf("pair %q/%q: %q already used", p.Left, p.Right, s)
		}
	}
	b.pairs = append(b.pairs, p)
	b.byLeft[p.Left] = p
	b.byRight[p.Right] = p
	return nil
}

// Pairs returns the configured pairs.
func (b *Brackets) Pairs() []Pair {
	return append([]Pair(nil), b.pairs...)
}

// IsLeft reports whether tok opens a pair.
func (b *Brackets) IsLeft(tok *token.Token) bool {
	if tok.Kind() != token.KindPlain {
		return false
	}
	_, ok := b.byLeft[tok.Text()]
	return ok
}

// IsRight reports whether tok closes a pair.
func (b *Brackets) IsRight(tok *token.Token) bool {
	if tok.Kind() != token.KindPlain {
		return false
	}
	_, ok := b.byRight[tok.Text()]
	return ok
}

// IsPair reports whether left and right belong to the same pair.
func (b *Brackets) IsPair(left, right *token.Token) bool {
	p, ok := b.byLeft[left.Text()]
	return ok && p.Right == right.Text()
}

// AutoInsertFor returns the closing token for left when its pair has
// AutoInsert set. The companion is glued to its left neighbour the way
// the left token is glued to its right one.
func (b *Brackets) AutoInsertFor(left *token.Token) (*token.Token, bool) {
	if !b.IsLeft(left) {
		return nil, false
	}
	p := b.byLeft[left.Text()]
	if !p.AutoInsert {
		return nil, false
	}
	var opts []token.Option
	if left.NoSpaceToRight() {
		opts = append(opts, token.WithNoSpaceToLeft())
	}
	return token.NewPlain(p.Right, opts...), true
}
