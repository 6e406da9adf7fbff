// Package pairs finds the balancing token of a bracket-like pair.
package pairs

import (
	"errors"

	"github.com/dshills/hybrid/internal/token"
)

// ErrTokenNotFound is returned when the start token is not in the list.
var ErrTokenNotFound = errors.New("token not in list")

// Spec classifies tokens as pair sides.
type Spec interface {
	IsLeft(tok *token.Token) bool
	IsRight(tok *token.Token) bool
	IsPair(left, right *token.Token) bool
}

// AutoInserter is implemented by specs that supply a closing companion for
// an opening token.
type AutoInserter interface {
	AutoInsertFor(left *token.Token) (*token.Token, bool)
}

// Match returns the index of the token balancing tokens[start], or -1 if
// it has none. Left tokens scan forward, right tokens backward.
func Match(spec Spec, tokens []*token.Token, start int) int {
	if start < 0 || start >= len(tokens) {
		return -1
	}
	tok := tokens[start]
	switch {
	case spec.IsLeft(tok):
		return scan(spec, tokens, start, 1)
	case spec.IsRight(tok):
		return scan(spec, tokens, start, -1)
	default:
		return -1
	}
}

// MatchToken locates tok by identity and returns the index of its match.
// A token that is not in the list is an error; a token with no match
// returns -1.
func MatchToken(spec Spec, tokens []*token.Token, tok *token.Token) (int, error) {
	i := token.IndexOf(tokens, tok)
	if i < 0 {
		return -1, ErrTokenNotFound
	}
	return Match(spec, tokens, i), nil
}

// scan walks from start in direction dir with a stack of unclosed
// same-side tokens. The forward and backward scans mirror each other.
func scan(spec Spec, tokens []*token.Token, start, dir int) int {
	same, opposite := spec.IsLeft, spec.IsRight
	pair := spec.IsPair
	if dir < 0 {
		same, opposite = spec.IsRight, spec.IsLeft
		pair = func(right, left *token.Token) bool { return spec.IsPair(left, right) }
	}

	var stack []*token.Token
	for i := start + dir; i >= 0 && i < len(tokens); i += dir {
		t := tokens[i]
		switch {
		case same(t):
			stack = append(stack, t)
		case opposite(t):
			if len(stack) == 0 {
				return i
			}
			if pair(stack[len(stack)-1], t) {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return -1
}
