package token

import "strings"

// NeedsSpace reports whether a space is rendered between left and right.
func NeedsSpace(left, right *Token) bool {
	return !left.noSpaceToRight && !right.noSpaceToLeft
}

// Glued reports whether left and right form an indivisible boundary:
// both sides refuse a space, so the caret cannot stop between them.
func Glued(left, right *Token) bool {
	return left.noSpaceToRight && right.noSpaceToLeft
}

// SpaceBefore returns, for each index, whether a space is rendered before
// the token at that index. The first token is never preceded by a space.
func SpaceBefore(tokens []*Token) []bool {
	out := make([]bool, len(tokens))
	for i := 1; i < len(tokens); i++ {
		out[i] = NeedsSpace(tokens[i-1], tokens[i])
	}
	return out
}

// Render joins tokens into text, honouring adjacency flags.
func Render(tokens []*Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 && NeedsSpace(tokens[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// Texts returns the text of every token.
func Texts(tokens []*Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.text
	}
	return out
}
