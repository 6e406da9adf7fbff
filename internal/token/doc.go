// Package token defines the lexical unit of the hybrid editor.
//
// A Token is a small immutable value: its text, two adjacency flags that
// decide whether it may be glued to its neighbours without a separating
// space, and a kind-specific payload. Tokens are shared by pointer; the
// pointer is the token's identity inside a live token list, and Copy is the
// only way to obtain an independent instance.
//
// # Kinds
//
// Token kinds form a closed set:
//
//   - KindPlain: keywords, punctuation, identifiers
//   - KindValue: literals carrying a typed payload (numbers, strings)
//   - KindComment: comments with a fixed prefix such as "//"
//   - KindError: raw text that could not be turned into any known token
//
// Code that needs kind-specific behaviour switches on Kind().
//
// # Spacing
//
// Two adjacent tokens are rendered with a single space between them unless
// the left one has NoSpaceToRight or the right one has NoSpaceToLeft:
//
//	open := token.NewPlain("(", token.WithNoSpaceToRight())
//	x := token.NewPlain("x")
//	token.Render([]*token.Token{open, x}) // "(x"
package token
