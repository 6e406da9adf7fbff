package token

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rivo/uniseg"
)

// Kind classifies tokens.
type Kind int

// Token kinds.
const (
	KindPlain Kind = iota
	KindValue
	KindComment
	KindError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindValue:
		return "value"
	case KindComment:
		return "comment"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Validator reports whether text is acceptable as the new text of a token.
type Validator func(text string) bool

// Token is the smallest lexical unit of a token list.
type Token struct {
	kind           Kind
	text           string
	noSpaceToLeft  bool
	noSpaceToRight bool

	// value is the payload of a KindValue token.
	value any
	// prefix is the fixed comment marker of a KindComment token.
	prefix string

	validator Validator
	// rebuild recomputes the payload after a validated text edit.
	rebuild func(text string) any
}

// Option configures a Token at construction.
type Option func(*Token)

// WithNoSpaceToLeft marks the token as glued to its left neighbour.
func WithNoSpaceToLeft() Option {
	return func(t *Token) {
		t.noSpaceToLeft = true
	}
}

// WithNoSpaceToRight marks the token as glued to its right neighbour.
func WithNoSpaceToRight() Option {
	return func(t *Token) {
		t.noSpaceToRight = true
	}
}

// WithValidator sets the predicate used to accept in-place text edits.
func WithValidator(v Validator) Option {
	return func(t *Token) {
		t.validator = v
	}
}

// WithPayloadFunc sets how a value token recomputes its payload after a
// validated text edit.
func WithPayloadFunc(fn func(text string) any) Option {
	return func(t *Token) {
		t.rebuild = fn
	}
}

// NewPlain creates a plain token. Plain tokens only accept edits that keep
// their text unchanged unless a validator is supplied.
func NewPlain(text string, opts ...Option) *Token {
	return build(&Token{kind: KindPlain, text: text}, opts)
}

// NewValue creates a value token carrying payload.
func NewValue(text string, payload any, opts ...Option) *Token {
	return build(&Token{kind: KindValue, text: text, value: payload}, opts)
}

// NewComment creates a comment token. Its text is prefix followed by body.
func NewComment(prefix, body string, opts ...Option) *Token {
	t := &Token{
		kind:   KindComment,
		text:   prefix + body,
		prefix: prefix,
		validator: func(text string) bool {
			return strings.HasPrefix(text, prefix) && !strings.ContainsAny(text, "\r\n")
		},
	}
	return build(t, opts)
}

// NewError creates an error token holding raw text that no completion item
// could produce. Error tokens accept any edit.
func NewError(raw string, opts ...Option) *Token {
	t := &Token{
		kind:      KindError,
		text:      raw,
		validator: func(string) bool { return true },
	}
	return build(t, opts)
}

func build(t *Token, opts []Option) *Token {
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Kind returns the token kind.
func (t *Token) Kind() Kind { return t.kind }

// Text returns the token text.
func (t *Token) Text() string { return t.text }

// NoSpaceToLeft reports whether the token is glued to its left neighbour.
func (t *Token) NoSpaceToLeft() bool { return t.noSpaceToLeft }

// NoSpaceToRight reports whether the token is glued to its right neighbour.
func (t *Token) NoSpaceToRight() bool { return t.noSpaceToRight }

// Value returns the payload of a value token, or nil.
func (t *Token) Value() any { return t.value }

// CommentPrefix returns the fixed prefix of a comment token, or "".
func (t *Token) CommentPrefix() string { return t.prefix }

// Len returns the text length in grapheme clusters. Caret offsets inside a
// token are expressed in the same unit.
func (t *Token) Len() int {
	return uniseg.GraphemeClusterCount(t.text)
}

// CaretAfterCompletion returns where the caret lands after the token has
// been produced by a completion: past the prefix for comments, at the end
// of the text otherwise.
func (t *Token) CaretAfterCompletion() int {
	switch t.kind {
	case KindComment:
		return uniseg.GraphemeClusterCount(t.prefix)
	default:
		return t.Len()
	}
}

// Accepts reports whether text is an acceptable in-place edit.
func (t *Token) Accepts(text string) bool {
	if text == t.text {
		return true
	}
	if t.validator == nil {
		return false
	}
	return t.validator(text)
}

// WithText returns a new token with the edited text, or false if the
// validator rejects it. The receiver is never modified.
func (t *Token) WithText(text string) (*Token, bool) {
	if !t.Accepts(text) {
		return nil, false
	}
	c := t.Copy()
	c.text = text
	if c.kind == KindValue && c.rebuild != nil {
		c.value = c.rebuild(text)
	}
	return c, true
}

// Copy returns an independent clone.
func (t *Token) Copy() *Token {
	c := *t
	return &c
}

// Equals reports whether two tokens have the same content. Identity and
// validators are not compared.
func (t *Token) Equals(other *Token) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.kind == other.kind &&
		t.text == other.text &&
		t.noSpaceToLeft == other.noSpaceToLeft &&
		t.noSpaceToRight == other.noSpaceToRight &&
		t.prefix == other.prefix &&
		reflect.DeepEqual(t.value, other.value)
}

// String returns a debug representation.
func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.kind == KindPlain {
		return fmt.Sprintf("%q", t.text)
	}
	return fmt.Sprintf("%s(%q)", t.kind, t.text)
}

// CopyAll returns independent clones of tokens.
func CopyAll(tokens []*Token) []*Token {
	out := make([]*Token, len(tokens))
	for i, t := range tokens {
		out[i] = t.Copy()
	}
	return out
}

// EqualLists reports whether two token lists have equal content.
func EqualLists(a, b []*Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of tok (by identity) in tokens, or -1.
func IndexOf(tokens []*Token, tok *Token) int {
	for i, t := range tokens {
		if t == tok {
			return i
		}
	}
	return -1
}
