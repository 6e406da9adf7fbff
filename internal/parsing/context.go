package parsing

import "github.com/dshills/hybrid/internal/token"

// Context is a cursor over a token list handed to a Parser.
type Context struct {
	tokens []*token.Token
	pos    int
}

// NewContext creates a cursor positioned before the first token.
func NewContext(tokens []*token.Token) *Context {
	return &Context{tokens: tokens}
}

// Current returns the token under the cursor, or nil at the end.
func (c *Context) Current() *token.Token {
	if c.pos >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos]
}

// Peek returns the token n positions ahead of the cursor, or nil.
func (c *Context) Peek(n int) *token.Token {
	i := c.pos + n
	if i < 0 || i >= len(c.tokens) {
		return nil
	}
	return c.tokens[i]
}

// Advance moves past the current token and returns it.
func (c *Context) Advance() *token.Token {
	t := c.Current()
	if t != nil {
		c.pos++
	}
	return t
}

// AtEnd reports whether all tokens have been consumed.
func (c *Context) AtEnd() bool {
	return c.pos >= len(c.tokens)
}

// Pos returns the number of consumed tokens.
func (c *Context) Pos() int {
	return c.pos
}

// Len returns the total number of tokens.
func (c *Context) Len() int {
	return len(c.tokens)
}

// Remaining returns the unconsumed tokens.
func (c *Context) Remaining() []*token.Token {
	return c.tokens[c.pos:]
}

// Mark returns the current position for a later Reset.
func (c *Context) Mark() int {
	return c.pos
}

// Reset rewinds the cursor to a position returned by Mark.
func (c *Context) Reset(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark > len(c.tokens) {
		mark = len(c.tokens)
	}
	c.pos = mark
}

// AcceptText consumes the current token if it is a plain token with the
// given text.
func (c *Context) AcceptText(text string) bool {
	t := c.Current()
	if t == nil || t.Kind() != token.KindPlain || t.Text() != text {
		return false
	}
	c.pos++
	return true
}

// AcceptKind consumes and returns the current token if it has the given kind.
func (c *Context) AcceptKind(kind token.Kind) (*token.Token, bool) {
	t := c.Current()
	if t == nil || t.Kind() != kind {
		return nil, false
	}
	c.pos++
	return t, true
}
