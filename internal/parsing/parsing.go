package parsing

import (
	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/parsenode"
	"github.com/dshills/hybrid/internal/token"
)

// Parser turns a prefix of the context's tokens into a value.
// It returns ok == false for input that is not (yet) valid.
type Parser interface {
	Parse(ctx *Context) (value any, ok bool)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx *Context) (any, bool)

// Parse calls f(ctx).
func (f ParserFunc) Parse(ctx *Context) (any, bool) {
	return f(ctx)
}

// PrettyPrinter emits the canonical tokens for a value.
type PrettyPrinter interface {
	Print(value any, ctx *PrintContext)
}

// PrinterFunc adapts a function to the PrettyPrinter interface.
type PrinterFunc func(value any, ctx *PrintContext)

// Print calls f(value, ctx).
func (f PrinterFunc) Print(value any, ctx *PrintContext) {
	f(value, ctx)
}

// PrintContext collects the output of a PrettyPrinter.
type PrintContext struct {
	tokens  []*token.Token
	builder *parsenode.Builder
	sources []observable.Source
}

// NewPrintContext creates an empty print context.
func NewPrintContext() *PrintContext {
	return &PrintContext{builder: parsenode.NewBuilder()}
}

// Append emits a token and records it as a tree leaf.
func (c *PrintContext) Append(tok *token.Token) {
	c.tokens = append(c.tokens, tok)
	c.builder.Token(tok)
}

// Begin opens a tree node for value at the current position.
func (c *PrintContext) Begin(value any) {
	c.builder.Begin(value)
}

// End closes the most recently opened node.
func (c *PrintContext) End() {
	c.builder.End()
}

// Node wraps body in Begin(value)/End.
func (c *PrintContext) Node(value any, body func()) {
	c.Begin(value)
	body()
	c.End()
}

// Watch registers a source whose notifications mean the printed value was
// mutated in place and must be printed again.
func (c *PrintContext) Watch(src observable.Source) {
	if src != nil {
		c.sources = append(c.sources, src)
	}
}

// Count returns the number of tokens emitted so far.
func (c *PrintContext) Count() int {
	return len(c.tokens)
}

// Result is the output of a print run.
type Result struct {
	Tokens []*token.Token
	Tree   *parsenode.Tree
	// Changes fires when any watched part of the value is mutated.
	// It is nil when the printer watched nothing.
	Changes observable.Source
}

// Result finalises the context.
func (c *PrintContext) Result() Result {
	return Result{
		Tokens:  c.tokens,
		Tree:    c.builder.Build(),
		Changes: observable.Merge(c.sources...),
	}
}

// Print runs p over value in a fresh context.
func Print(p PrettyPrinter, value any) Result {
	ctx := NewPrintContext()
	p.Print(value, ctx)
	return ctx.Result()
}

// Parse runs p over tokens and reports whether the parse produced a value
// and consumed all of them. consumed is the number of tokens the parser
// read.
func Parse(p Parser, tokens []*token.Token) (value any, consumed int, ok bool) {
	ctx := NewContext(tokens)
	v, ok := p.Parse(ctx)
	if !ok || v == nil || !ctx.AtEnd() {
		return nil, ctx.Pos(), false
	}
	return v, ctx.Pos(), true
}
