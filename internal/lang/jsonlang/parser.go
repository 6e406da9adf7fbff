package jsonlang

import (
	"github.com/dshills/hybrid/internal/parsing"
	"github.com/dshills/hybrid/internal/token"
)

// Parser parses a token list into a *Document.
type Parser struct{}

// Parse implements parsing.Parser.
func (Parser) Parse(ctx *parsing.Context) (any, bool) {
	doc := &Document{Comments: comments(ctx)}
	root, ok := parseValue(ctx)
	if !ok {
		return nil, false
	}
	doc.Root = root
	doc.Trailing = comments(ctx)
	return doc, true
}

// comments consumes consecutive comment tokens and returns their bodies.
func comments(ctx *parsing.Context) []string {
	var out []string
	for {
		tok, ok := ctx.AcceptKind(token.KindComment)
		if !ok {
			return out
		}
		out = append(out, tok.Text()[len(tok.CommentPrefix()):])
	}
}

func parseValue(ctx *parsing.Context) (any, bool) {
	tok := ctx.Current()
	if tok == nil {
		return nil, false
	}
	switch tok.Kind() {
	case token.KindValue:
		ctx.Advance()
		switch v := tok.Value().(type) {
		case String, Number:
			return v, true
		}
		return nil, false
	case token.KindPlain:
	default:
		return nil, false
	}

	switch tok.Text() {
	case "{":
		return parseObject(ctx)
	case "[":
		return parseArray(ctx)
	case "true":
		ctx.Advance()
		return Bool(true), true
	case "false":
		ctx.Advance()
		return Bool(false), true
	case "null":
		ctx.Advance()
		return Null{}, true
	}
	return nil, false
}

// parseArray parses "[" (comments value ("," comments value)*)? comments "]".
// Comments between a value and its comma move to the next element.
func parseArray(ctx *parsing.Context) (any, bool) {
	ctx.AcceptText("[")
	arr := &Array{}
	pending := comments(ctx)
	if ctx.AcceptText("]") {
		arr.Trailing = pending
		return arr, true
	}
	for {
		v, ok := parseValue(ctx)
		if !ok {
			return nil, false
		}
		arr.Elems = append(arr.Elems, &Element{Comments: pending, Value: v})
		pending = comments(ctx)
		if ctx.AcceptText("]") {
			arr.Trailing = pending
			return arr, true
		}
		if !ctx.AcceptText(",") {
			return nil, false
		}
		pending = append(pending, comments(ctx)...)
	}
}

// parseObject parses "{" (comments member ("," comments member)*)? comments "}"
// where member is string ":" value.
func parseObject(ctx *parsing.Context) (any, bool) {
	ctx.AcceptText("{")
	obj := &Object{}
	pending := comments(ctx)
	if ctx.AcceptText("}") {
		obj.Trailing = pending
		return obj, true
	}
	for {
		keyTok, ok := ctx.AcceptKind(token.KindValue)
		if !ok {
			return nil, false
		}
		key, ok := keyTok.Value().(String)
		if !ok || !ctx.AcceptText(":") {
			return nil, false
		}
		v, ok := parseValue(ctx)
		if !ok {
			return nil, false
		}
		obj.Members = append(obj.Members, &Member{Comments: pending, Key: string(key), Value: v})
		pending = comments(ctx)
		if ctx.AcceptText("}") {
			obj.Trailing = pending
			return obj, true
		}
		if !ctx.AcceptText(",") {
			return nil, false
		}
		pending = append(pending, comments(ctx)...)
	}
}
