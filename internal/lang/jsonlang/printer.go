package jsonlang

import (
	"fmt"

	"github.com/dshills/hybrid/internal/parsing"
)

// Printer prints a *Document (or any bare value) into canonical tokens.
// Every node of the value becomes a tree node; containers are watched for
// in-place mutation.
type Printer struct{}

// Print implements parsing.PrettyPrinter.
func (Printer) Print(value any, ctx *parsing.PrintContext) {
	printValue(value, ctx)
}

func printComments(bodies []string, ctx *parsing.PrintContext) {
	for _, b := range bodies {
		ctx.Append(CommentToken(b))
	}
}

func printValue(value any, ctx *parsing.PrintContext) {
	switch v := value.(type) {
	case *Document:
		ctx.Watch(v.Changed())
		ctx.Node(v, func() {
			printComments(v.Comments, ctx)
			printValue(v.Root, ctx)
			printComments(v.Trailing, ctx)
		})
	case *Object:
		ctx.Watch(v.Changed())
		ctx.Node(v, func() {
			ctx.Append(Punct("{"))
			for i, m := range v.Members {
				if i > 0 {
					ctx.Append(Punct(","))
				}
				printComments(m.Comments, ctx)
				ctx.Node(m, func() {
					ctx.Append(StringToken(m.Key))
					ctx.Append(Punct(":"))
					printValue(m.Value, ctx)
				})
			}
			printComments(v.Trailing, ctx)
			ctx.Append(Punct("}"))
		})
	case *Array:
		ctx.Watch(v.Changed())
		ctx.Node(v, func() {
			ctx.Append(Punct("["))
			for i, e := range v.Elems {
				if i > 0 {
					ctx.Append(Punct(","))
				}
				printComments(e.Comments, ctx)
				ctx.Node(e, func() { printValue(e.Value, ctx) })
			}
			printComments(v.Trailing, ctx)
			ctx.Append(Punct("]"))
		})
	case String:
		ctx.Append(StringToken(string(v)))
	case Number:
		ctx.Append(NumberToken(v))
	case Bool:
		if v {
			ctx.Append(Punct("true"))
		} else {
			ctx.Append(Punct("false"))
		}
	case Null, nil:
		ctx.Append(Punct("null"))
	default:
		panic(fmt.Sprintf("jsonlang: cannot print %T", value))
	}
}
