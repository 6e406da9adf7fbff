// Package jsonlang is a hybrid language for JSON with line comments.
//
// It supplies everything an editor needs: a value model whose containers
// signal in-place mutation, a Parser, a PrettyPrinter that records a parse
// tree, completion items for the tokenizer, a bracket pair spec, and
// conversion to and from plain JSON text.
//
// Canonical rendering keeps everything on one line:
//
//	{"name": "hybrid", "tags": [1, 2]}
//
// Comments are attached to the element or member that follows them, or
// kept as trailing comments of their container or document.
package jsonlang
