// Package parsing defines the contracts between the hybrid editor and a
// language: a Parser turns tokens into a value, a PrettyPrinter turns a value
// back into tokens plus a parsenode.Tree.
//
// The two must be inverses on the token count: printing a freshly parsed
// value yields exactly as many tokens as the parser consumed.
//
// A Parser reads through a Context, a cursor over a token slice with
// mark/reset for backtracking. Syntax errors are reported by returning
// ok == false, never by panicking.
//
// A PrettyPrinter writes through a PrintContext, which records emitted
// tokens, the node structure, and any change sources reachable from the
// printed value.
package parsing
