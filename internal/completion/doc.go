// Package completion turns text into tokens and applies chosen completions
// to an editor's live token list.
//
// Everything is driven by one Oracle built from a set of Items. The oracle
// answers, for a candidate text, whether it completes to exactly one token
// (StateSingle), could still become one or more tokens (StatePending), or
// cannot become any token (StateError).
//
// The Tokenizer is a greedy, non-backtracking automaton over grapheme
// clusters: once a cluster makes the candidate unmatchable, the previous
// unique match is committed and the cluster is reprocessed on its own.
//
//	o := completion.NewOracle(completion.Keywords("i", "if")...)
//	toks := completion.Tokenize(o, "ifx") // "if", error("x")
//
// The Completer applies produced tokens at a position (placeholder,
// in-place or side of a token), computes where the caret should land, and
// keeps a menu Session that is re-activated after structural edits while
// the position is still ambiguous.
package completion
