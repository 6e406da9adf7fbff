// Package hybrid keeps a token list, the value parsed from it, and the
// pretty-printed re-rendering of that value synchronised in both
// directions.
//
// # Reconciliation
//
// An Editor owns a live observable token list and an observable value:
//
//   - every external mutation of the token list reparses it (copies of the
//     tokens are parsed, never the live ones);
//   - a successful parse is immediately printed again to obtain the canonical
//     tokens and the parsenode.Tree;
//   - every external change of the value (or an in-place mutation announced
//     by the printer's change source) reprints it and reconciles the live
//     token list index by index, replacing only tokens whose content differs.
//
// All reconciliation runs under a Guard. Mutations observed while the guard
// is held are dropped, not queued; this is what makes the
// tokens -> value -> tokens loop terminate.
//
// # Direction of truth
//
// A Truth adapter decides where edits flow after reconciliation:
//
//   - TokensTruth: the token list is the truth; the value is derived.
//   - SourceTruth: an external observable list of source items is the
//     truth; tokens are derived from items and edits are pushed back.
//
// # Failure modes
//
// An unparsable token list puts the editor in StateInvalid: Value returns
// nil and Tree returns nil, editing continues on raw tokens. A printer that
// disagrees with the parser on token count, or a reentrant RestoreState,
// is a programming error and panics.
//
// # Concurrency
//
// An Editor is not safe for concurrent use. All calls, and all mutations of
// the containers it observes, must happen on one goroutine.
package hybrid
