// Package app wires the hybrid editing engine into an interactive session.
//
// A Session owns one JSON document edited as a token list. Lines that do
// not start with a colon are typed at the cursor: they are tokenized
// against the completion oracle and completed in place, so typing "[" also
// inserts the closing "]" when pair auto-insert is on. Lines starting with
// a colon run commands (":help" lists them) for undo, selection, pair
// matching, the completion menu and JSON import/export.
//
// Session is independent of any terminal; cmd/hybrid drives it from a line
// editor and tests drive it through Exec.
package app
