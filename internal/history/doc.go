// Package history provides undo/redo for hybrid editors.
//
// History stores token-list snapshots rather than commands: each entry holds
// the tokens before and after an edit, and undo/redo hand them to the
// editor's RestoreState. Tokens are immutable, so a snapshot is a cheap
// slice of shared pointers.
//
//	h := history.New(1000)
//
//	h.Record("type if", ed, func() {
//	    ed.Tokens().Append(token.NewPlain("if"))
//	})
//
//	h.Undo(ed) // tokens before the append
//	h.Redo(ed) // tokens after it
//
// # Grouping
//
// Several edits can be grouped into one undo unit:
//
//	h.BeginGroup("paste", ed)
//	// ... multiple edits ...
//	h.EndGroup(ed)
package history
