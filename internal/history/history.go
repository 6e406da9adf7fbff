package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/hybrid/internal/token"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when a non-positive limit is given.
const DefaultMaxEntries = 1000

// Restorer is the editor side of undo: it can snapshot its tokens and
// restore a snapshot transactionally. Snapshot never returns nil, since
// RestoreState(nil) means "reprint the last valid value" rather than
// "clear". *hybrid.Editor implements it.
type Restorer interface {
	Snapshot() []*token.Token
	RestoreState(tokens []*token.Token)
}

// Info provides read-only information about an entry.
type Info struct {
	Description string
	Timestamp   time.Time
	// TokenDelta is the change in token count the entry made.
	TokenDelta int
}

type entry struct {
	name      string
	before    []*token.Token
	after     []*token.Token
	timestamp time.Time
}

func (e *entry) info() Info {
	return Info{
		Description: e.name,
		Timestamp:   e.timestamp,
		TokenDelta:  len(e.after) - len(e.before),
	}
}

// History manages undo/redo state for one editor.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping    bool
	groupName   string
	groupBefore []*token.Token

	maxEntries int
}

// New creates a history keeping at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Record snapshots r around fn and pushes the edit fn made. Edits that
// leave the token content unchanged are not recorded. Inside a group the
// edit becomes part of the group.
func (h *History) Record(name string, r Restorer, fn func()) {
	before := r.Snapshot()
	fn()
	h.Push(name, before, r.Snapshot())
}

// Push adds an entry and clears the redo stack.
func (h *History) Push(name string, before, after []*token.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping || token.EqualLists(before, after) {
		return
	}
	h.pushLocked(name, before, after)
}

func (h *History) pushLocked(name string, before, after []*token.Token) {
	h.undoStack = append(h.undoStack, &entry{
		name:      name,
		before:    before,
		after:     after,
		timestamp: time.Now(),
	})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo restores the tokens from before the last entry.
// The lock is released while the editor restores.
func (h *History) Undo(r Restorer) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	r.RestoreState(e.before)

	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
	return nil
}

// Redo restores the tokens from after the last undone entry.
func (h *History) Redo(r Restorer) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	r.RestoreState(e.after)

	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group; everything until EndGroup undoes as one unit.
// Nested calls are ignored.
func (h *History) BeginGroup(name string, r Restorer) {
	before := r.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupBefore = before
}

// EndGroup closes the group and pushes a single entry for it.
func (h *History) EndGroup(r Restorer) {
	after := r.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	before := h.groupBefore
	h.groupBefore = nil
	if !token.EqualLists(before, after) {
		h.pushLocked(h.groupName, before, after)
	}
}

// CancelGroup abandons a group without recording it.
// Edits already made stay in the editor.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupBefore = nil
}

// IsGrouping returns true while a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Transaction runs fn inside a group. If fn returns an error the group is
// cancelled and the editor is restored to the tokens it had before.
func (h *History) Transaction(name string, r Restorer, fn func() error) error {
	before := r.Snapshot()
	h.BeginGroup(name, r)

	if err := fn(); err != nil {
		h.CancelGroup()
		r.RestoreState(before)
		return err
	}

	h.EndGroup(r)
	return nil
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupBefore = nil
}

// UndoInfo returns info about the undo entries, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo returns info about the next undo entry.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo entry.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the limit, dropping the oldest entries if needed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the entry limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
