package hybrid

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/parsenode"
	"github.com/dshills/hybrid/internal/parsing"
	"github.com/dshills/hybrid/internal/token"
)

// State is the parse state of an Editor.
type State int

const (
	// StateEmpty means there are no tokens; the value is nil and valid.
	StateEmpty State = iota

	// StateValid means the last reparse produced a value.
	StateValid

	// StateInvalid means the tokens do not parse.
	StateInvalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Stats counts reconciliation work, for diagnostics and tests.
type Stats struct {
	// Parses is the number of Parser invocations.
	Parses int
	// Prints is the number of PrettyPrinter invocations.
	Prints int
	// Dropped is the number of mutations ignored because the guard was held.
	Dropped int
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithValueEqual sets the equality used to decide whether a reparse changed
// the value. The default is reflect.DeepEqual.
func WithValueEqual(eq func(a, b any) bool) Option {
	return func(e *Editor) {
		if eq != nil {
			e.equal = eq
		}
	}
}

// Editor is the token list / value reconciliation state machine.
type Editor struct {
	id      uuid.UUID
	parser  parsing.Parser
	printer parsing.PrettyPrinter
	truth   Truth
	logger  *slog.Logger
	equal   func(a, b any) bool

	tokens *observable.List[*token.Token]
	value  *observable.Property[any]

	valid         bool
	lastValid     any
	tree          *parsenode.Tree
	printedTokens []*token.Token

	guard     Guard
	restoring bool
	disposed  bool

	subs      []*observable.Subscription
	unbind    func()
	changeSub *observable.Subscription

	stats Stats
}

// New creates an editor over truth and performs the initial reparse.
func New(parser parsing.Parser, printer parsing.PrettyPrinter, truth Truth, opts ...Option) *Editor {
	e := &Editor{
		id:      uuid.New(),
		parser:  parser,
		printer: printer,
		truth:   truth,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		equal:   func(a, b any) bool { return reflect.DeepEqual(a, b) },
		valid:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("editor", e.id.String())

	e.tokens = observable.NewList(truth.Pull()...)
	e.value = observable.NewProperty[any](nil, observable.WithEqual(e.equal))

	e.subs = append(e.subs,
		e.tokens.Subscribe(e.onTokens),
		e.value.Subscribe(e.onValue),
	)
	e.unbind = truth.Bind(e.onSource)

	e.guard.Run(func() { e.reparse() })
	return e
}

// NewTokenEditor creates an editor whose token list is the truth.
func NewTokenEditor(parser parsing.Parser, printer parsing.PrettyPrinter, initial []*token.Token, opts ...Option) *Editor {
	return New(parser, printer, NewTokensTruth(initial, false), opts...)
}

// NewSourceEditor creates an editor whose truth is an external list of
// source items converted to and from tokens by index.
func NewSourceEditor[S any](
	parser parsing.Parser,
	printer parsing.PrettyPrinter,
	source *observable.List[S],
	toToken func(index int, item S) *token.Token,
	fromToken func(index int, tok *token.Token) S,
	opts ...Option,
) *Editor {
	return New(parser, printer, NewSourceTruth(source, toToken, fromToken), opts...)
}

// ID returns the editor session id.
func (e *Editor) ID() uuid.UUID { return e.id }

// Tokens returns the live token list. Mutating it triggers a reparse.
func (e *Editor) Tokens() *observable.List[*token.Token] { return e.tokens }

// TokenCount returns the number of live tokens.
func (e *Editor) TokenCount() int { return e.tokens.Len() }

// ValueProperty returns the observable parsed value. Setting it triggers a
// reprint into the token list.
func (e *Editor) ValueProperty() *observable.Property[any] { return e.value }

// Value returns the parsed value, or nil when empty or invalid.
func (e *Editor) Value() any { return e.value.Get() }

// SetValue replaces the value and reprints it into the token list.
func (e *Editor) SetValue(v any) { e.value.Set(v) }

// Valid reports whether the tokens parse (or are empty).
func (e *Editor) Valid() bool { return e.valid }

// State returns the current parse state.
func (e *Editor) State() State {
	switch {
	case !e.valid:
		return StateInvalid
	case e.tokens.Len() == 0:
		return StateEmpty
	default:
		return StateValid
	}
}

// Tree returns the parse tree of the current value, or nil when there is
// no value.
func (e *Editor) Tree() *parsenode.Tree {
	if e.value.Get() == nil {
		return nil
	}
	return e.tree
}

// PrettyTokens returns the canonical tokens of the last print, or nil while
// invalid.
func (e *Editor) PrettyTokens() []*token.Token {
	if e.printedTokens == nil {
		return nil
	}
	return append([]*token.Token(nil), e.printedTokens...)
}

// Text renders the live tokens.
func (e *Editor) Text() string { return token.Render(e.tokens.Items()) }

// Snapshot returns the live tokens for a later RestoreState. The result is
// never nil, so restoring an empty snapshot clears the list.
func (e *Editor) Snapshot() []*token.Token {
	return append([]*token.Token{}, e.tokens.Items()...)
}

// Stats returns reconciliation counters.
func (e *Editor) Stats() Stats {
	s := e.stats
	s.Dropped += e.guard.Dropped()
	return s
}

// Reprint prints the current value and reconciles the live token list with
// the canonical tokens. It does nothing while invalid or empty.
func (e *Editor) Reprint() {
	if e.disposed || e.value.Get() == nil {
		return
	}
	e.guard.Run(func() { e.resync() })
}

// RestoreState is the transactional entry point used by undo. Given tokens
// (possibly empty but non-nil) it replaces the live list wholesale and
// reparses. Given nil it reprints the last valid value if the editor is
// currently invalid. A RestoreState call made while another is running
// panics with ErrReentrantRestore.
func (e *Editor) RestoreState(tokens []*token.Token) {
	if e.restoring {
		panic(ErrReentrantRestore)
	}
	e.restoring = true
	defer func() { e.restoring = false }()

	if e.disposed {
		return
	}

	if tokens != nil {
		e.logger.Debug("restore state", "tokens", len(tokens))
		e.runGuarded("restore", func() {
			e.tokens.ReplaceAll(tokens)
			e.reparse()
			e.truth.Patch(e.tokens.Items())
		})
		return
	}

	if e.valid || e.lastValid == nil {
		return
	}
	e.logger.Debug("restore last valid value")
	e.runGuarded("restore", func() {
		e.value.Set(e.lastValid)
		e.resync()
	})
}

// Dispose severs every subscription the editor holds. The editor must not
// be used afterwards.
func (e *Editor) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for _, s := range e.subs {
		s.Unsubscribe()
	}
	e.subs = nil
	if e.unbind != nil {
		e.unbind()
		e.unbind = nil
	}
	e.unwatch()
}

func (e *Editor) onTokens(change observable.ListChange[*token.Token]) {
	if e.disposed {
		return
	}
	e.runGuarded("tokens", func() {
		changed := e.reparse()
		if changed && e.valid && e.truth.Canonicalize() {
			e.updateToPrintedTokens()
			e.truth.Patch(e.tokens.Items())
			return
		}
		switch change.Type {
		case observable.ChangeAdd:
			e.truth.Push(change.Index, change.New, true)
		case observable.ChangeSet:
			e.truth.Push(change.Index, change.New, false)
		case observable.ChangeRemove:
			e.truth.Removed(change.Index)
		}
	})
}

func (e *Editor) onSource(change observable.ListChange[*token.Token]) {
	if e.disposed {
		return
	}
	e.runGuarded("source", func() {
		switch change.Type {
		case observable.ChangeAdd:
			e.tokens.Add(change.Index, change.New)
		case observable.ChangeSet:
			e.tokens.Set(change.Index, change.New)
		case observable.ChangeRemove:
			e.tokens.Remove(change.Index)
		}
		e.reparse()
	})
}

func (e *Editor) onValue(change observable.PropertyChange[any]) {
	if e.disposed {
		return
	}
	e.runGuarded("value", func() {
		if change.New == nil {
			e.tokens.Clear()
			e.clearPrinted()
			e.valid = true
			e.truth.Patch(nil)
			return
		}
		e.resync()
	})
}

func (e *Editor) onMutated() {
	if e.disposed {
		return
	}
	e.runGuarded("mutation", func() { e.resync() })
}

// runGuarded runs fn under the guard, logging a dropped mutation.
func (e *Editor) runGuarded(origin string, fn func()) {
	if !e.guard.Run(fn) {
		e.logger.Debug("mutation dropped", "origin", origin)
	}
}

// resync makes the current value the truth: print it, push the canonical
// tokens into the live list and the truth adapter. Caller holds the guard.
func (e *Editor) resync() {
	e.valid = true
	e.lastValid = e.value.Get()
	e.reprint(e.lastValid)
	e.updateToPrintedTokens()
	e.truth.Patch(e.tokens.Items())
}

// reparse derives the value from copies of the live tokens and reports
// whether the value changed. Caller holds the guard.
func (e *Editor) reparse() bool {
	live := e.tokens.Items()
	if len(live) == 0 {
		e.valid = true
		e.clearPrinted()
		e.logger.Debug("reparse", "state", StateEmpty)
		return e.value.Set(nil)
	}

	e.stats.Parses++
	value, consumed, ok := parsing.Parse(e.parser, token.CopyAll(live))
	if !ok {
		e.valid = false
		e.clearPrinted()
		e.logger.Debug("reparse", "state", StateInvalid, "tokens", len(live))
		return e.value.Set(nil)
	}

	// Keep the previously published object when it is equal, so that tree
	// nodes refer to sub-values of Value().
	if cur := e.value.Get(); cur != nil && e.equal(cur, value) {
		value = cur
	}

	// The tree and canonical tokens are in place before observers of the
	// value are notified.
	e.valid = true
	e.lastValid = value
	e.reprint(value)
	if len(e.printedTokens) != consumed {
		panic(&ContractError{Parsed: consumed, Printed: len(e.printedTokens)})
	}
	if !token.EqualLists(e.printedTokens, live) {
		e.logger.Debug("canonical form differs from live tokens")
	}

	changed := e.value.Set(value)
	e.logger.Debug("reparse", "state", StateValid, "tokens", len(live), "changed", changed)
	return changed
}

// reprint prints value and subscribes to the printer's change source, so
// that in-place mutations of the value are reprinted later. Caller holds
// the guard.
func (e *Editor) reprint(value any) {
	e.stats.Prints++
	res := parsing.Print(e.printer, value)
	e.tree = res.Tree
	e.printedTokens = res.Tokens
	if e.printedTokens == nil {
		e.printedTokens = []*token.Token{}
	}

	e.unwatch()
	if res.Changes != nil {
		e.changeSub = res.Changes.Subscribe(e.onMutated)
	}
	e.logger.Debug("reprint", "tokens", len(res.Tokens), "watching", e.changeSub != nil)
}

// updateToPrintedTokens reconciles the live list with the canonical tokens
// index by index, replacing only tokens whose content differs. Caller
// holds the guard.
func (e *Editor) updateToPrintedTokens() {
	if e.printedTokens == nil {
		return
	}
	for i, p := range e.printedTokens {
		if i >= e.tokens.Len() {
			e.tokens.Append(p)
			continue
		}
		if !e.tokens.Get(i).Equals(p) {
			e.tokens.Set(i, p)
		}
	}
	for e.tokens.Len() > len(e.printedTokens) {
		e.tokens.Remove(e.tokens.Len() - 1)
	}
}

func (e *Editor) clearPrinted() {
	e.tree = nil
	e.printedTokens = nil
	e.unwatch()
}

func (e *Editor) unwatch() {
	if e.changeSub != nil {
		e.changeSub.Unsubscribe()
		e.changeSub = nil
	}
}
