package hybrid

import (
	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/token"
)

// Truth is the authority an Editor reconciles against.
type Truth interface {
	// Pull returns the current truth rendered as tokens.
	Pull() []*token.Token

	// Push writes the live token at index back to the truth. added reports
	// an insertion rather than a replacement.
	Push(index int, tok *token.Token, added bool)

	// Removed deletes the truth entry at index.
	Removed(index int)

	// Patch brings the truth in line with tokens, touching only entries
	// that differ.
	Patch(tokens []*token.Token)

	// Bind starts observing external changes to the truth and forwards them
	// to mirror as token-list changes. The returned function stops it.
	Bind(mirror func(change observable.ListChange[*token.Token])) (unbind func())

	// Canonicalize reports whether token edits that change the parsed
	// value are answered by reprinting the canonical tokens into the live
	// list.
	Canonicalize() bool
}

// TokensTruth makes the live token list itself the truth.
type TokensTruth struct {
	initial   []*token.Token
	canonical bool
}

// NewTokensTruth creates a tokens-are-truth adapter seeded with initial.
// With canonicalize set, value-changing edits are reformatted immediately.
func NewTokensTruth(initial []*token.Token, canonicalize bool) *TokensTruth {
	return &TokensTruth{initial: initial, canonical: canonicalize}
}

// Pull returns the initial tokens.
func (t *TokensTruth) Pull() []*token.Token { return t.initial }

// Push is a no-op: the live list already is the truth.
func (t *TokensTruth) Push(int, *token.Token, bool) {}

// Removed is a no-op.
func (t *TokensTruth) Removed(int) {}

// Patch is a no-op.
func (t *TokensTruth) Patch([]*token.Token) {}

// Bind is a no-op; there is nothing external to observe.
func (t *TokensTruth) Bind(func(observable.ListChange[*token.Token])) func() {
	return func() {}
}

// Canonicalize reports the adapter setting.
func (t *TokensTruth) Canonicalize() bool { return t.canonical }

// SourceTruth makes an external list of source items the truth. Items and
// tokens correspond one to one by index.
type SourceTruth[S any] struct {
	source    *observable.List[S]
	toToken   func(index int, item S) *token.Token
	fromToken func(index int, tok *token.Token) S
}

// NewSourceTruth creates a source-list-is-truth adapter.
func NewSourceTruth[S any](
	source *observable.List[S],
	toToken func(index int, item S) *token.Token,
	fromToken func(index int, tok *token.Token) S,
) *SourceTruth[S] {
	return &SourceTruth[S]{source: source, toToken: toToken, fromToken: fromToken}
}

// Source returns the underlying list.
func (t *SourceTruth[S]) Source() *observable.List[S] {
	return t.source
}

// Pull renders every source item as a token.
func (t *SourceTruth[S]) Pull() []*token.Token {
	items := t.source.Items()
	out := make([]*token.Token, len(items))
	for i, item := range items {
		out[i] = t.toToken(i, item)
	}
	return out
}

// Push writes one token back into the source list.
func (t *SourceTruth[S]) Push(index int, tok *token.Token, added bool) {
	item := t.fromToken(index, tok)
	if added || index >= t.source.Len() {
		t.source.Add(min(index, t.source.Len()), item)
		return
	}
	t.source.Set(index, item)
}

// Removed deletes one source item.
func (t *SourceTruth[S]) Removed(index int) {
	if index < t.source.Len() {
		t.source.Remove(index)
	}
}

// Patch resynchronises the source list by position: entries whose token
// still matches are kept, differing entries are overwritten, extra tokens
// are appended as new items and surplus items are removed from the end.
func (t *SourceTruth[S]) Patch(tokens []*token.Token) {
	for i, tok := range tokens {
		if i < t.source.Len() {
			if t.toToken(i, t.source.Get(i)).Equals(tok) {
				continue
			}
			t.source.Set(i, t.fromToken(i, tok))
			continue
		}
		t.source.Append(t.fromToken(i, tok))
	}
	for t.source.Len() > len(tokens) {
		t.source.Remove(t.source.Len() - 1)
	}
}

// Bind forwards source list changes as token changes.
func (t *SourceTruth[S]) Bind(mirror func(observable.ListChange[*token.Token])) func() {
	sub := t.source.Subscribe(func(c observable.ListChange[S]) {
		change := observable.ListChange[*token.Token]{Type: c.Type, Index: c.Index}
		switch c.Type {
		case observable.ChangeAdd, observable.ChangeSet:
			change.New = t.toToken(c.Index, c.New)
		}
		mirror(change)
	})
	return sub.Unsubscribe
}

// Canonicalize is always true: the source list follows the canonical form.
func (t *SourceTruth[S]) Canonicalize() bool { return true }
