package completion

import (
	"context"
	"io"
	"log/slog"

	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/token"
)

// Side selects which edge of a token a side completion binds to.
type Side int

const (
	// SideLeft inserts before the token.
	SideLeft Side = iota
	// SideRight inserts after the token.
	SideRight
)

// Focus is where the caret should land after an edit: a token index and a
// grapheme offset inside that token.
type Focus struct {
	Index int
	Caret int
}

// NoFocus means there is no token to focus.
var NoFocus = Focus{Index: -1}

// Valid reports whether f points at a token.
func (f Focus) Valid() bool { return f.Index >= 0 }

// AutoInserter supplies the companion token typed after an opening token.
type AutoInserter interface {
	AutoInsertFor(left *token.Token) (*token.Token, bool)
}

// MenuProvider supplies extra, possibly slow, items for completion menus.
// It is never consulted by the tokenizer.
type MenuProvider interface {
	MenuItems(ctx context.Context, prefix string) ([]Item, error)
}

// Option configures a Completer.
type Option func(*Completer)

// WithAutoInsert enables pair auto-insertion.
func WithAutoInsert(a AutoInserter) Option {
	return func(c *Completer) { c.pairs = a }
}

// WithReactivation controls menu re-activation after edits. Default true.
func WithReactivation(on bool) Option {
	return func(c *Completer) { c.reactivate = on }
}

// WithMenuProvider adds an asynchronous menu item source.
func WithMenuProvider(p MenuProvider) Option {
	return func(c *Completer) { c.provider = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Completer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Completer applies completions to a live token list.
type Completer struct {
	tokens     *observable.List[*token.Token]
	oracle     *Oracle
	pairs      AutoInserter
	provider   MenuProvider
	reactivate bool
	logger     *slog.Logger
	menu       Session
}

// NewCompleter creates a completer editing tokens.
func NewCompleter(tokens *observable.List[*token.Token], oracle *Oracle, opts ...Option) *Completer {
	c := &Completer{
		tokens:     tokens,
		oracle:     oracle,
		reactivate: true,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Oracle returns the completion oracle.
func (c *Completer) Oracle() *Oracle { return c.oracle }

// Menu returns the menu session.
func (c *Completer) Menu() *Session { return &c.menu }

// CompletePlaceholder appends toks at the end of the list. Focus moves to
// the end of the last inserted token.
func (c *Completer) CompletePlaceholder(toks ...*token.Token) Focus {
	return c.edit(func() Focus {
		start := c.tokens.Len()
		for _, t := range toks {
			c.tokens.Append(t)
		}
		if len(toks) == 0 {
			return c.endOf(start - 1)
		}
		last := start + len(toks) - 1
		c.autoInsert(last, toks[len(toks)-1])
		return c.endOf(last)
	})
}

// Complete replaces the token at index with toks[0] and inserts the rest
// after it. With no tokens the position is deleted. An index at the end of
// the list is a placeholder completion.
//
// If the text at index is unchanged the caret is kept; otherwise it lands
// at the end of the last token, or just past a comment's prefix.
func (c *Completer) Complete(index, caret int, toks ...*token.Token) Focus {
	if index >= c.tokens.Len() {
		return c.CompletePlaceholder(toks...)
	}
	return c.edit(func() Focus {
		if len(toks) == 0 {
			c.tokens.Remove(index)
			c.logger.Debug("completion deleted token", "index", index)
			if index > 0 {
				return c.endOf(index - 1)
			}
			if c.tokens.Len() > 0 {
				return Focus{Index: 0}
			}
			return NoFocus
		}

		old := c.tokens.Get(index)
		c.tokens.Set(index, toks[0])
		for i, t := range toks[1:] {
			c.tokens.Add(index+1+i, t)
		}
		c.logger.Debug("completion applied", "index", index, "tokens", len(toks))

		if len(toks) == 1 && toks[0].Text() == old.Text() {
			return Focus{Index: index, Caret: clamp(caret, 0, toks[0].Len())}
		}
		last := index + len(toks) - 1
		lastTok := toks[len(toks)-1]
		c.autoInsert(last, lastTok)
		return Focus{Index: last, Caret: lastTok.CaretAfterCompletion()}
	})
}

// CompleteSide inserts toks next to the token at index without replacing
// it. Used when completion starts at a token edge.
func (c *Completer) CompleteSide(index int, side Side, toks ...*token.Token) Focus {
	pos := index
	if side == SideRight {
		pos = index + 1
	}
	pos = clamp(pos, 0, c.tokens.Len())
	return c.edit(func() Focus {
		for i, t := range toks {
			c.tokens.Add(pos+i, t)
		}
		if len(toks) == 0 {
			return c.endOf(index)
		}
		last := pos + len(toks) - 1
		lastTok := toks[len(toks)-1]
		c.autoInsert(last, lastTok)
		return Focus{Index: last, Caret: lastTok.CaretAfterCompletion()}
	})
}

// CompleteText tokenizes typed text and completes it at index.
func (c *Completer) CompleteText(index, caret int, text string) Focus {
	return c.Complete(index, caret, Tokenize(c.oracle, text)...)
}

// Paste tokenizes text and inserts the tokens after index (-1 inserts at
// the start). Pasted text is inserted verbatim without companions.
func (c *Completer) Paste(index int, text string) Focus {
	toks := Tokenize(c.oracle, text)
	c.menu.Close()
	pos := clamp(index+1, 0, c.tokens.Len())
	for i, t := range toks {
		c.tokens.Add(pos+i, t)
	}
	c.logger.Debug("paste", "index", pos, "tokens", len(toks))
	if len(toks) == 0 {
		return c.endOf(index)
	}
	return c.endOf(pos + len(toks) - 1)
}

// Edit replaces the text of the token at index if its validator accepts
// the new text.
func (c *Completer) Edit(index int, text string) bool {
	old := c.tokens.Get(index)
	nt, ok := old.WithText(text)
	if !ok {
		return false
	}
	if !nt.Equals(old) {
		c.tokens.Set(index, nt)
	}
	return true
}

// Trigger opens the menu for the token at index, or for an empty
// placeholder when index is the token count. It reports whether the menu
// has entries.
func (c *Completer) Trigger(index int) bool {
	prefix := ""
	if index < c.tokens.Len() {
		prefix = c.tokens.Get(index).Text()
	}
	c.menu.Open(index, prefix, c.oracle.Matching(prefix))
	return c.menu.Active
}

// Accept completes the target with the selected menu item.
func (c *Completer) Accept() (Focus, bool) {
	it, ok := c.menu.Current()
	if !ok {
		return NoFocus, false
	}
	tok := it.Token(textFor(it, c.menu.Prefix))
	return c.Complete(c.menu.Target, 0, tok), true
}

// Cancel closes the menu.
func (c *Completer) Cancel() { c.menu.Close() }

// MenuCompletions supplies menu items for prefix asynchronously. The
// channel receives at most one slice and is then closed. Callers that move
// on simply stop reading; ctx only suppresses the send.
func (c *Completer) MenuCompletions(ctx context.Context, prefix string) <-chan []Item {
	ch := make(chan []Item, 1)
	go func() {
		defer close(ch)
		items := c.oracle.Matching(prefix)
		if c.provider != nil {
			extra, err := c.provider.MenuItems(ctx, prefix)
			if err != nil {
				c.logger.Warn("menu provider failed", "prefix", prefix, "error", err)
			} else {
				items = append(items, extra...)
			}
		}
		select {
		case <-ctx.Done():
		case ch <- items:
		}
	}()
	return ch
}

// edit runs a structural edit and re-activates the menu if it was active
// and the focused token is still ambiguous.
func (c *Completer) edit(fn func() Focus) Focus {
	wasActive := c.menu.Active
	c.menu.Close()
	f := fn()
	if !wasActive || !c.reactivate || !f.Valid() || f.Index >= c.tokens.Len() {
		return f
	}
	text := c.tokens.Get(f.Index).Text()
	if c.oracle.Query(text).State == StatePending {
		c.menu.Open(f.Index, text, c.oracle.Matching(text))
		c.logger.Debug("completion menu reactivated", "index", f.Index, "items", len(c.menu.Items))
	}
	return f
}

func (c *Completer) autoInsert(after int, tok *token.Token) {
	if c.pairs == nil {
		return
	}
	companion, ok := c.pairs.AutoInsertFor(tok)
	if !ok {
		return
	}
	c.tokens.Add(after+1, companion)
}

func (c *Completer) endOf(index int) Focus {
	if index < 0 || index >= c.tokens.Len() {
		return NoFocus
	}
	return Focus{Index: index, Caret: c.tokens.Get(index).Len()}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
