package hybrid

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/parsing"
	"github.com/dshills/hybrid/internal/token"
)

// wordList is the value of a tiny comma separated language: "a , b , c".
type wordList struct {
	items   []string
	changed *observable.Signal
}

func newWordList(items ...string) *wordList {
	return &wordList{items: items, changed: observable.NewSignal()}
}

func (l *wordList) add(s string) {
	l.items = append(l.items, s)
	l.changed.Fire()
}

func wordListEqual(a, b any) bool {
	la, _ := a.(*wordList)
	lb, _ := b.(*wordList)
	if la == nil || lb == nil {
		return la == lb
	}
	return reflect.DeepEqual(la.items, lb.items)
}

func comma() *token.Token {
	return token.NewPlain(",", token.WithNoSpaceToLeft())
}

func word(s string) *token.Token {
	if s == "," {
		return comma()
	}
	return token.NewPlain(s)
}

func words(texts ...string) []*token.Token {
	out := make([]*token.Token, len(texts))
	for i, s := range texts {
		out[i] = word(s)
	}
	return out
}

// lang is a counting parser/printer pair for wordList.
type lang struct {
	parses int
	prints int
	// extra makes the printer emit one more token than it should.
	extra bool
}

func (l *lang) Parse(ctx *parsing.Context) (any, bool) {
	l.parses++
	var items []string
	for {
		tok, ok := ctx.AcceptKind(token.KindPlain)
		if !ok || tok.Text() == "," {
			return nil, false
		}
		items = append(items, tok.Text())
		if ctx.AtEnd() {
			return newWordList(items...), true
		}
		if !ctx.AcceptText(",") {
			return nil, false
		}
	}
}

func (l *lang) Print(value any, ctx *parsing.PrintContext) {
	l.prints++
	list := value.(*wordList)
	ctx.Watch(list.changed)
	ctx.Node(list, func() {
		for i, s := range list.items {
			if i > 0 {
				ctx.Append(comma())
			}
			ctx.Append(token.NewPlain(s))
		}
		if l.extra {
			ctx.Append(token.NewPlain(";"))
		}
	})
}

func newTokenEditor(initial ...string) (*Editor, *lang) {
	l := &lang{}
	e := NewTokenEditor(l, l, words(initial...), WithValueEqual(wordListEqual))
	return e, l
}

func items(e *Editor) []string {
	if l, ok := e.Value().(*wordList); ok {
		return l.items
	}
	return nil
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateEmpty, "empty"},
		{StateValid, "valid"},
		{StateInvalid, "invalid"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestEditor_Empty(t *testing.T) {
	e, l := newTokenEditor()

	if e.State() != StateEmpty || !e.Valid() {
		t.Errorf("State() = %s, Valid() = %v", e.State(), e.Valid())
	}
	if e.Value() != nil || e.Tree() != nil {
		t.Error("empty editor should have no value and no tree")
	}
	if l.parses != 0 {
		t.Errorf("parser invoked %d times on empty input", l.parses)
	}
}

func TestEditor_Valid(t *testing.T) {
	e, _ := newTokenEditor("a", ",", "b")

	if e.State() != StateValid {
		t.Fatalf("State() = %s", e.State())
	}
	if got := items(e); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("value = %v", got)
	}
	if e.Tree() == nil {
		t.Error("valid editor should expose a tree")
	}
	if got := token.Texts(e.PrettyTokens()); !reflect.DeepEqual(got, []string{"a", ",", "b"}) {
		t.Errorf("PrettyTokens() = %v", got)
	}
	if e.Text() != "a, b" {
		t.Errorf("Text() = %q", e.Text())
	}
	if e.ID().String() == "" {
		t.Error("missing session id")
	}
}

func TestEditor_Invalid(t *testing.T) {
	e, _ := newTokenEditor("a", ",")

	if e.State() != StateInvalid || e.Valid() {
		t.Errorf("State() = %s, Valid() = %v", e.State(), e.Valid())
	}
	if e.Value() != nil || e.Tree() != nil || e.PrettyTokens() != nil {
		t.Error("invalid editor should have no value, tree or canonical tokens")
	}
}

func TestEditor_TokenEditsReparse(t *testing.T) {
	e, _ := newTokenEditor("a")

	e.Tokens().Append(comma())
	if e.Valid() {
		t.Error("trailing comma should be invalid")
	}

	e.Tokens().Append(word("b"))
	if got := items(e); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("value = %v", got)
	}

	e.Tokens().Clear()
	if e.State() != StateEmpty {
		t.Errorf("State() = %s after clear", e.State())
	}
}

func TestEditor_ParsesCopies(t *testing.T) {
	var seen []*token.Token
	p := parsing.ParserFunc(func(ctx *parsing.Context) (any, bool) {
		seen = append(seen, ctx.Remaining()...)
		for !ctx.AtEnd() {
			ctx.Advance()
		}
		return "ok", true
	})
	pr := parsing.PrinterFunc(func(value any, ctx *parsing.PrintContext) {
		ctx.Append(token.NewPlain("x"))
	})

	live := words("x")
	NewTokenEditor(p, pr, live)

	if len(seen) != 1 || seen[0] == live[0] {
		t.Error("parser must receive copies, not live tokens")
	}
}

func TestEditor_SetValueReprints(t *testing.T) {
	e, _ := newTokenEditor("a", ",", "b")
	first := e.Tokens().Get(0)

	var sets, adds int
	e.Tokens().Subscribe(func(c observable.ListChange[*token.Token]) {
		switch c.Type {
		case observable.ChangeSet:
			sets++
		case observable.ChangeAdd:
			adds++
		}
	})

	e.SetValue(newWordList("a", "c", "d"))

	if got := token.Texts(e.Tokens().Items()); !reflect.DeepEqual(got, []string{"a", ",", "c", ",", "d"}) {
		t.Fatalf("tokens = %v", got)
	}
	if e.Tokens().Get(0) != first {
		t.Error("unchanged token at index 0 was replaced")
	}
	if sets != 1 || adds != 2 {
		t.Errorf("sets=%d adds=%d, want 1 and 2", sets, adds)
	}
}

func TestEditor_SetNilValueClears(t *testing.T) {
	e, _ := newTokenEditor("a")
	e.SetValue(nil)

	if e.TokenCount() != 0 || e.State() != StateEmpty {
		t.Errorf("tokens=%d state=%s", e.TokenCount(), e.State())
	}
}

func TestEditor_InPlaceMutationReprints(t *testing.T) {
	e, _ := newTokenEditor()
	list := newWordList("x")
	e.SetValue(list)

	list.add("y")
	if got := e.Text(); got != "x, y" {
		t.Errorf("Text() = %q after in-place mutation", got)
	}

	// Once the tokens are edited the value is re-derived; the old object is
	// no longer watched.
	e.Tokens().Append(comma())
	e.Tokens().Append(word("z"))
	list.add("ignored")
	if got := e.Text(); got != "x, y, z" {
		t.Errorf("Text() = %q, stale value should not be reprinted", got)
	}
}

func TestEditor_MutationOfDerivedValue(t *testing.T) {
	tests := []struct {
		name string
		edit func(e *Editor)
		want string
	}{
		{"initial tokens", func(*Editor) {}, "a, b"},
		{"after token edit", func(e *Editor) {
			e.Tokens().Append(comma())
			e.Tokens().Append(word("c"))
		}, "a, c, b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTokenEditor("a")
			tt.edit(e)
			e.Value().(*wordList).add("b")

			if got := e.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if got := token.Render(e.PrettyTokens()); got != tt.want {
				t.Errorf("PrettyTokens() = %q, want %q", got, tt.want)
			}
			tree := e.Tree()
			if got := tree.Range(tree.Root()).Hi; got != e.TokenCount() {
				t.Errorf("root range ends at %d, want %d", got, e.TokenCount())
			}
		})
	}
}

func TestEditor_ValueObserverSeesCurrentTree(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		edit    func(e *Editor)
	}{
		{"token replaced", []string{"a", ",", "b"}, func(e *Editor) { e.Tokens().Set(2, word("c")) }},
		{"invalid to valid", []string{"a", ","}, func(e *Editor) { e.Tokens().Append(word("b")) }},
		{"value set", []string{"a"}, func(e *Editor) { e.SetValue(newWordList("x", "y")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTokenEditor(tt.initial...)
			calls := 0
			e.ValueProperty().Subscribe(func(c observable.PropertyChange[any]) {
				calls++
				tree := e.Tree()
				if tree == nil {
					t.Fatal("Tree() is nil inside the value observer")
				}
				if root := tree.Value(tree.Root()); root != c.New {
					t.Errorf("tree root = %v, want the new value %v", root, c.New)
				}
				if got := len(e.PrettyTokens()); got != tree.Range(tree.Root()).Hi {
					t.Errorf("pretty tokens = %d, tree covers %d", got, tree.Range(tree.Root()).Hi)
				}
			})
			tt.edit(e)
			if calls != 1 {
				t.Errorf("observer called %d times, want 1", calls)
			}
		})
	}
}

func TestEditor_Dispose(t *testing.T) {
	e, l := newTokenEditor()
	list := newWordList("x")
	e.SetValue(list)
	e.Dispose()
	e.Dispose()

	before := l.parses
	e.Tokens().Append(word("y"))
	if l.parses != before {
		t.Error("disposed editor reparsed")
	}
	if list.changed.ObserverCount() != 0 {
		t.Error("dispose left the change-source subscription behind")
	}
}

func TestEditor_RestoreState(t *testing.T) {
	e, _ := newTokenEditor("a", ",", "b")
	snap := e.Snapshot()

	e.Tokens().Append(comma())
	if e.Valid() {
		t.Fatal("expected invalid state")
	}

	e.RestoreState(nil)
	if !e.Valid() || e.Text() != "a, b" {
		t.Errorf("RestoreState(nil): valid=%v text=%q", e.Valid(), e.Text())
	}

	e.Tokens().Append(comma())
	e.Tokens().Append(word("c"))
	e.RestoreState(snap)
	if got := items(e); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("RestoreState(snap) value = %v", got)
	}

	e.RestoreState([]*token.Token{})
	if e.State() != StateEmpty {
		t.Errorf("RestoreState(empty) state = %s", e.State())
	}
}

func TestEditor_RestoreStateWhenValidIsNoop(t *testing.T) {
	e, l := newTokenEditor("a")
	prints := l.prints
	e.RestoreState(nil)
	if l.prints != prints {
		t.Error("RestoreState(nil) on a valid editor should not reprint")
	}
}

func TestEditor_ReentrantRestorePanics(t *testing.T) {
	e, _ := newTokenEditor("a")
	e.Tokens().Subscribe(func(observable.ListChange[*token.Token]) {
		e.RestoreState(nil)
	})

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReentrantRestore) {
			t.Fatalf("recovered %v, want ErrReentrantRestore", r)
		}
		if e.guard.Held() {
			t.Error("guard still held after panic")
		}
	}()
	e.RestoreState(words("b"))
}

func TestEditor_ContractViolationPanics(t *testing.T) {
	l := &lang{extra: true}

	defer func() {
		r := recover()
		var ce *ContractError
		err, _ := r.(error)
		if !errors.As(err, &ce) {
			t.Fatalf("recovered %v, want *ContractError", r)
		}
		if ce.Parsed != 1 || ce.Printed != 2 {
			t.Errorf("ContractError = %+v", ce)
		}
		if !errors.Is(err, ErrParserPrinterMismatch) {
			t.Error("ContractError should unwrap to ErrParserPrinterMismatch")
		}
	}()
	NewTokenEditor(l, l, words("a"))
}

func TestEditor_NoReentrantCascade(t *testing.T) {
	e, l := newTokenEditor("a")

	// A consumer reacting to value changes by writing back into both the
	// token list and the value. Both writes happen under the guard and must
	// be dropped.
	e.ValueProperty().Subscribe(func(c observable.PropertyChange[any]) {
		if e.TokenCount() > 0 {
			e.Tokens().Set(0, word("q"))
		}
		e.SetValue(newWordList("zzz"))
	})

	parses, prints := l.parses, l.prints
	dropped := e.Stats().Dropped
	e.Tokens().Append(comma())
	e.Tokens().Append(word("b"))

	if got := l.parses - parses; got != 2 {
		t.Errorf("parses = %d, want 2 (one per external mutation)", got)
	}
	if got := l.prints - prints; got != 1 {
		t.Errorf("prints = %d, want 1", got)
	}
	if e.Stats().Dropped <= dropped {
		t.Error("guarded writes should have been dropped")
	}
	st := e.Stats()
	if st.Parses < 2 || st.Prints < 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestEditor_RoundTripIsFixedPoint(t *testing.T) {
	l := &lang{}
	values := []*wordList{
		newWordList("a"),
		newWordList("a", "b"),
		newWordList("x", "y", "z"),
	}
	for _, v := range values {
		printed := parsing.Print(l, v).Tokens
		parsed, _, ok := parsing.Parse(l, printed)
		if !ok || !wordListEqual(parsed, v) {
			t.Errorf("parse(print(%v)) = %v", v.items, parsed)
			continue
		}
		again := parsing.Print(l, parsed).Tokens
		if !token.EqualLists(again, printed) {
			t.Errorf("print is not a fixed point for %v", v.items)
		}
	}
}

func TestGuard(t *testing.T) {
	var g Guard
	inner := false
	ran := g.Run(func() {
		if !g.Held() {
			t.Error("guard not held inside Run")
		}
		inner = g.Run(func() { t.Error("nested Run executed") })
	})
	if !ran || inner {
		t.Errorf("ran=%v inner=%v", ran, inner)
	}
	if g.Held() || g.Dropped() != 1 {
		t.Errorf("Held()=%v Dropped()=%d", g.Held(), g.Dropped())
	}
}

func TestEditor_RestoreEmptySnapshot(t *testing.T) {
	e, _ := newTokenEditor()
	snap := e.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot of an empty editor is nil")
	}

	e.Tokens().Append(word("a"))
	e.RestoreState(snap)
	if e.TokenCount() != 0 || e.State() != StateEmpty {
		t.Errorf("after restore: count=%d state=%v", e.TokenCount(), e.State())
	}
}
