package token

import (
	"strconv"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindPlain, "plain"},
		{KindValue, "value"},
		{KindComment, "comment"},
		{KindError, "error"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	orig := NewValue("1", 1.0, WithNoSpaceToLeft())
	c := orig.Copy()

	if c == orig {
		t.Fatal("Copy returned the same pointer")
	}
	if !c.Equals(orig) {
		t.Error("copy should equal original")
	}

	edited, ok := c.WithText("2")
	if ok {
		t.Fatalf("value token without validator accepted edit: %v", edited)
	}
	if orig.Text() != "1" {
		t.Error("original modified")
	}
}

func TestEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b *Token
		want bool
	}{
		{"same plain", NewPlain("if"), NewPlain("if"), true},
		{"different text", NewPlain("if"), NewPlain("else"), false},
		{"different flags", NewPlain("("), NewPlain("(", WithNoSpaceToRight()), false},
		{"different kind", NewPlain("x"), NewError("x"), false},
		{"same payload", NewValue("1", 1.0), NewValue("1", 1.0), true},
		{"different payload", NewValue("1", 1.0), NewValue("1", 2.0), false},
		{"nil vs token", nil, NewPlain("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("Equals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithText(t *testing.T) {
	num := NewValue("1", 1.0,
		WithValidator(func(s string) bool {
			_, err := strconv.ParseFloat(s, 64)
			return err == nil
		}),
		WithPayloadFunc(func(s string) any {
			f, _ := strconv.ParseFloat(s, 64)
			return f
		}),
	)

	edited, ok := num.WithText("12")
	if !ok {
		t.Fatal("valid edit rejected")
	}
	if edited.Value() != 12.0 {
		t.Errorf("payload = %v, want 12", edited.Value())
	}
	if num.Value() != 1.0 {
		t.Error("original payload changed")
	}

	if _, ok := num.WithText("1x"); ok {
		t.Error("invalid edit accepted")
	}

	plain := NewPlain("if")
	if _, ok := plain.WithText("if"); !ok {
		t.Error("unchanged text should always be accepted")
	}
	if _, ok := plain.WithText("iff"); ok {
		t.Error("plain token without validator accepted edit")
	}

	errTok := NewError("@@")
	if _, ok := errTok.WithText("anything"); !ok {
		t.Error("error token should accept any edit")
	}
}

func TestComment(t *testing.T) {
	c := NewComment("//", " note")
	if c.Text() != "// note" {
		t.Errorf("Text() = %q", c.Text())
	}
	if c.CaretAfterCompletion() != 2 {
		t.Errorf("CaretAfterCompletion() = %d, want 2", c.CaretAfterCompletion())
	}
	if !c.Accepts("//other") {
		t.Error("comment edit keeping prefix rejected")
	}
	if c.Accepts("# other") {
		t.Error("comment edit dropping prefix accepted")
	}
}

func TestLenCountsGraphemes(t *testing.T) {
	// e followed by a combining acute accent is one grapheme of two runes.
	combined := NewError("e\u0301x")
	if combined.Len() != 2 {
		t.Errorf("Len() = %d, want 2", combined.Len())
	}
	if combined.CaretAfterCompletion() != 2 {
		t.Errorf("CaretAfterCompletion() = %d, want 2", combined.CaretAfterCompletion())
	}
}

func TestSpacing(t *testing.T) {
	t1 := NewPlain("(", WithNoSpaceToRight())
	t2 := NewPlain("x")
	t3 := NewPlain(",", WithNoSpaceToLeft())
	t4 := NewPlain("y")

	if NeedsSpace(t1, t2) {
		t.Error("no space expected after token with NoSpaceToRight")
	}
	if NeedsSpace(t2, t3) {
		t.Error("no space expected before token with NoSpaceToLeft")
	}
	if !NeedsSpace(t3, t4) {
		t.Error("space expected between ordinary tokens")
	}

	list := []*Token{t1, t2, t3, t4}
	if got := Render(list); got != "(x, y" {
		t.Errorf("Render() = %q", got)
	}

	spaced := SpaceBefore(list)
	want := []bool{false, false, false, true}
	for i := range want {
		if spaced[i] != want[i] {
			t.Errorf("SpaceBefore()[%d] = %v, want %v", i, spaced[i], want[i])
		}
	}

	// Removing the first token must not leave a leading space on the new first.
	rest := list[1:]
	if SpaceBefore(rest)[0] {
		t.Error("new first token is spaced")
	}
	if got := Render(rest); got != "x, y" {
		t.Errorf("Render() = %q", got)
	}
}

func TestGlued(t *testing.T) {
	a := NewPlain("a", WithNoSpaceToRight())
	b := NewPlain("b", WithNoSpaceToLeft())
	c := NewPlain("c")

	if !Glued(a, b) {
		t.Error("a and b should be glued")
	}
	if Glued(a, c) {
		t.Error("a and c should not be glued")
	}
}

func TestIndexOfUsesIdentity(t *testing.T) {
	a := NewPlain("x")
	b := NewPlain("x")
	list := []*Token{a, b}

	if IndexOf(list, b) != 1 {
		t.Error("IndexOf should match by identity")
	}
	if IndexOf(list, b.Copy()) != -1 {
		t.Error("copy must not be found")
	}
}

func TestCopyAllAndEqualLists(t *testing.T) {
	list := []*Token{NewPlain("a"), NewValue("1", 1.0)}
	copied := CopyAll(list)

	if !EqualLists(list, copied) {
		t.Error("copied list should be equal")
	}
	for i := range list {
		if list[i] == copied[i] {
			t.Errorf("token %d aliased", i)
		}
	}
	if EqualLists(list, copied[:1]) {
		t.Error("lists of different length reported equal")
	}
}
