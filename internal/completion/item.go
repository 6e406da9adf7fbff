package completion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/hybrid/internal/token"
)

// Item is one producible kind of token.
type Item interface {
	// Text is the label shown in menus. For fixed items it is also the
	// text the item produces.
	Text() string

	// IsMatch reports whether text is exactly a token this item produces.
	IsMatch(text string) bool

	// IsStrictMatchPrefix reports whether text can be extended (by at least
	// one more character) into a match.
	IsStrictMatchPrefix(text string) bool

	// Token materializes a token from matching text.
	Token(text string) *token.Token
}

// keyword is a fixed-text item.
type keyword struct {
	text string
	opts []token.Option
}

// Keyword returns an item producing exactly text as a plain token.
func Keyword(text string, opts ...token.Option) Item {
	return &keyword{text: text, opts: opts}
}

// Keywords returns one Keyword item per text.
func Keywords(texts ...string) []Item {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Keyword(t)
	}
	return items
}

func (k *keyword) Text() string { return k.text }

func (k *keyword) IsMatch(text string) bool { return text == k.text }

func (k *keyword) IsStrictMatchPrefix(text string) bool {
	return len(text) < len(k.text) && strings.HasPrefix(k.text, text)
}

func (k *keyword) Token(string) *token.Token {
	return token.NewPlain(k.text, k.opts...)
}

func (k *keyword) String() string { return fmt.Sprintf("keyword(%q)", k.text) }

// FuncItem is an Item built from functions, for languages whose tokens are
// open-ended (numbers, identifiers, string literals).
type FuncItem struct {
	Label  string
	Match  func(text string) bool
	Prefix func(text string) bool
	Make   func(text string) *token.Token
}

// Text returns the label.
func (f *FuncItem) Text() string { return f.Label }

// IsMatch calls Match.
func (f *FuncItem) IsMatch(text string) bool {
	return f.Match != nil && f.Match(text)
}

// IsStrictMatchPrefix calls Prefix.
func (f *FuncItem) IsStrictMatchPrefix(text string) bool {
	return f.Prefix != nil && f.Prefix(text)
}

// Token calls Make, or produces a plain token when Make is nil.
func (f *FuncItem) Token(text string) *token.Token {
	if f.Make == nil {
		return token.NewPlain(text)
	}
	return f.Make(text)
}

// PatternItem matches tokens with regular expressions. Exact is matched
// against the whole text. Prefix, if set, recognises texts that can still
// grow into a match.
type PatternItem struct {
	label  string
	exact  *regexp.Regexp
	prefix *regexp.Regexp
	opts   []token.Option
}

// NewPatternItem compiles exact and prefix (which may be empty).
func NewPatternItem(label, exact, prefix string, opts ...token.Option) (*PatternItem, error) {
	re, err := regexp.Compile(`^(?:` + exact + `)$`)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", label, err)
	}
	p := &PatternItem{label: label, exact: re, opts: opts}
	if prefix != "" {
		pre, err := regexp.Compile(`^(?:` + prefix + `)$`)
		if err != nil {
			return nil, fmt.Errorf("prefix pattern %q: %w", label, err)
		}
		p.prefix = pre
	}
	return p, nil
}

// Text returns the label.
func (p *PatternItem) Text() string { return p.label }

// IsMatch reports whether text matches the exact pattern.
func (p *PatternItem) IsMatch(text string) bool {
	return text != "" && p.exact.MatchString(text)
}

// IsStrictMatchPrefix reports whether text matches the prefix pattern.
func (p *PatternItem) IsStrictMatchPrefix(text string) bool {
	return p.prefix != nil && p.prefix.MatchString(text)
}

// Token produces a plain token carrying text.
func (p *PatternItem) Token(text string) *token.Token {
	return token.NewPlain(text, p.opts...)
}
