package completion

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/hybrid/internal/token"
)

// Tokenizer is a streaming text-to-token automaton. Feed it one grapheme
// cluster at a time and Flush at end of input.
type Tokenizer struct {
	oracle *Oracle
	cand   string
	last   Result
	out    []*token.Token
}

// NewTokenizer creates a tokenizer over oracle.
func NewTokenizer(oracle *Oracle) *Tokenizer {
	return &Tokenizer{oracle: oracle}
}

// Tokenize converts text to tokens. The text is NFC-normalised first, so
// composed and decomposed input tokenize the same way.
func Tokenize(oracle *Oracle, text string) []*token.Token {
	t := NewTokenizer(oracle)
	t.Write(text)
	return t.Flush()
}

// Write feeds every grapheme cluster of text.
func (t *Tokenizer) Write(text string) {
	g := uniseg.NewGraphemes(norm.NFC.String(text))
	for g.Next() {
		t.Feed(g.Str())
	}
}

// Feed consumes one grapheme cluster.
func (t *Tokenizer) Feed(cluster string) {
	if cluster == "" {
		return
	}
	if isSpace(cluster) {
		t.feedSpace(cluster)
		return
	}

	for {
		next := t.cand + cluster
		res := t.oracle.Query(next)
		if res.State == StateError && t.cand != "" {
			if _, ok := t.last.Unique(); ok {
				// Commit the previous match and restart on cluster.
				t.emit()
				continue
			}
			if t.last.State == StateError && t.oracle.Query(cluster).State != StateError {
				// Unmatchable text must not swallow the start of a token.
				t.emit()
				continue
			}
		}
		t.cand = next
		t.last = res
		return
	}
}

// feedSpace terminates the candidate unless it can grow across whitespace
// (string literals, comments).
func (t *Tokenizer) feedSpace(cluster string) {
	if t.cand == "" {
		return
	}
	next := t.cand + cluster
	if res := t.oracle.Query(next); res.State != StateError {
		t.cand = next
		t.last = res
		return
	}
	t.emit()
}

// Pending returns the text not yet emitted.
func (t *Tokenizer) Pending() string { return t.cand }

// Tokens returns the tokens emitted so far.
func (t *Tokenizer) Tokens() []*token.Token {
	return append([]*token.Token(nil), t.out...)
}

// Flush emits the pending candidate and returns every token produced since
// the last Reset.
func (t *Tokenizer) Flush() []*token.Token {
	t.emit()
	return t.Tokens()
}

// Reset clears all state.
func (t *Tokenizer) Reset() {
	t.cand = ""
	t.last = Result{}
	t.out = nil
}

// emit turns the candidate into a token: the unique match if there is
// one, an error token carrying the raw text otherwise.
func (t *Tokenizer) emit() {
	if t.cand == "" {
		return
	}
	if it, ok := t.last.Unique(); ok {
		t.out = append(t.out, it.Token(t.cand))
	} else {
		t.out = append(t.out, token.NewError(t.cand))
	}
	t.cand = ""
	t.last = Result{}
}

func isSpace(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	return unicode.IsSpace(r)
}
