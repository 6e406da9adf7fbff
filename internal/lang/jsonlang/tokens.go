package jsonlang

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/hybrid/internal/completion"
	"github.com/dshills/hybrid/internal/pairs"
	"github.com/dshills/hybrid/internal/token"
)

// CommentPrefix starts a line comment.
const CommentPrefix = "//"

var (
	numberExact  = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)
	numberPrefix = regexp.MustCompile(`^(-|-?(0|[1-9]\d*)(\.\d*)?([eE][+-]?\d*)?)$`)
)

// punctOpts returns the spacing of a punctuation token: openers glue to
// what follows, closers and separators to what precedes.
func punctOpts(text string) []token.Option {
	switch text {
	case "{", "[":
		return []token.Option{token.WithNoSpaceToRight()}
	case "}", "]", ",", ":":
		return []token.Option{token.WithNoSpaceToLeft()}
	default:
		return nil
	}
}

// Punct returns a punctuation or keyword token with canonical spacing.
func Punct(text string) *token.Token {
	return token.NewPlain(text, punctOpts(text)...)
}

// StringToken returns a value token for s.
func StringToken(s string) *token.Token {
	return token.NewValue(quote(s), String(s),
		token.WithValidator(isStringLiteral),
		token.WithPayloadFunc(func(text string) any { return String(unquote(text)) }),
	)
}

// NumberToken returns a value token for n.
func NumberToken(n Number) *token.Token {
	return numberToken(strconv.FormatFloat(float64(n), 'g', -1, 64))
}

func numberToken(text string) *token.Token {
	return token.NewValue(text, parseNumber(text),
		token.WithValidator(numberExact.MatchString),
		token.WithPayloadFunc(func(text string) any { return parseNumber(text) }),
	)
}

// CommentToken returns a line comment token; body follows the prefix.
func CommentToken(body string) *token.Token {
	return token.NewComment(CommentPrefix, body)
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal only fails for invalid types; a string always encodes.
		return strconv.Quote(s)
	}
	return string(b)
}

func unquote(text string) string {
	return gjson.Parse(text).String()
}

func parseNumber(text string) Number {
	return Number(gjson.Parse(text).Float())
}

func isStringLiteral(text string) bool {
	return closingQuote(text) == len(text)-1 && gjson.Valid(text)
}

// closingQuote returns the index of the quote closing a string literal
// that starts at text[0], or -1 if the literal is unterminated.
func closingQuote(text string) int {
	if !strings.HasPrefix(text, `"`) {
		return -1
	}
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// Items returns the completion items producing every JSON token.
func Items() []completion.Item {
	items := make([]completion.Item, 0, 12)
	for _, p := range []string{"{", "}", "[", "]", ",", ":"} {
		items = append(items, completion.Keyword(p, punctOpts(p)...))
	}
	items = append(items, completion.Keywords("true", "false", "null")...)
	items = append(items,
		&completion.FuncItem{
			Label: `"string"`,
			Match: isStringLiteral,
			Prefix: func(text string) bool {
				return strings.HasPrefix(text, `"`) && closingQuote(text) < 0 &&
					!strings.ContainsAny(text, "\r\n")
			},
			Make: func(text string) *token.Token { return StringToken(unquote(text)) },
		},
		&completion.FuncItem{
			Label:  "number",
			Match:  numberExact.MatchString,
			Prefix: numberPrefix.MatchString,
			Make:   numberToken,
		},
		&completion.FuncItem{
			Label: CommentPrefix,
			Match: func(text string) bool {
				return strings.HasPrefix(text, CommentPrefix) && !strings.ContainsAny(text, "\r\n")
			},
			Prefix: func(text string) bool {
				return text == "/" ||
					strings.HasPrefix(text, CommentPrefix) && !strings.ContainsAny(text, "\r\n")
			},
			Make: func(text string) *token.Token {
				return CommentToken(strings.TrimPrefix(text, CommentPrefix))
			},
		},
	)
	return items
}

// Oracle returns an oracle over Items.
func Oracle() *completion.Oracle {
	return completion.NewOracle(Items()...)
}

// Pairs returns the bracket spec for objects and arrays.
func Pairs() *pairs.Brackets {
	return pairs.MustBrackets(
		pairs.Pair{Left: "{", Right: "}", AutoInsert: true},
		pairs.Pair{Left: "[", Right: "]", AutoInsert: true},
	)
}
