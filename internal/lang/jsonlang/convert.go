package jsonlang

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Conversion errors.
var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNoMatch     = errors.New("path matched nothing")
	ErrUnsupported = errors.New("value cannot be represented in JSON")
)

// pathEscaper escapes the characters gjson and sjson treat specially in a
// path component.
var pathEscaper = strings.NewReplacer(
	`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`,
	`#`, `\#`, `@`, `\@`, `!`, `\!`, `=`, `\=`, `<`, `\<`, `>`, `\>`, `%`, `\%`,
)

// EscapeKey returns key as a single gjson/sjson path component.
func EscapeKey(key string) string {
	return pathEscaper.Replace(key)
}

// ToJSON renders v as JSON text without comments. With indent empty the
// output is compact; otherwise it is pretty-printed using indent.
func ToJSON(v any, indent string) (string, error) {
	raw, err := rawJSON(v)
	if err != nil {
		return "", err
	}
	if indent == "" {
		return string(pretty.Ugly([]byte(raw))), nil
	}
	opts := *pretty.DefaultOptions
	opts.Indent = indent
	return string(pretty.PrettyOptions([]byte(raw), &opts)), nil
}

func rawJSON(v any) (string, error) {
	switch x := v.(type) {
	case *Document:
		return rawJSON(x.Root)
	case *Object:
		out := "{}"
		for _, m := range x.Members {
			if m.Key == "" {
				return "", fmt.Errorf("%w: empty key", ErrUnsupported)
			}
			child, err := rawJSON(m.Value)
			if err != nil {
				return "", err
			}
			if out, err = sjson.SetRaw(out, EscapeKey(m.Key), child); err != nil {
				return "", fmt.Errorf("set %q: %w", m.Key, err)
			}
		}
		return out, nil
	case *Array:
		out := "[]"
		for i, e := range x.Elems {
			child, err := rawJSON(e.Value)
			if err != nil {
				return "", err
			}
			if out, err = sjson.SetRaw(out, "-1", child); err != nil {
				return "", fmt.Errorf("append %d: %w", i, err)
			}
		}
		return out, nil
	case String:
		return quote(string(x)), nil
	case Number:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %v", ErrUnsupported, f)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case Bool:
		return strconv.FormatBool(bool(x)), nil
	case Null, nil:
		return "null", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// FromJSON parses JSON text into a Document.
func FromJSON(text string) (*Document, error) {
	if !gjson.Valid(text) {
		return nil, ErrInvalidJSON
	}
	return NewDocument(fromResult(gjson.Parse(text))), nil
}

func fromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := &Array{}
			r.ForEach(func(_, v gjson.Result) bool {
				arr.Elems = append(arr.Elems, &Element{Value: fromResult(v)})
				return true
			})
			return arr
		}
		obj := &Object{}
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Members = append(obj.Members, &Member{Key: k.Str, Value: fromResult(v)})
			return true
		})
		return obj
	default:
		return Null{}
	}
}

// Query evaluates a gjson path against v and converts the result back
// into a value.
func Query(v any, path string) (any, error) {
	raw, err := rawJSON(v)
	if err != nil {
		return nil, err
	}
	r := gjson.Get(raw, path)
	if !r.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, path)
	}
	return fromResult(r), nil
}
