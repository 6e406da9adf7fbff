package app

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/hybrid/internal/completion"
	"github.com/dshills/hybrid/internal/lang/jsonlang"
	"github.com/dshills/hybrid/internal/token"
)

// keyProvider offers the object keys already used in the document as
// menu entries. It is updated on the session goroutine and read from
// menu goroutines.
type keyProvider struct {
	mu   sync.RWMutex
	keys []string
}

// update collects the keys of v, sorted and deduplicated. A nil value
// (invalid document) keeps the previous keys.
func (p *keyProvider) update(v any) {
	if v == nil {
		return
	}
	var keys []string
	collectKeys(v, &keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	p.mu.Lock()
	p.keys = keys
	p.mu.Unlock()
}

func collectKeys(v any, keys *[]string) {
	switch x := v.(type) {
	case *jsonlang.Document:
		collectKeys(x.Root, keys)
	case *jsonlang.Object:
		for _, m := range x.Members {
			*keys = append(*keys, m.Key)
			collectKeys(m.Value, keys)
		}
	case *jsonlang.Array:
		for _, e := range x.Elems {
			collectKeys(e.Value, keys)
		}
	}
}

// Keys returns the known keys.
func (p *keyProvider) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.keys)
}

// MenuItems implements completion.MenuProvider. Keys are offered for an
// empty prefix or one that starts a string literal.
func (p *keyProvider) MenuItems(ctx context.Context, prefix string) ([]completion.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasPrefix(prefix, `"`) {
		return nil, nil
	}
	var items []completion.Item
	for _, k := range p.Keys() {
		if lit := jsonlang.StringToken(k).Text(); strings.HasPrefix(lit, prefix) {
			items = append(items, keyItem(k, lit))
		}
	}
	return items, nil
}

func keyItem(key, lit string) completion.Item {
	return &completion.FuncItem{
		Label: lit,
		Match: func(text string) bool { return text == lit },
		Prefix: func(text string) bool {
			return len(text) < len(lit) && strings.HasPrefix(lit, text)
		},
		Make: func(string) *token.Token { return jsonlang.StringToken(key) },
	}
}
