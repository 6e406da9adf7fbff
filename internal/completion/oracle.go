package completion

import "sync"

// State is the oracle's answer for a candidate text.
type State int

const (
	// StateError means no item matches or can extend to the text.
	StateError State = iota

	// StatePending means the text is ambiguous or can still be extended.
	StatePending

	// StateSingle means exactly one item matches and none extends.
	StateSingle
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StatePending:
		return "pending"
	case StateSingle:
		return "single"
	default:
		return "unknown"
	}
}

// Result is the oracle's answer for one text.
type Result struct {
	State State
	Text  string

	// Exact holds items for which Text is a match.
	Exact []Item

	// Extendable holds items for which Text is a strict prefix.
	Extendable []Item
}

// Unique returns the single exact match, if there is exactly one. A pending
// result can have a unique match that is also extendable ("1" for numbers).
func (r Result) Unique() (Item, bool) {
	if len(r.Exact) != 1 {
		return nil, false
	}
	return r.Exact[0], true
}

// Oracle answers completion queries over a set of items.
// It is safe for concurrent use.
type Oracle struct {
	mu    sync.RWMutex
	items []Item
}

// NewOracle creates an oracle over items.
func NewOracle(items ...Item) *Oracle {
	return &Oracle{items: append([]Item(nil), items...)}
}

// Add registers more items.
func (o *Oracle) Add(items ...Item) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, items...)
}

// Items returns a copy of the registered items.
func (o *Oracle) Items() []Item {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Item(nil), o.items...)
}

// Len returns the number of registered items.
func (o *Oracle) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}

// Query classifies text.
func (o *Oracle) Query(text string) Result {
	res := Result{Text: text}
	if text == "" {
		res.State = StatePending
		return res
	}

	o.mu.RLock()
	for _, it := range o.items {
		if it.IsMatch(text) {
			res.Exact = append(res.Exact, it)
		}
		if it.IsStrictMatchPrefix(text) {
			res.Extendable = append(res.Extendable, it)
		}
	}
	o.mu.RUnlock()

	switch {
	case len(res.Exact) == 0 && len(res.Extendable) == 0:
		res.State = StateError
	case len(res.Exact) == 1 && len(res.Extendable) == 0:
		res.State = StateSingle
	default:
		res.State = StatePending
	}
	return res
}

// Matching returns the items that match or extend prefix, in registration
// order. An empty prefix returns every item.
func (o *Oracle) Matching(prefix string) []Item {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if prefix == "" {
		return append([]Item(nil), o.items...)
	}
	var out []Item
	for _, it := range o.items {
		if it.IsMatch(prefix) || it.IsStrictMatchPrefix(prefix) {
			out = append(out, it)
		}
	}
	return out
}
