package jsonlang

import (
	"slices"

	"github.com/dshills/hybrid/internal/observable"
)

// Scalar values.
type (
	Null   struct{}
	Bool   bool
	Number float64
	String string
)

// Element is one array entry with the comments printed before it.
type Element struct {
	Comments []string
	Value    any
}

// Array is a JSON array. Mutating methods signal Changed.
type Array struct {
	Elems    []*Element
	Trailing []string
	changed  *observable.Signal
}

// NewArray creates an array of values.
func NewArray(values ...any) *Array {
	a := &Array{}
	for _, v := range values {
		a.Elems = append(a.Elems, &Element{Value: v})
	}
	return a
}

// Changed fires after every mutating method.
func (a *Array) Changed() *observable.Signal {
	if a.changed == nil {
		a.changed = observable.NewSignal()
	}
	return a.changed
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Get returns the value at i.
func (a *Array) Get(i int) any { return a.Elems[i].Value }

// Values returns the element values.
func (a *Array) Values() []any {
	out := make([]any, len(a.Elems))
	for i, e := range a.Elems {
		out[i] = e.Value
	}
	return out
}

// Append adds a value at the end.
func (a *Array) Append(v any) {
	a.Elems = append(a.Elems, &Element{Value: v})
	a.Changed().Fire()
}

// Insert adds a value at i.
func (a *Array) Insert(i int, v any) {
	a.Elems = slices.Insert(a.Elems, i, &Element{Value: v})
	a.Changed().Fire()
}

// Set replaces the value at i, keeping its comments.
func (a *Array) Set(i int, v any) {
	a.Elems[i].Value = v
	a.Changed().Fire()
}

// Remove deletes the element at i.
func (a *Array) Remove(i int) {
	a.Elems = slices.Delete(a.Elems, i, i+1)
	a.Changed().Fire()
}

// Member is one object entry with the comments printed before it.
type Member struct {
	Comments []string
	Key      string
	Value    any
}

// Object is a JSON object with ordered members. Mutating methods signal
// Changed.
type Object struct {
	Members  []*Member
	Trailing []string
	changed  *observable.Signal
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// Changed fires after every mutating method.
func (o *Object) Changed() *observable.Signal {
	if o.changed == nil {
		o.changed = observable.NewSignal()
	}
	return o.changed
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.Members) }

// Keys returns the member keys in order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.Members))
	for i, m := range o.Members {
		out[i] = m.Key
	}
	return out
}

// Get returns the value of the first member named key.
func (o *Object) Get(key string) (any, bool) {
	if i := o.index(key); i >= 0 {
		return o.Members[i].Value, true
	}
	return nil, false
}

// Set replaces the value of key, or appends a member.
func (o *Object) Set(key string, v any) {
	if i := o.index(key); i >= 0 {
		o.Members[i].Value = v
	} else {
		o.Members = append(o.Members, &Member{Key: key, Value: v})
	}
	o.Changed().Fire()
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.index(key)
	if i < 0 {
		return false
	}
	o.Members = slices.Delete(o.Members, i, i+1)
	o.Changed().Fire()
	return true
}

func (o *Object) index(key string) int {
	return slices.IndexFunc(o.Members, func(m *Member) bool { return m.Key == key })
}

// Document is the parsed value of a whole token list: one root value with
// optional comments around it.
type Document struct {
	Comments []string
	Root     any
	Trailing []string
	changed  *observable.Signal
}

// NewDocument wraps root.
func NewDocument(root any) *Document {
	return &Document{Root: root}
}

// Changed fires after SetRoot.
func (d *Document) Changed() *observable.Signal {
	if d.changed == nil {
		d.changed = observable.NewSignal()
	}
	return d.changed
}

// SetRoot replaces the root value.
func (d *Document) SetRoot(v any) {
	d.Root = v
	d.Changed().Fire()
}

// Equal compares two values structurally, ignoring change signals.
// It has the signature the editor expects for value equality.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *Document:
		y, ok := b.(*Document)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return slices.Equal(x.Comments, y.Comments) &&
			slices.Equal(x.Trailing, y.Trailing) &&
			Equal(x.Root, y.Root)
	case *Array:
		y, ok := b.(*Array)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return slices.Equal(x.Trailing, y.Trailing) &&
			slices.EqualFunc(x.Elems, y.Elems, func(e, f *Element) bool {
				return slices.Equal(e.Comments, f.Comments) && Equal(e.Value, f.Value)
			})
	case *Object:
		y, ok := b.(*Object)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return slices.Equal(x.Trailing, y.Trailing) &&
			slices.EqualFunc(x.Members, y.Members, func(m, n *Member) bool {
				return m.Key == n.Key && slices.Equal(m.Comments, n.Comments) && Equal(m.Value, n.Value)
			})
	case Null, Bool, Number, String:
		return a == b
	default:
		return false
	}
}
