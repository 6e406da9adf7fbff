package observable

import "reflect"

// PropertyChange describes a property update.
type PropertyChange[T any] struct {
	Old T
	New T
}

// PropertyObserver is called after the property value changes.
type PropertyObserver[T any] func(change PropertyChange[T])

// Property holds a single value and reports changes to it.
type Property[T any] struct {
	value     T
	equal     func(a, b T) bool
	observers observers[PropertyObserver[T]]
}

// PropertyOption configures a Property.
type PropertyOption[T any] func(*Property[T])

// WithEqual sets the equality used to suppress no-op updates.
// The default is reflect.DeepEqual.
func WithEqual[T any](eq func(a, b T) bool) PropertyOption[T] {
	return func(p *Property[T]) {
		if eq != nil {
			p.equal = eq
		}
	}
}

// NewProperty creates a property holding initial.
func NewProperty[T any](initial T, opts ...PropertyOption[T]) *Property[T] {
	p := &Property[T]{
		value: initial,
		equal: func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	return p.value
}

// Set stores v and notifies observers if it differs from the current value.
// It reports whether a change was recorded.
func (p *Property[T]) Set(v T) bool {
	if p.equal(p.value, v) {
		return false
	}
	old := p.value
	p.value = v
	for _, fn := range p.observers.snapshot() {
		fn(PropertyChange[T]{Old: old, New: v})
	}
	return true
}

// Subscribe registers an observer for value changes.
func (p *Property[T]) Subscribe(fn PropertyObserver[T]) *Subscription {
	return p.observers.add(fn)
}

// Signal is a notification without payload, used to announce that some
// state reachable from a value has been mutated in place.
type Signal struct {
	observers observers[func()]
}

// NewSignal creates a signal with no observers.
func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers fn to be called on Fire.
func (s *Signal) Subscribe(fn func()) *Subscription {
	return s.observers.add(fn)
}

// Fire calls all observers.
func (s *Signal) Fire() {
	for _, fn := range s.observers.snapshot() {
		fn()
	}
}

// ObserverCount returns the number of registered observers.
func (s *Signal) ObserverCount() int {
	return s.observers.len()
}

// Source is anything that can announce changes. *Signal implements it.
type Source interface {
	Subscribe(fn func()) *Subscription
}

// Merge combines sources into one. Subscribing to the result subscribes to
// every source; unsubscribing removes all of them. Merge of no sources
// returns nil.
func Merge(sources ...Source) Source {
	var live []Source
	for _, s := range sources {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return merged(live)
}

type merged []Source

func (m merged) Subscribe(fn func()) *Subscription {
	subs := make([]*Subscription, len(m))
	for i, s := range m {
		subs[i] = s.Subscribe(fn)
	}
	return &Subscription{remove: func(uint64) {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}}
}
