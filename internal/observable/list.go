package observable

import "fmt"

// ListChange describes one mutation of a List.
type ListChange[T any] struct {
	Type  ChangeType
	Index int
	// Old is the removed or replaced item.
	Old T
	// New is the added or replacing item.
	New T
}

// ListObserver is called after each list mutation.
type ListObserver[T any] func(change ListChange[T])

// List is an ordered sequence that reports every mutation with its index.
type List[T any] struct {
	items     []T
	observers observers[ListObserver[T]]
}

// NewList creates a list holding a copy of items. No events are fired for
// the initial contents.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Get returns the item at index. It panics if index is out of range.
func (l *List[T]) Get(index int) T {
	l.checkIndex(index, len(l.items))
	return l.items[index]
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Subscribe registers an observer for all mutations.
func (l *List[T]) Subscribe(fn ListObserver[T]) *Subscription {
	return l.observers.add(fn)
}

// ObserverCount returns the number of registered observers.
func (l *List[T]) ObserverCount() int {
	return l.observers.len()
}

// Add inserts item at index, shifting later items right.
func (l *List[T]) Add(index int, item T) {
	l.checkIndex(index, len(l.items)+1)
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = item
	l.notify(ListChange[T]{Type: ChangeAdd, Index: index, New: item})
}

// Append adds item at the end.
func (l *List[T]) Append(item T) {
	l.Add(len(l.items), item)
}

// Remove deletes and returns the item at index.
func (l *List[T]) Remove(index int) T {
	l.checkIndex(index, len(l.items))
	old := l.items[index]
	copy(l.items[index:], l.items[index+1:])
	var zero T
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
	l.notify(ListChange[T]{Type: ChangeRemove, Index: index, Old: old})
	return old
}

// Set replaces the item at index and returns the previous one.
func (l *List[T]) Set(index int, item T) T {
	l.checkIndex(index, len(l.items))
	old := l.items[index]
	l.items[index] = item
	l.notify(ListChange[T]{Type: ChangeSet, Index: index, Old: old, New: item})
	return old
}

// Clear removes all items, last first.
func (l *List[T]) Clear() {
	for len(l.items) > 0 {
		l.Remove(len(l.items) - 1)
	}
}

// ReplaceAll clears the list and appends items.
func (l *List[T]) ReplaceAll(items []T) {
	l.Clear()
	for _, item := range items {
		l.Append(item)
	}
}

func (l *List[T]) notify(change ListChange[T]) {
	for _, fn := range l.observers.snapshot() {
		fn(change)
	}
}

func (l *List[T]) checkIndex(index, limit int) {
	if index < 0 || index >= limit {
		panic(fmt.Sprintf("observable: index %d out of range [0,%d)", index, limit))
	}
}
