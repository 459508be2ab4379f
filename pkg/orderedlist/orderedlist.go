// Package orderedlist provides a small comparator-ordered container used
// for course rosters, wait-lists and the user directory. Insertion order
// is preserved for PushTail; InsertOrdered keeps the list sorted by the
// comparator. The zero index is the head.
package orderedlist

import "golang.org/x/exp/slices"

// List holds elements in a caller-controlled order. It is not safe for
// concurrent use; callers hold their own locks.
type List[T any] struct {
	cmp   func(a, b T) int
	items []T
}

// New creates a list ordered by cmp. cmp may be nil if InsertOrdered is
// never used.
func New[T any](cmp func(a, b T) int) *List[T] {
	return &List[T]{cmp: cmp}
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.items)
}

// PushTail appends v, preserving arrival order.
func (l *List[T]) PushTail(v T) {
	l.items = append(l.items, v)
}

// InsertOrdered inserts v at its sorted position per the comparator.
func (l *List[T]) InsertOrdered(v T) {
	i, _ := slices.BinarySearchFunc(l.items, v, l.cmp)
	l.items = slices.Insert(l.items, i, v)
}

// PopHead removes and returns the oldest element.
func (l *List[T]) PopHead() (T, bool) {
	var zero T
	if len(l.items) == 0 {
		return zero, false
	}
	v := l.items[0]
	l.items = slices.Delete(l.items, 0, 1)
	return v, true
}

// RemoveAt removes the element at index i.
func (l *List[T]) RemoveAt(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, false
	}
	v := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return v, true
}

// Find returns the first element matching pred and its index.
func (l *List[T]) Find(pred func(T) bool) (T, int, bool) {
	for i, v := range l.items {
		if pred(v) {
			return v, i, true
		}
	}
	var zero T
	return zero, -1, false
}

// Each calls fn for every element in list order until fn returns false.
func (l *List[T]) Each(fn func(T) bool) {
	for _, v := range l.items {
		if !fn(v) {
			return
		}
	}
}

// Items returns a copy of the backing slice in list order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
