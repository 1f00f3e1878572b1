// Package concurrent provides a resizable sequence that is safe for use by
// multiple goroutines.
package concurrent

import (
	"errors"
	"iter"
	"slices"
	"sync"
)

// ErrIndexOutOfRange is returned for an index outside the list.
var ErrIndexOutOfRange = errors.New("index out of range")

const defaultCapacity = 4

// List is a slice guarded by a reader-writer lock. Reads take the read lock,
// mutations the write lock. Iteration works on a copy, so callbacks may call
// back into the list.
type List[T comparable] struct {
	mu    sync.RWMutex
	items []T
}

// New returns an empty list with room for capacity items.
func New[T comparable](capacity int) *List[T] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &List[T]{items: make([]T, 0, capacity)}
}

// From returns a list holding a copy of items.
func From[T comparable](items ...T) *List[T] {
	l := New[T](len(items))
	l.items = append(l.items, items...)
	return l
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Cap returns the capacity of the backing array.
func (l *List[T]) Cap() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cap(l.items)
}

func (l *List[T]) Add(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

// AddRange appends all items under a single lock.
func (l *List[T]) AddRange(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureCapacity(len(l.items) + len(items))
	l.items = append(l.items, items...)
}

// EnsureCapacity grows the backing array to hold at least n items.
func (l *List[T]) EnsureCapacity(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureCapacity(n)
}

// Remove deletes the first occurrence of item and reports whether it was
// found.
func (l *List[T]) Remove(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.Index(l.items, item)
	if i < 0 {
		return false
	}
	l.removeAt(i)
	return true
}

func (l *List[T]) IndexOf(item T) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Index(l.items, item)
}

func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// Insert places item at index i, shifting later items right. i may equal
// Len.
func (l *List[T]) Insert(i int, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i > len(l.items) {
		return ErrIndexOutOfRange
	}
	l.ensureCapacity(len(l.items) + 1)
	l.items = slices.Insert(l.items, i, item)
	return nil
}

func (l *List[T]) RemoveAt(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.removeAt(i)
	return nil
}

func (l *List[T]) Get(i int) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, ErrIndexOutOfRange
	}
	return l.items[i], nil
}

func (l *List[T]) Set(i int, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items[i] = item
	return nil
}

// Clear removes all items and keeps the backing array.
func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.items)
	l.items = l.items[:0]
}

// CopyTo copies the list into dst starting at offset and returns the number
// of items copied. dst must have room for all of them.
func (l *List[T]) CopyTo(dst []T, offset int) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if offset < 0 || offset+len(l.items) > len(dst) {
		return 0, ErrIndexOutOfRange
	}
	return copy(dst[offset:], l.items), nil
}

// Snapshot returns a copy of the current items.
func (l *List[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// All iterates over a snapshot taken when iteration starts.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.Snapshot() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Do runs fn with the write lock held for the whole call and stores the
// slice it returns. fn must not call methods on l.
func (l *List[T]) Do(fn func(items []T) []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = fn(l.items)
}

// Compute runs fn with the write lock of l held and returns its result.
// fn must not call methods on l.
func Compute[T comparable, R any](l *List[T], fn func(items []T) R) R {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.items)
}

func (l *List[T]) ensureCapacity(n int) {
	if cap(l.items) >= n {
		return
	}
	grown := max(cap(l.items)*2, n)
	l.items = slices.Grow(l.items, grown-len(l.items))
}

func (l *List[T]) removeAt(i int) {
	l.items = slices.Delete(l.items, i, i+1)
}
