// Package pinring keeps a bounded, insertion ordered set of strong references.
//
// The ring exists only to keep recently pooled instances reachable. Index 0 is
// the most recently pushed item; eviction always happens from the back.
package pinring

import "slices"

// Ring holds up to Capacity strong references, most recent first.
// Items are compared with ==, so for pointer (or interface wrapping a pointer)
// types equality is identity. A Ring is not safe for concurrent use.
type Ring[T comparable] struct {
	items    []T
	capacity int
}

// New creates a ring with the given capacity. Negative values are treated as 0.
func New[T comparable](capacity int) *Ring[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring[T]{capacity: capacity}
}

// Capacity returns the configured maximum number of pinned items.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// SetCapacity changes the capacity and evicts from the back until the ring
// fits. It returns the number of evicted items.
func (r *Ring[T]) SetCapacity(capacity int) int {
	if capacity < 0 {
		capacity = 0
	}
	r.capacity = capacity
	return r.evictOverflow()
}

// PushFront inserts item at the front. An existing occurrence of the same item
// is removed first so the item moves to the front instead of being duplicated.
// With a zero capacity nothing is pinned. It returns the number of items
// evicted from the back.
func (r *Ring[T]) PushFront(item T) int {
	if r.capacity == 0 {
		return 0
	}
	r.Remove(item)
	r.items = slices.Insert(r.items, 0, item)
	return r.evictOverflow()
}

// Remove drops item from the ring, reporting whether it was present.
func (r *Ring[T]) Remove(item T) bool {
	i := slices.Index(r.items, item)
	if i < 0 {
		return false
	}
	r.items = slices.Delete(r.items, i, i+1)
	return true
}

// Contains reports whether item is currently pinned.
func (r *Ring[T]) Contains(item T) bool {
	return slices.Contains(r.items, item)
}

// Len returns the number of pinned items.
func (r *Ring[T]) Len() int {
	return len(r.items)
}

// Items returns a copy of the pinned items, most recent first.
func (r *Ring[T]) Items() []T {
	return slices.Clone(r.items)
}

func (r *Ring[T]) evictOverflow() int {
	overflow := len(r.items) - r.capacity
	if overflow <= 0 {
		return 0
	}
	// clear the tail so evicted references are released
	var zero T
	for i := r.capacity; i < len(r.items); i++ {
		r.items[i] = zero
	}
	r.items = r.items[:r.capacity]
	return overflow
}
