// Package denylist records identifiers that must never be pooled again.
package denylist

// Set is a grow-only set of ids. There is intentionally no removal.
// A Set is not safe for concurrent use.
type Set[K comparable] struct {
	ids map[K]struct{}
}

// New returns an empty set.
func New[K comparable]() *Set[K] {
	return &Set[K]{ids: make(map[K]struct{})}
}

// Mark adds id to the set. Marking the same id twice is a no-op.
func (s *Set[K]) Mark(id K) {
	s.ids[id] = struct{}{}
}

// Contains reports whether id was marked.
func (s *Set[K]) Contains(id K) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of marked ids.
func (s *Set[K]) Len() int {
	return len(s.ids)
}
