package store

import "github.com/google/uuid"

// table is the committed state of one entity kind. order keeps insertion
// order so listings are deterministic.
type table[T any] struct {
	rows  map[uuid.UUID]T
	order []uuid.UUID
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T]{rows: map[uuid.UUID]T{}, clone: clone}
}

// staged overlays uncommitted writes on top of a table.
type staged[T any] struct {
	base   *table[T]
	writes map[uuid.UUID]T
	order  []uuid.UUID
}

func newStaged[T any](base *table[T]) *staged[T] {
	return &staged[T]{base: base, writes: map[uuid.UUID]T{}}
}

func (s *staged[T]) get(id uuid.UUID) (T, bool) {
	if v, ok := s.writes[id]; ok {
		return s.base.clone(v), true
	}
	v, ok := s.base.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.base.clone(v), true
}

// original returns the committed value, ignoring staged writes.
func (s *staged[T]) original(id uuid.UUID) (T, bool) {
	v, ok := s.base.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.base.clone(v), true
}

func (s *staged[T]) put(id uuid.UUID, v T) {
	if _, ok := s.writes[id]; !ok {
		s.order = append(s.order, id)
	}
	s.writes[id] = s.base.clone(v)
}

func (s *staged[T]) all() []T {
	out := make([]T, 0, len(s.base.rows)+len(s.writes))
	for _, id := range s.base.order {
		if w, ok := s.writes[id]; ok {
			out = append(out, s.base.clone(w))
			continue
		}
		out = append(out, s.base.clone(s.base.rows[id]))
	}
	for _, id := range s.order {
		if _, exists := s.base.rows[id]; !exists {
			out = append(out, s.base.clone(s.writes[id]))
		}
	}
	return out
}

// pending returns staged values in write order.
func (s *staged[T]) pending() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.base.clone(s.writes[id]))
	}
	return out
}

func (s *staged[T]) apply() {
	for _, id := range s.order {
		if _, exists := s.base.rows[id]; !exists {
			s.base.order = append(s.base.order, id)
		}
		s.base.rows[id] = s.writes[id]
	}
}
