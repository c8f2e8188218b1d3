package netex

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrConflict is returned when two different entities claim the same id.
var ErrConflict = errors.New("conflicting entity")

// Set holds parsed entities, indexed by id and grouped by kind in insertion order.
// A Set is not safe for concurrent writes.
type Set struct {
	all    map[ID]Entity
	byKind map[Kind][]Entity
}

func NewSet() *Set {
	return &Set{
		all:    map[ID]Entity{},
		byKind: map[Kind][]Entity{},
	}
}

// Add stores e. Re-adding an identical entity is a no-op; a different entity under the same
// id is an ErrConflict.
func (s *Set) Add(e Entity) error {
	id := e.EntityID()
	if existing, ok := s.all[id]; ok {
		if existing == e || Fingerprint(existing) == Fingerprint(e) {
			return nil
		}
		return fmt.Errorf("%w: %s %s", ErrConflict, e.Kind(), id)
	}
	s.all[id] = e
	s.byKind[e.Kind()] = append(s.byKind[e.Kind()], e)
	return nil
}

// Merge adds every entity of other, in its kind order.
func (s *Set) Merge(other *Set) error {
	if other == nil {
		return nil
	}
	for _, k := range other.Kinds() {
		for _, e := range other.byKind[k] {
			if err := s.Add(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) Get(id ID) (Entity, bool) {
	e, ok := s.all[id]
	return e, ok
}

// OfKind returns the entities of kind k in insertion order. The slice must not be modified.
func (s *Set) OfKind(k Kind) []Entity {
	return s.byKind[k]
}

func (s *Set) Len() int { return len(s.all) }

// Kinds lists the kinds present, sorted.
func (s *Set) Kinds() []Kind {
	return slices.Sorted(maps.Keys(s.byKind))
}

func (s *Set) Counts() map[Kind]int {
	out := make(map[Kind]int, len(s.byKind))
	for k, es := range s.byKind {
		out[k] = len(es)
	}
	return out
}

// Each visits entities kind by kind until fn returns false.
func (s *Set) Each(fn func(Entity) bool) {
	for _, k := range s.Kinds() {
		for _, e := range s.byKind[k] {
			if !fn(e) {
				return
			}
		}
	}
}

// Lookup finds id and asserts its concrete type.
func Lookup[E Entity](s *Set, id ID) (E, bool) {
	var zero E
	e, ok := s.all[id]
	if !ok {
		return zero, false
	}
	typed, ok := e.(E)
	return typed, ok
}

// All returns every entity of kind k as E, skipping any of another concrete type.
func All[E Entity](s *Set, k Kind) []E {
	src := s.byKind[k]
	out := make([]E, 0, len(src))
	for _, e := range src {
		if typed, ok := e.(E); ok {
			out = append(out, typed)
		}
	}
	return out
}
