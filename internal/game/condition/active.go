package condition

// Set tracks the afflictions currently affecting one actor in one duel.
// Afflictions do not stack; applying one twice has no further effect.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	order []Affliction
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Apply adds a to the set.
//
// Postcondition: Has(a) is true; returns true only when a was newly added.
func (s *Set) Apply(a Affliction) bool {
	if s.Has(a) {
		return false
	}
	s.order = append(s.order, a)
	return true
}

// Cure removes a from the set.
//
// Postcondition: Has(a) is false; returns true only when a was present.
func (s *Set) Cure(a Affliction) bool {
	for i, have := range s.order {
		if have == a {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether a is active.
func (s *Set) Has(a Affliction) bool {
	for _, have := range s.order {
		if have == a {
			return true
		}
	}
	return false
}

// All returns the active afflictions in the order they were applied.
func (s *Set) All() []Affliction {
	out := make([]Affliction, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of active afflictions.
func (s *Set) Len() int {
	return len(s.order)
}
