package services

import "sort"

// TargetSet is a discount's product targets with set semantics. Two sets
// holding the same ids are equal whatever order the ids were stored in.
type TargetSet map[string]struct{}

// NewTargetSet builds a set from ids, ignoring duplicates.
func NewTargetSet(ids ...string) TargetSet {
	s := make(TargetSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s TargetSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports membership.
func (s TargetSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len is the number of distinct ids.
func (s TargetSet) Len() int { return len(s) }

// Equal reports whether s and o hold exactly the same ids.
func (s TargetSet) Equal(o TargetSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the ids in ascending order, the form targets are stored in.
func (s TargetSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
