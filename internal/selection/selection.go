// Package selection tracks the set of table rows marked for a bulk action.
// Membership is insertion-ordered so bulk operations run in the order the user
// picked rows, and removal never reorders the remainder.
package selection

// Set is an insertion-ordered set of row identifiers. IDs may belong to rows
// outside the currently visible page; selection survives page changes.
type Set struct {
	ids   []int64
	index map[int64]struct{}
}

func NewSet() *Set {
	return &Set{index: make(map[int64]struct{})}
}

// FromIDs builds a set from ids in order, dropping duplicates.
func FromIDs(ids []int64) *Set {
	s := NewSet()
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.ids = append(s.ids, id)
		s.index[id] = struct{}{}
	}
	return s
}

// Toggle flips membership of one row.
func (s *Set) Toggle(id int64) {
	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, existing := range s.ids {
			if existing == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// SetAll selects every given row when on is true and clears the set otherwise.
// Select-all is collection-scoped: callers pass the full row collection, not
// just the visible page.
func (s *Set) SetAll(on bool, ids []int64) {
	s.Clear()
	if !on {
		return
	}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.ids = append(s.ids, id)
		s.index[id] = struct{}{}
	}
}

func (s *Set) Clear() {
	s.ids = nil
	s.index = make(map[int64]struct{})
}

func (s *Set) Contains(id int64) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the members in insertion order.
func (s *Set) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// CanEdit gates the edit action: exactly one row selected.
func (s *Set) CanEdit() bool {
	return len(s.ids) == 1
}

// CanDelete gates the delete action: at least one row selected.
func (s *Set) CanDelete() bool {
	return len(s.ids) >= 1
}
