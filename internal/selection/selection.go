// Package selection tracks which failed library items are marked for a follow-up action.
//
// A [Set] holds the current universe of item IDs (in display order) and the selected subset.
// It has a single owner and is not safe for concurrent use.
package selection

// Set is the selection state for one screen session.
type Set struct {
	universe []int64
	members  map[int64]struct{}
	selected map[int64]struct{}

	// OnChange, when set, is called after every mutation that changes the selection.
	OnChange func()
}

// New creates a Set over universe with nothing selected.
func New(universe []int64) *Set {
	s := &Set{selected: make(map[int64]struct{})}
	s.setUniverse(universe)
	return s
}

// SetUniverse replaces the current universe and prunes selected IDs that are no longer part of it.
func (s *Set) SetUniverse(universe []int64) {
	s.setUniverse(universe)

	changed := false
	for id := range s.selected {
		if _, ok := s.members[id]; !ok {
			delete(s.selected, id)
			changed = true
		}
	}
	if changed {
		s.notify()
	}
}

// Universe returns a copy of the current universe in display order.
func (s *Set) Universe() []int64 {
	return append([]int64(nil), s.universe...)
}

// Toggle flips the membership of id. IDs outside the universe are ignored.
func (s *Set) Toggle(id int64) {
	if _, ok := s.members[id]; !ok {
		return
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	s.notify()
}

// SelectAll makes the selection exactly universe.
func (s *Set) SelectAll(universe []int64) {
	next := make(map[int64]struct{}, len(universe))
	for _, id := range universe {
		next[id] = struct{}{}
	}
	s.replace(next)
}

// ClearAll empties the selection.
func (s *Set) ClearAll() {
	s.replace(make(map[int64]struct{}))
}

// Invert replaces the selection with universe minus the current selection.
func (s *Set) Invert(universe []int64) {
	next := make(map[int64]struct{}, len(universe))
	for _, id := range universe {
		if _, ok := s.selected[id]; !ok {
			next[id] = struct{}{}
		}
	}
	s.replace(next)
}

// ToggleAll clears the selection when every ID in universe is selected and selects all of universe otherwise.
func (s *Set) ToggleAll(universe []int64) {
	for _, id := range universe {
		if _, ok := s.selected[id]; !ok {
			s.SelectAll(universe)
			return
		}
	}
	s.ClearAll()
}

// IsSelected reports whether id is selected.
func (s *Set) IsSelected(id int64) bool {
	_, ok := s.selected[id]
	return ok
}

// Len returns the number of selected IDs.
func (s *Set) Len() int {
	return len(s.selected)
}

// Selected returns the selected IDs in universe order.
func (s *Set) Selected() []int64 {
	ids := make([]int64, 0, len(s.selected))
	for _, id := range s.universe {
		if _, ok := s.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Set) setUniverse(universe []int64) {
	s.universe = s.universe[:0]
	s.members = make(map[int64]struct{}, len(universe))
	for _, id := range universe {
		if _, dup := s.members[id]; dup {
			continue
		}
		s.members[id] = struct{}{}
		s.universe = append(s.universe, id)
	}
}

func (s *Set) replace(next map[int64]struct{}) {
	changed := len(next) != len(s.selected)
	if !changed {
		for id := range next {
			if _, ok := s.selected[id]; !ok {
				changed = true
				break
			}
		}
	}
	s.selected = next
	if changed {
		s.notify()
	}
}

func (s *Set) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
