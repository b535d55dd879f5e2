package tablestate

import "sort"

// RowSelection is the set of selected row ids. It is keyed by row identity,
// never by position, so it survives filtering, sorting, paging and refetches.
// Methods that change the set return a new set and leave the receiver intact.
type RowSelection map[string]bool

// IsSelected reports whether id is selected
func (s RowSelection) IsSelected(id string) bool {
	return s[id]
}

// Count returns the number of selected ids
func (s RowSelection) Count() int {
	n := 0
	for _, selected := range s {
		if selected {
			n++
		}
	}
	return n
}

// IDs returns the selected ids in ascending order
func (s RowSelection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id, selected := range s {
		if selected {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a copy holding only the selected ids
func (s RowSelection) Clone() RowSelection {
	out := make(RowSelection, len(s))
	for id, selected := range s {
		if selected {
			out[id] = true
		}
	}
	return out
}

// Select adds ids
func (s RowSelection) Select(ids ...string) RowSelection {
	out := s.Clone()
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Deselect removes ids
func (s RowSelection) Deselect(ids ...string) RowSelection {
	out := s.Clone()
	for _, id := range ids {
		delete(out, id)
	}
	return out
}

// Toggle flips the selection of id
func (s RowSelection) Toggle(id string) RowSelection {
	if s.IsSelected(id) {
		return s.Deselect(id)
	}
	return s.Select(id)
}

// SelectAll adds every id of a caller-supplied list, typically the rows
// currently visible. It never reaches rows outside that list.
func (s RowSelection) SelectAll(ids []string) RowSelection {
	return s.Select(ids...)
}

// AllSelected reports whether every id in ids is selected.
// It is false for an empty list.
func (s RowSelection) AllSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s[id] {
			return false
		}
	}
	return true
}

// Equal reports whether both sets select the same ids
func (s RowSelection) Equal(other RowSelection) bool {
	if s.Count() != other.Count() {
		return false
	}
	for id, selected := range s {
		if selected && !other[id] {
			return false
		}
	}
	return true
}
