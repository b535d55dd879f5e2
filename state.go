package tablestate

import "reflect"

// ColumnVisibility maps a column id to its visibility. Missing ids are visible.
type ColumnVisibility map[string]bool

// IsVisible reports whether a column is shown
func (v ColumnVisibility) IsVisible(id string) bool {
	visible, ok := v[id]
	return !ok || visible
}

// Clone returns a copy
func (v ColumnVisibility) Clone() ColumnVisibility {
	out := make(ColumnVisibility, len(v))
	for k, visible := range v {
		out[k] = visible
	}
	return out
}

// State is the full tuple of table state. The slices compose; none of them
// is a mode that excludes another.
type State struct {
	GlobalFilter     string
	ColumnFilters    ColumnFilters
	Sorting          Sorting
	Pagination       Pagination
	RowSelection     RowSelection
	ColumnVisibility ColumnVisibility
}

// Clone returns a deep copy of the state maps and slices
func (s State) Clone() State {
	return State{
		GlobalFilter:     s.GlobalFilter,
		ColumnFilters:    s.ColumnFilters.Clone(),
		Sorting:          s.Sorting.Clone(),
		Pagination:       s.Pagination,
		RowSelection:     s.RowSelection.Clone(),
		ColumnVisibility: s.ColumnVisibility.Clone(),
	}
}

// Equal reports whether two states describe the same table
func (s State) Equal(other State) bool {
	return s.GlobalFilter == other.GlobalFilter &&
		reflect.DeepEqual(s.ColumnFilters.Active(), other.ColumnFilters.Active()) &&
		sortingEqual(s.Sorting, other.Sorting) &&
		s.Pagination == other.Pagination &&
		s.RowSelection.Equal(other.RowSelection) &&
		reflect.DeepEqual(s.ColumnVisibility.Clone(), other.ColumnVisibility.Clone())
}

// StateChange reports the slices changed by one transition.
// A nil field was not touched.
type StateChange struct {
	GlobalFilter     *string
	ColumnFilters    ColumnFilters
	Sorting          Sorting
	Pagination       *Pagination
	RowSelection     RowSelection
	ColumnVisibility ColumnVisibility
}

// IsEmpty reports whether nothing changed
func (c StateChange) IsEmpty() bool {
	return c.GlobalFilter == nil && c.ColumnFilters == nil && c.Sorting == nil &&
		c.Pagination == nil && c.RowSelection == nil && c.ColumnVisibility == nil
}

func sortingEqual(a, b Sorting) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
