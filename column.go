package tablestate

import "fmt"

// Column describes one column of a table. Columns are configuration:
// they are validated once when the Controller is built and never change.
type Column[T any] struct {
	ID     string // Unique column id, used as key in sorting, filters and visibility
	Header string // Display header; defaults to ID

	// Accessor extracts the column value from a row. A column without an
	// accessor is display-only: it cannot be sorted, its filters never match
	// and it does not contribute to the searchable text.
	Accessor func(row T) any

	Compare CompareFunc // Sort comparator (default: CompareValues)
	Filter  FilterFunc  // Column filter predicate (default: FilterAuto)

	Hidden           bool // Initially hidden
	DisableSorting   bool
	DisableFiltering bool
	DisableSearch    bool // Excluded from the default searchable text
}

// Title returns the display header
func (c Column[T]) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

func (c Column[T]) comparator() CompareFunc {
	if c.Compare != nil {
		return c.Compare
	}
	return CompareValues
}

func (c Column[T]) filter() FilterFunc {
	if c.Filter != nil {
		return c.Filter
	}
	return FilterAuto
}

// columnSet is the validated, indexed form of a column list
type columnSet[T any] struct {
	list  []Column[T]
	index map[string]int
}

func newColumnSet[T any](columns []Column[T]) (*columnSet[T], error) {
	set := &columnSet[T]{
		list:  make([]Column[T], len(columns)),
		index: make(map[string]int, len(columns)),
	}
	copy(set.list, columns)

	for i, col := range set.list {
		if col.ID == "" {
			return nil, fmt.Errorf("%w: empty id at position %d", ErrInvalidColumn, i)
		}
		if _, exists := set.index[col.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.ID)
		}
		set.index[col.ID] = i
	}
	return set, nil
}

func (s *columnSet[T]) get(id string) (Column[T], bool) {
	i, ok := s.index[id]
	if !ok {
		return Column[T]{}, false
	}
	return s.list[i], true
}

// checkSortable verifies that a sort descriptor can be applied
func (s *columnSet[T]) checkSortable(id string) error {
	col, ok := s.get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	if col.Accessor == nil {
		return fmt.Errorf("%w: %q", ErrMissingAccessor, id)
	}
	if col.DisableSorting {
		return fmt.Errorf("%w: %q", ErrNotSortable, id)
	}
	return nil
}

// checkFilterable verifies that a column filter can be stored
func (s *columnSet[T]) checkFilterable(id string) error {
	col, ok := s.get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	if col.Accessor == nil {
		return fmt.Errorf("%w: %q", ErrMissingAccessor, id)
	}
	if col.DisableFiltering {
		return fmt.Errorf("%w: %q", ErrNotFilterable, id)
	}
	return nil
}
