package tablestate

import (
	"fmt"
	"slices"
	"strings"
)

// SortDescriptor orders rows by one column
type SortDescriptor struct {
	Column string
	Desc   bool
}

// String returns "column:asc" or "column:desc"
func (d SortDescriptor) String() string {
	if d.Desc {
		return d.Column + ":desc"
	}
	return d.Column + ":asc"
}

// Sorting is an ordered list of descriptors; the first one is the primary key
type Sorting []SortDescriptor

// Clone returns a copy
func (s Sorting) Clone() Sorting {
	if s == nil {
		return Sorting{}
	}
	return append(Sorting{}, s...)
}

// Find returns the descriptor for a column and its priority
func (s Sorting) Find(column string) (SortDescriptor, int, bool) {
	for i, d := range s {
		if d.Column == column {
			return d, i, true
		}
	}
	return SortDescriptor{}, -1, false
}

// String returns the descriptors joined by commas
func (s Sorting) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// ParseSortDescriptor parses "column", "column:asc" or "column:desc"
func ParseSortDescriptor(s string) (SortDescriptor, error) {
	column, dir, found := strings.Cut(strings.TrimSpace(s), ":")
	if column == "" {
		return SortDescriptor{}, fmt.Errorf("empty sort column in %q", s)
	}
	if !found {
		return SortDescriptor{Column: column}, nil
	}

	switch strings.ToLower(dir) {
	case "asc":
		return SortDescriptor{Column: column}, nil
	case "desc":
		return SortDescriptor{Column: column, Desc: true}, nil
	default:
		return SortDescriptor{}, fmt.Errorf("invalid sort direction %q for column %q", dir, column)
	}
}

// Sort returns a new slice ordered by the descriptors. The sort is stable:
// rows that compare equal under every descriptor keep their input order.
// Descriptors naming unknown or accessor-less columns are skipped.
func (p *Pipeline[T]) Sort(rows []T, sorting Sorting) []T {
	return pick(rows, p.sortIndices(rows, allIndices(len(rows)), sorting))
}

// sortIndices stably orders positions into rows and returns a new slice
func (p *Pipeline[T]) sortIndices(rows []T, indices []int, sorting Sorting) []int {
	sorted := slices.Clone(indices)
	if sorted == nil {
		sorted = []int{}
	}

	type key struct {
		accessor func(T) any
		compare  CompareFunc
		desc     bool
	}
	keys := make([]key, 0, len(sorting))
	for _, d := range sorting {
		col, ok := p.columns.get(d.Column)
		if !ok || col.Accessor == nil {
			continue
		}
		keys = append(keys, key{accessor: col.Accessor, compare: col.comparator(), desc: d.Desc})
	}
	if len(keys) == 0 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(i, j int) int {
		a, b := rows[i], rows[j]
		for _, k := range keys {
			c := k.compare(k.accessor(a), k.accessor(b))
			if c == 0 {
				continue
			}
			if k.desc {
				return -c
			}
			return c
		}
		return 0
	})
	return sorted
}
