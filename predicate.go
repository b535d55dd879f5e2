package tablestate

import "strings"

// ColumnFilters maps a column id to its filter value
type ColumnFilters map[string]any

// Clone returns a shallow copy
func (f ColumnFilters) Clone() ColumnFilters {
	out := make(ColumnFilters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Active returns the filters whose value constrains rows
func (f ColumnFilters) Active() ColumnFilters {
	out := make(ColumnFilters)
	for k, v := range f {
		if IsActiveFilterValue(v) {
			out[k] = v
		}
	}
	return out
}

// Pipeline is the stateless filter and sort engine for one column layout.
// All of its methods are pure: they never mutate the rows they are given.
type Pipeline[T any] struct {
	columns    *columnSet[T]
	searchText func(T) string
}

// NewPipeline validates the columns and builds a pipeline.
// searchText is optional; by default a row is searched through the formatted
// output of every column accessor not excluded with DisableSearch.
func NewPipeline[T any](columns []Column[T], searchText func(T) string) (*Pipeline[T], error) {
	set, err := newColumnSet(columns)
	if err != nil {
		return nil, err
	}
	return &Pipeline[T]{columns: set, searchText: searchText}, nil
}

// SearchText returns the searchable text projection of a row
func (p *Pipeline[T]) SearchText(row T) string {
	if p.searchText != nil {
		return p.searchText(row)
	}

	parts := make([]string, 0, len(p.columns.list))
	for _, col := range p.columns.list {
		if col.Accessor == nil || col.DisableSearch {
			continue
		}
		parts = append(parts, formatValue(col.Accessor(row)))
	}
	return strings.Join(parts, " ")
}

// Matches reports whether a row passes the global filter and every active
// column filter. A filter on a column that is unknown or has no accessor
// never matches.
func (p *Pipeline[T]) Matches(row T, globalFilter string, columnFilters ColumnFilters) bool {
	if term := strings.ToLower(strings.TrimSpace(globalFilter)); term != "" {
		if !strings.Contains(strings.ToLower(p.SearchText(row)), term) {
			return false
		}
	}

	// 全ての条件をANDで評価
	for id, filterValue := range columnFilters {
		if !IsActiveFilterValue(filterValue) {
			continue
		}
		col, ok := p.columns.get(id)
		if !ok || col.Accessor == nil {
			return false
		}
		if !col.filter()(col.Accessor(row), filterValue) {
			return false
		}
	}
	return true
}

// Filter returns the rows that match, preserving input order
func (p *Pipeline[T]) Filter(rows []T, globalFilter string, columnFilters ColumnFilters) []T {
	return pick(rows, p.filterIndices(rows, globalFilter, columnFilters))
}

// filterIndices returns the positions of matching rows in ascending order
func (p *Pipeline[T]) filterIndices(rows []T, globalFilter string, columnFilters ColumnFilters) []int {
	active := columnFilters.Active()
	indices := make([]int, 0, len(rows))
	for i, row := range rows {
		if p.Matches(row, globalFilter, active) {
			indices = append(indices, i)
		}
	}
	return indices
}

func pick[T any](rows []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = rows[idx]
	}
	return out
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
