// Package urlstate stores table state in URL query parameters so that a view
// can be bookmarked, shared and restored.
//
// Parameters:
//
//	q       global filter
//	sort    sort descriptors, "amount:desc,created:asc"
//	page    0-based page index
//	size    page size
//	f.<id>  string filter of column <id>
//	sel     selected row ids, comma separated
//	hide    hidden column ids, comma separated
//
// Slices at their zero value are omitted. Only string column filters are
// encoded; typed filters are the host's business.
package urlstate

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	tablestate "github.com/ideamans/go-tablestate"
)

const (
	KeyGlobalFilter = "q"
	KeySort         = "sort"
	KeyPage         = "page"
	KeySize         = "size"
	KeySelection    = "sel"
	KeyHidden       = "hide"

	FilterPrefix = "f."
)

// ErrMalformed is returned when a parameter cannot be decoded
var ErrMalformed = errors.New("malformed table state parameter")

// Encode converts a state to query values
func Encode(s tablestate.State) url.Values {
	v := url.Values{}
	setGlobalFilter(v, s.GlobalFilter)
	setColumnFilters(v, s.ColumnFilters)
	setSorting(v, s.Sorting)
	setPagination(v, s.Pagination)
	setSelection(v, s.RowSelection)
	setVisibility(v, s.ColumnVisibility)
	return v
}

// Query returns the canonical query string of a state
func Query(s tablestate.State) string {
	return Encode(s).Encode()
}

// Apply updates the parameters touched by a state change and leaves the
// others, including parameters unrelated to the table, as they are.
// It is meant to be called from an OnStateChange observer.
func Apply(v url.Values, change tablestate.StateChange) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}

	if change.GlobalFilter != nil {
		setGlobalFilter(out, *change.GlobalFilter)
	}
	if change.ColumnFilters != nil {
		for k := range out {
			if strings.HasPrefix(k, FilterPrefix) {
				out.Del(k)
			}
		}
		setColumnFilters(out, change.ColumnFilters)
	}
	if change.Sorting != nil {
		setSorting(out, change.Sorting)
	}
	if change.Pagination != nil {
		setPagination(out, *change.Pagination)
	}
	if change.RowSelection != nil {
		setSelection(out, change.RowSelection)
	}
	if change.ColumnVisibility != nil {
		setVisibility(out, change.ColumnVisibility)
	}
	return out
}

// Decode reads a state from query values. Parameters that are absent leave
// the corresponding slice at its zero value; unknown parameters are ignored.
// Column ids are not checked here; Controller.Restore validates them.
func Decode(v url.Values) (tablestate.State, error) {
	s := tablestate.State{
		GlobalFilter:     v.Get(KeyGlobalFilter),
		ColumnFilters:    tablestate.ColumnFilters{},
		Sorting:          tablestate.Sorting{},
		RowSelection:     tablestate.RowSelection{},
		ColumnVisibility: tablestate.ColumnVisibility{},
	}

	for k, vals := range v {
		if !strings.HasPrefix(k, FilterPrefix) || len(vals) == 0 {
			continue
		}
		id := strings.TrimPrefix(k, FilterPrefix)
		if id == "" {
			return tablestate.State{}, fmt.Errorf("%w: empty filter column", ErrMalformed)
		}
		if vals[0] != "" {
			s.ColumnFilters[id] = vals[0]
		}
	}

	for _, part := range splitList(v.Get(KeySort)) {
		d, err := tablestate.ParseSortDescriptor(part)
		if err != nil {
			return tablestate.State{}, fmt.Errorf("%w: %s: %v", ErrMalformed, KeySort, err)
		}
		s.Sorting = append(s.Sorting, d)
	}

	var err error
	if s.Pagination.PageIndex, err = parseInt(v, KeyPage, 0); err != nil {
		return tablestate.State{}, err
	}
	if s.Pagination.PageSize, err = parseInt(v, KeySize, 1); err != nil {
		return tablestate.State{}, err
	}

	for _, id := range splitList(v.Get(KeySelection)) {
		s.RowSelection[id] = true
	}
	for _, id := range splitList(v.Get(KeyHidden)) {
		s.ColumnVisibility[id] = false
	}

	return s, nil
}

func setGlobalFilter(v url.Values, value string) {
	if value == "" {
		v.Del(KeyGlobalFilter)
		return
	}
	v.Set(KeyGlobalFilter, value)
}

func setColumnFilters(v url.Values, filters tablestate.ColumnFilters) {
	for id, value := range filters {
		s, ok := value.(string)
		if !ok || !tablestate.IsActiveFilterValue(s) {
			continue
		}
		v.Set(FilterPrefix+id, s)
	}
}

func setSorting(v url.Values, sorting tablestate.Sorting) {
	if len(sorting) == 0 {
		v.Del(KeySort)
		return
	}
	v.Set(KeySort, sorting.String())
}

func setPagination(v url.Values, p tablestate.Pagination) {
	if p.PageIndex > 0 {
		v.Set(KeyPage, strconv.Itoa(p.PageIndex))
	} else {
		v.Del(KeyPage)
	}
	if p.PageSize > 0 {
		v.Set(KeySize, strconv.Itoa(p.PageSize))
	} else {
		v.Del(KeySize)
	}
}

func setSelection(v url.Values, selection tablestate.RowSelection) {
	if selection.Count() == 0 {
		v.Del(KeySelection)
		return
	}
	v.Set(KeySelection, strings.Join(selection.IDs(), ","))
}

func setVisibility(v url.Values, visibility tablestate.ColumnVisibility) {
	hidden := make([]string, 0, len(visibility))
	for id, visible := range visibility {
		if !visible {
			hidden = append(hidden, id)
		}
	}
	if len(hidden) == 0 {
		v.Del(KeyHidden)
		return
	}
	sort.Strings(hidden)
	v.Set(KeyHidden, strings.Join(hidden, ","))
}

// parseInt reads an optional integer parameter that must be at least lowest
func parseInt(v url.Values, key string, lowest int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lowest {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformed, key, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
