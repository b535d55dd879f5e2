package tablestate

import (
	"reflect"
	"strings"
	"time"
)

// FilterFunc decides whether a column value passes an active column filter.
// value is the column accessor output, filterValue the value stored in
// ColumnFilters for that column.
type FilterFunc func(value, filterValue any) bool

// IsActiveFilterValue reports whether a column filter value constrains rows.
// nil, the empty string and empty slices or maps are inactive.
func IsActiveFilterValue(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// FilterAuto is the default column filter: a string filter value matches as a
// case-insensitive substring of the formatted value, anything else by equality.
func FilterAuto(value, filterValue any) bool {
	if s, ok := filterValue.(string); ok {
		return FilterContains(value, s)
	}
	return compareEqual(value, filterValue)
}

// FilterContains matches when the formatted value contains the formatted
// filter value, ignoring case.
func FilterContains(value, filterValue any) bool {
	needle := strings.ToLower(strings.TrimSpace(formatValue(filterValue)))
	return strings.Contains(strings.ToLower(formatValue(value)), needle)
}

// FilterEquals matches equal values; numbers compare across numeric kinds.
func FilterEquals(value, filterValue any) bool {
	return compareEqual(value, filterValue)
}

// FilterNotEquals is the negation of FilterEquals.
func FilterNotEquals(value, filterValue any) bool {
	return !compareEqual(value, filterValue)
}

// FilterGreater matches value > filterValue for numbers and times.
func FilterGreater(value, filterValue any) bool {
	c, ok := orderedCompare(value, filterValue)
	return ok && c > 0
}

// FilterGreaterEqual matches value >= filterValue for numbers and times.
func FilterGreaterEqual(value, filterValue any) bool {
	c, ok := orderedCompare(value, filterValue)
	return ok && c >= 0
}

// FilterLess matches value < filterValue for numbers and times.
func FilterLess(value, filterValue any) bool {
	c, ok := orderedCompare(value, filterValue)
	return ok && c < 0
}

// FilterLessEqual matches value <= filterValue for numbers and times.
func FilterLessEqual(value, filterValue any) bool {
	c, ok := orderedCompare(value, filterValue)
	return ok && c <= 0
}

// FilterIn matches when value equals any member of filterValue,
// which must be a []any or []string.
func FilterIn(value, filterValue any) bool {
	switch list := filterValue.(type) {
	case []any:
		for _, item := range list {
			if compareEqual(value, item) {
				return true
			}
		}
	case []string:
		for _, item := range list {
			if compareEqual(value, item) {
				return true
			}
		}
	}
	return false
}

// FilterBetween matches min <= value <= max where filterValue is a [2]any or
// a two-element []any. A nil bound leaves that side open.
func FilterBetween(value, filterValue any) bool {
	var lo, hi any

	switch v := filterValue.(type) {
	case [2]any:
		lo, hi = v[0], v[1]
	case []any:
		if len(v) != 2 {
			return false
		}
		lo, hi = v[0], v[1]
	default:
		return false
	}

	if lo != nil && !FilterGreaterEqual(value, lo) {
		return false
	}
	if hi != nil && !FilterLessEqual(value, hi) {
		return false
	}
	return lo != nil || hi != nil
}

// orderedCompare compares values that have a natural order.
// ok is false when the pair is not comparable (e.g. a string against a number).
func orderedCompare(a, b any) (int, bool) {
	if isNumeric(a) && isNumeric(b) {
		return CompareValues(a, b), true
	}
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Compare(bt), true
	}
	return 0, false
}
