package tablestate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is a spreadsheet-shaped row: column name to cell value.
// Sources produce records and RecordColumns exposes them to a Controller.
type Record struct {
	Key    int            // 行番号 (2から始まる、1行目はカラム定義)
	Values map[string]any // カラム名と値のマップ
}

// Get returns the raw value of a column, nil when absent
func (r *Record) Get(col string) any {
	if r == nil {
		return nil
	}
	return r.Values[col]
}

// Clone returns a copy with its own value map
func (r *Record) Clone() *Record {
	out := &Record{Key: r.Key, Values: make(map[string]any, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// GetAsString returns the value as string or defaultValue if not found
func (r *Record) GetAsString(col string, defaultValue string) string {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return formatValue(val)
	}
}

// GetAsInt64 returns the value as int64 or defaultValue if not found
func (r *Record) GetAsInt64(col string, defaultValue int64) int64 {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	if isNumeric(v) {
		return int64(toFloat64(v))
	}
	if s, ok := v.(string); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

// GetAsFloat64 returns the value as float64 or defaultValue if not found
func (r *Record) GetAsFloat64(col string, defaultValue float64) float64 {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	if isNumeric(v) {
		return toFloat64(v)
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetAsStrings returns the value as []string or defaultValue if not found
func (r *Record) GetAsStrings(col string, defaultValue []string) []string {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case []string:
		return val
	case string:
		if val == "" {
			return []string{}
		}
		return strings.Split(val, ",")
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result
	}
	return defaultValue
}

// GetAsBool returns the value as bool or defaultValue if not found
func (r *Record) GetAsBool(col string, defaultValue bool) bool {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "TRUE" || val == "1"
	default:
		if isNumeric(val) {
			return toFloat64(val) != 0
		}
	}
	return defaultValue
}

// GetAsTime returns the value as time.Time or defaultValue if not found
func (r *Record) GetAsTime(col string, defaultValue time.Time) time.Time {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		if t, ok := parseTime(val); ok {
			return t
		}
	}
	return defaultValue
}

// parseTime tries the layouts commonly found in sheet cells
func parseTime(s string) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Set stores a value; nil removes the column
func (r *Record) Set(col string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if value == nil {
		delete(r.Values, col)
		return
	}
	r.Values[col] = value
}

// SetStrings sets a []string value (stored as comma-separated string)
func (r *Record) SetStrings(col string, value []string) {
	r.Set(col, strings.Join(value, ","))
}

// SetTime sets a time.Time value (stored as ISO 8601 string)
func (r *Record) SetTime(col string, value time.Time) {
	r.Set(col, value.Format(time.RFC3339))
}

// RecordColumns builds one column per schema entry. Values that look like
// dates are compared chronologically.
func RecordColumns(schema []string) []Column[*Record] {
	columns := make([]Column[*Record], 0, len(schema))
	for _, name := range schema {
		if name == "" {
			continue
		}
		col := name
		columns = append(columns, Column[*Record]{
			ID:       col,
			Header:   col,
			Accessor: func(r *Record) any { return r.Get(col) },
			Compare:  compareRecordValues,
		})
	}
	return columns
}

// compareRecordValues orders sheet cells, treating date strings as times
func compareRecordValues(a, b any) int {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		at, aTime := parseTime(as)
		bt, bTime := parseTime(bs)
		if aTime && bTime {
			return at.Compare(bt)
		}
	}
	return CompareValues(a, b)
}

// RecordKeyID identifies a record by its sheet row number. It is stable
// only while rows are not inserted or deleted above it in the sheet.
func RecordKeyID(r *Record) string {
	return strconv.Itoa(r.Key)
}

// RecordFieldID identifies records by the value of an id column
func RecordFieldID(col string) func(*Record) string {
	return func(r *Record) string {
		return r.GetAsString(col, "")
	}
}

// RecordSchema returns the column names present in records, in first-seen
// order after the names of base
func RecordSchema(base []string, records []*Record) []string {
	schema := append([]string{}, base...)
	seen := make(map[string]bool, len(schema))
	for _, col := range schema {
		seen[col] = true
	}
	for _, r := range records {
		cols := make([]string, 0, len(r.Values))
		for col := range r.Values {
			if !seen[col] {
				cols = append(cols, col)
			}
		}
		// new columns of one record are appended in name order
		sort.Strings(cols)
		for _, col := range cols {
			seen[col] = true
			schema = append(schema, col)
		}
	}
	return schema
}
