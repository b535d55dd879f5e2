package tablestate

import "fmt"

// Status is the fetch condition of a table's data
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// LoadResult carries the outcome of a host fetch into a Table.
// Rows is meaningful only when Status is StatusReady, Err only when
// Status is StatusFailed.
type LoadResult[T any] struct {
	Status Status
	Rows   []T
	Err    error
}

// Loading returns a result for a fetch in flight
func Loading[T any]() LoadResult[T] {
	return LoadResult[T]{Status: StatusLoading}
}

// Loaded returns a successful result
func Loaded[T any](rows []T) LoadResult[T] {
	return LoadResult[T]{Status: StatusReady, Rows: rows}
}

// Failed returns a failed result
func Failed[T any](err error) LoadResult[T] {
	return LoadResult[T]{Status: StatusFailed, Err: err}
}
