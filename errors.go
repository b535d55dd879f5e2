package tablestate

import "errors"

var (
	ErrInvalidColumn   = errors.New("invalid column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrMissingAccessor = errors.New("column has no accessor")
	ErrNotSortable     = errors.New("column is not sortable")
	ErrNotFilterable   = errors.New("column is not filterable")
	ErrDuplicateRowID  = errors.New("duplicate row id")
	ErrUnknownRow      = errors.New("unknown row id")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrInvalidConfig   = errors.New("invalid config")

	// ErrNotReady is returned by Table intents while data is loading or failed.
	ErrNotReady       = errors.New("table is not ready")
	ErrUnknownAction  = errors.New("unknown action")
	ErrActionDisabled = errors.New("action is disabled for the current selection")
	ErrNoRetry        = errors.New("no retry handler configured")
)
