package tablestate

import "fmt"

// Action is a bulk operation offered for the selected rows
type Action[T any] struct {
	Label string

	// Enabled decides whether the action applies to the selection.
	// When nil the action is enabled whenever at least one row is selected.
	Enabled func(selected []T) bool

	Handler func(selected []T) error
}

func (a Action[T]) enabled(selected []T) bool {
	if a.Enabled != nil {
		return a.Enabled(selected)
	}
	return len(selected) > 0
}

// ActionState is an action as presented for the current selection
type ActionState struct {
	Label   string
	Enabled bool
}

// TableOptions configures a Table
type TableOptions[T any] struct {
	Actions []Action[T]
	OnRetry func() // Invoked by Retry; the host re-runs its fetch
}

// View is everything a presentation layer needs for one render
type View[T any] struct {
	Status Status
	Err    error

	Rows      []T      // Rows of the current page
	RowIDs    []string // Ids of Rows, same order
	PageIndex int
	PageSize  int
	PageCount int
	TotalRows int // Rows passing the filters, across all pages
	HasNext   bool
	HasPrev   bool

	HasActiveFilters bool
	HasSelection     bool
	SelectedRowCount int
	SelectedRows     []T
	PageSelected     bool // Every row of the current page is selected

	// IsEmpty means the dataset has no rows at all; NoMatches means it has
	// rows but none pass the filters.
	IsEmpty   bool
	NoMatches bool

	Columns         []Column[T]
	Sorting         Sorting
	GlobalFilter    string
	ColumnFilters   ColumnFilters
	PageSizeOptions []int
	Actions         []ActionState
}

// Table composes a Controller with the fetch status supplied by the host
// and turns user intents into controller transitions.
type Table[T any] struct {
	ctrl    *Controller[T]
	status  Status
	err     error
	actions []Action[T]
	onRetry func()
}

// NewTable creates a table in the loading state
func NewTable[T any](ctrl *Controller[T], opts TableOptions[T]) *Table[T] {
	return &Table[T]{
		ctrl:    ctrl,
		status:  StatusLoading,
		actions: append([]Action[T](nil), opts.Actions...),
		onRetry: opts.OnRetry,
	}
}

// Controller returns the underlying controller
func (t *Table[T]) Controller() *Controller[T] {
	return t.ctrl
}

// Status returns the current fetch status
func (t *Table[T]) Status() Status {
	return t.status
}

// SetResult applies the outcome of a host fetch. A ready result replaces the
// dataset; selection, filters and sorting carry over because they are keyed
// by row id and column id.
func (t *Table[T]) SetResult(result LoadResult[T]) error {
	switch result.Status {
	case StatusLoading:
		t.status = StatusLoading
		t.err = nil
	case StatusReady:
		if err := t.ctrl.SetData(result.Rows); err != nil {
			t.status = StatusFailed
			t.err = err
			return err
		}
		t.status = StatusReady
		t.err = nil
	case StatusFailed:
		t.status = StatusFailed
		t.err = result.Err
	default:
		return fmt.Errorf("unknown load status %d", result.Status)
	}
	return nil
}

// View derives the render model
func (t *Table[T]) View() View[T] {
	c := t.ctrl
	state := c.state

	view := View[T]{
		Status:           t.status,
		Err:              t.err,
		Rows:             []T{},
		RowIDs:           []string{},
		PageIndex:        state.Pagination.PageIndex,
		PageSize:         state.Pagination.PageSize,
		PageCount:        1,
		HasActiveFilters: c.HasActiveFilters(),
		HasSelection:     c.HasSelection(),
		SelectedRowCount: c.SelectedRowCount(),
		SelectedRows:     []T{},
		Columns:          c.VisibleColumns(),
		Sorting:          state.Sorting.Clone(),
		GlobalFilter:     state.GlobalFilter,
		ColumnFilters:    state.ColumnFilters.Active(),
		PageSizeOptions:  c.PageSizeOptions(),
	}

	if t.status == StatusReady {
		page := c.Page()
		view.Rows = page.Rows
		view.RowIDs = c.PageRowIDs()
		view.PageIndex = page.PageIndex
		view.PageCount = page.PageCount
		view.TotalRows = page.TotalRows
		view.HasNext = page.HasNext
		view.HasPrev = page.HasPrev
		view.SelectedRows = c.SelectedRows()
		view.PageSelected = state.RowSelection.AllSelected(view.RowIDs)
		view.IsEmpty = len(c.data) == 0
		view.NoMatches = !view.IsEmpty && page.TotalRows == 0
	}

	view.Actions = make([]ActionState, len(t.actions))
	for i, action := range t.actions {
		view.Actions[i] = ActionState{
			Label:   action.Label,
			Enabled: t.status == StatusReady && action.enabled(view.SelectedRows),
		}
	}
	return view
}

func (t *Table[T]) ready() error {
	if t.status != StatusReady {
		return fmt.Errorf("%w: %s", ErrNotReady, t.status)
	}
	return nil
}

// Search applies a search keystroke
func (t *Table[T]) Search(text string) error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.SetGlobalFilter(text)
	return nil
}

// ToggleSort applies a column header click
func (t *Table[T]) ToggleSort(column string, multi bool) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.ctrl.ToggleSort(column, multi)
}

// FilterColumn sets or clears one column filter
func (t *Table[T]) FilterColumn(column string, value any) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.ctrl.SetColumnFilter(column, value)
}

// ClearFilters removes the search text and every column filter
func (t *Table[T]) ClearFilters() error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.SetGlobalFilter("")
	return t.ctrl.SetColumnFilters(Set(ColumnFilters{}))
}

// GoToPage applies a page click
func (t *Table[T]) GoToPage(pageIndex int) error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.SetPageIndex(pageIndex)
	return nil
}

// NextPage moves forward one page if possible
func (t *Table[T]) NextPage() error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.SetPageIndex(t.ctrl.state.Pagination.PageIndex + 1)
	return nil
}

// PreviousPage moves back one page if possible
func (t *Table[T]) PreviousPage() error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.SetPageIndex(t.ctrl.state.Pagination.PageIndex - 1)
	return nil
}

// ChangePageSize applies a page size choice
func (t *Table[T]) ChangePageSize(pageSize int) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.ctrl.SetPageSize(pageSize)
}

// ToggleRow applies a row checkbox click
func (t *Table[T]) ToggleRow(id string) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.ctrl.ToggleRow(id)
}

// TogglePageSelection applies the header checkbox: it selects every row of
// the current page, or deselects them when they are all selected already.
func (t *Table[T]) TogglePageSelection() error {
	if err := t.ready(); err != nil {
		return err
	}

	ids := t.ctrl.PageRowIDs()
	if t.ctrl.state.RowSelection.AllSelected(ids) {
		t.ctrl.SetRowSelection(Update(func(prev RowSelection) RowSelection {
			return prev.Deselect(ids...)
		}))
		return nil
	}
	return t.ctrl.SelectAll(ids)
}

// SelectAllMatching selects every row passing the current filters
func (t *Table[T]) SelectAllMatching() error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.ctrl.SelectAll(t.ctrl.FilteredRowIDs())
}

// ClearSelection deselects every row
func (t *Table[T]) ClearSelection() error {
	if err := t.ready(); err != nil {
		return err
	}
	t.ctrl.ClearSelection()
	return nil
}

// RunAction invokes an action with the selected rows
func (t *Table[T]) RunAction(label string) error {
	if err := t.ready(); err != nil {
		return err
	}

	for _, action := range t.actions {
		if action.Label != label {
			continue
		}
		selected := t.ctrl.SelectedRows()
		if !action.enabled(selected) {
			return fmt.Errorf("%w: %q", ErrActionDisabled, label)
		}
		if action.Handler == nil {
			return nil
		}
		if err := action.Handler(selected); err != nil {
			return fmt.Errorf("action %q failed: %w", label, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, label)
}

// Retry asks the host to fetch again. The table does not retry by itself.
func (t *Table[T]) Retry() error {
	if t.onRetry == nil {
		return ErrNoRetry
	}
	t.onRetry()
	return nil
}
