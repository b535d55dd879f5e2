package tablestate

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Options configures a Controller
type Options[T any] struct {
	Config *Config // nil selects DefaultConfig

	// RowID returns the stable identity of a row. It must return the same id
	// for the same logical row across refetches. When nil, a row is
	// identified by its position in the dataset, which is only correct for
	// data that is never reordered or refetched.
	RowID func(row T) string

	// SearchText overrides the text matched by the global filter
	SearchText func(row T) string

	// InitialState seeds the state. Reset operations return to it. Its page
	// index takes effect with the first SetData, once there are pages.
	InitialState *State

	// OnStateChange observes every transition with the slices it changed
	OnStateChange func(change StateChange)
}

// Controller owns the state of one table and derives its view.
// It is not safe for concurrent use; drive it from a single goroutine.
type Controller[T any] struct {
	config        Config
	pipeline      *Pipeline[T]
	rowID         func(T) string
	onStateChange func(StateChange)

	initial State
	state   State

	data    []T
	ids     []string
	idIndex map[string]int
	loaded  bool // SetData has been called

	revision     uint64 // bumped on every change
	rowsRevision uint64 // bumped when data, filters or sorting change
	memo         derived[T]
}

// derived caches the pipeline output for the current revisions
type derived[T any] struct {
	valid        bool
	rowsRevision uint64
	order        []int // dataset positions after filter and sort

	pageValid    bool
	pageRevision uint64
	page         Page[T]
	pageIDs      []string
}

// NewController validates the columns and configuration and builds a controller
func NewController[T any](columns []Column[T], opts Options[T]) (*Controller[T], error) {
	if opts.Config != nil {
		if err := opts.Config.Validate(); err != nil {
			return nil, err
		}
	}
	config := opts.Config.withDefaults()

	pipeline, err := NewPipeline(columns, opts.SearchText)
	if err != nil {
		return nil, err
	}

	c := &Controller[T]{
		config:        config,
		pipeline:      pipeline,
		rowID:         opts.RowID,
		onStateChange: opts.OnStateChange,
	}

	initial := c.defaultState()
	if opts.InitialState != nil {
		initial, err = c.mergeState(initial, *opts.InitialState)
		if err != nil {
			return nil, fmt.Errorf("invalid initial state: %w", err)
		}
	}
	c.initial = initial
	c.state = initial.Clone()
	c.clampPageIndex(&StateChange{})

	return c, nil
}

func (c *Controller[T]) defaultState() State {
	visibility := make(ColumnVisibility)
	for _, col := range c.pipeline.columns.list {
		if col.Hidden {
			visibility[col.ID] = false
		}
	}

	return State{
		ColumnFilters:    ColumnFilters{},
		Sorting:          Sorting{},
		Pagination:       Pagination{PageIndex: 0, PageSize: c.config.PageSize},
		RowSelection:     RowSelection{},
		ColumnVisibility: visibility,
	}
}

// mergeState overlays s on base after validating it against the columns
func (c *Controller[T]) mergeState(base, s State) (State, error) {
	out := base.Clone()
	if !c.config.DisableGlobalFilter {
		out.GlobalFilter = s.GlobalFilter
	}

	if s.ColumnFilters != nil {
		if err := c.checkFilters(s.ColumnFilters); err != nil {
			return State{}, err
		}
		out.ColumnFilters = s.ColumnFilters.Clone()
	}
	if s.Sorting != nil {
		sorting, err := c.normalizeSorting(s.Sorting)
		if err != nil {
			return State{}, err
		}
		out.Sorting = sorting
	}
	if s.Pagination.PageSize > 0 {
		out.Pagination.PageSize = s.Pagination.PageSize
	}
	if s.Pagination.PageIndex > 0 {
		out.Pagination.PageIndex = s.Pagination.PageIndex
	}
	if s.RowSelection != nil {
		out.RowSelection = s.RowSelection.Clone()
	}
	for id, visible := range s.ColumnVisibility {
		if _, ok := c.pipeline.columns.get(id); !ok {
			return State{}, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
		}
		out.ColumnVisibility[id] = visible
	}
	return out, nil
}

// Config returns the effective configuration
func (c *Controller[T]) Config() Config {
	cfg := c.config
	cfg.PageSizeOptions = append([]int(nil), c.config.PageSizeOptions...)
	return cfg
}

// Columns returns every column in declaration order
func (c *Controller[T]) Columns() []Column[T] {
	return append([]Column[T](nil), c.pipeline.columns.list...)
}

// VisibleColumns returns the columns currently shown
func (c *Controller[T]) VisibleColumns() []Column[T] {
	out := make([]Column[T], 0, len(c.pipeline.columns.list))
	for _, col := range c.pipeline.columns.list {
		if c.state.ColumnVisibility.IsVisible(col.ID) {
			out = append(out, col)
		}
	}
	return out
}

// Pipeline returns the stateless filter and sort engine
func (c *Controller[T]) Pipeline() *Pipeline[T] {
	return c.pipeline
}

// State returns a copy of the current state
func (c *Controller[T]) State() State {
	return c.state.Clone()
}

// InitialState returns a copy of the state the controller resets to
func (c *Controller[T]) InitialState() State {
	return c.initial.Clone()
}

// SetData replaces the dataset. Rows are referenced, not copied.
// When RowID is configured, ids must be unique.
func (c *Controller[T]) SetData(rows []T) error {
	ids := make([]string, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		id := strconv.Itoa(i)
		if c.rowID != nil {
			id = c.rowID(row)
		}
		if prev, exists := seen[id]; exists {
			return fmt.Errorf("%w: %q at rows %d and %d", ErrDuplicateRowID, id, prev, i)
		}
		seen[id] = i
		ids[i] = id
	}

	c.data = rows
	c.ids = ids
	c.idIndex = seen
	c.rowsRevision++

	prev := c.state.Pagination
	if !c.loaded {
		c.loaded = true
		c.state.Pagination.PageIndex = c.initial.Pagination.PageIndex
	}
	c.state.Pagination.PageIndex = ClampPageIndex(c.state.Pagination.PageIndex, len(c.order()), c.pageSize())

	var change StateChange
	if c.state.Pagination != prev {
		p := c.state.Pagination
		change.Pagination = &p
	}
	c.commit(change)
	return nil
}

// Data returns the dataset as supplied
func (c *Controller[T]) Data() []T {
	return c.data
}

// RowID returns the identity of a row of the dataset by position
func (c *Controller[T]) RowID(index int) string {
	return c.ids[index]
}

// RowByID returns the dataset row with the given id
func (c *Controller[T]) RowByID(id string) (T, bool) {
	i, ok := c.idIndex[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.data[i], true
}

func (c *Controller[T]) checkRowIDs(ids ...string) error {
	for _, id := range ids {
		if _, ok := c.idIndex[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRow, id)
		}
	}
	return nil
}

// SetGlobalFilter updates the search text and returns to the first page
func (c *Controller[T]) SetGlobalFilter(value string) {
	if c.config.DisableGlobalFilter || value == c.state.GlobalFilter {
		return
	}

	var change StateChange
	c.applyGlobalFilter(value, &change)
	c.commit(change)
}

func (c *Controller[T]) applyGlobalFilter(value string, change *StateChange) {
	if value == c.state.GlobalFilter {
		return
	}
	c.state.GlobalFilter = value
	change.GlobalFilter = &value
	c.rowsRevision++
	c.resetPageIndex(change)
}

// SetColumnFilters replaces the column filters. Filters naming unknown or
// non-filterable columns are rejected and the state is left unchanged.
func (c *Controller[T]) SetColumnFilters(u Updater[ColumnFilters]) error {
	next := u.Resolve(c.state.ColumnFilters.Clone())
	if err := c.checkFilters(next); err != nil {
		return err
	}

	var change StateChange
	c.applyColumnFilters(next, &change)
	c.commit(change)
	return nil
}

// SetColumnFilter sets or clears the filter of one column
func (c *Controller[T]) SetColumnFilter(id string, value any) error {
	return c.SetColumnFilters(Update(func(prev ColumnFilters) ColumnFilters {
		if IsActiveFilterValue(value) {
			prev[id] = value
		} else {
			delete(prev, id)
		}
		return prev
	}))
}

func (c *Controller[T]) checkFilters(filters ColumnFilters) error {
	for id, value := range filters {
		if !IsActiveFilterValue(value) {
			continue
		}
		if err := c.pipeline.columns.checkFilterable(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller[T]) applyColumnFilters(next ColumnFilters, change *StateChange) {
	next = next.Clone()
	prev := c.state.ColumnFilters
	if reflect.DeepEqual(prev, next) {
		return
	}

	c.state.ColumnFilters = next
	change.ColumnFilters = next.Clone()
	if !reflect.DeepEqual(prev.Active(), next.Active()) {
		c.rowsRevision++
		c.resetPageIndex(change)
	}
}

// SetSorting replaces the sort descriptors
func (c *Controller[T]) SetSorting(u Updater[Sorting]) error {
	if c.config.DisableSorting {
		return nil
	}

	next, err := c.normalizeSorting(u.Resolve(c.state.Sorting.Clone()))
	if err != nil {
		return err
	}

	var change StateChange
	c.applySorting(next, &change)
	c.commit(change)
	return nil
}

// ToggleSort cycles a column through ascending, descending and unsorted.
// With multi set the other descriptors are kept; otherwise they are replaced.
func (c *Controller[T]) ToggleSort(id string, multi bool) error {
	if err := c.pipeline.columns.checkSortable(id); err != nil {
		return err
	}
	multi = multi && !c.config.DisableMultiSort

	return c.SetSorting(Update(func(prev Sorting) Sorting {
		current, i, found := prev.Find(id)

		if !multi {
			switch {
			case !found:
				return Sorting{{Column: id}}
			case !current.Desc:
				return Sorting{{Column: id, Desc: true}}
			default:
				return Sorting{}
			}
		}

		switch {
		case !found:
			return append(prev, SortDescriptor{Column: id})
		case !current.Desc:
			prev[i].Desc = true
			return prev
		default:
			return append(prev[:i], prev[i+1:]...)
		}
	}))
}

// normalizeSorting validates descriptors and drops repeated columns
func (c *Controller[T]) normalizeSorting(sorting Sorting) (Sorting, error) {
	out := make(Sorting, 0, len(sorting))
	seen := make(map[string]bool, len(sorting))
	for _, d := range sorting {
		if err := c.pipeline.columns.checkSortable(d.Column); err != nil {
			return nil, err
		}
		if seen[d.Column] {
			continue
		}
		seen[d.Column] = true
		out = append(out, d)
	}
	if c.config.DisableMultiSort && len(out) > 1 {
		out = out[:1]
	}
	return out, nil
}

func (c *Controller[T]) applySorting(next Sorting, change *StateChange) {
	if sortingEqual(c.state.Sorting, next) {
		return
	}
	c.state.Sorting = next.Clone()
	change.Sorting = next.Clone()
	c.rowsRevision++
	c.resetPageIndex(change)
}

// SetPagination updates the window. A new page size returns to the first
// page; a page index past the end is clamped to the last page.
func (c *Controller[T]) SetPagination(u Updater[Pagination]) error {
	next := u.Resolve(c.state.Pagination)
	if next.PageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, next.PageSize)
	}

	var change StateChange
	c.applyPagination(next, &change)
	c.commit(change)
	return nil
}

// SetPageIndex moves to a page, clamped to the available pages
func (c *Controller[T]) SetPageIndex(pageIndex int) {
	_ = c.SetPagination(Update(func(prev Pagination) Pagination {
		prev.PageIndex = pageIndex
		return prev
	}))
}

// SetPageSize changes the window size and returns to the first page
func (c *Controller[T]) SetPageSize(pageSize int) error {
	return c.SetPagination(Update(func(prev Pagination) Pagination {
		prev.PageSize = pageSize
		return prev
	}))
}

func (c *Controller[T]) applyPagination(next Pagination, change *StateChange) {
	if next.PageSize != c.state.Pagination.PageSize {
		next.PageIndex = 0
	}
	c.replacePagination(next, change)
}

// replacePagination stores a window as given, clamping only the page index
func (c *Controller[T]) replacePagination(next Pagination, change *StateChange) {
	next.PageIndex = ClampPageIndex(next.PageIndex, len(c.order()), c.pageSizeFor(next))
	if next == c.state.Pagination {
		return
	}
	c.state.Pagination = next
	p := next
	change.Pagination = &p
}

// resetPageIndex returns to the first page as part of the current transition
func (c *Controller[T]) resetPageIndex(change *StateChange) {
	if c.state.Pagination.PageIndex == 0 {
		return
	}
	c.state.Pagination.PageIndex = 0
	p := c.state.Pagination
	change.Pagination = &p
}

// clampPageIndex keeps the page index in range after the row count changed
func (c *Controller[T]) clampPageIndex(change *StateChange) {
	clamped := ClampPageIndex(c.state.Pagination.PageIndex, len(c.order()), c.pageSize())
	if clamped == c.state.Pagination.PageIndex {
		return
	}
	c.state.Pagination.PageIndex = clamped
	p := c.state.Pagination
	change.Pagination = &p
}

// SetRowSelection replaces the selection. It never changes the page.
func (c *Controller[T]) SetRowSelection(u Updater[RowSelection]) {
	if c.config.DisableSelection {
		return
	}

	next := u.Resolve(c.state.RowSelection.Clone()).Clone()
	if c.config.SingleSelect && next.Count() > 1 {
		next = RowSelection{next.IDs()[0]: true}
	}

	var change StateChange
	c.applyRowSelection(next, &change)
	c.commit(change)
}

func (c *Controller[T]) applyRowSelection(next RowSelection, change *StateChange) {
	if c.state.RowSelection.Equal(next) {
		return
	}
	c.state.RowSelection = next.Clone()
	change.RowSelection = next.Clone()
}

// SelectRow selects one row of the current dataset by id
func (c *Controller[T]) SelectRow(id string) error {
	if err := c.checkRowIDs(id); err != nil {
		return err
	}
	if c.config.SingleSelect {
		c.SetRowSelection(Set(RowSelection{id: true}))
		return nil
	}
	c.SetRowSelection(Update(func(prev RowSelection) RowSelection {
		return prev.Select(id)
	}))
	return nil
}

// DeselectRow deselects one row by id
func (c *Controller[T]) DeselectRow(id string) {
	c.SetRowSelection(Update(func(prev RowSelection) RowSelection {
		return prev.Deselect(id)
	}))
}

// ToggleRow flips the selection of one row. Deselecting works for any id,
// selecting only for rows of the current dataset.
func (c *Controller[T]) ToggleRow(id string) error {
	if c.state.RowSelection.IsSelected(id) {
		c.DeselectRow(id)
		return nil
	}
	return c.SelectRow(id)
}

// SelectAll selects every id of a caller-supplied list, typically the
// visible rows. It is a no-op when only a single row may be selected.
func (c *Controller[T]) SelectAll(ids []string) error {
	if err := c.checkRowIDs(ids...); err != nil {
		return err
	}
	if c.config.SingleSelect {
		return nil
	}
	c.SetRowSelection(Update(func(prev RowSelection) RowSelection {
		return prev.SelectAll(ids)
	}))
	return nil
}

// ClearSelection deselects every row
func (c *Controller[T]) ClearSelection() {
	c.SetRowSelection(Set(RowSelection{}))
}

// SetColumnVisibility replaces the visibility map
func (c *Controller[T]) SetColumnVisibility(u Updater[ColumnVisibility]) error {
	next := u.Resolve(c.state.ColumnVisibility.Clone())
	for id := range next {
		if _, ok := c.pipeline.columns.get(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, id)
		}
	}

	var change StateChange
	c.applyColumnVisibility(next, &change)
	c.commit(change)
	return nil
}

// ToggleColumnVisibility shows a hidden column or hides a visible one
func (c *Controller[T]) ToggleColumnVisibility(id string) error {
	return c.SetColumnVisibility(Update(func(prev ColumnVisibility) ColumnVisibility {
		prev[id] = !prev.IsVisible(id)
		return prev
	}))
}

func (c *Controller[T]) applyColumnVisibility(next ColumnVisibility, change *StateChange) {
	if reflect.DeepEqual(c.state.ColumnVisibility, next) {
		return
	}
	c.state.ColumnVisibility = next.Clone()
	change.ColumnVisibility = next.Clone()
}

// Restore applies a complete state in one transition, for example one
// decoded from a URL. Feature toggles still apply.
func (c *Controller[T]) Restore(s State) error {
	next, err := c.mergeState(c.defaultState(), s)
	if err != nil {
		return err
	}

	var change StateChange
	if !c.config.DisableGlobalFilter {
		c.applyGlobalFilter(next.GlobalFilter, &change)
	}
	c.applyColumnFilters(next.ColumnFilters, &change)
	if !c.config.DisableSorting {
		c.applySorting(next.Sorting, &change)
	}
	if !c.config.DisableSelection {
		if c.config.SingleSelect && next.RowSelection.Count() > 1 {
			next.RowSelection = RowSelection{next.RowSelection.IDs()[0]: true}
		}
		c.applyRowSelection(next.RowSelection, &change)
	}
	c.applyColumnVisibility(next.ColumnVisibility, &change)
	c.replacePagination(next.Pagination, &change)
	c.commit(change)
	return nil
}

// ResetSorting restores the initial sorting
func (c *Controller[T]) ResetSorting() {
	var change StateChange
	c.applySorting(c.initial.Sorting, &change)
	c.commit(change)
}

// ResetFilters restores the initial global and column filters
func (c *Controller[T]) ResetFilters() {
	var change StateChange
	c.applyGlobalFilter(c.initial.GlobalFilter, &change)
	c.applyColumnFilters(c.initial.ColumnFilters, &change)
	c.commit(change)
}

// ResetSelection restores the initial selection
func (c *Controller[T]) ResetSelection() {
	var change StateChange
	c.applyRowSelection(c.initial.RowSelection, &change)
	c.commit(change)
}

// ResetPagination restores the initial page window
func (c *Controller[T]) ResetPagination() {
	var change StateChange
	c.replacePagination(c.initial.Pagination, &change)
	c.commit(change)
}

// ResetColumnVisibility restores the initial column visibility
func (c *Controller[T]) ResetColumnVisibility() {
	var change StateChange
	c.applyColumnVisibility(c.initial.ColumnVisibility, &change)
	c.commit(change)
}

// ResetAll runs every reset in sequence
func (c *Controller[T]) ResetAll() {
	c.ResetSorting()
	c.ResetFilters()
	c.ResetSelection()
	c.ResetColumnVisibility()
	c.ResetPagination()
}

// commit records a transition and notifies the observer
func (c *Controller[T]) commit(change StateChange) {
	if change.IsEmpty() {
		return
	}
	c.revision++
	if c.onStateChange != nil {
		c.onStateChange(change)
	}
}

// HasActiveFilters reports whether the search text or any column filter
// constrains rows
func (c *Controller[T]) HasActiveFilters() bool {
	return strings.TrimSpace(c.state.GlobalFilter) != "" || len(c.state.ColumnFilters.Active()) > 0
}

// HasSelection reports whether any row is selected
func (c *Controller[T]) HasSelection() bool {
	return c.state.RowSelection.Count() > 0
}

// SelectedRowCount counts selected ids, including rows hidden by filters
func (c *Controller[T]) SelectedRowCount() int {
	return c.state.RowSelection.Count()
}

// IsSelected reports whether the row with id is selected
func (c *Controller[T]) IsSelected(id string) bool {
	return c.state.RowSelection.IsSelected(id)
}

// SelectedRows returns the dataset rows whose id is selected, in dataset order
func (c *Controller[T]) SelectedRows() []T {
	out := make([]T, 0, c.state.RowSelection.Count())
	for i, row := range c.data {
		if c.state.RowSelection.IsSelected(c.ids[i]) {
			out = append(out, row)
		}
	}
	return out
}

// FilteredRows returns every row passing the filters, in sorted order
func (c *Controller[T]) FilteredRows() []T {
	return pick(c.data, c.order())
}

// FilteredRowIDs returns the ids of FilteredRows
func (c *Controller[T]) FilteredRowIDs() []string {
	order := c.order()
	ids := make([]string, len(order))
	for i, idx := range order {
		ids[i] = c.ids[idx]
	}
	return ids
}

// Page returns the current window of filtered and sorted rows
func (c *Controller[T]) Page() Page[T] {
	c.derivePage()
	page := c.memo.page
	page.Rows = append([]T{}, page.Rows...)
	return page
}

// PageRowIDs returns the ids of the rows in the current window
func (c *Controller[T]) PageRowIDs() []string {
	c.derivePage()
	return append([]string{}, c.memo.pageIDs...)
}

// order returns the dataset positions after filtering and sorting,
// computing them at most once per rows revision
func (c *Controller[T]) order() []int {
	if c.memo.valid && c.memo.rowsRevision == c.rowsRevision {
		return c.memo.order
	}

	indices := c.pipeline.filterIndices(c.data, c.activeGlobalFilter(), c.state.ColumnFilters)
	sorting := c.state.Sorting
	if c.config.DisableSorting {
		sorting = nil
	}
	c.memo.order = c.pipeline.sortIndices(c.data, indices, sorting)
	c.memo.rowsRevision = c.rowsRevision
	c.memo.valid = true
	c.memo.pageValid = false
	return c.memo.order
}

func (c *Controller[T]) derivePage() {
	order := c.order()
	if c.memo.pageValid && c.memo.pageRevision == c.revision {
		return
	}

	positions := Paginate(order, c.state.Pagination.PageIndex, c.pageSize())
	page := Page[T]{
		Rows:      pick(c.data, positions.Rows),
		PageIndex: positions.PageIndex,
		PageSize:  positions.PageSize,
		PageCount: positions.PageCount,
		TotalRows: positions.TotalRows,
		HasNext:   positions.HasNext,
		HasPrev:   positions.HasPrev,
	}
	ids := make([]string, len(positions.Rows))
	for i, idx := range positions.Rows {
		ids[i] = c.ids[idx]
	}

	c.memo.page = page
	c.memo.pageIDs = ids
	c.memo.pageRevision = c.revision
	c.memo.pageValid = true
}

func (c *Controller[T]) activeGlobalFilter() string {
	if c.config.DisableGlobalFilter {
		return ""
	}
	return c.state.GlobalFilter
}

// pageSize returns the effective window size; 0 means unbounded
func (c *Controller[T]) pageSize() int {
	return c.pageSizeFor(c.state.Pagination)
}

func (c *Controller[T]) pageSizeFor(p Pagination) int {
	if c.config.DisablePagination {
		return 0
	}
	return p.PageSize
}

// PageSizeOptions returns the configured page size choices in ascending order
func (c *Controller[T]) PageSizeOptions() []int {
	options := append([]int(nil), c.config.PageSizeOptions...)
	sort.Ints(options)
	return options
}
