package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/urlstate"
)

type columnResponse struct {
	ID         string `json:"id"`
	Header     string `json:"header"`
	Sortable   bool   `json:"sortable"`
	Filterable bool   `json:"filterable"`
}

type rowResponse struct {
	ID       string         `json:"id"`
	Selected bool           `json:"selected"`
	Values   map[string]any `json:"values"`
}

type actionResponse struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

type viewResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	Columns []columnResponse `json:"columns"`
	Rows    []rowResponse    `json:"rows"`

	PageIndex int  `json:"pageIndex"`
	PageSize  int  `json:"pageSize"`
	PageCount int  `json:"pageCount"`
	TotalRows int  `json:"totalRows"`
	HasNext   bool `json:"hasNext"`
	HasPrev   bool `json:"hasPrev"`
	IsEmpty   bool `json:"isEmpty"`
	NoMatches bool `json:"noMatches"`

	GlobalFilter    string         `json:"globalFilter"`
	ColumnFilters   map[string]any `json:"columnFilters"`
	Sorting         string         `json:"sorting"`
	PageSizeOptions []int          `json:"pageSizeOptions"`

	SelectedIDs  []string         `json:"selectedIds"`
	PageSelected bool             `json:"pageSelected"`
	Actions      []actionResponse `json:"actions"`

	// Query reproduces this view when passed back to GET /api/table
	Query string `json:"query"`

	RunID string `json:"runId,omitempty"` // Set by action runs, matches the server log
}

func (s *Server) handleView(c *gin.Context) {
	query := c.Request.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(query) > 0 {
		state, err := urlstate.Decode(query)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.table.Controller().Restore(state); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.render())
}

func (s *Server) handleToggleRow(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.table.ToggleRow(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.render())
}

func (s *Server) handleClearSelection(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.table.ClearSelection(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.render())
}

func (s *Server) handleAction(c *gin.Context) {
	label := c.Param("label")
	runID := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := s.table.Controller().SelectedRowCount()
	if err := s.table.RunAction(label); err != nil {
		log.Printf("Action %q run %s failed: %v", label, runID, err)
		c.JSON(statusOf(err), gin.H{
			"success": false,
			"error":   err.Error(),
			"runId":   runID,
		})
		return
	}
	log.Printf("Action %q run %s applied to %d rows", label, runID, selected)

	resp := s.render()
	resp.RunID = runID
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReload(c *gin.Context) {
	// The refresher reports results through apply, which takes the lock
	if err := s.Reload(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.render())
}

// render builds the response for the current view. Callers hold s.mu.
func (s *Server) render() viewResponse {
	view := s.table.View()
	state := s.table.Controller().State()

	resp := viewResponse{
		Status:          view.Status.String(),
		Columns:         make([]columnResponse, len(view.Columns)),
		Rows:            make([]rowResponse, len(view.Rows)),
		PageIndex:       view.PageIndex,
		PageSize:        view.PageSize,
		PageCount:       view.PageCount,
		TotalRows:       view.TotalRows,
		HasNext:         view.HasNext,
		HasPrev:         view.HasPrev,
		IsEmpty:         view.IsEmpty,
		NoMatches:       view.NoMatches,
		GlobalFilter:    view.GlobalFilter,
		ColumnFilters:   view.ColumnFilters,
		Sorting:         view.Sorting.String(),
		PageSizeOptions: view.PageSizeOptions,
		SelectedIDs:     state.RowSelection.IDs(),
		PageSelected:    view.PageSelected,
		Actions:         make([]actionResponse, len(view.Actions)),
		Query:           urlstate.Query(state),
	}
	if view.Err != nil {
		resp.Error = view.Err.Error()
	}

	for i, col := range view.Columns {
		resp.Columns[i] = columnResponse{
			ID:         col.ID,
			Header:     col.Title(),
			Sortable:   col.Accessor != nil && !col.DisableSorting,
			Filterable: col.Accessor != nil && !col.DisableFiltering,
		}
	}

	for i, row := range view.Rows {
		values := make(map[string]any, len(view.Columns))
		for _, col := range view.Columns {
			if col.Accessor != nil {
				values[col.ID] = col.Accessor(row)
			}
		}
		id := view.RowIDs[i]
		resp.Rows[i] = rowResponse{
			ID:       id,
			Selected: state.RowSelection.IsSelected(id),
			Values:   values,
		}
	}

	for i, action := range view.Actions {
		resp.Actions[i] = actionResponse{Label: action.Label, Enabled: action.Enabled}
	}
	return resp
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// statusOf maps engine errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, tablestate.ErrNotReady),
		errors.Is(err, tablestate.ErrActionDisabled):
		return http.StatusConflict
	case errors.Is(err, tablestate.ErrUnknownAction),
		errors.Is(err, tablestate.ErrUnknownRow):
		return http.StatusNotFound
	case errors.Is(err, urlstate.ErrMalformed),
		errors.Is(err, tablestate.ErrUnknownColumn),
		errors.Is(err, tablestate.ErrMissingAccessor),
		errors.Is(err, tablestate.ErrNotSortable),
		errors.Is(err, tablestate.ErrNotFilterable),
		errors.Is(err, tablestate.ErrInvalidPageSize),
		errors.Is(err, tablestate.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
