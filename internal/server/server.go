// Package server exposes a record table over HTTP. The table state travels
// in the query string so that a page of results can be linked to.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"

	tablestate "github.com/ideamans/go-tablestate"
)

// Config describes the table served
type Config struct {
	Schema  []string // Column ids, in display order
	IDField string   // Column holding the row id; empty uses the sheet row number

	Table   *tablestate.Config
	Refresh *tablestate.RefreshConfig
	Source  tablestate.Source
	Actions []tablestate.Action[*tablestate.Record]
}

// Server is the table HTTP server
type Server struct {
	mu        sync.Mutex
	table     *tablestate.Table[*tablestate.Record]
	refresher *tablestate.Refresher
	router    *gin.Engine
}

// New creates a server. The table stays in the loading state until Reload
// or Start brings in the first dataset.
func New(config Config) (*Server, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("%w: no source", tablestate.ErrInvalidConfig)
	}

	rowID := tablestate.RecordKeyID
	if config.IDField != "" {
		rowID = tablestate.RecordFieldID(config.IDField)
	}

	ctrl, err := tablestate.NewController(tablestate.RecordColumns(config.Schema), tablestate.Options[*tablestate.Record]{
		Config: config.Table,
		RowID:  rowID,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{}
	s.table = tablestate.NewTable(ctrl, tablestate.TableOptions[*tablestate.Record]{
		Actions: config.Actions,
	})
	s.refresher = tablestate.NewRefresher(config.Source, config.Refresh, s.apply)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/table")
	{
		api.GET("", s.handleView)
		api.POST("/rows/:id/toggle", s.handleToggleRow)
		api.DELETE("/selection", s.handleClearSelection)
		api.POST("/actions/:label", s.handleAction)
		api.POST("/reload", s.handleReload)
	}
	return router
}

// apply receives load results from the refresher
func (s *Server) apply(result tablestate.LoadResult[*tablestate.Record], _ []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.table.SetResult(result); err != nil {
		log.Printf("Warning: rejected dataset: %v", err)
	}
}

// Reload fetches the dataset once
func (s *Server) Reload(ctx context.Context) error {
	return s.refresher.Load(ctx)
}

// Start begins periodic reloads when a refresh interval is configured
func (s *Server) Start() {
	s.refresher.Start()
}

// Stop ends periodic reloads
func (s *Server) Stop() {
	s.refresher.Stop()
}

// Handler returns the HTTP handler
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run listens on addr until the listener fails
func (s *Server) Run(addr string) error {
	log.Printf("Serving table on %s", addr)
	return s.router.Run(addr)
}
