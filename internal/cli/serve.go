package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/adapters/excel"
	"github.com/ideamans/go-tablestate/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table over HTTP",
		Long: `Serve exposes the table at /api/table. The table state (search, filters,
sorting, page, selection) is passed in the query string and echoed back in
canonical form, so that any view can be linked to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			s, err := newServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := s.Reload(cmd.Context()); err != nil {
				log.Printf("Warning: initial load failed: %v", err)
			}
			s.Start()
			defer s.Stop()

			return s.Run(cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}

// newServer builds the HTTP host. The schema comes from a first read of the
// source because columns are fixed for the lifetime of a controller.
func newServer(ctx context.Context, cfg *AppConfig) (*server.Server, error) {
	source, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	_, schema, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	var actions []tablestate.Action[*tablestate.Record]
	if cfg.Server.ExportDir != "" {
		actions = append(actions, exportAction(cfg.Server.ExportDir, schema))
	}

	return server.New(server.Config{
		Schema:  schema,
		IDField: cfg.Source.IDField,
		Table:   &cfg.Table,
		Refresh: &cfg.Refresh,
		Source:  source,
		Actions: actions,
	})
}

// exportAction writes the selected rows to selection.xlsx in dir
func exportAction(dir string, schema []string) tablestate.Action[*tablestate.Record] {
	return tablestate.Action[*tablestate.Record]{
		Label: "export",
		Handler: func(selected []*tablestate.Record) error {
			exporter, err := excel.New(&excel.Config{
				FilePath:  filepath.Join(dir, "selection.xlsx"),
				SheetName: "Selection",
			})
			if err != nil {
				return err
			}
			return tablestate.ExportRows(context.Background(), exporter, selected, tablestate.RecordColumns(schema))
		},
	}
}
