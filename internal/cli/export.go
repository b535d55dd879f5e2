package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/adapters/excel"
)

func newExportCmd() *cobra.Command {
	flags := &stateFlags{}
	var output, sheet string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every matching row to an Excel workbook",
		Long: `Export applies search, filters and sorting like view does, then writes all
matching rows (not only one page) to an .xlsx file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}

			ctrl, err := loadController(cmd.Context(), cfg, flags)
			if err != nil {
				return err
			}

			exporter, err := excel.New(&excel.Config{FilePath: output, SheetName: sheet})
			if err != nil {
				return err
			}
			rows := ctrl.FilteredRows()
			if err := tablestate.ExportRows(cmd.Context(), exporter, rows, ctrl.VisibleColumns()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rows), output)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the .xlsx file to write")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "Sheet name in the output workbook")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
