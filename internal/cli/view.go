package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tablestate "github.com/ideamans/go-tablestate"
)

func newViewCmd() *cobra.Command {
	flags := &stateFlags{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print one page of the table",
		Example: `  tablectl view --search acme --sort amount:desc --size 20
  tablectl view --filter status=pending --page 2`,
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
			return printPage(cmd.OutOrStdout(), ctrl)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// printPage writes the current page as aligned columns followed by a summary
func printPage(out io.Writer, ctrl *tablestate.Controller[*tablestate.Record]) error {
	page := ctrl.Page()
	switch {
	case len(ctrl.Data()) == 0:
		_, err := fmt.Fprintln(out, "No rows.")
		return err
	case page.TotalRows == 0:
		_, err := fmt.Fprintln(out, "No rows match the current filters.")
		return err
	}

	columns := ctrl.VisibleColumns()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = strings.ToUpper(col.Title())
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	cells := make([]string, len(columns))
	for _, row := range page.Rows {
		for i, col := range columns {
			cells[i] = row.GetAsString(col.ID, "")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nPage %d of %d (%d of %d rows)\n",
		page.PageIndex+1, page.PageCount, len(page.Rows), page.TotalRows)
	return err
}
