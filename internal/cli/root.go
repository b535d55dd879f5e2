package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablectl",
		Short: "tablectl - browse, export and serve spreadsheet tables",
		Long: `tablectl loads rows from an Excel workbook or a Google Sheets spreadsheet
and applies search, column filters, sorting and pagination to them.

Configuration is read from tablectl.yaml (or --config) and TABLECTL_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default: ./tablectl.yaml)")

	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
