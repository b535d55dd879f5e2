package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/adapters/excel"
	"github.com/ideamans/go-tablestate/adapters/googlesheets"
)

const (
	SourceExcel        = "excel"
	SourceGoogleSheets = "googlesheets"
)

// AppConfig is the tablectl configuration
type AppConfig struct {
	Table   tablestate.Config        `yaml:"table" mapstructure:"table"`
	Refresh tablestate.RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Source  SourceConfig             `yaml:"source" mapstructure:"source"`
	Server  ServerConfig             `yaml:"server" mapstructure:"server"`
}

// SourceConfig selects where rows come from
type SourceConfig struct {
	Type    string `yaml:"type" mapstructure:"type"`         // excel or googlesheets
	IDField string `yaml:"id_field" mapstructure:"id_field"` // Column holding the row id; empty uses the row number

	Excel        excel.Config        `yaml:"excel" mapstructure:"excel"`
	GoogleSheets googlesheets.Config `yaml:"googlesheets" mapstructure:"googlesheets"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	ExportDir string `yaml:"export_dir" mapstructure:"export_dir"` // Enables the export action when set
}

// setDefaults registers every key so that TABLECTL_* variables can override it
func setDefaults(v *viper.Viper) {
	table := tablestate.DefaultConfig()
	v.SetDefault("table.page_size", table.PageSize)
	v.SetDefault("table.page_size_options", table.PageSizeOptions)
	v.SetDefault("table.disable_pagination", false)
	v.SetDefault("table.disable_sorting", false)
	v.SetDefault("table.disable_multi_sort", false)
	v.SetDefault("table.disable_global_filter", false)
	v.SetDefault("table.disable_selection", false)
	v.SetDefault("table.single_select", false)

	v.SetDefault("refresh.interval", "0s")
	v.SetDefault("refresh.max_retries", 3)
	v.SetDefault("refresh.retry_interval", "100ms")

	v.SetDefault("source.type", SourceExcel)
	v.SetDefault("source.id_field", "")
	v.SetDefault("source.excel.file_path", "")
	v.SetDefault("source.excel.sheet_name", "Sheet1")
	v.SetDefault("source.googlesheets.spreadsheet_id", "")
	v.SetDefault("source.googlesheets.sheet_name", "Sheet1")
	v.SetDefault("source.googlesheets.credentials_json", "")
	v.SetDefault("source.googlesheets.service_account_email", "")
	v.SetDefault("source.googlesheets.private_key", "")
	v.SetDefault("source.googlesheets.credentials_file", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.export_dir", "")
}

// loadConfig layers defaults, the configuration file and the environment.
// With an empty path, tablectl.yaml in the working directory is used when
// it exists.
func loadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TABLECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("tablectl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the table settings and the source type
func (c *AppConfig) Validate() error {
	if err := c.Table.Validate(); err != nil {
		return err
	}
	switch c.Source.Type {
	case SourceExcel, SourceGoogleSheets:
		return nil
	default:
		return fmt.Errorf("%w: unknown source type %q", tablestate.ErrInvalidConfig, c.Source.Type)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "# Effective configuration (defaults + file + environment)")
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}
