package excel

import (
	"time"

	tablestate "github.com/ideamans/go-tablestate"
)

// Config holds configuration for Excel adapter
type Config struct {
	FilePath  string `yaml:"file_path" mapstructure:"file_path"`   // Path to the Excel file
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"` // Name of the sheet to use
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	if c.SheetName == "" {
		return ErrMissingSheetName
	}
	return nil
}

// DefaultRefreshConfig returns the recommended reload settings for local files
func DefaultRefreshConfig() *tablestate.RefreshConfig {
	return &tablestate.RefreshConfig{
		Interval:      5 * time.Second,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
}
