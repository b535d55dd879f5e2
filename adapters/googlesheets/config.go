package googlesheets

import (
	"errors"
	"time"

	tablestate "github.com/ideamans/go-tablestate"
)

var (
	ErrMissingSpreadsheetID = errors.New("spreadsheet ID is required")
	ErrMissingSheetName     = errors.New("sheet name is required")
	ErrIncompleteKey        = errors.New("service account email and private key must be set together")
)

// Config represents configuration specific to Google Sheets adapter
type Config struct {
	SpreadsheetID string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name" mapstructure:"sheet_name"`

	// Credentials, first match wins. With none set,
	// GOOGLE_APPLICATION_CREDENTIALS and then application default
	// credentials are used. Secrets are never written back out as YAML.
	CredentialsJSON     string `yaml:"-" mapstructure:"credentials_json"`                                    // Inline JSON key
	ServiceAccountEmail string `yaml:"service_account_email,omitempty" mapstructure:"service_account_email"` // Used with PrivateKey
	PrivateKey          string `yaml:"-" mapstructure:"private_key"`                                         // PEM; escaped \n is accepted
	CredentialsFile     string `yaml:"credentials_file,omitempty" mapstructure:"credentials_file"`           // JSON key file
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	if c.SheetName == "" {
		return ErrMissingSheetName
	}
	if (c.ServiceAccountEmail == "") != (c.PrivateKey == "") {
		return ErrIncompleteKey
	}
	return nil
}

// DefaultRefreshConfig returns the recommended reload settings for Google Sheets.
// The API is rate limited, so retries back off further than for local files.
func DefaultRefreshConfig() *tablestate.RefreshConfig {
	return &tablestate.RefreshConfig{
		Interval:      10 * time.Second,
		MaxRetries:    3,
		RetryInterval: 20 * time.Second,
	}
}
