package tablestate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPageSize = 10

// Config represents the feature configuration of a table.
// Zero values select the enabled behavior, so an empty Config is usable.
type Config struct {
	PageSize            int   `yaml:"page_size" mapstructure:"page_size"`                         // Rows per page (default: 10)
	PageSizeOptions     []int `yaml:"page_size_options" mapstructure:"page_size_options"`         // Choices offered to the user (default: 10, 25, 50, 100)
	DisablePagination   bool  `yaml:"disable_pagination" mapstructure:"disable_pagination"`       // Show every filtered row on one page
	DisableSorting      bool  `yaml:"disable_sorting" mapstructure:"disable_sorting"`             // Ignore sorting updates
	DisableMultiSort    bool  `yaml:"disable_multi_sort" mapstructure:"disable_multi_sort"`       // Keep a single sort descriptor
	DisableGlobalFilter bool  `yaml:"disable_global_filter" mapstructure:"disable_global_filter"` // Ignore search input
	DisableSelection    bool  `yaml:"disable_selection" mapstructure:"disable_selection"`         // Ignore selection updates
	SingleSelect        bool  `yaml:"single_select" mapstructure:"single_select"`                 // At most one selected row
}

// DefaultConfig returns the recommended default configuration
func DefaultConfig() *Config {
	return &Config{
		PageSize:        DefaultPageSize,
		PageSizeOptions: []int{10, 25, 50, 100},
	}
}

// withDefaults returns a copy of c with zero values replaced by defaults
func (c *Config) withDefaults() Config {
	if c == nil {
		return *DefaultConfig()
	}

	cfg := *c
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if len(cfg.PageSizeOptions) == 0 {
		cfg.PageSizeOptions = DefaultConfig().PageSizeOptions
	} else {
		cfg.PageSizeOptions = append([]int(nil), cfg.PageSizeOptions...)
	}
	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("%w: page_size %d", ErrInvalidConfig, c.PageSize)
	}
	for _, size := range c.PageSizeOptions {
		if size <= 0 {
			return fmt.Errorf("%w: page_size_options contains %d", ErrInvalidConfig, size)
		}
	}
	return nil
}

// ParseConfig decodes a YAML document into a Config
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// RefreshConfig controls how a Refresher reloads a Source
type RefreshConfig struct {
	Interval      time.Duration `yaml:"interval" mapstructure:"interval"`             // Interval for periodic reload (0 disables the loop)
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`       // Maximum number of retries per load (default: 3)
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"` // Base backoff between retries (default: 100ms)
}

func (c *RefreshConfig) withDefaults() RefreshConfig {
	if c == nil {
		return RefreshConfig{
			MaxRetries:    3,
			RetryInterval: 100 * time.Millisecond,
		}
	}

	cfg := *c
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	return cfg
}
