// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither the file nor the environment set a value
const (
	DefaultStorePath    = "cv_versions.json"
	DefaultPort         = 8080
	DefaultPrintTimeout = 5 * time.Second
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	StorePath   string `json:"store_path,omitempty" yaml:"store_path"`     // Path to the versions JSON file
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url"` // PostgreSQL connection URL; replaces the file store when set

	// Rendering
	ChromePath      string `json:"chrome_path,omitempty" yaml:"chrome_path"`           // Chrome/Chromium executable
	Locale          string `json:"locale,omitempty" yaml:"locale"`                     // Printed labels: en or fr
	DefaultTemplate string `json:"default_template,omitempty" yaml:"default_template"` // Template for new versions

	// Export defaults
	Export              export.Options `json:"export,omitempty" yaml:"export"`
	PrintTimeoutSeconds float64        `json:"print_timeout_seconds,omitempty" yaml:"print_timeout_seconds"` // Bounded wait for fonts before printing

	// Server
	Port int `json:"port,omitempty" yaml:"port"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose"` // Print detailed debug information
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		StorePath:           DefaultStorePath,
		Locale:              "en",
		DefaultTemplate:     string(types.DefaultTemplate),
		Export:              export.DefaultOptions(),
		PrintTimeoutSeconds: DefaultPrintTimeout.Seconds(),
		Port:                DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from DATABASE_URL, CHROME_PATH, CV_STORE_PATH and PORT
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("CHROME_PATH"); v != "" {
		c.ChromePath = v
	}
	if v := getenv("CV_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be a number, got %q", v)
		}
		c.Port = port
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PrintTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'print_timeout_seconds' must be non-negative")
	}
	if c.Locale != "" && !supportedLocale(c.Locale) {
		return fmt.Errorf("config error: unsupported locale %q", c.Locale)
	}
	if c.DefaultTemplate != "" && !types.TemplateID(c.DefaultTemplate).Known() {
		return fmt.Errorf("config error: unknown template %q", c.DefaultTemplate)
	}
	if err := c.Export.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("config error: export: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome executable not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.DefaultTemplate == "" {
		result.DefaultTemplate = defaults.DefaultTemplate
	}

	// Export options field by field; a zero margin cannot be told apart from unset
	if result.Export.Format == "" {
		result.Export.Format = defaults.Export.Format
	}
	if result.Export.FontFamily == "" {
		result.Export.FontFamily = defaults.Export.FontFamily
	}
	if result.Export.FontSizePt == 0 {
		result.Export.FontSizePt = defaults.Export.FontSizePt
	}
	if result.Export.RasterScale == 0 {
		result.Export.RasterScale = defaults.Export.RasterScale
	}
	if result.Export.MarginMM == 0 {
		result.Export.MarginMM = defaults.Export.MarginMM
	}
	if result.Export.Locale == "" {
		result.Export.Locale = defaults.Export.Locale
	}

	// Numeric fields: use default if zero
	if result.PrintTimeoutSeconds == 0 {
		result.PrintTimeoutSeconds = defaults.PrintTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// PrintTimeout returns the print wait as a duration
func (c *Config) PrintTimeout() time.Duration {
	return time.Duration(c.PrintTimeoutSeconds * float64(time.Second))
}

// ExportOptions returns the export defaults with the configured locale applied
func (c *Config) ExportOptions() export.Options {
	opts := c.Export
	if opts.Locale == "" {
		opts.Locale = c.Locale
	}
	return opts.WithDefaults()
}

func supportedLocale(code string) bool {
	base := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	return base == layout.English.Code || base == layout.French.Code
}
