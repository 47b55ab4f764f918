package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"store_path": "data/versions.json",
		"locale": "fr",
		"default_template": "swiss",
		"export": {"format": "docx", "marginMm": 15, "fontFamily": "serif"},
		"port": 9000,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "data/versions.json", cfg.StorePath)
	assert.Equal(t, "fr", cfg.Locale)
	assert.Equal(t, "swiss", cfg.DefaultTemplate)
	assert.Equal(t, export.FormatDOCX, cfg.Export.Format)
	assert.Equal(t, 15.0, cfg.Export.MarginMM)
	assert.Equal(t, "serif", cfg.Export.FontFamily)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
store_path: cv.json
database_url: postgres://localhost/cv
export:
  format: pdf_print
  margin_mm: 20
  font_size_pt: 10.5
print_timeout_seconds: 2.5
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "cv.json", cfg.StorePath)
	assert.Equal(t, "postgres://localhost/cv", cfg.DatabaseURL)
	assert.Equal(t, export.FormatPrintPDF, cfg.Export.Format)
	assert.Equal(t, 20.0, cfg.Export.MarginMM)
	assert.Equal(t, 10.5, cfg.Export.FontSizePt)
	assert.Equal(t, 2500*time.Millisecond, cfg.PrintTimeout())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("port: [1, 2"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":  "postgres://db/cv",
		"CHROME_PATH":   "/usr/bin/chromium",
		"CV_STORE_PATH": "/tmp/cv.json",
		"PORT":          "3000",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "postgres://db/cv", cfg.DatabaseURL)
	assert.Equal(t, "/usr/bin/chromium", cfg.ChromePath)
	assert.Equal(t, "/tmp/cv.json", cfg.StorePath)
	assert.Equal(t, 3000, cfg.Port)
}

func TestApplyEnv_UnsetKeepsValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(string) string { return "" }))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "http"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Locale = "fr-FR"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Port = 70000 }, "port"},
		{"timeout", func(c *Config) { c.PrintTimeoutSeconds = -1 }, "print_timeout_seconds"},
		{"locale", func(c *Config) { c.Locale = "de" }, "locale"},
		{"template", func(c *Config) { c.DefaultTemplate = "neon" }, "template"},
		{"margin", func(c *Config) { c.Export.MarginMM = 80 }, "export"},
		{"font", func(c *Config) { c.Export.FontFamily = "comic" }, "export"},
		{"chrome", func(c *Config) { c.ChromePath = "/nonexistent/chrome" }, "chrome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		StorePath: "custom.json",
		Export:    export.Options{Format: export.FormatDOCX},
	}

	merged := partial.MergeWithDefaults(Default())

	// Custom values should be preserved
	assert.Equal(t, "custom.json", merged.StorePath)
	assert.Equal(t, export.FormatDOCX, merged.Export.Format)

	// Default values should fill in empty fields
	assert.Equal(t, "en", merged.Locale)
	assert.Equal(t, "modern", merged.DefaultTemplate)
	assert.Equal(t, export.DefaultFontSizePt, merged.Export.FontSizePt)
	assert.Equal(t, export.DefaultMarginMM, merged.Export.MarginMM)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultPrintTimeout, merged.PrintTimeout())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{StorePath: "cv.json", Port: 1}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "cv.json", merged.StorePath)
	assert.Equal(t, 1, merged.Port)
	assert.Empty(t, merged.Locale)
}

func TestExportOptions_InheritsLocale(t *testing.T) {
	cfg := Default()
	cfg.Locale = "fr"
	opts := cfg.ExportOptions()
	assert.Equal(t, "fr", opts.Locale)
	assert.NoError(t, opts.Validate())
}
