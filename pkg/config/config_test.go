// Package config tests for configuration loading and structured error handling.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// -----------------------------------------------------------------------------
// Load Tests with Structured Errors
// -----------------------------------------------------------------------------

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/to/relaxplot.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}

	perr, ok := err.(*werrors.PlotError)
	if !ok {
		t.Fatalf("expected *werrors.PlotError, got %T", err)
	}
	if perr.Code != werrors.ErrConfigNotFound {
		t.Errorf("expected code %q, got %q", werrors.ErrConfigNotFound, perr.Code)
	}
	if perr.Category != werrors.CategoryConfig {
		t.Errorf("expected category %v, got %v", werrors.CategoryConfig, perr.Category)
	}

	foundInit := false
	for _, s := range perr.Suggestions {
		if strings.Contains(s, "relaxplot init") {
			foundInit = true
			break
		}
	}
	if !foundInit {
		t.Error("expected suggestion to mention 'relaxplot init'")
	}
}

func TestLoad_YAMLParseError(t *testing.T) {
	configPath := writeConfig(t, "bad.yaml", `export:
  title: "Fit"
    invalid_indent
  xlabel: x
`)

	_, err := Load(configPath)
	perr, ok := err.(*werrors.PlotError)
	if !ok {
		t.Fatalf("expected *werrors.PlotError, got %T (%v)", err, err)
	}
	if perr.Code != werrors.ErrConfigParseFailed {
		t.Errorf("expected code %q, got %q", werrors.ErrConfigParseFailed, perr.Code)
	}
	if perr.Context["path"] != configPath {
		t.Errorf("expected path context %q, got %q", configPath, perr.Context["path"])
	}
	if perr.Context["line"] == "" {
		t.Error("expected line context")
	}
	if perr.Cause == nil {
		t.Error("expected cause to be set")
	}
	if len(perr.Suggestions) == 0 {
		t.Error("expected suggestions to be attached")
	}
}

func TestLoad_TypeError(t *testing.T) {
	configPath := writeConfig(t, "types.yaml", "server:\n  port: eighty\n")

	_, err := Load(configPath)
	perr, ok := werrors.AsPlotError(err)
	if !ok || perr.Code != werrors.ErrConfigParseFailed {
		t.Fatalf("expected CONFIG_PARSE_FAILED, got %v", err)
	}
	if perr.Context["expected_type"] != "int" {
		t.Errorf("expected int type context, got %q", perr.Context["expected_type"])
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		code     string
		field    string
		contains string
	}{
		{
			name:     "unknown export type",
			content:  "export:\n  exportType: gnuplot\n",
			code:     werrors.ErrConfigUnknownBackend,
			field:    "export.exportType",
			contains: "macro",
		},
		{
			name:    "short ranges",
			content: "export:\n  ranges: [0, 1, 2]\n",
			code:    werrors.ErrConfigInvalid,
			field:   "export.ranges",
		},
		{
			name:    "inverted ranges",
			content: "export:\n  ranges: [10, 0, 0, 5]\n",
			code:    werrors.ErrValidationInvalidValue,
			field:   "export.ranges",
		},
		{
			name:    "colour out of range",
			content: "export:\n  colors: [[255, 0, 300]]\n",
			code:    werrors.ErrConfigInvalid,
			field:   "export.colors",
		},
		{
			name:     "log level",
			content:  "log:\n  level: loud\n",
			code:     werrors.ErrConfigInvalid,
			field:    "log.level",
			contains: "debug",
		},
		{
			name:    "port",
			content: "server:\n  port: 70000\n",
			code:    werrors.ErrConfigInvalid,
			field:   "server.port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "relaxplot.yaml", tt.content))
			perr, ok := werrors.AsPlotError(err)
			if !ok {
				t.Fatalf("expected *werrors.PlotError, got %v", err)
			}
			if perr.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, perr.Code)
			}
			if perr.Context["field"] != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, perr.Context["field"])
			}
			if tt.contains != "" && !strings.Contains(perr.Context["valid_options"], tt.contains) {
				t.Errorf("expected valid options to mention %q, got %q", tt.contains, perr.Context["valid_options"])
			}
		})
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "relaxplot.yaml", `export:
  title: "Fit"
  xlabel: "x"
  ylabel: "y"
  ranges: [0, 10, 0, 5]
  exportType: r
  colors: [[255, 0, 0], [0, 0, 255]]
  file: out.r
server:
  port: 9000
  read_timeout: 5s
log:
  level: debug
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout.Std() != 5*time.Second {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout.Std() != 30*time.Second {
		t.Error("unset fields should keep their defaults")
	}

	cc, err := cfg.Export.ChartConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cc.Backend != chart.BackendStat || cc.Title != "Fit" || cc.Ranges != [4]float64{0, 10, 0, 5} {
		t.Errorf("unexpected chart config %+v", cc)
	}
	if len(cc.Palette) != 2 || cc.Palette[1] != (chart.RGB{B: 255}) {
		t.Errorf("unexpected palette %v", cc.Palette)
	}
	if cfg.Export.Destination() != "out.r" {
		t.Errorf("unexpected destination %q", cfg.Export.Destination())
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "relaxplot.toml", `
[export]
title = "Fit"
ranges = [0.0, 10.0, 0.0, 5.0]
exportType = "grace"
include_bars = false

[server]
port = 9100
idle_timeout = "1m"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Export.ExportType != "grace" || cfg.Export.IncludeBars {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Server.Port != 9100 || cfg.Server.IdleTimeout.Std() != time.Minute {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Export.Destination() != "ASCII.agr" {
		t.Errorf("expected the backend default file, got %q", cfg.Export.Destination())
	}
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Export.ExportType != "general" {
		t.Error("expected default config")
	}
}

func TestLoadOrDefault_FileNotFound(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || cfg.Server.Port != 8090 {
		t.Error("expected default config")
	}
}

// -----------------------------------------------------------------------------
// Error Helper Tests
// -----------------------------------------------------------------------------

func TestExtractYAMLErrorLocation(t *testing.T) {
	tests := []struct {
		name        string
		errStr      string
		expectedLn  int
		expectedCol int
	}{
		{
			name:       "yaml v3 line only",
			errStr:     "yaml: line 5: mapping values are not allowed here",
			expectedLn: 5,
		},
		{
			name:        "yaml with line and column",
			errStr:      "yaml: line 10:5: found character that cannot start any token",
			expectedLn:  10,
			expectedCol: 5,
		},
		{
			name:       "unmarshal error with line",
			errStr:     "yaml: unmarshal errors:\n  line 3: cannot unmarshal !!str into int",
			expectedLn: 3,
		},
		{
			name:       "no line number",
			errStr:     "yaml: some generic error",
			expectedLn: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := extractYAMLErrorLocation(tt.errStr)
			if line != tt.expectedLn {
				t.Errorf("expected line %d, got %d", tt.expectedLn, line)
			}
			if col != tt.expectedCol {
				t.Errorf("expected col %d, got %d", tt.expectedCol, col)
			}
		})
	}
}

func TestExtractExpectedType(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		expected string
	}{
		{"float64 pointer", "cannot unmarshal !!str into *float64", "float64"},
		{"int type", "cannot unmarshal !!str into int", "int"},
		{"no type", "some other error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractExpectedType(tt.errStr)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestIsValidOption(t *testing.T) {
	validOptions := []string{"a", "b", "c"}

	if !isValidOption("a", validOptions) {
		t.Error("expected 'a' to be valid")
	}
	if isValidOption("d", validOptions) {
		t.Error("expected 'd' to be invalid")
	}
	if isValidOption("", validOptions) {
		t.Error("expected empty string to be invalid")
	}
}

// -----------------------------------------------------------------------------
// Defaults, Save and Init
// -----------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}
	if !cfg.Export.IncludeBars {
		t.Error("expected bars to be included by default")
	}
	if len(cfg.Export.Colors) != 0 {
		t.Error("expected the default palette to be implied")
	}

	opts := cfg.Options(nil)
	if !opts.IncludeBars || opts.SkipInvalid {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{"relaxplot.yaml", "relaxplot.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Export.Title = "Saved"
			cfg.Server.ReadTimeout = Duration(7 * time.Second)

			if err := cfg.Save(path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("failed to reload: %v", err)
			}
			if loaded.Export.Title != "Saved" || loaded.Server.ReadTimeout.Std() != 7*time.Second {
				t.Errorf("round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestInitConfig_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxplot.yaml")
	if err := InitConfig(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to exist: %v", err)
	}
}

func TestInitConfig_SkipsExisting(t *testing.T) {
	path := writeConfig(t, "relaxplot.yaml", "export:\n  title: custom\n")
	if err := InitConfig(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "custom") {
		t.Error("existing config must not be overwritten")
	}
}
