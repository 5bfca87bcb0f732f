// Package config handles relaxplot configuration loading.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/export"
)

// Config is the root configuration structure.
type Config struct {
	Export    ExportConfig    `yaml:"export" toml:"export"`
	Templates TemplatesConfig `yaml:"templates" toml:"templates"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Shell     ShellConfig     `yaml:"shell" toml:"shell"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// ExportConfig holds the chart settings and export defaults.
type ExportConfig struct {
	Title  string `yaml:"title" toml:"title"`
	XLabel string `yaml:"xlabel" toml:"xlabel"`
	YLabel string `yaml:"ylabel" toml:"ylabel"`

	// Ranges is [xmin, xmax, ymin, ymax] for the residue panels.
	Ranges []float64 `yaml:"ranges" toml:"ranges"`

	// ExportType names the backend: macro, stat or general, or an alias.
	ExportType string `yaml:"exportType" toml:"exportType"`

	// Colors lists [r, g, b] triples. Empty means the default palette.
	Colors [][]int `yaml:"colors" toml:"colors"`

	// File is the script destination. Empty means the backend's default name.
	File string `yaml:"file" toml:"file"`

	IncludeBars bool `yaml:"include_bars" toml:"include_bars"`
	SkipInvalid bool `yaml:"skip_invalid" toml:"skip_invalid"`
	Manifest    bool `yaml:"manifest" toml:"manifest"`
}

// TemplatesConfig points at an optional template override file.
type TemplatesConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Host          string   `yaml:"host" toml:"host"`
	Port          int      `yaml:"port" toml:"port"`
	ReadTimeout   Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout  Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout   Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	CORSOrigins   []string `yaml:"cors_origins" toml:"cors_origins"`
	EnableLogging bool     `yaml:"enable_logging" toml:"enable_logging"`
}

// ShellConfig holds interactive shell settings.
type ShellConfig struct {
	HistoryFile string `yaml:"history_file" toml:"history_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Valid option sets.
var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Title:       "Relaxation dispersion",
			XLabel:      "CPMG frequency (Hz)",
			YLabel:      "R2,eff (1/s)",
			Ranges:      []float64{0, 1000, 0, 50},
			ExportType:  chart.BackendGeneral.String(),
			IncludeBars: true,
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8090,
			ReadTimeout:   Duration(30 * time.Second),
			WriteTimeout:  Duration(30 * time.Second),
			IdleTimeout:   Duration(120 * time.Second),
			CORSOrigins:   []string{"*"},
			EnableLogging: true,
		},
		Shell: ShellConfig{
			HistoryFile: ".relaxplot_history",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// isTOML reports whether path names a TOML file.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from a YAML or TOML file over the defaults and
// validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, werrors.AttachSuggestions(
				werrors.WrapConfig(err, werrors.ErrConfigNotFound, "configuration file not found").
					WithContext("path", path))
		}
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to read config").
			WithContext("path", path)
	}

	cfg := Default()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, parseError(err, path)
	}

	if err := cfg.Validate(); err != nil {
		if pe, ok := werrors.AsPlotError(err); ok {
			pe.WithContext("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file, as TOML for .toml paths and YAML
// otherwise.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return werrors.WrapConfig(err, werrors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", dir)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return werrors.WrapConfig(err, werrors.ErrConfigWriteFailed, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return werrors.WrapConfig(err, werrors.ErrConfigWriteFailed, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	for _, p := range []string{
		"relaxplot.yaml",
		"relaxplot.toml",
		filepath.Join("config", "relaxplot.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "relaxplot.yaml"
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // Already exists
	}

	cfg := Default()
	return cfg.Save(path)
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.Export.ChartConfig(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalidValue("server.port", itoa(c.Server.Port), "").
			WithContext("valid_range", "0-65535")
	}
	if c.Log.Level != "" && !isValidOption(strings.ToLower(c.Log.Level), validLogLevels) {
		return invalidValue("log.level", c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	if c.Log.Format != "" && !isValidOption(strings.ToLower(c.Log.Format), validLogFormats) {
		return invalidValue("log.format", c.Log.Format, strings.Join(validLogFormats, ", "))
	}
	return nil
}

// ChartConfig converts the export section into a validated chart.Config.
func (e *ExportConfig) ChartConfig() (chart.Config, error) {
	b, err := chart.ParseBackend(e.ExportType)
	if err != nil {
		if pe, ok := werrors.AsPlotError(err); ok {
			pe.WithContext("field", "export.exportType").
				WithContext("value", e.ExportType).
				WithContext("valid_options", backendOptions())
		}
		return chart.Config{}, err
	}
	if len(e.Ranges) != 4 {
		return chart.Config{}, invalidValue("export.ranges", formatRanges(e.Ranges), "").
			WithContext("expected", "[xmin, xmax, ymin, ymax]")
	}

	palette := make(chart.Palette, 0, len(e.Colors))
	for _, c := range e.Colors {
		rgb, err := chart.RGBFromInts(c)
		if err != nil {
			return chart.Config{}, invalidValue("export.colors", formatInts(c), "").
				WithCause(err)
		}
		palette = append(palette, rgb)
	}

	cfg := chart.Config{
		Title:   e.Title,
		XLabel:  e.XLabel,
		YLabel:  e.YLabel,
		Backend: b,
		Palette: palette,
		File:    e.File,
	}
	copy(cfg.Ranges[:], e.Ranges)
	if err := cfg.Validate(); err != nil {
		if pe, ok := werrors.AsPlotError(err); ok {
			pe.WithContext("field", "export.ranges")
		}
		return chart.Config{}, err
	}
	return cfg, nil
}

// Options returns export options from the configuration.
func (c *Config) Options(logger *slog.Logger) export.Options {
	return export.Options{
		SkipInvalid:  c.Export.SkipInvalid,
		IncludeBars:  c.Export.IncludeBars,
		TemplateFile: c.Templates.Path,
		Manifest:     c.Export.Manifest,
		Logger:       logger,
	}
}

// Destination returns the configured output file, or the backend default.
func (e *ExportConfig) Destination() string {
	if e.File != "" {
		return e.File
	}
	b, err := chart.ParseBackend(e.ExportType)
	if err != nil {
		return ""
	}
	return b.DefaultFile()
}

func backendOptions() string {
	names := make([]string, 0, len(chart.Backends()))
	for _, b := range chart.Backends() {
		names = append(names, b.String())
	}
	return strings.Join(names, ", ")
}
