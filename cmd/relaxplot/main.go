// relaxplot turns relaxation dispersion fits into plotting scripts for
// Grace, R (ggplot2) or Python (matplotlib).
//
// Commands:
//   - export:   render a dataset to a script, optionally re-exporting on change
//   - backends: list export types and their template roles
//   - verify:   check a script against its manifest
//   - shell:    interactive session
//   - serve:    HTTP and WebSocket API
//   - init:     write a default configuration file
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/relaxplot/pkg/config"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

const version = "1.0.0"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger

	out    io.Writer
	errOut io.Writer
}

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		f := werrors.DefaultFormatter()
		f.Writer = a.errOut
		f.Display(err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relaxplot",
		Short:         "Export relaxation dispersion fits as plotting scripts",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: relaxplot.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(
		a.exportCmd(),
		a.backendsCmd(),
		a.verifyCmd(),
		a.shellCmd(),
		a.serveCmd(),
		a.initCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup() error {
	if a.configPath == "" {
		a.configPath = config.DefaultConfigPath()
	}
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	logger, err := newLogger(cfg.Log, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// newLogger builds a slog logger from the log section.
func newLogger(lc config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, werrors.ConfigError(werrors.ErrConfigInvalid, "invalid log level").
				WithContext("value", lc.Level).
				WithContext("valid_options", "debug, info, warn, error")
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(lc.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, werrors.ConfigError(werrors.ErrConfigInvalid, "invalid log format").
			WithContext("value", lc.Format).
			WithContext("valid_options", "text, json")
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "relaxplot %s\n", version)
			return nil
		},
	}
}
