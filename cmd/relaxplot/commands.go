package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/relaxplot/pkg/api"
	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/config"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/export"
	"github.com/r3d91ll/relaxplot/pkg/shell"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

func (a *app) backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List export types, default files and template roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range chart.Backends() {
				mark := " "
				if b.String() == a.cfg.Export.ExportType {
					mark = "*"
				}
				roles := template.Roles(b)
				names := make([]string, len(roles))
				for i, r := range roles {
					names[i] = string(r)
				}
				fmt.Fprintf(a.out, "%s %-8s %-10s %s\n", mark, b, b.DefaultFile(), strings.Join(names, " "))
			}
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "verify <script>",
		Short: "Check a script against the manifest written with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := args[0]
			if manifestPath == "" {
				manifestPath = export.ManifestPath(script)
			}
			m, err := export.ReadManifest(manifestPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(script)
			if err != nil {
				return werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to read script").
					WithContext("path", script)
			}
			if !m.Verify(data) {
				return werrors.ValidationErrorf(werrors.ErrValidationInvalidValue,
					"script does not match its manifest").
					WithContext("path", script).
					WithContext("expected", export.ShortHash(m.ScriptHash)).
					WithContext("actual", export.ShortHash(export.HashBytes(data))).
					WithSuggestion("Re-export the dataset to regenerate the script")
			}
			fmt.Fprintf(a.out, "✓ %s matches %s (%s, sha256 %s)\n",
				script, manifestPath, m.Backend, export.ShortHash(m.ScriptHash))
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "manifest file (default: <script>.manifest.json)")
	return cmd
}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [dataset]",
		Short: "Start the interactive shell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shell.Config{
				HistoryFile: a.cfg.Shell.HistoryFile,
				Settings:    a.cfg,
				Logger:      a.logger,
			}
			if len(args) == 1 {
				cfg.Dataset = args[0]
			}
			sh, err := shell.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return sh.Run(ctx)
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			srv := api.NewServer(api.Options{
				Config:     a.cfg,
				ConfigPath: a.configPath,
				Logger:     a.logger,
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(a.out, "relaxplot API on http://%s\n", srv.Address())
			return srv.ListenAndServe(ctx, 10*time.Second)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port")
	return cmd
}

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				fmt.Fprintf(a.out, "Config already exists at %s (use --force to overwrite)\n", a.configPath)
				return nil
			}
			if err := config.Default().Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Config initialized at %s\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
