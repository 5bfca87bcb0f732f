package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/relaxplot/pkg/config"
	"github.com/r3d91ll/relaxplot/pkg/dataset"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/export"
	"github.com/r3d91ll/relaxplot/pkg/spinner"
)

// exportFlags holds the export command's overrides of the config file.
type exportFlags struct {
	exportType  string
	out         string
	title       string
	xlabel      string
	ylabel      string
	ranges      []float64
	noBars      bool
	skipInvalid bool
	manifest    bool
	templates   string
	watch       bool
}

func (a *app) exportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Render a dataset to a plotting script",
		Long: `Render a dataset (.json, .yaml, .csv, .tsv or .xlsx) to a Grace, R or
Python script. Flags override the export section of the config file.`,
		Example: `  relaxplot export fits.yaml --type stat --out fits.r
  relaxplot export fits.xlsx --type macro --ranges 0,1000,0,40
  relaxplot export fits.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			applyExportFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if !f.watch {
				res, err := exportOnce(args[0], cfg, a)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, summary(res, cfg))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watchExport(ctx, args[0], cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.exportType, "type", "t", "", "export type: macro, stat, general (or grace, r, python)")
	fl.StringVarP(&f.out, "out", "o", "", "output file (default: the backend's file name)")
	fl.StringVar(&f.title, "title", "", "figure title")
	fl.StringVar(&f.xlabel, "xlabel", "", "x axis label")
	fl.StringVar(&f.ylabel, "ylabel", "", "y axis label")
	fl.Float64SliceVar(&f.ranges, "ranges", nil, "axis ranges xmin,xmax,ymin,ymax")
	fl.BoolVar(&f.noBars, "no-bars", false, "leave out the bar chart figure")
	fl.BoolVar(&f.skipInvalid, "skip-invalid", false, "write the script even when groups are dropped")
	fl.BoolVar(&f.manifest, "manifest", false, "write <out>.manifest.json next to the script")
	fl.StringVar(&f.templates, "templates", "", "template override file")
	fl.BoolVarP(&f.watch, "watch", "w", false, "re-export whenever the dataset changes")
	return cmd
}

// applyExportFlags copies the flags that were set onto cfg.
func applyExportFlags(cmd *cobra.Command, f *exportFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	e := &cfg.Export
	if changed("type") {
		if e.ExportType != f.exportType && !changed("out") {
			e.File = ""
		}
		e.ExportType = f.exportType
	}
	if changed("out") {
		e.File = f.out
	}
	if changed("title") {
		e.Title = f.title
	}
	if changed("xlabel") {
		e.XLabel = f.xlabel
	}
	if changed("ylabel") {
		e.YLabel = f.ylabel
	}
	if changed("ranges") {
		e.Ranges = f.ranges
	}
	if changed("no-bars") {
		e.IncludeBars = !f.noBars
	}
	if changed("skip-invalid") {
		e.SkipInvalid = f.skipInvalid
	}
	if changed("manifest") {
		e.Manifest = f.manifest
	}
	if changed("templates") {
		cfg.Templates.Path = f.templates
	}
}

// exportOnce loads path and writes the script configured by cfg.
func exportOnce(path string, cfg *config.Config, a *app) (*export.Result, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	chartCfg, err := cfg.Export.ChartConfig()
	if err != nil {
		return nil, err
	}
	chartCfg.File = cfg.Export.Destination()

	return export.Run(export.Request{
		Config:   chartCfg,
		Residues: ds.Residues,
		Bars:     ds.Bars,
		Rejected: ds.Rejected,
	}, export.NewFileSink(chartCfg.File), cfg.Options(a.logger))
}

func summary(res *export.Result, cfg *config.Config) string {
	s := res.Script
	line := fmt.Sprintf("✓ Wrote %s (%s, %d lines, grid %dx%d, sha256 %s)",
		cfg.Export.Destination(), s.Backend, len(s.Lines), s.Grid.Rows, s.Grid.Cols,
		export.ShortHash(res.Manifest.ScriptHash))
	if n := len(s.Skipped); n > 0 {
		line += fmt.Sprintf(", %d group(s) skipped", n)
	}
	return line
}

// watchExport exports once and again after every change to path until ctx
// is cancelled. Failed exports are reported and watching continues.
func (a *app) watchExport(ctx context.Context, path string, cfg *config.Config) error {
	ind := spinner.NewWithConfig(spinner.Config{Message: "Watching " + path, Writer: a.errOut})
	run := func() {
		ind.Stop()
		res, err := exportOnce(path, cfg, a)
		if err != nil {
			msg := err.Error()
			if pe, ok := werrors.AsPlotError(err); ok {
				msg = pe.Code + ": " + pe.Message
			}
			ind.Fail(msg)
		} else {
			ind.Success(summary(res, cfg)[len("✓ "):])
		}
		ind.Start()
	}

	run()
	defer ind.Stop()
	return watchFile(ctx, path, defaultDebounce, a.logger, run)
}
