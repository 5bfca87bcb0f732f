// Package export turns chart requests into plotting scripts.
// An Export walks a fixed sequence of steps: Configure, Layout, Render,
// Write and Close. Group-level data errors drop the offending group and are
// reported with the script; everything else stops the export.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/layout"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// State is the lifecycle position of an Export.
type State int

const (
	StateUninitialized State = iota
	StateConfigured
	StateLaidOut
	StateRendered
	StateWritten
	StateClosed
	StateFailed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateConfigured:    "configured",
	StateLaidOut:       "laid_out",
	StateRendered:      "rendered",
	StateWritten:       "written",
	StateClosed:        "closed",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// BarXLabel labels the x axis of every bar chart panel.
const BarXLabel = "Residue Number"

// Options controls an export.
type Options struct {
	// SkipInvalid writes the script even when groups were dropped.
	SkipInvalid bool

	// IncludeBars renders the bar chart figure for variable backends.
	IncludeBars bool

	// TemplateFile overrides the built-in templates when set.
	TemplateFile string

	// Manifest writes a manifest next to file destinations.
	Manifest bool

	// Logger receives progress and warnings. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the command line.
func DefaultOptions() Options {
	return Options{IncludeBars: true}
}

// Request is the input of one export.
type Request struct {
	Config   chart.Config
	Residues []chart.ResidueRecord
	Bars     []chart.BarGroup

	// Rejected carries group errors found while decoding the input, such as
	// malformed composite keys. They are reported like layout errors.
	Rejected []error
}

// Export is a single-use export. It is not safe for concurrent use;
// concurrent callers create one Export each.
type Export struct {
	id     string
	opts   Options
	logger *slog.Logger

	state State
	err   error

	req     Request
	tmpl    *template.Template
	palette chart.Palette
	plan    *Plan
	script  *Script
	skipped []error

	destination string
	writtenAt   time.Time
}

// New returns an uninitialized export with a fresh request id.
func New(opts Options) *Export {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Export{
		id:     id,
		opts:   opts,
		logger: logger.With("component", "export", "request_id", id),
	}
}

// ID returns the request id.
func (e *Export) ID() string { return e.id }

// State returns the current lifecycle state.
func (e *Export) State() State { return e.state }

// Err returns the error that moved the export to StateFailed.
func (e *Export) Err() error { return e.err }

// Skipped returns the group errors collected so far.
func (e *Export) Skipped() []error {
	return append([]error(nil), e.skipped...)
}

// Configure validates the configuration and loads the backend template.
// A template that lacks a required role fails here, before any output.
func (e *Export) Configure(req Request) error {
	if err := e.expect("Configure", StateUninitialized); err != nil {
		return err
	}
	if err := req.Config.Validate(); err != nil {
		return e.fail(err)
	}
	if len(req.Residues) == 0 && len(req.Bars) == 0 {
		return e.fail(werrors.ExportErrorf(werrors.ErrExportNoData, "request has no residues and no bar groups"))
	}

	b := req.Config.Backend
	var (
		tmpl *template.Template
		err  error
	)
	if e.opts.TemplateFile != "" {
		tmpl, err = template.LoadFile(e.opts.TemplateFile, b, e.logger)
	} else {
		tmpl, err = template.Builtin(b, e.logger)
	}
	if err != nil {
		return e.fail(err)
	}

	e.req = req
	e.tmpl = tmpl
	e.palette = req.Config.EffectivePalette()
	for _, rej := range req.Rejected {
		e.skip(rej)
	}
	e.state = StateConfigured
	e.logger.Debug("export configured",
		"backend", b.String(),
		"residues", len(req.Residues),
		"bar_groups", len(req.Bars),
		"palette", len(e.palette))
	return nil
}

// Layout groups the residue records, builds every subplot and sizes the
// grids. Too many residue groups is fatal; a group whose data cannot be
// unpacked is dropped and recorded.
func (e *Export) Layout() (*Plan, error) {
	if err := e.expect("Layout", StateConfigured); err != nil {
		return nil, err
	}
	cfg := e.req.Config

	lp, err := layout.NewPlan(e.req.Residues)
	if err != nil {
		return nil, e.fail(err)
	}

	namer := chart.NewVarNamer()
	plan := &Plan{Config: cfg, Palette: e.palette}

	kept := make(map[string]bool, len(lp.Groups))
	for _, g := range lp.Groups {
		sp, err := e.residueSubplot(g, namer)
		if err != nil {
			e.skip(err)
			continue
		}
		kept[g.Residue] = true
		plan.Residues = append(plan.Residues, sp)
	}
	for _, rec := range e.req.Residues {
		if kept[rec.Residue] {
			plan.Records = append(plan.Records, rec)
		}
	}

	if plan.Grid, err = layout.ComputeGrid(len(plan.Residues)); err != nil {
		return nil, e.fail(err)
	}

	switch {
	case cfg.Backend.Inline():
		// Inline backends draw the records as data sets of one graph.
		plan.Residues = nil
		if len(e.req.Bars) > 0 {
			e.logger.Info("backend has no bar chart support, bar groups ignored",
				"backend", cfg.Backend.String(), "bar_groups", len(e.req.Bars))
		}
	case e.opts.IncludeBars:
		for _, g := range e.req.Bars {
			sp, err := e.barSubplot(g, namer)
			if err != nil {
				e.skip(err)
				continue
			}
			plan.Bars = append(plan.Bars, sp)
		}
	}
	plan.BarGrid = layout.ColumnGrid(len(plan.Bars))

	e.plan = plan
	e.state = StateLaidOut
	e.logger.Debug("export laid out",
		"grid", fmt.Sprintf("%dx%d", plan.Grid.Rows, plan.Grid.Cols),
		"residue_panels", len(plan.Residues),
		"bar_panels", len(plan.Bars),
		"skipped", len(e.skipped))
	return plan, nil
}

func (e *Export) residueSubplot(g layout.Group, namer *chart.VarNamer) (*chart.Subplot, error) {
	cfg := e.req.Config
	sp := chart.NewSubplot(fmt.Sprintf("%s for res %s", cfg.Title, g.Residue),
		cfg.XLabel, cfg.YLabel, chart.PlotScatter)

	base := "res" + g.Residue
	labels := make([]string, 0, len(g.Records))
	colors := make([]chart.Color, 0, len(g.Records))
	for i, rec := range g.Records {
		if err := sp.Unpack(rec.Raw, rec.Fitted, chart.SeriesName{Base: base, Index: i + 1}, namer); err != nil {
			return nil, groupError(err, "residue", g.Residue)
		}
		labels = append(labels, rec.Name)
		colors = append(colors, chart.ScatterColor(i, len(e.palette)))
	}
	sp.SetColors(colors)
	sp.SetLegend(labels)
	sp.SetRanges(cfg.XRange(), cfg.YRange())
	return sp, sp.Validate()
}

func (e *Export) barSubplot(g chart.BarGroup, namer *chart.VarNamer) (*chart.Subplot, error) {
	if len(g.Series) == 0 {
		return nil, groupError(werrors.DataErrorf(werrors.ErrDataShapeMismatch, "bar group has no series"),
			"bar", g.ID())
	}
	first := g.Series[0].Key
	sp := chart.NewSubplot(first.Title+":"+first.DataFitted, BarXLabel, first.DataFitted, chart.PlotBar)

	labels := make([]string, 0, len(g.Series))
	for _, s := range g.Series {
		name := chart.SeriesName{Base: s.Key.DataFitted + "_" + s.Key.Fit}
		if err := sp.Unpack(s.Rows, nil, name, namer); err != nil {
			return nil, groupError(err, "bar", g.ID())
		}
		labels = append(labels, s.Key.Fit)
	}
	sp.SetColors(chart.BarColors(e.req.Config.Backend, len(g.Series)))
	sp.SetLegend(labels)
	sp.SetRanges([2]float64{g.Ranges[0], g.Ranges[1]}, [2]float64{g.Ranges[2], g.Ranges[3]})
	return sp, sp.Validate()
}

// groupError tags err with the group it dropped.
func groupError(err error, kind, id string) error {
	if pe, ok := werrors.AsPlotError(err); ok {
		pe.WithContext("kind", kind).WithContext("group_id", id)
	}
	return err
}

// Render produces the script for the laid-out plan. The returned script
// carries the group errors of everything left out.
func (e *Export) Render() (*Script, error) {
	if err := e.expect("Render", StateLaidOut); err != nil {
		return nil, err
	}
	script := NewRenderer(e.tmpl, e.logger).Render(e.plan)
	script.Skipped = e.Skipped()

	e.script = script
	e.state = StateRendered
	e.logger.Debug("export rendered", "lines", len(script.Lines), "subplots", script.Subplots)
	return script, nil
}

// Write hands the rendered script to sink. When groups were dropped the
// write is refused unless Options.SkipInvalid is set, so no partial script
// is produced by default.
func (e *Export) Write(sink Sink) error {
	if err := e.expect("Write", StateRendered); err != nil {
		return err
	}
	if len(e.skipped) > 0 {
		if !e.opts.SkipInvalid {
			return e.fail(werrors.ExportErrorf(werrors.ErrExportSkippedGroups,
				"%d group(s) could not be exported", len(e.skipped)).
				WithContext("skipped", strconv.Itoa(len(e.skipped))).
				WithCause(errors.Join(e.skipped...)))
		}
		for _, err := range e.skipped {
			e.logger.Warn("group skipped", "error", err)
		}
	}
	if err := sink.Write(e.script.Bytes()); err != nil {
		return e.fail(err)
	}

	e.destination = sink.String()
	e.writtenAt = time.Now().UTC()
	e.state = StateWritten
	e.logger.Info("script written",
		"destination", e.destination,
		"backend", e.script.Backend.String(),
		"hash", ShortHash(e.script.Hash()))
	return nil
}

// Close finishes a written export. Closing a failed export is a no-op.
func (e *Export) Close() error {
	switch e.state {
	case StateFailed, StateClosed:
		return nil
	case StateWritten:
		e.state = StateClosed
		return nil
	}
	return e.expect("Close", StateWritten)
}

// Manifest describes the written script.
func (e *Export) Manifest() (*Manifest, error) {
	if e.state != StateWritten && e.state != StateClosed {
		return nil, werrors.ExportErrorf(werrors.ErrExportInvalidState,
			"manifest requested in state %s", e.state).
			WithContext("state", e.state.String())
	}
	palette := make([]string, len(e.palette))
	for i, c := range e.palette {
		palette[i] = "#" + c.Hex()
	}
	var skipped []string
	for _, err := range e.skipped {
		skipped = append(skipped, err.Error())
	}
	return &Manifest{
		RequestID:   e.id,
		Backend:     e.script.Backend.String(),
		Destination: e.destination,
		ScriptHash:  e.script.Hash(),
		Algorithm:   HashAlgorithm,
		Grid:        e.script.Grid,
		BarGrid:     e.script.BarGrid,
		Subplots:    e.script.Subplots,
		Lines:       len(e.script.Lines),
		Residues:    len(e.req.Residues),
		BarGroups:   len(e.req.Bars),
		Palette:     palette,
		Skipped:     skipped,
		GeneratedAt: e.writtenAt,
	}, nil
}

// expect checks the current state. A mismatch fails the export.
func (e *Export) expect(step string, want State) error {
	if e.state == want {
		return nil
	}
	err := werrors.ExportErrorf(werrors.ErrExportInvalidState,
		"%s requires state %s, export is %s", step, want, e.state).
		WithContext("step", step).
		WithContext("state", e.state.String())
	if e.state == StateFailed && e.err != nil {
		err.WithCause(e.err)
	}
	return e.fail(err)
}

func (e *Export) fail(err error) error {
	if e.state != StateFailed {
		e.err = err
	}
	e.state = StateFailed
	e.logger.Debug("export failed", "error", err)
	return err
}

func (e *Export) skip(err error) {
	e.skipped = append(e.skipped, err)
	e.logger.Debug("group dropped", "error", err)
}

// Result is the outcome of Run.
type Result struct {
	ID       string
	Script   *Script
	Manifest *Manifest
}

// Run performs a complete export of req into sink. A nil sink writes to
// the configured file, or the backend's default file name.
func Run(req Request, sink Sink, opts Options) (*Result, error) {
	e := New(opts)
	defer e.Close()

	res := &Result{ID: e.id}
	if err := e.Configure(req); err != nil {
		return res, err
	}
	if _, err := e.Layout(); err != nil {
		return res, err
	}
	script, err := e.Render()
	if err != nil {
		return res, err
	}
	res.Script = script

	if sink == nil {
		path := req.Config.File
		if path == "" {
			path = req.Config.Backend.DefaultFile()
		}
		sink = NewFileSink(path)
	}
	if err := e.Write(sink); err != nil {
		return res, err
	}

	m, err := e.Manifest()
	if err != nil {
		return res, err
	}
	res.Manifest = m
	if fs, ok := sink.(*FileSink); ok && opts.Manifest {
		if err := m.WriteFile(ManifestPath(fs.Path)); err != nil {
			return res, err
		}
	}
	return res, nil
}
