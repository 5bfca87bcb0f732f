// Package shell provides the interactive REPL for relaxplot.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/config"
	"github.com/r3d91ll/relaxplot/pkg/dataset"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/export"
	"github.com/r3d91ll/relaxplot/pkg/help"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// Shell is the interactive command-line interface.
type Shell struct {
	rl       *readline.Instance
	out      io.Writer
	errs     *werrors.Formatter
	logger   *slog.Logger
	prompter Prompter
	color    bool

	settings  config.ExportConfig
	templates string
	opts      export.Options

	data     *dataset.Dataset
	dataPath string
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string

	// Settings seeds the export settings. Nil means config.Default().
	Settings *config.Config

	// Dataset is loaded before the first prompt when set.
	Dataset string

	Logger *slog.Logger
}

// New creates a new interactive shell.
func New(cfg Config) (*Shell, error) {
	s := newShell(cfg, os.Stdout, nil)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mrelaxplot>\033[0m ",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewShellCompleter(),
	})
	if err != nil {
		return nil, werrors.Wrap(err, werrors.ErrShellInitFailed, werrors.CategoryCommand,
			"failed to start line editor")
	}
	s.rl = rl
	s.out = rl.Stdout()
	s.errs.Writer = rl.Stderr()
	s.prompter = NewLinePrompter(rl)
	s.color = werrors.IsTTY(os.Stdout)
	s.errs.UseColor = s.color

	if cfg.Dataset != "" {
		if err := s.load(cfg.Dataset); err != nil {
			rl.Close()
			return nil, err
		}
	}
	return s, nil
}

// newShell builds a shell without a line editor. Commands run through
// Execute write to out.
func newShell(cfg Config, out io.Writer, prompter Prompter) *Shell {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exp := settings.Export
	exp.Ranges = append([]float64(nil), settings.Export.Ranges...)

	return &Shell{
		out:       out,
		errs:      &werrors.Formatter{Writer: out, Indent: "  "},
		logger:    logger,
		prompter:  prompter,
		settings:  exp,
		templates: settings.Templates.Path,
		opts:      settings.Options(logger),
	}
}

// Run starts the interactive loop.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	fmt.Fprintln(s.out, "relaxplot shell. Load a dataset with /load, then /export.")
	fmt.Fprintln(s.out, "Type /help for commands, Tab to complete.")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := s.Execute(line); err != nil {
			if err == errQuit {
				return nil
			}
			s.errs.Display(err)
		}
	}
}

var errQuit = errors.New("quit")

// Execute runs one input line. Blank lines are ignored.
func (s *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return werrors.AttachSuggestions(werrors.CommandErrorf(werrors.ErrCommandNotFound,
			"commands start with /").
			WithContext("input", line))
	}

	parts, err := shellwords.Parse(line)
	if err != nil {
		return werrors.Wrap(err, werrors.ErrCommandInvalidArg, werrors.CategoryCommand,
			"cannot split command line").
			WithContext("input", line)
	}
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]
	s.logger.Debug("shell command", "command", cmd, "args", len(args))

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit

	case "/help", "/h":
		return s.printHelp(args)

	case "/load":
		if len(args) != 1 {
			return usage("/load <dataset>")
		}
		return s.load(args[0])

	case "/set":
		return s.handleSet(args)

	case "/show":
		s.printSettings()

	case "/backends":
		s.printBackends()

	case "/export":
		return s.handleExport(args)

	case "/grace":
		return s.handleExport(append([]string{chart.BackendMacro.String()}, args...))

	case "/r":
		return s.handleExport(append([]string{chart.BackendStat.String()}, args...))

	case "/python":
		return s.handleExport(append([]string{chart.BackendGeneral.String()}, args...))

	case "/preview":
		return s.handlePreview(args)

	case "/bars":
		return toggle(args, "/bars on|off", &s.opts.IncludeBars)

	case "/skip":
		return toggle(args, "/skip on|off", &s.opts.SkipInvalid)

	case "/manifest":
		return toggle(args, "/manifest on|off", &s.opts.Manifest)

	default:
		return werrors.AttachSuggestions(werrors.CommandErrorf(werrors.ErrCommandNotFound,
			"unknown command %s", cmd).
			WithContext("command", cmd))
	}
	return nil
}

func usage(text string) error {
	return werrors.CommandErrorf(werrors.ErrCommandMissingArgs, "usage: %s", text)
}

func toggle(args []string, text string, dst *bool) error {
	if len(args) != 1 {
		return usage(text)
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		*dst = true
	case "off", "false", "no":
		*dst = false
	default:
		return werrors.CommandErrorf(werrors.ErrCommandInvalidArg,
			"expected on or off, got %q", args[0]).
			WithSuggestion("Usage: " + text)
	}
	return nil
}

func (s *Shell) load(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	s.data = ds
	s.dataPath = path
	fmt.Fprintf(s.out, "Loaded %s: %d residues, %d bar groups\n", path, len(ds.Residues), len(ds.Bars))
	for _, r := range ds.Rejected {
		fmt.Fprintf(s.out, "  \033[33mrejected:\033[0m %v\n", r)
	}
	return nil
}

// handleSet handles /set <key> <value...>.
func (s *Shell) handleSet(args []string) error {
	if len(args) < 2 {
		return usage("/set <title|xlabel|ylabel|ranges|type|file|colors|templates> <value>")
	}
	key, vals := strings.ToLower(args[0]), args[1:]
	next := s.settings
	next.Ranges = append([]float64(nil), s.settings.Ranges...)

	switch key {
	case "title":
		next.Title = strings.Join(vals, " ")
	case "xlabel":
		next.XLabel = strings.Join(vals, " ")
	case "ylabel":
		next.YLabel = strings.Join(vals, " ")
	case "file":
		next.File = vals[0]
	case "type":
		b, err := chart.ParseBackend(vals[0])
		if err != nil {
			return err
		}
		next.ExportType = b.String()
	case "ranges":
		r, err := parseFloats(vals)
		if err != nil {
			return err
		}
		next.Ranges = r
	case "colors":
		colors, err := parseColors(vals)
		if err != nil {
			return err
		}
		next.Colors = colors
	case "templates":
		s.templates = vals[0]
		s.opts.TemplateFile = vals[0]
		return nil
	default:
		return werrors.CommandErrorf(werrors.ErrCommandInvalidArg, "unknown setting %q", key).
			WithSuggestion("Settings: " + strings.Join(settingKeys, ", "))
	}

	if _, err := next.ChartConfig(); err != nil {
		return err
	}
	s.settings = next
	return nil
}

var settingKeys = []string{"title", "xlabel", "ylabel", "ranges", "type", "file", "colors", "templates"}

// parseFloats accepts values separated by spaces, commas or both.
func parseFloats(vals []string) ([]float64, error) {
	var out []float64
	for _, f := range strings.FieldsFunc(strings.Join(vals, " "), isSep) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, werrors.CommandErrorf(werrors.ErrCommandInvalidArg, "invalid number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseColors reads one r,g,b triple per argument.
func parseColors(vals []string) ([][]int, error) {
	if len(vals) == 1 && strings.EqualFold(vals[0], "default") {
		return nil, nil
	}
	out := make([][]int, 0, len(vals))
	for _, v := range vals {
		fields := strings.FieldsFunc(v, isSep)
		rgb := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, werrors.CommandErrorf(werrors.ErrCommandInvalidArg, "invalid color component %q", f).
					WithSuggestion("Write colors as r,g,b triples, e.g. 255,0,0")
			}
			rgb = append(rgb, n)
		}
		out = append(out, rgb)
	}
	return out, nil
}

func isSep(r rune) bool {
	return r == ',' || r == ' ' || r == '\t'
}

// request builds an export request from the current settings, with the
// backend and destination optionally overridden.
func (s *Shell) request(args []string) (export.Request, error) {
	if s.data == nil || s.data.Empty() {
		return export.Request{}, werrors.AttachSuggestions(
			werrors.ExportErrorf(werrors.ErrExportNoData, "no dataset loaded"))
	}
	settings := s.settings
	if len(args) > 0 {
		b, err := chart.ParseBackend(args[0])
		if err != nil {
			return export.Request{}, err
		}
		if b.String() != settings.ExportType {
			settings.File = ""
		}
		settings.ExportType = b.String()
	}
	if len(args) > 1 {
		settings.File = args[1]
	}
	if settings.File == "" {
		settings.File = settings.Destination()
	}
	cfg, err := settings.ChartConfig()
	if err != nil {
		return export.Request{}, err
	}
	return export.Request{
		Config:   cfg,
		Residues: s.data.Residues,
		Bars:     s.data.Bars,
		Rejected: s.data.Rejected,
	}, nil
}

// handleExport handles /export [type] [file].
func (s *Shell) handleExport(args []string) error {
	if len(args) > 2 {
		return usage("/export [type] [file]")
	}
	req, err := s.request(args)
	if err != nil {
		return err
	}

	path := req.Config.File
	if _, err := os.Stat(path); err == nil {
		ok, err := s.prompter.Confirm(fmt.Sprintf("%s exists. Overwrite?", path))
		if err != nil {
			return werrors.Wrap(err, werrors.ErrCommandInvalidArg, werrors.CategoryCommand,
				"confirmation failed")
		}
		if !ok {
			fmt.Fprintln(s.out, "Export cancelled.")
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot inspect output file").
			WithContext("path", path)
	}

	res, err := export.Run(req, export.NewFileSink(path), s.opts)
	if err != nil {
		return err
	}
	s.printResult(res, path)
	return nil
}

// handlePreview handles /preview [type]: the script is printed instead of
// written.
func (s *Shell) handlePreview(args []string) error {
	if len(args) > 1 {
		return usage("/preview [type]")
	}
	req, err := s.request(args)
	if err != nil {
		return err
	}
	opts := s.opts
	opts.Manifest = false
	_, err = export.Run(req, &export.WriterSink{W: s.out, Name: "preview"}, opts)
	return err
}

func (s *Shell) printResult(res *export.Result, path string) {
	script := res.Script
	fmt.Fprintf(s.out, "\033[32m✓\033[0m Wrote %s (%s, %d lines, grid %dx%d)\n",
		path, script.Backend, len(script.Lines), script.Grid.Rows, script.Grid.Cols)
	if res.Manifest != nil {
		fmt.Fprintf(s.out, "  sha256: %s\n", export.ShortHash(res.Manifest.ScriptHash))
	}
	for _, skipped := range script.Skipped {
		fmt.Fprintf(s.out, "  \033[33mskipped:\033[0m %v\n", skipped)
	}
}

func (s *Shell) printHelp(args []string) error {
	r := help.NewRenderer(s.out, s.color)
	if len(args) == 0 {
		r.RenderFull()
		return nil
	}
	if !r.RenderCommand(args[0]) {
		return werrors.CommandErrorf(werrors.ErrCommandNotFound, "no help for %s", args[0]).
			WithContext("command", args[0])
	}
	return nil
}

func (s *Shell) printSettings() {
	e := s.settings
	fmt.Fprintln(s.out, "Settings:")
	fmt.Fprintf(s.out, "  type:      %s\n", e.ExportType)
	fmt.Fprintf(s.out, "  file:      %s\n", e.Destination())
	fmt.Fprintf(s.out, "  title:     %s\n", e.Title)
	fmt.Fprintf(s.out, "  xlabel:    %s\n", e.XLabel)
	fmt.Fprintf(s.out, "  ylabel:    %s\n", e.YLabel)
	fmt.Fprintf(s.out, "  ranges:    %v\n", e.Ranges)
	if len(e.Colors) == 0 {
		fmt.Fprintln(s.out, "  colors:    default")
	} else {
		fmt.Fprintf(s.out, "  colors:    %v\n", e.Colors)
	}
	if s.templates != "" {
		fmt.Fprintf(s.out, "  templates: %s\n", s.templates)
	}
	fmt.Fprintf(s.out, "  bars: %s  skip: %s  manifest: %s\n",
		onOff(s.opts.IncludeBars), onOff(s.opts.SkipInvalid), onOff(s.opts.Manifest))

	if s.data == nil {
		fmt.Fprintln(s.out, "Dataset: none")
		return
	}
	fmt.Fprintf(s.out, "Dataset: %s\n", s.dataPath)
	fmt.Fprintf(s.out, "  residues:   %d (%s)\n", len(s.data.Residues), strings.Join(s.data.ResidueIDs(), ", "))
	fmt.Fprintf(s.out, "  bar groups: %d\n", len(s.data.Bars))
	if len(s.data.Rejected) > 0 {
		fmt.Fprintf(s.out, "  rejected:   %d\n", len(s.data.Rejected))
	}
}

func (s *Shell) printBackends() {
	fmt.Fprintln(s.out, "Backends:")
	for _, b := range chart.Backends() {
		mark := " "
		if b.String() == s.settings.ExportType {
			mark = "*"
		}
		fmt.Fprintf(s.out, "  %s %-8s %-10s %d roles\n", mark, b, b.DefaultFile(), len(template.Roles(b)))
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
