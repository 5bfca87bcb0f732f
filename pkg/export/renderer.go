package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/layout"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// Figure indices.
const (
	figureResidues = 0
	figureBars     = 1
)

// Plan is the laid-out content of one export: the subplots of both figures
// and, for inline backends, the records written as data blocks.
type Plan struct {
	Config  chart.Config
	Palette chart.Palette

	// Grid arranges the residue figure; BarGrid the bar chart figure.
	Grid    layout.Grid
	BarGrid layout.Grid

	Residues []*chart.Subplot
	Bars     []*chart.Subplot

	// Records are the residue records of the surviving groups, in input order.
	Records []chart.ResidueRecord
}

// Script is a rendered script held in memory.
type Script struct {
	Backend  chart.Backend
	Lines    []string
	Grid     layout.Grid
	BarGrid  layout.Grid
	Subplots int

	// Skipped lists the group errors of records left out of the script.
	Skipped []error
}

// Text joins the lines with newlines and terminates the last one.
func (s *Script) Text() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return strings.Join(s.Lines, "\n") + "\n"
}

// Bytes returns the UTF-8 script text.
func (s *Script) Bytes() []byte {
	return []byte(s.Text())
}

// Hash returns the hex SHA-256 of the script text.
func (s *Script) Hash() string {
	return HashBytes(s.Bytes())
}

// Renderer turns a Plan into script lines using one backend template.
// All output is buffered; a Renderer never touches the destination.
type Renderer struct {
	tmpl   *template.Template
	comp   composer
	logger *slog.Logger
	lines  []string
}

// NewRenderer returns a renderer for tmpl's backend.
func NewRenderer(tmpl *template.Template, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		tmpl:   tmpl,
		comp:   composers[tmpl.Backend()],
		logger: logger,
	}
}

// Render runs the pipeline over p. Rendering the same plan twice yields
// identical lines.
func (r *Renderer) Render(p *Plan) *Script {
	r.lines = nil
	r.writeHeader(p.Palette)

	b := r.tmpl.Backend()
	if b.Inline() {
		r.writeLabels(p.Config)
		r.writeInline(p.Records, len(p.Palette))
	} else {
		r.writeFigure(figureResidues, p.Residues, p.Grid)
		r.writeFigure(figureBars, p.Bars, p.BarGrid)
	}
	r.emit(template.RoleFooter)

	return &Script{
		Backend:  b,
		Lines:    append([]string(nil), r.lines...),
		Grid:     p.Grid,
		BarGrid:  p.BarGrid,
		Subplots: len(p.Residues) + len(p.Bars),
	}
}

// emit appends the formatted role when the template defines it.
func (r *Renderer) emit(role template.Role, args ...string) {
	if out := r.tmpl.Format(role, args...); out != "" {
		r.lines = append(r.lines, out)
	}
}

// writeHeader emits encoding, imports and one declaration per palette entry.
func (r *Renderer) writeHeader(palette chart.Palette) {
	r.emit(template.RoleEncoding)
	r.emit(template.RoleImport)
	for k, c := range palette {
		r.emit(template.RoleColor,
			strconv.Itoa(palette.Index(k)),
			strconv.Itoa(int(c.R)), strconv.Itoa(int(c.G)), strconv.Itoa(int(c.B)),
			c.Hex())
	}
}

// writeLabels emits the single set of top-level labels of inline backends.
func (r *Renderer) writeLabels(cfg chart.Config) {
	r.emit(template.RoleTitle, r.tmpl.Quote(cfg.Title))
	r.emit(template.RoleXLabel, r.tmpl.Quote(cfg.XLabel))
	r.emit(template.RoleYLabel, r.tmpl.Quote(cfg.YLabel))
	r.emit(template.RoleRanges, formatFloats(cfg.Ranges[:])...)
	r.emit(template.RoleLegend)
}

// writeInline emits one data set per raw block and one per fitted block.
// Record k owns sets 2k (raw) and 2k+1 (fitted).
func (r *Renderer) writeInline(records []chart.ResidueRecord, paletteSize int) {
	for k, rec := range records {
		color := chart.ScatterColor(k, paletteSize).String()

		set := strconv.Itoa(2 * k)
		r.emit(template.RoleScatter, set, color, r.tmpl.Quote(rec.Name))
		r.writeBlock(set, "xydy", rec.Raw, 3)

		if len(rec.Fitted) == 0 {
			continue
		}
		set = strconv.Itoa(2*k + 1)
		r.emit(template.RoleLine, set, color)
		r.writeBlock(set, "xy", rec.Fitted, 2)
	}
}

func (r *Renderer) writeBlock(set, typ string, rows [][]float64, width int) {
	r.emit(template.RoleDataHeader, set, typ)
	for _, row := range rows {
		r.lines = append(r.lines, strings.Join(formatFloats(row[:width]), "\t"))
	}
	r.emit(template.RoleSectionEnd)
}

// writeFigure emits every panel of one figure and, for assigning backends,
// the statement arranging them.
func (r *Renderer) writeFigure(figure int, subplots []*chart.Subplot, grid layout.Grid) {
	if len(subplots) == 0 {
		return
	}
	if figure > 0 {
		r.emit(template.RoleNewPlot)
	}
	rows, cols := strconv.Itoa(grid.Rows), strconv.Itoa(grid.Cols)

	var plotVars []string
	for i, sp := range subplots {
		panel := i + 1
		if !r.comp.assign {
			r.emit(template.RoleSubplot, rows, cols, strconv.Itoa(panel))
		}
		r.writeDeclarations(sp)

		var stmts []Statement
		if r.comp.frames {
			raw := r.buildFrame(sp, false, figure, panel)
			fitted := r.buildFrame(sp, true, figure, panel)
			stmts = r.frameStatements(sp, raw, fitted)
		} else {
			stmts = r.seriesStatements(sp)
		}
		stmts = append(stmts, r.configStatements(sp)...)

		expr := r.comp.compose(r.tmpl, stmts)
		if r.comp.assign {
			name := fmt.Sprintf("plot_%d_%d", figure, panel)
			r.emit(template.RoleVar, expr, name)
			plotVars = append(plotVars, name)
			continue
		}
		r.lines = append(r.lines, expr)
	}
	if r.comp.assign {
		r.emit(template.RoleSubplot, strings.Join(plotVars, ", "), rows, cols)
	}
}

// writeDeclarations declares one array per series column: all x columns,
// then y, error, fitted x and fitted y.
func (r *Renderer) writeDeclarations(sp *chart.Subplot) {
	r.declare(sp.X, sp.XVar)
	r.declare(sp.Y, sp.YVar)
	r.declare(sp.Err, sp.ErrVar)
	r.declare(sp.FittedX, sp.FittedXVar)
	r.declare(sp.FittedY, sp.FittedYVar)
}

func (r *Renderer) declare(cols [][]float64, names []string) {
	for i, col := range cols {
		if col == nil {
			continue
		}
		r.emit(template.RoleVar, r.tmpl.Array(formatFloats(col)), names[i])
	}
}

// seriesStatements builds one plot statement per series, followed by the
// fitted curve of the series when present.
func (r *Renderer) seriesStatements(sp *chart.Subplot) []Statement {
	var offsets []float64
	if sp.Type == chart.PlotBar {
		offsets = BarOffsets(sp.Len())
	}
	var stmts []Statement
	for i := range sp.X {
		color := r.colorRef(sp.Colors[i])
		legend := r.tmpl.Quote(sp.Legend[i])
		switch sp.Type {
		case chart.PlotScatter:
			stmts = append(stmts, stmt(template.RoleScatter,
				sp.XVar[i], sp.YVar[i], sp.ErrVar[i], color, legend,
				strconv.Itoa(sp.MarkerSize(i))))
		case chart.PlotBar:
			stmts = append(stmts, stmt(template.RoleBar,
				sp.XVar[i], sp.YVar[i], sp.ErrVar[i], color,
				formatFloat(offsets[i]), legend))
		case chart.PlotLine:
			stmts = append(stmts, stmt(template.RoleLine, sp.XVar[i], sp.YVar[i], color))
		}
		if sp.HasFitted(i) {
			stmts = append(stmts, stmt(template.RoleLine, sp.FittedXVar[i], sp.FittedYVar[i], color))
		}
	}
	return stmts
}

// frameStatements builds the plot components of a data frame panel.
func (r *Renderer) frameStatements(sp *chart.Subplot, raw, fitted string) []Statement {
	stmts := []Statement{stmt(template.RolePlotBase, raw)}
	switch sp.Type {
	case chart.PlotScatter:
		size := chart.MarkerSizeDefault
		for i := range sp.X {
			size = min(size, sp.MarkerSize(i))
		}
		stmts = append(stmts, stmt(template.RoleScatter, strconv.Itoa(size)))
	case chart.PlotBar:
		stmts = append(stmts, stmt(template.RoleBar))
	case chart.PlotLine:
		stmts = append(stmts, stmt(template.RoleLine, raw))
	}
	if fitted != "" {
		stmts = append(stmts, stmt(template.RoleLine, fitted))
	}
	return stmts
}

// configStatements builds title, label, limit, colour and legend components.
func (r *Renderer) configStatements(sp *chart.Subplot) []Statement {
	stmts := []Statement{
		stmt(template.RoleTitle, r.tmpl.Quote(sp.Title)),
		stmt(template.RoleXLabel, r.tmpl.Quote(sp.XLabel)),
		stmt(template.RoleYLabel, r.tmpl.Quote(sp.YLabel)),
		stmt(template.RoleXLim, r.tmpl.Array(formatFloats(sp.XRange[:]))),
		stmt(template.RoleYLim, r.tmpl.Array(formatFloats(sp.YRange[:]))),
	}
	if r.tmpl.Has(template.RoleColorMap) {
		pairs := make([]string, sp.Len())
		for i := range pairs {
			pairs[i] = r.tmpl.Quote(sp.Legend[i]) + " = " + r.colorRef(sp.Colors[i])
		}
		stmts = append(stmts, stmt(template.RoleColorMap, r.tmpl.Array(pairs)))
	}
	if sp.Type == chart.PlotBar {
		stmts = append(stmts, stmt(template.RoleXTick,
			strconv.Itoa(int(sp.XRange[0])), strconv.Itoa(int(sp.XRange[1]))))
	}
	stmts = append(stmts, stmt(template.RoleLegend))
	return stmts
}

// colorRef writes a series colour: the declared variable for palette
// colours, a string literal for named colours.
func (r *Renderer) colorRef(c chart.Color) string {
	if c.IsNamed() {
		return r.tmpl.Quote(c.Name)
	}
	return c.Var()
}
