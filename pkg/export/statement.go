package export

import (
	"strconv"
	"strings"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// Statement is one plot or configuration component of a panel, kept
// structured until the backend's composer joins it into text.
type Statement struct {
	Role template.Role
	Args []string
}

func stmt(role template.Role, args ...string) Statement {
	return Statement{Role: role, Args: args}
}

// composer describes how a variable backend assembles a panel.
type composer struct {
	// sep joins the rendered statements of one panel.
	sep string

	// assign stores each panel expression in a plot variable and arranges
	// the variables with the subplot role after the figure.
	assign bool

	// frames groups panel data into data frames before plotting.
	frames bool
}

var composers = map[chart.Backend]composer{
	chart.BackendStat:    {sep: " + ", assign: true, frames: true},
	chart.BackendGeneral: {sep: "\n"},
}

// compose renders statements with t and joins the non-empty results.
func (c composer) compose(t *template.Template, stmts []Statement) string {
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if out := t.Format(s.Role, s.Args...); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, c.sep)
}

// BarOffsets returns the symmetric x shifts of n side-by-side bars:
// half-integers for even n, integers for odd n.
func BarOffsets(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) - float64(n-1)/2
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloats(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = formatFloat(v)
	}
	return out
}
