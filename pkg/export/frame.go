package export

import (
	"fmt"
	"strings"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// Frame column names shared by every data frame.
const (
	colX     = "x"
	colY     = "y"
	colError = "error"
	colGroup = "group"
)

// GroupLabels repeats legend[i] once for each of lengths[i] points, in
// series order.
func GroupLabels(lengths []int, legend []string) []string {
	total := 0
	for _, n := range lengths {
		total += n
	}
	out := make([]string, 0, total)
	for i, n := range lengths {
		for j := 0; j < n; j++ {
			out = append(out, legend[i])
		}
	}
	return out
}

// frameColumn is one column of a data frame and the series variables
// concatenated into it.
type frameColumn struct {
	name string
	vars []string
}

// buildFrame declares the concatenated columns, the group label array and
// the data frame for the raw or fitted series of sp. It returns the frame
// variable, or "" when no series qualifies.
func (r *Renderer) buildFrame(sp *chart.Subplot, fitted bool, figure, panel int) string {
	var (
		lengths []int
		legend  []string
		cols    []frameColumn
	)
	if fitted {
		cols = []frameColumn{{name: colX}, {name: colY}}
		for i := range sp.X {
			if !sp.HasFitted(i) {
				continue
			}
			cols[0].vars = append(cols[0].vars, sp.FittedXVar[i])
			cols[1].vars = append(cols[1].vars, sp.FittedYVar[i])
			lengths = append(lengths, len(sp.FittedX[i]))
			legend = append(legend, sp.Legend[i])
		}
	} else {
		cols = []frameColumn{
			{name: colX, vars: sp.XVar},
			{name: colY, vars: sp.YVar},
			{name: colError, vars: sp.ErrVar},
		}
		for i := range sp.X {
			lengths = append(lengths, len(sp.X[i]))
		}
		legend = sp.Legend
	}
	if len(lengths) == 0 {
		return ""
	}

	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		r.emit(template.RoleVar, r.tmpl.Array(c.vars), c.name)
		names = append(names, c.name)
	}

	labels := GroupLabels(lengths, legend)
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = r.tmpl.Quote(l)
	}
	r.emit(template.RoleVar, r.tmpl.Array(quoted), colGroup)
	names = append(names, colGroup)

	variant := chart.TagRaw
	if fitted {
		variant = chart.TagFitted
	}
	df := fmt.Sprintf("df_%s_%d_%d", variant, figure, panel)
	r.emit(template.RoleVar, r.tmpl.Format(template.RoleFrame, strings.Join(names, ", ")), df)
	return df
}
