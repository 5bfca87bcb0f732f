// Package layout groups residue records into panels and sizes the panel grid.
package layout

import (
	"strconv"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// MaxCols is the widest supported grid; grids hold at most MaxCols² panels.
const MaxCols = 9

// MaxPanels is the largest number of residue groups a figure can hold.
const MaxPanels = MaxCols * MaxCols

// Grid is the panel arrangement of one figure.
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Cells returns the number of panel slots in the grid.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// Group is the set of records of one residue, in input order.
type Group struct {
	Residue string
	Records []chart.ResidueRecord
}

// GroupByResidue partitions records by residue, keeping groups in order of
// first appearance and records in input order within each group.
func GroupByResidue(records []chart.ResidueRecord) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		i, ok := index[r.Residue]
		if !ok {
			i = len(groups)
			index[r.Residue] = i
			groups = append(groups, Group{Residue: r.Residue})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// ComputeGrid returns the near-square grid for n panels: the smallest cols
// in [1, MaxCols] with cols*cols >= n and rows = ceil(n/cols). More than
// MaxPanels panels is a LAYOUT_OVERFLOW error.
func ComputeGrid(n int) (Grid, error) {
	if n < 0 {
		return Grid{}, werrors.LayoutErrorf(werrors.ErrLayoutTooManyGroups, "negative panel count %d", n)
	}
	for cols := 1; cols <= MaxCols; cols++ {
		if cols*cols >= n {
			return Grid{Cols: cols, Rows: (n + cols - 1) / cols}, nil
		}
	}
	return Grid{}, werrors.LayoutErrorf(werrors.ErrLayoutTooManyGroups,
		"%d residue groups exceed the %dx%d panel grid", n, MaxCols, MaxCols).
		WithContext("groups", strconv.Itoa(n)).
		WithSuggestion("Split the dataset so each export holds at most 81 residues")
}

// ColumnGrid returns the single-column grid used for bar chart panels.
func ColumnGrid(n int) Grid {
	return Grid{Cols: 1, Rows: n}
}

// Plan is the layout of a residue figure.
type Plan struct {
	Groups []Group
	Grid   Grid
}

// NewPlan groups records by residue and sizes the grid for the groups.
func NewPlan(records []chart.ResidueRecord) (Plan, error) {
	groups := GroupByResidue(records)
	grid, err := ComputeGrid(len(groups))
	if err != nil {
		return Plan{}, err
	}
	return Plan{Groups: groups, Grid: grid}, nil
}
