package chart

import (
	"math"
	"strconv"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// PlotType is the kind of statement used for a subplot's raw series.
type PlotType string

const (
	PlotScatter PlotType = "scatter"
	PlotLine    PlotType = "line"
	PlotBar     PlotType = "bar"
)

// Marker sizes for scatter series.
const (
	MarkerSizeDefault = 6
	MarkerSizeReduced = 4
)

// Subplot is one panel of a figure. Series are stored column-wise; all
// per-series slices are parallel. A series without a fit has nil fitted
// columns and empty fitted variable names.
type Subplot struct {
	Title  string
	XLabel string
	YLabel string
	Type   PlotType

	// Raw columns, one slice per series.
	X   [][]float64
	Y   [][]float64
	Err [][]float64

	// Fitted columns, parallel to X.
	FittedX [][]float64
	FittedY [][]float64

	// Variable names, parallel to the columns above.
	XVar       []string
	YVar       []string
	ErrVar     []string
	FittedXVar []string
	FittedYVar []string

	Colors []Color
	Legend []string
	XRange [2]float64
	YRange [2]float64
}

// NewSubplot returns an empty subplot.
func NewSubplot(title, xlabel, ylabel string, typ PlotType) *Subplot {
	return &Subplot{Title: title, XLabel: xlabel, YLabel: ylabel, Type: typ}
}

// Len returns the number of series.
func (s *Subplot) Len() int {
	return len(s.X)
}

// HasFitted reports whether series i carries a fitted curve.
func (s *Subplot) HasFitted(i int) bool {
	return i < len(s.FittedX) && s.FittedX[i] != nil
}

// AnyFitted reports whether any series carries a fitted curve.
func (s *Subplot) AnyFitted() bool {
	for i := range s.X {
		if s.HasFitted(i) {
			return true
		}
	}
	return false
}

// Unpack appends one series built from raw rows [x, y, error] and optional
// fitted rows [x, y], naming its variables through namer. On error the
// subplot is left unchanged.
func (s *Subplot) Unpack(raw, fitted [][]float64, name SeriesName, namer *VarNamer) error {
	rawCols, err := Table(raw, 3)
	if err != nil {
		return withGroup(err, name, TagRaw)
	}
	var fitCols [][]float64
	if len(fitted) > 0 {
		if fitCols, err = Table(fitted, 2); err != nil {
			return withGroup(err, name, TagFitted)
		}
	}

	s.X = append(s.X, rawCols[0])
	s.Y = append(s.Y, rawCols[1])
	s.Err = append(s.Err, rawCols[2])
	s.XVar = append(s.XVar, namer.Name(name, TagRaw, TagX))
	s.YVar = append(s.YVar, namer.Name(name, TagRaw, TagY))
	s.ErrVar = append(s.ErrVar, namer.Name(name, TagRaw, TagErr))

	if fitCols == nil {
		s.FittedX = append(s.FittedX, nil)
		s.FittedY = append(s.FittedY, nil)
		s.FittedXVar = append(s.FittedXVar, "")
		s.FittedYVar = append(s.FittedYVar, "")
		return nil
	}
	s.FittedX = append(s.FittedX, fitCols[0])
	s.FittedY = append(s.FittedY, fitCols[1])
	s.FittedXVar = append(s.FittedXVar, namer.Name(name, TagFitted, TagX))
	s.FittedYVar = append(s.FittedYVar, namer.Name(name, TagFitted, TagY))
	return nil
}

func withGroup(err error, name SeriesName, tag string) error {
	pe, ok := werrors.AsPlotError(err)
	if !ok {
		return err
	}
	pe.WithContext("group", name.Base).WithContext("block", tag)
	if name.Index > 0 {
		pe.WithContext("series", strconv.Itoa(name.Index))
	}
	return pe
}

// SetColors assigns one colour per series.
func (s *Subplot) SetColors(colors []Color) {
	s.Colors = append([]Color(nil), colors...)
}

// SetLegend assigns one label per series. Repeated labels get a " (n)"
// suffix so every series keeps a distinct label.
func (s *Subplot) SetLegend(labels []string) {
	seen := make(map[string]int, len(labels))
	taken := make(map[string]bool, len(labels))
	for _, l := range labels {
		taken[l] = true
	}
	s.Legend = make([]string, len(labels))
	for i, l := range labels {
		seen[l]++
		if seen[l] == 1 {
			s.Legend[i] = l
			continue
		}
		n := seen[l]
		label := l + " (" + strconv.Itoa(n) + ")"
		for taken[label] {
			n++
			label = l + " (" + strconv.Itoa(n) + ")"
		}
		taken[label] = true
		s.Legend[i] = label
	}
}

// SetRanges assigns the axis intervals.
func (s *Subplot) SetRanges(x, y [2]float64) {
	s.XRange = x
	s.YRange = y
}

// MarkerSize returns the marker size for scatter series i: reduced when
// the series repeats an x value, default otherwise.
func (s *Subplot) MarkerSize(i int) int {
	seen := make(map[float64]bool, len(s.X[i]))
	for _, x := range s.X[i] {
		if seen[x] {
			return MarkerSizeReduced
		}
		seen[x] = true
	}
	return MarkerSizeDefault
}

// Validate checks the per-series length invariants.
func (s *Subplot) Validate() error {
	n := len(s.X)
	if len(s.Y) != n || len(s.Err) != n || len(s.XVar) != n || len(s.YVar) != n || len(s.ErrVar) != n {
		return werrors.DataErrorf(werrors.ErrDataShapeMismatch, "subplot %q has unequal series lists", s.Title)
	}
	if len(s.Legend) != n {
		return werrors.DataErrorf(werrors.ErrDataShapeMismatch,
			"subplot %q has %d legend labels for %d series", s.Title, len(s.Legend), n)
	}
	if len(s.Colors) < n {
		return werrors.DataErrorf(werrors.ErrDataShapeMismatch,
			"subplot %q has %d colours for %d series", s.Title, len(s.Colors), n)
	}
	for i := range s.X {
		if len(s.Y[i]) != len(s.X[i]) || len(s.Err[i]) != len(s.X[i]) {
			return werrors.DataErrorf(werrors.ErrDataShapeMismatch,
				"subplot %q series %d has unequal x, y, error lengths", s.Title, i+1)
		}
		if s.HasFitted(i) && len(s.FittedY[i]) != len(s.FittedX[i]) {
			return werrors.DataErrorf(werrors.ErrDataShapeMismatch,
				"subplot %q series %d has unequal fitted lengths", s.Title, i+1)
		}
	}
	return nil
}

// Table transposes rows into columns, keeping the first want columns.
// Every row must have the same number of columns, at least want, and all
// values must be finite.
func Table(rows [][]float64, want int) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, werrors.DataErrorf(werrors.ErrDataShapeMismatch, "data block has no rows")
	}
	width := len(rows[0])
	if width < want {
		return nil, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
			"data rows have %d columns, need %d", width, want)
	}
	cols := make([][]float64, want)
	for c := range cols {
		cols[c] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != width {
			return nil, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
				"row %d has %d columns, expected %d", r+1, len(row), width).
				WithContext("row", strconv.Itoa(r+1))
		}
		for c := 0; c < want; c++ {
			if math.IsNaN(row[c]) || math.IsInf(row[c], 0) {
				return nil, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
					"row %d column %d is not a finite number", r+1, c+1).
					WithContext("row", strconv.Itoa(r+1))
			}
			cols[c][r] = row[c]
		}
	}
	return cols, nil
}
