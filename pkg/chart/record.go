package chart

import (
	"strings"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// ResidueRecord is one measured series of the primary dataset.
type ResidueRecord struct {
	// Name is the series label, the first field of the graph title.
	Name string `json:"name" yaml:"name"`

	// Residue identifies the residue the series belongs to.
	Residue string `json:"residue" yaml:"residue"`

	// Raw holds rows of [x, y, error].
	Raw [][]float64 `json:"rawData" yaml:"rawData"`

	// Fitted holds rows of [x, y]; nil when no fit is available.
	Fitted [][]float64 `json:"fittedData,omitempty" yaml:"fittedData,omitempty"`
}

// Title rebuilds the composite graph title "<Name>:<Residue>".
func (r ResidueRecord) Title() string {
	return r.Name + ":" + r.Residue
}

// ParseResidueTitle splits a graph title "<Name>:<Residue>[:...]" into its
// name and residue fields. Fields after the residue are ignored.
func ParseResidueTitle(title string) (name, residue string, err error) {
	parts := strings.Split(title, ":")
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "", werrors.DataErrorf(werrors.ErrDataMalformedKey,
			"graph title %q does not name a residue", title).
			WithContext("key", title).
			WithContext("kind", "residue")
	}
	return parts[0], strings.TrimSpace(parts[1]), nil
}

// BarKey is the structured form of a composite bar key
// "<Title>|<Fit>|_|<DataFitted>".
type BarKey struct {
	Title      string `json:"title" yaml:"title"`
	Fit        string `json:"fit" yaml:"fit"`
	DataFitted string `json:"dataFitted" yaml:"dataFitted"`
}

// String rebuilds the composite key.
func (k BarKey) String() string {
	return strings.Join([]string{k.Title, k.Fit, "_", k.DataFitted}, "|")
}

// ParseBarKey splits a composite bar key into its fields. The key must
// have exactly four '|'-separated parts with a non-empty fit and data label.
func ParseBarKey(key string) (BarKey, error) {
	parts := strings.Split(key, "|")
	if len(parts) != 4 || parts[1] == "" || parts[3] == "" {
		return BarKey{}, werrors.DataErrorf(werrors.ErrDataMalformedKey,
			"bar key %q does not split into 4 '|' fields", key).
			WithContext("key", key).
			WithContext("kind", "bar")
	}
	return BarKey{Title: parts[0], Fit: parts[1], DataFitted: parts[3]}, nil
}

// BarSeries is one series of a bar group.
type BarSeries struct {
	Key BarKey `json:"key" yaml:"key"`

	// Rows holds rows of [x, y, error].
	Rows [][]float64 `json:"rows" yaml:"rows"`
}

// BarGroup is one bar chart panel of the secondary dataset.
type BarGroup struct {
	Series []BarSeries `json:"series" yaml:"series"`

	// Ranges is [xmin, xmax, ymin, ymax].
	Ranges [4]float64 `json:"ranges" yaml:"ranges"`
}

// ID returns a human-readable identifier for error reports.
func (g BarGroup) ID() string {
	if len(g.Series) == 0 {
		return "(empty)"
	}
	k := g.Series[0].Key
	return k.Title + ":" + k.DataFitted
}
