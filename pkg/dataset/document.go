package dataset

import (
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// RangesKey is the reserved key of a bar group mapping that holds
// [xmin, xmax, ymin, ymax].
const RangesKey = "ranges"

// document is the top-level JSON/YAML layout. Bar groups stay as nodes so
// the order of their keys survives decoding.
type document struct {
	Residues []yaml.Node `yaml:"residues"`
	Bars     []yaml.Node `yaml:"bars"`
}

// residueDoc is one primary record. Either GraphTitle or Residue names
// the residue.
type residueDoc struct {
	GraphTitle string      `yaml:"graphTitle"`
	Name       string      `yaml:"name"`
	Residue    string      `yaml:"residue"`
	RawData    [][]float64 `yaml:"rawData"`
	FittedData [][]float64 `yaml:"fittedData"`
}

// ReadDocument decodes a JSON or YAML document from r.
func ReadDocument(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to read dataset")
	}
	return Decode(data)
}

// Decode parses a dataset document:
//
//	residues:
//	  - graphTitle: "R2:12"
//	    rawData: [[x, y, err], ...]
//	    fittedData: [[x, y], ...]
//	bars:
//	  - "<Title>|<Fit>|_|<DataFitted>": [[x, y, err], ...]
//	    ranges: [xmin, xmax, ymin, ymax]
//
// A top-level sequence is read as the residue list alone. JSON input is
// accepted as YAML.
func Decode(data []byte) (*Dataset, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
			"failed to parse dataset document")
	}
	ds := &Dataset{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return ds, nil
	}

	var doc document
	top := root.Content[0]
	switch top.Kind {
	case yaml.SequenceNode:
		doc.Residues = derefNodes(top.Content)
	case yaml.MappingNode:
		if err := top.Decode(&doc); err != nil {
			return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
				"dataset document has an unexpected layout")
		}
	default:
		return nil, werrors.DataErrorf(werrors.ErrDataLoadFailed,
			"dataset document must be a mapping or a sequence")
	}

	for i := range doc.Residues {
		rec, err := decodeResidue(&doc.Residues[i])
		if err != nil {
			ds.Rejected = append(ds.Rejected, withIndex(err, "residues", i))
			continue
		}
		ds.Residues = append(ds.Residues, rec)
	}
	for i := range doc.Bars {
		g, err := DecodeBarGroup(&doc.Bars[i])
		if err != nil {
			ds.Rejected = append(ds.Rejected, withIndex(err, "bars", i))
			continue
		}
		ds.Bars = append(ds.Bars, g)
	}
	return ds, nil
}

func derefNodes(nodes []*yaml.Node) []yaml.Node {
	out := make([]yaml.Node, len(nodes))
	for i, n := range nodes {
		out[i] = *n
	}
	return out
}

func decodeResidue(n *yaml.Node) (chart.ResidueRecord, error) {
	var rd residueDoc
	if err := n.Decode(&rd); err != nil {
		return chart.ResidueRecord{}, werrors.Wrap(err, werrors.ErrDataShapeMismatch, werrors.CategoryData,
			"residue record does not hold numeric rows").
			WithContext("line", strconv.Itoa(n.Line))
	}

	rec := chart.ResidueRecord{Name: rd.Name, Residue: rd.Residue, Raw: rd.RawData, Fitted: rd.FittedData}
	if rd.GraphTitle != "" || rd.Residue == "" {
		name, residue, err := chart.ParseResidueTitle(rd.GraphTitle)
		if err != nil {
			return chart.ResidueRecord{}, err
		}
		rec.Name, rec.Residue = name, residue
	}
	return rec, nil
}

// DecodeBarGroup reads one bar group mapping, keeping series in key order.
// A malformed key rejects the whole group.
func DecodeBarGroup(n *yaml.Node) (chart.BarGroup, error) {
	var g chart.BarGroup
	if n.Kind != yaml.MappingNode {
		return g, werrors.DataErrorf(werrors.ErrDataShapeMismatch, "bar group is not a mapping").
			WithContext("kind", "bar").
			WithContext("line", strconv.Itoa(n.Line))
	}

	hasRanges := false
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Value == RangesKey {
			var r []float64
			if err := v.Decode(&r); err != nil || len(r) != 4 {
				return chart.BarGroup{}, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
					"bar group ranges must hold 4 numbers").
					WithContext("kind", "bar").
					WithContext("line", strconv.Itoa(v.Line))
			}
			copy(g.Ranges[:], r)
			hasRanges = true
			continue
		}

		key, err := chart.ParseBarKey(k.Value)
		if err != nil {
			return chart.BarGroup{}, err
		}
		var rows [][]float64
		if err := v.Decode(&rows); err != nil {
			return chart.BarGroup{}, werrors.Wrap(err, werrors.ErrDataShapeMismatch, werrors.CategoryData,
				"bar series does not hold numeric rows").
				WithContext("key", k.Value).
				WithContext("kind", "bar")
		}
		g.Series = append(g.Series, chart.BarSeries{Key: key, Rows: rows})
	}
	if !hasRanges {
		return chart.BarGroup{}, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
			"bar group has no %s entry", RangesKey).
			WithContext("kind", "bar").
			WithContext("group_id", g.ID())
	}
	return g, nil
}

func withIndex(err error, list string, i int) error {
	if pe, ok := werrors.AsPlotError(err); ok {
		pe.WithContext("index", list+"["+strconv.Itoa(i)+"]")
	}
	return err
}
