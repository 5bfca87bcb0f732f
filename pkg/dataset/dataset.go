// Package dataset reads residue and bar chart data from JSON, YAML, CSV
// and spreadsheet files. Composite titles and keys are parsed here, so
// everything past this package works with structured records.
//
// Records that cannot be parsed do not fail the load: they are collected in
// Dataset.Rejected with the offending key, and the export reports them like
// any other dropped group.
package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Format identifies a dataset file format.
type Format string

const (
	FormatDocument Format = "document" // JSON or YAML document
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatXLSX     Format = "xlsx"
)

// Dataset is the decoded input of an export.
type Dataset struct {
	Residues []chart.ResidueRecord
	Bars     []chart.BarGroup

	// Rejected holds one error per record or group that could not be decoded.
	Rejected []error
}

// Empty reports whether the dataset holds no usable records.
func (d *Dataset) Empty() bool {
	return len(d.Residues) == 0 && len(d.Bars) == 0
}

// ResidueIDs returns the distinct residue ids in order of first appearance.
func (d *Dataset) ResidueIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range d.Residues {
		if !seen[r.Residue] {
			seen[r.Residue] = true
			ids = append(ids, r.Residue)
		}
	}
	return ids
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return FormatDocument, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", werrors.DataErrorf(werrors.ErrDataUnsupportedFormat,
		"unsupported dataset format %q", filepath.Ext(path)).
		WithContext("path", path)
}

// Load reads the dataset at path, choosing the decoder by file extension.
func Load(path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if format == FormatXLSX {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, werrors.WrapIO(err, werrors.ErrIOFileNotFound, "dataset file not found").
				WithContext("path", path)
		}
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to open dataset").
			WithContext("path", path)
	}
	defer f.Close()

	var ds *Dataset
	switch format {
	case FormatCSV, FormatTSV:
		cfg := DefaultCSVConfig()
		if format == FormatTSV {
			cfg.Dialect = DialectTSV
		}
		ds, err = ReadCSV(f, cfg)
	default:
		ds, err = ReadDocument(f)
	}
	if pe, ok := werrors.AsPlotError(err); ok {
		pe.WithContext("path", path)
	}
	return ds, err
}
