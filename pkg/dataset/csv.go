package dataset

import (
	"encoding/csv"
	"io"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// CSVDialect specifies the CSV format variant.
type CSVDialect string

const (
	// DialectStandard uses RFC 4180 CSV (comma-separated, quoted strings).
	DialectStandard CSVDialect = "standard"

	// DialectTSV uses tab-separated values instead of comma.
	DialectTSV CSVDialect = "tsv"

	// DialectSemicolon uses ';' as written by spreadsheet programs in
	// locales with a decimal comma.
	DialectSemicolon CSVDialect = "semicolon"
)

// CSVConfig specifies options for reading residue tables.
type CSVConfig struct {
	// Dialect specifies the CSV format variant.
	// Default: DialectStandard
	Dialect CSVDialect

	// Comment marks lines to ignore. Default: '#'
	Comment rune

	// NAString is the representation for missing values.
	// Default: "NA" (compatible with R and Python pandas)
	NAString string
}

// DefaultCSVConfig returns a CSVConfig with sensible defaults.
func DefaultCSVConfig() *CSVConfig {
	return &CSVConfig{
		Dialect:  DialectStandard,
		Comment:  '#',
		NAString: "NA",
	}
}

func (c *CSVConfig) delimiter() rune {
	switch c.Dialect {
	case DialectTSV:
		return '\t'
	case DialectSemicolon:
		return ';'
	}
	return ','
}

// ReadCSV reads a residue table with the columns title, kind, x, y and
// error. Rows of the same title form one record; kind is "raw" (default)
// or "fitted". Bar groups cannot be expressed in a single CSV table.
// If config is nil, DefaultCSVConfig() is used.
func ReadCSV(r io.Reader, config *CSVConfig) (*Dataset, error) {
	if config == nil {
		config = DefaultCSVConfig()
	}
	cr := csv.NewReader(r)
	cr.Comma = config.delimiter()
	cr.Comment = config.Comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = cr.Comma != '\t'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
			"failed to parse CSV dataset")
	}
	t, err := newTable("csv", records, config.NAString, ColTitle, ColX, ColY)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{}
	ds.Residues, ds.Rejected = residueRecords(t)
	return ds, nil
}
