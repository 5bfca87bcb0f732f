package dataset

import (
	"errors"
	"io"
	"io/fs"
	"strconv"

	"github.com/xuri/excelize/v2"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Sheet names read from spreadsheet datasets.
const (
	SheetResidues  = "residues"
	SheetBars      = "bars"
	SheetBarRanges = "bar_ranges"
)

// ReadXLSX reads a spreadsheet dataset from path.
func ReadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, werrors.WrapIO(err, werrors.ErrIOFileNotFound, "dataset file not found").
				WithContext("path", path)
		}
		return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
			"failed to open spreadsheet").
			WithContext("path", path)
	}
	defer f.Close()

	ds, err := readWorkbook(f)
	if pe, ok := werrors.AsPlotError(err); ok {
		pe.WithContext("path", path)
	}
	return ds, err
}

// DecodeXLSX reads a spreadsheet dataset from r.
func DecodeXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
			"failed to open spreadsheet")
	}
	defer f.Close()
	return readWorkbook(f)
}

// readWorkbook reads the residues sheet (title, kind, x, y, error) and the
// optional bars (group, key, x, y, error) and bar_ranges (group, xmin,
// xmax, ymin, ymax) sheets.
func readWorkbook(f *excelize.File) (*Dataset, error) {
	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	if !sheets[SheetResidues] && !sheets[SheetBars] {
		return nil, werrors.DataErrorf(werrors.ErrDataLoadFailed,
			"spreadsheet has neither a %q nor a %q sheet", SheetResidues, SheetBars)
	}

	ds := &Dataset{}
	if sheets[SheetResidues] {
		t, err := sheetTable(f, SheetResidues, ColTitle, ColX, ColY)
		if err != nil {
			return nil, err
		}
		var rejected []error
		ds.Residues, rejected = residueRecords(t)
		ds.Rejected = append(ds.Rejected, rejected...)
	}
	if sheets[SheetBars] {
		t, err := sheetTable(f, SheetBars, ColGroup, ColKey, ColX, ColY, ColError)
		if err != nil {
			return nil, err
		}
		var ranges *table
		if sheets[SheetBarRanges] {
			if ranges, err = sheetTable(f, SheetBarRanges, ColGroup, ColXMin, ColXMax, ColYMin, ColYMax); err != nil {
				return nil, err
			}
		}
		var rejected []error
		ds.Bars, rejected = barGroups(t, ranges)
		ds.Rejected = append(ds.Rejected, rejected...)
	}
	return ds, nil
}

func sheetTable(f *excelize.File, sheet string, required ...string) (*table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.ErrDataLoadFailed, werrors.CategoryData,
			"failed to read sheet").
			WithContext("sheet", sheet)
	}
	return newTable("sheet "+strconv.Quote(sheet), rows, "NA", required...)
}
