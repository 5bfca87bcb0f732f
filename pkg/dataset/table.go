package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Column names of the long table layout shared by CSV files and sheets.
const (
	ColTitle = "title"
	ColKind  = "kind"
	ColGroup = "group"
	ColKey   = "key"
	ColX     = "x"
	ColY     = "y"
	ColError = "error"
	ColXMin  = "xmin"
	ColXMax  = "xmax"
	ColYMin  = "ymin"
	ColYMax  = "ymax"
)

// Row kinds of the residue table.
const (
	KindRaw    = "raw"
	KindFitted = "fitted"
)

// table is a header-addressed view of string records.
type table struct {
	source string
	cols   map[string]int
	rows   [][]string
	na     string
}

// newTable takes the first record as the header and checks that every
// required column is present. Header names are matched case-insensitively.
func newTable(source string, records [][]string, na string, required ...string) (*table, error) {
	if len(records) == 0 {
		return nil, werrors.DataErrorf(werrors.ErrDataLoadFailed, "%s has no header row", source).
			WithContext("source", source)
	}
	t := &table{source: source, cols: make(map[string]int), rows: records[1:], na: na}
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		t.cols[name] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, werrors.DataErrorf(werrors.ErrDataLoadFailed,
				"%s has no %q column", source, name).
				WithContext("source", source).
				WithContext("column", name)
		}
	}
	return t, nil
}

func (t *table) str(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// float parses a numeric cell. Missing cells read as NaN and are rejected
// later if the value is used.
func (t *table) float(row []string, col string, line int) (float64, error) {
	s := t.str(row, col)
	if s == "" || s == t.na {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
			"%s line %d: column %s is not a number: %q", t.source, line, col, s).
			WithContext("source", t.source).
			WithContext("line", strconv.Itoa(line))
	}
	return v, nil
}

func (t *table) floats(row []string, line int, cols ...string) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := t.float(row, c, line)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// collector keeps keyed items in order of first appearance and remembers
// the first error of each key.
type collector[T any] struct {
	order []string
	items map[string]*T
	errs  map[string]error
}

func newCollector[T any]() *collector[T] {
	return &collector[T]{items: make(map[string]*T), errs: make(map[string]error)}
}

// get returns the item for key, creating it with create on first sight.
// It returns nil once the key has failed.
func (c *collector[T]) get(key string, create func() (*T, error)) *T {
	if _, failed := c.errs[key]; failed {
		return nil
	}
	if it, ok := c.items[key]; ok {
		return it
	}
	c.order = append(c.order, key)
	it, err := create()
	if err != nil {
		c.errs[key] = err
		return nil
	}
	c.items[key] = it
	return it
}

func (c *collector[T]) fail(key string, err error) {
	if _, failed := c.errs[key]; !failed {
		c.errs[key] = err
	}
	delete(c.items, key)
}

// results returns the surviving items and the errors, both in key order.
func (c *collector[T]) results() ([]T, []error) {
	var items []T
	var errs []error
	for _, k := range c.order {
		if err, ok := c.errs[k]; ok {
			errs = append(errs, err)
			continue
		}
		items = append(items, *c.items[k])
	}
	return items, errs
}

// residueRecords assembles records from a title,kind,x,y,error table.
// Line numbers count the header as line 1.
func residueRecords(t *table) ([]chart.ResidueRecord, []error) {
	c := newCollector[chart.ResidueRecord]()
	for i, row := range t.rows {
		line := i + 2
		title := t.str(row, ColTitle)
		if title == "" && len(strings.Join(row, "")) == 0 {
			continue
		}
		rec := c.get(title, func() (*chart.ResidueRecord, error) {
			name, residue, err := chart.ParseResidueTitle(title)
			if err != nil {
				return nil, err
			}
			return &chart.ResidueRecord{Name: name, Residue: residue}, nil
		})
		if rec == nil {
			continue
		}

		switch kind := strings.ToLower(t.str(row, ColKind)); kind {
		case KindRaw, "":
			v, err := t.floats(row, line, ColX, ColY, ColError)
			if err != nil {
				c.fail(title, err)
				continue
			}
			rec.Raw = append(rec.Raw, v)
		case KindFitted:
			v, err := t.floats(row, line, ColX, ColY)
			if err != nil {
				c.fail(title, err)
				continue
			}
			rec.Fitted = append(rec.Fitted, v)
		default:
			c.fail(title, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
				"%s line %d: unknown row kind %q", t.source, line, kind).
				WithContext("key", title).
				WithContext("line", strconv.Itoa(line)))
		}
	}
	return c.results()
}

// barGroups assembles bar groups from a group,key,x,y,error table and a
// group,xmin,xmax,ymin,ymax range table. A group without ranges is rejected.
func barGroups(t, ranges *table) ([]chart.BarGroup, []error) {
	type building struct {
		group  chart.BarGroup
		series map[string]int
	}
	c := newCollector[building]()
	for i, row := range t.rows {
		line := i + 2
		id := t.str(row, ColGroup)
		if id == "" {
			continue
		}
		b := c.get(id, func() (*building, error) {
			return &building{series: make(map[string]int)}, nil
		})
		if b == nil {
			continue
		}

		raw := t.str(row, ColKey)
		k, ok := b.series[raw]
		if !ok {
			key, err := chart.ParseBarKey(raw)
			if err != nil {
				if pe, ok := werrors.AsPlotError(err); ok {
					pe.WithContext("group_id", id).WithContext("line", strconv.Itoa(line))
				}
				c.fail(id, err)
				continue
			}
			k = len(b.group.Series)
			b.series[raw] = k
			b.group.Series = append(b.group.Series, chart.BarSeries{Key: key})
		}
		v, err := t.floats(row, line, ColX, ColY, ColError)
		if err != nil {
			c.fail(id, err)
			continue
		}
		b.group.Series[k].Rows = append(b.group.Series[k].Rows, v)
	}

	found := make(map[string]bool)
	if ranges != nil {
		for i, row := range ranges.rows {
			id := ranges.str(row, ColGroup)
			b, ok := c.items[id]
			if !ok {
				continue
			}
			v, err := ranges.floats(row, i+2, ColXMin, ColXMax, ColYMin, ColYMax)
			if err != nil {
				c.fail(id, err)
				continue
			}
			copy(b.group.Ranges[:], v)
			found[id] = true
		}
	}
	for _, id := range c.order {
		if _, ok := c.items[id]; ok && !found[id] {
			c.fail(id, werrors.DataErrorf(werrors.ErrDataShapeMismatch,
				"bar group %q has no ranges", id).
				WithContext("kind", "bar").
				WithContext("group_id", id))
		}
	}

	built, errs := c.results()
	groups := make([]chart.BarGroup, len(built))
	for i, b := range built {
		groups[i] = b.group
	}
	return groups, errs
}
