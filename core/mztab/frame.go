package mztab

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DataFrame converts the table to a column-indexed gota frame, one
// series per column. Integer-only columns become Int series; numeric
// columns with floats or nulls become Float series with NaN for null;
// everything else keeps its display form as a String series. A
// non-empty index must name a header column; that column moves to the
// front of the frame.
func (t *Table) DataFrame(index string) (dataframe.DataFrame, error) {
	if t.header == nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s table: %w", t.name, ErrNoHeader)
	}

	order := make([]int, 0, len(t.header))
	if index != "" {
		pos := -1
		for j, col := range t.header {
			if col == index {
				pos = j
				break
			}
		}
		if pos < 0 {
			return dataframe.DataFrame{}, fmt.Errorf("%s table: %w: %q", t.name, ErrNoColumn, index)
		}
		order = append(order, pos)
		for j := range t.header {
			if j != pos {
				order = append(order, j)
			}
		}
	} else {
		for j := range t.header {
			order = append(order, j)
		}
	}

	cols := make([]series.Series, 0, len(order))
	for _, j := range order {
		cols = append(cols, t.columnSeries(j))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s table: %w", t.name, df.Err)
	}
	return df, nil
}

// columnSeries builds one column, choosing the narrowest series type
// that holds every cell.
func (t *Table) columnSeries(j int) series.Series {
	hasFloat, hasNull, hasOther := false, false, false
	for _, row := range t.rows {
		switch row[j].Kind() {
		case KindInt:
		case KindFloat:
			hasFloat = true
		case KindNull:
			hasNull = true
		default:
			hasOther = true
		}
	}

	name := t.header[j]
	switch {
	case hasOther:
		vals := make([]string, len(t.rows))
		for i, row := range t.rows {
			vals[i] = row[j].String()
		}
		return series.New(vals, series.String, name)
	case hasFloat || hasNull:
		vals := make([]float64, len(t.rows))
		for i, row := range t.rows {
			if row[j].IsNull() {
				vals[i] = math.NaN()
			} else {
				vals[i] = row[j].Float()
			}
		}
		return series.New(vals, series.Float, name)
	default:
		vals := make([]int, len(t.rows))
		for i, row := range t.rows {
			vals[i] = int(row[j].Int())
		}
		return series.New(vals, series.Int, name)
	}
}
