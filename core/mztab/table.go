package mztab

import (
	"fmt"

	"github.com/radusuciu/pyteomics/core/group"
)

// Table accumulates one identification table: a header of column names
// and typed rows. Cells are typed with CastValue as rows are appended,
// and the header width is enforced on every append.
type Table struct {
	name   string
	header []string
	rows   [][]Value
}

// NewTable returns an empty table with a human-readable name.
func NewTable(name string) *Table { return &Table{name: name} }

// Name returns the table's human-readable name.
func (t *Table) Name() string { return t.name }

// SetHeader sets the column names.
func (t *Table) SetHeader(columns []string) {
	t.header = append([]string(nil), columns...)
}

// Columns returns a copy of the header, or nil before it is set.
func (t *Table) Columns() []string {
	if t.header == nil {
		return nil
	}
	return append([]string(nil), t.header...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.header) }

// Add types each cell and appends the row. The header must already be
// set and the row must match its width.
func (t *Table) Add(cells []string) error {
	if t.header == nil {
		return fmt.Errorf("%s table: %w", t.name, ErrNoHeader)
	}
	if len(cells) != len(t.header) {
		return fmt.Errorf("%s table: %w: %d cells for %d columns",
			t.name, ErrRowWidth, len(cells), len(t.header))
	}
	row := make([]Value, len(cells))
	for i, c := range cells {
		row[i] = CastValue(c)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Cells returns a copy of the typed cells of row i.
func (t *Table) Cells(i int) ([]Value, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, &RangeError{Table: t.name, Index: i, Len: len(t.rows)}
	}
	return append([]Value(nil), t.rows[i]...), nil
}

// Row materializes row i: the header is zipped with the typed cells
// into a flat ordered mapping, which is then gathered into its nested
// tree form.
func (t *Table) Row(i int) (*group.Group, error) {
	if t.header == nil {
		return nil, fmt.Errorf("%s table: %w", t.name, ErrNoHeader)
	}
	if i < 0 || i >= len(t.rows) {
		return nil, &RangeError{Table: t.name, Index: i, Len: len(t.rows)}
	}
	flat := group.New()
	for j, col := range t.header {
		flat.Set(group.NameKey(col), t.rows[i][j])
	}
	return Gather(flat), nil
}

// Slice materializes rows [start, stop) by step. A zero stop means the
// row count and a zero step means 1, so Slice(0, 0, 0) selects every
// row. A negative step selects nothing. Indexes beyond the table
// surface as a range error rather than clamping.
func (t *Table) Slice(start, stop, step int) ([]*group.Group, error) {
	if stop == 0 {
		stop = len(t.rows)
	}
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return nil, nil
	}
	var out []*group.Group
	for i := start; i < stop; i += step {
		row, err := t.Row(i)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Clear drops the header and all rows.
func (t *Table) Clear() {
	t.header = nil
	t.rows = nil
}

// TableDict is the plain mapping form of a table: one flat ordered
// mapping per row, values typed but not gathered.
type TableDict struct {
	Name string         `json:"name"`
	Rows []*group.Group `json:"rows"`
}

// Dict converts the table to its plain mapping form.
func (t *Table) Dict() *TableDict {
	d := &TableDict{Name: t.name, Rows: make([]*group.Group, 0, len(t.rows))}
	for _, row := range t.rows {
		flat := group.New()
		for j, col := range t.header {
			flat.Set(group.NameKey(col), row[j])
		}
		d.Rows = append(d.Rows, flat)
	}
	return d
}
