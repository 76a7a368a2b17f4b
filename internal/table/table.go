package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Row is one data row; cells are aligned with Table.Columns.
type Row []Value

// Table is an ordered set of rows under header-named columns. Column order and
// names are fixed once the table is constructed.
type Table struct {
	// Name is the sheet, file or query the table was loaded from.
	Name string

	// Columns lists headers in source order. Duplicate headers are kept; lookups
	// by name resolve to the first occurrence.
	Columns []string

	// HeaderRow is the 1-based sheet row holding the headers. Data row i is
	// reported as sheet row HeaderRow+1+i.
	HeaderRow int

	Rows []Row

	index map[string]int
}

// New returns an empty table with a header on sheet row 1.
func New(name string, columns []string) *Table {
	t := &Table{
		Name:      name,
		Columns:   append([]string(nil), columns...),
		HeaderRow: 1,
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		key := CanonicalHeader(c)
		if key == "" {
			continue
		}
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(r Row) {
	switch {
	case len(r) < len(t.Columns):
		padded := make(Row, len(t.Columns))
		copy(padded, r)
		r = padded
	case len(r) > len(t.Columns):
		r = r[:len(t.Columns)]
	}
	t.Rows = append(t.Rows, r)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Position returns the 0-based column position of name.
func (t *Table) Position(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[CanonicalHeader(name)]
	return i, ok
}

// Has reports whether the table carries a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.Position(name)
	return ok
}

// Value returns the cell at data row i under column name. A missing column,
// an out-of-range row or a row too short to reach the column yields a null
// value and false.
func (t *Table) Value(i int, name string) (Value, bool) {
	pos, ok := t.Position(name)
	if !ok || i < 0 || i >= len(t.Rows) {
		return Null(), false
	}
	row := t.Rows[i]
	if pos >= len(row) {
		return Null(), false
	}
	return row[pos], true
}

// SheetRow maps a 0-based data row index onto its 1-based sheet row.
func (t *Table) SheetRow(i int) int {
	header := t.HeaderRow
	if header < 1 {
		header = 1
	}
	return header + 1 + i
}

// CellRef returns the A1-style coordinate of data row i under column name.
func (t *Table) CellRef(i int, name string) (string, error) {
	pos, ok := t.Position(name)
	if !ok {
		return "", fmt.Errorf("column %q not found", name)
	}
	return excelize.CoordinatesToCellName(pos+1, t.SheetRow(i))
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := New(t.Name, t.Columns)
	c.HeaderRow = t.HeaderRow
	c.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append(Row(nil), r...)
	}
	return c
}
