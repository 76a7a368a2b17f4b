// Package workbook is the spreadsheet side of a validation run: it reads one
// worksheet into a table and writes the annotated copy and the report as
// XLSX files.
package workbook

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

var (
	// ErrSheetNotFound means the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrNoHeader means the worksheet has no header row.
	ErrNoHeader = errors.New("sheet has no header row")
)

// Load reads sheet from the workbook at path. An empty sheet selects the first
// worksheet. Row 1 is the header; every later row becomes a data row, blank
// rows included, so row numbers line up with the sheet.
func Load(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return FromFile(f, sheet)
}

// FromFile reads sheet from an open workbook.
func FromFile(f *excelize.File, sheet string) (*table.Table, error) {
	name, err := ResolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, fmt.Errorf("%w: %q", ErrNoHeader, name)
	}

	r := &reader{f: f, sheet: name, dateStyles: map[int]bool{}, date1904: uses1904(f)}
	t := table.New(name, rows[0])
	for i, raw := range rows[1:] {
		row := make(table.Row, len(t.Columns))
		for c := 0; c < len(row) && c < len(raw); c++ {
			v, err := r.cell(c+1, i+2, raw[c])
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		t.Append(row)
	}
	return t, nil
}

// ResolveSheet maps a selector onto a worksheet name.
func ResolveSheet(f *excelize.File, sheet string) (string, error) {
	list := f.GetSheetList()
	if sheet == "" {
		if len(list) == 0 {
			return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		return list[0], nil
	}
	for _, s := range list {
		if s == sheet {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, sheet, strings.Join(list, ", "))
}

type reader struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
	date1904   bool
}

func (r *reader) cell(col, row int, raw string) (table.Value, error) {
	if raw == "" {
		return table.Null(), nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return table.Value{}, err
	}
	typ, err := r.f.GetCellType(r.sheet, ref)
	if err != nil {
		return table.Value{}, fmt.Errorf("cell %s: %w", ref, err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return table.Text(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return table.Text("TRUE"), nil
		}
		return table.Text("FALSE"), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return table.Date(t), nil
		}
		return table.Text(raw), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
	default:
		// Formula string results and error values keep their text.
		return table.Text(raw), nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return table.Text(raw), nil
	}
	isDate, err := r.isDateCell(ref)
	if err != nil {
		return table.Value{}, err
	}
	if isDate {
		if t, err := excelize.ExcelDateToTime(n, r.date1904); err == nil {
			return table.Date(t), nil
		}
	}
	return table.Number(n), nil
}

func (r *reader) isDateCell(ref string) (bool, error) {
	id, err := r.f.GetCellStyle(r.sheet, ref)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", ref, err)
	}
	if d, ok := r.dateStyles[id]; ok {
		return d, nil
	}
	d := false
	if st, err := r.f.GetStyle(id); err == nil && st != nil {
		d = isDateFormat(st.NumFmt, st.CustomNumFmt)
	}
	r.dateStyles[id] = d
	return d, nil
}

// isDateFormat recognises the built-in date number formats and custom formats
// carrying day or year tokens.
func isDateFormat(id int, custom *string) bool {
	switch {
	case id >= 14 && id <= 17, id == 22,
		id >= 27 && id <= 36,
		id >= 50 && id <= 58:
		return true
	}
	if custom == nil {
		return false
	}
	code := strings.ToLower(stripLiterals(*custom))
	return strings.ContainsAny(code, "dy")
}

// stripLiterals drops quoted text, escaped characters and [bracketed]
// sections from a number format code.
func stripLiterals(code string) string {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

func isBlankRow(r []string) bool {
	for _, s := range r {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
