package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Karanpr-18/Excel-cleaning/internal/engine"
	"github.com/Karanpr-18/Excel-cleaning/internal/report"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// ErrorColor is the fill applied to failing cells.
const ErrorColor = "FF0000"

const dateFormat = 14 // m/d/yy, the built-in short date

func errorFill() excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{ErrorColor}}
}

// Annotate copies the workbook at src to dst, filling every annotated cell on
// sheet red. Cell values, number formats, fonts and borders are kept; only the
// fill changes.
func Annotate(src, dst, sheet string, anns []engine.Annotation) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := ResolveSheet(f, sheet)
	if err != nil {
		return err
	}

	filled := map[int]int{}
	for _, a := range anns {
		cur, err := f.GetCellStyle(name, a.Cell)
		if err != nil {
			return fmt.Errorf("annotate %s: %w", a.Cell, err)
		}
		id, ok := filled[cur]
		if !ok {
			st, err := f.GetStyle(cur)
			if err != nil {
				return fmt.Errorf("annotate %s: %w", a.Cell, err)
			}
			st.Fill = errorFill()
			if id, err = f.NewStyle(st); err != nil {
				return fmt.Errorf("annotate %s: %w", a.Cell, err)
			}
			filled[cur] = id
		}
		if err := f.SetCellStyle(name, a.Cell, a.Cell, id); err != nil {
			return fmt.Errorf("annotate %s: %w", a.Cell, err)
		}
	}

	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("save annotated workbook: %w", err)
	}
	return nil
}

// styles caches the handful of cell styles the writers need.
type styles struct {
	plain, red, date, redDate, header int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	defs := []struct {
		dst *int
		st  *excelize.Style
	}{
		{&s.red, &excelize.Style{Fill: errorFill()}},
		{&s.date, &excelize.Style{NumFmt: dateFormat}},
		{&s.redDate, &excelize.Style{NumFmt: dateFormat, Fill: errorFill()}},
		{&s.header, &excelize.Style{Font: &excelize.Font{Bold: true}}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.st); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s styles) cell(v table.Value, red bool) excelize.Cell {
	switch v.Kind() {
	case table.KindNumber:
		n, _ := v.Num()
		return excelize.Cell{StyleID: s.pick(red, false), Value: n}
	case table.KindText:
		return excelize.Cell{StyleID: s.pick(red, false), Value: v.String()}
	case table.KindDate:
		d, _ := v.Time()
		return excelize.Cell{StyleID: s.pick(red, true), Value: d}
	}
	return excelize.Cell{StyleID: s.pick(red, false)}
}

func (s styles) pick(red, date bool) int {
	switch {
	case red && date:
		return s.redDate
	case red:
		return s.red
	case date:
		return s.date
	}
	return s.plain
}

// WriteTable renders t as a new workbook at dst, used when the input did not
// come from an XLSX file. The header goes on t.HeaderRow so annotation
// coordinates line up; annotated cells are filled red.
func WriteTable(dst string, t *table.Table, anns []engine.Annotation) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sanitizeSheetName(t.Name)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	marked := make(map[[2]int]bool, len(anns))
	for _, a := range anns {
		marked[[2]int{a.Row, a.Col}] = true
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: st.header, Value: c}
	}
	headerRow := t.SheetRow(0) - 1
	if err := sw.SetRow(cellName(1, headerRow), header); err != nil {
		return err
	}
	for i, r := range t.Rows {
		sheetRow := t.SheetRow(i)
		vals := make([]any, len(r))
		for c, v := range r {
			vals[c] = st.cell(v, marked[[2]int{sheetRow, c + 1}])
		}
		if err := sw.SetRow(cellName(1, sheetRow), vals); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteReport writes r as a single-sheet workbook with a bold header row. The
// header is written even when r is empty.
func WriteReport(dst string, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(2, 2, 28); err != nil {
		return err
	}
	if err := sw.SetColWidth(5, 5, 60); err != nil {
		return err
	}

	header := make([]any, len(report.Header))
	for i, h := range report.Header {
		header[i] = excelize.Cell{StyleID: st.header, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, e := range r.Entries {
		row := []any{e.Row, e.Column, e.Cell, st.cell(e.Value, false), e.Error}
		if err := sw.SetRow(cellName(1, i+2), row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	s, _ := excelize.CoordinatesToCellName(col, row)
	return s
}

// sanitizeSheetName applies Excel's sheet name limits.
func sanitizeSheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	return string(out)
}
