// Package engine applies a validation profile to a table. It walks every
// rule-bearing column present in the table, evaluates each cell, and returns
// the failing cells in column-declaration then row order together with the
// highlight directives for the annotated copy.
package engine

import (
	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// Verdict is the outcome for one failing cell.
type Verdict struct {
	// Row is the 1-based sheet row (the first data row under a one-line
	// header is 2).
	Row    int
	Column string
	// Cell is the A1 reference, e.g. "K7".
	Cell   string
	Value  table.Value
	Reason string
}

// Marker names how an annotated cell is highlighted.
type Marker string

// MarkerError is the solid red fill applied to failing cells.
const MarkerError Marker = "error"

// Annotation tells the writer which cell to highlight.
type Annotation struct {
	Cell   string
	Row    int
	Col    int // 1-based column position in the sheet
	Marker Marker
}

// Result is everything one run produces.
type Result struct {
	Errors      []Verdict
	Annotations []Annotation

	// Checked counts evaluated cells; Columns lists the profile columns found
	// in the table, in declaration order.
	Checked int
	Columns []string
}

// Engine is stateless apart from its profile and may be shared.
type Engine struct {
	profile *profile.Profile
}

// New returns an engine for p.
func New(p *profile.Profile) *Engine {
	return &Engine{profile: p}
}

// Profile returns the profile the engine applies.
func (e *Engine) Profile() *profile.Profile { return e.profile }

// Validate evaluates t. Columns the profile declares but the table lacks are
// skipped, as are table columns the profile does not mention.
func (e *Engine) Validate(t *table.Table) Result {
	var res Result
	if t == nil {
		return res
	}

	levels := e.levels(t)
	for i := 0; i < e.profile.NumColumns(); i++ {
		col := e.profile.ColumnAt(i)
		pos, ok := t.Position(col.Name)
		if !ok {
			continue
		}
		res.Columns = append(res.Columns, col.Name)

		for r := 0; r < t.Len(); r++ {
			res.Checked++
			v, fail := e.evaluate(t, r, pos, col, levels[r])
			if !fail {
				continue
			}
			res.Errors = append(res.Errors, v)
			res.Annotations = append(res.Annotations, Annotation{
				Cell:   v.Cell,
				Row:    v.Row,
				Col:    pos + 1,
				Marker: MarkerError,
			})
		}
	}
	return res
}

// EvaluateCell runs the rules for one cell. The boolean is true when the cell
// fails; a passing or rule-less cell yields the zero Verdict.
func (e *Engine) EvaluateCell(t *table.Table, row int, column string) (Verdict, bool) {
	if t == nil || row < 0 || row >= t.Len() {
		return Verdict{}, false
	}
	col, ok := e.profile.Column(column)
	if !ok {
		return Verdict{}, false
	}
	pos, ok := t.Position(col.Name)
	if !ok {
		return Verdict{}, false
	}
	return e.evaluate(t, row, pos, col, e.level(t, row))
}

func (e *Engine) evaluate(t *table.Table, r, pos int, col profile.Column, level derived.Level) (Verdict, bool) {
	var value table.Value
	if pos < len(t.Rows[r]) {
		value = t.Rows[r][pos]
	}
	parser := e.profile.Parser()

	reason := ""
	for _, rule := range col.Rules {
		if ok, why := rule.Check(parser, col.Name, value); !ok {
			reason = why
			break
		}
	}
	if reason == "" && col.Check != nil {
		ctx := derived.Context{
			Parser: parser,
			Column: col.Name,
			Value:  value,
			Row:    rowLookup(t, r),
			Level:  level,
		}
		if ok, why := derived.Evaluate(col.Check, ctx); !ok {
			reason = why
		}
	}
	if reason == "" {
		return Verdict{}, false
	}

	cell, err := t.CellRef(r, col.Name)
	if err != nil {
		cell = ""
	}
	return Verdict{
		Row:    t.SheetRow(r),
		Column: col.Name,
		Cell:   cell,
		Value:  value,
		Reason: reason,
	}, true
}

// levels resolves every row's ceiling tier once, before any column is
// scored.
func (e *Engine) levels(t *table.Table) []derived.Level {
	out := make([]derived.Level, t.Len())
	if e.profile.Basis() == nil {
		return out
	}
	for r := range out {
		out[r] = e.level(t, r)
	}
	return out
}

func (e *Engine) level(t *table.Table, r int) derived.Level {
	b := e.profile.Basis()
	if b == nil {
		return derived.Level{}
	}
	return b.Level(e.profile.Parser(), rowLookup(t, r))
}

func rowLookup(t *table.Table, r int) derived.Lookup {
	return func(column string) (table.Value, bool) {
		return t.Value(r, column)
	}
}
