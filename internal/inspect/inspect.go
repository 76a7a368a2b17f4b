// Package inspect summarizes a loaded table before validation: which headers
// a profile will check, which profile columns are absent (and therefore
// silently skipped), and what kinds of values each column holds.
package inspect

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// maxExamples bounds the sample values kept per column.
const maxExamples = 3

// ColumnStat describes one table column.
type ColumnStat struct {
	Header string `json:"header"`

	// Checked is true when a profile column matches the header.
	Checked bool `json:"checked"`

	Numbers  int      `json:"numbers"`
	Texts    int      `json:"texts"`
	Dates    int      `json:"dates"`
	Nulls    int      `json:"nulls"`
	Examples []string `json:"examples,omitempty"`
}

// Report is the result of Table.
type Report struct {
	Source  string       `json:"source"`
	Rows    int          `json:"rows"`
	Columns []ColumnStat `json:"columns"`

	// Missing lists profile columns with no matching header.
	Missing []string `json:"missing,omitempty"`

	// Duplicates lists headers that appear more than once; only the first
	// occurrence is validated.
	Duplicates []string `json:"duplicates,omitempty"`
}

// Table inspects t against p.
func Table(t *table.Table, p *profile.Profile) Report {
	rep := Report{Source: t.Name, Rows: t.Len()}

	seen := make(map[string]bool, len(t.Columns))
	for i, h := range t.Columns {
		key := table.CanonicalHeader(h)
		st := ColumnStat{Header: h}
		if key != "" && seen[key] {
			rep.Duplicates = append(rep.Duplicates, h)
		} else if _, ok := p.Column(h); ok && key != "" {
			st.Checked = true
		}
		seen[key] = true

		for _, r := range t.Rows {
			v := r[i]
			if v.IsNull() {
				st.Nulls++
				continue
			}
			switch v.Kind() {
			case table.KindNumber:
				st.Numbers++
			case table.KindText:
				st.Texts++
			case table.KindDate:
				st.Dates++
			}
			if len(st.Examples) < maxExamples {
				st.Examples = append(st.Examples, v.String())
			}
		}
		rep.Columns = append(rep.Columns, st)
	}

	rep.Missing = Missing(t, p)
	return rep
}

// Missing lists the profile columns t has no header for.
func Missing(t *table.Table, p *profile.Profile) []string {
	var out []string
	for _, c := range p.Columns() {
		if !t.Has(c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Checked counts the columns a validation would check.
func (r Report) Checked() int {
	n := 0
	for _, c := range r.Columns {
		if c.Checked {
			n++
		}
	}
	return n
}

// WriteText renders r as an aligned table.
func WriteText(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s: %d rows, %d of %d columns checked\n", r.Source, r.Rows, r.Checked(), len(r.Columns))
	fmt.Fprintln(tw, "COLUMN\tCHECKED\tNUMBER\tTEXT\tDATE\tEMPTY\tEXAMPLES")
	for _, c := range r.Columns {
		checked := "-"
		if c.Checked {
			checked = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%v\n", c.Header, checked, c.Numbers, c.Texts, c.Dates, c.Nulls, c.Examples)
	}
	for _, m := range r.Missing {
		fmt.Fprintf(tw, "missing: %s\n", m)
	}
	for _, d := range r.Duplicates {
		fmt.Fprintf(tw, "duplicate: %s\n", d)
	}
	return tw.Flush()
}
