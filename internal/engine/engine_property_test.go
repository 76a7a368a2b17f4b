package engine

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

func propertyParameters() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	return params
}

func blankGen() gopter.Gen {
	blanks := []string{" ", "\t", "\n", "\r"}
	char := gen.IntRange(0, len(blanks)-1).Map(func(i int) string { return blanks[i] })
	return gen.SliceOf(char).Map(func(parts []string) string {
		return strings.Join(parts, "")
	})
}

func TestProperty_BlankCellsFailNotNull(t *testing.T) {
	e := New(mustLookup(t, "kadam"))
	props := gopter.NewProperties(propertyParameters())

	props.Property("blank first name is null or empty", prop.ForAll(
		func(blank string) bool {
			tbl := newTable([]string{"Student's First Name"}, []any{blank})
			res := e.Validate(tbl)
			return len(res.Errors) == 1 && res.Errors[0].Reason == "Value is null or empty"
		},
		blankGen(),
	))

	props.TestingRun(t)
}

func TestProperty_NumericParsing(t *testing.T) {
	e := New(mustLookup(t, "kadam"))
	props := gopter.NewProperties(propertyParameters())

	props.Property("formatted floats are numeric", prop.ForAll(
		func(f float64) bool {
			tbl := newTable([]string{"Father's Age"}, []any{strconv.FormatFloat(f, 'g', -1, 64)})
			return len(e.Validate(tbl).Errors) == 0
		},
		gen.Float64Range(-1e9, 1e9),
	))

	props.Property("words are not numeric", prop.ForAll(
		func(s string) bool {
			tbl := newTable([]string{"Father's Age"}, []any{"x" + s})
			res := e.Validate(tbl)
			return len(res.Errors) == 1 && res.Errors[0].Reason == "Value is not numeric"
		},
		gen.AlphaString(),
	))

	props.TestingRun(t)
}

func TestProperty_GradeCeilingBoundary(t *testing.T) {
	e := New(mustLookup(t, "kadam"))
	props := gopter.NewProperties(propertyParameters())
	cols := []string{"Baseline Math", "Current Grade After Mainstream"}

	props.Property("ceiling passes, ceiling+0.01 fails", prop.ForAll(
		func(grade int, ordinal bool) bool {
			limit, _ := derived.SubjectTiers.Ceiling(grade)
			g := any(grade)
			if ordinal {
				g = strconv.Itoa(grade) + [...]string{"st", "nd", "rd", "th"}[grade-1]
			}
			at := e.Validate(newTable(cols, []any{limit, g}))
			past := e.Validate(newTable(cols, []any{limit + 0.01, g}))
			return len(at.Errors) == 0 && len(past.Errors) == 1 &&
				past.Errors[0].Reason == "Value exceeds max allowed ("+table.FormatNumber(limit)+")"
		},
		gen.IntRange(1, 4),
		gen.Bool(),
	))

	props.TestingRun(t)
}

func TestProperty_Idempotent(t *testing.T) {
	e := New(mustLookup(t, "kadam"))
	props := gopter.NewProperties(propertyParameters())
	cols := []string{"Student's First Name", "Student's Age", "Contact No.", "Baseline Math", "Baseline Total", "Endline Total", "Current Grade After Mainstream"}

	grades := []string{"1st", "2nd", "3rd", "4th", "5th", "KG"}
	cell := gen.OneGenOf(
		gen.Const(""),
		gen.AlphaString(),
		gen.NumString(),
		gen.Float64Range(-10, 200).Map(func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }),
		gen.IntRange(0, len(grades)-1).Map(func(i int) string { return grades[i] }),
	)
	row := gen.SliceOfN(len(cols), cell)

	props.Property("two runs produce identical results", prop.ForAll(
		func(rows [][]string) bool {
			tbl := table.New("Compile Report", cols)
			for _, r := range rows {
				vals := make(table.Row, len(r))
				for i, s := range r {
					vals[i] = table.Text(s)
				}
				tbl.Append(vals)
			}
			return reflect.DeepEqual(e.Validate(tbl), e.Validate(tbl))
		},
		gen.SliceOf(row),
	))

	props.TestingRun(t)
}
