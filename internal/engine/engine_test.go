package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

func newTable(cols []string, rows ...[]any) *table.Table {
	t := table.New("Sheet1", cols)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, x := range r {
			row[i] = table.FromAny(x)
		}
		t.Append(row)
	}
	return t
}

func mustLookup(t *testing.T, name string) *profile.Profile {
	t.Helper()
	p, err := profile.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func reasons(vs []Verdict) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Column + "@" + v.Cell + ": " + v.Reason
	}
	return out
}

/*
TestValidate_SubjectCeilingByGrade: a grade 1 student scoring 12 in a subject
exceeds the grade's ceiling of 10.
*/
func TestValidate_SubjectCeilingByGrade(t *testing.T) {
	t.Parallel()

	tbl := newTable(
		[]string{"Student's Age", "Baseline Math", "Current Grade After Mainstream"},
		[]any{"6", 12, "1"},
	)
	res := New(mustLookup(t, "kadam")).Validate(tbl)

	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v", reasons(res.Errors))
	}
	v := res.Errors[0]
	if v.Column != "Baseline Math" || v.Cell != "B2" || v.Row != 2 {
		t.Fatalf("verdict = %+v", v)
	}
	if !strings.Contains(v.Reason, "exceeds max allowed (10)") {
		t.Fatalf("reason = %q", v.Reason)
	}
}

func TestValidate_SubjectCeilingByAge(t *testing.T) {
	t.Parallel()

	tbl := newTable(
		[]string{"Student's Age", "Baseline Math", "Baseline Total"},
		[]any{7, 21, 80},
		[]any{8, 21, 121},
		[]any{15, 99, 999},
	)
	res := New(mustLookup(t, "kadam_cond")).Validate(tbl)

	want := []string{
		"Student's Age@A4: Age is less than 6.6 or greater than 14",
		"Baseline Math@B2: Value exceeds max allowed (20)",
		"Baseline Total@C3: Value exceeds max allowed (120)",
	}
	if got := reasons(res.Errors); !reflect.DeepEqual(got, want) {
		t.Fatalf("errors =\n%v\nwant\n%v", got, want)
	}
}

func TestValidate_ContactDigits(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"Contact No."}, []any{"987-654-3210"}, []any{"12345"})
	res := New(mustLookup(t, "kadam")).Validate(tbl)

	if len(res.Errors) != 1 || res.Errors[0].Row != 3 {
		t.Fatalf("errors = %v", reasons(res.Errors))
	}
	if !strings.Contains(res.Errors[0].Reason, "exactly 10 digits") {
		t.Fatalf("reason = %q", res.Errors[0].Reason)
	}
}

func TestValidate_EmptyTable(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"Student's First Name", "Contact No."})
	res := New(mustLookup(t, "kadam")).Validate(tbl)
	if len(res.Errors) != 0 || len(res.Annotations) != 0 || res.Checked != 0 {
		t.Fatalf("result = %+v", res)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Student's First Name", "Contact No."}) {
		t.Fatalf("columns = %v", res.Columns)
	}
}

func TestValidate_AadhaarFlagAbsent(t *testing.T) {
	t.Parallel()

	p := mustLookup(t, "women_emp")

	withoutFlag := newTable([]string{"Aadhaar No."}, []any{nil}, []any{"12"}, []any{"abc"})
	if res := New(p).Validate(withoutFlag); len(res.Errors) != 0 {
		t.Fatalf("errors without flag column = %v", reasons(res.Errors))
	}

	blankFlag := newTable([]string{"Aadhaar Card Details", "Aadhaar No."}, []any{"yes", "12"}, []any{" ", nil})
	res := New(p).Validate(blankFlag)
	want := []string{
		"Aadhaar Card Details@A3: Mandatory field is empty",
		"Aadhaar No.@B2: Aadhaar No. should be exactly 12 digits when Aadhaar Card Details is yes",
	}
	if got := reasons(res.Errors); !reflect.DeepEqual(got, want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
}

func TestValidate_EndlineBelowBaseline(t *testing.T) {
	t.Parallel()

	tbl := newTable([]string{"Baseline Total", "Endline Total"}, []any{60, 50})
	res := New(mustLookup(t, "kadam")).Validate(tbl)
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v", reasons(res.Errors))
	}
	v := res.Errors[0]
	if v.Column != "Endline Total" || !strings.Contains(v.Reason, "Baseline Total (60)") {
		t.Fatalf("verdict = %+v", v)
	}
}

/*
TestValidate_OrderAndPrecedence checks column-declaration-then-row ordering,
the header offset in row numbers, first-failure-wins inside the rule list,
and that derived checks run only once every rule passed.
*/
func TestValidate_OrderAndPrecedence(t *testing.T) {
	t.Parallel()

	p, err := profile.New(profile.Config{
		Name: "t",
		Columns: []profile.Column{
			{Name: "B", Rules: []rules.Rule{rules.NotNull(), rules.Numeric()}, Check: derived.FlatCeiling{Max: 5}},
			{Name: "Missing", Rules: []rules.Rule{rules.NotNull()}},
			{Name: "A", Rules: []rules.Rule{rules.NotNull()}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	tbl := newTable([]string{"A", "B", "Unruled"},
		[]any{nil, "x", nil},
		[]any{"ok", nil, nil},
		[]any{"", 9, nil},
	)
	tbl.HeaderRow = 3

	res := New(p).Validate(tbl)
	want := []string{
		"B@B4: Value is not numeric",
		"B@B5: Value is null or empty",
		"B@B6: Value exceeds max allowed (5)",
		"A@A4: Value is null or empty",
		"A@A6: Value is null or empty",
	}
	if got := reasons(res.Errors); !reflect.DeepEqual(got, want) {
		t.Fatalf("errors =\n%v\nwant\n%v", got, want)
	}
	if res.Errors[0].Row != 4 {
		t.Fatalf("first row = %d, want 4", res.Errors[0].Row)
	}
	if len(res.Annotations) != len(res.Errors) {
		t.Fatalf("annotations = %d, errors = %d", len(res.Annotations), len(res.Errors))
	}
	if a := res.Annotations[0]; a.Cell != "B4" || a.Col != 2 || a.Row != 4 || a.Marker != MarkerError {
		t.Fatalf("annotation = %+v", a)
	}
	if res.Checked != 6 {
		t.Fatalf("checked = %d, want 6", res.Checked)
	}
}

func TestValidate_PrimitiveFailureSuppressesDerived(t *testing.T) {
	t.Parallel()

	tbl := newTable(
		[]string{"Student's Age", "Student's Date of Birth", "Enrolment Date"},
		[]any{5, "01/01/2000", "01/01/2020"},
	)
	res := New(mustLookup(t, "kadam_cond")).Validate(tbl)

	var ageReason string
	for _, v := range res.Errors {
		if v.Column == "Student's Age" {
			ageReason = v.Reason
		}
	}
	if ageReason != "Age is less than 7" {
		t.Fatalf("age reason = %q, want the rule failure", ageReason)
	}
}

func TestValidate_CalculatedAge(t *testing.T) {
	t.Parallel()

	tbl := newTable(
		[]string{"Student's Age", "Student's Date of Birth", "Enrolment Date"},
		[]any{9, "01/01/2000", "01/01/2020"},
		[]any{9, "01/01/2010", "01/06/2018"},
	)
	res := New(mustLookup(t, "kadam")).Validate(tbl)
	want := []string{"Student's Age@A2: Calculated age is less than 6 years or greater than 14"}
	if got := reasons(res.Errors); !reflect.DeepEqual(got, want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
}

func TestEvaluateCell(t *testing.T) {
	t.Parallel()

	e := New(mustLookup(t, "kadam"))
	tbl := newTable([]string{"Contact No.", "Notes"}, []any{"123", "x"})

	v, fail := e.EvaluateCell(tbl, 0, "Contact No.")
	if !fail || v.Cell != "A2" {
		t.Fatalf("EvaluateCell = %+v, %v", v, fail)
	}
	if _, fail := e.EvaluateCell(tbl, 0, "Notes"); fail {
		t.Fatal("column without rules must not fail")
	}
	if _, fail := e.EvaluateCell(tbl, 5, "Contact No."); fail {
		t.Fatal("out-of-range row must not fail")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	t.Parallel()

	tbl := newTable(
		[]string{"Student's First Name", "Contact No.", "Baseline Math", "Current Grade After Mainstream"},
		[]any{"Ravi1", "12", 50, "2nd"},
		[]any{nil, "9876543210", 5, nil},
	)
	e := New(mustLookup(t, "kadam"))
	first := e.Validate(tbl)
	second := e.Validate(tbl)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

/*
TestValidate_ShortRow: a row shorter than the header still resolves its
ceiling and cross-column checks, with the missing cells read as null.
*/
func TestValidate_ShortRow(t *testing.T) {
	t.Parallel()

	tbl := table.New("Sheet1", []string{"Baseline Math", "Current Grade After Mainstream", "Student's Age"})
	tbl.Rows = append(tbl.Rows, table.Row{table.Number(12), table.Text("1")})

	res := New(mustLookup(t, "kadam")).Validate(tbl)
	for _, v := range res.Errors {
		if v.Column == "Baseline Math" {
			return
		}
	}
	t.Fatalf("errors = %v, want a Baseline Math ceiling failure", reasons(res.Errors))
}
