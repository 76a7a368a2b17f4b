package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/all"
	"github.com/Karanpr-18/Excel-cleaning/internal/workbook"
)

var fixtureHeader = []any{
	"Student's First Name", "Contact No.", profile.ColCurrentGrade, "Baseline Math", profile.ColBaseline, profile.ColEndline,
}

// writeSurvey saves a "Compile Report" sheet with the given data rows.
func writeSurvey(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Compile Report"); err != nil {
		t.Fatal(err)
	}
	all := append([][]any{fixtureHeader}, rows...)
	for i, r := range all {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Compile Report", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	p := filepath.Join(t.TempDir(), "survey.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func kadam(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.Lookup("kadam")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range ents {
		names = append(names, e.Name())
	}
	return names
}

/*
TestRun_WorkbookSource validates a small survey sheet end to end and checks
the artifact names, the report rows, the red fill in the annotated copy and
that a second run yields the same report fingerprint.
*/
func TestRun_WorkbookSource(t *testing.T) {
	t.Parallel()

	in := writeSurvey(t,
		[]any{"Asha", "12345", "4th", 12, 60, 50},
		[]any{"Ravi", "9876543210", "1", 12, 30, 35},
	)
	out := t.TempDir()
	job := Job{Source: config.Source{File: config.SourceFile{Path: in}}, Profile: kadam(t), OutputDir: out, RunID: "run1"}

	res, err := Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rows != 2 || res.Errors != 3 {
		t.Fatalf("rows=%d errors=%d", res.Rows, res.Errors)
	}
	if filepath.Base(res.Annotated) != "run1_Validated_Output_Kadam.xlsx" || filepath.Base(res.Report) != "run1_Validation_Report_Kadam.xlsx" {
		t.Fatalf("names = %s, %s", res.Annotated, res.Report)
	}
	if names := listDir(t, out); len(names) != 2 {
		t.Fatalf("output dir = %v", names)
	}

	rep, err := workbook.Load(res.Report, "")
	if err != nil {
		t.Fatal(err)
	}
	var cells []string
	for i := 0; i < rep.Len(); i++ {
		v, _ := rep.Value(i, "Cell")
		cells = append(cells, v.String())
	}
	if got := strings.Join(cells, ","); got != "B2,D3,F2" {
		t.Fatalf("report cells = %s", got)
	}

	f, err := excelize.OpenFile(res.Annotated)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	id, _ := f.GetCellStyle("Compile Report", "B2")
	st, _ := f.GetStyle(id)
	if st == nil || len(st.Fill.Color) == 0 || st.Fill.Color[0] != workbook.ErrorColor {
		t.Fatalf("B2 style = %+v", st)
	}
	if v, _ := f.GetCellValue("Compile Report", "B2"); v != "12345" {
		t.Fatalf("B2 = %q", v)
	}

	job.RunID = "run2"
	again, err := Run(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if again.Fingerprint != res.Fingerprint {
		t.Fatalf("fingerprint changed: %x vs %x", again.Fingerprint, res.Fingerprint)
	}
}

func TestRun_EmptyTable(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), Job{
		Source:    config.Source{Kind: "xlsx", File: config.SourceFile{Path: writeSurvey(t)}},
		Profile:   kadam(t),
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Errors != 0 || res.Rows != 0 || res.RunID == "" {
		t.Fatalf("res = %+v", res)
	}
	rep, err := workbook.Load(res.Report, "")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Len() != 0 || len(rep.Columns) != 5 {
		t.Fatalf("report = %v rows=%d", rep.Columns, rep.Len())
	}
}

func TestRun_CSVSourceJSONReport(t *testing.T) {
	t.Parallel()

	in := filepath.Join(t.TempDir(), "survey.csv")
	body := "Student's First Name,Contact No.\nAsha,987-654-3210\nR@vi,98765\n"
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), Job{
		Source:       config.Source{File: config.SourceFile{Path: in}},
		Profile:      kadam(t),
		OutputDir:    t.TempDir(),
		ReportFormat: "JSON",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(res.Report, ".json") {
		t.Fatalf("report = %s", res.Report)
	}
	raw, err := os.ReadFile(res.Report)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0]["Cell"] != "A3" || entries[1]["Cell"] != "B3" {
		t.Fatalf("entries = %v", entries)
	}

	annotated, err := workbook.Load(res.Annotated, "")
	if err != nil {
		t.Fatal(err)
	}
	if annotated.Len() != 2 {
		t.Fatalf("annotated rows = %d", annotated.Len())
	}
}

func TestRun_Rejections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		job  Job
		is   error
	}{
		{"xls", Job{Source: config.Source{File: config.SourceFile{Path: filepath.Join(dir, "old.XLS")}}}, ErrUnsupportedFile},
		{"pdf", Job{Source: config.Source{File: config.SourceFile{Path: filepath.Join(dir, "a.pdf")}}}, ErrUnsupportedFile},
		{"sheet", Job{Source: config.Source{File: config.SourceFile{Path: writeSurvey(t), Sheet: "Consolidated"}}}, workbook.ErrSheetNotFound},
	}
	for _, tt := range tests {
		tt.job.Profile = kadam(t)
		tt.job.OutputDir = filepath.Join(dir, tt.name)
		if _, err := Run(context.Background(), tt.job); !errors.Is(err, tt.is) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.is)
		}
		if _, err := os.Stat(tt.job.OutputDir); !os.IsNotExist(err) {
			t.Errorf("%s: output dir created on failure", tt.name)
		}
	}

	if _, err := Run(context.Background(), Job{Profile: kadam(t), ReportFormat: "pdf", Source: config.Source{Kind: "csv"}}); err == nil {
		t.Error("expected error for unknown report format")
	}
	if _, err := Run(context.Background(), Job{}); err == nil {
		t.Error("expected error without profile")
	}
}

/*
TestRun_FailedWriteLeavesNoOutput blocks the report's temporary path with a
directory so the report write fails, then checks that the annotated workbook
was not published either.
*/
func TestRun_FailedWriteLeavesNoOutput(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	blocker := filepath.Join(out, ".partial-r9_Validation_Report_Kadam.xlsx")
	if err := os.Mkdir(blocker, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(blocker, "keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), Job{
		Source:    config.Source{File: config.SourceFile{Path: writeSurvey(t, []any{"Asha", "12345", "1", 5, 10, 20})}},
		Profile:   kadam(t),
		OutputDir: out,
		RunID:     "r9",
	})
	if err == nil {
		t.Fatal("expected write failure")
	}
	names := listDir(t, out)
	if len(names) != 1 || names[0] != filepath.Base(blocker) {
		t.Fatalf("output dir = %v", names)
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	job, err := FromConfig(config.Job{
		Job:     "q1",
		Profile: config.ProfileRef{Name: "women"},
		Output:  config.Output{Dir: "out", ReportFormat: "csv"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if job.Profile.Name() != "women_emp" || job.Name != "q1" || job.OutputDir != "out" || job.ReportFormat != "csv" {
		t.Fatalf("job = %+v", job)
	}
	if _, err := FromConfig(config.Job{Profile: config.ProfileRef{Name: "nope"}}); !errors.Is(err, profile.ErrUnknownProfile) {
		t.Fatalf("err = %v", err)
	}
}

func TestSafeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Survey Q1 (final).xlsx": "Survey_Q1_final_.xlsx",
		"../../etc/passwd":       "etc_passwd",
		"KadamPlus":              "KadamPlus",
		"  ":                     "file",
		"सर्वे.xlsx":             "xlsx",
	}
	for in, want := range tests {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_UsesProfileSheet(t *testing.T) {
	t.Parallel()

	in := writeSurvey(t, []any{"Asha", "12345", "4th", 12, 60, 50})
	tbl, origin, err := Load(context.Background(), Job{Source: config.Source{File: config.SourceFile{Path: in}}, Profile: kadam(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 || origin.Sheet != "Compile Report" || !origin.Workbook() {
		t.Fatalf("rows=%d origin=%+v", tbl.Len(), origin)
	}
	if _, _, err := Load(context.Background(), Job{Source: config.Source{File: config.SourceFile{Path: in}}}); err == nil {
		t.Fatal("expected error without a profile")
	}
}
