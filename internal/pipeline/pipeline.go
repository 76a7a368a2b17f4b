// Package pipeline runs one validation end to end: load the table, apply the
// profile, and write the annotated copy and the error report as a pair.
//
// Outputs are written to temporary names in the output directory and renamed
// only after both writes succeed, so a failed run leaves neither file behind.
// Every artifact carries the run id in its name, which keeps concurrent runs
// sharing one directory apart.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/engine"
	"github.com/Karanpr-18/Excel-cleaning/internal/inspect"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/report"
	"github.com/Karanpr-18/Excel-cleaning/internal/source"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
	"github.com/Karanpr-18/Excel-cleaning/internal/workbook"
)

// ErrUnsupportedFile is returned for inputs no file source can read, notably
// legacy binary .xls workbooks.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Job is one resolved run.
type Job struct {
	// Name labels logs; it defaults to the profile name.
	Name    string
	Source  config.Source
	Profile *profile.Profile

	// OutputDir receives both artifacts; it is created when missing.
	OutputDir string

	// ReportFormat is "xlsx" (default), "csv" or "json".
	ReportFormat string

	// RunID prefixes artifact names. A random UUID is used when empty.
	RunID string
}

// Outputs describes a finished run.
type Outputs struct {
	RunID     string
	Annotated string
	Report    string

	Rows        int
	Errors      int
	Fingerprint uint64
	ByColumn    []report.ColumnCount
	Result      engine.Result
}

// FromConfig resolves a decoded job file into a Job.
func FromConfig(j config.Job) (Job, error) {
	p, err := profile.Resolve(j.Profile)
	if err != nil {
		return Job{}, err
	}
	return Job{
		Name:         j.Job,
		Source:       j.Source,
		Profile:      p,
		OutputDir:    j.Output.Dir,
		ReportFormat: j.Output.ReportFormat,
	}, nil
}

// Run executes job. It logs through the zerolog logger carried by ctx, if any.
func Run(ctx context.Context, job Job) (Outputs, error) {
	if job.Profile == nil {
		return Outputs{}, errors.New("pipeline: profile is required")
	}
	if job.RunID == "" {
		job.RunID = uuid.NewString()
	}
	if job.Name == "" {
		job.Name = job.Profile.Name()
	}
	if job.OutputDir == "" {
		job.OutputDir = "."
	}
	format := strings.ToLower(job.ReportFormat)
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" && format != "json" {
		return Outputs{}, fmt.Errorf("pipeline: unknown report format %q", job.ReportFormat)
	}
	src, err := resolveSource(job.Source, job.Profile)
	if err != nil {
		return Outputs{}, err
	}

	pname := job.Profile.Name()
	log := zerolog.Ctx(ctx).With().
		Str("run_id", job.RunID).
		Str("job", job.Name).
		Str("profile", pname).
		Logger()

	start := time.Now()
	t, origin, err := source.Open(ctx, src)
	metrics.RecordStep(pname, "load", err, time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("kind", src.Kind).Msg("load: failed")
		return Outputs{}, err
	}
	log.Debug().Str("table", t.Name).Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("load: done")
	if missing := inspect.Missing(t, job.Profile); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("load: profile columns not in table; skipped")
	}

	start = time.Now()
	res := engine.New(job.Profile).Validate(t)
	rep := report.Build(res.Errors)
	metrics.RecordStep(pname, "validate", nil, time.Since(start))
	metrics.RecordRows(pname, t.Len())
	byColumn := rep.ByColumn()
	for _, c := range byColumn {
		metrics.RecordErrors(pname, c.Column, c.Count)
	}

	out := Outputs{
		RunID:       job.RunID,
		Annotated:   filepath.Join(job.OutputDir, fmt.Sprintf("%s_Validated_Output_%s.xlsx", job.RunID, SafeName(job.Profile.Label()))),
		Report:      filepath.Join(job.OutputDir, fmt.Sprintf("%s_Validation_Report_%s.%s", job.RunID, SafeName(job.Profile.Label()), format)),
		Rows:        t.Len(),
		Errors:      rep.Len(),
		Fingerprint: rep.Fingerprint(),
		ByColumn:    byColumn,
		Result:      res,
	}

	start = time.Now()
	err = writePair(ctx, out, t, origin, res.Annotations, rep, format)
	metrics.RecordStep(pname, "write", err, time.Since(start))
	if err != nil {
		log.Error().Err(err).Msg("write: failed")
		return Outputs{}, err
	}

	log.Info().
		Int("rows", out.Rows).
		Int("errors", out.Errors).
		Str("fingerprint", fmt.Sprintf("%016x", out.Fingerprint)).
		Str("output", out.Annotated).
		Str("report", out.Report).
		Msg("run: complete")
	return out, nil
}

// Load resolves job's source the way Run does and reads the table without
// validating it.
func Load(ctx context.Context, job Job) (*table.Table, source.Origin, error) {
	if job.Profile == nil {
		return nil, source.Origin{}, errors.New("pipeline: profile is required")
	}
	src, err := resolveSource(job.Source, job.Profile)
	if err != nil {
		return nil, source.Origin{}, err
	}
	return source.Open(ctx, src)
}

// resolveSource fills in the file kind from the extension and the sheet from
// the profile.
func resolveSource(src config.Source, p *profile.Profile) (config.Source, error) {
	path := src.File.Path
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return src, fmt.Errorf("%w: %s (save the workbook as .xlsx)", ErrUnsupportedFile, filepath.Base(path))
	}
	if src.Kind == "" {
		if path == "" {
			return src, errors.New("pipeline: source kind or file path is required")
		}
		src.Kind = source.KindForPath(path)
		if src.Kind == "" {
			return src, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
		}
	}
	if strings.EqualFold(src.Kind, "xlsx") && src.File.Sheet == "" {
		src.File.Sheet = p.Sheet()
	}
	return src, nil
}

// writePair writes both artifacts under temporary names and renames them
// into place only when both succeeded.
func writePair(ctx context.Context, out Outputs, t *table.Table, origin source.Origin, anns []engine.Annotation, rep *report.Report, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(out.Annotated), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmpAnnotated := tempName(out.Annotated)
	tmpReport := tempName(out.Report)
	defer func() {
		if err != nil {
			os.Remove(tmpAnnotated)
			os.Remove(tmpReport)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if origin.Workbook() {
			return workbook.Annotate(origin.Path, tmpAnnotated, origin.Sheet, anns)
		}
		return workbook.WriteTable(tmpAnnotated, t, anns)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return writeReport(tmpReport, rep, format)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.Rename(tmpAnnotated, out.Annotated); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	if err := os.Rename(tmpReport, out.Report); err != nil {
		os.Remove(out.Annotated)
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

func writeReport(path string, rep *report.Report, format string) error {
	if format == "xlsx" {
		return workbook.WriteReport(path, rep)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if format == "csv" {
		err = report.WriteCSV(f, rep)
	} else {
		err = report.WriteJSON(f, rep)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// tempName keeps the extension, which the XLSX writer checks.
func tempName(path string) string {
	return filepath.Join(filepath.Dir(path), ".partial-"+filepath.Base(path))
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces s to characters that are safe in a file name on every
// platform. Runs of other characters become one underscore.
func SafeName(s string) string {
	s = strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(s), "_"), "._")
	if s == "" {
		return "file"
	}
	return s
}
