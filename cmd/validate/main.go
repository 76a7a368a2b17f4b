// Command validate checks one survey table against a validation profile and
// writes the annotated copy and the error report next to each other.
//
// Usage:
//
//	validate -in compile.xlsx [-profile kadam] [-out downloads]
//	validate -config jobs/kadam.yaml
//	validate -config jobs/kadam.yaml -lint
//	validate -in compile.xlsx -profile kadam_plus -inspect
//
// Flags given alongside -config override the job file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/inspect"
	"github.com/Karanpr-18/Excel-cleaning/internal/logging"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/backends"
	"github.com/Karanpr-18/Excel-cleaning/internal/pipeline"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/source"

	// register every source kind; the job decides which one runs.
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	in           string
	profile      string
	profileFile  string
	sheet        string
	out          string
	reportFormat string
	configPath   string
	envFile      string
	logLevel     string
	lint         bool
	inspect      bool
	listProfiles bool
}

// run is main without the process exit. It returns 0 on success, 1 when the
// run or its configuration fails and 2 on bad flags.
func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input file (.xlsx, .xlsm, .csv)")
	fs.StringVar(&o.profile, "profile", "", "built-in profile name (default kadam)")
	fs.StringVar(&o.profileFile, "profile-file", "", "custom profile file (JSON or YAML)")
	fs.StringVar(&o.sheet, "sheet", "", "worksheet to read; defaults to the profile's sheet")
	fs.StringVar(&o.out, "out", "", "output directory (default current directory)")
	fs.StringVar(&o.reportFormat, "report-format", "", "report format: xlsx, csv or json")
	fs.StringVar(&o.configPath, "config", "", "job file (JSON or YAML)")
	fs.StringVar(&o.envFile, "env", ".env", "optional .env file with process settings")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	fs.BoolVar(&o.lint, "lint", false, "check the job and exit")
	fs.BoolVar(&o.inspect, "inspect", false, "print column coverage and value kinds without validating")
	fs.BoolVar(&o.listProfiles, "profiles", false, "list built-in profiles and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if o.listProfiles {
		for _, name := range profile.Names() {
			p, err := profile.Lookup(name)
			if err != nil {
				continue
			}
			fmt.Fprintf(stdout, "%-12s %s\n", p.Name(), p.Label())
		}
		return 0
	}

	settings, err := config.LoadSettings(o.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "settings: %v\n", err)
		return 1
	}
	level := settings.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger := logging.Console(level, stderr)

	j, err := buildJob(o)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}

	issues := config.ValidateJob(j)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "validate: job is invalid")
		return 1
	}
	if o.lint {
		fmt.Fprintln(stdout, "job is valid")
		return 0
	}

	job, err := pipeline.FromConfig(j)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}

	if o.inspect {
		t, _, err := pipeline.Load(logger.WithContext(context.Background()), job)
		if err != nil {
			fmt.Fprintf(stderr, "validate: %v\n", err)
			return 1
		}
		if err := inspect.WriteText(stdout, inspect.Table(t, job.Profile)); err != nil {
			fmt.Fprintf(stderr, "validate: %v\n", err)
			return 1
		}
		return 0
	}

	jobName := j.Job
	if jobName == "" {
		jobName = job.Profile.Name()
	}
	b, err := backends.FromSettings(*settings, jobName)
	if err != nil {
		logger.Warn().Err(err).Msg("metrics: backend unavailable; metrics disabled")
	} else if b != nil {
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				logger.Warn().Err(err).Msg("metrics: flush failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	out, err := pipeline.Run(ctx, job)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}
	printSummary(stdout, out)
	return 0
}

// buildJob merges the job file, if any, with the flags.
func buildJob(o options) (config.Job, error) {
	var j config.Job
	if o.configPath != "" {
		var err error
		if j, err = config.LoadJob(o.configPath); err != nil {
			return config.Job{}, err
		}
	} else if o.in == "" {
		return config.Job{}, errors.New("-in or -config is required")
	}

	if o.in != "" {
		kind := source.KindForPath(o.in)
		if kind == "" {
			return config.Job{}, fmt.Errorf("%s: %w (want .xlsx, .xlsm or .csv)", o.in, pipeline.ErrUnsupportedFile)
		}
		j.Source = config.Source{Kind: kind, File: config.SourceFile{Path: o.in, Sheet: j.Source.File.Sheet}, Options: j.Source.Options}
	}
	if o.sheet != "" {
		j.Source.File.Sheet = o.sheet
	}
	if o.profile != "" || o.profileFile != "" {
		j.Profile = config.ProfileRef{Name: o.profile, File: o.profileFile}
	}
	if j.Profile.Name == "" && j.Profile.File == "" && j.Profile.Inline == nil {
		j.Profile.Name = "kadam"
	}
	if o.out != "" {
		j.Output.Dir = o.out
	}
	if o.reportFormat != "" {
		j.Output.ReportFormat = strings.ToLower(o.reportFormat)
	}
	return j, nil
}

func printSummary(w io.Writer, out pipeline.Outputs) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", out.RunID)
	fmt.Fprintf(tw, "Rows checked\t%d\n", out.Rows)
	fmt.Fprintf(tw, "Errors found\t%d\n", out.Errors)
	for _, c := range out.ByColumn {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Column, c.Count)
	}
	fmt.Fprintf(tw, "Annotated output\t%s\n", out.Annotated)
	fmt.Fprintf(tw, "Validation report\t%s\n", out.Report)
	fmt.Fprintf(tw, "Fingerprint\t%016x\n", out.Fingerprint)
	tw.Flush()
}
