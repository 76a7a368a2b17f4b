// This file adds a lightweight linter for Job and ProfileSpec values. It
// performs static checks and returns a list of issues (errors and warnings)
// that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "columns[3].rules[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	fileKinds = map[string]struct{}{"xlsx": {}, "csv": {}}
	dbKinds   = map[string]struct{}{"postgres": {}, "sqlite": {}, "mssql": {}, "mysql": {}}

	checkKinds = map[string]struct{}{
		"age_range":    {},
		"ceiling":      {},
		"flat_ceiling": {},
		"progression":  {},
		"required_if":  {},
	}
)

// ValidateJob performs static validation of a Job. It does not mutate j.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; runs will be labeled by profile name only",
		})
	}
	issues = append(issues, validateSource(j.Source)...)
	issues = append(issues, validateProfileRef(j.Profile)...)

	switch strings.ToLower(j.Output.ReportFormat) {
	case "", "xlsx", "csv", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.report_format",
			Message:  fmt.Sprintf("unknown report format %q; want xlsx, csv or json", j.Output.ReportFormat),
		})
	}
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	}

	if _, ok := fileKinds[kind]; ok {
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  kind + " source requires a non-empty path",
			})
		}
		return issues
	}

	if _, ok := dbKinds[kind]; ok {
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.db.dsn",
				Message:  "source.db.dsn must not be empty",
			})
		}
		if strings.TrimSpace(s.DB.Table) == "" && strings.TrimSpace(s.DB.Query) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.db",
				Message:  "database source needs a table or a query",
			})
		}
		return issues
	}

	return append(issues, Issue{
		Severity: SeverityWarning,
		Path:     "source.kind",
		Message:  fmt.Sprintf("unknown source kind %q; ensure a matching source is registered", s.Kind),
	})
}

func validateProfileRef(p ProfileRef) []Issue {
	set := 0
	for _, s := range []string{p.Name, p.File} {
		if strings.TrimSpace(s) != "" {
			set++
		}
	}
	if p.Inline != nil {
		set++
	}
	switch {
	case set == 0:
		return []Issue{{Severity: SeverityError, Path: "profile", Message: "profile needs a name, a file or an inline spec"}}
	case set > 1:
		return []Issue{{Severity: SeverityError, Path: "profile", Message: "profile name, file and inline are mutually exclusive"}}
	}
	if p.Inline != nil {
		issues := ValidateProfileSpec(*p.Inline)
		for i := range issues {
			issues[i].Path = "profile.inline." + issues[i].Path
		}
		return issues
	}
	return nil
}

// ValidateProfileSpec checks rule names, parameters, derived checks and
// ceiling tables.
func ValidateProfileSpec(p ProfileSpec) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Name) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "name", Message: "profile name must not be empty"})
	}
	if len(p.Columns) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "columns", Message: "profile has no columns; nothing will be validated"})
	}

	seen := map[string]int{}
	needsCeilings := false
	for i, c := range p.Columns {
		path := fmt.Sprintf("columns[%d]", i)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "column name must not be empty"})
		} else if prev, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("column %q already declared at columns[%d]", name, prev),
			})
		} else {
			seen[name] = i
		}

		if len(c.Rules) == 0 && c.Check == nil {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: "column has neither rules nor a check"})
		}
		for j, r := range c.Rules {
			issues = append(issues, validateRule(fmt.Sprintf("%s.rules[%d]", path, j), r)...)
		}
		if c.Check != nil {
			ci, usesCeilings := validateCheck(path+".check", *c.Check)
			issues = append(issues, ci...)
			needsCeilings = needsCeilings || usesCeilings
		}
	}

	if needsCeilings && p.Ceilings == nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ceilings",
			Message:  "a column uses a ceiling check but the profile defines no ceilings",
		})
	}
	if p.Ceilings != nil {
		issues = append(issues, validateCeilings(*p.Ceilings)...)
	}
	return issues
}

func validateRule(path string, r RuleSpec) []Issue {
	k, err := rules.ParseKind(r.Kind)
	if err != nil {
		return []Issue{{Severity: SeverityError, Path: path, Message: err.Error()}}
	}
	switch k {
	case rules.KindExactDigitCount:
		if r.N <= 0 {
			return []Issue{{Severity: SeverityError, Path: path + ".n", Message: "exact_digit_count needs a positive n"}}
		}
	case rules.KindMinValue, rules.KindMaxValue:
		if r.Threshold == nil {
			return []Issue{{Severity: SeverityError, Path: path + ".threshold", Message: k.String() + " needs a threshold"}}
		}
	}
	return nil
}

func validateCheck(path string, c CheckSpec) ([]Issue, bool) {
	var issues []Issue
	kind := strings.ToLower(strings.TrimSpace(c.Kind))
	if _, ok := checkKinds[kind]; !ok {
		return []Issue{{Severity: SeverityError, Path: path + ".kind", Message: fmt.Sprintf("unknown check kind %q", c.Kind)}}, false
	}

	validScale := func() {
		switch c.Options.String("scale", "") {
		case "subject", "total":
		case "":
			if kind == "ceiling" {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.scale", Message: "ceiling needs scale subject or total"})
			}
		default:
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.scale", Message: "scale must be subject or total"})
		}
	}

	usesCeilings := false
	switch kind {
	case "age_range":
		lo, okLo := c.Options.Number("min")
		hi, okHi := c.Options.Number("max")
		if !okLo || !okHi {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options", Message: "age_range needs numeric min and max"})
		} else if lo > hi {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options", Message: "age_range min exceeds max"})
		}
		if (c.Options.String("birth_column", "") == "") != (c.Options.String("reference_column", "") == "") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".options",
				Message:  "age_range has only one of birth_column and reference_column; ages will not be calculated",
			})
		}
	case "ceiling":
		validScale()
		usesCeilings = true
	case "flat_ceiling":
		if _, ok := c.Options.Number("max"); !ok {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.max", Message: "flat_ceiling needs a numeric max"})
		}
	case "progression":
		if c.Options.String("baseline", "") == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.baseline", Message: "progression needs a baseline column"})
		}
		validScale()
		usesCeilings = c.Options.String("scale", "") != ""
	case "required_if":
		if c.Options.String("companion", "") == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.companion", Message: "required_if needs a companion column"})
		}
		if c.Options.Int("digits", 0) < 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options.digits", Message: "digits must not be negative"})
		}
	}
	return issues, usesCeilings
}

func validateCeilings(c CeilingSpec) []Issue {
	var issues []Issue
	switch strings.ToLower(c.Basis) {
	case "grade", "age":
	default:
		issues = append(issues, Issue{Severity: SeverityError, Path: "ceilings.basis", Message: fmt.Sprintf("basis must be grade or age, got %q", c.Basis)})
	}
	if strings.TrimSpace(c.Column) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "ceilings.column", Message: "ceilings need the column they are keyed on"})
	}
	for name, limits := range map[string][]float64{"subject": c.Subject, "total": c.Total} {
		for i := 1; i < len(limits); i++ {
			if limits[i] < limits[i-1] {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("ceilings.%s[%d]", name, i),
					Message:  "ceiling decreases with tier",
				})
			}
		}
	}
	for i, b := range c.AgeBands {
		if b.From > b.To || b.Tier < 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("ceilings.age_bands[%d]", i),
				Message:  "age band needs from <= to and a positive tier",
			})
		}
	}
	return issues
}
