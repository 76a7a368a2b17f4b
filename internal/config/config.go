// Package config defines the JSON/YAML-serializable configuration model for
// validation runs: the job a CLI invocation executes, custom validation
// profiles, and the process settings read from the environment.
//
// Example job (trimmed):
//
//	{
//	  "job":     "kadam-2025-q1",
//	  "source":  { "kind": "xlsx", "file": { "path": "in/compile.xlsx" } },
//	  "profile": { "name": "kadam" },
//	  "output":  { "dir": "downloads", "report_format": "xlsx" }
//	}
package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Job describes one validation run. It is the top-level object decoded from a
// job file.
type Job struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job" yaml:"job"`

	// Source describes where the table comes from.
	Source Source `json:"source" yaml:"source"`

	// Profile selects the rules applied to the table.
	Profile ProfileRef `json:"profile" yaml:"profile"`

	// Output controls where results land.
	Output Output `json:"output" yaml:"output"`
}

// Source identifies the input table.
type Source struct {
	// Kind selects the source implementation: "xlsx", "csv", "postgres",
	// "sqlite", "mssql" or "mysql".
	Kind string `json:"kind" yaml:"kind"`

	// File carries options for the file-backed kinds.
	File SourceFile `json:"file" yaml:"file"`

	// DB carries options for the database kinds.
	DB DBSource `json:"db" yaml:"db"`

	// Options is a free-form map interpreted by the source implementation.
	// For CSV: comma (string), trim_space, lazy_quotes and infer_numbers (bool).
	Options Options `json:"options" yaml:"options"`
}

// SourceFile holds configuration for file sources.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`

	// Sheet overrides the profile's sheet selection for workbooks.
	Sheet string `json:"sheet" yaml:"sheet"`
}

// DBSource configures a database table read.
type DBSource struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is read in full when Query is empty.
	Table string `json:"table" yaml:"table"`

	// Query, when set, is run instead of selecting the whole table.
	Query string `json:"query" yaml:"query"`
}

// ProfileRef names a built-in profile, a profile file, or carries one inline.
// Exactly one should be set.
type ProfileRef struct {
	Name   string       `json:"name" yaml:"name"`
	File   string       `json:"file" yaml:"file"`
	Inline *ProfileSpec `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// Output controls the run's artifacts.
type Output struct {
	// Dir receives the annotated workbook and the report.
	Dir string `json:"dir" yaml:"dir"`

	// ReportFormat is "xlsx" (default), "csv" or "json".
	ReportFormat string `json:"report_format" yaml:"report_format"`
}

// ProfileSpec is the serialized form of a validation profile.
type ProfileSpec struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`

	// Sheet names the worksheet to read; empty means the first sheet.
	Sheet string `json:"sheet" yaml:"sheet"`

	// DateLayouts are Go time layouts tried for text dates.
	DateLayouts []string `json:"date_layouts" yaml:"date_layouts"`

	// Columns lists rule-bearing columns in report order.
	Columns []ColumnSpec `json:"columns" yaml:"columns"`

	// Ceilings configures score ceilings referenced by "ceiling" checks.
	Ceilings *CeilingSpec `json:"ceilings,omitempty" yaml:"ceilings,omitempty"`
}

// ColumnSpec binds an ordered rule list and an optional derived check to a
// column header.
type ColumnSpec struct {
	Name  string     `json:"name" yaml:"name"`
	Rules []RuleSpec `json:"rules" yaml:"rules"`
	Check *CheckSpec `json:"check,omitempty" yaml:"check,omitempty"`
}

// RuleSpec is a primitive rule. It decodes from either a bare name
// ("not_null") or an object ({"kind": "exact_digit_count", "n": 10}).
type RuleSpec struct {
	Kind      string   `json:"kind" yaml:"kind"`
	N         int      `json:"n,omitempty" yaml:"n,omitempty"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Reason    string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type ruleSpecFields RuleSpec

// UnmarshalJSON accepts the string shorthand.
func (r *RuleSpec) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*r = RuleSpec{Kind: name}
		return nil
	}
	var f ruleSpecFields
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("rule: %w", err)
	}
	*r = RuleSpec(f)
	return nil
}

// UnmarshalYAML accepts the string shorthand.
func (r *RuleSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*r = RuleSpec{Kind: n.Value}
		return nil
	}
	var f ruleSpecFields
	if err := n.Decode(&f); err != nil {
		return fmt.Errorf("rule: %w", err)
	}
	*r = RuleSpec(f)
	return nil
}

// CheckSpec selects a derived check. Options keys by kind:
//
//	age_range:    birth_column, reference_column, min, max, calculated_reason, direct_reason
//	ceiling:      scale ("subject" or "total")
//	flat_ceiling: max
//	progression:  baseline, scale (optional ceiling applied first)
//	required_if:  companion, equals, digits, missing_reason, digits_reason
type CheckSpec struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// CeilingSpec configures grade- or age-keyed score ceilings.
type CeilingSpec struct {
	// Basis is "grade" or "age".
	Basis string `json:"basis" yaml:"basis"`

	// Column holds the grade or age the ceilings are keyed on.
	Column string `json:"column" yaml:"column"`

	// Subject and Total are limits for tiers 1..n. Total limits extend past
	// their last tier; subject limits do not.
	Subject []float64 `json:"subject" yaml:"subject"`
	Total   []float64 `json:"total" yaml:"total"`

	// AgeBands map whole ages onto tiers when Basis is "age".
	AgeBands []AgeBandSpec `json:"age_bands" yaml:"age_bands"`
}

// AgeBandSpec maps ages From..To inclusive onto Tier.
type AgeBandSpec struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
	Tier int `json:"tier" yaml:"tier"`
}

// Options is a small helper to fetch typed values from decoded JSON or YAML
// maps. It performs only minimal coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers as
// float64 and yaml.v3 as int, so both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Float returns the numeric value for key or def.
func (o Options) Float(key string, def float64) float64 {
	f, ok := o.Number(key)
	if !ok {
		return def
	}
	return f
}

// Number returns the numeric value for key and whether one was present.
func (o Options) Number(key string) (float64, bool) {
	switch n := o[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON decodes a missing or null "options" object to an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	tmp := map[string]any{}
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
