package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
)

// LoadFile reads a JSON or YAML profile file and builds it.
func LoadFile(path string) (*Profile, error) {
	spec, err := config.LoadProfileSpec(path)
	if err != nil {
		return nil, err
	}
	p, err := FromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// FromSpec lints spec and converts it. Lint errors are joined into the
// returned error; warnings are ignored.
func FromSpec(spec config.ProfileSpec) (*Profile, error) {
	var errs []error
	for _, iss := range config.ValidateProfileSpec(spec) {
		if iss.Severity == config.SeverityError {
			errs = append(errs, iss)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("profile %q: %w", spec.Name, errors.Join(errs...))
	}

	subject, total := derived.SubjectTiers, derived.TotalTiers
	var basis derived.Basis
	if c := spec.Ceilings; c != nil {
		if len(c.Subject) > 0 {
			subject = derived.Tiers{Limits: append([]float64(nil), c.Subject...)}
		}
		if len(c.Total) > 0 {
			total = derived.Tiers{Limits: append([]float64(nil), c.Total...), CapBeyond: true}
		}
		basis = basisFromSpec(*c)
	}
	scales := map[string]derived.Ceiling{
		"subject": {Tiers: subject, Name: "subject"},
		"total":   {Tiers: total, Name: "total"},
	}

	cols := make([]Column, 0, len(spec.Columns))
	for _, cs := range spec.Columns {
		c := Column{Name: cs.Name}
		for _, rs := range cs.Rules {
			r, err := ruleFromSpec(rs)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cs.Name, err)
			}
			c.Rules = append(c.Rules, r)
		}
		if cs.Check != nil {
			c.Check = checkFromSpec(*cs.Check, scales)
		}
		cols = append(cols, c)
	}

	return New(Config{
		Name:        spec.Name,
		Label:       spec.Label,
		Sheet:       spec.Sheet,
		DateLayouts: spec.DateLayouts,
		Basis:       basis,
		Columns:     cols,
	})
}

func ruleFromSpec(rs config.RuleSpec) (rules.Rule, error) {
	k, err := rules.ParseKind(rs.Kind)
	if err != nil {
		return rules.Rule{}, err
	}
	r := rules.Rule{Kind: k, N: rs.N, Reason: rs.Reason}
	if rs.Threshold != nil {
		r.Threshold = *rs.Threshold
	}
	return r, nil
}

func checkFromSpec(cs config.CheckSpec, scales map[string]derived.Ceiling) derived.Check {
	o := cs.Options
	switch strings.ToLower(strings.TrimSpace(cs.Kind)) {
	case "age_range":
		return derived.AgeRange{
			BirthColumn:      o.String("birth_column", ""),
			ReferenceColumn:  o.String("reference_column", ""),
			Min:              o.Float("min", 0),
			Max:              o.Float("max", 0),
			CalculatedReason: o.String("calculated_reason", ""),
			DirectReason:     o.String("direct_reason", ""),
		}
	case "ceiling":
		return scales[o.String("scale", "")]
	case "flat_ceiling":
		return derived.FlatCeiling{Max: o.Float("max", 0)}
	case "progression":
		p := derived.Progression{Baseline: o.String("baseline", "")}
		if c, ok := scales[o.String("scale", "")]; ok {
			p.Ceiling = &c
		}
		return p
	case "required_if":
		return derived.RequiredIf{
			Companion:     o.String("companion", ""),
			Equals:        o.String("equals", ""),
			Digits:        o.Int("digits", 0),
			MissingReason: o.String("missing_reason", ""),
			DigitsReason:  o.String("digits_reason", ""),
		}
	}
	return nil
}

func basisFromSpec(c config.CeilingSpec) derived.Basis {
	if strings.EqualFold(c.Basis, "age") {
		bands := make([]derived.AgeBand, 0, len(c.AgeBands))
		for _, b := range c.AgeBands {
			bands = append(bands, derived.AgeBand{From: b.From, To: b.To, Tier: b.Tier})
		}
		return derived.AgeBasis{Column: c.Column, Bands: bands}
	}
	return derived.GradeBasis{Column: c.Column}
}
