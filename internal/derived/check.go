package derived

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// Context is what a derived check sees: the cell under test, the rest of its
// row and the ceiling level resolved for that row.
type Context struct {
	Parser rules.Parser
	Column string
	Value  table.Value
	Row    Lookup
	Level  Level
}

func (c Context) lookup(column string) (table.Value, bool) {
	if c.Row == nil {
		return table.Value{}, false
	}
	return c.Row(column)
}

// Check is a cross-column rule. The set is closed: AgeRange, Ceiling,
// FlatCeiling, Progression and RequiredIf.
type Check interface {
	evaluate(ctx Context) (bool, string)
	String() string
}

// Evaluate runs c. A nil check always passes.
func Evaluate(c Check, ctx Context) (bool, string) {
	if c == nil {
		return true, ""
	}
	return c.evaluate(ctx)
}

// AgeAtAdmission returns whole elapsed days between birth and ref divided by
// 365.25.
func AgeAtAdmission(birth, ref time.Time) float64 {
	days := math.Floor(ref.Sub(birth).Hours() / 24)
	return days / 365.25
}

// AgeRange bounds an age. When both date columns parse, the age is computed
// from them; otherwise the cell's own number is bounded instead.
type AgeRange struct {
	BirthColumn     string
	ReferenceColumn string
	Min, Max        float64

	// CalculatedReason and DirectReason override the default messages.
	CalculatedReason string
	DirectReason     string
}

func (a AgeRange) String() string {
	return fmt.Sprintf("age_range(%s..%s)", table.FormatNumber(a.Min), table.FormatNumber(a.Max))
}

func (a AgeRange) evaluate(ctx Context) (bool, string) {
	if age, ok := a.calculated(ctx); ok {
		if age < a.Min || age > a.Max {
			return false, orDefault(a.CalculatedReason, fmt.Sprintf("Calculated age is less than %s years or greater than %s",
				table.FormatNumber(a.Min), table.FormatNumber(a.Max)))
		}
		return true, ""
	}

	f, ok := ctx.Parser.Float(ctx.Value)
	if !ok {
		return true, ""
	}
	if f < a.Min || f > a.Max {
		return false, orDefault(a.DirectReason, fmt.Sprintf("Age is less than %s or greater than %s",
			table.FormatNumber(a.Min), table.FormatNumber(a.Max)))
	}
	return true, ""
}

func (a AgeRange) calculated(ctx Context) (float64, bool) {
	if a.BirthColumn == "" || a.ReferenceColumn == "" {
		return 0, false
	}
	bv, ok := ctx.lookup(a.BirthColumn)
	if !ok {
		return 0, false
	}
	rv, ok := ctx.lookup(a.ReferenceColumn)
	if !ok {
		return 0, false
	}
	birth, ok := ctx.Parser.Date(bv)
	if !ok {
		return 0, false
	}
	ref, ok := ctx.Parser.Date(rv)
	if !ok {
		return 0, false
	}
	return AgeAtAdmission(birth, ref), true
}

// Ceiling caps a score at the row's tier in Tiers.
type Ceiling struct {
	Tiers Tiers
	Name  string
}

func (c Ceiling) String() string {
	if c.Name != "" {
		return "ceiling(" + c.Name + ")"
	}
	return "ceiling"
}

func (c Ceiling) evaluate(ctx Context) (bool, string) {
	limit, ok := c.Tiers.At(ctx.Level)
	if !ok {
		return true, ""
	}
	return atMost(ctx, limit)
}

// FlatCeiling caps a score regardless of grade or age.
type FlatCeiling struct {
	Max float64
}

func (f FlatCeiling) String() string {
	return "flat_ceiling(" + table.FormatNumber(f.Max) + ")"
}

func (f FlatCeiling) evaluate(ctx Context) (bool, string) {
	return atMost(ctx, f.Max)
}

func atMost(ctx Context, limit float64) (bool, string) {
	v, ok := ctx.Parser.Float(ctx.Value)
	if !ok {
		return true, ""
	}
	if v > limit {
		return false, fmt.Sprintf("Value exceeds max allowed (%s)", table.FormatNumber(limit))
	}
	return true, ""
}

// Progression requires the cell not to fall below a baseline column. When
// Ceiling is set the cell is capped first.
type Progression struct {
	Baseline string
	Ceiling  *Ceiling
}

func (p Progression) String() string {
	return "progression(" + p.Baseline + ")"
}

func (p Progression) evaluate(ctx Context) (bool, string) {
	if p.Ceiling != nil {
		if ok, reason := p.Ceiling.evaluate(ctx); !ok {
			return false, reason
		}
	}
	end, ok := ctx.Parser.Float(ctx.Value)
	if !ok {
		return true, ""
	}
	bv, ok := ctx.lookup(p.Baseline)
	if !ok {
		return true, ""
	}
	base, ok := ctx.Parser.Float(bv)
	if !ok {
		return true, ""
	}
	if end < base {
		return false, fmt.Sprintf("%s (%s) is less than %s (%s)",
			ctx.Column, table.FormatNumber(end), p.Baseline, table.FormatNumber(base))
	}
	return true, ""
}

// RequiredIf makes a cell mandatory once a companion column is filled in, or
// holds Equals when that is set (compared case-insensitively). Digits, when
// positive, also fixes the digit count of a required value.
type RequiredIf struct {
	Companion string
	Equals    string
	Digits    int

	MissingReason string
	DigitsReason  string
}

func (r RequiredIf) String() string {
	if r.Equals != "" {
		return fmt.Sprintf("required_if(%s=%s)", r.Companion, r.Equals)
	}
	return "required_if(" + r.Companion + ")"
}

func (r RequiredIf) evaluate(ctx Context) (bool, string) {
	cv, ok := ctx.lookup(r.Companion)
	if !ok || cv.IsNull() {
		return true, ""
	}
	if r.Equals != "" && !strings.EqualFold(strings.TrimSpace(cv.String()), r.Equals) {
		return true, ""
	}
	if ctx.Value.IsNull() {
		return false, orDefault(r.MissingReason, fmt.Sprintf("%s required when %s is provided", ctx.Column, r.Companion))
	}
	if r.Digits > 0 && len(rules.Digits(ctx.Value)) != r.Digits {
		return false, orDefault(r.DigitsReason, fmt.Sprintf("%s should be exactly %d digits", ctx.Column, r.Digits))
	}
	return true, ""
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
