// Package rules implements the atomic per-cell predicates a profile assigns to
// a column. Rule kinds form a closed set; each Rule carries the parameters its
// kind needs, so a column's rule list is plain data.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// Kind enumerates the primitive rules.
type Kind uint8

const (
	KindNotNull Kind = iota + 1
	KindNumeric
	KindDate
	KindNoSpecialChars
	KindAlphabeticOnly
	KindExactDigitCount
	KindNotZero
	KindMinValue
	KindMaxValue
)

var kindNames = map[Kind]string{
	KindNotNull:         "not_null",
	KindNumeric:         "numeric",
	KindDate:            "date",
	KindNoSpecialChars:  "no_special_chars",
	KindAlphabeticOnly:  "alphabetic_only",
	KindExactDigitCount: "exact_digit_count",
	KindNotZero:         "not_zero",
	KindMinValue:        "min_value",
	KindMaxValue:        "max_value",
}

// kindAliases accepts the spellings found in older rule sheets.
var kindAliases = map[string]Kind{
	"not null":            KindNotNull,
	"required":            KindNotNull,
	"name_only_alphabets": KindAlphabeticOnly,
	"digits":              KindExactDigitCount,
	"min":                 KindMinValue,
	"max":                 KindMaxValue,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves a rule name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown rule %q", name)
}

// Rule is one primitive with its parameters.
type Rule struct {
	Kind Kind

	// N is the digit count for KindExactDigitCount.
	N int

	// Threshold bounds KindMinValue and KindMaxValue.
	Threshold float64

	// Reason replaces the default failure text when set.
	Reason string
}

func NotNull() Rule              { return Rule{Kind: KindNotNull} }
func Numeric() Rule              { return Rule{Kind: KindNumeric} }
func Date() Rule                 { return Rule{Kind: KindDate} }
func NoSpecialChars() Rule       { return Rule{Kind: KindNoSpecialChars} }
func AlphabeticOnly() Rule       { return Rule{Kind: KindAlphabeticOnly} }
func ExactDigitCount(n int) Rule { return Rule{Kind: KindExactDigitCount, N: n} }
func NotZero() Rule              { return Rule{Kind: KindNotZero} }
func MinValue(t float64) Rule    { return Rule{Kind: KindMinValue, Threshold: t} }
func MaxValue(t float64) Rule    { return Rule{Kind: KindMaxValue, Threshold: t} }

// Because returns a copy of r reporting reason on failure.
func (r Rule) Because(reason string) Rule {
	r.Reason = reason
	return r
}

func (r Rule) String() string {
	switch r.Kind {
	case KindExactDigitCount:
		return fmt.Sprintf("%s(%d)", r.Kind, r.N)
	case KindMinValue, KindMaxValue:
		return fmt.Sprintf("%s(%s)", r.Kind, table.FormatNumber(r.Threshold))
	default:
		return r.Kind.String()
	}
}

const (
	ReasonNull         = "Value is null or empty"
	ReasonNotNumeric   = "Value is not numeric"
	ReasonNotDate      = "Value is not a valid date"
	ReasonSpecialChars = "Value contains special characters"
	ReasonNotAlpha     = "Name field should contain only alphabets"
	ReasonZero         = "Value cannot be zero"
	ReasonZeroInvalid  = "Invalid value for zero check"
)

var plainLetters = regexp.MustCompile(`^[A-Za-z ]*$`)

// Check evaluates r against v. Only KindNotNull fails a null cell; every other
// kind treats an absent value as not applicable. Values a kind cannot parse
// fail with a reason rather than an error.
func (r Rule) Check(p Parser, column string, v table.Value) (bool, string) {
	if r.Kind != KindNotNull && v.IsNull() {
		return true, ""
	}

	switch r.Kind {
	case KindNotNull:
		if v.IsNull() {
			return false, r.reason(ReasonNull)
		}

	case KindNumeric:
		if _, ok := p.Float(v); !ok {
			return false, r.reason(ReasonNotNumeric)
		}

	case KindDate:
		if _, ok := p.Date(v); !ok {
			return false, r.reason(ReasonNotDate)
		}

	case KindNoSpecialChars:
		if !plainLetters.MatchString(v.String()) {
			return false, r.reason(ReasonSpecialChars)
		}

	case KindAlphabeticOnly:
		if !isAlphabetic(strings.ReplaceAll(v.String(), " ", "")) {
			return false, r.reason(ReasonNotAlpha)
		}

	case KindExactDigitCount:
		if got := len(Digits(v)); got != r.N {
			return false, r.reason(fmt.Sprintf("Value should contain exactly %d digits (found %d)", r.N, got))
		}

	case KindNotZero:
		f, ok := p.Float(v)
		if !ok {
			return false, ReasonZeroInvalid
		}
		if f == 0 {
			return false, r.reason(ReasonZero)
		}

	case KindMinValue:
		f, ok := p.Float(v)
		if !ok {
			return false, fmt.Sprintf("%s is not numeric", column)
		}
		if f < r.Threshold {
			return false, r.reason(fmt.Sprintf("%s is less than %s", column, table.FormatNumber(r.Threshold)))
		}

	case KindMaxValue:
		f, ok := p.Float(v)
		if !ok {
			return false, fmt.Sprintf("%s is not numeric", column)
		}
		if f > r.Threshold {
			return false, r.reason(fmt.Sprintf("%s is greater than %s", column, table.FormatNumber(r.Threshold)))
		}

	default:
		return false, fmt.Sprintf("unsupported rule %s", r.Kind)
	}
	return true, ""
}

func (r Rule) reason(def string) string {
	if r.Reason != "" {
		return r.Reason
	}
	return def
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}
