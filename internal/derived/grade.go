// Package derived holds the cross-column checks: age computed from two date
// columns, grade- or age-conditioned score ceilings, baseline/endline
// progression and conditional requiredness.
package derived

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// GradeForm records how a grade was written in the sheet.
type GradeForm uint8

const (
	GradeUnspecified GradeForm = iota
	GradeOrdinal
	GradeNumeric
)

// Grade is a resolved "current grade" cell.
type Grade struct {
	Form  GradeForm
	Level int
}

func (g Grade) String() string {
	switch g.Form {
	case GradeOrdinal:
		return fmt.Sprintf("ordinal(%d)", g.Level)
	case GradeNumeric:
		return fmt.Sprintf("numeric(%d)", g.Level)
	default:
		return "unspecified"
	}
}

var ordinalSuffixes = []string{"st", "nd", "rd", "th"}

// ResolveGrade reads forms like "3rd", "3", 3.0 or blank. Anything that does
// not name a positive whole grade is Unspecified.
func ResolveGrade(v table.Value) Grade {
	if v.IsNull() {
		return Grade{}
	}
	if f, ok := v.Num(); ok {
		if f >= 1 && f == math.Trunc(f) && f <= math.MaxInt32 {
			return Grade{Form: GradeNumeric, Level: int(f)}
		}
		return Grade{}
	}
	if v.Kind() != table.KindText {
		return Grade{}
	}

	s := strings.ToLower(strings.TrimSpace(v.String()))
	form := GradeNumeric
	for _, suf := range ordinalSuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			form = GradeOrdinal
			break
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return Grade{}
	}
	return Grade{Form: form, Level: n}
}

// Tier converts the grade into a ceiling lookup level. Unspecified grades
// look up the most permissive tier.
func (g Grade) Tier() Level {
	if g.Form == GradeUnspecified {
		return Open()
	}
	return Tier(g.Level)
}
