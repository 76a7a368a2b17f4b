package derived

import (
	"math"

	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

type levelMode uint8

const (
	levelNone levelMode = iota
	levelTier
	levelOpen
)

// Level is the ceiling tier a row falls into. The zero Level means no ceiling
// applies to the row at all.
type Level struct {
	mode levelMode
	n    int
}

// Tier returns the 1-based tier n.
func Tier(n int) Level {
	if n < 1 {
		return Level{}
	}
	return Level{mode: levelTier, n: n}
}

// Open returns the most permissive tier.
func Open() Level { return Level{mode: levelOpen} }

// Unbounded reports whether no ceiling applies.
func (l Level) Unbounded() bool { return l.mode == levelNone }

// Tiers maps ceiling levels 1..len(Limits) to a maximum score.
type Tiers struct {
	Limits []float64

	// CapBeyond makes levels past the table reuse the last limit. Without it
	// such levels have no ceiling.
	CapBeyond bool
}

var (
	// SubjectTiers are per-subject score ceilings for grades 1 to 4.
	SubjectTiers = Tiers{Limits: []float64{10, 20, 30, 40}}

	// TotalTiers are total score ceilings; grade 5 and above stay at 160.
	TotalTiers = Tiers{Limits: []float64{40, 80, 120, 160, 160}, CapBeyond: true}
)

// Ceiling returns the limit for a 1-based level.
func (t Tiers) Ceiling(level int) (float64, bool) {
	switch {
	case level < 1 || len(t.Limits) == 0:
		return 0, false
	case level <= len(t.Limits):
		return t.Limits[level-1], true
	case t.CapBeyond:
		return t.Limits[len(t.Limits)-1], true
	}
	return 0, false
}

// At resolves l against the table.
func (t Tiers) At(l Level) (float64, bool) {
	switch l.mode {
	case levelTier:
		return t.Ceiling(l.n)
	case levelOpen:
		return t.Ceiling(math.MaxInt)
	}
	return 0, false
}

// AgeBand maps whole ages From..To (inclusive) onto a ceiling tier.
type AgeBand struct {
	From, To int
	Tier     int
}

// DefaultAgeBands send ages 6, 7 and 8 to tiers 1 to 3 and 9..14 to tier 4.
var DefaultAgeBands = []AgeBand{
	{From: 6, To: 6, Tier: 1},
	{From: 7, To: 7, Tier: 2},
	{From: 8, To: 8, Tier: 3},
	{From: 9, To: 14, Tier: 4},
}

// Basis decides which tier a row is scored against.
type Basis interface {
	Level(p rules.Parser, row Lookup) Level
}

// GradeBasis keys ceilings on a grade column. A sheet without the column is
// treated as unrestricted.
type GradeBasis struct {
	Column string
}

func (b GradeBasis) Level(_ rules.Parser, row Lookup) Level {
	v, ok := row(b.Column)
	if !ok {
		return Open()
	}
	return ResolveGrade(v).Tier()
}

// AgeBasis keys ceilings on a numeric age column. Ages outside every band,
// and ages that are not numbers, carry no ceiling. A numeric cell is
// truncated to whole years; text must spell a whole number, so "6.9" typed
// as text carries no ceiling.
type AgeBasis struct {
	Column string
	Bands  []AgeBand
}

func (b AgeBasis) Level(p rules.Parser, row Lookup) Level {
	v, ok := row(b.Column)
	if !ok || v.IsNull() {
		return Level{}
	}
	f, ok := p.Float(v)
	if !ok || math.IsInf(f, 0) {
		return Level{}
	}
	if v.Kind() == table.KindText && f != math.Trunc(f) {
		return Level{}
	}
	age := int(math.Trunc(f))
	bands := b.Bands
	if len(bands) == 0 {
		bands = DefaultAgeBands
	}
	for _, band := range bands {
		if age >= band.From && age <= band.To {
			return Tier(band.Tier)
		}
	}
	return Level{}
}

// Lookup fetches another column of the row being evaluated.
type Lookup func(column string) (table.Value, bool)
