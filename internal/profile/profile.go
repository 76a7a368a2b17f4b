// Package profile bundles the rules applied to one kind of survey sheet: the
// ordered column rule table, derived checks, ceiling basis, date layouts and
// sheet selection. Profiles are immutable once built and safe to share.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// ErrUnknownProfile is returned by Lookup for names with no profile.
var ErrUnknownProfile = errors.New("unknown profile")

// Column is one entry of the rule table. Rules run in order and stop at the
// first failure; Check runs only when every rule passed.
type Column struct {
	Name  string
	Rules []rules.Rule
	Check derived.Check
}

// Config is the input to New.
type Config struct {
	Name string

	// Label is the short form used in output file names.
	Label string

	// Sheet names the worksheet to validate. Empty selects the first sheet.
	Sheet string

	DateLayouts []string

	// Basis resolves each row's ceiling tier. Nil leaves every row unbounded.
	Basis derived.Basis

	Columns []Column
}

// Profile is an immutable validation profile.
type Profile struct {
	name    string
	label   string
	sheet   string
	parser  rules.Parser
	basis   derived.Basis
	columns []Column
}

// New validates c and returns a Profile that owns copies of its slices.
func New(c Config) (*Profile, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, errors.New("profile: name must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	cols := make([]Column, 0, len(c.Columns))
	for i, col := range c.Columns {
		key := table.CanonicalHeader(col.Name)
		if key == "" {
			return nil, fmt.Errorf("profile %s: column %d has no name", c.Name, i)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("profile %s: column %q declared twice", c.Name, col.Name)
		}
		seen[key] = struct{}{}
		col.Rules = append([]rules.Rule(nil), col.Rules...)
		cols = append(cols, col)
	}

	label := c.Label
	if label == "" {
		label = c.Name
	}
	return &Profile{
		name:    c.Name,
		label:   label,
		sheet:   c.Sheet,
		parser:  rules.Parser{DateLayouts: append([]string(nil), c.DateLayouts...)},
		basis:   c.Basis,
		columns: cols,
	}, nil
}

func mustNew(c Config) *Profile {
	p, err := New(c)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Profile) Name() string          { return p.name }
func (p *Profile) Label() string         { return p.label }
func (p *Profile) Sheet() string         { return p.sheet }
func (p *Profile) Parser() rules.Parser  { return p.parser }
func (p *Profile) Basis() derived.Basis  { return p.basis }
func (p *Profile) NumColumns() int       { return len(p.columns) }
func (p *Profile) ColumnAt(i int) Column { return p.columns[i] }

// Columns returns the rule table in declaration order.
func (p *Profile) Columns() []Column {
	return append([]Column(nil), p.columns...)
}

// Column finds a rule table entry by header.
func (p *Profile) Column(name string) (Column, bool) {
	key := table.CanonicalHeader(name)
	for _, c := range p.columns {
		if table.CanonicalHeader(c.Name) == key {
			return c, true
		}
	}
	return Column{}, false
}
