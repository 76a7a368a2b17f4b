package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
)

var builtins = map[string]*Profile{}

// aliases map the selector values used by the upload form and older scripts.
var aliases = map[string]string{
	"basic":       "kadam",
	"conditional": "kadam_cond",
	"kadamcond":   "kadam_cond",
	"plus":        "kadam_plus",
	"kadam+":      "kadam_plus",
	"women":       "women_emp",
}

func init() {
	for _, p := range []*Profile{kadam(), kadamCond(), kadamPlus(), womenEmp()} {
		builtins[p.Name()] = p
	}
}

// Lookup returns the built-in profile called name (case-insensitive, aliases
// accepted).
func Lookup(name string) (*Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if p, ok := builtins[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(Names(), ", "))
}

// Names lists the built-in profiles in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve turns a job's profile reference into a Profile.
func Resolve(ref config.ProfileRef) (*Profile, error) {
	switch {
	case ref.Inline != nil:
		return FromSpec(*ref.Inline)
	case ref.File != "":
		return LoadFile(ref.File)
	default:
		return Lookup(ref.Name)
	}
}
