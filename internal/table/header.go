package table

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quoteFolds maps typographic quotes that spreadsheet tools substitute on
// typing onto their ASCII forms.
var quoteFolds = map[rune]rune{
	'‘': '\'',
	'’': '\'',
	'ʼ': '\'',
	'“': '"',
	'”': '"',
}

// CanonicalHeader returns the form of a header used for column lookups: NFKC
// (which also folds NBSP into a space), ASCII quotes, single spaces, trimmed.
// Headers keep their original spelling in Table.Columns.
func CanonicalHeader(s string) string {
	t := transform.Chain(
		norm.NFKC,
		runes.Map(func(r rune) rune {
			if f, ok := quoteFolds[r]; ok {
				return f
			}
			return r
		}),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}
