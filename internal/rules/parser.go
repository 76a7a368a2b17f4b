package rules

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// DefaultDateLayouts are tried in order for text dates. Day-first forms come
// before month-first ones because the source sheets are filled in that way.
// Single-digit day and month fields also accept zero-padded input.
var DefaultDateLayouts = withTimes(
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2 January 2006",
	"2 Jan 2006",
	"2-January-2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"1/2/2006",
)

// withTimes expands each date layout with the time-of-day suffixes
// spreadsheet exports append.
func withTimes(dates ...string) []string {
	suffixes := []string{"", " 15:04", " 15:04:05", "T15:04:05", "T15:04:05Z07:00", " 3:04 PM", " 3:04:05 PM"}
	out := make([]string, 0, len(dates)*len(suffixes))
	for _, d := range dates {
		for _, sfx := range suffixes {
			out = append(out, d+sfx)
		}
	}
	return out
}

// Parser coerces cell values into numbers and dates.
type Parser struct {
	// DateLayouts overrides DefaultDateLayouts when non-empty.
	DateLayouts []string
}

func (p Parser) layouts() []string {
	if len(p.DateLayouts) > 0 {
		return p.DateLayouts
	}
	return DefaultDateLayouts
}

// Float reads v as a real number. Text is trimmed and parsed as a decimal
// literal; hexadecimal forms are refused. Dates are never numeric.
func (p Parser) Float(v table.Value) (float64, bool) {
	switch v.Kind() {
	case table.KindNumber:
		if v.IsNull() {
			return 0, false
		}
		return v.Num()
	case table.KindText:
		return parseDecimal(v.String())
	}
	return 0, false
}

func parseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	body := strings.TrimLeft(s, "+-")
	if len(body) > 1 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// Date reads v as a calendar date. Numbers are taken as spreadsheet serials.
func (p Parser) Date(v table.Value) (time.Time, bool) {
	switch v.Kind() {
	case table.KindDate:
		return v.Time()
	case table.KindNumber:
		f, _ := v.Num()
		if f <= 0 || v.IsNull() {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case table.KindText:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range p.layouts() {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Digits returns the ASCII digits of v after dropping a trailing ".0" left by
// numeric storage of identifiers such as phone numbers.
func Digits(v table.Value) string {
	if v.IsNull() {
		return ""
	}
	s := strings.TrimSpace(v.String())
	if _, ok := parseDecimal(s); ok {
		if head, tail, found := strings.Cut(s, "."); found && strings.Trim(tail, "0") == "" {
			s = head
		}
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
