package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

/*
TestCheck_Primitives walks each rule kind through passing, failing and null
inputs. Only not_null is expected to fail on a null cell.
*/
func TestCheck_Primitives(t *testing.T) {
	var p Parser
	tests := []struct {
		name   string
		rule   Rule
		value  table.Value
		wantOK bool
		reason string
	}{
		{"not_null/blank", NotNull(), table.Text("   "), false, ReasonNull},
		{"not_null/null", NotNull(), table.Null(), false, ReasonNull},
		{"not_null/text", NotNull(), table.Text("Asha"), true, ""},
		{"not_null/zero", NotNull(), table.Number(0), true, ""},

		{"numeric/number", Numeric(), table.Number(12.5), true, ""},
		{"numeric/text", Numeric(), table.Text(" 42 "), true, ""},
		{"numeric/exp", Numeric(), table.Text("1e3"), true, ""},
		{"numeric/word", Numeric(), table.Text("twelve"), false, ReasonNotNumeric},
		{"numeric/hex", Numeric(), table.Text("0x1F"), false, ReasonNotNumeric},
		{"numeric/date", Numeric(), table.Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)), false, ReasonNotNumeric},
		{"numeric/null", Numeric(), table.Null(), true, ""},

		{"date/iso", Date(), table.Text("2015-03-05"), true, ""},
		{"date/dayfirst", Date(), table.Text("25/12/2014"), true, ""},
		{"date/serial", Date(), table.Number(42005), true, ""},
		{"date/garbage", Date(), table.Text("soon"), false, ReasonNotDate},

		{"special/plain", NoSpecialChars(), table.Text("Ram Kumar"), true, ""},
		{"special/digit", NoSpecialChars(), table.Text("Ram2"), false, ReasonSpecialChars},
		{"special/punct", NoSpecialChars(), table.Text("Ram-Kumar"), false, ReasonSpecialChars},

		{"alpha/spaces", AlphabeticOnly(), table.Text("Sita Devi"), true, ""},
		{"alpha/unicode", AlphabeticOnly(), table.Text("सीता"), false, ReasonNotAlpha},
		{"alpha/digit", AlphabeticOnly(), table.Text("Sita1"), false, ReasonNotAlpha},
		{"alpha/number", AlphabeticOnly(), table.Number(7), false, ReasonNotAlpha},

		{"digits/exact", ExactDigitCount(10), table.Text("98765 43210"), true, ""},
		{"digits/float", ExactDigitCount(10), table.Number(9876543210), true, ""},
		{"digits/dotzero", ExactDigitCount(10), table.Text("9876543210.0"), true, ""},
		{"digits/short", ExactDigitCount(10), table.Text("12345"), false, "exactly 10 digits"},

		{"notzero/zero", NotZero(), table.Number(0), false, ReasonZero},
		{"notzero/text", NotZero(), table.Text("abc"), false, ReasonZeroInvalid},
		{"notzero/ok", NotZero(), table.Text("3"), true, ""},

		{"min/below", MinValue(7), table.Number(6), false, "Age is less than 7"},
		{"min/equal", MinValue(7), table.Number(7), true, ""},
		{"min/text", MinValue(7), table.Text("seven"), false, "Age is not numeric"},
		{"max/above", MaxValue(14), table.Text("15"), false, "Age is greater than 14"},
		{"max/null", MaxValue(14), table.Null(), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.rule.Check(p, "Age", tt.value)
			if ok != tt.wantOK {
				t.Fatalf("Check(%s, %v) ok=%v, want %v (reason %q)", tt.rule, tt.value, ok, tt.wantOK, reason)
			}
			if !strings.Contains(reason, tt.reason) {
				t.Fatalf("reason = %q, want it to contain %q", reason, tt.reason)
			}
			if ok && reason != "" {
				t.Fatalf("passing check returned reason %q", reason)
			}
		})
	}
}

/*
TestCheck_ReasonOverride verifies that Because replaces the default failure
text while leaving passing checks alone.
*/
func TestCheck_ReasonOverride(t *testing.T) {
	r := ExactDigitCount(10).Because("Phone No. should be exactly 10 digits")
	if ok, reason := r.Check(Parser{}, "Phone No.", table.Text("123")); ok || reason != "Phone No. should be exactly 10 digits" {
		t.Fatalf("got (%v, %q)", ok, reason)
	}
	if ok, reason := r.Check(Parser{}, "Phone No.", table.Text("1234567890")); !ok || reason != "" {
		t.Fatalf("got (%v, %q)", ok, reason)
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"not_null":            KindNotNull,
		" Numeric ":           KindNumeric,
		"name_only_alphabets": KindAlphabeticOnly,
		"exact_digit_count":   KindExactDigitCount,
		"MAX":                 KindMaxValue,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseKind("regex"); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestParser_DateLayoutsOverride(t *testing.T) {
	us := Parser{DateLayouts: []string{"01/02/2006"}}
	got, ok := us.Date(table.Text("03/05/2015"))
	if !ok || got.Month() != time.March || got.Day() != 5 {
		t.Fatalf("Date = %v, %v; want 2015-03-05", got, ok)
	}

	got, ok = Parser{}.Date(table.Text("03/05/2015"))
	if !ok || got.Month() != time.May || got.Day() != 3 {
		t.Fatalf("default Date = %v, %v; want 2015-05-03", got, ok)
	}
}

/*
TestParser_DateForms covers the text date forms seen in filled-in sheets:
unpadded fields, other separators, month names and a trailing time. Every
ambiguous form must read day first.
*/
func TestParser_DateForms(t *testing.T) {
	march5 := time.Date(2012, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []string{
		"5-3-2012",
		"05-03-2012",
		"2012/03/05",
		"2012-3-5",
		"2012-03-05",
		"5.3.2012",
		"5/3/2012",
		"5/3/12",
		"05/03/2012 10:30",
		"05/03/2012 10:30:15",
		"2012-03-05T10:30:00",
		"5 March 2012",
		"5 Mar 2012",
		"05-Mar-2012",
		"March 5, 2012",
		"Mar 5 2012",
	}
	var p Parser
	for _, in := range tests {
		got, ok := p.Date(table.Text(in))
		if !ok {
			t.Errorf("Date(%q) failed", in)
			continue
		}
		if y, m, d := got.Date(); y != march5.Year() || m != march5.Month() || d != march5.Day() {
			t.Errorf("Date(%q) = %v, want 2012-03-05", in, got)
		}
		if ok, reason := Date().Check(p, "DOB", table.Text(in)); !ok {
			t.Errorf("date rule rejected %q: %s", in, reason)
		}
	}

	for _, in := range []string{"32/01/2012", "5-13-2012x", "2012", "12345", "yesterday"} {
		if _, ok := p.Date(table.Text(in)); ok {
			t.Errorf("Date(%q) accepted", in)
		}
	}

	// Month-first is only a fallback for dates that cannot be day-first.
	got, ok := p.Date(table.Text("12/25/2014"))
	if !ok || got.Month() != time.December || got.Day() != 25 {
		t.Errorf("Date(12/25/2014) = %v, %v", got, ok)
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   table.Value
		want string
	}{
		{table.Text("1234 5678 9012"), "123456789012"},
		{table.Text("123456789012.0"), "123456789012"},
		{table.Number(123456789012), "123456789012"},
		{table.Text("+91-98765-43210"), "919876543210"},
		{table.Null(), ""},
	}
	for _, tt := range tests {
		if got := Digits(tt.in); got != tt.want {
			t.Errorf("Digits(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
