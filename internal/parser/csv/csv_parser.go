// Package csv reads delimited text into a table.Table. The first record is the
// header; every later record becomes a data row, so data row i sits on file
// line i+2 for inputs without embedded newlines.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// ErrNoHeader means the input is empty or its first record is blank.
var ErrNoHeader = errors.New("csv has no header row")

// Options configures the reader. The zero value reads comma-separated input
// verbatim.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field.
	LazyQuotes bool

	// InferNumbers stores fields that parse as decimal numbers as numeric
	// cells, the way spreadsheet imports do. Other fields stay text.
	InferNumbers bool
}

// OptionsFrom reads comma, trim_space, lazy_quotes and infer_numbers from a
// source option map. infer_numbers defaults to true.
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:        o.Rune("comma", ','),
		TrimSpace:    o.Bool("trim_space", false),
		LazyQuotes:   o.Bool("lazy_quotes", false),
		InferNumbers: o.Bool("infer_numbers", true),
	}
}

// Parser reads CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all of r into a table called name. Records wider than the header
// are truncated and shorter ones padded with nulls; a record the CSV grammar
// rejects fails the whole read with its line number.
func (p *Parser) Parse(r io.Reader, name string) (*table.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := StripHeaderBOM(append([]string(nil), h...))
	if blank(headers) {
		return nil, ErrNoHeader
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	t := table.New(name, headers)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", t.Len()+1, err)
		}
		row := make(table.Row, len(headers))
		for i := 0; i < len(row) && i < len(rec); i++ {
			row[i] = p.value(rec[i])
		}
		t.Append(row)
	}
	return t, nil
}

func (p *Parser) value(s string) table.Value {
	if p.opt.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return table.Null()
	}
	if p.opt.InferNumbers {
		if f, ok := number(s); ok {
			return table.Number(f)
		}
	}
	return table.Text(s)
}

// number accepts plain decimal notation only. Values with leading zeros such
// as ID or phone numbers stay text so their digits survive.
func number(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "xXpP_") {
		return 0, false
	}
	digits := strings.TrimLeft(t, "+-")
	if digits == "" || !strings.ContainsRune("0123456789.", rune(digits[0])) {
		return 0, false
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func blank(r []string) bool {
	for _, s := range r {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
