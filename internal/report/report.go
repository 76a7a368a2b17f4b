// Package report turns an engine result into the fixed-schema error report:
// one row per failing cell with columns Row, Column, Cell, Value and Error.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/Karanpr-18/Excel-cleaning/internal/engine"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// Header is the report schema. It is emitted even when there are no rows.
var Header = []string{"Row", "Column", "Cell", "Value", "Error"}

// Entry is one report row.
type Entry struct {
	Row    int
	Column string
	Cell   string
	Value  table.Value
	Error  string
}

// Report is the ordered list of entries.
type Report struct {
	Entries []Entry
}

// Build copies verdicts into a report, keeping their order.
func Build(verdicts []engine.Verdict) *Report {
	r := &Report{Entries: make([]Entry, 0, len(verdicts))}
	for _, v := range verdicts {
		r.Entries = append(r.Entries, Entry{
			Row:    v.Row,
			Column: v.Column,
			Cell:   v.Cell,
			Value:  v.Value,
			Error:  v.Reason,
		})
	}
	return r
}

// Len returns the number of entries.
func (r *Report) Len() int { return len(r.Entries) }

// Records renders the header and every entry as strings.
func (r *Report) Records() [][]string {
	out := make([][]string, 0, len(r.Entries)+1)
	out = append(out, append([]string(nil), Header...))
	for _, e := range r.Entries {
		out = append(out, []string{strconv.Itoa(e.Row), e.Column, e.Cell, e.Value.String(), e.Error})
	}
	return out
}

// Fingerprint hashes the CSV rendering. Two runs over the same table with the
// same profile produce the same fingerprint.
func (r *Report) Fingerprint() uint64 {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, r)
	return xxh3.Hash(buf.Bytes())
}

// ColumnCount is the number of failures in one column.
type ColumnCount struct {
	Column string
	Count  int
}

// ByColumn counts failures per column, most frequent first (ties by name).
func (r *Report) ByColumn() []ColumnCount {
	counts := map[string]int{}
	for _, e := range r.Entries {
		counts[e.Column]++
	}
	out := make([]ColumnCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ColumnCount{Column: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// WriteCSV writes the report as CSV with a header row.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Records()); err != nil {
		return err
	}
	return cw.Error()
}

type jsonEntry struct {
	Row    int    `json:"Row"`
	Column string `json:"Column"`
	Cell   string `json:"Cell"`
	Value  any    `json:"Value"`
	Error  string `json:"Error"`
}

// WriteJSON writes the report as a JSON array of objects keyed by the header
// names. An empty report is written as [].
func WriteJSON(w io.Writer, r *Report) error {
	out := make([]jsonEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, jsonEntry{Row: e.Row, Column: e.Column, Cell: e.Cell, Value: e.Value.Any(), Error: e.Error})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
