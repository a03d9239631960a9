package services

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Record is one row of spectrometer output keyed by column header. Records are
// sparse: a machine that does not report an element simply omits the key.
type Record map[string]any

// Dataset is an ordered set of records together with the column order they were
// read in. Column order matters for display and for CE% placement.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"data"`
}

// Clone returns a copy whose column slice and row maps can be modified without
// touching the receiver.
func (ds Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([]Record, len(ds.Rows)),
	}
	for i, r := range ds.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// ColumnIndex returns the position of name in the column list, or -1.
func (ds Dataset) ColumnIndex(name string) int {
	for i, c := range ds.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// findColumn returns the first column whose trimmed, upper-cased header equals
// one of the candidates.
func findColumn(columns []string, candidates ...string) string {
	for _, col := range columns {
		norm := strings.ToUpper(strings.TrimSpace(col))
		for _, c := range candidates {
			if norm == strings.ToUpper(c) {
				return col
			}
		}
	}
	return ""
}

// Float returns the numeric value of a field. Blank, missing and non-numeric
// values report ok=false.
func (r Record) Float(key string) (float64, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	return toFloat(v)
}

// String renders a field for display; missing fields are "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func toFloat(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	if _, ok := v.(bool); ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
