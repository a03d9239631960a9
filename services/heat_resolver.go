package services

import (
	"regexp"
	"strings"
)

// SerialColumn is the running-number column many spectrometer exports carry.
const SerialColumn = "S.No"

// ResolveHeats picks the source record for each heat slot of the certificate.
//
// Slot 1 is always the first record of heat1. Slot 2 is the second record of
// heat2 when both slots name the same heat (two samples cast from one heat),
// otherwise the first record of heat2. A slot without enough matching records
// resolves to nil and is rendered blank.
func ResolveHeats(ds Dataset, heatColumn, heat1, heat2 string) (Record, Record) {
	if heatColumn == "" {
		return nil, nil
	}
	row1 := nthMatch(ds, heatColumn, heat1, 0)

	offset := 0
	if SameHeat(heat1, heat2) {
		offset = 1
	}
	row2 := nthMatch(ds, heatColumn, heat2, offset)
	return row1, row2
}

// SameHeat compares heat numbers the way selection and lookup both do.
func SameHeat(a, b string) bool {
	return normalizeHeat(a) == normalizeHeat(b)
}

func normalizeHeat(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func nthMatch(ds Dataset, heatColumn, heat string, n int) Record {
	want := normalizeHeat(heat)
	if want == "" {
		return nil
	}
	seen := 0
	for _, row := range ds.Rows {
		if normalizeHeat(row.String(heatColumn)) != want {
			continue
		}
		if seen == n {
			return row
		}
		seen++
	}
	return nil
}

// FindHeatColumn locates the heat-number column. Exports label it anything from
// "Heat No" to "HEAT NO." so a column mentioning both words wins, then any column
// mentioning "heat". Returns "" when the export has none.
func FindHeatColumn(columns []string) string {
	for _, c := range columns {
		l := strings.ToLower(c)
		if strings.Contains(l, "heat") && strings.Contains(l, "no") {
			return c
		}
	}
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), "heat") {
			return c
		}
	}
	return ""
}

// FindSampleColumn locates the sample identifier column, or "".
func FindSampleColumn(columns []string) string {
	for _, c := range columns {
		l := strings.ToLower(c)
		if strings.Contains(l, "sample") && strings.Contains(l, "id") {
			return c
		}
	}
	return ""
}

// DistinctValues lists the non-blank values of column in first-seen order.
func DistinctValues(ds Dataset, column string) []string {
	if column == "" {
		return []string{}
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, row := range ds.Rows {
		v := row.String(column)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// DistinctHeats lists the heats present in the dataset.
func DistinctHeats(ds Dataset, heatColumn string) []string {
	return DistinctValues(ds, heatColumn)
}

// FilterBySample narrows the dataset to one sample id. An empty id, or a dataset
// without a sample column, returns the dataset as is.
func FilterBySample(ds Dataset, sampleColumn, sampleID string) Dataset {
	sampleID = strings.TrimSpace(sampleID)
	if sampleColumn == "" || sampleID == "" {
		return ds
	}
	out := Dataset{Columns: ds.Columns, Rows: []Record{}}
	for _, row := range ds.Rows {
		if row.String(sampleColumn) == sampleID {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

var heatRepeatSuffix = regexp.MustCompile(`-\d+$`)

// CleanHeatSuffix strips the trailing "-<n>" repeat counter some spectrometers
// append to heat numbers, so "42A26-2T-1" and "42A26-2T-2" group together.
func CleanHeatSuffix(ds Dataset, heatColumn string) Dataset {
	if heatColumn == "" {
		return ds
	}
	out := ds.Clone()
	for _, row := range out.Rows {
		if _, ok := row[heatColumn]; !ok {
			continue
		}
		row[heatColumn] = heatRepeatSuffix.ReplaceAllString(row.String(heatColumn), "")
	}
	return out
}

// KeepPerGroup keeps at most n records per value of column, preserving order,
// and renumbers the serial column.
func KeepPerGroup(ds Dataset, column string, n int) Dataset {
	if column == "" || n <= 0 {
		return ds
	}
	counts := make(map[string]int)
	out := Dataset{Columns: ds.Columns, Rows: []Record{}}
	for _, row := range ds.Rows {
		key := row.String(column)
		if counts[key] >= n {
			continue
		}
		counts[key]++
		out.Rows = append(out.Rows, row)
	}
	return Renumber(out)
}

// Renumber rewrites the serial column as 1..n when the dataset has one.
func Renumber(ds Dataset) Dataset {
	if ds.ColumnIndex(SerialColumn) < 0 {
		return ds
	}
	out := ds.Clone()
	for i, row := range out.Rows {
		row[SerialColumn] = i + 1
	}
	return out
}

var gradeAliases = []string{
	"Grade", "Grade No", "Cast Grade", "Grade / Spec", "Reference", "Ref / Grade",
	"Material Grade", "Spec / Grade", "Material", "Spec", "Standard",
}

// DetectGrade guesses the material grade recorded against a sample. Exact alias
// headers are preferred over headers that merely contain an alias.
func DetectGrade(rec Record, columns []string) string {
	if rec == nil {
		return ""
	}
	for _, alias := range gradeAliases {
		for _, c := range columns {
			if strings.EqualFold(strings.TrimSpace(c), alias) {
				if v := rec.String(c); v != "" {
					return v
				}
			}
		}
	}
	for _, c := range columns {
		up := strings.ToUpper(c)
		for _, alias := range gradeAliases {
			if strings.Contains(up, strings.ToUpper(alias)) {
				if v := rec.String(c); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
