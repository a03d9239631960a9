package services

// CEColumn is the header of the derived carbon-equivalent column.
const CEColumn = "CE%"

var (
	carbonHeaders     = []string{"C%", "C [%]"}
	siliconHeaders    = []string{"Si%", "Si [%]"}
	phosphorusHeaders = []string{"P%", "P [%]"}
)

// ComputeCE adds the carbon equivalent column CE = C + Si/3 + P, rounded to two
// decimals, directly after the silicon column.
//
// When any of the three source columns is missing the dataset is returned
// unchanged. Numeric C and Si values are rounded to two decimals in place and CE
// is derived from the rounded values, so applying ComputeCE again yields the
// same dataset. Blank or non-numeric source values count as zero for the sum;
// a record that lacks one of the source keys entirely gets no CE value.
func ComputeCE(ds Dataset) Dataset {
	cCol := findColumn(ds.Columns, carbonHeaders...)
	siCol := findColumn(ds.Columns, siliconHeaders...)
	pCol := findColumn(ds.Columns, phosphorusHeaders...)
	if cCol == "" || siCol == "" || pCol == "" {
		return ds
	}

	out := ds.Clone()
	for _, row := range out.Rows {
		delete(row, CEColumn)

		c, cOK := row.Float(cCol)
		if cOK {
			c = round2(c)
			row[cCol] = c
		}
		si, siOK := row.Float(siCol)
		if siOK {
			si = round2(si)
			row[siCol] = si
		}
		p, _ := row.Float(pCol)

		if !hasKeys(row, cCol, siCol, pCol) {
			continue
		}
		row[CEColumn] = round2(c + si/3 + p)
	}

	if out.ColumnIndex(CEColumn) < 0 {
		at := out.ColumnIndex(siCol) + 1
		out.Columns = append(out.Columns[:at], append([]string{CEColumn}, out.Columns[at:]...)...)
	}
	return out
}

func hasKeys(r Record, keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; !ok {
			return false
		}
	}
	return true
}
