package services

import "strings"

// ElementRow ties a canonical element key to its fixed row in the template's
// chemistry block.
type ElementRow struct {
	Key string
	Row int
}

// m537ElementRows is the physical order of the chemistry block in the M537
// certificate template. Row 25 is spare and is never claimed.
var m537ElementRows = []ElementRow{
	{"Carbon", 14},
	{"Silicon", 15},
	{"Manganese", 16},
	{"Phosphorus", 17},
	{"Sulphur", 18},
	{"Copper", 19},
	{"Nickel", 20},
	{"Chromium", 21},
	{"Moly", 22},
	{"Magnesium", 23},
	{"CE", 24},
	{"Tin", 26},
}

// RowFor returns the template row for a chemistry line item. The canonical key
// only has to appear somewhere in the display name, ignoring case, so "Carbon %"
// and "carbon" both land on the carbon row. Keys are tried in table order.
func (l Layout) RowFor(element string) (int, bool) {
	name := strings.ToLower(strings.TrimSpace(element))
	if name == "" {
		return 0, false
	}
	for _, er := range l.ElementRows {
		if strings.Contains(name, strings.ToLower(er.Key)) {
			return er.Row, true
		}
	}
	return 0, false
}
