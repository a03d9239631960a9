package services

import (
	"fmt"
	"sort"
)

// Cell is a 1-based (row, column) coordinate.
type Cell struct {
	Row int
	Col int
}

// Layout is the fixed row/column contract of one certificate template family.
// The writer never discovers structure from the workbook; it trusts the layout.
type Layout struct {
	Name string

	// Columns is the width of the certificate. Writes beyond it are ignored and
	// everything to the right of it is scratch space.
	Columns      int
	ColumnWidths []float64

	LabelCol int
	SpecCol  int
	Heat1Col int
	Heat2Col int

	InvoiceCell     Cell
	QuantityCell    Cell
	DateCell        Cell
	PartDetailsCell Cell
	HeatHeaderRow   int

	ChemFirstRow int
	ChemLastRow  int
	ElementRows  []ElementRow

	MechFirstRow int
	MechRows     int

	ConclusionRow int
	PrintRows     int

	// ScratchRows and ScratchLastCol bound the area right of the certificate
	// that is wiped on every generation.
	ScratchRows    int
	ScratchLastCol int

	LogoCell string
}

// MechLastRow is the last row of the mechanical block.
func (l Layout) MechLastRow() int {
	return l.MechFirstRow + l.MechRows - 1
}

// PrintArea is the A1-style range covered by the printed page.
func (l Layout) PrintArea() (string, string) {
	return cellName(1, 1), cellName(l.Columns, l.PrintRows)
}

const (
	FamilyABCD       = "abcd"
	FamilyFiveColumn = "five-column"
)

// LayoutABCD is the four-column M537 certificate: label, specification and two
// heat observation columns in A-D.
var LayoutABCD = Layout{
	Name:            FamilyABCD,
	Columns:         4,
	ColumnWidths:    []float64{30, 38, 17, 24},
	LabelCol:        1,
	SpecCol:         2,
	Heat1Col:        3,
	Heat2Col:        4,
	InvoiceCell:     Cell{4, 3},
	QuantityCell:    Cell{5, 3},
	DateCell:        Cell{6, 3},
	PartDetailsCell: Cell{8, 2},
	HeatHeaderRow:   13,
	ChemFirstRow:    14,
	ChemLastRow:     26,
	ElementRows:     m537ElementRows,
	MechFirstRow:    28,
	MechRows:        4,
	ConclusionRow:   42,
	PrintRows:       50,
	ScratchRows:     250,
	ScratchLastCol:  50,
	LogoCell:        "A1",
}

// LayoutFiveColumn is the variant with a narrow leading column: labels move to
// B and the heat observations to D and E.
var LayoutFiveColumn = Layout{
	Name:            FamilyFiveColumn,
	Columns:         5,
	ColumnWidths:    []float64{4, 28, 18, 16, 16},
	LabelCol:        2,
	SpecCol:         3,
	Heat1Col:        4,
	Heat2Col:        5,
	InvoiceCell:     Cell{4, 5},
	QuantityCell:    Cell{5, 5},
	DateCell:        Cell{6, 5},
	PartDetailsCell: Cell{8, 2},
	HeatHeaderRow:   13,
	ChemFirstRow:    14,
	ChemLastRow:     26,
	ElementRows:     m537ElementRows,
	MechFirstRow:    28,
	MechRows:        4,
	ConclusionRow:   42,
	PrintRows:       50,
	ScratchRows:     250,
	ScratchLastCol:  50,
	LogoCell:        "A1",
}

var layouts = map[string]Layout{
	FamilyABCD:       LayoutABCD,
	FamilyFiveColumn: LayoutFiveColumn,
}

// LayoutFor returns the named template family. An empty name selects the ABCD
// family.
func LayoutFor(family string) (Layout, error) {
	if family == "" {
		return LayoutABCD, nil
	}
	l, ok := layouts[family]
	if !ok {
		return Layout{}, fmt.Errorf("unknown template family %q (known: %v)", family, TemplateFamilies())
	}
	return l, nil
}

// TemplateFamilies lists the registered family names.
func TemplateFamilies() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
