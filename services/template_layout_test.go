package services

import "testing"

func TestLayoutFor(t *testing.T) {
	l, err := LayoutFor("")
	if err != nil || l.Name != FamilyABCD {
		t.Errorf("LayoutFor(\"\") = %q, %v", l.Name, err)
	}
	l, err = LayoutFor(FamilyFiveColumn)
	if err != nil || l.Columns != 5 {
		t.Errorf("LayoutFor(five-column) = %+v, %v", l, err)
	}
	if _, err := LayoutFor("nope"); err == nil {
		t.Error("expected error for unknown family")
	}
}

func TestLayout_Geometry(t *testing.T) {
	from, to := LayoutABCD.PrintArea()
	if from != "A1" || to != "D50" {
		t.Errorf("PrintArea() = %s:%s, want A1:D50", from, to)
	}
	if got := LayoutABCD.MechLastRow(); got != 31 {
		t.Errorf("MechLastRow() = %d, want 31", got)
	}
	for _, l := range []Layout{LayoutABCD, LayoutFiveColumn} {
		if len(l.ColumnWidths) != l.Columns {
			t.Errorf("%s: %d widths for %d columns", l.Name, len(l.ColumnWidths), l.Columns)
		}
		if l.Heat2Col > l.Columns {
			t.Errorf("%s: heat column %d past certificate width", l.Name, l.Heat2Col)
		}
	}
}

func TestTemplateFamilies(t *testing.T) {
	got := TemplateFamilies()
	if len(got) != 2 || got[0] != FamilyABCD || got[1] != FamilyFiveColumn {
		t.Errorf("TemplateFamilies() = %v", got)
	}
}
