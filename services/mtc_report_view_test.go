package services

import (
	"reflect"
	"testing"
)

func TestBuildReportView(t *testing.T) {
	v := BuildReportView(testPayload(), DefaultSettings())

	if len(v.Chemistry) != 4 {
		t.Fatalf("expected 4 visible chemistry rows, got %d", len(v.Chemistry))
	}
	for _, c := range v.Chemistry {
		if c.Element == "Manganese" {
			t.Error("hidden element rendered")
		}
	}
	if v.Chemistry[1].Heat1Val != "2.40%" {
		t.Errorf("silicon heat 1 = %q, want formatted 2.40%%", v.Chemistry[1].Heat1Val)
	}
	if v.Customer != DefaultCustomer {
		t.Errorf("customer = %q", v.Customer)
	}
	if v.BorderPx != 1 {
		t.Errorf("border = %dpx, want 1", v.BorderPx)
	}
	if v.HeaderFill != "#D9E1F2" {
		t.Errorf("header fill = %q", v.HeaderFill)
	}
	want := []string{"Graphite form Type V and VI,", "Nodularity: 90%", "Nodule count: 290/mm²"}
	if !reflect.DeepEqual(v.MicroObs, want) {
		t.Errorf("microstructure lines = %q", v.MicroObs)
	}
}

func TestBuildReportView_BorderWidths(t *testing.T) {
	tests := []struct {
		style string
		px    int
	}{
		{"thin", 1},
		{"medium", 2},
		{"thick", 3},
		{"none", 0},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		s.BorderStyle = tt.style
		if got := BuildReportView(MTCPayload{}, s).BorderPx; got != tt.px {
			t.Errorf("%s border = %dpx, want %d", tt.style, got, tt.px)
		}
	}
}
