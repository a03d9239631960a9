package services

import (
	"reflect"
	"testing"
)

func spectroFixture() Dataset {
	return Dataset{
		Columns: []string{"S.No", "Heat No", "C%", "Si%", "Mn%", "P%"},
		Rows: []Record{
			{"S.No": 1, "Heat No": "H1", "C%": 3.456, "Si%": 2.4, "Mn%": 0.3, "P%": 0.03},
			{"S.No": 2, "Heat No": "H1", "C%": "3.5", "Si%": "2.1", "Mn%": 0.31, "P%": ""},
			{"S.No": 3, "Heat No": "H2", "C%": 3.61, "Si%": 2.55, "Mn%": 0.29},
		},
	}
}

func TestComputeCE_Values(t *testing.T) {
	got := ComputeCE(spectroFixture())

	tests := []struct {
		row    int
		want   float64
		absent bool
	}{
		{row: 0, want: 4.29},   // 3.46 + 2.40/3 + 0.03
		{row: 1, want: 4.2},    // blank P counts as zero
		{row: 2, absent: true}, // no P key at all
	}
	for _, tt := range tests {
		v, ok := got.Rows[tt.row][CEColumn]
		if tt.absent {
			if ok {
				t.Errorf("row %d: expected no CE value, got %v", tt.row, v)
			}
			continue
		}
		if !ok || v != tt.want {
			t.Errorf("row %d: CE = %v, want %v", tt.row, v, tt.want)
		}
	}

	if got.Rows[0]["C%"] != 3.46 {
		t.Errorf("carbon not rounded in place: %v", got.Rows[0]["C%"])
	}
}

func TestComputeCE_ColumnPlacement(t *testing.T) {
	got := ComputeCE(spectroFixture())
	want := []string{"S.No", "Heat No", "C%", "Si%", CEColumn, "Mn%", "P%"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Errorf("columns = %v, want %v", got.Columns, want)
	}
}

func TestComputeCE_Idempotent(t *testing.T) {
	once := ComputeCE(spectroFixture())
	twice := ComputeCE(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the dataset\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestComputeCE_DoesNotMutateInput(t *testing.T) {
	in := spectroFixture()
	ComputeCE(in)
	if in.Rows[0]["C%"] != 3.456 {
		t.Errorf("input carbon changed to %v", in.Rows[0]["C%"])
	}
	if len(in.Columns) != 6 {
		t.Errorf("input columns changed: %v", in.Columns)
	}
}

func TestComputeCE_MissingSourceColumn(t *testing.T) {
	ds := Dataset{
		Columns: []string{"Heat No", "C%", "Si%"},
		Rows:    []Record{{"Heat No": "H1", "C%": 3.456, "Si%": 2.4}},
	}
	got := ComputeCE(ds)
	if got.ColumnIndex(CEColumn) >= 0 {
		t.Errorf("CE column added without phosphorus: %v", got.Columns)
	}
	if _, ok := got.Rows[0][CEColumn]; ok {
		t.Error("CE value added without phosphorus")
	}
	if got.Rows[0]["C%"] != 3.456 {
		t.Error("dataset should be returned unchanged")
	}
}

func TestComputeCE_BracketHeaders(t *testing.T) {
	ds := Dataset{
		Columns: []string{"C [%]", "Si [%]", "P [%]"},
		Rows:    []Record{{"C [%]": 3.3, "Si [%]": 2.7, "P [%]": 0.02}},
	}
	got := ComputeCE(ds)
	if got.Rows[0][CEColumn] != 4.22 {
		t.Errorf("CE = %v, want 4.22", got.Rows[0][CEColumn])
	}
	if got.ColumnIndex(CEColumn) != 2 {
		t.Errorf("CE column at %d, want 2", got.ColumnIndex(CEColumn))
	}
}
