package collections_test

import (
	"encoding/json"
	"testing"

	"mtcreport/collections"
	"mtcreport/testhelpers"
)

func TestSeed_CreatesGrades(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	records, err := app.FindAllRecords("grade_master")
	if err != nil {
		t.Fatalf("query grade_master: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 seeded grades, got %d", len(records))
	}

	rec, err := app.FindFirstRecordByFilter("grade_master", "grade = '4512'")
	if err != nil {
		t.Fatalf("grade 4512 not seeded: %v", err)
	}
	var chem []struct {
		Element string `json:"Element"`
		Spec    string `json:"Spec"`
	}
	if err := rec.UnmarshalJSONField("chemistry", &chem); err != nil {
		t.Fatalf("chemistry is not valid JSON: %v", err)
	}
	if len(chem) == 0 || chem[0].Element != "Carbon" || chem[0].Spec != "3.20 ~ 4.10%" {
		t.Errorf("unexpected chemistry specs %+v", chem)
	}

	var mech []map[string]string
	if err := json.Unmarshal([]byte(rec.GetString("mechanical")), &mech); err != nil {
		t.Fatalf("mechanical is not valid JSON: %v", err)
	}
	if len(mech) != 4 {
		t.Errorf("expected 4 mechanical specs, got %d", len(mech))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	records, _ := app.FindAllRecords("grade_master")
	if len(records) != 2 {
		t.Errorf("expected 2 grades after seeding twice, got %d", len(records))
	}
}

func TestSeed_SkipsWhenDataExists(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestGrade(t, app, "Custom", []any{}, []any{})

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	records, _ := app.FindAllRecords("grade_master")
	if len(records) != 1 {
		t.Errorf("expected seed to skip, found %d grades", len(records))
	}
}
