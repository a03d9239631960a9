// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"mtcreport/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestGrade creates a grade_master record with the given chemistry and
// mechanical spec lines and returns it.
func CreateTestGrade(t *testing.T, app *pocketbase.PocketBase, grade string, chemistry, mechanical any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("grade_master")
	if err != nil {
		t.Fatalf("failed to find grade_master collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("grade", grade)
	record.Set("chemistry", chemistry)
	record.Set("mechanical", mechanical)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test grade: %v", err)
	}

	return record
}

// CreateTestFormat creates a report_formats record and returns it.
func CreateTestFormat(t *testing.T, app *pocketbase.PocketBase, name string, columns []string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("report_formats")
	if err != nil {
		t.Fatalf("failed to find report_formats collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("columns", columns)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test format: %v", err)
	}

	return record
}

// WriteTestTemplate saves a minimal certificate template into dir and returns
// its path: a few static labels and one merged mechanical row.
func WriteTestTemplate(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	labels := map[string]string{
		"A1":  "AUTOLEC DIVISION-FOUNDRY",
		"A4":  "Customer",
		"A12": "1. Chemical composition",
		"A27": "2. Mechanical Properties",
	}
	for cell, v := range labels {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("failed to write template cell %s: %v", cell, err)
		}
	}
	if err := f.MergeCell(sheet, "C28", "D28"); err != nil {
		t.Fatalf("failed to merge template cells: %v", err)
	}

	path := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}
	return path
}

// AssertJSONContains checks that body contains all specified fragments.
func AssertJSONContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
