package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Legacy JSON files written by earlier installations into the data root.
const (
	LegacySettingsFile    = "settings.json"
	LegacyFormatsFile     = "report_formats.json"
	LegacyGradeMasterFile = "grade_master.json"
)

// settingsFields are the settings.json keys copied onto the settings record.
var settingsFields = []string{
	"border_style", "font_family", "font_size", "header_fill_color", "header_align",
	"chem_title", "mech_title", "micro_title", "matrix_title",
	"mtc_template_path", "template_family", "logo_path",
}

// MigrateLegacyFiles imports settings.json, report_formats.json and
// grade_master.json from root into their collections. Entries that already
// exist in the database are left alone, so it is safe to call on every startup.
// Missing files are skipped.
func MigrateLegacyFiles(app *pocketbase.PocketBase, root string) error {
	if err := migrateLegacySettings(app, filepath.Join(root, LegacySettingsFile)); err != nil {
		return err
	}
	if err := migrateLegacyFormats(app, filepath.Join(root, LegacyFormatsFile)); err != nil {
		return err
	}
	return migrateLegacyGrades(app, filepath.Join(root, LegacyGradeMasterFile))
}

func readLegacyJSON(path string, dst any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migrate_legacy: could not read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("migrate_legacy: could not parse %s: %w", path, err)
	}
	return true, nil
}

func migrateLegacySettings(app *pocketbase.PocketBase, path string) error {
	var legacy map[string]any
	found, err := readLegacyJSON(path, &legacy)
	if err != nil || !found {
		return err
	}

	col, err := app.FindCollectionByNameOrId("mtc_settings")
	if err != nil {
		return fmt.Errorf("migrate_legacy: could not find mtc_settings collection: %w", err)
	}
	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("migrate_legacy: could not query mtc_settings: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	r := core.NewRecord(col)
	for _, key := range settingsFields {
		if v, ok := legacy[key]; ok {
			r.Set(key, v)
		}
	}
	if err := app.Save(r); err != nil {
		return fmt.Errorf("migrate_legacy: could not save settings: %w", err)
	}
	log.Printf("migrate_legacy: imported settings from %s\n", path)
	return nil
}

func migrateLegacyFormats(app *pocketbase.PocketBase, path string) error {
	var legacy map[string][]string
	found, err := readLegacyJSON(path, &legacy)
	if err != nil || !found {
		return err
	}

	col, err := app.FindCollectionByNameOrId("report_formats")
	if err != nil {
		return fmt.Errorf("migrate_legacy: could not find report_formats collection: %w", err)
	}

	imported := 0
	for name, columns := range legacy {
		if _, err := app.FindFirstRecordByFilter(col, "name = {:name}", map[string]any{"name": name}); err == nil {
			continue
		}
		if columns == nil {
			columns = []string{}
		}
		r := core.NewRecord(col)
		r.Set("name", name)
		r.Set("columns", columns)
		if err := app.Save(r); err != nil {
			log.Printf("migrate_legacy: failed to import format %q: %v\n", name, err)
			continue
		}
		imported++
	}
	if imported > 0 {
		log.Printf("migrate_legacy: imported %d report format(s) from %s\n", imported, path)
	}
	return nil
}

// legacyGradeSpecs accepts both grade_master.json shapes: the current
// {"chemistry": [...], "mechanical": [...]} object and the original bare list
// of chemistry specs.
type legacyGradeSpecs struct {
	Chemistry  []json.RawMessage `json:"chemistry"`
	Mechanical []json.RawMessage `json:"mechanical"`
}

func (g *legacyGradeSpecs) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		g.Chemistry = list
		g.Mechanical = []json.RawMessage{}
		return nil
	}
	type plain legacyGradeSpecs
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = legacyGradeSpecs(p)
	return nil
}

func migrateLegacyGrades(app *pocketbase.PocketBase, path string) error {
	var legacy map[string]legacyGradeSpecs
	found, err := readLegacyJSON(path, &legacy)
	if err != nil || !found {
		return err
	}

	col, err := app.FindCollectionByNameOrId("grade_master")
	if err != nil {
		return fmt.Errorf("migrate_legacy: could not find grade_master collection: %w", err)
	}

	imported := 0
	for grade, specs := range legacy {
		if _, err := app.FindFirstRecordByFilter(col, "grade = {:grade}", map[string]any{"grade": grade}); err == nil {
			continue
		}
		if specs.Chemistry == nil {
			specs.Chemistry = []json.RawMessage{}
		}
		if specs.Mechanical == nil {
			specs.Mechanical = []json.RawMessage{}
		}
		r := core.NewRecord(col)
		r.Set("grade", grade)
		r.Set("chemistry", specs.Chemistry)
		r.Set("mechanical", specs.Mechanical)
		if err := app.Save(r); err != nil {
			log.Printf("migrate_legacy: failed to import grade %q: %v\n", grade, err)
			continue
		}
		imported++
	}
	if imported > 0 {
		log.Printf("migrate_legacy: imported %d grade(s) from %s\n", imported, path)
	}
	return nil
}
