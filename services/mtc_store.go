package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// Collection names used by the certificate service.
const (
	SettingsCollection    = "mtc_settings"
	FormatsCollection     = "report_formats"
	GradeMasterCollection = "grade_master"
)

// ErrFormatNotFound is returned when renaming a view that does not exist.
var ErrFormatNotFound = errors.New("format not found")

// ── Settings ────────────────────────────────────────────────────────────

// LoadSettings returns the saved style settings, or the defaults when nothing
// has been saved yet.
func LoadSettings(app core.App) (Settings, error) {
	records, err := app.FindAllRecords(SettingsCollection)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if len(records) == 0 {
		return DefaultSettings(), nil
	}
	r := records[0]
	s := Settings{
		BorderStyle:     r.GetString("border_style"),
		FontFamily:      r.GetString("font_family"),
		FontSize:        r.GetInt("font_size"),
		HeaderFillColor: r.GetString("header_fill_color"),
		HeaderAlign:     r.GetString("header_align"),
		ChemTitle:       r.GetString("chem_title"),
		MechTitle:       r.GetString("mech_title"),
		MicroTitle:      r.GetString("micro_title"),
		MatrixTitle:     r.GetString("matrix_title"),
		TemplatePath:    r.GetString("mtc_template_path"),
		TemplateFamily:  r.GetString("template_family"),
		LogoPath:        r.GetString("logo_path"),
	}
	return s.WithDefaults(), nil
}

// SaveSettings stores s as the single settings record.
func SaveSettings(app core.App, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	col, err := app.FindCollectionByNameOrId(SettingsCollection)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	records, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	var r *core.Record
	if len(records) > 0 {
		r = records[0]
	} else {
		r = core.NewRecord(col)
	}
	r.Set("border_style", s.BorderStyle)
	r.Set("font_family", s.FontFamily)
	r.Set("font_size", s.FontSize)
	r.Set("header_fill_color", s.HeaderFillColor)
	r.Set("header_align", s.HeaderAlign)
	r.Set("chem_title", s.ChemTitle)
	r.Set("mech_title", s.MechTitle)
	r.Set("micro_title", s.MicroTitle)
	r.Set("matrix_title", s.MatrixTitle)
	r.Set("mtc_template_path", s.TemplatePath)
	r.Set("template_family", s.TemplateFamily)
	r.Set("logo_path", s.LogoPath)
	return app.Save(r)
}

// ── Report formats ──────────────────────────────────────────────────────

// ListFormats returns every saved column view keyed by name.
func ListFormats(app core.App) (map[string][]string, error) {
	records, err := app.FindAllRecords(FormatsCollection)
	if err != nil {
		return nil, fmt.Errorf("list formats: %w", err)
	}
	out := make(map[string][]string, len(records))
	for _, r := range records {
		var cols []string
		if err := r.UnmarshalJSONField("columns", &cols); err != nil {
			return nil, fmt.Errorf("format %q: %w", r.GetString("name"), err)
		}
		if cols == nil {
			cols = []string{}
		}
		out[r.GetString("name")] = cols
	}
	return out, nil
}

// SaveFormat creates or replaces the named column view.
func SaveFormat(app core.App, name string, columns []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("format name is required")
	}
	if columns == nil {
		columns = []string{}
	}
	r, err := app.FindFirstRecordByFilter(FormatsCollection, "name = {:name}", map[string]any{"name": name})
	if err != nil {
		col, cerr := app.FindCollectionByNameOrId(FormatsCollection)
		if cerr != nil {
			return fmt.Errorf("save format: %w", cerr)
		}
		r = core.NewRecord(col)
		r.Set("name", name)
	}
	r.Set("columns", columns)
	return app.Save(r)
}

// RenameFormat moves a view to a new name, replacing any view already there.
func RenameFormat(app core.App, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("new name is required")
	}
	r, err := app.FindFirstRecordByFilter(FormatsCollection, "name = {:name}", map[string]any{"name": oldName})
	if err != nil {
		return ErrFormatNotFound
	}
	if newName == oldName {
		return nil
	}
	if existing, err := app.FindFirstRecordByFilter(FormatsCollection, "name = {:name}", map[string]any{"name": newName}); err == nil {
		if err := app.Delete(existing); err != nil {
			return fmt.Errorf("rename format: %w", err)
		}
	}
	r.Set("name", newName)
	return app.Save(r)
}

// DeleteFormat removes a view. Deleting a view that does not exist succeeds.
func DeleteFormat(app core.App, name string) error {
	r, err := app.FindFirstRecordByFilter(FormatsCollection, "name = {:name}", map[string]any{"name": name})
	if err != nil {
		return nil
	}
	return app.Delete(r)
}

// ── Grade master ────────────────────────────────────────────────────────

// ListGradeMaster returns every saved grade keyed by grade name.
func ListGradeMaster(app core.App) (map[string]GradeSpecs, error) {
	records, err := app.FindAllRecords(GradeMasterCollection)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	out := make(map[string]GradeSpecs, len(records))
	for _, r := range records {
		out[r.GetString("grade")] = gradeSpecsFromRecord(r)
	}
	return out, nil
}

// GradeNames lists the saved grades alphabetically.
func GradeNames(master map[string]GradeSpecs) []string {
	names := make([]string, 0, len(master))
	for n := range master {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FindGradeSpecs looks a grade up by name, ignoring case and padding.
func FindGradeSpecs(app core.App, grade string) (GradeSpecs, bool) {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return GradeSpecs{}, false
	}
	master, err := ListGradeMaster(app)
	if err != nil {
		return GradeSpecs{}, false
	}
	for name, specs := range master {
		if sameName(name, grade) {
			return specs, true
		}
	}
	return GradeSpecs{}, false
}

// SaveGradeSpecs creates or replaces a grade's specification set.
func SaveGradeSpecs(app core.App, grade string, specs GradeSpecs) error {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return errors.New("grade name is required")
	}
	if specs.Chemistry == nil {
		specs.Chemistry = []ChemistryItem{}
	}
	if specs.Mechanical == nil {
		specs.Mechanical = []MechanicalItem{}
	}
	r, err := app.FindFirstRecordByFilter(GradeMasterCollection, "grade = {:grade}", map[string]any{"grade": grade})
	if err != nil {
		col, cerr := app.FindCollectionByNameOrId(GradeMasterCollection)
		if cerr != nil {
			return fmt.Errorf("save grade: %w", cerr)
		}
		r = core.NewRecord(col)
		r.Set("grade", grade)
	}
	r.Set("chemistry", specs.Chemistry)
	r.Set("mechanical", specs.Mechanical)
	return app.Save(r)
}

// DeleteGrade removes a grade. Deleting a grade that does not exist succeeds.
func DeleteGrade(app core.App, grade string) error {
	r, err := app.FindFirstRecordByFilter(GradeMasterCollection, "grade = {:grade}", map[string]any{"grade": grade})
	if err != nil {
		return nil
	}
	return app.Delete(r)
}

func gradeSpecsFromRecord(r *core.Record) GradeSpecs {
	specs := GradeSpecs{Chemistry: []ChemistryItem{}, Mechanical: []MechanicalItem{}}
	_ = r.UnmarshalJSONField("chemistry", &specs.Chemistry)
	_ = r.UnmarshalJSONField("mechanical", &specs.Mechanical)
	if specs.Chemistry == nil {
		specs.Chemistry = []ChemistryItem{}
	}
	if specs.Mechanical == nil {
		specs.Mechanical = []MechanicalItem{}
	}
	return specs
}

// ApplySavedSpecs overlays the grade master specs for grade onto a draft. When
// grade is blank the grade detected in the data is used. Drafts for grades
// that have no saved entry are returned unchanged.
func ApplySavedSpecs(app core.App, p Prefill, grade string) Prefill {
	if strings.TrimSpace(grade) == "" {
		grade = p.Grade
	}
	specs, ok := FindGradeSpecs(app, grade)
	if !ok {
		return p
	}
	p.Chemistry, p.Mechanical = specs.Apply(p.Chemistry, p.Mechanical)
	p.SpecsFrom = strings.TrimSpace(grade)
	return p
}
