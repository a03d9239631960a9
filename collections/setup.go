package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the mtc_settings, report_formats and
// grade_master collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "mtc_settings", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "border_style",
			Values:    []string{"thin", "medium", "thick", "none"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "font_family"})
		c.Fields.Add(&core.NumberField{Name: "font_size", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "header_fill_color", Pattern: `^#?[0-9a-fA-F]{6}$`})
		c.Fields.Add(&core.SelectField{
			Name:      "header_align",
			Values:    []string{"left", "center", "right"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "chem_title"})
		c.Fields.Add(&core.TextField{Name: "mech_title"})
		c.Fields.Add(&core.TextField{Name: "micro_title"})
		c.Fields.Add(&core.TextField{Name: "matrix_title"})
		c.Fields.Add(&core.TextField{Name: "mtc_template_path"})
		c.Fields.Add(&core.SelectField{
			Name:      "template_family",
			Values:    []string{"abcd", "five-column"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "logo_path"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "report_formats", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.JSONField{Name: "columns"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_report_formats_name", true, "name", "")
	})

	ensureCollection(app, "grade_master", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "grade", Required: true, Max: 200})
		c.Fields.Add(&core.JSONField{Name: "chemistry"})
		c.Fields.Add(&core.JSONField{Name: "mechanical"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_grade_master_grade", true, "grade", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
