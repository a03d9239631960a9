package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type chemSpecDef struct {
	Element string `json:"Element"`
	Spec    string `json:"Spec"`
}

type mechSpecDef struct {
	Parameter string `json:"Parameter"`
	Spec      string `json:"Spec"`
}

type gradeDef struct {
	grade      string
	chemistry  []chemSpecDef
	mechanical []mechSpecDef
}

var seedGrades = []gradeDef{
	{
		grade: "4512",
		chemistry: []chemSpecDef{
			{"Carbon", "3.20 ~ 4.10%"},
			{"Silicon", "1.80 ~ 3.00%"},
			{"Manganese", "0.1 ~ 1.00%"},
			{"Phosphorus", "0.050% Max"},
			{"Sulphur", "0.035% Max"},
			{"Magnesium", "0.025 ~ 0.060%"},
		},
		mechanical: []mechSpecDef{
			{"3.1 Hardness", "156-217 HB"},
			{"3.2 Tensile Strength", "Min 450 Mpa"},
			{"3.3 Yield Strength", "Min 295 Mpa"},
			{"3.4 % Of Elongation", "Min 12 %"},
		},
	},
	{
		grade: "5506",
		chemistry: []chemSpecDef{
			{"Carbon", "3.20 ~ 4.10%"},
			{"Silicon", "1.80 ~ 3.00%"},
			{"Manganese", "0.1 ~ 1.00%"},
			{"Phosphorus", "0.050% Max"},
			{"Sulphur", "0.035% Max"},
		},
		mechanical: []mechSpecDef{
			{"3.1 Hardness", "187-255 HB"},
			{"3.2 Tensile Strength", "Min 552 Mpa"},
			{"3.3 Yield Strength", "Min 379 Mpa"},
			{"3.4 % Of Elongation", "Min 6 %"},
		},
	},
}

// Seed inserts the standard J434 grade specifications. It is safe to call on
// every startup because it returns early if any grade records already exist.
func Seed(app *pocketbase.PocketBase) error {
	gradesCol, err := app.FindCollectionByNameOrId("grade_master")
	if err != nil {
		return fmt.Errorf("seed: could not find grade_master collection: %w", err)
	}
	existing, err := app.FindAllRecords(gradesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query grade_master: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: grade_master collection is empty – inserting standard grades …")

	for _, g := range seedGrades {
		r := core.NewRecord(gradesCol)
		r.Set("grade", g.grade)
		r.Set("chemistry", g.chemistry)
		r.Set("mechanical", g.mechanical)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: could not save grade %q: %w", g.grade, err)
		}
	}
	return nil
}
