package services

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultGrade is used for the conclusion when neither the part details nor the
// request name a grade.
const DefaultGrade = "4512"

// ChemistryItem is one element line of the chemical composition table.
type ChemistryItem struct {
	Element  string `json:"Element"`
	Spec     string `json:"Spec"`
	Heat1Val string `json:"heat1_val"`
	Heat2Val string `json:"heat2_val"`
	Hide     bool   `json:"Hide"`
}

// Validate implements validation.Validatable.
func (c ChemistryItem) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Element, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Spec, validation.Length(0, 200)),
	)
}

// MechanicalItem is one line of the mechanical properties table. Mechanical
// tests are reported against the first heat only.
type MechanicalItem struct {
	Parameter string `json:"Parameter"`
	Spec      string `json:"Spec"`
	Heat1Val  string `json:"heat1_val"`
	Hide      bool   `json:"Hide"`
}

// Validate implements validation.Validatable.
func (m MechanicalItem) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Parameter, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Spec, validation.Length(0, 200)),
	)
}

// MTCPayload is everything a certificate is rendered from.
type MTCPayload struct {
	InvoiceNo   string `json:"invoice_no"`
	Qty         string `json:"qty"`
	Date        string `json:"date"`
	PartDetails string `json:"part_details"`
	Heat1       string `json:"heat1"`
	Heat2       string `json:"heat2"`
	Grade       string `json:"grade"`

	Chemistry  []ChemistryItem  `json:"chemistry"`
	Mechanical []MechanicalItem `json:"mechanical"`

	Customer           string `json:"customer,omitempty"`
	CustomerPartNo     string `json:"customer_part_no,omitempty"`
	Reference          string `json:"reference,omitempty"`
	MicrostructureSpec string `json:"microstructure_spec,omitempty"`
	MicrostructureObs  string `json:"microstructure_obs,omitempty"`
	MatrixSpec         string `json:"matrix_spec,omitempty"`
	MatrixObs          string `json:"matrix_obs,omitempty"`
}

// Validate checks the payload at the API boundary before it reaches a writer.
func (p MTCPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.InvoiceNo, validation.Length(0, 100)),
		validation.Field(&p.Qty, validation.Length(0, 100)),
		validation.Field(&p.Date, validation.Length(0, 100)),
		validation.Field(&p.PartDetails, validation.Length(0, 500)),
		validation.Field(&p.Heat1, validation.Length(0, 100)),
		validation.Field(&p.Heat2, validation.Length(0, 100)),
		validation.Field(&p.Chemistry),
		validation.Field(&p.Mechanical),
	)
}

// VisibleChemistry returns the chemistry items not flagged hidden.
func (p MTCPayload) VisibleChemistry() []ChemistryItem {
	out := make([]ChemistryItem, 0, len(p.Chemistry))
	for _, c := range p.Chemistry {
		if !c.Hide {
			out = append(out, c)
		}
	}
	return out
}

// VisibleMechanical returns the mechanical items not flagged hidden.
func (p MTCPayload) VisibleMechanical() []MechanicalItem {
	out := make([]MechanicalItem, 0, len(p.Mechanical))
	for _, m := range p.Mechanical {
		if !m.Hide {
			out = append(out, m)
		}
	}
	return out
}

// Microstructure and matrix text used when the request leaves them out.
const (
	DefaultMicrostructureSpec = "Thar Graphite from shall be 80 percent Types I & II as determined in accordance with ASTM A 247"
	DefaultMicrostructureObs  = "Graphite form Type V and VI,\nNodularity: 90%\nNodule count: 290/mm²"
	DefaultMatrixSpec         = "Ferrite - Pearlite"
	DefaultMatrixObs          = "Predominantly Ferrite matrix with Pearlite"
	DefaultReference          = "REFERENCE - Ductile iron J434C GRADE 4512"
)

// WithDefaults fills the free-text sections that have a house default.
func (p MTCPayload) WithDefaults() MTCPayload {
	if p.MicrostructureSpec == "" {
		p.MicrostructureSpec = DefaultMicrostructureSpec
	}
	if p.MicrostructureObs == "" {
		p.MicrostructureObs = DefaultMicrostructureObs
	}
	if p.MatrixSpec == "" {
		p.MatrixSpec = DefaultMatrixSpec
	}
	if p.MatrixObs == "" {
		p.MatrixObs = DefaultMatrixObs
	}
	if p.Reference == "" {
		p.Reference = DefaultReference
	}
	return p
}

// The marker must start a word so "Retrograde" is not read as one.
var gradeMarker = regexp.MustCompile(`(?i)\bgrade`)

// ExtractGrade takes the grade from the part details line: the text after the
// last "GRADE" marker. When the line has no usable marker the fallback is used,
// and DefaultGrade when that is empty too. A leading "GRADE" word on the
// fallback is dropped so the conclusion never says "GRADE GRADE".
func ExtractGrade(partDetails, fallback string) string {
	if marks := gradeMarker.FindAllStringIndex(partDetails, -1); len(marks) > 0 {
		end := marks[len(marks)-1][1]
		if g := strings.TrimSpace(partDetails[end:]); g != "" {
			return g
		}
	}
	g := strings.TrimSpace(fallback)
	if strings.HasPrefix(strings.ToUpper(g), "GRADE") {
		g = strings.TrimSpace(g[len("GRADE"):])
	}
	if g == "" {
		return DefaultGrade
	}
	return g
}

// ConclusionText is the closing sentence of the certificate.
func ConclusionText(p MTCPayload) string {
	return fmt.Sprintf("Conclusion: The above material is satisfactory to Ductile iron J434C GRADE %s.",
		ExtractGrade(p.PartDetails, p.Grade))
}

// chemistrySource ties a certificate element to the spectrometer columns that
// carry it, and the specification printed next to it by default.
type chemistrySource struct {
	Element string
	Columns []string
	Spec    string
}

var chemistrySources = []chemistrySource{
	{"Carbon", []string{"C [%]", "C%"}, "3.20 ~ 4.10%"},
	{"Silicon", []string{"Si [%]", "Si%"}, "1.80 ~ 3.00%"},
	{"Manganese", []string{"Mn [%]", "Mn%"}, "0.1 ~ 1.00%"},
	{"Phosphorus", []string{"P [%]", "P%"}, "0.050% Max"},
	{"Sulphur", []string{"S [%]", "S%"}, "0.035% Max"},
	{"Copper", []string{"Cu [%]", "Cu%"}, "-"},
	{"Nickel", []string{"Ni [%]", "Ni%"}, "-"},
	{"Chromium", []string{"Cr [%]", "Cr%"}, "-"},
	{"Moly", []string{"Mo [%]", "Mo%"}, "-"},
	{"Magnesium", []string{"Mg", "Mg [%]", "Mg%"}, "0.025 ~ 0.060%"},
	{"CE", []string{CEColumn}, "-"},
	{"Tin", []string{"Sn%", "Sn [%]"}, "-"},
}

// BuildChemistryItems builds the chemistry table from the two resolved sample
// records. A nil record leaves its column blank.
func BuildChemistryItems(row1, row2 Record) []ChemistryItem {
	items := make([]ChemistryItem, 0, len(chemistrySources))
	for _, src := range chemistrySources {
		items = append(items, ChemistryItem{
			Element:  src.Element,
			Spec:     src.Spec,
			Heat1Val: observation(row1, src.Columns),
			Heat2Val: observation(row2, src.Columns),
		})
	}
	return items
}

func observation(rec Record, columns []string) string {
	if rec == nil {
		return ""
	}
	for _, col := range columns {
		for key, v := range rec {
			if strings.EqualFold(strings.TrimSpace(key), col) {
				return FormatObservation(v)
			}
		}
	}
	return ""
}

// DefaultMechanicalItems is the mechanical table a new certificate starts from.
func DefaultMechanicalItems() []MechanicalItem {
	return []MechanicalItem{
		{Parameter: "3.1 Hardness", Spec: "156-217 HB", Heat1Val: "197/197/197/207/207 BHN"},
		{Parameter: "3.2 Tensile Strength", Spec: "Min 450 Mpa", Heat1Val: "515.28 Mpa"},
		{Parameter: "3.3 Yield Strength", Spec: "Min 295 Mpa", Heat1Val: "326.02 Mpa"},
		{Parameter: "3.4 % Of Elongation", Spec: "Min 12 %", Heat1Val: "14.00%"},
	}
}

// PrefillRequest selects the sample rows a certificate is drafted from.
type PrefillRequest struct {
	Dataset  Dataset `json:"dataset"`
	Heat1    string  `json:"heat1"`
	Heat2    string  `json:"heat2"`
	SampleID string  `json:"sample_id"`
	// Grade picks the grade master entry whose specs are applied; the grade
	// detected in the data is used when it is blank.
	Grade string `json:"grade"`
}

// Prefill is the editable draft handed back to the technician.
type Prefill struct {
	Heats      []string         `json:"heats"`
	Heat1      string           `json:"heat1"`
	Heat2      string           `json:"heat2"`
	Grade      string           `json:"grade"`
	Chemistry  []ChemistryItem  `json:"chemistry"`
	Mechanical []MechanicalItem `json:"mechanical"`
	// SpecsFrom names the grade master entry applied, if any.
	SpecsFrom string `json:"specs_from,omitempty"`
}

// BuildPrefill narrows the dataset to the requested sample, resolves both heat
// slots and drafts the chemistry and mechanical tables. Missing heats or
// columns produce blank values rather than errors.
func BuildPrefill(req PrefillRequest) Prefill {
	ds := FilterBySample(req.Dataset, FindSampleColumn(req.Dataset.Columns), req.SampleID)
	heatCol := FindHeatColumn(ds.Columns)
	heats := DistinctHeats(ds, heatCol)

	heat1, heat2 := req.Heat1, req.Heat2
	if heat1 == "" && len(heats) > 0 {
		heat1 = heats[0]
	}
	if heat2 == "" && len(heats) > 0 {
		heat2 = heats[0]
		if len(heats) > 1 {
			heat2 = heats[1]
		}
	}

	row1, row2 := ResolveHeats(ds, heatCol, heat1, heat2)
	return Prefill{
		Heats:      heats,
		Heat1:      heat1,
		Heat2:      heat2,
		Grade:      DetectGrade(row1, ds.Columns),
		Chemistry:  BuildChemistryItems(row1, row2),
		Mechanical: DefaultMechanicalItems(),
	}
}
