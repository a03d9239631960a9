package services

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Settings carries the certificate styling options. It is passed explicitly to
// every generator call; nothing reads settings from package state.
type Settings struct {
	BorderStyle     string `json:"border_style" yaml:"border_style"`
	FontFamily      string `json:"font_family" yaml:"font_family"`
	FontSize        int    `json:"font_size" yaml:"font_size"`
	HeaderFillColor string `json:"header_fill_color" yaml:"header_fill_color"`
	HeaderAlign     string `json:"header_align" yaml:"header_align"`

	ChemTitle   string `json:"chem_title" yaml:"chem_title"`
	MechTitle   string `json:"mech_title" yaml:"mech_title"`
	MicroTitle  string `json:"micro_title" yaml:"micro_title"`
	MatrixTitle string `json:"matrix_title" yaml:"matrix_title"`

	TemplatePath   string `json:"mtc_template_path" yaml:"mtc_template_path"`
	TemplateFamily string `json:"template_family,omitempty" yaml:"template_family"`
	LogoPath       string `json:"logo_path,omitempty" yaml:"logo_path"`
}

// DefaultSettings mirrors what a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		BorderStyle:     "thin",
		FontFamily:      "Calibri",
		FontSize:        10,
		HeaderFillColor: "#d9e1f2",
		HeaderAlign:     "center",
		ChemTitle:       "1. Chemical composition",
		MechTitle:       "2. Mechanical Properties",
		MicroTitle:      "3. Microstructure",
		MatrixTitle:     "3.1 Matrix",
		TemplatePath:    "Final correct.xlsx",
		TemplateFamily:  FamilyABCD,
		LogoPath:        "logo.png",
	}
}

// WithDefaults fills every zero-valued option from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.BorderStyle == "" {
		s.BorderStyle = d.BorderStyle
	}
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}
	if s.FontSize == 0 {
		s.FontSize = d.FontSize
	}
	if s.HeaderFillColor == "" {
		s.HeaderFillColor = d.HeaderFillColor
	}
	if s.HeaderAlign == "" {
		s.HeaderAlign = d.HeaderAlign
	}
	if s.ChemTitle == "" {
		s.ChemTitle = d.ChemTitle
	}
	if s.MechTitle == "" {
		s.MechTitle = d.MechTitle
	}
	if s.MicroTitle == "" {
		s.MicroTitle = d.MicroTitle
	}
	if s.MatrixTitle == "" {
		s.MatrixTitle = d.MatrixTitle
	}
	if s.TemplatePath == "" {
		s.TemplatePath = d.TemplatePath
	}
	if s.TemplateFamily == "" {
		s.TemplateFamily = d.TemplateFamily
	}
	return s
}

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate checks option ranges. Zero values are allowed; WithDefaults fills them.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BorderStyle, validation.In("thin", "medium", "thick", "none")),
		validation.Field(&s.FontSize, validation.When(s.FontSize != 0, validation.Min(8), validation.Max(14))),
		validation.Field(&s.HeaderFillColor, validation.Match(hexColor)),
		validation.Field(&s.HeaderAlign, validation.In("left", "center", "right")),
		validation.Field(&s.TemplateFamily, validation.In(FamilyABCD, FamilyFiveColumn)),
	)
}

// HeaderFillHex returns the header colour as "#RRGGBB".
func (s Settings) HeaderFillHex() string {
	c := strings.TrimPrefix(strings.TrimSpace(s.HeaderFillColor), "#")
	if !hexColor.MatchString(c) {
		c = strings.TrimPrefix(DefaultSettings().HeaderFillColor, "#")
	}
	return "#" + strings.ToUpper(c)
}

// LoadSettingsFile reads settings from a YAML (or JSON) file and applies
// defaults for anything it leaves out.
func LoadSettingsFile(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s.WithDefaults(), nil
}

// Merge overlays every non-zero option of over onto s.
func (s Settings) Merge(over Settings) Settings {
	if over.BorderStyle != "" {
		s.BorderStyle = over.BorderStyle
	}
	if over.FontFamily != "" {
		s.FontFamily = over.FontFamily
	}
	if over.FontSize != 0 {
		s.FontSize = over.FontSize
	}
	if over.HeaderFillColor != "" {
		s.HeaderFillColor = over.HeaderFillColor
	}
	if over.HeaderAlign != "" {
		s.HeaderAlign = over.HeaderAlign
	}
	if over.ChemTitle != "" {
		s.ChemTitle = over.ChemTitle
	}
	if over.MechTitle != "" {
		s.MechTitle = over.MechTitle
	}
	if over.MicroTitle != "" {
		s.MicroTitle = over.MicroTitle
	}
	if over.MatrixTitle != "" {
		s.MatrixTitle = over.MatrixTitle
	}
	if over.TemplatePath != "" {
		s.TemplatePath = over.TemplatePath
	}
	if over.TemplateFamily != "" {
		s.TemplateFamily = over.TemplateFamily
	}
	if over.LogoPath != "" {
		s.LogoPath = over.LogoPath
	}
	return s
}
