package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateMTCPDF renders the certificate as a single A4 portrait PDF.
func GenerateMTCPDF(payload MTCPayload, settings Settings) ([]byte, error) {
	v := BuildReportView(payload, settings)

	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)
	p := newPDFPalette(v)

	addMTCHeader(m, v, p, loadLogo(settings.WithDefaults().LogoPath))
	addMTCChemistry(m, v, p)
	addMTCMechanical(m, v, p)
	addMTCMicrostructure(m, v, p)
	addMTCFooter(m, v, p)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// pdfPalette holds the cell and text styles derived from the settings.
type pdfPalette struct {
	cell      *props.Cell
	section   *props.Cell
	subHeader *props.Cell

	body       props.Text
	bodyCenter props.Text
	bold       props.Text
	sectionTxt props.Text
}

func newPDFPalette(v ReportView) pdfPalette {
	black := &props.Color{Red: 0, Green: 0, Blue: 0}
	cell := &props.Cell{}
	if v.BorderPx > 0 {
		cell = &props.Cell{
			BorderType:      border.Full,
			BorderColor:     black,
			BorderThickness: 0.2 * float64(v.BorderPx),
		}
	}
	section := *cell
	section.BackgroundColor = hexToColor(v.HeaderFill)
	sub := *cell
	sub.BackgroundColor = &props.Color{Red: 242, Green: 242, Blue: 242}

	size := float64(v.FontSize) - 1
	body := props.Text{Size: size, Align: align.Left, Left: 1.5, Top: 1.5}
	center := body
	center.Align = align.Center
	center.Left = 0
	bold := center
	bold.Style = fontstyle.Bold
	sectionTxt := bold
	sectionTxt.Align = pdfAlign(v.HeaderAlign)
	if sectionTxt.Align == align.Left {
		sectionTxt.Left = 1.5
	}

	return pdfPalette{
		cell:       cell,
		section:    &section,
		subHeader:  &sub,
		body:       body,
		bodyCenter: center,
		bold:       bold,
		sectionTxt: sectionTxt,
	}
}

func pdfAlign(a string) align.Type {
	switch a {
	case "left":
		return align.Left
	case "right":
		return align.Right
	default:
		return align.Center
	}
}

// hexToColor parses "#RRGGBB"; anything else yields white.
func hexToColor(hex string) *props.Color {
	h := strings.TrimPrefix(hex, "#")
	n, err := strconv.ParseUint(h, 16, 32)
	if len(h) != 6 || err != nil {
		return &props.Color{Red: 255, Green: 255, Blue: 255}
	}
	return &props.Color{Red: int(n >> 16 & 0xFF), Green: int(n >> 8 & 0xFF), Blue: int(n & 0xFF)}
}

func addMTCHeader(m core.Maroto, v ReportView, p pdfPalette, logo []byte) {
	logoCol := col.New(2)
	if len(logo) > 0 {
		logoCol.Add(image.NewFromBytes(logo, extension.Png, props.Rect{Center: true, Percent: 90}))
	}

	m.AddRows(
		row.New(30).Add(
			logoCol.WithStyle(p.cell),
			col.New(6).Add(
				text.New(CompanyName, props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Center, Top: 3,
					Color: &props.Color{Red: 0, Green: 112, Blue: 192}}),
				text.New(CompanyAddress, props.Text{Size: 9, Align: align.Center, Top: 10}),
				text.New(LabReportTitle, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Center, Top: 18}),
			).WithStyle(p.cell),
			col.New(4).Add(
				text.New("Customer Part No: "+v.CustomerPartNo, props.Text{Size: 8, Left: 1.5, Top: 2}),
				text.New("Invoice No : "+v.InvoiceNo, props.Text{Size: 8, Left: 1.5, Top: 8}),
				text.New("Despatch Quantity: "+v.Qty, props.Text{Size: 8, Left: 1.5, Top: 14}),
				text.New("Dispatch Date : "+v.Date, props.Text{Size: 8, Left: 1.5, Top: 20}),
			).WithStyle(p.cell),
		),
	)

	strong := p.body
	strong.Style = fontstyle.Bold
	m.AddRows(
		row.New(7).Add(col.New(12).Add(text.New(v.Reference, strong)).WithStyle(p.cell)),
		row.New(7).Add(col.New(12).Add(text.New(v.PartDetails, strong)).WithStyle(p.cell)),
		row.New(3),
		row.New(7).Add(
			text.NewCol(4, "PARAMETER", p.bold).WithStyle(p.cell),
			text.NewCol(4, "SPECIFICATION", p.bold).WithStyle(p.cell),
			text.NewCol(4, "OBSERVATIONS", p.bold).WithStyle(p.cell),
		),
	)
}

func sectionRow(title string, p pdfPalette) core.Row {
	return row.New(7).Add(text.NewCol(12, title, p.sectionTxt).WithStyle(p.section))
}

func addMTCChemistry(m core.Maroto, v ReportView, p pdfPalette) {
	m.AddRows(
		sectionRow("Specification  "+v.ChemTitle, p),
		row.New(7).Add(
			col.New(8).WithStyle(p.cell),
			text.NewCol(4, "Heat No:", p.bold).WithStyle(p.cell),
		),
		row.New(7).Add(
			text.NewCol(4, "Element", p.bold).WithStyle(p.subHeader),
			text.NewCol(4, "Percentage", p.bold).WithStyle(p.subHeader),
			text.NewCol(2, v.Heat1, p.bold).WithStyle(p.subHeader),
			text.NewCol(2, v.Heat2, p.bold).WithStyle(p.subHeader),
		),
	)
	for _, c := range v.Chemistry {
		m.AddRows(row.New(6).Add(
			text.NewCol(4, c.Element, p.body).WithStyle(p.cell),
			text.NewCol(4, c.Spec, p.bodyCenter).WithStyle(p.cell),
			text.NewCol(2, c.Heat1Val, p.bold).WithStyle(p.cell),
			text.NewCol(2, c.Heat2Val, p.bold).WithStyle(p.cell),
		))
	}
}

func addMTCMechanical(m core.Maroto, v ReportView, p pdfPalette) {
	m.AddRows(sectionRow(v.MechTitle, p))

	label := p.body
	label.Style = fontstyle.Bold
	for _, mi := range v.Mechanical {
		m.AddRows(row.New(6).Add(
			text.NewCol(4, mi.Parameter, label).WithStyle(p.cell),
			text.NewCol(4, mi.Spec, p.bodyCenter).WithStyle(p.cell),
			text.NewCol(4, mi.Heat1Val, p.bodyCenter).WithStyle(p.cell),
		))
	}
}

func addMTCMicrostructure(m core.Maroto, v ReportView, p pdfPalette) {
	obs := col.New(6)
	for i, line := range v.MicroObs {
		t := p.bodyCenter
		t.Top = 2 + float64(i)*4.5
		obs.Add(text.New(line, t))
	}
	height := 6 + 4.5*float64(len(v.MicroObs))
	if height < 14 {
		height = 14
	}

	m.AddRows(
		sectionRow(v.MicroTitle, p),
		row.New(height).Add(
			text.NewCol(6, v.MicroSpec, p.bodyCenter).WithStyle(p.cell),
			obs.WithStyle(p.cell),
		),
		sectionRow(v.MatrixTitle, p),
		row.New(12).Add(
			text.NewCol(6, v.MatrixSpec, p.bodyCenter).WithStyle(p.cell),
			text.NewCol(6, v.MatrixObs, p.bodyCenter).WithStyle(p.cell),
		),
	)
}

func addMTCFooter(m core.Maroto, v ReportView, p pdfPalette) {
	strong := p.body
	strong.Style = fontstyle.Bold
	m.AddRows(
		row.New(8).Add(col.New(12).Add(text.New(v.Conclusion, strong)).WithStyle(p.cell)),
		row.New(4),
		row.New(7).Add(
			text.NewCol(3, DocumentCode, p.body).WithStyle(p.cell),
			text.NewCol(4, "REPORTED BY", p.bold).WithStyle(p.subHeader),
			text.NewCol(5, "APPROVED BY", p.bold).WithStyle(p.subHeader),
		),
		row.New(16).Add(
			col.New(3).WithStyle(p.cell),
			text.NewCol(4, ReportedBy, withTop(p.bodyCenter, 10)).WithStyle(p.cell),
			text.NewCol(5, ApprovedBy, withTop(p.bodyCenter, 10)).WithStyle(p.cell),
		),
	)
}

func withTop(t props.Text, top float64) props.Text {
	t.Top = top
	return t
}
