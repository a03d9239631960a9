package services

import "strings"

// Fixed certificate furniture printed on every report.
const (
	CompanyName     = "AUTOLEC DIVISION-FOUNDRY"
	CompanyAddress  = "Gummidipoondi-601201"
	LabReportTitle  = "LABORATORY REPORT"
	DocumentCode    = "SFL/FD/9.15"
	ReportedBy      = "G.Mythili"
	ApprovedBy      = "T.Thirugnanam"
	DefaultCustomer = "SUNDRAM FASTENERS LTD"
)

var borderPixels = map[string]int{
	"thin":   1,
	"medium": 2,
	"thick":  3,
	"none":   0,
}

// ReportView is the display-ready form of a certificate shared by the HTML and
// PDF composers. Hidden items are already dropped and chemistry values are
// formatted.
type ReportView struct {
	Customer       string
	CustomerPartNo string
	InvoiceNo      string
	Qty            string
	Date           string
	Reference      string
	PartDetails    string
	Heat1          string
	Heat2          string

	ChemTitle   string
	MechTitle   string
	MicroTitle  string
	MatrixTitle string

	Chemistry  []ChemistryItem
	Mechanical []MechanicalItem

	MicroSpec  string
	MicroObs   []string
	MatrixSpec string
	MatrixObs  string
	Conclusion string

	BorderPx    int
	FontFamily  string
	FontSize    int
	HeaderFill  string
	HeaderAlign string
}

// BuildReportView prepares a payload for rendering with the given settings.
func BuildReportView(p MTCPayload, s Settings) ReportView {
	p = p.WithDefaults()
	s = s.WithDefaults()

	chem := p.VisibleChemistry()
	for i := range chem {
		chem[i].Heat1Val = FormatObservation(chem[i].Heat1Val)
		chem[i].Heat2Val = FormatObservation(chem[i].Heat2Val)
	}

	customer := p.Customer
	if customer == "" {
		customer = DefaultCustomer
	}
	px, ok := borderPixels[s.BorderStyle]
	if !ok {
		px = 1
	}

	return ReportView{
		Customer:       customer,
		CustomerPartNo: p.CustomerPartNo,
		InvoiceNo:      p.InvoiceNo,
		Qty:            p.Qty,
		Date:           p.Date,
		Reference:      p.Reference,
		PartDetails:    p.PartDetails,
		Heat1:          p.Heat1,
		Heat2:          p.Heat2,
		ChemTitle:      s.ChemTitle,
		MechTitle:      s.MechTitle,
		MicroTitle:     s.MicroTitle,
		MatrixTitle:    s.MatrixTitle,
		Chemistry:      chem,
		Mechanical:     p.VisibleMechanical(),
		MicroSpec:      p.MicrostructureSpec,
		MicroObs:       splitLines(p.MicrostructureObs),
		MatrixSpec:     p.MatrixSpec,
		MatrixObs:      p.MatrixObs,
		Conclusion:     ConclusionText(p),
		BorderPx:       px,
		FontFamily:     s.FontFamily,
		FontSize:       s.FontSize,
		HeaderFill:     s.HeaderFillHex(),
		HeaderAlign:    s.HeaderAlign,
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
