// Package templates renders the printable certificate pages.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"mtcreport/services"
)

// MTCReport renders the certificate as a standalone A4 HTML document.
func MTCReport(v services.ReportView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>MTC Report</title>\n")
		writeStyle(&b, v)
		b.WriteString("</head>\n<body>\n<div class=\"page\">\n")
		writeHeader(&b, v)
		b.WriteString("<table>\n")
		b.WriteString("<tr><th style=\"width: 30%;\">PARAMETER</th><th style=\"width: 30%;\">SPECIFICATION</th><th colspan=\"2\">OBSERVATIONS</th></tr>\n")
		writeChemistry(&b, v)
		writeMechanical(&b, v)
		writeMicrostructure(&b, v)
		b.WriteString("</table>\n")
		writeFooter(&b, v)
		b.WriteString("</div>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func writeStyle(b *strings.Builder, v services.ReportView) {
	fmt.Fprintf(b, `<style>
@page { size: A4; margin: 10mm; }
body { font-family: "%s", "Arial", sans-serif; background-color: #f0f0f0; margin: 0; padding: 20px; }
.page { width: 210mm; min-height: 297mm; padding: 10mm; margin: 0 auto; background: white; border: 1px solid #ccc; box-sizing: border-box; }
table { width: 100%%; border-collapse: collapse; font-size: %dpt; }
td, th { border: %dpx solid black; padding: 4px; vertical-align: middle; }
.company-header { text-align: center; }
.company-name { font-weight: bold; font-size: 14pt; color: #0070c0; }
.lab-report-title { font-weight: bold; margin-top: 5px; font-size: 12pt; }
.info-cell { width: 35%%; font-size: 9pt; }
.info-line { margin-bottom: 2px; }
.banner { border: 1px solid black; border-top: none; padding: 4px; font-weight: bold; font-size: 10pt; }
.section-header { background-color: %s; font-weight: bold; text-align: %s; padding: 4px; }
.chem-header { background-color: #f2f2f2; font-weight: bold; text-align: center; }
.center { text-align: center; }
.value { text-align: center; font-weight: bold; }
.footer-table td { height: 50px; vertical-align: bottom; text-align: center; }
.footer-label { background-color: #f2f2f2; vertical-align: middle; font-weight: bold; }
@media print {
  body { background: none; padding: 0; margin: 0; }
  .page { margin: 0; border: none; width: 100%%; padding: 0; }
  .section-header, .chem-header, .footer-label { -webkit-print-color-adjust: exact; }
}
</style>
`, esc(v.FontFamily), v.FontSize, v.BorderPx, esc(v.HeaderFill), esc(v.HeaderAlign))
}

func writeHeader(b *strings.Builder, v services.ReportView) {
	b.WriteString("<table>\n<tr>\n")
	fmt.Fprintf(b, "<td class=\"company-header\"><div class=\"company-name\">%s</div><div>%s</div><div>%s</div><div class=\"lab-report-title\">%s</div></td>\n",
		esc(services.CompanyName), esc(services.CompanyAddress), esc(v.Customer), esc(services.LabReportTitle))
	b.WriteString("<td class=\"info-cell\">")
	infoLine(b, "Customer Part No:", v.CustomerPartNo)
	infoLine(b, "Invoice No :", v.InvoiceNo)
	infoLine(b, "Despatch Quantity:", v.Qty)
	infoLine(b, "Dispatch Date :", v.Date)
	b.WriteString("</td>\n</tr>\n</table>\n")
	fmt.Fprintf(b, "<div class=\"banner\">%s</div>\n", esc(v.Reference))
	fmt.Fprintf(b, "<div class=\"banner\" style=\"margin-bottom: 10px;\">%s</div>\n", esc(v.PartDetails))
}

func infoLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<div class=\"info-line\"><b>%s</b> %s</div>", esc(label), esc(value))
}

func sectionHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, "<tr><td colspan=\"4\" class=\"section-header\">%s</td></tr>\n", esc(title))
}

func writeChemistry(b *strings.Builder, v services.ReportView) {
	fmt.Fprintf(b, "<tr><td colspan=\"4\" class=\"section-header\">Specification <br> %s</td></tr>\n", esc(v.ChemTitle))
	b.WriteString("<tr><td colspan=\"2\" style=\"border: none;\"></td><td colspan=\"2\" class=\"value\">Heat No:</td></tr>\n")
	fmt.Fprintf(b, "<tr class=\"chem-header\"><td>Element</td><td>Percentage</td><td>%s</td><td>%s</td></tr>\n",
		esc(v.Heat1), esc(v.Heat2))
	for _, c := range v.Chemistry {
		fmt.Fprintf(b, "<tr><td>%s</td><td class=\"center\">%s</td><td class=\"value\">%s</td><td class=\"value\">%s</td></tr>\n",
			esc(c.Element), esc(c.Spec), esc(c.Heat1Val), esc(c.Heat2Val))
	}
}

// Mechanical results have one observation spanning both heat columns.
func writeMechanical(b *strings.Builder, v services.ReportView) {
	sectionHeader(b, v.MechTitle)
	for _, m := range v.Mechanical {
		fmt.Fprintf(b, "<tr><td style=\"font-weight: bold;\">%s</td><td class=\"center\">%s</td><td class=\"center\" colspan=\"2\">%s</td></tr>\n",
			esc(m.Parameter), esc(m.Spec), esc(m.Heat1Val))
	}
}

func writeMicrostructure(b *strings.Builder, v services.ReportView) {
	sectionHeader(b, v.MicroTitle)
	obs := make([]string, len(v.MicroObs))
	for i, line := range v.MicroObs {
		obs[i] = esc(line)
	}
	fmt.Fprintf(b, "<tr><td colspan=\"2\" class=\"center\" style=\"padding: 10px;\">%s</td><td colspan=\"2\" class=\"center\" style=\"padding: 10px;\">%s</td></tr>\n",
		esc(v.MicroSpec), strings.Join(obs, "<br>"))

	sectionHeader(b, v.MatrixTitle)
	fmt.Fprintf(b, "<tr><td colspan=\"2\" class=\"center\" style=\"padding: 20px;\">%s</td><td colspan=\"2\" class=\"center\" style=\"padding: 20px;\">%s</td></tr>\n",
		esc(v.MatrixSpec), esc(v.MatrixObs))
}

func writeFooter(b *strings.Builder, v services.ReportView) {
	fmt.Fprintf(b, "<div class=\"banner\" style=\"padding: 5px;\">%s</div>\n", esc(v.Conclusion))
	b.WriteString("<div style=\"margin-top: 10px;\">\n<table class=\"footer-table\">\n")
	fmt.Fprintf(b, "<tr><td rowspan=\"2\" style=\"width: 25%%; text-align: left; vertical-align: middle; padding-left: 10px;\">%s</td><td class=\"footer-label\">REPORTED BY</td><td class=\"footer-label\">APPROVED BY</td></tr>\n",
		esc(services.DocumentCode))
	fmt.Fprintf(b, "<tr><td style=\"height: 60px;\">%s</td><td style=\"height: 60px;\">%s</td></tr>\n",
		esc(services.ReportedBy), esc(services.ApprovedBy))
	b.WriteString("</table>\n</div>\n")
}
