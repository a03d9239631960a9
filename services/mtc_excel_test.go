package services

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/xuri/excelize/v2"
)

// newTestTemplate builds a small certificate template with the quirks real
// templates have: merges in the data blocks, merges leaking into the scratch
// columns, stray scratch values and pre-hidden rows.
func newTestTemplate(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	set := func(cell string, v any) {
		if err := f.SetCellValue(testSheet, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", cell, err)
		}
	}
	merge := func(from, to string) {
		if err := f.MergeCell(testSheet, from, to); err != nil {
			t.Fatalf("MergeCell(%s:%s) error = %v", from, to, err)
		}
	}

	set("A2", "MATERIAL TEST CERTIFICATE")
	merge("A2", "D2")
	set("C4", "Invoice No :")
	merge("C4", "D4")
	set("C5", "Despatch Quantity:")
	merge("C5", "D5")
	set("C6", "Dispatch Date :")
	merge("C6", "D6")
	merge("B8", "D8")
	set("A13", "Element")
	set("B13", "Specification")

	// Data block merges and leftovers from a previous certificate.
	merge("A14", "B14")
	set("A14", "old carbon")
	set("C20", "0.99%")
	merge("C28", "D28")

	// Scratch area junk.
	merge("G3", "H3")
	merge("D40", "F40")
	set("F5", "stray")
	set("AX250", "far away")
	fill, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#FF0000"}, Pattern: 1},
		Border: fullBorders(1),
	})
	if err != nil {
		t.Fatalf("NewStyle() error = %v", err)
	}
	if err := f.SetCellStyle(testSheet, "F6", "F6", fill); err != nil {
		t.Fatalf("SetCellStyle() error = %v", err)
	}

	for _, r := range []int{15, 20} {
		if err := f.SetRowVisible(testSheet, r, false); err != nil {
			t.Fatalf("SetRowVisible(%d) error = %v", r, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func testPayload() MTCPayload {
	return MTCPayload{
		InvoiceNo:   "INV-7",
		Qty:         "500 Nos",
		Date:        "2026-10-01",
		PartDetails: "TB 1234 Bracket GRADE 4512",
		Heat1:       "H101",
		Heat2:       "H102",
		Chemistry: []ChemistryItem{
			{Element: "Carbon", Spec: "3.20 ~ 4.10%", Heat1Val: "3.61%", Heat2Val: "3.58%"},
			{Element: "Silicon", Spec: "1.80 ~ 3.00%", Heat1Val: "2.40", Heat2Val: "2.38"},
			{Element: "Manganese", Spec: "0.1 ~ 1.00%", Heat1Val: "0.30%", Heat2Val: "0.31%", Hide: true},
			{Element: "CE", Spec: "-", Heat1Val: "4.41%", Heat2Val: "4.37%"},
			{Element: "Unobtainium", Spec: "-", Heat1Val: "1%", Heat2Val: "1%"},
		},
		Mechanical: DefaultMechanicalItems(),
	}
}

func TestGenerateMTCExcel_WritesCertificate(t *testing.T) {
	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	f := openWorkbook(t, out)

	tests := []struct {
		cell   string
		expect string
	}{
		{"C4", "Invoice No : INV-7"},
		{"C5", "Despatch Quantity:  500 Nos"},
		{"C6", "Dispatch Date : 2026-10-01"},
		{"B8", "TB 1234 Bracket GRADE 4512"},
		{"C13", "H101"},
		{"D13", "H102"},
		{"A14", "Carbon"},
		{"B14", "3.20 ~ 4.10%"},
		{"C14", "3.61%"},
		{"D14", "3.58%"},
		{"C15", "2.40%"},
		{"A24", "CE"},
		{"D24", "4.37%"},
		{"C20", ""},
		{"A28", "3.1 Hardness"},
		{"C28", "197/197/197/207/207 BHN"},
		{"C31", "14.00%"},
		{"A42", "Conclusion: The above material is satisfactory to Ductile iron J434C GRADE 4512."},
		{"A2", "MATERIAL TEST CERTIFICATE"},
	}
	for _, tt := range tests {
		if got := cellValue(t, f, tt.cell); got != tt.expect {
			t.Errorf("%s = %q, want %q", tt.cell, got, tt.expect)
		}
	}
}

func TestGenerateMTCExcel_SplitsMergesCrossingBlocks(t *testing.T) {
	f := openWorkbook(t, newTestTemplate(t))
	for _, m := range [][2]string{{"A27", "A28"}, {"B26", "B27"}, {"A31", "A33"}} {
		if err := f.MergeCell(testSheet, m[0], m[1]); err != nil {
			t.Fatalf("MergeCell(%s:%s) error = %v", m[0], m[1], err)
		}
	}
	if err := f.SetCellValue(testSheet, "A27", "3. Mechanical Properties"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	tpl, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	out, err := GenerateMTCExcelFromBytes(tpl.Bytes(), testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	got := openWorkbook(t, out)

	for cell, want := range map[string]string{
		"A27": "3. Mechanical Properties",
		"A28": "3.1 Hardness",
		"A31": "3.4 % Of Elongation",
	} {
		if v := cellValue(t, got, cell); v != want {
			t.Errorf("%s = %q, want %q", cell, v, want)
		}
	}

	merges, err := got.GetMergeCells(testSheet)
	if err != nil {
		t.Fatalf("GetMergeCells() error = %v", err)
	}
	for _, mc := range merges {
		switch mc.GetStartAxis() {
		case "A27", "B26", "A31":
			t.Errorf("merge %s:%s crossing a data block was kept", mc.GetStartAxis(), mc.GetEndAxis())
		}
	}
}

func TestGenerateMTCExcel_RowVisibility(t *testing.T) {
	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	f := openWorkbook(t, out)

	visible := map[int]bool{14: true, 15: true, 24: true}
	for r := LayoutABCD.ChemFirstRow; r <= LayoutABCD.ChemLastRow; r++ {
		got, err := f.GetRowVisible(testSheet, r)
		if err != nil {
			t.Fatalf("GetRowVisible(%d) error = %v", r, err)
		}
		if got != visible[r] {
			t.Errorf("row %d visible = %v, want %v", r, got, visible[r])
		}
	}
}

func TestGenerateMTCExcel_ScratchCleared(t *testing.T) {
	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	f := openWorkbook(t, out)

	for _, cell := range []string{"F5", "AX250", "E40", "F40"} {
		if got := cellValue(t, f, cell); got != "" {
			t.Errorf("scratch cell %s = %q, want empty", cell, got)
		}
	}
	if style, _ := f.GetCellStyle(testSheet, "F6"); style != 0 {
		t.Errorf("scratch cell F6 keeps style %d", style)
	}

	merges, err := f.GetMergeCells(testSheet)
	if err != nil {
		t.Fatalf("GetMergeCells() error = %v", err)
	}
	kept := map[string]bool{}
	for _, m := range merges {
		col, _, _ := excelize.CellNameToCoordinates(m.GetEndAxis())
		if col > LayoutABCD.Columns {
			t.Errorf("merge %s:%s reaches past column D", m.GetStartAxis(), m.GetEndAxis())
		}
		kept[m.GetStartAxis()+":"+m.GetEndAxis()] = true
	}
	for _, want := range []string{"A2:D2", "C4:D4", "B8:D8", "C28:D28"} {
		if !kept[want] {
			t.Errorf("expected merge %s to survive, got %v", want, kept)
		}
	}
	if kept["A14:B14"] {
		t.Error("merge A14:B14 inside the chemistry block should be split")
	}
}

func TestSheetWriter_IgnoresColumnsPastCertificate(t *testing.T) {
	f := openWorkbook(t, newTestTemplate(t))
	w := newSheetWriter(f, LayoutABCD, DefaultSettings())

	before, _ := f.GetMergeCells(testSheet)
	w.writeStyled(20, 5, "x", "center", fillNone)
	w.setValue(20, 6, "y")
	w.setValue(20, 0, "z")

	for _, cell := range []string{"E20", "F20"} {
		if got := cellValue(t, f, cell); got != "" {
			t.Errorf("%s = %q, want empty", cell, got)
		}
	}
	after, _ := f.GetMergeCells(testSheet)
	if len(after) != len(before) {
		t.Errorf("merge count changed from %d to %d", len(before), len(after))
	}
	if len(w.skipped) != 0 {
		t.Errorf("out-of-range writes should be silent no-ops, skipped %v", w.skipped)
	}
}

func TestSheetWriter_WritesMergeTopLeft(t *testing.T) {
	f := openWorkbook(t, newTestTemplate(t))
	w := newSheetWriter(f, LayoutABCD, DefaultSettings())

	w.writeStyled(4, 4, "merged value", "left", fillNone)
	w.setValue(8, 3, "part")

	if got := cellValue(t, f, "C4"); got != "merged value" {
		t.Errorf("C4 = %q, want %q", got, "merged value")
	}
	merges, err := f.GetMergeCells(testSheet)
	if err != nil {
		t.Fatalf("GetMergeCells() error = %v", err)
	}
	found := false
	for _, mc := range merges {
		if mc.GetStartAxis() == "C4" {
			found = true
			if mc.GetEndAxis() != "D4" || mc.GetCellValue() != "merged value" {
				t.Errorf("merge %s:%s holds %q", mc.GetStartAxis(), mc.GetEndAxis(), mc.GetCellValue())
			}
		}
	}
	if !found {
		t.Error("C4:D4 merge was lost")
	}
	if got := cellValue(t, f, "B8"); got != "part" {
		t.Errorf("B8 = %q, want %q", got, "part")
	}
}

func TestSheetWriter_StyleCache(t *testing.T) {
	f := openWorkbook(t, newTestTemplate(t))
	w := newSheetWriter(f, LayoutABCD, DefaultSettings())

	a, err := w.style(cellStyle{align: "center", fill: fillObservation})
	if err != nil {
		t.Fatalf("style() error = %v", err)
	}
	b, _ := w.style(cellStyle{align: "center", fill: fillObservation})
	c, _ := w.style(cellStyle{align: "left", fill: fillObservation})
	if a != b {
		t.Errorf("identical style tuples gave ids %d and %d", a, b)
	}
	if a == c {
		t.Error("different alignments share a style id")
	}

	st, err := f.GetStyle(a)
	if err != nil {
		t.Fatalf("GetStyle() error = %v", err)
	}
	if st.Font == nil || st.Font.Family != "Calibri" || st.Font.Size != 10 {
		t.Errorf("unexpected font %+v", st.Font)
	}
	if len(st.Border) != 4 {
		t.Errorf("expected 4 border sides, got %d", len(st.Border))
	}
}

func TestGenerateMTCExcel_NoBorders(t *testing.T) {
	settings := DefaultSettings()
	settings.BorderStyle = "none"

	f := openWorkbook(t, newTestTemplate(t))
	w := newSheetWriter(f, LayoutABCD, settings.WithDefaults())
	id, err := w.style(cellStyle{align: "center"})
	if err != nil {
		t.Fatalf("style() error = %v", err)
	}
	st, _ := f.GetStyle(id)
	for _, b := range st.Border {
		if b.Style != 0 {
			t.Errorf("border %s has style %d, want none", b.Type, b.Style)
		}
	}
}

func TestGenerateMTCExcel_PageSetup(t *testing.T) {
	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	f := openWorkbook(t, out)

	found := false
	for _, dn := range f.GetDefinedName() {
		if dn.Name == printAreaName {
			found = true
			if !strings.HasSuffix(dn.RefersTo, "$A$1:$D$50") {
				t.Errorf("print area = %q, want A1:D50", dn.RefersTo)
			}
		}
	}
	if !found {
		t.Error("print area not defined")
	}

	layout, err := f.GetPageLayout(testSheet)
	if err != nil {
		t.Fatalf("GetPageLayout() error = %v", err)
	}
	if layout.Orientation == nil || *layout.Orientation != "portrait" {
		t.Errorf("orientation = %v, want portrait", layout.Orientation)
	}
	if layout.Size == nil || *layout.Size != a4PaperSize {
		t.Errorf("paper size = %v, want A4", layout.Size)
	}

	corner := thickSides(t, f, "A1")
	if !corner["left"] || !corner["top"] {
		t.Errorf("A1 thick sides = %v, want left and top", corner)
	}
	if sides := thickSides(t, f, "D50"); !sides["right"] || !sides["bottom"] {
		t.Errorf("D50 thick sides = %v, want right and bottom", sides)
	}
	if sides := thickSides(t, f, "B20"); len(sides) != 0 {
		t.Errorf("interior cell B20 has thick sides %v", sides)
	}
}

func thickSides(t *testing.T, f *excelize.File, cell string) map[string]bool {
	t.Helper()
	id, err := f.GetCellStyle(testSheet, cell)
	if err != nil {
		t.Fatalf("GetCellStyle(%s) error = %v", cell, err)
	}
	st, err := f.GetStyle(id)
	if err != nil {
		t.Fatalf("GetStyle(%d) error = %v", id, err)
	}
	sides := map[string]bool{}
	for _, b := range st.Border {
		if b.Style == thickBorder {
			sides[b.Type] = true
		}
	}
	return sides
}

func writeTestLogo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := imaging.Save(imaging.New(200, 300, color.White), path); err != nil {
		t.Fatalf("save logo: %v", err)
	}
	return path
}

func TestGenerateMTCExcel_RerunIsStable(t *testing.T) {
	settings := DefaultSettings()
	settings.LogoPath = writeTestLogo(t)

	first, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), settings)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := GenerateMTCExcelFromBytes(first, testPayload(), settings)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	a, b := openWorkbook(t, first), openWorkbook(t, second)
	for r := 1; r <= LayoutABCD.PrintRows; r++ {
		for c := 1; c <= LayoutABCD.Columns; c++ {
			cell := cellName(c, r)
			if va, vb := cellValue(t, a, cell), cellValue(t, b, cell); va != vb {
				t.Errorf("%s differs between runs: %q vs %q", cell, va, vb)
			}
		}
	}

	for _, f := range []*excelize.File{a, b} {
		pics, err := f.GetPictures(testSheet, LayoutABCD.LogoCell)
		if err != nil {
			t.Fatalf("GetPictures() error = %v", err)
		}
		if len(pics) != 1 {
			t.Errorf("expected exactly one logo, got %d", len(pics))
		}
	}
}

func TestGenerateMTCExcel_MissingLogoIsSkipped(t *testing.T) {
	settings := DefaultSettings()
	settings.LogoPath = filepath.Join(t.TempDir(), "nope.png")

	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), settings)
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	cells, err := openWorkbook(t, out).GetPictureCells(testSheet)
	if err != nil {
		t.Fatalf("GetPictureCells() error = %v", err)
	}
	if len(cells) != 0 {
		t.Errorf("expected no pictures, got %v", cells)
	}
}

func TestGenerateMTCExcel_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	tpl := newTestTemplate(t)
	if err := os.WriteFile(path, tpl, 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	out, err := GenerateMTCExcel(path, testPayload(), DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateMTCExcel() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatal("GenerateMTCExcel() returned empty bytes")
	}

	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != string(tpl) {
		t.Error("template file was modified")
	}
}

func TestGenerateMTCExcel_MissingTemplate(t *testing.T) {
	_, err := GenerateMTCExcel(filepath.Join(t.TempDir(), "missing.xlsx"), testPayload(), DefaultSettings())
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestGenerateMTCExcel_BadInput(t *testing.T) {
	if _, err := GenerateMTCExcelFromBytes([]byte("not a workbook"), testPayload(), DefaultSettings()); err == nil {
		t.Error("expected error for corrupt template")
	}

	settings := DefaultSettings()
	settings.TemplateFamily = "seven-column"
	if _, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), settings); err == nil {
		t.Error("expected error for unknown template family")
	}
}

func TestGenerateMTCExcel_FiveColumnFamily(t *testing.T) {
	settings := DefaultSettings()
	settings.TemplateFamily = FamilyFiveColumn

	out, err := GenerateMTCExcelFromBytes(newTestTemplate(t), testPayload(), settings)
	if err != nil {
		t.Fatalf("GenerateMTCExcelFromBytes() error = %v", err)
	}
	f := openWorkbook(t, out)

	tests := []struct {
		cell   string
		expect string
	}{
		{"E4", "Invoice No : INV-7"},
		{"B14", "Carbon"},
		{"D14", "3.61%"},
		{"E14", "3.58%"},
		{"D13", "H101"},
		{"E13", "H102"},
	}
	for _, tt := range tests {
		if got := cellValue(t, f, tt.cell); got != tt.expect {
			t.Errorf("%s = %q, want %q", tt.cell, got, tt.expect)
		}
	}
}
