package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"

	"github.com/disintegration/imaging"
	"github.com/xuri/excelize/v2"
)

// ErrTemplateNotFound is returned when the certificate template file does not
// exist. No fallback template is ever synthesized.
var ErrTemplateNotFound = errors.New("template not found")

// Border style indexes understood by excelize.
var borderStyles = map[string]int{
	"thin":   1,
	"medium": 2,
	"thick":  5,
}

const (
	thickBorder     = 5
	observationFill = "#FFFFFF"
	printAreaName   = "_xlnm.Print_Area"
	a4PaperSize     = 9
	logoWidthPx     = 75
	logoHeightPx    = 120
)

type fillKind int

const (
	fillNone fillKind = iota
	fillObservation
	fillHeader
)

type cellStyle struct {
	align string
	fill  fillKind
}

// GenerateMTCExcel fills the certificate template at templatePath and returns the
// resulting workbook. The template file itself is only read.
func GenerateMTCExcel(templatePath string, payload MTCPayload, settings Settings) ([]byte, error) {
	if _, err := os.Stat(templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templatePath)
		}
		return nil, fmt.Errorf("stat template: %w", err)
	}
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return GenerateMTCExcelFromBytes(raw, payload, settings)
}

// GenerateMTCExcelFromBytes fills an in-memory copy of the template. Every call
// works on its own workbook, so concurrent calls never share state.
func GenerateMTCExcelFromBytes(template []byte, payload MTCPayload, settings Settings) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("generate certificate: unexpected failure: %v", r)
		}
	}()

	settings = settings.WithDefaults()
	layout, err := LayoutFor(settings.TemplateFamily)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	w := newSheetWriter(f, layout, settings)

	steps := []struct {
		name string
		run  func() error
	}{
		{"sanitize", w.sanitize},
		{"unmerge data rows", w.unmergeDataRows},
		{"header", func() error { w.writeHeader(payload); return nil }},
		{"heat numbers", func() error { w.writeHeats(payload); return nil }},
		{"chemistry", func() error { return w.writeChemistry(payload.Chemistry) }},
		{"mechanical", func() error { return w.writeMechanical(payload.Mechanical) }},
		{"conclusion", func() error { w.writeConclusion(payload); return nil }},
		{"logo", func() error { return w.insertLogo(loadLogo(settings.LogoPath)) }},
		{"page setup", w.finalizePage},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter performs merge-aware writes against the active sheet of one
// template workbook.
type sheetWriter struct {
	f        *excelize.File
	sheet    string
	layout   Layout
	settings Settings

	styles  map[cellStyle]int
	borders map[[2]int]int // (base style, side) -> style with thick side
	skipped []string
}

func newSheetWriter(f *excelize.File, layout Layout, settings Settings) *sheetWriter {
	return &sheetWriter{
		f:        f,
		sheet:    f.GetSheetName(f.GetActiveSheetIndex()),
		layout:   layout,
		settings: settings,
		styles:   make(map[cellStyle]int),
		borders:  make(map[[2]int]int),
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// mergeRange describes one merged area in 1-based coordinates.
type mergeRange struct {
	start, end         string
	startRow, startCol int
	endRow, endCol     int
}

func (m mergeRange) contains(row, col int) bool {
	return row >= m.startRow && row <= m.endRow && col >= m.startCol && col <= m.endCol
}

func (w *sheetWriter) merges() ([]mergeRange, error) {
	cells, err := w.f.GetMergeCells(w.sheet)
	if err != nil {
		return nil, err
	}
	out := make([]mergeRange, 0, len(cells))
	for _, mc := range cells {
		sc, sr, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		ec, er, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		out = append(out, mergeRange{
			start: mc.GetStartAxis(), end: mc.GetEndAxis(),
			startRow: sr, startCol: sc, endRow: er, endCol: ec,
		})
	}
	return out, nil
}

// resolve returns the top-left and bottom-right cells of the merge enclosing
// (row, col), or the cell itself twice when it is not merged. Values and styles
// always go to the top-left cell of a merge.
func (w *sheetWriter) resolve(row, col int) (string, string) {
	merges, err := w.merges()
	if err == nil {
		for _, m := range merges {
			if m.contains(row, col) {
				return m.start, m.end
			}
		}
	}
	name := cellName(col, row)
	return name, name
}

func (w *sheetWriter) inBounds(row, col int) bool {
	return row >= 1 && col >= 1 && col <= w.layout.Columns
}

func (w *sheetWriter) skip(cell string, err error) {
	w.skipped = append(w.skipped, cell)
	log.Printf("mtc_excel: skipped %s!%s: %v", w.sheet, cell, err)
}

// setValue writes a value without touching the cell's style. Columns past the
// certificate width are ignored.
func (w *sheetWriter) setValue(row, col int, value any) {
	if !w.inBounds(row, col) {
		return
	}
	tl, _ := w.resolve(row, col)
	if err := w.f.SetCellValue(w.sheet, tl, value); err != nil {
		w.skip(tl, err)
	}
}

// writeStyled writes a value and reapplies the full configured style (border,
// font, fill, alignment) across the enclosing merge. Columns past the
// certificate width are ignored.
func (w *sheetWriter) writeStyled(row, col int, value any, align string, fill fillKind) {
	if !w.inBounds(row, col) {
		return
	}
	tl, br := w.resolve(row, col)
	if err := w.f.SetCellValue(w.sheet, tl, value); err != nil {
		w.skip(tl, err)
		return
	}
	style, err := w.style(cellStyle{align: align, fill: fill})
	if err != nil {
		w.skip(tl, err)
		return
	}
	if err := w.f.SetCellStyle(w.sheet, tl, br, style); err != nil {
		w.skip(tl, err)
	}
}

func (w *sheetWriter) style(cs cellStyle) (int, error) {
	if id, ok := w.styles[cs]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font: &excelize.Font{
			Family: w.settings.FontFamily,
			Size:   float64(w.settings.FontSize),
		},
		Alignment: &excelize.Alignment{
			Horizontal: cs.align,
			Vertical:   "center",
			WrapText:   true,
		},
	}
	if bs, ok := borderStyles[w.settings.BorderStyle]; ok {
		st.Border = fullBorders(bs)
	}
	switch cs.fill {
	case fillObservation:
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{observationFill}, Pattern: 1}
	case fillHeader:
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{w.settings.HeaderFillHex()}, Pattern: 1}
	}
	id, err := w.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[cs] = id
	return id, nil
}

// fullBorders returns black borders of the given style on all four sides.
func fullBorders(style int) []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: style,
		}
	}
	return borders
}

// ── Sanitize ────────────────────────────────────────────────────────────

// sanitize wipes the scratch area right of the certificate. Only merges that
// reach into the scratch columns are removed; the certificate's own merges are
// left exactly as the template has them.
func (w *sheetWriter) sanitize() error {
	l := w.layout
	for i, width := range l.ColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	merges, err := w.merges()
	if err != nil {
		return fmt.Errorf("read merges: %w", err)
	}
	for _, m := range merges {
		if m.endCol > l.Columns {
			if err := w.f.UnmergeCell(w.sheet, m.start, m.end); err != nil {
				return fmt.Errorf("unmerge %s:%s: %w", m.start, m.end, err)
			}
		}
	}

	firstScratch := l.Columns + 1
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	for r := 0; r < len(rows) && r < l.ScratchRows; r++ {
		for c := firstScratch - 1; c < len(rows[r]) && c < l.ScratchLastCol; c++ {
			if rows[r][c] == "" {
				continue
			}
			if err := w.f.SetCellValue(w.sheet, cellName(c+1, r+1), nil); err != nil {
				return fmt.Errorf("clear %s: %w", cellName(c+1, r+1), err)
			}
		}
	}

	// Style 0 carries no border and no fill.
	if err := w.f.SetCellStyle(w.sheet, cellName(firstScratch, 1), cellName(l.ScratchLastCol, l.ScratchRows), 0); err != nil {
		return fmt.Errorf("clear scratch styles: %w", err)
	}
	return nil
}

// unmergeDataRows splits every certificate-column merge touching the chemistry
// or mechanical blocks so each data cell can take its own value, then clears
// the blocks. A merge crossing a block edge keeps its value in its top-left
// cell outside the block.
func (w *sheetWriter) unmergeDataRows() error {
	l := w.layout
	merges, err := w.merges()
	if err != nil {
		return fmt.Errorf("read merges: %w", err)
	}
	overlaps := func(m mergeRange, first, last int) bool {
		return m.startRow <= last && m.endRow >= first
	}
	for _, m := range merges {
		if m.startCol > l.Columns {
			continue
		}
		if overlaps(m, l.ChemFirstRow, l.ChemLastRow) || overlaps(m, l.MechFirstRow, l.MechLastRow()) {
			if err := w.f.UnmergeCell(w.sheet, m.start, m.end); err != nil {
				return fmt.Errorf("unmerge %s:%s: %w", m.start, m.end, err)
			}
		}
	}

	w.clearRows(l.ChemFirstRow, l.ChemLastRow)
	w.clearRows(l.MechFirstRow, l.MechLastRow())
	return nil
}

// clearRows empties the certificate columns of rows first..last. A merge that
// starts above the block is left alone so headers are never wiped.
func (w *sheetWriter) clearRows(first, last int) {
	for r := first; r <= last; r++ {
		for c := 1; c <= w.layout.Columns; c++ {
			tl, _ := w.resolve(r, c)
			_, row, err := excelize.CellNameToCoordinates(tl)
			if err != nil || row < first || row > last {
				continue
			}
			if err := w.f.SetCellValue(w.sheet, tl, nil); err != nil {
				w.skip(tl, err)
			}
		}
	}
}

// ── Content ─────────────────────────────────────────────────────────────

// writeHeader prefixes each value with its label so the label survives even
// when the value is empty.
func (w *sheetWriter) writeHeader(p MTCPayload) {
	l := w.layout
	w.setValue(l.InvoiceCell.Row, l.InvoiceCell.Col, "Invoice No : "+p.InvoiceNo)
	w.setValue(l.QuantityCell.Row, l.QuantityCell.Col, "Despatch Quantity:  "+p.Qty)
	w.setValue(l.DateCell.Row, l.DateCell.Col, "Dispatch Date : "+p.Date)
	w.setValue(l.PartDetailsCell.Row, l.PartDetailsCell.Col, p.PartDetails)
}

func (w *sheetWriter) writeHeats(p MTCPayload) {
	l := w.layout
	w.writeStyled(l.HeatHeaderRow, l.Heat1Col, p.Heat1, "center", fillObservation)
	w.writeStyled(l.HeatHeaderRow, l.Heat2Col, p.Heat2, "center", fillObservation)
}

// writeChemistry places each visible item on its element's row, then hides
// every row of the block nobody claimed and shows every row that was claimed.
// Visibility is recomputed from scratch so template state never leaks through.
func (w *sheetWriter) writeChemistry(items []ChemistryItem) error {
	l := w.layout
	claimed := make(map[int]bool)
	for _, item := range items {
		if item.Hide {
			continue
		}
		row, ok := l.RowFor(item.Element)
		if !ok {
			log.Printf("mtc_excel: no template row for element %q", item.Element)
			continue
		}
		claimed[row] = true
		w.writeStyled(row, l.LabelCol, item.Element, "left", fillNone)
		w.writeStyled(row, l.SpecCol, item.Spec, "center", fillNone)
		w.writeStyled(row, l.Heat1Col, FormatObservation(item.Heat1Val), "center", fillObservation)
		w.writeStyled(row, l.Heat2Col, FormatObservation(item.Heat2Val), "center", fillObservation)
	}

	for r := l.ChemFirstRow; r <= l.ChemLastRow; r++ {
		if err := w.f.SetRowVisible(w.sheet, r, claimed[r]); err != nil {
			return fmt.Errorf("set row %d visibility: %w", r, err)
		}
	}
	return nil
}

// writeMechanical fills the fixed mechanical rows positionally. Mechanical
// results have a single observation, so both heat columns are merged into one
// cell per row.
func (w *sheetWriter) writeMechanical(items []MechanicalItem) error {
	l := w.layout
	visible := make([]MechanicalItem, 0, len(items))
	for _, m := range items {
		if !m.Hide {
			visible = append(visible, m)
		}
	}

	for i, item := range visible {
		if i >= l.MechRows {
			break
		}
		row := l.MechFirstRow + i
		from, to := cellName(l.Heat1Col, row), cellName(l.Heat2Col, row)
		if err := w.f.UnmergeCell(w.sheet, from, to); err != nil {
			return fmt.Errorf("unmerge %s:%s: %w", from, to, err)
		}
		if err := w.f.MergeCell(w.sheet, from, to); err != nil {
			return fmt.Errorf("merge %s:%s: %w", from, to, err)
		}
		w.writeStyled(row, l.LabelCol, item.Parameter, "left", fillNone)
		w.writeStyled(row, l.SpecCol, item.Spec, "center", fillNone)
		w.writeStyled(row, l.Heat1Col, item.Heat1Val, "center", fillObservation)
	}
	return nil
}

func (w *sheetWriter) writeConclusion(p MTCPayload) {
	w.writeStyled(w.layout.ConclusionRow, 1, ConclusionText(p), "left", fillNone)
}

// insertLogo adds the logo only to a sheet that has no pictures yet, so running
// the generator over its own output never stacks a second logo.
func (w *sheetWriter) insertLogo(logo []byte) error {
	cells, err := w.f.GetPictureCells(w.sheet)
	if err != nil {
		return fmt.Errorf("list pictures: %w", err)
	}
	if len(cells) > 0 || len(logo) == 0 {
		return nil
	}
	return w.f.AddPictureFromBytes(w.sheet, w.layout.LogoCell, &excelize.Picture{
		Extension: ".png",
		File:      logo,
		Format: &excelize.GraphicOptions{
			AltText:     "Logo",
			Positioning: "oneCell",
		},
	})
}

// loadLogo reads and scales the logo image. A missing or unreadable logo only
// means the certificate goes out without one.
func loadLogo(path string) []byte {
	if path == "" {
		return nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("mtc_excel: logo %s: %v", path, err)
		}
		return nil
	}
	return encodeLogo(img)
}

func encodeLogo(img image.Image) []byte {
	scaled := imaging.Resize(img, logoWidthPx, logoHeightPx, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		log.Printf("mtc_excel: encode logo: %v", err)
		return nil
	}
	return buf.Bytes()
}

// ── Page setup ──────────────────────────────────────────────────────────

// finalizePage fixes the printed page: print area, A4 portrait scaled to one
// page wide, centred, with a thick frame around the print area.
func (w *sheetWriter) finalizePage() error {
	l := w.layout
	first, _ := excelize.CoordinatesToCellName(1, 1, true)
	last, _ := excelize.CoordinatesToCellName(l.Columns, l.PrintRows, true)

	// A template may already carry a print area; replace it.
	_ = w.f.DeleteDefinedName(&excelize.DefinedName{Name: printAreaName, Scope: w.sheet})
	if err := w.f.SetDefinedName(&excelize.DefinedName{
		Name:     printAreaName,
		RefersTo: fmt.Sprintf("'%s'!%s:%s", w.sheet, first, last),
		Scope:    w.sheet,
	}); err != nil {
		return fmt.Errorf("set print area: %w", err)
	}

	size, orientation := a4PaperSize, "portrait"
	fitWidth, fitHeight := 1, 0
	if err := w.f.SetPageLayout(w.sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &fitWidth,
		FitToHeight: &fitHeight,
	}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}

	fitToPage := true
	if err := w.f.SetSheetProps(w.sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return fmt.Errorf("set fit to page: %w", err)
	}

	side, vertical := 0.25, 0.5
	centered := true
	if err := w.f.SetPageMargins(w.sheet, &excelize.PageLayoutMarginsOptions{
		Left:         &side,
		Right:        &side,
		Top:          &vertical,
		Bottom:       &vertical,
		Horizontally: &centered,
	}); err != nil {
		return fmt.Errorf("set page margins: %w", err)
	}

	return w.traceOuterBorder()
}

// traceOuterBorder draws a thick line along the outside of the print area. Each
// edge cell keeps its other three border sides.
func (w *sheetWriter) traceOuterBorder() error {
	l := w.layout
	for c := 1; c <= l.Columns; c++ {
		if err := w.thickenSide(1, c, "top"); err != nil {
			return err
		}
		if err := w.thickenSide(l.PrintRows, c, "bottom"); err != nil {
			return err
		}
	}
	for r := 1; r <= l.PrintRows; r++ {
		if err := w.thickenSide(r, 1, "left"); err != nil {
			return err
		}
		if err := w.thickenSide(r, l.Columns, "right"); err != nil {
			return err
		}
	}
	return nil
}

var borderSides = map[string]int{"left": 0, "top": 1, "right": 2, "bottom": 3}

func (w *sheetWriter) thickenSide(row, col int, side string) error {
	cell := cellName(col, row)
	base, err := w.f.GetCellStyle(w.sheet, cell)
	if err != nil {
		return fmt.Errorf("read style %s: %w", cell, err)
	}
	key := [2]int{base, borderSides[side]}
	id, ok := w.borders[key]
	if !ok {
		st, err := w.f.GetStyle(base)
		if err != nil {
			return fmt.Errorf("load style %d: %w", base, err)
		}
		kept := make([]excelize.Border, 0, len(st.Border)+1)
		for _, b := range st.Border {
			if b.Type != side {
				kept = append(kept, b)
			}
		}
		st.Border = append(kept, excelize.Border{Type: side, Color: "#000000", Style: thickBorder})
		if id, err = w.f.NewStyle(st); err != nil {
			return fmt.Errorf("create border style: %w", err)
		}
		w.borders[key] = id
	}
	return w.f.SetCellStyle(w.sheet, cell, cell, id)
}
