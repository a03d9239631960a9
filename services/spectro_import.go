package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// SpectroDecoder turns the raw bytes of a spectrometer export into a dataset.
// A decoder that cannot read the content, or reads no data rows, returns an
// error so the next decoder can try.
type SpectroDecoder interface {
	Name() string
	Decode(content []byte) (Dataset, error)
}

// SpectroDecoders is the order decoders are tried in. Machines routinely save
// CSV under an .xlsx name, so the file extension is never trusted.
var SpectroDecoders = []SpectroDecoder{
	xlsxDecoder{},
	xlsDecoder{},
	xlsbDecoder{},
	csvDecoder{name: "csv", comma: ','},
	csvDecoder{name: "csv;", comma: ';'},
}

// EngineFailure is one decoder's reason for rejecting the content.
type EngineFailure struct {
	Engine string `json:"engine"`
	Err    string `json:"error"`
}

// DecodeError is returned when no decoder could read the content.
type DecodeError struct {
	MIME     string
	Failures []EngineFailure
}

func (e *DecodeError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Engine + ": " + f.Err
	}
	return fmt.Sprintf("failed to parse file with any engine (detected %s). Engines tried: %s",
		e.MIME, strings.Join(parts, ", "))
}

var errNoRows = errors.New("no data rows")

// DecodeSpectroReport runs the decoder chain and returns the first non-empty
// dataset along with the name of the decoder that produced it.
func DecodeSpectroReport(content []byte) (Dataset, string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return Dataset{}, "", &DecodeError{MIME: "empty", Failures: []EngineFailure{{Engine: "all", Err: "the uploaded file appears to be empty"}}}
	}

	derr := &DecodeError{MIME: mimetype.Detect(content).String()}
	for _, d := range SpectroDecoders {
		ds, err := safeDecode(d, content)
		if err == nil && len(ds.Rows) == 0 {
			err = errNoRows
		}
		if err != nil {
			derr.Failures = append(derr.Failures, EngineFailure{Engine: d.Name(), Err: err.Error()})
			continue
		}
		return ds, d.Name(), nil
	}
	return Dataset{}, "", derr
}

// safeDecode shields the chain from decoders that panic on malformed input.
func safeDecode(d SpectroDecoder, content []byte) (ds Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder crashed: %v", r)
		}
	}()
	return d.Decode(content)
}

// ── Decoders ────────────────────────────────────────────────────────────

type xlsxDecoder struct{}

func (xlsxDecoder) Name() string { return "xlsx" }

// Decode reads the first sheet; the first row holds the headers.
func (xlsxDecoder) Decode(content []byte) (Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read sheet: %w", err)
	}
	return tableToDataset(rows)
}

type xlsDecoder struct{}

func (xlsDecoder) Name() string { return "xls" }

// Decode reads legacy BIFF workbooks.
func (xlsDecoder) Decode(content []byte) (Dataset, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open XLS file: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Dataset{}, errors.New("workbook has no sheets")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return tableToDataset(rows)
}

type xlsbDecoder struct{}

func (xlsbDecoder) Name() string { return "xlsb" }

// Decode only recognises binary workbooks; there is no reader for them, so a
// match is reported as an explicit failure instead of falling through to CSV
// noise.
func (xlsbDecoder) Decode(content []byte) (Dataset, error) {
	if !isZipFamily(mimetype.Detect(content)) || !bytes.Contains(content, []byte("xl/workbook.bin")) {
		return Dataset{}, errors.New("not a binary workbook")
	}
	return Dataset{}, errors.New("binary .xlsb workbooks are not supported, save the export as .xlsx")
}

func isZipFamily(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

type csvDecoder struct {
	name  string
	comma rune
}

func (d csvDecoder) Name() string { return d.name }

func (d csvDecoder) Decode(content []byte) (Dataset, error) {
	if !looksLikeText(content) {
		return Dataset{}, errors.New("content is not text")
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.Comma = d.comma
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) > 0 && len(allRows[0]) < 2 {
		return Dataset{}, fmt.Errorf("only one column found with separator %q", d.comma)
	}
	return tableToDataset(allRows)
}

// looksLikeText accepts anything mimetype places under text/, including the
// more specific text/csv.
func looksLikeText(content []byte) bool {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// ── Table conversion ────────────────────────────────────────────────────

// tableToDataset treats the first row as headers. Blank headers are named by
// position, blank rows are dropped and short rows are padded with "". Numeric
// cells become float64.
func tableToDataset(rows [][]string) (Dataset, error) {
	if len(rows) < 2 {
		return Dataset{}, errNoRows
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h]++
			h = fmt.Sprintf("%s.%d", h, n)
		} else {
			seen[h] = 1
		}
		headers[i] = h
	}

	// Heat and sample codes stay text even when they look numeric.
	idCols := map[string]bool{}
	for _, c := range []string{FindHeatColumn(headers), FindSampleColumn(headers)} {
		if c != "" {
			idCols[c] = true
		}
	}

	ds := Dataset{Columns: headers, Rows: []Record{}}
	for _, raw := range rows[1:] {
		if isBlankRow(raw) {
			continue
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			cell := ""
			if i < len(raw) {
				cell = strings.TrimSpace(raw[i])
			}
			if idCols[h] {
				rec[h] = cell
			} else {
				rec[h] = coerceCell(cell)
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}
	if len(ds.Rows) == 0 {
		return Dataset{}, errNoRows
	}
	return ds, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// numericText accepts plain decimals and the exponent forms Excel stores small
// values in ("5.0000000000000001E-4", "1E-4"). "42E26" is not accepted.
var numericText = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$|^[+-]?(\d+\.\d*|\.\d+)[eE][+-]?\d+$|^[+-]?\d+[eE]-\d+$`)

// coerceCell types numeric text as float64. Codes such as "42E26", hex and
// values with leading zeros stay text.
func coerceCell(s string) any {
	if !numericText.MatchString(s) {
		return s
	}
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return s
	}
	if f, ok := toFloat(s); ok {
		return f
	}
	return s
}

// ── Analysis ────────────────────────────────────────────────────────────

// Grouping choices for AnalyzeOptions.DedupeBy.
const (
	DedupeNone   = ""
	DedupeHeat   = "heat"
	DedupeSample = "sample"
)

// AnalyzeOptions control the optional clean-up passes.
type AnalyzeOptions struct {
	CleanHeatSuffix bool
	DedupeBy        string
	// KeepPerGroup is how many records survive per group when deduplicating.
	KeepPerGroup int
}

// SpectroAnalysis is what the upload endpoint returns.
type SpectroAnalysis struct {
	Data      []Record `json:"data"`
	Columns   []string `json:"columns"`
	Heats     []string `json:"heats"`
	SampleIDs []string `json:"sample_ids"`
	Engine    string   `json:"engine"`
}

// AnalyzeSpectroReport decodes an export, renumbers it, adds CE% and lists the
// heats and sample ids found.
func AnalyzeSpectroReport(content []byte, opts AnalyzeOptions) (*SpectroAnalysis, error) {
	ds, engine, err := DecodeSpectroReport(content)
	if err != nil {
		return nil, err
	}

	ds = ComputeCE(Renumber(ds))
	heatCol := FindHeatColumn(ds.Columns)
	sampleCol := FindSampleColumn(ds.Columns)

	if opts.CleanHeatSuffix {
		ds = CleanHeatSuffix(ds, heatCol)
	}

	keep := opts.KeepPerGroup
	if keep <= 0 {
		keep = 2
	}
	switch opts.DedupeBy {
	case DedupeHeat:
		ds = KeepPerGroup(ds, heatCol, keep)
	case DedupeSample:
		ds = KeepPerGroup(ds, sampleCol, keep)
	case DedupeNone:
	default:
		return nil, fmt.Errorf("unknown dedupe mode %q", opts.DedupeBy)
	}

	return &SpectroAnalysis{
		Data:      ds.Rows,
		Columns:   ds.Columns,
		Heats:     DistinctHeats(ds, heatCol),
		SampleIDs: DistinctValues(ds, sampleCol),
		Engine:    engine,
	}, nil
}
