package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

const testSheet = "Sheet1"

// openWorkbook parses generated workbook bytes and closes the file when the
// test ends.
func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(testSheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s) error = %v", cell, err)
	}
	return v
}
