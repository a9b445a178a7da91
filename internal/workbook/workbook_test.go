package workbook

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetFixture describes one sheet of an in-memory test workbook.
type sheetFixture struct {
	name string
	rows [][]interface{}
}

// buildWorkbook writes the fixture sheets to an XLSX byte stream and
// reopens it through the package API, so tests exercise the same path
// as real files.
func buildWorkbook(t *testing.T, sheets []sheetFixture) *Workbook {
	t.Helper()

	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			f.SetSheetName("Sheet1", s.name)
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				t.Fatalf("Failed to create sheet %s: %v", s.name, err)
			}
		}
		for r := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(s.name, cell, &s.rows[r]); err != nil {
				t.Fatalf("Failed to write row %d of %s: %v", r+1, s.name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}
	f.Close()

	w, err := OpenReader(buf)
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestSheetNamed(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Summary"},
		{name: "Daily Discrepancies"},
	})

	if got := w.SheetNamed("summary"); got != "Summary" {
		t.Errorf("Expected exact case-insensitive match, got %q", got)
	}
	if got := w.SheetNamed("Discrepancies"); got != "Daily Discrepancies" {
		t.Errorf("Expected substring match, got %q", got)
	}
	if got := w.SheetNamed("Inventory"); got != "" {
		t.Errorf("Expected no match, got %q", got)
	}
}

func TestFirstSheetExcept(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Summary"},
		{name: "Sales Data"},
	})

	if got := w.FirstSheetExcept("Summary"); got != "Sales Data" {
		t.Errorf("Expected 'Sales Data', got %q", got)
	}
	if got := w.FirstSheetExcept("Summary", "Sales Data"); got != "" {
		t.Errorf("Expected no sheet left, got %q", got)
	}
}

func TestCellBounds(t *testing.T) {
	rows := [][]string{
		{"a", "b"},
		{"c"},
	}

	if got := Cell(rows, 0, 1); got != "b" {
		t.Errorf("Expected 'b', got %q", got)
	}
	if got := Cell(rows, 1, 5); got != "" {
		t.Errorf("Expected empty for out-of-range column, got %q", got)
	}
	if got := Cell(rows, 9, 0); got != "" {
		t.Errorf("Expected empty for out-of-range row, got %q", got)
	}
	if got := Cell(rows, -1, 0); got != "" {
		t.Errorf("Expected empty for negative row, got %q", got)
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("Expected whitespace-only row to be empty")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("Expected row with content to be non-empty")
	}
	if !IsEmptyRow(nil) {
		t.Error("Expected nil row to be empty")
	}
}
