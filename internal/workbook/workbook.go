// Package workbook reads the XLSX exports produced by the upstream
// point-of-sale and kitchen systems and locates the relevant data
// region inside sheets whose exact layout is not guaranteed.
//
// More than one unrelated export format feeds this engine, so region
// location is a set of independent strategies selected by cheap
// probes: a "Summary" key/value sheet, fixed metadata cells, a scanned
// header row, or a column addressed by outlet name. See locator.go.
package workbook

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "stock-reconciliation-service/pkg/errors"
)

// Workbook wraps an open XLSX file.
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path. An unreadable file or a workbook
// with zero sheets is a hard error; nothing can be reconciled from it.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileUnreadable, path, err)
	}
	return wrap(f, path)
}

// OpenReader opens a workbook from an in-memory byte stream.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileUnreadable, "(reader)", err)
	}
	return wrap(f, "(reader)")
}

func wrap(f *excelize.File, path string) (*Workbook, error) {
	if len(f.GetSheetList()) == 0 {
		f.Close()
		return nil, apperrors.FileError(apperrors.CodeWorkbookEmpty, path, nil)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the underlying file
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets returns the sheet names in workbook order
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// SheetNamed finds a sheet whose name equals or contains the given
// name, case-insensitively. Returns "" when no sheet matches.
func (w *Workbook) SheetNamed(name string) string {
	want := strings.ToLower(strings.TrimSpace(name))

	for _, sheet := range w.file.GetSheetList() {
		if strings.ToLower(strings.TrimSpace(sheet)) == want {
			return sheet
		}
	}
	for _, sheet := range w.file.GetSheetList() {
		if strings.Contains(strings.ToLower(sheet), want) {
			return sheet
		}
	}
	return ""
}

// FirstSheetExcept returns the first sheet whose name is not in the
// excluded set; used to find the data sheet next to a Summary sheet.
func (w *Workbook) FirstSheetExcept(excluded ...string) string {
	for _, sheet := range w.file.GetSheetList() {
		skip := false
		for _, ex := range excluded {
			if strings.EqualFold(strings.TrimSpace(sheet), strings.TrimSpace(ex)) {
				skip = true
				break
			}
		}
		if !skip {
			return sheet
		}
	}
	return ""
}

// Rows returns all rows of a sheet as display strings.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, sheet, 0, "", "", err)
	}
	return rows, nil
}

// Cell returns the display value at a 0-based column/row position.
// Out-of-range positions read as empty, matching how spreadsheet
// formats omit trailing empty cells.
func Cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// IsEmptyRow reports whether every cell of the row is blank
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
