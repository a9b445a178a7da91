package workbook

import (
	"strings"
)

// Region location heuristics. Each strategy is independent; parsers
// probe for the formats they support instead of interleaving
// fallbacks inline.

const (
	// headerScanRows bounds the header-row scan; real exports place
	// the table header within the first screen of the sheet.
	headerScanRows = 30

	// outletScanColumns bounds the legacy column-by-outlet scan.
	outletScanColumns = 50

	// maxConsecutiveEmptyRows terminates data-row iteration. Trailing
	// formatting and stray cells are common, so end-of-data is ten
	// empty rows in a row, not the literal end of the sheet.
	maxConsecutiveEmptyRows = 10
)

// SummaryFields reads a "Summary" key/value sheet into a field map
// keyed by the lowercased field cell. Returns nil when the workbook
// has no summary sheet.
func SummaryFields(w *Workbook) map[string]string {
	sheet := w.SheetNamed("Summary")
	if sheet == "" {
		return nil
	}

	rows, err := w.Rows(sheet)
	if err != nil {
		return nil
	}

	fields := make(map[string]string)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(row[0]))
		value := strings.TrimSpace(row[1])
		if field == "" || value == "" {
			continue
		}
		fields[field] = value
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LookupField finds a summary field by case-insensitive substring,
// trying the given aliases in order ("production date", "date", ...).
func LookupField(fields map[string]string, aliases ...string) (string, bool) {
	for _, alias := range aliases {
		want := strings.ToLower(alias)
		for field, value := range fields {
			if strings.Contains(field, want) {
				return value, true
			}
		}
	}
	return "", false
}

// HeaderColumns are the resolved column indexes of a located header
// row. Optional columns are -1 when absent.
type HeaderColumns struct {
	Product  int
	Unit     int
	Quantity int
}

// FindHeaderRow scans the first rows of the sheet for a row that
// simultaneously carries product, unit and quantity header tokens.
// Column order is not assumed and extra columns are ignored. An empty
// quantityTokens list makes the quantity column optional; callers that
// use a fixed fallback column pass nil and get Quantity = -1 back.
func FindHeaderRow(rows [][]string, quantityTokens []string) (int, HeaderColumns, bool) {
	productTokens := []string{"product", "item", "menu"}
	unitTokens := []string{"unit", "uom"}

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		cols := HeaderColumns{Product: -1, Unit: -1, Quantity: -1}
		for j, cell := range rows[i] {
			header := strings.ToLower(strings.TrimSpace(cell))
			if header == "" {
				continue
			}
			switch {
			case cols.Product < 0 && containsAny(header, productTokens):
				cols.Product = j
			case cols.Unit < 0 && containsAny(header, unitTokens):
				cols.Unit = j
			case cols.Quantity < 0 && containsAny(header, quantityTokens):
				cols.Quantity = j
			}
		}
		if cols.Product >= 0 && cols.Unit >= 0 &&
			(cols.Quantity >= 0 || len(quantityTokens) == 0) {
			return i, cols, true
		}
	}

	return 0, HeaderColumns{}, false
}

// FindOutletColumn scans one fixed row for a cell whose text equals
// the target outlet name (case-insensitive); that column carries the
// quantity for every subsequent data row. Legacy kitchen exports
// address outlets this way instead of with a header token.
func FindOutletColumn(rows [][]string, rowIdx int, outlet string) (int, bool) {
	if rowIdx < 0 || rowIdx >= len(rows) {
		return 0, false
	}

	want := strings.ToLower(strings.TrimSpace(outlet))
	row := rows[rowIdx]

	limit := len(row)
	if limit > outletScanColumns {
		limit = outletScanColumns
	}

	for j := 0; j < limit; j++ {
		if strings.ToLower(strings.TrimSpace(row[j])) == want {
			return j, true
		}
	}
	return 0, false
}

// DataRows iterates rows from start, invoking fn with the 0-based row
// index, and stops after maxConsecutiveEmptyRows fully-empty rows.
func DataRows(rows [][]string, start int, fn func(idx int, row []string)) {
	emptyStreak := 0
	for i := start; i < len(rows); i++ {
		if IsEmptyRow(rows[i]) {
			emptyStreak++
			if emptyStreak >= maxConsecutiveEmptyRows {
				return
			}
			continue
		}
		emptyStreak = 0
		fn(i, rows[i])
	}
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
