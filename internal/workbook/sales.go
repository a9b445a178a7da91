package workbook

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock-reconciliation-service/internal/dates"
	"stock-reconciliation-service/internal/models"
	apperrors "stock-reconciliation-service/pkg/errors"
)

// SalesParserConfig controls how a daily sales report workbook is
// parsed. The defaults match the current export formats; fixed-cell
// positions cover the legacy export that carries no Summary sheet.
type SalesParserConfig struct {
	// SummaryDateFields are the summary-sheet field aliases probed for
	// the report date, in order.
	SummaryDateFields []string

	// SummaryOutletFields are the field aliases probed for the outlet.
	SummaryOutletFields []string

	// QuantityHeaderTokens identify the sold-quantity column in a
	// scanned header row.
	QuantityHeaderTokens []string

	// Fixed-cell fallbacks (0-based row/column) for exports without a
	// Summary sheet.
	OutletCellRow, OutletCellCol int
	DateCellRow, DateCellCol     int

	// Legacy fixed columns used when no header row is found.
	LegacyProductColumn  int
	LegacyUnitColumn     int
	LegacyQuantityColumn int
}

// DefaultSalesParserConfig returns the production sales parser configuration
func DefaultSalesParserConfig() *SalesParserConfig {
	return &SalesParserConfig{
		SummaryDateFields:    []string{"production date", "report date", "date"},
		SummaryOutletFields:  []string{"outlet", "branch", "location"},
		QuantityHeaderTokens: []string{"sold", "sales", "qty", "quantity"},
		OutletCellRow:        1, OutletCellCol: 1, // B2
		DateCellRow: 2, DateCellCol: 1, // B3
		LegacyProductColumn:  0,
		LegacyUnitColumn:     1,
		LegacyQuantityColumn: 3, // column D in the legacy export
	}
}

// SalesRow is one sold-item line from the report.
type SalesRow struct {
	RowNumber int // 1-based sheet row, for error messages
	Name      string
	Unit      string
	Sold      decimal.Decimal
}

// SalesSheet is a parsed daily sales report: the outlet and operating
// date the report describes plus its sold-item rows. Malformed rows
// are recorded in Errors and excluded from Rows.
type SalesSheet struct {
	Outlet string
	Date   string // YYYY-MM-DD
	Rows   []SalesRow
	Errors []string
}

// ParseSalesSheet extracts the sales data region from the workbook.
//
// Metadata resolution probes two strategies: a Summary key/value sheet
// first, then the fixed metadata cells of the legacy export. A report
// whose date cannot be normalized is a hard error; sales cannot be
// reconciled against an unknown operating day.
func ParseSalesSheet(w *Workbook, config *SalesParserConfig) (*SalesSheet, error) {
	if config == nil {
		config = DefaultSalesParserConfig()
	}

	sheet := &SalesSheet{}

	dataSheet := w.FirstSheetExcept("Summary")
	if dataSheet == "" {
		return nil, apperrors.ParseError(apperrors.CodeRegionNotFound, "Summary", 0, "", "", nil)
	}

	rows, err := w.Rows(dataSheet)
	if err != nil {
		return nil, err
	}

	if err := resolveSalesMetadata(w, rows, config, sheet); err != nil {
		return nil, err
	}

	headerIdx, cols, found := FindHeaderRow(rows, config.QuantityHeaderTokens)
	start := headerIdx + 1
	if !found {
		// Legacy layout: no recognizable header, fixed columns, data
		// from the first row that looks like a product line.
		cols = HeaderColumns{
			Product:  config.LegacyProductColumn,
			Unit:     config.LegacyUnitColumn,
			Quantity: config.LegacyQuantityColumn,
		}
		start = firstLegacyDataRow(rows, cols)
		if start < 0 {
			return nil, apperrors.ParseError(apperrors.CodeRegionNotFound, dataSheet, 0, "", "", nil)
		}
	}

	DataRows(rows, start, func(idx int, row []string) {
		name := Cell(rows, idx, cols.Product)
		if name == "" {
			return
		}

		qtyRaw := Cell(rows, idx, cols.Quantity)
		qty, qerr := models.ParseDecimalFromString(qtyRaw)
		if qerr != nil {
			sheet.Errors = append(sheet.Errors, fmt.Sprintf(
				"row %d ('%s'): invalid sold quantity '%s'", idx+1, name, qtyRaw))
			return
		}

		sheet.Rows = append(sheet.Rows, SalesRow{
			RowNumber: idx + 1,
			Name:      name,
			Unit:      Cell(rows, idx, cols.Unit),
			Sold:      qty,
		})
	})

	return sheet, nil
}

// resolveSalesMetadata fills Outlet and Date via the summary-sheet
// strategy, falling back to fixed cells.
func resolveSalesMetadata(w *Workbook, rows [][]string, config *SalesParserConfig, sheet *SalesSheet) error {
	if fields := SummaryFields(w); fields != nil {
		if outlet, ok := LookupField(fields, config.SummaryOutletFields...); ok {
			sheet.Outlet = outlet
		}
		if rawDate, ok := LookupField(fields, config.SummaryDateFields...); ok {
			if normalized, ok := dates.Normalize(rawDate); ok {
				sheet.Date = normalized
			}
		}
	}

	if sheet.Outlet == "" {
		sheet.Outlet = Cell(rows, config.OutletCellRow, config.OutletCellCol)
	}

	if sheet.Date == "" {
		raw := Cell(rows, config.DateCellRow, config.DateCellCol)
		if normalized, ok := dates.Normalize(raw); ok {
			sheet.Date = normalized
		} else if normalized, ok := dates.ExtractEmbedded(raw); ok {
			// "Date From 03/11/2025" style label cells.
			sheet.Date = normalized
		}
	}

	if sheet.Outlet == "" {
		return apperrors.ValidationError(apperrors.CodeMissingField, "outlet", "", nil)
	}
	if sheet.Date == "" {
		return apperrors.ValidationError(apperrors.CodeInvalidDate, "report date", "", nil)
	}

	return nil
}

// firstLegacyDataRow finds the first row carrying both a product name
// and a parseable quantity in the fixed legacy columns.
func firstLegacyDataRow(rows [][]string, cols HeaderColumns) int {
	for i := 0; i < len(rows); i++ {
		name := Cell(rows, i, cols.Product)
		if name == "" {
			continue
		}
		if _, err := models.ParseDecimalFromString(Cell(rows, i, cols.Quantity)); err == nil {
			return i
		}
	}
	return -1
}
