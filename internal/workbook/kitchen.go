package workbook

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock-reconciliation-service/internal/dates"
	"stock-reconciliation-service/internal/models"
	apperrors "stock-reconciliation-service/pkg/errors"
)

// KitchenParserConfig controls how a kitchen production workbook is
// parsed. Two unrelated formats exist: the modern export with an
// explicit "Discrepancies" sheet and header row, and the legacy
// export that addresses outlets by column.
type KitchenParserConfig struct {
	// ProductionSheetName names the modern sheet ("Discrepancies").
	ProductionSheetName string

	// QuantityHeaderTokens identify the production-quantity column in
	// a scanned header row.
	QuantityHeaderTokens []string

	// FallbackQuantityColumn is used when the modern sheet's header
	// row is found but carries no recognizable quantity token.
	FallbackQuantityColumn int

	// Legacy layout positions (0-based).
	LegacyOutletRow     int
	LegacyDateRow       int
	LegacyDateCol       int
	LegacyProductColumn int
	LegacyUnitColumn    int
}

// DefaultKitchenParserConfig returns the production kitchen parser configuration
func DefaultKitchenParserConfig() *KitchenParserConfig {
	return &KitchenParserConfig{
		ProductionSheetName:    "Discrepancies",
		QuantityHeaderTokens:   []string{"production", "produced", "kitchen", "output"},
		FallbackQuantityColumn: 4, // column E in the modern export
		LegacyOutletRow:        1, // row 2: outlet names across columns
		LegacyDateRow:          0, LegacyDateCol: 1, // B1
		LegacyProductColumn: 0,
		LegacyUnitColumn:    1,
	}
}

// ProductionRow is one declared kitchen output line.
type ProductionRow struct {
	RowNumber int
	Name      string
	Unit      string
	Quantity  decimal.Decimal
}

// KitchenSheet is a parsed kitchen production report for one outlet
// and operating date.
type KitchenSheet struct {
	Outlet string
	Date   string // YYYY-MM-DD
	Rows   []ProductionRow
	Errors []string
}

// ParseKitchenSheet extracts declared kitchen production for the
// target outlet. The modern "Discrepancies" layout is probed first;
// when absent, the legacy column-by-outlet layout is used, which
// requires finding targetOutlet's column in the outlet row.
func ParseKitchenSheet(w *Workbook, targetOutlet string, config *KitchenParserConfig) (*KitchenSheet, error) {
	if config == nil {
		config = DefaultKitchenParserConfig()
	}

	if sheetName := w.SheetNamed(config.ProductionSheetName); sheetName != "" {
		return parseModernKitchenSheet(w, sheetName, targetOutlet, config)
	}

	return parseLegacyKitchenSheet(w, targetOutlet, config)
}

func parseModernKitchenSheet(w *Workbook, sheetName, targetOutlet string, config *KitchenParserConfig) (*KitchenSheet, error) {
	rows, err := w.Rows(sheetName)
	if err != nil {
		return nil, err
	}

	sheet := &KitchenSheet{Outlet: targetOutlet}

	if fields := SummaryFields(w); fields != nil {
		if outlet, ok := LookupField(fields, "outlet", "branch"); ok {
			sheet.Outlet = outlet
		}
		if rawDate, ok := LookupField(fields, "production date", "date"); ok {
			if normalized, ok := dates.Normalize(rawDate); ok {
				sheet.Date = normalized
			}
		}
	}

	if sheet.Date == "" {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidDate, "production date", "", nil)
	}

	headerIdx, cols, found := FindHeaderRow(rows, config.QuantityHeaderTokens)
	if !found {
		// Header row may exist with an unrecognized quantity caption;
		// retry on product+unit alone and take the fixed fallback
		// column for quantity.
		headerIdx, cols, found = FindHeaderRow(rows, nil)
		if !found {
			return nil, apperrors.ParseError(apperrors.CodeRegionNotFound, sheetName, 0, "", "", nil)
		}
		cols.Quantity = config.FallbackQuantityColumn
	}

	collectProductionRows(rows, headerIdx+1, cols, sheet)
	return sheet, nil
}

func parseLegacyKitchenSheet(w *Workbook, targetOutlet string, config *KitchenParserConfig) (*KitchenSheet, error) {
	dataSheet := w.FirstSheetExcept("Summary")
	rows, err := w.Rows(dataSheet)
	if err != nil {
		return nil, err
	}

	sheet := &KitchenSheet{Outlet: targetOutlet}

	rawDate := Cell(rows, config.LegacyDateRow, config.LegacyDateCol)
	if normalized, ok := dates.Normalize(rawDate); ok {
		sheet.Date = normalized
	} else if normalized, ok := dates.ExtractEmbedded(rawDate); ok {
		sheet.Date = normalized
	} else {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidDate, "production date", rawDate, nil)
	}

	quantityCol, found := FindOutletColumn(rows, config.LegacyOutletRow, targetOutlet)
	if !found {
		return nil, apperrors.ParseError(apperrors.CodeRegionNotFound, dataSheet, config.LegacyOutletRow+1,
			"", targetOutlet, nil).
			WithSuggestion(fmt.Sprintf("no column headed '%s' found in the outlet row", targetOutlet))
	}

	cols := HeaderColumns{
		Product:  config.LegacyProductColumn,
		Unit:     config.LegacyUnitColumn,
		Quantity: quantityCol,
	}
	collectProductionRows(rows, config.LegacyOutletRow+1, cols, sheet)
	return sheet, nil
}

func collectProductionRows(rows [][]string, start int, cols HeaderColumns, sheet *KitchenSheet) {
	DataRows(rows, start, func(idx int, row []string) {
		name := Cell(rows, idx, cols.Product)
		if name == "" {
			return
		}

		qtyRaw := Cell(rows, idx, cols.Quantity)
		if qtyRaw == "" {
			// A blank production cell means this outlet produced none
			// of the item; not an error.
			return
		}

		qty, err := models.ParseDecimalFromString(qtyRaw)
		if err != nil {
			sheet.Errors = append(sheet.Errors, fmt.Sprintf(
				"row %d ('%s'): invalid production quantity '%s'", idx+1, name, qtyRaw))
			return
		}

		sheet.Rows = append(sheet.Rows, ProductionRow{
			RowNumber: idx + 1,
			Name:      name,
			Unit:      Cell(rows, idx, cols.Unit),
			Quantity:  qty,
		})
	})
}
