// Package reporter serializes reconciliation results back into an
// XLSX workbook: a "Summary" sheet with the run's parameters and a
// "Discrepancies" sheet where the discrepancy column is a live
// formula over the other columns and non-zero discrepancies are
// highlighted.
package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/reconciler"
)

const (
	summarySheet       = "Summary"
	discrepanciesSheet = "Discrepancies"
)

// Config holds report generation options.
type Config struct {
	// IncludeSplitUnits adds the per-variant audit rows beneath each
	// aggregated primary row.
	IncludeSplitUnits bool `json:"include_split_units"`

	// IncludeErrors appends the accumulated row errors to the summary.
	IncludeErrors bool `json:"include_errors"`
}

// DefaultConfig returns the default report configuration
func DefaultConfig() *Config {
	return &Config{
		IncludeSplitUnits: true,
		IncludeErrors:     true,
	}
}

// Exporter writes reconciliation results as XLSX workbooks.
type Exporter struct {
	config *Config
}

// NewExporter creates an exporter with the given configuration
func NewExporter(config *Config) *Exporter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Exporter{config: config}
}

// Export writes the sales reconciliation result to an XLSX file
func (e *Exporter) Export(result *reconciler.SalesResult, path string) error {
	f, err := e.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", path, err)
	}
	return nil
}

// Write streams the sales reconciliation result as XLSX bytes
func (e *Exporter) Write(result *reconciler.SalesResult, w io.Writer) error {
	f, err := e.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (e *Exporter) build(result *reconciler.SalesResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := e.writeSummary(f, result); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeDiscrepancies(f, result); err != nil {
		f.Close()
		return nil, err
	}

	// Drop excelize's default sheet so Summary leads the workbook.
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}

	return f, nil
}

func (e *Exporter) writeSummary(f *excelize.File, result *reconciler.SalesResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	resolved := 0
	needsMapping := 0
	for _, row := range result.Rows {
		if row.IsResolved() {
			resolved++
		}
		if row.NeedsMapping {
			needsMapping++
		}
	}

	fields := [][2]interface{}{
		{"Field", "Value"},
		{"Outlet", result.Outlet},
		{"Report Date", result.Date},
		{"Rows", len(result.Rows)},
		{"Resolved", resolved},
		{"Needs Confirmation", needsMapping},
		{"Errors", len(result.Errors)},
		{"Generated At", time.Now().Format("2006-01-02 15:04:05")},
	}

	for i, field := range fields {
		rowNo := i + 1
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", rowNo), field[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", rowNo), field[1])
	}

	if e.config.IncludeErrors {
		start := len(fields) + 2
		for i, msg := range result.Errors {
			f.SetCellValue(summarySheet, fmt.Sprintf("A%d", start+i), msg)
		}
	}

	return nil
}

func (e *Exporter) writeDiscrepancies(f *excelize.File, result *reconciler.SalesResult) error {
	if _, err := f.NewSheet(discrepanciesSheet); err != nil {
		return fmt.Errorf("failed to create discrepancies sheet: %w", err)
	}

	headers := []string{"Product", "Unit", "Sold", "Opening", "Received",
		"Wastage", "Closing", "Expected Closing", "Discrepancy", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(discrepanciesSheet, cell, h)
	}

	highlight, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Font: &excelize.Font{Color: "9C0006"},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	rowNo := 2
	for _, row := range result.Rows {
		e.writeRow(f, rowNo, row, highlight)
		rowNo++

		if e.config.IncludeSplitUnits {
			for _, bu := range row.SplitUnits {
				e.writeSplitUnitRow(f, rowNo, row.Name, bu)
				rowNo++
			}
		}
	}

	return nil
}

func (e *Exporter) writeRow(f *excelize.File, rowNo int, row models.ReconciledRow, highlight int) {
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("A%d", rowNo), row.Name)
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("B%d", rowNo), row.Unit)

	if !row.IsResolved() {
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("J%d", rowNo), row.Notes)
		return
	}

	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("C%d", rowNo), row.Sold.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("D%d", rowNo), row.Opening.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("E%d", rowNo), row.Received.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("F%d", rowNo), row.Wastage.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("G%d", rowNo), row.Closing.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("H%d", rowNo), row.ExpectedClosing.InexactFloat64())

	// The discrepancy stays a formula so the workbook remains
	// auditable when a reviewer edits the inputs.
	f.SetCellFormula(discrepanciesSheet, fmt.Sprintf("I%d", rowNo),
		fmt.Sprintf("D%d+E%d-C%d-G%d-F%d", rowNo, rowNo, rowNo, rowNo, rowNo))

	if !row.Discrepancy.IsZero() {
		f.SetCellStyle(discrepanciesSheet,
			fmt.Sprintf("A%d", rowNo), fmt.Sprintf("I%d", rowNo), highlight)
	}

	if row.Notes != "" {
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("J%d", rowNo), row.Notes)
	}
}

func (e *Exporter) writeSplitUnitRow(f *excelize.File, rowNo int, name string, bu models.UnitBreakdown) {
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("A%d", rowNo), fmt.Sprintf("  %s (%s)", name, bu.Unit))
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("B%d", rowNo), bu.Unit)
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("C%d", rowNo), bu.Sold.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("D%d", rowNo), bu.Opening.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("E%d", rowNo), bu.Received.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("F%d", rowNo), bu.Wastage.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("G%d", rowNo), bu.Closing.InexactFloat64())
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("H%d", rowNo), bu.ExpectedClosing.InexactFloat64())
	f.SetCellFormula(discrepanciesSheet, fmt.Sprintf("I%d", rowNo),
		fmt.Sprintf("D%d+E%d-C%d-G%d-F%d", rowNo, rowNo, rowNo, rowNo, rowNo))
	f.SetCellValue(discrepanciesSheet, fmt.Sprintf("J%d", rowNo), "unit variant (unconverted)")
}

// ExportKitchen writes a kitchen reconciliation result to an XLSX file
func (e *Exporter) ExportKitchen(result *reconciler.KitchenResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(discrepanciesSheet); err != nil {
		return fmt.Errorf("failed to create discrepancies sheet: %w", err)
	}

	headers := []string{"Product", "Unit", "Kitchen Production", "Opening", "Received", "Discrepancy", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(discrepanciesSheet, cell, h)
	}

	highlight, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Font: &excelize.Font{Color: "9C0006"},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	for i, row := range result.Rows {
		rowNo := i + 2
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("A%d", rowNo), row.Name)
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("B%d", rowNo), row.Unit)

		if row.Discrepancy == nil {
			f.SetCellValue(discrepanciesSheet, fmt.Sprintf("G%d", rowNo), row.Notes)
			continue
		}

		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("C%d", rowNo), row.KitchenProduction.InexactFloat64())
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("D%d", rowNo), row.OpeningStock.InexactFloat64())
		f.SetCellValue(discrepanciesSheet, fmt.Sprintf("E%d", rowNo), row.ReceivedStock.InexactFloat64())
		f.SetCellFormula(discrepanciesSheet, fmt.Sprintf("F%d", rowNo),
			fmt.Sprintf("C%d-D%d-E%d", rowNo, rowNo, rowNo))

		if !row.Discrepancy.IsZero() {
			f.SetCellStyle(discrepanciesSheet,
				fmt.Sprintf("A%d", rowNo), fmt.Sprintf("F%d", rowNo), highlight)
		}
		if row.Notes != "" {
			f.SetCellValue(discrepanciesSheet, fmt.Sprintf("G%d", rowNo), row.Notes)
		}
	}

	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", path, err)
	}
	return nil
}
