package workbook

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSalesSheetModernFormat(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Summary", rows: [][]interface{}{
			{"Outlet", "Outlet A"},
			{"Production Date", "10/11/2025"},
		}},
		{name: "Sales", rows: [][]interface{}{
			{"Daily Sales"},
			{"Product Name", "Unit", "Price", "Qty Sold"},
			{"Chocolate Cake", "whole", "25.00", "5"},
			{"Espresso", "cup", "3.50", "12"},
		}},
	})

	sheet, err := ParseSalesSheet(w, nil)
	if err != nil {
		t.Fatalf("ParseSalesSheet failed: %v", err)
	}

	if sheet.Outlet != "Outlet A" {
		t.Errorf("Expected outlet 'Outlet A', got %q", sheet.Outlet)
	}
	if sheet.Date != "2025-11-10" {
		t.Errorf("Expected date 2025-11-10, got %q", sheet.Date)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(sheet.Rows))
	}
	if sheet.Rows[0].Name != "Chocolate Cake" || !sheet.Rows[0].Sold.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected first row: %+v", sheet.Rows[0])
	}
	if sheet.Rows[1].Unit != "cup" {
		t.Errorf("Expected unit 'cup', got %q", sheet.Rows[1].Unit)
	}
}

func TestParseSalesSheetLegacyFormat(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Report", rows: [][]interface{}{
			{"Daily Sales"},
			{"Shop:", "Outlet B"},
			{"Day:", "Date From 03/11/2025 To 03/11/2025"},
			{},
			{"Chocolate Cake", "whole", "25.00", "5"},
			{"Espresso", "cup", "3.50", "12"},
		}},
	})

	sheet, err := ParseSalesSheet(w, nil)
	if err != nil {
		t.Fatalf("ParseSalesSheet failed: %v", err)
	}

	if sheet.Outlet != "Outlet B" {
		t.Errorf("Expected outlet 'Outlet B', got %q", sheet.Outlet)
	}
	if sheet.Date != "2025-11-03" {
		t.Errorf("Expected embedded date 2025-11-03, got %q", sheet.Date)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(sheet.Rows))
	}
	if !sheet.Rows[1].Sold.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Expected sold 12, got %v", sheet.Rows[1].Sold)
	}
}

func TestParseSalesSheetAccumulatesRowErrors(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Summary", rows: [][]interface{}{
			{"Outlet", "Outlet A"},
			{"Date", "10/11/2025"},
		}},
		{name: "Sales", rows: [][]interface{}{
			{"Product Name", "Unit", "Price", "Qty Sold"},
			{"Chocolate Cake", "whole", "25.00", "five"},
			{"Espresso", "cup", "3.50", "12"},
		}},
	})

	sheet, err := ParseSalesSheet(w, nil)
	if err != nil {
		t.Fatalf("Expected row errors to accumulate, not abort: %v", err)
	}

	if len(sheet.Rows) != 1 {
		t.Errorf("Expected 1 good row, got %d", len(sheet.Rows))
	}
	if len(sheet.Errors) != 1 {
		t.Fatalf("Expected 1 row error, got %d", len(sheet.Errors))
	}
	if !strings.Contains(sheet.Errors[0], "Chocolate Cake") {
		t.Errorf("Expected error to name the product, got %q", sheet.Errors[0])
	}
}

func TestParseSalesSheetMissingDate(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Sales", rows: [][]interface{}{
			{"Daily Sales"},
			{"Shop:", "Outlet A"},
			{"Day:", "not a date"},
			{"Chocolate Cake", "whole", "25.00", "5"},
		}},
	})

	if _, err := ParseSalesSheet(w, nil); err == nil {
		t.Fatal("Expected error for unresolvable report date")
	}
}

func TestParseSalesSheetMissingOutlet(t *testing.T) {
	w := buildWorkbook(t, []sheetFixture{
		{name: "Sales", rows: [][]interface{}{
			{"Daily Sales"},
			{},
			{"Day:", "10/11/2025"},
			{"Chocolate Cake", "whole", "25.00", "5"},
		}},
	})

	if _, err := ParseSalesSheet(w, nil); err == nil {
		t.Fatal("Expected error for missing outlet")
	}
}
