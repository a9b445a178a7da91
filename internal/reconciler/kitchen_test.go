package reconciler

import (
	"context"
	"strings"
	"testing"

	"stock-reconciliation-service/internal/mapping"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/workbook"
	apperrors "stock-reconciliation-service/pkg/errors"
)

func kitchenCatalog() []models.Product {
	return []models.Product{
		{ID: "K-CROIS", Name: "Croissant", Unit: "pcs", Type: models.ProductTypeKitchen},
		{ID: "K-BAG", Name: "Baguette", Unit: "pcs", Type: models.ProductTypeKitchen},
	}
}

func kitchenStockCheck() models.StockCheck {
	return models.StockCheck{
		ID:     "SC010",
		Date:   "2025-11-03",
		Outlet: "Central Kitchen",
		Counts: []models.StockCount{
			{
				ProductID:     "K-CROIS",
				Quantity:      dec("0"),
				OpeningStock:  models.DecimalPtr(dec("4")),
				ReceivedStock: models.DecimalPtr(dec("20")),
			},
			{
				ProductID:    "K-BAG",
				Quantity:     dec("0"),
				OpeningStock: models.DecimalPtr(dec("2")),
			},
		},
	}
}

func TestKitchenReconcile(t *testing.T) {
	sheet := &workbook.KitchenSheet{
		Outlet: "Central Kitchen",
		Date:   "2025-11-03",
		Rows: []workbook.ProductionRow{
			{RowNumber: 2, Name: "Croissant", Unit: "pcs", Quantity: dec("24")},
			{RowNumber: 3, Name: "Baguette", Unit: "pcs", Quantity: dec("5")},
		},
	}

	rec := NewKitchenReconciler(kitchenCatalog(), mapping.NewMemoryStore(), nil)
	result, err := rec.Reconcile(context.Background(), sheet, []models.StockCheck{kitchenStockCheck()})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(result.Rows))
	}

	// production 24 - opening 4 - received 20 = 0: declared output fully
	// accounted for
	croissant := result.Rows[0]
	if croissant.Discrepancy == nil || !croissant.Discrepancy.IsZero() {
		t.Errorf("Expected zero croissant discrepancy, got %v", croissant.Discrepancy)
	}

	// production 5 - opening 2 - received 0 = 3 unexplained
	baguette := result.Rows[1]
	if baguette.Discrepancy == nil || !baguette.Discrepancy.Equal(dec("3")) {
		t.Errorf("Expected baguette discrepancy 3, got %v", baguette.Discrepancy)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
}

func TestKitchenReconcileUnresolvedRow(t *testing.T) {
	sheet := &workbook.KitchenSheet{
		Outlet: "Central Kitchen",
		Date:   "2025-11-03",
		Rows: []workbook.ProductionRow{
			{RowNumber: 2, Name: "Unknown Pastry", Unit: "pcs", Quantity: dec("3")},
			{RowNumber: 3, Name: "Croissant", Unit: "pcs", Quantity: dec("24")},
		},
	}

	rec := NewKitchenReconciler(kitchenCatalog(), mapping.NewMemoryStore(), nil)
	result, err := rec.Reconcile(context.Background(), sheet, []models.StockCheck{kitchenStockCheck()})
	if err != nil {
		t.Fatalf("Expected row failure to accumulate, not abort: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("Expected both rows present, got %d", len(result.Rows))
	}
	if result.Rows[0].Discrepancy != nil {
		t.Error("Expected unresolved row to carry no figures")
	}
	if result.Rows[1].Discrepancy == nil {
		t.Error("Expected second row to still reconcile")
	}
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %v", result.Errors)
	}
}

func TestKitchenReconcileDateMismatch(t *testing.T) {
	sheet := &workbook.KitchenSheet{
		Outlet: "Central Kitchen",
		Date:   "2025-11-04",
	}

	rec := NewKitchenReconciler(kitchenCatalog(), mapping.NewMemoryStore(), nil)
	_, err := rec.Reconcile(context.Background(), sheet, []models.StockCheck{kitchenStockCheck()})
	if err == nil {
		t.Fatal("Expected date mismatch error")
	}

	recErr, ok := apperrors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected ReconcilerError, got %T", err)
	}
	if recErr.Code != apperrors.CodeDateMismatch {
		t.Errorf("Expected date_mismatch code, got %s", recErr.Code)
	}
	if !strings.Contains(recErr.Message, "2025-11-04") || !strings.Contains(recErr.Message, "2025-11-03") {
		t.Errorf("Expected both dates in message, got %q", recErr.Message)
	}
}
