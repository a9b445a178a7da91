package reconciler

import (
	"testing"

	"stock-reconciliation-service/internal/models"
)

func testRecipes() []models.Recipe {
	return []models.Recipe{
		{
			MenuProductID: "P-CHOC",
			Components: []models.RecipeComponent{
				{RawProductID: "RAW-FLOUR", QuantityPerUnit: dec("0.5")},
			},
		},
	}
}

func resolvedRow(productID string, sold string) models.ReconciledRow {
	s := dec(sold)
	zero := dec("0")
	return models.ReconciledRow{
		ProductID:   productID,
		Sold:        &s,
		Discrepancy: &zero,
	}
}

func TestCalculateRawMaterialConsumption(t *testing.T) {
	check := testStockCheck()
	rows := []models.ReconciledRow{
		resolvedRow("P-CHOC", "4"),
	}

	usages := CalculateRawMaterialConsumption(testCatalog(), testRecipes(), rows, &check)
	if len(usages) != 1 {
		t.Fatalf("Expected 1 usage, got %d", len(usages))
	}

	flour := usages[0]
	if flour.RawProductID != "RAW-FLOUR" {
		t.Errorf("Expected RAW-FLOUR, got %s", flour.RawProductID)
	}
	if flour.Name != "Flour" || flour.Unit != "kg" {
		t.Errorf("Expected catalog name and unit, got %s/%s", flour.Name, flour.Unit)
	}
	// 4 sold * 0.5 per unit = 2 consumed
	if !flour.Consumed.Equal(dec("2")) {
		t.Errorf("Expected consumed 2, got %v", flour.Consumed)
	}
	// consumed 2 - opening 1 - received 0.5 = 0.5 unexplained
	if !flour.Discrepancy.Equal(dec("0.5")) {
		t.Errorf("Expected discrepancy 0.5, got %v", flour.Discrepancy)
	}
}

func TestCalculateRawMaterialConsumptionAccumulates(t *testing.T) {
	check := testStockCheck()
	rows := []models.ReconciledRow{
		resolvedRow("P-CHOC", "4"),
		resolvedRow("P-CHOC", "2"),
	}

	usages := CalculateRawMaterialConsumption(testCatalog(), testRecipes(), rows, &check)
	if len(usages) != 1 {
		t.Fatalf("Expected 1 usage, got %d", len(usages))
	}
	if !usages[0].Consumed.Equal(dec("3")) {
		t.Errorf("Expected accumulated consumption 3, got %v", usages[0].Consumed)
	}
}

func TestCalculateRawMaterialConsumptionSkipsUnflaggedProducts(t *testing.T) {
	check := testStockCheck()
	rows := []models.ReconciledRow{
		// Carrot Cake is not flagged for sales-based raw calculation
		resolvedRow("P-CARROT", "10"),
		// Unresolved rows carry no sold figure to consume
		{Name: "Mystery"},
	}

	usages := CalculateRawMaterialConsumption(testCatalog(), testRecipes(), rows, &check)
	if len(usages) != 0 {
		t.Errorf("Expected no usages, got %v", usages)
	}
}

func TestCalculateRawMaterialConsumptionWithoutCheck(t *testing.T) {
	rows := []models.ReconciledRow{
		resolvedRow("P-CHOC", "4"),
	}

	usages := CalculateRawMaterialConsumption(testCatalog(), testRecipes(), rows, nil)
	if len(usages) != 1 {
		t.Fatalf("Expected 1 usage, got %d", len(usages))
	}
	// No stock figures: the whole consumption is the discrepancy
	if !usages[0].Discrepancy.Equal(dec("2")) {
		t.Errorf("Expected discrepancy 2, got %v", usages[0].Discrepancy)
	}
}
