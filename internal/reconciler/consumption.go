package reconciler

import (
	"sort"

	"github.com/shopspring/decimal"

	"stock-reconciliation-service/internal/models"
)

// CalculateRawMaterialConsumption derives the raw-material consumption
// implied by sold menu quantities via recipes, for resolved rows whose
// product is flagged for sales-based raw calculation.
//
// The discrepancy here compares consumption against supply only:
//
//	discrepancy = consumed - openingStock - receivedStock
//
// There is no closing or wastage term; kitchen raw materials are not
// counted to a closing balance. Products without the flag or without a
// recipe are silently excluded.
func CalculateRawMaterialConsumption(catalog []models.Product, recipes []models.Recipe,
	rows []models.ReconciledRow, check *models.StockCheck) []models.RawMaterialUsage {

	byID := models.ProductsByID(catalog)
	recipeIndex := models.RecipesByMenuProduct(recipes)

	consumed := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if !row.IsResolved() || row.Sold == nil {
			continue
		}

		product, ok := byID[row.ProductID]
		if !ok || !product.SalesBasedRawCalc {
			continue
		}

		recipe, ok := recipeIndex[product.ID]
		if !ok {
			continue
		}

		for _, component := range recipe.Components {
			consumed[component.RawProductID] = consumed[component.RawProductID].
				Add(row.Sold.Mul(component.QuantityPerUnit))
		}
	}

	usages := make([]models.RawMaterialUsage, 0, len(consumed))
	for rawID, qty := range consumed {
		usage := models.RawMaterialUsage{
			RawProductID: rawID,
			Consumed:     qty,
		}

		if raw, ok := byID[rawID]; ok {
			usage.Name = raw.Name
			usage.Unit = raw.Unit
		}

		if check != nil {
			if count := check.CountFor(rawID); count != nil {
				usage.Opening = count.Opening()
				usage.Received = count.Received()
			}
		}

		usage.Discrepancy = usage.Consumed.Sub(usage.Opening).Sub(usage.Received)
		usages = append(usages, usage)
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Name != usages[j].Name {
			return usages[i].Name < usages[j].Name
		}
		return usages[i].RawProductID < usages[j].RawProductID
	})

	return usages
}
