package reconciler

import (
	"context"
	"fmt"

	"stock-reconciliation-service/internal/mapping"
	"stock-reconciliation-service/internal/matcher"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/workbook"
	"stock-reconciliation-service/pkg/logger"
)

// KitchenResult is the output of one kitchen production
// reconciliation run.
type KitchenResult struct {
	Outlet string
	Date   string
	Rows   []models.KitchenStockDiscrepancy
	Errors []string
}

// KitchenReconciler compares a production sheet's declared kitchen
// output against opening stock plus received stock in the same
// outlet's same-day stock check:
//
//	discrepancy = kitchenProduction - openingStock - receivedStock
type KitchenReconciler struct {
	resolver *Resolver
	log      logger.Logger
}

// NewKitchenReconciler creates a kitchen reconciler over the catalog.
// mappings may be nil.
func NewKitchenReconciler(catalog []models.Product, mappings mapping.Store, matcherConfig *matcher.Config) *KitchenReconciler {
	return &KitchenReconciler{
		resolver: NewResolver(catalog, mappings, matcherConfig),
		log:      logger.WithComponent("kitchen-reconciler"),
	}
}

// Reconcile reconciles the parsed production sheet against the stock
// check matching the sheet's outlet and date. The same outlet+date
// precondition applies as for sales: production and the day's stock
// check describe the same operating day, never the next one.
func (kr *KitchenReconciler) Reconcile(ctx context.Context, sheet *workbook.KitchenSheet,
	checks []models.StockCheck) (*KitchenResult, error) {

	check, err := requireStockCheck(checks, sheet.Outlet, sheet.Date, "kitchen reconciliation")
	if err != nil {
		return nil, err
	}

	result := &KitchenResult{
		Outlet: sheet.Outlet,
		Date:   sheet.Date,
		Errors: append([]string{}, sheet.Errors...),
	}

	resolved := 0
	for _, row := range sheet.Rows {
		out := models.KitchenStockDiscrepancy{
			Name: row.Name,
			Unit: row.Unit,
		}

		resolution := kr.resolver.Resolve(ctx, row.Name, row.Unit)
		if resolution.Product == nil {
			out.Notes = resolution.Note
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row.RowNumber, resolution.Note))
			result.Rows = append(result.Rows, out)
			continue
		}

		out.ProductID = resolution.Product.ID

		count := check.CountFor(resolution.Product.ID)
		if count == nil {
			out.Notes = fmt.Sprintf("product '%s' (%s) has no stock count in stock check %s dated %s",
				resolution.Product.Name, resolution.Product.ID, check.ID, check.Date)
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row.RowNumber, out.Notes))
			result.Rows = append(result.Rows, out)
			continue
		}

		opening := count.Opening()
		received := count.Received()
		discrepancy := row.Quantity.Sub(opening).Sub(received)

		out.KitchenProduction = models.DecimalPtr(row.Quantity)
		out.OpeningStock = models.DecimalPtr(opening)
		out.ReceivedStock = models.DecimalPtr(received)
		out.Discrepancy = models.DecimalPtr(discrepancy)

		resolved++
		result.Rows = append(result.Rows, out)
	}

	kr.log.WithFields(logger.Fields{
		"outlet":   sheet.Outlet,
		"date":     sheet.Date,
		"rows":     len(sheet.Rows),
		"resolved": resolved,
		"errors":   len(result.Errors),
	}).Info("kitchen reconciliation complete")

	return result, nil
}
