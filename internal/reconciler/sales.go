package reconciler

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stock-reconciliation-service/internal/mapping"
	"stock-reconciliation-service/internal/matcher"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/workbook"
	apperrors "stock-reconciliation-service/pkg/errors"
	"stock-reconciliation-service/pkg/logger"
)

// SalesResult is the output of one sales reconciliation run. Rows
// holds every report line, resolved or not; Errors accumulates the
// row-level failures that excluded lines from numeric totals.
type SalesResult struct {
	Outlet string
	Date   string
	Rows   []models.ReconciledRow
	Errors []string
}

// SalesReconciler reconciles a daily sales report against the day's
// stock check.
type SalesReconciler struct {
	catalog     []models.Product
	byID        map[string]*models.Product
	conversions []models.ProductConversion
	resolver    *Resolver
	log         logger.Logger
}

// NewSalesReconciler creates a sales reconciler over the catalog and
// its unit-conversion edges. mappings may be nil.
func NewSalesReconciler(catalog []models.Product, conversions []models.ProductConversion,
	mappings mapping.Store, matcherConfig *matcher.Config) *SalesReconciler {

	return &SalesReconciler{
		catalog:     catalog,
		byID:        models.ProductsByID(catalog),
		conversions: conversions,
		resolver:    NewResolver(catalog, mappings, matcherConfig),
		log:         logger.WithComponent("sales-reconciler"),
	}
}

// Resolver exposes the underlying resolver so callers can feed
// confirmed mappings back after human disambiguation.
func (sr *SalesReconciler) Resolver() *Resolver {
	return sr.resolver
}

// Reconcile reconciles the parsed sales sheet against the stock check
// matching the sheet's outlet and date.
//
// extraReceived carries received quantities settled outside the stock
// check (transfer-request reconciliation), keyed by product ID; they
// are added to each product's received figure before the discrepancy
// is computed.
//
// The outlet+date stock check is a hard precondition: with no check
// for that outlet the run fails with stock_check_not_found, and with a
// check for the outlet on a different date it fails with a DATE
// MISMATCH error naming both dates. The engine never guesses a nearby
// date.
func (sr *SalesReconciler) Reconcile(ctx context.Context, sheet *workbook.SalesSheet,
	checks []models.StockCheck, extraReceived map[string]decimal.Decimal) (*SalesResult, error) {

	check, err := requireStockCheck(checks, sheet.Outlet, sheet.Date, "sales reconciliation")
	if err != nil {
		return nil, err
	}

	result := &SalesResult{
		Outlet: sheet.Outlet,
		Date:   sheet.Date,
		Errors: append([]string{}, sheet.Errors...),
	}

	resolved := 0
	for _, row := range sheet.Rows {
		out := sr.reconcileRow(ctx, row, check, extraReceived)
		if out.IsResolved() {
			resolved++
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row.RowNumber, out.Notes))
		}
		result.Rows = append(result.Rows, out)
	}

	sr.log.WithFields(logger.Fields{
		"outlet":   sheet.Outlet,
		"date":     sheet.Date,
		"rows":     len(sheet.Rows),
		"resolved": resolved,
		"errors":   len(result.Errors),
	}).Info("sales reconciliation complete")

	return result, nil
}

func (sr *SalesReconciler) reconcileRow(ctx context.Context, row workbook.SalesRow,
	check *models.StockCheck, extraReceived map[string]decimal.Decimal) models.ReconciledRow {

	out := models.ReconciledRow{
		Name: row.Name,
		Unit: row.Unit,
	}

	resolution := sr.resolver.Resolve(ctx, row.Name, row.Unit)
	if resolution.Product == nil {
		out.Notes = resolution.Note
		out.NeedsMapping = resolution.NeedsMapping
		out.PossibleMatches = resolution.PossibleMatches
		return out
	}

	product := resolution.Product
	out.ProductID = product.ID

	count := check.CountFor(product.ID)
	if count == nil {
		out.Notes = fmt.Sprintf("product '%s' (%s) has no stock count in stock check %s dated %s",
			product.Name, product.ID, check.ID, check.Date)
		return out
	}

	opening := count.Opening()
	received := count.Received()
	wastage := count.Wasted()
	closing := count.Quantity

	if extra, ok := extraReceived[product.ID]; ok {
		received = received.Add(extra)
	}

	// Fold unit-variants of the same name into the primary row's
	// figures before the discrepancy is computed. Only the sold row's
	// own variant carries sales.
	for _, variant := range sr.unitVariants(product) {
		factor, ok := sr.conversionToPrimary(variant.ID, product.ID)
		if !ok {
			continue
		}

		variantCount := check.CountFor(variant.ID)
		if variantCount == nil {
			continue
		}

		vOpening := variantCount.Opening()
		vReceived := variantCount.Received()
		vWastage := variantCount.Wasted()
		vClosing := variantCount.Quantity
		vExpected := vOpening.Add(vReceived).Sub(vWastage)

		out.SplitUnits = append(out.SplitUnits, models.UnitBreakdown{
			ProductID:       variant.ID,
			Unit:            variant.Unit,
			Sold:            decimal.Zero,
			Opening:         vOpening,
			Received:        vReceived,
			Wastage:         vWastage,
			Closing:         vClosing,
			ExpectedClosing: vExpected,
			Discrepancy:     vExpected.Sub(vClosing),
		})

		opening = opening.Add(vOpening.Mul(factor))
		received = received.Add(vReceived.Mul(factor))
		wastage = wastage.Add(vWastage.Mul(factor))
		closing = closing.Add(vClosing.Mul(factor))
	}

	sold := row.Sold
	expected := opening.Add(received).Sub(sold).Sub(wastage)
	discrepancy := expected.Sub(closing)

	out.Sold = models.DecimalPtr(sold)
	out.Opening = models.DecimalPtr(opening)
	out.Received = models.DecimalPtr(received)
	out.Wastage = models.DecimalPtr(wastage)
	out.Closing = models.DecimalPtr(closing)
	out.ExpectedClosing = models.DecimalPtr(expected)
	out.Discrepancy = models.DecimalPtr(discrepancy)

	return out
}

// unitVariants returns catalog products sharing the primary product's
// name (normalized) in a different unit.
func (sr *SalesReconciler) unitVariants(primary *models.Product) []*models.Product {
	want := matcher.Normalize(primary.Name)

	var variants []*models.Product
	for i := range sr.catalog {
		p := &sr.catalog[i]
		if p.ID == primary.ID {
			continue
		}
		if matcher.Normalize(p.Name) == want {
			variants = append(variants, p)
		}
	}
	return variants
}

// conversionToPrimary returns the factor that expresses one unit of
// the variant in primary units. A forward edge (variant -> primary)
// multiplies directly; only the reverse edge's factor is inverted.
// Edges are never chained.
func (sr *SalesReconciler) conversionToPrimary(variantID, primaryID string) (decimal.Decimal, bool) {
	for _, conv := range sr.conversions {
		if conv.FromProductID == variantID && conv.ToProductID == primaryID {
			return conv.ConversionFactor, true
		}
	}
	for _, conv := range sr.conversions {
		if conv.FromProductID == primaryID && conv.ToProductID == variantID {
			if conv.ConversionFactor.IsZero() {
				return decimal.Zero, false
			}
			return decimal.NewFromInt(1).Div(conv.ConversionFactor), true
		}
	}
	return decimal.Zero, false
}

// requireStockCheck enforces the outlet+date precondition shared by
// the sales and kitchen reconcilers.
func requireStockCheck(checks []models.StockCheck, outlet, date, operation string) (*models.StockCheck, error) {
	if check := models.FindStockCheck(checks, outlet, date); check != nil {
		return check, nil
	}

	if latest := models.LatestCheckForOutlet(checks, outlet); latest != nil {
		return nil, apperrors.ReconciliationError(apperrors.CodeDateMismatch,
			fmt.Sprintf("%s for outlet '%s': report is dated %s but the stock check found is dated %s",
				operation, outlet, date, latest.Date), nil).
			WithContext("report_date", date).
			WithContext("stock_check_date", latest.Date)
	}

	return nil, apperrors.ReconciliationError(apperrors.CodeStockCheckNotFound,
		fmt.Sprintf("%s for outlet '%s' on %s", operation, outlet, date), nil).
		WithContext("outlet", outlet).
		WithContext("report_date", date)
}
