// Package models defines the domain types shared by the stock
// reconciliation engine: the product catalog, daily stock checks,
// unit conversions, recipes, and the reconciliation output rows.
//
// All quantities use decimal.Decimal. Optional stock figures
// (opening, received, wastage) are pointers so that "not counted"
// is distinguishable from zero.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies a catalog product.
type ProductType string

const (
	// ProductTypeMenu is a sellable menu item.
	ProductTypeMenu ProductType = "menu"
	// ProductTypeRaw is a raw material consumed by recipes.
	ProductTypeRaw ProductType = "raw"
	// ProductTypeKitchen is an item produced by the kitchen.
	ProductTypeKitchen ProductType = "kitchen"
)

// String returns the string representation of ProductType
func (p ProductType) String() string {
	return string(p)
}

// IsValid checks if the product type is one of the known values
func (p ProductType) IsValid() bool {
	return p == ProductTypeMenu || p == ProductTypeRaw || p == ProductTypeKitchen
}

// Product is an immutable catalog entry. Identity is ID; (Name, Unit)
// pairs are not unique because the same name may be sold in several
// unit variants (e.g. "Cake" as whole and as slice).
type Product struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Unit              string      `json:"unit"`
	Type              ProductType `json:"type"`
	Category          string      `json:"category,omitempty"`
	SalesBasedRawCalc bool        `json:"salesBasedRawCalc,omitempty"`
}

// Validate performs basic validation on the Product
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product ID cannot be empty")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name cannot be empty")
	}

	if !p.Type.IsValid() {
		return fmt.Errorf("invalid product type: %s", p.Type)
	}

	return nil
}

// String returns a string representation of the Product
func (p *Product) String() string {
	return fmt.Sprintf("Product{ID: %s, Name: %s, Unit: %s, Type: %s}",
		p.ID, p.Name, p.Unit, p.Type)
}

// StockCount is one product's counted figures within a StockCheck.
// Quantity is the counted closing stock.
type StockCount struct {
	ProductID     string           `json:"productId"`
	Quantity      decimal.Decimal  `json:"quantity"`
	OpeningStock  *decimal.Decimal `json:"openingStock,omitempty"`
	ReceivedStock *decimal.Decimal `json:"receivedStock,omitempty"`
	Wastage       *decimal.Decimal `json:"wastage,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// Opening returns the opening stock, treating a missing value as zero
func (sc *StockCount) Opening() decimal.Decimal {
	return derefOrZero(sc.OpeningStock)
}

// Received returns the received stock, treating a missing value as zero
func (sc *StockCount) Received() decimal.Decimal {
	return derefOrZero(sc.ReceivedStock)
}

// Wasted returns the wastage, treating a missing value as zero
func (sc *StockCount) Wasted() decimal.Decimal {
	return derefOrZero(sc.Wastage)
}

// StockCheck is the authoritative daily physical-count record for one
// outlet. The engine treats it as read-only.
type StockCheck struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"` // YYYY-MM-DD
	Outlet    string       `json:"outlet"`
	Timestamp time.Time    `json:"timestamp"`
	Counts    []StockCount `json:"counts"`
}

// Validate performs basic validation on the StockCheck
func (s *StockCheck) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("stock check ID cannot be empty")
	}

	if strings.TrimSpace(s.Outlet) == "" {
		return fmt.Errorf("stock check outlet cannot be empty")
	}

	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return fmt.Errorf("invalid stock check date '%s': %w", s.Date, err)
	}

	return nil
}

// CountFor returns the StockCount for the given product, or nil when
// the product was not counted in this check.
func (s *StockCheck) CountFor(productID string) *StockCount {
	for i := range s.Counts {
		if s.Counts[i].ProductID == productID {
			return &s.Counts[i]
		}
	}
	return nil
}

// String returns a string representation of the StockCheck
func (s *StockCheck) String() string {
	return fmt.Sprintf("StockCheck{ID: %s, Outlet: %s, Date: %s, Counts: %d}",
		s.ID, s.Outlet, s.Date, len(s.Counts))
}

// FindStockCheck returns the stock check matching the outlet
// (case-insensitive exact) and calendar date, or nil.
func FindStockCheck(checks []StockCheck, outlet, date string) *StockCheck {
	for i := range checks {
		if strings.EqualFold(strings.TrimSpace(checks[i].Outlet), strings.TrimSpace(outlet)) &&
			checks[i].Date == date {
			return &checks[i]
		}
	}
	return nil
}

// LatestCheckForOutlet returns the stock check with the greatest date
// for the outlet, used only to name the found date in mismatch errors.
func LatestCheckForOutlet(checks []StockCheck, outlet string) *StockCheck {
	var latest *StockCheck
	for i := range checks {
		if !strings.EqualFold(strings.TrimSpace(checks[i].Outlet), strings.TrimSpace(outlet)) {
			continue
		}
		if latest == nil || checks[i].Date > latest.Date {
			latest = &checks[i]
		}
	}
	return latest
}

// ProductConversion is a directed edge expressing one unit-variant's
// quantities in another variant's base unit. Edges are not chained
// transitively; only direct edges between variants are consulted.
type ProductConversion struct {
	FromProductID    string          `json:"fromProductId"`
	ToProductID      string          `json:"toProductId"`
	ConversionFactor decimal.Decimal `json:"conversionFactor"`
}

// RecipeComponent is one raw material requirement of a menu product.
type RecipeComponent struct {
	RawProductID    string          `json:"rawProductId"`
	QuantityPerUnit decimal.Decimal `json:"quantityPerUnit"`
}

// Recipe maps a menu product to its raw material components.
type Recipe struct {
	MenuProductID string            `json:"menuProductId"`
	Components    []RecipeComponent `json:"components"`
}

// ProductNameMapping is a persisted resolution of a truncated export
// name to a catalog product, created when a human confirms a fuzzy
// match or when the matcher auto-applies one. Keyed case-insensitively
// on TruncatedName; later confirmations overwrite earlier ones.
type ProductNameMapping struct {
	TruncatedName   string    `json:"truncatedName"`
	FullProductID   string    `json:"fullProductId"`
	FullProductName string    `json:"fullProductName"`
	AddedAt         time.Time `json:"addedAt"`
}

// MatchCandidate is one ranked catalog candidate for a free-text name.
type MatchCandidate struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Unit        string  `json:"unit"`
	Score       float64 `json:"score"`
}

// UnitBreakdown is the unconverted audit view of one unit-variant that
// was folded into a primary row during split-unit aggregation.
type UnitBreakdown struct {
	ProductID       string          `json:"productId"`
	Unit            string          `json:"unit"`
	Sold            decimal.Decimal `json:"sold"`
	Opening         decimal.Decimal `json:"opening"`
	Received        decimal.Decimal `json:"received"`
	Wastage         decimal.Decimal `json:"wastage"`
	Closing         decimal.Decimal `json:"closing"`
	ExpectedClosing decimal.Decimal `json:"expectedClosing"`
	Discrepancy     decimal.Decimal `json:"discrepancy"`
}

// ReconciledRow is one sales row's reconciliation output. Numeric
// fields are nil when the product could not be resolved; such rows are
// excluded from numeric totals and carry an explanation in Notes.
//
// For resolved rows the invariant
//
//	Discrepancy = Opening + Received - Sold - Closing - Wastage
//
// always holds, including after split-unit aggregation.
type ReconciledRow struct {
	Name            string           `json:"name"`
	Unit            string           `json:"unit"`
	Sold            *decimal.Decimal `json:"sold"`
	Opening         *decimal.Decimal `json:"opening"`
	Received        *decimal.Decimal `json:"received"`
	Wastage         *decimal.Decimal `json:"wastage"`
	Closing         *decimal.Decimal `json:"closing"`
	ExpectedClosing *decimal.Decimal `json:"expectedClosing"`
	Discrepancy     *decimal.Decimal `json:"discrepancy"`
	ProductID       string           `json:"productId,omitempty"`
	SplitUnits      []UnitBreakdown  `json:"splitUnits,omitempty"`
	NeedsMapping    bool             `json:"needsMapping,omitempty"`
	PossibleMatches []MatchCandidate `json:"possibleMatches,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// IsResolved reports whether the row was matched to a catalog product
func (r *ReconciledRow) IsResolved() bool {
	return r.ProductID != "" && r.Discrepancy != nil
}

// KitchenStockDiscrepancy is one product's kitchen reconciliation
// output: declared production compared against opening + received.
type KitchenStockDiscrepancy struct {
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	KitchenProduction *decimal.Decimal `json:"kitchenProduction"`
	OpeningStock      *decimal.Decimal `json:"openingStock"`
	ReceivedStock     *decimal.Decimal `json:"receivedStock"`
	Discrepancy       *decimal.Decimal `json:"discrepancy"`
	ProductID         string           `json:"productId,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// RawMaterialUsage is the implied consumption of one raw material
// derived from sold menu quantities via recipes.
type RawMaterialUsage struct {
	RawProductID string          `json:"rawProductId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Consumed     decimal.Decimal `json:"consumed"`
	Opening      decimal.Decimal `json:"opening"`
	Received     decimal.Decimal `json:"received"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
}

// ProductsByID builds an ID index over the catalog
func ProductsByID(products []Product) map[string]*Product {
	index := make(map[string]*Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}

// RecipesByMenuProduct builds a menu-product index over recipes
func RecipesByMenuProduct(recipes []Recipe) map[string]*Recipe {
	index := make(map[string]*Recipe, len(recipes))
	for i := range recipes {
		index[recipes[i].MenuProductID] = &recipes[i]
	}
	return index
}

// ParseDecimalFromString parses a decimal quantity from a spreadsheet
// cell value, tolerating thousand separators and surrounding space.
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("quantity string cannot be empty")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// DecimalPtr returns a pointer to d
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
