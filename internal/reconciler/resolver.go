// Package reconciler reconstructs each product's daily stock flow
// (opening, received, sold, wastage, closing) from a parsed report
// sheet and the day's stock check, and reports the discrepancy between
// expected and actual closing stock.
//
// Row-level failures accumulate; only whole-batch preconditions (no
// stock check for the report's outlet and date) abort a run.
package reconciler

import (
	"context"
	"fmt"

	"stock-reconciliation-service/internal/mapping"
	"stock-reconciliation-service/internal/matcher"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/pkg/logger"
)

// Resolution is the outcome of resolving a free-text export name to a
// catalog product. Product is nil when the name stayed unresolved; a
// viable-but-uncertain match sets NeedsMapping with candidates for
// human disambiguation.
type Resolution struct {
	Product         *models.Product
	NeedsMapping    bool
	PossibleMatches []models.MatchCandidate
	Note            string
}

// Resolver resolves export names through the mapping cache first and
// the fuzzy matcher second. Auto-matches are persisted back into the
// cache so subsequent imports of the same truncated name skip
// matching entirely.
type Resolver struct {
	catalog       []models.Product
	byID          map[string]*models.Product
	mappings      mapping.Store
	matcherConfig *matcher.Config
	log           logger.Logger
}

// NewResolver creates a resolver over the catalog. mappings may be nil
// when no cache is available; resolution then always runs the matcher.
func NewResolver(catalog []models.Product, mappings mapping.Store, matcherConfig *matcher.Config) *Resolver {
	if matcherConfig == nil {
		matcherConfig = matcher.DefaultConfig()
	}

	return &Resolver{
		catalog:       catalog,
		byID:          models.ProductsByID(catalog),
		mappings:      mappings,
		matcherConfig: matcherConfig,
		log:           logger.WithComponent("resolver"),
	}
}

// Resolve resolves name to a catalog product, consulting the mapping
// cache before scoring. It never returns an error for a name that
// simply cannot be matched; that is a Resolution with a nil Product.
func (r *Resolver) Resolve(ctx context.Context, name, unitHint string) *Resolution {
	if m := r.cachedMapping(ctx, name); m != nil {
		product, ok := r.byID[m.FullProductID]
		if !ok {
			// A stale mapping points at a product that was renamed or
			// deleted. Treated as a matcher failure for this row.
			r.log.WithFields(logger.Fields{
				"name":       name,
				"product_id": m.FullProductID,
			}).Warn("stored mapping points at a missing product")
			return &Resolution{Note: fmt.Sprintf(
				"stored mapping for '%s' points at missing product '%s' (%s); re-confirm the match",
				name, m.FullProductName, m.FullProductID)}
		}
		return &Resolution{Product: product}
	}

	result := matcher.MatchProduct(name, unitHint, r.catalog, r.matcherConfig)

	switch result.Verdict {
	case matcher.VerdictAutoMatch:
		product := r.byID[result.Best.ProductID]
		r.persistMapping(ctx, name, product)
		return &Resolution{Product: product}

	case matcher.VerdictNeedsConfirmation:
		return &Resolution{
			NeedsMapping:    true,
			PossibleMatches: result.Candidates,
			Note: fmt.Sprintf("ambiguous match for '%s': best candidate '%s' scored %.0f, needs confirmation",
				name, result.Best.ProductName, result.Best.Score),
		}

	default:
		return &Resolution{Note: fmt.Sprintf("no catalog product matches '%s'", name)}
	}
}

// Confirm records a human-confirmed resolution in the mapping cache so
// repeat imports of truncatedName short-circuit the matcher.
func (r *Resolver) Confirm(ctx context.Context, truncatedName, productID string) error {
	product, ok := r.byID[productID]
	if !ok {
		return fmt.Errorf("cannot confirm mapping to unknown product '%s'", productID)
	}
	if r.mappings == nil {
		return fmt.Errorf("no mapping store configured")
	}
	return r.mappings.Put(ctx, truncatedName, product.ID, product.Name)
}

func (r *Resolver) cachedMapping(ctx context.Context, name string) *models.ProductNameMapping {
	if r.mappings == nil {
		return nil
	}

	m, err := r.mappings.Get(ctx, name)
	if err != nil {
		// A broken cache degrades to matching from scratch.
		r.log.WithError(err).WithField("name", name).Warn("mapping cache read failed")
		return nil
	}
	return m
}

func (r *Resolver) persistMapping(ctx context.Context, name string, product *models.Product) {
	if r.mappings == nil || product == nil {
		return
	}

	if err := r.mappings.Put(ctx, name, product.ID, product.Name); err != nil {
		r.log.WithError(err).WithFields(logger.Fields{
			"name":       name,
			"product_id": product.ID,
		}).Warn("failed to persist auto-matched mapping")
	}
}
