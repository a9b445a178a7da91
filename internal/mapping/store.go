// Package mapping persists confirmed truncated-name to product
// resolutions so repeat imports of the same export name skip fuzzy
// matching and re-confirmation.
//
// The cache is a single logical key-value store keyed by
// "mapping:" + lowercased truncated name. Mappings never expire and
// are never invalidated automatically; a stale mapping that points at
// a product no longer in the catalog is the resolver's problem, not
// the store's.
//
// Two implementations are provided: MemoryStore for tests and
// embedding callers, and SQLiteStore for durable file-backed caching.
// Writers follow last-writer-wins semantics; concurrent imports are
// tolerated but not coordinated.
package mapping

import (
	"context"
	"strings"
	"sync"
	"time"

	"stock-reconciliation-service/internal/models"
)

// KeyPrefix namespaces mapping entries in the underlying store.
const KeyPrefix = "mapping:"

// Store is the minimal key-value contract the engine needs. Get
// returns (nil, nil) on a miss; Put upserts, overwriting any prior
// mapping for the same truncated name.
type Store interface {
	Get(ctx context.Context, truncatedName string) (*models.ProductNameMapping, error)
	Put(ctx context.Context, truncatedName, productID, productName string) error
	Close() error
}

// Key returns the store key for a truncated name
func Key(truncatedName string) string {
	return KeyPrefix + strings.ToLower(strings.TrimSpace(truncatedName))
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]models.ProductNameMapping
}

// NewMemoryStore creates an empty in-memory mapping store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[string]models.ProductNameMapping),
	}
}

// Get looks up a mapping by truncated name, case-insensitively
func (s *MemoryStore) Get(_ context.Context, truncatedName string) (*models.ProductNameMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mappings[Key(truncatedName)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// Put upserts a mapping, overwriting any prior entry for the name
func (s *MemoryStore) Put(_ context.Context, truncatedName, productID, productName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[Key(truncatedName)] = models.ProductNameMapping{
		TruncatedName:   strings.TrimSpace(truncatedName),
		FullProductID:   productID,
		FullProductName: productName,
		AddedAt:         time.Now().UTC(),
	}
	return nil
}

// Len returns the number of stored mappings
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mappings)
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
