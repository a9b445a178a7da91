package mapping

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stock-reconciliation-service/internal/models"
)

// SQLiteStore is a file-backed Store. Use ":memory:" as the path for
// an ephemeral database in tests.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and migrates) a mapping database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate mapping database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS name_mappings (
		key TEXT PRIMARY KEY,
		truncated_name TEXT NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		added_at TEXT NOT NULL
	);`

	_, err := s.db.Exec(schema)
	return err
}

// Get looks up a mapping by truncated name, case-insensitively
func (s *SQLiteStore) Get(ctx context.Context, truncatedName string) (*models.ProductNameMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT truncated_name, product_id, product_name, added_at
		 FROM name_mappings WHERE key = ?`, Key(truncatedName))

	var m models.ProductNameMapping
	var addedAt string
	err := row.Scan(&m.TruncatedName, &m.FullProductID, &m.FullProductName, &addedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping for '%s': %w", truncatedName, err)
	}

	if t, perr := time.Parse(time.RFC3339Nano, addedAt); perr == nil {
		m.AddedAt = t
	}

	return &m, nil
}

// Put upserts a mapping; a later confirmation for the same truncated
// name overwrites the earlier one.
func (s *SQLiteStore) Put(ctx context.Context, truncatedName, productID, productName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO name_mappings (key, truncated_name, product_id, product_name, added_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			truncated_name = excluded.truncated_name,
			product_id = excluded.product_id,
			product_name = excluded.product_name,
			added_at = excluded.added_at`,
		Key(truncatedName),
		strings.TrimSpace(truncatedName),
		productID,
		productName,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store mapping for '%s': %w", truncatedName, err)
	}

	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
