package mapping

import (
	"context"
	"path/filepath"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Choc Cake", "mapping:choc cake"},
		{"  Choc Cake  ", "mapping:choc cake"},
		{"CHOC CAKE", "mapping:choc cake"},
	}

	for _, tt := range tests {
		if got := Key(tt.input); got != tt.expected {
			t.Errorf("Key(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	m, err := store.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m != nil {
		t.Errorf("Expected nil on miss, got %v", m)
	}
}

func TestMemoryStorePutAndGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Put(ctx, "Choc Cake", "P001", "Chocolate Cake"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Lookup is case-insensitive
	m, err := store.Get(ctx, "choc cake")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m == nil {
		t.Fatal("Expected mapping")
	}
	if m.FullProductID != "P001" {
		t.Errorf("Expected product P001, got %s", m.FullProductID)
	}
	if m.FullProductName != "Chocolate Cake" {
		t.Errorf("Expected name 'Chocolate Cake', got %s", m.FullProductName)
	}
	if m.AddedAt.IsZero() {
		t.Error("Expected AddedAt to be set")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	store.Put(ctx, "Choc Cake", "P001", "Chocolate Cake")
	store.Put(ctx, "choc cake", "P002", "Chocolate Cake Slice")

	m, err := store.Get(ctx, "Choc Cake")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.FullProductID != "P002" {
		t.Errorf("Expected later mapping P002 to win, got %s", m.FullProductID)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 entry after overwrite, got %d", store.Len())
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	m, err := store.Get(ctx, "unknown")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m != nil {
		t.Errorf("Expected nil on miss, got %v", m)
	}

	if err := store.Put(ctx, "Choc Cake", "P001", "Chocolate Cake"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	m, err = store.Get(ctx, "CHOC CAKE")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m == nil {
		t.Fatal("Expected mapping")
	}
	if m.FullProductID != "P001" {
		t.Errorf("Expected P001, got %s", m.FullProductID)
	}
	if m.TruncatedName != "Choc Cake" {
		t.Errorf("Expected original truncated name preserved, got %q", m.TruncatedName)
	}
	if m.AddedAt.IsZero() {
		t.Error("Expected AddedAt to be parsed")
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	store.Put(ctx, "Choc Cake", "P001", "Chocolate Cake")
	store.Put(ctx, "  choc cake ", "P002", "Chocolate Cake Slice")

	m, err := store.Get(ctx, "Choc Cake")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.FullProductID != "P002" {
		t.Errorf("Expected later mapping P002 to win, got %s", m.FullProductID)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Put(ctx, "Choc Cake", "P001", "Chocolate Cake"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	m, err := reopened.Get(ctx, "choc cake")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m == nil || m.FullProductID != "P001" {
		t.Fatalf("Expected persisted mapping, got %v", m)
	}
}
