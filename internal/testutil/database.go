package testutil

import (
	"context"
	"testing"

	"syncmeta-go/internal/database"
)

// NewTestStore creates a new in-memory metadata store with a fresh schema and
// the default id offsets. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB, database.DefaultIDOffsets)
	t.Cleanup(func() {
		store.Close()
	})

	if err := store.CreateSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return store
}
