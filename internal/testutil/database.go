package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/retail-insights/internal/loader"
	"github.com/Veraticus/retail-insights/internal/storage"
)

// SetupTestStorage creates an in-memory storage with the dataset registered.
// The storage is closed automatically when the test finishes.
func SetupTestStorage(t *testing.T, dataset *loader.Dataset) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if dataset != nil {
		if err := store.RegisterDataset(context.Background(), dataset); err != nil {
			t.Fatalf("failed to register dataset: %v", err)
		}
	}

	return store
}
