package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/smartinvoice/internal/record"
)

const testStore = "things"

// createIDStore is an UpgradeFunc that creates testStore keyed by "id" if absent.
func createIDStore(tx *UpgradeTx, _, _ int) error {
	exists, err := tx.HasObjectStore(testStore)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return tx.CreateObjectStore(testStore, "id")
}

// createTestDB opens a fresh database with testStore at version 1.
func createTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(context.Background(), path, Options{Version: 1, Upgrade: createIDStore})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// rec builds a record with a string id and an integer total.
func rec(id string, total int64) record.Record {
	return record.Record{"id": record.String(id), "total": record.Int(total)}
}
