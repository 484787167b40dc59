package store

import (
	"context"
	"fmt"

	"github.com/roach88/smartinvoice/internal/record"
)

// Put inserts or replaces rec in the named object store, keyed by the
// store's key path. Returns the record's key once the transaction commits.
func (d *DB) Put(ctx context.Context, storeName string, rec record.Record) (record.Key, error) {
	keys, err := d.PutAll(ctx, storeName, []record.Record{rec})
	if err != nil {
		return record.Key{}, err
	}
	return keys[0], nil
}

// PutAll upserts every record in one transaction. Either all records are
// written or none are. Later records win over earlier ones with the same key.
func (d *DB) PutAll(ctx context.Context, storeName string, recs []record.Record) ([]record.Key, error) {
	kp, err := d.keyPath(storeName)
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}

	// Resolve keys and encode before touching the database
	keys := make([]record.Key, len(recs))
	values := make([]string, len(recs))
	for i, rec := range recs {
		k, err := rec.Key(kp)
		if err != nil {
			return nil, fmt.Errorf("put: record %d: %w", i, err)
		}
		v, err := marshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("put: record %d (key %s): %w", i, k, err)
		}
		keys[i] = k
		values[i] = v
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("put: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	query := fmt.Sprintf(`
		INSERT INTO %s (key_type, key_num, key_text, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key_type, key_num, key_text) DO UPDATE SET value = excluded.value
	`, tableName(storeName))

	for i, k := range keys {
		kt, kn, ks := keyColumns(k)
		if _, err := tx.ExecContext(ctx, query, kt, kn, ks, values[i]); err != nil {
			return nil, fmt.Errorf("put: key %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("put: commit: %w", err)
	}

	return keys, nil
}

// Delete removes the record with the given key. Deleting an absent key
// is not an error.
func (d *DB) Delete(ctx context.Context, storeName string, key record.Key) error {
	if _, err := d.keyPath(storeName); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete: begin tx: %w", err)
	}
	defer tx.Rollback()

	kt, kn, ks := keyColumns(key)
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE key_type = ? AND key_num = ? AND key_text = ?
	`, tableName(storeName)), kt, kn, ks)
	if err != nil {
		return fmt.Errorf("delete: key %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete: commit: %w", err)
	}
	return nil
}

// Clear removes every record from the named object store.
func (d *DB) Clear(ctx context.Context, storeName string) error {
	if _, err := d.keyPath(storeName); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, tableName(storeName))); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear: commit: %w", err)
	}
	return nil
}
