package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/roach88/smartinvoice/internal/record"
)

// GetAll returns every record in the named object store in key order.
// Runs in a read-only transaction so the result reflects one committed state.
func (d *DB) GetAll(ctx context.Context, storeName string) ([]record.Record, error) {
	if _, err := d.keyPath(storeName); err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("get all: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT key_type, key_num, key_text, value
		FROM %s
		ORDER BY key_type ASC, key_num ASC, key_text ASC
	`, tableName(storeName)))
	if err != nil {
		return nil, fmt.Errorf("get all: query: %w", err)
	}
	defer rows.Close()

	type entry struct {
		key record.Key
		rec record.Record
	}
	var entries []entry
	for rows.Next() {
		var (
			kt    int
			kn    float64
			ks    string
			value string
		)
		if err := rows.Scan(&kt, &kn, &ks, &value); err != nil {
			return nil, fmt.Errorf("get all: scan: %w", err)
		}
		k, err := keyFromColumns(kt, kn, ks)
		if err != nil {
			return nil, fmt.Errorf("get all: %w", err)
		}
		rec, err := unmarshalRecord(value)
		if err != nil {
			return nil, fmt.Errorf("get all: key %s: %w", k, err)
		}
		entries = append(entries, entry{key: k, rec: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get all: rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("get all: commit: %w", err)
	}

	// SQLite orders text by UTF-8 bytes; re-sort strings by UTF-16 code units.
	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.key.Compare(b.key)
	})

	recs := make([]record.Record, len(entries))
	for i, e := range entries {
		recs[i] = e.rec
	}
	return recs, nil
}
