package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

var storeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// UpgradeTx is handed to an UpgradeFunc. It is only valid for the duration
// of the callback.
type UpgradeTx struct {
	ctx context.Context
	tx  *sql.Tx
}

// HasObjectStore reports whether an object store with the given name exists.
func (u *UpgradeTx) HasObjectStore(name string) (bool, error) {
	var count int
	err := u.tx.QueryRowContext(u.ctx,
		`SELECT COUNT(*) FROM object_stores WHERE name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has object store %q: %w", name, err)
	}
	return count > 0, nil
}

// CreateObjectStore creates an object store whose records are keyed by the
// attribute named keyPath. Creating a store that already exists fails with
// ErrObjectStoreExists; callers guard with HasObjectStore.
func (u *UpgradeTx) CreateObjectStore(name, keyPath string) error {
	if !storeNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidStoreName, name)
	}
	if keyPath == "" {
		return fmt.Errorf("create object store %q: key path is required", name)
	}

	exists, err := u.HasObjectStore(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", ErrObjectStoreExists, name)
	}

	if _, err := u.tx.ExecContext(u.ctx, fmt.Sprintf(`
		CREATE TABLE %s (
			key_type INTEGER NOT NULL,
			key_num  REAL    NOT NULL DEFAULT 0,
			key_text TEXT    NOT NULL DEFAULT '',
			value    TEXT    NOT NULL,
			PRIMARY KEY (key_type, key_num, key_text)
		) WITHOUT ROWID
	`, tableName(name))); err != nil {
		return fmt.Errorf("create object store %q: %w", name, err)
	}

	if _, err := u.tx.ExecContext(u.ctx,
		`INSERT INTO object_stores (name, key_path) VALUES (?, ?)`, name, keyPath,
	); err != nil {
		return fmt.Errorf("register object store %q: %w", name, err)
	}

	return nil
}

// tableName maps an object store name to its backing table.
// Names are validated against storeNamePattern before reaching SQL.
func tableName(name string) string {
	return "store_" + name
}

// runUpgrade compares the stored version with opts.Version and, when the
// stored one is lower, runs opts.Upgrade and bumps user_version in one
// transaction. The version is re-read inside the transaction so a
// concurrent opener that already upgraded is observed.
func runUpgrade(ctx context.Context, db *sql.DB, opts Options) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upgrade: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("upgrade: get user_version: %w", err)
	}

	if current > opts.Version {
		return fmt.Errorf("%w: stored %d, requested %d", ErrVersionConflict, current, opts.Version)
	}
	if current == opts.Version {
		return tx.Commit()
	}

	if opts.Upgrade != nil {
		if err := opts.Upgrade(&UpgradeTx{ctx: ctx, tx: tx}, current, opts.Version); err != nil {
			return fmt.Errorf("upgrade %d -> %d: %w", current, opts.Version, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", opts.Version)); err != nil {
		return fmt.Errorf("upgrade: set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upgrade: commit: %w", err)
	}
	return nil
}
