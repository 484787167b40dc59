package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrInvalidVersion is returned when Open is asked for a version below 1.
	ErrInvalidVersion = errors.New("store: version must be >= 1")

	// ErrVersionConflict is returned when the file is already at a higher version.
	ErrVersionConflict = errors.New("store: database version is newer than requested")

	// ErrNoObjectStore is returned for operations on an unknown object store.
	ErrNoObjectStore = errors.New("store: object store not found")

	// ErrObjectStoreExists is returned when creating a store that already exists.
	ErrObjectStoreExists = errors.New("store: object store already exists")

	// ErrInvalidStoreName is returned for names that cannot be used as a table suffix.
	ErrInvalidStoreName = errors.New("store: invalid object store name")
)

// UpgradeFunc runs inside the upgrade transaction when the stored version
// (0 for a new file) is lower than the requested one.
type UpgradeFunc func(tx *UpgradeTx, oldVersion, newVersion int) error

// Options controls how a database is opened.
type Options struct {
	// Version is the schema version the caller expects. Must be >= 1.
	Version int

	// Upgrade creates or migrates object stores. May be nil.
	Upgrade UpgradeFunc
}

// DB is an open connection to a versioned object database.
// Safe for concurrent use; transactions are serialized on one connection.
type DB struct {
	db      *sql.DB
	path    string
	version int

	mu     sync.RWMutex
	stores map[string]string // object store name -> key path
}

// Open creates or opens the database file at path at the requested version.
// Applies pragmas, runs the upgrade callback if needed, and loads the
// object store catalog.
//
// Any failure closes the connection; no partially opened DB is returned.
func Open(ctx context.Context, path string, opts Options) (*DB, error) {
	if opts.Version < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidVersion, opts.Version)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := ensureCatalog(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	if err := runUpgrade(ctx, db, opts); err != nil {
		db.Close()
		return nil, err
	}

	stores, err := loadCatalog(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &DB{
		db:      db,
		path:    path,
		version: opts.Version,
		stores:  stores,
	}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Version returns the schema version the database was opened at.
func (d *DB) Version() int { return d.version }

// ObjectStoreNames returns the names of all object stores, sorted.
func (d *DB) ObjectStoreNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.stores))
	for name := range d.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// keyPath looks up the key path of an object store.
func (d *DB) keyPath(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	kp, ok := d.stores[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoObjectStore, name)
	}
	return kp, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// ensureCatalog creates the object store catalog table. Idempotent.
func ensureCatalog(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS object_stores (
			name     TEXT PRIMARY KEY,
			key_path TEXT NOT NULL
		)
	`)
	return err
}

// loadCatalog reads every registered object store.
func loadCatalog(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, key_path FROM object_stores`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make(map[string]string)
	for rows.Next() {
		var name, kp string
		if err := rows.Scan(&name, &kp); err != nil {
			return nil, err
		}
		stores[name] = kp
	}
	return stores, rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (d *DB) verifyPragma(name, expected string) error {
	var value string
	if err := d.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
