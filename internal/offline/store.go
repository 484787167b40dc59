package offline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	applog "github.com/roach88/smartinvoice/internal/log"
	"github.com/roach88/smartinvoice/internal/record"
	"github.com/roach88/smartinvoice/internal/store"
)

// Persisted layout.
const (
	DatabaseName  = "SmartInvoiceDB"
	SchemaVersion = 1
	StoreName     = "invoices"
	KeyPath       = "id"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to the "offline" component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the offline invoice store for one data directory.
//
// All methods are safe for concurrent use. The database handle is opened on
// first use and kept until Close.
type Store struct {
	dir     string
	version int
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	db    *store.DB
	gen   uint64 // bumped by Close; an open started earlier is discarded

	opens   atomic.Int64 // successful database opens
	creates atomic.Int64 // object store creations during upgrade
}

// New returns a store whose database lives in dataDir. Nothing is opened
// until the first operation.
func New(dataDir string, opts ...Option) *Store {
	s := &Store{
		dir:     dataDir,
		version: SchemaVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.WithComponent("offline")
	}
	return s
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DatabaseName+".sqlite")
}

// Close releases the cached handle. A later operation opens the database
// again. An open still in flight when Close runs is closed on completion
// and its waiters fail with StorageUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.gen++
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// handle returns the cached database handle, opening it if needed.
// Concurrent callers share one in-flight open. Failures are not cached.
func (s *Store) handle() (*store.DB, error) {
	if db := s.cached(); db != nil {
		return db, nil
	}

	v, err, _ := s.group.Do(DatabaseName, func() (any, error) {
		s.mu.RLock()
		db, gen := s.db, s.gen
		s.mu.RUnlock()
		// Another flight may have finished between cached() and Do.
		if db != nil {
			return db, nil
		}
		db, err := s.open()
		if err != nil {
			return nil, err
		}
		return s.install(db, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.DB), nil
}

// install caches db unless Close ran since gen was read, in which case db
// is closed instead.
func (s *Store) install(db *store.DB, gen uint64) (*store.DB, error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		db.Close()
		return nil, errClosedDuringOpen
	}
	s.db = db
	s.mu.Unlock()
	return db, nil
}

func (s *Store) cached() *store.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// open opens the database. It is not bound to any caller's context since
// every waiter in the flight shares its result.
func (s *Store) open() (*store.DB, error) {
	l := applog.WithOperation(s.logger, "open").With(slog.String("path", s.Path()))

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := store.Open(context.Background(), s.Path(), store.Options{
		Version: s.version,
		Upgrade: s.upgrade,
	})
	if err != nil {
		l.Error("open database failed", slog.Any("err", err))
		return nil, err
	}

	s.opens.Add(1)
	l.Info("database ready", slog.Int("version", db.Version()))
	return db, nil
}

// upgrade creates the invoices store if it does not exist yet.
func (s *Store) upgrade(tx *store.UpgradeTx, oldVersion, newVersion int) error {
	exists, err := tx.HasObjectStore(StoreName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := tx.CreateObjectStore(StoreName, KeyPath); err != nil {
		return err
	}
	s.creates.Add(1)
	s.logger.Info("created object store",
		slog.String("store", StoreName),
		slog.Int("from_version", oldVersion),
		slog.Int("to_version", newVersion),
	)
	return nil
}

// Save inserts or replaces an invoice, keyed by its id. It returns after
// the write transaction commits.
func (s *Store) Save(ctx context.Context, rec record.Record) error {
	const op = "save invoice"

	key, err := rec.Key(KeyPath)
	if err != nil {
		return newError(ErrPersistFailed, op, idText(rec), err)
	}
	id := key.String()

	db, err := s.handle()
	if err != nil {
		return newError(ErrPersistFailed, op, id, newError(ErrStorageUnavailable, "open database", "", err))
	}

	if _, err := db.Put(ctx, StoreName, rec); err != nil {
		s.logger.Error("save failed", slog.String("id", id), slog.Any("err", err))
		return newError(ErrPersistFailed, op, id, err)
	}

	s.logger.Debug("saved invoice", slog.String("id", id))
	return nil
}

// GetAll returns every stored invoice in key order. An empty store yields
// an empty, non-nil slice.
func (s *Store) GetAll(ctx context.Context) ([]record.Record, error) {
	const op = "get all invoices"

	db, err := s.handle()
	if err != nil {
		return nil, newError(ErrStorageUnavailable, op, "", err)
	}

	recs, err := db.GetAll(ctx, StoreName)
	if err != nil {
		s.logger.Error("read failed", slog.Any("err", err))
		return nil, newError(ErrReadFailed, op, "", err)
	}
	return recs, nil
}

// Delete removes the invoice with the given id. Deleting an id that is not
// stored succeeds.
func (s *Store) Delete(ctx context.Context, id record.Key) error {
	const op = "delete invoice"

	db, err := s.handle()
	if err != nil {
		return newError(ErrStorageUnavailable, op, id.String(), err)
	}

	if err := db.Delete(ctx, StoreName, id); err != nil {
		s.logger.Error("delete failed", slog.String("id", id.String()), slog.Any("err", err))
		return newError(ErrDeleteFailed, op, id.String(), err)
	}

	s.logger.Debug("deleted invoice", slog.String("id", id.String()))
	return nil
}

// Clear removes every stored invoice in one transaction.
func (s *Store) Clear(ctx context.Context) error {
	const op = "clear invoices"

	db, err := s.handle()
	if err != nil {
		return newError(ErrStorageUnavailable, op, "", err)
	}

	if err := db.Clear(ctx, StoreName); err != nil {
		s.logger.Error("clear failed", slog.Any("err", err))
		return newError(ErrDeleteFailed, op, "", err)
	}

	s.logger.Info("cleared invoices")
	return nil
}

// idText renders whatever sits at the key path for error messages, even
// when it is not a valid key.
func idText(rec record.Record) string {
	v, ok := rec[KeyPath]
	if !ok {
		return ""
	}
	data, err := record.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
