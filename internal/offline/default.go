package offline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/smartinvoice/internal/config"
	applog "github.com/roach88/smartinvoice/internal/log"
	"github.com/roach88/smartinvoice/internal/record"
)

var (
	defaultMu    sync.Mutex
	defaultStore *Store
)

// Default returns the process-wide store, creating it from the loaded
// configuration on first use.
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore == nil {
		l := applog.WithComponent("offline")
		cfg, err := config.Load("")
		if err != nil {
			l.Warn("config load failed, using defaults", slog.Any("err", err))
			cfg = config.Defaults()
		}
		defaultStore = New(cfg.Storage.DataDir, WithLogger(l))
	}
	return defaultStore
}

// SetDefault replaces the process-wide store and returns the previous one,
// which may be nil. The caller owns closing it.
func SetDefault(s *Store) *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	prev := defaultStore
	defaultStore = s
	return prev
}

// SaveOfflineInvoice saves rec in the default store.
func SaveOfflineInvoice(ctx context.Context, rec record.Record) error {
	return Default().Save(ctx, rec)
}

// GetAllOfflineInvoices lists the default store.
func GetAllOfflineInvoices(ctx context.Context) ([]record.Record, error) {
	return Default().GetAll(ctx)
}

// DeleteOfflineInvoice deletes id from the default store.
func DeleteOfflineInvoice(ctx context.Context, id record.Key) error {
	return Default().Delete(ctx, id)
}
