package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/smartinvoice/internal/record"
)

// ImportLegacy reads a JSON array of invoices in the older single-list
// format and upserts every entry in one transaction. Entries sharing an id
// collapse, the later one winning. Empty input and a JSON null import
// nothing. Returns the number of distinct ids written.
func (s *Store) ImportLegacy(ctx context.Context, r io.Reader) (int, error) {
	const op = "import legacy invoices"

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, newError(ErrPersistFailed, op, "", fmt.Errorf("read input: %w", err))
	}
	recs, err := parseLegacy(data)
	if err != nil {
		return 0, newError(ErrPersistFailed, op, "", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	// Validate every id up front so a bad entry names itself.
	for i, rec := range recs {
		if _, err := rec.Key(KeyPath); err != nil {
			return 0, newError(ErrPersistFailed, op, idText(rec), fmt.Errorf("entry %d: %w", i, err))
		}
	}

	db, err := s.handle()
	if err != nil {
		return 0, newError(ErrPersistFailed, op, "", newError(ErrStorageUnavailable, "open database", "", err))
	}

	keys, err := db.PutAll(ctx, StoreName, recs)
	if err != nil {
		s.logger.Error("legacy import failed", slog.Any("err", err))
		return 0, newError(ErrPersistFailed, op, "", err)
	}

	distinct := make(map[record.Key]struct{}, len(keys))
	for _, k := range keys {
		distinct[k] = struct{}{}
	}
	s.logger.Info("imported legacy invoices",
		slog.Int("entries", len(recs)),
		slog.Int("distinct", len(distinct)),
	)
	return len(distinct), nil
}

func parseLegacy(data []byte) ([]record.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	v, err := record.ParseValue(data)
	if err != nil {
		return nil, err
	}

	switch list := v.(type) {
	case record.Null:
		return nil, nil
	case record.Array:
		recs := make([]record.Record, 0, len(list))
		for i, elem := range list {
			obj, ok := elem.(record.Object)
			if !ok {
				return nil, fmt.Errorf("entry %d: expected object, got %T", i, elem)
			}
			recs = append(recs, obj)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("expected JSON array, got %T", v)
	}
}
