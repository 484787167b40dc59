package store

import (
	"fmt"

	"github.com/roach88/smartinvoice/internal/record"
)

// keyColumns splits a key into its (key_type, key_num, key_text) columns.
// Unused columns hold their zero value so the composite primary key is total.
func keyColumns(k record.Key) (int, float64, string) {
	if k.Kind() == record.KeyNumber {
		return int(record.KeyNumber), k.Number(), ""
	}
	return int(record.KeyString), 0, k.Text()
}

// keyFromColumns rebuilds a key from its stored columns.
func keyFromColumns(kind int, num float64, text string) (record.Key, error) {
	switch record.KeyKind(kind) {
	case record.KeyNumber:
		return record.NumberKey(num), nil
	case record.KeyString:
		return record.StringKey(text), nil
	default:
		return record.Key{}, fmt.Errorf("unknown key type %d", kind)
	}
}

// marshalRecord converts a record to canonical JSON TEXT for storage.
func marshalRecord(rec record.Record) (string, error) {
	data, err := record.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

// unmarshalRecord parses stored JSON TEXT back into a record.
func unmarshalRecord(data string) (record.Record, error) {
	rec, err := record.FromJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
