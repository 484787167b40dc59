// Package store provides a SQLite-backed, versioned object database for
// local offline data.
//
// The model follows browser object databases:
//   - Database: one SQLite file, opened at a requested schema version
//   - Object store: a named table of records keyed by a key path
//   - Upgrade: a callback run once when the on-disk version is lower than
//     the requested one (including a brand new file)
//
// # Critical Patterns
//
// Versioning
//   - Schema version lives in PRAGMA user_version
//   - The upgrade callback and the version bump commit in one transaction
//   - Opening at a lower version than stored fails with ErrVersionConflict
//
// Transactions
//   - Every operation runs in its own transaction and returns only after commit
//   - Put is an upsert keyed by the record's primary key
//   - Delete of an absent key is not an error
//
// Key Order
//   - Numbers sort before strings, numbers numerically
//   - Strings sort by UTF-16 code units (see record.Key.Compare)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - _txlock=immediate: Writers take the lock at BEGIN, so two processes
//     cannot both run the same upgrade
package store
