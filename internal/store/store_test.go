package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := Open(context.Background(), path, Options{Version: 1, Upgrade: createIDStore})
	require.NoError(t, err)
	defer d.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
	assert.Equal(t, []string{testStore}, d.ObjectStoreNames())
	assert.Equal(t, 1, d.Version())
	assert.Equal(t, path, d.Path())
}

func TestOpen_AppliesPragmas(t *testing.T) {
	d := createTestDB(t)

	assert.NoError(t, d.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, d.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, d.verifyPragma("user_version", "1"))
}

func TestOpen_UpgradeRunsOncePerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	var calls []int
	upgrade := func(tx *UpgradeTx, oldV, newV int) error {
		calls = append(calls, oldV, newV)
		return createIDStore(tx, oldV, newV)
	}

	for i := 0; i < 3; i++ {
		d, err := Open(ctx, path, Options{Version: 1, Upgrade: upgrade})
		require.NoError(t, err, "open %d", i)
		require.NoError(t, d.Close())
	}
	assert.Equal(t, []int{0, 1}, calls)

	// Bumping the version triggers the callback again with the old version.
	d, err := Open(ctx, path, Options{Version: 2, Upgrade: upgrade})
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, []int{0, 1, 1, 2}, calls)
	assert.Equal(t, []string{testStore}, d.ObjectStoreNames())
}

func TestOpen_VersionConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	d, err := Open(ctx, path, Options{Version: 2, Upgrade: createIDStore})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = Open(ctx, path, Options{Version: 1, Upgrade: createIDStore})
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestOpen_InvalidVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	_, err := Open(context.Background(), path, Options{Version: 0})
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), "/nonexistent/dir/test.db", Options{Version: 1})
	assert.Error(t, err)
}

func TestOpen_FailedUpgradeRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	failing := func(tx *UpgradeTx, oldV, newV int) error {
		if err := tx.CreateObjectStore(testStore, "id"); err != nil {
			return err
		}
		return assert.AnError
	}

	_, err := Open(ctx, path, Options{Version: 1, Upgrade: failing})
	require.ErrorIs(t, err, assert.AnError)

	// Neither the store nor the version bump survived.
	d, err := Open(ctx, path, Options{Version: 1, Upgrade: createIDStore})
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, []string{testStore}, d.ObjectStoreNames())
}

func TestCreateObjectStore_RejectsDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	twice := func(tx *UpgradeTx, _, _ int) error {
		if err := tx.CreateObjectStore(testStore, "id"); err != nil {
			return err
		}
		return tx.CreateObjectStore(testStore, "id")
	}

	_, err := Open(context.Background(), path, Options{Version: 1, Upgrade: twice})
	require.ErrorIs(t, err, ErrObjectStoreExists)
}

func TestCreateObjectStore_ValidatesName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	bad := func(tx *UpgradeTx, _, _ int) error {
		return tx.CreateObjectStore("drop table; --", "id")
	}

	_, err := Open(context.Background(), path, Options{Version: 1, Upgrade: bad})
	require.ErrorIs(t, err, ErrInvalidStoreName)
}

func TestClose_NilDB(t *testing.T) {
	d := &DB{db: nil}
	assert.NoError(t, d.Close())
}
