package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smartinvoice/internal/record"
)

func TestPut_InsertsRecord(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	key, err := d.Put(ctx, testStore, rec("inv-1", 42))
	require.NoError(t, err)
	assert.Equal(t, "inv-1", key.String())

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{rec("inv-1", 42)}, all)
}

func TestPut_ReplacesSameKey(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, rec("inv-1", 1))
	require.NoError(t, err)
	_, err = d.Put(ctx, testStore, record.Record{"id": record.String("inv-1"), "note": record.String("v2")})
	require.NoError(t, err)

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"id": record.String("inv-1"), "note": record.String("v2")}}, all)
}

func TestPut_IntAndFloatIDShareKey(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, record.Record{"id": record.Int(5), "v": record.Int(1)})
	require.NoError(t, err)
	_, err = d.Put(ctx, testStore, record.Record{"id": record.Float(5), "v": record.Int(2)})
	require.NoError(t, err)

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, record.Int(2), all[0]["v"])
}

func TestPut_MissingKey(t *testing.T) {
	d := createTestDB(t)

	_, err := d.Put(context.Background(), testStore, record.Record{"total": record.Int(1)})
	require.ErrorIs(t, err, record.ErrMissingKey)
}

func TestPut_UnknownStore(t *testing.T) {
	d := createTestDB(t)

	_, err := d.Put(context.Background(), "nope", rec("inv-1", 1))
	require.ErrorIs(t, err, ErrNoObjectStore)
}

func TestPutAll_IsAtomic(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	// Second record fails key extraction, so nothing is written.
	_, err := d.PutAll(ctx, testStore, []record.Record{
		rec("inv-1", 1),
		{"id": record.Bool(true)},
	})
	require.ErrorIs(t, err, record.ErrInvalidKey)

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPutAll_LastWins(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	keys, err := d.PutAll(ctx, testStore, []record.Record{
		rec("inv-1", 1),
		rec("inv-2", 2),
		rec("inv-1", 3),
	})
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{rec("inv-1", 3), rec("inv-2", 2)}, all)
}

func TestDelete_RemovesRecord(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, rec("inv-1", 1))
	require.NoError(t, err)
	_, err = d.Put(ctx, testStore, rec("inv-2", 2))
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, testStore, record.StringKey("inv-1")))

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{rec("inv-2", 2)}, all)
}

func TestDelete_AbsentKeyIsNoop(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	assert.NoError(t, d.Delete(ctx, testStore, record.StringKey("missing")))
	assert.NoError(t, d.Delete(ctx, testStore, record.NumberKey(7)))
}

func TestDelete_NumberKeyDoesNotMatchString(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, record.Record{"id": record.String("7")})
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, testStore, record.NumberKey(7)))

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestClear_RemovesEverything(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.PutAll(ctx, testStore, []record.Record{rec("a", 1), rec("b", 2)})
	require.NoError(t, err)

	require.NoError(t, d.Clear(ctx, testStore))

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPut_RejectsKeysThatWouldCollide(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, record.Record{"id": record.Int(9007199254740993), "n": record.Int(1)})
	require.ErrorIs(t, err, record.ErrInvalidKey)
	_, err = d.Put(ctx, testStore, record.Record{"id": record.String("a\xff"), "n": record.Int(2)})
	require.ErrorIs(t, err, record.ErrInvalidKey)

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPut_RejectsInvalidUTF8Value(t *testing.T) {
	d := createTestDB(t)
	ctx := context.Background()

	_, err := d.Put(ctx, testStore, record.Record{"id": record.String("inv-1"), "note": record.String("\xfe")})
	require.ErrorContains(t, err, "not valid UTF-8")

	all, err := d.GetAll(ctx, testStore)
	require.NoError(t, err)
	assert.Empty(t, all)
}
