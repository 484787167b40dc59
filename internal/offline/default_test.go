package offline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smartinvoice/internal/config"
	"github.com/roach88/smartinvoice/internal/record"
)

func TestDefault_UsesConfiguredDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvDataDir, dir)

	prev := SetDefault(nil)
	t.Cleanup(func() {
		if s := SetDefault(prev); s != nil {
			s.Close()
		}
	})

	s := Default()
	assert.Same(t, s, Default())
	assert.Equal(t, dir, s.dir)
}

func TestPackageFunctions(t *testing.T) {
	s := newTestStore(t)
	prev := SetDefault(s)
	t.Cleanup(func() { SetDefault(prev) })
	ctx := context.Background()

	require.NoError(t, SaveOfflineInvoice(ctx, invoice("inv-1", 42)))
	require.NoError(t, SaveOfflineInvoice(ctx, invoice("inv-2", 7)))
	require.NoError(t, DeleteOfflineInvoice(ctx, record.StringKey("inv-1")))

	all, err := GetAllOfflineInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{invoice("inv-2", 7)}, all)
}
