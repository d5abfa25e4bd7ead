package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestFileBackend_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := backend.Open(ctx, "file://"+dir)
	require.NoError(t, err)

	require.NoError(t, b.SaveData(ctx, "tenants.json", []byte(`{"a":1}`)))
	data, err := b.LoadData(ctx, "tenants.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestFileBackend_LoadMissing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := backend.Open(ctx, "file://"+dir)
	require.NoError(t, err)

	_, err = b.LoadData(ctx, "missing.json")
	require.Error(t, err)
	assert.True(t, relib.IsNotFound(err))
}

func TestFileBackend_NestedPathCreatesParents(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := backend.Open(ctx, "file://"+dir)
	require.NoError(t, err)

	require.NoError(t, b.SaveData(ctx, "a/b/c.json", []byte("x")))
	_, err = os.Stat(filepath.Join(dir, "a", "b", "c.json"))
	require.NoError(t, err)
}

func TestMemoryBackend_SharedAcrossOpens(t *testing.T) {
	backend.ResetMemoryRegistry()
	ctx := context.Background()

	b1, err := backend.Open(ctx, "memory://fixture/store")
	require.NoError(t, err)
	require.NoError(t, b1.SaveData(ctx, "x.json", []byte("1")))

	b2, err := backend.Open(ctx, "memory://fixture/store")
	require.NoError(t, err)
	data, err := b2.LoadData(ctx, "x.json")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestMemoryBackend_ResetClearsState(t *testing.T) {
	ctx := context.Background()
	backend.ResetMemoryRegistry()

	b1, err := backend.Open(ctx, "memory://fixture/reset")
	require.NoError(t, err)
	require.NoError(t, b1.SaveData(ctx, "x.json", []byte("1")))

	backend.ResetMemoryRegistry()
	b2, err := backend.Open(ctx, "memory://fixture/reset")
	require.NoError(t, err)
	_, err = b2.LoadData(ctx, "x.json")
	require.Error(t, err)
	assert.True(t, relib.IsNotFound(err))
}

func TestArchiveFileBackend_BracketedWritesAreAtomic(t *testing.T) {
	chdirTemp(t)
	ctx := context.Background()

	b, err := backend.Open(ctx, "archive+file://local/store.zip")
	require.NoError(t, err)

	require.NoError(t, b.StartSaving(ctx))
	require.NoError(t, b.SaveData(ctx, "tenant.json", []byte(`[{"id":"acme"}]`)))
	require.NoError(t, b.SaveData(ctx, "#tsmeta.json", []byte(`{"checksum":"abc"}`)))
	require.NoError(t, b.DoneSaving(ctx))

	require.NoError(t, b.StartLoading(ctx))
	data, err := b.LoadData(ctx, "tenant.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"acme"}]`, string(data))
}

func TestArchiveFileBackend_LoadMissingEntry(t *testing.T) {
	chdirTemp(t)
	ctx := context.Background()

	b, err := backend.Open(ctx, "archive+file://local/empty.zip")
	require.NoError(t, err)
	require.NoError(t, b.StartSaving(ctx))
	require.NoError(t, b.SaveData(ctx, "tenant.json", []byte("[]")))
	require.NoError(t, b.DoneSaving(ctx))

	_, err = b.LoadData(ctx, "missing.json")
	require.Error(t, err)
	assert.True(t, relib.IsNotFound(err))
}

func TestBoltBackend_SaveLoadRoundTrip(t *testing.T) {
	chdirTemp(t)
	ctx := context.Background()

	b, err := backend.Open(ctx, "boltdb://local/store.db")
	require.NoError(t, err)
	defer func() {
		if closer, ok := b.(*backend.BoltBackend); ok {
			_ = closer.Close()
		}
	}()

	require.NoError(t, b.SaveData(ctx, "tenant.json", []byte("[]")))
	data, err := b.LoadData(ctx, "tenant.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = b.LoadData(ctx, "missing.json")
	require.Error(t, err)
	assert.True(t, relib.IsNotFound(err))
}
