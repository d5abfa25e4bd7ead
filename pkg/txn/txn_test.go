package txn_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/driftstore/driftstore/pkg/txn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrigin(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()
	b, err := backend.Open(ctx, url)
	require.NoError(t, err)

	store := relib.NewTableStore()
	tenants, err := store.AddTable("tenant", false)
	require.NoError(t, err)
	require.NoError(t, tenants.AddPrimaryKey("id"))
	_, err = tenants.Add(relib.Row{"id": "acme"}, false)
	require.NoError(t, err)

	require.NoError(t, store.SaveToBackend(ctx, b, relib.SaveOptions{RunIntegrityCheck: true}))
}

func TestTransaction_CommitsToOriginAndLocal(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/txn-origin"
	localURL := "memory://fixture/txn-local"
	seedOrigin(t, originURL)

	ctx := context.Background()
	err := txn.Transaction(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		tenants, err := store.GetTable("tenant")
		if err != nil {
			return err
		}
		_, err = tenants.Add(relib.Row{"id": "beta"}, false)
		return err
	})
	require.NoError(t, err)

	originBackend, err := backend.Open(ctx, originURL)
	require.NoError(t, err)
	origin := relib.NewTableStore()
	require.NoError(t, origin.LoadFromBackend(ctx, originBackend, relib.DefaultLoadOptions()))
	tenants, err := origin.GetTable("tenant")
	require.NoError(t, err)
	assert.Equal(t, 2, tenants.Count())

	localBackend, err := backend.Open(ctx, localURL)
	require.NoError(t, err)
	local := relib.NewTableStore()
	require.NoError(t, local.LoadFromBackend(ctx, localBackend, relib.DefaultLoadOptions()))
	localTenants, err := local.GetTable("tenant")
	require.NoError(t, err)
	assert.Equal(t, 2, localTenants.Count())
}

func TestStage_NeverWritesOrigin(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/stage-origin"
	localURL := "memory://fixture/stage-local"
	seedOrigin(t, originURL)

	ctx := context.Background()
	err := txn.Stage(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		tenants, err := store.GetTable("tenant")
		if err != nil {
			return err
		}
		_, err = tenants.Add(relib.Row{"id": "beta"}, false)
		return err
	})
	require.NoError(t, err)

	originBackend, err := backend.Open(ctx, originURL)
	require.NoError(t, err)
	origin := relib.NewTableStore()
	require.NoError(t, origin.LoadFromBackend(ctx, originBackend, relib.DefaultLoadOptions()))
	tenants, err := origin.GetTable("tenant")
	require.NoError(t, err)
	assert.Equal(t, 1, tenants.Count(), "Stage must never push to origin")

	localBackend, err := backend.Open(ctx, localURL)
	require.NoError(t, err)
	local := relib.NewTableStore()
	require.NoError(t, local.LoadFromBackend(ctx, localBackend, relib.DefaultLoadOptions()))
	localTenants, err := local.GetTable("tenant")
	require.NoError(t, err)
	assert.Equal(t, 2, localTenants.Count())
}

func TestTransaction_ErrorLeavesLocalUntouched(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/txn-err-origin"
	localURL := "memory://fixture/txn-err-local"
	seedOrigin(t, originURL)

	ctx := context.Background()
	sentinel := errors.New("boom")
	err := txn.Transaction(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	localBackend, err := backend.Open(ctx, localURL)
	require.NoError(t, err)
	probe := relib.NewTableStore()
	loadErr := probe.LoadFromBackend(ctx, localBackend, relib.DefaultLoadOptions())
	assert.True(t, relib.IsNotFound(loadErr), "fn's error must short-circuit before any local write happens")
}

func TestTransaction_MetadataTableIsReadOnlyDuringFn(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/txn-readonly-origin"
	localURL := "memory://fixture/txn-readonly-local"
	seedOrigin(t, originURL)

	ctx := context.Background()
	var observed bool
	err := txn.Transaction(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		observed = store.Meta().IsReadOnly()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, observed)
}

func TestTransaction_RejectsNesting(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/txn-nest-origin"
	localURL := "memory://fixture/txn-nest-local"
	seedOrigin(t, originURL)

	ctx := context.Background()
	var wg sync.WaitGroup
	started := make(chan struct{})
	release := make(chan struct{})
	var outerErr, innerErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		outerErr = txn.Transaction(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	innerErr = txn.Stage(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		return nil
	})
	close(release)
	wg.Wait()

	require.NoError(t, outerErr)
	require.Error(t, innerErr)
	assert.Contains(t, innerErr.Error(), "nested transaction scopes are not permitted")
}

func TestTransaction_PushDivergenceWrapsResult(t *testing.T) {
	backend.ResetMemoryRegistry()
	originURL := "memory://fixture/txn-diverge-origin"
	localURL := "memory://fixture/txn-diverge-local"
	seedOrigin(t, originURL)

	ctx := context.Background()

	// A concurrent writer pushes to origin between this transaction's pull
	// and its commit, simulated by mutating origin directly mid-fn.
	err := txn.Transaction(ctx, originURL, localURL, func(ctx context.Context, store *relib.TableStore) error {
		originBackend, berr := backend.Open(ctx, originURL)
		if berr != nil {
			return berr
		}
		other := relib.NewTableStore()
		if lerr := other.LoadFromBackend(ctx, originBackend, relib.DefaultLoadOptions()); lerr != nil {
			return lerr
		}
		otherTenants, gerr := other.GetTable("tenant")
		if gerr != nil {
			return gerr
		}
		if _, aerr := otherTenants.Add(relib.Row{"id": "concurrent"}, false); aerr != nil {
			return aerr
		}
		if serr := other.SaveToBackend(ctx, originBackend, relib.SaveOptions{RunIntegrityCheck: true}); serr != nil {
			return serr
		}

		tenants, terr := store.GetTable("tenant")
		if terr != nil {
			return terr
		}
		_, aerr := tenants.Add(relib.Row{"id": "beta"}, false)
		return aerr
	})

	require.Error(t, err)
	var txErr *txn.TSTransactionError
	require.ErrorAs(t, err, &txErr)
	assert.NotEmpty(t, txErr.ID)
}
