/*
Package txn provides the editing-transaction scope: pull a fresh working
copy on entry, hand it to the caller, and on successful exit either push it
back to origin (Transaction) or merely persist it to the local source
(Stage). Nesting either flavor is a programmer error, enforced by a
process-wide flag rather than anything per-store, matching the
single-threaded cooperative model the rest of the core assumes.
*/
package txn

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/log"
	"github.com/driftstore/driftstore/pkg/reconcile"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/google/uuid"
)

// TSTransactionError wraps a failed push that occurred while committing a
// transaction, carrying the reconciliation result and a correlation ID for
// the attempt so operators can line it up against logs.
type TSTransactionError struct {
	ID     string
	Result reconcile.PushResult
	Err    error
}

func (e *TSTransactionError) Error() string {
	return fmt.Sprintf("txn[%s]: push failed during commit: %v (reason=%s)", e.ID, e.Err, e.Result.Reason)
}

func (e *TSTransactionError) Unwrap() error { return e.Err }

var scopeGuard struct {
	mu     sync.Mutex
	active bool
}

func enter() error {
	scopeGuard.mu.Lock()
	defer scopeGuard.mu.Unlock()
	if scopeGuard.active {
		return fmt.Errorf("txn: nested transaction scopes are not permitted")
	}
	scopeGuard.active = true
	return nil
}

func leave() {
	scopeGuard.mu.Lock()
	scopeGuard.active = false
	scopeGuard.mu.Unlock()
}

// Fn is the body of a transaction: it receives the pulled working copy and
// may mutate it freely (other than the read-only-marked metadata table).
type Fn func(ctx context.Context, store *relib.TableStore) error

// Transaction pulls originURL into a fresh working copy, runs fn against
// it, and on fn's successful return pushes the result back to origin
// (passing the origin checksum observed on entry as ExpectedOriginChecksum)
// before writing the updated store to localURL. If fn returns an error, the
// local source is left untouched and the push phase never runs. If the
// push diverges, *TSTransactionError wraps the reconciliation result.
func Transaction(ctx context.Context, originURL, localURL string, fn Fn) error {
	return run(ctx, originURL, localURL, fn, true)
}

// Stage behaves like Transaction but never pushes to origin: it only
// writes the edited store back to localURL, for callers that want to
// prepare local state without contending for the shared origin.
func Stage(ctx context.Context, originURL, localURL string, fn Fn) error {
	return run(ctx, originURL, localURL, fn, false)
}

func run(ctx context.Context, originURL, localURL string, fn Fn, commitToOrigin bool) error {
	id := uuid.NewString()
	txnLog := log.WithTransactionID(id)

	if err := enter(); err != nil {
		txnLog.Warn().Msg("rejected nested transaction scope")
		return err
	}
	defer leave()

	originBackend, err := backend.Open(ctx, originURL)
	if err != nil {
		return fmt.Errorf("txn: open origin: %w", err)
	}

	store := relib.NewTableStore()
	if err := store.LoadFromBackend(ctx, originBackend, relib.DefaultLoadOptions()); err != nil {
		return fmt.Errorf("txn: pull origin into working copy: %w", err)
	}
	expected := store.Checksum()
	store.Meta().SetReadOnly(true)
	txnLog.Debug().Str("origin", originURL).Str("checksum", expected).Msg("transaction acquired working copy")

	if err := fn(ctx, store); err != nil {
		// On exception, the local working copy is left exactly as it was
		// on entry: no write happens in either direction.
		txnLog.Warn().Err(err).Msg("transaction body failed, skipping commit")
		return err
	}

	store.Meta().SetReadOnly(false)

	if commitToOrigin {
		result, err := reconcile.Push(ctx, store, originBackend, reconcile.PushOptions{ExpectedOriginChecksum: expected})
		if err != nil {
			return fmt.Errorf("txn: push to origin: %w", err)
		}
		if !result.Pushed {
			txnLog.Warn().Str("reason", string(result.Reason)).Msg("transaction commit diverged from origin")
			return &TSTransactionError{ID: id, Result: result, Err: fmt.Errorf("origin diverged from expected checksum %q", expected)}
		}
		txnLog.Info().Str("reason", string(result.Reason)).Msg("transaction committed to origin")
	}

	localBackend, err := backend.Open(ctx, localURL)
	if err != nil {
		return fmt.Errorf("txn: open local source: %w", err)
	}
	if err := store.SaveToBackend(ctx, localBackend, relib.SaveOptions{RunIntegrityCheck: true}); err != nil {
		return fmt.Errorf("txn: write updated store to local source: %w", err)
	}
	txnLog.Debug().Str("local", localURL).Msg("transaction wrote updated store to local source")
	return nil
}
