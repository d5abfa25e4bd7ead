/*
Package reconcile implements the checksum-mediated push/pull protocol that
keeps a local working copy, an authoritative origin backend, and an
optional cache backend in agreement.

Neither Push nor Pull ever raises on a divergence: both return a Result
describing what happened (or didn't) and why, leaving the retry/force/diff
decision to the caller.
*/
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/driftstore/driftstore/pkg/log"
	"github.com/driftstore/driftstore/pkg/relib"
)

// Reason enumerates why a push or pull did or didn't move bytes.
type Reason string

const (
	ReasonChecksumDiffer      Reason = "checksum_differ"
	ReasonPushSkippedCRCMatch Reason = "push_skipped_crc_match"
	ReasonPushedToOrigin      Reason = "pushed_to_origin"
	ReasonLocalIsModified     Reason = "local_is_modified"
	ReasonPullSkippedCRCMatch Reason = "pull_skipped_crc_match"
	ReasonPulledFromOrigin    Reason = "pulled_from_origin"
)

// PushResult is push's outcome.
type PushResult struct {
	Pushed     bool
	Reason     Reason
	LocalMeta  relib.Meta
	OriginMeta relib.Meta
}

// PushOptions controls Push.
type PushOptions struct {
	// Force bypasses the checksum_differ guard and overwrites origin
	// unconditionally.
	Force bool
	// ExpectedOriginChecksum is the checksum the caller believes origin
	// currently has; defaults to local's own checksum when zero.
	ExpectedOriginChecksum string
}

// Push makes origin equal local, refusing to overwrite a diverged origin
// unless force is set. A BackendFileNotFound on origin's metadata is
// treated as "no origin yet", enabling a first push.
func Push(ctx context.Context, local *relib.TableStore, originBackend relib.Backend, opts PushOptions) (PushResult, error) {
	localMeta := local.MetaSnapshot()

	originMeta, err := loadOriginMeta(ctx, originBackend)
	firstPush := false
	if err != nil {
		if relib.IsNotFound(err) {
			firstPush = true
		} else {
			return PushResult{}, fmt.Errorf("reconcile: push: read origin metadata: %w", err)
		}
	}

	expected := opts.ExpectedOriginChecksum
	if expected == "" {
		expected = localMeta.Checksum
	}
	crcMatch := firstPush || expected == originMeta.Checksum

	if !crcMatch && !opts.Force {
		log.Logger.Warn().Str("reason", string(ReasonChecksumDiffer)).
			Str("local_checksum", localMeta.Checksum).Str("origin_checksum", originMeta.Checksum).
			Msg("push refused: origin diverged from expected checksum")
		return PushResult{Pushed: false, Reason: ReasonChecksumDiffer, LocalMeta: localMeta, OriginMeta: originMeta}, nil
	}

	_, refreshed, err := local.RefreshMetadata(ctx)
	if err != nil {
		return PushResult{}, fmt.Errorf("reconcile: push: refresh local metadata: %w", err)
	}

	if !firstPush && crcMatch && !opts.Force && refreshed.Checksum == localMeta.Checksum {
		log.Logger.Debug().Str("reason", string(ReasonPushSkippedCRCMatch)).Msg("push skipped: origin already matches local")
		return PushResult{Pushed: true, Reason: ReasonPushSkippedCRCMatch, LocalMeta: refreshed, OriginMeta: originMeta}, nil
	}

	if err := local.SaveToBackend(ctx, originBackend, relib.SaveOptions{RunIntegrityCheck: true}); err != nil {
		return PushResult{}, fmt.Errorf("reconcile: push: write to origin: %w", err)
	}
	log.Logger.Info().Str("reason", string(ReasonPushedToOrigin)).Str("checksum", refreshed.Checksum).Msg("pushed to origin")
	return PushResult{Pushed: true, Reason: ReasonPushedToOrigin, LocalMeta: local.MetaSnapshot(), OriginMeta: originMeta}, nil
}

// PullResult is pull's outcome. TableStore is the store callers should use
// going forward: it is local when the pull was skipped or refused, origin's
// freshly loaded contents otherwise.
type PullResult struct {
	Pulled     bool
	Reason     Reason
	TableStore *relib.TableStore
}

// PullOptions controls Pull.
type PullOptions struct {
	// IgnoreIfModified proceeds with the pull even if local was modified
	// since its last known-good state, discarding local changes.
	IgnoreIfModified bool
	// Force pulls even when checksums already match, useful to
	// canonicalize local's on-disk layout to origin's.
	Force bool
}

// Pull makes local equal origin, refusing to discard local edits unless
// IgnoreIfModified is set.
func Pull(ctx context.Context, local *relib.TableStore, originBackend relib.Backend, def []byte, opts PullOptions) (PullResult, error) {
	before, after, err := local.RefreshMetadata(ctx)
	if err != nil {
		return PullResult{}, fmt.Errorf("reconcile: pull: refresh local metadata: %w", err)
	}
	locallyModified := before.Checksum != after.Checksum

	if locallyModified && !opts.IgnoreIfModified {
		log.Logger.Warn().Str("reason", string(ReasonLocalIsModified)).Msg("pull refused: local store modified since last refresh")
		return PullResult{Pulled: false, Reason: ReasonLocalIsModified, TableStore: local}, nil
	}

	origin := relib.NewTableStore()
	loadOpts := relib.DefaultLoadOptions()
	if def != nil {
		if err := origin.InitFromDefinition(def); err != nil {
			return PullResult{}, fmt.Errorf("reconcile: pull: init origin definition: %w", err)
		}
		loadOpts.SkipDefinition = true
	}
	if err := origin.LoadFromBackend(ctx, originBackend, loadOpts); err != nil {
		return PullResult{}, fmt.Errorf("reconcile: pull: load origin: %w", err)
	}

	if !opts.Force && origin.Checksum() == after.Checksum {
		log.Logger.Debug().Str("reason", string(ReasonPullSkippedCRCMatch)).Msg("pull skipped: local already matches origin")
		return PullResult{Pulled: true, Reason: ReasonPullSkippedCRCMatch, TableStore: local}, nil
	}
	log.Logger.Info().Str("reason", string(ReasonPulledFromOrigin)).Str("checksum", origin.Checksum()).Msg("pulled from origin")
	return PullResult{Pulled: true, Reason: ReasonPulledFromOrigin, TableStore: origin}, nil
}

func loadOriginMeta(ctx context.Context, originBackend relib.Backend) (relib.Meta, error) {
	return relib.ProbeMeta(ctx, originBackend)
}

// ErrFirstPush is returned by nothing in this package currently but kept as
// a documented sentinel for callers that want to special-case an empty
// origin distinctly from relib.IsNotFound; reconcile itself treats the two
// identically.
var ErrFirstPush = errors.New("reconcile: origin has no prior state")
