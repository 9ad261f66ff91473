package discover

import (
	"context"

	"github.com/google/uuid"
)

// Hooks let callers observe the index lifecycle without modifying core code.
// Observers cannot change an outcome: sync failures and drift drops have
// already been handled by the time a hook runs.

// Hooks defines all available observers
type Hooks struct {
	// Called after a best-effort index write failed and was swallowed
	OnSyncFailure []SyncFailureHook

	// Called when hydration drops an item from a feed page
	OnDrift []DriftHook

	// Called after each full reconciliation or cleanup run
	AfterReconcile []AfterReconcileHook
	AfterCleanup   []AfterCleanupHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// SyncFailureHook receives the failed write. err is a *SyncError.
type SyncFailureHook func(hctx *HookContext, err *SyncError)

// DriftHook receives the dropped entry and the reason it was dropped.
// reason wraps ErrSourceNotFound for missing or no longer public sources.
type DriftHook func(hctx *HookContext, entry *ContentIndexEntry, reason error)

// AfterReconcileHook receives the finished reconciliation result
type AfterReconcileHook func(hctx *HookContext, result *ReconcileResult)

// AfterCleanupHook receives the finished cleanup result
type AfterCleanupHook func(hctx *HookContext, result *CleanupResult)

func (h *Hooks) executeOnSyncFailure(ctx context.Context, err *SyncError) {
	if h == nil || len(h.OnSyncFailure) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnSyncFailure {
		hook(hctx, err)
		if hctx.StopChain {
			break
		}
	}
}

func (h *Hooks) executeOnDrift(ctx context.Context, entry *ContentIndexEntry, reason error) {
	if h == nil || len(h.OnDrift) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnDrift {
		hook(hctx, entry, reason)
		if hctx.StopChain {
			break
		}
	}
}

func (h *Hooks) executeAfterReconcile(ctx context.Context, result *ReconcileResult) {
	if h == nil || len(h.AfterReconcile) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterReconcile {
		hook(hctx, result)
		if hctx.StopChain {
			break
		}
	}
}

func (h *Hooks) executeAfterCleanup(ctx context.Context, result *CleanupResult) {
	if h == nil || len(h.AfterCleanup) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterCleanup {
		hook(hctx, result)
		if hctx.StopChain {
			break
		}
	}
}

// MetricsHook counts sync failures and drift drops
func MetricsHook(metrics interface {
	IncrementCounter(name string)
}) *Hooks {
	return &Hooks{
		OnSyncFailure: []SyncFailureHook{
			func(hctx *HookContext, err *SyncError) {
				metrics.IncrementCounter("discover.sync." + err.Op + ".failed")
			},
		},
		OnDrift: []DriftHook{
			func(hctx *HookContext, entry *ContentIndexEntry, reason error) {
				metrics.IncrementCounter("discover.feed.drift")
			},
		},
	}
}

// DriftRecorder collects the keys of dropped entries, for repair jobs and tests.
func DriftRecorder(record func(contentType ContentType, contentID uuid.UUID)) DriftHook {
	return func(hctx *HookContext, entry *ContentIndexEntry, reason error) {
		record(entry.ContentType, entry.ContentID)
	}
}
