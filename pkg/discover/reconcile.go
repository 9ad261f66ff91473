package discover

import (
	"context"

	"github.com/google/uuid"
)

// ReconcileAll re-upserts every live source item of every kind. A kind whose
// listing fails is reported in its result and the sweep moves on.
func (s *service) ReconcileAll(ctx context.Context) (*ReconcileResult, error) {
	result := &ReconcileResult{
		PerType:   make(map[SourceKind]*ReconcileTypeResult, len(AllSourceKinds)),
		StartedAt: s.clock(),
	}

	for _, kind := range AllSourceKinds {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = s.clock()
			return result, err
		}
		tr := s.reconcileKind(ctx, kind)
		result.PerType[kind] = tr
		if tr.Error != "" {
			continue
		}
		s.logger.InfoContext(ctx, "reconciled source kind",
			"kind", kind,
			"synced", tr.Synced,
			"failed", tr.Failed)
	}

	result.FinishedAt = s.clock()
	s.hooks.executeAfterReconcile(ctx, result)
	return result, nil
}

func (s *service) reconcileKind(ctx context.Context, kind SourceKind) *ReconcileTypeResult {
	tr := &ReconcileTypeResult{}
	after := uuid.Nil
	for {
		records, err := s.sources.ListSourceRecords(ctx, kind, after, s.reconcileBatchSize)
		if err != nil {
			rerr := &ReconcileError{Kind: kind, Err: err}
			tr.Error = rerr.Error()
			s.logger.ErrorContext(ctx, "reconcile failed",
				"kind", kind,
				"synced", tr.Synced,
				"error", err)
			return tr
		}

		for _, rec := range records {
			if _, err := s.UpsertVisibility(ctx, rec.UpsertRequest()); err != nil {
				tr.Failed++
				s.logger.WarnContext(ctx, "reconcile upsert failed",
					"content_type", rec.ContentType,
					"content_id", rec.ID,
					"error", err)
				continue
			}
			tr.Synced++
		}

		if len(records) < s.reconcileBatchSize {
			return tr
		}
		after = records[len(records)-1].ID
	}
}

// CleanupOrphans removes index entries whose source item no longer exists or
// is soft-deleted. Each content type is processed independently.
func (s *service) CleanupOrphans(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{
		PerType:   make(map[ContentType]*CleanupTypeResult, len(AllContentTypes)),
		StartedAt: s.clock(),
	}

	for _, ct := range AllContentTypes {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = s.clock()
			return result, err
		}
		tr := s.cleanupType(ctx, ct)
		result.PerType[ct] = tr
		if tr.Error == "" {
			s.logger.InfoContext(ctx, "cleaned orphaned index entries",
				"content_type", ct,
				"scanned", tr.Scanned,
				"removed", tr.Removed)
		}
	}

	result.FinishedAt = s.clock()
	s.hooks.executeAfterCleanup(ctx, result)
	return result, nil
}

func (s *service) cleanupType(ctx context.Context, ct ContentType) *CleanupTypeResult {
	tr := &CleanupTypeResult{}
	fail := func(err error) *CleanupTypeResult {
		tr.Error = err.Error()
		s.logger.ErrorContext(ctx, "cleanup failed", "content_type", ct, "error", err)
		return tr
	}

	after := uuid.Nil
	for {
		entries, err := s.index.ListEntries(ctx, ct, after, s.reconcileBatchSize)
		if err != nil {
			return fail(err)
		}
		if len(entries) == 0 {
			return tr
		}
		tr.Scanned += int64(len(entries))

		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ContentID
		}
		live, err := s.sources.ExistingSourceIDs(ctx, ct.SourceKind(), ids)
		if err != nil {
			return fail(err)
		}

		for _, id := range ids {
			if live[id] {
				continue
			}
			if err := s.RemoveVisibility(ctx, ct, id); err != nil {
				return fail(err)
			}
			tr.Removed++
		}

		if len(entries) < s.reconcileBatchSize {
			return tr
		}
		after = ids[len(ids)-1]
	}
}
