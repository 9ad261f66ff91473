package discover

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

func (s *service) UpsertVisibility(ctx context.Context, req UpsertRequest) (*ContentIndexEntry, error) {
	if err := validateUpsert(req); err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if req.Deleted {
		visibility = VisibilityPrivate
	}

	now := s.clock()
	updatedAt := now
	if !req.UpdatedAt.IsZero() {
		updatedAt = req.UpdatedAt.UTC().Truncate(time.Microsecond)
	}
	var createdAt time.Time
	if !req.CreatedAt.IsZero() {
		createdAt = req.CreatedAt.UTC().Truncate(time.Microsecond)
	}

	entry := &ContentIndexEntry{
		ID:          uuid.New(),
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Visibility:  visibility,
		OwnerID:     req.OwnerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	stored, err := s.index.UpsertEntry(ctx, entry)
	if err != nil {
		return nil, &SyncError{Op: "upsert", ContentType: req.ContentType, ContentID: req.ContentID, Err: err}
	}
	return stored, nil
}

func (s *service) RemoveVisibility(ctx context.Context, contentType ContentType, contentID uuid.UUID) error {
	if !contentType.IsValid() {
		return &ValidationError{Field: "content_type", Value: string(contentType), Err: ErrInvalidContentType}
	}
	if err := s.index.DeleteEntry(ctx, contentType, contentID); err != nil {
		return &SyncError{Op: "remove", ContentType: contentType, ContentID: contentID, Err: err}
	}
	return nil
}

func validateUpsert(req UpsertRequest) error {
	if !req.ContentType.IsValid() {
		return &ValidationError{Field: "content_type", Value: string(req.ContentType), Err: ErrInvalidContentType}
	}
	if req.ContentID == uuid.Nil {
		return &ValidationError{Field: "content_id", Err: ErrIDRequired}
	}
	if req.OwnerID == uuid.Nil {
		return &ValidationError{Field: "owner_id", Err: ErrIDRequired}
	}
	if !req.Visibility.IsValid() && !req.Deleted {
		return &ValidationError{Field: "visibility", Value: string(req.Visibility), Err: ErrInvalidVisibility}
	}
	return nil
}

// bestEffortSync adapts a Service into a SyncHook. Each call makes exactly
// one attempt; a failure is logged and reported to OnSyncFailure observers,
// then dropped. Reconciliation repairs whatever was missed.
type bestEffortSync struct {
	svc    Service
	logger *slog.Logger
	hooks  *Hooks
}

// NewSyncHook wraps svc for use by entity mutation paths. The returned hook
// never blocks or fails the caller's write and does not retry.
func NewSyncHook(svc Service, logger *slog.Logger, hooks *Hooks) SyncHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &bestEffortSync{svc: svc, logger: logger, hooks: hooks}
}

func (h *bestEffortSync) UpsertVisibility(ctx context.Context, req UpsertRequest) {
	// The entity write already committed; a cancelled request must not skip the index.
	_, err := h.svc.UpsertVisibility(context.WithoutCancel(ctx), req)
	if err != nil {
		h.fail(ctx, "upsert", req.ContentType, req.ContentID, err)
	}
}

func (h *bestEffortSync) RemoveVisibility(ctx context.Context, contentType ContentType, contentID uuid.UUID) {
	if err := h.svc.RemoveVisibility(context.WithoutCancel(ctx), contentType, contentID); err != nil {
		h.fail(ctx, "remove", contentType, contentID, err)
	}
}

func (h *bestEffortSync) fail(ctx context.Context, op string, contentType ContentType, contentID uuid.UUID, err error) {
	h.logger.WarnContext(ctx, "index sync failed",
		"op", op,
		"content_type", contentType,
		"content_id", contentID,
		"error", err)

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		syncErr = &SyncError{Op: op, ContentType: contentType, ContentID: contentID, Err: err}
	}
	h.hooks.executeOnSyncFailure(ctx, syncErr)
}
