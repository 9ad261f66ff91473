package discover

import (
	"context"

	"github.com/google/uuid"
)

// Service is the main interface for the discover engine.
type Service interface {
	// Feed operations
	GetPublicFeed(ctx context.Context, req FeedRequest) (*FeedPage, error)
	Stats(ctx context.Context) (*FeedStats, error)

	// Index synchronization. These return errors; entity mutation paths
	// should go through a SyncHook instead, which never does.
	UpsertVisibility(ctx context.Context, req UpsertRequest) (*ContentIndexEntry, error)
	RemoveVisibility(ctx context.Context, contentType ContentType, contentID uuid.UUID) error

	// Repair sweeps. Both are idempotent and safe to run alongside live traffic.
	ReconcileAll(ctx context.Context) (*ReconcileResult, error)
	CleanupOrphans(ctx context.Context) (*CleanupResult, error)
}
