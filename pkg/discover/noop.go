package discover

import (
	"context"

	"github.com/google/uuid"
)

// NoopProfileProvider knows no profiles; feed owners carry only their id.
type NoopProfileProvider struct{}

func (NoopProfileProvider) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*OwnerProfile, error) {
	return map[uuid.UUID]*OwnerProfile{}, nil
}

// NoopMediaURLResolver returns object keys unchanged.
type NoopMediaURLResolver struct{}

func (NoopMediaURLResolver) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	return objectKey, nil
}

// NoopSyncHook discards every sync call. Useful for seeding data that will be
// reconciled afterwards.
type NoopSyncHook struct{}

func (NoopSyncHook) UpsertVisibility(ctx context.Context, req UpsertRequest) {}

func (NoopSyncHook) RemoveVisibility(ctx context.Context, contentType ContentType, contentID uuid.UUID) {
}
