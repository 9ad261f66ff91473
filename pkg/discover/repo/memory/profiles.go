package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// ProfileStore implements discover.ProfileProvider using in-memory storage
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*discover.OwnerProfile
}

// NewProfileStore creates an empty profile store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[uuid.UUID]*discover.OwnerProfile)}
}

// UpsertProfile stores or replaces a profile
func (s *ProfileStore) UpsertProfile(ctx context.Context, profile *discover.OwnerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileCopy := *profile
	s.profiles[profile.ID] = &profileCopy
	return nil
}

func (s *ProfileStore) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*discover.OwnerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[uuid.UUID]*discover.OwnerProfile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			profileCopy := *p
			result[id] = &profileCopy
		}
	}
	return result, nil
}
