package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

type indexKey struct {
	contentType discover.ContentType
	contentID   uuid.UUID
}

// IndexRepository implements discover.IndexRepository using in-memory storage
type IndexRepository struct {
	mu      sync.RWMutex
	entries map[indexKey]*discover.ContentIndexEntry
	now     func() time.Time
}

// NewIndexRepository creates a new in-memory index
func NewIndexRepository() *IndexRepository {
	return &IndexRepository{
		entries: make(map[indexKey]*discover.ContentIndexEntry),
		now:     time.Now,
	}
}

func (r *IndexRepository) UpsertEntry(ctx context.Context, entry *discover.ContentIndexEntry) (*discover.ContentIndexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := indexKey{entry.ContentType, entry.ContentID}
	stored := *entry
	if existing, ok := r.entries[key]; ok {
		stored.ID = existing.ID
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = existing.CreatedAt
		}
	} else {
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = r.now().UTC().Truncate(time.Microsecond)
		}
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = r.now().UTC().Truncate(time.Microsecond)
	}
	r.entries[key] = &stored

	out := stored
	return &out, nil
}

func (r *IndexRepository) DeleteEntry(ctx context.Context, contentType discover.ContentType, contentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, indexKey{contentType, contentID})
	return nil
}

func (r *IndexRepository) GetEntry(ctx context.Context, contentType discover.ContentType, contentID uuid.UUID) (*discover.ContentIndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[indexKey{contentType, contentID}]
	if !ok {
		return nil, discover.ErrEntryNotFound
	}
	out := *entry
	return &out, nil
}

func (r *IndexRepository) ListPublic(ctx context.Context, q discover.PublicFeedQuery) ([]*discover.ContentIndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*discover.ContentIndexEntry
	for _, entry := range r.entries {
		if entry.Visibility != discover.VisibilityPublic || entry.OwnerID == q.ExcludeOwnerID {
			continue
		}
		if q.ContentType != "" && entry.ContentType != q.ContentType {
			continue
		}
		if q.After != nil && !q.After.Before(entry.CreatedAt, entry.ID) {
			continue
		}
		out := *entry
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return discover.CompareIDs(result[i].ID, result[j].ID) > 0
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func (r *IndexRepository) ListEntries(ctx context.Context, contentType discover.ContentType, afterContentID uuid.UUID, limit int) ([]*discover.ContentIndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*discover.ContentIndexEntry
	for key, entry := range r.entries {
		if key.contentType != contentType || discover.CompareIDs(key.contentID, afterContentID) <= 0 {
			continue
		}
		out := *entry
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return discover.CompareIDs(result[i].ContentID, result[j].ContentID) < 0
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *IndexRepository) PublicStats(ctx context.Context) (*discover.FeedStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &discover.FeedStats{ByContentType: make(map[discover.ContentType]int64)}
	owners := make(map[uuid.UUID]bool)
	for _, entry := range r.entries {
		if entry.Visibility != discover.VisibilityPublic {
			continue
		}
		stats.TotalPublic++
		stats.ByContentType[entry.ContentType]++
		owners[entry.OwnerID] = true
	}
	stats.DistinctOwners = int64(len(owners))
	return stats, nil
}

// Len returns the number of stored entries of any visibility.
func (r *IndexRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
