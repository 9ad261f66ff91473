package discover

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// hydrate expands index rows into feed items, preserving row order. Rows
// whose source no longer resolves are dropped; the page is not backfilled.
func (s *service) hydrate(ctx context.Context, rows []*ContentIndexEntry) []*FeedItem {
	snapshots := make([]*ContentSnapshot, len(rows))

	var g errgroup.Group
	g.SetLimit(s.hydrationConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			snap, err := s.resolveEntry(ctx, row)
			if err != nil {
				s.dropped(ctx, row, err)
				return nil
			}
			snapshots[i] = snap
			return nil
		})
	}
	_ = g.Wait()

	var ownerIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for i, row := range rows {
		if snapshots[i] != nil && !seen[row.OwnerID] {
			seen[row.OwnerID] = true
			ownerIDs = append(ownerIDs, row.OwnerID)
		}
	}
	profiles := s.ownerProfiles(ctx, ownerIDs)

	items := make([]*FeedItem, 0, len(rows))
	for i, row := range rows {
		if snapshots[i] == nil {
			continue
		}
		owner, ok := profiles[row.OwnerID]
		if !ok {
			owner = &OwnerProfile{ID: row.OwnerID}
		}
		items = append(items, &FeedItem{
			ID:          row.ID,
			ContentType: row.ContentType,
			ContentID:   row.ContentID,
			Visibility:  row.Visibility,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
			Content:     snapshots[i],
			Owner:       owner,
			Engagement:  Engagement{},
		})
	}
	return items
}

func (s *service) resolveEntry(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	resolver, ok := s.resolvers[entry.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResolver, entry.ContentType)
	}

	snap, err := resolver.Resolve(ctx, entry)
	if err != nil {
		return nil, err
	}

	// A stale row must never leak content the source no longer shares.
	if snap.Visibility != "" && snap.Visibility != VisibilityPublic {
		return nil, fmt.Errorf("%w: source visibility is %s", ErrSourceNotFound, snap.Visibility)
	}
	if snap.OwnerID != uuid.Nil && snap.OwnerID != entry.OwnerID {
		return nil, fmt.Errorf("%w: source owner changed", ErrSourceNotFound)
	}
	return snap, nil
}

func (s *service) dropped(ctx context.Context, entry *ContentIndexEntry, err error) {
	if errors.Is(err, ErrSourceNotFound) {
		s.logger.DebugContext(ctx, "dropping drifted feed item",
			"content_type", entry.ContentType,
			"content_id", entry.ContentID,
			"reason", err)
	} else {
		s.logger.WarnContext(ctx, "failed to hydrate feed item",
			"content_type", entry.ContentType,
			"content_id", entry.ContentID,
			"error", err)
	}
	s.hooks.executeOnDrift(ctx, entry, err)
}

func (s *service) ownerProfiles(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*OwnerProfile {
	if len(ids) == 0 {
		return map[uuid.UUID]*OwnerProfile{}
	}
	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load owner profiles", "owners", len(ids), "error", err)
		return map[uuid.UUID]*OwnerProfile{}
	}
	return profiles
}
