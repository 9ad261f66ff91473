package discover

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

func (s *service) GetPublicFeed(ctx context.Context, req FeedRequest) (*FeedPage, error) {
	query, limit, err := buildFeedQuery(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.index.ListPublic(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list public entries: %w", err)
	}

	page := &FeedPage{Items: []*FeedItem{}}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[:limit]
	}
	// The cursor comes from the last row selected, before hydration drops anything,
	// so a dropped item never causes the next page to repeat or skip rows.
	if page.HasMore && len(rows) > 0 {
		next := CursorFor(rows[len(rows)-1]).Encode()
		page.NextCursor = &next
	}

	page.Items = s.hydrate(ctx, rows)
	return page, nil
}

func (s *service) Stats(ctx context.Context) (*FeedStats, error) {
	stats, err := s.index.PublicStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("public stats: %w", err)
	}
	if stats.ByContentType == nil {
		stats.ByContentType = map[ContentType]int64{}
	}
	return stats, nil
}

// buildFeedQuery validates req and returns the repository query together with
// the effective page size. The query fetches one extra row to detect hasMore.
func buildFeedQuery(req FeedRequest) (PublicFeedQuery, int, error) {
	if req.CallerID == uuid.Nil {
		return PublicFeedQuery{}, 0, &ValidationError{Field: "caller_id", Err: ErrCallerRequired}
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit < 1 || limit > MaxFeedLimit {
		return PublicFeedQuery{}, 0, &ValidationError{Field: "limit", Value: strconv.Itoa(req.Limit), Err: ErrInvalidLimit}
	}

	if req.ContentType != "" && !req.ContentType.IsValid() {
		return PublicFeedQuery{}, 0, &ValidationError{Field: "type", Value: string(req.ContentType), Err: ErrInvalidContentType}
	}

	query := PublicFeedQuery{
		ExcludeOwnerID: req.CallerID,
		ContentType:    req.ContentType,
		Limit:          limit + 1,
	}
	if req.Cursor != "" {
		cursor, err := DecodeCursor(req.Cursor)
		if err != nil {
			return PublicFeedQuery{}, 0, err
		}
		query.After = cursor
	}
	return query, limit, nil
}
