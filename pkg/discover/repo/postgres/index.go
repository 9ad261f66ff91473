package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-discover/pkg/discover"
)

const indexColumns = `id, content_type, content_id, visibility, owner_id, created_at, updated_at`

// Index operations

func (r *Repository) UpsertEntry(ctx context.Context, entry *discover.ContentIndexEntry) (*discover.ContentIndexEntry, error) {
	var createdAt, updatedAt *time.Time
	if !entry.CreatedAt.IsZero() {
		createdAt = &entry.CreatedAt
	}
	if !entry.UpdatedAt.IsZero() {
		updatedAt = &entry.UpdatedAt
	}
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO content_index (` + indexColumns + `)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()), COALESCE($7::timestamptz, now()))
		ON CONFLICT (content_type, content_id) DO UPDATE SET
			visibility = EXCLUDED.visibility,
			owner_id   = EXCLUDED.owner_id,
			created_at = COALESCE($6::timestamptz, content_index.created_at),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + indexColumns

	row := r.db.QueryRow(ctx, query,
		id, entry.ContentType, entry.ContentID, entry.Visibility, entry.OwnerID, createdAt, updatedAt)
	stored, err := scanEntry(row)
	if err != nil {
		return nil, r.handlePostgresError("upsert index entry", err)
	}
	return stored, nil
}

func (r *Repository) DeleteEntry(ctx context.Context, contentType discover.ContentType, contentID uuid.UUID) error {
	query := `DELETE FROM content_index WHERE content_type = $1 AND content_id = $2`
	if _, err := r.db.Exec(ctx, query, contentType, contentID); err != nil {
		return r.handlePostgresError("delete index entry", err)
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, contentType discover.ContentType, contentID uuid.UUID) (*discover.ContentIndexEntry, error) {
	query := `SELECT ` + indexColumns + ` FROM content_index WHERE content_type = $1 AND content_id = $2`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, contentType, contentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discover.ErrEntryNotFound
		}
		return nil, r.handlePostgresError("get index entry", err)
	}
	return entry, nil
}

func (r *Repository) ListPublic(ctx context.Context, q discover.PublicFeedQuery) ([]*discover.ContentIndexEntry, error) {
	query := `SELECT ` + indexColumns + ` FROM content_index WHERE visibility = 'PUBLIC' AND owner_id <> $1`
	args := []interface{}{q.ExcludeOwnerID}
	argIndex := 2

	if q.ContentType != "" {
		query += fmt.Sprintf(" AND content_type = $%d", argIndex)
		args = append(args, q.ContentType)
		argIndex++
	}
	if q.After != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, q.After.CreatedAt, q.After.ID)
		argIndex += 2
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, q.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list public entries", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *Repository) ListEntries(ctx context.Context, contentType discover.ContentType, afterContentID uuid.UUID, limit int) ([]*discover.ContentIndexEntry, error) {
	query := `
		SELECT ` + indexColumns + ` FROM content_index
		WHERE content_type = $1 AND content_id > $2
		ORDER BY content_id
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, contentType, afterContentID, limit)
	if err != nil {
		return nil, r.handlePostgresError("list index entries", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *Repository) PublicStats(ctx context.Context) (*discover.FeedStats, error) {
	stats := &discover.FeedStats{ByContentType: make(map[discover.ContentType]int64)}

	rows, err := r.db.Query(ctx, `
		SELECT content_type, COUNT(*) FROM content_index
		WHERE visibility = 'PUBLIC'
		GROUP BY content_type`)
	if err != nil {
		return nil, r.handlePostgresError("count public entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contentType discover.ContentType
		var count int64
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, r.handlePostgresError("scan public count", err)
		}
		stats.ByContentType[contentType] = count
		stats.TotalPublic += count
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("count public entries", err)
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(DISTINCT owner_id) FROM content_index WHERE visibility = 'PUBLIC'`).
		Scan(&stats.DistinctOwners)
	if err != nil {
		return nil, r.handlePostgresError("count public owners", err)
	}
	return stats, nil
}

func scanEntry(row pgx.Row) (*discover.ContentIndexEntry, error) {
	var e discover.ContentIndexEntry
	err := row.Scan(&e.ID, &e.ContentType, &e.ContentID, &e.Visibility, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]*discover.ContentIndexEntry, error) {
	var entries []*discover.ContentIndexEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan index entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index entries: %w", err)
	}
	return entries, nil
}
