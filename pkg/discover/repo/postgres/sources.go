package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-discover/pkg/discover"
)

// sourceTable maps a source kind onto its table. contentType is a SQL
// expression yielding the row's content type.
type sourceTable struct {
	name        string
	contentType string
}

var sourceTables = map[discover.SourceKind]sourceTable{
	discover.SourceProject:    {name: "projects", contentType: "'PROJECT'"},
	discover.SourceTask:       {name: "tasks", contentType: "'TASK'"},
	discover.SourceNote:       {name: "notes", contentType: "'NOTE'"},
	discover.SourceMediaAsset: {name: "media_assets", contentType: "kind"},
	discover.SourceEvent:      {name: "events", contentType: "'EVENT'"},
}

func tableFor(kind discover.SourceKind) (sourceTable, error) {
	t, ok := sourceTables[kind]
	if !ok {
		return sourceTable{}, fmt.Errorf("%w: %s", discover.ErrInvalidSourceKind, kind)
	}
	return t, nil
}

func (t sourceTable) recordColumns() string {
	return "id, owner_id, visibility, created_at, updated_at, deleted_at, " + t.contentType
}

// Source lookups

func (r *Repository) GetProject(ctx context.Context, id uuid.UUID) (*discover.ProjectDetails, error) {
	query := `
		SELECT p.id, p.owner_id, p.visibility, p.created_at, p.updated_at, p.deleted_at,
		       p.name, p.description, p.status,
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.deleted_at IS NULL),
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.deleted_at IS NULL AND t.status = $2),
		       (SELECT COUNT(*) FROM notes n WHERE n.project_id = p.id AND n.deleted_at IS NULL),
		       (SELECT COUNT(*) FROM media_assets m WHERE m.project_id = p.id AND m.deleted_at IS NULL)
		FROM projects p
		WHERE p.id = $1 AND p.deleted_at IS NULL`

	var d discover.ProjectDetails
	err := r.db.QueryRow(ctx, query, id, discover.TaskStatusDone).Scan(
		&d.ID, &d.OwnerID, &d.Visibility, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		&d.Name, &d.Description, &d.Status,
		&d.TaskCount, &d.CompletedTaskCount, &d.NoteCount, &d.MediaCount,
	)
	if err != nil {
		return nil, r.handlePostgresError("get project", err)
	}
	return &d, nil
}

func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (*discover.TaskDetails, error) {
	query := `
		SELECT t.id, t.owner_id, t.visibility, t.created_at, t.updated_at, t.deleted_at,
		       t.project_id, t.event_id, t.title, t.description, t.status, t.priority, t.due_at,
		       p.id, p.name, e.id, e.title, e.starts_at
		FROM tasks t
		LEFT JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL
		LEFT JOIN events e ON e.id = t.event_id AND e.deleted_at IS NULL
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	var d discover.TaskDetails
	var projectID, eventID *uuid.UUID
	var projectName, eventTitle *string
	var eventStarts *time.Time
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.Visibility, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		&d.ProjectID, &d.EventID, &d.Title, &d.Description, &d.Status, &d.Priority, &d.DueAt,
		&projectID, &projectName, &eventID, &eventTitle, &eventStarts,
	)
	if err != nil {
		return nil, r.handlePostgresError("get task", err)
	}
	if projectID != nil {
		d.Project = &discover.ProjectRef{ID: *projectID, Name: deref(projectName)}
	}
	if eventID != nil {
		d.Event = &discover.EventRef{ID: *eventID, Title: deref(eventTitle)}
		if eventStarts != nil {
			d.Event.StartsAt = eventStarts.UTC()
		}
	}
	return &d, nil
}

func (r *Repository) GetNote(ctx context.Context, id uuid.UUID) (*discover.NoteDetails, error) {
	query := `
		SELECT n.id, n.owner_id, n.visibility, n.created_at, n.updated_at, n.deleted_at,
		       n.project_id, n.title, n.body, p.id, p.name
		FROM notes n
		LEFT JOIN projects p ON p.id = n.project_id AND p.deleted_at IS NULL
		WHERE n.id = $1 AND n.deleted_at IS NULL`

	var d discover.NoteDetails
	var projectID *uuid.UUID
	var projectName *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.Visibility, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		&d.ProjectID, &d.Title, &d.Body, &projectID, &projectName,
	)
	if err != nil {
		return nil, r.handlePostgresError("get note", err)
	}
	if projectID != nil {
		d.Project = &discover.ProjectRef{ID: *projectID, Name: deref(projectName)}
	}
	return &d, nil
}

func (r *Repository) GetMediaAsset(ctx context.Context, id uuid.UUID) (*discover.MediaAsset, error) {
	query := `
		SELECT id, owner_id, visibility, created_at, updated_at, deleted_at,
		       kind, project_id, file_name, object_key, thumbnail_key, mime_type, size_bytes
		FROM media_assets
		WHERE id = $1 AND deleted_at IS NULL`

	var m discover.MediaAsset
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.OwnerID, &m.Visibility, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
		&m.Kind, &m.ProjectID, &m.FileName, &m.ObjectKey, &m.ThumbnailKey, &m.MimeType, &m.SizeBytes,
	)
	if err != nil {
		return nil, r.handlePostgresError("get media asset", err)
	}
	return &m, nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*discover.EventDetails, error) {
	query := `
		SELECT e.id, e.owner_id, e.visibility, e.created_at, e.updated_at, e.deleted_at,
		       e.project_id, e.title, e.description, e.location, e.starts_at, e.ends_at,
		       (SELECT COUNT(*) FROM tasks t WHERE t.event_id = e.id AND t.deleted_at IS NULL)
		FROM events e
		WHERE e.id = $1 AND e.deleted_at IS NULL`

	var d discover.EventDetails
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.Visibility, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		&d.ProjectID, &d.Title, &d.Description, &d.Location, &d.StartsAt, &d.EndsAt,
		&d.TaskCount,
	)
	if err != nil {
		return nil, r.handlePostgresError("get event", err)
	}
	return &d, nil
}

// Sweeps

func (r *Repository) ListSourceRecords(ctx context.Context, kind discover.SourceKind, afterID uuid.UUID, limit int) ([]*discover.SourceRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE deleted_at IS NULL AND id > $1
		ORDER BY id
		LIMIT $2`, table.recordColumns(), table.name)

	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, r.handlePostgresError("list "+table.name, err)
	}
	defer rows.Close()

	var records []*discover.SourceRecord
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, r.handlePostgresError("scan "+table.name, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list "+table.name, err)
	}
	return records, nil
}

func (r *Repository) ExistingSourceIDs(ctx context.Context, kind discover.SourceKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	existing := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1) AND deleted_at IS NULL`, table.name)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, r.handlePostgresError("check "+table.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("scan "+table.name, err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("check "+table.name, err)
	}
	return existing, nil
}

func scanRecord(row pgx.Row, kind discover.SourceKind) (*discover.SourceRecord, error) {
	rec := &discover.SourceRecord{Kind: kind}
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Visibility, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt, &rec.ContentType)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
