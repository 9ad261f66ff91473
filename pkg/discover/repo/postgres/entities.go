package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// Entity writes

func (r *Repository) CreateProject(ctx context.Context, p *discover.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, description, status, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Description, p.Status, p.Visibility, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create project", err)
	}
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, p *discover.Project) error {
	query := `
		UPDATE projects
		SET owner_id = $2, name = $3, description = $4, status = $5, visibility = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, deleted_at`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Description, p.Status, p.Visibility, p.UpdatedAt).Scan(&p.CreatedAt, &p.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update project", err)
	}
	return nil
}

func (r *Repository) CreateTask(ctx context.Context, t *discover.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, project_id, event_id, title, description, status, priority, due_at,
		                   visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.OwnerID, t.ProjectID, t.EventID, t.Title, t.Description, t.Status, t.Priority, t.DueAt,
		t.Visibility, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create task", err)
	}
	return nil
}

func (r *Repository) UpdateTask(ctx context.Context, t *discover.Task) error {
	query := `
		UPDATE tasks
		SET owner_id = $2, project_id = $3, event_id = $4, title = $5, description = $6, status = $7,
		    priority = $8, due_at = $9, visibility = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, deleted_at`
	err := r.db.QueryRow(ctx, query,
		t.ID, t.OwnerID, t.ProjectID, t.EventID, t.Title, t.Description, t.Status,
		t.Priority, t.DueAt, t.Visibility, t.UpdatedAt).Scan(&t.CreatedAt, &t.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update task", err)
	}
	return nil
}

func (r *Repository) CreateNote(ctx context.Context, n *discover.Note) error {
	query := `
		INSERT INTO notes (id, owner_id, project_id, title, body, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.OwnerID, n.ProjectID, n.Title, n.Body, n.Visibility, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create note", err)
	}
	return nil
}

func (r *Repository) UpdateNote(ctx context.Context, n *discover.Note) error {
	query := `
		UPDATE notes
		SET owner_id = $2, project_id = $3, title = $4, body = $5, visibility = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, deleted_at`
	err := r.db.QueryRow(ctx, query,
		n.ID, n.OwnerID, n.ProjectID, n.Title, n.Body, n.Visibility, n.UpdatedAt).Scan(&n.CreatedAt, &n.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update note", err)
	}
	return nil
}

func (r *Repository) CreateMediaAsset(ctx context.Context, m *discover.MediaAsset) error {
	query := `
		INSERT INTO media_assets (id, owner_id, kind, project_id, file_name, object_key, thumbnail_key,
		                          mime_type, size_bytes, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.OwnerID, m.Kind, m.ProjectID, m.FileName, m.ObjectKey, m.ThumbnailKey,
		m.MimeType, m.SizeBytes, m.Visibility, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create media asset", err)
	}
	return nil
}

func (r *Repository) UpdateMediaAsset(ctx context.Context, m *discover.MediaAsset) error {
	query := `
		UPDATE media_assets
		SET owner_id = $2, project_id = $3, file_name = $4, object_key = $5, thumbnail_key = $6,
		    mime_type = $7, size_bytes = $8, visibility = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING kind, created_at, deleted_at`
	err := r.db.QueryRow(ctx, query,
		m.ID, m.OwnerID, m.ProjectID, m.FileName, m.ObjectKey, m.ThumbnailKey,
		m.MimeType, m.SizeBytes, m.Visibility, m.UpdatedAt).Scan(&m.Kind, &m.CreatedAt, &m.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update media asset", err)
	}
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, e *discover.Event) error {
	query := `
		INSERT INTO events (id, owner_id, project_id, title, description, location, starts_at, ends_at,
		                    visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.OwnerID, e.ProjectID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt,
		e.Visibility, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create event", err)
	}
	return nil
}

func (r *Repository) UpdateEvent(ctx context.Context, e *discover.Event) error {
	query := `
		UPDATE events
		SET owner_id = $2, project_id = $3, title = $4, description = $5, location = $6,
		    starts_at = $7, ends_at = $8, visibility = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, deleted_at`
	err := r.db.QueryRow(ctx, query,
		e.ID, e.OwnerID, e.ProjectID, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.Visibility, e.UpdatedAt).Scan(&e.CreatedAt, &e.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update event", err)
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) (*discover.SourceRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, table.name, table.recordColumns())

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id), kind)
	if err != nil {
		return nil, r.handlePostgresError("soft delete "+string(kind), err)
	}
	return rec, nil
}

func (r *Repository) Delete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) ([]*discover.SourceRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, table.name, table.recordColumns())

	var deleted []*discover.SourceRecord
	err = r.withTx(ctx, func(db DBTX) error {
		// Tasks cascade with their project; delete them explicitly so their records are returned.
		var cascaded []*discover.SourceRecord
		if kind == discover.SourceProject {
			tasks := sourceTables[discover.SourceTask]
			cascaded, err = deleteRecords(ctx, db, discover.SourceTask,
				fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1 RETURNING %s`, tasks.name, tasks.recordColumns()), id)
			if err != nil {
				return err
			}
		}

		rec, err := scanRecord(db.QueryRow(ctx, query, id), kind)
		if err != nil {
			return err
		}
		deleted = append([]*discover.SourceRecord{rec}, cascaded...)
		return nil
	})
	if err != nil {
		return nil, r.handlePostgresError("delete "+string(kind), err)
	}
	return deleted, nil
}

func deleteRecords(ctx context.Context, db DBTX, kind discover.SourceKind, query string, args ...interface{}) ([]*discover.SourceRecord, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*discover.SourceRecord
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
