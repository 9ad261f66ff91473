package discover

import (
	"context"
	"fmt"
)

func defaultResolvers(sources SourceRepository, mediaURLs MediaURLResolver) []ContentResolver {
	return []ContentResolver{
		&ProjectResolver{Sources: sources},
		&TaskResolver{Sources: sources},
		&NoteResolver{Sources: sources},
		&MediaResolver{Sources: sources, URLs: mediaURLs},
		&EventResolver{Sources: sources},
	}
}

// ProjectResolver hydrates projects with their task, note and media counts.
type ProjectResolver struct {
	Sources SourceRepository
}

func (r *ProjectResolver) ContentTypes() []ContentType {
	return []ContentType{ContentTypeProject}
}

func (r *ProjectResolver) Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	p, err := r.Sources.GetProject(ctx, entry.ContentID)
	if err != nil {
		return nil, err
	}
	if p.DeletedAt != nil {
		return nil, ErrSourceNotFound
	}
	return &ContentSnapshot{
		Type:   ContentTypeProject,
		ID:     p.ID,
		Title:  p.Name,
		Body:   p.Description,
		Status: p.Status,
		Counts: &ContentCounts{
			Tasks:          p.TaskCount,
			CompletedTasks: p.CompletedTaskCount,
			Notes:          p.NoteCount,
			Media:          p.MediaCount,
		},
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Visibility: p.Visibility,
		OwnerID:    p.OwnerID,
	}, nil
}

// TaskResolver hydrates tasks with their project and optional event.
type TaskResolver struct {
	Sources SourceRepository
}

func (r *TaskResolver) ContentTypes() []ContentType {
	return []ContentType{ContentTypeTask}
}

func (r *TaskResolver) Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	t, err := r.Sources.GetTask(ctx, entry.ContentID)
	if err != nil {
		return nil, err
	}
	if t.DeletedAt != nil {
		return nil, ErrSourceNotFound
	}
	return &ContentSnapshot{
		Type:       ContentTypeTask,
		ID:         t.ID,
		Title:      t.Title,
		Body:       t.Description,
		Status:     t.Status,
		Priority:   t.Priority,
		DueAt:      t.DueAt,
		Project:    t.Project,
		Event:      t.Event,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		Visibility: t.Visibility,
		OwnerID:    t.OwnerID,
	}, nil
}

// NoteResolver hydrates notes with their project.
type NoteResolver struct {
	Sources SourceRepository
}

func (r *NoteResolver) ContentTypes() []ContentType {
	return []ContentType{ContentTypeNote}
}

func (r *NoteResolver) Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	n, err := r.Sources.GetNote(ctx, entry.ContentID)
	if err != nil {
		return nil, err
	}
	if n.DeletedAt != nil {
		return nil, ErrSourceNotFound
	}
	return &ContentSnapshot{
		Type:       ContentTypeNote,
		ID:         n.ID,
		Title:      n.Title,
		Body:       n.Body,
		Project:    n.Project,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		Visibility: n.Visibility,
		OwnerID:    n.OwnerID,
	}, nil
}

// MediaResolver hydrates photos, screenshots and documents with fetchable URLs.
type MediaResolver struct {
	Sources SourceRepository
	URLs    MediaURLResolver
}

func (r *MediaResolver) ContentTypes() []ContentType {
	return []ContentType{ContentTypePhoto, ContentTypeScreenshot, ContentTypeDocument}
}

func (r *MediaResolver) Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	m, err := r.Sources.GetMediaAsset(ctx, entry.ContentID)
	if err != nil {
		return nil, err
	}
	if m.DeletedAt != nil {
		return nil, ErrSourceNotFound
	}
	if m.Kind != entry.ContentType {
		return nil, fmt.Errorf("%w: media kind is %s", ErrSourceNotFound, m.Kind)
	}

	url, err := r.URLs.ResolveURL(ctx, m.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("resolve media url: %w", err)
	}
	info := &MediaInfo{
		URL:       url,
		FileName:  m.FileName,
		MimeType:  m.MimeType,
		SizeBytes: m.SizeBytes,
	}
	if m.ThumbnailKey != "" {
		thumb, err := r.URLs.ResolveURL(ctx, m.ThumbnailKey)
		if err != nil {
			return nil, fmt.Errorf("resolve thumbnail url: %w", err)
		}
		info.ThumbnailURL = thumb
	}

	return &ContentSnapshot{
		Type:       m.Kind,
		ID:         m.ID,
		Title:      m.FileName,
		Media:      info,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Visibility: m.Visibility,
		OwnerID:    m.OwnerID,
	}, nil
}

// EventResolver hydrates events with their task count.
type EventResolver struct {
	Sources SourceRepository
}

func (r *EventResolver) ContentTypes() []ContentType {
	return []ContentType{ContentTypeEvent}
}

func (r *EventResolver) Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error) {
	e, err := r.Sources.GetEvent(ctx, entry.ContentID)
	if err != nil {
		return nil, err
	}
	if e.DeletedAt != nil {
		return nil, ErrSourceNotFound
	}
	startsAt := e.StartsAt
	return &ContentSnapshot{
		Type:       ContentTypeEvent,
		ID:         e.ID,
		Title:      e.Title,
		Body:       e.Description,
		Location:   e.Location,
		StartsAt:   &startsAt,
		EndsAt:     e.EndsAt,
		Counts:     &ContentCounts{Tasks: e.TaskCount},
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		Visibility: e.Visibility,
		OwnerID:    e.OwnerID,
	}, nil
}
