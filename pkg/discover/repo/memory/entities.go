package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// Write side

func (s *SourceStore) CreateProject(ctx context.Context, project *discover.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; exists {
		return fmt.Errorf("project %s: %w", project.ID, discover.ErrSourceExists)
	}
	projectCopy := *project
	s.projects[project.ID] = &projectCopy
	return nil
}

func (s *SourceStore) UpdateProject(ctx context.Context, project *discover.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[project.ID]
	if !ok || existing.DeletedAt != nil {
		return discover.ErrSourceNotFound
	}
	project.CreatedAt = existing.CreatedAt
	project.DeletedAt = existing.DeletedAt
	projectCopy := *project
	s.projects[project.ID] = &projectCopy
	return nil
}

func (s *SourceStore) CreateTask(ctx context.Context, task *discover.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s: %w", task.ID, discover.ErrSourceExists)
	}
	if _, ok := s.projects[task.ProjectID]; !ok {
		return fmt.Errorf("task project %s: %w", task.ProjectID, discover.ErrSourceNotFound)
	}
	taskCopy := *task
	s.tasks[task.ID] = &taskCopy
	return nil
}

func (s *SourceStore) UpdateTask(ctx context.Context, task *discover.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.DeletedAt != nil {
		return discover.ErrSourceNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.DeletedAt = existing.DeletedAt
	taskCopy := *task
	s.tasks[task.ID] = &taskCopy
	return nil
}

func (s *SourceStore) CreateNote(ctx context.Context, note *discover.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[note.ID]; exists {
		return fmt.Errorf("note %s: %w", note.ID, discover.ErrSourceExists)
	}
	noteCopy := *note
	s.notes[note.ID] = &noteCopy
	return nil
}

func (s *SourceStore) UpdateNote(ctx context.Context, note *discover.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[note.ID]
	if !ok || existing.DeletedAt != nil {
		return discover.ErrSourceNotFound
	}
	note.CreatedAt = existing.CreatedAt
	note.DeletedAt = existing.DeletedAt
	noteCopy := *note
	s.notes[note.ID] = &noteCopy
	return nil
}

func (s *SourceStore) CreateMediaAsset(ctx context.Context, asset *discover.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.media[asset.ID]; exists {
		return fmt.Errorf("media asset %s: %w", asset.ID, discover.ErrSourceExists)
	}
	assetCopy := *asset
	s.media[asset.ID] = &assetCopy
	return nil
}

func (s *SourceStore) UpdateMediaAsset(ctx context.Context, asset *discover.MediaAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.media[asset.ID]
	if !ok || existing.DeletedAt != nil {
		return discover.ErrSourceNotFound
	}
	asset.Kind = existing.Kind
	asset.CreatedAt = existing.CreatedAt
	asset.DeletedAt = existing.DeletedAt
	assetCopy := *asset
	s.media[asset.ID] = &assetCopy
	return nil
}

func (s *SourceStore) CreateEvent(ctx context.Context, event *discover.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return fmt.Errorf("event %s: %w", event.ID, discover.ErrSourceExists)
	}
	eventCopy := *event
	s.events[event.ID] = &eventCopy
	return nil
}

func (s *SourceStore) UpdateEvent(ctx context.Context, event *discover.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok || existing.DeletedAt != nil {
		return discover.ErrSourceNotFound
	}
	event.CreatedAt = existing.CreatedAt
	event.DeletedAt = existing.DeletedAt
	eventCopy := *event
	s.events[event.ID] = &eventCopy
	return nil
}

func (s *SourceStore) SoftDelete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) (*discover.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, err := s.header(kind, id)
	if err != nil {
		return nil, err
	}
	if header == nil || header.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	header.DeletedAt = &now
	header.UpdatedAt = now
	return s.record(kind, id)
}

func (s *SourceStore) Delete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) ([]*discover.SourceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.record(kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, discover.ErrSourceNotFound
	}

	deleted := []*discover.SourceRecord{rec}
	switch kind {
	case discover.SourceProject:
		delete(s.projects, id)
		for taskID, t := range s.tasks {
			if t.ProjectID == id {
				deleted = append(deleted, newRecord(t.Record, discover.SourceTask, discover.ContentTypeTask))
				delete(s.tasks, taskID)
			}
		}
		for _, n := range s.notes {
			if n.ProjectID != nil && *n.ProjectID == id {
				n.ProjectID = nil
			}
		}
		for _, m := range s.media {
			if m.ProjectID != nil && *m.ProjectID == id {
				m.ProjectID = nil
			}
		}
		for _, e := range s.events {
			if e.ProjectID != nil && *e.ProjectID == id {
				e.ProjectID = nil
			}
		}
	case discover.SourceTask:
		delete(s.tasks, id)
	case discover.SourceNote:
		delete(s.notes, id)
	case discover.SourceMediaAsset:
		delete(s.media, id)
	case discover.SourceEvent:
		delete(s.events, id)
		for _, t := range s.tasks {
			if t.EventID != nil && *t.EventID == id {
				t.EventID = nil
			}
		}
	}
	return deleted, nil
}

// header returns a pointer to the stored row header so it can be modified in place.
func (s *SourceStore) header(kind discover.SourceKind, id uuid.UUID) (*discover.Record, error) {
	switch kind {
	case discover.SourceProject:
		if p, ok := s.projects[id]; ok {
			return &p.Record, nil
		}
	case discover.SourceTask:
		if t, ok := s.tasks[id]; ok {
			return &t.Record, nil
		}
	case discover.SourceNote:
		if n, ok := s.notes[id]; ok {
			return &n.Record, nil
		}
	case discover.SourceMediaAsset:
		if m, ok := s.media[id]; ok {
			return &m.Record, nil
		}
	case discover.SourceEvent:
		if e, ok := s.events[id]; ok {
			return &e.Record, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", discover.ErrInvalidSourceKind, kind)
	}
	return nil, nil
}

// SetClock overrides the time source used for soft deletes.
func (s *SourceStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
