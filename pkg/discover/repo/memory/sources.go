package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// SourceStore keeps the five source entity tables in memory. It implements
// both discover.SourceRepository and discover.EntityStore.
//
// Permanently deleting a project also deletes its tasks and detaches its
// notes, media and events, the same way the postgres foreign keys behave.
type SourceStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*discover.Project
	tasks    map[uuid.UUID]*discover.Task
	notes    map[uuid.UUID]*discover.Note
	media    map[uuid.UUID]*discover.MediaAsset
	events   map[uuid.UUID]*discover.Event
	now      func() time.Time
}

// NewSourceStore creates an empty in-memory source store
func NewSourceStore() *SourceStore {
	return &SourceStore{
		projects: make(map[uuid.UUID]*discover.Project),
		tasks:    make(map[uuid.UUID]*discover.Task),
		notes:    make(map[uuid.UUID]*discover.Note),
		media:    make(map[uuid.UUID]*discover.MediaAsset),
		events:   make(map[uuid.UUID]*discover.Event),
		now:      time.Now,
	}
}

// Read side

func (s *SourceStore) GetProject(ctx context.Context, id uuid.UUID) (*discover.ProjectDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}

	details := &discover.ProjectDetails{Project: *p}
	for _, t := range s.tasks {
		if t.ProjectID == id && t.DeletedAt == nil {
			details.TaskCount++
			if t.Status == discover.TaskStatusDone {
				details.CompletedTaskCount++
			}
		}
	}
	for _, n := range s.notes {
		if n.ProjectID != nil && *n.ProjectID == id && n.DeletedAt == nil {
			details.NoteCount++
		}
	}
	for _, m := range s.media {
		if m.ProjectID != nil && *m.ProjectID == id && m.DeletedAt == nil {
			details.MediaCount++
		}
	}
	return details, nil
}

func (s *SourceStore) GetTask(ctx context.Context, id uuid.UUID) (*discover.TaskDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}

	details := &discover.TaskDetails{Task: *t}
	details.Project = s.projectRef(&t.ProjectID)
	if t.EventID != nil {
		if e, ok := s.events[*t.EventID]; ok && e.DeletedAt == nil {
			details.Event = &discover.EventRef{ID: e.ID, Title: e.Title, StartsAt: e.StartsAt}
		}
	}
	return details, nil
}

func (s *SourceStore) GetNote(ctx context.Context, id uuid.UUID) (*discover.NoteDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}
	return &discover.NoteDetails{Note: *n, Project: s.projectRef(n.ProjectID)}, nil
}

func (s *SourceStore) GetMediaAsset(ctx context.Context, id uuid.UUID) (*discover.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[id]
	if !ok || m.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}
	out := *m
	return &out, nil
}

func (s *SourceStore) GetEvent(ctx context.Context, id uuid.UUID) (*discover.EventDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok || e.DeletedAt != nil {
		return nil, discover.ErrSourceNotFound
	}

	details := &discover.EventDetails{Event: *e}
	for _, t := range s.tasks {
		if t.EventID != nil && *t.EventID == id && t.DeletedAt == nil {
			details.TaskCount++
		}
	}
	return details, nil
}

func (s *SourceStore) ListSourceRecords(ctx context.Context, kind discover.SourceKind, afterID uuid.UUID, limit int) ([]*discover.SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.records(kind)
	if err != nil {
		return nil, err
	}

	var result []*discover.SourceRecord
	for _, rec := range all {
		if rec.DeletedAt == nil && discover.CompareIDs(rec.ID, afterID) > 0 {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return discover.CompareIDs(result[i].ID, result[j].ID) < 0
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *SourceStore) ExistingSourceIDs(ctx context.Context, kind discover.SourceKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		rec, err := s.record(kind, id)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.DeletedAt == nil {
			existing[id] = true
		}
	}
	return existing, nil
}

func (s *SourceStore) projectRef(id *uuid.UUID) *discover.ProjectRef {
	if id == nil {
		return nil
	}
	p, ok := s.projects[*id]
	if !ok || p.DeletedAt != nil {
		return nil
	}
	return &discover.ProjectRef{ID: p.ID, Name: p.Name}
}

// records returns a copy of every row header of kind, deleted or not.
func (s *SourceStore) records(kind discover.SourceKind) ([]*discover.SourceRecord, error) {
	var out []*discover.SourceRecord
	switch kind {
	case discover.SourceProject:
		for _, p := range s.projects {
			out = append(out, newRecord(p.Record, kind, discover.ContentTypeProject))
		}
	case discover.SourceTask:
		for _, t := range s.tasks {
			out = append(out, newRecord(t.Record, kind, discover.ContentTypeTask))
		}
	case discover.SourceNote:
		for _, n := range s.notes {
			out = append(out, newRecord(n.Record, kind, discover.ContentTypeNote))
		}
	case discover.SourceMediaAsset:
		for _, m := range s.media {
			out = append(out, newRecord(m.Record, kind, m.Kind))
		}
	case discover.SourceEvent:
		for _, e := range s.events {
			out = append(out, newRecord(e.Record, kind, discover.ContentTypeEvent))
		}
	default:
		return nil, fmt.Errorf("%w: %s", discover.ErrInvalidSourceKind, kind)
	}
	return out, nil
}

// record returns the header of one row, or nil when it does not exist.
func (s *SourceStore) record(kind discover.SourceKind, id uuid.UUID) (*discover.SourceRecord, error) {
	switch kind {
	case discover.SourceProject:
		if p, ok := s.projects[id]; ok {
			return newRecord(p.Record, kind, discover.ContentTypeProject), nil
		}
	case discover.SourceTask:
		if t, ok := s.tasks[id]; ok {
			return newRecord(t.Record, kind, discover.ContentTypeTask), nil
		}
	case discover.SourceNote:
		if n, ok := s.notes[id]; ok {
			return newRecord(n.Record, kind, discover.ContentTypeNote), nil
		}
	case discover.SourceMediaAsset:
		if m, ok := s.media[id]; ok {
			return newRecord(m.Record, kind, m.Kind), nil
		}
	case discover.SourceEvent:
		if e, ok := s.events[id]; ok {
			return newRecord(e.Record, kind, discover.ContentTypeEvent), nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", discover.ErrInvalidSourceKind, kind)
	}
	return nil, nil
}

func newRecord(r discover.Record, kind discover.SourceKind, ct discover.ContentType) *discover.SourceRecord {
	return &discover.SourceRecord{Record: r, Kind: kind, ContentType: ct}
}
