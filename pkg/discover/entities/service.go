// Package entities implements the create, update and delete paths of the five
// source entity types. Every successful write is followed by a best-effort
// index sync; a sync failure never fails or rolls back the write.
package entities

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// Service wraps an EntityStore with index synchronization.
type Service struct {
	store  discover.EntityStore
	sync   discover.SyncHook
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the entity service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for new timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates an entity service. A nil hook disables index synchronization.
func New(store discover.EntityStore, hook discover.SyncHook, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("entity store is required")
	}
	if hook == nil {
		hook = discover.NoopSyncHook{}
	}
	s := &Service{
		store:  store,
		sync:   hook,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Projects

func (s *Service) CreateProject(ctx context.Context, p *discover.Project) (*discover.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, required("name")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if err := s.prepareCreate(&p.Record); err != nil {
		return nil, err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, &EntityError{Kind: discover.SourceProject, ID: p.ID, Op: "create", Err: err}
	}
	s.upsert(ctx, p.Record, discover.ContentTypeProject)
	return p, nil
}

func (s *Service) UpdateProject(ctx context.Context, p *discover.Project) (*discover.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, required("name")
	}
	if err := s.prepareUpdate(&p.Record); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, &EntityError{Kind: discover.SourceProject, ID: p.ID, Op: "update", Err: err}
	}
	s.upsert(ctx, p.Record, discover.ContentTypeProject)
	return p, nil
}

// Tasks

func (s *Service) CreateTask(ctx context.Context, t *discover.Task) (*discover.Task, error) {
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if t.Status == "" {
		t.Status = "todo"
	}
	if err := s.prepareCreate(&t.Record); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, &EntityError{Kind: discover.SourceTask, ID: t.ID, Op: "create", Err: err}
	}
	s.upsert(ctx, t.Record, discover.ContentTypeTask)
	return t, nil
}

func (s *Service) UpdateTask(ctx context.Context, t *discover.Task) (*discover.Task, error) {
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if err := s.prepareUpdate(&t.Record); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, &EntityError{Kind: discover.SourceTask, ID: t.ID, Op: "update", Err: err}
	}
	s.upsert(ctx, t.Record, discover.ContentTypeTask)
	return t, nil
}

func validateTask(t *discover.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return required("title")
	}
	if t.ProjectID == uuid.Nil {
		return required("project_id")
	}
	return nil
}

// Notes

func (s *Service) CreateNote(ctx context.Context, n *discover.Note) (*discover.Note, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, required("title")
	}
	if err := s.prepareCreate(&n.Record); err != nil {
		return nil, err
	}
	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, &EntityError{Kind: discover.SourceNote, ID: n.ID, Op: "create", Err: err}
	}
	s.upsert(ctx, n.Record, discover.ContentTypeNote)
	return n, nil
}

func (s *Service) UpdateNote(ctx context.Context, n *discover.Note) (*discover.Note, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, required("title")
	}
	if err := s.prepareUpdate(&n.Record); err != nil {
		return nil, err
	}
	if err := s.store.UpdateNote(ctx, n); err != nil {
		return nil, &EntityError{Kind: discover.SourceNote, ID: n.ID, Op: "update", Err: err}
	}
	s.upsert(ctx, n.Record, discover.ContentTypeNote)
	return n, nil
}

// Media assets

func (s *Service) CreateMediaAsset(ctx context.Context, m *discover.MediaAsset) (*discover.MediaAsset, error) {
	if !m.Kind.IsMedia() {
		return nil, &discover.ValidationError{Field: "kind", Value: string(m.Kind), Err: discover.ErrInvalidContentType}
	}
	if m.ObjectKey == "" {
		return nil, required("object_key")
	}
	if err := s.prepareCreate(&m.Record); err != nil {
		return nil, err
	}
	if err := s.store.CreateMediaAsset(ctx, m); err != nil {
		return nil, &EntityError{Kind: discover.SourceMediaAsset, ID: m.ID, Op: "create", Err: err}
	}
	s.upsert(ctx, m.Record, m.Kind)
	return m, nil
}

// UpdateMediaAsset updates everything but Kind, which is fixed at creation.
func (s *Service) UpdateMediaAsset(ctx context.Context, m *discover.MediaAsset) (*discover.MediaAsset, error) {
	if m.ObjectKey == "" {
		return nil, required("object_key")
	}
	if err := s.prepareUpdate(&m.Record); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMediaAsset(ctx, m); err != nil {
		return nil, &EntityError{Kind: discover.SourceMediaAsset, ID: m.ID, Op: "update", Err: err}
	}
	s.upsert(ctx, m.Record, m.Kind)
	return m, nil
}

// Events

func (s *Service) CreateEvent(ctx context.Context, e *discover.Event) (*discover.Event, error) {
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	if err := s.prepareCreate(&e.Record); err != nil {
		return nil, err
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, &EntityError{Kind: discover.SourceEvent, ID: e.ID, Op: "create", Err: err}
	}
	s.upsert(ctx, e.Record, discover.ContentTypeEvent)
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, e *discover.Event) (*discover.Event, error) {
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	if err := s.prepareUpdate(&e.Record); err != nil {
		return nil, err
	}
	if err := s.store.UpdateEvent(ctx, e); err != nil {
		return nil, &EntityError{Kind: discover.SourceEvent, ID: e.ID, Op: "update", Err: err}
	}
	s.upsert(ctx, e.Record, discover.ContentTypeEvent)
	return e, nil
}

func validateEvent(e *discover.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return required("title")
	}
	if e.StartsAt.IsZero() {
		return required("starts_at")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return &discover.ValidationError{Field: "ends_at", Err: fmt.Errorf("ends before it starts")}
	}
	return nil
}

// Deletes

// SoftDelete hides an item without removing it. Its index entry stays but is
// forced to PRIVATE so it can never appear in the public feed.
func (s *Service) SoftDelete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) error {
	if !kind.IsValid() {
		return &discover.ValidationError{Field: "kind", Value: string(kind), Err: discover.ErrInvalidSourceKind}
	}
	rec, err := s.store.SoftDelete(ctx, kind, id)
	if err != nil {
		return &EntityError{Kind: kind, ID: id, Op: "soft_delete", Err: err}
	}
	s.sync.UpsertVisibility(ctx, rec.UpsertRequest())
	return nil
}

// Delete permanently removes an item and its index entry. Deleting a project
// also removes the index entries of the tasks deleted with it.
func (s *Service) Delete(ctx context.Context, kind discover.SourceKind, id uuid.UUID) error {
	if !kind.IsValid() {
		return &discover.ValidationError{Field: "kind", Value: string(kind), Err: discover.ErrInvalidSourceKind}
	}
	deleted, err := s.store.Delete(ctx, kind, id)
	if err != nil {
		return &EntityError{Kind: kind, ID: id, Op: "delete", Err: err}
	}
	for _, rec := range deleted {
		s.sync.RemoveVisibility(ctx, rec.ContentType, rec.ID)
	}
	return nil
}

func (s *Service) prepareCreate(r *discover.Record) error {
	if r.OwnerID == uuid.Nil {
		return required("owner_id")
	}
	if r.Visibility == "" {
		r.Visibility = discover.VisibilityPrivate
	}
	if !r.Visibility.IsValid() {
		return &discover.ValidationError{Field: "visibility", Value: string(r.Visibility), Err: discover.ErrInvalidVisibility}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.DeletedAt = nil
	return nil
}

func (s *Service) prepareUpdate(r *discover.Record) error {
	if r.ID == uuid.Nil {
		return required("id")
	}
	if r.OwnerID == uuid.Nil {
		return required("owner_id")
	}
	if !r.Visibility.IsValid() {
		return &discover.ValidationError{Field: "visibility", Value: string(r.Visibility), Err: discover.ErrInvalidVisibility}
	}
	r.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	return nil
}

func (s *Service) upsert(ctx context.Context, r discover.Record, ct discover.ContentType) {
	s.logger.DebugContext(ctx, "entity written", "content_type", ct, "content_id", r.ID, "visibility", r.Visibility)
	s.sync.UpsertVisibility(ctx, discover.UpsertRequest{
		ContentType: ct,
		ContentID:   r.ID,
		Visibility:  r.Visibility,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

func required(field string) error {
	return &discover.ValidationError{Field: field, Err: discover.ErrRequired}
}
