package entities_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/entities"
	"github.com/tendant/simple-discover/pkg/discover/repo/memory"
)

type removal struct {
	contentType discover.ContentType
	contentID   uuid.UUID
}

// recordingSync captures every sync call made by the entity service.
type recordingSync struct {
	mu       sync.Mutex
	upserts  []discover.UpsertRequest
	removals []removal
}

func (r *recordingSync) UpsertVisibility(ctx context.Context, req discover.UpsertRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, req)
}

func (r *recordingSync) RemoveVisibility(ctx context.Context, contentType discover.ContentType, contentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removals = append(r.removals, removal{contentType, contentID})
}

func (r *recordingSync) last() discover.UpsertRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts[len(r.upserts)-1]
}

var now = time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)

func newService(t *testing.T) (*entities.Service, *memory.SourceStore, *recordingSync) {
	t.Helper()
	store := memory.NewSourceStore()
	hook := &recordingSync{}
	svc, err := entities.New(store, hook, entities.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return svc, store, hook
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)
	owner := uuid.New()

	project, err := svc.CreateProject(ctx, &discover.Project{Record: discover.Record{OwnerID: owner}, Name: "Garden"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, discover.VisibilityPrivate, project.Visibility)
	assert.Equal(t, "active", project.Status)
	assert.Equal(t, now.Truncate(time.Microsecond), project.CreatedAt)
	assert.Equal(t, project.CreatedAt, project.UpdatedAt)

	require.Len(t, hook.upserts, 1)
	req := hook.last()
	assert.Equal(t, discover.ContentTypeProject, req.ContentType)
	assert.Equal(t, project.ID, req.ContentID)
	assert.Equal(t, owner, req.OwnerID)
	assert.Equal(t, discover.VisibilityPrivate, req.Visibility)
	assert.False(t, req.Deleted)

	task, err := svc.CreateTask(ctx, &discover.Task{
		Record:    discover.Record{OwnerID: owner, Visibility: discover.VisibilityPublic},
		ProjectID: project.ID,
		Title:     "Plant tomatoes",
	})
	require.NoError(t, err)
	assert.Equal(t, "todo", task.Status)
	assert.Equal(t, discover.ContentTypeTask, hook.last().ContentType)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)
	owner := uuid.New()
	rec := discover.Record{OwnerID: owner}
	starts := now
	before := now.Add(-time.Hour)

	tests := []struct {
		name  string
		field string
		run   func() error
	}{
		{"project name", "name", func() error {
			_, err := svc.CreateProject(ctx, &discover.Project{Record: rec, Name: "  "})
			return err
		}},
		{"owner", "owner_id", func() error {
			_, err := svc.CreateNote(ctx, &discover.Note{Title: "n"})
			return err
		}},
		{"visibility", "visibility", func() error {
			_, err := svc.CreateNote(ctx, &discover.Note{Record: discover.Record{OwnerID: owner, Visibility: "FRIENDS"}, Title: "n"})
			return err
		}},
		{"task project", "project_id", func() error {
			_, err := svc.CreateTask(ctx, &discover.Task{Record: rec, Title: "t"})
			return err
		}},
		{"media kind", "kind", func() error {
			_, err := svc.CreateMediaAsset(ctx, &discover.MediaAsset{Record: rec, Kind: discover.ContentTypeNote, ObjectKey: "k"})
			return err
		}},
		{"media object key", "object_key", func() error {
			_, err := svc.CreateMediaAsset(ctx, &discover.MediaAsset{Record: rec, Kind: discover.ContentTypePhoto})
			return err
		}},
		{"event start", "starts_at", func() error {
			_, err := svc.CreateEvent(ctx, &discover.Event{Record: rec, Title: "e"})
			return err
		}},
		{"event end", "ends_at", func() error {
			_, err := svc.CreateEvent(ctx, &discover.Event{Record: rec, Title: "e", StartsAt: starts, EndsAt: &before})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ve *discover.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Empty(t, hook.upserts, "rejected writes are never synced")
}

func TestUpdateSyncsStoredValues(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)
	owner := uuid.New()

	created := time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC)
	asset, err := svc.CreateMediaAsset(ctx, &discover.MediaAsset{
		Record:    discover.Record{OwnerID: owner, CreatedAt: created},
		Kind:      discover.ContentTypeScreenshot,
		ObjectKey: "shots/1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, discover.ContentTypeScreenshot, hook.last().ContentType)

	update := &discover.MediaAsset{
		Record:    discover.Record{ID: asset.ID, OwnerID: owner, Visibility: discover.VisibilityPublic},
		Kind:      discover.ContentTypePhoto,
		ObjectKey: "shots/1-v2.png",
	}
	updated, err := svc.UpdateMediaAsset(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, discover.ContentTypeScreenshot, updated.Kind, "kind is fixed at creation")
	req := hook.last()
	assert.Equal(t, discover.ContentTypeScreenshot, req.ContentType)
	assert.Equal(t, discover.VisibilityPublic, req.Visibility)
	assert.Equal(t, created, req.CreatedAt)
}

func TestUpdateMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)

	_, err := svc.UpdateNote(ctx, &discover.Note{
		Record: discover.Record{ID: uuid.New(), OwnerID: uuid.New(), Visibility: discover.VisibilityPublic},
		Title:  "ghost",
	})

	var entityErr *entities.EntityError
	require.ErrorAs(t, err, &entityErr)
	assert.Equal(t, "update", entityErr.Op)
	assert.ErrorIs(t, err, discover.ErrSourceNotFound)
	assert.Empty(t, hook.upserts)
}

func TestSoftDeleteSyncsDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)

	note, err := svc.CreateNote(ctx, &discover.Note{
		Record: discover.Record{OwnerID: uuid.New(), Visibility: discover.VisibilityPublic},
		Title:  "n",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, discover.SourceNote, note.ID))
	req := hook.last()
	assert.True(t, req.Deleted)
	assert.Equal(t, note.ID, req.ContentID)
	assert.Equal(t, note.CreatedAt, req.CreatedAt)

	err = svc.SoftDelete(ctx, discover.SourceNote, note.ID)
	assert.ErrorIs(t, err, discover.ErrSourceNotFound)

	err = svc.SoftDelete(ctx, discover.SourceKind("poll"), note.ID)
	assert.True(t, discover.IsValidationError(err))
}

func TestDeleteRemovesWithContentType(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)

	asset, err := svc.CreateMediaAsset(ctx, &discover.MediaAsset{
		Record:    discover.Record{OwnerID: uuid.New()},
		Kind:      discover.ContentTypeDocument,
		ObjectKey: "docs/a.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, discover.SourceMediaAsset, asset.ID))
	require.Len(t, hook.removals, 1)
	assert.Equal(t, removal{discover.ContentTypeDocument, asset.ID}, hook.removals[0])
}

func TestDeleteProjectRemovesItsTasks(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newService(t)
	owner := uuid.New()

	project, err := svc.CreateProject(ctx, &discover.Project{Record: discover.Record{OwnerID: owner}, Name: "p"})
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, &discover.Task{Record: discover.Record{OwnerID: owner}, ProjectID: project.ID, Title: "t"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, discover.SourceProject, project.ID))
	assert.Equal(t, []removal{
		{discover.ContentTypeProject, project.ID},
		{discover.ContentTypeTask, task.ID},
	}, hook.removals)
}

type failingStore struct {
	discover.EntityStore
}

func (failingStore) CreateNote(ctx context.Context, note *discover.Note) error {
	return errors.New("disk full")
}

func TestStoreFailureSkipsSync(t *testing.T) {
	hook := &recordingSync{}
	svc, err := entities.New(failingStore{}, hook)
	require.NoError(t, err)

	_, err = svc.CreateNote(context.Background(), &discover.Note{Record: discover.Record{OwnerID: uuid.New()}, Title: "n"})
	require.Error(t, err)
	assert.Empty(t, hook.upserts)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := entities.New(nil, nil)
	assert.Error(t, err)
}
