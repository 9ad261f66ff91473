package discover_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/entities"
	"github.com/tendant/simple-discover/pkg/discover/repo/memory"
)

type fixture struct {
	svc      discover.Service
	index    *memory.IndexRepository
	sources  *memory.SourceStore
	profiles *memory.ProfileStore
	entities *entities.Service
	hooks    *discover.Hooks
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts ...discover.Option) *fixture {
	t.Helper()

	f := &fixture{
		index:    memory.NewIndexRepository(),
		sources:  memory.NewSourceStore(),
		profiles: memory.NewProfileStore(),
		hooks:    &discover.Hooks{},
	}
	base := []discover.Option{
		discover.WithIndexRepository(f.index),
		discover.WithSourceRepository(f.sources),
		discover.WithProfileProvider(f.profiles),
		discover.WithLogger(quietLogger()),
		discover.WithHooks(f.hooks),
	}
	svc, err := discover.New(append(base, opts...)...)
	require.NoError(t, err)
	f.svc = svc

	f.entities, err = entities.New(f.sources, discover.NewSyncHook(svc, quietLogger(), f.hooks))
	require.NoError(t, err)
	return f
}

func (f *fixture) publicNote(t *testing.T, owner uuid.UUID, createdAt time.Time) *discover.Note {
	t.Helper()
	n, err := f.entities.CreateNote(context.Background(), &discover.Note{
		Record: discover.Record{OwnerID: owner, Visibility: discover.VisibilityPublic, CreatedAt: createdAt},
		Title:  "note " + createdAt.Format(time.RFC3339Nano),
		Body:   "body",
	})
	require.NoError(t, err)
	return n
}

func (f *fixture) project(t *testing.T, owner uuid.UUID, visibility discover.Visibility) *discover.Project {
	t.Helper()
	p, err := f.entities.CreateProject(context.Background(), &discover.Project{
		Record: discover.Record{OwnerID: owner, Visibility: visibility},
		Name:   "project",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) entry(t *testing.T, ct discover.ContentType, id uuid.UUID) *discover.ContentIndexEntry {
	t.Helper()
	e, err := f.index.GetEntry(context.Background(), ct, id)
	require.NoError(t, err)
	return e
}

func (f *fixture) allPages(t *testing.T, req discover.FeedRequest) []*discover.FeedItem {
	t.Helper()
	var items []*discover.FeedItem
	for i := 0; i < 1000; i++ {
		page, err := f.svc.GetPublicFeed(context.Background(), req)
		require.NoError(t, err)
		items = append(items, page.Items...)
		if !page.HasMore {
			require.Nil(t, page.NextCursor)
			return items
		}
		require.NotNil(t, page.NextCursor)
		req.Cursor = *page.NextCursor
	}
	t.Fatal("pagination did not terminate")
	return nil
}

// failingIndex fails every upsert and counts attempts.
type failingIndex struct {
	discover.IndexRepository
	err     error
	upserts atomic.Int32
	deletes atomic.Int32
}

func (f *failingIndex) UpsertEntry(ctx context.Context, entry *discover.ContentIndexEntry) (*discover.ContentIndexEntry, error) {
	f.upserts.Add(1)
	return nil, f.err
}

func (f *failingIndex) DeleteEntry(ctx context.Context, ct discover.ContentType, id uuid.UUID) error {
	f.deletes.Add(1)
	return f.err
}

// flakySources fails listing for one kind and note lookups when noteErr is set.
type flakySources struct {
	discover.SourceRepository
	failKind discover.SourceKind
	noteErr  error
}

func (f *flakySources) ListSourceRecords(ctx context.Context, kind discover.SourceKind, after uuid.UUID, limit int) ([]*discover.SourceRecord, error) {
	if kind == f.failKind {
		return nil, io.ErrUnexpectedEOF
	}
	return f.SourceRepository.ListSourceRecords(ctx, kind, after, limit)
}

func (f *flakySources) GetNote(ctx context.Context, id uuid.UUID) (*discover.NoteDetails, error) {
	if f.noteErr != nil {
		return nil, f.noteErr
	}
	return f.SourceRepository.GetNote(ctx, id)
}

type failingProfiles struct{}

func (failingProfiles) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*discover.OwnerProfile, error) {
	return nil, io.ErrClosedPipe
}
