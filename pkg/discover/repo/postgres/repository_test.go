package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	tests := []struct {
		name   string
		err    error
		target error
		text   string
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, discover.ErrSourceExists, ""},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, discover.ErrSourceNotFound, ""},
		{"no rows", pgx.ErrNoRows, discover.ErrSourceNotFound, ""},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "media_assets_kind_check"}, nil, "media_assets_kind_check"},
		{"missing table", &pgconn.PgError{Code: "42P01"}, nil, "migration required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.handlePostgresError("op", tt.err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.text != "" {
				assert.Contains(t, err.Error(), tt.text)
			}
		})
	}
}

func TestMigrateDBWrapsGooseErrors(t *testing.T) {
	original := gooseUpContext
	defer func() { gooseUpContext = original }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return errors.New("lock timeout")
	}

	err := MigrateDB(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migrations")
	assert.Equal(t, ".", gotDir)
}

// newTestRepository migrates a throwaway schema in TEST_DATABASE_URL.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	schema := "discover_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", pgx.Identifier{schema}.Sanitize()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", pgx.Identifier{schema}.Sanitize()))
		pool.Close()
	})

	require.NoError(t, Migrate(ctx, pool))
	return NewWithPool(pool)
}

func ts(minutes int) time.Time {
	return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func rec(owner uuid.UUID, visibility discover.Visibility, minutes int) discover.Record {
	return discover.Record{ID: uuid.New(), OwnerID: owner, Visibility: visibility, CreatedAt: ts(minutes), UpdatedAt: ts(minutes)}
}

func TestIndexRepository(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	caller, author := uuid.New(), uuid.New()

	upsert := func(ct discover.ContentType, owner uuid.UUID, vis discover.Visibility, minutes int) *discover.ContentIndexEntry {
		e, err := repo.UpsertEntry(ctx, &discover.ContentIndexEntry{
			ContentType: ct, ContentID: uuid.New(), Visibility: vis, OwnerID: owner,
			CreatedAt: ts(minutes), UpdatedAt: ts(minutes),
		})
		require.NoError(t, err)
		return e
	}

	newest := upsert(discover.ContentTypeNote, author, discover.VisibilityPublic, 10)
	for i := 0; i < 3; i++ {
		upsert(discover.ContentTypeTask, author, discover.VisibilityPublic, 5)
	}
	upsert(discover.ContentTypeNote, caller, discover.VisibilityPublic, 20)
	upsert(discover.ContentTypeNote, author, discover.VisibilityContacts, 30)

	t.Run("upsert keeps identity", func(t *testing.T) {
		again, err := repo.UpsertEntry(ctx, &discover.ContentIndexEntry{
			ContentType: newest.ContentType, ContentID: newest.ContentID,
			Visibility: discover.VisibilityPublic, OwnerID: author, UpdatedAt: ts(11),
		})
		require.NoError(t, err)
		assert.Equal(t, newest.ID, again.ID)
		assert.True(t, newest.CreatedAt.Equal(again.CreatedAt))
	})

	t.Run("list public", func(t *testing.T) {
		rows, err := repo.ListPublic(ctx, discover.PublicFeedQuery{ExcludeOwnerID: caller, Limit: 10})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, newest.ID, rows[0].ID)
		for i := 1; i < 3; i++ {
			assert.Positive(t, discover.CompareIDs(rows[i].ID, rows[i+1].ID))
		}

		cursor := discover.CursorFor(rows[1])
		rest, err := repo.ListPublic(ctx, discover.PublicFeedQuery{ExcludeOwnerID: caller, After: &cursor, Limit: 10})
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Equal(t, rows[2].ID, rest[0].ID)

		notes, err := repo.ListPublic(ctx, discover.PublicFeedQuery{ExcludeOwnerID: caller, ContentType: discover.ContentTypeNote, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.PublicStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.TotalPublic)
		assert.Equal(t, int64(2), stats.DistinctOwners)
		assert.Equal(t, int64(3), stats.ByContentType[discover.ContentTypeTask])
	})

	t.Run("list entries and delete", func(t *testing.T) {
		tasks, err := repo.ListEntries(ctx, discover.ContentTypeTask, uuid.Nil, 2)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		more, err := repo.ListEntries(ctx, discover.ContentTypeTask, tasks[1].ContentID, 2)
		require.NoError(t, err)
		require.Len(t, more, 1)

		require.NoError(t, repo.DeleteEntry(ctx, more[0].ContentType, more[0].ContentID))
		require.NoError(t, repo.DeleteEntry(ctx, more[0].ContentType, more[0].ContentID))
		_, err = repo.GetEntry(ctx, more[0].ContentType, more[0].ContentID)
		assert.ErrorIs(t, err, discover.ErrEntryNotFound)
	})
}

func TestSourcesAndEntities(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()
	require.NoError(t, repo.UpsertProfile(ctx, &discover.OwnerProfile{ID: owner, DisplayName: "Grace", Handle: "grace"}))

	project := &discover.Project{Record: rec(owner, discover.VisibilityPublic, 0), Name: "Compiler", Status: "active"}
	require.NoError(t, repo.CreateProject(ctx, project))
	assert.ErrorIs(t, repo.CreateProject(ctx, project), discover.ErrSourceExists)

	event := &discover.Event{Record: rec(owner, discover.VisibilityPublic, 1), ProjectID: &project.ID, Title: "Launch", StartsAt: ts(60)}
	require.NoError(t, repo.CreateEvent(ctx, event))
	task := &discover.Task{Record: rec(owner, discover.VisibilityPublic, 2), ProjectID: project.ID, EventID: &event.ID, Title: "Ship", Status: discover.TaskStatusDone}
	require.NoError(t, repo.CreateTask(ctx, task))
	note := &discover.Note{Record: rec(owner, discover.VisibilityPrivate, 3), ProjectID: &project.ID, Title: "Ideas"}
	require.NoError(t, repo.CreateNote(ctx, note))
	asset := &discover.MediaAsset{Record: rec(owner, discover.VisibilityPublic, 4), Kind: discover.ContentTypePhoto, ProjectID: &project.ID, ObjectKey: "p/1.jpg", MimeType: "image/jpeg"}
	require.NoError(t, repo.CreateMediaAsset(ctx, asset))

	t.Run("details", func(t *testing.T) {
		details, err := repo.GetProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), details.TaskCount)
		assert.Equal(t, int64(1), details.CompletedTaskCount)
		assert.Equal(t, int64(1), details.NoteCount)
		assert.Equal(t, int64(1), details.MediaCount)

		td, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, td.Project)
		require.NotNil(t, td.Event)
		assert.Equal(t, "Launch", td.Event.Title)

		ed, err := repo.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ed.TaskCount)

		profiles, err := repo.GetProfiles(ctx, []uuid.UUID{owner, uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, "grace", profiles[owner].Handle)
	})

	t.Run("update keeps kind and created_at", func(t *testing.T) {
		update := *asset
		update.Kind = discover.ContentTypeDocument
		update.CreatedAt = time.Time{}
		update.ObjectKey = "p/2.jpg"
		update.UpdatedAt = ts(100)
		require.NoError(t, repo.UpdateMediaAsset(ctx, &update))
		assert.Equal(t, discover.ContentTypePhoto, update.Kind)
		assert.True(t, ts(4).Equal(update.CreatedAt))

		missing := *note
		missing.ID = uuid.New()
		assert.ErrorIs(t, repo.UpdateNote(ctx, &missing), discover.ErrSourceNotFound)
	})

	t.Run("soft delete hides", func(t *testing.T) {
		r, err := repo.SoftDelete(ctx, discover.SourceNote, note.ID)
		require.NoError(t, err)
		assert.NotNil(t, r.DeletedAt)
		_, err = repo.GetNote(ctx, note.ID)
		assert.ErrorIs(t, err, discover.ErrSourceNotFound)

		live, err := repo.ExistingSourceIDs(ctx, discover.SourceNote, []uuid.UUID{note.ID})
		require.NoError(t, err)
		assert.False(t, live[note.ID])
	})

	t.Run("list source records", func(t *testing.T) {
		records, err := repo.ListSourceRecords(ctx, discover.SourceMediaAsset, uuid.Nil, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, discover.ContentTypePhoto, records[0].ContentType)
	})

	t.Run("project delete cascades", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, discover.SourceProject, project.ID)
		require.NoError(t, err)
		require.Len(t, deleted, 2)
		assert.Equal(t, discover.ContentTypeProject, deleted[0].ContentType)
		assert.Equal(t, project.ID, deleted[0].ID)
		assert.Equal(t, discover.ContentTypeTask, deleted[1].ContentType)
		assert.Equal(t, task.ID, deleted[1].ID)

		_, err = repo.GetTask(ctx, task.ID)
		assert.ErrorIs(t, err, discover.ErrSourceNotFound)

		m, err := repo.GetMediaAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Nil(t, m.ProjectID)
	})
}
