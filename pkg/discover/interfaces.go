package discover

import (
	"context"

	"github.com/google/uuid"
)

// IndexRepository persists content index entries. The synchronizer is its
// only writer.
type IndexRepository interface {
	// UpsertEntry creates or replaces the entry keyed by (ContentType, ContentID).
	// entry.ID is used only when a new row is inserted. A zero CreatedAt keeps
	// the stored value (or uses the write time on insert).
	UpsertEntry(ctx context.Context, entry *ContentIndexEntry) (*ContentIndexEntry, error)

	// DeleteEntry removes the entry if present. Absence is not an error.
	DeleteEntry(ctx context.Context, contentType ContentType, contentID uuid.UUID) error

	// GetEntry returns ErrEntryNotFound when no entry exists for the key.
	GetEntry(ctx context.Context, contentType ContentType, contentID uuid.UUID) (*ContentIndexEntry, error)

	// ListPublic returns PUBLIC entries not owned by q.ExcludeOwnerID, ordered by
	// (created_at DESC, id DESC), strictly after q.After when set.
	ListPublic(ctx context.Context, q PublicFeedQuery) ([]*ContentIndexEntry, error)

	// ListEntries pages through all entries of one content type ordered by
	// content_id, strictly after afterContentID.
	ListEntries(ctx context.Context, contentType ContentType, afterContentID uuid.UUID, limit int) ([]*ContentIndexEntry, error)

	// PublicStats aggregates PUBLIC entries.
	PublicStats(ctx context.Context) (*FeedStats, error)
}

// SourceRepository exposes by-id lookups and sweeps over the five source
// entity stores. Soft-deleted rows never resolve.
type SourceRepository interface {
	GetProject(ctx context.Context, id uuid.UUID) (*ProjectDetails, error)
	GetTask(ctx context.Context, id uuid.UUID) (*TaskDetails, error)
	GetNote(ctx context.Context, id uuid.UUID) (*NoteDetails, error)
	GetMediaAsset(ctx context.Context, id uuid.UUID) (*MediaAsset, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventDetails, error)

	// ListSourceRecords pages through live (not soft-deleted) rows of one kind
	// ordered by id, strictly after afterID.
	ListSourceRecords(ctx context.Context, kind SourceKind, afterID uuid.UUID, limit int) ([]*SourceRecord, error)

	// ExistingSourceIDs returns which of ids are live rows of the given kind.
	ExistingSourceIDs(ctx context.Context, kind SourceKind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// EntityStore is the write side of the five source entity stores.
// Updates never change CreatedAt or DeletedAt; the stored values are copied
// back into the argument.
type EntityStore interface {
	CreateProject(ctx context.Context, project *Project) error
	UpdateProject(ctx context.Context, project *Project) error
	CreateTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, task *Task) error
	CreateNote(ctx context.Context, note *Note) error
	UpdateNote(ctx context.Context, note *Note) error
	CreateMediaAsset(ctx context.Context, asset *MediaAsset) error
	// UpdateMediaAsset never changes Kind; asset.Kind is set to the stored value.
	UpdateMediaAsset(ctx context.Context, asset *MediaAsset) error
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) error

	// SoftDelete marks a live row deleted and returns its record.
	SoftDelete(ctx context.Context, kind SourceKind, id uuid.UUID) (*SourceRecord, error)

	// Delete permanently removes a row. The first record is the deleted row;
	// any rows removed with it (a project's tasks) follow.
	Delete(ctx context.Context, kind SourceKind, id uuid.UUID) ([]*SourceRecord, error)
}

// ProfileProvider supplies owner profiles from the identity provider.
// Missing ids are simply absent from the returned map.
type ProfileProvider interface {
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*OwnerProfile, error)
}

// MediaURLResolver turns a stored object key into a URL a client can fetch.
type MediaURLResolver interface {
	ResolveURL(ctx context.Context, objectKey string) (string, error)
}

// ContentResolver hydrates index entries of the content types it declares.
// Each source variant has exactly one resolver.
type ContentResolver interface {
	ContentTypes() []ContentType

	// Resolve returns ErrSourceNotFound when the source is missing or
	// soft-deleted.
	Resolve(ctx context.Context, entry *ContentIndexEntry) (*ContentSnapshot, error)
}

// SyncHook is what entity mutation paths call after their own write
// succeeded. Implementations never return errors to the caller.
type SyncHook interface {
	UpsertVisibility(ctx context.Context, req UpsertRequest)
	RemoveVisibility(ctx context.Context, contentType ContentType, contentID uuid.UUID)
}
