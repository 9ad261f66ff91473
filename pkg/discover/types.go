package discover

import (
	"time"

	"github.com/google/uuid"
)

// ContentType identifies the kind of item an index entry points at.
type ContentType string

// Content type constants (typed).
const (
	ContentTypeProject    ContentType = "PROJECT"
	ContentTypeTask       ContentType = "TASK"
	ContentTypeNote       ContentType = "NOTE"
	ContentTypePhoto      ContentType = "PHOTO"
	ContentTypeScreenshot ContentType = "SCREENSHOT"
	ContentTypeDocument   ContentType = "DOCUMENT"
	ContentTypeEvent      ContentType = "EVENT"
)

// AllContentTypes lists every content type in a stable order.
var AllContentTypes = []ContentType{
	ContentTypeProject,
	ContentTypeTask,
	ContentTypeNote,
	ContentTypePhoto,
	ContentTypeScreenshot,
	ContentTypeDocument,
	ContentTypeEvent,
}

// IsValid reports whether t is a known content type.
func (t ContentType) IsValid() bool {
	_, ok := contentTypeKinds[t]
	return ok
}

// SourceKind returns the source entity variant that owns items of type t.
// Photos, screenshots and documents are all media assets.
func (t ContentType) SourceKind() SourceKind {
	return contentTypeKinds[t]
}

// IsMedia reports whether t is backed by a media asset.
func (t ContentType) IsMedia() bool {
	return t.SourceKind() == SourceMediaAsset
}

// SourceKind identifies one of the five source entity variants.
type SourceKind string

// Source kind constants (typed).
const (
	SourceProject    SourceKind = "project"
	SourceTask       SourceKind = "task"
	SourceNote       SourceKind = "note"
	SourceMediaAsset SourceKind = "media_asset"
	SourceEvent      SourceKind = "event"
)

// AllSourceKinds lists every source variant in reconciliation order.
var AllSourceKinds = []SourceKind{
	SourceProject,
	SourceTask,
	SourceNote,
	SourceMediaAsset,
	SourceEvent,
}

var contentTypeKinds = map[ContentType]SourceKind{
	ContentTypeProject:    SourceProject,
	ContentTypeTask:       SourceTask,
	ContentTypeNote:       SourceNote,
	ContentTypePhoto:      SourceMediaAsset,
	ContentTypeScreenshot: SourceMediaAsset,
	ContentTypeDocument:   SourceMediaAsset,
	ContentTypeEvent:      SourceEvent,
}

// IsValid reports whether k is a known source kind.
func (k SourceKind) IsValid() bool {
	for _, known := range AllSourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ContentTypes returns the content types stored by source kind k.
func (k SourceKind) ContentTypes() []ContentType {
	var types []ContentType
	for _, t := range AllContentTypes {
		if contentTypeKinds[t] == k {
			types = append(types, t)
		}
	}
	return types
}

// Visibility is the three-tier access policy attached to every content item.
type Visibility string

// Visibility constants (typed).
const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityContacts Visibility = "CONTACTS"
	VisibilityPublic   Visibility = "PUBLIC"
)

// IsValid reports whether v is a known visibility.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityContacts, VisibilityPublic:
		return true
	}
	return false
}

// ContentIndexEntry is the denormalized visibility record for one content item.
// At most one entry exists per (ContentType, ContentID).
type ContentIndexEntry struct {
	ID          uuid.UUID   `json:"id"`
	ContentType ContentType `json:"content_type"`
	ContentID   uuid.UUID   `json:"content_id"`
	Visibility  Visibility  `json:"visibility"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OwnerProfile is the public profile snapshot attached to each feed item.
type OwnerProfile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
}

// Engagement is reserved for likes and comments; counts are always zero today.
type Engagement struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// ProjectRef is a lightweight reference to a project.
type ProjectRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// EventRef is a lightweight reference to an event.
type EventRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
}

// MediaInfo describes the file behind a media asset.
type MediaInfo struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// ContentCounts carries the nested counts shown for projects and events.
type ContentCounts struct {
	Tasks          int64 `json:"tasks"`
	CompletedTasks int64 `json:"completed_tasks,omitempty"`
	Notes          int64 `json:"notes,omitempty"`
	Media          int64 `json:"media,omitempty"`
}

// ContentSnapshot is the uniform display shape every resolver produces.
type ContentSnapshot struct {
	Type      ContentType    `json:"type"`
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"body,omitempty"`
	Status    string         `json:"status,omitempty"`
	Priority  string         `json:"priority,omitempty"`
	Location  string         `json:"location,omitempty"`
	DueAt     *time.Time     `json:"due_at,omitempty"`
	StartsAt  *time.Time     `json:"starts_at,omitempty"`
	EndsAt    *time.Time     `json:"ends_at,omitempty"`
	Project   *ProjectRef    `json:"project,omitempty"`
	Event     *EventRef      `json:"event,omitempty"`
	Media     *MediaInfo     `json:"media,omitempty"`
	Counts    *ContentCounts `json:"counts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Live state of the source, used to catch a stale index row.
	Visibility Visibility `json:"-"`
	OwnerID    uuid.UUID  `json:"-"`
}

// FeedItem is one hydrated entry of a feed page. It is assembled per
// response and never persisted.
type FeedItem struct {
	ID          uuid.UUID        `json:"id"`
	ContentType ContentType      `json:"content_type"`
	ContentID   uuid.UUID        `json:"content_id"`
	Visibility  Visibility       `json:"visibility"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Content     *ContentSnapshot `json:"content"`
	Owner       *OwnerProfile    `json:"owner"`
	Engagement  Engagement       `json:"engagement"`
}

// FeedRequest selects one page of the public feed.
type FeedRequest struct {
	// CallerID is required; the caller's own content is always excluded.
	CallerID uuid.UUID
	// Cursor is the opaque token from a previous page. Empty starts from the newest row.
	Cursor string
	// Limit defaults to DefaultFeedLimit when zero and may not exceed MaxFeedLimit.
	Limit int
	// ContentType optionally restricts the page to one content type.
	ContentType ContentType
}

// FeedPage is one page of the public feed.
type FeedPage struct {
	Items      []*FeedItem `json:"items"`
	NextCursor *string     `json:"next_cursor"`
	HasMore    bool        `json:"has_more"`
}

// Feed limits.
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
)

// PublicFeedQuery is the repository-level selection for one feed page.
type PublicFeedQuery struct {
	ExcludeOwnerID uuid.UUID
	ContentType    ContentType // empty means all types
	After          *FeedCursor // nil starts from the newest row
	Limit          int         // rows to fetch, already including the look-ahead row
}

// UpsertRequest carries everything the synchronizer mirrors from a source item.
type UpsertRequest struct {
	ContentType ContentType
	ContentID   uuid.UUID
	Visibility  Visibility
	OwnerID     uuid.UUID

	// Source timestamps. A zero CreatedAt keeps the existing value, or uses
	// the write time for a new row. A zero UpdatedAt uses the write time.
	CreatedAt time.Time
	UpdatedAt time.Time

	// Deleted marks a soft-deleted source; its visibility is forced to PRIVATE.
	Deleted bool
}

// FeedStats is the read-only aggregate over PUBLIC index entries.
type FeedStats struct {
	TotalPublic    int64                 `json:"total_public"`
	ByContentType  map[ContentType]int64 `json:"by_content_type"`
	DistinctOwners int64                 `json:"distinct_owners"`
}

// ReconcileTypeResult is the outcome of reconciling one source kind.
type ReconcileTypeResult struct {
	Synced int64  `json:"synced"`
	Failed int64  `json:"failed"`
	Error  string `json:"error,omitempty"`
}

// ReconcileResult is the outcome of a full reconciliation run.
type ReconcileResult struct {
	PerType    map[SourceKind]*ReconcileTypeResult `json:"per_type"`
	StartedAt  time.Time                           `json:"started_at"`
	FinishedAt time.Time                           `json:"finished_at"`
}

// TotalSynced sums synced items over all kinds.
func (r *ReconcileResult) TotalSynced() int64 {
	var total int64
	for _, t := range r.PerType {
		total += t.Synced
	}
	return total
}

// CleanupTypeResult is the outcome of the orphan pass for one content type.
type CleanupTypeResult struct {
	Scanned int64  `json:"scanned"`
	Removed int64  `json:"removed"`
	Error   string `json:"error,omitempty"`
}

// CleanupResult is the outcome of a full orphan cleanup run.
type CleanupResult struct {
	PerType    map[ContentType]*CleanupTypeResult `json:"per_type"`
	StartedAt  time.Time                          `json:"started_at"`
	FinishedAt time.Time                          `json:"finished_at"`
}
