package discover

import (
	"time"

	"github.com/google/uuid"
)

// Record is the header every source entity shares: identity, owner,
// visibility and lifecycle timestamps.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// SourceRecord is a Record tagged with its variant, as listed by reconciliation.
type SourceRecord struct {
	Record
	Kind        SourceKind  `json:"kind"`
	ContentType ContentType `json:"content_type"`
}

// UpsertRequest converts the record into the synchronizer's input.
func (r *SourceRecord) UpsertRequest() UpsertRequest {
	return UpsertRequest{
		ContentType: r.ContentType,
		ContentID:   r.ID,
		Visibility:  r.Visibility,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Deleted:     r.DeletedAt != nil,
	}
}

// Project task status values counted as completed.
const TaskStatusDone = "done"

// Project is a container for tasks, notes, media and events.
type Project struct {
	Record
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// ProjectDetails is a project with its nested counts.
type ProjectDetails struct {
	Project
	TaskCount          int64 `json:"task_count"`
	CompletedTaskCount int64 `json:"completed_task_count"`
	NoteCount          int64 `json:"note_count"`
	MediaCount         int64 `json:"media_count"`
}

// Task belongs to a project and may be scheduled against an event.
type Task struct {
	Record
	ProjectID   uuid.UUID  `json:"project_id"`
	EventID     *uuid.UUID `json:"event_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// TaskDetails is a task with its project and optional event references.
type TaskDetails struct {
	Task
	Project *ProjectRef `json:"project,omitempty"`
	Event   *EventRef   `json:"event,omitempty"`
}

// Note is free-form text, optionally attached to a project.
type Note struct {
	Record
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
}

// NoteDetails is a note with its project reference.
type NoteDetails struct {
	Note
	Project *ProjectRef `json:"project,omitempty"`
}

// MediaAsset is an uploaded file. Its Kind is one of the media content types
// and is fixed at creation.
type MediaAsset struct {
	Record
	Kind         ContentType `json:"kind"`
	ProjectID    *uuid.UUID  `json:"project_id,omitempty"`
	FileName     string      `json:"file_name"`
	ObjectKey    string      `json:"object_key"`
	ThumbnailKey string      `json:"thumbnail_key,omitempty"`
	MimeType     string      `json:"mime_type"`
	SizeBytes    int64       `json:"size_bytes"`
}

// Event is a scheduled occurrence, optionally attached to a project.
type Event struct {
	Record
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// EventDetails is an event with its task count.
type EventDetails struct {
	Event
	TaskCount int64 `json:"task_count"`
}
