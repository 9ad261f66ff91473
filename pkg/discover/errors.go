package discover

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrInvalidCursor indicates a cursor that was not issued by this service
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrInvalidLimit indicates a page size outside 1..MaxFeedLimit
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidContentType indicates an unknown content type
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidVisibility indicates an unknown visibility
	ErrInvalidVisibility = errors.New("invalid visibility")

	// ErrInvalidSourceKind indicates an unknown source kind
	ErrInvalidSourceKind = errors.New("invalid source kind")

	// ErrCallerRequired indicates a feed request without a caller
	ErrCallerRequired = errors.New("caller id is required")

	// ErrIDRequired indicates a missing content or owner id
	ErrIDRequired = errors.New("id is required")

	// ErrRequired indicates a missing required field
	ErrRequired = errors.New("value is required")

	// ErrSourceNotFound indicates a source entity that is missing or soft-deleted
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceExists indicates a create for an id that is already stored
	ErrSourceExists = errors.New("source already exists")

	// ErrEntryNotFound indicates a missing index entry
	ErrEntryNotFound = errors.New("index entry not found")

	// ErrNoResolver indicates a content type without a registered resolver
	ErrNoResolver = errors.New("no resolver for content type")
)

// ValidationError is returned before any query runs when a request is malformed.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SyncError represents a failed write to the index
type SyncError struct {
	Op          string
	ContentType ContentType
	ContentID   uuid.UUID
	Err         error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("index %s failed for %s %s: %v", e.Op, e.ContentType, e.ContentID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ReconcileError represents the failure of one source kind during a sweep
type ReconcileError struct {
	Kind SourceKind
	Err  error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile %s failed: %v", e.Kind, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
