package discover

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const cursorVersion = "v1"

// FeedCursor is the decoded position of the last item on a page. The
// (CreatedAt, ID) pair totally orders index entries even when timestamps
// collide.
type FeedCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorFor returns the cursor positioned at entry.
func CursorFor(entry *ContentIndexEntry) FeedCursor {
	return FeedCursor{CreatedAt: entry.CreatedAt, ID: entry.ID}
}

// Encode returns the opaque token for c.
func (c FeedCursor) Encode() string {
	raw := fmt.Sprintf("%s:%d:%d:%s", cursorVersion, c.CreatedAt.Unix(), c.CreatedAt.Nanosecond(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Before reports whether an entry at (createdAt, id) sorts after the cursor
// in feed order, that is strictly older, or equally old with a smaller id.
func (c FeedCursor) Before(createdAt time.Time, id uuid.UUID) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return CompareIDs(id, c.ID) < 0
}

// DecodeCursor parses a token produced by Encode. Any other input yields a
// ValidationError wrapping ErrInvalidCursor.
func DecodeCursor(token string) (*FeedCursor, error) {
	invalid := &ValidationError{Field: "cursor", Value: token, Err: ErrInvalidCursor}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 || parts[0] != cursorVersion {
		return nil, invalid
	}
	// Seconds may be negative for items dated before 1970.
	secs, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, invalid
	}
	nanos, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || nanos < 0 || nanos >= int64(time.Second) {
		return nil, invalid
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		return nil, invalid
	}
	return &FeedCursor{CreatedAt: time.Unix(secs, nanos).UTC(), ID: id}, nil
}

// CompareIDs orders uuids bytewise, matching the uuid ordering in Postgres.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
