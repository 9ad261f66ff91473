package discover_test

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover"
)

func TestFeedCursor_RoundTrip(t *testing.T) {
	c := discover.FeedCursor{
		CreatedAt: time.Date(2024, 3, 1, 12, 30, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := discover.DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestFeedCursor_RoundTripOutsideNanosecondRange(t *testing.T) {
	times := map[string]time.Time{
		"before epoch":        time.Date(1969, 7, 20, 20, 17, 40, 500000000, time.UTC),
		"one ns before epoch": time.Unix(0, -1).UTC(),
		"before 1678":         time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC),
		"after 2262":          time.Date(2300, 12, 31, 23, 59, 59, 999999000, time.UTC),
	}
	for name, ts := range times {
		t.Run(name, func(t *testing.T) {
			c := discover.FeedCursor{CreatedAt: ts, ID: uuid.New()}
			decoded, err := discover.DecodeCursor(c.Encode())
			require.NoError(t, err)
			assert.True(t, ts.Equal(decoded.CreatedAt), "got %s", decoded.CreatedAt)
			assert.Equal(t, c.ID, decoded.ID)
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tokens := map[string]string{
		"not base64":      "%%%",
		"wrong version":   enc("v2:1:0:" + uuid.NewString()),
		"missing parts":   enc("v1:1:0"),
		"bad seconds":     enc("v1:abc:0:" + uuid.NewString()),
		"negative nanos":  enc("v1:1:-5:" + uuid.NewString()),
		"nanos overflow":  enc("v1:1:1000000000:" + uuid.NewString()),
		"bad id":          enc("v1:1:0:not-a-uuid"),
		"plain timestamp": enc("1700000000"),
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := discover.DecodeCursor(token)
			require.Error(t, err)
			assert.True(t, discover.IsValidationError(err))
			assert.True(t, errors.Is(err, discover.ErrInvalidCursor))
		})
	}
}

func TestFeedCursor_Before(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := discover.FeedCursor{CreatedAt: ts, ID: high}

	assert.True(t, c.Before(ts.Add(-time.Second), high), "older entries come after the cursor")
	assert.False(t, c.Before(ts.Add(time.Second), low), "newer entries come before the cursor")
	assert.True(t, c.Before(ts, low), "ties are broken by descending id")
	assert.False(t, c.Before(ts, high), "the cursor row itself is excluded")
}
