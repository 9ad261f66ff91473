package mediaurl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover/mediaurl"
)

func TestCDNStrategy(t *testing.T) {
	s := mediaurl.NewCDNStrategy("https://cdn.example.com/")

	url, err := s.ResolveURL(context.Background(), "photos/ab/cd.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photos/ab/cd.jpg", url)

	_, err = s.ResolveURL(context.Background(), "")
	assert.Error(t, err)
}

func TestAPIStrategy(t *testing.T) {
	s := mediaurl.NewAPIStrategy("/api/v1/")

	url, err := s.ResolveURL(context.Background(), "/docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/media/objects/docs/report.pdf", url)
}

func TestS3Presigner(t *testing.T) {
	p, err := mediaurl.NewS3Presigner(mediaurl.S3Config{
		Region:          "us-east-1",
		Bucket:          "media",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		PresignDuration: 600,
	})
	require.NoError(t, err)

	url, err := p.ResolveURL(context.Background(), "photos/cat.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/media/photos/cat.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")

	_, err = p.ResolveURL(context.Background(), "")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  mediaurl.Config
		wantErr bool
	}{
		{"api", mediaurl.Config{Type: mediaurl.StrategyTypeAPI, APIBaseURL: "/api/v1"}, false},
		{"api missing base", mediaurl.Config{Type: mediaurl.StrategyTypeAPI}, true},
		{"cdn", mediaurl.Config{Type: mediaurl.StrategyTypeCDN, CDNBaseURL: "https://cdn"}, false},
		{"cdn missing base", mediaurl.Config{Type: mediaurl.StrategyTypeCDN}, true},
		{"s3 missing bucket", mediaurl.Config{Type: mediaurl.StrategyTypeS3}, true},
		{"unknown", mediaurl.Config{Type: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := mediaurl.New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}
