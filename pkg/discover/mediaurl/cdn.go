package mediaurl

import (
	"context"
	"fmt"
	"strings"
)

// CDNStrategy generates URLs that point directly at a CDN
type CDNStrategy struct {
	BaseURL string // e.g., "https://cdn.example.com"
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(baseURL string) *CDNStrategy {
	return &CDNStrategy{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// ResolveURL returns the CDN URL of the object
func (s *CDNStrategy) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("CDN base URL not configured")
	}
	if objectKey == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return joinKey(s.BaseURL, objectKey), nil
}
