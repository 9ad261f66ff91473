package mediaurl

import (
	"context"
	"fmt"
	"strings"
)

// APIStrategy routes media downloads through the application, which can
// enforce access checks before streaming the object.
type APIStrategy struct {
	APIBaseURL string // e.g., "/api/v1" or "https://api.example.com/api/v1"
}

// NewAPIStrategy creates a new application-routed URL strategy
func NewAPIStrategy(apiBaseURL string) *APIStrategy {
	return &APIStrategy{APIBaseURL: strings.TrimSuffix(apiBaseURL, "/")}
}

// ResolveURL returns the application download URL for the object
func (s *APIStrategy) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return joinKey(s.APIBaseURL+"/media/objects", objectKey), nil
}
