// Package mediaurl turns media object keys into URLs clients can fetch.
package mediaurl

import (
	"fmt"
	"strings"

	"github.com/tendant/simple-discover/pkg/discover"
)

// StrategyType represents the type of URL strategy
type StrategyType string

const (
	// API strategy routes media downloads through the application
	StrategyTypeAPI StrategyType = "api"

	// CDN strategy returns direct CDN URLs
	StrategyTypeCDN StrategyType = "cdn"

	// S3 strategy returns presigned object storage URLs
	StrategyTypeS3 StrategyType = "s3"
)

// Config holds configuration for strategy creation
type Config struct {
	Type       StrategyType
	APIBaseURL string   // For API strategy
	CDNBaseURL string   // For CDN strategy
	S3         S3Config // For S3 strategy
}

// New creates a media URL resolver based on the configuration
func New(config Config) (discover.MediaURLResolver, error) {
	switch config.Type {
	case StrategyTypeAPI, "":
		if config.APIBaseURL == "" {
			return nil, fmt.Errorf("API base URL is required for api strategy")
		}
		return NewAPIStrategy(config.APIBaseURL), nil

	case StrategyTypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for cdn strategy")
		}
		return NewCDNStrategy(config.CDNBaseURL), nil

	case StrategyTypeS3:
		return NewS3Presigner(config.S3)

	default:
		return nil, fmt.Errorf("unknown media URL strategy: %s", config.Type)
	}
}

func joinKey(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
