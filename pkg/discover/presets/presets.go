// Package presets wires a complete discover stack for common situations so
// callers do not have to assemble repositories, resolvers and hooks by hand.
package presets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tendant/simple-discover/pkg/discover/config"
)

// NewDevelopment creates an in-memory stack for local development.
//
// Features:
//   - In-memory repositories (instant startup, nothing to migrate)
//   - API media URLs under /api/v1
//   - Full hydration concurrency
//
// The returned cleanup function releases held resources.
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (*config.Services, func(), error) {
	dc := &devConfig{mediaBaseURL: "/api/v1"}
	for _, opt := range opts {
		opt(dc)
	}

	cfg, err := config.Load(
		config.WithEnvironment("development"),
		config.WithDatabase("memory", ""),
		config.WithAPIMediaURLs(dc.mediaBaseURL),
	)
	if err != nil {
		return nil, nil, err
	}

	svc, err := cfg.BuildServices(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build development services: %w", err)
	}
	return svc, svc.Close, nil
}

// NewTesting creates an isolated in-memory stack for a single test.
// Hydration runs sequentially and resources are released via t.Cleanup.
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t)
//	    ...
//	}
func NewTesting(t testing.TB, opts ...TestingOption) *config.Services {
	t.Helper()

	tc := &testConfig{mediaBaseURL: "https://media.test"}
	for _, opt := range opts {
		opt(tc)
	}

	cfg, err := config.Load(
		config.WithEnvironment("testing"),
		config.WithDatabase("memory", ""),
		config.WithCDNMediaURLs(tc.mediaBaseURL),
		config.WithHydrationConcurrency(1),
	)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	svc, err := cfg.BuildServices(context.Background())
	if err != nil {
		t.Fatalf("failed to create test services: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

// NewProduction builds a Postgres-backed stack from the environment.
// A memory database is rejected, as is any configuration that would trust
// the X-User-ID header: JWT_SECRET must be set and AUTH_REQUIRED enabled.
func NewProduction(ctx context.Context, opts ...config.Option) (*config.Services, error) {
	all := append([]config.Option{config.WithEnvironment("production"), config.WithEnv()}, opts...)
	cfg, err := config.Load(all...)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseType != "postgres" {
		return nil, errors.New("production preset requires DATABASE_URL to point at postgres")
	}
	if cfg.JWTSecret == "" || !cfg.AuthRequired {
		return nil, errors.New("production preset requires JWT_SECRET and AUTH_REQUIRED=true")
	}
	return cfg.BuildServices(ctx)
}

type devConfig struct {
	mediaBaseURL string
}

type testConfig struct {
	mediaBaseURL string
}

// DevelopmentOption customizes NewDevelopment.
type DevelopmentOption func(*devConfig)

// TestingOption customizes NewTesting.
type TestingOption func(*testConfig)

// WithDevMediaBaseURL changes the API base used for media URLs.
func WithDevMediaBaseURL(baseURL string) DevelopmentOption {
	return func(c *devConfig) {
		c.mediaBaseURL = baseURL
	}
}

// WithTestMediaBaseURL changes the CDN base used for media URLs in tests.
func WithTestMediaBaseURL(baseURL string) TestingOption {
	return func(c *testConfig) {
		c.mediaBaseURL = baseURL
	}
}
