package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/entities"
	"github.com/tendant/simple-discover/pkg/discover/mediaurl"
	"github.com/tendant/simple-discover/pkg/discover/repo/memory"
	repopg "github.com/tendant/simple-discover/pkg/discover/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                 "8080",
		Environment:          "development",
		DatabaseType:         "memory",
		DBSchema:             "discover",
		HydrationConcurrency: 8,
		ReconcileBatchSize:   500,
		Media: mediaurl.Config{
			Type:       mediaurl.StrategyTypeAPI,
			APIBaseURL: "/api/v1",
		},
	}
}

// ServerConfig represents server configuration for the discover service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL   string
	DatabaseType  string // "memory", "postgres"
	DBSchema      string // Postgres schema to use (default: discover)
	RunMigrations bool   // Apply embedded migrations on startup

	// Caller identity
	JWTSecret    string
	AuthRequired bool // Reject requests without a valid JWT; otherwise X-User-ID is accepted

	// Feed engine
	HydrationConcurrency int
	ReconcileBatchSize   int
	ReconcileInterval    time.Duration // 0 disables periodic reconciliation

	// Media URLs
	Media mediaurl.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.AuthRequired && c.JWTSecret == "" {
		return errors.New("jwt_secret is required when auth is required")
	}

	if c.HydrationConcurrency < 1 {
		return fmt.Errorf("hydration concurrency must be positive, got: %d", c.HydrationConcurrency)
	}
	if c.ReconcileBatchSize < 1 {
		return fmt.Errorf("reconcile batch size must be positive, got: %d", c.ReconcileBatchSize)
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile interval cannot be negative, got: %s", c.ReconcileInterval)
	}

	switch c.Media.Type {
	case mediaurl.StrategyTypeAPI:
		if c.Media.APIBaseURL == "" {
			return errors.New("media API base URL is required for api strategy")
		}
	case mediaurl.StrategyTypeCDN:
		if c.Media.CDNBaseURL == "" {
			return errors.New("media CDN base URL is required for cdn strategy")
		}
	case mediaurl.StrategyTypeS3:
		if c.Media.S3.Bucket == "" {
			return errors.New("media S3 bucket is required for s3 strategy")
		}
	default:
		return fmt.Errorf("unknown media URL strategy: %s", c.Media.Type)
	}

	return nil
}

// ProfileWriter stores owner profiles; used for seeding.
type ProfileWriter interface {
	UpsertProfile(ctx context.Context, profile *discover.OwnerProfile) error
}

// Services is the wired application
type Services struct {
	Discover discover.Service
	Entities *entities.Service
	Profiles ProfileWriter

	// Pool is nil for the memory backend
	Pool *pgxpool.Pool

	closers []func()
}

// Close releases held resources
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// BuildServices creates the discover and entity services from the server configuration
func (c *ServerConfig) BuildServices(ctx context.Context) (*Services, error) {
	mediaURLs, err := mediaurl.New(c.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to build media URL resolver: %w", err)
	}

	services := &Services{}
	var index discover.IndexRepository
	var sources discover.SourceRepository
	var store discover.EntityStore
	var profiles discover.ProfileProvider

	switch c.DatabaseType {
	case "memory":
		sourceStore := memory.NewSourceStore()
		profileStore := memory.NewProfileStore()
		index, sources, store, profiles = memory.NewIndexRepository(), sourceStore, sourceStore, profileStore
		services.Profiles = profileStore

	case "postgres":
		pool, err := c.NewPool(ctx)
		if err != nil {
			return nil, err
		}
		services.Pool = pool
		services.closers = append(services.closers, pool.Close)

		if c.RunMigrations {
			if err := c.Migrate(ctx, pool); err != nil {
				services.Close()
				return nil, err
			}
		}

		repo := repopg.NewWithPool(pool)
		index, sources, store, profiles = repo, repo, repo, repo
		services.Profiles = repo

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	logger := slog.Default()
	hooks := &discover.Hooks{}
	svc, err := discover.New(
		discover.WithIndexRepository(index),
		discover.WithSourceRepository(sources),
		discover.WithProfileProvider(profiles),
		discover.WithMediaURLResolver(mediaURLs),
		discover.WithLogger(logger),
		discover.WithHooks(hooks),
		discover.WithHydrationConcurrency(c.HydrationConcurrency),
		discover.WithReconcileBatchSize(c.ReconcileBatchSize),
	)
	if err != nil {
		services.Close()
		return nil, err
	}
	services.Discover = svc

	services.Entities, err = entities.New(store, discover.NewSyncHook(svc, logger, hooks), entities.WithLogger(logger))
	if err != nil {
		services.Close()
		return nil, err
	}

	return services, nil
}

// NewPool opens a pgx pool with search_path set to the configured schema.
func (c *ServerConfig) NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// Migrate creates the configured schema if needed and applies the embedded migrations.
func (c *ServerConfig) Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if c.DBSchema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize()); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", c.DBSchema, err)
		}
	}
	return repopg.Migrate(ctx, pool)
}
