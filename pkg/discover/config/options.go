package config

import (
	"fmt"
	"time"

	"github.com/tendant/simple-discover/pkg/discover/mediaurl"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMigrations enables or disables applying migrations on startup
func WithMigrations(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.RunMigrations = enabled
		return nil
	}
}

// WithJWTAuth sets the HS256 secret used to verify caller tokens and whether
// a token is mandatory
func WithJWTAuth(secret string, required bool) Option {
	return func(c *ServerConfig) error {
		if required && secret == "" {
			return fmt.Errorf("JWT secret cannot be empty when auth is required")
		}
		c.JWTSecret = secret
		c.AuthRequired = required
		return nil
	}
}

// WithHydrationConcurrency bounds concurrent lookups per feed page
func WithHydrationConcurrency(n int) Option {
	return func(c *ServerConfig) error {
		if n < 1 {
			return fmt.Errorf("hydration concurrency must be positive, got: %d", n)
		}
		c.HydrationConcurrency = n
		return nil
	}
}

// WithReconcileBatchSize sets the page size of reconciliation sweeps
func WithReconcileBatchSize(n int) Option {
	return func(c *ServerConfig) error {
		if n < 1 {
			return fmt.Errorf("reconcile batch size must be positive, got: %d", n)
		}
		c.ReconcileBatchSize = n
		return nil
	}
}

// WithReconcileInterval enables periodic reconciliation in the server. Zero disables it.
func WithReconcileInterval(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d < 0 {
			return fmt.Errorf("reconcile interval cannot be negative, got: %s", d)
		}
		c.ReconcileInterval = d
		return nil
	}
}

// WithAPIMediaURLs routes media downloads through the application
func WithAPIMediaURLs(apiBaseURL string) Option {
	return func(c *ServerConfig) error {
		if apiBaseURL == "" {
			return fmt.Errorf("API base URL cannot be empty for api strategy")
		}
		c.Media.Type = mediaurl.StrategyTypeAPI
		c.Media.APIBaseURL = apiBaseURL
		return nil
	}
}

// WithCDNMediaURLs serves media directly from a CDN
func WithCDNMediaURLs(cdnBaseURL string) Option {
	return func(c *ServerConfig) error {
		if cdnBaseURL == "" {
			return fmt.Errorf("CDN base URL cannot be empty for cdn strategy")
		}
		c.Media.Type = mediaurl.StrategyTypeCDN
		c.Media.CDNBaseURL = cdnBaseURL
		return nil
	}
}

// WithS3MediaURLs serves media through presigned S3 URLs
func WithS3MediaURLs(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1" // Default region
		}
		c.Media.Type = mediaurl.StrategyTypeS3
		c.Media.S3.Bucket = bucket
		c.Media.S3.Region = region
		return nil
	}
}

// WithS3Credentials sets static AWS credentials for presigning
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		c.Media.S3.AccessKeyID = accessKeyID
		c.Media.S3.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.Media.S3.Endpoint = endpoint
		c.Media.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithS3PresignDuration sets the presigned URL duration for S3 (in seconds)
func WithS3PresignDuration(durationSeconds int) Option {
	return func(c *ServerConfig) error {
		if durationSeconds <= 0 {
			return fmt.Errorf("presign duration must be positive, got: %d", durationSeconds)
		}
		c.Media.S3.PresignDuration = durationSeconds
		return nil
	}
}

// WithDefaults resets the configuration to library defaults
func WithDefaults() Option {
	return func(c *ServerConfig) error {
		*c = defaults()
		return nil
	}
}
