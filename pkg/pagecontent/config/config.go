// Package config builds pagecontent components from environment-driven
// server configuration.
package config

import (
	"context"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubinho/content-backend/pkg/pagecontent"
	memoryrepo "github.com/clubinho/content-backend/pkg/pagecontent/repo/memory"
	postgresrepo "github.com/clubinho/content-backend/pkg/pagecontent/repo/postgres"
	memorystorage "github.com/clubinho/content-backend/pkg/pagecontent/storage/memory"
	s3storage "github.com/clubinho/content-backend/pkg/pagecontent/storage/s3"
)

// ServerConfig is the environment-driven configuration of the server.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`

	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"`

	S3Region          string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3KeyPrefix       string `env:"S3_KEY_PREFIX" env-default:"uploads"`

	EnableEventLogging bool `env:"ENABLE_EVENT_LOGGING" env-default:"true"`
}

// Load reads the server configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.DatabaseType)
	}

	switch c.StorageBackend {
	case "memory":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

// BuildRepository constructs the configured repository. The returned close
// function releases the underlying pool, if any.
func (c *ServerConfig) BuildRepository(ctx context.Context) (pagecontent.Repository, func(), error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		return postgresrepo.NewWithPool(pool), pool.Close, nil
	default:
		return memoryrepo.New(), func() {}, nil
	}
}

// BuildBlobStore constructs the configured object-store gateway.
func (c *ServerConfig) BuildBlobStore() (pagecontent.BlobStore, error) {
	switch c.StorageBackend {
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Endpoint:        c.S3Endpoint,
			UsePathStyle:    c.S3UsePathStyle,
			KeyPrefix:       c.S3KeyPrefix,
		})
	default:
		return memorystorage.New(), nil
	}
}
