// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backend names accepted by COUPLEMAP_STORAGE.
const (
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
	StorageMemory   = "memory"
)

const defaultMaxUploadBytes = 10 << 20

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Storage    string
	DBPath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresURL string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	TileURL        string
	MaxUploadBytes int64

	LogLevel  string
	LogFormat string
}

// LoadDotEnv reads a .env file from the working directory into the process
// environment. Variables already set are not overridden. A missing file is not
// an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: COUPLEMAP_LISTEN_ADDR (127.0.0.1:8080),
// COUPLEMAP_STORAGE (sqlite), COUPLEMAP_DB_PATH (couplemap.db),
// COUPLEMAP_REDIS_ADDR (127.0.0.1:6379), COUPLEMAP_REDIS_PREFIX (couplemap:),
// COUPLEMAP_S3_BUCKET (couplemap), COUPLEMAP_MAX_UPLOAD_BYTES (10 MiB).
// The backend selected by COUPLEMAP_STORAGE must have its connection settings.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     envOr("COUPLEMAP_LISTEN_ADDR", "127.0.0.1:8080"),
		Storage:        strings.ToLower(envOr("COUPLEMAP_STORAGE", StorageSQLite)),
		DBPath:         envOr("COUPLEMAP_DB_PATH", "couplemap.db"),
		RedisAddr:      envOr("COUPLEMAP_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("COUPLEMAP_REDIS_PASSWORD"),
		RedisPrefix:    envOr("COUPLEMAP_REDIS_PREFIX", "couplemap:"),
		PostgresURL:    os.Getenv("COUPLEMAP_POSTGRES_URL"),
		S3Endpoint:     os.Getenv("COUPLEMAP_S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("COUPLEMAP_S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("COUPLEMAP_S3_SECRET_KEY"),
		S3Bucket:       envOr("COUPLEMAP_S3_BUCKET", "couplemap"),
		TileURL:        os.Getenv("COUPLEMAP_TILE_URL"),
		MaxUploadBytes: defaultMaxUploadBytes,
		LogLevel:       envOr("COUPLEMAP_LOG_LEVEL", "info"),
		LogFormat:      envOr("COUPLEMAP_LOG_FORMAT", "text"),
	}

	if v, ok := os.LookupEnv("COUPLEMAP_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("COUPLEMAP_REDIS_DB has invalid value %q", v)
		}
		cfg.RedisDB = db
	}

	if v, ok := os.LookupEnv("COUPLEMAP_S3_USE_SSL"); ok && v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("COUPLEMAP_S3_USE_SSL has invalid value %q: %w", v, err)
		}
		cfg.S3UseSSL = useSSL
	}

	if v, ok := os.LookupEnv("COUPLEMAP_MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("COUPLEMAP_MAX_UPLOAD_BYTES has invalid value %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateStorage() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return errors.New("COUPLEMAP_DB_PATH must not be empty for sqlite storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("COUPLEMAP_REDIS_ADDR must not be empty for redis storage")
		}
	case StoragePostgres:
		if c.PostgresURL == "" {
			return errors.New("COUPLEMAP_POSTGRES_URL is required for postgres storage")
		}
	case StorageS3:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("COUPLEMAP_S3_ENDPOINT, COUPLEMAP_S3_ACCESS_KEY and COUPLEMAP_S3_SECRET_KEY are required for s3 storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("COUPLEMAP_STORAGE has unknown backend %q", c.Storage)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
