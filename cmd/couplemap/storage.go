package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/impossibleiman/couplemap/internal/adapter/driven/memory"
	"github.com/impossibleiman/couplemap/internal/adapter/driven/postgres"
	redisadapter "github.com/impossibleiman/couplemap/internal/adapter/driven/redis"
	s3adapter "github.com/impossibleiman/couplemap/internal/adapter/driven/s3"
	sqliteadapter "github.com/impossibleiman/couplemap/internal/adapter/driven/sqlite"
	"github.com/impossibleiman/couplemap/internal/config"
	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// openStore opens the backend selected by cfg.Storage. The returned func
// releases it and is always safe to call.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (driven.KeyValueStore, func(), error) {
	noop := func() {}

	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		log.Info("database opened", "path", cfg.DBPath, "schema_version", version)
		return sqliteadapter.NewKVRepo(db), func() {
			if err := db.Close(); err != nil {
				log.Error("error closing database", "error", err)
			}
		}, nil

	case config.StorageRedis:
		store, err := redisadapter.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, noop, err
		}
		log.Info("redis connected", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error("error closing redis client", "error", err)
			}
		}, nil

	case config.StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, noop, err
		}
		log.Info("postgres connected")
		return store, store.Close, nil

	case config.StorageS3:
		store, err := s3adapter.Open(ctx, s3adapter.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, noop, err
		}
		log.Info("object storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return store, noop, nil

	case config.StorageMemory:
		log.Warn("using in-memory storage, places will not survive a restart")
		return memory.NewKVStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
