// Package redis implements the KeyValueStore port on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyValueStore = (*KVStore)(nil)

// KVStore stores each key as a plain Redis string under a common prefix.
type KVStore struct {
	client *goredis.Client
	prefix string
}

// Open connects to the Redis server at addr and verifies it with a PING.
func Open(ctx context.Context, addr, password string, db int, prefix string) (*KVStore, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewKVStore(client, prefix), nil
}

// NewKVStore wraps an existing client.
func NewKVStore(client *goredis.Client, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

// Get returns the value under key, or ("", nil) when the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return val, nil
}

// Set stores the value under key with no expiry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *KVStore) Close() error {
	return s.client.Close()
}
