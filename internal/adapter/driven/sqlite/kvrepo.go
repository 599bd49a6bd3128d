package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyValueStore = (*KVRepo)(nil)

// KVRepo is the SQLite implementation of the KeyValueStore port interface.
type KVRepo struct {
	db *DB
}

// NewKVRepo creates a new KVRepo backed by the given DB.
func NewKVRepo(db *DB) *KVRepo {
	return &KVRepo{db: db}
}

// Get retrieves the value stored under key.
// Returns ("", nil) if the key has never been written.
func (r *KVRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv_entries WHERE key = ?`

	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
