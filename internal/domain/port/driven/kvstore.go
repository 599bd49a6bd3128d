package driven

import "context"

// KeyValueStore defines the driven port for the string key/value backend that
// holds the serialized place lists. It mirrors browser local storage: one
// opaque value per key, replaced wholesale on every write.
type KeyValueStore interface {
	// Get returns the value stored under key. Returns ("", nil) when the key
	// has never been written.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error
}
