package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to the database named by COUPLEMAP_TEST_POSTGRES_URL
// and skips the test when it is unset.
func openTestStore(t *testing.T) *KVStore {
	t.Helper()

	url := os.Getenv("COUPLEMAP_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("COUPLEMAP_TEST_POSTGRES_URL not set")
	}

	store, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestKVStore_SetGetOverwrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := "test:" + t.Name()

	require.NoError(t, store.Set(ctx, key, "[]"))
	require.NoError(t, store.Set(ctx, key, `[{"name":"Lisbon"}]`))

	val, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Lisbon"}]`, val)
}

func TestKVStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	val, err := store.Get(context.Background(), "test:never-written")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
