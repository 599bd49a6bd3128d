package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_SetAndGet(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "coupleMapVisitedPlaces", "[]"))
	require.NoError(t, store.Set(ctx, "coupleMapVisitedPlaces", `[{"name":"Paris"}]`))

	val, err := store.Get(ctx, "coupleMapVisitedPlaces")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Paris"}]`, val)
}

func TestKVStore_GetMissing(t *testing.T) {
	val, err := NewKVStore().Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, val)
}
