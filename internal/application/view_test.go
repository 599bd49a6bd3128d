package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

func TestPlaceService_View(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, model.CategoryVisited, model.Place{
		ID:     "rome",
		Name:   "Rome, Italy",
		Coords: model.Coordinates{Lat: 41.9, Lng: 12.5},
		Date:   model.PlaceDate{Month: "4", Year: "2019"},
	}))

	view := svc.View()

	require.Len(t, view.Markers, 5)
	assert.Equal(t, model.CategoryVisited, view.Markers[0].Category)
	assert.Equal(t, "Paris, France", view.Markers[0].Name)
	assert.Equal(t, 2, view.Markers[2].Index)
	assert.Equal(t, "April 2019", view.Markers[2].DateLabel)
	assert.Equal(t, model.CategoryWishlist, view.Markers[3].Category)
	assert.Equal(t, 0, view.Markers[3].Index)

	require.Len(t, view.Visited, 3)
	assert.Equal(t, "Rome, Italy", view.Visited[0].Place.Name)
	assert.Equal(t, 2, view.Visited[0].Index)
	assert.Equal(t, "New York, USA", view.Visited[1].Place.Name)
	assert.Equal(t, "Paris, France", view.Visited[2].Place.Name)

	assert.Equal(t, view.Wishlist, view.List(model.CategoryWishlist))
	assert.Equal(t, view.Visited, view.List(model.CategoryVisited))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrNameRequired))
	assert.True(t, IsValidationError(ErrPhotoTooLarge))
	assert.False(t, IsValidationError(ErrPlaceNotFound))
	assert.False(t, IsValidationError(nil))
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("crop photo: %w", ErrUnsupportedPhoto)
	assert.Equal(t, ErrUnsupportedPhoto.Error(), UserMessage(wrapped))
	assert.Equal(t, ErrNameRequired.Error(), UserMessage(ErrNameRequired))
}
