package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

func validRequest() SaveRequest {
	return SaveRequest{
		Category: "visited",
		Name:     "Lisbon, Portugal",
		Lat:      "38.7223",
		Lng:      "-9.1393",
	}
}

func TestPlaceService_Save_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaveRequest)
		wantErr error
	}{
		{
			name: "category checked before name",
			mutate: func(r *SaveRequest) {
				r.Category = ""
				r.Name = ""
			},
			wantErr: ErrCategoryRequired,
		},
		{
			name: "unknown category",
			mutate: func(r *SaveRequest) {
				r.Category = "someday"
			},
			wantErr: ErrCategoryRequired,
		},
		{
			name: "blank name checked before coordinates",
			mutate: func(r *SaveRequest) {
				r.Name = "   "
				r.Lat = "north"
			},
			wantErr: ErrNameRequired,
		},
		{
			name: "latitude out of range",
			mutate: func(r *SaveRequest) {
				r.Lat = "91"
			},
			wantErr: ErrInvalidCoordinates,
		},
		{
			name: "blank longitude",
			mutate: func(r *SaveRequest) {
				r.Lng = ""
			},
			wantErr: ErrInvalidCoordinates,
		},
		{
			name: "visited in the future",
			mutate: func(r *SaveRequest) {
				r.Year = "2030"
			},
			wantErr: ErrVisitedDateNotPast,
		},
		{
			name: "wishlist in the past",
			mutate: func(r *SaveRequest) {
				r.Category = "wishlist"
				r.Year = "2020"
			},
			wantErr: ErrWishlistDateNotFuture,
		},
		{
			name: "wishlist for the current month is already past",
			mutate: func(r *SaveRequest) {
				r.Category = "wishlist"
				r.Month = "6"
				r.Year = "2025"
			},
			wantErr: ErrWishlistDateNotFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setupService(t)
			before := store.Snapshot()

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Save(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, before, store.Snapshot())
		})
	}
}

func TestPlaceService_Save_DateRules(t *testing.T) {
	tests := []struct {
		name     string
		category string
		day      string
		month    string
		year     string
	}{
		{name: "visited earlier today", category: "visited", day: "15", month: "6", year: "2025"},
		{name: "visited last year", category: "visited", year: "2024"},
		{name: "wishlist next month", category: "wishlist", month: "7", year: "2025"},
		{name: "wishlist tomorrow", category: "wishlist", day: "16", month: "6", year: "2025"},
		{name: "undated visited", category: "visited"},
		{name: "undated wishlist", category: "wishlist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupService(t)

			req := validRequest()
			req.Category = tt.category
			req.Day, req.Month, req.Year = tt.day, tt.month, tt.year

			_, err := svc.Save(context.Background(), req)
			assert.NoError(t, err)
		})
	}
}

func TestPlaceService_Save_AppendsNewPlace(t *testing.T) {
	svc, store := setupService(t)

	req := validRequest()
	req.Name = "  Lisbon, Portugal  "
	req.Day, req.Month, req.Year = "3", "5", "2024"

	saved, err := svc.Save(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Lisbon, Portugal", saved.Name)
	assert.Equal(t, model.Coordinates{Lat: 38.7223, Lng: -9.1393}, saved.Coords)
	assert.Equal(t, "3rd May 2024", saved.Date.Format())
	assert.Empty(t, saved.Photo)

	visited, err := store.List(model.CategoryVisited)
	require.NoError(t, err)
	require.Len(t, visited, 3)
	assert.Equal(t, saved, visited[2])
}

func TestPlaceService_Save_EditInPlace(t *testing.T) {
	svc, store := setupService(t)
	original, err := store.Get(model.CategoryVisited, 0)
	require.NoError(t, err)

	req := validRequest()
	req.Name = "Paris (again)"
	req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 0, ID: original.ID}

	saved, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, original.ID, saved.ID)

	visited, _ := store.List(model.CategoryVisited)
	assert.Equal(t, []string{"Paris (again)", "New York, USA"}, names(visited))
}

func TestPlaceService_Save_EditMovesCategory(t *testing.T) {
	svc, store := setupService(t)

	req := validRequest()
	req.Category = "wishlist"
	req.Name = "Back to New York"
	req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 1}

	_, err := svc.Save(context.Background(), req)
	require.NoError(t, err)

	visited, _ := store.List(model.CategoryVisited)
	wishlist, _ := store.List(model.CategoryWishlist)
	assert.Equal(t, []string{"Paris, France"}, names(visited))
	assert.Equal(t, []string{"Tokyo, Japan", "Sydney, Australia", "Back to New York"}, names(wishlist))
}

func TestPlaceService_Save_EditErrors(t *testing.T) {
	svc, store := setupService(t)

	req := validRequest()
	req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 0, ID: "not-this-one"}
	_, err := svc.Save(context.Background(), req)
	assert.ErrorIs(t, err, ErrStalePlace)

	req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 7}
	_, err = svc.Save(context.Background(), req)
	assert.ErrorIs(t, err, ErrPlaceNotFound)

	visited, _ := store.List(model.CategoryVisited)
	assert.Len(t, visited, 2)
}

func TestPlaceService_Save_Photos(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)
	const existingPhoto = "data:image/png;base64,iVBORw0KGgo="

	require.NoError(t, store.Add(ctx, model.CategoryVisited, model.Place{
		ID:     "with-photo",
		Name:   "Venice",
		Coords: model.Coordinates{Lat: 45.44, Lng: 12.33},
		Photo:  existingPhoto,
	}))

	editVenice := func() SaveRequest {
		req := validRequest()
		req.Name = "Venice"
		req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 2, ID: "with-photo"}
		return req
	}

	t.Run("kept when editing without a new upload", func(t *testing.T) {
		saved, err := svc.Save(ctx, editVenice())
		require.NoError(t, err)
		assert.Equal(t, existingPhoto, saved.Photo)
	})

	t.Run("replaced by a new upload", func(t *testing.T) {
		req := editVenice()
		req.Photo = &PhotoInput{Data: pngBytes(t, 100, 100)}

		saved, err := svc.Save(ctx, req)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.Photo, pngDataURLPrefix))
		assert.NotEqual(t, existingPhoto, saved.Photo)
	})

	t.Run("removed on request", func(t *testing.T) {
		req := editVenice()
		req.RemovePhoto = true
		req.Photo = &PhotoInput{Data: pngBytes(t, 100, 100)}

		saved, err := svc.Save(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, saved.Photo)
	})

	t.Run("unreadable upload rejected", func(t *testing.T) {
		req := editVenice()
		req.Photo = &PhotoInput{Data: []byte("definitely not an image")}

		_, err := svc.Save(ctx, req)
		assert.ErrorIs(t, err, ErrUnsupportedPhoto)
	})
}

func TestPlaceService_Remove(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	ny, err := store.Get(model.CategoryVisited, 1)
	require.NoError(t, err)

	err = svc.Remove(ctx, model.CategoryVisited, 1, "stale-id")
	assert.ErrorIs(t, err, ErrStalePlace)

	require.NoError(t, svc.Remove(ctx, model.CategoryVisited, 1, ny.ID))

	visited, _ := store.List(model.CategoryVisited)
	wishlist, _ := store.List(model.CategoryWishlist)
	assert.Equal(t, []string{"Paris, France"}, names(visited))
	assert.Len(t, wishlist, 2)
}

func TestPlaceService_NewForm(t *testing.T) {
	svc, _ := setupService(t)

	form := svc.NewForm()
	assert.Equal(t, "15", form.Day)
	assert.Equal(t, "6", form.Month)
	assert.Equal(t, "2025", form.Year)
	assert.Empty(t, form.Category)
	assert.Nil(t, form.Editing)
	assert.Equal(t, SubmitLabelAdd, form.SubmitLabel)
}

func TestPlaceService_LoadPlaceIntoForm(t *testing.T) {
	svc, store := setupService(t)

	tokyo, err := store.Get(model.CategoryWishlist, 0)
	require.NoError(t, err)

	form, err := svc.LoadPlaceIntoForm(model.CategoryWishlist, 0)
	require.NoError(t, err)

	assert.Equal(t, "wishlist", form.Category)
	assert.Equal(t, "Tokyo, Japan", form.Name)
	assert.Equal(t, "35.6762", form.Lat)
	assert.Equal(t, "139.6503", form.Lng)
	assert.Equal(t, SubmitLabelEdit, form.SubmitLabel)
	require.NotNil(t, form.Editing)
	assert.Equal(t, EditTarget{Category: model.CategoryWishlist, Index: 0, ID: tokyo.ID}, *form.Editing)

	_, err = svc.LoadPlaceIntoForm(model.CategoryWishlist, 9)
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestFormFromRequest(t *testing.T) {
	req := validRequest()
	req.Year = "2030"

	form := FormFromRequest(req)
	assert.Equal(t, "Lisbon, Portugal", form.Name)
	assert.Equal(t, "2030", form.Year)
	assert.Equal(t, SubmitLabelAdd, form.SubmitLabel)

	req.Editing = &EditTarget{Category: model.CategoryVisited, Index: 1}
	assert.Equal(t, SubmitLabelEdit, FormFromRequest(req).SubmitLabel)
}
