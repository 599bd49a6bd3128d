package httphandler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impossibleiman/couplemap/internal/adapter/driven/memory"
	httphandler "github.com/impossibleiman/couplemap/internal/adapter/driving/http"
	"github.com/impossibleiman/couplemap/internal/application"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupHandler wires the API against seeded in-memory storage.
func setupHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := discardLogger()
	store := application.NewPlaceStore(memory.NewKVStore(), logger)
	require.NoError(t, store.Restore(context.Background()))

	photos := application.NewPhotoService(1 << 20)
	places := application.NewPlaceService(store, photos, func() time.Time { return fixedNow }, logger)

	return httphandler.NewServeMux(httphandler.NewHandler(places, photos, 1<<20, logger), logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestHealth(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	resp := decode[httphandler.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
}

func TestListPlaces_Seeded(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/places", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httphandler.MapViewResponse](t, rec)

	// Undated seeds sort by name; indexes stay canonical.
	require.Len(t, resp.Visited, 2)
	assert.Equal(t, "New York, USA", resp.Visited[0].Name)
	assert.Equal(t, 1, resp.Visited[0].Index)
	assert.Equal(t, "Paris, France", resp.Visited[1].Name)
	assert.Equal(t, 0, resp.Visited[1].Index)

	require.Len(t, resp.Wishlist, 2)
	assert.Equal(t, "Sydney, Australia", resp.Wishlist[0].Name)

	require.Len(t, resp.Markers, 4)
	assert.Equal(t, "visited", resp.Markers[0].Category)
	assert.Equal(t, "Paris, France", resp.Markers[0].Name)
	assert.InDelta(t, 48.8566, resp.Markers[0].Lat, 1e-9)
	assert.Equal(t, "wishlist", resp.Markers[3].Category)
}

func TestNewPlaceForm_DatedToday(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/places/new", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[httphandler.FormResponse](t, rec)
	assert.Equal(t, "15", form.Day)
	assert.Equal(t, "6", form.Month)
	assert.Equal(t, "2025", form.Year)
	assert.Equal(t, application.SubmitLabelAdd, form.SubmitLabel)
	assert.Nil(t, form.Editing)
}

func TestGetPlace(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/places/wishlist/1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[httphandler.FormResponse](t, rec)
	assert.Equal(t, "wishlist", form.Category)
	assert.Equal(t, "Sydney, Australia", form.Name)
	assert.Equal(t, "-33.8688", form.Lat)
	assert.Equal(t, "151.2093", form.Lng)
	assert.Equal(t, application.SubmitLabelEdit, form.SubmitLabel)
	require.NotNil(t, form.Editing)
	assert.Equal(t, 1, form.Editing.Index)
	assert.NotEmpty(t, form.Editing.ID)
}

func TestGetPlace_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown category", "/api/v1/places/someday/0", http.StatusBadRequest},
		{"bad index", "/api/v1/places/visited/abc", http.StatusBadRequest},
		{"negative index", "/api/v1/places/visited/-1", http.StatusBadRequest},
		{"out of range", "/api/v1/places/visited/9", http.StatusNotFound},
	}

	h := setupHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestSavePlace_Create(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/places", httphandler.SavePlaceRequest{
		Category: "visited",
		Name:     "  Lisbon ",
		Day:      "3",
		Month:    "5",
		Year:     "2024",
		Lat:      "38.7223",
		Lng:      "-9.1393",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[httphandler.MapViewResponse](t, rec)
	require.Len(t, resp.Visited, 3)
	assert.Equal(t, "Lisbon", resp.Visited[0].Name, "dated places sort first")
	assert.Equal(t, 2, resp.Visited[0].Index)
	assert.Equal(t, "3rd May 2024", resp.Visited[0].DateLabel)
	require.Len(t, resp.Markers, 5)
	assert.Equal(t, "Lisbon", resp.Markers[2].Name)
}

func TestSavePlace_ValidationErrors(t *testing.T) {
	valid := httphandler.SavePlaceRequest{Category: "visited", Name: "Rome", Lat: "41.9", Lng: "12.5"}

	tests := []struct {
		name    string
		mutate  func(r *httphandler.SavePlaceRequest)
		wantMsg string
	}{
		{"missing category", func(r *httphandler.SavePlaceRequest) { r.Category = "" }, application.ErrCategoryRequired.Error()},
		{"blank name", func(r *httphandler.SavePlaceRequest) { r.Name = "   " }, application.ErrNameRequired.Error()},
		{"latitude out of range", func(r *httphandler.SavePlaceRequest) { r.Lat = "90.0001" }, application.ErrInvalidCoordinates.Error()},
		{"visited in the future", func(r *httphandler.SavePlaceRequest) { r.Year = "2030" }, application.ErrVisitedDateNotPast.Error()},
		{"bad photo", func(r *httphandler.SavePlaceRequest) { r.Photo = "not-a-data-url" }, application.ErrInvalidDataURL.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupHandler(t)
			body := valid
			tt.mutate(&body)

			rec := doJSON(t, h, http.MethodPost, "/api/v1/places", body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[map[string]string](t, rec)["error"])

			list := decode[httphandler.MapViewResponse](t, doJSON(t, h, http.MethodGet, "/api/v1/places", nil))
			assert.Len(t, list.Markers, 4, "rejected submission must not change state")
		})
	}
}

func TestSavePlace_InvalidBody(t *testing.T) {
	h := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/places", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavePlace_EditMovesCategory(t *testing.T) {
	h := setupHandler(t)

	form := decode[httphandler.FormResponse](t, doJSON(t, h, http.MethodGet, "/api/v1/places/wishlist/0", nil))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/places", httphandler.SavePlaceRequest{
		Category: "visited",
		Name:     form.Name,
		Lat:      form.Lat,
		Lng:      form.Lng,
		Editing:  form.Editing,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httphandler.MapViewResponse](t, rec)
	require.Len(t, resp.Visited, 3)
	require.Len(t, resp.Wishlist, 1)
	assert.Equal(t, "Sydney, Australia", resp.Wishlist[0].Name)
	assert.Equal(t, 0, resp.Wishlist[0].Index)

	// Migrated places append to the end of the destination.
	assert.Equal(t, "Tokyo, Japan", resp.Markers[2].Name)
	assert.Equal(t, "visited", resp.Markers[2].Category)
	assert.Equal(t, 2, resp.Markers[2].Index)
}

func TestSavePlace_StaleEdit(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/places", httphandler.SavePlaceRequest{
		Category: "visited",
		Name:     "Paris",
		Lat:      "48.8566",
		Lng:      "2.3522",
		Editing:  &httphandler.EditTargetBody{Category: "visited", Index: 0, ID: "not-the-id"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSavePlace_WithPhoto(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/places", httphandler.SavePlaceRequest{
		Category: "wishlist",
		Name:     "Reykjavik",
		Lat:      "64.1466",
		Lng:      "-21.9426",
		Photo:    pngDataURL(t, 200, 100),
		Crop: &httphandler.CropBody{
			Display:   httphandler.SizeBody{W: 100, H: 50},
			Container: httphandler.SizeBody{W: 100, H: 50},
			Rect:      &httphandler.CropRectBody{Left: 10, Top: 0, Size: 50},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[httphandler.MapViewResponse](t, rec)
	var photo string
	for _, m := range resp.Markers {
		if m.Name == "Reykjavik" {
			photo = m.Photo
		}
	}
	require.True(t, strings.HasPrefix(photo, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(photo, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestRemovePlace(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/places/visited/0", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	resp := decode[httphandler.MapViewResponse](t, doJSON(t, h, http.MethodGet, "/api/v1/places", nil))
	require.Len(t, resp.Visited, 1)
	assert.Equal(t, "New York, USA", resp.Visited[0].Name)
	assert.Len(t, resp.Wishlist, 2, "other category untouched")
}

func TestRemovePlace_Errors(t *testing.T) {
	h := setupHandler(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodDelete, "/api/v1/places/visited/5", nil).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, h, http.MethodDelete, "/api/v1/places/visited/0?id=stale", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodDelete, "/api/v1/places/nowhere/0", nil).Code)
}

func TestCropPhoto(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/photos/crop", httphandler.CropPhotoRequest{
		Photo: pngDataURL(t, 200, 100),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httphandler.CropPhotoResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.Photo, "data:image/png;base64,"))
	// Default overlay: 80% of the shorter side, centered.
	assert.InDelta(t, 60, resp.Source.X, 1e-9)
	assert.InDelta(t, 10, resp.Source.Y, 1e-9)
	assert.InDelta(t, 80, resp.Source.Width, 1e-9)
	assert.InDelta(t, 80, resp.Source.Height, 1e-9)
}

func TestCropPhoto_Unsupported(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/photos/crop", httphandler.CropPhotoRequest{
		Photo: "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello, not an image")),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, application.ErrUnsupportedPhoto.Error(), decode[map[string]string](t, rec)["error"])
}

func TestCropPhoto_ContainerLargerThanImage(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/photos/crop", httphandler.CropPhotoRequest{
		Photo: pngDataURL(t, 10, 10),
		Crop: &httphandler.CropBody{
			Display:   httphandler.SizeBody{W: 1, H: 1},
			Container: httphandler.SizeBody{W: 1e5, H: 1e5},
			Rect:      &httphandler.CropRectBody{Size: 1e5},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httphandler.CropPhotoResponse](t, rec)
	assert.LessOrEqual(t, resp.Source.Width, 10.0)
	assert.LessOrEqual(t, resp.Source.Height, 10.0)
}

func TestPostRoutes_RequireJSONContentType(t *testing.T) {
	h := setupHandler(t)

	tests := []struct {
		name        string
		path        string
		contentType string
	}{
		{name: "save without header", path: "/api/v1/places"},
		{name: "save as form", path: "/api/v1/places", contentType: "application/x-www-form-urlencoded"},
		{name: "save as text", path: "/api/v1/places", contentType: "text/plain"},
		{name: "crop as form", path: "/api/v1/photos/crop", contentType: "multipart/form-data; boundary=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"category":"visited","name":"Rome"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		})
	}

	places := decode[httphandler.MapViewResponse](t, doJSON(t, h, http.MethodGet, "/api/v1/places", nil))
	for _, p := range places.Visited {
		assert.NotEqual(t, "Rome", p.Name)
	}
}

func TestPostRoutes_AcceptJSONWithCharset(t *testing.T) {
	h := setupHandler(t)

	data, err := json.Marshal(httphandler.CropPhotoRequest{Photo: pngDataURL(t, 20, 20)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/crop", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHandler_BodyLimit(t *testing.T) {
	logger := discardLogger()
	store := application.NewPlaceStore(memory.NewKVStore(), logger)
	require.NoError(t, store.Restore(context.Background()))

	data, err := json.Marshal(httphandler.CropPhotoRequest{Photo: pngDataURL(t, 20, 20)})
	require.NoError(t, err)
	// Leading whitespace pushes the body past the JSON overhead allowance.
	body := append(bytes.Repeat([]byte(" "), 256<<10), data...)

	tests := []struct {
		name          string
		maxPhotoBytes int64
		want          int
	}{
		{name: "limited", maxPhotoBytes: 1024, want: http.StatusRequestEntityTooLarge},
		{name: "zero disables the limit", maxPhotoBytes: 0, want: http.StatusOK},
		{name: "negative disables the limit", maxPhotoBytes: -1, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photos := application.NewPhotoService(tt.maxPhotoBytes)
			places := application.NewPlaceService(store, photos, func() time.Time { return fixedNow }, logger)
			h := httphandler.NewServeMux(httphandler.NewHandler(places, photos, tt.maxPhotoBytes, logger), logger)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/crop", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := httphandler.ApplyMiddleware(mux, discardLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestMiddleware_SecurityHeadersAndLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tiles/{z}/{x}/{y}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tile"))
	})
	h := httphandler.ApplyMiddleware(mux, logger)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tiles/3/1/2", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "/tiles/3/1/2", entry["path"])
	assert.EqualValues(t, 4, entry["bytes"])
}
