package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/impossibleiman/couplemap/internal/application"
	"github.com/impossibleiman/couplemap/internal/domain/model"
)

// jsonOverhead is the allowance on top of the base64-expanded photo limit for
// the rest of a JSON request body.
const jsonOverhead = 64 << 10

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	places       *application.PlaceService
	photos       *application.PhotoService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHandler creates a Handler. maxPhotoBytes is the decoded photo size limit;
// request bodies may be up to its base64 expansion plus a small overhead. A
// non-positive maxPhotoBytes disables the limit, as it does for PhotoService.
func NewHandler(
	places *application.PlaceService,
	photos *application.PhotoService,
	maxPhotoBytes int64,
	logger *slog.Logger,
) *Handler {
	var maxBody int64
	if maxPhotoBytes > 0 {
		maxBody = maxPhotoBytes*4/3 + jsonOverhead
	}
	return &Handler{
		places:       places,
		photos:       photos,
		maxBodyBytes: maxBody,
		logger:       logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/places", h.ListPlaces)
	mux.HandleFunc("GET /api/v1/places/new", h.NewPlaceForm)
	mux.HandleFunc("GET /api/v1/places/{category}/{index}", h.GetPlace)
	mux.HandleFunc("POST /api/v1/places", h.SavePlace)
	mux.HandleFunc("DELETE /api/v1/places/{category}/{index}", h.RemovePlace)
	mux.HandleFunc("POST /api/v1/photos/crop", h.CropPhoto)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListPlaces returns both sorted lists and every marker.
func (h *Handler) ListPlaces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toMapViewResponse(h.places.View()))
}

// NewPlaceForm returns an empty form dated today.
func (h *Handler) NewPlaceForm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toFormResponse(h.places.NewForm()))
}

// GetPlace returns the form pre-populated for editing the place at the
// canonical index.
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	category, index, ok := placePath(w, r)
	if !ok {
		return
	}

	form, err := h.places.LoadPlaceIntoForm(category, index)
	if err != nil {
		h.writeServiceError(w, err, "load place")
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(form))
}

// SavePlace creates a place, or edits one when the body names an editing
// target. The response is the updated map state.
func (h *Handler) SavePlace(w http.ResponseWriter, r *http.Request) {
	var body SavePlaceRequest
	if !h.decodeBody(w, r, &body) {
		return
	}

	req := application.SaveRequest{
		Category:    body.Category,
		Name:        body.Name,
		Day:         body.Day,
		Month:       body.Month,
		Year:        body.Year,
		Lat:         body.Lat,
		Lng:         body.Lng,
		RemovePhoto: body.RemovePhoto,
	}

	if body.Editing != nil {
		category, ok := model.ParseCategory(body.Editing.Category)
		if !ok {
			writeError(w, http.StatusBadRequest, application.ErrUnknownCategory.Error())
			return
		}
		req.Editing = &application.EditTarget{
			Category: category,
			Index:    body.Editing.Index,
			ID:       body.Editing.ID,
		}
	}

	if body.Photo != "" && !body.RemovePhoto {
		data, err := application.DecodeDataURL(body.Photo)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		req.Photo = &application.PhotoInput{Data: data, Crop: toCropRequest(body.Crop)}
	}

	if _, err := h.places.Save(r.Context(), req); err != nil {
		h.writeServiceError(w, err, "save place")
		return
	}

	status := http.StatusCreated
	if req.Editing != nil {
		status = http.StatusOK
	}
	writeJSON(w, status, toMapViewResponse(h.places.View()))
}

// RemovePlace deletes the place at the canonical index. The optional id query
// parameter must match the stored place.
func (h *Handler) RemovePlace(w http.ResponseWriter, r *http.Request) {
	category, index, ok := placePath(w, r)
	if !ok {
		return
	}

	if err := h.places.Remove(r.Context(), category, index, r.URL.Query().Get("id")); err != nil {
		h.writeServiceError(w, err, "remove place")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CropPhoto crops a data-URL photo without storing anything, so clients can
// preview the result.
func (h *Handler) CropPhoto(w http.ResponseWriter, r *http.Request) {
	var body CropPhotoRequest
	if !h.decodeBody(w, r, &body) {
		return
	}

	data, err := application.DecodeDataURL(body.Photo)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.photos.CropUpload(data, toCropRequest(body.Crop))
	if err != nil {
		h.writeServiceError(w, err, "crop photo")
		return
	}

	writeJSON(w, http.StatusOK, CropPhotoResponse{
		Photo: res.Photo,
		Source: SourceRectResponse{
			X:      res.Source.X,
			Y:      res.Source.Y,
			Width:  res.Source.Width,
			Height: res.Source.Height,
		},
	})
}

// writeServiceError maps application errors to status codes. Anything
// unrecognized is logged and reported as a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case application.IsValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, application.UserMessage(err))
	case errors.Is(err, application.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, application.ErrUnknownCategory.Error())
	case errors.Is(err, application.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, application.ErrPlaceNotFound.Error())
	case errors.Is(err, application.ErrStalePlace):
		writeError(w, http.StatusConflict, application.ErrStalePlace.Error())
	default:
		h.logger.Error("failed to "+op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// placePath parses the {category}/{index} path values, writing a 400 and
// returning false when either is invalid.
func placePath(w http.ResponseWriter, r *http.Request) (model.Category, int, bool) {
	category, ok := model.ParseCategory(r.PathValue("category"))
	if !ok {
		writeError(w, http.StatusBadRequest, application.ErrUnknownCategory.Error())
		return "", 0, false
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid place index")
		return "", 0, false
	}
	return category, index, true
}

// decodeBody reads a JSON request body into dst. Only application/json bodies
// are accepted, which also keeps cross-site form posts out of the API. It
// writes the error response and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return false
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, application.ErrPhotoTooLarge.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
