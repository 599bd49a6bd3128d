// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/impossibleiman/couplemap/internal/adapter/driving/web/templates"
	vm "github.com/impossibleiman/couplemap/internal/adapter/driving/web/viewmodel"
	"github.com/impossibleiman/couplemap/internal/application"
	"github.com/impossibleiman/couplemap/internal/domain/model"
	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// multipartOverhead is the allowance for non-file form fields on top of the
// photo size limit.
const multipartOverhead = 1 << 20

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	places         *application.PlaceService
	tiles          driven.TileSource
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. tiles may be
// nil, in which case the tile route answers 404. A non-positive
// maxUploadBytes disables the request size limit.
func NewHandler(
	places *application.PlaceService,
	tiles driven.TileSource,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		places:         places,
		tiles:          tiles,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// MapPage renders the map with the submission form closed.
func (h *Handler) MapPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, toFormViewModel(h.places.NewForm(), false, ""), "")
}

// NewPlace renders the map with an empty form dated today.
func (h *Handler) NewPlace(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, toFormViewModel(h.places.NewForm(), true, ""), "")
}

// EditPlace renders the map with the form loaded from the place at the
// canonical index.
func (h *Handler) EditPlace(w http.ResponseWriter, r *http.Request) {
	category, index, ok := parsePlacePath(w, r)
	if !ok {
		return
	}

	form, err := h.places.LoadPlaceIntoForm(category, index)
	if err != nil {
		h.renderServiceError(w, r, err, "load place")
		return
	}
	h.renderPage(w, r, http.StatusOK, toFormViewModel(form, true, ""), "")
}

// SavePlace handles the multipart form submission. On success the browser is
// redirected to the map; on a validation failure the form is shown again with
// the message and the values the user typed.
func (h *Handler) SavePlace(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderPage(w, r, http.StatusRequestEntityTooLarge,
				toFormViewModel(h.places.NewForm(), true, application.ErrPhotoTooLarge.Error()), "")
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	req, err := h.saveRequestFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.places.Save(r.Context(), req); err != nil {
		if application.IsValidationError(err) {
			form := toFormViewModel(application.FormFromRequest(req), true, application.UserMessage(err))
			if req.Editing != nil {
				if current, loadErr := h.places.LoadPlaceIntoForm(req.Editing.Category, req.Editing.Index); loadErr == nil {
					form.Photo = SafePhotoSrc(current.Photo)
					form.HasPhoto = form.Photo != ""
				}
			}
			h.renderPage(w, r, http.StatusUnprocessableEntity, form, "")
			return
		}
		h.renderServiceError(w, r, err, "save place")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RemovePlace deletes the place at the canonical index after the user has
// confirmed in the browser.
func (h *Handler) RemovePlace(w http.ResponseWriter, r *http.Request) {
	category, index, ok := parsePlacePath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	if err := h.places.Remove(r.Context(), category, index, r.PostFormValue("id")); err != nil {
		h.renderServiceError(w, r, err, "remove place")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// saveRequestFromForm reads the submission fields, the optional photo upload
// and the crop overlay geometry.
func (h *Handler) saveRequestFromForm(r *http.Request) (application.SaveRequest, error) {
	req := application.SaveRequest{
		Category:    r.PostFormValue("category"),
		Name:        r.PostFormValue("name"),
		Day:         r.PostFormValue("day"),
		Month:       r.PostFormValue("month"),
		Year:        r.PostFormValue("year"),
		Lat:         r.PostFormValue("lat"),
		Lng:         r.PostFormValue("lng"),
		RemovePhoto: r.PostFormValue("remove_photo") != "",
	}

	if raw := r.PostFormValue("edit_category"); raw != "" {
		category, ok := model.ParseCategory(raw)
		if !ok {
			return req, application.ErrUnknownCategory
		}
		index, err := strconv.Atoi(r.PostFormValue("edit_index"))
		if err != nil || index < 0 {
			return req, errors.New("invalid place index")
		}
		req.Editing = &application.EditTarget{
			Category: category,
			Index:    index,
			ID:       r.PostFormValue("edit_id"),
		}
	}

	if req.RemovePhoto {
		return req, nil
	}

	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("read photo: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > 0 {
		req.Photo = &application.PhotoInput{Data: data, Crop: cropFromForm(r)}
	}
	return req, nil
}

// cropFromForm reads the overlay geometry app.js records in hidden fields.
// Missing or unparseable values fall back to the service defaults.
func cropFromForm(r *http.Request) application.CropRequest {
	num := func(name string) (float64, bool) {
		v, err := strconv.ParseFloat(r.PostFormValue(name), 64)
		return v, err == nil
	}

	var req application.CropRequest
	if w, ok := num("display_w"); ok {
		if h, ok := num("display_h"); ok {
			req.Display = model.Size{W: w, H: h}
		}
	}
	if w, ok := num("container_w"); ok {
		if h, ok := num("container_h"); ok {
			req.Container = model.Size{W: w, H: h}
		}
	}

	left, okL := num("crop_left")
	top, okT := num("crop_top")
	size, okS := num("crop_size")
	if okL && okT && okS {
		req.Rect = &model.CropRect{Left: left, Top: top, Size: size}
	}
	return req
}

// renderPage renders the full map page with the given form state. notice, when
// set, is shown above the map.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, form vm.FormViewModel, notice string) {
	csrf := csrfToken(w, r)

	page := toMapPageViewModel(h.places.View(), form, csrf)
	page.Notice = notice

	layout := templates.Layout(page.Title, templates.MapPage(page))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render map page", "error", err)
	}
}

// renderServiceError shows the map with a notice for store errors such as a
// stale or missing place, and a plain 500 for anything else.
func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var status int
	var notice string
	switch {
	case errors.Is(err, application.ErrPlaceNotFound):
		status, notice = http.StatusNotFound, "That place no longer exists."
	case errors.Is(err, application.ErrStalePlace):
		status, notice = http.StatusConflict, "The list changed while you were looking at it. Please try again."
	case errors.Is(err, application.ErrUnknownCategory):
		status, notice = http.StatusBadRequest, "Unknown category."
	default:
		h.logger.Error("failed to "+op, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.renderPage(w, r, status, toFormViewModel(h.places.NewForm(), false, ""), notice)
}

// parsePlacePath parses the {category}/{index} path values, writing a 400 and
// returning false when either is invalid.
func parsePlacePath(w http.ResponseWriter, r *http.Request) (model.Category, int, bool) {
	category, ok := model.ParseCategory(r.PathValue("category"))
	if !ok {
		http.Error(w, application.ErrUnknownCategory.Error(), http.StatusBadRequest)
		return "", 0, false
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid place index", http.StatusBadRequest)
		return "", 0, false
	}
	return category, index, true
}
