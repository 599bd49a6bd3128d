package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

// Submit button labels for the two form modes.
const (
	SubmitLabelAdd  = "Add Submission"
	SubmitLabelEdit = "Save changes"
)

// EditTarget identifies the stored place a submission replaces. Index is the
// position in the canonical sequence of Category. ID, when set, must match
// the place at that position.
type EditTarget struct {
	Category model.Category
	Index    int
	ID       string
}

// PhotoInput is a freshly uploaded image and the crop the user chose for it.
type PhotoInput struct {
	Data []byte
	Crop CropRequest
}

// SaveRequest carries one form submission. Field values are the raw strings
// the form produced. Editing is nil for a new place.
type SaveRequest struct {
	Category    string
	Name        string
	Day         string
	Month       string
	Year        string
	Lat         string
	Lng         string
	Photo       *PhotoInput
	RemovePhoto bool
	Editing     *EditTarget
}

// PlaceForm is the pre-population of the submission form.
type PlaceForm struct {
	Category    string
	Name        string
	Day         string
	Month       string
	Year        string
	Lat         string
	Lng         string
	Photo       string
	Editing     *EditTarget
	SubmitLabel string
}

// FormFromRequest rebuilds the form from a rejected submission so the user
// can correct it without retyping.
func FormFromRequest(req SaveRequest) PlaceForm {
	label := SubmitLabelAdd
	if req.Editing != nil {
		label = SubmitLabelEdit
	}
	return PlaceForm{
		Category:    req.Category,
		Name:        req.Name,
		Day:         req.Day,
		Month:       req.Month,
		Year:        req.Year,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Editing:     req.Editing,
		SubmitLabel: label,
	}
}

// PlaceService validates submissions and applies them to the PlaceStore.
type PlaceService struct {
	store  *PlaceStore
	photos *PhotoService
	now    func() time.Time
	logger *slog.Logger
}

// NewPlaceService creates a PlaceService. now is the clock used for the
// visited/wishlist date checks; pass nil for time.Now.
func NewPlaceService(store *PlaceStore, photos *PhotoService, now func() time.Time, logger *slog.Logger) *PlaceService {
	if now == nil {
		now = time.Now
	}
	return &PlaceService{
		store:  store,
		photos: photos,
		now:    now,
		logger: logger,
	}
}

// Save validates a submission and either appends a new place or applies an
// edit. Checks run in order: category, name, coordinates, then the date
// against the current time when any date component is supplied. A failed check
// changes nothing.
func (s *PlaceService) Save(ctx context.Context, req SaveRequest) (model.Place, error) {
	category, ok := model.ParseCategory(req.Category)
	if !ok {
		return model.Place{}, ErrCategoryRequired
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Place{}, ErrNameRequired
	}

	coords, ok := model.ParseCoordinates(req.Lat, req.Lng)
	if !ok {
		return model.Place{}, ErrInvalidCoordinates
	}

	date := model.PlaceDate{
		Day:   strings.TrimSpace(req.Day),
		Month: strings.TrimSpace(req.Month),
		Year:  strings.TrimSpace(req.Year),
	}
	if err := checkDateForCategory(category, date, s.now()); err != nil {
		return model.Place{}, err
	}

	place := model.Place{
		Name:   name,
		Coords: coords,
		Date:   date,
	}

	var existing *model.Place
	if req.Editing != nil {
		current, err := s.store.Get(req.Editing.Category, req.Editing.Index)
		if err != nil {
			return model.Place{}, err
		}
		if req.Editing.ID != "" && current.ID != req.Editing.ID {
			return model.Place{}, fmt.Errorf("%s place %d: %w", req.Editing.Category, req.Editing.Index, ErrStalePlace)
		}
		existing = &current
	}

	photo, err := s.resolvePhoto(req, existing)
	if err != nil {
		return model.Place{}, err
	}
	place.Photo = photo

	if existing == nil {
		place.ID = uuid.NewString()
		if err := s.store.Add(ctx, category, place); err != nil {
			return model.Place{}, err
		}
		s.logger.Info("place added", "category", category, "name", place.Name)
		return place, nil
	}

	// Guard on the id read above so a concurrent change between the lookup
	// and the update is reported as stale instead of overwriting a neighbour.
	place.ID = existing.ID
	target := req.Editing
	if err := s.store.Update(ctx, target.Category, target.Index, existing.ID, category, place); err != nil {
		return model.Place{}, err
	}
	s.logger.Info("place updated",
		"from", target.Category,
		"to", category,
		"index", target.Index,
		"name", place.Name,
	)
	return place, nil
}

// Remove deletes a place after the caller has confirmed the removal.
func (s *PlaceService) Remove(ctx context.Context, category model.Category, index int, guardID string) error {
	removed, err := s.store.Remove(ctx, category, index, guardID)
	if err != nil {
		return err
	}
	s.logger.Info("place removed", "category", category, "index", index, "name", removed.Name)
	return nil
}

// NewForm returns an empty form with the date fields set to today.
func (s *PlaceService) NewForm() PlaceForm {
	today := s.now()
	return PlaceForm{
		Day:         strconv.Itoa(today.Day()),
		Month:       strconv.Itoa(int(today.Month())),
		Year:        strconv.Itoa(today.Year()),
		SubmitLabel: SubmitLabelAdd,
	}
}

// LoadPlaceIntoForm returns the form pre-populated from the place at index,
// set up to edit it in place.
func (s *PlaceService) LoadPlaceIntoForm(category model.Category, index int) (PlaceForm, error) {
	p, err := s.store.Get(category, index)
	if err != nil {
		return PlaceForm{}, err
	}

	return PlaceForm{
		Category:    string(category),
		Name:        p.Name,
		Day:         p.Date.Day,
		Month:       p.Date.Month,
		Year:        p.Date.Year,
		Lat:         formatDegrees(p.Coords.Lat),
		Lng:         formatDegrees(p.Coords.Lng),
		Photo:       p.Photo,
		Editing:     &EditTarget{Category: category, Index: index, ID: p.ID},
		SubmitLabel: SubmitLabelEdit,
	}, nil
}

// resolvePhoto picks the photo for a submission: removed, freshly cropped, the
// existing one when editing, or none.
func (s *PlaceService) resolvePhoto(req SaveRequest, existing *model.Place) (string, error) {
	switch {
	case req.RemovePhoto:
		return "", nil
	case req.Photo != nil && len(req.Photo.Data) > 0:
		res, err := s.photos.CropUpload(req.Photo.Data, req.Photo.Crop)
		if err != nil {
			return "", fmt.Errorf("crop photo: %w", err)
		}
		return res.Photo, nil
	case existing != nil:
		return existing.Photo, nil
	default:
		return "", nil
	}
}

// checkDateForCategory enforces that visited places are dated strictly before
// now and wishlist places strictly after. Undated places always pass. Missing
// components count as day 1, January or 1970, so a wishlist date of only the
// current month and year is rejected once the 1st has passed.
func checkDateForCategory(c model.Category, d model.PlaceDate, now time.Time) error {
	if !d.HasDate() {
		return nil
	}

	at := d.Comparable()
	switch c {
	case model.CategoryVisited:
		if !at.Before(now) {
			return ErrVisitedDateNotPast
		}
	case model.CategoryWishlist:
		if !at.After(now) {
			return ErrWishlistDateNotFuture
		}
	}
	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
