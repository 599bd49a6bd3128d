package application

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

// Storage keys for the two serialized place lists.
const (
	visitedStorageKey  = "coupleMapVisitedPlaces"
	wishlistStorageKey = "coupleMapWishlistPlaces"
)

// storageKey returns the key/value key holding the given category's list.
func storageKey(c model.Category) string {
	if c == model.CategoryWishlist {
		return wishlistStorageKey
	}
	return visitedStorageKey
}

// storedPlace is the persisted JSON shape of a place. Absent optional values
// are written as empty strings rather than omitted.
type storedPlace struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Coords [2]float64 `json:"coords"`
	Date   storedDate `json:"date"`
	Photo  string     `json:"photo"`
}

type storedDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// encodePlaces serializes a category list in canonical order.
func encodePlaces(places []model.Place) (string, error) {
	out := make([]storedPlace, 0, len(places))
	for _, p := range places {
		out = append(out, storedPlace{
			ID:     p.ID,
			Name:   p.Name,
			Coords: [2]float64{p.Coords.Lat, p.Coords.Lng},
			Date:   storedDate{Day: p.Date.Day, Month: p.Date.Month, Year: p.Date.Year},
			Photo:  p.Photo,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal places: %w", err)
	}
	return string(data), nil
}

// decodePlaces parses a serialized category list. Records written before ids
// existed are assigned a fresh one. A JSON null is rejected; an empty list is
// stored as [].
func decodePlaces(raw string) ([]model.Place, error) {
	var in []storedPlace
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("unmarshal places: %w", err)
	}
	if in == nil {
		return nil, errors.New("unmarshal places: not a JSON array")
	}

	places := make([]model.Place, 0, len(in))
	for _, sp := range in {
		id := sp.ID
		if id == "" {
			id = uuid.NewString()
		}
		places = append(places, model.Place{
			ID:     id,
			Name:   sp.Name,
			Coords: model.Coordinates{Lat: sp.Coords[0], Lng: sp.Coords[1]},
			Date:   model.PlaceDate{Day: sp.Date.Day, Month: sp.Date.Month, Year: sp.Date.Year},
			Photo:  sp.Photo,
		})
	}
	return places, nil
}

// seedPlaces returns the example records a category starts with on first run.
func seedPlaces(c model.Category) []model.Place {
	seed := func(name string, lat, lng float64) model.Place {
		return model.Place{ID: uuid.NewString(), Name: name, Coords: model.Coordinates{Lat: lat, Lng: lng}}
	}

	if c == model.CategoryWishlist {
		return []model.Place{
			seed("Tokyo, Japan", 35.6762, 139.6503),
			seed("Sydney, Australia", -33.8688, 151.2093),
		}
	}
	return []model.Place{
		seed("Paris, France", 48.8566, 2.3522),
		seed("New York, USA", 40.7128, -74.006),
	}
}
