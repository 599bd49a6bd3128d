package application

import "github.com/impossibleiman/couplemap/internal/domain/model"

// Marker is everything the map needs to draw one place.
type Marker struct {
	Category  model.Category
	Index     int
	Lat       float64
	Lng       float64
	Name      string
	DateLabel string
	Photo     string
}

// MapView is a full re-render of the map and both sidebar lists. Markers are
// in canonical order; the lists are in display order.
type MapView struct {
	Visited  []PresentedPlace
	Wishlist []PresentedPlace
	Markers  []Marker
}

// List returns the presented list for a category.
func (v MapView) List(c model.Category) []PresentedPlace {
	if c == model.CategoryWishlist {
		return v.Wishlist
	}
	return v.Visited
}

// View assembles the markers and sorted lists for both categories from a
// single snapshot of the store.
func (s *PlaceService) View() MapView {
	snapshot := s.store.Snapshot()

	var view MapView
	for _, c := range model.Categories {
		places := snapshot[c]
		for i, p := range places {
			view.Markers = append(view.Markers, Marker{
				Category:  c,
				Index:     i,
				Lat:       p.Coords.Lat,
				Lng:       p.Coords.Lng,
				Name:      p.Name,
				DateLabel: p.Date.Format(),
				Photo:     p.Photo,
			})
		}

		presented := PresentIndexed(places)
		if c == model.CategoryWishlist {
			view.Wishlist = presented
		} else {
			view.Visited = presented
		}
	}
	return view
}
