package application

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

// PresentedPlace is a place in display order together with its index in the
// canonical sequence. Edit and remove actions must use Index, never the
// display position.
type PresentedPlace struct {
	Index int
	Place model.Place
}

// Present returns places in display order: dated places first, ascending by
// comparable date, then undated places by name. The sort is stable, so places
// with equal keys keep their input order. The input is not modified.
func Present(places []model.Place) []model.Place {
	presented := PresentIndexed(places)
	out := make([]model.Place, 0, len(presented))
	for _, pp := range presented {
		out = append(out, pp.Place)
	}
	return out
}

// PresentIndexed is Present, keeping each place's canonical index.
func PresentIndexed(places []model.Place) []PresentedPlace {
	out := make([]PresentedPlace, 0, len(places))
	for i, p := range places {
		out = append(out, PresentedPlace{Index: i, Place: p})
	}

	// collate.Collator keeps internal buffers and is not safe for concurrent use.
	names := collate.New(language.Und)

	slices.SortStableFunc(out, func(a, b PresentedPlace) int {
		aDated, bDated := a.Place.Date.HasDate(), b.Place.Date.HasDate()
		switch {
		case aDated && !bDated:
			return -1
		case !aDated && bDated:
			return 1
		case aDated:
			return a.Place.Date.Comparable().Compare(b.Place.Date.Comparable())
		default:
			return names.CompareString(a.Place.Name, b.Place.Name)
		}
	})
	return out
}
