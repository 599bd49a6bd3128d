package web

import (
	"fmt"
	"strconv"

	vm "github.com/impossibleiman/couplemap/internal/adapter/driving/web/viewmodel"
	"github.com/impossibleiman/couplemap/internal/application"
	"github.com/impossibleiman/couplemap/internal/domain/model"
)

const (
	pageTitle       = "Couple Map"
	tileAttribution = "&copy; OpenStreetMap contributors"
	minZoom         = 2
	maxZoom         = 19
)

// toMapPageViewModel assembles the page from the current view and form state.
func toMapPageViewModel(view application.MapView, form vm.FormViewModel, csrf string) vm.MapPageViewModel {
	return vm.MapPageViewModel{
		Title:     pageTitle,
		Visited:   toPlaceListViewModel(model.CategoryVisited, view.Visited),
		Wishlist:  toPlaceListViewModel(model.CategoryWishlist, view.Wishlist),
		Form:      form,
		CSRFToken: csrf,
		MapData:   toMapDataViewModel(view),
	}
}

// toMapDataViewModel builds the marker payload for the map script. The bounds
// extend east to 400 degrees so the Pacific stays reachable without wrapping.
func toMapDataViewModel(view application.MapView) vm.MapDataViewModel {
	markers := make([]vm.MarkerViewModel, 0, len(view.Markers))
	for _, m := range view.Markers {
		markers = append(markers, vm.MarkerViewModel{
			Category: string(m.Category),
			Lat:      m.Lat,
			Lng:      m.Lng,
			Name:     m.Name,
			Popup:    RenderPopup(m.Name, m.DateLabel, m.Photo),
		})
	}

	return vm.MapDataViewModel{
		TileURL:     "/tiles/{z}/{x}/{y}",
		Attribution: tileAttribution,
		Center:      [2]float64{20, 0},
		Zoom:        3,
		MinZoom:     minZoom,
		MaxZoom:     maxZoom,
		Bounds:      [2][2]float64{{-90, -180}, {90, 400}},
		Markers:     markers,
	}
}

// toPlaceListViewModel converts a presented list. Paths use the canonical
// index so actions hit the right record whatever the display order.
func toPlaceListViewModel(c model.Category, places []application.PresentedPlace) vm.PlaceListViewModel {
	items := make([]vm.PlaceItemViewModel, 0, len(places))
	for _, pp := range places {
		photo := ""
		if pp.Place.HasPhoto() {
			photo = SafePhotoSrc(pp.Place.Photo)
		}
		items = append(items, vm.PlaceItemViewModel{
			ID:         pp.Place.ID,
			Name:       pp.Place.Name,
			DateLabel:  pp.Place.Date.Format(),
			Photo:      photo,
			HasPhoto:   photo != "",
			EditPath:   placePath(c, pp.Index) + "/edit",
			DeletePath: placePath(c, pp.Index) + "/delete",
		})
	}

	return vm.PlaceListViewModel{
		Category: string(c),
		Title:    c.Title(),
		Places:   items,
	}
}

// toFormViewModel converts a service form to the template model.
func toFormViewModel(form application.PlaceForm, open bool, errMsg string) vm.FormViewModel {
	out := vm.FormViewModel{
		Open:        open,
		Action:      "/places",
		Error:       errMsg,
		Category:    form.Category,
		Name:        form.Name,
		Day:         form.Day,
		Month:       form.Month,
		Year:        form.Year,
		Lat:         form.Lat,
		Lng:         form.Lng,
		Photo:       SafePhotoSrc(form.Photo),
		SubmitLabel: form.SubmitLabel,
		Categories:  categoryOptions(form.Category),
		Months:      monthOptions(form.Month),
	}
	out.HasPhoto = out.Photo != ""

	if form.Editing != nil {
		out.IsEditing = true
		out.EditTarget = vm.EditTargetViewModel{
			Category: string(form.Editing.Category),
			Index:    form.Editing.Index,
			ID:       form.Editing.ID,
		}
	}
	return out
}

func categoryOptions(selected string) []vm.OptionViewModel {
	current, _ := model.ParseCategory(selected)
	opts := make([]vm.OptionViewModel, 0, len(model.Categories))
	for _, c := range model.Categories {
		opts = append(opts, vm.OptionViewModel{
			Value:    string(c),
			Label:    c.Title(),
			Selected: c == current,
		})
	}
	return opts
}

func monthOptions(selected string) []vm.OptionViewModel {
	current := model.MonthName(selected)
	opts := make([]vm.OptionViewModel, 0, 12)
	for m := 1; m <= 12; m++ {
		value := strconv.Itoa(m)
		opts = append(opts, vm.OptionViewModel{
			Value:    value,
			Label:    model.MonthName(value),
			Selected: current != "" && model.MonthName(value) == current,
		})
	}
	return opts
}

func placePath(c model.Category, index int) string {
	return fmt.Sprintf("/places/%s/%d", c, index)
}
