package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/impossibleiman/couplemap/internal/application"
	"github.com/impossibleiman/couplemap/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// DateResponse carries the raw date components as the user entered them.
type DateResponse struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// PlaceResponse is the JSON representation of a place in a sidebar list.
// Index is the canonical position to use for edit and delete calls.
type PlaceResponse struct {
	Index     int          `json:"index"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Lat       float64      `json:"lat"`
	Lng       float64      `json:"lng"`
	Date      DateResponse `json:"date"`
	DateLabel string       `json:"date_label"`
	Photo     string       `json:"photo,omitempty"`
}

// MarkerResponse is the JSON representation of a map marker.
type MarkerResponse struct {
	Category  string  `json:"category"`
	Index     int     `json:"index"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Name      string  `json:"name"`
	DateLabel string  `json:"date_label"`
	Photo     string  `json:"photo,omitempty"`
}

// MapViewResponse is the full map state: both sorted lists and all markers.
type MapViewResponse struct {
	Visited  []PlaceResponse  `json:"visited"`
	Wishlist []PlaceResponse  `json:"wishlist"`
	Markers  []MarkerResponse `json:"markers"`
}

// EditTargetBody identifies the stored place an edit replaces.
type EditTargetBody struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
}

// FormResponse is the pre-populated submission form.
type FormResponse struct {
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Day         string          `json:"day"`
	Month       string          `json:"month"`
	Year        string          `json:"year"`
	Lat         string          `json:"lat"`
	Lng         string          `json:"lng"`
	Photo       string          `json:"photo,omitempty"`
	Editing     *EditTargetBody `json:"editing,omitempty"`
	SubmitLabel string          `json:"submit_label"`
}

// SizeBody is a width/height pair in pixels.
type SizeBody struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CropRectBody is the crop overlay in display pixels.
type CropRectBody struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
	Size float64 `json:"size"`
}

// CropBody describes how the photo was displayed and where the overlay sits.
// Omitted sizes fall back to the image's natural size; an omitted rect uses
// the default centered overlay.
type CropBody struct {
	Display   SizeBody      `json:"display"`
	Container SizeBody      `json:"container"`
	Rect      *CropRectBody `json:"rect,omitempty"`
}

// SavePlaceRequest is the JSON body for creating or editing a place. Photo is
// a base64 data URL of the uncropped upload.
type SavePlaceRequest struct {
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Day         string          `json:"day"`
	Month       string          `json:"month"`
	Year        string          `json:"year"`
	Lat         string          `json:"lat"`
	Lng         string          `json:"lng"`
	Photo       string          `json:"photo,omitempty"`
	Crop        *CropBody       `json:"crop,omitempty"`
	RemovePhoto bool            `json:"remove_photo"`
	Editing     *EditTargetBody `json:"editing,omitempty"`
}

// CropPhotoRequest is the JSON body for the crop preview endpoint.
type CropPhotoRequest struct {
	Photo string    `json:"photo"`
	Crop  *CropBody `json:"crop,omitempty"`
}

// SourceRectResponse is the crop rectangle in source-image pixels.
type SourceRectResponse struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CropPhotoResponse is the cropped photo and the source region it came from.
type CropPhotoResponse struct {
	Photo  string             `json:"photo"`
	Source SourceRectResponse `json:"source"`
}

// toPlaceResponse converts a presented place to its JSON representation.
func toPlaceResponse(pp application.PresentedPlace) PlaceResponse {
	p := pp.Place
	return PlaceResponse{
		Index:     pp.Index,
		ID:        p.ID,
		Name:      p.Name,
		Lat:       p.Coords.Lat,
		Lng:       p.Coords.Lng,
		Date:      DateResponse{Day: p.Date.Day, Month: p.Date.Month, Year: p.Date.Year},
		DateLabel: p.Date.Format(),
		Photo:     photoOrEmpty(p),
	}
}

// toMapViewResponse converts a MapView to its JSON representation. All slices
// are non-nil so clients always see arrays.
func toMapViewResponse(v application.MapView) MapViewResponse {
	resp := MapViewResponse{
		Visited:  make([]PlaceResponse, 0, len(v.Visited)),
		Wishlist: make([]PlaceResponse, 0, len(v.Wishlist)),
		Markers:  make([]MarkerResponse, 0, len(v.Markers)),
	}
	for _, pp := range v.Visited {
		resp.Visited = append(resp.Visited, toPlaceResponse(pp))
	}
	for _, pp := range v.Wishlist {
		resp.Wishlist = append(resp.Wishlist, toPlaceResponse(pp))
	}
	for _, m := range v.Markers {
		resp.Markers = append(resp.Markers, MarkerResponse{
			Category:  string(m.Category),
			Index:     m.Index,
			Lat:       m.Lat,
			Lng:       m.Lng,
			Name:      m.Name,
			DateLabel: m.DateLabel,
			Photo:     m.Photo,
		})
	}
	return resp
}

// toFormResponse converts a PlaceForm to its JSON representation.
func toFormResponse(f application.PlaceForm) FormResponse {
	resp := FormResponse{
		Category:    f.Category,
		Name:        f.Name,
		Day:         f.Day,
		Month:       f.Month,
		Year:        f.Year,
		Lat:         f.Lat,
		Lng:         f.Lng,
		Photo:       f.Photo,
		SubmitLabel: f.SubmitLabel,
	}
	if f.Editing != nil {
		resp.Editing = &EditTargetBody{
			Category: string(f.Editing.Category),
			Index:    f.Editing.Index,
			ID:       f.Editing.ID,
		}
	}
	return resp
}

// toCropRequest converts an optional crop body to the service request.
func toCropRequest(b *CropBody) application.CropRequest {
	if b == nil {
		return application.CropRequest{}
	}
	req := application.CropRequest{
		Display:   model.Size{W: b.Display.W, H: b.Display.H},
		Container: model.Size{W: b.Container.W, H: b.Container.H},
	}
	if b.Rect != nil {
		req.Rect = &model.CropRect{Left: b.Rect.Left, Top: b.Rect.Top, Size: b.Rect.Size}
	}
	return req
}

func photoOrEmpty(p model.Place) string {
	if !p.HasPhoto() {
		return ""
	}
	return p.Photo
}
