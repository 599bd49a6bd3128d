// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// MapPageViewModel holds everything the map page renders.
type MapPageViewModel struct {
	Title     string
	Notice    string
	Visited   PlaceListViewModel
	Wishlist  PlaceListViewModel
	Form      FormViewModel
	CSRFToken string

	// MapData is embedded as JSON for app.js.
	MapData MapDataViewModel
}

// PlaceListViewModel is one sidebar section.
type PlaceListViewModel struct {
	Category string
	Title    string
	Places   []PlaceItemViewModel
}

// PlaceItemViewModel is one entry in a sidebar list. EditPath and DeletePath
// carry the canonical index, not the display position.
type PlaceItemViewModel struct {
	ID         string
	Name       string
	DateLabel  string
	Photo      string
	HasPhoto   bool
	EditPath   string
	DeletePath string
}

// FormViewModel holds the submission form state.
type FormViewModel struct {
	Open        bool
	Action      string
	Error       string
	Category    string
	Name        string
	Day         string
	Month       string
	Year        string
	Lat         string
	Lng         string
	Photo       string
	HasPhoto    bool
	IsEditing   bool
	EditTarget  EditTargetViewModel
	SubmitLabel string
	Categories  []OptionViewModel
	Months      []OptionViewModel
}

// EditTargetViewModel identifies the place being edited in hidden fields.
type EditTargetViewModel struct {
	Category string
	Index    int
	ID       string
}

// OptionViewModel is one <option> of a select.
type OptionViewModel struct {
	Value    string
	Label    string
	Selected bool
}

// MapDataViewModel is serialized into the page for the map script.
type MapDataViewModel struct {
	TileURL     string            `json:"tileUrl"`
	Attribution string            `json:"attribution"`
	Center      [2]float64        `json:"center"`
	Zoom        int               `json:"zoom"`
	MinZoom     int               `json:"minZoom"`
	MaxZoom     int               `json:"maxZoom"`
	Bounds      [2][2]float64     `json:"bounds"`
	Markers     []MarkerViewModel `json:"markers"`
}

// MarkerViewModel is one map marker with its sanitized popup HTML.
type MarkerViewModel struct {
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Name     string  `json:"name"`
	Popup    string  `json:"popup"`
}
