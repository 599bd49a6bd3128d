package model

// Place is a single named geographic entry. Its identity inside a category is
// its index in that category's ordered sequence; ID only guards index-based
// operations against a list that changed since it was rendered.
type Place struct {
	ID     string
	Name   string
	Coords Coordinates
	Date   PlaceDate
	Photo  string // PNG data URL, or "" when the place has no photo.
}

// HasPhoto reports whether the place carries a usable photo payload.
// "data:," is what an empty canvas encodes to and counts as no photo.
func (p Place) HasPhoto() bool {
	return p.Photo != "" && p.Photo != "data:,"
}
