package model

import "strings"

// Category identifies which of the two place lists a record belongs to.
type Category string

const (
	CategoryVisited  Category = "visited"
	CategoryWishlist Category = "wishlist"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryVisited, CategoryWishlist}

// ParseCategory maps a raw form or path value to a Category. The second
// return value is false for blank or unrecognized input.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryVisited:
		return CategoryVisited, true
	case CategoryWishlist:
		return CategoryWishlist, true
	default:
		return "", false
	}
}

// Title returns the sidebar heading for the category.
func (c Category) Title() string {
	switch c {
	case CategoryVisited:
		return "Places You've Been"
	case CategoryWishlist:
		return "Places You Want to Go"
	default:
		return ""
	}
}
