package model

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate bounds in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether both components are finite and within bounds.
func (c Coordinates) Valid() bool {
	return inRange(c.Lat, MinLatitude, MaxLatitude) && inRange(c.Lng, MinLongitude, MaxLongitude)
}

// IsValidCoordinate reports whether raw latitude and longitude strings parse as
// finite numbers inside [-90,90] and [-180,180]. Bounds are inclusive.
func IsValidCoordinate(lat, lng string) bool {
	_, ok := ParseCoordinates(lat, lng)
	return ok
}

// ParseCoordinates parses raw form values into Coordinates. The second return
// value is false when either value is not a finite in-range number.
func ParseCoordinates(lat, lng string) (Coordinates, bool) {
	latNum, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinates{}, false
	}
	lngNum, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Coordinates{}, false
	}

	c := Coordinates{Lat: latNum, Lng: lngNum}
	if !c.Valid() {
		return Coordinates{}, false
	}
	return c, true
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
}
