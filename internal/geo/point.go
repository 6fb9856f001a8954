// Package geo provides the point type and great-circle primitives shared by
// the clustering, feature and rendering stages.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
// longitudes outside [-180, 180].
var ErrInvalidCoordinate = eris.New("geo: coordinate out of range")

// Point is a named location. Points are values and are never modified after
// they are loaded.
type Point struct {
	ID        int64   `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// LatLon is a bare coordinate pair in degrees.
type LatLon struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// LatLon returns the point's coordinates.
func (p Point) LatLon() LatLon {
	return LatLon{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Validate reports whether the point's coordinates are usable.
func (p Point) Validate() error {
	if !ValidCoordinate(p.Latitude, p.Longitude) {
		return eris.Wrapf(ErrInvalidCoordinate, "point %d (%q) at %g,%g", p.ID, p.Name, p.Latitude, p.Longitude)
	}
	return nil
}

// ValidCoordinate returns true when lat/lon are finite and in range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
