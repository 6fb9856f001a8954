package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for every great-circle distance.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers. s2.LatLng.Distance uses the haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// DistanceKm returns the great-circle distance between two coordinate pairs.
func DistanceKm(a, b LatLon) float64 {
	return HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// KmToLatDegrees converts a north-south distance to degrees of latitude.
func KmToLatDegrees(km float64) float64 {
	return km / EarthRadiusKm * 180 / math.Pi
}
