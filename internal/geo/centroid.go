package geo

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// ErrNoPoints is returned when an aggregate is requested over zero points.
var ErrNoPoints = eris.New("geo: no points")

// Centroid returns the arithmetic mean of the points' latitudes and
// longitudes. This is not a geodesic centroid; it is accurate enough at city
// scale and does not handle sets that straddle the antimeridian.
func Centroid(points []Point) (LatLon, error) {
	if len(points) == 0 {
		return LatLon{}, ErrNoPoints
	}
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Latitude
		lons[i] = p.Longitude
	}
	return LatLon{
		Latitude:  stat.Mean(lats, nil),
		Longitude: stat.Mean(lons, nil),
	}, nil
}
