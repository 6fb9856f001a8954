package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// Feature kinds in the GeoJSON output.
const (
	KindGym   = "gym"
	KindStore = "store"
	KindZone  = "zone"
)

// GeoJSON writes gyms, stores and recommended zone centroids as one
// FeatureCollection. Gyms carry their cluster ID (-1 for noise); zones carry
// their rank and statistics.
func GeoJSON(w io.Writer, data Data) error {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(data.Assignments)+len(data.Stores)+len(data.Selection.Recommendations)),
	}

	for _, a := range data.Assignments {
		f := pointFeature(KindGym, a.Point)
		f.Properties["cluster_id"] = a.ClusterID
		fc.Features = append(fc.Features, f)
	}
	for _, s := range data.Stores {
		fc.Features = append(fc.Features, pointFeature(KindStore, s))
	}
	for _, r := range data.Selection.Recommendations {
		p := r.Profile
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("%s-%d", KindZone, p.ClusterID),
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Centroid.Longitude, p.Centroid.Latitude}),
			Properties: map[string]interface{}{
				"kind":               KindZone,
				"rank":               r.Rank,
				"cluster_id":         p.ClusterID,
				"gym_count":          p.GymCount,
				"dense_gym_count":    p.DenseGymCount,
				"nearby_store_count": p.NearbyStoreCount,
				"spread_km":          p.SpreadKm,
				"score":              p.Score,
			},
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&fc); err != nil {
		return eris.Wrap(err, "render: encode GeoJSON")
	}
	return nil
}

func pointFeature(kind string, p geo.Point) *geojson.Feature {
	return &geojson.Feature{
		ID:       fmt.Sprintf("%s-%d", kind, p.ID),
		Geometry: geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}),
		Properties: map[string]interface{}{
			"kind": kind,
			"name": p.Name,
		},
	}
}
