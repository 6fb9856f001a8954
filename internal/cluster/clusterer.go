package cluster

import (
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// Clusterer runs DBSCAN with a fixed parameter set and logs a summary.
type Clusterer struct {
	params Params
}

// NewClusterer creates a Clusterer. Invalid params surface on Cluster.
func NewClusterer(params Params) *Clusterer {
	return &Clusterer{params: params}
}

// NewDefaultClusterer creates a Clusterer with DefaultParams.
func NewDefaultClusterer() *Clusterer {
	return NewClusterer(DefaultParams())
}

// Params returns the clustering parameters.
func (c *Clusterer) Params() Params {
	return c.params
}

// Cluster labels every point with a cluster ID or NoiseID.
func (c *Clusterer) Cluster(points []geo.Point) (*Result, error) {
	res, err := DBSCAN(points, c.params)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("cluster: dbscan complete",
		zap.Int("points", len(points)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("noise", res.NoiseCount()),
		zap.Float64("radius_km", c.params.RadiusKm),
		zap.Int("min_points", c.params.MinPoints),
	)
	return res, nil
}
