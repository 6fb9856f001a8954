// Package features derives the per-cluster statistics used to rank candidate
// zones: centroid, size, spread, and proximity counts against stores.
package features

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/gymzone-cli/internal/cluster"
	"github.com/sells-group/gymzone-cli/internal/geo"
)

// Proximity radii (kilometers). The dense radius is separate
// from the clustering radius: it measures how tightly gyms sit around the
// centroid, not whether they are connected.
const (
	DefaultStoreRadiusKm = 3.0
	DefaultDenseRadiusKm = 3.0
	DefaultWorkers       = 4
)

// Score weights.
const (
	GymWeight    = 3.0
	StoreWeight  = 2.0
	SpreadWeight = 1.0
)

// ErrInvariant marks a cluster that could not have come out of the clusterer.
var ErrInvariant = eris.New("features: invariant violated")

// Options configures extraction.
type Options struct {
	StoreRadiusKm float64
	DenseRadiusKm float64
	Workers       int
}

// DefaultOptions returns the production extraction options.
func DefaultOptions() Options {
	return Options{
		StoreRadiusKm: DefaultStoreRadiusKm,
		DenseRadiusKm: DefaultDenseRadiusKm,
		Workers:       DefaultWorkers,
	}
}

// Validate checks option bounds.
func (o Options) Validate() error {
	if o.StoreRadiusKm <= 0 {
		return eris.Errorf("features: store_radius_km must be > 0, got %g", o.StoreRadiusKm)
	}
	if o.DenseRadiusKm <= 0 {
		return eris.Errorf("features: dense_radius_km must be > 0, got %g", o.DenseRadiusKm)
	}
	if o.Workers < 1 {
		return eris.Errorf("features: workers must be >= 1, got %d", o.Workers)
	}
	return nil
}

// Profile summarises one cluster.
type Profile struct {
	ClusterID        int        `json:"cluster_id" yaml:"cluster_id"`
	Centroid         geo.LatLon `json:"centroid" yaml:"centroid"`
	GymCount         int        `json:"gym_count" yaml:"gym_count"`
	DenseGymCount    int        `json:"dense_gym_count" yaml:"dense_gym_count"`
	NearbyStoreCount int        `json:"nearby_store_count" yaml:"nearby_store_count"`
	SpreadKm         float64    `json:"spread_km" yaml:"spread_km"`
	Score            float64    `json:"score" yaml:"score"`
}

// Score rewards gym concentration and penalises store competition and
// geographic sprawl.
func Score(gymCount, nearbyStoreCount int, spreadKm float64) float64 {
	return float64(gymCount)*GymWeight - float64(nearbyStoreCount)*StoreWeight - spreadKm*SpreadWeight
}

// Compute builds the profile for a single cluster.
func Compute(c cluster.Cluster, stores []geo.Point, opts Options) (Profile, error) {
	centroid, err := geo.Centroid(c.Members)
	if err != nil {
		return Profile{}, eris.Wrapf(ErrInvariant, "cluster %d has no members", c.ID)
	}

	p := Profile{
		ClusterID: c.ID,
		Centroid:  centroid,
		GymCount:  len(c.Members),
	}

	for _, m := range c.Members {
		d := geo.DistanceKm(centroid, m.LatLon())
		if d > p.SpreadKm {
			p.SpreadKm = d
		}
		if d <= opts.DenseRadiusKm {
			p.DenseGymCount++
		}
	}

	for _, s := range stores {
		if geo.DistanceKm(centroid, s.LatLon()) <= opts.StoreRadiusKm {
			p.NearbyStoreCount++
		}
	}

	p.Score = Score(p.GymCount, p.NearbyStoreCount, p.SpreadKm)
	return p, nil
}

// Extract computes one profile per cluster, in ascending ClusterID order.
// Clusters are processed concurrently, bounded by opts.Workers.
func Extract(ctx context.Context, clusters []cluster.Cluster, stores []geo.Point, opts Options) ([]Profile, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	profiles := make([]Profile, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, c := range clusters {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			p, err := Compute(c, stores, opts)
			if err != nil {
				return err
			}
			profiles[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "features: extract")
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].ClusterID < profiles[j].ClusterID
	})
	for i := 1; i < len(profiles); i++ {
		if profiles[i].ClusterID == profiles[i-1].ClusterID {
			return nil, eris.Wrapf(ErrInvariant, "duplicate cluster id %d", profiles[i].ClusterID)
		}
	}

	zap.L().Debug("features: extracted profiles",
		zap.Int("clusters", len(profiles)),
		zap.Int("stores", len(stores)),
	)

	return profiles, nil
}
