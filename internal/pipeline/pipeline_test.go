package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gymzone-cli/internal/cluster"
	"github.com/sells-group/gymzone-cli/internal/config"
	"github.com/sells-group/gymzone-cli/internal/geo"
	"github.com/sells-group/gymzone-cli/internal/selector"
)

// offsets place six gyms within about 600 m of a center.
var offsets = [][2]float64{
	{0, 0}, {0.005, 0}, {-0.005, 0}, {0, 0.005}, {0, -0.005}, {0.004, 0.004},
}

func compactCluster(firstID int64, lat, lon float64) []geo.Point {
	pts := make([]geo.Point, len(offsets))
	for i, o := range offsets {
		pts[i] = geo.Point{
			ID:        firstID + int64(i),
			Name:      "Gym",
			Latitude:  lat + o[0],
			Longitude: lon + o[1],
		}
	}
	return pts
}

// sixZones returns five eligible zones 22 km apart plus one north of the
// latitude cutoff.
func sixZones() []geo.Point {
	var gyms []geo.Point
	for i, lat := range []float64{29.6, 29.8, 30.0, 30.2, 30.4, 30.8} {
		gyms = append(gyms, compactCluster(int64(i*10+1), lat, -91.1)...)
	}
	return gyms
}

func TestRun_SingleCompactClusterAndNoise(t *testing.T) {
	gyms := compactCluster(1, 30.40, -91.10)
	gyms = append(gyms, geo.Point{ID: 99, Name: "Lonely Gym", Latitude: 30.40, Longitude: -90.85})

	res, err := Run(context.Background(), gyms, nil, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	assert.Equal(t, 1, res.NoiseCount())
	assert.Equal(t, cluster.NoiseID, res.Assignments[6].ClusterID)

	require.Len(t, res.Profiles, 1)
	p := res.Profiles[0]
	assert.Equal(t, 6, p.GymCount)
	assert.Equal(t, 0, p.NearbyStoreCount)
	assert.InDelta(t, 18-p.SpreadKm, p.Score, 1e-9)
	assert.LessOrEqual(t, p.SpreadKm, 4.5)

	// One strict-quality zone is not enough for a tier, so the fallback
	// returns it alone.
	assert.Equal(t, selector.DecisionFallback, res.Selection.Decision)
	require.Len(t, res.Selection.Recommendations, 1)
	assert.Equal(t, 0, res.Selection.Recommendations[0].Profile.ClusterID)
}

func TestRun_StrictTierAndExclusion(t *testing.T) {
	gyms := sixZones()
	stores := []geo.Point{
		{ID: 501, Name: "GNC", Latitude: 29.601, Longitude: -91.101},
		{ID: 502, Name: "Vitamin Shoppe", Latitude: 29.599, Longitude: -91.099},
	}

	res, err := Run(context.Background(), gyms, stores, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, res.Clusters, 6)
	assert.Zero(t, res.NoiseCount())
	assert.Equal(t, 36, res.GymCount)
	assert.Equal(t, 2, res.StoreCount)

	sel := res.Selection
	assert.Equal(t, selector.DecisionStrict, sel.Decision)
	assert.Equal(t, 5, sel.Eligible)
	assert.Equal(t, 1, sel.Excluded)
	require.Len(t, sel.Recommendations, 5)

	for i, r := range sel.Recommendations {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEqual(t, 5, r.Profile.ClusterID, "zone north of the cutoff recommended")
	}
	// Store competition drops the southern zone to last place.
	last := sel.Recommendations[4].Profile
	assert.Equal(t, 0, last.ClusterID)
	assert.Equal(t, 2, last.NearbyStoreCount)
}

func TestRun_EmptyGyms(t *testing.T) {
	res, err := Run(context.Background(), nil, []geo.Point{{ID: 1, Latitude: 30, Longitude: -91}}, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Profiles)
	assert.Equal(t, selector.DecisionNone, res.Selection.Decision)
	assert.Empty(t, res.Selection.Recommendations)
}

func TestRun_RecordsPhasesAndRunID(t *testing.T) {
	p, err := New(DefaultOptions())
	require.NoError(t, err)

	first, err := p.Run(context.Background(), sixZones(), nil)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), sixZones(), nil)
	require.NoError(t, err)

	_, err = uuid.Parse(first.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	require.Len(t, first.Phases, 3)
	assert.Equal(t, PhaseCluster, first.Phases[0].Name)
	assert.Equal(t, PhaseFeatures, first.Phases[1].Name)
	assert.Equal(t, PhaseSelect, first.Phases[2].Name)
	for _, ph := range first.Phases {
		assert.Equal(t, PhaseStatusComplete, ph.Status)
		assert.Empty(t, ph.Error)
	}

	// Apart from the run ID, repeated runs agree.
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Profiles, second.Profiles)
	assert.Equal(t, first.Selection, second.Selection)
}

func TestRun_DoesNotMutateInputs(t *testing.T) {
	gyms := sixZones()
	before := append([]geo.Point(nil), gyms...)

	_, err := Run(context.Background(), gyms, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, gyms)
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Cluster.MinPoints = 0
	_, err := Run(context.Background(), sixZones(), nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_points")

	opts = DefaultOptions()
	opts.Features.Workers = 0
	_, err = New(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")

	opts = DefaultOptions()
	opts.Selector.MaxLatitude = math.NaN()
	_, err = New(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_latitude")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sixZones(), nil, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cluster.RadiusKm = 2.5
	cfg.Cluster.MinPoints = 4
	cfg.Features.StoreRadiusKm = 1.5
	cfg.Features.DenseRadiusKm = 2
	cfg.Features.Workers = 2
	cfg.Selector.MaxLatitude = 31

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cluster.Params{RadiusKm: 2.5, MinPoints: 4}, opts.Cluster)
	assert.InDelta(t, 1.5, opts.Features.StoreRadiusKm, 1e-9)
	assert.InDelta(t, 2, opts.Features.DenseRadiusKm, 1e-9)
	assert.Equal(t, 2, opts.Features.Workers)
	assert.InDelta(t, 31, opts.Selector.MaxLatitude, 1e-9)
	assert.NoError(t, opts.Validate())
}
