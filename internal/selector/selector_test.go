package selector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gymzone-cli/internal/features"
	"github.com/sells-group/gymzone-cli/internal/geo"
)

// profile builds an eligible profile south of the cutoff with a score
// derived from its stats.
func profile(id, gyms, dense int, spread float64) features.Profile {
	return features.Profile{
		ClusterID:     id,
		Centroid:      geo.LatLon{Latitude: 30.40, Longitude: -91.10},
		GymCount:      gyms,
		DenseGymCount: dense,
		SpreadKm:      spread,
		Score:         features.Score(gyms, 0, spread),
	}
}

func ids(sel Selection) []int {
	out := make([]int, len(sel.Recommendations))
	for i, r := range sel.Recommendations {
		out[i] = r.Profile.ClusterID
	}
	return out
}

func assertRanked(t *testing.T, sel Selection) {
	t.Helper()
	for i, r := range sel.Recommendations {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			prev := sel.Recommendations[i-1].Profile
			assert.True(t, prev.Score > r.Profile.Score ||
				(prev.Score == r.Profile.Score && prev.ClusterID < r.Profile.ClusterID),
				"rank %d out of order", r.Rank)
		}
	}
}

func TestTierAccepts(t *testing.T) {
	tiers := Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, DecisionStrict, tiers[0].Name)
	assert.Equal(t, DecisionRelaxed, tiers[1].Name)
	assert.Equal(t, DecisionLoose, tiers[2].Name)

	tests := []struct {
		name    string
		p       features.Profile
		strict  bool
		relaxed bool
		loose   bool
	}{
		{"strict boundary", profile(0, 6, 5, 4.5), true, true, true},
		{"spread just over strict", profile(0, 6, 5, 4.51), false, true, true},
		{"relaxed boundary", profile(0, 5, 4, 6), false, true, true},
		{"loose boundary", profile(0, 4, 3, 7), false, false, true},
		{"too sparse", profile(0, 3, 3, 1), false, false, false},
		{"too spread", profile(0, 10, 10, 7.1), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, tiers[0].Accepts(tt.p))
			assert.Equal(t, tt.relaxed, tiers[1].Accepts(tt.p))
			assert.Equal(t, tt.loose, tiers[2].Accepts(tt.p))
		})
	}
}

func TestSelect_StrictTierWins(t *testing.T) {
	var profiles []features.Profile
	for i := 0; i < 5; i++ {
		profiles = append(profiles, profile(i, 6+i, 5, 2))
	}
	// Relaxed-only zones with higher scores must not leak in.
	profiles = append(profiles, profile(10, 20, 4, 5.5), profile(11, 20, 4, 5.5))

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionStrict, sel.Decision)
	assert.Equal(t, []int{4, 3, 2, 1, 0}, ids(sel))
	assertRanked(t, sel)
}

func TestSelect_RelaxedTier(t *testing.T) {
	var profiles []features.Profile
	for i := 0; i < 4; i++ {
		profiles = append(profiles, profile(i, 6, 5, 3)) // strict
	}
	profiles = append(profiles, profile(4, 5, 4, 5.5)) // relaxed only
	profiles = append(profiles, profile(5, 4, 3, 6.5)) // loose only

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionRelaxed, sel.Decision)
	assert.Len(t, sel.Recommendations, 5)
	assert.NotContains(t, ids(sel), 5)
	assertRanked(t, sel)
}

func TestSelect_LooseTier(t *testing.T) {
	var profiles []features.Profile
	for i := 0; i < 6; i++ {
		profiles = append(profiles, profile(i, 4, 3, 6.5))
	}
	profiles = append(profiles, profile(6, 3, 3, 1)) // fails every tier

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionLoose, sel.Decision)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, ids(sel))
}

func TestSelect_FallbackFourLooseOnly(t *testing.T) {
	profiles := []features.Profile{
		profile(0, 4, 3, 6.9),
		profile(1, 4, 3, 5.0),
		profile(2, 4, 3, 6.0),
		profile(3, 4, 3, 4.0),
	}

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionFallback, sel.Decision)
	assert.Equal(t, []int{3, 1, 2, 0}, ids(sel))
	assertRanked(t, sel)
}

func TestSelect_FallbackTopFive(t *testing.T) {
	var profiles []features.Profile
	for i := 0; i < 8; i++ {
		profiles = append(profiles, profile(i, 3, 1, float64(i)))
	}

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionFallback, sel.Decision)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids(sel))
}

func TestSelect_TruncatesToTen(t *testing.T) {
	var profiles []features.Profile
	for i := 0; i < 14; i++ {
		profiles = append(profiles, profile(i, 6+i, 6, 1))
	}

	sel := Select(profiles, DefaultOptions())

	assert.Equal(t, DecisionStrict, sel.Decision)
	require.Len(t, sel.Recommendations, MaxResults)
	assert.Equal(t, 13, sel.Recommendations[0].Profile.ClusterID)
	assert.Equal(t, 10, sel.Recommendations[9].Rank)
	assertRanked(t, sel)
}

func TestSelect_TiesBrokenByClusterID(t *testing.T) {
	var profiles []features.Profile
	for _, id := range []int{7, 2, 9, 4, 1} {
		profiles = append(profiles, profile(id, 6, 6, 2))
	}

	sel := Select(profiles, DefaultOptions())
	assert.Equal(t, []int{1, 2, 4, 7, 9}, ids(sel))
}

func TestSelect_LatitudeCutoff(t *testing.T) {
	north := profile(0, 10, 10, 1)
	north.Centroid.Latitude = 30.6 // at the cutoff is excluded
	farNorth := profile(1, 10, 10, 1)
	farNorth.Centroid.Latitude = 30.9
	south := profile(2, 4, 3, 1)
	south.Centroid.Latitude = 30.59

	sel := Select([]features.Profile{north, farNorth, south}, DefaultOptions())

	assert.Equal(t, 1, sel.Eligible)
	assert.Equal(t, 2, sel.Excluded)
	assert.Equal(t, []int{2}, ids(sel))
	assert.Equal(t, DecisionFallback, sel.Decision)
}

func TestSelect_CustomCutoff(t *testing.T) {
	p := profile(0, 6, 6, 1)
	p.Centroid.Latitude = 30.9

	sel := Select([]features.Profile{p}, Options{MaxLatitude: 31})
	assert.Equal(t, []int{0}, ids(sel))
}

func TestSelect_AllExcluded(t *testing.T) {
	p := profile(0, 10, 10, 1)
	p.Centroid.Latitude = 31.0

	sel := Select([]features.Profile{p, p}, DefaultOptions())

	assert.Equal(t, DecisionNone, sel.Decision)
	assert.Empty(t, sel.Recommendations)
	assert.NotNil(t, sel.Recommendations)
	assert.Equal(t, 2, sel.Excluded)
}

func TestSelect_Empty(t *testing.T) {
	sel := Select(nil, DefaultOptions())
	assert.Equal(t, DecisionNone, sel.Decision)
	assert.Empty(t, sel.Recommendations)
}

func TestSelect_NeverFewerThanFiveWhenEligible(t *testing.T) {
	for n := 5; n <= 15; n++ {
		var profiles []features.Profile
		for i := 0; i < n; i++ {
			// Alternate between tier-qualifying and non-qualifying shapes.
			if i%3 == 0 {
				profiles = append(profiles, profile(i, 6, 5, 2))
			} else {
				profiles = append(profiles, profile(i, 2, 1, 9))
			}
		}
		sel := Select(profiles, DefaultOptions())
		assert.GreaterOrEqual(t, len(sel.Recommendations), MinResults, "n=%d", n)
		assert.LessOrEqual(t, len(sel.Recommendations), MaxResults, "n=%d", n)
	}
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	profiles := []features.Profile{
		profile(0, 4, 3, 6), profile(1, 9, 9, 1), profile(2, 5, 4, 2),
	}
	before := append([]features.Profile(nil), profiles...)

	Select(profiles, DefaultOptions())
	assert.Equal(t, before, profiles)
}

func TestSelectionProfiles(t *testing.T) {
	sel := Select([]features.Profile{profile(0, 6, 6, 1), profile(1, 7, 6, 1)}, DefaultOptions())
	got := sel.Profiles()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ClusterID)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.NoError(t, Options{MaxLatitude: -90}.Validate())
	assert.NoError(t, Options{MaxLatitude: 90}.Validate())

	for _, lat := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 91, -90.5} {
		err := Options{MaxLatitude: lat}.Validate()
		require.Error(t, err, "lat=%g", lat)
		assert.Contains(t, err.Error(), "max_latitude")
	}
}
