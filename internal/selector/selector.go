// Package selector turns cluster profiles into a ranked set of recommended
// zones using a fixed sequence of progressively looser acceptance tiers.
package selector

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/features"
)

// DefaultMaxLatitude excludes zones at or north of this latitude. It is a
// hand-picked cutoff that removes St. Francisville and other rural zones north
// of Baton Rouge from the candidate set.
const DefaultMaxLatitude = 30.6

// Output size bounds. A tier is accepted only if it yields MinResults
// candidates; the final set never exceeds MaxResults.
const (
	MinResults = 5
	MaxResults = 10
)

// Decision names how the selection was produced.
type Decision string

// Decisions in evaluation order.
const (
	DecisionStrict   Decision = "strict"
	DecisionRelaxed  Decision = "relaxed"
	DecisionLoose    Decision = "loose"
	DecisionFallback Decision = "fallback"
	DecisionNone     Decision = "none"
)

// Tier is one acceptance rule.
type Tier struct {
	Name             Decision `json:"name" yaml:"name"`
	MinGymCount      int      `json:"min_gym_count" yaml:"min_gym_count"`
	MinDenseGymCount int      `json:"min_dense_gym_count" yaml:"min_dense_gym_count"`
	MaxSpreadKm      float64  `json:"max_spread_km" yaml:"max_spread_km"`
}

// Accepts reports whether a profile satisfies the tier.
func (t Tier) Accepts(p features.Profile) bool {
	return p.GymCount >= t.MinGymCount &&
		p.DenseGymCount >= t.MinDenseGymCount &&
		p.SpreadKm <= t.MaxSpreadKm
}

// Tiers returns the acceptance tiers, strictest first. The boundaries and
// order are fixed.
func Tiers() []Tier {
	return []Tier{
		{Name: DecisionStrict, MinGymCount: 6, MinDenseGymCount: 5, MaxSpreadKm: 4.5},
		{Name: DecisionRelaxed, MinGymCount: 5, MinDenseGymCount: 4, MaxSpreadKm: 6},
		{Name: DecisionLoose, MinGymCount: 4, MinDenseGymCount: 3, MaxSpreadKm: 7},
	}
}

// Options configures selection.
type Options struct {
	MaxLatitude float64
}

// DefaultOptions returns the production selector options.
func DefaultOptions() Options {
	return Options{MaxLatitude: DefaultMaxLatitude}
}

// Validate rejects a latitude cutoff that is not a real latitude.
func (o Options) Validate() error {
	if math.IsNaN(o.MaxLatitude) || o.MaxLatitude < -90 || o.MaxLatitude > 90 {
		return eris.Errorf("selector: max_latitude must be finite and within [-90, 90], got %g", o.MaxLatitude)
	}
	return nil
}

// Recommendation is a ranked profile. Rank starts at 1.
type Recommendation struct {
	Rank    int              `json:"rank" yaml:"rank"`
	Profile features.Profile `json:"profile" yaml:"profile"`
}

// Selection is the final recommendation set and how it was reached.
type Selection struct {
	Decision        Decision         `json:"decision" yaml:"decision"`
	Eligible        int              `json:"eligible" yaml:"eligible"`
	Excluded        int              `json:"excluded" yaml:"excluded"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
}

// Profiles returns the recommended profiles in rank order.
func (s Selection) Profiles() []features.Profile {
	out := make([]features.Profile, len(s.Recommendations))
	for i, r := range s.Recommendations {
		out[i] = r.Profile
	}
	return out
}

// Select picks and ranks recommended zones. An empty result is a valid
// outcome, not an error.
func Select(profiles []features.Profile, opts Options) Selection {
	eligible := exclude(profiles, opts.MaxLatitude)
	sel := Selection{
		Eligible: len(eligible),
		Excluded: len(profiles) - len(eligible),
	}
	log := zap.L().With(zap.String("component", "selector"))

	if len(eligible) == 0 {
		sel.Decision = DecisionNone
		sel.Recommendations = []Recommendation{}
		log.Info("no eligible zones", zap.Int("excluded", sel.Excluded))
		return sel
	}

	chosen, decision := applyTiers(eligible)
	sel.Decision = decision
	sel.Recommendations = finalize(chosen)

	log.Info("zones selected",
		zap.String("decision", string(decision)),
		zap.Int("eligible", sel.Eligible),
		zap.Int("excluded", sel.Excluded),
		zap.Int("selected", len(sel.Recommendations)),
	)
	return sel
}

// exclude drops profiles whose centroid is at or beyond the latitude cutoff.
func exclude(profiles []features.Profile, maxLatitude float64) []features.Profile {
	out := make([]features.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Centroid.Latitude < maxLatitude {
			out = append(out, p)
		}
	}
	return out
}

// applyTiers returns the first tier's candidates that reach MinResults, or
// the top MinResults by score when none does.
func applyTiers(eligible []features.Profile) ([]features.Profile, Decision) {
	for _, tier := range Tiers() {
		var accepted []features.Profile
		for _, p := range eligible {
			if tier.Accepts(p) {
				accepted = append(accepted, p)
			}
		}
		if len(accepted) >= MinResults {
			return accepted, tier.Name
		}
	}

	ranked := sortByScore(eligible)
	if len(ranked) > MinResults {
		ranked = ranked[:MinResults]
	}
	return ranked, DecisionFallback
}

// finalize sorts by score, truncates to MaxResults and assigns ranks.
func finalize(chosen []features.Profile) []Recommendation {
	ranked := sortByScore(chosen)
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}
	recs := make([]Recommendation, len(ranked))
	for i, p := range ranked {
		recs[i] = Recommendation{Rank: i + 1, Profile: p}
	}
	return recs
}

// sortByScore returns a copy ordered by score descending, ties broken by
// ascending cluster ID.
func sortByScore(profiles []features.Profile) []features.Profile {
	out := make([]features.Profile, len(profiles))
	copy(out, profiles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ClusterID < out[j].ClusterID
	})
	return out
}
