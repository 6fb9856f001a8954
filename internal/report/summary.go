package report

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/gymzone-cli/internal/pipeline"
)

// Summary prints run counts, the selection decision and the score range of
// the recommended zones.
func Summary(w io.Writer, res *pipeline.Result) error {
	sel := res.Selection
	lines := []string{
		"\n--- Summary ---\n",
		fmt.Sprintf("Run:           %s\n", res.RunID),
		fmt.Sprintf("Gyms:          %d (%d clustered, %d noise)\n",
			res.GymCount, res.GymCount-res.NoiseCount(), res.NoiseCount()),
		fmt.Sprintf("Stores:        %d\n", res.StoreCount),
		fmt.Sprintf("Clusters:      %d (%d eligible, %d excluded)\n",
			len(res.Clusters), sel.Eligible, sel.Excluded),
		fmt.Sprintf("Decision:      %s\n", sel.Decision),
		fmt.Sprintf("Recommended:   %d\n", len(sel.Recommendations)),
	}

	if len(sel.Recommendations) > 0 {
		scores := make([]float64, len(sel.Recommendations))
		for i, r := range sel.Recommendations {
			scores[i] = r.Profile.Score
		}
		lines = append(lines,
			fmt.Sprintf("Score range:   %.2f - %.2f\n", floats.Min(scores), floats.Max(scores)),
			fmt.Sprintf("Average score: %.2f\n", stat.Mean(scores, nil)),
		)
	}

	for _, l := range lines {
		if _, err := fmt.Fprint(w, l); err != nil {
			return eris.Wrap(err, "report: write summary")
		}
	}
	return nil
}
