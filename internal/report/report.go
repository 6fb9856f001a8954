// Package report writes ranked zone recommendations as tables, CSV, JSON,
// YAML and Excel workbooks.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/gymzone-cli/internal/selector"
)

// Output formats handled by Write.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var csvHeader = []string{
	"rank", "cluster_id", "latitude", "longitude",
	"gym_count", "dense_gym_count", "nearby_store_count", "spread_km", "score",
}

// Write renders a selection to w in the given text format.
func Write(w io.Writer, format string, sel selector.Selection) error {
	switch format {
	case FormatTable:
		return writeTable(w, sel)
	case FormatCSV:
		return writeCSV(w, sel)
	case FormatJSON:
		return writeJSON(w, sel)
	case FormatYAML:
		return writeYAML(w, sel)
	default:
		return eris.Errorf("report: unsupported format %q", format)
	}
}

func writeTable(w io.Writer, sel selector.Selection) error {
	header := fmt.Sprintf("%-4s %-7s %10s %11s %5s %5s %6s %9s %8s\n",
		"Rank", "Cluster", "Latitude", "Longitude", "Gyms", "Dense", "Stores", "Spread", "Score")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "report: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 73)); err != nil {
		return eris.Wrap(err, "report: write table separator")
	}

	for _, r := range sel.Recommendations {
		p := r.Profile
		line := fmt.Sprintf("%-4d %-7d %10.5f %11.5f %5d %5d %6d %7.2fkm %8.2f\n",
			r.Rank, p.ClusterID, p.Centroid.Latitude, p.Centroid.Longitude,
			p.GymCount, p.DenseGymCount, p.NearbyStoreCount, p.SpreadKm, p.Score)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "report: write table row")
		}
	}

	if len(sel.Recommendations) == 0 {
		if _, err := fmt.Fprintln(w, "No recommended zones."); err != nil {
			return eris.Wrap(err, "report: write table footer")
		}
	}
	return nil
}

func writeCSV(w io.Writer, sel selector.Selection) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "report: write CSV header")
	}

	for _, r := range sel.Recommendations {
		p := r.Profile
		row := []string{
			fmt.Sprintf("%d", r.Rank),
			fmt.Sprintf("%d", p.ClusterID),
			fmt.Sprintf("%.6f", p.Centroid.Latitude),
			fmt.Sprintf("%.6f", p.Centroid.Longitude),
			fmt.Sprintf("%d", p.GymCount),
			fmt.Sprintf("%d", p.DenseGymCount),
			fmt.Sprintf("%d", p.NearbyStoreCount),
			fmt.Sprintf("%.3f", p.SpreadKm),
			fmt.Sprintf("%.3f", p.Score),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush CSV")
}

func writeJSON(w io.Writer, sel selector.Selection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sel); err != nil {
		return eris.Wrap(err, "report: encode JSON")
	}
	return nil
}

func writeYAML(w io.Writer, sel selector.Selection) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sel); err != nil {
		return eris.Wrap(err, "report: encode YAML")
	}
	return eris.Wrap(enc.Close(), "report: close YAML encoder")
}
