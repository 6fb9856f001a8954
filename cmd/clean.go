package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/loader"
)

// Default clean output file per point kind.
var cleanDefaults = map[string]string{
	"gym":   "clean_gym_locations.csv",
	"store": "clean_supplement_store_locations.csv",
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Convert an Overpass export into a clean point CSV",
	Long: `Reads an Overpass API JSON export (or an existing CSV), drops unnamed places,
records without coordinates and out-of-range coordinates, and writes the
clean ID,Name,Latitude,Longitude CSV used by recommend and render.

Examples:
  # Clean a gym export
  gymzone clean --kind gym --in gym.json

  # Clean a store export to a custom path
  gymzone clean --kind store --in "supplement store.json" --out stores.csv`,
	RunE: runClean,
}

func init() {
	f := cleanCmd.Flags()
	f.String("kind", "gym", "point kind: gym or store")
	f.String("in", "", "input file (.json Overpass export or .csv)")
	f.String("out", "", "output CSV path (default depends on --kind)")
	_ = cleanCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	def, ok := cleanDefaults[kind]
	if !ok {
		return eris.Errorf("clean: --kind must be gym or store (got %q)", kind)
	}
	if out == "" {
		out = def
	}

	points, stats, err := loader.LoadFile(in)
	if err != nil {
		return err
	}

	if err := writeOutput("clean", out, func(w io.Writer) error {
		return loader.WriteCSV(w, points)
	}); err != nil {
		return err
	}

	zap.L().Info("clean: wrote points",
		zap.String("kind", kind),
		zap.String("out", out),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Read %d %s records, kept %d, dropped %d (%d unnamed, %d without coordinates, %d out of range) -> %s\n",
		stats.Read, kind, stats.Kept, stats.Dropped(),
		stats.MissingName, stats.MissingCoords, stats.OutOfRange, out)
	return nil
}
