package main

import (
	"context"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gymzone-cli/internal/config"
	"github.com/sells-group/gymzone-cli/internal/geo"
	"github.com/sells-group/gymzone-cli/internal/loader"
	"github.com/sells-group/gymzone-cli/internal/pipeline"
	"github.com/sells-group/gymzone-cli/internal/render"
	"github.com/sells-group/gymzone-cli/internal/report"
)

const (
	formatXLSX    = "xlsx"
	formatGeoJSON = "geojson"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank recommended zones from clean gym and store files",
	Long: `Clusters gyms, profiles each cluster and prints the ranked recommendation set.

Examples:
  # Table output with config defaults
  gymzone recommend

  # Explicit inputs, CSV export
  gymzone recommend --gyms clean_gym_locations.csv --stores clean_supplement_store_locations.csv --format csv --output zones.csv

  # Tighter clusters, Excel workbook
  gymzone recommend --radius-km 3 --min-points 4 --format xlsx --output zones.xlsx`,
	RunE: runRecommend,
}

func init() {
	addRunFlags(recommendCmd)
	f := recommendCmd.Flags()
	f.String("format", "", "output format: table, csv, json, yaml, xlsx or geojson (overrides config)")
	f.String("output", "", "output file path (default: stdout; xlsx defaults to <output.dir>/recommendations.xlsx)")
	f.Bool("summary", true, "print a run summary")

	rootCmd.AddCommand(recommendCmd)
}

// addRunFlags registers the input and tuning flags shared by recommend and
// render.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("gyms", "", "gym locations file (overrides config)")
	f.String("stores", "", "store locations file (overrides config)")
	f.Float64("radius-km", 0, "cluster radius in km (overrides config)")
	f.Int("min-points", 0, "minimum gyms per core point (overrides config)")
	f.Int("workers", 0, "feature extraction workers (overrides config)")
	f.Float64("max-latitude", 0, "exclude zones at or north of this latitude (overrides config)")
}

func applyRunOverrides(cmd *cobra.Command, base config.Config) config.Config {
	c := base

	if v, _ := cmd.Flags().GetString("gyms"); v != "" {
		c.Input.GymsPath = v
	}
	if v, _ := cmd.Flags().GetString("stores"); v != "" {
		c.Input.StoresPath = v
	}
	if v, _ := cmd.Flags().GetFloat64("radius-km"); v > 0 {
		c.Cluster.RadiusKm = v
	}
	if v, _ := cmd.Flags().GetInt("min-points"); v > 0 {
		c.Cluster.MinPoints = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		c.Features.Workers = v
	}
	if cmd.Flags().Changed("max-latitude") {
		c.Selector.MaxLatitude, _ = cmd.Flags().GetFloat64("max-latitude")
	}
	if f := cmd.Flags().Lookup("format"); f != nil {
		if v := f.Value.String(); v != "" {
			c.Output.Format = v
		}
	}
	if f := cmd.Flags().Lookup("out-dir"); f != nil {
		if v := f.Value.String(); v != "" {
			c.Output.Dir = v
		}
	}

	return c
}

// runPipeline loads both point sets and runs a recommendation pass.
func runPipeline(ctx context.Context, c config.Config) (*pipeline.Result, []geo.Point, error) {
	gyms, _, err := loader.LoadFile(c.Input.GymsPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load gyms")
	}
	stores, _, err := loader.LoadFile(c.Input.StoresPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load stores")
	}

	res, err := pipeline.Run(ctx, gyms, stores, pipeline.OptionsFromConfig(&c))
	if err != nil {
		return nil, nil, err
	}
	return res, stores, nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := applyRunOverrides(cmd, *cfg)
	if err := c.Validate(); err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	summary, _ := cmd.Flags().GetBool("summary")

	res, stores, err := runPipeline(ctx, c)
	if err != nil {
		return eris.Wrap(err, "recommend")
	}

	if c.Output.Format == formatXLSX {
		if outputPath == "" {
			outputPath = filepath.Join(c.Output.Dir, "recommendations.xlsx")
		}
		if err := report.WriteXLSX(outputPath, res.Selection); err != nil {
			return err
		}
	} else if err := writeRecommendations(cmd.OutOrStdout(), outputPath, c.Output.Format, res, stores); err != nil {
		return err
	}

	if summary {
		w := cmd.ErrOrStderr()
		if c.Output.Format == report.FormatTable && outputPath == "" {
			w = cmd.OutOrStdout()
		}
		return report.Summary(w, res)
	}
	return nil
}

func writeRecommendations(stdout io.Writer, outputPath, format string, res *pipeline.Result, stores []geo.Point) error {
	emit := func(w io.Writer) error {
		if format == formatGeoJSON {
			return render.GeoJSON(w, render.FromResult(res, stores))
		}
		return report.Write(w, format, res.Selection)
	}
	if outputPath == "" {
		return emit(stdout)
	}
	return writeOutput("recommend", outputPath, emit)
}
