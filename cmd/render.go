package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gymzone-cli/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write an HTML map, a scatter plot and GeoJSON of the recommendation run",
	Long: `Runs a recommendation pass and writes three files to the output directory:
  gym_store_map.html   interactive map of clustered gyms, noise, stores and zones
  gyms_vs_stores.png   scatter plot of gyms against supplement stores
  zones.geojson        FeatureCollection of every point and recommended zone`,
	RunE: runRender,
}

func init() {
	addRunFlags(renderCmd)
	renderCmd.Flags().String("out-dir", "", "output directory (overrides config output.dir)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := applyRunOverrides(cmd, *cfg)
	if err := c.Validate(); err != nil {
		return err
	}

	res, stores, err := runPipeline(ctx, c)
	if err != nil {
		return eris.Wrap(err, "render")
	}

	paths, err := render.WriteAll(c.Output.Dir, render.FromResult(res, stores))
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
