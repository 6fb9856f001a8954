package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gymzone",
	Short: "Recommend gym-dense, store-poor zones",
	Long: `gymzone finds neighbourhoods with many gyms and few supplement stores.

Typical flow:
  gymzone clean --kind gym --in gym.json
  gymzone clean --kind store --in "supplement store.json"
  gymzone recommend --summary
  gymzone render --out-dir maps

Settings come from gymzone.yaml in the working directory, overridden by
GYMZONE_* environment variables and then by command flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
}

// setup loads configuration and installs the global logger before any
// subcommand runs.
func setup(*cobra.Command, []string) error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "gymzone: read settings")
	}
	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrap(err, "gymzone: start logging")
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
