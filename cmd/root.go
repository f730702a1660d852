package cmd

import (
	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/combokit/combotracker/internal/config"
	"github.com/combokit/combotracker/internal/logging"
)

var (
	cfgFile string
	dbFile  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "combotracker",
	Short: "Twitch chat combo tracker with an OBS-ready overlay",
	Long: `Combotracker watches a Twitch chat for repeated words and emotes,
tracks the resulting combos, and renders them into an overlay that OBS
can load as a browser source. Emote images are pulled from Twitch,
BetterTTV, FrankerFaceZ and 7TV.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".combotracker.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "combotracker.db", "stats database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// buildLogger constructs the application logger from config, with the
// --verbose flag forcing debug level.
func buildLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	opts := logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
	}
	if verbose {
		opts.Level = "debug"
	}
	return logging.New(opts)
}
