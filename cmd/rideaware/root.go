package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/config"
	"github.com/rideaware/rideaware/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is resolved in PersistentPreRunE before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rideaware",
	Short: "Hazard report classification for cycling infrastructure",
	Long: `rideaware assigns each free-text hazard report one of five categories
with a confidence, using a trained model and a keyword fallback.

Data:
  split        Create the frozen evaluation set and the training pool
  pool add     Append labeled examples to the training pool
  materialize  Write the training set from the pool

Models:
  train        Fit, score and publish candidate model families
  evaluate     Compare the baseline and published families

Serving:
  classify     Classify one report or a file of reports`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
		overrideString(cmd, "log-level", &cfg.Log.Level, logLevel)
		overrideString(cmd, "log-format", &cfg.Log.Format, logFormat)
		logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
		return nil
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $RIDEAWARE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// overrideString replaces *dst with v when the flag was set explicitly.
func overrideString(cmd *cobra.Command, name string, dst *string, v string) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

func overrideFloat(cmd *cobra.Command, name string, dst *float64, v float64) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int, v int) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}
