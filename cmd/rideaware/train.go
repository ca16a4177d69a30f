package main

import (
	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/engine/classifier/onnx"
	"github.com/rideaware/rideaware/internal/training"
)

var (
	trainFamilies []string
	trainVersion  string
	trainModelDir string
	trainWorkers  int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit, score and publish candidate model families",
	Long: `Fit every requested family on the training set, score it on the frozen
evaluation set when one exists, and publish one artifact per family.

A family that fails is reported and does not block the others.
A missing training set is fatal.`,
	Example: `  rideaware train
  rideaware train --family logreg --family naivebayes --version 1.1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("family") {
			cfg.Model.Families = trainFamilies
		}
		overrideString(cmd, "version", &cfg.Model.Version, trainVersion)
		overrideString(cmd, "model-dir", &cfg.Model.Dir, trainModelDir)
		overrideInt(cmd, "workers", &cfg.Model.Workers, trainWorkers)

		h := training.New(artifact.NewStore(cfg.Model.Dir), training.Config{
			TrainPath: cfg.Data.TrainPath,
			EvalPath:  cfg.Data.EvalPath,
			Families:  cfg.Model.Families,
			Version:   cfg.Model.Version,
			Extra:     classifierExtra(),
			Workers:   cfg.Model.Workers,
		})
		rep, err := h.Run(cmd.Context())
		if err != nil {
			return err
		}
		return training.WriteReport(cmd.OutOrStdout(), rep)
	},
}

// classifierExtra carries per-kind settings to classifier constructors.
func classifierExtra() map[string]string {
	return map[string]string{onnx.ExtraModelPath: cfg.Model.ONNXPath}
}

func init() {
	trainCmd.Flags().StringArrayVar(&trainFamilies, "family", nil, "Family to train (repeatable)")
	trainCmd.Flags().StringVar(&trainVersion, "version", "", "Model version recorded in metadata")
	trainCmd.Flags().StringVar(&trainModelDir, "model-dir", "", "Artifact directory")
	trainCmd.Flags().IntVar(&trainWorkers, "workers", 0, "Families fitted concurrently")
	rootCmd.AddCommand(trainCmd)
}
