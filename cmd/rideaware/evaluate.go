package main

import (
	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/training"
)

var (
	evalFamilies []string
	evalModelDir string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compare the baseline and published families on the evaluation set",
	Long: `Score the keyword baseline and each published family on the frozen
evaluation set and declare a winner per metric. Without --family every
family found in the artifact directory is scored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideString(cmd, "model-dir", &cfg.Model.Dir, evalModelDir)
		rep, err := training.Evaluate(cmd.Context(), artifact.NewStore(cfg.Model.Dir),
			cfg.Data.EvalPath, evalFamilies, cfg.Model.Workers)
		if err != nil {
			return err
		}
		return training.WriteReport(cmd.OutOrStdout(), rep)
	},
}

func init() {
	evaluateCmd.Flags().StringArrayVar(&evalFamilies, "family", nil, "Family to score (repeatable)")
	evaluateCmd.Flags().StringVar(&evalModelDir, "model-dir", "", "Artifact directory")
	rootCmd.AddCommand(evaluateCmd)
}
