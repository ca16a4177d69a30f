package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/dataset"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Write the training set from the training pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		train, err := dataset.Materializer{}.Run(cfg.Data.PoolPath, cfg.Data.TrainPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "training set: %s (%d rows)\n", cfg.Data.TrainPath, len(train))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(materializeCmd)
}
