package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/dataset"
	"github.com/rideaware/rideaware/internal/model"
)

var (
	poolFile  string
	poolText  string
	poolLabel string
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage the training pool",
}

var poolAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append labeled examples to the training pool",
	Long: `Append examples from a CSV file (--file) or a single example (--text, --label).

Examples whose text is already in the evaluation set are skipped.
The evaluation set itself is never modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		additions, err := poolAdditions()
		if err != nil {
			return err
		}
		res, err := dataset.AppendPool(cfg.Data.PoolPath, cfg.Data.EvalPath, additions)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d (in evaluation set), pool now %d rows\n",
			res.Added, res.Skipped, res.Total)
		return nil
	},
}

func poolAdditions() ([]model.LabeledExample, error) {
	switch {
	case poolFile != "" && poolText != "":
		return nil, errors.New("use either --file or --text, not both")
	case poolFile != "":
		return dataset.Load(poolFile)
	case poolText != "":
		if poolLabel == "" {
			return nil, errors.New("--label is required with --text")
		}
		return []model.LabeledExample{{Text: poolText, Label: model.Category(poolLabel)}}, nil
	default:
		return nil, errors.New("nothing to add: pass --file or --text")
	}
}

func init() {
	poolAddCmd.Flags().StringVar(&poolFile, "file", "", "CSV of examples (text,label)")
	poolAddCmd.Flags().StringVar(&poolText, "text", "", "Report text of a single example")
	poolAddCmd.Flags().StringVar(&poolLabel, "label", "", "Category of the single example")
	poolCmd.AddCommand(poolAddCmd)
	rootCmd.AddCommand(poolCmd)
}
