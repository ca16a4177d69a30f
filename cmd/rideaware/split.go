package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/corpus"
	"github.com/rideaware/rideaware/internal/dataset"
)

var (
	splitCorpus   string
	splitPool     string
	splitEval     string
	splitFraction float64
	splitSeed     uint64
	splitSample   bool
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Create the frozen evaluation set and the training pool",
	Long: `Split the labeled corpus into a stratified evaluation set and a training pool.

The evaluation set is created once. Running split again while it exists
fails, so accuracy numbers stay comparable across retraining.

With --sample the embedded sample corpus is written to the corpus path first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideString(cmd, "corpus", &cfg.Data.CorpusPath, splitCorpus)
		overrideString(cmd, "pool", &cfg.Data.PoolPath, splitPool)
		overrideString(cmd, "eval", &cfg.Data.EvalPath, splitEval)
		overrideFloat(cmd, "fraction", &cfg.Data.EvalFraction, splitFraction)
		if cmd.Flags().Changed("seed") {
			cfg.Data.Seed = splitSeed
		}

		if splitSample {
			if err := writeSample(cfg.Data.CorpusPath); err != nil {
				return err
			}
		}

		s := dataset.NewSplitter(cfg.Data.EvalFraction, cfg.Data.Seed)
		split, err := s.Init(cfg.Data.CorpusPath, cfg.Data.PoolPath, cfg.Data.EvalPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "evaluation set: %s (%d rows)\ntraining pool:  %s (%d rows)\n",
			cfg.Data.EvalPath, len(split.Evaluation), cfg.Data.PoolPath, len(split.Pool))
		return nil
	},
}

// writeSample writes the embedded corpus to path unless a file is already there.
func writeSample(path string) error {
	ok, err := dataset.Exists(path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("corpus already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return os.WriteFile(path, corpus.Bytes(), 0o644)
}

func init() {
	splitCmd.Flags().StringVar(&splitCorpus, "corpus", "", "Labeled corpus CSV (text,label)")
	splitCmd.Flags().StringVar(&splitPool, "pool", "", "Training pool output CSV")
	splitCmd.Flags().StringVar(&splitEval, "eval", "", "Evaluation set output CSV")
	splitCmd.Flags().Float64Var(&splitFraction, "fraction", 0, "Held-out fraction in (0, 1)")
	splitCmd.Flags().Uint64Var(&splitSeed, "seed", 0, "Random seed")
	splitCmd.Flags().BoolVar(&splitSample, "sample", false, "Write the embedded sample corpus first")
	rootCmd.AddCommand(splitCmd)
}
