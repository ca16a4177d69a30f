package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/batch"
	"github.com/rideaware/rideaware/internal/engine"
	"github.com/rideaware/rideaware/internal/model"
	"github.com/rideaware/rideaware/internal/output"
	"github.com/rideaware/rideaware/internal/output/file"
	"github.com/rideaware/rideaware/internal/output/multi"
	"github.com/rideaware/rideaware/internal/output/stdout"
	"github.com/rideaware/rideaware/internal/output/webhook"
)

var (
	classifyFile      string
	classifyOut       string
	classifyWebhook   string
	classifyFamily    string
	classifyModelDir  string
	classifyVerbosity string
	classifyPretty    bool
	classifyQuiet     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify one report or a file of reports",
	Long: `Classify a report given as argument, or one report per line from --file
("-" reads stdin, blank lines are skipped). A report given as argument always
yields one result, even when blank. Results are written as NDJSON to stdout, to --out, and/or
posted to --webhook.

Classification never fails: without a usable model artifact the keyword
baseline answers.`,
	Example: `  rideaware classify "Glasscherben auf dem Radweg"
  rideaware classify --file reports.txt --out results.ndjson --quiet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (classifyFile != "") {
			return errors.New("pass either a report text or --file")
		}
		overrideString(cmd, "family", &cfg.Model.PrimaryFamily, classifyFamily)
		overrideString(cmd, "model-dir", &cfg.Model.Dir, classifyModelDir)
		overrideString(cmd, "verbosity", &cfg.Output.Verbosity, classifyVerbosity)
		overrideString(cmd, "webhook", &cfg.Output.WebhookURL, classifyWebhook)
		if cmd.Flags().Changed("pretty") {
			cfg.Output.Pretty = classifyPretty
		}

		verbosity, err := output.ParseVerbosity(cfg.Output.Verbosity)
		if err != nil {
			return err
		}
		out, err := buildOutput(cmd.OutOrStdout(), verbosity)
		if err != nil {
			return err
		}

		eng := engine.New(engine.StoreLoader(artifact.NewStore(cfg.Model.Dir), cfg.Model.PrimaryFamily))
		if len(args) == 1 {
			err := classifyOne(cmd.Context(), eng, out, args[0])
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			return err
		}

		r := batch.New(eng, out, batch.WithWorkers(cfg.Model.Workers))
		defer func() {
			if cerr := r.Close(); cerr != nil {
				slog.Error("closing output", "error", cerr)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, closeSrc, err := openSource(classifyFile)
		if err != nil {
			return err
		}
		defer closeSrc()

		stats, err := r.Run(ctx, src)
		if errors.Is(err, context.Canceled) {
			slog.Warn("classification interrupted", "classified", stats.Classified)
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("classification done", "classified", stats.Classified, "unique", stats.Unique, "blank", stats.Blank)
		return nil
	},
}

// buildOutput assembles the requested sinks. stdout is used unless --quiet
// is set, and at least one sink is required.
func buildOutput(w io.Writer, verbosity output.Verbosity) (output.Output, error) {
	var outs []output.Output
	if !classifyQuiet {
		outs = append(outs, stdout.NewWriter(w, verbosity, cfg.Output.Pretty))
	}
	if classifyOut != "" {
		f, err := file.New(classifyOut, verbosity)
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}
	if cfg.Output.WebhookURL != "" {
		outs = append(outs, webhook.New(cfg.Output.WebhookURL,
			webhook.WithVerbosity(verbosity),
			webhook.WithOnError(func(err error) { slog.Error("webhook delivery failed", "error", err) }),
		))
	}

	switch len(outs) {
	case 0:
		return nil, errors.New("no output: --quiet needs --out or --webhook")
	case 1:
		return outs[0], nil
	default:
		return multi.New(outs...), nil
	}
}

// classifyOne writes exactly one record for text, even when it is blank.
func classifyOne(ctx context.Context, c interface{ Classify(string) model.Result }, out output.Output, text string) error {
	return out.Write(ctx, output.Record{Text: text, Result: c.Classify(text)})
}

// openSource opens the report file, or stdin for "-".
func openSource(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open reports: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "File with one report per line (- for stdin)")
	classifyCmd.Flags().StringVarP(&classifyOut, "out", "o", "", "Also append NDJSON results to this file")
	classifyCmd.Flags().StringVar(&classifyWebhook, "webhook", "", "Also POST result batches to this URL")
	classifyCmd.Flags().StringVar(&classifyFamily, "family", "", "Model family to serve")
	classifyCmd.Flags().StringVar(&classifyModelDir, "model-dir", "", "Artifact directory")
	classifyCmd.Flags().StringVar(&classifyVerbosity, "verbosity", "", "Record fields: standard, minimal")
	classifyCmd.Flags().BoolVar(&classifyPretty, "pretty", false, "Indent JSON on stdout")
	classifyCmd.Flags().BoolVarP(&classifyQuiet, "quiet", "q", false, "Do not write results to stdout")
	rootCmd.AddCommand(classifyCmd)
}
