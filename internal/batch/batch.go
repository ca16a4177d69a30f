// Package batch classifies newline-delimited reports and streams the results
// to an output sink in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rideaware/rideaware/internal/model"
	"github.com/rideaware/rideaware/internal/output"
)

const (
	defaultChunkSize = 256
	maxLineBytes     = 1 << 20
)

// Classifier is the part of the runtime engine a Runner needs.
type Classifier interface {
	ClassifyBatch(ctx context.Context, texts []string, workers int) ([]model.Result, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrent classifications per chunk.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithChunkSize sets how many reports are buffered before classification.
func WithChunkSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.chunk = n
		}
	}
}

// Stats counts what a Run consumed.
type Stats struct {
	Lines      int // lines read, blank ones included
	Blank      int
	Classified int // records written
	Unique     int // distinct texts sent to the classifier
}

// Runner connects a classifier to an output.
type Runner struct {
	cls     Classifier
	out     output.Output
	workers int
	chunk   int
}

// New creates a Runner writing to out.
func New(cls Classifier, out output.Output, opts ...Option) *Runner {
	r := &Runner{cls: cls, out: out, workers: 1, chunk: defaultChunkSize}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run reads one report per line from src until EOF or until ctx is done.
// Blank lines are skipped. Identical reports within a chunk are classified
// once and the result is written for every occurrence.
func (r *Runner) Run(ctx context.Context, src io.Reader) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	pending := make([]string, 0, r.chunk)
	for sc.Scan() {
		stats.Lines++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			stats.Blank++
			continue
		}
		pending = append(pending, text)
		if len(pending) < r.chunk {
			continue
		}
		if err := r.flush(ctx, pending, &stats); err != nil {
			return stats, err
		}
		pending = pending[:0]
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("batch: read: %w", err)
	}
	if err := r.flush(ctx, pending, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// Close shuts down the output.
func (r *Runner) Close() error {
	return r.out.Close()
}

func (r *Runner) flush(ctx context.Context, texts []string, stats *Stats) error {
	if len(texts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unique, index := dedupe(texts)
	results, err := r.cls.ClassifyBatch(ctx, unique, r.workers)
	if err != nil {
		return fmt.Errorf("batch: classify: %w", err)
	}
	if len(results) != len(unique) {
		return fmt.Errorf("batch: classifier returned %d results for %d reports", len(results), len(unique))
	}
	stats.Unique += len(unique)

	for i, text := range texts {
		rec := output.Record{Text: text, Result: results[index[i]]}
		if err := r.out.Write(ctx, rec); err != nil {
			return fmt.Errorf("batch: output: %w", err)
		}
		stats.Classified++
	}
	return nil
}

// dedupe returns the distinct texts in first-occurrence order and, for each
// input position, the index of its text in unique.
func dedupe(texts []string) (unique []string, index []int) {
	seen := make(map[string]int, len(texts))
	index = make([]int, len(texts))
	for i, t := range texts {
		j, ok := seen[t]
		if !ok {
			j = len(unique)
			seen[t] = j
			unique = append(unique, t)
		}
		index[i] = j
	}
	return unique, index
}
