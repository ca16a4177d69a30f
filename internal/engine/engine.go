// Package engine is the runtime classification boundary. An Engine lazily
// loads one persisted pipeline per process, normalizes whatever it predicts
// onto the label registry, and answers with the rule-based baseline whenever
// the model is missing or misbehaves. Classify never fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/engine/baseline"
	"github.com/rideaware/rideaware/internal/engine/pipeline"
	"github.com/rideaware/rideaware/internal/model"
)

// NeutralConfidence is reported for models that cannot score classes.
const NeutralConfidence = 0.5

// errNoModel is recorded when a loader returns neither a model nor an error.
var errNoModel = errors.New("engine: loader returned no model")

// Loader produces the model an Engine serves, plus its metadata. It is
// called at most once per Engine.
type Loader func() (pipeline.Model, artifact.Metadata, error)

// StoreLoader loads family from store. Missing or unreadable metadata does
// not prevent serving the model; its identity then reads as unknown.
func StoreLoader(store *artifact.Store, family string) Loader {
	return func() (pipeline.Model, artifact.Metadata, error) {
		m, err := store.Load(family)
		if err != nil {
			return nil, artifact.Metadata{}, err
		}
		meta, err := store.LoadMetadata(family)
		if err != nil {
			slog.Warn("model metadata unreadable", "family", family, "error", err)
			meta = artifact.Metadata{ModelName: artifact.Unknown, ModelVersion: artifact.Unknown, Family: family}
		}
		return m, meta, nil
	}
}

// loaded is the result of the one load attempt. A failed attempt is cached
// like a successful one.
type loaded struct {
	model pipeline.Model
	meta  artifact.Metadata
	err   error
}

// outcome is the result of a single inference.
type outcome struct {
	label      string
	confidence float64
	err        error
}

// Engine is safe for concurrent use.
type Engine struct {
	load Loader

	once sync.Once
	cell *loaded
}

// New returns an Engine that will call load on first use.
func New(load Loader) *Engine {
	return &Engine{load: load}
}

// Ready forces the lazy load and reports its error, if any. Classification
// works regardless of the result.
func (e *Engine) Ready() error {
	return e.loadOnce().err
}

// Metadata returns the identity of the served model, or the baseline's
// identity when no model could be loaded.
func (e *Engine) Metadata() artifact.Metadata {
	c := e.loadOnce()
	if c.err != nil {
		return artifact.Metadata{ModelName: baseline.ModelName, ModelVersion: baseline.ModelVersion}
	}
	return c.meta
}

// Classify assigns text a registered category and a confidence in [0, 1].
func (e *Engine) Classify(text string) model.Result {
	c := e.loadOnce()
	if c.err != nil {
		return baseline.Result(text)
	}

	out := infer(c.model, text)
	if out.err != nil {
		slog.Debug("inference failed, using baseline", "family", c.model.Family(), "error", out.err)
		return baseline.Result(text)
	}
	return model.Result{
		Category:     model.NormalizeCategory(out.label),
		Confidence:   clamp01(out.confidence),
		ModelName:    c.meta.ModelName,
		ModelVersion: c.meta.ModelVersion,
	}
}

// ClassifyBatch classifies texts on up to workers goroutines. Results are in
// input order. The only possible error is ctx's.
func (e *Engine) ClassifyBatch(ctx context.Context, texts []string, workers int) ([]model.Result, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]model.Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.Classify(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) loadOnce() *loaded {
	e.once.Do(func() {
		c := &loaded{}
		defer func() {
			if r := recover(); r != nil {
				c.model = nil
				c.err = fmt.Errorf("engine: model load panicked: %v", r)
			}
			if c.err != nil {
				slog.Warn("model unavailable, serving baseline classifier", "error", c.err)
			} else {
				slog.Info("model loaded", "family", c.model.Family(), "model_name", c.meta.ModelName, "model_version", c.meta.ModelVersion)
			}
			e.cell = c
		}()

		c.model, c.meta, c.err = e.load()
		if c.err == nil && c.model == nil {
			c.err = errNoModel
		}
		if c.meta.ModelName == "" {
			c.meta.ModelName = artifact.Unknown
		}
		if c.meta.ModelVersion == "" {
			c.meta.ModelVersion = artifact.Unknown
		}
	})
	return e.cell
}

// infer runs one prediction. Errors and panics both become a failed outcome.
// Probabilistic models are run once; the label is the argmax of their row.
func infer(m pipeline.Model, text string) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("engine: inference panicked: %v", r)}
		}
	}()

	if pm, ok := m.(pipeline.ProbabilisticModel); ok {
		return inferProba(pm, text)
	}

	labels, err := m.Predict([]string{text})
	if err != nil {
		return outcome{err: err}
	}
	if len(labels) != 1 {
		return outcome{err: fmt.Errorf("engine: model returned %d labels for 1 text", len(labels))}
	}
	return outcome{label: labels[0], confidence: NeutralConfidence}
}

func inferProba(pm pipeline.ProbabilisticModel, text string) outcome {
	rows, err := pm.PredictProba([]string{text})
	if err != nil {
		return outcome{err: err}
	}
	if len(rows) != 1 || len(rows[0]) == 0 {
		return outcome{err: fmt.Errorf("engine: malformed probability output")}
	}
	row, classes := rows[0], pm.Classes()
	if len(row) != len(classes) {
		return outcome{err: fmt.Errorf("engine: %d probabilities for %d classes", len(row), len(classes))}
	}

	// NaN never wins over a number.
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] || math.IsNaN(row[best]) {
			best = i
		}
	}
	return outcome{label: classes[best], confidence: row[best]}
}

// clamp01 coerces x into [0, 1]; NaN becomes 0.
func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
