package rideaware

import (
	"context"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/engine"
	"github.com/rideaware/rideaware/internal/model"
)

// Classifier classifies hazard reports. Safe for concurrent use.
type Classifier struct {
	engine  *engine.Engine
	workers int
}

// New creates a Classifier. It does no I/O; the artifact is read on the
// first classification.
func New(opts ...Option) *Classifier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	store := artifact.NewStore(o.modelDir)
	return &Classifier{
		engine:  engine.New(engine.StoreLoader(store, o.family)),
		workers: o.workers,
	}
}

// Classify classifies a single report.
func (c *Classifier) Classify(text string) Result {
	return resultFromModel(c.engine.Classify(text))
}

// ClassifyBatch classifies reports concurrently. Results are in input order.
// The only possible error is ctx's.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) ([]Result, error) {
	rs, err := c.engine.ClassifyBatch(ctx, texts, c.workers)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(rs))
	for i, r := range rs {
		out[i] = resultFromModel(r)
	}
	return out, nil
}

// Ready loads the artifact if needed and reports why the trained model is
// not being served. A nil error means it is.
func (c *Classifier) Ready() error {
	return c.engine.Ready()
}

// Labels returns the five categories in registry order.
func Labels() []string {
	return model.LabelStrings()
}

func resultFromModel(r model.Result) Result {
	return Result{
		Category:     string(r.Category),
		Confidence:   r.Confidence,
		ModelName:    r.ModelName,
		ModelVersion: r.ModelVersion,
	}
}

// Model returns the name and version of the model answering Classify,
// loading the artifact if needed.
func (c *Classifier) Model() (name, version string) {
	m := c.engine.Metadata()
	return m.ModelName, m.ModelVersion
}
