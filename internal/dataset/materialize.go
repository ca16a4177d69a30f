package dataset

import (
	"log/slog"

	"github.com/rideaware/rideaware/internal/model"
)

// Materializer turns the training pool into the exact training set of a run.
// It is the single hook for sub-sampling, deduplication or augmentation; the
// current policy uses the whole pool unchanged.
type Materializer struct{}

// Materialize validates pool and returns the training set derived from it.
func (Materializer) Materialize(pool []model.LabeledExample) ([]model.LabeledExample, error) {
	if err := Validate(pool, "training pool"); err != nil {
		return nil, err
	}
	out := make([]model.LabeledExample, len(pool))
	copy(out, pool)
	return out, nil
}

// Run loads the pool at poolPath, materializes it and publishes the training
// set at trainPath.
func (m Materializer) Run(poolPath, trainPath string) ([]model.LabeledExample, error) {
	pool, err := Load(poolPath)
	if err != nil {
		return nil, err
	}
	train, err := m.Materialize(pool)
	if err != nil {
		return nil, err
	}
	if err := Save(trainPath, train); err != nil {
		return nil, err
	}
	slog.Info("wrote training split", "path", trainPath, "rows", len(train))
	slog.Info("training label distribution", DistributionAttrs(train)...)
	return train, nil
}
