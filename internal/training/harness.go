// Package training fits candidate model families on the materialized
// training set, scores them on the frozen evaluation set, and publishes one
// artifact per family.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/dataset"
	"github.com/rideaware/rideaware/internal/engine/baseline"
	"github.com/rideaware/rideaware/internal/engine/pipeline"
	"github.com/rideaware/rideaware/internal/evaluation"
	"github.com/rideaware/rideaware/internal/model"
)

// ErrNoTrainingSet is returned when the training set file does not exist.
var ErrNoTrainingSet = errors.New("training: training set not found")

// Config selects the data and families for a run.
type Config struct {
	TrainPath string
	EvalPath  string
	Families  []string
	Version   string
	// Extra is handed to every classifier constructor (e.g. onnx model_path).
	Extra map[string]string
	// Workers bounds how many families are fitted concurrently.
	Workers int
}

// FamilyResult is the outcome for one family. A non-nil Err means the family
// was skipped or failed; other families are unaffected.
type FamilyResult struct {
	Family          string
	ModelName       string
	ModelVersion    string
	FitDuration     time.Duration
	PredictDuration time.Duration
	Evaluation      *evaluation.Report
	Metadata        artifact.Metadata
	Err             error
}

// Report summarizes a run. Results follow the configured family order,
// preceded by the baseline when an evaluation set was available.
type Report struct {
	RunID     string
	StartedAt time.Time
	TrainSize int
	EvalSize  int
	Results   []FamilyResult
}

// Harness runs training against an artifact store.
type Harness struct {
	store *artifact.Store
	cfg   Config
	now   func() time.Time
}

// New returns a Harness publishing into store.
func New(store *artifact.Store, cfg Config) *Harness {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	cfg.Families = dedupe(cfg.Families)
	return &Harness{store: store, cfg: cfg, now: time.Now}
}

// Run trains every configured family. Only a missing training set is fatal;
// a malformed corpus or a failing family is recorded in that family's result.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		StartedAt: h.now().UTC(),
		Results:   make([]FamilyResult, len(h.cfg.Families)),
	}
	for i, f := range h.cfg.Families {
		rep.Results[i] = FamilyResult{Family: f, ModelVersion: h.cfg.Version}
		if fam, err := pipeline.LookupFamily(f); err == nil {
			rep.Results[i].ModelName = fam.ModelName
		}
	}
	log := slog.With("run_id", rep.RunID)

	train, err := dataset.Load(h.cfg.TrainPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoTrainingSet, h.cfg.TrainPath)
	}
	if err != nil {
		log.Error("training set unusable", "path", h.cfg.TrainPath, "error", err)
		failAll(rep, err)
		return rep, nil
	}
	rep.TrainSize = len(train)

	eval, err := loadEvaluation(h.cfg.EvalPath)
	if err != nil {
		log.Error("evaluation set unusable", "path", h.cfg.EvalPath, "error", err)
		failAll(rep, err)
		return rep, nil
	}
	rep.EvalSize = len(eval)
	if eval == nil {
		log.Warn("no evaluation set, models are trained but not scored", "path", h.cfg.EvalPath)
	}

	log.Info("training started", append([]any{"train_size", rep.TrainSize, "eval_size", rep.EvalSize, "families", h.cfg.Families}, dataset.DistributionAttrs(train)...)...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Workers)
	for i := range rep.Results {
		res := &rep.Results[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			h.trainFamily(res, rep, train, eval)
			if res.Err != nil {
				log.Error("family failed", "family", res.Family, "error", res.Err)
			} else {
				log.Info("family trained", "family", res.Family, "fit", res.FitDuration)
			}
			return nil
		})
	}
	_ = g.Wait()

	if eval != nil {
		rep.Results = append([]FamilyResult{scoreBaseline(eval)}, rep.Results...)
	}
	return rep, nil
}

// trainFamily fits, scores and persists one family, filling res.
func (h *Harness) trainFamily(res *FamilyResult, rep *Report, train, eval []model.LabeledExample) {
	m, err := pipeline.Build(res.Family, h.cfg.Extra)
	if err != nil {
		res.Err = err
		return
	}

	start := time.Now()
	if err := m.Fit(model.Texts(train), model.Categories(train)); err != nil {
		res.Err = err
		return
	}
	res.FitDuration = time.Since(start)

	if eval != nil {
		res.Evaluation, res.PredictDuration, res.Err = score(m.Predict, eval)
		if res.Err != nil {
			return
		}
	}

	res.Metadata = artifact.Metadata{
		ModelName:    res.ModelName,
		ModelVersion: res.ModelVersion,
		Family:       res.Family,
		RunID:        rep.RunID,
		TrainedAt:    rep.StartedAt,
		TrainSize:    rep.TrainSize,
		Labels:       m.Classes(),
	}
	if err := h.store.Save(m, res.Metadata); err != nil {
		res.Err = err
	}
}

// Evaluate scores the baseline and every requested persisted family on the
// evaluation set. An empty families list means every family in the store.
func Evaluate(ctx context.Context, store *artifact.Store, evalPath string, families []string, workers int) (*Report, error) {
	eval, err := loadEvaluation(evalPath)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("training: evaluation set not found: %s", evalPath)
	}
	if len(families) == 0 {
		if families, err = store.Families(); err != nil {
			return nil, err
		}
	}
	families = dedupe(families)
	if workers < 1 {
		workers = 1
	}

	rep := &Report{EvalSize: len(eval), Results: make([]FamilyResult, len(families))}
	var mu sync.Mutex
	runIDs := map[string]struct{}{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, family := range families {
		res := &rep.Results[i]
		res.Family = family
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			m, err := store.Load(family)
			if err != nil {
				res.Err = err
				return nil
			}
			meta, err := store.LoadMetadata(family)
			if err != nil {
				res.Err = err
				return nil
			}
			res.Metadata = meta
			res.ModelName, res.ModelVersion = meta.ModelName, meta.ModelVersion
			res.Evaluation, res.PredictDuration, res.Err = score(m.Predict, eval)

			mu.Lock()
			runIDs[meta.RunID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(runIDs) == 1 {
		for id := range runIDs {
			rep.RunID = id
		}
	}
	rep.Results = append([]FamilyResult{scoreBaseline(eval)}, rep.Results...)
	return rep, nil
}

// scoreBaseline evaluates the keyword classifier as a reference row.
func scoreBaseline(eval []model.LabeledExample) FamilyResult {
	res := FamilyResult{
		Family:       baseline.ModelName,
		ModelName:    baseline.ModelName,
		ModelVersion: baseline.ModelVersion,
	}
	res.Evaluation, res.PredictDuration, res.Err = score(func(texts []string) ([]string, error) {
		return baseline.Predict(texts), nil
	}, eval)
	return res
}

func score(predict func([]string) ([]string, error), eval []model.LabeledExample) (*evaluation.Report, time.Duration, error) {
	start := time.Now()
	pred, err := predict(model.Texts(eval))
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, fmt.Errorf("training: predict evaluation set: %w", err)
	}
	truth := make([]string, len(eval))
	for i, ex := range eval {
		truth[i] = string(ex.Label)
	}
	r, err := evaluation.Evaluate(truth, pred, model.LabelStrings())
	return r, elapsed, err
}

// loadEvaluation returns nil, nil when the evaluation file is absent or empty.
func loadEvaluation(path string) ([]model.LabeledExample, error) {
	if path == "" {
		return nil, nil
	}
	eval, err := dataset.Load(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(eval) == 0) {
		return nil, nil
	}
	return eval, err
}

func failAll(rep *Report, err error) {
	for i := range rep.Results {
		rep.Results[i].Err = err
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
