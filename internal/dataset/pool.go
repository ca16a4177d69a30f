package dataset

import (
	"fmt"
	"log/slog"

	"github.com/rideaware/rideaware/internal/model"
)

// AppendResult summarizes a pool append.
type AppendResult struct {
	Added   int
	Skipped int // already present in the evaluation set
	Total   int
}

// AppendPool adds examples to the training pool at poolPath. Examples whose
// text appears in the evaluation set at evalPath are skipped so the two sets
// stay disjoint. The evaluation file is only read, never written.
func AppendPool(poolPath, evalPath string, additions []model.LabeledExample) (AppendResult, error) {
	if err := Validate(additions, "additions"); err != nil {
		return AppendResult{}, err
	}

	pool, err := Load(poolPath)
	if err != nil {
		return AppendResult{}, fmt.Errorf("dataset: load pool: %w", err)
	}

	held := map[string]struct{}{}
	ok, err := Exists(evalPath)
	if err != nil {
		return AppendResult{}, err
	}
	if ok {
		eval, err := Load(evalPath)
		if err != nil {
			return AppendResult{}, fmt.Errorf("dataset: load evaluation set: %w", err)
		}
		for _, e := range eval {
			held[e.Text] = struct{}{}
		}
	}

	var res AppendResult
	for _, e := range additions {
		if _, leak := held[e.Text]; leak {
			res.Skipped++
			continue
		}
		pool = append(pool, e)
		res.Added++
	}
	res.Total = len(pool)

	if res.Added == 0 {
		return res, nil
	}
	if err := Save(poolPath, pool); err != nil {
		return AppendResult{}, err
	}
	slog.Info("training pool updated", "path", poolPath, "added", res.Added, "skipped", res.Skipped, "rows", res.Total)
	return res, nil
}
