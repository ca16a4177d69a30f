package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/rideaware/rideaware/internal/model"
)

// Defaults used when a Splitter is built from zero values.
const (
	DefaultEvalFraction = 0.25
	DefaultSeed         = 42
)

// Split is a disjoint partition of a corpus.
type Split struct {
	Evaluation []model.LabeledExample
	Pool       []model.LabeledExample
}

// Splitter produces the frozen evaluation set and the initial training pool
// with a stratified, seeded draw. Equal corpora and settings always yield the
// same membership, in corpus order.
type Splitter struct {
	EvalFraction float64
	Seed         uint64
}

// NewSplitter returns a Splitter. Non-positive fractions select the default.
func NewSplitter(evalFraction float64, seed uint64) *Splitter {
	if evalFraction <= 0 {
		evalFraction = DefaultEvalFraction
	}
	return &Splitter{EvalFraction: evalFraction, Seed: seed}
}

// Split partitions examples. Each label contributes to the evaluation set in
// proportion to its share of the corpus (largest remainder), and every label
// keeps at least one example in the pool. Rows sharing a text are drawn as
// one unit, so a text never lands on both sides; such a unit belongs to the
// label of its first row.
func (s *Splitter) Split(examples []model.LabeledExample) (Split, error) {
	if err := Validate(examples, "corpus"); err != nil {
		return Split{}, err
	}
	if s.EvalFraction <= 0 || s.EvalFraction >= 1 {
		return Split{}, fmt.Errorf("dataset: eval fraction %v outside (0, 1)", s.EvalFraction)
	}

	rows := make([]int, len(model.Labels()))
	for _, e := range examples {
		rows[e.Label.Index()]++
	}
	for li, c := range rows {
		if c == 1 {
			return Split{}, &ValidationError{
				Source: "corpus",
				Reason: fmt.Sprintf("label %q has 1 example, stratification needs at least 2", model.Labels()[li]),
			}
		}
	}

	// unitOf maps each row to the distinct text it carries.
	unitOf := make([]int, len(examples))
	byText := make(map[string]int, len(examples))
	groups := make([][]int, len(model.Labels()))
	for i, e := range examples {
		u, ok := byText[e.Text]
		if !ok {
			u = len(byText)
			byText[e.Text] = u
			groups[e.Label.Index()] = append(groups[e.Label.Index()], u)
		}
		unitOf[i] = u
	}

	labels, splittable := 0, 0
	for _, g := range groups {
		if len(g) > 0 {
			labels++
		}
		if len(g) > 1 {
			splittable++
		}
	}

	n := len(byText)
	nEval := int(math.Ceil(s.EvalFraction * float64(n)))
	if splittable == 0 || nEval < splittable || n-nEval < labels {
		return Split{}, &ValidationError{
			Source: "corpus",
			Reason: fmt.Sprintf("%d distinct texts cannot be split %v/%v across %d labels", n, s.EvalFraction, 1-s.EvalFraction, labels),
		}
	}

	alloc := allocate(groups, nEval, n)

	rng := rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15)
	inEval := make([]bool, n)
	for li, g := range groups {
		if alloc[li] == 0 {
			continue
		}
		members := append([]int(nil), g...)
		shuffle(rng, members)
		for _, u := range members[:alloc[li]] {
			inEval[u] = true
		}
	}

	var out Split
	for i, e := range examples {
		if inEval[unitOf[i]] {
			out.Evaluation = append(out.Evaluation, e)
		} else {
			out.Pool = append(out.Pool, e)
		}
	}
	return out, nil
}

// allocate distributes nEval draws over label groups proportionally, capping
// each group so that at least one of its examples stays in the pool.
func allocate(groups [][]int, nEval, n int) []int {
	alloc := make([]int, len(groups))
	type rem struct {
		label int
		frac  float64
	}
	var rems []rem
	total := 0
	for li, g := range groups {
		if len(g) == 0 {
			continue
		}
		ideal := float64(len(g)) * float64(nEval) / float64(n)
		alloc[li] = min(int(math.Floor(ideal)), len(g)-1)
		total += alloc[li]
		rems = append(rems, rem{label: li, frac: ideal - math.Floor(ideal)})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })

	for total < nEval {
		progressed := false
		for _, r := range rems {
			if total == nEval {
				break
			}
			if alloc[r.label] < len(groups[r.label])-1 {
				alloc[r.label]++
				total++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return alloc
}

// shuffle is a Fisher-Yates shuffle driven directly by the PCG stream so the
// permutation depends only on the seed.
func shuffle(src *rand.PCG, xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := int(src.Uint64() % uint64(i+1))
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Init creates the evaluation set and training pool from the corpus at
// corpusPath. It refuses to run once evalPath exists. The pool is published
// before the evaluation file so that an existing evaluation file always
// implies a complete pool.
func (s *Splitter) Init(corpusPath, poolPath, evalPath string) (Split, error) {
	frozen, err := Exists(evalPath)
	if err != nil {
		return Split{}, err
	}
	if frozen {
		return Split{}, fmt.Errorf("%w: %s", ErrEvaluationFrozen, evalPath)
	}

	examples, err := Load(corpusPath)
	if err != nil {
		return Split{}, err
	}
	split, err := s.Split(examples)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Source = corpusPath
		}
		return Split{}, err
	}

	if err := Save(poolPath, split.Pool); err != nil {
		return Split{}, err
	}
	if err := Save(evalPath, split.Evaluation); err != nil {
		return Split{}, err
	}

	slog.Info("created fixed evaluation set", "path", evalPath, "rows", len(split.Evaluation))
	slog.Info("created training pool", "path", poolPath, "rows", len(split.Pool))
	slog.Debug("evaluation label distribution", DistributionAttrs(split.Evaluation)...)
	return split, nil
}
