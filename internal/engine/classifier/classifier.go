// Package classifier implements the statistical classifier families that sit
// behind the TF-IDF vectorizer in a model pipeline.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

var (
	// ErrNotFitted is returned when predicting with an untrained classifier.
	ErrNotFitted = errors.New("classifier: not fitted")
	// ErrNotTrainable is returned by inference-only classifiers asked to learn.
	ErrNotTrainable = errors.New("classifier: not trainable")
)

// Classifier learns a mapping from sparse feature vectors to labels.
// Fitted classifiers are read-only and safe for concurrent Predict calls.
type Classifier interface {
	// Kind is the registry name of the implementation.
	Kind() string
	// Fit trains on x (vectors of width dim) with labels y.
	Fit(x []vectorizer.Vector, y []string, dim int) error
	// Predict returns one label per vector.
	Predict(x []vectorizer.Vector) ([]string, error)
	// Classes lists the labels the classifier can emit, in column order.
	Classes() []string
}

// Probabilistic classifiers additionally score every class. Rows of the
// returned matrix align with x and columns with Classes().
type Probabilistic interface {
	Classifier
	PredictProba(x []vectorizer.Vector) ([][]float64, error)
}

// checkFit validates a training set and returns the sorted class list plus
// each sample's class index.
func checkFit(x []vectorizer.Vector, y []string, dim int) ([]string, []int, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("classifier: %d samples but %d labels", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, nil, fmt.Errorf("classifier: empty training set")
	}
	if dim <= 0 {
		return nil, nil, fmt.Errorf("classifier: invalid feature dimension %d", dim)
	}

	set := map[string]struct{}{}
	for _, label := range y {
		set[label] = struct{}{}
	}
	if len(set) < 2 {
		return nil, nil, fmt.Errorf("classifier: need samples of at least 2 classes, got %d", len(set))
	}
	classes := make([]string, 0, len(set))
	for label := range set {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	yi := make([]int, len(y))
	for i, label := range y {
		yi[i] = index[label]
	}
	for i, v := range x {
		for _, j := range v.Indices {
			if j < 0 || j >= dim {
				return nil, nil, fmt.Errorf("classifier: sample %d has feature %d outside [0, %d)", i, j, dim)
			}
		}
	}
	return classes, yi, nil
}

// argmax returns the index of the largest value; ties resolve to the lowest index.
func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// softmax converts scores into probabilities in place.
func softmax(scores []float64) []float64 {
	peak := scores[argmax(scores)]
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - peak)
		scores[i] = e
		sum += e
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}

// predictFromScores maps per-sample score rows to class labels.
func predictFromScores(classes []string, rows [][]float64) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = classes[argmax(row)]
	}
	return out
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
