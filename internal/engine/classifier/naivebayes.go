package classifier

import (
	"fmt"
	"math"

	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// KindNaiveBayes is the registry name of MultinomialNB.
const KindNaiveBayes = "naivebayes"

func init() {
	Register(KindNaiveBayes, func(Config) Classifier { return NewMultinomialNB() })
}

// MultinomialNB is a multinomial naive Bayes classifier with additive
// (Laplace/Lidstone) smoothing over non-negative feature weights.
type MultinomialNB struct {
	Alpha float64 `json:"alpha"`

	Labels         []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"` // [class][feature]
}

// NewMultinomialNB returns an unfitted model with alpha=1.
func NewMultinomialNB() *MultinomialNB {
	return &MultinomialNB{Alpha: 1.0}
}

func (m *MultinomialNB) Kind() string { return KindNaiveBayes }

func (m *MultinomialNB) Classes() []string { return copyStrings(m.Labels) }

// Fit estimates class priors from label frequencies and smoothed per-class
// feature distributions from summed feature weights.
func (m *MultinomialNB) Fit(x []vectorizer.Vector, y []string, dim int) error {
	classes, yi, err := checkFit(x, y, dim)
	if err != nil {
		return err
	}
	if m.Alpha < 0 {
		return fmt.Errorf("classifier: negative smoothing alpha %v", m.Alpha)
	}
	k := len(classes)

	counts := make([]float64, k)
	featureCounts := make([][]float64, k)
	for j := range featureCounts {
		featureCounts[j] = make([]float64, dim)
	}
	for i, v := range x {
		counts[yi[i]]++
		row := featureCounts[yi[i]]
		for p, f := range v.Indices {
			if v.Values[p] < 0 {
				return fmt.Errorf("classifier: negative feature value in sample %d", i)
			}
			row[f] += v.Values[p]
		}
	}

	prior := make([]float64, k)
	logProb := make([][]float64, k)
	n := float64(len(x))
	for j := 0; j < k; j++ {
		prior[j] = math.Log(counts[j] / n)
		var total float64
		for _, c := range featureCounts[j] {
			total += c
		}
		denom := math.Log(total + m.Alpha*float64(dim))
		row := make([]float64, dim)
		for f, c := range featureCounts[j] {
			row[f] = math.Log(c+m.Alpha) - denom
		}
		logProb[j] = row
	}

	m.Labels = classes
	m.ClassLogPrior = prior
	m.FeatureLogProb = logProb
	return nil
}

// Predict returns the class with the highest joint log-likelihood.
func (m *MultinomialNB) Predict(x []vectorizer.Vector) ([]string, error) {
	rows, err := m.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}
	return predictFromScores(m.Labels, rows), nil
}

// PredictProba returns normalized posterior probabilities per vector.
func (m *MultinomialNB) PredictProba(x []vectorizer.Vector) ([][]float64, error) {
	rows, err := m.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		softmax(row)
	}
	return rows, nil
}

func (m *MultinomialNB) jointLogLikelihood(x []vectorizer.Vector) ([][]float64, error) {
	if len(m.Labels) == 0 || len(m.ClassLogPrior) != len(m.Labels) || len(m.FeatureLogProb) != len(m.Labels) {
		return nil, ErrNotFitted
	}
	rows := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.Labels))
		for j := range m.Labels {
			row[j] = m.ClassLogPrior[j] + v.Dot(m.FeatureLogProb[j])
		}
		rows[i] = row
	}
	return rows, nil
}
