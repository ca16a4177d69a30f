package classifier

import (
	"math"

	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// KindLogReg is the registry name of LogisticRegression.
const KindLogReg = "logreg"

func init() {
	Register(KindLogReg, func(Config) Classifier { return NewLogisticRegression() })
}

// LogisticRegression is an L2-regularized multinomial logistic regression
// trained by full-batch gradient descent. With Balanced set, every class
// contributes equal total weight to the loss regardless of its frequency.
type LogisticRegression struct {
	C        float64 `json:"c"`
	MaxIter  int     `json:"max_iter"`
	Tol      float64 `json:"tol"`
	Balanced bool    `json:"balanced"`

	Labels     []string    `json:"classes"`
	Weights    [][]float64 `json:"weights"` // [class][feature]
	Bias       []float64   `json:"bias"`
	Iterations int         `json:"iterations"`
}

// NewLogisticRegression returns an unfitted model with C=1, up to 2000
// iterations and balanced class weights.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1.0, MaxIter: 2000, Tol: 1e-4, Balanced: true}
}

func (m *LogisticRegression) Kind() string { return KindLogReg }

func (m *LogisticRegression) Classes() []string { return copyStrings(m.Labels) }

// Fit minimizes the weighted mean cross-entropy plus ||W||^2 / (2*C*sum(w)).
// It stops when the largest gradient component drops below Tol or after
// MaxIter steps.
func (m *LogisticRegression) Fit(x []vectorizer.Vector, y []string, dim int) error {
	classes, yi, err := checkFit(x, y, dim)
	if err != nil {
		return err
	}
	k, n := len(classes), len(x)

	sw := sampleWeights(yi, k, m.Balanced)
	var wsum float64
	for _, w := range sw {
		wsum += w
	}
	c := m.C
	if c <= 0 {
		c = 1.0
	}
	reg := 1.0 / (c * wsum)

	weights := make([][]float64, k)
	grads := make([][]float64, k)
	for j := range weights {
		weights[j] = make([]float64, dim)
		grads[j] = make([]float64, dim)
	}
	bias := make([]float64, k)
	gradBias := make([]float64, k)
	scores := make([]float64, k)

	const learningRate = 1.0
	iter := 0
	for iter < m.MaxIter {
		iter++
		for j := range grads {
			for f := range grads[j] {
				grads[j][f] = reg * weights[j][f]
			}
			gradBias[j] = 0
		}

		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				scores[j] = x[i].Dot(weights[j]) + bias[j]
			}
			softmax(scores)
			scale := sw[i] / wsum
			for j := 0; j < k; j++ {
				g := scores[j]
				if j == yi[i] {
					g -= 1
				}
				g *= scale
				for p, f := range x[i].Indices {
					grads[j][f] += g * x[i].Values[p]
				}
				gradBias[j] += g
			}
		}

		var peak float64
		for j := 0; j < k; j++ {
			for f, g := range grads[j] {
				weights[j][f] -= learningRate * g
				peak = math.Max(peak, math.Abs(g))
			}
			bias[j] -= learningRate * gradBias[j]
			peak = math.Max(peak, math.Abs(gradBias[j]))
		}
		if peak < m.Tol {
			break
		}
	}

	m.Labels = classes
	m.Weights = weights
	m.Bias = bias
	m.Iterations = iter
	return nil
}

// Predict returns the highest-scoring class per vector.
func (m *LogisticRegression) Predict(x []vectorizer.Vector) ([]string, error) {
	rows, err := m.scores(x)
	if err != nil {
		return nil, err
	}
	return predictFromScores(m.Labels, rows), nil
}

// PredictProba returns softmax class probabilities per vector.
func (m *LogisticRegression) PredictProba(x []vectorizer.Vector) ([][]float64, error) {
	rows, err := m.scores(x)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		softmax(row)
	}
	return rows, nil
}

func (m *LogisticRegression) scores(x []vectorizer.Vector) ([][]float64, error) {
	if len(m.Labels) == 0 || len(m.Weights) != len(m.Labels) || len(m.Bias) != len(m.Labels) {
		return nil, ErrNotFitted
	}
	rows := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.Labels))
		for j := range m.Labels {
			row[j] = v.Dot(m.Weights[j]) + m.Bias[j]
		}
		rows[i] = row
	}
	return rows, nil
}

// sampleWeights returns 1 per sample, or n/(k*count[class]) when balanced.
func sampleWeights(yi []int, k int, balanced bool) []float64 {
	sw := make([]float64, len(yi))
	if !balanced {
		for i := range sw {
			sw[i] = 1
		}
		return sw
	}
	counts := make([]int, k)
	for _, c := range yi {
		counts[c]++
	}
	n := float64(len(yi))
	for i, c := range yi {
		sw[i] = n / (float64(k) * float64(counts[c]))
	}
	return sw
}
