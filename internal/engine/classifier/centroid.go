package classifier

import (
	"math"

	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// KindCentroid is the registry name of NearestCentroid.
const KindCentroid = "centroid"

func init() {
	Register(KindCentroid, func(Config) Classifier { return NewNearestCentroid() })
}

// NearestCentroid assigns each vector to the class whose mean training vector
// is most cosine-similar. It produces no probabilities.
type NearestCentroid struct {
	Labels    []string    `json:"classes"`
	Centroids [][]float64 `json:"centroids"`
}

// NewNearestCentroid creates an unfitted NearestCentroid.
func NewNearestCentroid() *NearestCentroid {
	return &NearestCentroid{}
}

func (c *NearestCentroid) Kind() string { return KindCentroid }

func (c *NearestCentroid) Classes() []string { return copyStrings(c.Labels) }

// Fit computes one mean vector per class.
func (c *NearestCentroid) Fit(x []vectorizer.Vector, y []string, dim int) error {
	classes, yi, err := checkFit(x, y, dim)
	if err != nil {
		return err
	}
	centroids := make([][]float64, len(classes))
	for k := range centroids {
		centroids[k] = make([]float64, dim)
	}
	counts := make([]float64, len(classes))
	for i, v := range x {
		row := centroids[yi[i]]
		for k, j := range v.Indices {
			row[j] += v.Values[k]
		}
		counts[yi[i]]++
	}
	for k, row := range centroids {
		for j := range row {
			row[j] /= counts[k]
		}
	}
	c.Labels = classes
	c.Centroids = centroids
	return nil
}

// Predict returns the label of the most similar centroid. Vectors with no
// features score zero everywhere and resolve to the first class.
func (c *NearestCentroid) Predict(x []vectorizer.Vector) ([]string, error) {
	if len(c.Labels) == 0 || len(c.Centroids) != len(c.Labels) {
		return nil, ErrNotFitted
	}
	rows := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(c.Centroids))
		for k, centroid := range c.Centroids {
			row[k] = cosineSimilarity(v, centroid)
		}
		rows[i] = row
	}
	return predictFromScores(c.Labels, rows), nil
}

func cosineSimilarity(a vectorizer.Vector, b []float64) float64 {
	if len(a.Indices) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for k, j := range a.Indices {
		if j < len(b) {
			dot += a.Values[k] * b[j]
		}
		normA += a.Values[k] * a.Values[k]
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
