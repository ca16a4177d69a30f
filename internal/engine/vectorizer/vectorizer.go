// Package vectorizer turns report text into sparse TF-IDF feature vectors.
package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNotFitted is returned when transforming with an unfitted vectorizer.
	ErrNotFitted = errors.New("vectorizer: not fitted")
	// ErrNoTerms is returned when document-frequency pruning removes every term.
	ErrNoTerms = errors.New("vectorizer: no terms remain after pruning, lower min_df or raise max_df")
)

// Vector is a sparse feature vector with strictly increasing indices.
type Vector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product of v with a dense weight row.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for k, i := range v.Indices {
		if i < len(dense) {
			sum += v.Values[k] * dense[i]
		}
	}
	return sum
}

// Options control vocabulary construction.
type Options struct {
	MinN  int     `json:"min_n"`
	MaxN  int     `json:"max_n"`
	MinDF int     `json:"min_df"` // minimum absolute document frequency
	MaxDF float64 `json:"max_df"` // maximum document frequency as a fraction of documents
}

// DefaultOptions are unigrams plus bigrams, terms seen in a single document
// kept, terms present in more than 95% of documents dropped.
func DefaultOptions() Options {
	return Options{MinN: 1, MaxN: 2, MinDF: 1, MaxDF: 0.95}
}

// TFIDF is a fitted vocabulary with smoothed inverse document frequencies.
// Feature values are raw term counts times IDF, L2-normalized per document.
// Once fitted it is read-only and safe for concurrent Transform calls.
type TFIDF struct {
	Options    Options        `json:"options"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// New creates an unfitted vectorizer.
func New(opts Options) *TFIDF {
	return &TFIDF{Options: opts}
}

// Fitted reports whether the vocabulary has been learned.
func (t *TFIDF) Fitted() bool {
	return len(t.Vocabulary) > 0 && len(t.IDF) == len(t.Vocabulary)
}

// Dim is the number of features.
func (t *TFIDF) Dim() int {
	return len(t.IDF)
}

// Fit learns the vocabulary and IDF weights from texts.
func (t *TFIDF) Fit(texts []string) error {
	n := len(texts)
	if n == 0 {
		return fmt.Errorf("vectorizer: fit on empty corpus")
	}

	df := map[string]int{}
	for _, text := range texts {
		seen := map[string]struct{}{}
		for _, g := range analyze(text, t.Options.MinN, t.Options.MaxN) {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	maxDocs := t.Options.MaxDF * float64(n)
	minDocs := max(t.Options.MinDF, 1)
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < minDocs || float64(count) > maxDocs {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return ErrNoTerms
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	t.Vocabulary = vocab
	t.IDF = idf
	return nil
}

// Transform vectorizes texts with the fitted vocabulary. Unknown terms are
// ignored; a text with no known terms yields an empty vector.
func (t *TFIDF) Transform(texts []string) ([]Vector, error) {
	if !t.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]Vector, len(texts))
	for i, text := range texts {
		out[i] = t.transformOne(text)
	}
	return out, nil
}

// FitTransform fits on texts and returns their vectors.
func (t *TFIDF) FitTransform(texts []string) ([]Vector, error) {
	if err := t.Fit(texts); err != nil {
		return nil, err
	}
	return t.Transform(texts)
}

func (t *TFIDF) transformOne(text string) Vector {
	counts := map[int]float64{}
	for _, g := range analyze(text, t.Options.MinN, t.Options.MaxN) {
		if idx, ok := t.Vocabulary[g]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for k, idx := range indices {
		v := counts[idx] * t.IDF[idx]
		values[k] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for k := range values {
		values[k] /= norm
	}
	return Vector{Indices: indices, Values: values}
}
