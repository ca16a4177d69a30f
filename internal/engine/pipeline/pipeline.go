// Package pipeline binds a TF-IDF vectorizer and a classifier into a single
// trainable unit. Every classifier family is exposed through the same Model
// shape; families that can score all classes also satisfy ProbabilisticModel.
package pipeline

import (
	"fmt"

	"github.com/rideaware/rideaware/internal/engine/classifier"
	"github.com/rideaware/rideaware/internal/engine/vectorizer"
	"github.com/rideaware/rideaware/internal/model"
)

// Model is a fitted or unfitted vectorizer+classifier pipeline.
// A fitted Model is read-only and safe for concurrent use.
type Model interface {
	// Family is the family name the model was built for, e.g. "logreg".
	Family() string
	// Fit learns the vocabulary and the classifier from labeled texts.
	Fit(texts []string, labels []model.Category) error
	// Predict returns the raw predicted label per text. Labels are not
	// validated against the registry here.
	Predict(texts []string) ([]string, error)
	// Classes lists the labels in PredictProba column order.
	Classes() []string

	parts() (*vectorizer.TFIDF, classifier.Classifier)
}

// ProbabilisticModel is a Model that can score every class.
type ProbabilisticModel interface {
	Model
	// PredictProba returns one probability row per text, aligned with Classes().
	PredictProba(texts []string) ([][]float64, error)
}

// New binds vec and clf under the given family name. The result implements
// ProbabilisticModel exactly when clf implements classifier.Probabilistic.
func New(family string, vec *vectorizer.TFIDF, clf classifier.Classifier) Model {
	p := &pipe{family: family, vec: vec, clf: clf}
	if prob, ok := clf.(classifier.Probabilistic); ok {
		return &probPipe{pipe: p, prob: prob}
	}
	return p
}

type pipe struct {
	family string
	vec    *vectorizer.TFIDF
	clf    classifier.Classifier
}

func (p *pipe) Family() string { return p.family }

func (p *pipe) Classes() []string { return p.clf.Classes() }

func (p *pipe) parts() (*vectorizer.TFIDF, classifier.Classifier) { return p.vec, p.clf }

func (p *pipe) Fit(texts []string, labels []model.Category) error {
	if len(texts) != len(labels) {
		return fmt.Errorf("pipeline: %d texts but %d labels", len(texts), len(labels))
	}
	x, err := p.vec.FitTransform(texts)
	if err != nil {
		return fmt.Errorf("pipeline: %s: vectorize: %w", p.family, err)
	}
	y := make([]string, len(labels))
	for i, l := range labels {
		y[i] = string(l)
	}
	if err := p.clf.Fit(x, y, p.vec.Dim()); err != nil {
		return fmt.Errorf("pipeline: %s: fit: %w", p.family, err)
	}
	return nil
}

func (p *pipe) Predict(texts []string) ([]string, error) {
	x, err := p.vec.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: vectorize: %w", p.family, err)
	}
	return p.clf.Predict(x)
}

type probPipe struct {
	*pipe
	prob classifier.Probabilistic
}

func (p *probPipe) PredictProba(texts []string) ([][]float64, error) {
	x, err := p.vec.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: vectorize: %w", p.family, err)
	}
	return p.prob.PredictProba(x)
}
