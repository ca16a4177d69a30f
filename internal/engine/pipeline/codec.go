package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rideaware/rideaware/internal/engine/classifier"
	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// envelope is the serialized form of a pipeline.
type envelope struct {
	Family     string            `json:"family"`
	Kind       string            `json:"kind"`
	Vectorizer *vectorizer.TFIDF `json:"vectorizer"`
	Classifier json.RawMessage   `json:"classifier"`
}

// Encode writes m as JSON.
func Encode(w io.Writer, m Model) error {
	vec, clf := m.parts()
	raw, err := json.Marshal(clf)
	if err != nil {
		return fmt.Errorf("pipeline: encode %s classifier: %w", m.Family(), err)
	}
	env := envelope{Family: m.Family(), Kind: clf.Kind(), Vectorizer: vec, Classifier: raw}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("pipeline: encode %s: %w", m.Family(), err)
	}
	return nil
}

// Decode reads a pipeline written by Encode. The decoded model must already
// be fitted; an unfitted vectorizer is reported as an error.
func Decode(r io.Reader) (Model, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("pipeline: decode: %w", err)
	}
	if env.Vectorizer == nil || !env.Vectorizer.Fitted() {
		return nil, fmt.Errorf("pipeline: decode %s: %w", env.Family, vectorizer.ErrNotFitted)
	}
	ctor, err := classifier.Get(env.Kind)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decode %s: %w", env.Family, err)
	}
	clf := ctor(classifier.Config{})
	if err := json.Unmarshal(env.Classifier, clf); err != nil {
		return nil, fmt.Errorf("pipeline: decode %s classifier: %w", env.Family, err)
	}
	if len(clf.Classes()) == 0 {
		return nil, fmt.Errorf("pipeline: decode %s: %w", env.Family, classifier.ErrNotFitted)
	}
	return New(env.Family, env.Vectorizer, clf), nil
}
