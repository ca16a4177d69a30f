package pipeline

import (
	"fmt"
	"sort"

	"github.com/rideaware/rideaware/internal/engine/classifier"
	"github.com/rideaware/rideaware/internal/engine/classifier/onnx"
	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// Family describes a candidate model family: which classifier kind sits
// behind the vectorizer and the model name recorded in artifact metadata.
type Family struct {
	Name      string
	Kind      string
	ModelName string
}

var families = map[string]Family{
	"logreg":     {Name: "logreg", Kind: classifier.KindLogReg, ModelName: "tfidf+logreg"},
	"naivebayes": {Name: "naivebayes", Kind: classifier.KindNaiveBayes, ModelName: "tfidf+naivebayes"},
	"centroid":   {Name: "centroid", Kind: classifier.KindCentroid, ModelName: "tfidf+centroid"},
	"onnx":       {Name: "onnx", Kind: onnx.Kind, ModelName: "tfidf+onnx"},
}

// LookupFamily returns the family registered under name.
func LookupFamily(name string) (Family, error) {
	f, ok := families[name]
	if !ok {
		return Family{}, fmt.Errorf("pipeline: unknown model family %q (known: %v)", name, Families())
	}
	return f, nil
}

// Families returns the known family names in sorted order.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns a fresh, unfitted pipeline for the named family. extra is
// passed through to the classifier constructor.
func Build(name string, extra map[string]string) (Model, error) {
	f, err := LookupFamily(name)
	if err != nil {
		return nil, err
	}
	ctor, err := classifier.Get(f.Kind)
	if err != nil {
		return nil, fmt.Errorf("pipeline: family %s: %w", name, err)
	}
	return New(f.Name, vectorizer.New(vectorizer.DefaultOptions()), ctor(classifier.Config{Extra: extra})), nil
}
