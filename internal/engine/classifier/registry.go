package classifier

import (
	"fmt"
	"sort"
)

// Config carries implementation-specific settings, e.g. a model path for
// inference-only classifiers. Built-in trainable kinds ignore it.
type Config struct {
	Extra map[string]string
}

// Constructor creates a fresh, unfitted classifier.
type Constructor func(cfg Config) Classifier

var registry = map[string]Constructor{}

// Register adds a classifier constructor under the given kind.
func Register(kind string, ctor Constructor) {
	registry[kind] = ctor
}

// Get returns the constructor registered for kind.
func Get(kind string) (Constructor, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind: %s", kind)
	}
	return ctor, nil
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
