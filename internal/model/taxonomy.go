package model

// Category is one of the fixed hazard-report classes. The set is closed:
// values outside Labels() are never produced at the classification boundary.
type Category string

const (
	Obstacle       Category = "Hindernis"
	Infrastructure Category = "Infrastrukturproblem"
	Hazard         Category = "Gefahrenstelle"
	Positive       Category = "Positives Feedback"
	Spam           Category = "Spam"
)

// DefaultCategory is returned for reports that match nothing and for model
// output that is not a registered label.
const DefaultCategory = Infrastructure

var registry = [...]Category{Obstacle, Infrastructure, Hazard, Positive, Spam}

// Labels returns the label registry in canonical order.
func Labels() []Category {
	out := make([]Category, len(registry))
	copy(out, registry[:])
	return out
}

// LabelStrings returns the registry as plain strings, in canonical order.
func LabelStrings() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = string(c)
	}
	return out
}

// Valid reports whether c is a registered label.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the position of c in the registry, or -1.
func (c Category) Index() int {
	for i, r := range registry {
		if r == c {
			return i
		}
	}
	return -1
}

func (c Category) String() string { return string(c) }

// ParseCategory returns the registered label equal to s.
// Matching is exact: no trimming, no case folding.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// NormalizeCategory maps s onto the registry, substituting DefaultCategory
// for anything unknown.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return DefaultCategory
}
