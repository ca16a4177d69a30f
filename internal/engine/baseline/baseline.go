// Package baseline is the deterministic keyword classifier used as the
// benchmark for trained models and as the fallback behind the runtime
// engine. It is a pure function of its input.
package baseline

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rideaware/rideaware/internal/model"
)

// Identity recorded on results produced by this classifier.
const (
	ModelName    = "baseline"
	ModelVersion = "1.0"
)

// DefaultConfidence is returned with model.DefaultCategory when no rule matches.
const DefaultConfidence = 0.55

// Rule is one priority tier: if any keyword occurs in the lower-cased text,
// the tier's category and confidence are returned.
type Rule struct {
	Category   model.Category
	Confidence float64
	Keywords   []string
}

// rules are evaluated in order; the first matching tier wins.
var rules = []Rule{
	{
		Category:   model.Spam,
		Confidence: 0.90,
		Keywords: []string{
			"http", "www", ".com", ".net", "buy", "free", "promo", "sale",
			"discount", "offer", "click", "subscribe", "abonnier", "follow",
			"coupon", "deal", "limited", "win money", "get rich",
		},
	},
	{
		Category:   model.Obstacle,
		Confidence: 0.80,
		Keywords: []string{
			"glas", "scherben", "stein", "felsen", "ast", "baum",
			"hindernis", "blockiert", "müll", "container",
			"obstacle", "debris", "branch", "rock", "blocked",
		},
	},
	{
		Category:   model.Hazard,
		Confidence: 0.78,
		Keywords: []string{
			"gefährlich", "gefahr", "unübersichtlich", "kreuzung",
			"zu schnell", "raser", "unfall", "beinahe", "beinaheunfall",
			"sicht schlecht", "keine sicht", "straße gesperrt",
			"dangerous", "near miss", "almost", "accident", "crash",
			"intersection", "poor visibility", "closed road",
		},
	},
	{
		// No location nouns (radweg, straße, lane, road): praise mentions them too.
		Category:   model.Infrastructure,
		Confidence: 0.75,
		Keywords: []string{
			"baustelle", "markierung", "beschilderung", "schlagloch", "riss",
			"infrastruktur", "surface", "construction", "markings", "sign",
		},
	},
	{
		Category:   model.Positive,
		Confidence: 0.70,
		Keywords: []string{
			"danke", "super", "gut", "toll", "perfekt", "endlich",
			"great", "nice", "good", "thanks", "love", "awesome",
		},
	},
}

// Rules returns a copy of the keyword table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Classify returns the category and confidence for text. It never fails:
// text matching no tier yields model.DefaultCategory at DefaultConfidence.
func Classify(text string) (model.Category, float64) {
	t := strings.ToLower(norm.NFC.String(text))
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(t, kw) {
				return r.Category, r.Confidence
			}
		}
	}
	return model.DefaultCategory, DefaultConfidence
}

// Result classifies text and stamps the baseline identity on the result.
func Result(text string) model.Result {
	c, conf := Classify(text)
	return model.Result{
		Category:     c,
		Confidence:   conf,
		ModelName:    ModelName,
		ModelVersion: ModelVersion,
	}
}

// Predict classifies each text and returns the labels as strings, matching
// the shape of a trained model's predictions.
func Predict(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		c, _ := Classify(t)
		out[i] = string(c)
	}
	return out
}
