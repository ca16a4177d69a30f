package rideaware

// Result is the classification of one report.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	Category     string  `json:"category"`      // one of Labels()
	Confidence   float64 `json:"confidence"`    // in [0, 1]
	ModelName    string  `json:"model_name"`    // e.g. "tfidf+logreg", "baseline"
	ModelVersion string  `json:"model_version"` // "unknown" when the artifact has no metadata
}
