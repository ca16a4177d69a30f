package model

// Result is the outcome of classifying one report. Category is always a
// registered label and Confidence always lies in [0, 1].
type Result struct {
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	ModelName    string   `json:"model_name"`
	ModelVersion string   `json:"model_version"`
}
