// Package rideaware classifies free-text cycling hazard reports into one of
// five fixed categories with a confidence in [0, 1].
//
// Quick start:
//
//	c := rideaware.New(rideaware.WithModelDir("model"))
//	r := c.Classify("Glasscherben auf dem Radweg")
//	fmt.Println(r.Category, r.Confidence, r.ModelName, r.ModelVersion)
//
// Classify never fails. The trained artifact is loaded on first use; when it
// is missing or misbehaves the keyword baseline answers instead and
// ModelName reads "baseline". A Classifier is safe for concurrent use and
// loads its artifact at most once, so create one and share it.
package rideaware
