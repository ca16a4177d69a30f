package rideaware

type options struct {
	modelDir string
	family   string
	workers  int
}

// Option configures a Classifier.
type Option func(*options)

// WithModelDir sets the directory holding the trained artifacts. Default: "model".
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithFamily selects which trained model family to serve. Default: "logreg".
func WithFamily(name string) Option {
	return func(o *options) {
		o.family = name
	}
}

// WithWorkers bounds the goroutines ClassifyBatch uses. Default: 4.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func defaultOptions() options {
	return options{
		modelDir: "model",
		family:   "logreg",
		workers:  4,
	}
}
