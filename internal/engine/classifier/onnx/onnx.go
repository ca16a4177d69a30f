// Package onnx provides an inference-only classifier head backed by an
// exported ONNX model. It is registered under the "onnx" kind; import it
// for its side effect:
//
//	import _ "github.com/rideaware/rideaware/internal/engine/classifier/onnx"
//
// The model must take a float32 input of shape [batch, dim] (the TF-IDF
// width) and return class scores of shape [batch, K], with columns in
// sorted label order.
package onnx

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/rideaware/rideaware/internal/engine/classifier"
	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

// Kind is the registry name of the ONNX head.
const Kind = "onnx"

// ExtraModelPath is the classifier.Config key holding the .onnx file path.
const ExtraModelPath = "model_path"

func init() {
	classifier.Register(Kind, func(cfg classifier.Config) classifier.Classifier {
		return &Classifier{ModelPath: cfg.Extra[ExtraModelPath]}
	})
}

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Classifier scores TF-IDF vectors with an external ONNX graph. Fit does
// not learn anything; it binds the label set and feature width and checks
// them against the graph's tensor shapes.
type Classifier struct {
	ModelPath string   `json:"model_path"`
	Labels    []string `json:"classes"`
	Dim       int      `json:"dim"`

	mu      sync.Mutex
	session *session
}

func (c *Classifier) Kind() string { return Kind }

func (c *Classifier) Classes() []string {
	out := make([]string, len(c.Labels))
	copy(out, c.Labels)
	return out
}

// Fit binds the sorted label set of y and the vector width dim, then opens
// the model to confirm its shapes agree.
func (c *Classifier) Fit(x []vectorizer.Vector, y []string, dim int) error {
	if len(x) != len(y) {
		return fmt.Errorf("onnx: %d samples but %d labels", len(x), len(y))
	}
	set := map[string]struct{}{}
	for _, label := range y {
		set[label] = struct{}{}
	}
	if len(set) < 2 {
		return fmt.Errorf("onnx: need samples of at least 2 classes, got %d", len(set))
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.close()
		c.session = nil
	}
	c.Labels = labels
	c.Dim = dim
	_, err := c.open()
	return err
}

// Predict returns the highest-scoring class per vector.
func (c *Classifier) Predict(x []vectorizer.Vector) ([]string, error) {
	rows, err := c.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = c.Labels[best]
	}
	return out, nil
}

// PredictProba runs the graph on x. Rows that do not already sum to one
// are treated as logits and passed through softmax.
func (c *Classifier) PredictProba(x []vectorizer.Vector) ([][]float64, error) {
	if len(c.Labels) == 0 || c.Dim <= 0 {
		return nil, classifier.ErrNotFitted
	}
	if len(x) == 0 {
		return [][]float64{}, nil
	}

	dense := make([]float32, len(x)*c.Dim)
	for i, v := range x {
		base := i * c.Dim
		for p, j := range v.Indices {
			if j < 0 || j >= c.Dim {
				return nil, fmt.Errorf("onnx: feature %d outside [0, %d)", j, c.Dim)
			}
			dense[base+j] = float32(v.Values[p])
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	flat, err := s.infer(dense, int64(len(x)), int64(c.Dim))
	if err != nil {
		return nil, err
	}

	k := len(c.Labels)
	rows := make([][]float64, len(x))
	for i := range rows {
		row := make([]float64, k)
		var sum float64
		for j := 0; j < k; j++ {
			row[j] = float64(flat[i*k+j])
			sum += row[j]
		}
		if math.Abs(sum-1) > 1e-3 {
			softmax(row)
		}
		rows[i] = row
	}
	return rows, nil
}

// Close releases the runtime session, if one is open.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.close()
	c.session = nil
	return err
}

// open returns the cached session, creating it on first use. Callers hold mu.
func (c *Classifier) open() (*session, error) {
	if c.session != nil {
		return c.session, nil
	}
	if c.ModelPath == "" {
		return nil, errors.New("onnx: no model path configured")
	}
	if _, err := os.Stat(c.ModelPath); err != nil {
		return nil, fmt.Errorf("onnx: model file: %w", err)
	}
	s, err := newSession(c.ModelPath, int64(c.Dim), int64(len(c.Labels)))
	if err != nil {
		return nil, err
	}
	c.session = s
	return s, nil
}

// session wraps a DynamicAdvancedSession for a single-input,
// single-output classification graph.
type session struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	classes    int64
}

// newSession loads the model and validates its tensor shapes against the
// expected feature width and class count. Dynamic dimensions (<= 0) are
// accepted.
func newSession(modelPath string, dim, classes int64) (*session, error) {
	// The runtime shared library ships next to the model file.
	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	if err := checkShape("input", inputs[0].Dimensions, dim); err != nil {
		return nil, err
	}
	if err := checkShape("output", outputs[0].Dimensions, classes); err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(2)
	opts.SetInterOpNumThreads(1)

	s, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	return &session{
		session:    s,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		classes:    classes,
	}, nil
}

// checkShape requires a 2D [batch, width] tensor whose width is either
// dynamic or equal to want.
func checkShape(role string, dims ort.Shape, want int64) error {
	if len(dims) != 2 {
		return fmt.Errorf("onnx: expected 2D %s tensor, got %v", role, dims)
	}
	if dims[1] > 0 && dims[1] != want {
		return fmt.Errorf("onnx: %s width %d does not match %d", role, dims[1], want)
	}
	return nil
}

// infer runs one batch. features is a flat [batch * dim] slice; the result
// is a flat [batch * classes] slice.
func (s *session) infer(features []float32, batch, dim int64) ([]float32, error) {
	in, err := ort.NewTensor(ort.NewShape(batch, dim), features)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(batch, s.classes))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := out.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}

func (s *session) close() error {
	return s.session.Destroy()
}

func softmax(row []float64) {
	peak := row[0]
	for _, v := range row[1:] {
		peak = math.Max(peak, v)
	}
	var sum float64
	for i, v := range row {
		row[i] = math.Exp(v - peak)
		sum += row[i]
	}
	for i := range row {
		row[i] /= sum
	}
}
