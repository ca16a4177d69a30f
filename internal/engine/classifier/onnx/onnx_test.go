package onnx

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rideaware/rideaware/internal/engine/classifier"
	"github.com/rideaware/rideaware/internal/engine/vectorizer"
)

func TestRegistered(t *testing.T) {
	ctor, err := classifier.Get(Kind)
	require.NoError(t, err)

	c := ctor(classifier.Config{Extra: map[string]string{ExtraModelPath: "/models/x.onnx"}})
	require.IsType(t, &Classifier{}, c)
	assert.Equal(t, "/models/x.onnx", c.(*Classifier).ModelPath)
	assert.Equal(t, Kind, c.Kind())
}

func TestFitMissingModel(t *testing.T) {
	c := &Classifier{ModelPath: filepath.Join(t.TempDir(), "absent.onnx")}
	x := []vectorizer.Vector{{Indices: []int{0}, Values: []float64{1}}, {Indices: []int{1}, Values: []float64{1}}}

	err := c.Fit(x, []string{"b", "a"}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	// Labels are still bound so the failure is attributable.
	assert.Equal(t, []string{"a", "b"}, c.Classes())
}

func TestFitNoModelPath(t *testing.T) {
	c := &Classifier{}
	x := []vectorizer.Vector{{}, {}}
	err := c.Fit(x, []string{"a", "b"}, 2)
	assert.ErrorContains(t, err, "no model path")
}

func TestFitSingleClass(t *testing.T) {
	c := &Classifier{ModelPath: "m.onnx"}
	err := c.Fit([]vectorizer.Vector{{}, {}}, []string{"a", "a"}, 2)
	assert.ErrorContains(t, err, "at least 2 classes")
}

func TestPredictUnfitted(t *testing.T) {
	c := &Classifier{}
	_, err := c.PredictProba([]vectorizer.Vector{{}})
	assert.ErrorIs(t, err, classifier.ErrNotFitted)
}

func TestJSONRoundTripKeepsBinding(t *testing.T) {
	c := &Classifier{ModelPath: "m.onnx", Labels: []string{"a", "b"}, Dim: 7}
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got Classifier
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "m.onnx", got.ModelPath)
	assert.Equal(t, []string{"a", "b"}, got.Labels)
	assert.Equal(t, 7, got.Dim)
}

func TestCheckShape(t *testing.T) {
	assert.NoError(t, checkShape("input", []int64{-1, 10}, 10))
	assert.NoError(t, checkShape("input", []int64{-1, -1}, 10))
	assert.Error(t, checkShape("input", []int64{-1, 9}, 10))
	assert.Error(t, checkShape("output", []int64{-1, 5, 2}, 5))
}

func TestSoftmax(t *testing.T) {
	row := []float64{1, 2, 3}
	softmax(row)
	var sum float64
	for _, v := range row {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, row[2], row[1])
	assert.False(t, math.IsNaN(row[0]))
}
