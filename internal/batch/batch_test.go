package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rideaware/rideaware/internal/model"
	"github.com/rideaware/rideaware/internal/output"
)

// lengthClassifier labels texts by length parity and records every call.
type lengthClassifier struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (c *lengthClassifier) ClassifyBatch(_ context.Context, texts []string, _ int) ([]model.Result, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]string(nil), texts...))
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]model.Result, len(texts))
	for i, t := range texts {
		cat := model.Hazard
		if len(t)%2 == 0 {
			cat = model.Obstacle
		}
		out[i] = model.Result{Category: cat, Confidence: 0.8, ModelName: "fake", ModelVersion: "1"}
	}
	return out, nil
}

type recorder struct {
	records []output.Record
	err     error
	closed  bool
}

func (r *recorder) Write(_ context.Context, rec output.Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func texts(recs []output.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text
	}
	return out
}

func TestRun_PreservesOrderAndSkipsBlank(t *testing.T) {
	cls := &lengthClassifier{}
	out := &recorder{}
	r := New(cls, out, WithWorkers(4))

	input := "Ast auf dem Weg\n\n  Glatteis am Morgen  \n\t\nSchlagloch\n"
	stats, err := r.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ast auf dem Weg", "Glatteis am Morgen", "Schlagloch"}, texts(out.records))
	assert.Equal(t, Stats{Lines: 5, Blank: 2, Classified: 3, Unique: 3}, stats)
	assert.Equal(t, model.Hazard, out.records[0].Category)
	assert.Equal(t, model.Obstacle, out.records[1].Category)
}

func TestRun_DeduplicatesWithinChunk(t *testing.T) {
	cls := &lengthClassifier{}
	out := &recorder{}
	r := New(cls, out)

	input := "Scherben\nAst\nScherben\nScherben\nAst\n"
	stats, err := r.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, cls.calls, 1)
	assert.Equal(t, []string{"Scherben", "Ast"}, cls.calls[0])
	assert.Equal(t, []string{"Scherben", "Ast", "Scherben", "Scherben", "Ast"}, texts(out.records))
	assert.Equal(t, 5, stats.Classified)
	assert.Equal(t, 2, stats.Unique)
}

func TestRun_Chunks(t *testing.T) {
	cls := &lengthClassifier{}
	out := &recorder{}
	r := New(cls, out, WithChunkSize(2))

	stats, err := r.Run(context.Background(), strings.NewReader("a\nbb\nccc\ndddd\neeeee\n"))
	require.NoError(t, err)

	require.Len(t, cls.calls, 3)
	assert.Equal(t, []string{"a", "bb"}, cls.calls[0])
	assert.Equal(t, []string{"eeeee"}, cls.calls[2])
	assert.Equal(t, 5, stats.Classified)
}

func TestRun_EmptyInput(t *testing.T) {
	cls := &lengthClassifier{}
	out := &recorder{}

	stats, err := New(cls, out).Run(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, stats)
	assert.Empty(t, cls.calls)
}

func TestRun_ClassifierError(t *testing.T) {
	boom := errors.New("boom")
	r := New(&lengthClassifier{err: boom}, &recorder{})

	_, err := r.Run(context.Background(), strings.NewReader("x\n"))
	assert.ErrorIs(t, err, boom)
}

func TestRun_OutputError(t *testing.T) {
	boom := errors.New("disk full")
	r := New(&lengthClassifier{}, &recorder{err: boom})

	stats, err := r.Run(context.Background(), strings.NewReader("x\ny\n"))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, stats.Classified)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cls := &lengthClassifier{}

	_, err := New(cls, &recorder{}).Run(ctx, strings.NewReader("x\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cls.calls)
}

func TestClose(t *testing.T) {
	out := &recorder{}
	require.NoError(t, New(&lengthClassifier{}, out).Close())
	assert.True(t, out.closed)
}

func TestDedupe(t *testing.T) {
	unique, index := dedupe([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, unique)
	assert.Equal(t, []int{0, 1, 0, 2, 1}, index)
}
