package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rideaware/rideaware/internal/model"
	"github.com/rideaware/rideaware/internal/output"
)

func testRecord(text string) output.Record {
	return output.Record{
		Text: text,
		Result: model.Result{
			Category:     model.Obstacle,
			Confidence:   0.8,
			ModelName:    "baseline",
			ModelVersion: "1.0",
		},
	}
}

// collector is an httptest handler that stores every posted batch.
type collector struct {
	mu      sync.Mutex
	batches [][]output.Record
}

func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var batch []output.Record
	json.Unmarshal(body, &batch)
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
	w.WriteHeader(200)
}

func (c *collector) snapshot() [][]output.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]output.Record(nil), c.batches...)
}

func TestBatchFlushAtBatchSize(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col)
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(3), WithFlushInterval(10*time.Second))
	for i := 0; i < 3; i++ {
		if err := out.Write(context.Background(), testRecord("Ast auf dem Weg")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}

	got := col.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(got[0]))
	}
	if got[0][0].Category != model.Obstacle || got[0][0].Text != "Ast auf dem Weg" {
		t.Errorf("unexpected record %+v", got[0][0])
	}
}

func TestTimerFlushBeforeBatchSize(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col)
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(100*time.Millisecond))
	out.Write(context.Background(), testRecord("timer"))

	time.Sleep(300 * time.Millisecond)

	got := col.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 timer-triggered batch, got %d", len(got))
	}
	if len(got[0]) != 1 {
		t.Errorf("batch size = %d, want 1", len(got[0]))
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(10*time.Millisecond))
	if err := out.Write(context.Background(), testRecord("retry")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(503)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Millisecond))
	if err := out.Write(context.Background(), testRecord("down")); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if n := attempts.Load(); n != maxRetries+1 {
		t.Errorf("attempts = %d, want %d", n, maxRetries+1)
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(400)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	err := out.Write(context.Background(), testRecord("client-error"))
	if err == nil {
		t.Error("expected error for 400 response")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for 4xx, got %d", attempts.Load())
	}
}

func TestCustomHeaders(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("X-Custom-Auth"))
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL,
		WithBatchSize(1),
		WithHeaders(map[string]string{"X-Custom-Auth": "secret123"}),
	)
	out.Write(context.Background(), testRecord("headers"))

	if got, _ := gotAuth.Load().(string); got != "secret123" {
		t.Errorf("custom header = %q, want secret123", got)
	}
}

func TestMinimalVerbosityDropsText(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col)
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithVerbosity(output.Minimal))
	out.Write(context.Background(), testRecord("private"))

	got := col.snapshot()
	if len(got) != 1 || got[0][0].Text != "" {
		t.Fatalf("expected text stripped, got %+v", got)
	}
}

func TestTimerFlushErrorCallbackInvoked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
	}))
	defer srv.Close()

	var errCount atomic.Int64
	out := New(srv.URL,
		WithBatchSize(100),
		WithFlushInterval(50*time.Millisecond),
		WithOnError(func(err error) { errCount.Add(1) }),
	)
	out.Write(context.Background(), testRecord("timer-error"))

	time.Sleep(300 * time.Millisecond)

	if errCount.Load() != 1 {
		t.Errorf("expected error callback called 1 time, got %d", errCount.Load())
	}
	out.Close()
}

func TestCloseFlushesRemaining(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col)
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(10*time.Second))
	out.Write(context.Background(), testRecord("close-flush"))
	out.Write(context.Background(), testRecord("close-flush"))

	if err := out.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	got := col.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch on Close, got %d", len(got))
	}
	if len(got[0]) != 2 {
		t.Errorf("batch size = %d, want 2", len(got[0]))
	}
}

func TestCanceledContextStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out := New(srv.URL, WithBatchSize(1), WithBackoff(time.Hour))

	done := make(chan error, 1)
	go func() { done <- out.Write(ctx, testRecord("cancel")) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Write did not return after cancel")
	}
}
