package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rideaware/rideaware/internal/model"
	"github.com/rideaware/rideaware/internal/output"
)

func testRecord() output.Record {
	return output.Record{
		Text: "Schlagloch & Riss <Hauptstraße>",
		Result: model.Result{
			Category:     model.Infrastructure,
			Confidence:   0.75,
			ModelName:    "baseline",
			ModelVersion: "1.0",
		},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(output.Standard, false)
		out.Write(context.Background(), testRecord())
	})

	// Should be single line (NDJSON).
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["category"] != "Infrastrukturproblem" {
		t.Fatalf("expected category=Infrastrukturproblem, got %v", m["category"])
	}
	if m["text"] != "Schlagloch & Riss <Hauptstraße>" {
		t.Fatalf("text not preserved, got %v", m["text"])
	}
}

func TestOutputDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, false)
	if err := out.Write(context.Background(), testRecord()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "& Riss <Hauptstraße>") {
		t.Fatalf("expected raw text, got %s", buf.String())
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, true)
	out.Write(context.Background(), testRecord())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

func TestOutputMinimalOmitsText(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Minimal, false)
	out.Write(context.Background(), testRecord())

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["text"]; ok {
		t.Fatal("text should be omitted at Minimal")
	}
	if m["confidence"] != 0.75 {
		t.Fatalf("confidence should be preserved, got %v", m["confidence"])
	}
}
