package output

import (
	"encoding/json"
	"testing"

	"github.com/rideaware/rideaware/internal/model"
)

func baseRecord() Record {
	return Record{
		Text: "Glasscherben auf dem Radweg",
		Result: model.Result{
			Category:     model.Obstacle,
			Confidence:   0.8,
			ModelName:    "baseline",
			ModelVersion: "1.0",
		},
	}
}

func TestFormatRecordMinimal(t *testing.T) {
	r := FormatRecord(baseRecord(), Minimal)

	if r.Text != "" {
		t.Fatal("Text should be empty at Minimal")
	}
	if r.Category != model.Obstacle {
		t.Fatal("Category should be preserved")
	}
	if r.Confidence != 0.8 {
		t.Fatal("Confidence should be preserved")
	}
}

func TestFormatRecordStandard(t *testing.T) {
	r := FormatRecord(baseRecord(), Standard)
	if r != baseRecord() {
		t.Fatalf("Standard should preserve all fields, got %+v", r)
	}
}

func TestFormatRecordDoesNotMutateOriginal(t *testing.T) {
	orig := baseRecord()
	_ = FormatRecord(orig, Minimal)
	if orig.Text == "" {
		t.Fatal("original Text was mutated")
	}
}

func TestRecordJSONIsFlat(t *testing.T) {
	data, err := json.Marshal(baseRecord())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"text", "category", "confidence", "model_name", "model_version"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestMinimalJSONOmitsText(t *testing.T) {
	data, _ := json.Marshal(FormatRecord(baseRecord(), Minimal))
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["text"]; ok {
		t.Fatal("text should be omitted at Minimal")
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"", Standard, false},
		{"standard", Standard, false},
		{"minimal", Minimal, false},
		{"full", Standard, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerbosity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
