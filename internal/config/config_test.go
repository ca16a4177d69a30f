package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var allEnv = []string{
	EnvConfigPath,
	"RIDEAWARE_CORPUS_PATH", "RIDEAWARE_POOL_PATH", "RIDEAWARE_EVAL_PATH", "RIDEAWARE_TRAIN_PATH",
	"RIDEAWARE_EVAL_FRACTION", "RIDEAWARE_SEED",
	"RIDEAWARE_MODEL_DIR", "RIDEAWARE_MODEL_FAMILY", "RIDEAWARE_MODEL_FAMILIES",
	"RIDEAWARE_MODEL_VERSION", "RIDEAWARE_ONNX_PATH", "RIDEAWARE_WORKERS",
	"RIDEAWARE_VERBOSITY", "RIDEAWARE_OUTPUT_PRETTY", "RIDEAWARE_WEBHOOK_URL",
	"RIDEAWARE_LOG_LEVEL", "RIDEAWARE_LOG_FORMAT",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rideaware.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load() = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Data.EvalFraction != 0.25 || cfg.Data.Seed != 42 {
		t.Fatalf("unexpected split defaults: %+v", cfg.Data)
	}
	if cfg.Model.PrimaryFamily != "logreg" {
		t.Fatalf("expected default family logreg, got %q", cfg.Model.PrimaryFamily)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
data:
  eval_fraction: 0.2
  seed: 7
model:
  dir: /var/lib/rideaware
  families: [logreg, centroid]
log:
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Data.EvalFraction != 0.2 || cfg.Data.Seed != 7 {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Model.Dir != "/var/lib/rideaware" {
		t.Errorf("model.dir = %q", cfg.Model.Dir)
	}
	if !reflect.DeepEqual(cfg.Model.Families, []string{"logreg", "centroid"}) {
		t.Errorf("model.families = %v", cfg.Model.Families)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q", cfg.Log.Format)
	}
	// Unset keys keep their defaults.
	if cfg.Data.CorpusPath != "data/train.csv" {
		t.Errorf("data.corpus_path = %q, want default", cfg.Data.CorpusPath)
	}
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeFile(t, "model:\n  version: \"2.1\"\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.Version != "2.1" {
		t.Fatalf("model.version = %q, want 2.1", cfg.Model.Version)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "model:\n  primary_family: naivebayes\n  workers: 2\n")
	t.Setenv("RIDEAWARE_MODEL_FAMILY", "centroid")
	t.Setenv("RIDEAWARE_MODEL_FAMILIES", "logreg, naivebayes ,,centroid")
	t.Setenv("RIDEAWARE_SEED", "1234")
	t.Setenv("RIDEAWARE_OUTPUT_PRETTY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.PrimaryFamily != "centroid" {
		t.Errorf("primary_family = %q, want centroid", cfg.Model.PrimaryFamily)
	}
	if cfg.Model.Workers != 2 {
		t.Errorf("workers = %d, want 2 from file", cfg.Model.Workers)
	}
	if !reflect.DeepEqual(cfg.Model.Families, []string{"logreg", "naivebayes", "centroid"}) {
		t.Errorf("families = %v", cfg.Model.Families)
	}
	if cfg.Data.Seed != 1234 {
		t.Errorf("seed = %d, want 1234", cfg.Data.Seed)
	}
	if !cfg.Output.Pretty {
		t.Error("expected Pretty=true")
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RIDEAWARE_EVAL_FRACTION", "lots")
	t.Setenv("RIDEAWARE_WORKERS", "many")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Data.EvalFraction != 0.25 {
		t.Errorf("eval_fraction = %v, want fallback 0.25", cfg.Data.EvalFraction)
	}
	if cfg.Model.Workers != 4 {
		t.Errorf("workers = %d, want fallback 4", cfg.Model.Workers)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "data: [", "parse"},
		{"fraction", "data:\n  eval_fraction: 1.5\n", "eval_fraction"},
		{"workers", "model:\n  workers: 0\n", "workers"},
		{"log format", "log:\n  format: xml\n", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
