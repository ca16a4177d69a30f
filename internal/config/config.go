// Package config loads rideaware settings. Precedence, lowest first:
// built-in defaults, an optional YAML file, RIDEAWARE_* environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "RIDEAWARE_CONFIG"

// Config holds all rideaware configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Model  ModelConfig  `yaml:"model"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// DataConfig locates the corpus and the files derived from it.
type DataConfig struct {
	CorpusPath   string  `yaml:"corpus_path"`
	PoolPath     string  `yaml:"pool_path"`
	EvalPath     string  `yaml:"eval_path"`
	TrainPath    string  `yaml:"train_path"`
	EvalFraction float64 `yaml:"eval_fraction"`
	Seed         uint64  `yaml:"seed"`
}

// ModelConfig holds artifact store and training settings.
type ModelConfig struct {
	Dir           string   `yaml:"dir"`
	PrimaryFamily string   `yaml:"primary_family"`
	Families      []string `yaml:"families"`
	Version       string   `yaml:"version"`
	ONNXPath      string   `yaml:"onnx_path"`
	Workers       int      `yaml:"workers"`
}

// OutputConfig holds settings for classification result sinks.
type OutputConfig struct {
	Verbosity  string `yaml:"verbosity"` // "standard", "minimal"
	Pretty     bool   `yaml:"pretty"`
	WebhookURL string `yaml:"webhook_url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text", "json"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			CorpusPath:   "data/train.csv",
			PoolPath:     "data/train_pool.csv",
			EvalPath:     "data/test.csv",
			TrainPath:    "data/train_split.csv",
			EvalFraction: 0.25,
			Seed:         42,
		},
		Model: ModelConfig{
			Dir:           "model",
			PrimaryFamily: "logreg",
			Families:      []string{"logreg", "naivebayes"},
			Version:       "1.0",
			ONNXPath:      "model/classifier.onnx",
			Workers:       4,
		},
		Output: OutputConfig{
			Verbosity: "standard",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// $RIDEAWARE_CONFIG when path is empty) and the environment. No file is
// read when both are empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Data.EvalFraction <= 0 || c.Data.EvalFraction >= 1 {
		return fmt.Errorf("config: data.eval_fraction must be in (0, 1), got %v", c.Data.EvalFraction)
	}
	if c.Model.Workers < 1 {
		return fmt.Errorf("config: model.workers must be at least 1, got %d", c.Model.Workers)
	}
	if c.Model.PrimaryFamily == "" {
		return fmt.Errorf("config: model.primary_family is empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Data.CorpusPath = getenv("RIDEAWARE_CORPUS_PATH", cfg.Data.CorpusPath)
	cfg.Data.PoolPath = getenv("RIDEAWARE_POOL_PATH", cfg.Data.PoolPath)
	cfg.Data.EvalPath = getenv("RIDEAWARE_EVAL_PATH", cfg.Data.EvalPath)
	cfg.Data.TrainPath = getenv("RIDEAWARE_TRAIN_PATH", cfg.Data.TrainPath)
	cfg.Data.EvalFraction = getenvFloat("RIDEAWARE_EVAL_FRACTION", cfg.Data.EvalFraction)
	cfg.Data.Seed = getenvUint("RIDEAWARE_SEED", cfg.Data.Seed)

	cfg.Model.Dir = getenv("RIDEAWARE_MODEL_DIR", cfg.Model.Dir)
	cfg.Model.PrimaryFamily = getenv("RIDEAWARE_MODEL_FAMILY", cfg.Model.PrimaryFamily)
	cfg.Model.Families = getenvList("RIDEAWARE_MODEL_FAMILIES", cfg.Model.Families)
	cfg.Model.Version = getenv("RIDEAWARE_MODEL_VERSION", cfg.Model.Version)
	cfg.Model.ONNXPath = getenv("RIDEAWARE_ONNX_PATH", cfg.Model.ONNXPath)
	cfg.Model.Workers = getenvInt("RIDEAWARE_WORKERS", cfg.Model.Workers)

	cfg.Output.Verbosity = getenv("RIDEAWARE_VERBOSITY", cfg.Output.Verbosity)
	cfg.Output.Pretty = getenvBool("RIDEAWARE_OUTPUT_PRETTY", cfg.Output.Pretty)
	cfg.Output.WebhookURL = getenv("RIDEAWARE_WEBHOOK_URL", cfg.Output.WebhookURL)

	cfg.Log.Level = getenv("RIDEAWARE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("RIDEAWARE_LOG_FORMAT", cfg.Log.Format)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getenvList splits a comma-separated variable, dropping empty items.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
