// Package artifact persists fitted pipelines, one per model family, each
// with a small metadata sidecar. Files are published atomically so a reader
// never sees a partially written artifact.
package artifact

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rideaware/rideaware/internal/atomicfile"
	"github.com/rideaware/rideaware/internal/engine/pipeline"
)

var (
	// ErrUnavailable is returned when no artifact exists for a family.
	ErrUnavailable = errors.New("artifact: unavailable")
	// ErrCorrupt is returned when an artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("artifact: corrupt")
)

// Unknown is reported for metadata fields that were never recorded.
const Unknown = "unknown"

const (
	modelExt = ".model"
	metaExt  = ".meta.json"
)

// Metadata describes a persisted pipeline. ModelName and ModelVersion are
// the pair surfaced on every classification result; the rest is provenance.
type Metadata struct {
	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`
	Family       string    `json:"family,omitempty"`
	RunID        string    `json:"run_id,omitempty"`
	TrainedAt    time.Time `json:"trained_at,omitzero"`
	TrainSize    int       `json:"train_size,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
}

// Store is a directory of per-family artifacts:
//
//	<dir>/<family>.model      gzip-compressed pipeline
//	<dir>/<family>.meta.json  Metadata
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// ModelPath returns the blob path for family.
func (s *Store) ModelPath(family string) string {
	return filepath.Join(s.dir, family+modelExt)
}

// MetaPath returns the metadata sidecar path for family.
func (s *Store) MetaPath(family string) string {
	return filepath.Join(s.dir, family+metaExt)
}

// Save publishes m and its metadata under m.Family(). The model blob is
// written before the sidecar; only files belonging to that family are touched.
func (s *Store) Save(m pipeline.Model, meta Metadata) error {
	family := m.Family()
	if err := checkFamily(family); err != nil {
		return err
	}
	meta.Family = family

	err := atomicfile.Write(s.ModelPath(family), 0o644, func(w io.Writer) error {
		zw := gzip.NewWriter(w)
		if err := pipeline.Encode(zw, m); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return fmt.Errorf("artifact: save %s model: %w", family, err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode %s metadata: %w", family, err)
	}
	if err := atomicfile.WriteFile(s.MetaPath(family), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("artifact: save %s metadata: %w", family, err)
	}
	return nil
}

// Load reads the pipeline persisted for family.
func (s *Store) Load(family string) (pipeline.Model, error) {
	if err := checkFamily(family); err != nil {
		return nil, err
	}
	path := s.ModelPath(family)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, family, err)
		}
		return nil, fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	defer zr.Close()

	m, err := pipeline.Decode(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	if m.Family() != family {
		return nil, fmt.Errorf("%w: %s holds family %q", ErrCorrupt, path, m.Family())
	}
	return m, nil
}

// LoadMetadata reads the sidecar for family. A missing sidecar, or missing
// name/version fields, read as Unknown; an unreadable one is ErrCorrupt.
func (s *Store) LoadMetadata(family string) (Metadata, error) {
	if err := checkFamily(family); err != nil {
		return Metadata{}, err
	}
	meta := Metadata{Family: family}
	data, err := os.ReadFile(s.MetaPath(family))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Metadata{}, fmt.Errorf("artifact: read %s metadata: %w", family, err)
	default:
		if err := json.Unmarshal(data, &meta); err != nil {
			return Metadata{}, fmt.Errorf("%w: %s metadata: %w", ErrCorrupt, family, err)
		}
	}
	if meta.ModelName == "" {
		meta.ModelName = Unknown
	}
	if meta.ModelVersion == "" {
		meta.ModelVersion = Unknown
	}
	return meta, nil
}

// Families lists the families that have a model blob, sorted.
func (s *Store) Families() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("artifact: list %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, modelExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(name, modelExt))
	}
	sort.Strings(out)
	return out, nil
}

func checkFamily(family string) error {
	if family == "" || strings.ContainsAny(family, `/\`) || family == "." || family == ".." {
		return fmt.Errorf("artifact: invalid family name %q", family)
	}
	return nil
}
