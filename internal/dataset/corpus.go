// Package dataset reads, validates, partitions and materializes labeled
// hazard-report corpora.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rideaware/rideaware/internal/atomicfile"
	"github.com/rideaware/rideaware/internal/model"
)

// Column names every corpus file must carry. Extra columns are ignored.
const (
	ColumnText  = "text"
	ColumnLabel = "label"
)

// Read parses a CSV corpus. source names the input in error messages.
// Any malformed row, missing column or unknown label rejects the whole input.
func Read(r io.Reader, source string) ([]model.LabeledExample, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ValidationError{Source: source, MissingColumns: []string{ColumnText, ColumnLabel}}
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s header: %w", source, err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case ColumnText:
			textCol = i
		case ColumnLabel:
			labelCol = i
		}
	}
	var missing []string
	if textCol < 0 {
		missing = append(missing, ColumnText)
	}
	if labelCol < 0 {
		missing = append(missing, ColumnLabel)
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Source: source, MissingColumns: missing}
	}

	var (
		examples []model.LabeledExample
		unknown  = map[string]struct{}{}
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read %s: %w", source, err)
		}
		raw := rec[labelCol]
		label, ok := model.ParseCategory(raw)
		if !ok {
			unknown[raw] = struct{}{}
			continue
		}
		examples = append(examples, model.LabeledExample{Text: rec[textCol], Label: label})
	}

	if len(unknown) > 0 {
		bad := make([]string, 0, len(unknown))
		for l := range unknown {
			bad = append(bad, l)
		}
		sort.Strings(bad)
		return nil, &ValidationError{Source: source, UnknownLabels: bad}
	}
	return examples, nil
}

// Load reads and validates the corpus file at path. A missing file is
// reported with an error wrapping os.ErrNotExist.
func Load(path string) ([]model.LabeledExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Write encodes examples as a two-column CSV (text, label).
func Write(w io.Writer, examples []model.LabeledExample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnText, ColumnLabel}); err != nil {
		return err
	}
	for _, e := range examples {
		if err := cw.Write([]string{e.Text, string(e.Label)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save atomically writes examples to path.
func Save(path string, examples []model.LabeledExample) error {
	if err := Validate(examples, path); err != nil {
		return err
	}
	return atomicfile.Write(path, 0o644, func(w io.Writer) error {
		return Write(w, examples)
	})
}

// Validate checks that every example carries a registered label.
func Validate(examples []model.LabeledExample, source string) error {
	unknown := map[string]struct{}{}
	for _, e := range examples {
		if !e.Label.Valid() {
			unknown[string(e.Label)] = struct{}{}
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	bad := make([]string, 0, len(unknown))
	for l := range unknown {
		bad = append(bad, l)
	}
	sort.Strings(bad)
	return &ValidationError{Source: source, UnknownLabels: bad}
}

// Exists reports whether a corpus file is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("dataset: %w", err)
}

// Distribution counts examples per label.
func Distribution(examples []model.LabeledExample) map[model.Category]int {
	counts := make(map[model.Category]int, len(model.Labels()))
	for _, e := range examples {
		counts[e.Label]++
	}
	return counts
}

// DistributionAttrs flattens a distribution into slog key/value pairs in
// registry order.
func DistributionAttrs(examples []model.LabeledExample) []any {
	counts := Distribution(examples)
	attrs := make([]any, 0, 2*len(model.Labels()))
	for _, c := range model.Labels() {
		attrs = append(attrs, string(c), counts[c])
	}
	return attrs
}
