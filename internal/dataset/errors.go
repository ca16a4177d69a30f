package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEvaluationFrozen is returned when a split is requested but an
// evaluation set already exists. The evaluation set is never regenerated.
var ErrEvaluationFrozen = errors.New("dataset: evaluation set already exists and is frozen")

// ValidationError reports a corpus that cannot be used as-is. It is fatal for
// the operation that detected it; nothing is written when it is returned.
type ValidationError struct {
	Source         string
	UnknownLabels  []string
	MissingColumns []string
	Reason         string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingColumns) > 0 {
		parts = append(parts, "missing columns "+quoteAll(e.MissingColumns))
	}
	if len(e.UnknownLabels) > 0 {
		parts = append(parts, "unknown labels "+quoteAll(e.UnknownLabels))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return fmt.Sprintf("dataset: invalid corpus %s: %s", e.Source, strings.Join(parts, "; "))
}

func quoteAll(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
