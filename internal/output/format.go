package output

import "fmt"

// Verbosity selects which record fields a sink emits.
type Verbosity int

const (
	// Standard emits the report text alongside the result.
	Standard Verbosity = iota
	// Minimal emits the result only.
	Minimal
)

// ParseVerbosity maps "standard" or "minimal" to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch s {
	case "", "standard":
		return Standard, nil
	case "minimal":
		return Minimal, nil
	default:
		return Standard, fmt.Errorf("output: unknown verbosity %q", s)
	}
}

// FormatRecord returns a copy of rec with fields stripped according to verbosity.
// At Minimal the report text is dropped (omitted from JSON via omitempty).
func FormatRecord(rec Record, verbosity Verbosity) Record {
	if verbosity == Minimal {
		rec.Text = ""
	}
	return rec
}
