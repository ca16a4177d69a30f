// Package corpus embeds a small labeled set of hazard reports used by tests
// and by `rideaware split --sample` to bootstrap a data directory.
package corpus

import (
	"bytes"
	_ "embed"
	"io"
)

//go:embed reports.csv
var reportsCSV []byte

// Reader returns a fresh reader over the embedded CSV corpus
// (columns: text, label).
func Reader() io.Reader {
	return bytes.NewReader(reportsCSV)
}

// Bytes returns a copy of the embedded CSV corpus.
func Bytes() []byte {
	out := make([]byte, len(reportsCSV))
	copy(out, reportsCSV)
	return out
}
