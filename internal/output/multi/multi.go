// Package multi sends each classification record to several sinks at once,
// e.g. stdout plus a results file plus a webhook.
package multi

import (
	"context"
	"errors"

	"github.com/rideaware/rideaware/internal/output"
)

// Multi is an output.Output backed by a list of sinks, written in order.
// A failing sink does not stop the record from reaching the rest; its error
// is joined into the result.
type Multi struct {
	sinks []output.Output
}

// New returns a Multi over sinks. Nil entries are dropped.
func New(sinks ...output.Output) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write hands rec to every sink.
func (m *Multi) Write(ctx context.Context, rec output.Record) error {
	return m.each(func(s output.Output) error { return s.Write(ctx, rec) })
}

// Close closes every sink, even after one fails.
func (m *Multi) Close() error {
	return m.each(output.Output.Close)
}

func (m *Multi) each(fn func(output.Output) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
