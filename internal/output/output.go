// Package output delivers classification records to their destinations.
package output

import (
	"context"

	"github.com/rideaware/rideaware/internal/model"
)

// Record is one classified report as written by sinks.
type Record struct {
	Text string `json:"text,omitempty"`
	model.Result
}

// Output defines the interface for record destinations.
type Output interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}
