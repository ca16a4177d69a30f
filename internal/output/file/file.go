// Package file appends classification records to an NDJSON file, optionally
// rolling it over into numbered generations once it grows past a size limit.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rideaware/rideaware/internal/output"
)

const (
	defaultBufSize = 64 * 1024
	defaultKeep    = 10
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize rolls the file over before a record would push it past limit
// bytes. Zero keeps a single ever-growing file.
func WithMaxSize(limit int64) Option {
	return func(o *Output) { o.maxSize = limit }
}

// WithBufSize sizes the write buffer.
func WithBufSize(size int) Option {
	return func(o *Output) { o.bufSize = size }
}

// WithKeep sets how many rolled-over generations (path.1 .. path.N) survive.
func WithKeep(n int) Option {
	return func(o *Output) {
		if n > 0 {
			o.keep = n
		}
	}
}

// WithTruncate starts from an empty file instead of appending.
func WithTruncate() Option {
	return func(o *Output) { o.truncate = true }
}

// Output is a buffered NDJSON sink. Records from concurrent writers are
// serialized; a record is never split across two generations.
type Output struct {
	mu        sync.Mutex
	f         *os.File
	w         *bufio.Writer
	size      int64 // bytes in the current generation, buffered ones included
	path      string
	verbosity output.Verbosity
	maxSize   int64
	keep      int
	bufSize   int
	truncate  bool
}

// New opens path for appending (or truncation with WithTruncate).
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:      path,
		verbosity: verbosity,
		keep:      defaultKeep,
		bufSize:   defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	mode := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if o.truncate {
		mode |= os.O_TRUNC
	}
	if err := o.open(mode); err != nil {
		return nil, err
	}
	return o, nil
}

// Write appends rec as one JSON line.
func (o *Output) Write(_ context.Context, rec output.Record) error {
	line, err := json.Marshal(output.FormatRecord(rec, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	line = append(line, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	// An oversized record still goes into a fresh generation of its own.
	if o.maxSize > 0 && o.size > 0 && o.size+int64(len(line)) > o.maxSize {
		if err := o.rollover(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(line)
	o.size += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	flushErr := o.w.Flush()
	closeErr := o.f.Close()
	if flushErr != nil {
		return fmt.Errorf("file output: flush: %w", flushErr)
	}
	return closeErr
}

func (o *Output) open(mode int) error {
	f, err := os.OpenFile(o.path, mode, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f, o.w, o.size = f, bufio.NewWriterSize(f, o.bufSize), info.Size()
	return nil
}

// rollover retires the current file as generation 1, ages older generations
// by one and drops the one past keep.
func (o *Output) rollover() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}

	_ = os.Remove(generation(o.path, o.keep))
	for g := o.keep - 1; g >= 1; g-- {
		_ = os.Rename(generation(o.path, g), generation(o.path, g+1))
	}
	if err := os.Rename(o.path, generation(o.path, 1)); err != nil {
		return err
	}
	return o.open(os.O_CREATE | os.O_WRONLY | os.O_APPEND)
}

func generation(path string, g int) string {
	return fmt.Sprintf("%s.%d", path, g)
}
