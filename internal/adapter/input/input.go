// Package input provides input adapters that import good points.
package input

import (
	"context"

	"github.com/goodpoints/goodpoints/internal/model"
)

// InputAdapter fetches good points from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin", "file").
	Name() string

	// Import fetches good points from the source.
	Import(ctx context.Context) ([]model.GoodPoint, error)
}

// StudentResolver looks up a student's name and class by ID.
type StudentResolver func(studentID string) (name, classID string, ok bool)

// Option configures an adapter.
type Option func(*options)

type options struct {
	resolve StudentResolver
	teacher string
}

// WithResolver fills in student names and classes missing from entries.
func WithResolver(r StudentResolver) Option {
	return func(o *options) { o.resolve = r }
}

// WithTeacher stamps entries that name no teacher.
func WithTeacher(name string) Option {
	return func(o *options) { o.teacher = name }
}

// NewAdapter creates an InputAdapter for the specified source: "stdin"
// (or empty) reads standard input, anything else is read as a file path.
func NewAdapter(source string, opts ...Option) (InputAdapter, error) {
	switch source {
	case "", "stdin", "-":
		return NewStdinAdapter(opts...), nil
	default:
		return NewFileAdapter(source, opts...), nil
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
