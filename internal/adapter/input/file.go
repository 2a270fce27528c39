package input

import (
	"context"
	"os"

	"github.com/goodpoints/goodpoints/internal/model"
)

// FileAdapter imports good points from a file, such as a history file
// copied from another machine or a JSON export.
type FileAdapter struct {
	path string
	opts options
}

// NewFileAdapter creates a new FileAdapter.
func NewFileAdapter(path string, opts ...Option) *FileAdapter {
	a := &FileAdapter{path: path}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a
}

// Name returns the adapter identifier.
func (a *FileAdapter) Name() string {
	return "file"
}

// Import reads the file.
func (a *FileAdapter) Import(ctx context.Context) ([]model.GoodPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(a.path)
	if err != nil {
		return nil, &AdapterError{Source: a.path, Message: "failed to open", Err: err}
	}
	defer f.Close()

	return importFrom(ctx, a.path, f, a.opts)
}
