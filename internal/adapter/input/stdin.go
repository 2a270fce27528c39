package input

import (
	"context"
	"io"
	"os"

	"github.com/goodpoints/goodpoints/internal/model"
)

// maxInputSize bounds what an import reads.
const maxInputSize = 10 * 1024 * 1024

// StdinAdapter reads good points from standard input.
type StdinAdapter struct {
	reader io.Reader
	opts   options
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter(opts ...Option) *StdinAdapter {
	return NewStdinAdapterWithReader(os.Stdin, opts...)
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader, opts ...Option) *StdinAdapter {
	a := &StdinAdapter{reader: r}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads good points from standard input, as a JSON array or as
// JSON lines.
func (a *StdinAdapter) Import(ctx context.Context) ([]model.GoodPoint, error) {
	return importFrom(ctx, a.Name(), a.reader, a.opts)
}

func importFrom(ctx context.Context, source string, r io.Reader, opts options) ([]model.GoodPoint, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize))
	if err != nil {
		return nil, &AdapterError{
			Source:  source,
			Message: "failed to read input",
			Err:     err,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parse(source, data, opts)
}
