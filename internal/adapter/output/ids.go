package output

import (
	"fmt"
	"io"

	"github.com/goodpoints/goodpoints/internal/model"
)

// IDsFormatter outputs just the good point IDs, one per line.
// Useful for piping to other commands (e.g., goodpoints delete --stdin).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, points []model.GoodPoint) error {
	for _, g := range points {
		if _, err := fmt.Fprintln(w, g.ID); err != nil {
			return err
		}
	}
	return nil
}
