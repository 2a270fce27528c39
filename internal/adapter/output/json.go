package output

import (
	"encoding/json"
	"io"

	"github.com/goodpoints/goodpoints/internal/model"
)

// JSONFormatter formats good points as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes good points as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, points []model.GoodPoint) error {
	if points == nil {
		points = []model.GoodPoint{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(points)
}

// FormatSingle writes a single good point as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, g *model.GoodPoint) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(g)
}
