package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goodpoints/goodpoints/internal/model"
)

// YAMLFormatter formats good points as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes good points as YAML.
func (f *YAMLFormatter) Format(w io.Writer, points []model.GoodPoint) error {
	if points == nil {
		points = []model.GoodPoint{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(points); err != nil {
		return err
	}
	return enc.Close()
}
