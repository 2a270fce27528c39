// Package output provides output formatters for good points.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/goodpoints/goodpoints/internal/model"
)

// Formatter formats good points for output.
type Formatter interface {
	// Format writes formatted good points to the writer.
	Format(w io.Writer, points []model.GoodPoint) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatLine  FormatType = "line"
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists the accepted format names.
func FormatTypes() []FormatType {
	return []FormatType{FormatLine, FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
// An empty format means plain.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatLine:
		return NewLineFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %s)", format, joinFormats())
	}
}

func joinFormats() string {
	names := make([]string, 0, len(FormatTypes()))
	for _, f := range FormatTypes() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom text/template for line/plain format
	ShowIndex   bool   // Show 1-based index prefix
	ShowTime    bool   // Show relative time
	ShowClass   bool   // Show class ID
	TextMaxLen  int    // Maximum text length (0 = unlimited)
	Separator   string // Field separator for line format
	KeepNewline bool   // Keep newlines in text (default: replace with space)
}

// DefaultFormatterOptions returns sensible defaults for line output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		ShowClass:  true,
		TextMaxLen: 80,
		Separator:  " | ",
	}
}

// FormatField returns a single field of a good point.
func FormatField(g *model.GoodPoint, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return g.ID
	case "student", "student_name", "name":
		return g.StudentName
	case "student_id":
		return g.StudentID
	case "class", "class_id":
		return g.ClassID
	case "teacher":
		return g.Teacher
	case "preset", "preset_id":
		return g.PresetID
	case "source":
		return g.Source
	case "time", "created_at":
		return formatTime(g.CreatedAt)
	case "all", "full":
		return fmt.Sprintf("%s\n%s", g.StudentName, g.Text)
	default:
		return g.Text
	}
}
