package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/goodpoints/goodpoints/internal/model"
)

// PlainFormatter formats good points as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := parseTemplate("plain", opts.Template)
		if err != nil {
			return nil, err
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes good points as plain text.
func (f *PlainFormatter) Format(w io.Writer, points []model.GoodPoint) error {
	for i := range points {
		if err := f.formatGoodPoint(w, i+1, &points[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatGoodPoint(w io.Writer, index int, g *model.GoodPoint) error {
	if f.template != nil {
		if err := f.template.Execute(w, templateData{GoodPoint: g, Index: index}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}

	sb.WriteString(g.StudentName)

	if f.opts.ShowClass && g.ClassID != "" {
		fmt.Fprintf(&sb, " <%s>", g.ClassID)
	}

	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", g.RelativeTime())
	}

	sb.WriteString("\n")

	text := g.Text
	if !f.opts.KeepNewline {
		text = strings.ReplaceAll(text, "\n", " ")
	}
	sb.WriteString("    " + truncate(text, f.opts.TextMaxLen) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
