package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/goodpoints/goodpoints/internal/model"
)

// LineFormatter writes one good point per line, for piping into pickers
// such as fzf or rofi.
type LineFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewLineFormatter creates a new line formatter.
func NewLineFormatter(opts FormatterOptions) (*LineFormatter, error) {
	f := &LineFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := parseTemplate("line", opts.Template)
		if err != nil {
			return nil, err
		}
		f.template = tmpl
	}
	return f, nil
}

// Format writes good points one per line.
func (f *LineFormatter) Format(w io.Writer, points []model.GoodPoint) error {
	for i := range points {
		line, err := f.formatLine(i+1, &points[i])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine renders: index | time | student | class | text
func (f *LineFormatter) formatLine(index int, g *model.GoodPoint) (string, error) {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{GoodPoint: g, Index: index}); err != nil {
			return "", err
		}
		return strings.ReplaceAll(buf.String(), "\n", " "), nil
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, shortTime(g.CreatedAt))
	}
	parts = append(parts, g.StudentName)
	if f.opts.ShowClass && g.ClassID != "" {
		parts = append(parts, g.ClassID)
	}
	parts = append(parts, sanitizeText(g.Text, f.opts.TextMaxLen, f.opts.KeepNewline))

	return strings.Join(parts, sep), nil
}

// templateData is what custom templates see: the good point's fields and
// methods plus its 1-based position.
type templateData struct {
	*model.GoodPoint
	Index int
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return tmpl, nil
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return truncate(s, maxLen)
		},
		"formatTime": formatTime,
		"reltime": func(ts int64) string {
			return humanize.Time(time.Unix(ts, 0))
		},
		"short": shortTime,
		"upper": strings.ToUpper,
	}
}

func formatTime(ts int64) string {
	if ts == 0 {
		return "unknown"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04")
}

// shortTime returns a compact age such as "5m" or "2w".
func shortTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}

	d := time.Since(time.Unix(timestamp, 0))

	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// truncate cuts s to maxLen characters, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// sanitizeText cleans up text for single-line display.
func sanitizeText(text string, maxLen int, keepNewline bool) string {
	if !keepNewline {
		text = strings.ReplaceAll(text, "\n", " ")
		text = strings.ReplaceAll(text, "\r", "")
	}

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}

	return truncate(strings.TrimSpace(text), maxLen)
}
