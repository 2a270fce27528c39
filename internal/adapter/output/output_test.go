package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/model"
)

func testGoodPoints() []model.GoodPoint {
	now := time.Now()
	return []model.GoodPoint{
		{
			ID:          "01HQGXK5P00000000000000001",
			Source:      model.SourceTUI,
			StudentID:   "s1",
			StudentName: "Dana Levi",
			ClassID:     "7b",
			Text:        "Great participation in class today",
			CreatedAt:   now.Add(-5 * time.Minute).Unix(),
		},
		{
			ID:          "01HQGXK5P00000000000000002",
			Source:      model.SourceCLI,
			StudentID:   "s2",
			StudentName: "Avi Cohen",
			ClassID:     "8a",
			Teacher:     "Ms. Katz",
			Text:        "Helped a classmate\nwithout being asked",
			PresetID:    "p2",
			CreatedAt:   now.Add(-2 * time.Hour).Unix(),
		},
	}
}

func TestLineFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewLineFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testGoodPoints()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | 5m | Dana Levi | 7b | Great participation in class today", lines[0])
	assert.Equal(t, "2 | 2h | Avi Cohen | 8a | Helped a classmate without being asked", lines[1])
}

func TestLineFormatter_NoIndex(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.ShowClass = false
	f, err := NewLineFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testGoodPoints()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Dana Levi | Great participation in class today", lines[0])
}

func TestLineFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{.StudentName}} - {{truncate .Text 9}}"
	f, err := NewLineFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testGoodPoints()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1: Dana Levi - Great ...", lines[0])
	assert.Equal(t, "2: Avi Cohen - Helped...", lines[1])
}

func TestLineFormatter_TruncateText(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.TextMaxLen = 20
	f, err := NewLineFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testGoodPoints()[:1]))

	out := buf.String()
	assert.Contains(t, out, "Great participati...")
	assert.NotContains(t, out, "class today")
}

func TestInvalidTemplate(t *testing.T) {
	opts := DefaultFormatterOptions()
	opts.Template = "{{.StudentName"

	_, err := NewLineFormatter(opts)
	assert.ErrorContains(t, err, "invalid template")

	_, err = NewPlainFormatter(opts)
	assert.ErrorContains(t, err, "invalid template")
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testGoodPoints()))

	out := buf.String()
	assert.Contains(t, out, "[1] Dana Levi <7b> (5 minutes ago)\n")
	assert.Contains(t, out, "    Great participation in class today\n")
	assert.Contains(t, out, "[2] Avi Cohen <8a> (2 hours ago)\n")
	assert.Contains(t, out, "    Helped a classmate without being asked\n")
}

func TestPlainFormatter_ConfigTemplates(t *testing.T) {
	points := testGoodPoints()
	cfg := config.DefaultConfig()

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := NewPlainFormatter(FormatterOptions{Template: cfg.GetTemplate("plain")})
		require.NoError(t, err)
		require.NoError(t, f.Format(&buf, points[:1]))
		assert.Equal(t, "5 minutes ago Dana Levi: Great participation in class today\n", buf.String())
	})

	t.Run("full", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := NewPlainFormatter(FormatterOptions{Template: cfg.GetTemplate("full")})
		require.NoError(t, err)
		require.NoError(t, f.Format(&buf, points[:1]))

		want := formatTime(points[0].CreatedAt) + " Dana Levi (7b)\nGreat participation in class today\n"
		assert.Equal(t, want, buf.String())
	})
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter().Format(&buf, testGoodPoints()))

	var result []model.GoodPoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "Dana Levi", result[0].StudentName)
	assert.Equal(t, "p2", result[1].PresetID)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONFormatter_FormatSingle(t *testing.T) {
	g := testGoodPoints()[1]
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter().FormatSingle(&buf, &g))

	var result model.GoodPoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, g, result)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewYAMLFormatter().Format(&buf, testGoodPoints()))
	assert.Contains(t, buf.String(), "student_name: Dana Levi")

	var result []model.GoodPoint
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, testGoodPoints()[1].Text, result[1].Text)
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewIDsFormatter().Format(&buf, testGoodPoints()))
	assert.Equal(t, "01HQGXK5P00000000000000001\n01HQGXK5P00000000000000002\n", buf.String())
}

func TestFormatField(t *testing.T) {
	g := testGoodPoints()[1]

	tests := []struct {
		field    string
		expected string
	}{
		{"id", "01HQGXK5P00000000000000002"},
		{"student", "Avi Cohen"},
		{"student_id", "s2"},
		{"class", "8a"},
		{"teacher", "Ms. Katz"},
		{"preset", "p2"},
		{"source", "cli"},
		{"time", formatTime(g.CreatedAt)},
		{"all", "Avi Cohen\nHelped a classmate\nwithout being asked"},
		{"unknown", "Helped a classmate\nwithout being asked"}, // defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatField(&g, tt.field))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	tests := []struct {
		format FormatType
		want   any
	}{
		{FormatLine, &LineFormatter{}},
		{FormatPlain, &PlainFormatter{}},
		{"", &PlainFormatter{}},
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatIDs, &IDsFormatter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format, opts)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := NewFormatter("dmenu", opts)
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		maxLen      int
		keepNewline bool
		expected    string
	}{
		{"simple", "hello world", 0, false, "hello world"},
		{"with newlines", "hello\nworld", 0, false, "hello world"},
		{"preserve newlines", "hello\nworld", 0, true, "hello\nworld"},
		{"truncate", "hello world", 8, false, "hello..."},
		{"multiple spaces", "hello   world", 0, false, "hello world"},
		{"hebrew", "כל הכבוד על העבודה", 8, false, "כל הכ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeText(tt.text, tt.maxLen, tt.keepNewline))
		})
	}
}

func TestShortTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		ts       int64
		expected string
	}{
		{"zero", 0, "unknown"},
		{"now", now.Unix(), "now"},
		{"30 seconds", now.Add(-30 * time.Second).Unix(), "now"},
		{"5 minutes", now.Add(-5 * time.Minute).Unix(), "5m"},
		{"2 hours", now.Add(-2 * time.Hour).Unix(), "2h"},
		{"3 days", now.Add(-72 * time.Hour).Unix(), "3d"},
		{"2 weeks", now.Add(-14 * 24 * time.Hour).Unix(), "2w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortTime(tt.ts))
		})
	}
}
