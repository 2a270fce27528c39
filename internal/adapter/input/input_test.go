package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/model"
)

func TestNewAdapter(t *testing.T) {
	for _, source := range []string{"", "stdin", "-"} {
		a, err := NewAdapter(source)
		require.NoError(t, err)
		assert.Equal(t, "stdin", a.Name())
	}

	a, err := NewAdapter("/tmp/export.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "file", a.Name())
}

func TestStdinAdapter_JSONArray(t *testing.T) {
	in := `[
		{"student_id": "s1", "student_name": "Dana Levi", "class_id": "7b", "text": "Great work", "created_at": 1703577600},
		{"student_id": "s2", "student_name": "Avi Cohen", "text": "Kind to others"}
	]`

	points, err := NewStdinAdapterWithReader(strings.NewReader(in)).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)

	g := points[0]
	assert.Len(t, g.ID, 26)
	assert.Equal(t, model.SourceImport, g.Source)
	assert.Equal(t, "Dana Levi", g.StudentName)
	assert.Equal(t, "7b", g.ClassID)
	assert.Equal(t, int64(1703577600), g.CreatedAt)
	assert.Equal(t, g.ComputeContentHash(), g.ContentHash)

	// Missing timestamp gets the import time.
	assert.Positive(t, points[1].CreatedAt)
	assert.NotEqual(t, points[0].ID, points[1].ID)
}

func TestStdinAdapter_JSONLines(t *testing.T) {
	in := `{"goodpoints_schema_version":1,"created_at":1703577600}
{"id":"01HQGXK5P00000000000000001","source":"tui","student_id":"s1","student_name":"Dana","text":"Great","created_at":1703577600}
not json

{"student_id":"s2","student_name":"Avi","text":"Kind","created_at":1703577601}
`

	points, err := NewStdinAdapterWithReader(strings.NewReader(in)).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)

	// A valid ULID is kept, the source is always import.
	assert.Equal(t, "01HQGXK5P00000000000000001", points[0].ID)
	assert.Equal(t, model.SourceImport, points[0].Source)
	assert.Equal(t, "Avi", points[1].StudentName)
}

func TestStdinAdapter_SkipsInvalidEntries(t *testing.T) {
	in := `[
		{"student_id": "s1", "student_name": "Dana"},
		{"student_name": "No ID", "text": "Hi"},
		{"student_id": "s3", "student_name": "Noa", "text": "` + strings.Repeat("x", model.MaxTextLength+1) + `"},
		{"student_id": "s4", "student_name": "Yael", "text": "Valid"}
	]`

	points, err := NewStdinAdapterWithReader(strings.NewReader(in)).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Yael", points[0].StudentName)
}

func TestStdinAdapter_InvalidJSON(t *testing.T) {
	_, err := NewStdinAdapterWithReader(strings.NewReader(`[{"student_id": `)).Import(context.Background())

	var aerr *AdapterError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "stdin", aerr.Source)
	assert.Contains(t, err.Error(), "failed to parse JSON input")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestStdinAdapter_Empty(t *testing.T) {
	points, err := NewStdinAdapterWithReader(strings.NewReader("  \n")).Import(context.Background())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestStdinAdapter_Resolver(t *testing.T) {
	in := `[{"student_id": "s1", "text": "Great work"}, {"student_id": "ghost", "text": "Hi"}]`

	resolve := func(id string) (string, string, bool) {
		if id == "s1" {
			return "Dana Levi", "7b", true
		}
		return "", "", false
	}

	points, err := NewStdinAdapterWithReader(strings.NewReader(in),
		WithResolver(resolve),
		WithTeacher("Ms. Katz"),
	).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Dana Levi", points[0].StudentName)
	assert.Equal(t, "7b", points[0].ClassID)
	assert.Equal(t, "Ms. Katz", points[0].Teacher)
}

func TestStdinAdapter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStdinAdapterWithReader(strings.NewReader("[]")).Import(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"student_id":"s1","student_name":"Dana","text":"Great"}]`), 0600))

	points, err := NewFileAdapter(path).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Dana", points[0].StudentName)
}

func TestFileAdapter_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewFileAdapter(path).Import(context.Background())

	var aerr *AdapterError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, path, aerr.Source)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "a b\nc\td", sanitizeString(" a\x07b\nc\td \r"))
}
