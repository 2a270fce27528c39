package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/roster"
)

const testRoster = `classes:
  - id: c8a
    name: 8A
    students:
      - id: s3
        first_name: Noa
        last_name: Mizrahi
  - id: c7b
    name: 7B
    students:
      - id: s1
        first_name: Dana
        last_name: Levi
      - id: s2
        first_name: Avi
        last_name: Cohen
`

func loadTestRoster(t *testing.T) *roster.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoster), 0600))
	f := roster.NewFile(path)
	require.NoError(t, f.Load())
	return f
}

func TestResolveStudent(t *testing.T) {
	r := loadTestRoster(t)

	tests := []struct {
		query   string
		want    string
		wantErr string
	}{
		{"s2", "s2", ""},
		{"Dana Levi", "s1", ""},
		{"  noa mizrahi ", "s3", ""},
		{"levi", "s1", ""},
		{"zzz", "", "no student matches"},
		{"a", "", "matches several students"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e, err := resolveStudent(r, tt.query)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.ID)
		})
	}
}

func TestReadIDs(t *testing.T) {
	in := strings.NewReader(`01HZ3X2J5YFMK2V3P4Q6R7S8T9
1 | Dana Levi | 01HZ3X2J5YFMK2V3P4Q6R7S8TA | Great work

no id here
`)
	ids, err := readIDs(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"01HZ3X2J5YFMK2V3P4Q6R7S8T9", "01HZ3X2J5YFMK2V3P4Q6R7S8TA"}, ids)
}

func TestExtractULID(t *testing.T) {
	assert.Equal(t, "01HZ3X2J5YFMK2V3P4Q6R7S8T9", extractULID("  01HZ3X2J5YFMK2V3P4Q6R7S8T9  "))
	assert.Empty(t, extractULID("01HZ3X2J5YFMK2V3P4Q6R7S8TI"), "I is not in the ULID alphabet")
	assert.Empty(t, extractULID("short"))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueStrings([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, uniqueStrings(nil))
}

func TestParseLineSelection(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"3 | Dana Levi | 01HZ3X2J5YFMK2V3P4Q6R7S8T9", 3, true},
		{" 12|x", 12, true},
		{"0 | x", 0, false},
		{"-1 | x", 0, false},
		{"abc | x", 0, false},
		{"no pipe", 0, false},
	}
	for _, tt := range tests {
		idx, ok := parseLineSelection(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, idx, tt.in)
	}
}

func TestPrintPresets(t *testing.T) {
	var buf bytes.Buffer
	printPresets(&buf, []model.Preset{
		{ID: "p1", Text: "Helped a friend", Category: "kindness"},
		{ID: "hw", Text: "Homework on time"},
	})
	assert.Equal(t, "p1\t[kindness] Helped a friend\nhw\tHomework on time\n", buf.String())
}
