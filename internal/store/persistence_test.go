package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/model"
)

func TestNewJSONLPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, path, p.Path())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "goodpoints_schema_version")
}

func TestNewJSONLPersistence_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "nested", "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	info, err := os.Stat(filepath.Join(dir, "subdir", "nested"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewJSONLPersistence_KeepsExistingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p1, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p1.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p2.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(string(content)))
}

func TestJSONLPersistence_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	g1 := testGoodPoint("append1")
	g1.PresetID = "p2"
	g2 := testGoodPoint("append2")

	require.NoError(t, p.AppendBatch([]model.GoodPoint{g1, g2}))

	points, err := p.Load()
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, g1, points[0])
	assert.Equal(t, "append2", points[1].ID)
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.AppendBatch([]model.GoodPoint{testGoodPoint("old1"), testGoodPoint("old2")}))
	require.NoError(t, p.Rewrite([]model.GoodPoint{testGoodPoint("new1")}))

	points, err := p.Load()
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "new1", points[0].ID)

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))

	// Appends after a rewrite land in the new file.
	require.NoError(t, p.AppendBatch([]model.GoodPoint{testGoodPoint("new2")}))
	points, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestJSONLPersistence_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.AppendBatch([]model.GoodPoint{testGoodPoint("clear1"), testGoodPoint("clear2")}))
	require.NoError(t, p.Clear())

	points, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, points)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "goodpoints_schema_version")
}

func TestJSONLPersistence_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.AppendBatch([]model.GoodPoint{testGoodPoint("x")}), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Rewrite(nil), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Clear(), ErrPersistenceClosed)
}

func TestJSONLPersistence_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	p.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	content := `{"goodpoints_schema_version":1,"created_at":1703577600}
{"id":"valid1","source":"tui","student_id":"s1","student_name":"Dana","text":"Great","created_at":1703577600}
{invalid json}
{"source":"tui","student_id":"s1","student_name":"Dana","text":"No ID","created_at":1703577600}

{"id":"valid2","source":"cli","student_id":"s2","student_name":"Avi","text":"Kind","created_at":1703577601}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	points, err := p.Load()
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "valid1", points[0].ID)
	assert.Equal(t, "valid2", points[1].ID)
}

func TestJSONLPersistence_SchemaVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	content := `{"goodpoints_schema_version":999,"created_at":1703577600}
{"id":"test1","source":"tui","student_id":"s1","student_name":"Dana","text":"Great","created_at":1703577600}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestJSONLPersistence_ReopensReplacedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p1, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p1.Close()
	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p2.Close()

	require.NoError(t, p1.AppendBatch([]model.GoodPoint{testGoodPoint("a")}))
	// p2 swaps the file out from under p1.
	require.NoError(t, p2.Rewrite([]model.GoodPoint{testGoodPoint("b")}))

	points, err := p1.Load()
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "b", points[0].ID)

	require.NoError(t, p1.AppendBatch([]model.GoodPoint{testGoodPoint("c")}))
	points, err = p2.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(points))
}

func TestStoreWithPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p)

	require.NoError(t, s.Add(testGoodPoint("persist1")))
	require.NoError(t, s.Add(testGoodPoint("persist2")))
	require.NoError(t, s.Add(testGoodPoint("persist3")))
	require.NoError(t, s.Delete("persist2"))
	require.NoError(t, s.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s2 := NewStore(p2)
	defer s2.Close()

	ch := s2.Subscribe()
	require.NoError(t, s2.Hydrate())
	assert.Equal(t, 2, s2.Count())
	assert.Nil(t, s2.GetByID("persist2"))

	event := <-ch
	assert.Equal(t, ChangeTypeReload, event.Type)
	assert.Equal(t, 2, event.Count)
	assert.Equal(t, "persistence", event.Source)
}

func TestStore_HydrateReplacesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p1, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s1 := NewStore(p1)
	defer s1.Close()

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s2 := NewStore(p2)
	defer s2.Close()

	require.NoError(t, s1.Add(testGoodPoint("h1")))
	require.NoError(t, s1.Add(testGoodPoint("h2")))
	require.NoError(t, s2.Hydrate())
	assert.Equal(t, 2, s2.Count())

	// A delete in the other process shows up on the next hydrate.
	require.NoError(t, s1.Delete("h1"))
	require.NoError(t, s2.Hydrate())
	assert.Equal(t, 1, s2.Count())
	assert.Nil(t, s2.GetByID("h1"))
}

func TestStore_HydrateSkipsTombstones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	g := testGoodPoint("dead")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.AppendBatch([]model.GoodPoint{g, testGoodPoint("alive")}))

	s := NewStore(p)
	defer s.Close()
	s.LoadTombstones([]string{g.ComputeContentHash()})

	require.NoError(t, s.Hydrate())
	assert.Equal(t, 1, s.Count())
	assert.NotNil(t, s.GetByID("alive"))
}

func TestStore_HydrateWithoutPersistence(t *testing.T) {
	s := NewStore(nil)
	defer s.Close()
	assert.NoError(t, s.Hydrate())
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
