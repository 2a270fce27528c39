package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTombstoneFile_Missing(t *testing.T) {
	tf := NewTombstoneFile(filepath.Join(t.TempDir(), "tombstones.json"))

	hashes, err := tf.Load()
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestTombstoneFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tombstones.json")
	tf := NewTombstoneFile(path)

	require.NoError(t, tf.Save([]string{"aaa", "bbb"}))

	hashes, err := tf.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "bbb"}, hashes)
}

func TestTombstoneFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tombstones.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewTombstoneFile(path).Load()
	assert.Error(t, err)
}

func TestTombstoneFile_PersistAndSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tombstones.json")
	tf := NewTombstoneFile(path)

	s1 := NewStore(nil)
	g := testGoodPoint("deleted")
	require.NoError(t, s1.Add(g))
	require.NoError(t, s1.Delete("deleted"))
	require.NoError(t, tf.Persist(s1))
	s1.Close()

	s2 := NewStore(nil)
	defer s2.Close()
	require.NoError(t, tf.Sync(s2))
	assert.Equal(t, []string{g.ComputeContentHash()}, s2.GetTombstones())

	require.NoError(t, s2.Add(g))
	assert.Equal(t, 0, s2.Count())
}
