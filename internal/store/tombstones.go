package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TombstoneFile persists the content hashes of deleted good points so a
// later import does not bring them back.
type TombstoneFile struct {
	path string
}

type tombstoneData struct {
	Hashes []string `json:"hashes"`
}

// NewTombstoneFile creates a new TombstoneFile.
func NewTombstoneFile(path string) *TombstoneFile {
	return &TombstoneFile{path: path}
}

// Load reads tombstone hashes. A missing file yields none.
func (t *TombstoneFile) Load() ([]string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var td tombstoneData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("parse %s: %w", t.path, err)
	}
	return td.Hashes, nil
}

// Save writes tombstone hashes, replacing the file.
func (t *TombstoneFile) Save(hashes []string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tombstoneData{Hashes: hashes}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0600)
}

// Sync loads tombstones into s.
func (t *TombstoneFile) Sync(s *Store) error {
	hashes, err := t.Load()
	if err != nil {
		return err
	}
	s.LoadTombstones(hashes)
	return nil
}

// Persist saves the tombstones s currently holds.
func (t *TombstoneFile) Persist(s *Store) error {
	return t.Save(s.GetTombstones())
}
