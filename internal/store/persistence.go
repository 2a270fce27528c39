package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goodpoints/goodpoints/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1024 * 1024

// Persistence defines the interface for history storage.
type Persistence interface {
	// Load reads all good points from storage.
	Load() ([]model.GoodPoint, error)

	// AppendBatch adds good points to storage.
	AppendBatch(gs []model.GoodPoint) error

	// Rewrite replaces the entire storage file (used after delete).
	Rewrite(gs []model.GoodPoint) error

	// Clear removes all stored good points.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"goodpoints_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence using JSONL files.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence creates a new JSONLPersistence.
// Creates the file if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{
		path: path,
		file: file,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return p, nil
}

// Path returns the file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all good points from storage. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]model.GoodPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	// Another process may have replaced the file since it was opened.
	file, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer file.Close()

	points, err := decode(file)
	if err != nil {
		return points, err
	}

	if err := p.reopenIfReplaced(); err != nil {
		return points, err
	}
	return points, nil
}

// reopenIfReplaced reopens the append handle when the path no longer
// refers to the file it holds.
func (p *JSONLPersistence) reopenIfReplaced() error {
	held, err := p.file.Stat()
	if err != nil {
		return err
	}
	current, err := os.Stat(p.path)
	if err != nil {
		return err
	}
	if os.SameFile(held, current) {
		return nil
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", p.path, err)
	}
	p.file.Close()
	p.file = file
	return nil
}

func decode(r io.Reader) ([]model.GoodPoint, error) {
	var points []model.GoodPoint
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var g model.GoodPoint
		if err := json.Unmarshal(line, &g); err != nil {
			continue
		}
		if g.ID != "" {
			points = append(points, g)
		}
	}

	if err := scanner.Err(); err != nil {
		return points, fmt.Errorf("error reading file: %w", err)
	}
	return points, nil
}

// AppendBatch adds good points to storage.
func (p *JSONLPersistence) AppendBatch(gs []model.GoodPoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	for _, g := range gs {
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return p.file.Sync()
}

// Rewrite replaces the entire storage file.
func (p *JSONLPersistence) Rewrite(gs []model.GoodPoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	return p.replace(gs)
}

// Clear removes all stored good points.
func (p *JSONLPersistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	return p.replace(nil)
}

// replace writes gs to a new file and swaps it in, keeping a backup
// until the new file is synced.
func (p *JSONLPersistence) replace(gs []model.GoodPoint) error {
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		os.Rename(backupPath, p.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file

	if err := p.writeHeader(); err != nil {
		return err
	}

	for _, g := range gs {
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	if err := p.file.Sync(); err != nil {
		return err
	}

	os.Remove(backupPath)
	return nil
}

// Close releases file handles and resources.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}
