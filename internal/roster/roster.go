// Package roster loads and saves the teacher's classes and students.
package roster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/validate"
)

// ErrUnknownClass is returned for a class ID the roster does not hold.
var ErrUnknownClass = errors.New("unknown class")

// Enrollment is a student together with the class they belong to.
type Enrollment struct {
	model.Student
	ClassID   string
	ClassName string
}

type rosterData struct {
	Classes []model.Class `yaml:"classes" validate:"dive"`
}

// File is a YAML roster on disk. It is safe for concurrent use.
type File struct {
	mu      sync.RWMutex
	path    string
	classes []model.Class
}

// NewFile creates a roster backed by path. Call Load to read it.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the roster. A missing file is an empty roster.
func (f *File) Load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.mu.Lock()
			f.classes = nil
			f.mu.Unlock()
			return nil
		}
		return err
	}

	var rd rosterData
	if err := yaml.Unmarshal(data, &rd); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	if err := validate.Struct(rd); err != nil {
		return fmt.Errorf("invalid roster %s: %w", f.path, err)
	}

	seen := make(map[string]bool, len(rd.Classes))
	for _, c := range rd.Classes {
		if seen[c.ID] {
			return fmt.Errorf("invalid roster %s: duplicate class id %q", f.path, c.ID)
		}
		seen[c.ID] = true
	}

	f.mu.Lock()
	f.classes = rd.Classes
	f.mu.Unlock()
	return nil
}

// Save writes the roster atomically via a temp file.
func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.save()
}

func (f *File) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(rosterData{Classes: f.classes})
	if err != nil {
		return err
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write roster: %w", err)
	}
	return os.Rename(tmpPath, f.path)
}

// SetClasses replaces the roster contents in memory.
func (f *File) SetClasses(classes []model.Class) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes = cloneClasses(classes)
}

// Classes returns a copy of all classes sorted by name.
func (f *File) Classes() []model.Class {
	f.mu.RLock()
	out := cloneClasses(f.classes)
	f.mu.RUnlock()

	model.SortClasses(out)
	return out
}

// Class returns a copy of the class with the given ID, or nil.
func (f *File) Class(id string) *model.Class {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if i := f.indexOf(id); i >= 0 {
		c := cloneClasses(f.classes[i : i+1])[0]
		return &c
	}
	return nil
}

// Students returns every enrolled student sorted by full name.
func (f *File) Students() []Enrollment {
	f.mu.RLock()
	var out []Enrollment
	for _, c := range f.classes {
		for _, s := range c.Students {
			out = append(out, Enrollment{Student: s, ClassID: c.ID, ClassName: c.Name})
		}
	}
	f.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].FullName()), strings.ToLower(out[j].FullName())
		if a != b {
			return a < b
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// Student finds an enrolled student by ID.
func (f *File) Student(id string) (Enrollment, bool) {
	for _, e := range f.Students() {
		if e.ID == id {
			return e, true
		}
	}
	return Enrollment{}, false
}

// SetStarred records the star flag of a class and saves the file.
func (f *File) SetStarred(ctx context.Context, id string, starred bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownClass, id)
	}

	prev := f.classes[i].Starred
	f.classes[i].Starred = starred
	if err := f.save(); err != nil {
		f.classes[i].Starred = prev
		return err
	}
	return nil
}

func (f *File) indexOf(id string) int {
	for i := range f.classes {
		if f.classes[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneClasses(classes []model.Class) []model.Class {
	out := make([]model.Class, len(classes))
	for i, c := range classes {
		c.Students = append([]model.Student(nil), c.Students...)
		out[i] = c
	}
	return out
}
