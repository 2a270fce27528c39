// Package model defines the core data structures for goodpoints.
package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/goodpoints/goodpoints/internal/validate"
)

// Sources a good point can come from.
const (
	SourceTUI    = "tui"
	SourceCLI    = "cli"
	SourceImport = "import"
)

// MaxTextLength is the longest message a good point may carry.
const MaxTextLength = 1000

// GoodPoint is a positive feedback message sent to a student.
// This is the format stored in the JSONL history and used by all adapters.
type GoodPoint struct {
	ID          string `json:"id" yaml:"id" validate:"required,len=26"`
	Source      string `json:"source" yaml:"source" validate:"required,oneof=tui cli import"`
	StudentID   string `json:"student_id" yaml:"student_id" validate:"required"`
	StudentName string `json:"student_name" yaml:"student_name" validate:"required"`
	ClassID     string `json:"class_id,omitempty" yaml:"class_id,omitempty"`
	Teacher     string `json:"teacher,omitempty" yaml:"teacher,omitempty"`
	Text        string `json:"text" yaml:"text" validate:"required,max=1000"`
	PresetID    string `json:"preset_id,omitempty" yaml:"preset_id,omitempty"`
	CreatedAt   int64  `json:"created_at" yaml:"created_at" validate:"gt=0"`
	ContentHash string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"` // SHA256 for deduplication
}

// NewGoodPoint creates a GoodPoint with a generated ULID and the current time.
func NewGoodPoint(source string) (*GoodPoint, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &GoodPoint{
		ID:        id.String(),
		Source:    source,
		CreatedAt: now.Unix(),
	}, nil
}

// Validate checks that the good point has all required fields.
// Failures are returned as *validate.Error.
func (g *GoodPoint) Validate() error {
	return validate.Struct(g)
}

// CreatedTime returns CreatedAt as a time.Time.
func (g *GoodPoint) CreatedTime() time.Time {
	return time.Unix(g.CreatedAt, 0)
}

// RelativeTime returns a human-readable relative time, e.g. "5 minutes ago".
func (g *GoodPoint) RelativeTime() string {
	return humanize.Time(g.CreatedTime())
}

// TextTruncated returns the text collapsed to one line and cut to maxLen
// characters, with "..." appended when cut.
func (g *GoodPoint) TextTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	text := []rune(strings.Join(strings.Fields(g.Text), " "))
	if len(text) <= maxLen {
		return string(text)
	}
	if maxLen <= 3 {
		return string(text[:maxLen])
	}
	return string(text[:maxLen-3]) + "..."
}

// DedupeKey returns the key two good points share when they are the same
// message to the same student at the same second.
func (g *GoodPoint) DedupeKey() string {
	return fmt.Sprintf("%s:%s:%d", g.StudentID, g.Text, g.CreatedAt)
}

// ComputeContentHash returns the SHA256 of DedupeKey.
func (g *GoodPoint) ComputeContentHash() string {
	hash := sha256.Sum256([]byte(g.DedupeKey()))
	return hex.EncodeToString(hash[:])
}

// EnsureContentHash sets ContentHash if it is empty.
func (g *GoodPoint) EnsureContentHash() {
	if g.ContentHash == "" {
		g.ContentHash = g.ComputeContentHash()
	}
}

// Clone returns a copy of the good point.
func (g *GoodPoint) Clone() *GoodPoint {
	clone := *g
	return &clone
}

// Preset is a message template offered when composing a good point.
type Preset struct {
	ID       string `toml:"id" json:"id"`
	Text     string `toml:"text" json:"text" validate:"required,max=1000"`
	Category string `toml:"category" json:"category,omitempty"`
}
