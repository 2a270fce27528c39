package input

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goodpoints/goodpoints/internal/model"
)

// entry is the import format. Only student_id and text are required when
// a resolver knows the student.
type entry struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassID     string `json:"class_id"`
	Teacher     string `json:"teacher"`
	Text        string `json:"text"`
	PresetID    string `json:"preset_id"`
	CreatedAt   int64  `json:"created_at"`
}

// parse accepts a JSON array or JSON lines. Entries that do not make a
// valid good point are skipped.
func parse(source string, data []byte, opts options) ([]model.GoodPoint, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var entries []entry
	if data[0] == '[' {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, &AdapterError{
				Source:  source,
				Message: "failed to parse JSON input",
				Err:     err,
			}
		}
	} else {
		entries = parseLines(data)
	}

	var points []model.GoodPoint
	for _, e := range entries {
		g, err := convertEntry(e, opts)
		if err != nil {
			continue
		}
		points = append(points, *g)
	}
	return points, nil
}

// parseLines decodes one entry per line, skipping anything that is not
// an entry (including a goodpoints history header).
func parseLines(data []byte) []entry {
	var entries []entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxInputSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// convertEntry builds and validates a good point. Valid ULIDs in the
// input are kept so re-importing an export does not duplicate it.
func convertEntry(e entry, opts options) (*model.GoodPoint, error) {
	now := time.Now()

	id := e.ID
	if _, err := ulid.ParseStrict(id); err != nil {
		newID, err := ulid.New(ulid.Timestamp(now), rand.Reader)
		if err != nil {
			return nil, err
		}
		id = newID.String()
	}

	createdAt := e.CreatedAt
	if createdAt <= 0 {
		createdAt = now.Unix()
	}

	g := &model.GoodPoint{
		ID:          id,
		Source:      model.SourceImport,
		StudentID:   strings.TrimSpace(e.StudentID),
		StudentName: sanitizeString(e.StudentName),
		ClassID:     strings.TrimSpace(e.ClassID),
		Teacher:     sanitizeString(e.Teacher),
		Text:        sanitizeString(e.Text),
		PresetID:    e.PresetID,
		CreatedAt:   createdAt,
	}

	if opts.resolve != nil && g.StudentID != "" {
		if name, classID, ok := opts.resolve(g.StudentID); ok {
			if g.StudentName == "" {
				g.StudentName = name
			}
			if g.ClassID == "" {
				g.ClassID = classID
			}
		}
	}
	if g.Teacher == "" {
		g.Teacher = opts.teacher
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.EnsureContentHash()
	return g, nil
}

// sanitizeString replaces control characters other than newline and tab
// with spaces.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
