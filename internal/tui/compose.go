package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/popup"
	"github.com/goodpoints/goodpoints/internal/roster"
)

const maxStudentMatches = 5

const (
	focusStudent = iota
	focusText
)

// composeState is the draft of a good point being written.
type composeState struct {
	student textinput.Model
	text    textinput.Model
	focus   int

	matches []roster.Enrollment
	cursor  int

	presetIdx int // -1 when the text is not a preset
	presetID  string
}

func newCompose(tr i18n.Translator) composeState {
	student := textinput.New()
	student.Placeholder = tr.T("compose_student")
	student.CharLimit = 80

	text := textinput.New()
	text.Placeholder = tr.T("compose_placeholder")
	text.CharLimit = model.MaxTextLength

	return composeState{
		student:   student,
		text:      text,
		presetIdx: -1,
	}
}

// dirty reports whether anything has been typed.
func (c *composeState) dirty() bool {
	return c.student.Value() != "" || c.text.Value() != ""
}

func (c *composeState) reset() {
	c.student.SetValue("")
	c.text.SetValue("")
	c.matches = nil
	c.cursor = 0
	c.presetIdx = -1
	c.presetID = ""
	c.setFocus(focusStudent)
}

func (c *composeState) setFocus(f int) {
	c.focus = f
	if f == focusStudent {
		c.student.Focus()
		c.text.Blur()
	} else {
		c.text.Focus()
		c.student.Blur()
	}
}

// selected returns the highlighted student match, or nil.
func (c *composeState) selected() *roster.Enrollment {
	if c.cursor < 0 || c.cursor >= len(c.matches) {
		return nil
	}
	return &c.matches[c.cursor]
}

// match narrows the roster to students whose name fuzzy-matches the
// student field.
func (c *composeState) match(all []roster.Enrollment) {
	students := make([]model.Student, len(all))
	byID := make(map[string]roster.Enrollment, len(all))
	for i, e := range all {
		students[i] = e.Student
		if _, ok := byID[e.ID]; !ok {
			byID[e.ID] = e
		}
	}

	c.matches = c.matches[:0]
	seen := make(map[string]bool)
	for _, s := range core.SearchStudents(students, c.student.Value()) {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		c.matches = append(c.matches, byID[s.ID])
		if len(c.matches) == maxStudentMatches {
			break
		}
	}
	if c.cursor >= len(c.matches) {
		c.cursor = 0
	}
}

// cyclePreset moves through presets by delta, wrapping around.
func (c *composeState) cyclePreset(presets []model.Preset, delta int) {
	if len(presets) == 0 {
		return
	}
	n := len(presets)
	switch {
	case c.presetIdx >= 0:
		c.presetIdx = ((c.presetIdx+delta)%n + n) % n
	case delta > 0:
		c.presetIdx = 0
	default:
		c.presetIdx = n - 1
	}
	p := presets[c.presetIdx]
	c.presetID = p.ID
	c.text.SetValue(p.Text)
	c.text.CursorEnd()
}

// update forwards a message to the focused input.
func (c *composeState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if c.focus == focusStudent {
		c.student, cmd = c.student.Update(msg)
	} else {
		c.text, cmd = c.text.Update(msg)
	}
	return cmd
}

// startCompose switches to compose mode with an empty draft.
func (m *Model) startCompose() tea.Cmd {
	m.compose.reset()
	m.compose.match(m.roster.Students())
	m.mode = ModeCompose
	return textinput.Blink
}

// handleComposeKey handles keys in compose mode.
func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &m.compose

	switch {
	case key.Matches(msg, m.keys.Back):
		if c.dirty() {
			return m.confirmDiscard(closeToList)
		}
		m.mode = ModeList
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		if c.focus == focusStudent {
			c.setFocus(focusText)
		} else {
			c.setFocus(focusStudent)
		}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextPreset):
		c.cyclePreset(m.cfg.Presets, 1)
		return m, nil

	case key.Matches(msg, m.keys.PrevPreset):
		c.cyclePreset(m.cfg.Presets, -1)
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.send()
		return m, nil

	case c.focus == focusStudent && msg.Type == tea.KeyUp:
		if c.cursor > 0 {
			c.cursor--
		}
		return m, nil

	case c.focus == focusStudent && msg.Type == tea.KeyDown:
		if c.cursor < len(c.matches)-1 {
			c.cursor++
		}
		return m, nil
	}

	before := c.student.Value()
	cmd := c.update(msg)

	if c.focus == focusStudent && c.student.Value() != before {
		c.cursor = 0
		c.match(m.roster.Students())
	}
	if c.focus == focusText && c.presetIdx >= 0 {
		if p := m.cfg.Preset(c.presetID); p == nil || p.Text != c.text.Value() {
			c.presetIdx = -1
			c.presetID = ""
		}
	}
	return m, cmd
}

// send validates the draft and opens the save popup. Accepting it adds
// the good point to the store.
func (m *Model) send() {
	c := &m.compose

	student := c.selected()
	if student == nil {
		m.popups.Open(popup.KindError, popup.WithContent(m.tr.T("missing_student")))
		return
	}
	text := strings.TrimSpace(c.text.Value())
	if text == "" {
		m.popups.Open(popup.KindError, popup.WithContent(m.tr.T("missing_text")))
		return
	}

	g, err := model.NewGoodPoint(model.SourceTUI)
	if err != nil {
		m.popups.Open(popup.KindError, popup.WithContent(m.tr.T("operation_failed", err.Error())))
		return
	}
	g.StudentID = student.ID
	g.StudentName = student.FullName()
	g.ClassID = student.ClassID
	g.Teacher = m.cfg.UI.Teacher
	g.Text = text
	g.PresetID = c.presetID

	if err := g.Validate(); err != nil {
		m.popups.Open(popup.KindError, popup.WithContent(m.tr.T("operation_failed", err.Error())))
		return
	}

	s := m.store
	point := *g
	m.sentTo = g.StudentName
	m.popups.Open(popup.KindSave,
		popup.WithContent(g.StudentName+": "+g.TextTruncated(80)),
		popup.WithLoading(),
		popup.WithConfirm(func(ctx context.Context) error {
			return s.Add(point)
		}),
	)
}
