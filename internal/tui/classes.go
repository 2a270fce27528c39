package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodpoints/goodpoints/internal/model"
)

// classRows returns the classes screen rows: starred first, then the rest.
func (m Model) classRows() []model.Class {
	starred := m.bookmarks.Starred()
	return append(starred, m.bookmarks.Others()...)
}

func (m *Model) clampClassCursor() {
	n := len(m.bookmarks.Starred()) + len(m.bookmarks.Others())
	if m.classCursor >= n {
		m.classCursor = n - 1
	}
	if m.classCursor < 0 {
		m.classCursor = 0
	}
}

// handleClassesKey handles keys on the classes screen.
func (m Model) handleClassesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.classRows()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.classCursor > 0 {
			m.classCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.classCursor < len(rows)-1 {
			m.classCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.classCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.classCursor = max(len(rows)-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Star):
		if m.classCursor >= len(rows) {
			return m, nil
		}
		return m, m.toggleStar(rows[m.classCursor])
	}

	return m, nil
}

// toggleStar flips the star of c. The class changes section as soon as
// the command runs, before the roster write finishes.
func (m Model) toggleStar(c model.Class) tea.Cmd {
	b, r := m.bookmarks, m.roster
	starred := !b.IsStarred(c.ID)
	return func() tea.Msg {
		err := b.Toggle(context.Background(), c.ID, r.SetStarred)
		return starToggledMsg{name: c.Name, starred: starred, err: err}
	}
}
