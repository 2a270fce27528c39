package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/popup"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 2)
	deletingBorder = lipgloss.Color("9")
)

// rtl is implemented by translators for right-to-left locales.
type rtl interface {
	RTL() bool
}

func (m Model) rightToLeft() bool {
	r, ok := m.tr.(rtl)
	return ok && r.RTL()
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return m.tr.T("loading")
	}

	var body string
	switch m.mode {
	case ModeList:
		body = m.viewList()
	case ModeDetail:
		body = m.viewDetail()
	case ModeSearch:
		body = m.viewSearch()
	case ModeCompose:
		body = m.viewCompose()
	case ModeClasses:
		body = m.viewClasses()
	case ModeHelp:
		body = m.viewHelp()
	}

	if toast := m.viewToast(); toast != "" {
		body += "\n" + toast
	}

	if st := m.popups.State(); st.IsOpen && st.Request != nil {
		return m.overlay(m.viewPopup(st))
	}

	if m.rightToLeft() && m.width > 0 {
		body = lipgloss.NewStyle().Width(m.width).Align(lipgloss.Right).Render(body)
	}
	return body
}

func (m Model) viewList() string {
	s := m.list.View()
	if len(m.points) == 0 {
		s = headerStyle.Render(m.tr.T("app_title")) + "\n\n" + labelStyle.Render(m.tr.T("no_good_points"))
	}
	return s + "\n" + m.buildKeybindBar(m.width, ModeList)
}

// renderDetail renders the detail view for a good point.
func (m Model) renderDetail(g model.GoodPoint) string {
	var s string

	s += headerStyle.Render(g.StudentName) + "\n\n"

	if g.ClassID != "" {
		class := g.ClassID
		if m.roster != nil {
			if c := m.roster.Class(g.ClassID); c != nil {
				class = c.Name
			}
		}
		s += labelStyle.Render(m.tr.T("label_class")) + class + "\n"
	}
	s += labelStyle.Render(m.tr.T("label_time")) + g.RelativeTime() + "\n"
	if g.Teacher != "" {
		s += labelStyle.Render(m.tr.T("label_teacher")) + g.Teacher + "\n"
	}
	if g.PresetID != "" {
		s += labelStyle.Render(m.tr.T("label_preset")) + g.PresetID + "\n"
	}

	s += "\n" + g.Text + "\n"
	return s
}

func (m Model) viewDetail() string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(m.tr.T("detail_title"))
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	count := labelStyle.Render(m.tr.T("matches", fmt.Sprint(len(m.list.Items()))))
	searchBar := m.searchInput.View() + " " + count
	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewCompose() string {
	c := m.compose
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.tr.T("compose_title")) + "\n\n")

	b.WriteString(labelStyle.Render(m.tr.T("compose_student")) + "\n")
	b.WriteString(c.student.View() + "\n")
	if len(c.matches) == 0 {
		b.WriteString(labelStyle.Render("  "+m.tr.T("no_matches")) + "\n")
	}
	for i, e := range c.matches {
		line := fmt.Sprintf("%s (%s)", e.FullName(), e.ClassName)
		if i == c.cursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + labelStyle.Render(m.tr.T("compose_text")) + "\n")
	b.WriteString(c.text.View() + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d/%d", len([]rune(c.text.Value())), model.MaxTextLength)) + "\n")

	if len(m.cfg.Presets) > 0 {
		b.WriteString("\n" + labelStyle.Render(m.tr.T("compose_presets")) + "\n")
		for i, p := range m.cfg.Presets {
			line := fmt.Sprintf("%d. %s", i+1, p.Text)
			if i == c.presetIdx {
				b.WriteString(cursorStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n" + m.buildKeybindBar(m.width, ModeCompose))
	return b.String()
}

func (m Model) viewClasses() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.tr.T("classes_title")) + "\n\n")

	starred, others := m.bookmarks.Starred(), m.bookmarks.Others()
	if len(starred)+len(others) == 0 {
		b.WriteString(labelStyle.Render(m.tr.T("no_classes")) + "\n")
	}

	row := 0
	section := func(title string, classes []model.Class, mark string) {
		if len(classes) == 0 {
			return
		}
		b.WriteString(labelStyle.Render(title) + "\n")
		for _, c := range classes {
			line := fmt.Sprintf("%s %s (%d)", mark, c.Name, len(c.Students))
			if row == m.classCursor {
				b.WriteString(cursorStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
			row++
		}
		b.WriteString("\n")
	}
	section(m.tr.T("starred"), starred, "★")
	section(m.tr.T("other_classes"), others, "☆")

	b.WriteString(m.buildKeybindBar(m.width, ModeClasses))
	return b.String()
}

func (m Model) viewHelp() string {
	title := headerStyle.MarginBottom(1).Render(m.tr.T("help_title"))
	return title + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		labelStyle.Render(m.tr.T("help_return"))
}

// viewToast renders the open alert, if any.
func (m Model) viewToast() string {
	st := m.alerts.State()
	if !st.IsOpen {
		return ""
	}

	color := lipgloss.Color("10")
	switch st.Severity {
	case alert.SeverityError:
		color = lipgloss.Color("9")
	case alert.SeverityWarning:
		color = lipgloss.Color("11")
	case alert.SeverityInfo:
		color = lipgloss.Color("12")
	}

	toast := lipgloss.NewStyle().Bold(true).Foreground(color).Render(st.Message)
	if !m.typing() {
		toast += "  " + labelStyle.Render(m.tr.T("alert_hint"))
	}
	return toast
}

// viewPopup renders the popup box for st.
func (m Model) viewPopup(st popup.State) string {
	return renderPopup(st, m.tr, m.spinner.View(), m.rightToLeft())
}

// renderPopup renders a popup box. spin is shown while the confirm
// callback is loading.
func renderPopup(st popup.State, tr i18n.Translator, spin string, rightToLeft bool) string {
	r := st.Request
	var b strings.Builder

	if r.Title != "" {
		b.WriteString(headerStyle.Render(r.Title) + "\n")
	}
	if content := popupContent(r.Content); content != "" {
		b.WriteString("\n" + content + "\n")
	}

	if r.Gated() {
		box := "[ ]"
		if st.Checked {
			box = "[x]"
		}
		b.WriteString("\n" + box + " " + r.CheckboxText + "  " + labelStyle.Render(tr.T("checkbox_hint")) + "\n")
		if st.ShowCheckWarning {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(r.CheckboxWarning) + "\n")
		}
	}

	b.WriteString("\n")
	if st.IsLoading {
		b.WriteString(spin + " " + tr.T("loading"))
	} else {
		var buttons []string
		if r.ShowOkay {
			okay := keyStyle
			if r.Deleting {
				okay = okay.Foreground(deletingBorder)
			}
			buttons = append(buttons, okay.Render("["+r.OkayText+"]"))
		}
		if r.ShowCancel {
			buttons = append(buttons, labelStyle.Render("["+r.CancelText+"]"))
		}
		b.WriteString(strings.Join(buttons, "  "))
		b.WriteString("\n" + labelStyle.Render(tr.T("popup_hint")))
	}

	style := popupStyle
	if r.Deleting {
		style = style.BorderForeground(deletingBorder)
	}
	if rightToLeft {
		style = style.Align(lipgloss.Right)
	}
	return style.Render(b.String())
}

// popupContent renders an opaque popup payload.
func popupContent(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// overlay centres box on the screen.
func (m Model) overlay(box string) string {
	return place(m.width, m.height, box)
}

func place(width, height int, box string) string {
	if width == 0 || height == 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var binds []keybind

	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit", 1},
			{"n", "new", 2},
			{"enter", "view", 3},
			{"?", "help", 4},
			{"/", "search", 5},
			{"c", "classes", 6},
			{"d", "delete", 7},
			{"X", "clear all", 8},
			{"r", "refresh", 9},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit", 1},
			{"esc", "back", 2},
			{"d", "delete", 3},
			{"j/k", "scroll", 4},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "view", 1},
			{"esc", "close", 2},
			{"↑/↓", "navigate", 3},
		}
	case ModeCompose:
		binds = []keybind{
			{"enter", "send", 1},
			{"esc", "back", 2},
			{"tab", "next field", 3},
			{"↑/↓", "student", 4},
			{"ctrl+n/p", "preset", 5},
		}
	case ModeClasses:
		binds = []keybind{
			{"s", "star", 1},
			{"esc", "back", 2},
			{"j/k", "move", 3},
			{"q", "quit", 4},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(item)
		if result != "" {
			testLen += lipgloss.Width(result) + len(separator)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}
