package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/popup"
)

// ConfirmOptions configures a standalone popup.
type ConfirmOptions struct {
	Kind     popup.Kind
	Title    string
	Content  string
	Checkbox string // Gate acceptance on a checkbox with this label
	Locale   string
	Logger   *slog.Logger
}

// confirmModel shows a single popup and exits when it closes.
type confirmModel struct {
	popups   *popup.Coordinator
	popupCh  <-chan popup.State
	tr       *i18n.Catalog
	keys     KeyMap
	spinner  spinner.Model
	width    int
	height   int
	accepted bool
}

// Confirm shows a popup in the terminal and reports whether it was
// accepted. It is the popup coordinator without the rest of the TUI, for
// scripts.
func Confirm(opts ConfirmOptions) (bool, error) {
	m := newConfirmModel(opts)
	defer m.popups.Shutdown()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	return final.(confirmModel).accepted, nil
}

func newConfirmModel(opts ConfirmOptions) confirmModel {
	tr := i18n.MustNew(opts.Locale)
	popups := popup.New(nil, tr, opts.Logger)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := confirmModel{
		popups:  popups,
		popupCh: popups.Subscribe(),
		tr:      tr,
		keys:    DefaultKeyMap(),
		spinner: sp,
	}

	popupOpts := []popup.Option{popup.WithContent(opts.Content)}
	if opts.Title != "" {
		popupOpts = append(popupOpts, popup.WithTitle(opts.Title))
	}
	if opts.Checkbox != "" {
		popupOpts = append(popupOpts, popup.WithCheckbox(opts.Checkbox, ""))
	}
	popups.Open(opts.Kind, popupOpts...)
	return m
}

func (m confirmModel) Init() tea.Cmd {
	return tea.Batch(waitFor(m.popupCh, popupChangedMsg{}), m.spinner.Tick)
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case popupChangedMsg:
		return m, waitFor(m.popupCh, popupChangedMsg{})

	case popupAcceptedMsg:
		if msg.accepted {
			m.accepted = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m confirmModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	st := m.popups.State()
	if !st.IsOpen || st.IsLoading || st.Request == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Accept):
		p, kind, seq := m.popups, st.Request.Kind, st.Seq
		return m, func() tea.Msg {
			accepted, err := p.Submit(context.Background(), seq)
			return popupAcceptedMsg{kind: kind, accepted: accepted, err: err}
		}
	case key.Matches(msg, m.keys.Reject):
		m.popups.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tick):
		if st.Request.Gated() {
			m.popups.ToggleChecked()
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	st := m.popups.State()
	if st.Request == nil {
		return ""
	}
	return place(m.width, m.height, renderPopup(st, m.tr, m.spinner.View(), m.tr.RTL()))
}
