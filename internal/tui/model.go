// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/bookmarks"
	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/popup"
	"github.com/goodpoints/goodpoints/internal/roster"
	"github.com/goodpoints/goodpoints/internal/store"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeCompose
	ModeClasses
	ModeHelp
)

// closeIntent says what accepting the discard-draft popup leads to.
type closeIntent int

const (
	closeToList closeIntent = iota
	closeToQuit
)

// Options wires the model to its collaborators.
type Options struct {
	Config     *config.Config
	Store      *store.Store
	Roster     *roster.File
	Bookmarks  *bookmarks.List
	Tombstones *store.TombstoneFile // optional; deletions are persisted to it
	Popups     *popup.Coordinator
	Alerts     *alert.Coordinator
	Translator i18n.Translator
	Logger     *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	cfg        *config.Config
	store      *store.Store
	roster     *roster.File
	bookmarks  *bookmarks.List
	tombstones *store.TombstoneFile
	popups     *popup.Coordinator
	alerts     *alert.Coordinator
	tr         i18n.Translator
	logger     *slog.Logger

	mode     Mode
	prevMode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model
	spinner     spinner.Model

	compose     composeState
	classCursor int
	closeThen   closeIntent
	sentTo      string // student of the save popup in flight

	points      []model.GoodPoint
	selected    *model.GoodPoint
	searchQuery string
	width       int
	height      int
	ready       bool

	keys KeyMap

	storeCh    <-chan store.ChangeEvent
	popupCh    <-chan popup.State
	alertCh    <-chan alert.State
	bookmarkCh <-chan bookmarks.Change
}

// goodPointItem wraps a good point for the list component.
type goodPointItem struct {
	point model.GoodPoint
}

func (i goodPointItem) Title() string {
	if i.point.ClassID == "" {
		return i.point.StudentName
	}
	return fmt.Sprintf("%s (%s)", i.point.StudentName, i.point.ClassID)
}

func (i goodPointItem) Description() string {
	return fmt.Sprintf("%s - %s", i.point.RelativeTime(), i.point.TextTruncated(60))
}

func (i goodPointItem) FilterValue() string {
	return i.point.StudentName + " " + i.point.Text
}

// New creates a new TUI model. Popups, Alerts, Store, Roster and
// Bookmarks must be set.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	tr := opts.Translator
	if tr == nil {
		tr = i18n.MustNew(cfg.UI.Locale)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = tr.T("app_title")
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = tr.T("search_placeholder")
	searchInput.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg:         cfg,
		store:       opts.Store,
		roster:      opts.Roster,
		bookmarks:   opts.Bookmarks,
		tombstones:  opts.Tombstones,
		popups:      opts.Popups,
		alerts:      opts.Alerts,
		tr:          tr,
		logger:      logger,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		spinner:     sp,
		compose:     newCompose(tr),
		keys:        DefaultKeyMap(),
	}

	m.storeCh = opts.Store.Subscribe()
	m.popupCh = opts.Popups.Subscribe()
	m.alertCh = opts.Alerts.Subscribe()
	m.bookmarkCh = opts.Bookmarks.Subscribe()

	m.points = m.store.All()
	m.list.SetItems(m.buildListItems())

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitFor(m.storeCh, storeChangedMsg{}),
		waitFor(m.popupCh, popupChangedMsg{}),
		waitFor(m.alertCh, alertChangedMsg{}),
		waitFor(m.bookmarkCh, bookmarksChangedMsg{}),
		m.spinner.Tick,
	)
}

type (
	refreshMsg          struct{}
	storeChangedMsg     struct{}
	popupChangedMsg     struct{}
	alertChangedMsg     struct{}
	bookmarksChangedMsg struct{}
)

// popupAcceptedMsg reports the outcome of an accept run in a command.
type popupAcceptedMsg struct {
	kind     popup.Kind
	accepted bool // an open popup was accepted
	err      error
}

type errMsg struct {
	err error
}

type starToggledMsg struct {
	name    string
	starred bool
	err     error
}

// waitFor blocks on ch and returns msg for each event. A closed channel
// ends the subscription.
func waitFor[T any](ch <-chan T, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, waitFor(m.storeCh, storeChangedMsg{})

	case popupChangedMsg:
		return m, waitFor(m.popupCh, popupChangedMsg{})

	case alertChangedMsg:
		return m, waitFor(m.alertCh, alertChangedMsg{})

	case bookmarksChangedMsg:
		m.clampClassCursor()
		return m, waitFor(m.bookmarkCh, bookmarksChangedMsg{})

	case popupAcceptedMsg:
		return m.handleAccepted(msg)

	case errMsg:
		m.logger.Warn("tui operation failed", "error", msg.err)
		m.alerts.Error(m.tr.T("operation_failed", msg.err.Error()))
		return m, nil

	case starToggledMsg:
		switch {
		case msg.err != nil:
			m.alerts.Error(m.tr.T("star_failed", msg.name))
		case msg.starred:
			m.alerts.Success(m.tr.T("class_starred", msg.name))
		default:
			m.alerts.Success(m.tr.T("class_unstarred", msg.name))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case ModeCompose:
		cmd = m.compose.update(msg)
	}
	return m, cmd
}

// handleKey routes a key press: an open popup takes every key, then the
// toast, then global keys, then the current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		if !m.popups.State().IsOpen && m.mode == ModeCompose && m.compose.dirty() {
			return m.confirmDiscard(closeToQuit)
		}
		return m, tea.Quit
	}

	if st := m.popups.State(); st.IsOpen {
		return m.handlePopupKey(msg, st)
	}

	if m.alerts.State().IsOpen && !m.typing() {
		if key.Matches(msg, m.keys.DismissToast) {
			m.alerts.Close(alert.ReasonUser)
			return m, nil
		}
		// Any other key is a clickaway, which never dismisses a toast.
		m.alerts.Close(alert.ReasonClickaway)
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			if m.mode == ModeHelp {
				m.mode = m.prevMode
			} else {
				m.prevMode = m.mode
				m.mode = ModeHelp
			}
			return m, nil
		}
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeCompose:
		return m.handleComposeKey(msg)
	case ModeClasses:
		return m.handleClassesKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = m.prevMode
		}
		return m, nil
	}

	return m, nil
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	return m.mode == ModeCompose || m.mode == ModeSearch
}

// handlePopupKey handles keys while a popup is open. Nothing but
// ctrl+c gets through while its confirm callback is loading.
func (m Model) handlePopupKey(msg tea.KeyMsg, st popup.State) (tea.Model, tea.Cmd) {
	if st.IsLoading || st.Request == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Accept):
		return m, m.acceptPopup(st.Request.Kind, st.Seq)
	case key.Matches(msg, m.keys.Reject):
		m.popups.Cancel()
	case key.Matches(msg, m.keys.Tick):
		if st.Request.Gated() {
			m.popups.ToggleChecked()
		}
	}
	return m, nil
}

// acceptPopup runs Accept off the update loop so the loading state can
// render while the confirm callback works. Only the popup shown when the
// key was pressed (seq) is accepted.
func (m Model) acceptPopup(kind popup.Kind, seq uint64) tea.Cmd {
	p := m.popups
	return func() tea.Msg {
		accepted, err := p.Submit(context.Background(), seq)
		return popupAcceptedMsg{kind: kind, accepted: accepted, err: err}
	}
}

func (m Model) handleAccepted(msg popupAcceptedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, popup.ErrBusy) {
			return m, nil
		}
		m.logger.Warn("popup confirm failed", "kind", msg.kind, "error", msg.err)
		m.alerts.Error(m.tr.T("operation_failed", msg.err.Error()))
		return m, nil
	}
	if !msg.accepted {
		return m, nil
	}

	switch msg.kind {
	case popup.KindSave:
		name := m.sentTo
		m.sentTo = ""
		m.compose.reset()
		m.mode = ModeList
		m.popups.Open(popup.KindSuccessSave, popup.WithContent(m.tr.T("sent_to", name)))
	case popup.KindClose:
		if m.closeThen == closeToQuit {
			return m, tea.Quit
		}
		m.compose.reset()
		m.mode = ModeList
	}
	return m, nil
}

// confirmDiscard asks before throwing away an unsent draft.
func (m Model) confirmDiscard(then closeIntent) (tea.Model, tea.Cmd) {
	m.closeThen = then
	m.popups.Open(popup.KindClose, popup.WithContent(m.tr.T("discard_draft")))
	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(goodPointItem); ok {
			m.openDetail(item.point)
		}
		return m, nil

	case key.Matches(msg, m.keys.Compose):
		return m, m.startCompose()

	case key.Matches(msg, m.keys.Classes):
		m.mode = ModeClasses
		m.clampClassCursor()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(goodPointItem); ok {
			m.confirmDelete(item.point)
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		m.confirmClearAll()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		s := m.store
		return m, func() tea.Msg {
			if err := s.Hydrate(); err != nil {
				return errMsg{err: err}
			}
			return refreshMsg{}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openDetail(g model.GoodPoint) {
	m.selected = &g
	m.mode = ModeDetail
	m.viewport.SetContent(m.renderDetail(g))
	m.viewport.GotoTop()
}

// confirmDelete opens the delete popup for g.
func (m Model) confirmDelete(g model.GoodPoint) {
	s, tf := m.store, m.tombstones
	m.popups.Open(popup.KindDelete,
		popup.WithContent(m.tr.T("delete_good_point", g.StudentName)),
		popup.WithLoading(),
		popup.WithConfirm(func(ctx context.Context) error {
			if err := s.Delete(g.ID); err != nil {
				return err
			}
			return persistTombstones(tf, s)
		}),
	)
}

// confirmClearAll opens the checkbox-gated popup that removes every good point.
func (m Model) confirmClearAll() {
	s, tf := m.store, m.tombstones
	m.popups.Open(popup.KindAreYouSure,
		popup.WithTitle(m.tr.T("clear_all")),
		popup.WithContent(m.tr.T("clear_all_body", fmt.Sprint(s.Count()))),
		popup.WithCheckbox(m.tr.T("clear_all_checkbox"), m.tr.T("clear_all_warning")),
		popup.WithDeleting(true),
		popup.WithLoading(),
		popup.WithConfirm(func(ctx context.Context) error {
			if err := s.Clear(); err != nil {
				return err
			}
			return persistTombstones(tf, s)
		}),
	)
}

func persistTombstones(tf *store.TombstoneFile, s *store.Store) error {
	if tf == nil {
		return nil
	}
	return tf.Persist(s)
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.selected != nil {
			g := *m.selected
			m.mode = ModeList
			m.selected = nil
			m.confirmDelete(g)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		if item, ok := m.list.SelectedItem().(goodPointItem); ok {
			m.searchInput.Blur()
			m.openDetail(item.point)
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

// refresh reloads good points from the store.
func (m *Model) refresh() {
	m.points = m.store.All()
	m.list.SetItems(m.buildListItems())
}

// buildListItems creates list items from the current good points,
// narrowed by the search query. A query that parses as a filter
// expression ("class=7b,time<7d") filters; anything else is a fuzzy
// search over student names and text.
func (m Model) buildListItems() []list.Item {
	points := m.points

	if m.searchQuery != "" {
		if isFilterExpression(m.searchQuery) {
			expr, _ := core.ParseFilter(m.searchQuery)
			points = core.FilterWithExpr(points, expr)
		} else {
			points = core.Search(points, m.searchQuery)
		}
	}

	items := make([]list.Item, len(points))
	for i, g := range points {
		items[i] = goodPointItem{point: g}
	}
	return items
}

// isFilterExpression reports whether query is a valid filter expression.
func isFilterExpression(query string) bool {
	expr, err := core.ParseFilter(query)
	return err == nil && len(expr.Conditions) > 0
}
