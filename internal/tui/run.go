package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/bookmarks"
	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/notify"
	"github.com/goodpoints/goodpoints/internal/popup"
	"github.com/goodpoints/goodpoints/internal/roster"
	"github.com/goodpoints/goodpoints/internal/store"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config      *config.Config
	Store       *store.Store
	Roster      *roster.File
	Tombstones  *store.TombstoneFile
	PersistPath string // Path to watch for changes (empty = no watching)
	Logger      *slog.Logger
}

// Run starts the TUI with the given options and blocks until it exits.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := opts.Store
	if s == nil {
		s = store.NewStore(nil)
	}
	r := opts.Roster
	if r == nil {
		r = roster.NewFile("")
	}

	tr := i18n.MustNew(cfg.UI.Locale)

	alertOpts := []alert.Option{
		alert.WithDuration(cfg.Alert.Duration.Duration()),
		alert.WithLogger(logger),
	}
	if cfg.Alert.Desktop {
		alertOpts = append(alertOpts, alert.WithSink(notify.FromConfig(cfg.Alert,
			notify.WithTranslator(tr),
			notify.WithLogger(logger),
		)))
	}
	alerts := alert.New(alertOpts...)
	defer alerts.Stop()

	popups := popup.New(alerts, tr, logger)
	defer popups.Shutdown()

	marks := bookmarks.New(r.Classes(), logger)
	defer marks.Close()

	if opts.PersistPath != "" {
		watcher, err := store.NewFileWatcher(s, opts.PersistPath, logger)
		if err != nil {
			logger.Warn("failed to create file watcher", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("failed to start file watcher", "error", err)
			_ = watcher.Stop()
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	m := New(Options{
		Config:     cfg,
		Store:      s,
		Roster:     r,
		Bookmarks:  marks,
		Tombstones: opts.Tombstones,
		Popups:     popups,
		Alerts:     alerts,
		Translator: tr,
		Logger:     logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
