// Package main provides the CLI entrypoint for goodpoints.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/roster"
	"github.com/goodpoints/goodpoints/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		rosterFile  string
		configPath  string
	}
	logger *slog.Logger

	pointStore    *store.Store
	tombstoneFile *store.TombstoneFile
	rosterFile    *roster.File
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "goodpoints",
	Short: "Send and browse good points from the terminal",
	Long: `goodpoints is a terminal client for teachers to send good points
(short positive messages about a student) and browse the ones already sent.

Running goodpoints without a subcommand launches the interactive TUI.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		persistence, err := store.NewJSONLPersistence(historyPath())
		if err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}
		pointStore = store.NewStore(persistence)

		tombstoneFile = store.NewTombstoneFile(config.TombstonePath())
		if err := tombstoneFile.Sync(pointStore); err != nil {
			logger.Warn("failed to load tombstones", "error", err)
		}

		if err := pointStore.Hydrate(); err != nil {
			logger.Warn("failed to hydrate store from disk", "error", err)
		}

		path := globalOpts.rosterFile
		if path == "" {
			path = config.RosterPath()
		}
		rosterFile = roster.NewFile(path)
		if err := rosterFile.Load(); err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if tombstoneFile != nil && pointStore != nil && len(pointStore.GetTombstones()) > 0 {
			if err := tombstoneFile.Persist(pointStore); err != nil {
				logger.Warn("failed to save tombstones", "error", err)
			}
		}

		if pointStore != nil {
			return pointStore.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to good points file (default: ~/.local/share/goodpoints/goodpoints.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.rosterFile, "roster", "",
		"Path to roster file (default: ~/.local/share/goodpoints/roster.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/goodpoints/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// historyPath returns the good points file in use.
func historyPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return config.HistoryPath()
}
