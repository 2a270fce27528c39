package main

import (
	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	Long: `Launch the interactive terminal user interface.

The TUI provides:
  - Scrollable list of sent good points
  - Search by name or text, or by filter expression (class=7b,time<7d)
  - Compose view with a student picker and preset messages
  - Classes view for starring classes
  - Confirmation popups and toast alerts
  - Live updates when another goodpoints process writes the history

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View details
  n           Send a good point
  c           Classes
  /           Search
  d           Delete
  X           Remove every good point
  r           Reload from disk
  x           Close the toast alert
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.RunOptions{
		Config:      cfg,
		Store:       pointStore,
		Roster:      rosterFile,
		Tombstones:  tombstoneFile,
		PersistPath: historyPath(),
		Logger:      logger,
	})
}
