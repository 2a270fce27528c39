package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/model"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List preset messages",
	Long: `List the preset messages from the config file (or the built-in
defaults when the config has none). Use an ID with 'goodpoints send --preset'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printPresets(cmd.OutOrStdout(), cfg.Presets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func printPresets(w io.Writer, presets []model.Preset) {
	for _, p := range presets {
		if p.Category != "" {
			fmt.Fprintf(w, "%s\t[%s] %s\n", p.ID, p.Category, p.Text)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Text)
	}
}
