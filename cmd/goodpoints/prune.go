package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/model"
)

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old good points from history",
	Long: `Remove old good points from the history.

Without flags, the [prune] section of the config file is used.

Examples:
  # Remove good points older than a school year
  goodpoints prune --older-than 365d

  # Keep only the 500 most recent good points
  goodpoints prune --keep 500

  # Preview what would be removed (dry run)
  goodpoints prune --older-than 30d --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove good points older than this duration (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent good points (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThan, keep := pruneOpts.olderThan, pruneOpts.keep
	if !cmd.Flags().Changed("older-than") && !cmd.Flags().Changed("keep") {
		olderThan, keep = cfg.Prune.OlderThan, cfg.Prune.Keep
	}

	age, err := core.ParseDuration(olderThan)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if age == 0 && keep == 0 {
		return errors.New("specify --older-than or --keep")
	}

	out := cmd.OutOrStdout()
	if pointStore.Count() == 0 {
		fmt.Fprintln(out, "No good points in history")
		return nil
	}

	toRemove := pointStore.PruneCandidates(age, keep)
	if len(toRemove) == 0 {
		fmt.Fprintln(out, "No good points to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Fprintf(out, "Would remove %d good point(s):\n", len(toRemove))
		for i, g := range toRemove {
			if i >= 10 {
				fmt.Fprintf(out, "  ... and %d more\n", len(toRemove)-10)
				break
			}
			fmt.Fprintf(out, "  - [%s] %s (%s)\n", g.StudentName, g.TextTruncated(50), g.RelativeTime())
		}
		return nil
	}

	removed, err := pointStore.DeleteMany(pointIDs(toRemove))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Removed %d good point(s)\n", removed)
	return nil
}

func pointIDs(points []model.GoodPoint) []string {
	ids := make([]string, len(points))
	for i, g := range points {
		ids[i] = g.ID
	}
	return ids
}
