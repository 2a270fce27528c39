package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/adapter/input"
)

var importCmd = &cobra.Command{
	Use:   "import [file|-]",
	Short: "Import good points from JSON",
	Long: `Import good points from a JSON array or JSON lines.

Reads standard input when no file (or "-") is given. Entries missing an ID
get a new one; missing student names and classes are filled in from the
roster. Duplicates and previously deleted good points are skipped.

Examples:
  goodpoints import backup.jsonl
  goodpoints list --format json | ssh laptop goodpoints import`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	source := ""
	if len(args) > 0 {
		source = args[0]
	}

	opts := []input.Option{
		input.WithResolver(func(id string) (string, string, bool) {
			e, ok := rosterFile.Student(id)
			if !ok {
				return "", "", false
			}
			return e.FullName(), e.ClassID, true
		}),
		input.WithTeacher(cfg.UI.Teacher),
	}

	var (
		adapter input.InputAdapter
		err     error
	)
	if source == "" || source == "-" {
		adapter = input.NewStdinAdapterWithReader(cmd.InOrStdin(), opts...)
	} else {
		adapter, err = input.NewAdapter(source, opts...)
		if err != nil {
			return fmt.Errorf("failed to create adapter: %w", err)
		}
	}

	logger.Debug("importing good points", "source", adapter.Name())

	points, err := adapter.Import(ctx)
	if err != nil {
		return fmt.Errorf("failed to import good points: %w", err)
	}

	added, err := pointStore.AddBatch(points)
	if err != nil {
		return fmt.Errorf("failed to save good points: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d good point(s), skipped %d\n", added, len(points)-added)
	return nil
}
