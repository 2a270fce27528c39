package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var deleteOpts struct {
	stdin bool // Read IDs from stdin
	yes   bool
}

var deleteCmd = &cobra.Command{
	Use:     "delete [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete good points",
	Long: `Permanently delete good points from the history.

Deleted good points are remembered so a later import does not bring them
back. IDs can be provided as positional arguments or via stdin (--stdin),
where each line is scanned for an ID.

Examples:
  goodpoints delete 01HZ3X2J5YFMK2V3P4Q6R7S8T9 --yes

  # Delete everything sent to a class
  goodpoints list --class c7b --format ids | goodpoints delete --stdin --yes`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVar(&deleteOpts.stdin, "stdin", false,
		"Read IDs from stdin (scans each line for an ID)")
	deleteCmd.Flags().BoolVarP(&deleteOpts.yes, "yes", "y", false,
		"Confirm the deletion")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids := args
	if deleteOpts.stdin {
		stdinIDs, err := readIDs(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		ids = append(ids, stdinIDs...)
	}
	ids = uniqueStrings(ids)

	if len(ids) == 0 {
		return errors.New("no good point IDs provided")
	}
	if !deleteOpts.yes {
		return fmt.Errorf("refusing to delete %d good point(s) without --yes", len(ids))
	}

	removed, err := pointStore.DeleteMany(ids)
	if err != nil {
		return err
	}
	if missing := len(ids) - removed; missing > 0 {
		logger.Warn("some good points were not found", "count", missing)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d good point(s)\n", removed)
	return nil
}

// readIDs reads IDs from r, one per line or embedded in a line.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if id := extractULID(line); id != "" {
			ids = append(ids, id)
		}
	}

	return ids, scanner.Err()
}

// ULID regex pattern: 26 characters, alphanumeric (0-9, A-Z excluding I, L, O, U)
var ulidPattern = regexp.MustCompile(`\b[0-9A-HJKMNP-TV-Z]{26}\b`)

// extractULID returns the first ULID in line, or "".
func extractULID(line string) string {
	return ulidPattern.FindString(strings.TrimSpace(line))
}

// uniqueStrings removes duplicates from a string slice.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	return result
}
