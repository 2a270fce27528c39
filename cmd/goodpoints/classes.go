package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/bookmarks"
	"github.com/goodpoints/goodpoints/internal/model"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List roster classes, starred first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := bookmarks.New(rosterFile.Classes(), logger)
		defer list.Close()

		out := cmd.OutOrStdout()
		printClasses(out, "★", list.Starred())
		printClasses(out, " ", list.Others())
		return nil
	},
}

var starCmd = &cobra.Command{
	Use:   "star <class-id>",
	Short: "Star a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStar(cmd, args[0], true)
	},
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <class-id>",
	Short: "Remove the star from a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStar(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(classesCmd, starCmd, unstarCmd)
}

// setStar toggles class id when its star differs from starred. The roster
// file is written by the toggle's mutation.
func setStar(cmd *cobra.Command, id string, starred bool) error {
	list := bookmarks.New(rosterFile.Classes(), logger)
	defer list.Close()

	c := rosterFile.Class(id)
	if c == nil {
		return fmt.Errorf("unknown class %q", id)
	}

	out := cmd.OutOrStdout()
	if list.IsStarred(id) == starred {
		fmt.Fprintf(out, "%s is already %s\n", c.Name, starWord(starred))
		return nil
	}

	if err := list.Toggle(cmd.Context(), id, rosterFile.SetStarred); err != nil {
		return fmt.Errorf("failed to update %s: %w", c.Name, err)
	}
	fmt.Fprintf(out, "%s %s\n", c.Name, starWord(starred))
	return nil
}

func starWord(starred bool) string {
	if starred {
		return "starred"
	}
	return "unstarred"
}

func printClasses(w io.Writer, mark string, classes []model.Class) {
	for _, c := range classes {
		fmt.Fprintf(w, "%s %-10s %-20s %d students\n", mark, c.ID, c.Name, len(c.Students))
	}
}
