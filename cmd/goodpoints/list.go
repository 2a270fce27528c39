package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/adapter/output"
	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/store"
)

var listOpts struct {
	// Filter options
	since   string
	student string
	class   string
	limit   int
	search  string
	filter  string

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string

	// Lookup options
	index int
	id    string
}

var listCmd = &cobra.Command{
	Use:     "list [index|id]",
	Aliases: []string{"get", "ls"},
	Short:   "Query and output sent good points",
	Long: `Query the good points history and output it in various formats.

Without arguments, outputs every good point, newest first, one per line
(suitable for fuzzel, rofi, fzf, etc.).

With an index (1-based) or ID argument, outputs that good point.

Examples:
  # Everything sent to class 7B this week
  goodpoints list --class c7b --since 7d

  # Filter expression
  goodpoints list --filter "student~dana,text~homework"

  # A single good point's text
  goodpoints list 3 --field text

  # Output as JSON or YAML
  goodpoints list --format json

  # Pick from a menu and show the full entry
  goodpoints list | fzf | goodpoints list --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Filter flags
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Show good points from the last duration (e.g., 1h, 7d, 1w)")
	listCmd.Flags().StringVar(&listOpts.student, "student", "",
		"Filter by student ID")
	listCmd.Flags().StringVar(&listOpts.class, "class", "",
		"Filter by class ID")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of good points to show (0=unlimited)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Fuzzy search in student names and text")
	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression (e.g. \"class=7b,time<7d\")")

	// Sort flags
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", config.DefaultSortField,
		"Sort by field (time, student, class)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", config.DefaultSortOrder,
		"Sort order (asc, desc)")

	// Output flags
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatLine),
		"Output format (line, plain, json, yaml, ids)")
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output a single field (id, student, class, teacher, preset, time, text, all)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Go template, or the name of a template from the config file")

	// Lookup flags
	listCmd.Flags().IntVar(&listOpts.index, "index", 0,
		"Lookup a good point by 1-based index")
	listCmd.Flags().StringVar(&listOpts.id, "id", "",
		"Lookup a good point by ID")
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		if idx, err := strconv.Atoi(args[0]); err == nil && idx > 0 {
			listOpts.index = idx
		} else {
			listOpts.id = args[0]
		}
	}

	// A line piped back from the line format: "3 | 5m | Dana Levi | ..."
	if listOpts.id != "" {
		if idx, ok := parseLineSelection(listOpts.id); ok {
			listOpts.index = idx
			listOpts.id = ""
		}
	}

	q, err := buildQuery(cmd)
	if err != nil {
		return err
	}

	points := pointStore.Filter(q)
	if listOpts.search != "" {
		points = core.Search(points, listOpts.search)
	}

	if listOpts.index > 0 || listOpts.id != "" {
		return handleLookup(cmd.OutOrStdout(), points)
	}

	if len(points) == 0 {
		logger.Debug("no good points to output")
		return nil
	}

	formatter, err := createFormatter(listOpts.format)
	if err != nil {
		return err
	}
	return formatter.Format(cmd.OutOrStdout(), points)
}

// buildQuery turns the flags, with config defaults for unset ones, into a
// store query.
func buildQuery(cmd *cobra.Command) (store.Query, error) {
	var q store.Query

	since := listOpts.since
	if !cmd.Flags().Changed("since") && cfg != nil {
		since = cfg.List.Since
	}
	if since != "" {
		d, err := core.ParseDuration(since)
		if err != nil {
			return q, fmt.Errorf("invalid --since: %w", err)
		}
		q.Since = d
	}

	q.StudentID = listOpts.student
	q.ClassID = listOpts.class

	q.Limit = listOpts.limit
	if !cmd.Flags().Changed("limit") && cfg != nil {
		q.Limit = cfg.List.Limit
	}

	if listOpts.filter != "" {
		expr, err := core.ParseFilter(listOpts.filter)
		if err != nil {
			return q, fmt.Errorf("invalid --filter: %w", err)
		}
		q.Expr = expr
	}

	sortBy, sortOrder := listOpts.sortBy, listOpts.sortOrder
	if cfg != nil {
		if !cmd.Flags().Changed("sort") {
			sortBy = cfg.List.SortField
		}
		if !cmd.Flags().Changed("order") {
			sortOrder = cfg.List.SortOrder
		}
	}
	field, err := core.ParseSortField(sortBy)
	if err != nil {
		return q, err
	}
	order, err := core.ParseSortOrder(sortOrder)
	if err != nil {
		return q, err
	}
	q.Sort = core.SortOptions{Field: field, Order: order}

	return q, nil
}

// handleLookup outputs a single good point.
func handleLookup(w io.Writer, points []model.GoodPoint) error {
	var g *model.GoodPoint

	if listOpts.index > 0 {
		g = core.LookupByIndex(points, listOpts.index)
		if g == nil {
			return fmt.Errorf("good point at index %d not found", listOpts.index)
		}
	} else {
		g = core.LookupByID(points, listOpts.id)
		if g == nil {
			return fmt.Errorf("good point with ID %s not found", listOpts.id)
		}
	}

	if listOpts.field != "" {
		_, err := fmt.Fprintln(w, output.FormatField(g, listOpts.field))
		return err
	}

	// A single good point defaults to JSON rather than one line
	format := listOpts.format
	if output.FormatType(format) == output.FormatLine {
		format = string(output.FormatJSON)
	}

	formatter, err := createFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(w, []model.GoodPoint{*g})
}

// parseLineSelection extracts the index from a line format selection.
func parseLineSelection(selection string) (int, bool) {
	selection = strings.TrimSpace(selection)
	if !strings.Contains(selection, "|") {
		return 0, false
	}

	parts := strings.SplitN(selection, "|", 2)
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || idx <= 0 {
		return 0, false
	}
	return idx, true
}

// createFormatter creates the output formatter for format. The template
// flag may name a config template.
func createFormatter(format string) (output.Formatter, error) {
	opts := output.DefaultFormatterOptions()

	tmpl := listOpts.template
	if cfg != nil {
		if named := cfg.GetTemplate(tmpl); tmpl != "" && named != "" {
			tmpl = named
		}
	}
	opts.Template = tmpl

	return output.NewFormatter(output.FormatType(strings.ToLower(format)), opts)
}
