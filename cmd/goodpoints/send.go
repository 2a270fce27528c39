package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/roster"
)

var sendOpts struct {
	preset  string
	teacher string
}

var sendCmd = &cobra.Command{
	Use:   "send <student> [text...]",
	Short: "Send a good point to a student",
	Long: `Send a good point to a student from the roster.

The student is a roster ID or a name; a name must match a single student.
The text comes from the remaining arguments or from a preset.

Examples:
  goodpoints send s1 "Great participation in class today"
  goodpoints send "dana levi" --preset p2
  goodpoints presets`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.preset, "preset", "p", "",
		"Use the text of a preset (see 'goodpoints presets')")
	sendCmd.Flags().StringVar(&sendOpts.teacher, "teacher", "",
		"Teacher name stamped on the good point (default from config)")
}

func runSend(cmd *cobra.Command, args []string) error {
	student, err := resolveStudent(rosterFile, args[0])
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(args[1:], " "))
	var presetID string
	switch {
	case text != "" && sendOpts.preset != "":
		return errors.New("give either a text or --preset, not both")
	case sendOpts.preset != "":
		p := cfg.Preset(sendOpts.preset)
		if p == nil {
			return fmt.Errorf("unknown preset %q", sendOpts.preset)
		}
		text, presetID = p.Text, p.ID
	case text == "":
		return errors.New("no text given; pass a message or --preset")
	}

	g, err := model.NewGoodPoint(model.SourceCLI)
	if err != nil {
		return err
	}
	g.StudentID = student.ID
	g.StudentName = student.FullName()
	g.ClassID = student.ClassID
	g.Teacher = cfg.UI.Teacher
	if sendOpts.teacher != "" {
		g.Teacher = sendOpts.teacher
	}
	g.Text = text
	g.PresetID = presetID

	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid good point: %w", err)
	}
	if err := pointStore.Add(*g); err != nil {
		return fmt.Errorf("failed to save good point: %w", err)
	}
	logger.Debug("good point sent", "id", g.ID, "student", g.StudentID)

	tr := i18n.MustNew(cfg.UI.Locale)
	msg := tr.T("sent_to", g.StudentName)
	if cfg.Alert.Desktop {
		if err := desktopAlert(msg, alert.SeveritySuccess); err != nil {
			logger.Warn("desktop alert failed", "error", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), g.ID)
	return nil
}

// resolveStudent finds a roster student by ID, then by exact name, then by
// a fuzzy name match that must be unique.
func resolveStudent(r *roster.File, query string) (roster.Enrollment, error) {
	query = strings.TrimSpace(query)
	if e, ok := r.Student(query); ok {
		return e, nil
	}

	all := r.Students()
	for _, e := range all {
		if strings.EqualFold(e.FullName(), query) {
			return e, nil
		}
	}

	students := make([]model.Student, len(all))
	for i, e := range all {
		students[i] = e.Student
	}
	matches := core.SearchStudents(students, query)

	switch len(matches) {
	case 0:
		return roster.Enrollment{}, fmt.Errorf("no student matches %q", query)
	case 1:
		e, _ := r.Student(matches[0].ID)
		return e, nil
	default:
		names := make([]string, 0, len(matches))
		for _, s := range matches {
			names = append(names, s.FullName())
		}
		return roster.Enrollment{}, fmt.Errorf("%q matches several students: %s", query, strings.Join(names, ", "))
	}
}
