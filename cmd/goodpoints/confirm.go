package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/popup"
	"github.com/goodpoints/goodpoints/internal/tui"
)

var errNotConfirmed = errors.New("not confirmed")

var confirmOpts struct {
	kind     string
	title    string
	checkbox string
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <message...>",
	Short: "Ask for confirmation with a popup",
	Long: `Show a single popup in the terminal and exit 0 when it is accepted,
1 when it is cancelled.

Kinds: regular, error, success_save, success_delete, are_u_sure, save,
delete, close.

Examples:
  goodpoints confirm --kind delete "Remove last term's good points?" && goodpoints prune --older-than 120d
  goodpoints confirm --kind are_u_sure --checkbox "I have a backup" "Clear all history?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfirm,
}

func init() {
	rootCmd.AddCommand(confirmCmd)

	confirmCmd.Flags().StringVarP(&confirmOpts.kind, "kind", "k", string(popup.KindAreYouSure),
		"Popup kind")
	confirmCmd.Flags().StringVar(&confirmOpts.title, "title", "",
		"Title (default depends on the kind)")
	confirmCmd.Flags().StringVar(&confirmOpts.checkbox, "checkbox", "",
		"Require ticking a checkbox with this label")
}

func runConfirm(cmd *cobra.Command, args []string) error {
	kind, err := popup.ParseKind(confirmOpts.kind)
	if err != nil {
		return err
	}

	ok, err := tui.Confirm(tui.ConfirmOptions{
		Kind:     kind,
		Title:    confirmOpts.title,
		Content:  strings.Join(args, " "),
		Checkbox: confirmOpts.checkbox,
		Locale:   cfg.UI.Locale,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if !ok {
		cmd.SilenceErrors = true
		return errNotConfirmed
	}
	return nil
}
