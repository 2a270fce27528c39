package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/i18n"
	"github.com/goodpoints/goodpoints/internal/notify"
)

var alertOpts struct {
	severity string
}

var alertCmd = &cobra.Command{
	Use:   "alert <message...>",
	Short: "Show an alert on the desktop",
	Long: `Show an alert through the desktop notification service, the same way
the TUI mirrors its alerts when [alert] desktop = true.

Examples:
  goodpoints alert "Report cards are due Friday"
  goodpoints alert --severity error "Roster sync failed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAlert,
}

func init() {
	rootCmd.AddCommand(alertCmd)

	alertCmd.Flags().StringVar(&alertOpts.severity, "severity", string(alert.SeverityInfo),
		"Alert severity (success, error, warning, info)")
}

func runAlert(cmd *cobra.Command, args []string) error {
	severity, err := alert.ParseSeverity(alertOpts.severity)
	if err != nil {
		return err
	}

	if err := desktopAlert(strings.Join(args, " "), severity); err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	return nil
}

// errSink records the last delivery error of the sink it wraps.
type errSink struct {
	alert.Sink
	err error
}

func (s *errSink) Deliver(ctx context.Context, message string, severity alert.Severity) error {
	s.err = s.Sink.Deliver(ctx, message, severity)
	return s.err
}

// desktopAlert shows message through an alert coordinator with the
// desktop sink attached and waits for the delivery.
func desktopAlert(message string, severity alert.Severity) error {
	tr := i18n.MustNew(cfg.UI.Locale)
	sink := &errSink{Sink: notify.FromConfig(cfg.Alert,
		notify.WithTranslator(tr),
		notify.WithLogger(logger),
	)}

	c := alert.New(
		alert.WithDuration(cfg.Alert.Duration.Duration()),
		alert.WithSink(sink),
		alert.WithLogger(logger),
	)
	defer c.Stop()

	c.Alert(message, severity)
	c.Wait()
	return sink.err
}
