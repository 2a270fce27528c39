// Package notify mirrors alerts to the freedesktop notification service.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/i18n"
)

const (
	// Interface is the notification interface name.
	Interface = "org.freedesktop.Notifications"
	// Path is the notification object path.
	Path = "/org/freedesktop/Notifications"
	// BusName is the well-known name of the notification daemon.
	BusName = "org.freedesktop.Notifications"

	notifyMethod = Interface + ".Notify"
)

// Urgency levels from the freedesktop notification specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// DefaultAppName is sent as the notification's application name.
const DefaultAppName = "goodpoints"

// UrgencyFor maps an alert severity to a notification urgency.
func UrgencyFor(s alert.Severity) byte {
	switch s {
	case alert.SeverityError:
		return UrgencyCritical
	case alert.SeverityWarning:
		return UrgencyNormal
	default:
		return UrgencyLow
	}
}

// DesktopSink implements alert.Sink over the session bus.
// The bus connection is opened on first delivery.
type DesktopSink struct {
	mu     sync.Mutex
	obj    dbus.BusObject
	dial   func() (*dbus.Conn, error)
	lastID uint32

	appName string
	expire  time.Duration
	tr      i18n.Translator
	logger  *slog.Logger
}

// Option configures a DesktopSink.
type Option func(*DesktopSink)

// WithExpire sets the notification expire timeout, normally the alert duration.
func WithExpire(d time.Duration) Option {
	return func(s *DesktopSink) { s.expire = d }
}

func WithAppName(name string) Option {
	return func(s *DesktopSink) {
		if name != "" {
			s.appName = name
		}
	}
}

// WithTranslator sets the translator used for the notification summary.
func WithTranslator(tr i18n.Translator) Option {
	return func(s *DesktopSink) { s.tr = tr }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *DesktopSink) {
		if l != nil {
			s.logger = l
		}
	}
}

// withObject injects the bus object, skipping the session bus.
func withObject(obj dbus.BusObject) Option {
	return func(s *DesktopSink) { s.obj = obj }
}

// NewDesktopSink creates a sink. Nothing is sent until Deliver is called.
func NewDesktopSink(opts ...Option) *DesktopSink {
	s := &DesktopSink{
		dial:    dbus.SessionBus,
		appName: DefaultAppName,
		expire:  alert.DefaultDuration,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig creates a sink whose notifications expire after the
// configured alert duration. opts are applied after it.
func FromConfig(cfg config.AlertConfig, opts ...Option) *DesktopSink {
	return NewDesktopSink(append([]Option{WithExpire(cfg.Duration.Duration())}, opts...)...)
}

// Deliver sends message as a desktop notification. Each notification
// replaces the previous one, matching the single alert slot.
func (s *DesktopSink) Deliver(ctx context.Context, message string, severity alert.Severity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.object()
	if err != nil {
		return err
	}

	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(UrgencyFor(severity)),
		"category": dbus.MakeVariant("im"),
	}

	call := obj.CallWithContext(ctx, notifyMethod, 0,
		s.appName,
		s.lastID,
		"",
		s.summary(severity),
		message,
		[]string{},
		hints,
		int32(s.expire/time.Millisecond),
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: read id: %w", err)
	}
	s.lastID = id
	s.logger.Debug("desktop notification sent", "id", id, "severity", severity)
	return nil
}

func (s *DesktopSink) object() (dbus.BusObject, error) {
	if s.obj != nil {
		return s.obj, nil
	}
	conn, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	s.obj = conn.Object(BusName, Path)
	return s.obj, nil
}

func (s *DesktopSink) summary(severity alert.Severity) string {
	if s.tr == nil {
		return s.appName
	}
	return s.tr.T("severity_" + string(severity))
}
