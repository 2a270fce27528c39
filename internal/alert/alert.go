// Package alert provides the toast coordinator.
//
// A Coordinator owns a single alert slot. A new alert replaces whatever is
// showing and restarts the auto-dismiss timer; there is no queue. The
// alert closes when the timer fires or when the user closes it
// explicitly. Clickaway dismissals are ignored.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultDuration is how long an alert stays visible.
const DefaultDuration = 3 * time.Second

// sinkTimeout bounds a single sink delivery.
const sinkTimeout = 5 * time.Second

// Severity is the kind of an alert.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Severities lists every valid severity.
var Severities = []Severity{SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo}

// ParseSeverity parses a severity name (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeveritySuccess:
		return SeveritySuccess, nil
	case SeverityError:
		return SeverityError, nil
	case SeverityWarning, "warn":
		return SeverityWarning, nil
	case SeverityInfo:
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// Reason says why an alert is being dismissed.
type Reason string

const (
	// ReasonUser is an explicit close action.
	ReasonUser Reason = "user"
	// ReasonTimeout is the auto-dismiss timer.
	ReasonTimeout Reason = "timeout"
	// ReasonClickaway is interaction outside the alert. It never closes it.
	ReasonClickaway Reason = "clickaway"
)

// State is a snapshot of the alert slot.
type State struct {
	IsOpen   bool
	Message  string
	Severity Severity
	OpenedAt time.Time
}

// Sink receives a copy of every alert, e.g. a desktop notification service.
type Sink interface {
	Deliver(ctx context.Context, message string, severity Severity) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDuration sets the auto-dismiss duration. Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithSink adds a sink that mirrors alerts.
func WithSink(s Sink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator owns the alert slot. It is safe for concurrent use.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	duration time.Duration
	timer    *time.Timer
	gen      uint64 // bumped on every open/close so stale timers do nothing
	stopped  bool

	sinks   []Sink
	pending sync.WaitGroup
	logger  *slog.Logger

	subscribers []chan State
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		duration: DefaultDuration,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Duration returns the auto-dismiss duration.
func (c *Coordinator) Duration() time.Duration {
	return c.duration
}

// Alert shows message at the given severity, replacing any visible alert.
func (c *Coordinator) Alert(message string, severity Severity) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	c.gen++
	gen := c.gen
	c.state = State{
		IsOpen:   true,
		Message:  message,
		Severity: severity,
		OpenedAt: time.Now(),
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.duration, func() { c.expire(gen) })
	c.notifyChange()
	sinks := c.sinks
	c.mu.Unlock()

	for _, s := range sinks {
		c.pending.Add(1)
		go c.deliver(s, message, severity)
	}
}

// Wait blocks until every sink delivery started so far has finished.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// Success shows a success alert.
func (c *Coordinator) Success(message string) {
	c.Alert(message, SeveritySuccess)
}

// Error shows an error alert.
func (c *Coordinator) Error(message string) {
	c.Alert(message, SeverityError)
}

// Close dismisses the alert for the given reason.
// Clickaway is ignored. Returns true if the alert was open and is now closed.
func (c *Coordinator) Close(reason Reason) bool {
	if reason == ReasonClickaway {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsOpen {
		return false
	}
	c.gen++
	c.closeLocked()
	return true
}

// State returns a snapshot of the alert slot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives the new state after every change.
// Sends never block: a slow subscriber misses intermediate states and
// should read State() when woken.
func (c *Coordinator) Subscribe() <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 10)
	if c.stopped {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Stop clears the pending timer and closes subscriber channels.
// Further alerts are ignored.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for _, ch := range c.subscribers {
		close(ch)
	}
	c.subscribers = nil
}

func (c *Coordinator) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || !c.state.IsOpen || c.stopped {
		return
	}
	c.closeLocked()
	c.logger.Debug("alert dismissed", "reason", ReasonTimeout)
}

func (c *Coordinator) closeLocked() {
	c.state.IsOpen = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.notifyChange()
}

func (c *Coordinator) deliver(s Sink, message string, severity Severity) {
	defer c.pending.Done()
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.Deliver(ctx, message, severity); err != nil {
		c.logger.Warn("alert sink failed", "severity", severity, "error", err)
	}
}

// notifyChange sends the current state to all subscribers (non-blocking).
func (c *Coordinator) notifyChange() {
	for _, ch := range c.subscribers {
		select {
		case ch <- c.state:
		default:
		}
	}
}
