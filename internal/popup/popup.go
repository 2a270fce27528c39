// Package popup provides the modal dialog coordinator.
//
// A Coordinator owns a single popup slot. Opening a popup replaces the
// current one in place; there is no stack. Accepting a popup may be gated
// on a checkbox, may run a confirm callback with a loading state, and may
// fire a "deleted successfully" alert afterwards.
package popup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/i18n"
)

// ErrBusy is returned by Accept while a previous accept is still running.
var ErrBusy = errors.New("popup: confirm already in progress")

// Alerter shows toast alerts. *alert.Coordinator implements it.
type Alerter interface {
	Alert(message string, severity alert.Severity)
}

// State is a snapshot of the popup slot.
type State struct {
	IsOpen           bool
	Request          *Request // last opened request, kept after close
	IsLoading        bool
	Checked          bool
	ShowCheckWarning bool
	Seq              uint64 // incremented by every Open
}

// Coordinator owns the popup slot. It is safe for concurrent use; the
// confirm callback runs on the goroutine that called Accept.
type Coordinator struct {
	mu        sync.Mutex
	state     State
	accepting bool

	alerter Alerter
	tr      i18n.Translator
	logger  *slog.Logger

	subscribers []chan State
	shutdown    bool
}

// New creates a Coordinator. alerter may be nil; logger nil means slog.Default().
func New(alerter Alerter, tr i18n.Translator, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		alerter: alerter,
		tr:      tr,
		logger:  logger,
	}
}

// Open resolves and shows a popup, replacing any open one.
// Ignored while a confirm callback is loading.
func (c *Coordinator) Open(kind Kind, opts ...Option) {
	req := Resolve(kind, Build(opts...), c.tr)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsLoading {
		c.logger.Debug("popup open ignored while loading", "kind", kind)
		return
	}
	if !kind.Known() {
		c.logger.Debug("unknown popup kind", "kind", kind)
	}

	c.state = State{
		IsOpen:  true,
		Request: &req,
		Seq:     c.state.Seq + 1,
	}
	c.notifyChange()
}

// Close hides the popup and keeps the request for the close transition.
// Idempotent. Ignored while a confirm callback is loading.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Coordinator) closeLocked() {
	if c.state.IsLoading {
		c.logger.Debug("popup close ignored while loading")
		return
	}
	if !c.state.IsOpen {
		return
	}
	c.state.IsOpen = false
	c.state.ShowCheckWarning = false
	c.notifyChange()
}

// SetChecked sets the checkbox gate. Ticking it clears the warning.
func (c *Coordinator) SetChecked(checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCheckedLocked(checked)
}

func (c *Coordinator) setCheckedLocked(checked bool) {
	if !c.state.IsOpen {
		return
	}
	c.state.Checked = checked
	if checked {
		c.state.ShowCheckWarning = false
	}
	c.notifyChange()
}

// ToggleChecked flips the checkbox gate.
func (c *Coordinator) ToggleChecked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCheckedLocked(!c.state.Checked)
}

// Accept handles the accept action.
//
// If the popup is gated and the checkbox is not ticked, the warning is
// shown and nothing else happens. Otherwise the confirm callback runs
// (tracked as loading when the request asks for it). If the callback
// fails, the popup stays open and the error is returned. On success the
// popup closes and, for deleting requests, a success alert is shown.
//
// A call made while another Accept is running returns ErrBusy.
func (c *Coordinator) Accept(ctx context.Context) error {
	c.mu.Lock()
	seq := c.state.Seq
	c.mu.Unlock()

	_, err := c.Submit(ctx, seq)
	return err
}

// Submit is Accept for the popup opened as seq (State.Seq). It reports
// whether that popup was accepted, and returns false when it is no longer
// open or the checkbox gate held.
func (c *Coordinator) Submit(ctx context.Context, seq uint64) (bool, error) {
	c.mu.Lock()
	if c.accepting {
		c.mu.Unlock()
		c.logger.Debug("popup accept ignored: confirm in progress")
		return false, ErrBusy
	}
	if !c.state.IsOpen || c.state.Request == nil || c.state.Seq != seq {
		c.mu.Unlock()
		return false, nil
	}

	req := c.state.Request
	if req.Gated() && !c.state.Checked {
		c.state.ShowCheckWarning = true
		c.notifyChange()
		c.mu.Unlock()
		return false, nil
	}

	c.accepting = true
	if req.ShowLoading {
		c.state.IsLoading = true
		c.notifyChange()
	}
	c.mu.Unlock()

	if err := c.runConfirm(ctx, req); err != nil {
		return false, err
	}

	c.mu.Lock()
	// The callback may have opened a follow-up popup; leave that one alone.
	if c.state.Request == req && c.state.IsOpen {
		c.state.IsOpen = false
		c.state.ShowCheckWarning = false
	}
	c.notifyChange()
	c.mu.Unlock()

	if req.Deleting && c.alerter != nil {
		c.alerter.Alert(c.tr.T(i18n.KeyDeletedSuccessfully), alert.SeveritySuccess)
	}
	return true, nil
}

// runConfirm runs the confirm callback and always clears the accepting
// and loading flags, even when the callback panics.
func (c *Coordinator) runConfirm(ctx context.Context, req *Request) (err error) {
	defer func() {
		r := recover()
		c.mu.Lock()
		c.accepting = false
		c.state.IsLoading = false
		if err != nil || r != nil {
			c.notifyChange()
		}
		c.mu.Unlock()
		if r != nil {
			panic(r)
		}
	}()

	if req.OnConfirm == nil {
		return nil
	}
	return req.OnConfirm(ctx)
}

// Cancel runs the cancel callback, if any, and closes the popup.
// Ignored while a confirm callback is loading.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.state.IsLoading || !c.state.IsOpen || c.state.Request == nil {
		c.mu.Unlock()
		return
	}
	req := c.state.Request
	c.mu.Unlock()

	if req.OnCancel != nil {
		req.OnCancel()
	}

	c.mu.Lock()
	if c.state.Request == req {
		c.closeLocked()
	}
	c.mu.Unlock()
}

// State returns a snapshot of the popup slot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe returns a channel that receives a snapshot after every change.
// Sends never block.
func (c *Coordinator) Subscribe() <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 10)
	if c.shutdown {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Shutdown closes subscriber channels.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return
	}
	c.shutdown = true
	for _, ch := range c.subscribers {
		close(ch)
	}
	c.subscribers = nil
}

func (c *Coordinator) snapshot() State {
	st := c.state
	if st.Request != nil {
		req := *st.Request
		st.Request = &req
	}
	return st
}

func (c *Coordinator) notifyChange() {
	if len(c.subscribers) == 0 {
		return
	}
	st := c.snapshot()
	for _, ch := range c.subscribers {
		select {
		case ch <- st:
		default:
		}
	}
}
