package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/alert"
	"github.com/goodpoints/goodpoints/internal/config"
	"github.com/goodpoints/goodpoints/internal/i18n"
)

// fakeObject records Notify calls. Methods other than CallWithContext
// are never used by the sink.
type fakeObject struct {
	dbus.BusObject
	method string
	calls  [][]interface{}
	nextID uint32
	err    error
}

func (f *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	f.method = method
	f.calls = append(f.calls, args)
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	f.nextID++
	return &dbus.Call{Body: []interface{}{f.nextID}}
}

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, UrgencyCritical, UrgencyFor(alert.SeverityError))
	assert.Equal(t, UrgencyNormal, UrgencyFor(alert.SeverityWarning))
	assert.Equal(t, UrgencyLow, UrgencyFor(alert.SeveritySuccess))
	assert.Equal(t, UrgencyLow, UrgencyFor(alert.SeverityInfo))
}

func TestDeliver_SendsNotify(t *testing.T) {
	obj := &fakeObject{}
	s := NewDesktopSink(withObject(obj), WithExpire(1500*time.Millisecond), WithTranslator(i18n.MustNew("en")))

	require.NoError(t, s.Deliver(context.Background(), "Good point sent to Noa", alert.SeveritySuccess))

	assert.Equal(t, "org.freedesktop.Notifications.Notify", obj.method)
	require.Len(t, obj.calls, 1)
	args := obj.calls[0]
	require.Len(t, args, 8)
	assert.Equal(t, DefaultAppName, args[0])
	assert.Equal(t, uint32(0), args[1])
	assert.Equal(t, "Success", args[3])
	assert.Equal(t, "Good point sent to Noa", args[4])
	assert.Equal(t, int32(1500), args[7])

	hints := args[6].(map[string]dbus.Variant)
	assert.Equal(t, UrgencyLow, hints["urgency"].Value())
}

func TestDeliver_ReplacesPrevious(t *testing.T) {
	obj := &fakeObject{}
	s := NewDesktopSink(withObject(obj))

	require.NoError(t, s.Deliver(context.Background(), "one", alert.SeverityInfo))
	require.NoError(t, s.Deliver(context.Background(), "two", alert.SeverityError))

	require.Len(t, obj.calls, 2)
	assert.Equal(t, uint32(1), obj.calls[1][1], "second notification replaces the first")
	assert.Equal(t, DefaultAppName, obj.calls[1][3], "no translator: summary is the app name")
	hints := obj.calls[1][6].(map[string]dbus.Variant)
	assert.Equal(t, UrgencyCritical, hints["urgency"].Value())
}

func TestDeliver_CallError(t *testing.T) {
	obj := &fakeObject{err: errors.New("no daemon")}
	s := NewDesktopSink(withObject(obj))

	err := s.Deliver(context.Background(), "x", alert.SeverityInfo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no daemon")
}

func TestDeliver_NoBus(t *testing.T) {
	s := NewDesktopSink()
	s.dial = func() (*dbus.Conn, error) { return nil, errors.New("no session bus") }

	err := s.Deliver(context.Background(), "x", alert.SeverityInfo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session bus")
}

func TestSink_WiredIntoAlerts(t *testing.T) {
	obj := &fakeObject{}
	s := NewDesktopSink(withObject(obj))
	c := alert.New(alert.WithSink(s), alert.WithDuration(time.Hour))
	defer c.Stop()

	c.Error("could not save")

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(obj.calls) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestFromConfig_ExpiresWithAlertDuration(t *testing.T) {
	obj := &fakeObject{}
	s := FromConfig(config.AlertConfig{Duration: config.Duration(7 * time.Second)}, withObject(obj))

	require.NoError(t, s.Deliver(context.Background(), "Saved", alert.SeveritySuccess))
	require.Len(t, obj.calls, 1)
	assert.Equal(t, int32(7000), obj.calls[0][7])

	s = FromConfig(config.DefaultConfig().Alert, withObject(obj), WithExpire(time.Second))
	require.NoError(t, s.Deliver(context.Background(), "Saved", alert.SeveritySuccess))
	assert.Equal(t, int32(1000), obj.calls[1][7], "later options win")
}
