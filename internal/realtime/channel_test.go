package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/log"
)

// fakeTransport is an in-memory Transport driven by the test.
type fakeTransport struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-f.in:
		return data, nil
	case <-f.closed:
		return nil, fmt.Errorf("transport closed")
	}
}

func (f *fakeTransport) WriteMessage(data []byte) error {
	select {
	case <-f.closed:
		return fmt.Errorf("transport closed")
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) push(data string) {
	f.in <- []byte(data)
}

func (f *fakeTransport) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *fakeTransport) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// fakeDialer hands out fresh fakeTransports and records every dial.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	endpoints  []string
	err        error
}

func (d *fakeDialer) dial(_ context.Context, endpoint string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints = append(d.endpoints, endpoint)
	if d.err != nil {
		return nil, d.err
	}
	transport := newFakeTransport()
	d.transports = append(d.transports, transport)
	return transport, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.endpoints)
}

func (d *fakeDialer) transport(i int) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transports[i]
}

// stateRecorder collects OnStateChange transitions.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

func testChannel(t *testing.T, dialer *fakeDialer, authed *atomic.Bool, opts func(*Options)) *Channel {
	t.Helper()
	options := Options{
		Endpoint:      "ws://pulse.test/api/notifications/ws",
		Dialer:        dialer.dial,
		AccessToken:   func() string { return "secret-token" },
		Authenticated: authed.Load,
		Reconnect:     true,
		ReconnectBase: 2 * time.Millisecond,
		ReconnectMax:  10 * time.Millisecond,
		Keepalive:     time.Hour,
		Logger:        log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: log.OutputStderr()}),
	}
	if opts != nil {
		opts(&options)
	}
	channel, err := NewChannel(options)
	require.NoError(t, err)
	t.Cleanup(func() { channel.Close() })
	return channel
}

func authedFlag(v bool) *atomic.Bool {
	flag := &atomic.Bool{}
	flag.Store(v)
	return flag
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func TestChannel_ConnectRequiresAuthentication(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(false), nil)

	err := channel.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRealtimeNotAuthenticated))
	assert.Equal(t, 0, dialer.dials())
	assert.Equal(t, StateDisconnected, channel.State())
}

func TestChannel_ConnectRequiresToken(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.AccessToken = func() string { return "" }
	})

	err := channel.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRealtimeNotAuthenticated))
	assert.Equal(t, 0, dialer.dials())
}

func TestChannel_ConnectTransitions(t *testing.T) {
	dialer := &fakeDialer{}
	recorder := &stateRecorder{}
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.OnStateChange = recorder.record
	})

	require.NoError(t, channel.Connect(context.Background()))

	assert.Equal(t, StateConnected, channel.State())
	assert.Equal(t, []State{StateConnecting, StateConnected}, recorder.all())
	require.Equal(t, 1, dialer.dials())
	assert.True(t, strings.Contains(dialer.endpoints[0], "token=secret-token"))
}

func TestChannel_ConnectIsNoOpWhileConnected(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), nil)

	require.NoError(t, channel.Connect(context.Background()))
	require.NoError(t, channel.Connect(context.Background()))

	assert.Equal(t, 1, dialer.dials())
}

func TestChannel_ForwardsNotifications(t *testing.T) {
	dialer := &fakeDialer{}
	var mu sync.Mutex
	var got []Notification
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.OnNotification = func(n Notification) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, n)
		}
	})

	require.NoError(t, channel.Connect(context.Background()))
	dialer.transport(0).push(`{"type":"connection"}`)
	dialer.transport(0).push(`{"type":"notification","title":"Payroll approved","message":"March run is live","data":{"run_id":"r-42"}}`)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Payroll approved", got[0].Title)
	assert.Equal(t, "March run is live", got[0].Message)
	assert.JSONEq(t, `{"run_id":"r-42"}`, string(got[0].Data))
	assert.False(t, got[0].ReceivedAt.IsZero())
}

func TestChannel_MalformedPayloadIsDropped(t *testing.T) {
	dialer := &fakeDialer{}
	var count atomic.Int32
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.OnNotification = func(Notification) { count.Add(1) }
	})

	require.NoError(t, channel.Connect(context.Background()))
	dialer.transport(0).push(`{not json at all`)
	dialer.transport(0).push(`{"type":"notification","title":"still alive"}`)

	waitFor(t, func() bool { return count.Load() == 1 })
	assert.Equal(t, StateConnected, channel.State())
}

func TestChannel_ReconnectsAfterTransportLoss(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), nil)

	require.NoError(t, channel.Connect(context.Background()))
	dialer.transport(0).Close()

	waitFor(t, func() bool {
		return dialer.dials() == 2 && channel.State() == StateConnected
	})
	assert.Equal(t, 0, channel.Attempts())
}

func TestChannel_ThreeLossesThreeReconnects(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), nil)

	require.NoError(t, channel.Connect(context.Background()))

	for i := 0; i < 3; i++ {
		waitFor(t, func() bool {
			return dialer.dials() == i+1 && channel.State() == StateConnected
		})
		dialer.transport(i).Close()
	}

	// One initial dial plus exactly one reconnect per loss.
	waitFor(t, func() bool { return dialer.dials() == 4 })
	waitFor(t, func() bool { return channel.State() == StateConnected })
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 4, dialer.dials())
}

func TestChannel_NoReconnectWhenAuthenticationFlipsFalse(t *testing.T) {
	dialer := &fakeDialer{}
	authed := authedFlag(true)
	channel := testChannel(t, dialer, authed, nil)

	require.NoError(t, channel.Connect(context.Background()))

	authed.Store(false)
	dialer.transport(0).Close()

	waitFor(t, func() bool { return channel.State() == StateDisconnected })
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, dialer.dials())
	assert.True(t, dialer.transport(0).isClosed())
}

func TestChannel_NoReconnectWhenDisabled(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.Reconnect = false
	})

	require.NoError(t, channel.Connect(context.Background()))
	dialer.transport(0).Close()

	waitFor(t, func() bool { return channel.State() == StateDisconnected })
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, dialer.dials())
}

func TestChannel_DialFailureSchedulesRetry(t *testing.T) {
	dialer := &fakeDialer{err: fmt.Errorf("connection refused")}
	channel := testChannel(t, dialer, authedFlag(true), nil)

	err := channel.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, channel.State())

	// Retries keep going and the attempt counter climbs while dials fail.
	waitFor(t, func() bool { return dialer.dials() >= 3 })
	assert.GreaterOrEqual(t, channel.Attempts(), 2)
}

func TestChannel_CloseCancelsPendingReconnect(t *testing.T) {
	dialer := &fakeDialer{err: fmt.Errorf("connection refused")}
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.ReconnectBase = 50 * time.Millisecond
		o.ReconnectMax = 50 * time.Millisecond
	})

	require.Error(t, channel.Connect(context.Background()))
	require.NoError(t, channel.Close())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, dialer.dials())

	err := channel.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRealtimeClosed))
}

func TestChannel_KeepaliveSendsPings(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), func(o *Options) {
		o.Keepalive = 2 * time.Millisecond
	})

	require.NoError(t, channel.Connect(context.Background()))

	waitFor(t, func() bool { return len(dialer.transport(0).written()) >= 2 })
	for _, msg := range dialer.transport(0).written() {
		assert.Contains(t, string(msg), `"type":"ping"`)
		assert.Contains(t, string(msg), `"timestamp"`)
	}
}

func TestChannel_LastMessageAtAdvances(t *testing.T) {
	dialer := &fakeDialer{}
	channel := testChannel(t, dialer, authedFlag(true), nil)

	require.NoError(t, channel.Connect(context.Background()))
	require.True(t, channel.LastMessageAt().IsZero())

	dialer.transport(0).push(`{"type":"pong"}`)
	waitFor(t, func() bool { return !channel.LastMessageAt().IsZero() })
}

func TestBackoffDelay(t *testing.T) {
	base := 3 * time.Second
	max := 60 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 3 * time.Second},
		{2, 6 * time.Second},
		{3, 12 * time.Second},
		{4, 24 * time.Second},
		{5, 48 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoffDelay(base, max, tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}

func TestEndpointWithToken(t *testing.T) {
	endpoint, err := endpointWithToken("wss://pulse.test/api/notifications/ws", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "wss://pulse.test/api/notifications/ws?token=abc123", endpoint)
}
