// Package realtime maintains the push notification channel: a persistent
// connection keyed by the stored access token, with keepalive pings and
// reconnect-with-backoff after transport loss.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/log"
)

// State is the connection state of the channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Options configures a Channel.
type Options struct {
	// Endpoint is the notification channel URL (ws:// or wss://).
	Endpoint string

	// Dialer opens the transport. Defaults to WebSocketDialer.
	Dialer Dialer

	// AccessToken returns the stored access token. Read-only access:
	// the channel never writes tokens.
	AccessToken func() string

	// Authenticated reports whether the session is authenticated.
	// Checked before every connect and reconnect.
	Authenticated func() bool

	// Reconnect enables automatic reconnection after transport loss.
	Reconnect bool

	// ReconnectBase is the first reconnect delay. Subsequent attempts
	// double it up to ReconnectMax.
	ReconnectBase time.Duration

	// ReconnectMax caps the backoff.
	ReconnectMax time.Duration

	// Keepalive is the ping period while connected.
	Keepalive time.Duration

	// OnStateChange is called after every state transition. May be
	// invoked from the channel's internal goroutines.
	OnStateChange func(State)

	// OnNotification is called for every notification event.
	OnNotification func(Notification)

	Logger *log.Logger
}

// Channel is the reconnecting notification channel state machine:
// Disconnected -> Connecting -> Connected -> Disconnected (-> Connecting ...).
type Channel struct {
	opts   Options
	logger *log.Logger

	mu             sync.Mutex
	state          State
	attempts       int
	lastMessage    time.Time
	transport      Transport
	connDone       chan struct{}
	reconnectTimer *time.Timer
	closed         bool
}

// NewChannel creates a channel in the Disconnected state.
func NewChannel(opts Options) (*Channel, error) {
	if opts.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeRealtimeDialFailed, "notification endpoint is required")
	}
	if opts.AccessToken == nil || opts.Authenticated == nil {
		return nil, errors.New(errors.ErrCodeRealtimeNotAuthenticated, "token and authentication callbacks are required")
	}
	if opts.Dialer == nil {
		opts.Dialer = WebSocketDialer()
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = 3 * time.Second
	}
	if opts.ReconnectMax < opts.ReconnectBase {
		opts.ReconnectMax = 60 * time.Second
	}
	if opts.Keepalive <= 0 {
		opts.Keepalive = 30 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Channel{
		opts:   opts,
		logger: logger.WithGroup("realtime"),
	}, nil
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the reconnect attempt counter. It resets to zero on
// every successful connection.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// LastMessageAt returns when the last inbound message arrived.
func (c *Channel) LastMessageAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessage
}

// Connect attempts a connection now. Entering Connecting requires an
// authenticated session and a non-empty stored access token. A no-op if
// already connecting or connected.
func (c *Channel) Connect(ctx context.Context) error {
	if !c.opts.Authenticated() {
		return errors.New(errors.ErrCodeRealtimeNotAuthenticated, "cannot connect without an authenticated session")
	}
	token := c.opts.AccessToken()
	if token == "" {
		return errors.New(errors.ErrCodeRealtimeNotAuthenticated, "cannot connect without a stored access token")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeRealtimeClosed, "channel is closed")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()
	c.notifyState(StateConnecting)

	endpoint, err := endpointWithToken(c.opts.Endpoint, token)
	if err != nil {
		c.connectionLost(err)
		return err
	}

	transport, err := c.opts.Dialer(ctx, endpoint)
	if err != nil {
		c.logger.WithError(err).Warn("notification channel dial failed")
		c.connectionLost(err)
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		transport.Close()
		return errors.New(errors.ErrCodeRealtimeClosed, "channel is closed")
	}
	c.transport = transport
	c.state = StateConnected
	c.attempts = 0
	done := make(chan struct{})
	c.connDone = done
	c.mu.Unlock()

	c.logger.Info("notification channel connected")
	c.notifyState(StateConnected)

	go c.readLoop(transport, done)
	go c.keepaliveLoop(transport, done)
	return nil
}

// Close tears the channel down permanently: pending reconnect timers are
// cancelled and the transport is closed. Used on logout and shutdown; a
// fresh channel is built when authentication turns true again.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	transport := c.transport
	c.transport = nil
	done := c.connDone
	c.connDone = nil
	changed := c.state != StateDisconnected
	c.state = StateDisconnected
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	if transport != nil {
		transport.Close()
	}
	if changed {
		c.notifyState(StateDisconnected)
	}
	c.logger.Debug("notification channel closed")
	return nil
}

// readLoop pumps inbound messages until the transport fails.
func (c *Channel) readLoop(transport Transport, done chan struct{}) {
	for {
		data, err := transport.ReadMessage()
		if err != nil {
			c.transportLost(transport, done, err)
			return
		}
		c.handleMessage(data)
	}
}

// keepaliveLoop sends pings on a fixed period while connected. A write
// failure only ends the loop; reconnection is driven by the read side
// observing the transport failure.
func (c *Channel) keepaliveLoop(transport Transport, done chan struct{}) {
	ticker := time.NewTicker(c.opts.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			ping, err := newPing(now)
			if err != nil {
				continue
			}
			if err := transport.WriteMessage(ping); err != nil {
				c.logger.Debug("keepalive write failed", "error", err.Error())
				return
			}
		}
	}
}

// handleMessage parses one inbound message. Malformed payloads are
// dropped with a logged parse error; they never crash the channel.
func (c *Channel) handleMessage(data []byte) {
	c.mu.Lock()
	c.lastMessage = time.Now()
	c.mu.Unlock()

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.WithError(errors.Wrap(errors.ErrCodeRealtimeBadPayload, "parse inbound message", err)).
			Warn("dropping malformed notification payload")
		return
	}

	switch env.Type {
	case msgTypeConnection:
		c.logger.Debug("notification channel acknowledged")
	case msgTypePong:
		// Keepalive response; absence of pong is not treated as failure.
	case msgTypeNotification:
		if c.opts.OnNotification != nil {
			c.opts.OnNotification(Notification{
				Title:      env.Title,
				Message:    env.Message,
				Data:       env.Data,
				ReceivedAt: time.Now(),
			})
		}
	default:
		c.logger.Debug("ignoring unknown message type", "type", env.Type)
	}
}

// transportLost handles a failed connected transport: transition to
// Disconnected and schedule a reconnect if policy and authentication
// still allow one.
func (c *Channel) transportLost(transport Transport, done chan struct{}, cause error) {
	c.mu.Lock()
	if c.closed || c.transport != transport {
		// Close already tore this connection down.
		c.mu.Unlock()
		return
	}
	c.transport = nil
	c.connDone = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	close(done)
	transport.Close()

	c.logger.WithError(cause).Warn("notification channel lost")
	c.notifyState(StateDisconnected)
	c.scheduleReconnect()
}

// connectionLost handles a dial failure out of Connecting.
func (c *Channel) connectionLost(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.notifyState(StateDisconnected)
	c.scheduleReconnect()
}

// scheduleReconnect arms the reconnect timer with capped exponential
// backoff. Authentication turning false stops the cycle: no reconnect is
// ever scheduled for an unauthenticated session.
func (c *Channel) scheduleReconnect() {
	if !c.opts.Reconnect || !c.opts.Authenticated() {
		return
	}

	c.mu.Lock()
	if c.closed || c.reconnectTimer != nil || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempt := c.attempts
	delay := backoffDelay(c.opts.ReconnectBase, c.opts.ReconnectMax, attempt)
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		c.mu.Unlock()
		if err := c.Connect(context.Background()); err != nil {
			c.logger.WithError(err).Debug("reconnect attempt failed")
		}
	})
	c.mu.Unlock()

	c.logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay.String())
}

// backoffDelay doubles the base delay per attempt, capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

func (c *Channel) notifyState(state State) {
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(state)
	}
}
