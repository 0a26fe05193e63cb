package cmd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/log"
	"github.com/styrcan/pulse/internal/realtime"
)

func TestStateMsgFor_NilChannel(t *testing.T) {
	msg := stateMsgFor(nil, realtime.StateConnecting)
	assert.Equal(t, realtime.StateConnecting, msg.State)
	assert.Zero(t, msg.Attempts)
}

func TestStateMsgFor_CarriesReconnectAttempts(t *testing.T) {
	var (
		mu   sync.Mutex
		msgs []realtime.State
		seen []int
	)

	// Same wiring shape as notify watch: the channel variable is
	// captured by the state callback before Connect runs.
	var channel *realtime.Channel
	var err error
	channel, err = realtime.NewChannel(realtime.Options{
		Endpoint: "ws://pulse.test/ws",
		Dialer: func(ctx context.Context, endpoint string) (realtime.Transport, error) {
			return nil, errors.New(errors.ErrCodeRealtimeDialFailed, "unreachable")
		},
		AccessToken:   func() string { return "access-1" },
		Authenticated: func() bool { return true },
		Reconnect:     true,
		ReconnectBase: 2 * time.Millisecond,
		ReconnectMax:  10 * time.Millisecond,
		Keepalive:     time.Hour,
		OnStateChange: func(state realtime.State) {
			msg := stateMsgFor(channel, state)
			mu.Lock()
			msgs = append(msgs, msg.State)
			seen = append(seen, msg.Attempts)
			mu.Unlock()
		},
		Logger: log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: log.OutputStderr()}),
	})
	require.NoError(t, err)
	defer channel.Close()

	require.Error(t, channel.Connect(context.Background()))

	// The retry after the failed dial re-enters Connecting with the
	// attempt counter advanced.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for i, state := range msgs {
			if state == realtime.StateConnecting && seen[i] > 0 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
