package realtime

import (
	"context"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/styrcan/pulse/internal/errors"
)

// Transport is the minimal connection surface the channel drives. The
// state machine is independent of any particular transport library; the
// production implementation is a WebSocket, tests use an in-memory fake.
type Transport interface {
	// ReadMessage blocks until a message arrives or the transport fails.
	ReadMessage() ([]byte, error)

	// WriteMessage sends a single message.
	WriteMessage(data []byte) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Dialer opens a Transport to the given endpoint.
type Dialer func(ctx context.Context, endpoint string) (Transport, error)

// wsTransport adapts a gorilla websocket connection to Transport.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// WebSocketDialer returns the production Dialer.
func WebSocketDialer() Dialer {
	return func(ctx context.Context, endpoint string) (Transport, error) {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRealtimeDialFailed, "dial notification channel", err)
		}
		return &wsTransport{conn: conn}, nil
	}
}

// endpointWithToken attaches the access token as a connection parameter.
// This is the one sanctioned token-in-URL spot: the ws endpoint is the
// documented remote contract, not a navigable URL.
func endpointWithToken(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRealtimeDialFailed, "parse notification endpoint", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
