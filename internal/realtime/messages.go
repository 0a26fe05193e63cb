package realtime

import (
	"encoding/json"
	"time"
)

// Inbound message type discriminators.
const (
	msgTypeConnection   = "connection"
	msgTypePong         = "pong"
	msgTypeNotification = "notification"
)

// envelope is the wire shape of every inbound message.
type envelope struct {
	Type    string          `json:"type"`
	Title   string          `json:"title,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Notification is a push event forwarded to the subscriber.
type Notification struct {
	Title      string
	Message    string
	Data       json.RawMessage
	ReceivedAt time.Time
}

// pingMessage is the outbound keepalive payload.
type pingMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func newPing(now time.Time) ([]byte, error) {
	return json.Marshal(pingMessage{
		Type:      "ping",
		Timestamp: now.UnixMilli(),
	})
}
