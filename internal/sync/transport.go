package sync

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// Session is the persistent bidirectional message stream to the relay
type Session interface {
	// Receive blocks until the next inbound message or transport error
	Receive() (*clipboard.Message, error)

	// Close tears the session down; a blocked Receive returns with an error
	Close() error
}

// WebsocketURL converts a relay base URL to its websocket endpoint
func WebsocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid relay URL %q: unsupported scheme %q", base, u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// wsSession wraps a gorilla websocket connection
type wsSession struct {
	conn *websocket.Conn
}

// Dial opens a websocket session against the relay base URL
func Dial(ctx context.Context, base string) (Session, error) {
	endpoint, err := WebsocketURL(base)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return &wsSession{conn: conn}, nil
}

func (s *wsSession) Receive() (*clipboard.Message, error) {
	var msg clipboard.Message
	if err := s.conn.ReadJSON(&msg); err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return &msg, nil
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}
