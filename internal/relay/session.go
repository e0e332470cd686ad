package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// session is one connected websocket client. The read loop runs on the
// handler goroutine; writeLoop owns all writes to the connection.
type session struct {
	id     string
	conn   *websocket.Conn
	sink   chan *clipboard.Snapshot
	logger *slog.Logger
}

// writeLoop drains the sink and delivers each snapshot as a
// clipboard_update envelope. Exits when the sink closes or a write fails;
// a write failure also closes the connection, which unblocks the read loop.
func (s *session) writeLoop() {
	for snap := range s.sink {
		msg := clipboard.Message{Type: clipboard.MessageUpdate, Data: snap}
		if err := s.conn.WriteJSON(&msg); err != nil {
			s.logger.Warn("write failed", "session", s.id, "err", err)
			_ = s.conn.Close()
			return
		}
	}
}

// readLoop ingests clipboard_set envelopes from the client until the
// connection errors or closes. Malformed messages are rejected per-message;
// they never affect hub state or other sessions.
func (s *session) readLoop(hub *Hub) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("read failed", "session", s.id, "err", err)
			}
			return
		}
		var msg clipboard.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed messages are rejected per-message; only transport
			// errors end the session
			s.logger.Warn("rejecting malformed message", "session", s.id, "err", err)
			continue
		}
		if msg.Type != clipboard.MessageSet || msg.Data == nil {
			s.logger.Debug("ignoring message", "session", s.id, "type", msg.Type)
			continue
		}
		s.logger.Info("session set clipboard", "session", s.id,
			"content_type", msg.Data.ContentType, "timestamp", msg.Data.Timestamp)
		hub.Publish(msg.Data)
	}
}
