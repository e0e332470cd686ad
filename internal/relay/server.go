package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// maxMessageSize bounds inbound websocket messages and POST bodies. Images
// dominate: a clipboard.MaxImagePixelBytes frame grows by 4/3 under base64,
// plus the JSON envelope around it.
const maxMessageSize = 144 * 1024 * 1024

// Server exposes the relay over HTTP: the /ws session endpoint plus the
// push and read endpoints under /api/clipboard.
type Server struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a relay server around a hub
func NewServer(hub *Hub, logger *slog.Logger) *Server {
	return &Server{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the route table with request logging
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, req)
			s.logger.Info("handled", "method", req.Method, "url", req.URL,
				"status", m.Code, "duration", m.Duration)
		})
	})

	r.Path("/ws").HandlerFunc(s.handleWS)
	r.Methods(http.MethodGet).Path("/api/clipboard").HandlerFunc(s.handleGet)
	r.Methods(http.MethodPost).Path("/api/clipboard").HandlerFunc(s.handlePost)
	return r
}

// handleWS upgrades the connection, registers the session (late joiners get
// the current snapshot immediately), and runs its read loop until error or
// close.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		sink:   make(chan *clipboard.Snapshot, SendBuffer),
		logger: s.logger,
	}

	s.hub.Register(sess.id, sess.sink)
	go sess.writeLoop()

	sess.readLoop(s.hub)

	// Unregister before closing the sink: Publish holds the hub lock while
	// queueing, so after Unregister returns nothing can touch the sink.
	s.hub.Unregister(sess.id)
	close(sess.sink)
	_ = conn.Close()
}

// handlePost ingests a snapshot from the push endpoint and echoes back what
// was stored. Malformed bodies are rejected without touching hub state.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var snap clipboard.Snapshot
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize))
	if err := dec.Decode(&snap); err != nil {
		s.logger.Warn("rejecting malformed snapshot", "err", err)
		http.Error(w, "malformed snapshot", http.StatusBadRequest)
		return
	}

	s.logger.Info("clipboard set via push endpoint",
		"content_type", snap.ContentType, "chars", len(snap.Content), "timestamp", snap.Timestamp)
	s.hub.Publish(&snap)

	writeJSON(w, s.logger, &snap)
}

// handleGet serves the current snapshot, or the empty default before any
// update has been accepted.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.hub.Current())
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "err", err)
	}
}
