package relay

import (
	"log/slog"
	"sync"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// SendBuffer is the per-session outbound queue depth. A session that cannot
// keep up has its oldest queued snapshots dropped; it reliably sees only the
// latest snapshot, not the full history. Accepted lossy-broadcast property.
const SendBuffer = 16

// Hub holds the single latest known snapshot and the registry of connected
// sessions, and fans accepted updates out to all of them. The hub keeps no
// record of who sent what: suppressing echoes is entirely the client's job.
type Hub struct {
	logger *slog.Logger

	mu       sync.Mutex
	current  *clipboard.Snapshot
	sessions map[string]chan *clipboard.Snapshot
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]chan *clipboard.Snapshot),
	}
}

// Register adds a session's outbound sink. If a snapshot is already known,
// it is queued to this session first, before any fan-out message, so a late
// joiner converges immediately.
func (h *Hub) Register(id string, sink chan *clipboard.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil {
		sink <- h.current.Clone()
	}
	h.sessions[id] = sink
	h.logger.Info("session registered", "session", id, "sessions", len(h.sessions))
}

// Unregister removes a session. The sink is not closed here; the owner
// closes it after unregistering, so no publish can race a closed channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; !ok {
		return
	}
	delete(h.sessions, id)
	h.logger.Info("session unregistered", "session", id, "sessions", len(h.sessions))
}

// Publish replaces the current snapshot wholesale and fans it out to every
// connected session, including whichever one sent it. Sends never block: a
// full sink has its oldest entry dropped to make room, so the newest
// snapshot always lands.
func (h *Hub) Publish(s *clipboard.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = s.Clone()
	for id, sink := range h.sessions {
		h.offer(id, sink, h.current)
	}
}

// Current returns the latest snapshot, or the empty default if nothing has
// ever been published.
func (h *Hub) Current() *clipboard.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		return clipboard.Empty()
	}
	return h.current.Clone()
}

// Sessions returns the number of connected sessions
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// offer queues a snapshot without ever blocking the hub
func (h *Hub) offer(id string, sink chan *clipboard.Snapshot, s *clipboard.Snapshot) {
	for {
		select {
		case sink <- s:
			return
		default:
		}
		// Sink full: drop the oldest queued snapshot and retry
		select {
		case <-sink:
			h.logger.Debug("session lagging, dropped oldest snapshot", "session", id)
		default:
		}
	}
}
