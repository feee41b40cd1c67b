package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Event is the wire format for live-view broadcasts. Scanner clients
// subscribe per session and receive the refreshed physical set after every
// scan, plus job lifecycle events.
type Event struct {
	// Type identifies the event (physical_items, import_complete,
	// reconcile_complete, job_failed).
	Type string `json:"type"`
	// SessionID is the count session this event belongs to.
	SessionID string `json:"session_id"`
	// JobID is set for job lifecycle events.
	JobID string `json:"job_id,omitempty"`
	// Message carries human-readable detail, e.g. a failure reason.
	Message string `json:"message,omitempty"`
	// Payload carries event-specific data, e.g. the refreshed rows.
	Payload any `json:"payload,omitempty"`
}

// Event type values.
const (
	EventPhysicalItems     = "physical_items"
	EventImportComplete    = "import_complete"
	EventReconcileComplete = "reconcile_complete"
	EventJobFailed         = "job_failed"
)

// Hub manages the WebSocket clients watching live count views.
// Broadcasts are fire-and-forget: a failed write drops the client, it never
// fails the operation that triggered it.
type Hub struct {
	logger *zap.Logger

	mu sync.RWMutex
	// clients maps session id -> connected clients for that session. Each
	// client carries its own write mutex: the websocket transport permits a
	// single concurrent writer, and broadcasts run on whatever goroutine
	// triggered them.
	clients map[string]map[*websocket.Conn]*sync.Mutex
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*websocket.Conn]*sync.Mutex),
	}
}

// Register adds a client watching the given session.
func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = make(map[*websocket.Conn]*sync.Mutex)
	}
	h.clients[sessionID][conn] = &sync.Mutex{}
	h.logger.Debug("live-view client registered", zap.String("session_id", sessionID))
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, sessionID)
		}
		h.logger.Debug("live-view client unregistered", zap.String("session_id", sessionID))
	}
}

// Broadcast sends an event to every client watching the session.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode live-view event", zap.Error(err))
		return
	}

	type target struct {
		conn *websocket.Conn
		wmu  *sync.Mutex
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.clients[ev.SessionID]))
	for conn, wmu := range h.clients[ev.SessionID] {
		targets = append(targets, target{conn, wmu})
	}
	h.mu.RUnlock()

	for _, tg := range targets {
		tg.wmu.Lock()
		err := tg.conn.WriteMessage(websocket.TextMessage, data)
		tg.wmu.Unlock()
		if err != nil {
			// Client likely went away; drop it so it stops accumulating.
			h.logger.Debug("dropping dead live-view client",
				zap.String("session_id", ev.SessionID), zap.Error(err))
			h.Unregister(ev.SessionID, tg.conn)
			_ = tg.conn.Close()
		}
	}
}

// Watchers returns how many clients are watching the session.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Handler returns the Fiber handler serving the live-view WebSocket
// endpoint. The session id comes from the :id route parameter. The
// connection is held open until the client disconnects; all traffic is
// server -> client.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		sessionID := conn.Params("id")
		if sessionID == "" {
			_ = conn.Close()
			return
		}
		h.Register(sessionID, conn)
		defer func() {
			h.Unregister(sessionID, conn)
			_ = conn.Close()
		}()
		for {
			// Drain client frames so pings are answered; any read error
			// means the client is gone.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
