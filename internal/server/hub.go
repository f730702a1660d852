package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/logging"
)

var upgrader = websocket.Upgrader{
	// The overlay page is loaded from OBS or a local browser; origin
	// checks buy nothing for a localhost-only push channel.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans out update notifications to connected overlay pages. The
// payload is just a refresh nudge; pages refetch the JSON themselves.
type Hub struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{
		log:     log,
		clients: make(map[string]*websocket.Conn),
	}
}

// Handle upgrades the request and keeps the connection registered
// until the client goes away.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugw("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	h.log.Debugw("overlay client connected", "id", id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		conn.Close()
		h.log.Debugw("overlay client disconnected", "id", id)
	}()

	// Clients never send anything meaningful; the read loop only
	// exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("websocket read", "id", id, "error", err)
			}
			return
		}
	}
}

// Broadcast sends event to every connected client. Clients that fail
// to receive are dropped.
func (h *Hub) Broadcast(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
			conn.Close()
			delete(h.clients, id)
		}
	}
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
