package live

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/claude/liftlog/internal/models"
)

const writeTimeout = 5 * time.Second

// Frame is one message on the live-status websocket.
type Frame struct {
	Type   string             `json:"type"` // "start", "update", "end"
	Label  string             `json:"label,omitempty"`
	Status *models.LiveStatus `json:"status,omitempty"`
}

// Hub is a websocket Surface: it broadcasts live-status frames to every
// connected client. A client that fails a write is dropped; the session is
// never affected by client churn.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	last    *Frame // replayed to clients that connect mid-session

	// wmu serializes writes: gorilla connections allow one writer at a
	// time, and broadcasts can race the mid-session replay.
	wmu sync.Mutex
}

// NewHub creates an empty Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// Access control is handled upstream (tsnet or API key).
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	last := h.last
	h.mu.Unlock()
	h.log.Info("live client connected", "clients", h.ClientCount())

	if last != nil {
		h.send(conn, *last)
	}

	// Reader loop: we ignore inbound messages but need the read pump to
	// notice closes.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Start implements Surface.
func (h *Hub) Start(label string) error {
	h.broadcast(Frame{Type: "start", Label: label})
	return nil
}

// Update implements Surface.
func (h *Hub) Update(status models.LiveStatus) error {
	h.broadcast(Frame{Type: "update", Status: &status})
	return nil
}

// End implements Surface.
func (h *Hub) End() error {
	h.broadcast(Frame{Type: "end"})
	h.mu.Lock()
	h.last = nil
	h.mu.Unlock()
	return nil
}

func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	if f.Type != "end" {
		h.last = &f
	}
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.send(c, f)
	}
}

func (h *Hub) send(c *websocket.Conn, f Frame) {
	h.wmu.Lock()
	c.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.WriteJSON(f)
	h.wmu.Unlock()
	if err != nil {
		h.log.Warn("live client write failed, dropping", "error", err)
		h.drop(c)
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}
