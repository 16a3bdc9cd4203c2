package ws

import (
	"net/http"
	"sync"
	"time"

	"VolPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin page; CORS is handled at the HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one push message to the page.
type Event struct {
	Event string `json:"event"`
	At    string `json:"at"`
}

// Hub tracks open dashboard connections and pushes dataset-change events so
// the page re-fetches. Single-viewer by design, but nothing breaks with a few
// tabs open.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *logger.Logger
}

// NewHub creates an empty connection registry.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{}), log: log}
}

// Handle upgrades the request and parks the connection until the client goes
// away. The dashboard never sends anything meaningful; reads only serve to
// detect close.
func (h *Hub) Handle(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	h.log.Debug("ws client connected", logger.Int("clients", n))

	go h.reader(conn)
	return nil
}

func (h *Hub) reader(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast pushes an event to every open connection; dead connections are
// dropped on write failure.
func (h *Hub) Broadcast(event string) {
	msg := Event{Event: event, At: time.Now().UTC().Format(time.RFC3339)}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteJSON(msg); err != nil {
			h.drop(c)
		}
	}
}

// Close tears down all connections.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
