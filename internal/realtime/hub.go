package realtime

import (
	"net/http"
	"sync"
	"time"

	"cane-backend/internal/metrics"
	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn   *websocket.Conn
	millID string
	send   chan *models.EntryEvent
}

// Hub fans entry events out to connected dashboards. Each client may ask for
// a single mill; clients without a filter receive everything.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates a hub with no clients
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// Publish delivers ev to every interested client without blocking. Clients
// whose buffer is full miss the event.
func (h *Hub) Publish(ev *models.EntryEvent) {
	if h == nil || ev == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.millID != "" && c.millID != ev.MillID {
			continue
		}
		select {
		case c.send <- ev:
		default:
		}
	}
}

// ClientCount returns the number of connected dashboards
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the peer goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, millID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.GetLogger().WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, millID: millID, send: make(chan *models.EntryEvent, 32)}
	h.register(c)
	defer h.unregister(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	metrics.LiveClients.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		metrics.LiveClients.Dec()
	}
	h.mu.Unlock()
	c.conn.Close()
}
