package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// sendBuffer bounds the per-client outbound queue. A client that
// cannot keep up is dropped rather than slowing delivery to the rest.
const sendBuffer = 64

// frame is one push event on the wire.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub is the websocket fan-out at the front-end boundary. It observes
// both the ledger and the catalog and pushes "new_message" and
// "recommendations" frames to every connected client, best-effort.
type Hub struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			// The read surface is open; the browser UI may be served
			// from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWS handles GET /ws upgrade requests.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &wsClient{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	updateClientGauge(n)

	go h.writePump(c)
	go h.readPump(c)
}

// Update implements the ledger observer interface.
func (h *Hub) Update(ctx context.Context, msg model.Message) {
	h.broadcast(frame{Event: "new_message", Data: messageView(msg)})
}

// UpdateCatalog implements the catalog observer interface.
func (h *Hub) UpdateCatalog(ctx context.Context, entries []model.CatalogEntry) {
	h.broadcast(frame{Event: "recommendations", Data: catalogView(entries)})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	updateClientGauge(0)
}

// broadcast queues a frame for every client without blocking; clients
// whose buffers are full are dropped.
func (h *Hub) broadcast(f frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	updateClientGauge(n)
}

// remove detaches one client if still present.
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()
	updateClientGauge(n)
}

// writePump drains the client's queue onto the wire.
func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()
	for b := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.remove(c)
			return
		}
	}
}

func updateClientGauge(n int) {
	metrics.UpdateWebsocketClients(n)
}

// readPump discards inbound frames and detects disconnects.
func (h *Hub) readPump(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}
