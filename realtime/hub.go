package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 512

	sendBufferSize = 16
)

// client is one dashboard socket. All writes on the connection go through
// the send channel; the write pump is the connection's only writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of WebSocket dashboard clients. It carries the same
// events as the SSE broker for clients that prefer a socket.
type Hub struct {
	upgrader  websocket.Upgrader
	conns     map[*client]bool
	mu        sync.Mutex
	pingEvery time.Duration
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// single-user local dashboard
				return true
			},
		},
		conns:     make(map[*client]bool),
		pingEvery: pingPeriod,
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.conns[c] = true
	total := len(h.conns)
	h.mu.Unlock()
	log.Printf("WS Client connected. Total: %d", total)

	go h.writePump(c)
	h.readLoop(c)
}

// readLoop discards client messages; the socket is push-only. Pongs refresh
// the read deadline.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}

// writePump serializes data frames and pings onto the connection. The
// websocket package allows a single concurrent writer, so nothing else may
// call conn.WriteMessage.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// drop unregisters the client and closes its send channel, which stops the
// write pump. Safe to call more than once.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
		log.Printf("WS Client disconnected. Total: %d", len(h.conns))
	}
	h.mu.Unlock()
}

// Broadcast queues an event for all connected sockets. A client whose send
// buffer is full is disconnected rather than blocking the hub.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data := map[string]interface{}{
		"event":   event,
		"payload": payload,
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshalling ws message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		select {
		case c.send <- jsonBytes:
		default:
			delete(h.conns, c)
			close(c.send)
		}
	}
}
