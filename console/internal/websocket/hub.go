package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/render"
)

// BoardMessage is pushed to every client after each board update
type BoardMessage struct {
	Type  string          `json:"type"`
	Board render.Snapshot `json:"board"`
}

// Hub manages WebSocket clients and fans board snapshots out to them
type Hub struct {
	// registered clients
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex

	// last message, sent to clients on connect
	last   []byte
	lastMu sync.RWMutex

	logger *zap.Logger
}

// Client is one WebSocket connection
type Client struct {
	ID string

	hub  *Hub
	conn *websocket.Conn

	// buffered outbound messages
	send chan []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			h.lastMu.RLock()
			last := h.last
			h.lastMu.RUnlock()
			if last != nil {
				client.send <- last
			}
			h.logger.Info("WebSocket client registered", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket client unregistered", zap.String("client_id", client.ID))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("Dropping slow WebSocket client", zap.String("client_id", client.ID))
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastBoard queues a snapshot for all clients. It never blocks, so it
// is safe to use as a board observer.
func (h *Hub) BroadcastBoard(snap render.Snapshot) {
	message, err := json.Marshal(BoardMessage{Type: "board", Board: snap})
	if err != nil {
		h.logger.Error("Failed to marshal board snapshot", zap.Error(err))
		return
	}

	h.lastMu.Lock()
	h.last = message
	h.lastMu.Unlock()

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Broadcast channel full, dropping board snapshot")
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and registers the client
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames until the connection closes
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warn("Failed to write message", zap.String("client_id", c.ID), zap.Error(err))
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
