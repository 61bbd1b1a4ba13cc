package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/render"
	"github.com/wricardo/tengame/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client outbound buffer and hub broadcast buffer.
	sendBufferSize      = 256
	broadcastBufferSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON frame pushed to viewers of a game
type Message struct {
	Key   string            `json:"key"`
	Event string            `json:"event"`
	Game  *session.Snapshot `json:"game,omitempty"`
	Text  string            `json:"text,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	key  string
}

type countRequest struct {
	key   string
	reply chan int
}

// Hub maintains the set of active viewers per game and pushes snapshots to
// them. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients by game key
	games map[string]map[*Client]bool

	// Outbound messages, filled by Render without blocking
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	counts chan countRequest
	done   chan struct{}
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for key, clients := range h.games {
				for client := range clients {
					close(client.send)
				}
				delete(h.games, key)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.games[req.key])
		}
	}
}

// Render queues a snapshot for every viewer of its game. A full queue drops
// the update; the next snapshot carries the complete state anyway.
func (h *Hub) Render(snap session.Snapshot) {
	message := &Message{
		Key:   snap.Key.String(),
		Event: "state_update",
		Game:  &snap,
		Text:  render.Game(snap),
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping update",
			zap.String("key", message.Key),
			zap.Int("turn", snap.Turn))
	}
}

// ClientCount returns the number of viewers connected to a game
func (h *Hub) ClientCount(key string) int {
	reply := make(chan int, 1)
	select {
	case h.counts <- countRequest{key: key, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ServeWS upgrades the request and subscribes it to key. If initial is not
// nil it is sent as the first frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, key string, initial *session.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		key:  key,
	}

	if initial != nil {
		data, err := json.Marshal(&Message{
			Key:   key,
			Event: "state",
			Game:  initial,
			Text:  render.Game(*initial),
		})
		if err == nil {
			client.send <- data
		}
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

// registerClient adds a client to a game
func (h *Hub) registerClient(client *Client) {
	if h.games[client.key] == nil {
		h.games[client.key] = make(map[*Client]bool)
	}
	h.games[client.key][client] = true

	h.logger.Debug("websocket client registered",
		zap.String("key", client.key),
		zap.Int("clients", len(h.games[client.key])))
}

// unregisterClient removes a client from a game
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.games[client.key]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.games, client.key)
	}

	h.logger.Debug("websocket client unregistered",
		zap.String("key", client.key),
		zap.Int("remaining", len(clients)))
}

// broadcastMessage sends a message to all clients of a game
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.games[message.Key]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// readPump keeps the connection alive and detects disconnects. Viewers do
// not send commands over the socket.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.String("key", c.key), zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
// Each frame holds exactly one JSON message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
