package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// Message types sent to feed clients
const (
	TypeFeedSnapshot   = "feed_snapshot"
	TypeBuildPublished = "build_published"
	TypeBuildRemoved   = "build_removed"
	TypePresence       = "presence"
)

// SnapshotSize is how many recent builds a new client receives
const SnapshotSize = 10

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedSource provides the recent public builds sent to new clients
type FeedSource interface {
	RecentPublicBuilds(ctx context.Context, n int) ([]models.Build, error)
}

// FeedItem is the compact form of a public build shown in the feed
type FeedItem struct {
	ID        string                        `json:"id"`
	Name      string                        `json:"name"`
	Author    *models.Author                `json:"author,omitempty"`
	Platform  *models.PlatformConfiguration `json:"platform,omitempty"`
	Total     models.Money                  `json:"total"`
	PartCount int                           `json:"part_count"`
	CreatedAt time.Time                     `json:"created_at"`
}

// NewFeedItem summarises a build for the feed
func NewFeedItem(b models.Build) FeedItem {
	count := 0
	for _, p := range b.Configuration.Selection {
		if !p.IsSentinel() {
			count++
		}
	}
	return FeedItem{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Platform:  b.Configuration.Platform,
		Total:     b.Configuration.Total,
		PartCount: count,
		CreatedAt: b.CreatedAt,
	}
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	feed       FeedSource
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub. feed may be nil, in which case new clients get no snapshot.
func New(log logger.Logger, feed FeedSource) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		feed:       feed,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			if h.feed != nil {
				go h.sendSnapshot(client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) sendSnapshot(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	builds, err := h.feed.RecentPublicBuilds(ctx, SnapshotSize)
	if err != nil {
		h.log.Warn("Failed to load feed snapshot", "error", err)
		return
	}
	items := make([]FeedItem, 0, len(builds))
	for _, b := range builds {
		items = append(items, NewFeedItem(b))
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- models.WSMessage{Type: TypeFeedSnapshot, Payload: items}:
	default:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastBuildPublished implements services.Broadcaster
func (h *Hub) BroadcastBuildPublished(b models.Build) {
	h.BroadcastMessage(TypeBuildPublished, NewFeedItem(b))
}

// BroadcastBuildRemoved implements services.Broadcaster
func (h *Hub) BroadcastBuildRemoved(buildID string) {
	h.BroadcastMessage(TypeBuildRemoved, map[string]string{"id": buildID})
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// The feed is one-way; anything a client sends is only logged
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartPresence broadcasts the number of connected viewers whenever it
// changes, checking every interval until ctx is cancelled
func (h *Hub) StartPresence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Presence updates stopped")
			return
		case <-ticker.C:
			n := h.ClientCount()
			if n == last {
				continue
			}
			last = n
			if n > 0 {
				h.BroadcastMessage(TypePresence, map[string]int{"viewers": n})
			}
		}
	}
}
