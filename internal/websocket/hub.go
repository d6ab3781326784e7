package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

const MessageTypeProgress = "optimization_progress"

// ProgressMessage is the frame pushed to subscribers of an optimization.
type ProgressMessage struct {
	Type string             `json:"type"`
	Data optimizer.Progress `json:"data"`
}

// Client is one websocket connection subscribed to a single optimization.
type Client struct {
	OptimizationID string
	Conn           *websocket.Conn
	Send           chan []byte
	Hub            *Hub
}

// Hub fans optimization progress out to the connections watching it.
type Hub struct {
	clients     map[*Client]bool
	subscribers map[string][]*Client
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	upgrader    websocket.Upgrader
	logger      *logrus.Logger
	mutex       sync.RWMutex
}

// NewHub creates a hub. An empty allowedOrigins list accepts any origin.
func NewHub(allowedOrigins []string, logger *logrus.Logger) *Hub {
	h := &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[string][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		logger:      logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run processes registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.subscribers[client.OptimizationID] = append(h.subscribers[client.OptimizationID], client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"optimization_id": client.OptimizationID,
				"total_clients":   total,
			}).Debug("WebSocket client subscribed")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"optimization_id": client.OptimizationID,
				"total_clients":   total,
			}).Debug("WebSocket client disconnected")

		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// remove must be called with the write lock held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	subs := h.subscribers[client.OptimizationID]
	for i, c := range subs {
		if c == client {
			h.subscribers[client.OptimizationID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.subscribers[client.OptimizationID]) == 0 {
		delete(h.subscribers, client.OptimizationID)
	}
}

// HandleWebSocket upgrades GET /ws/optimizations/:id and subscribes the connection.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	optimizationID := strings.TrimSpace(c.Param("id"))
	if optimizationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "optimization id is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		OptimizationID: optimizationID,
		Conn:           conn,
		Send:           make(chan []byte, sendBuffer),
		Hub:            h,
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

// PublishProgress sends a progress frame to everyone watching p.OptimizationID.
// It never blocks the generator: a subscriber with a full buffer is dropped.
func (h *Hub) PublishProgress(p optimizer.Progress) {
	h.mutex.RLock()
	n := len(h.subscribers[p.OptimizationID])
	h.mutex.RUnlock()
	if n == 0 {
		return
	}

	data, err := json.Marshal(ProgressMessage{Type: MessageTypeProgress, Data: p})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal progress message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, client := range append([]*Client(nil), h.subscribers[p.OptimizationID]...) {
		select {
		case client.Send <- data:
		default:
			h.logger.WithField("optimization_id", p.OptimizationID).Warn("Dropping slow WebSocket client")
			h.remove(client)
		}
	}
}

func (h *Hub) SubscriberCount(optimizationID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers[optimizationID])
}

func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump only services control frames; subscribers never send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.WithError(err).Warn("Failed to write WebSocket message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
