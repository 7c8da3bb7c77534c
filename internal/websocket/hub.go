package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (should be restricted in production)
	},
}

// Client represents a WebSocket client subscribed to one optimization run
type Client struct {
	OptimizationID string
	Conn           *websocket.Conn
	Send           chan []byte
	Hub            *Hub
}

// Hub maintains active WebSocket connections and routes solve progress to
// the clients subscribed to each optimization ID
type Hub struct {
	clients     map[*Client]bool
	subscribers map[string][]*Client
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	logger      *logrus.Logger
	mutex       sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[string][]*Client),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run starts the hub and handles client registration/unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.subscribers[client.OptimizationID] = append(h.subscribers[client.OptimizationID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"optimization_id": client.OptimizationID,
				"total_clients":   len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				h.dropClientLocked(client)
			}
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"optimization_id": client.OptimizationID,
				"total_clients":   len(h.clients),
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it from both indexes so later
					// per-optimization sends cannot hit a closed channel.
					h.dropClientLocked(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// dropClientLocked removes a client from both the client set and the
// per-optimization subscriber index and closes its send channel. Callers must
// hold the write lock.
func (h *Hub) dropClientLocked(client *Client) {
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

// HandleWebSocket handles WebSocket connections
func (h *Hub) HandleWebSocket(c *gin.Context) {
	optimizationID := c.Param("optimization_id")
	if optimizationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing optimization ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		OptimizationID: optimizationID,
		Conn:           conn,
		Send:           make(chan []byte, 256),
		Hub:            h,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// BroadcastToOptimization sends a message to all clients subscribed to one
// optimization run
func (h *Hub) BroadcastToOptimization(optimizationID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	// Hold the lock while sending so an evicted client's closed channel can
	// never be reached through a stale copy of the subscriber list.
	h.mutex.RLock()
	for _, client := range h.subscribers[optimizationID] {
		select {
		case client.Send <- data:
		default:
		}
	}
	h.mutex.RUnlock()
}

// BroadcastToAll sends a message to all connected clients
func (h *Hub) BroadcastToAll(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	h.broadcast <- data
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
