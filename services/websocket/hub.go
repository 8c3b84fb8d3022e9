package websocket

import (
	"encoding/json"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients are read-only listeners.
	maxMessageSize = 512
)

// Hub maintains the set of active clients and fans data-changed events out to
// all of them. Connections are anonymous: public pages and the admin dashboard
// subscribe the same way.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mutex sync.RWMutex
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	send chan []byte
}

// Message is the envelope every event goes out in.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.Debug("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.Debug("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients. A full broadcast
// channel drops the event rather than blocking a mutation.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logrus.Warn("WebSocket broadcast channel is full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeConn attaches an upgraded Fiber websocket connection to the hub. It
// blocks until the connection closes.
func (h *Hub) ServeConn(c *fiberws.Conn) {
	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
	}

	h.register <- client

	// Write pump in its own goroutine; read pump runs inline so the Fiber
	// connection stays on the caller's goroutine.
	go h.writePump(client, c)
	h.readPump(client, c)
}

func (h *Hub) writePump(client *Client, c *fiberws.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister <- client
		c.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}
			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				logrus.WithError(err).Debug("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(fiberws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(client *Client, c *fiberws.Conn) {
	defer func() {
		h.unregister <- client
		c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("WebSocket unexpected close")
			}
			return
		}
		// Events only flow server to client; inbound frames are ignored.
	}
}
