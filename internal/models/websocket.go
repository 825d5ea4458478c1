package models

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub maintains the set of active clients and routes messages to the
// connections of individual team members.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Member-keyed connection registry; one member may hold several
	// connections (multiple tabs/devices).
	members map[string][]*Client

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// Client represents a WebSocket connection
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// MemberID identifies the team member holding this connection.
	MemberID string
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		members:    make(map[string][]*Client),
	}
}

// Run starts the hub's registration handling
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.members[client.MemberID] = append(h.members[client.MemberID], client)
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)

				conns := h.members[client.MemberID]
				for i, c := range conns {
					if c == client {
						h.members[client.MemberID] = append(conns[:i], conns[i+1:]...)
						break
					}
				}
				if len(h.members[client.MemberID]) == 0 {
					delete(h.members, client.MemberID)
				}

				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// SendToMember sends a message to every live connection of a member.
// It reports whether at least one connection accepted the message; a
// member with no connections is not an error.
func (h *Hub) SendToMember(memberID string, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for _, client := range h.members[memberID] {
		select {
		case client.Send <- message:
			delivered = true
		default:
			// Slow consumer; the connection's write pump will catch up
			// or the read pump will unregister it.
		}
	}
	return delivered
}

// IsMemberConnected checks if a member has any active connections
func (h *Hub) IsMemberConnected(memberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members[memberID]) > 0
}

// ReadPump pumps control messages from the WebSocket connection to keep
// it alive; inbound payloads are discarded, the socket is push-only.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
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
			break
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
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

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed
	maxMessageSize = 512
)
