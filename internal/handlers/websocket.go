package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, replace with proper origin checking
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub *models.Hub
	log *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *models.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: logger.NewLogger("websocket")}
}

// HandleWebSocket handles incoming WebSocket connections. Clients
// identify with a memberId query parameter; the caller-supplied id is
// trusted as-is.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("memberId")
	if memberID == "" {
		http.Error(w, "Member ID is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &models.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		MemberID: memberID,
	}

	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
