package routes

import (
	"github.com/gorilla/mux"

	"github.com/nikhil/sprintboard/internal/handlers"
)

// RegisterWebSocketRoutes registers all WebSocket related routes
func RegisterWebSocketRoutes(router *mux.Router, deps *Deps) {
	wsHandler := handlers.NewWebSocketHandler(deps.Hub)

	router.HandleFunc("/ws", wsHandler.HandleWebSocket).Methods("GET")
}
