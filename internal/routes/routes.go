package routes

import (
	"database/sql"

	"github.com/gorilla/mux"

	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/notifier"
)

// Deps carries the shared collaborators route modules wire into services.
type Deps struct {
	DB      *sql.DB
	Hub     *models.Hub
	Gateway notifier.Gateway
}

// List of all route registration functions
var routeModules = []func(*mux.Router, *Deps){
	BacklogRoutes,
	SprintRoutes,
	MemberRoutes,
	RegisterWebSocketRoutes,
}

// Register all routes dynamically
func RegisterAllRoutes(deps *Deps) *mux.Router {
	router := mux.NewRouter()

	for _, register := range routeModules {
		register(router, deps)
	}

	return router
}
