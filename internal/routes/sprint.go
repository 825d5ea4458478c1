package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	sprintService "github.com/nikhil/sprintboard/internal/service/sprint"
	"github.com/nikhil/sprintboard/internal/storage/mysql"
)

// SprintRoutes registers the sprint lifecycle endpoints. Start and stop
// are each reachable by backlog id or directly by sprint id; stop by
// backlog id is the strict variant, stop by sprint id the lenient one.
func SprintRoutes(router *mux.Router, deps *Deps) {
	svc := sprintService.NewSprintService(
		mysql.NewSprintRepository(deps.DB),
		mysql.NewBacklogRepository(deps.DB),
		deps.Gateway,
	)

	r := router.PathPrefix("/sprint").Subrouter()
	r.HandleFunc("/create", svc.CreateSprint).Methods(http.MethodPost)
	r.HandleFunc("/get/{sprintId}", svc.GetSprint).Methods(http.MethodGet)
	r.HandleFunc("/start/backlog/{backlogId}", svc.StartSprintByBacklog).Methods(http.MethodPost)
	r.HandleFunc("/start/{sprintId}", svc.StartSprintBySprintID).Methods(http.MethodPost)
	r.HandleFunc("/stop/backlog/{backlogId}", svc.StopSprintByBacklog).Methods(http.MethodPost)
	r.HandleFunc("/stop/{sprintId}", svc.StopSprintBySprintID).Methods(http.MethodPost)
}
