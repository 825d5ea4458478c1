package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	backlogService "github.com/nikhil/sprintboard/internal/service/backlog"
	"github.com/nikhil/sprintboard/internal/storage/mysql"
)

// BacklogRoutes registers the backlog lifecycle endpoints.
func BacklogRoutes(router *mux.Router, deps *Deps) {
	svc := backlogService.NewBacklogService(
		mysql.NewBacklogRepository(deps.DB),
		mysql.NewTeamMemberRepository(deps.DB),
		deps.Gateway,
	)

	r := router.PathPrefix("/backlog").Subrouter()
	r.HandleFunc("/create", svc.CreateBacklog).Methods(http.MethodPost)
	r.HandleFunc("/all", svc.GetAllBacklogs).Methods(http.MethodGet)
	r.HandleFunc("/get/{id}", svc.GetBacklogByID).Methods(http.MethodGet)
	r.HandleFunc("/sprint/{sprintId}", svc.GetBacklogsBySprint).Methods(http.MethodGet)
	r.HandleFunc("/update/{id}", svc.UpdateBacklog).Methods(http.MethodPut)
	r.HandleFunc("/delete/{id}", svc.SoftDeleteBacklog).Methods(http.MethodDelete)
	r.HandleFunc("/restore/{id}", svc.RestoreBacklog).Methods(http.MethodPost)
}
