package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	memberService "github.com/nikhil/sprintboard/internal/service/members"
	"github.com/nikhil/sprintboard/internal/storage/mysql"
)

// MemberRoutes registers the team member endpoints.
func MemberRoutes(router *mux.Router, deps *Deps) {
	svc := memberService.NewMemberService(mysql.NewTeamMemberRepository(deps.DB))

	r := router.PathPrefix("/member").Subrouter()
	r.HandleFunc("/create", svc.CreateMember).Methods(http.MethodPost)
	r.HandleFunc("/all", svc.GetAllMembers).Methods(http.MethodGet)
	r.HandleFunc("/get/{id}", svc.GetMember).Methods(http.MethodGet)
	r.HandleFunc("/update/{id}", svc.UpdateMember).Methods(http.MethodPut)
}
