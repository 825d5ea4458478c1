package memberService

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/service/respond"
	"github.com/nikhil/sprintboard/internal/storage"
)

// MemberService handles team member operations
type MemberService struct {
	Members storage.TeamMemberRepository
	Log     *logger.Logger
}

// NewMemberService initializes a new member service
func NewMemberService(members storage.TeamMemberRepository) *MemberService {
	return &MemberService{
		Members: members,
		Log:     logger.NewLogger("member-service"),
	}
}

// CreateMemberRequest represents the request body for member creation
type CreateMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateMemberRequest represents a partial member patch
type UpdateMemberRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Status *int    `json:"status"`
}

// CreateMember persists a new active team member
func (ms *MemberService) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.Log.Error("failed to decode request body", "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "Member name is required")
		return
	}

	member := models.TeamMember{
		MemberID:  uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Status:    models.MemberActive,
		CreatedAt: time.Now().Unix(),
	}
	if appErr := ms.Members.Create(r.Context(), &member); appErr != nil {
		ms.Log.Error("failed to create team member", "error", appErr)
		respond.AppError(w, appErr, "Failed to create team member")
		return
	}

	ms.Log.Info("team member created", "member_id", member.MemberID)
	respond.JSON(w, http.StatusCreated, member)
}

// GetAllMembers returns every team member
func (ms *MemberService) GetAllMembers(w http.ResponseWriter, r *http.Request) {
	members, appErr := ms.Members.List(r.Context())
	if appErr != nil {
		ms.Log.Error("failed to list team members", "error", appErr)
		respond.AppError(w, appErr, "Failed to fetch team members")
		return
	}
	respond.JSON(w, http.StatusOK, members)
}

// GetMember returns one team member by id
func (ms *MemberService) GetMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	member, appErr := ms.Members.Get(r.Context(), id)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Team member not found")
			return
		}
		ms.Log.Error("failed to fetch team member", "member_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to fetch team member")
		return
	}
	respond.JSON(w, http.StatusOK, member)
}

// UpdateMember patches a team member, including the active/inactive toggle
func (ms *MemberService) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.Log.Error("failed to decode request body", "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, appErr := ms.Members.Update(r.Context(), id, storage.TeamMemberPatch{
		Name:   req.Name,
		Email:  req.Email,
		Status: req.Status,
	})
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Team member not found")
			return
		}
		ms.Log.Error("failed to update team member", "member_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to update team member")
		return
	}

	ms.Log.Info("team member updated", "member_id", id)
	respond.JSON(w, http.StatusOK, member)
}
