package backlogService

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/notifier"
	"github.com/nikhil/sprintboard/internal/service/respond"
	"github.com/nikhil/sprintboard/internal/storage"
)

// BacklogService handles backlog item lifecycle operations
type BacklogService struct {
	Backlogs storage.BacklogRepository
	Members  storage.TeamMemberRepository
	Gateway  notifier.Gateway
	Log      *logger.Logger
}

// NewBacklogService initializes a new backlog service
func NewBacklogService(backlogs storage.BacklogRepository, members storage.TeamMemberRepository, gateway notifier.Gateway) *BacklogService {
	return &BacklogService{
		Backlogs: backlogs,
		Members:  members,
		Gateway:  gateway,
		Log:      logger.NewLogger("backlog-service"),
	}
}

// CreateBacklogRequest represents the request body for backlog creation
type CreateBacklogRequest struct {
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	ProjectID   string            `json:"projectId"`
	SprintID    string            `json:"sprintId"`
	Assignees   []models.Assignee `json:"assignees"`
}

// UpdateBacklogRequest represents a partial patch; absent fields stay untouched
type UpdateBacklogRequest struct {
	Summary     *string            `json:"summary"`
	Description *string            `json:"description"`
	ProjectID   *string            `json:"projectId"`
	SprintID    *string            `json:"sprintId"`
	Estimate    *float64           `json:"estimate"`
	Assignees   *[]models.Assignee `json:"assignees"`
}

// CreateBacklog persists a new backlog item and emails each active,
// email-bearing assignee. The notification loop is unguarded: the first
// failing send fails the whole request even though the item is already
// persisted.
func (bs *BacklogService) CreateBacklog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateBacklogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bs.Log.Error("failed to decode request body", "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	now := time.Now().Unix()
	item := models.BacklogItem{
		BacklogID:   uuid.New().String(),
		Summary:     req.Summary,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		SprintID:    req.SprintID,
		Assignees:   req.Assignees,
		Estimate:    0,
		Level:       models.LevelActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if appErr := bs.Backlogs.Create(ctx, &item); appErr != nil {
		bs.Log.Error("failed to create backlog item", "error", appErr)
		respond.AppError(w, appErr, "Failed to create backlog item")
		return
	}

	if appErr := bs.notifyAssignees(r, item); appErr != nil {
		bs.Log.Error("assignment email failed", "backlog_id", item.BacklogID, "error", appErr)
		respond.AppError(w, appErr, "Failed to create backlog item")
		return
	}

	bs.Log.Info("backlog item created", "backlog_id", item.BacklogID, "assignees", len(item.Assignees))
	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Backlog created and emails sent.",
		"backlog": item,
	})
}

// notifyAssignees emails each assignee that resolves to an active member
// with a non-empty email, sequentially and aborting on the first failure.
func (bs *BacklogService) notifyAssignees(r *http.Request, item models.BacklogItem) *apperrors.AppError {
	if len(item.Assignees) == 0 {
		return nil
	}

	memberIDs := make([]string, 0, len(item.Assignees))
	for _, a := range item.Assignees {
		memberIDs = append(memberIDs, a.MemberID)
	}

	members, appErr := bs.Members.ListActiveByIDs(r.Context(), memberIDs)
	if appErr != nil {
		return appErr
	}

	for _, member := range members {
		if member.Email == "" {
			continue
		}
		subject := fmt.Sprintf("📋 New assignment: %s", item.Summary)
		text := fmt.Sprintf("Hi %s,\n\nYou have been assigned the backlog item %q.\n\nThanks!",
			member.Name, item.Summary)
		if err := bs.Gateway.SendEmail(member.Email, subject, text); err != nil {
			return apperrors.Notification("failed to send assignment email", err)
		}
	}
	return nil
}

// GetAllBacklogs returns all active items, optionally filtered by sprint
func (bs *BacklogService) GetAllBacklogs(w http.ResponseWriter, r *http.Request) {
	sprintID := r.URL.Query().Get("sprintId")

	items, appErr := bs.Backlogs.ListActive(r.Context(), sprintID)
	if appErr != nil {
		bs.Log.Error("failed to list backlog items", "error", appErr)
		respond.AppError(w, appErr, "Failed to fetch backlog items")
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// GetBacklogByID returns an active item; soft-deleted items are invisible
func (bs *BacklogService) GetBacklogByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, appErr := bs.Backlogs.GetActive(r.Context(), id)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Backlog item not found")
			return
		}
		bs.Log.Error("failed to fetch backlog item", "backlog_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to fetch backlog item")
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

// GetBacklogsBySprint returns the active items of one sprint
func (bs *BacklogService) GetBacklogsBySprint(w http.ResponseWriter, r *http.Request) {
	sprintID := mux.Vars(r)["sprintId"]

	items, appErr := bs.Backlogs.ListActive(r.Context(), sprintID)
	if appErr != nil {
		bs.Log.Error("failed to list sprint backlog items", "sprint_id", sprintID, "error", appErr)
		respond.AppError(w, appErr, "Failed to fetch backlogs")
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// UpdateBacklog applies a partial patch to an active item
func (bs *BacklogService) UpdateBacklog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateBacklogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bs.Log.Error("failed to decode request body", "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, appErr := bs.Backlogs.Update(r.Context(), id, storage.BacklogPatch{
		Summary:     req.Summary,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		SprintID:    req.SprintID,
		Estimate:    req.Estimate,
		Assignees:   req.Assignees,
	})
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Backlog item not found")
			return
		}
		bs.Log.Error("failed to update backlog item", "backlog_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to update backlog item")
		return
	}

	bs.Log.Info("backlog item updated", "backlog_id", id)
	respond.JSON(w, http.StatusOK, item)
}

// SoftDeleteBacklog moves an active item to the deleted level
func (bs *BacklogService) SoftDeleteBacklog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	appErr := bs.Backlogs.SetLevel(r.Context(), id, models.LevelActive, models.LevelDeleted)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Backlog item not found or already deleted")
			return
		}
		bs.Log.Error("failed to delete backlog item", "backlog_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to delete backlog item")
		return
	}

	bs.Log.Info("backlog item soft-deleted", "backlog_id", id)
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Backlog deleted"})
}

// RestoreBacklog moves a deleted item back to the active level
func (bs *BacklogService) RestoreBacklog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	appErr := bs.Backlogs.SetLevel(r.Context(), id, models.LevelDeleted, models.LevelActive)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.Error(w, http.StatusNotFound, "Backlog item not found or not deleted")
			return
		}
		bs.Log.Error("failed to restore backlog item", "backlog_id", id, "error", appErr)
		respond.AppError(w, appErr, "Failed to restore backlog item")
		return
	}

	bs.Log.Info("backlog item restored", "backlog_id", id)
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Backlog restored"})
}
