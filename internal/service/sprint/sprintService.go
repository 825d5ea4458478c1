package sprintService

import (
	"context"
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

// Push event names for sprint transitions.
const (
	EventSprintStarted = "sprintStarted"
	EventSprintStopped = "sprintStopped"
)

// SprintService orchestrates sprint status transitions and the
// notification fan-out that follows them.
type SprintService struct {
	Sprints  storage.SprintRepository
	Backlogs storage.BacklogRepository
	Gateway  notifier.Gateway
	Log      *logger.Logger

	// now is swappable for tests.
	now func() int64
}

// NewSprintService initializes a new sprint service
func NewSprintService(sprints storage.SprintRepository, backlogs storage.BacklogRepository, gateway notifier.Gateway) *SprintService {
	return &SprintService{
		Sprints:  sprints,
		Backlogs: backlogs,
		Gateway:  gateway,
		Log:      logger.NewLogger("sprint-service"),
		now:      func() int64 { return time.Now().Unix() },
	}
}

// CreateSprintRequest represents the request body for sprint creation
type CreateSprintRequest struct {
	Name string `json:"sprintName"`
	Goal string `json:"sprintGoal"`
}

// TransitionRequest represents the body of start/stop requests
type TransitionRequest struct {
	StartedBy string `json:"startedBy"`
	StoppedBy string `json:"stoppedBy"`
	Note      string `json:"note"`
}

// direction selects which transition the parameterized runner performs.
type direction int

const (
	directionStart direction = iota
	directionStop
)

// transitionParams parameterizes the one transition runner behind all
// four route entry points.
type transitionParams struct {
	direction direction
	// lookupByBacklog resolves the sprint through a backlog item id
	// instead of taking the sprint id directly.
	lookupByBacklog bool
	id              string
	// strict requires status=active on stop and transitions to
	// completed; the lenient variant stamps endedAt/stoppedBy without
	// checking or changing status.
	strict bool
	note   string
	actor  string
}

// transitionResult carries what the entry points need for their response.
type transitionResult struct {
	sprintID   string
	backlogIDs []string
}

// CreateSprint persists a new sprint in the planned state.
func (ss *SprintService) CreateSprint(w http.ResponseWriter, r *http.Request) {
	var req CreateSprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ss.Log.Error("failed to decode request body", "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sprint := models.Sprint{
		SprintID:  uuid.New().String(),
		Name:      req.Name,
		Goal:      req.Goal,
		Status:    models.SprintPlanned,
		CreatedAt: ss.now(),
	}
	if appErr := ss.Sprints.Create(r.Context(), &sprint); appErr != nil {
		ss.Log.Error("failed to create sprint", "error", appErr)
		respond.JSON(w, appErr.HTTPStatus(), map[string]string{
			"message": "Error creating sprint", "error": appErr.Details(),
		})
		return
	}

	ss.Log.Info("sprint created", "sprint_id", sprint.SprintID)
	respond.JSON(w, http.StatusCreated, sprint)
}

// GetSprint returns the sprint by id.
func (ss *SprintService) GetSprint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sprintId"]

	sprint, appErr := ss.Sprints.Get(r.Context(), id)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			respond.JSON(w, http.StatusNotFound, map[string]string{"message": "Sprint not found"})
			return
		}
		ss.Log.Error("failed to fetch sprint", "sprint_id", id, "error", appErr)
		respond.JSON(w, appErr.HTTPStatus(), map[string]string{
			"message": "Error fetching sprint", "error": appErr.Details(),
		})
		return
	}
	respond.JSON(w, http.StatusOK, sprint)
}

// StartSprintByBacklog starts the sprint a backlog item belongs to.
func (ss *SprintService) StartSprintByBacklog(w http.ResponseWriter, r *http.Request) {
	req, ok := ss.decodeTransition(w, r)
	if !ok {
		return
	}
	res, appErr := ss.transition(r.Context(), transitionParams{
		direction:       directionStart,
		lookupByBacklog: true,
		id:              mux.Vars(r)["backlogId"],
		note:            req.Note,
		actor:           req.StartedBy,
	})
	if appErr != nil {
		ss.respondTransitionError(w, appErr, "Error starting sprint")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Sprint started and notifications sent.",
		"sprintId": res.sprintID,
	})
}

// StartSprintBySprintID starts the sprint directly by its id.
func (ss *SprintService) StartSprintBySprintID(w http.ResponseWriter, r *http.Request) {
	req, ok := ss.decodeTransition(w, r)
	if !ok {
		return
	}
	res, appErr := ss.transition(r.Context(), transitionParams{
		direction: directionStart,
		id:        mux.Vars(r)["sprintId"],
		note:      req.Note,
		actor:     req.StartedBy,
	})
	if appErr != nil {
		ss.respondTransitionError(w, appErr, "Error starting sprint")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Sprint started and notifications sent.",
		"sprintId":   res.sprintID,
		"backlogIds": res.backlogIDs,
	})
}

// StopSprintByBacklog stops the sprint a backlog item belongs to. This is
// the strict variant: the sprint must be active and transitions to
// completed.
func (ss *SprintService) StopSprintByBacklog(w http.ResponseWriter, r *http.Request) {
	req, ok := ss.decodeTransition(w, r)
	if !ok {
		return
	}
	res, appErr := ss.transition(r.Context(), transitionParams{
		direction:       directionStop,
		lookupByBacklog: true,
		id:              mux.Vars(r)["backlogId"],
		strict:          true,
		note:            req.Note,
		actor:           req.StoppedBy,
	})
	if appErr != nil {
		ss.respondTransitionError(w, appErr, "Error stopping sprint")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Sprint stopped and notifications sent.",
		"sprintId": res.sprintID,
	})
}

// StopSprintBySprintID stops the sprint directly by its id. This is the
// lenient variant: it stamps endedAt/stoppedBy on any sprint and leaves
// the status untouched. Kept distinct from the strict variant until
// product intent is settled.
func (ss *SprintService) StopSprintBySprintID(w http.ResponseWriter, r *http.Request) {
	req, ok := ss.decodeTransition(w, r)
	if !ok {
		return
	}
	res, appErr := ss.transition(r.Context(), transitionParams{
		direction: directionStop,
		id:        mux.Vars(r)["sprintId"],
		note:      req.Note,
		actor:     req.StoppedBy,
	})
	if appErr != nil {
		ss.respondTransitionError(w, appErr, "Error stopping sprint")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Sprint stopped and notifications sent.",
		"sprintId":   res.sprintID,
		"backlogIds": res.backlogIDs,
	})
}

// transition runs one sprint status transition: resolve the sprint,
// apply the guarded status write, then aggregate assignees and fan out
// notifications. The status write is durable before any notification is
// attempted; notification failures are logged and never roll it back.
func (ss *SprintService) transition(ctx context.Context, p transitionParams) (transitionResult, *apperrors.AppError) {
	sprintID := p.id
	if p.lookupByBacklog {
		backlog, appErr := ss.Backlogs.Get(ctx, p.id)
		if appErr != nil {
			if appErr.Code == apperrors.CodeNotFound {
				return transitionResult{}, apperrors.NotFound(lookupNotFoundMsg(p.direction))
			}
			return transitionResult{}, appErr
		}
		if backlog.SprintID == "" {
			return transitionResult{}, apperrors.NotFound(lookupNotFoundMsg(p.direction))
		}
		sprintID = backlog.SprintID
	}

	now := ss.now()
	switch {
	case p.direction == directionStart:
		ok, appErr := ss.Sprints.Start(ctx, sprintID, now)
		if appErr != nil {
			return transitionResult{}, appErr
		}
		if !ok {
			return transitionResult{}, ss.rejectionReason(ctx, sprintID, "Sprint already active")
		}
	case p.strict:
		ok, appErr := ss.Sprints.StopStrict(ctx, sprintID, now, p.actor)
		if appErr != nil {
			return transitionResult{}, appErr
		}
		if !ok {
			return transitionResult{}, ss.rejectionReason(ctx, sprintID, "Sprint is not active")
		}
	default:
		ok, appErr := ss.Sprints.StopLenient(ctx, sprintID, now, p.actor)
		if appErr != nil {
			return transitionResult{}, appErr
		}
		if !ok {
			return transitionResult{}, apperrors.NotFound("Sprint not found")
		}
	}

	sprint, appErr := ss.Sprints.Get(ctx, sprintID)
	if appErr != nil {
		return transitionResult{}, appErr
	}

	backlogs, appErr := ss.Backlogs.ListBySprintPopulated(ctx, sprintID)
	if appErr != nil {
		return transitionResult{}, appErr
	}

	backlogIDs := make([]string, 0, len(backlogs))
	for _, b := range backlogs {
		backlogIDs = append(backlogIDs, b.BacklogID)
	}

	ss.notifyBatches(sprint, p, AggregateAssignees(backlogs))

	ss.Log.Info("sprint transition complete",
		"sprint_id", sprintID, "direction", directionName(p.direction),
		"strict", p.strict, "actor", p.actor)

	return transitionResult{sprintID: sprintID, backlogIDs: backlogIDs}, nil
}

// rejectionReason disambiguates a guarded update that matched no row:
// either the sprint is missing or its status failed the precondition.
func (ss *SprintService) rejectionReason(ctx context.Context, sprintID, invalidStateMsg string) *apperrors.AppError {
	if _, appErr := ss.Sprints.Get(ctx, sprintID); appErr != nil {
		if appErr.Code == apperrors.CodeNotFound {
			return apperrors.NotFound("Sprint not found")
		}
		return appErr
	}
	return apperrors.InvalidState(invalidStateMsg)
}

// sprintSummary is the push payload sent to each member.
type sprintSummary struct {
	SprintName       string         `json:"sprintName"`
	SprintGoal       string         `json:"sprintGoal"`
	Note             string         `json:"note"`
	AssignedBacklogs []AssignedItem `json:"assignedBacklogs"`
}

// notifyBatches pushes one event and sends one email per aggregated
// member, sequentially in aggregation order. Failures are logged and the
// loop continues: the state change is already durable.
func (ss *SprintService) notifyBatches(sprint models.Sprint, p transitionParams, batches []AssigneeBatch) {
	event := EventSprintStarted
	if p.direction == directionStop {
		event = EventSprintStopped
	}

	for _, batch := range batches {
		summary := sprintSummary{
			SprintName:       sprint.Name,
			SprintGoal:       sprint.Goal,
			Note:             p.note,
			AssignedBacklogs: batch.Items,
		}

		if err := ss.Gateway.PushEvent(batch.MemberID, event, summary); err != nil {
			ss.Log.Error("push notification failed",
				"member_id", batch.MemberID, "event", event, "error", err)
		}

		subject, text := transitionMail(p.direction, sprint, batch, p.note)
		if err := ss.Gateway.SendEmail(batch.Email, subject, text); err != nil {
			ss.Log.Error("notification email failed",
				"member_id", batch.MemberID, "email", batch.Email, "error", err)
		}
	}
}

func transitionMail(d direction, sprint models.Sprint, batch AssigneeBatch, note string) (subject, text string) {
	if note == "" {
		note = "—"
	}
	if d == directionStart {
		subject = fmt.Sprintf("🚀 Sprint %q started", sprint.Name)
		text = fmt.Sprintf("Hi %s,\n\nThe sprint %q has started.\nGoal: %s\nYou have %d assigned items.\n\nNote: %s\n\nGood luck!",
			batch.Name, sprint.Name, sprint.Goal, len(batch.Items), note)
		return subject, text
	}
	subject = fmt.Sprintf("🏁 Sprint %q completed", sprint.Name)
	text = fmt.Sprintf("Hi %s,\n\nThe sprint %q has ended.\nYou were assigned %d items.\n\nNote: %s\n\nThanks!",
		batch.Name, sprint.Name, len(batch.Items), note)
	return subject, text
}

func lookupNotFoundMsg(d direction) string {
	if d == directionStart {
		return "Sprint ID not found"
	}
	return "Backlog or Sprint ID not found"
}

func directionName(d direction) string {
	if d == directionStart {
		return "start"
	}
	return "stop"
}

func (ss *SprintService) decodeTransition(w http.ResponseWriter, r *http.Request) (TransitionRequest, bool) {
	var req TransitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ss.Log.Error("failed to decode request body", "error", err)
			respond.JSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
			return TransitionRequest{}, false
		}
	}
	return req, true
}

// respondTransitionError keeps the sprint endpoints' message-keyed error
// shape: 4xx carries the reason, 5xx a generic message plus details.
func (ss *SprintService) respondTransitionError(w http.ResponseWriter, appErr *apperrors.AppError, generic string) {
	status := appErr.HTTPStatus()
	if status < http.StatusInternalServerError {
		respond.JSON(w, status, map[string]string{"message": appErr.Message})
		return
	}
	ss.Log.Error("sprint transition failed", "error", appErr)
	respond.JSON(w, status, map[string]string{"message": generic, "error": appErr.Details()})
}
