package backlogService

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/storage"
)

// memoryBacklogRepo is an in-memory stand-in honoring the level-based
// visibility rules of the MySQL repository.
type memoryBacklogRepo struct {
	items map[string]*models.BacklogItem
}

func newMemoryBacklogRepo() *memoryBacklogRepo {
	return &memoryBacklogRepo{items: make(map[string]*models.BacklogItem)}
}

func (r *memoryBacklogRepo) Create(_ context.Context, item *models.BacklogItem) *apperrors.AppError {
	copied := *item
	r.items[item.BacklogID] = &copied
	return nil
}

func (r *memoryBacklogRepo) ListActive(_ context.Context, sprintID string) ([]models.BacklogItem, *apperrors.AppError) {
	out := make([]models.BacklogItem, 0)
	for _, item := range r.items {
		if item.Level != models.LevelActive {
			continue
		}
		if sprintID != "" && item.SprintID != sprintID {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *memoryBacklogRepo) GetActive(_ context.Context, id string) (models.BacklogItem, *apperrors.AppError) {
	item, ok := r.items[id]
	if !ok || item.Level != models.LevelActive {
		return models.BacklogItem{}, apperrors.NotFound("backlog item not found")
	}
	return *item, nil
}

func (r *memoryBacklogRepo) Get(_ context.Context, id string) (models.BacklogItem, *apperrors.AppError) {
	item, ok := r.items[id]
	if !ok {
		return models.BacklogItem{}, apperrors.NotFound("backlog item not found")
	}
	return *item, nil
}

func (r *memoryBacklogRepo) Update(_ context.Context, id string, patch storage.BacklogPatch) (models.BacklogItem, *apperrors.AppError) {
	item, ok := r.items[id]
	if !ok || item.Level != models.LevelActive {
		return models.BacklogItem{}, apperrors.NotFound("backlog item not found")
	}
	if patch.Summary != nil {
		item.Summary = *patch.Summary
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.ProjectID != nil {
		item.ProjectID = *patch.ProjectID
	}
	if patch.SprintID != nil {
		item.SprintID = *patch.SprintID
	}
	if patch.Estimate != nil {
		item.Estimate = *patch.Estimate
	}
	if patch.Assignees != nil {
		item.Assignees = *patch.Assignees
	}
	return *item, nil
}

func (r *memoryBacklogRepo) SetLevel(_ context.Context, id string, from, to int) *apperrors.AppError {
	item, ok := r.items[id]
	if !ok || item.Level != from {
		return apperrors.NotFound("backlog item not found")
	}
	item.Level = to
	return nil
}

func (r *memoryBacklogRepo) ListBySprintPopulated(context.Context, string) ([]storage.PopulatedBacklog, *apperrors.AppError) {
	panic("not used")
}

// memoryMemberRepo resolves assignee ids against a fixed member set.
type memoryMemberRepo struct {
	members map[string]models.TeamMember
}

func (r *memoryMemberRepo) ListActiveByIDs(_ context.Context, ids []string) ([]models.TeamMember, *apperrors.AppError) {
	out := make([]models.TeamMember, 0)
	for _, id := range ids {
		if m, ok := r.members[id]; ok && m.Status == models.MemberActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMemberRepo) Create(context.Context, *models.TeamMember) *apperrors.AppError {
	panic("not used")
}

func (r *memoryMemberRepo) List(context.Context) ([]models.TeamMember, *apperrors.AppError) {
	panic("not used")
}

func (r *memoryMemberRepo) Get(context.Context, string) (models.TeamMember, *apperrors.AppError) {
	panic("not used")
}

func (r *memoryMemberRepo) Update(context.Context, string, storage.TeamMemberPatch) (models.TeamMember, *apperrors.AppError) {
	panic("not used")
}

type sentEmail struct {
	To      string
	Subject string
}

type recordingGateway struct {
	emails   []sentEmail
	emailErr error
}

func (g *recordingGateway) SendEmail(to, subject, _ string) error {
	if g.emailErr != nil {
		return g.emailErr
	}
	g.emails = append(g.emails, sentEmail{To: to, Subject: subject})
	return nil
}

func (g *recordingGateway) PushEvent(string, string, interface{}) error {
	return nil
}

func newTestService(repo *memoryBacklogRepo, members *memoryMemberRepo, gw *recordingGateway) *BacklogService {
	if members == nil {
		members = &memoryMemberRepo{members: map[string]models.TeamMember{}}
	}
	return &BacklogService{
		Backlogs: repo,
		Members:  members,
		Gateway:  gw,
		Log:      logger.NewLogger("backlog-service-test"),
	}
}

func doRequest(handler http.HandlerFunc, method, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/backlog", strings.NewReader(body))
	req = mux.SetURLVars(req, vars)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestCreateBacklog_PersistsAndEmailsEligibleAssignees(t *testing.T) {
	repo := newMemoryBacklogRepo()
	members := &memoryMemberRepo{members: map[string]models.TeamMember{
		"m1": {MemberID: "m1", Name: "Alice", Email: "alice@example.com", Status: models.MemberActive},
		"m2": {MemberID: "m2", Name: "Bob", Email: "", Status: models.MemberActive},
		"m3": {MemberID: "m3", Name: "Carol", Email: "carol@example.com", Status: models.MemberInactive},
	}}
	gw := &recordingGateway{}
	bs := newTestService(repo, members, gw)

	body := `{"summary":"Build login","description":"d","projectId":"p1","sprintId":"s1",
		"assignees":[{"memberId":"m1"},{"memberId":"m2"},{"memberId":"m3"}]}`
	rr := doRequest(bs.CreateBacklog, http.MethodPost, body, nil)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Message string             `json:"message"`
		Backlog models.BacklogItem `json:"backlog"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Backlog created and emails sent.", resp.Message)
	assert.Equal(t, models.LevelActive, resp.Backlog.Level)
	assert.NotEmpty(t, resp.Backlog.BacklogID)

	// Only the active, email-bearing member is notified.
	require.Len(t, gw.emails, 1)
	assert.Equal(t, "alice@example.com", gw.emails[0].To)
	assert.Contains(t, gw.emails[0].Subject, "Build login")

	_, appErr := repo.GetActive(context.Background(), resp.Backlog.BacklogID)
	assert.Nil(t, appErr)
}

func TestCreateBacklog_EmailFailureFailsRequestButKeepsItem(t *testing.T) {
	repo := newMemoryBacklogRepo()
	members := &memoryMemberRepo{members: map[string]models.TeamMember{
		"m1": {MemberID: "m1", Name: "Alice", Email: "alice@example.com", Status: models.MemberActive},
	}}
	gw := &recordingGateway{emailErr: errors.New("smtp down")}
	bs := newTestService(repo, members, gw)

	body := `{"summary":"Doomed","assignees":[{"memberId":"m1"}]}`
	rr := doRequest(bs.CreateBacklog, http.MethodPost, body, nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to create backlog item")

	// The item was persisted before the notification loop ran.
	items, appErr := repo.ListActive(context.Background(), "")
	require.Nil(t, appErr)
	require.Len(t, items, 1)
	assert.Equal(t, "Doomed", items[0].Summary)
}

func TestGetBacklogByID_HidesSoftDeleted(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{BacklogID: "b1", Summary: "hidden", Level: models.LevelDeleted}
	bs := newTestService(repo, nil, &recordingGateway{})

	rr := doRequest(bs.GetBacklogByID, http.MethodGet, "", map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Backlog item not found")
}

func TestSoftDeleteThenRestore_RoundTripPreservesContent(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{
		BacklogID:   "b1",
		Summary:     "keep me",
		Description: "important",
		Assignees:   []models.Assignee{{MemberID: "m1", Role: "dev"}},
		Level:       models.LevelActive,
	}
	bs := newTestService(repo, nil, &recordingGateway{})

	rr := doRequest(bs.SoftDeleteBacklog, http.MethodDelete, "", map[string]string{"id": "b1"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Invisible while deleted.
	rr = doRequest(bs.GetBacklogByID, http.MethodGet, "", map[string]string{"id": "b1"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	// Deleting again signals "not found or already deleted".
	rr = doRequest(bs.SoftDeleteBacklog, http.MethodDelete, "", map[string]string{"id": "b1"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "already deleted")

	rr = doRequest(bs.RestoreBacklog, http.MethodPost, "", map[string]string{"id": "b1"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(bs.GetBacklogByID, http.MethodGet, "", map[string]string{"id": "b1"})
	require.Equal(t, http.StatusOK, rr.Code)

	var item models.BacklogItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &item))
	assert.Equal(t, "keep me", item.Summary)
	assert.Equal(t, "important", item.Description)
	assert.Equal(t, []models.Assignee{{MemberID: "m1", Role: "dev"}}, item.Assignees)
	assert.Equal(t, models.LevelActive, item.Level)
}

func TestRestoreBacklog_ActiveItemIsNotRestorable(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{BacklogID: "b1", Level: models.LevelActive}
	bs := newTestService(repo, nil, &recordingGateway{})

	rr := doRequest(bs.RestoreBacklog, http.MethodPost, "", map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not deleted")
}

func TestUpdateBacklog_PatchesOnlyProvidedFields(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{
		BacklogID:   "b1",
		Summary:     "old summary",
		Description: "old description",
		Estimate:    3,
		Level:       models.LevelActive,
	}
	bs := newTestService(repo, nil, &recordingGateway{})

	rr := doRequest(bs.UpdateBacklog, http.MethodPut, `{"summary":"new summary","estimate":8}`, map[string]string{"id": "b1"})

	require.Equal(t, http.StatusOK, rr.Code)
	var item models.BacklogItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &item))
	assert.Equal(t, "new summary", item.Summary)
	assert.Equal(t, "old description", item.Description)
	assert.EqualValues(t, 8, item.Estimate)
}

func TestUpdateBacklog_DeletedItemNotUpdatable(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{BacklogID: "b1", Level: models.LevelDeleted}
	bs := newTestService(repo, nil, &recordingGateway{})

	rr := doRequest(bs.UpdateBacklog, http.MethodPut, `{"summary":"nope"}`, map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetAllBacklogs_FiltersBySprint(t *testing.T) {
	repo := newMemoryBacklogRepo()
	repo.items["b1"] = &models.BacklogItem{BacklogID: "b1", SprintID: "s1", Level: models.LevelActive}
	repo.items["b2"] = &models.BacklogItem{BacklogID: "b2", SprintID: "s2", Level: models.LevelActive}
	repo.items["b3"] = &models.BacklogItem{BacklogID: "b3", SprintID: "s1", Level: models.LevelDeleted}
	bs := newTestService(repo, nil, &recordingGateway{})

	req := httptest.NewRequest(http.MethodGet, "/backlog/all?sprintId=s1", nil)
	rr := httptest.NewRecorder()
	bs.GetAllBacklogs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var items []models.BacklogItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].BacklogID)
}
