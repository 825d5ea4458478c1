// Package storage defines the repository contracts consumed by the services.
package storage

import (
	"context"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/models"
)

// BacklogPatch carries a partial backlog update; nil fields are left untouched.
type BacklogPatch struct {
	Summary     *string
	Description *string
	ProjectID   *string
	SprintID    *string
	Estimate    *float64
	Assignees   *[]models.Assignee
}

// TeamMemberPatch carries a partial team member update.
type TeamMemberPatch struct {
	Name   *string
	Email  *string
	Status *int
}

// PopulatedAssignee is an assignee with its member reference resolved.
// Member is nil when the referenced member is missing or inactive.
type PopulatedAssignee struct {
	MemberID string
	Role     string
	Member   *models.TeamMember
}

// PopulatedBacklog is a backlog item with its assignee list hydrated.
type PopulatedBacklog struct {
	models.BacklogItem
	Members []PopulatedAssignee
}

// BacklogRepository persists backlog items and their assignee lists.
type BacklogRepository interface {
	// Create inserts a new item together with its assignee rows.
	Create(ctx context.Context, item *models.BacklogItem) *apperrors.AppError

	// ListActive returns level-1 items, optionally filtered by sprint
	// (empty sprintID means no filter).
	ListActive(ctx context.Context, sprintID string) ([]models.BacklogItem, *apperrors.AppError)

	// GetActive returns the item only when it is at level 1.
	GetActive(ctx context.Context, id string) (models.BacklogItem, *apperrors.AppError)

	// Get returns the item regardless of level. Sprint transitions use it
	// to resolve a sprint reference from a backlog id.
	Get(ctx context.Context, id string) (models.BacklogItem, *apperrors.AppError)

	// Update patches an active item and returns the updated row.
	Update(ctx context.Context, id string, patch BacklogPatch) (models.BacklogItem, *apperrors.AppError)

	// SetLevel moves an item from one level to another in a single
	// conditional update; it returns NotFound when no row matched.
	SetLevel(ctx context.Context, id string, from, to int) *apperrors.AppError

	// ListBySprintPopulated returns every item of a sprint (any level)
	// with assignees resolved against active team members.
	ListBySprintPopulated(ctx context.Context, sprintID string) ([]PopulatedBacklog, *apperrors.AppError)
}

// SprintRepository persists sprints. The status transitions are
// conditional updates so concurrent requests cannot both pass a
// read-then-write check.
type SprintRepository interface {
	Create(ctx context.Context, sprint *models.Sprint) *apperrors.AppError
	Get(ctx context.Context, id string) (models.Sprint, *apperrors.AppError)

	// Start sets status=active and stamps startedAt, guarded by
	// status <> active. Returns false when the guard rejected the write.
	Start(ctx context.Context, id string, now int64) (bool, *apperrors.AppError)

	// StopStrict sets status=completed and stamps endedAt/stoppedBy,
	// guarded by status = active. Returns false when the guard rejected
	// the write.
	StopStrict(ctx context.Context, id string, now int64, stoppedBy string) (bool, *apperrors.AppError)

	// StopLenient stamps endedAt/stoppedBy without touching status.
	// Returns false when the sprint does not exist.
	StopLenient(ctx context.Context, id string, now int64, stoppedBy string) (bool, *apperrors.AppError)
}

// TeamMemberRepository persists team members.
type TeamMemberRepository interface {
	Create(ctx context.Context, member *models.TeamMember) *apperrors.AppError
	List(ctx context.Context) ([]models.TeamMember, *apperrors.AppError)
	Get(ctx context.Context, id string) (models.TeamMember, *apperrors.AppError)
	Update(ctx context.Context, id string, patch TeamMemberPatch) (models.TeamMember, *apperrors.AppError)

	// ListActiveByIDs returns the active members among the given ids,
	// preserving the order of the ids argument.
	ListActiveByIDs(ctx context.Context, ids []string) ([]models.TeamMember, *apperrors.AppError)
}
