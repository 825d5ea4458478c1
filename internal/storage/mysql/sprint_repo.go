package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/models"
)

// SprintRepository is the MySQL implementation of storage.SprintRepository.
type SprintRepository struct {
	db *sql.DB
}

// NewSprintRepository returns a MySQL-backed sprint repository.
func NewSprintRepository(db *sql.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create inserts a new sprint.
func (r *SprintRepository) Create(ctx context.Context, sprint *models.Sprint) *apperrors.AppError {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sprints (sprint_id, sprint_name, sprint_goal, status, stopped_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sprint.SprintID, sprint.Name, sprint.Goal, sprint.Status, sprint.StoppedBy, sprint.CreatedAt)
	if err != nil {
		return apperrors.Persistence("failed to insert sprint", err)
	}
	return nil
}

// Get returns the sprint by id.
func (r *SprintRepository) Get(ctx context.Context, id string) (models.Sprint, *apperrors.AppError) {
	var (
		sprint    models.Sprint
		startedAt sql.NullInt64
		endedAt   sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT sprint_id, sprint_name, sprint_goal, status, started_at, ended_at, stopped_by, created_at
		FROM sprints WHERE sprint_id = ?
	`, id).Scan(&sprint.SprintID, &sprint.Name, &sprint.Goal, &sprint.Status,
		&startedAt, &endedAt, &sprint.StoppedBy, &sprint.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sprint{}, apperrors.NotFound("sprint not found")
	}
	if err != nil {
		return models.Sprint{}, apperrors.Persistence("failed to query sprint", err)
	}

	if startedAt.Valid {
		sprint.StartedAt = &startedAt.Int64
	}
	if endedAt.Valid {
		sprint.EndedAt = &endedAt.Int64
	}
	return sprint, nil
}

// Start activates the sprint with a conditional update. The status guard
// makes concurrent starts race-safe: only one of them matches a row.
func (r *SprintRepository) Start(ctx context.Context, id string, now int64) (bool, *apperrors.AppError) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sprints SET status = ?, started_at = ? WHERE sprint_id = ? AND status <> ?",
		models.SprintActive, now, id, models.SprintActive)
	if err != nil {
		return false, apperrors.Persistence("failed to start sprint", err)
	}
	return r.matched(result)
}

// StopStrict completes the sprint with a conditional update guarded on
// status = active.
func (r *SprintRepository) StopStrict(ctx context.Context, id string, now int64, stoppedBy string) (bool, *apperrors.AppError) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sprints SET status = ?, ended_at = ?, stopped_by = ? WHERE sprint_id = ? AND status = ?",
		models.SprintCompleted, now, stoppedBy, id, models.SprintActive)
	if err != nil {
		return false, apperrors.Persistence("failed to stop sprint", err)
	}
	return r.matched(result)
}

// StopLenient stamps endedAt/stoppedBy without touching status. A repeated
// identical stamp affects zero rows, so existence is re-checked before
// reporting the sprint as missing.
func (r *SprintRepository) StopLenient(ctx context.Context, id string, now int64, stoppedBy string) (bool, *apperrors.AppError) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sprints SET ended_at = ?, stopped_by = ? WHERE sprint_id = ?",
		now, stoppedBy, id)
	if err != nil {
		return false, apperrors.Persistence("failed to stop sprint", err)
	}

	ok, appErr := r.matched(result)
	if appErr != nil {
		return false, appErr
	}
	if ok {
		return true, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM sprints WHERE sprint_id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Persistence("failed to check sprint existence", err)
	}
	return true, nil
}

func (r *SprintRepository) matched(result sql.Result) (bool, *apperrors.AppError) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Persistence("failed to read rows affected", err)
	}
	return affected > 0, nil
}
