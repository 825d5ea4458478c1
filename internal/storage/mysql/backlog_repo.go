package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/storage"
)

// BacklogRepository is the MySQL implementation of storage.BacklogRepository.
type BacklogRepository struct {
	db *sql.DB
}

// NewBacklogRepository returns a MySQL-backed backlog repository.
func NewBacklogRepository(db *sql.DB) *BacklogRepository {
	return &BacklogRepository{db: db}
}

const backlogColumns = "backlog_id, summary, description, project_id, sprint_id, estimate, level, created_at, updated_at"

// Create inserts the backlog row and its assignee rows in one transaction.
func (r *BacklogRepository) Create(ctx context.Context, item *models.BacklogItem) *apperrors.AppError {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO backlogs (`+backlogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.BacklogID, item.Summary, item.Description, item.ProjectID, item.SprintID,
		item.Estimate, item.Level, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return apperrors.Persistence("failed to insert backlog item", err)
	}

	if err := insertAssignees(ctx, tx, item.BacklogID, item.Assignees); err != nil {
		return apperrors.Persistence("failed to insert assignees", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Persistence("failed to commit transaction", err)
	}
	return nil
}

// ListActive returns level-1 items, optionally filtered by sprint.
func (r *BacklogRepository) ListActive(ctx context.Context, sprintID string) ([]models.BacklogItem, *apperrors.AppError) {
	query := "SELECT " + backlogColumns + " FROM backlogs WHERE level = ?"
	args := []interface{}{models.LevelActive}
	if sprintID != "" {
		query += " AND sprint_id = ?"
		args = append(args, sprintID)
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Persistence("failed to query backlog items", err)
	}
	defer rows.Close()

	items := make([]models.BacklogItem, 0)
	for rows.Next() {
		item, err := scanBacklog(rows)
		if err != nil {
			return nil, apperrors.Persistence("failed to scan backlog row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating backlog rows", err)
	}

	for i := range items {
		assignees, appErr := r.listAssignees(ctx, items[i].BacklogID)
		if appErr != nil {
			return nil, appErr
		}
		items[i].Assignees = assignees
	}
	return items, nil
}

// GetActive returns the item only when it is at level 1.
func (r *BacklogRepository) GetActive(ctx context.Context, id string) (models.BacklogItem, *apperrors.AppError) {
	return r.getByLevel(ctx, id, true)
}

// Get returns the item regardless of level.
func (r *BacklogRepository) Get(ctx context.Context, id string) (models.BacklogItem, *apperrors.AppError) {
	return r.getByLevel(ctx, id, false)
}

func (r *BacklogRepository) getByLevel(ctx context.Context, id string, activeOnly bool) (models.BacklogItem, *apperrors.AppError) {
	query := "SELECT " + backlogColumns + " FROM backlogs WHERE backlog_id = ?"
	args := []interface{}{id}
	if activeOnly {
		query += " AND level = ?"
		args = append(args, models.LevelActive)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	item, err := scanBacklog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BacklogItem{}, apperrors.NotFound("backlog item not found")
	}
	if err != nil {
		return models.BacklogItem{}, apperrors.Persistence("failed to query backlog item", err)
	}

	assignees, appErr := r.listAssignees(ctx, item.BacklogID)
	if appErr != nil {
		return models.BacklogItem{}, appErr
	}
	item.Assignees = assignees
	return item, nil
}

// Update patches an active item. Field updates and the optional assignee
// replacement run in one transaction; the final re-read decides existence
// so that a no-op patch is not mistaken for a missing row.
func (r *BacklogRepository) Update(ctx context.Context, id string, patch storage.BacklogPatch) (models.BacklogItem, *apperrors.AppError) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.BacklogItem{}, apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.ProjectID != nil {
		sets = append(sets, "project_id = ?")
		args = append(args, *patch.ProjectID)
	}
	if patch.SprintID != nil {
		sets = append(sets, "sprint_id = ?")
		args = append(args, *patch.SprintID)
	}
	if patch.Estimate != nil {
		sets = append(sets, "estimate = ?")
		args = append(args, *patch.Estimate)
	}

	args = append(args, id, models.LevelActive)
	_, err = tx.ExecContext(ctx,
		"UPDATE backlogs SET "+strings.Join(sets, ", ")+" WHERE backlog_id = ? AND level = ?",
		args...)
	if err != nil {
		return models.BacklogItem{}, apperrors.Persistence("failed to update backlog item", err)
	}

	if patch.Assignees != nil {
		// Replace the whole list; guard on level so a patch cannot touch
		// a soft-deleted item's assignees.
		var level int
		err := tx.QueryRowContext(ctx, "SELECT level FROM backlogs WHERE backlog_id = ?", id).Scan(&level)
		if errors.Is(err, sql.ErrNoRows) {
			return models.BacklogItem{}, apperrors.NotFound("backlog item not found")
		}
		if err != nil {
			return models.BacklogItem{}, apperrors.Persistence("failed to check backlog level", err)
		}
		if level == models.LevelActive {
			if _, err := tx.ExecContext(ctx, "DELETE FROM backlog_assignees WHERE backlog_id = ?", id); err != nil {
				return models.BacklogItem{}, apperrors.Persistence("failed to clear assignees", err)
			}
			if err := insertAssignees(ctx, tx, id, *patch.Assignees); err != nil {
				return models.BacklogItem{}, apperrors.Persistence("failed to insert assignees", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.BacklogItem{}, apperrors.Persistence("failed to commit transaction", err)
	}

	return r.GetActive(ctx, id)
}

// SetLevel moves an item between levels with a single conditional update.
func (r *BacklogRepository) SetLevel(ctx context.Context, id string, from, to int) *apperrors.AppError {
	result, err := r.db.ExecContext(ctx,
		"UPDATE backlogs SET level = ?, updated_at = ? WHERE backlog_id = ? AND level = ?",
		to, time.Now().Unix(), id, from)
	if err != nil {
		return apperrors.Persistence("failed to update backlog level", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Persistence("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperrors.NotFound("backlog item not found")
	}
	return nil
}

// ListBySprintPopulated returns every item of the sprint, any level, with
// assignees resolved against active team members. Inactive or missing
// members come back with a nil Member.
func (r *BacklogRepository) ListBySprintPopulated(ctx context.Context, sprintID string) ([]storage.PopulatedBacklog, *apperrors.AppError) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+backlogColumns+" FROM backlogs WHERE sprint_id = ? ORDER BY created_at",
		sprintID)
	if err != nil {
		return nil, apperrors.Persistence("failed to query sprint backlog items", err)
	}
	defer rows.Close()

	populated := make([]storage.PopulatedBacklog, 0)
	for rows.Next() {
		item, err := scanBacklog(rows)
		if err != nil {
			return nil, apperrors.Persistence("failed to scan backlog row", err)
		}
		populated = append(populated, storage.PopulatedBacklog{BacklogItem: item})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating backlog rows", err)
	}

	for i := range populated {
		members, appErr := r.listPopulatedAssignees(ctx, populated[i].BacklogID)
		if appErr != nil {
			return nil, appErr
		}
		populated[i].Members = members
		assignees := make([]models.Assignee, 0, len(members))
		for _, m := range members {
			assignees = append(assignees, models.Assignee{MemberID: m.MemberID, Role: m.Role})
		}
		populated[i].Assignees = assignees
	}
	return populated, nil
}

func (r *BacklogRepository) listAssignees(ctx context.Context, backlogID string) ([]models.Assignee, *apperrors.AppError) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT member_id, role FROM backlog_assignees WHERE backlog_id = ? ORDER BY position",
		backlogID)
	if err != nil {
		return nil, apperrors.Persistence("failed to query assignees", err)
	}
	defer rows.Close()

	assignees := make([]models.Assignee, 0)
	for rows.Next() {
		var a models.Assignee
		if err := rows.Scan(&a.MemberID, &a.Role); err != nil {
			return nil, apperrors.Persistence("failed to scan assignee row", err)
		}
		assignees = append(assignees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating assignee rows", err)
	}
	return assignees, nil
}

func (r *BacklogRepository) listPopulatedAssignees(ctx context.Context, backlogID string) ([]storage.PopulatedAssignee, *apperrors.AppError) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ba.member_id, ba.role, tm.member_id, tm.name, tm.email, tm.status
		FROM backlog_assignees ba
		LEFT JOIN team_members tm ON tm.member_id = ba.member_id AND tm.status = ?
		WHERE ba.backlog_id = ?
		ORDER BY ba.position
	`, models.MemberActive, backlogID)
	if err != nil {
		return nil, apperrors.Persistence("failed to query populated assignees", err)
	}
	defer rows.Close()

	assignees := make([]storage.PopulatedAssignee, 0)
	for rows.Next() {
		var (
			rawMemberID string
			role        string
			memberID    sql.NullString
			name        sql.NullString
			email       sql.NullString
			status      sql.NullInt64
		)
		if err := rows.Scan(&rawMemberID, &role, &memberID, &name, &email, &status); err != nil {
			return nil, apperrors.Persistence("failed to scan populated assignee row", err)
		}

		pa := storage.PopulatedAssignee{MemberID: rawMemberID, Role: role}
		if memberID.Valid {
			pa.Member = &models.TeamMember{
				MemberID: memberID.String,
				Name:     name.String,
				Email:    email.String,
				Status:   int(status.Int64),
			}
		}
		assignees = append(assignees, pa)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating populated assignee rows", err)
	}
	return assignees, nil
}

func insertAssignees(ctx context.Context, tx *sql.Tx, backlogID string, assignees []models.Assignee) error {
	for i, a := range assignees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO backlog_assignees (backlog_id, member_id, role, position)
			VALUES (?, ?, ?, ?)
		`, backlogID, a.MemberID, a.Role, i); err != nil {
			return err
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBacklog(s scanner) (models.BacklogItem, error) {
	var item models.BacklogItem
	err := s.Scan(&item.BacklogID, &item.Summary, &item.Description, &item.ProjectID,
		&item.SprintID, &item.Estimate, &item.Level, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
