package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nikhil/sprintboard/internal/apperrors"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/storage"
)

// TeamMemberRepository is the MySQL implementation of storage.TeamMemberRepository.
type TeamMemberRepository struct {
	db *sql.DB
}

// NewTeamMemberRepository returns a MySQL-backed team member repository.
func NewTeamMemberRepository(db *sql.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

const memberColumns = "member_id, name, email, status, created_at"

// Create inserts a new team member.
func (r *TeamMemberRepository) Create(ctx context.Context, member *models.TeamMember) *apperrors.AppError {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO team_members ("+memberColumns+") VALUES (?, ?, ?, ?, ?)",
		member.MemberID, member.Name, member.Email, member.Status, member.CreatedAt)
	if err != nil {
		return apperrors.Persistence("failed to insert team member", err)
	}
	return nil
}

// List returns all team members.
func (r *TeamMemberRepository) List(ctx context.Context) ([]models.TeamMember, *apperrors.AppError) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM team_members ORDER BY created_at")
	if err != nil {
		return nil, apperrors.Persistence("failed to query team members", err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.MemberID, &m.Name, &m.Email, &m.Status, &m.CreatedAt); err != nil {
			return nil, apperrors.Persistence("failed to scan team member row", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating team member rows", err)
	}
	return members, nil
}

// Get returns the member by id.
func (r *TeamMemberRepository) Get(ctx context.Context, id string) (models.TeamMember, *apperrors.AppError) {
	var m models.TeamMember
	err := r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM team_members WHERE member_id = ?", id).
		Scan(&m.MemberID, &m.Name, &m.Email, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TeamMember{}, apperrors.NotFound("team member not found")
	}
	if err != nil {
		return models.TeamMember{}, apperrors.Persistence("failed to query team member", err)
	}
	return m, nil
}

// Update patches the member and returns the updated row.
func (r *TeamMemberRepository) Update(ctx context.Context, id string, patch storage.TeamMemberPatch) (models.TeamMember, *apperrors.AppError) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}

	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.db.ExecContext(ctx,
			"UPDATE team_members SET "+strings.Join(sets, ", ")+" WHERE member_id = ?",
			args...)
		if err != nil {
			return models.TeamMember{}, apperrors.Persistence("failed to update team member", err)
		}
	}
	return r.Get(ctx, id)
}

// ListActiveByIDs returns the active members among the given ids, in the
// order of the ids argument.
func (r *TeamMemberRepository) ListActiveByIDs(ctx context.Context, ids []string) ([]models.TeamMember, *apperrors.AppError) {
	if len(ids) == 0 {
		return []models.TeamMember{}, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, models.MemberActive)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM team_members WHERE member_id IN ("+placeholders+") AND status = ?",
		args...)
	if err != nil {
		return nil, apperrors.Persistence("failed to query team members", err)
	}
	defer rows.Close()

	byID := make(map[string]models.TeamMember, len(ids))
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.MemberID, &m.Name, &m.Email, &m.Status, &m.CreatedAt); err != nil {
			return nil, apperrors.Persistence("failed to scan team member row", err)
		}
		byID[m.MemberID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("error iterating team member rows", err)
	}

	members := make([]models.TeamMember, 0, len(byID))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			members = append(members, m)
		}
	}
	return members, nil
}
