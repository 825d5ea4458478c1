package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/sprintboard/internal/models"
)

func newMockBacklogRepo(t *testing.T) (*BacklogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBacklogRepository(db), mock
}

// The populate query joins team_members on status = active, so an
// inactive or missing member resolves to a nil Member and stays out of
// the notification fan-out.
func TestListBySprintPopulated_InactiveMemberResolvesNil(t *testing.T) {
	repo, mock := newMockBacklogRepo(t)

	mock.ExpectQuery("SELECT backlog_id, summary, description, project_id, sprint_id, estimate, level, created_at, updated_at FROM backlogs WHERE sprint_id = \\?").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"backlog_id", "summary", "description", "project_id", "sprint_id",
			"estimate", "level", "created_at", "updated_at",
		}).AddRow("b1", "B1", "", "p1", "s1", 3.0, models.LevelActive, 1700000000, 1700000000))

	mock.ExpectQuery("SELECT ba.member_id, ba.role, tm.member_id, tm.name, tm.email, tm.status").
		WithArgs(models.MemberActive, "b1").
		WillReturnRows(sqlmock.NewRows([]string{
			"member_id", "role", "member_id", "name", "email", "status",
		}).
			AddRow("m1", "dev", "m1", "Alice", "alice@example.com", models.MemberActive).
			AddRow("m2", "qa", nil, nil, nil, nil))

	populated, appErr := repo.ListBySprintPopulated(context.Background(), "s1")

	require.Nil(t, appErr)
	require.Len(t, populated, 1)
	require.Len(t, populated[0].Members, 2)

	active := populated[0].Members[0]
	require.NotNil(t, active.Member)
	assert.Equal(t, "alice@example.com", active.Member.Email)

	inactive := populated[0].Members[1]
	assert.Equal(t, "m2", inactive.MemberID)
	assert.Nil(t, inactive.Member)

	// The assignee list still carries both links.
	assert.Equal(t, []models.Assignee{{MemberID: "m1", Role: "dev"}, {MemberID: "m2", Role: "qa"}},
		populated[0].Assignees)

	assert.NoError(t, mock.ExpectationsWereMet())
}
