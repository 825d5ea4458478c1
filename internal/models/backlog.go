package models

// Backlog item soft-delete levels. Level 1 items are visible to normal
// reads; level 5 items are hidden but never removed from the table.
const (
	LevelActive  = 1
	LevelDeleted = 5
)

// Assignee links a backlog item to a team member, optionally with a role.
type Assignee struct {
	MemberID string `json:"memberId"`
	Role     string `json:"role,omitempty"`
}

// BacklogItem represents a unit of work belonging to a project,
// optionally assigned to a sprint and to one or more team members.
type BacklogItem struct {
	BacklogID   string     `json:"backlogId"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	ProjectID   string     `json:"projectId"`
	SprintID    string     `json:"sprintId,omitempty"`
	Assignees   []Assignee `json:"assignees"`
	Estimate    float64    `json:"estimate"`
	Level       int        `json:"level"`
	CreatedAt   int64      `json:"created_at"`
	UpdatedAt   int64      `json:"updated_at"`
}
