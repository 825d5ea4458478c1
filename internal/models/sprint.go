package models

// Sprint lifecycle statuses.
const (
	SprintPlanned   = "planned"
	SprintActive    = "active"
	SprintCompleted = "completed"
)

// Sprint represents a time-boxed container of backlog items.
type Sprint struct {
	SprintID  string `json:"sprintId"`
	Name      string `json:"sprintName"`
	Goal      string `json:"sprintGoal"`
	Status    string `json:"status"`
	StartedAt *int64 `json:"startedAt,omitempty"`
	EndedAt   *int64 `json:"endedAt,omitempty"`
	StoppedBy string `json:"stoppedBy,omitempty"`
	CreatedAt int64  `json:"created_at"`
}
