package models

// Team member statuses. Only active members with a non-empty email
// are notification-eligible.
const (
	MemberInactive = 0
	MemberActive   = 1
)

// TeamMember represents a person backlog items can be assigned to.
type TeamMember struct {
	MemberID  string `json:"memberId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    int    `json:"status"`
	CreatedAt int64  `json:"created_at"`
}
