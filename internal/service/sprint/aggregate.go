package sprintService

import "github.com/nikhil/sprintboard/internal/storage"

// AssignedItem is one backlog entry inside a member's notification batch.
type AssignedItem struct {
	Summary  string  `json:"summary"`
	Estimate float64 `json:"estimate"`
}

// AssigneeBatch collects everything assigned to one member across the
// sprint's backlog items.
type AssigneeBatch struct {
	MemberID string
	Name     string
	Email    string
	Items    []AssignedItem
}

// AggregateAssignees groups backlog items by assigned member. Members
// without a resolved record or without an email are skipped; a member
// assigned to several items gets a single batch accumulating all of them.
// Batch order is first-seen order, item order inside a batch is input order.
func AggregateAssignees(backlogs []storage.PopulatedBacklog) []AssigneeBatch {
	batches := make([]AssigneeBatch, 0)
	index := make(map[string]int)

	for _, b := range backlogs {
		for _, assignee := range b.Members {
			member := assignee.Member
			if member == nil || member.Email == "" {
				continue
			}

			i, seen := index[member.MemberID]
			if !seen {
				i = len(batches)
				index[member.MemberID] = i
				batches = append(batches, AssigneeBatch{
					MemberID: member.MemberID,
					Name:     member.Name,
					Email:    member.Email,
				})
			}
			batches[i].Items = append(batches[i].Items, AssignedItem{
				Summary:  b.Summary,
				Estimate: b.Estimate,
			})
		}
	}
	return batches
}
