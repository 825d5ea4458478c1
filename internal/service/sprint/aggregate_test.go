package sprintService

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/storage"
)

func populatedItem(summary string, estimate float64, members ...*models.TeamMember) storage.PopulatedBacklog {
	item := storage.PopulatedBacklog{
		BacklogItem: models.BacklogItem{Summary: summary, Estimate: estimate},
	}
	for _, m := range members {
		pa := storage.PopulatedAssignee{Member: m}
		if m != nil {
			pa.MemberID = m.MemberID
		}
		item.Members = append(item.Members, pa)
	}
	return item
}

func TestAggregateAssignees_AccumulatesDuplicateMember(t *testing.T) {
	m1 := &models.TeamMember{MemberID: "m1", Name: "Alice", Email: "alice@example.com"}

	batches := AggregateAssignees([]storage.PopulatedBacklog{
		populatedItem("first task", 3, m1),
		populatedItem("second task", 5, m1),
	})

	require.Len(t, batches, 1)
	assert.Equal(t, "m1", batches[0].MemberID)
	assert.Equal(t, "Alice", batches[0].Name)
	assert.Equal(t, []AssignedItem{
		{Summary: "first task", Estimate: 3},
		{Summary: "second task", Estimate: 5},
	}, batches[0].Items)
}

func TestAggregateAssignees_SkipsMemberWithoutEmail(t *testing.T) {
	noEmail := &models.TeamMember{MemberID: "m1", Name: "Alice"}

	batches := AggregateAssignees([]storage.PopulatedBacklog{
		populatedItem("task", 1, noEmail),
	})

	assert.Empty(t, batches)
}

func TestAggregateAssignees_SkipsUnresolvedMember(t *testing.T) {
	batches := AggregateAssignees([]storage.PopulatedBacklog{
		populatedItem("task", 1, nil),
	})

	assert.Empty(t, batches)
}

func TestAggregateAssignees_BatchOrderIsFirstSeen(t *testing.T) {
	m1 := &models.TeamMember{MemberID: "m1", Name: "Alice", Email: "alice@example.com"}
	m2 := &models.TeamMember{MemberID: "m2", Name: "Bob", Email: "bob@example.com"}

	batches := AggregateAssignees([]storage.PopulatedBacklog{
		populatedItem("b1", 3, m1),
		populatedItem("b2", 5, m1, m2),
	})

	require.Len(t, batches, 2)
	assert.Equal(t, "m1", batches[0].MemberID)
	assert.Len(t, batches[0].Items, 2)
	assert.Equal(t, "m2", batches[1].MemberID)
	assert.Equal(t, []AssignedItem{{Summary: "b2", Estimate: 5}}, batches[1].Items)
}

func TestAggregateAssignees_Empty(t *testing.T) {
	assert.Empty(t, AggregateAssignees(nil))
	assert.Empty(t, AggregateAssignees([]storage.PopulatedBacklog{populatedItem("lonely", 1)}))
}
