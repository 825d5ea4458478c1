package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
)

func TestMarshalEvent(t *testing.T) {
	data, err := marshalEvent("sprintStarted", map[string]string{"sprintName": "Sprint 7"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"sprintStarted","data":{"sprintName":"Sprint 7"}}`, string(data))
}

func TestPushEvent_OfflineMemberIsNotAnError(t *testing.T) {
	hub := models.NewHub()
	go hub.Run()

	n := New(nil, hub, logger.NewLogger("notifier-test"))

	err := n.PushEvent("nobody-home", "sprintStarted", map[string]string{"sprintName": "Sprint 7"})
	assert.NoError(t, err)
}
