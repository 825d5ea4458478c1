package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NotFound("gone"), http.StatusNotFound},
		{InvalidState("wrong phase"), http.StatusBadRequest},
		{Validation("missing field"), http.StatusBadRequest},
		{Persistence("db down", errors.New("dial tcp")), http.StatusInternalServerError},
		{Notification("smtp down", errors.New("dial smtp")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), "code %s", tc.err.Code)
	}
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	appErr := Persistence("failed to insert sprint", cause)

	assert.Equal(t, "PERSISTENCE_FAILED: failed to insert sprint: dial tcp: refused", appErr.Error())
	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, "dial tcp: refused", appErr.Details())

	bare := NotFound("sprint not found")
	assert.Equal(t, "NOT_FOUND: sprint not found", bare.Error())
	assert.Empty(t, bare.Details())
}
