package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{Validation("bad input", "severity"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{Processing("stage blew up", "analysis"), http.StatusInternalServerError, "PROCESSING_ERROR"},
		{Security("policy violation", "apply"), http.StatusForbidden, "SECURITY_ERROR"},
		{Authentication(""), http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
		{Authorization(""), http.StatusForbidden, "AUTHORIZATION_ERROR"},
		{NotFound("session", "abc"), http.StatusNotFound, "NOT_FOUND_ERROR"},
		{Conflict("wrong state", "session"), http.StatusConflict, "CONFLICT_ERROR"},
		{System("db gone", "database"), http.StatusInternalServerError, "SYSTEM_ERROR"},
		{RateLimit(""), http.StatusTooManyRequests, "RATE_LIMIT_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, tt.code, string(tt.err.Kind))
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	e := Validation("severity must be one of LOW, MEDIUM, HIGH, CRITICAL", "evidence.severity").WithSession("01ARZ3NDEKTSV4RRFFQ69G5FAV")

	raw, err := json.Marshal(e)
	assert.NoError(t, err)

	var body struct {
		Error struct {
			Code      string         `json:"code"`
			Message   string         `json:"message"`
			Details   map[string]any `json:"details"`
			SessionID string         `json:"session_id"`
			Timestamp string         `json:"timestamp"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "evidence.severity", body.Error.Details["field"])
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", body.Error.SessionID)
	assert.NotEmpty(t, body.Error.Timestamp)
}

func TestCauseStaysOutOfWireBody(t *testing.T) {
	cause := fmt.Errorf("connection refused to 10.0.0.1:5432")
	e := System("change application failed", "github").WithCause(cause)

	raw, err := json.Marshal(e)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "10.0.0.1")
	// but the operator-facing error string keeps it
	assert.Contains(t, e.Error(), "connection refused")
	assert.True(t, errors.Is(e, cause))
}

func TestIsKindAndFrom(t *testing.T) {
	e := Conflict("session is not in COMPLETED state", "session")
	wrapped := fmt.Errorf("executing: %w", e)

	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindValidation))
	assert.Equal(t, e, From(wrapped))

	plain := errors.New("boom")
	assert.Equal(t, KindSystem, From(plain).Kind)
}
