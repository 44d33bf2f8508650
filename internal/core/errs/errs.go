// Package errs defines the closed set of error kinds the service surfaces
// to callers. Every kind carries a fixed wire code and HTTP status; a single
// marshaling path produces the response body, so controllers never build
// error JSON by hand.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindProcessing     Kind = "PROCESSING_ERROR"
	KindSecurity       Kind = "SECURITY_ERROR"
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindAuthorization  Kind = "AUTHORIZATION_ERROR"
	KindNotFound       Kind = "NOT_FOUND_ERROR"
	KindConflict       Kind = "CONFLICT_ERROR"
	KindSystem         Kind = "SYSTEM_ERROR"
	KindRateLimit      Kind = "RATE_LIMIT_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:     http.StatusBadRequest,
	KindProcessing:     http.StatusInternalServerError,
	KindSecurity:       http.StatusForbidden,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindSystem:         http.StatusInternalServerError,
	KindRateLimit:      http.StatusTooManyRequests,
}

// Error is the one error type crossing the boundary surface. The Cause is
// kept for operator diagnostics (logs) and never serialized to the client.
type Error struct {
	Kind      Kind
	Message   string
	Details   map[string]any
	SessionID string
	Timestamp time.Time
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Status() int {
	return statusByKind[e.Kind]
}

// MarshalJSON emits the wire body. The echo error handler recognizes
// json.Marshaler messages and writes them unchanged.
func (e *Error) MarshalJSON() ([]byte, error) {
	type body struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details,omitempty"`
		SessionID string         `json:"session_id,omitempty"`
		Timestamp string         `json:"timestamp"`
	}
	return json.Marshal(map[string]body{
		"error": {
			Code:      string(e.Kind),
			Message:   e.Message,
			Details:   e.Details,
			SessionID: e.SessionID,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		},
	})
}

// WithSession attaches the session id to the wire body.
func (e *Error) WithSession(sessionID string) *Error {
	e.SessionID = sessionID
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func newError(kind Kind, message string, details map[string]any) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

func Validation(message string, field string) *Error {
	var details map[string]any
	if field != "" {
		details = map[string]any{"field": field}
	}
	return newError(KindValidation, message, details)
}

func Processing(message string, stage string) *Error {
	return newError(KindProcessing, message, map[string]any{"stage": stage})
}

func Security(message string, action string) *Error {
	return newError(KindSecurity, message, map[string]any{"action": action})
}

func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return newError(KindAuthentication, message, nil)
}

func Authorization(message string) *Error {
	if message == "" {
		message = "Insufficient permissions"
	}
	return newError(KindAuthorization, message, nil)
}

func NotFound(resource string, id string) *Error {
	message := resource + " not found"
	if id != "" {
		message += ": " + id
	}
	return newError(KindNotFound, message, map[string]any{"resource": resource, "id": id})
}

func Conflict(message string, resource string) *Error {
	return newError(KindConflict, message, map[string]any{"resource": resource})
}

func System(message string, component string) *Error {
	return newError(KindSystem, message, map[string]any{"component": component})
}

func RateLimit(message string) *Error {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return newError(KindRateLimit, message, nil)
}

// IsKind reports whether err is (or wraps) a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// From extracts the service error out of err, or wraps err as a SystemError
// so no raw error ever reaches the wire.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return System("internal error", "unknown").WithCause(err)
}
