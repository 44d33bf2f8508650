// Package session owns the remediation session lifecycle. It is the single
// authority over session status: all transitions run serialized per session
// id and never move backward.
package session

import (
	"fmt"

	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// allowedTransitions is the full transition table. EXPIRED, FAILED and
// COMPLETED are terminal: they appear only as targets.
var allowedTransitions = map[dtos.SessionStatus][]dtos.SessionStatus{
	dtos.SessionCreated:    {dtos.SessionProcessing, dtos.SessionExpired},
	dtos.SessionProcessing: {dtos.SessionCompleted, dtos.SessionFailed, dtos.SessionExpired},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to dtos.SessionStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func illegalTransition(sessionID string, from, to dtos.SessionStatus) *errs.Error {
	return errs.Conflict(
		fmt.Sprintf("illegal session transition %s -> %s", from, to),
		"session",
	).WithSession(sessionID)
}
