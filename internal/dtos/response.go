package dtos

type SessionStatus string

const (
	SessionCreated    SessionStatus = "CREATED"
	SessionProcessing SessionStatus = "PROCESSING"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionFailed     SessionStatus = "FAILED"
	SessionExpired    SessionStatus = "EXPIRED"
)

// Terminal reports whether a session in this status can never move again.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionFailed, SessionExpired:
		return true
	}
	return false
}

// SurakshitResponse is the full pipeline output for one session. Patch,
// rollback and tests mirror the default strategy so callers that only apply
// the recommendation never have to walk the strategy list.
type SurakshitResponse struct {
	SessionID  string                `json:"session_id"`
	FindingID  string                `json:"finding_id"`
	Strategies []RemediationStrategy `json:"strategies"`
	Patch      UnifiedDiff           `json:"patch"`
	Rollback   UnifiedDiff           `json:"rollback"`
	Tests      []TestSuite           `json:"tests"`
	CIChanges  *CIChanges            `json:"ci_changes,omitempty"`
	Compliance []ComplianceMapping   `json:"compliance"`
	Rationale  string                `json:"rationale"`
	LogsULID   string                `json:"logs_ulid"`
}

type SessionDTO struct {
	ID        string         `json:"id"`
	FindingID string         `json:"finding_id"`
	Repo      string         `json:"repo"`
	Branch    string         `json:"branch"`
	Status    SessionStatus  `json:"status"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	ExpiresAt string         `json:"expires_at"`
	Metadata  map[string]any `json:"metadata"`
}

// ExecuteCommandOpenPR is the only recognized executor command. It is
// validated verbatim before anything else is even looked at.
const ExecuteCommandOpenPR = "EXECUTE:OPEN_PR"

type ExecuteRequest struct {
	Command       string `json:"command" validate:"required"`
	SessionID     string `json:"session_id" validate:"required"`
	ApprovalToken string `json:"approval_token" validate:"required"`
	StrategyID    string `json:"strategy_id,omitempty"`
}

type ExecuteResponse struct {
	Success   bool   `json:"success"`
	PRURL     string `json:"pr_url,omitempty"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	LogsULID  string `json:"logs_ulid"`
}

type IssueTokenRequest struct {
	Permissions []string `json:"permissions,omitempty"`
	IssuedBy    string   `json:"issued_by" validate:"required"`
}

type IssueTokenResponse struct {
	Token       string   `json:"token"`
	SessionID   string   `json:"session_id"`
	ExpiresAt   string   `json:"expires_at"`
	Permissions []string `json:"permissions"`
}
