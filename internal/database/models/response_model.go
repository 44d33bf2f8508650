package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// RemediationResponse stores the full pipeline output for a session. It is
// written once when the session completes and immutable afterwards.
type RemediationResponse struct {
	SessionID string         `json:"sessionId" gorm:"primaryKey;column:session_id"`
	FindingID string         `json:"findingId"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (r RemediationResponse) TableName() string {
	return "remediation_responses"
}

func NewRemediationResponse(response dtos.SurakshitResponse) (RemediationResponse, error) {
	payload, err := json.Marshal(response)
	if err != nil {
		return RemediationResponse{}, err
	}
	return RemediationResponse{
		SessionID: response.SessionID,
		FindingID: response.FindingID,
		Payload:   payload,
	}, nil
}

func (r RemediationResponse) Decode() (dtos.SurakshitResponse, error) {
	var response dtos.SurakshitResponse
	err := json.Unmarshal(r.Payload, &response)
	return response, err
}
