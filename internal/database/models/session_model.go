package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// Session is the unit of work tracked from finding submission through the
// gated execution. The state machine is the only writer of Status.
type Session struct {
	ID        string             `json:"id" gorm:"primaryKey"`
	FindingID string             `json:"findingId"`
	Repo      string             `json:"repo"`
	Branch    string             `json:"branch"`
	Status    dtos.SessionStatus `json:"status" gorm:"type:text"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Metadata  datatypes.JSON     `json:"metadata"`
}

func (s Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session passed its deadline at the given
// time. Only non-terminal sessions can expire.
func (s Session) Expired(now time.Time) bool {
	return !s.Status.Terminal() && now.After(s.ExpiresAt)
}
