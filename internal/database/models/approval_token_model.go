package models

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"gorm.io/datatypes"
)

// ApprovalToken is the stored side of an issued approval capability. The
// raw JWT never touches the database; only its hash does.
type ApprovalToken struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	TokenHash   string         `json:"-" gorm:"uniqueIndex"`
	SessionID   string         `json:"sessionId" gorm:"index"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	Permissions datatypes.JSON `json:"permissions"`
	IssuedBy    string         `json:"issuedBy"`
	CreatedAt   time.Time      `json:"createdAt"`

	// consumption marks the at-most-once apply; the recorded outcome makes
	// identical retries idempotent
	Consumed   bool       `json:"consumed"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	Success    bool       `json:"success"`
	PRURL      string     `json:"prUrl,omitempty"`
	Message    string     `json:"message,omitempty"`
}

func (a ApprovalToken) TableName() string {
	return "approval_tokens"
}

// HashToken derives the storage hash for a raw token string.
func (a ApprovalToken) HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}
