// Package approval implements the human gate in front of the executor:
// issuing scoped approval tokens for completed sessions and spending them
// exactly once to apply a remediation.
package approval

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/database/models"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/monitoring"
)

// PermissionOpenPR is the only permission the executor currently honors.
const PermissionOpenPR = "open_pr"

type tokenRepository interface {
	Create(tx core.DB, token *models.ApprovalToken) error
	Save(tx core.DB, token *models.ApprovalToken) error
	ReadByTokenHash(hash string) (models.ApprovalToken, error)
}

type TokenService struct {
	tokens tokenRepository
	clock  core.Clock
	cfg    config.SecurityConfig
}

func NewTokenService(tokens tokenRepository, clock core.Clock, cfg config.SecurityConfig) *TokenService {
	return &TokenService{tokens: tokens, clock: clock, cfg: cfg}
}

// Issue mints a signed approval token bound to one session. The raw JWT is
// returned to the caller once and never stored; the database keeps its hash.
func (t *TokenService) Issue(sessionID string, req dtos.IssueTokenRequest) (dtos.IssueTokenResponse, error) {
	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = []string{PermissionOpenPR}
	}

	now := t.clock.Now()
	expiresAt := now.Add(t.cfg.JWTExpiresIn)
	tokenID := identifier.GenerateWithPrefix("apr")

	claims := jwt.RegisteredClaims{
		ID:        tokenID,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.JWTSecret))
	if err != nil {
		return dtos.IssueTokenResponse{}, errs.System("could not sign approval token", "approval").WithCause(err).WithSession(sessionID)
	}

	encodedPermissions, err := json.Marshal(permissions)
	if err != nil {
		return dtos.IssueTokenResponse{}, errs.System("could not encode permissions", "approval").WithCause(err).WithSession(sessionID)
	}

	record := models.ApprovalToken{
		ID:          tokenID,
		SessionID:   sessionID,
		ExpiresAt:   expiresAt,
		Permissions: encodedPermissions,
		IssuedBy:    req.IssuedBy,
		CreatedAt:   now,
	}
	record.TokenHash = record.HashToken(raw)
	if err := t.tokens.Create(nil, &record); err != nil {
		return dtos.IssueTokenResponse{}, errs.System("could not persist approval token", "database").WithCause(err).WithSession(sessionID)
	}

	monitoring.ApprovalTokensIssuedAmount.Inc()
	return dtos.IssueTokenResponse{
		Token:       raw,
		SessionID:   sessionID,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		Permissions: permissions,
	}, nil
}

// Verify checks a raw token cryptographically and against its stored record.
// Signature problems are authentication failures; a valid token presented
// for a different session is an authorization failure.
func (t *TokenService) Verify(raw string, sessionID string) (models.ApprovalToken, error) {
	var claims jwt.RegisteredClaims
	// claim validation is disabled so expiry is checked exactly once, below,
	// against the injected clock; the default parser would use time.Now
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(t.cfg.JWTSecret), nil
	})
	if err != nil {
		return models.ApprovalToken{}, errs.Authentication("invalid approval token").WithCause(err).WithSession(sessionID)
	}

	record, err := t.tokens.ReadByTokenHash(models.ApprovalToken{}.HashToken(raw))
	if err != nil {
		return models.ApprovalToken{}, errs.Authentication("unknown approval token").WithSession(sessionID)
	}
	if t.clock.Now().After(record.ExpiresAt) {
		return models.ApprovalToken{}, errs.Authentication("approval token expired").WithSession(sessionID)
	}
	if record.SessionID != sessionID {
		return models.ApprovalToken{}, errs.Authorization("approval token is bound to a different session").WithSession(sessionID)
	}
	return record, nil
}

// Consume flips the single-use flag before any side effect runs.
func (t *TokenService) Consume(record *models.ApprovalToken) error {
	now := t.clock.Now()
	record.Consumed = true
	record.ConsumedAt = &now
	if err := t.tokens.Save(nil, record); err != nil {
		return errs.System("could not mark approval token consumed", "database").WithCause(err).WithSession(record.SessionID)
	}
	return nil
}

// RecordOutcome stores the apply result so retries of a spent token can
// replay it without re-executing.
func (t *TokenService) RecordOutcome(record *models.ApprovalToken, success bool, prURL string, message string) error {
	record.Success = success
	record.PRURL = prURL
	record.Message = message
	if err := t.tokens.Save(nil, record); err != nil {
		return errs.System("could not record execution outcome", "database").WithCause(err).WithSession(record.SessionID)
	}
	return nil
}
