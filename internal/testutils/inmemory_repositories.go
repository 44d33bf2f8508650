// Package testutils provides in-memory repository implementations used by
// the service tests. They mirror the gorm repositories closely enough that
// services cannot tell the difference.
package testutils

import (
	"fmt"
	"sync"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/database/models"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

type InMemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session

	// FailNextSave lets a test simulate a storage outage.
	FailNextSave bool
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: map[string]models.Session{}}
}

func (r *InMemorySessionRepository) Create(_ core.DB, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *InMemorySessionRepository) Read(id string) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return models.Session{}, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (r *InMemorySessionRepository) Save(_ core.DB, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNextSave {
		r.FailNextSave = false
		return fmt.Errorf("save failed")
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *InMemorySessionRepository) CountByStatus(status dtos.SessionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, session := range r.sessions {
		if session.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *InMemorySessionRepository) ListByFindingID(findingID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []models.Session
	for _, session := range r.sessions {
		if session.FindingID == findingID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

type InMemoryResponseRepository struct {
	mu        sync.Mutex
	responses map[string]models.RemediationResponse
}

func NewInMemoryResponseRepository() *InMemoryResponseRepository {
	return &InMemoryResponseRepository{responses: map[string]models.RemediationResponse{}}
}

func (r *InMemoryResponseRepository) Save(_ core.DB, response *models.RemediationResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[response.SessionID] = *response
	return nil
}

func (r *InMemoryResponseRepository) ReadBySessionID(sessionID string) (models.RemediationResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	response, ok := r.responses[sessionID]
	if !ok {
		return models.RemediationResponse{}, fmt.Errorf("no response for session %s", sessionID)
	}
	return response, nil
}

type InMemoryApprovalTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]models.ApprovalToken
}

func NewInMemoryApprovalTokenRepository() *InMemoryApprovalTokenRepository {
	return &InMemoryApprovalTokenRepository{tokens: map[string]models.ApprovalToken{}}
}

func (r *InMemoryApprovalTokenRepository) Create(_ core.DB, token *models.ApprovalToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.ID]; ok {
		return fmt.Errorf("token %s already exists", token.ID)
	}
	r.tokens[token.ID] = *token
	return nil
}

func (r *InMemoryApprovalTokenRepository) Save(_ core.DB, token *models.ApprovalToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = *token
	return nil
}

func (r *InMemoryApprovalTokenRepository) ReadByTokenHash(hash string) (models.ApprovalToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == hash {
			return token, nil
		}
	}
	return models.ApprovalToken{}, fmt.Errorf("token not found")
}
