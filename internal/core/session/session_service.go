package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/core/analysis"
	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/finding"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/core/remediation"
	"github.com/surakshit-dev/surakshit/internal/database/models"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/monitoring"
)

type sessionRepository interface {
	Create(tx core.DB, session *models.Session) error
	Read(id string) (models.Session, error)
	Save(tx core.DB, session *models.Session) error
	CountByStatus(status dtos.SessionStatus) (int64, error)
	ListByFindingID(findingID string) ([]models.Session, error)
}

type responseRepository interface {
	Save(tx core.DB, response *models.RemediationResponse) error
	ReadBySessionID(sessionID string) (models.RemediationResponse, error)
}

type Service struct {
	sessions    sessionRepository
	responses   responseRepository
	normalizer  *finding.Normalizer
	synthesizer *remediation.Synthesizer
	clock       core.Clock
	cfg         config.SessionConfig

	// one mutex per session id enforces the single-writer discipline
	locks sync.Map
	// serializes the concurrency gate so the count and the PROCESSING
	// transition are atomic
	gate sync.Mutex
}

func NewService(
	sessions sessionRepository,
	responses responseRepository,
	normalizer *finding.Normalizer,
	synthesizer *remediation.Synthesizer,
	clock core.Clock,
	cfg config.SessionConfig,
) *Service {
	return &Service{
		sessions:    sessions,
		responses:   responses,
		normalizer:  normalizer,
		synthesizer: synthesizer,
		clock:       clock,
		cfg:         cfg,
	}
}

func (s *Service) lockFor(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// admit moves a session into PROCESSING, bounded by the concurrency gate.
// The count and the transition run under one lock so two submissions can
// never both observe the same free slot.
func (s *Service) admit(sessionID string) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	inFlight, err := s.sessions.CountByStatus(dtos.SessionProcessing)
	if err != nil {
		return errs.System("could not count in-flight sessions", "database").WithCause(err).WithSession(sessionID)
	}
	if inFlight >= int64(s.cfg.MaxConcurrentSessions) {
		return errs.RateLimit(
			fmt.Sprintf("maximum of %d concurrent sessions reached", s.cfg.MaxConcurrentSessions),
		).WithSession(sessionID)
	}

	_, err = s.transition(sessionID, dtos.SessionProcessing)
	return err
}

// transition moves a session to the target status under its lock. Expiry
// is applied lazily first, so a stale CREATED/PROCESSING row past its
// deadline expires instead of transitioning.
func (s *Service) transition(sessionID string, to dtos.SessionStatus) (models.Session, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	return s.transitionLocked(sessionID, to)
}

func (s *Service) transitionLocked(sessionID string, to dtos.SessionStatus) (models.Session, error) {
	session, err := s.sessions.Read(sessionID)
	if err != nil {
		return models.Session{}, errs.NotFound("session", sessionID)
	}

	now := s.clock.Now()
	if session.Expired(now) {
		session.Status = dtos.SessionExpired
		session.UpdatedAt = now
		if err := s.sessions.Save(nil, &session); err != nil {
			return models.Session{}, errs.System("could not persist session expiry", "database").WithCause(err).WithSession(sessionID)
		}
		if to == dtos.SessionExpired {
			return session, nil
		}
	}

	if !CanTransition(session.Status, to) {
		return session, illegalTransition(sessionID, session.Status, to)
	}

	session.Status = to
	session.UpdatedAt = now
	if err := s.sessions.Save(nil, &session); err != nil {
		return models.Session{}, errs.System("could not persist session transition", "database").WithCause(err).WithSession(sessionID)
	}
	monitoring.SessionTransitions.WithLabelValues(string(to)).Inc()
	return session, nil
}

// ProcessFinding runs the whole pipeline for one raw finding: normalize,
// create the session, analyze, synthesize, persist the response. Phase
// outputs become visible in strict causal order; the response row is
// written before the session ever reads COMPLETED.
func (s *Service) ProcessFinding(ctx context.Context, raw dtos.RawFinding) (dtos.SurakshitResponse, error) {
	started := s.clock.Now()

	normalized, err := s.normalizer.Normalize(raw)
	if err != nil {
		return dtos.SurakshitResponse{}, err
	}
	sessionID := normalized.SessionID
	logger := slog.With("sessionID", sessionID, "findingID", raw.FindingID)

	metadata, err := json.Marshal(raw.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}
	now := s.clock.Now()
	session := models.Session{
		ID:        sessionID,
		FindingID: raw.FindingID,
		Repo:      raw.Repo,
		Branch:    raw.Branch,
		Status:    dtos.SessionCreated,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Duration(s.cfg.DefaultExpirationHours) * time.Hour),
		Metadata:  metadata,
	}
	if err := s.sessions.Create(nil, &session); err != nil {
		return dtos.SurakshitResponse{}, errs.System("could not persist session", "database").WithCause(err).WithSession(sessionID)
	}

	if err := s.admit(sessionID); err != nil {
		return dtos.SurakshitResponse{}, err
	}

	// the pipeline must not outlive the session deadline
	ctx, cancel := context.WithDeadline(ctx, session.ExpiresAt)
	defer cancel()

	response, err := s.runPipeline(ctx, normalized)
	if err != nil {
		logger.Error("pipeline failed", "err", err)
		if _, terr := s.transition(sessionID, dtos.SessionFailed); terr != nil {
			logger.Error("could not mark session failed", "err", terr)
		}
		monitoring.PipelineDuration.WithLabelValues("failed").Observe(s.clock.Now().Sub(started).Seconds())
		return dtos.SurakshitResponse{}, errs.From(err).WithSession(sessionID)
	}

	// discard late results instead of completing an expired session; the
	// response row is saved under the session lock right before the
	// COMPLETED write so readers never see one without the other
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.sessions.Read(sessionID)
	if err != nil {
		return dtos.SurakshitResponse{}, errs.NotFound("session", sessionID)
	}
	if current.Expired(s.clock.Now()) || current.Status != dtos.SessionProcessing {
		if _, terr := s.transitionLocked(sessionID, dtos.SessionExpired); terr != nil {
			logger.Warn("discarding late pipeline result", "status", current.Status)
		}
		return dtos.SurakshitResponse{}, errs.Conflict("session expired before the pipeline finished", "session").WithSession(sessionID)
	}

	record, err := models.NewRemediationResponse(response)
	if err != nil {
		return dtos.SurakshitResponse{}, errs.System("could not encode response", "pipeline").WithCause(err).WithSession(sessionID)
	}
	if err := s.responses.Save(nil, &record); err != nil {
		return dtos.SurakshitResponse{}, errs.System("could not persist response", "database").WithCause(err).WithSession(sessionID)
	}
	if _, err := s.transitionLocked(sessionID, dtos.SessionCompleted); err != nil {
		return dtos.SurakshitResponse{}, err
	}

	monitoring.PipelineDuration.WithLabelValues("completed").Observe(s.clock.Now().Sub(started).Seconds())
	logger.Info("session completed", "strategies", len(response.Strategies), "complianceMappings", len(response.Compliance))
	return response, nil
}

// runPipeline executes the CPU-bound stages, checking for cooperative
// cancellation between them.
func (s *Service) runPipeline(ctx context.Context, normalized dtos.NormalizedFinding) (dtos.SurakshitResponse, error) {
	if err := ctx.Err(); err != nil {
		return dtos.SurakshitResponse{}, errs.Processing("pipeline cancelled", "analysis").WithCause(err)
	}

	analysisResult, err := analysis.Analyze(normalized)
	if err != nil {
		return dtos.SurakshitResponse{}, err
	}

	if err := ctx.Err(); err != nil {
		return dtos.SurakshitResponse{}, errs.Processing("pipeline cancelled", "synthesis").WithCause(err)
	}

	strategies, err := s.synthesizer.Synthesize(normalized, analysisResult)
	if err != nil {
		return dtos.SurakshitResponse{}, err
	}

	recommended, err := remediation.Select(strategies, "")
	if err != nil {
		return dtos.SurakshitResponse{}, err
	}

	return dtos.SurakshitResponse{
		SessionID:  normalized.SessionID,
		FindingID:  normalized.FindingID,
		Strategies: strategies,
		Patch:      recommended.Patch,
		Rollback:   recommended.Rollback,
		Tests:      recommended.Tests,
		CIChanges:  recommended.CIChanges,
		Compliance: analysisResult.ComplianceMappings,
		Rationale:  recommended.Rationale,
		LogsULID:   identifier.Generate(),
	}, nil
}

// GetSession returns the current session state, applying expiry lazily.
func (s *Service) GetSession(id string) (dtos.SessionDTO, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessions.Read(id)
	if err != nil {
		return dtos.SessionDTO{}, errs.NotFound("session", id)
	}
	if session.Expired(s.clock.Now()) {
		if session, err = s.transitionLocked(id, dtos.SessionExpired); err != nil {
			return dtos.SessionDTO{}, err
		}
	}
	return toDTO(session), nil
}

// ListSessionsByFinding returns every session ever opened for a finding,
// resubmissions included.
func (s *Service) ListSessionsByFinding(findingID string) ([]dtos.SessionDTO, error) {
	sessions, err := s.sessions.ListByFindingID(findingID)
	if err != nil {
		return nil, errs.System("could not list sessions", "database").WithCause(err)
	}
	result := make([]dtos.SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, toDTO(session))
	}
	return result, nil
}

// GetResponse returns the stored pipeline output of a completed session.
func (s *Service) GetResponse(sessionID string) (dtos.SurakshitResponse, error) {
	if _, err := s.sessions.Read(sessionID); err != nil {
		return dtos.SurakshitResponse{}, errs.NotFound("session", sessionID)
	}
	record, err := s.responses.ReadBySessionID(sessionID)
	if err != nil {
		return dtos.SurakshitResponse{}, errs.NotFound("response", sessionID)
	}
	response, err := record.Decode()
	if err != nil {
		return dtos.SurakshitResponse{}, errs.System("could not decode stored response", "database").WithCause(err).WithSession(sessionID)
	}
	return response, nil
}

func toDTO(session models.Session) dtos.SessionDTO {
	metadata := map[string]any{}
	_ = json.Unmarshal(session.Metadata, &metadata)
	return dtos.SessionDTO{
		ID:        session.ID,
		FindingID: session.FindingID,
		Repo:      session.Repo,
		Branch:    session.Branch,
		Status:    session.Status,
		CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: session.UpdatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Metadata:  metadata,
	}
}
