package approval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/core/remediation"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/monitoring"
)

// applyTimeout bounds the external forge call.
const applyTimeout = 60 * time.Second

// ChangeApplier pushes an approved remediation to the forge. The executor
// never constructs commits itself.
type ChangeApplier interface {
	OpenPullRequest(ctx context.Context, repo string, branch string, strategy dtos.RemediationStrategy, response dtos.SurakshitResponse) (string, error)
}

type sessionReader interface {
	GetSession(id string) (dtos.SessionDTO, error)
	GetResponse(sessionID string) (dtos.SurakshitResponse, error)
}

// Executor is the only component allowed to cause side effects outside the
// service. Every check in Execute runs before the applier is touched, in a
// fixed order: command, session, token, strategy.
type Executor struct {
	sessions sessionReader
	tokens   *TokenService
	applier  ChangeApplier

	// serializes spends of the same token
	locks sync.Map
}

func NewExecutor(sessions sessionReader, tokens *TokenService, applier ChangeApplier) *Executor {
	return &Executor{sessions: sessions, tokens: tokens, applier: applier}
}

func (e *Executor) lockFor(tokenID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(tokenID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (e *Executor) Execute(ctx context.Context, req dtos.ExecuteRequest) (dtos.ExecuteResponse, error) {
	// the command string is validated before anything is looked up, so an
	// unrecognized command can never probe for session existence
	if req.Command != dtos.ExecuteCommandOpenPR {
		monitoring.ExecuteAttempts.WithLabelValues("rejected_command").Inc()
		return dtos.ExecuteResponse{}, errs.Validation("unrecognized command", "command")
	}

	session, err := e.sessions.GetSession(req.SessionID)
	if err != nil {
		monitoring.ExecuteAttempts.WithLabelValues("session_not_found").Inc()
		return dtos.ExecuteResponse{}, err
	}
	if session.Status != dtos.SessionCompleted {
		monitoring.ExecuteAttempts.WithLabelValues("session_not_completed").Inc()
		return dtos.ExecuteResponse{}, errs.Conflict("session has not completed processing", "session").WithSession(req.SessionID)
	}

	record, err := e.tokens.Verify(req.ApprovalToken, req.SessionID)
	if err != nil {
		monitoring.ExecuteAttempts.WithLabelValues("token_rejected").Inc()
		return dtos.ExecuteResponse{}, err
	}

	response, err := e.sessions.GetResponse(req.SessionID)
	if err != nil {
		return dtos.ExecuteResponse{}, err
	}
	strategy, err := remediation.Select(response.Strategies, req.StrategyID)
	if err != nil {
		monitoring.ExecuteAttempts.WithLabelValues("unknown_strategy").Inc()
		return dtos.ExecuteResponse{}, err
	}

	mu := e.lockFor(record.ID)
	mu.Lock()
	defer mu.Unlock()

	// re-read under the lock so a concurrent spend of the same token is
	// observed before we act
	record, err = e.tokens.Verify(req.ApprovalToken, req.SessionID)
	if err != nil {
		return dtos.ExecuteResponse{}, err
	}

	if record.Consumed {
		// the token was already spent; replay the recorded outcome instead
		// of applying the change a second time
		monitoring.ExecuteAttempts.WithLabelValues("replayed").Inc()
		if !record.Success {
			return dtos.ExecuteResponse{}, errs.System("change application previously failed: "+record.Message, "executor").WithSession(req.SessionID)
		}
		return dtos.ExecuteResponse{
			Success:   true,
			PRURL:     record.PRURL,
			Message:   record.Message,
			SessionID: req.SessionID,
			LogsULID:  identifier.Generate(),
		}, nil
	}

	// mark the token consumed before the side effect so a crash mid-apply
	// can never lead to a second apply
	if err := e.tokens.Consume(&record); err != nil {
		return dtos.ExecuteResponse{}, err
	}

	applyCtx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()
	prURL, err := e.applier.OpenPullRequest(applyCtx, session.Repo, session.Branch, strategy, response)
	if err != nil {
		slog.Error("could not open pull request", "sessionID", req.SessionID, "err", err)
		if rerr := e.tokens.RecordOutcome(&record, false, "", "pull request creation failed"); rerr != nil {
			slog.Error("could not record execution outcome", "err", rerr)
		}
		monitoring.ExecuteAttempts.WithLabelValues("apply_failed").Inc()
		return dtos.ExecuteResponse{}, errs.System("could not open pull request", "github").WithCause(err).WithSession(req.SessionID)
	}

	message := "pull request opened for strategy " + strategy.ID
	if err := e.tokens.RecordOutcome(&record, true, prURL, message); err != nil {
		return dtos.ExecuteResponse{}, err
	}

	monitoring.ExecuteAttempts.WithLabelValues("applied").Inc()
	monitoring.PullRequestsOpenedAmount.Inc()
	return dtos.ExecuteResponse{
		Success:   true,
		PRURL:     prURL,
		Message:   message,
		SessionID: req.SessionID,
		LogsULID:  identifier.Generate(),
	}, nil
}
