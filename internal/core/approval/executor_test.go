package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/finding"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/core/remediation"
	"github.com/surakshit-dev/surakshit/internal/core/session"
	"github.com/surakshit-dev/surakshit/internal/database/models"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/internal/testutils"
)

type fakeApplier struct {
	calls int
	fail  bool
}

func (f *fakeApplier) OpenPullRequest(_ context.Context, _ string, _ string, _ dtos.RemediationStrategy, _ dtos.SurakshitResponse) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("github unavailable")
	}
	return "https://github.com/acme/shop/pull/7", nil
}

type recordingSessions struct {
	getSessionCalls int
}

func (r *recordingSessions) GetSession(id string) (dtos.SessionDTO, error) {
	r.getSessionCalls++
	return dtos.SessionDTO{}, errs.NotFound("session", id)
}

func (r *recordingSessions) GetResponse(sessionID string) (dtos.SurakshitResponse, error) {
	return dtos.SurakshitResponse{}, errs.NotFound("response", sessionID)
}

type executorFixture struct {
	executor    *Executor
	tokens      *TokenService
	sessions    *session.Service
	sessionRepo *testutils.InMemorySessionRepository
	applier     *fakeApplier
	clock       *testutils.FixedClock
}

// runs the real pipeline so the executor sees a genuine completed session
func newExecutorFixture(t *testing.T) (executorFixture, dtos.SurakshitResponse) {
	t.Helper()
	clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	sessionRepo := testutils.NewInMemorySessionRepository()
	sessions := session.NewService(
		sessionRepo,
		testutils.NewInMemoryResponseRepository(),
		finding.NewNormalizer(identifier.Generate, finding.DefaultContextLines),
		remediation.NewSynthesizer(identifier.GenerateWithPrefix),
		clock,
		config.SessionConfig{DefaultExpirationHours: 24, MaxConcurrentSessions: 10},
	)
	response, err := sessions.ProcessFinding(context.Background(), dtos.RawFinding{
		FindingID: "finding-123",
		Repo:      "acme/shop",
		Branch:    "main",
		Evidence: dtos.Evidence{
			FilePath:          "src/config.js",
			CodeSnippet:       `const password = "hunter2";`,
			VulnerabilityType: "hardcoded-credentials",
			Severity:          dtos.SeverityHigh,
			Description:       "hardcoded password in source",
		},
	})
	require.NoError(t, err)

	tokens := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())
	applier := &fakeApplier{}
	return executorFixture{
		executor:    NewExecutor(sessions, tokens, applier),
		tokens:      tokens,
		sessions:    sessions,
		sessionRepo: sessionRepo,
		applier:     applier,
		clock:       clock,
	}, response
}

func (f executorFixture) issueToken(t *testing.T, sessionID string) string {
	t.Helper()
	issued, err := f.tokens.Issue(sessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
	require.NoError(t, err)
	return issued.Token
}

func TestExecute(t *testing.T) {
	t.Run("opens a pull request for an approved session", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		token := fixture.issueToken(t, response.SessionID)

		result, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "https://github.com/acme/shop/pull/7", result.PRURL)
		assert.Equal(t, 1, fixture.applier.calls)
	})

	// tokens are treated as single-use: the consumed flag plus the recorded
	// outcome make identical retries idempotent instead of re-applying
	t.Run("a spent token replays the outcome without a second apply", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		token := fixture.issueToken(t, response.SessionID)
		req := dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
		}

		first, err := fixture.executor.Execute(context.Background(), req)
		require.NoError(t, err)
		second, err := fixture.executor.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, first.PRURL, second.PRURL)
		assert.Equal(t, 1, fixture.applier.calls)
	})

	t.Run("rejects unrecognized commands before looking anything up", func(t *testing.T) {
		recorder := &recordingSessions{}
		tokens := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), testutils.NewFixedClock(time.Now()), securityConfig())
		executor := NewExecutor(recorder, tokens, &fakeApplier{})

		_, err := executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       "DELETE:ALL",
			SessionID:     testSessionID,
			ApprovalToken: "whatever",
		})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindValidation))
		assert.Equal(t, 0, recorder.getSessionCalls)
	})

	t.Run("rejects a token issued for another session", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		foreign := fixture.issueToken(t, "01BX5ZZKBKACTAV9WEVGEMMVRZ")

		_, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: foreign,
		})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthorization))
		assert.Equal(t, 0, fixture.applier.calls)
	})

	t.Run("rejects an unknown strategy id without consuming the token", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		token := fixture.issueToken(t, response.SessionID)

		_, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
			StrategyID:    "str_does_not_exist",
		})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindValidation))
		assert.Equal(t, 0, fixture.applier.calls)

		// the token survives the failed attempt
		result, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("executes a specific strategy when asked", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		token := fixture.issueToken(t, response.SessionID)

		var hardening string
		for _, strategy := range response.Strategies {
			if strategy.Type == dtos.StrategyLongTermHardening {
				hardening = strategy.ID
			}
		}
		require.NotEmpty(t, hardening)

		result, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
			StrategyID:    hardening,
		})
		require.NoError(t, err)
		assert.Contains(t, result.Message, hardening)
	})

	t.Run("an apply failure is recorded and replayed on retry", func(t *testing.T) {
		fixture, response := newExecutorFixture(t)
		fixture.applier.fail = true
		token := fixture.issueToken(t, response.SessionID)
		req := dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     response.SessionID,
			ApprovalToken: token,
		}

		_, err := fixture.executor.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindSystem))

		fixture.applier.fail = false
		_, err = fixture.executor.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindSystem))
		assert.Equal(t, 1, fixture.applier.calls)
	})

	t.Run("rejects sessions that have not completed", func(t *testing.T) {
		fixture, _ := newExecutorFixture(t)
		now := fixture.clock.Now()
		require.NoError(t, fixture.sessionRepo.Create(nil, &models.Session{
			ID:        "01BX5ZZKBKACTAV9WEVGEMMVRZ",
			Status:    dtos.SessionCreated,
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(24 * time.Hour),
		}))
		token := fixture.issueToken(t, "01BX5ZZKBKACTAV9WEVGEMMVRZ")

		_, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     "01BX5ZZKBKACTAV9WEVGEMMVRZ",
			ApprovalToken: token,
		})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindConflict))
		assert.Equal(t, 0, fixture.applier.calls)
	})

	t.Run("rejects unknown sessions", func(t *testing.T) {
		fixture, _ := newExecutorFixture(t)

		_, err := fixture.executor.Execute(context.Background(), dtos.ExecuteRequest{
			Command:       dtos.ExecuteCommandOpenPR,
			SessionID:     "01BX5ZZKBKACTAV9WEVGEMMVRZ",
			ApprovalToken: "irrelevant",
		})
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
		assert.Equal(t, 0, fixture.applier.calls)
	})
}
