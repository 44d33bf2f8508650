package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/internal/testutils"
)

const testSessionID = "01ARZ3NDEKTSV4RRFFQ69G5FAV"

func securityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:    "test-secret",
		JWTExpiresIn: 24 * time.Hour,
	}
}

func TestTokenService(t *testing.T) {
	t.Run("issued tokens verify for their session", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)
		assert.NotEmpty(t, issued.Token)
		assert.Equal(t, []string{PermissionOpenPR}, issued.Permissions)

		record, err := service.Verify(issued.Token, testSessionID)
		require.NoError(t, err)
		assert.Equal(t, testSessionID, record.SessionID)
		assert.Equal(t, "security-team", record.IssuedBy)
		assert.False(t, record.Consumed)
	})

	t.Run("the raw token is never stored", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)

		record, err := service.Verify(issued.Token, testSessionID)
		require.NoError(t, err)
		assert.NotEqual(t, issued.Token, record.TokenHash)
		assert.NotContains(t, record.TokenHash, issued.Token)
	})

	t.Run("tampered tokens are rejected", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)

		_, err = service.Verify(issued.Token+"x", testSessionID)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	})

	t.Run("tokens from a different signer are rejected", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		tokens := testutils.NewInMemoryApprovalTokenRepository()
		service := NewTokenService(tokens, clock, securityConfig())

		other := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, config.SecurityConfig{
			JWTSecret:    "other-secret",
			JWTExpiresIn: 24 * time.Hour,
		})
		foreign, err := other.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "intruder"})
		require.NoError(t, err)

		_, err = service.Verify(foreign.Token, testSessionID)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	})

	t.Run("expiry follows the injected clock, not the wall clock", func(t *testing.T) {
		// a token minted years before the real time.Now must verify as long
		// as the service's own clock is inside its lifetime
		clock := testutils.NewFixedClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)

		clock.Advance(23 * time.Hour)
		_, err = service.Verify(issued.Token, testSessionID)
		require.NoError(t, err)

		clock.Advance(2 * time.Hour)
		_, err = service.Verify(issued.Token, testSessionID)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)

		clock.Advance(25 * time.Hour)

		_, err = service.Verify(issued.Token, testSessionID)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	})

	t.Run("tokens are bound to one session", func(t *testing.T) {
		clock := testutils.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		service := NewTokenService(testutils.NewInMemoryApprovalTokenRepository(), clock, securityConfig())

		issued, err := service.Issue(testSessionID, dtos.IssueTokenRequest{IssuedBy: "security-team"})
		require.NoError(t, err)

		_, err = service.Verify(issued.Token, "01BX5ZZKBKACTAV9WEVGEMMVRZ")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindAuthorization))
	})
}
