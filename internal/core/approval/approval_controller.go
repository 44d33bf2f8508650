package approval

import (
	"net/http"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

type Controller struct {
	sessions sessionReader
	tokens   *TokenService
	executor *Executor
}

func NewController(sessions sessionReader, tokens *TokenService, executor *Executor) *Controller {
	return &Controller{sessions: sessions, tokens: tokens, executor: executor}
}

// IssueToken mints an approval token for a completed session. Sessions that
// are still running, failed or expired cannot be approved.
func (c *Controller) IssueToken(ctx core.Context) error {
	sessionID := core.SanitizeParam(ctx.Param("sessionID"))

	var req dtos.IssueTokenRequest
	if err := ctx.Bind(&req); err != nil {
		return errs.Validation("could not parse request body", "body")
	}
	if err := core.V.Struct(req); err != nil {
		return errs.Validation("invalid token request", "issued_by").WithCause(err)
	}

	session, err := c.sessions.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != dtos.SessionCompleted {
		return errs.Conflict("approval tokens can only be issued for completed sessions", "session").WithSession(sessionID)
	}

	response, err := c.tokens.Issue(sessionID, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response)
}

// Execute runs the approval-gated command.
func (c *Controller) Execute(ctx core.Context) error {
	var req dtos.ExecuteRequest
	if err := ctx.Bind(&req); err != nil {
		return errs.Validation("could not parse request body", "body")
	}
	if err := core.V.Struct(req); err != nil {
		return errs.Validation("invalid execute request", "body").WithCause(err)
	}

	response, err := c.executor.Execute(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response)
}
