package session

import (
	"log/slog"
	"net/http"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/finding"
	"github.com/surakshit-dev/surakshit/internal/dtos"
	"github.com/surakshit-dev/surakshit/monitoring"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// SubmitFinding accepts a raw scanner finding and runs the full pipeline
// synchronously, returning the remediation response.
func (c *Controller) SubmitFinding(ctx core.Context) error {
	var raw dtos.RawFinding
	if err := ctx.Bind(&raw); err != nil {
		return errs.Validation("could not parse request body", "body")
	}
	if err := finding.Validate(raw); err != nil {
		return err
	}
	if warnings := finding.Check(raw).Warnings; len(warnings) > 0 {
		slog.Warn("finding accepted with warnings", "findingID", raw.FindingID, "warnings", warnings)
	}

	monitoring.FindingsReceivedAmount.Inc()
	response, err := c.service.ProcessFinding(ctx.Request().Context(), raw)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response)
}

func (c *Controller) GetSession(ctx core.Context) error {
	sessionID := core.SanitizeParam(ctx.Param("sessionID"))
	session, err := c.service.GetSession(sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, session)
}

func (c *Controller) ListSessionsByFinding(ctx core.Context) error {
	findingID := core.SanitizeParam(ctx.Param("findingID"))
	sessions, err := c.service.ListSessionsByFinding(findingID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (c *Controller) GetResponse(ctx core.Context) error {
	sessionID := core.SanitizeParam(ctx.Param("sessionID"))
	response, err := c.service.GetResponse(sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response)
}
