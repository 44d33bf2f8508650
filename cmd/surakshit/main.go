package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/core/approval"
	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/finding"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/core/integrations/githubint"
	"github.com/surakshit-dev/surakshit/internal/core/remediation"
	"github.com/surakshit-dev/surakshit/internal/core/session"
	"github.com/surakshit-dev/surakshit/internal/database"
	"github.com/surakshit-dev/surakshit/internal/database/repositories"
	"github.com/surakshit-dev/surakshit/internal/echohttp"
)

func main() {
	core.InitLogger()
	if err := core.LoadEnv(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not load config", "err", err)
		os.Exit(1)
	}
	core.ConfigureLogger(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.NewConnection(
		cfg.Database.Host,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Name,
		strconv.Itoa(cfg.Database.Port),
		cfg.Database.SSL,
	)
	if err != nil {
		slog.Error("could not connect to database", "err", err)
		os.Exit(1)
	}

	sessionRepository := repositories.NewSessionRepository(db)
	responseRepository := repositories.NewResponseRepository(db)
	tokenRepository := repositories.NewApprovalTokenRepository(db)

	clock := core.SystemClock()
	normalizer := finding.NewNormalizer(identifier.Generate, finding.DefaultContextLines)
	synthesizer := remediation.NewSynthesizer(identifier.GenerateWithPrefix)

	sessionService := session.NewService(sessionRepository, responseRepository, normalizer, synthesizer, clock, cfg.Session)
	sessionController := session.NewController(sessionService)

	tokenService := approval.NewTokenService(tokenRepository, clock, cfg.Security)
	applier := githubint.NewPullRequestApplier(cfg.GitHub)
	executor := approval.NewExecutor(sessionService, tokenService, applier)
	approvalController := approval.NewController(sessionService, tokenService, executor)

	server := echohttp.Server(cfg)

	server.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiV1 := server.Group("/api/v1")
	apiV1.POST("/findings", sessionController.SubmitFinding)
	apiV1.GET("/findings/:findingID/sessions", sessionController.ListSessionsByFinding)
	apiV1.GET("/sessions/:sessionID", sessionController.GetSession)
	apiV1.GET("/sessions/:sessionID/response", sessionController.GetResponse)
	apiV1.POST("/sessions/:sessionID/approvals", approvalController.IssueToken)
	apiV1.POST("/execute", approvalController.Execute)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting surakshit", "address", address, "environment", cfg.Server.Environment)
	if err := server.Start(address); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
