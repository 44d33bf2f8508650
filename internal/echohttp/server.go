package echohttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
)

func registerMiddlewares(e *echo.Echo, cfg config.Config) {
	e.Use(middleware.CORSWithConfig(
		middleware.CORSConfig{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowHeaders:     middleware.DefaultCORSConfig.AllowHeaders,
			AllowMethods:     middleware.DefaultCORSConfig.AllowMethods,
			AllowCredentials: true,
		},
	))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 10 * time.Second,
	}))
	e.Use(logger())

	e.Use(recovermiddleware())
	e.Use(rateLimiter(cfg.RateLimit))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// do the logging straight inside the error handler
		// this keeps controller methods clean
		slog.Error(err.Error())

		if c.Response().Committed {
			return
		}

		// service errors carry their own status and wire format
		if serviceErr, ok := err.(*errs.Error); ok {
			if c.Request().Method == http.MethodHead {
				c.NoContent(serviceErr.Status()) // nolint:errcheck
			} else {
				c.JSON(serviceErr.Status(), serviceErr) // nolint:errcheck
			}
			return
		}

		he, ok := err.(*echo.HTTPError)
		if ok {
			if he.Internal != nil {
				if herr, ok := he.Internal.(*echo.HTTPError); ok {
					he = herr
				}
			}
		} else {
			he = &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: http.StatusText(http.StatusInternalServerError),
			}
		}

		code := he.Code
		message := he.Message

		switch m := he.Message.(type) {
		case string:
			if e.Debug {
				message = echo.Map{"message": m, "error": err.Error()}
			} else {
				message = echo.Map{"message": m}
			}
		case json.Marshaler:
			// do nothing - this type knows how to format itself to JSON
		case error:
			message = echo.Map{"message": m.Error()}
		}

		// Send response
		if c.Request().Method == http.MethodHead { // Issue #608
			c.NoContent(he.Code) // nolint:errcheck
		} else {
			c.JSON(code, message) // nolint:errcheck
		}
	}
}

// rateLimiter enforces the configured request budget per client ip over the
// configured window.
func rateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	window := time.Duration(cfg.WindowMs) * time.Millisecond
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.MaxRequests) / window.Seconds()),
			Burst:     cfg.MaxRequests,
			ExpiresIn: window,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.RateLimit("could not identify caller")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errs.RateLimit("too many requests, try again later")
		},
	})
}

func Server(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.Logger.SetLevel(99)
	registerMiddlewares(e, cfg)
	return e
}
