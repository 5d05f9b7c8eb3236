package api

import (
	"log/slog"
	"net/http"

	"salesreport/internal/logging"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type ServerOptions struct {
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64
}

// NewServer builds the Echo instance with middleware and routes registered.
func NewServer(h *Handler, logger *slog.Logger, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logging.WithComponent(logger, logging.ComponentHTTP)))
	if opts.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(opts.RateLimit))))
	}

	h.RegisterRoutes(e)
	return e
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String(logging.FieldMethod, v.Method),
				slog.String(logging.FieldPath, v.URI),
				slog.Int(logging.FieldStatus, v.Status),
				slog.Int64(logging.FieldDuration, v.Latency.Milliseconds()),
				slog.String(logging.FieldRequestID, v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String(logging.FieldError, v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "HTTP request completed", attrs...)
			return nil
		},
	})
}
