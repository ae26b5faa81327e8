package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

type contextKey string

const loggerKey = contextKey("logger")

// Logger puts a request scoped logger carrying the request id on the request
// context and logs each request when it completes. It must run after the
// RequestID middleware.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		logger := slog.Default().With("request_id", reqID)
		c.SetRequest(req.WithContext(context.WithValue(req.Context(), loggerKey, logger)))

		start := time.Now()
		err := next(c)
		if err != nil {
			// let the error handler pick the status before it is logged
			c.Error(err)
		}

		level := slog.LevelInfo
		status := c.Response().Status
		if status >= 500 {
			level = slog.LevelError
		}
		attrs := []any{
			"event", "http_request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		if user := UserFrom(c); user != nil {
			attrs = append(attrs, "user", user.Key())
		}
		logger.Log(req.Context(), level, "request handled", attrs...)
		return nil
	}
}

// FromContext returns the request logger, or the default logger outside a
// request.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
