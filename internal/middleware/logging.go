package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs every request with method, path, status, the
// authenticated subject (if any), and duration.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Milliseconds()
		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"auth_id", AuthID(c),
			"duration_ms", duration,
		}
		switch {
		case err != nil:
			slog.Error("request error", append(args, "error", err)...)
		case status >= fiber.StatusBadRequest:
			slog.Warn("request failed", args...)
		default:
			slog.Info("request ok", args...)
		}

		return err
	}
}
