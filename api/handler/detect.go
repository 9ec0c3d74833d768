package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/themescout/api/middleware"
	"github.com/use-agent/themescout/detector"
	"github.com/use-agent/themescout/models"
)

// ThemeDetector is the subset of *detector.Detector the handler needs.
type ThemeDetector interface {
	Detect(ctx context.Context, url string) detector.Result
}

// Detect returns a handler for GET /detect.
//
// Every completed attempt answers 200 with the outcome rendered as text,
// including fetch and decode failures. Only a missing ?url= is a 400.
func Detect(d ThemeDetector) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DetectRequest
		if err := c.ShouldBindQuery(&req); err != nil || req.URL == "" {
			slog.Warn("detect request rejected",
				"request_id", c.GetString(middleware.RequestIDKey),
				"code", models.ErrCodeInvalidInput,
				"query", c.Request.URL.RawQuery,
			)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.MissingURLMessage,
			})
			return
		}

		start := time.Now()
		result := d.Detect(c.Request.Context(), req.URL)

		attrs := []any{
			"request_id", c.GetString(middleware.RequestIDKey),
			"url", req.URL,
			"outcome", result.Outcome.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case result.Outcome == detector.ThemeFound:
			slog.Info("theme detected", append(attrs, "theme", result.ThemeName)...)
		case result.Err != nil:
			slog.Warn("theme detection failed", append(attrs, "error", result.Err)...)
		default:
			slog.Info("no theme detected", attrs...)
		}

		c.JSON(http.StatusOK, models.DetectResponse{Result: result.Message()})
	}
}
