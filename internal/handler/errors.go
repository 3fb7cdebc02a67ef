package handler

import (
	"errors"
	"net/http"

	"geo-tracker/internal/locationlog"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
// Kind carries the locationlog error kind when the failure has one, and
// UpstreamStatus the HTTP status reported by the remote store.
type ErrorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	Kind           string `json:"kind,omitempty"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

func statusForKind(kind locationlog.Kind) int {
	switch kind {
	case locationlog.KindInvalidInput:
		return http.StatusBadRequest
	case locationlog.KindConflict:
		return http.StatusConflict
	case locationlog.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Success: false, Error: "internal server error"}

	var logErr *locationlog.Error
	if errors.As(err, &logErr) {
		status = statusForKind(logErr.Kind)
		body.Error = logErr.Message
		body.Kind = string(logErr.Kind)
		body.UpstreamStatus = logErr.Status
	}

	event := zerolog.Ctx(c.Request.Context()).Error()
	if status < http.StatusInternalServerError {
		event = zerolog.Ctx(c.Request.Context()).Warn()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	c.JSON(status, body)
}
