package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	webhookdto "github.com/meetsync-team/meetsync/internal/adapter/dto/webhook"
	"github.com/meetsync-team/meetsync/internal/usecase/ingest"
)

// maxPayloadBytes caps the inbound body size
const maxPayloadBytes = 2 << 20

// Webhook receives inbound meeting events on the per-user token URL.
type Webhook struct {
	gateway *ingest.Service
	logger  *zap.Logger
}

// NewWebhook creates a new webhook handler
func NewWebhook(gateway *ingest.Service, logger *zap.Logger) *Webhook {
	return &Webhook{gateway: gateway, logger: logger}
}

// HandleEvent handles POST /v1/hooks/meeting/:token
func (h *Webhook) HandleEvent(c echo.Context) error {
	token := c.Param("token")
	authHeader := c.Request().Header.Get("Authorization")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayloadBytes))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}

	result, err := h.gateway.HandleEvent(c.Request().Context(), token, authHeader, body)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := webhookdto.EventResponse{
		Status:       string(result.Outcome),
		TranscriptID: result.TranscriptID,
	}
	status := http.StatusOK
	if result.Outcome == ingest.OutcomeQueued || result.Outcome == ingest.OutcomeQuarantined {
		status = http.StatusCreated
	}
	return HandleSuccess(h.logger, c, status, resp)
}
