package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	webhookdto "github.com/meetsync-team/meetsync/internal/adapter/dto/webhook"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/internal/usecase/scheduler"
	"github.com/meetsync-team/meetsync/internal/usecase/webhookcfg"
	"github.com/meetsync-team/meetsync/pkg/config"
)

// Admin exposes the JWT-guarded management surface: webhook configuration,
// speaker mappings, and the transcript status board.
type Admin struct {
	webhookService *webhookcfg.Service
	mappingRepo    repositories.SpeakerMappingRepository
	transcriptRepo repositories.TranscriptEventRepository
	retries        *scheduler.Scheduler
	resolverCfg    *config.ResolverConfig
	schedulerCfg   *config.SchedulerConfig
	logger         *zap.Logger
}

// NewAdmin creates a new admin handler
func NewAdmin(
	webhookService *webhookcfg.Service,
	mappingRepo repositories.SpeakerMappingRepository,
	transcriptRepo repositories.TranscriptEventRepository,
	retries *scheduler.Scheduler,
	resolverCfg *config.ResolverConfig,
	schedulerCfg *config.SchedulerConfig,
	logger *zap.Logger,
) *Admin {
	return &Admin{
		webhookService: webhookService,
		mappingRepo:    mappingRepo,
		transcriptRepo: transcriptRepo,
		retries:        retries,
		resolverCfg:    resolverCfg,
		schedulerCfg:   schedulerCfg,
		logger:         logger,
	}
}

func authUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(middleware.UserIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperrors.ErrUnauthenticated()
	}
	return id, nil
}

func configResponse(cfg *entities.WebhookConfig, revealSecret bool) webhookdto.ConfigResponse {
	resp := webhookdto.ConfigResponse{
		ID:             cfg.ID,
		Token:          cfg.Token,
		Active:         cfg.Active,
		EnabledEvents:  cfg.EnabledEvents,
		LastEventAt:    cfg.LastEventAt,
		EventsReceived: cfg.EventsReceived,
	}
	if revealSecret {
		resp.Secret = cfg.Secret
	}
	return resp
}

// GetWebhookConfig handles GET /v1/integrations/meeting-webhook
func (h *Admin) GetWebhookConfig(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	cfg, err := h.webhookService.GetOrCreate(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, configResponse(cfg, false))
}

// RegenerateToken handles POST /v1/integrations/meeting-webhook/regenerate-token
func (h *Admin) RegenerateToken(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	cfg, err := h.webhookService.RegenerateToken(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, configResponse(cfg, false))
}

// RegenerateSecret handles POST /v1/integrations/meeting-webhook/regenerate-secret
func (h *Admin) RegenerateSecret(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	cfg, err := h.webhookService.RegenerateSecret(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	// The secret is only shown once, right after regeneration.
	return HandleSuccess(h.logger, c, http.StatusOK, configResponse(cfg, true))
}

// SetWebhookActive handles PATCH /v1/integrations/meeting-webhook/active
func (h *Admin) SetWebhookActive(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req webhookdto.SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	cfg, err := h.webhookService.SetActive(c.Request().Context(), userID, *req.Active)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, configResponse(cfg, false))
}

// UpdateEnabledEvents handles PUT /v1/integrations/meeting-webhook/events
func (h *Admin) UpdateEnabledEvents(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req webhookdto.UpdateEventsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	cfg, err := h.webhookService.UpdateEnabledEvents(c.Request().Context(), userID, req.EnabledEvents)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, configResponse(cfg, false))
}

// CreateSpeakerMapping handles POST /v1/speaker-mappings
func (h *Admin) CreateSpeakerMapping(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req webhookdto.CreateMappingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}

	confidence := h.resolverCfg.GlobalMappingConfidence
	if req.ProjectID != nil {
		confidence = h.resolverCfg.ProjectMappingConfidence
	}
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	mapping := entities.NewSpeakerMapping(userID, req.ProjectID, req.SpeakerLabel, req.ContactID, confidence)
	if err := h.mappingRepo.Create(c.Request().Context(), mapping); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("speaker mapping insert", err))
	}
	return HandleSuccess(h.logger, c, http.StatusCreated, mapping)
}

// ListSpeakerMappings handles GET /v1/speaker-mappings
func (h *Admin) ListSpeakerMappings(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	mappings, err := h.mappingRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("speaker mapping list", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, mappings)
}

// DeactivateSpeakerMapping handles DELETE /v1/speaker-mappings/:id
func (h *Admin) DeactivateSpeakerMapping(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid mapping id"))
	}
	if err := h.mappingRepo.Deactivate(c.Request().Context(), id, userID); err != nil {
		if err == entities.ErrMappingNotFound {
			return HandleError(h.logger, c, apperrors.ErrNotFound("speaker mapping"))
		}
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("speaker mapping deactivate", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, nil)
}

// ListTranscripts handles GET /v1/transcripts?status=
func (h *Admin) ListTranscripts(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	status := entities.TranscriptStatus(c.QueryParam("status"))
	if status == "" {
		status = entities.TranscriptStatusQuarantine
	}
	events, err := h.transcriptRepo.ListByStatus(c.Request().Context(), userID, status, 100)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("transcript list", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, events)
}

// AssignProject handles POST /v1/transcripts/:id/assign-project. It gives an
// ambiguous record the project a human chose; the scheduler pushes it through
// the pipeline on its next pass.
func (h *Admin) AssignProject(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid transcript id"))
	}
	var req webhookdto.AssignProjectRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}

	event, err := h.transcriptRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("transcript lookup", err))
	}
	// A record owned by another user is reported as missing rather than
	// forbidden so the endpoint does not confirm the id exists.
	if event == nil || event.UserID != userID {
		return HandleError(h.logger, c, apperrors.ErrTranscriptNotFound(id.String()))
	}
	if event.Status != entities.TranscriptStatusAmbiguous {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("transcript is not awaiting project assignment"))
	}

	if err := h.transcriptRepo.AssignProject(c.Request().Context(), id, req.ProjectID, entities.ReasonManualAssignment); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("transcript project assignment", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, nil)
}

// RetryTranscript handles POST /v1/transcripts/:id/retry
func (h *Admin) RetryTranscript(c echo.Context) error {
	userID, err := authUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid transcript id"))
	}

	event, err := h.transcriptRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("transcript lookup", err))
	}
	if event == nil || event.UserID != userID {
		return HandleError(h.logger, c, apperrors.ErrTranscriptNotFound(id.String()))
	}

	result, err := h.retries.ForceRetry(c.Request().Context(), id)
	if err != nil {
		switch err {
		case entities.ErrTranscriptNotFound:
			return HandleError(h.logger, c, apperrors.ErrTranscriptNotFound(id.String()))
		case entities.ErrNotRetryable:
			return HandleError(h.logger, c, apperrors.ErrInvalidArgument("transcript is not in a retryable state"))
		case entities.ErrRetryExhausted:
			return HandleError(h.logger, c, apperrors.ErrRetryExhausted(id.String(), h.schedulerCfg.MaxRetries))
		default:
			return HandleError(h.logger, c, err)
		}
	}
	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// TranscriptStats handles GET /v1/transcripts/stats
func (h *Admin) TranscriptStats(c echo.Context) error {
	if _, err := authUserID(c); err != nil {
		return HandleError(h.logger, c, err)
	}
	stats, err := h.retries.GetStats(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("transcript stats", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}
