package ingest

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/usecase/resolution"
)

// dedupTTL bounds how long the cache fast-path shadows the unique index.
const dedupTTL = 24 * time.Hour

// Outcome describes what the gateway did with an inbound event.
type Outcome string

const (
	OutcomeIgnored     Outcome = "ignored"     // Event kind not enabled for this webhook
	OutcomeDuplicate   Outcome = "duplicate"   // Record for this event already exists
	OutcomeQueued      Outcome = "queued"      // New record persisted as pending
	OutcomeQuarantined Outcome = "quarantined" // New record persisted as quarantine
)

// Result is the gateway's answer to the webhook caller.
type Result struct {
	Outcome      Outcome
	TranscriptID *uuid.UUID
}

// PipelineTrigger invokes downstream processing for a persisted record.
type PipelineTrigger interface {
	ProcessPending(ctx context.Context, transcriptID uuid.UUID, force bool) error
}

// Archiver stores raw accepted payloads for audit and replay.
type Archiver interface {
	ArchivePayload(ctx context.Context, objectName string, body []byte) error
}

// Service is the ingestion gateway: it authenticates the webhook, parses and
// deduplicates the event, classifies speakers, persists the record, and
// hands pending records to the pipeline without blocking the caller.
type Service struct {
	webhookRepo    repositories.WebhookConfigRepository
	transcriptRepo repositories.TranscriptEventRepository
	pipeline       PipelineTrigger
	dispatcher     *Dispatcher
	cache          cache.Store
	archive        Archiver
	logger         *zap.Logger
}

// NewService creates a new ingestion gateway service. archive may be nil when
// payload archiving is disabled.
func NewService(
	webhookRepo repositories.WebhookConfigRepository,
	transcriptRepo repositories.TranscriptEventRepository,
	pipeline PipelineTrigger,
	dispatcher *Dispatcher,
	cacheStore cache.Store,
	archive Archiver,
	logger *zap.Logger,
) *Service {
	return &Service{
		webhookRepo:    webhookRepo,
		transcriptRepo: transcriptRepo,
		pipeline:       pipeline,
		dispatcher:     dispatcher,
		cache:          cacheStore,
		archive:        archive,
		logger:         logger,
	}
}

// HandleEvent runs the gateway sequence for one inbound webhook call. Steps
// before persistence are synchronous; the downstream trigger and the payload
// archive are dispatched after the record is durable.
func (s *Service) HandleEvent(ctx context.Context, token, authHeader string, body []byte) (*Result, error) {
	config, err := s.webhookRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("webhook config lookup", err)
	}
	if config == nil || !config.Active {
		return nil, apperrors.ErrWebhookUnauthorized()
	}
	if config.Secret != nil && *config.Secret != "" {
		if subtle.ConstantTimeCompare([]byte(authHeader), []byte(*config.Secret)) != 1 {
			return nil, apperrors.ErrWebhookUnauthorized()
		}
	}

	kind, err := ExtractEventKind(body)
	if err != nil {
		return nil, apperrors.ErrMissingEventKind()
	}
	if !entities.IsKnownEventKind(kind) || !config.EventEnabled(kind) {
		if s.logger != nil {
			s.logger.Info("📭 Event kind not enabled, ignoring",
				zap.String("event_kind", string(kind)),
				zap.String("user_id", config.UserID.String()))
		}
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	parsed, err := ParseEvent(kind, body)
	if err != nil {
		return nil, apperrors.ErrInvalidPayload(err)
	}
	if parsed.ExternalMeetingID == "" {
		return nil, apperrors.ErrMissingMeetingID(string(kind))
	}

	if existing, found := s.cachedDuplicate(ctx, config.UserID, parsed.ExternalMeetingID, kind); found {
		return &Result{Outcome: OutcomeDuplicate, TranscriptID: existing}, nil
	}
	existing, err := s.transcriptRepo.FindByDedupKey(ctx, config.UserID, parsed.ExternalMeetingID, kind)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("transcript dedup lookup", err)
	}
	if existing != nil {
		s.rememberDedup(ctx, config.UserID, parsed.ExternalMeetingID, kind, existing.ID)
		return &Result{Outcome: OutcomeDuplicate, TranscriptID: &existing.ID}, nil
	}

	event := entities.NewTranscriptEvent(config.UserID, parsed.ExternalMeetingID, kind)
	event.Title = parsed.Title
	event.MeetingDate = parsed.MeetingDate
	event.DurationSeconds = parsed.DurationSeconds
	event.Speakers = parsed.Speakers
	event.TranscriptText = parsed.TranscriptText
	event.Notes = parsed.Notes
	event.ActionItems = parsed.ActionItems
	event.KeyPoints = parsed.KeyPoints
	event.RecordingURL = parsed.RecordingURL
	event.RawPayload = datatypes.JSON(body)

	outcome := OutcomeQueued
	if resolution.AnyGenericSpeaker(parsed.Speakers) {
		event.HasUnidentifiedSpeakers = true
		event.MarkQuarantined(entities.ReasonUnidentifiedSpeakers)
		outcome = OutcomeQuarantined
	}

	if err := s.transcriptRepo.Create(ctx, event); err != nil {
		// A concurrent insert may have won the unique index; surface it as
		// the duplicate it is.
		raced, lookupErr := s.transcriptRepo.FindByDedupKey(ctx, config.UserID, parsed.ExternalMeetingID, kind)
		if lookupErr == nil && raced != nil {
			s.rememberDedup(ctx, config.UserID, parsed.ExternalMeetingID, kind, raced.ID)
			return &Result{Outcome: OutcomeDuplicate, TranscriptID: &raced.ID}, nil
		}
		return nil, apperrors.ErrDBQueryFailed("transcript insert", err)
	}
	s.rememberDedup(ctx, config.UserID, parsed.ExternalMeetingID, kind, event.ID)

	if err := s.webhookRepo.RecordEvent(ctx, config.ID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to bump webhook counters",
			zap.String("webhook_id", config.ID.String()), zap.Error(err))
	}

	s.archivePayload(config.UserID, event.ID, body)

	if outcome == OutcomeQueued {
		transcriptID := event.ID
		submitted := s.dispatcher.Submit(func(taskCtx context.Context) {
			if err := s.pipeline.ProcessPending(taskCtx, transcriptID, false); err != nil && s.logger != nil {
				s.logger.Error("❌ Pipeline trigger failed",
					zap.String("transcript_id", transcriptID.String()), zap.Error(err))
			}
		})
		if !submitted && s.logger != nil {
			s.logger.Warn("⚠️ Pipeline trigger not dispatched, scheduler will pick up the record",
				zap.String("transcript_id", transcriptID.String()))
		}
	}

	if s.logger != nil {
		s.logger.Info("📥 Transcript event accepted",
			zap.String("transcript_id", event.ID.String()),
			zap.String("event_kind", string(kind)),
			zap.String("status", string(event.Status)))
	}
	return &Result{Outcome: outcome, TranscriptID: &event.ID}, nil
}

func dedupKey(userID uuid.UUID, externalMeetingID string, kind entities.EventKind) string {
	return fmt.Sprintf("dedup:%s:%s:%s", userID, externalMeetingID, kind)
}

// cachedDuplicate consults the cache fast path. The unique index stays
// authoritative; any cache failure is a miss.
func (s *Service) cachedDuplicate(ctx context.Context, userID uuid.UUID, externalMeetingID string, kind entities.EventKind) (*uuid.UUID, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, found, err := s.cache.Get(ctx, dedupKey(userID, externalMeetingID, kind))
	if err != nil || !found {
		return nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (s *Service) rememberDedup(ctx context.Context, userID uuid.UUID, externalMeetingID string, kind entities.EventKind, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dedupKey(userID, externalMeetingID, kind), id.String(), dedupTTL); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Dedup cache write failed", zap.Error(err))
	}
}

func (s *Service) archivePayload(userID, transcriptID uuid.UUID, body []byte) {
	if s.archive == nil {
		return
	}
	objectName := fmt.Sprintf("%s/%s.json", userID, transcriptID)
	payload := make([]byte, len(body))
	copy(payload, body)
	s.dispatcher.Submit(func(taskCtx context.Context) {
		if err := s.archive.ArchivePayload(taskCtx, objectName, payload); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Payload archive failed",
				zap.String("object", objectName), zap.Error(err))
		}
	})
}
