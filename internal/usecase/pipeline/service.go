package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/external/docpipe"
	"github.com/meetsync-team/meetsync/internal/usecase/resolution"
)

// Service drives a persisted transcript record through identity resolution,
// project voting, and the downstream processor, folding the outcome back
// into the record's status.
type Service struct {
	transcriptRepo repositories.TranscriptEventRepository
	projectRepo    repositories.ProjectRepository
	resolver       *resolution.IdentityResolver
	voter          *resolution.ProjectVoter
	processor      docpipe.Processor
	logger         *zap.Logger
}

// NewService creates a new pipeline service
func NewService(
	transcriptRepo repositories.TranscriptEventRepository,
	projectRepo repositories.ProjectRepository,
	resolver *resolution.IdentityResolver,
	voter *resolution.ProjectVoter,
	processor docpipe.Processor,
	logger *zap.Logger,
) *Service {
	return &Service{
		transcriptRepo: transcriptRepo,
		projectRepo:    projectRepo,
		resolver:       resolver,
		voter:          voter,
		processor:      processor,
		logger:         logger,
	}
}

// ProcessPending resolves speakers, votes on the project, and invokes the
// processor when a single project wins. Non-winning outcomes park the record
// in quarantine or ambiguous for the scheduler.
func (s *Service) ProcessPending(ctx context.Context, transcriptID uuid.UUID, force bool) error {
	event, err := s.transcriptRepo.GetByID(ctx, transcriptID)
	if err != nil {
		return err
	}
	if event == nil {
		return entities.ErrTranscriptNotFound
	}

	projectIDs, err := s.projectRepo.ListProjectIDsByUser(ctx, event.UserID)
	if err != nil {
		return err
	}
	scope := resolution.Scope{UserID: event.UserID, ProjectIDs: projectIDs}

	summary, err := s.resolver.ResolveAll(ctx, event.Speakers, scope)
	if err != nil {
		// Total resolution outage: leave the record where it is, the
		// scheduler retries it.
		return err
	}
	if summary.HasUnidentified {
		reason := entities.ReasonUnidentifiedSpeakers
		return s.transcriptRepo.UpdateStatus(ctx, event.ID, entities.TranscriptStatusQuarantine, &reason)
	}

	vote := s.voter.InferProject(summary.Candidates)
	switch vote.Status {
	case entities.VoteStatusMatched:
		if err := s.transcriptRepo.UpdateResolution(ctx, event.ID, entities.TranscriptStatusMatched, nil, vote.ProjectID); err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Info("✅ Transcript matched to project",
				zap.String("transcript_id", event.ID.String()),
				zap.String("project_id", vote.ProjectID.String()),
				zap.Float64("confidence", vote.Confidence))
		}
		return s.invokeProcessor(ctx, event.ID, force)

	case entities.VoteStatusAmbiguous:
		reason := entities.ReasonAmbiguousProject
		return s.transcriptRepo.UpdateResolution(ctx, event.ID, entities.TranscriptStatusAmbiguous, &reason, nil)

	case entities.VoteStatusLowConfidence:
		reason := entities.ReasonLowConfidenceVote
		return s.transcriptRepo.UpdateResolution(ctx, event.ID, entities.TranscriptStatusAmbiguous, &reason, nil)

	default: // no project signal at all
		reason := entities.ReasonNoProjectMatch
		return s.transcriptRepo.UpdateResolution(ctx, event.ID, entities.TranscriptStatusQuarantine, &reason, nil)
	}
}

// ProcessAssigned pushes a record with a known project through the processor.
// Used by the scheduler for ambiguous records whose project was set by hand
// and for matched records whose pipeline invocation failed.
func (s *Service) ProcessAssigned(ctx context.Context, transcriptID uuid.UUID) error {
	event, err := s.transcriptRepo.GetByID(ctx, transcriptID)
	if err != nil {
		return err
	}
	if event == nil {
		return entities.ErrTranscriptNotFound
	}
	if event.MatchedProjectID == nil {
		return entities.ErrProjectNotFound
	}
	if err := s.transcriptRepo.UpdateResolution(ctx, event.ID, entities.TranscriptStatusMatched, nil, event.MatchedProjectID); err != nil {
		return err
	}
	return s.invokeProcessor(ctx, event.ID, true)
}

// invokeProcessor calls the downstream pipeline. A failure leaves the record
// matched with a reason; the record is already durable and observable.
func (s *Service) invokeProcessor(ctx context.Context, transcriptID uuid.UUID, force bool) error {
	result, err := s.processor.ProcessTranscript(ctx, transcriptID, docpipe.ProcessOptions{ForceReprocess: force})
	if err != nil || result == nil || !result.Success {
		if s.logger != nil {
			fields := []zap.Field{zap.String("transcript_id", transcriptID.String())}
			if err != nil {
				fields = append(fields, zap.Error(err))
			} else if result != nil && result.Error != nil {
				fields = append(fields, zap.String("pipeline_error", *result.Error))
			}
			s.logger.Error("❌ Downstream processing failed", fields...)
		}
		reason := entities.ReasonPipelineFailed
		if updateErr := s.transcriptRepo.UpdateStatus(ctx, transcriptID, entities.TranscriptStatusMatched, &reason); updateErr != nil {
			return updateErr
		}
		if err != nil {
			return err
		}
		return entities.ErrPipelineFailed
	}

	if s.logger != nil {
		s.logger.Info("🏁 Transcript processed",
			zap.String("transcript_id", transcriptID.String()))
	}
	return s.transcriptRepo.UpdateStatus(ctx, transcriptID, entities.TranscriptStatusProcessed, nil)
}
