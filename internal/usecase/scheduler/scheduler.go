package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/usecase/resolution"
	"github.com/meetsync-team/meetsync/pkg/config"
)

const (
	statsCacheKey = "scheduler:stats"
	statsCacheTTL = 30 * time.Second
)

// PipelineDriver re-enters downstream processing for eligible records.
type PipelineDriver interface {
	ProcessPending(ctx context.Context, transcriptID uuid.UUID, force bool) error
	ProcessAssigned(ctx context.Context, transcriptID uuid.UUID) error
}

// CycleResult summarizes one scheduler pass.
type CycleResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Stats reports queue depth by status plus records stuck at the retry cap.
type Stats struct {
	ByStatus       map[entities.TranscriptStatus]int64 `json:"by_status"`
	RetryExhausted int64                               `json:"retry_exhausted"`
	GeneratedAt    time.Time                           `json:"generated_at"`
}

// Scheduler periodically re-drives quarantined and ambiguous records through
// resolution. The instance owns its run guard and timer; at most one cycle
// runs at a time and records within a cycle are processed sequentially.
type Scheduler struct {
	transcriptRepo repositories.TranscriptEventRepository
	mappingRepo    repositories.SpeakerMappingRepository
	projectRepo    repositories.ProjectRepository
	pipeline       PipelineDriver
	cache          cache.Store
	cfg            *config.SchedulerConfig
	logger         *zap.Logger

	cycleRunning atomic.Bool

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a new retry scheduler
func NewScheduler(
	transcriptRepo repositories.TranscriptEventRepository,
	mappingRepo repositories.SpeakerMappingRepository,
	projectRepo repositories.ProjectRepository,
	pipeline PipelineDriver,
	cacheStore cache.Store,
	cfg *config.SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		transcriptRepo: transcriptRepo,
		mappingRepo:    mappingRepo,
		projectRepo:    projectRepo,
		pipeline:       pipeline,
		cache:          cacheStore,
		cfg:            cfg,
		logger:         logger,
	}
}

// Start launches the recurring cycle loop
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stopChan = make(chan struct{})

	s.wg.Add(1)
	go s.loop()

	if s.logger != nil {
		s.logger.Info("⏰ Retry scheduler started",
			zap.Duration("interval", s.cfg.Interval),
			zap.Int("max_retries", s.cfg.MaxRetries),
			zap.Int("batch_size", s.cfg.BatchSize))
	}
}

// Stop halts the loop and waits for an in-flight cycle to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	if s.logger != nil {
		s.logger.Info("🛑 Retry scheduler stopped")
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			result, err := s.RunCycle(context.Background())
			if err != nil && s.logger != nil {
				s.logger.Error("❌ Scheduler cycle failed", zap.Error(err))
			} else if s.logger != nil && result.Processed > 0 {
				s.logger.Info("🔄 Scheduler cycle finished",
					zap.Int("processed", result.Processed),
					zap.Int("succeeded", result.Succeeded),
					zap.Int("failed", result.Failed),
					zap.Int("skipped", result.Skipped))
			}
		}
	}
}

// RunCycle selects retryable records and drives each through its retry.
// A cycle overlapping an in-flight one is a no-op, not an error.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult
	if !s.cycleRunning.CompareAndSwap(false, true) {
		return result, nil
	}
	defer s.cycleRunning.Store(false)

	cutoff := time.Now().Add(-s.cfg.Interval)
	statuses := []entities.TranscriptStatus{
		entities.TranscriptStatusQuarantine,
		entities.TranscriptStatusAmbiguous,
	}
	events, err := s.transcriptRepo.ListRetryable(ctx, statuses, s.cfg.MaxRetries, cutoff, s.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	// Sweep records that stalled mid-flight: pending rows whose pipeline
	// trigger was dropped at ingest, and matched rows whose pipeline
	// invocation failed. The retryable batch has priority for capacity.
	if remaining := s.cfg.BatchSize - len(events); remaining > 0 {
		stalled, err := s.transcriptRepo.ListStalled(ctx, s.cfg.MaxRetries, cutoff, remaining)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Stalled-record sweep failed", zap.Error(err))
			}
		} else {
			events = append(events, stalled...)
		}
	}

	for i := range events {
		if i > 0 && s.cfg.RecordDelay > 0 {
			// bound load on shared storage between records
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.cfg.RecordDelay):
			}
		}
		result.Processed++
		switch s.retryRecord(ctx, &events[i]) {
		case retrySucceeded:
			result.Succeeded++
		case retryFailed:
			result.Failed++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

type retryOutcome int

const (
	retrySkipped retryOutcome = iota
	retrySucceeded
	retryFailed
)

// retryRecord stamps the attempt first, then evaluates eligibility, then
// re-invokes the pipeline. Stamping first means a crash mid-cycle cannot
// cause an immediate re-pick of the same record.
func (s *Scheduler) retryRecord(ctx context.Context, event *entities.TranscriptEvent) retryOutcome {
	if err := s.transcriptRepo.StampRetry(ctx, event.ID); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to stamp retry",
				zap.String("transcript_id", event.ID.String()), zap.Error(err))
		}
		return retryFailed
	}

	eligible, err := s.eligible(ctx, event)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Eligibility check failed, skipping",
				zap.String("transcript_id", event.ID.String()), zap.Error(err))
		}
		return retrySkipped
	}
	if !eligible {
		if s.logger != nil {
			s.logger.Debug("⏭️ Record not yet eligible",
				zap.String("transcript_id", event.ID.String()),
				zap.String("status", string(event.Status)))
		}
		return retrySkipped
	}

	switch {
	case event.Status == entities.TranscriptStatusMatched,
		event.Status == entities.TranscriptStatusAmbiguous && event.MatchedProjectID != nil:
		err = s.pipeline.ProcessAssigned(ctx, event.ID)
	case event.Status == entities.TranscriptStatusPending:
		// A stalled pending record never went through resolution; run it
		// exactly as the dropped ingest dispatch would have.
		err = s.pipeline.ProcessPending(ctx, event.ID, false)
	default:
		err = s.pipeline.ProcessPending(ctx, event.ID, true)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Retry processing failed",
				zap.String("transcript_id", event.ID.String()), zap.Error(err))
		}
		return retryFailed
	}
	return retrySucceeded
}

// eligible decides whether a record is worth re-processing this cycle.
// Quarantined records need every formerly-generic speaker label to have an
// explicit mapping now; partial coverage is not enough. Ambiguous records
// need a manually assigned project. Stalled pending records always retry;
// stalled matched records retry once a project is on the record.
func (s *Scheduler) eligible(ctx context.Context, event *entities.TranscriptEvent) (bool, error) {
	switch event.Status {
	case entities.TranscriptStatusAmbiguous:
		return event.MatchedProjectID != nil, nil

	case entities.TranscriptStatusPending:
		return true, nil

	case entities.TranscriptStatusMatched:
		// Swept only when the project is already resolved; the pipeline
		// invocation is the part that failed.
		return event.MatchedProjectID != nil, nil

	case entities.TranscriptStatusQuarantine:
		generic := resolution.GenericSpeakers(event.Speakers)
		if len(generic) == 0 {
			// Quarantined for a missing project signal, not for speakers;
			// a full re-resolution may find new mappings or contacts.
			return true, nil
		}
		projectIDs, err := s.projectRepo.ListProjectIDsByUser(ctx, event.UserID)
		if err != nil {
			return false, err
		}
		for _, label := range generic {
			covered, err := s.mappingRepo.HasMappingForLabel(ctx, event.UserID, label, projectIDs)
			if err != nil {
				return false, err
			}
			if !covered {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, nil
	}
}

// ForceRetry retries one record immediately, bypassing the interval gate but
// keeping the retryable-state and retry-cap checks.
func (s *Scheduler) ForceRetry(ctx context.Context, transcriptID uuid.UUID) (CycleResult, error) {
	var result CycleResult
	event, err := s.transcriptRepo.GetByID(ctx, transcriptID)
	if err != nil {
		return result, err
	}
	if event == nil {
		return result, entities.ErrTranscriptNotFound
	}
	switch event.Status {
	case entities.TranscriptStatusQuarantine,
		entities.TranscriptStatusAmbiguous,
		entities.TranscriptStatusPending,
		entities.TranscriptStatusMatched:
	default:
		return result, entities.ErrNotRetryable
	}
	if event.RetryCount >= s.cfg.MaxRetries {
		return result, entities.ErrRetryExhausted
	}

	result.Processed = 1
	switch s.retryRecord(ctx, event) {
	case retrySucceeded:
		result.Succeeded = 1
	case retryFailed:
		result.Failed = 1
	default:
		result.Skipped = 1
	}
	return result, nil
}

// GetStats reports queue depth by status. Snapshots are cached briefly so an
// admin dashboard polling this does not hammer the database.
func (s *Scheduler) GetStats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, statsCacheKey); err == nil && found {
			var cached Stats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	counts, err := s.transcriptRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	exhausted, err := s.transcriptRepo.CountRetryExhausted(ctx, s.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	// Records stuck at the cap stay in their last status; the stats view is
	// where they become visible as expired retries.
	counts[entities.TranscriptStatusExpiredRetry] = exhausted

	stats := &Stats{
		ByStatus:       counts,
		RetryExhausted: exhausted,
		GeneratedAt:    time.Now(),
	}
	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(raw), statsCacheTTL); err != nil && s.logger != nil {
				s.logger.Warn("⚠️ Stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}
