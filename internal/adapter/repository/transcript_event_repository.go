package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// TranscriptEventRepository handles transcript event data operations
type TranscriptEventRepository struct {
	db *gorm.DB
}

// NewTranscriptEventRepository creates a new transcript event repository
func NewTranscriptEventRepository(db *gorm.DB) *TranscriptEventRepository {
	return &TranscriptEventRepository{db: db}
}

// Create inserts a new transcript event
func (r *TranscriptEventRepository) Create(ctx context.Context, event *entities.TranscriptEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID retrieves a transcript event by ID
func (r *TranscriptEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptEvent, error) {
	var event entities.TranscriptEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// FindByDedupKey retrieves the record for (user, external meeting, event kind)
func (r *TranscriptEventRepository) FindByDedupKey(ctx context.Context, userID uuid.UUID, externalMeetingID string, kind entities.EventKind) (*entities.TranscriptEvent, error) {
	var event entities.TranscriptEvent
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND external_meeting_id = ? AND event_kind = ?", userID, externalMeetingID, kind).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ListByStatus retrieves one user's transcript events with a specific status
func (r *TranscriptEventRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status entities.TranscriptStatus, limit int) ([]entities.TranscriptEvent, error) {
	var events []entities.TranscriptEvent
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListRetryable selects the scheduler's retry candidates, oldest first
func (r *TranscriptEventRepository) ListRetryable(ctx context.Context, statuses []entities.TranscriptStatus, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error) {
	var events []entities.TranscriptEvent
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("retry_count < ?", maxRetries).
		Where("last_retry_at IS NULL OR last_retry_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListStalled selects records whose processing stalled mid-flight: pending
// rows whose dispatch was lost and matched rows whose pipeline invocation
// failed. The updated_at cutoff keeps freshly ingested rows out of the sweep.
func (r *TranscriptEventRepository) ListStalled(ctx context.Context, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error) {
	var events []entities.TranscriptEvent
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.TranscriptStatus{entities.TranscriptStatusPending, entities.TranscriptStatusMatched}).
		Where("retry_count < ?", maxRetries).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// StampRetry bumps last_retry_at and retry_count in one update
func (r *TranscriptEventRepository) StampRetry(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_retry_at": now,
			"updated_at":    now,
		}).Error
}

// UpdateStatus updates the status and reason of a transcript event
func (r *TranscriptEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"status_reason": reason,
			"updated_at":    time.Now(),
		}).Error
}

// UpdateResolution folds a resolution outcome back into the record
func (r *TranscriptEventRepository) UpdateResolution(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string, projectID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             status,
			"status_reason":      reason,
			"matched_project_id": projectID,
			"updated_at":         time.Now(),
		}).Error
}

// AssignProject records a manual project assignment on an ambiguous record.
// The status stays ambiguous so the scheduler still selects the record and
// drives it through the pipeline on its next cycle.
func (r *TranscriptEventRepository) AssignProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"matched_project_id": projectID,
			"status_reason":      reason,
			"updated_at":         time.Now(),
		}).Error
}

// CountByStatus returns queue depth per status
func (r *TranscriptEventRepository) CountByStatus(ctx context.Context) (map[entities.TranscriptStatus]int64, error) {
	type row struct {
		Status entities.TranscriptStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entities.TranscriptStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CountRetryExhausted counts retryable-state records stuck at the cap
func (r *TranscriptEventRepository) CountRetryExhausted(ctx context.Context, maxRetries int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.TranscriptEvent{}).
		Where("status IN ?", []entities.TranscriptStatus{entities.TranscriptStatusQuarantine, entities.TranscriptStatusAmbiguous}).
		Where("retry_count >= ?", maxRetries).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
