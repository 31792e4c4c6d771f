package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// TranscriptEventRepository defines persistence operations for transcript events
type TranscriptEventRepository interface {
	Create(ctx context.Context, event *entities.TranscriptEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptEvent, error)

	// FindByDedupKey looks up the record identified by the ingestion
	// uniqueness triple; returns (nil, nil) when no record exists.
	FindByDedupKey(ctx context.Context, userID uuid.UUID, externalMeetingID string, kind entities.EventKind) (*entities.TranscriptEvent, error)

	// ListByStatus lists one user's records in the given status; the admin
	// surface is strictly tenant-scoped.
	ListByStatus(ctx context.Context, userID uuid.UUID, status entities.TranscriptStatus, limit int) ([]entities.TranscriptEvent, error)

	// ListRetryable selects scheduler candidates: status in statuses,
	// retry_count < maxRetries, last_retry_at null or before cutoff,
	// oldest eligible first, capped at limit.
	ListRetryable(ctx context.Context, statuses []entities.TranscriptStatus, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error)

	// ListStalled selects pending and matched records whose last activity is
	// older than cutoff: a pending record whose dispatch was lost, or a
	// matched record whose pipeline invocation failed.
	ListStalled(ctx context.Context, maxRetries int, cutoff time.Time, limit int) ([]entities.TranscriptEvent, error)

	// StampRetry sets last_retry_at to now and increments retry_count in a
	// single update so a crash mid-cycle cannot cause an immediate re-pick.
	StampRetry(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string) error
	UpdateResolution(ctx context.Context, id uuid.UUID, status entities.TranscriptStatus, reason *string, projectID *uuid.UUID) error
	AssignProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID, reason string) error

	CountByStatus(ctx context.Context) (map[entities.TranscriptStatus]int64, error)
	CountRetryExhausted(ctx context.Context, maxRetries int) (int64, error)
}
