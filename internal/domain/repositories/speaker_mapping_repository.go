package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// SpeakerMappingRepository defines persistence operations for speaker mappings
type SpeakerMappingRepository interface {
	Create(ctx context.Context, mapping *entities.SpeakerMapping) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SpeakerMapping, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.SpeakerMapping, error)

	// Deactivate soft-deletes the mapping owned by userID; rows are never
	// hard-deleted while referenced
	Deactivate(ctx context.Context, id, userID uuid.UUID) error

	// FindActiveProjectScoped returns the highest-confidence active mapping
	// for the normalized label within any of the given projects, or (nil, nil).
	FindActiveProjectScoped(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (*entities.SpeakerMapping, error)

	// FindActiveGlobal returns the active all-projects mapping for the
	// normalized label, or (nil, nil).
	FindActiveGlobal(ctx context.Context, userID uuid.UUID, label string) (*entities.SpeakerMapping, error)

	// HasMappingForLabel reports whether the label has either a
	// project-scoped or global active mapping; the scheduler's quarantine
	// eligibility check uses this.
	HasMappingForLabel(ctx context.Context, userID uuid.UUID, label string, projectIDs []uuid.UUID) (bool, error)
}
